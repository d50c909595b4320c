package domain

import "time"

// Instance represents one installation of the app on a Wix site, keyed by the
// opaque instance id delivered in the installation webhook.
type Instance struct {
	InstanceID  string    `json:"instance_id"`
	AccessToken string    `json:"-"` // never serialized; tokens stay in process memory
	ExpiresAt   time.Time `json:"expires_at"`
}

// HasToken reports whether the instance currently holds an access token.
func (i Instance) HasToken() bool {
	return i.AccessToken != ""
}

// NeedsRefresh reports whether the instance's token is within threshold of
// expiry at the given time. Instances without a token are never refreshed;
// they are re-admitted by a future webhook instead.
func (i Instance) NeedsRefresh(now time.Time, threshold time.Duration) bool {
	return i.HasToken() && i.ExpiresAt.Sub(now) < threshold
}

// ExchangedToken is the result of a successful client-credentials exchange.
// TTL carries the platform-reported lifetime when the response included one,
// otherwise the configured default.
type ExchangedToken struct {
	AccessToken string
	TTL         time.Duration
}
