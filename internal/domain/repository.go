package domain

import "context"

// InstanceRepository is the process-wide table of admitted instances and
// their credentials. Implementations must be safe under concurrent access
// from the webhook admission path and the refresh sweep.
type InstanceRepository interface {
	// Upsert creates or overwrites the record for inst.InstanceID.
	Upsert(inst Instance)

	// Get returns the record for the given instance id, if present.
	Get(instanceID string) (Instance, bool)

	// All returns a stable snapshot of every record. The returned slice is a
	// copy; iterating it never observes concurrent mutations.
	All() []Instance
}

// TokenExchanger converts the app identity plus an instance id into a bearer
// access token via the platform's OAuth endpoint. Exchange never returns an
// error: any transport failure, non-2xx response, or malformed body is an
// absent result. Callers treat absence as a normal outcome and retry on the
// next sweep.
type TokenExchanger interface {
	Exchange(ctx context.Context, instanceID string) (ExchangedToken, bool)
}

// WebhookVerifier validates a raw signed webhook token and returns its
// payload claims. A verification failure of any kind is reported as
// ErrInvalidSignature (possibly wrapped).
type WebhookVerifier interface {
	Verify(raw []byte) (map[string]any, error)
}
