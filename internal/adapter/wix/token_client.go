package wix

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/chuckeytang/wix-server/internal/adapter/metrics"
	"github.com/chuckeytang/wix-server/internal/domain"
)

// maxResponseBytes caps how much of a token endpoint response is read, both
// for parsing and for error logging.
const maxResponseBytes = 1 << 20

// TokenClient implements domain.TokenExchanger against the Wix OAuth token
// endpoint using the client_credentials grant. All platform-API flakiness is
// absorbed here: the caller only ever sees a present or absent token.
type TokenClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.WebhookMetrics

	tokenURL   string
	appID      string
	appSecret  string
	defaultTTL time.Duration
}

// NewTokenClient creates a token-exchange client. The timeout bounds every
// exchange end to end; a hung platform call must not stall a refresh sweep
// indefinitely.
func NewTokenClient(tokenURL, appID, appSecret string, timeout, defaultTTL time.Duration, logger *slog.Logger, m *metrics.WebhookMetrics) *TokenClient {
	return &TokenClient{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
		tokenURL:   tokenURL,
		appID:      appID,
		appSecret:  appSecret,
		defaultTTL: defaultTTL,
	}
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	InstanceID   string `json:"instance_id"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Exchange requests an access token for the given instance. It never returns
// an error: transport failures, non-2xx responses, and malformed bodies are
// logged and reported as an absent token.
func (c *TokenClient) Exchange(ctx context.Context, instanceID string) (domain.ExchangedToken, bool) {
	payload, err := json.Marshal(tokenRequest{
		GrantType:    "client_credentials",
		ClientID:     c.appID,
		ClientSecret: c.appSecret,
		InstanceID:   instanceID,
	})
	if err != nil {
		return c.fail(instanceID, "failed to marshal token request", "error", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(payload))
	if err != nil {
		return c.fail(instanceID, "failed to build token request", "error", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(instanceID, "token request failed", "error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.fail(instanceID, "failed to read token response", "error", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(instanceID, "token endpoint returned non-2xx status",
			"status", resp.StatusCode, "body", string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return c.fail(instanceID, "failed to parse token response", "error", err, "body", string(body))
	}
	if tr.AccessToken == "" {
		return c.fail(instanceID, "token response missing access_token", "body", string(body))
	}

	// Prefer the platform-reported lifetime when present; fall back to the
	// configured default otherwise.
	ttl := c.defaultTTL
	if tr.ExpiresIn > 0 {
		ttl = time.Duration(tr.ExpiresIn) * time.Second
	}

	if c.metrics != nil {
		c.metrics.ExchangesTotal.WithLabelValues("success").Inc()
	}
	c.logger.Info("retrieved new access token", "instance_id", instanceID, "ttl", ttl)

	return domain.ExchangedToken{AccessToken: tr.AccessToken, TTL: ttl}, true
}

func (c *TokenClient) fail(instanceID, msg string, args ...any) (domain.ExchangedToken, bool) {
	if c.metrics != nil {
		c.metrics.ExchangesTotal.WithLabelValues("failure").Inc()
	}
	c.logger.Error(msg, append([]any{"instance_id", instanceID}, args...)...)
	return domain.ExchangedToken{}, false
}
