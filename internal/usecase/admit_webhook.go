package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/chuckeytang/wix-server/internal/domain"
)

// AdmitWebhookUseCase handles the business logic for admitting an
// installation webhook: verify the signed token, extract the instance id,
// reset the credential record, and attempt an initial token exchange.
type AdmitWebhookUseCase struct {
	verifier  domain.WebhookVerifier
	repo      domain.InstanceRepository
	exchanger domain.TokenExchanger
	logger    *slog.Logger
}

// NewAdmitWebhookUseCase creates a new AdmitWebhookUseCase.
func NewAdmitWebhookUseCase(verifier domain.WebhookVerifier, repo domain.InstanceRepository, exchanger domain.TokenExchanger, logger *slog.Logger) *AdmitWebhookUseCase {
	return &AdmitWebhookUseCase{
		verifier:  verifier,
		repo:      repo,
		exchanger: exchanger,
		logger:    logger,
	}
}

// Admit processes a raw webhook body and returns the admitted instance id.
// Failures are reported through the domain error kinds; the HTTP boundary
// maps each kind to its status code. A failed initial exchange is not an
// admission failure: the record stays tokenless and the refresh sweep
// retries later.
func (uc *AdmitWebhookUseCase) Admit(ctx context.Context, raw []byte) (string, error) {
	uc.logger.Debug("received webhook token", "raw", string(raw))

	claims, err := uc.verifier.Verify(raw)
	if err != nil {
		uc.logger.Error("webhook JWT verification failed", "error", err)
		return "", err
	}
	uc.logger.Debug("decoded webhook payload", "claims", claims)

	instanceID, err := extractInstanceID(claims)
	if err != nil {
		uc.logger.Warn("webhook payload rejected", "error", err)
		return "", err
	}

	// Admission always restarts the credential lifecycle: any previous token
	// for this instance is discarded before the new exchange.
	uc.repo.Upsert(domain.Instance{InstanceID: instanceID})
	uc.logger.Info("webhook admitted", "instance_id", instanceID)

	if tok, ok := uc.exchanger.Exchange(ctx, instanceID); ok {
		uc.repo.Upsert(domain.Instance{
			InstanceID:  instanceID,
			AccessToken: tok.AccessToken,
			ExpiresAt:   time.Now().Add(tok.TTL),
		})
	}

	return instanceID, nil
}

// extractInstanceID digs the instance id out of the payload's data claim. Wix
// delivers data either as a JSON-encoded string or as an embedded object;
// both forms are accepted.
func extractInstanceID(claims map[string]any) (string, error) {
	raw, ok := claims["data"]
	if !ok || raw == nil {
		return "", domain.ErrMissingData
	}

	var data map[string]any
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", domain.ErrMissingData
		}
		if err := json.Unmarshal([]byte(v), &data); err != nil {
			return "", domain.ErrInvalidDataJSON
		}
	case map[string]any:
		data = v
	default:
		return "", domain.ErrInvalidDataJSON
	}

	instanceID, _ := data["instanceId"].(string)
	if instanceID == "" {
		return "", domain.ErrMissingInstanceID
	}
	return instanceID, nil
}
