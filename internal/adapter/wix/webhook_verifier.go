package wix

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chuckeytang/wix-server/internal/domain"
)

// WebhookVerifier validates the signed JWT Wix sends as the raw webhook body.
// The signing algorithm is pinned at construction and enforced on every
// token; the alg field in the token header is never trusted, which closes the
// usual downgrade/confusion attacks.
type WebhookVerifier struct {
	alg string
	key any // *rsa.PublicKey for RS256, []byte for HS256
}

// NewWebhookVerifier builds a verifier for the configured algorithm. RS256
// requires PEM-encoded public key material; HS256 uses the shared app secret.
// Key material that does not match the algorithm is a construction error, not
// a per-request one.
func NewWebhookVerifier(alg, publicKeyPEM, secret string) (*WebhookVerifier, error) {
	switch alg {
	case "RS256":
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse webhook public key: %w", err)
		}
		return &WebhookVerifier{alg: alg, key: pub}, nil
	case "HS256":
		if secret == "" {
			return nil, fmt.Errorf("HS256 verification requires the app secret")
		}
		return &WebhookVerifier{alg: alg, key: []byte(secret)}, nil
	default:
		return nil, fmt.Errorf("unsupported webhook signature algorithm %q", alg)
	}
}

// Verify parses and validates a raw signed token and returns its payload
// claims. Every verification failure, including an unexpected signing method,
// is reported as domain.ErrInvalidSignature.
func (v *WebhookVerifier) Verify(raw []byte) (map[string]any, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(string(raw), claims, func(token *jwt.Token) (any, error) {
		return v.key, nil
	}, jwt.WithValidMethods([]string{v.alg}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	return claims, nil
}
