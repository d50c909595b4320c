package mocks

import (
	"context"
	"sync"

	"github.com/chuckeytang/wix-server/internal/domain"
)

// MockTokenExchanger is a mock implementation of domain.TokenExchanger for testing.
type MockTokenExchanger struct {
	mu sync.Mutex

	// Tokens maps instance id -> token to hand out. Instances not present
	// fail the exchange.
	Tokens map[string]domain.ExchangedToken

	// ExchangeFunc, when set, overrides the map-based behavior entirely.
	ExchangeFunc func(ctx context.Context, instanceID string) (domain.ExchangedToken, bool)

	// Calls records every instance id passed to Exchange, in order.
	Calls []string
}

func (m *MockTokenExchanger) Exchange(ctx context.Context, instanceID string) (domain.ExchangedToken, bool) {
	m.mu.Lock()
	m.Calls = append(m.Calls, instanceID)
	fn := m.ExchangeFunc
	tok, ok := m.Tokens[instanceID]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, instanceID)
	}
	return tok, ok
}

// CallCount returns the number of Exchange invocations so far.
func (m *MockTokenExchanger) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockWebhookVerifier is a mock implementation of domain.WebhookVerifier.
type MockWebhookVerifier struct {
	Claims map[string]any
	Err    error
}

func (m *MockWebhookVerifier) Verify(raw []byte) (map[string]any, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Claims, nil
}
