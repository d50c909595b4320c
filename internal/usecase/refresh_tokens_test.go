package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chuckeytang/wix-server/internal/adapter/repository/memory"
	"github.com/chuckeytang/wix-server/internal/domain"
	"github.com/chuckeytang/wix-server/internal/domain/mocks"
)

func TestRefreshTokensUseCase_Tick(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Now()

	tests := []struct {
		name         string
		instance     domain.Instance
		wantAttempts int
	}{
		{
			name: "30 minutes left triggers a refresh",
			instance: domain.Instance{
				InstanceID:  "site-a",
				AccessToken: "old-token",
				ExpiresAt:   now.Add(30 * time.Minute),
			},
			wantAttempts: 1,
		},
		{
			name: "2 hours left does not trigger a refresh",
			instance: domain.Instance{
				InstanceID:  "site-a",
				AccessToken: "old-token",
				ExpiresAt:   now.Add(2 * time.Hour),
			},
			wantAttempts: 0,
		},
		{
			name: "already expired still triggers a refresh",
			instance: domain.Instance{
				InstanceID:  "site-a",
				AccessToken: "old-token",
				ExpiresAt:   now.Add(-5 * time.Minute),
			},
			wantAttempts: 1,
		},
		{
			name:         "tokenless record is skipped",
			instance:     domain.Instance{InstanceID: "site-a"},
			wantAttempts: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewInstanceRepository()
			store.Upsert(tt.instance)

			exchanger := &mocks.MockTokenExchanger{
				Tokens: map[string]domain.ExchangedToken{
					"site-a": {AccessToken: "new-token", TTL: 4 * time.Hour},
				},
			}

			uc := NewRefreshTokensUseCase(store, exchanger, logger, nil, 10*time.Minute, time.Hour)
			uc.Tick(context.Background(), now)

			if got := exchanger.CallCount(); got != tt.wantAttempts {
				t.Fatalf("expected %d exchange attempts, got %d", tt.wantAttempts, got)
			}

			inst, _ := store.Get("site-a")
			if tt.wantAttempts == 1 {
				if inst.AccessToken != "new-token" {
					t.Errorf("expected refreshed token, got %q", inst.AccessToken)
				}
				if !inst.ExpiresAt.After(now.Add(3 * time.Hour)) {
					t.Errorf("expected extended expiry, got %v", inst.ExpiresAt)
				}
			} else if inst != tt.instance {
				t.Errorf("record changed without a refresh: %+v", inst)
			}
		})
	}
}

func TestRefreshTokensUseCase_FailureIsolation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Now()

	store := memory.NewInstanceRepository()
	store.Upsert(domain.Instance{
		InstanceID:  "site-failing",
		AccessToken: "stale-token",
		ExpiresAt:   now.Add(10 * time.Minute),
	})
	store.Upsert(domain.Instance{
		InstanceID:  "site-healthy",
		AccessToken: "aging-token",
		ExpiresAt:   now.Add(10 * time.Minute),
	})

	// Only site-healthy has a token to hand out; site-failing's exchange fails.
	exchanger := &mocks.MockTokenExchanger{
		Tokens: map[string]domain.ExchangedToken{
			"site-healthy": {AccessToken: "fresh-token", TTL: 4 * time.Hour},
		},
	}

	uc := NewRefreshTokensUseCase(store, exchanger, logger, nil, 10*time.Minute, time.Hour)
	refreshed := uc.Tick(context.Background(), now)

	if refreshed != 1 {
		t.Fatalf("expected exactly 1 refreshed token, got %d", refreshed)
	}
	if got := exchanger.CallCount(); got != 2 {
		t.Fatalf("expected both instances to be attempted, got %d attempts", got)
	}

	healthy, _ := store.Get("site-healthy")
	if healthy.AccessToken != "fresh-token" {
		t.Errorf("expected site-healthy refreshed, got token %q", healthy.AccessToken)
	}

	failing, _ := store.Get("site-failing")
	if failing.AccessToken != "stale-token" {
		t.Errorf("expected site-failing left unchanged, got token %q", failing.AccessToken)
	}
	if !failing.ExpiresAt.Equal(now.Add(10 * time.Minute)) {
		t.Errorf("expected site-failing expiry untouched, got %v", failing.ExpiresAt)
	}
}

func TestRefreshTokensUseCase_RunStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewInstanceRepository()
	exchanger := &mocks.MockTokenExchanger{}

	uc := NewRefreshTokensUseCase(store, exchanger, logger, nil, time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		uc.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
