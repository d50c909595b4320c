package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/chuckeytang/wix-server/internal/adapter/metrics"
	"github.com/chuckeytang/wix-server/internal/domain"
)

// RefreshTokensUseCase proactively renews access tokens nearing expiry. It is
// a best-effort liveness sweep: a failed exchange leaves the existing record
// in place and the next tick retries, with no backoff and no removal.
type RefreshTokensUseCase struct {
	repo      domain.InstanceRepository
	exchanger domain.TokenExchanger
	logger    *slog.Logger
	metrics   *metrics.WebhookMetrics

	interval  time.Duration
	threshold time.Duration
}

// NewRefreshTokensUseCase creates a new refresh sweep. threshold is how close
// to expiry a token must be before it is renewed; interval is the sweep
// period used by Run.
func NewRefreshTokensUseCase(repo domain.InstanceRepository, exchanger domain.TokenExchanger, logger *slog.Logger, m *metrics.WebhookMetrics, interval, threshold time.Duration) *RefreshTokensUseCase {
	return &RefreshTokensUseCase{
		repo:      repo,
		exchanger: exchanger,
		logger:    logger,
		metrics:   m,
		interval:  interval,
		threshold: threshold,
	}
}

// Tick performs one sweep over a snapshot of the instance table, renewing
// every token within threshold of expiry. Exchanges run outside the table
// lock, so one slow platform call never blocks admissions or other reads.
// Returns the number of tokens successfully renewed.
func (uc *RefreshTokensUseCase) Tick(ctx context.Context, now time.Time) int {
	instances := uc.repo.All()
	if uc.metrics != nil {
		uc.metrics.ActiveInstances.Set(float64(len(instances)))
	}

	refreshed := 0
	for _, inst := range instances {
		if ctx.Err() != nil {
			return refreshed
		}
		if !inst.NeedsRefresh(now, uc.threshold) {
			continue
		}

		uc.logger.Info("access token is about to expire, refreshing",
			"instance_id", inst.InstanceID, "expires_at", inst.ExpiresAt)

		tok, ok := uc.exchanger.Exchange(ctx, inst.InstanceID)
		if !ok {
			// Leave the record untouched; one instance's failure must not
			// abort the sweep of the others.
			if uc.metrics != nil {
				uc.metrics.RefreshesTotal.WithLabelValues("failure").Inc()
			}
			continue
		}

		uc.repo.Upsert(domain.Instance{
			InstanceID:  inst.InstanceID,
			AccessToken: tok.AccessToken,
			ExpiresAt:   time.Now().Add(tok.TTL),
		})
		if uc.metrics != nil {
			uc.metrics.RefreshesTotal.WithLabelValues("success").Inc()
		}
		refreshed++
	}

	return refreshed
}

// Run drives Tick on a fixed interval until the context is canceled. It is
// meant to be started once as a background goroutine and stopped by the
// process-wide shutdown context.
func (uc *RefreshTokensUseCase) Run(ctx context.Context) {
	ticker := time.NewTicker(uc.interval)
	defer ticker.Stop()

	uc.logger.Info("token refresher started", "interval", uc.interval, "threshold", uc.threshold)

	for {
		select {
		case <-ticker.C:
			if n := uc.Tick(ctx, time.Now()); n > 0 {
				uc.logger.Info("refresh sweep completed", "refreshed", n)
			}
		case <-ctx.Done():
			uc.logger.Info("token refresher stopped")
			return
		}
	}
}
