package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chuckeytang/wix-server/internal/adapter/api/handler"
	"github.com/chuckeytang/wix-server/internal/adapter/api/middleware"
	"github.com/chuckeytang/wix-server/internal/adapter/metrics"
	"github.com/chuckeytang/wix-server/internal/pkg/config"
)

// NewRouter creates and configures the HTTP router for the webhook service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	admitter handler.WebhookAdmitter,
	m *metrics.WebhookMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(middleware.RateLimit(cfg.WebhookRPS, cfg.WebhookBurst, logger))

	webhookHandler := handler.NewWebhookHandler(admitter, logger, m, cfg.MaxBodySize)
	r.Post("/wix-webhook", webhookHandler.ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
