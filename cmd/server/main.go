package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chuckeytang/wix-server/internal/adapter/api"
	"github.com/chuckeytang/wix-server/internal/adapter/metrics"
	"github.com/chuckeytang/wix-server/internal/adapter/repository/memory"
	"github.com/chuckeytang/wix-server/internal/adapter/wix"
	"github.com/chuckeytang/wix-server/internal/pkg/config"
	"github.com/chuckeytang/wix-server/internal/pkg/logger"
	"github.com/chuckeytang/wix-server/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	m := metrics.NewWebhookMetrics()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Core wiring: store, verifier, exchange client, use cases ---
	store := memory.NewInstanceRepository()

	verifier, err := wix.NewWebhookVerifier(cfg.SignatureAlg, cfg.WebhookPublicKey, cfg.AppSecret)
	if err != nil {
		log.Error("failed to initialize webhook verifier", "error", err)
		os.Exit(1)
	}

	tokenClient := wix.NewTokenClient(cfg.TokenURL, cfg.AppID, cfg.AppSecret, cfg.ExchangeTimeout, cfg.TokenTTL, log, m)

	admitUseCase := usecase.NewAdmitWebhookUseCase(verifier, store, tokenClient, log)
	refreshUseCase := usecase.NewRefreshTokensUseCase(store, tokenClient, log, m, cfg.RefreshInterval, cfg.RefreshThreshold)

	// --- Start the refresh sweep ---
	go refreshUseCase.Run(ctx)

	// --- Metrics & health server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metricsMux,
	}

	go func() {
		log.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	// --- Webhook server ---
	router := api.NewRouter(cfg, log, admitUseCase, m)
	webhookServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Info("starting webhook server", "addr", webhookServer.Addr)
		if err := webhookServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("webhook server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := webhookServer.Shutdown(shutdownCtx); err != nil {
		log.Error("webhook server shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}
