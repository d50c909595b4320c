package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/chuckeytang/wix-server/internal/adapter/metrics"
	"github.com/chuckeytang/wix-server/internal/domain"
)

// WebhookAdmitter is the use-case contract the handler depends on.
type WebhookAdmitter interface {
	Admit(ctx context.Context, raw []byte) (string, error)
}

// WebhookHandler handles HTTP requests carrying signed installation webhooks.
// It is the single boundary converting domain error kinds into HTTP status
// codes; the sender always receives a structured plain-text response.
type WebhookHandler struct {
	admitter    WebhookAdmitter
	logger      *slog.Logger
	metrics     *metrics.WebhookMetrics
	maxBodySize int64
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(admitter WebhookAdmitter, logger *slog.Logger, m *metrics.WebhookMetrics, maxBodySize int64) *WebhookHandler {
	return &WebhookHandler{
		admitter:    admitter,
		logger:      logger,
		metrics:     m,
		maxBodySize: maxBodySize,
	}
}

// ServeHTTP processes an incoming webhook request.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The response channel must never be left hanging: anything unexpected
	// below becomes a 500, not a dropped connection.
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic during webhook processing", "panic", rec)
			h.respond(w, http.StatusInternalServerError, fmt.Sprintf("Internal Server Error: %v", rec))
		}
	}()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respond(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		h.logger.Error("failed to read webhook body", "error", err)
		h.respond(w, http.StatusInternalServerError, "Internal Server Error: "+err.Error())
		return
	}

	_, err = h.admitter.Admit(r.Context(), raw)
	switch {
	case err == nil:
		h.respond(w, http.StatusOK, "Webhook processed successfully")
	case errors.Is(err, domain.ErrInvalidSignature):
		h.respond(w, http.StatusUnauthorized, "Invalid signature")
	case errors.Is(err, domain.ErrMissingData):
		h.respond(w, http.StatusBadRequest, "Payload missing data field")
	case errors.Is(err, domain.ErrInvalidDataJSON):
		h.respond(w, http.StatusBadRequest, "Invalid JSON in payload data")
	case errors.Is(err, domain.ErrMissingInstanceID):
		h.respond(w, http.StatusBadRequest, "Payload missing instanceId")
	default:
		h.respond(w, http.StatusInternalServerError, "Internal Server Error: "+err.Error())
	}
}

func (h *WebhookHandler) respond(w http.ResponseWriter, status int, message string) {
	if h.metrics != nil {
		h.metrics.WebhooksTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}
