package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chuckeytang/wix-server/internal/domain"
)

// MockAdmitter is a mock implementation of the WebhookAdmitter interface.
type MockAdmitter struct {
	AdmitFunc func(ctx context.Context, raw []byte) (string, error)
}

func (m *MockAdmitter) Admit(ctx context.Context, raw []byte) (string, error) {
	if m.AdmitFunc != nil {
		return m.AdmitFunc(ctx, raw)
	}
	return "site-1", nil
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		admitErr       error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "successful admission",
			expectedStatus: http.StatusOK,
			expectedBody:   "Webhook processed successfully",
		},
		{
			name:           "invalid signature",
			admitErr:       domain.ErrInvalidSignature,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid signature",
		},
		{
			name:           "missing data field",
			admitErr:       domain.ErrMissingData,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Payload missing data field",
		},
		{
			name:           "invalid data JSON",
			admitErr:       domain.ErrInvalidDataJSON,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid JSON in payload data",
		},
		{
			name:           "missing instanceId",
			admitErr:       domain.ErrMissingInstanceID,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Payload missing instanceId",
		},
		{
			name:           "wrapped error kind still maps",
			admitErr:       errors.Join(errors.New("jwt: crypto/rsa: verification error"), domain.ErrInvalidSignature),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid signature",
		},
		{
			name:           "unexpected internal error",
			admitErr:       errors.New("store exploded"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Internal Server Error: store exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admitter := &MockAdmitter{
				AdmitFunc: func(ctx context.Context, raw []byte) (string, error) {
					return "site-1", tt.admitErr
				},
			}
			h := NewWebhookHandler(admitter, logger, nil, 1<<16)

			req := httptest.NewRequest(http.MethodPost, "/wix-webhook", strings.NewReader("some.jwt.token"))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if got := rr.Body.String(); got != tt.expectedBody {
				t.Errorf("expected body %q, got %q", tt.expectedBody, got)
			}
		})
	}
}

func TestWebhookHandler_PassesRawBody(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var gotRaw []byte
	admitter := &MockAdmitter{
		AdmitFunc: func(ctx context.Context, raw []byte) (string, error) {
			gotRaw = raw
			return "site-1", nil
		},
	}
	h := NewWebhookHandler(admitter, logger, nil, 1<<16)

	body := []byte("header.payload.signature")
	req := httptest.NewRequest(http.MethodPost, "/wix-webhook", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if !bytes.Equal(gotRaw, body) {
		t.Errorf("expected raw body %q passed through, got %q", body, gotRaw)
	}
}

func TestWebhookHandler_RecoversPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	admitter := &MockAdmitter{
		AdmitFunc: func(ctx context.Context, raw []byte) (string, error) {
			panic("boom")
		},
	}
	h := NewWebhookHandler(admitter, logger, nil, 1<<16)

	req := httptest.NewRequest(http.MethodPost, "/wix-webhook", strings.NewReader("x"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "boom") {
		t.Errorf("expected panic detail in body, got %q", rr.Body.String())
	}
}

func TestWebhookHandler_PayloadTooLarge(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewWebhookHandler(&MockAdmitter{}, logger, nil, 8)

	req := httptest.NewRequest(http.MethodPost, "/wix-webhook", strings.NewReader("definitely more than eight bytes"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversized body, got %d", rr.Code)
	}
}
