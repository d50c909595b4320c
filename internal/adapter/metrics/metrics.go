package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebhookMetrics holds all Prometheus metrics for the webhook service.
type WebhookMetrics struct {
	WebhooksTotal   *prometheus.CounterVec
	ExchangesTotal  *prometheus.CounterVec
	RefreshesTotal  *prometheus.CounterVec
	ActiveInstances prometheus.Gauge
}

// NewWebhookMetrics initializes and registers the Prometheus metrics.
func NewWebhookMetrics() *WebhookMetrics {
	return &WebhookMetrics{
		WebhooksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wix_server",
			Subsystem: "webhook",
			Name:      "requests_total",
			Help:      "Total number of webhook requests by HTTP status.",
		}, []string{"status"}), // status: 200, 400, 401, 429, 500
		ExchangesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wix_server",
			Subsystem: "oauth",
			Name:      "exchanges_total",
			Help:      "Total number of token exchange attempts by outcome.",
		}, []string{"outcome"}), // outcome: success, failure
		RefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wix_server",
			Subsystem: "refresh",
			Name:      "sweep_refreshes_total",
			Help:      "Total number of refresh attempts made by the sweep, by outcome.",
		}, []string{"outcome"}), // outcome: success, failure
		ActiveInstances: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "wix_server",
			Subsystem: "store",
			Name:      "instances_gauge",
			Help:      "Number of admitted instances currently in the credential table.",
		}),
	}
}
