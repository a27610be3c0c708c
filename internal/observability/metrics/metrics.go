package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook event outcomes.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeFailed    = "failed"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	webhookEvents *prometheus.CounterVec
	activations   prometheus.Counter
}

// New registers the domain instruments on the default prometheus registry.
func New() *Metrics {
	return &Metrics{
		webhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "alphaedge_webhook_events_total",
			Help: "Webhook deliveries by event kind and processing outcome.",
		}, []string{"event", "outcome"}),
		activations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "alphaedge_subscription_activations_total",
			Help: "Subscriptions activated from captured payments.",
		}),
	}
}

func (m *Metrics) RecordWebhookEvent(event, outcome string) {
	if m == nil {
		return
	}
	event = strings.TrimSpace(event)
	if event == "" {
		event = "unknown"
	}
	m.webhookEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) RecordActivation() {
	if m == nil {
		return
	}
	m.activations.Inc()
}

// HTTPMetrics captures request durations per route.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alphaedge_http_request_duration_seconds",
			Help:    "HTTP request duration by route, method and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// GinMiddleware records a duration sample for every completed request.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.duration.WithLabelValues(
			route,
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
