package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AIRequests        *prometheus.CounterVec
	AILatency         *prometheus.HistogramVec
	NormalizeDegraded *prometheus.CounterVec
	StorageErrors     *prometheus.CounterVec
	HistoryAppendErrs prometheus.Counter

	gatherer prometheus.Gatherer
}

func New(namespace string, reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "Text generation calls by feature and outcome.",
		}, []string{"feature", "outcome"}),
		AILatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "Text generation latency by feature.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}, []string{"feature"}),
		NormalizeDegraded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_degraded_total",
			Help:      "Model replies that needed fallback values, by response schema.",
		}, []string{"schema"}),
		StorageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Failed storage writes by operation.",
		}, []string{"op"}),
		HistoryAppendErrs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_append_errors_total",
			Help:      "History entries that could not be recorded.",
		}),
		gatherer: reg,
	}
}

func (m *Metrics) ObserveAI(feature string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AIRequests.WithLabelValues(feature, outcome).Inc()
	m.AILatency.WithLabelValues(feature).Observe(d.Seconds())
}

func (m *Metrics) Degraded(schema string) {
	if m == nil {
		return
	}
	m.NormalizeDegraded.WithLabelValues(schema).Inc()
}

func (m *Metrics) StorageError(op string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) HistoryAppendFailed() {
	if m == nil {
		return
	}
	m.HistoryAppendErrs.Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
