package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/ncea-extract-go/internal/domain"
)

const namespace = "ncea_extract"

// Recorder holds the download metrics on its own registry so that
// independent batches and tests never share counters.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates and registers the download metrics
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		outcomes: newCounterVec("batch", "outcomes_total",
			"Terminal outcomes of download tasks.", "outcome", "kind"),
		attempts: newCounterVec("provider", "attempts_total",
			"Fetch attempts per provider.", "provider", "result"),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of fetch attempts per provider.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"provider"}),
	}
	r.registry.MustRegister(r.outcomes, r.attempts, r.duration)
	return r
}

func newCounterVec(subsystem, name, help string, labelNames ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labelNames)
}

// ObserveOutcome counts the terminal outcome of one task
func (r *Recorder) ObserveOutcome(kind domain.ComponentKind, o domain.Outcome) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(string(o.Kind), string(kind)).Inc()
}

// ObserveAttempt counts one provider fetch attempt and its duration
func (r *Recorder) ObserveAttempt(provider string, o domain.Outcome, took time.Duration) {
	if r == nil {
		return
	}
	result := string(o.Kind)
	if o.Reason != domain.ReasonNone {
		result = string(o.Reason)
	}
	r.attempts.WithLabelValues(provider, result).Inc()
	r.duration.WithLabelValues(provider).Observe(took.Seconds())
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
