package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the detection and
// validation paths.
type Metrics struct {
	DetectionRequests prometheus.Counter
	DetectionDuration prometheus.Histogram

	// Alert pipeline metrics.
	AlertsEmitted    *prometheus.CounterVec // labels: level={info,warning,urgent}
	AlertsSuppressed prometheus.Counter
	BroadcastsQueued prometheus.Counter

	// Validation metrics.
	Votes         *prometheus.CounterVec // labels: action={confirm,reject,resolve}, outcome={applied,rejected}
	HazardReports *prometheus.CounterVec // labels: outcome={created,duplicate,invalid}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DetectionRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safetyshare",
			Name:      "detection_requests_total",
			Help:      "Total location-update detection requests.",
		}),
		DetectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "safetyshare",
			Name:      "detection_duration_seconds",
			Help:      "Duration of a complete detection cycle including the spatial query.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}),
		AlertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safetyshare",
			Name:      "alerts_emitted_total",
			Help:      "Alerts surfaced to drivers by level.",
		}, []string{"level"}),
		AlertsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safetyshare",
			Name:      "alerts_suppressed_total",
			Help:      "Alerts dropped by the per-user cooldown.",
		}),
		BroadcastsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safetyshare",
			Name:      "broadcasts_queued_total",
			Help:      "Alert batches pushed onto the broadcast queue.",
		}),
		Votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safetyshare",
			Name:      "validation_votes_total",
			Help:      "Validation votes by action and outcome.",
		}, []string{"action", "outcome"}),
		HazardReports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safetyshare",
			Name:      "hazard_reports_total",
			Help:      "Hazard reports by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.DetectionRequests,
		m.DetectionDuration,
		m.AlertsEmitted,
		m.AlertsSuppressed,
		m.BroadcastsQueued,
		m.Votes,
		m.HazardReports,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DetectionRequests: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "safetyshare", Name: "detection_requests_total"}),
		DetectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "safetyshare", Name: "detection_duration_seconds"}),
		AlertsEmitted:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "safetyshare", Name: "alerts_emitted_total"}, []string{"level"}),
		AlertsSuppressed:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "safetyshare", Name: "alerts_suppressed_total"}),
		BroadcastsQueued:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "safetyshare", Name: "broadcasts_queued_total"}),
		Votes:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "safetyshare", Name: "validation_votes_total"}, []string{"action", "outcome"}),
		HazardReports:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "safetyshare", Name: "hazard_reports_total"}, []string{"outcome"}),
	}
}
