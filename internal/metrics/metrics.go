// Package metrics exposes Prometheus instrumentation for the pipeline and
// delivery paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	ItemsFetched        *prometheus.CounterVec
	NewslettersSent     *prometheus.CounterVec
	EmailsSent          prometheus.Counter
	EmailsFailed        prometheus.Counter
	SweepRuns           prometheus.Counter
	SweepClaims         prometheus.Counter
	SweepDueNewsletters prometheus.Gauge
	ReportGeneration    prometheus.Histogram
	SourceFetchErrors   *prometheus.CounterVec
}

// New registers the collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ItemsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorpulse_items_fetched_total",
			Help: "Items fetched from content sources, by source type.",
		}, []string{"source_type"}),
		NewslettersSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorpulse_newsletters_sent_total",
			Help: "Newsletters that reached a terminal status, by status.",
		}, []string{"status"}),
		EmailsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "creatorpulse_emails_sent_total",
			Help: "Individual recipient emails delivered.",
		}),
		EmailsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "creatorpulse_emails_failed_total",
			Help: "Individual recipient emails that failed to deliver.",
		}),
		SweepRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "creatorpulse_sweep_runs_total",
			Help: "Scheduling sweep ticks executed.",
		}),
		SweepClaims: factory.NewCounter(prometheus.CounterOpts{
			Name: "creatorpulse_sweep_claims_total",
			Help: "Scheduled newsletters claimed for sending by the sweep.",
		}),
		SweepDueNewsletters: factory.NewGauge(prometheus.GaugeOpts{
			Name: "creatorpulse_sweep_due_newsletters",
			Help: "Newsletters found due in the most recent sweep pass.",
		}),
		ReportGeneration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "creatorpulse_report_generation_seconds",
			Help:    "Wall time of report synthesis, fallback included.",
			Buckets: prometheus.DefBuckets,
		}),
		SourceFetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorpulse_source_fetch_errors_total",
			Help: "Source fetches that returned an error, by source type.",
		}, []string{"source_type"}),
	}
}

// NewDefault registers the collectors with the default registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
