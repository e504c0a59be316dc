package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exposes the Recorder hooks as Prometheus collectors.
type PrometheusRecorder struct {
	exchangeDuration prometheus.Histogram
	reportsSent      *prometheus.CounterVec
	reportsSkipped   *prometheus.CounterVec
	reportDuration   prometheus.Histogram
}

// NewPrometheus creates a PrometheusRecorder and registers its
// collectors with reg.
func NewPrometheus(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	p := &PrometheusRecorder{
		exchangeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "saaskit",
			Name:      "http_exchange_duration_seconds",
			Help:      "Time spent in the downstream handler for observed exchanges.",
			Buckets:   prometheus.DefBuckets,
		}),
		reportsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saaskit",
			Name:      "ga4_reports_sent_total",
			Help:      "Collector sends by outcome.",
		}, []string{"status"}),
		reportsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saaskit",
			Name:      "ga4_reports_skipped_total",
			Help:      "Observed exchanges that produced no collector send.",
		}, []string{"reason"}),
		reportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "saaskit",
			Name:      "ga4_report_duration_seconds",
			Help:      "Collector send latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{p.exchangeDuration, p.reportsSent, p.reportsSkipped, p.reportDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ObserveExchangeDuration records how long the downstream handler took.
func (p *PrometheusRecorder) ObserveExchangeDuration(duration time.Duration) {
	p.exchangeDuration.Observe(duration.Seconds())
}

// IncReportSent counts a send attempt by outcome.
func (p *PrometheusRecorder) IncReportSent(status string) {
	p.reportsSent.WithLabelValues(status).Inc()
}

// IncReportSkipped counts an exchange that produced no send.
func (p *PrometheusRecorder) IncReportSkipped(reason string) {
	p.reportsSkipped.WithLabelValues(reason).Inc()
}

// ObserveReportDuration records collector send latency.
func (p *PrometheusRecorder) ObserveReportDuration(duration time.Duration) {
	p.reportDuration.Observe(duration.Seconds())
}
