// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Report outcomes passed to IncReportSent.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Skip reasons passed to IncReportSkipped.
const (
	SkipUnconfigured = "unconfigured"
	SkipMethod       = "method"
	SkipNotDocument  = "not_document"
	SkipNoEvent      = "no_event"
	SkipClosed       = "closed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Observed HTTP exchanges
	ObserveExchangeDuration(duration time.Duration)

	// Analytics reporting pipeline
	IncReportSent(status string)
	IncReportSkipped(reason string)
	ObserveReportDuration(duration time.Duration)
}

