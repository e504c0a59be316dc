package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveExchangeDuration is a no-op.
func (n *NoopRecorder) ObserveExchangeDuration(duration time.Duration) {}

// IncReportSent is a no-op.
func (n *NoopRecorder) IncReportSent(status string) {}

// IncReportSkipped is a no-op.
func (n *NoopRecorder) IncReportSkipped(reason string) {}

// ObserveReportDuration is a no-op.
func (n *NoopRecorder) ObserveReportDuration(duration time.Duration) {}
