package metrics

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ExchangeCount       uint64
	ExchangeTotalNs     int64
	ReportsSent         uint64
	ReportsFailed       uint64
	ReportDurationCount uint64
	ReportDurationNs    int64
	Skipped             map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	exchangeCount       atomic.Uint64
	exchangeTotalNs     atomic.Int64
	reportsSent         atomic.Uint64
	reportsFailed       atomic.Uint64
	reportDurationCount atomic.Uint64
	reportDurationNs    atomic.Int64

	mu      sync.Mutex
	skipped map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{skipped: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	skipped := make(map[string]uint64, len(m.skipped))
	for reason, n := range m.skipped {
		skipped[reason] = n
	}
	m.mu.Unlock()

	return Snapshot{
		ExchangeCount:       m.exchangeCount.Load(),
		ExchangeTotalNs:     m.exchangeTotalNs.Load(),
		ReportsSent:         m.reportsSent.Load(),
		ReportsFailed:       m.reportsFailed.Load(),
		ReportDurationCount: m.reportDurationCount.Load(),
		ReportDurationNs:    m.reportDurationNs.Load(),
		Skipped:             skipped,
	}
}

// ObserveExchangeDuration records how long the downstream handler took.
func (m *InMemoryRecorder) ObserveExchangeDuration(duration time.Duration) {
	m.exchangeCount.Inc()
	m.exchangeTotalNs.Add(duration.Nanoseconds())
}

// IncReportSent counts a send attempt by outcome.
func (m *InMemoryRecorder) IncReportSent(status string) {
	if status == StatusSuccess {
		m.reportsSent.Inc()
		return
	}
	m.reportsFailed.Inc()
}

// IncReportSkipped counts an exchange that produced no send.
func (m *InMemoryRecorder) IncReportSkipped(reason string) {
	m.mu.Lock()
	m.skipped[reason]++
	m.mu.Unlock()
}

// ObserveReportDuration records collector send duration.
func (m *InMemoryRecorder) ObserveReportDuration(duration time.Duration) {
	m.reportDurationCount.Inc()
	m.reportDurationNs.Add(duration.Nanoseconds())
}
