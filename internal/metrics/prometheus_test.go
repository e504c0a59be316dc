package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheus(reg)
	require.NoError(t, err)

	rec.IncReportSent(StatusSuccess)
	rec.IncReportSent(StatusSuccess)
	rec.IncReportSent(StatusFailed)
	rec.IncReportSkipped(SkipMethod)
	rec.ObserveReportDuration(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.reportsSent.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.reportsSent.WithLabelValues(StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.reportsSkipped.WithLabelValues(SkipMethod)))

	expected := `
# HELP saaskit_ga4_reports_skipped_total Observed exchanges that produced no collector send.
# TYPE saaskit_ga4_reports_skipped_total counter
saaskit_ga4_reports_skipped_total{reason="method"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "saaskit_ga4_reports_skipped_total"))
}

func TestPrometheusRecorder_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	rec := NewInMemory()

	rec.ObserveExchangeDuration(time.Millisecond)
	rec.IncReportSent(StatusSuccess)
	rec.IncReportSent(StatusFailed)
	rec.IncReportSkipped(SkipNoEvent)
	rec.IncReportSkipped(SkipNoEvent)
	rec.ObserveReportDuration(2 * time.Millisecond)

	snap := rec.Snapshot()
	assert.Equal(t, uint64(1), snap.ExchangeCount)
	assert.Equal(t, time.Millisecond.Nanoseconds(), snap.ExchangeTotalNs)
	assert.Equal(t, uint64(1), snap.ReportsSent)
	assert.Equal(t, uint64(1), snap.ReportsFailed)
	assert.Equal(t, uint64(2), snap.Skipped[SkipNoEvent])
	assert.Equal(t, uint64(1), snap.ReportDurationCount)
}
