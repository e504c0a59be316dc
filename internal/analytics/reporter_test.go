package analytics

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaskit/saaskit/internal/ga4"
	"github.com/saaskit/saaskit/internal/metrics"
)

type recordingSender struct {
	mu      sync.Mutex
	reports []*ga4.Report
	err     error
	panics  bool
	block   chan struct{}
}

func (s *recordingSender) Send(ctx context.Context, r *ga4.Report) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.panics {
		panic("collector exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

type envStub struct {
	mu     sync.Mutex
	values map[string]string
	reads  int
}

func (e *envStub) lookup(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reads++
	v, ok := e.values[key]
	return v, ok
}

func (e *envStub) set(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values[key] = value
}

func newTestReporter(t *testing.T, sender Sender, env *envStub) (*Reporter, *bytes.Buffer, *metrics.InMemoryRecorder) {
	t.Helper()

	var logs bytes.Buffer
	rec := metrics.NewInMemory()
	r := NewReporter(ReporterConfig{
		Sender:      sender,
		Logger:      slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Metrics:     rec,
		Lookup:      env.lookup,
		SendTimeout: time.Second,
	})
	return r, &logs, rec
}

func closeReporter(t *testing.T, r *Reporter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Close(ctx))
}

func htmlExchange() *Exchange {
	return exchange(http.MethodGet, acceptHTML, 200, htmlType, nil)
}

func TestReporter_SendsPageView(t *testing.T) {
	sender := &recordingSender{}
	env := &envStub{values: map[string]string{MeasurementIDEnv: "G-ABC"}}
	r, _, rec := newTestReporter(t, sender, env)

	r.Observe(htmlExchange())
	closeReporter(t, r)

	require.Equal(t, 1, sender.count())
	assert.Equal(t, "G-ABC", sender.reports[0].MeasurementID)
	assert.Equal(t, uint64(1), rec.Snapshot().ReportsSent)
}

func TestReporter_ReadsMeasurementIDPerExchange(t *testing.T) {
	sender := &recordingSender{}
	env := &envStub{values: map[string]string{}}
	r, _, _ := newTestReporter(t, sender, env)

	r.Observe(htmlExchange())
	env.set(MeasurementIDEnv, "G-LATE")
	r.Observe(htmlExchange())
	closeReporter(t, r)

	assert.Equal(t, 2, env.reads)
	require.Equal(t, 1, sender.count())
	assert.Equal(t, "G-LATE", sender.reports[0].MeasurementID)
}

func TestReporter_MissingConfigWarnsOnce(t *testing.T) {
	sender := &recordingSender{}
	env := &envStub{values: map[string]string{}}
	r, logs, rec := newTestReporter(t, sender, env)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Observe(htmlExchange())
		}()
	}
	wg.Wait()
	closeReporter(t, r)

	assert.Zero(t, sender.count())
	assert.Equal(t, 1, strings.Count(logs.String(), "environment variable not set"))
	assert.Equal(t, uint64(50), rec.Snapshot().Skipped[metrics.SkipUnconfigured])
}

func TestReporter_EmptyIDCountsAsUnset(t *testing.T) {
	env := &envStub{values: map[string]string{MeasurementIDEnv: ""}}
	r, logs, _ := newTestReporter(t, &recordingSender{}, env)

	id, ok := r.MeasurementID()
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.False(t, r.Configured())
	assert.Contains(t, logs.String(), "Google Analytics reporting disabled")
}

func TestReporter_ResetWarning(t *testing.T) {
	env := &envStub{values: map[string]string{}}
	r, logs, _ := newTestReporter(t, &recordingSender{}, env)

	r.MeasurementID()
	r.MeasurementID()
	r.ResetWarning()
	r.MeasurementID()

	assert.Equal(t, 2, strings.Count(logs.String(), "environment variable not set"))
}

func TestReporter_ConfiguredDoesNotWarn(t *testing.T) {
	env := &envStub{values: map[string]string{}}
	r, logs, _ := newTestReporter(t, &recordingSender{}, env)

	assert.False(t, r.Configured())
	assert.Empty(t, logs.String())
}

func TestReporter_SendFailureIsContained(t *testing.T) {
	sender := &recordingSender{err: errors.New("collector unreachable")}
	env := &envStub{values: map[string]string{MeasurementIDEnv: "G-ABC"}}
	r, logs, rec := newTestReporter(t, sender, env)

	assert.NotPanics(t, func() { r.Observe(htmlExchange()) })
	closeReporter(t, r)

	assert.Contains(t, logs.String(), "Internal error")
	assert.Contains(t, logs.String(), "collector unreachable")
	assert.Equal(t, uint64(1), rec.Snapshot().ReportsFailed)
}

func TestReporter_SenderPanicIsContained(t *testing.T) {
	sender := &recordingSender{panics: true}
	env := &envStub{values: map[string]string{MeasurementIDEnv: "G-ABC"}}
	r, logs, _ := newTestReporter(t, sender, env)

	r.Observe(htmlExchange())
	closeReporter(t, r)

	assert.Contains(t, logs.String(), "collector exploded")
	assert.Zero(t, r.InFlight())
}

func TestReporter_ObserveDoesNotWaitForSend(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	env := &envStub{values: map[string]string{MeasurementIDEnv: "G-ABC"}}
	r, _, _ := newTestReporter(t, sender, env)

	done := make(chan struct{})
	go func() {
		r.Observe(htmlExchange())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Observe blocked on the collector send")
	}
	assert.Equal(t, int64(1), r.InFlight())

	close(sender.block)
	closeReporter(t, r)
	assert.Equal(t, 1, sender.count())
}

func TestReporter_SkipsWithoutSending(t *testing.T) {
	sender := &recordingSender{}
	env := &envStub{values: map[string]string{MeasurementIDEnv: "G-ABC"}}
	r, _, rec := newTestReporter(t, sender, env)

	r.Observe(exchange(http.MethodOptions, acceptHTML, 204, nil, nil))
	r.Observe(exchange(http.MethodGet, nil, 200, htmlType, nil))
	r.Observe(exchange(http.MethodGet, acceptHTML, 200, http.Header{"Content-Type": {"image/png"}}, nil))
	closeReporter(t, r)

	assert.Zero(t, sender.count())
	skipped := rec.Snapshot().Skipped
	assert.Equal(t, uint64(1), skipped[metrics.SkipMethod])
	assert.Equal(t, uint64(1), skipped[metrics.SkipNotDocument])
	assert.Equal(t, uint64(1), skipped[metrics.SkipNoEvent])
}

func TestReporter_CloseAbandonsSlowSends(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	env := &envStub{values: map[string]string{MeasurementIDEnv: "G-ABC"}}
	r, _, rec := newTestReporter(t, sender, env)

	r.Observe(htmlExchange())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.Close(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	r.Observe(htmlExchange())
	assert.Equal(t, uint64(1), rec.Snapshot().Skipped[metrics.SkipClosed])

	close(sender.block)
}
