package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/atomic"

	"github.com/saaskit/saaskit/internal/ga4"
	"github.com/saaskit/saaskit/internal/metrics"
)

const (
	// MeasurementIDEnv names the environment variable holding the GA4
	// measurement id.
	MeasurementIDEnv = "GA4_MEASUREMENT_ID"

	// DefaultSendTimeout bounds a single detached collector send.
	DefaultSendTimeout = 5 * time.Second
)

// Sender delivers a report to the collector.
type Sender interface {
	Send(ctx context.Context, r *ga4.Report) error
}

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// ReporterConfig holds Reporter dependencies.
type ReporterConfig struct {
	Sender      Sender
	Logger      *slog.Logger
	Metrics     metrics.Recorder
	Lookup      LookupFunc
	SendTimeout time.Duration
}

// Reporter resolves the measurement id for each exchange and dispatches
// reports in the background.
type Reporter struct {
	sender      Sender
	logger      *slog.Logger
	metrics     metrics.Recorder
	lookup      LookupFunc
	sendTimeout time.Duration

	warned   atomic.Bool
	inflight atomic.Int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewReporter creates a Reporter. Lookup defaults to os.LookupEnv.
func NewReporter(cfg ReporterConfig) *Reporter {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Lookup == nil {
		cfg.Lookup = os.LookupEnv
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Reporter{
		sender:      cfg.Sender,
		logger:      cfg.Logger.With("component", "analytics.reporter"),
		metrics:     cfg.Metrics,
		lookup:      cfg.Lookup,
		sendTimeout: cfg.SendTimeout,
	}
}

// MeasurementID reads the measurement id. It is read again on every call
// because the environment may change. The first time it is found unset a
// warning is logged; later misses stay silent for the Reporter's lifetime.
func (r *Reporter) MeasurementID() (string, bool) {
	id, ok := r.lookup(MeasurementIDEnv)
	if ok && id != "" {
		return id, true
	}

	if r.warned.CompareAndSwap(false, true) {
		r.logger.Warn(MeasurementIDEnv + " environment variable not set. Google Analytics reporting disabled.")
	}
	return "", false
}

// Configured reports whether a measurement id is currently set. Unlike
// MeasurementID it never logs.
func (r *Reporter) Configured() bool {
	id, ok := r.lookup(MeasurementIDEnv)
	return ok && id != ""
}

// ResetWarning re-arms the missing configuration warning.
func (r *Reporter) ResetWarning() {
	r.warned.Store(false)
}

// InFlight returns the number of detached sends not yet finished.
func (r *Reporter) InFlight() int64 {
	return r.inflight.Load()
}

// Observe reports ex without blocking the caller. Nothing is classified
// or built when there is no measurement id to send to.
func (r *Reporter) Observe(ex *Exchange) {
	r.metrics.ObserveExchangeDuration(ex.Elapsed)

	measurementID, ok := r.MeasurementID()
	if !ok {
		r.metrics.IncReportSkipped(metrics.SkipUnconfigured)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.metrics.IncReportSkipped(metrics.SkipClosed)
		return
	}

	r.wg.Add(1)
	r.inflight.Inc()
	go r.run(measurementID, ex)
}

// run is the detached reporting task. Every failure, including a panic,
// stops here.
func (r *Reporter) run(measurementID string, ex *Exchange) {
	logger := r.logger.With(
		slog.String("report_id", ulid.Make().String()),
		slog.String("method", ex.Request.Method),
		slog.String("location", ex.Request.Location),
	)

	defer func() {
		if rvr := recover(); rvr != nil {
			logger.Error("Internal error", slog.String("error", Describe(rvr)))
			r.metrics.IncReportSent(metrics.StatusFailed)
		}
		r.inflight.Dec()
		r.wg.Done()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.sendTimeout)
	defer cancel()

	if err := r.report(ctx, logger, measurementID, ex); err != nil {
		logger.Error("Internal error", slog.Any("error", err))
	}
}

func (r *Reporter) report(ctx context.Context, logger *slog.Logger, measurementID string, ex *Exchange) error {
	sel, reason, ok := classify(ex)
	if !ok {
		r.metrics.IncReportSkipped(reason)
		return nil
	}

	report := BuildReport(measurementID, ex, sel)
	if report.Empty() {
		r.metrics.IncReportSkipped(metrics.SkipNoEvent)
		return nil
	}

	if r.sender == nil {
		return fmt.Errorf("no collector configured")
	}

	start := time.Now()
	err := r.sender.Send(ctx, report)
	r.metrics.ObserveReportDuration(time.Since(start))
	if err != nil {
		r.metrics.IncReportSent(metrics.StatusFailed)
		return fmt.Errorf("send report: %w", err)
	}

	r.metrics.IncReportSent(metrics.StatusSuccess)
	logger.Debug("report sent",
		"events", len(report.All()),
		"status_code", ex.Response.StatusCode,
		"duration_ms", float64(ex.Elapsed.Microseconds())/1000,
	)
	return nil
}

// Close stops accepting new reports and waits for in-flight sends until
// ctx is done. Sends still running after that are abandoned.
func (r *Reporter) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("analytics reporter: %d sends abandoned: %w", r.InFlight(), ctx.Err())
	}
}
