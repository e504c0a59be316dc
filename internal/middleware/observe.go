package middleware

import (
	"net/http"
	"time"

	"github.com/saaskit/saaskit/internal/analytics"
	"github.com/saaskit/saaskit/internal/ga4"
)

// ExchangeObserver receives every finished exchange.
// Observe must not block.
type ExchangeObserver interface {
	Observe(ex *analytics.Exchange)
}

// observedWriter passes the response through untouched and keeps a
// private copy of the headers as they were when committed.
type observedWriter struct {
	http.ResponseWriter
	status      int
	header      http.Header
	wroteHeader bool
}

func newObservedWriter(w http.ResponseWriter) *observedWriter {
	return &observedWriter{ResponseWriter: w, status: http.StatusOK}
}

func (ow *observedWriter) WriteHeader(code int) {
	if ow.wroteHeader {
		return
	}
	ow.status = code
	ow.header = ow.ResponseWriter.Header().Clone()
	ow.wroteHeader = true
	ow.ResponseWriter.WriteHeader(code)
}

func (ow *observedWriter) Write(b []byte) (int, error) {
	if !ow.wroteHeader {
		ow.WriteHeader(http.StatusOK)
	}
	return ow.ResponseWriter.Write(b)
}

// Flush forwards to the underlying writer when it supports flushing.
func (ow *observedWriter) Flush() {
	if !ow.wroteHeader {
		ow.WriteHeader(http.StatusOK)
	}
	if f, ok := ow.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (ow *observedWriter) Unwrap() http.ResponseWriter {
	return ow.ResponseWriter
}

// response returns what the client received, as a detached copy.
func (ow *observedWriter) response() ga4.Response {
	header := ow.header
	if !ow.wroteHeader {
		// Nothing written: net/http sends an implicit 200 with these headers.
		header = ow.ResponseWriter.Header().Clone()
	}
	return ga4.Response{StatusCode: ow.status, Header: header}
}

// fail sends a 500 to the client when the response has not started yet
// and returns the response to report.
func (ow *observedWriter) fail() ga4.Response {
	if !ow.wroteHeader {
		http.Error(ow, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
	return ga4.Response{
		StatusCode: http.StatusInternalServerError,
		Header:     http.Header{"Content-Type": {"text/plain; charset=utf-8"}},
	}
}

// Observe reports every exchange to observer once it has finished.
// The downstream handler is called exactly once. A panic in it turns into
// a 500 for the client, is reported as an exception, and is re-raised for
// the outer recoverer. http.ErrAbortHandler passes through unreported.
func Observe(observer ExchangeObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ow := newObservedWriter(w)

			defer func() {
				rvr := recover()
				if rvr == nil {
					observer.Observe(analytics.NewExchange(r, ow.response(), start, nil))
					return
				}
				if rvr == http.ErrAbortHandler {
					// Deliberate abort: not a failure, nothing to report.
					panic(rvr)
				}

				resp := ow.fail()
				observer.Observe(analytics.NewExchange(r, resp, start, &analytics.Failure{Value: rvr}))
				panic(rvr)
			}()

			next.ServeHTTP(ow, r)
		})
	}
}
