// Package analytics classifies observed HTTP exchanges and reports them to
// the GA4 collector without holding up the client response.
package analytics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/saaskit/saaskit/internal/ga4"
)

// Failure is the value a downstream handler panicked with.
type Failure struct {
	Value any
}

// String renders any panic value, including nil and values without an
// Error or String method. It never panics.
func (f *Failure) String() string {
	if f == nil {
		return ""
	}
	return Describe(f.Value)
}

// Describe stringifies v for an exception description.
func Describe(v any) string {
	if err, ok := v.(error); ok && err != nil {
		return safeSprint(err)
	}
	return safeSprint(v)
}

func safeSprint(v any) (s string) {
	// fmt already recovers from panicking Error and String methods; this
	// covers anything it lets through.
	defer func() {
		if rvr := recover(); rvr != nil {
			s = fmt.Sprintf("%T", v)
		}
	}()
	return fmt.Sprint(v)
}

// Exchange is one observed request/response pair. It holds copies only
// and is safe to read after the handler returned.
type Exchange struct {
	Request  ga4.Request
	Response ga4.Response
	Conn     ga4.Conn
	Err      *Failure
	Start    time.Time
	Elapsed  time.Duration
}

// NewExchange captures r and resp. failure is nil when the downstream
// handler completed normally.
func NewExchange(r *http.Request, resp ga4.Response, start time.Time, failure *Failure) *Exchange {
	return &Exchange{
		Request:  ga4.RequestFrom(r),
		Response: resp,
		Conn:     ga4.Conn{RemoteAddr: r.RemoteAddr},
		Err:      failure,
		Start:    start,
		Elapsed:  time.Since(start),
	}
}

// Failed reports whether the downstream handler panicked.
func (e *Exchange) Failed() bool {
	return e.Err != nil
}
