package ga4

import (
	"net"
	"net/http"
	"strings"
)

// Request is the part of an HTTP request a report needs.
type Request struct {
	Method string
	// Location is the absolute URL of the served document.
	Location string
	Header   http.Header
}

// RequestFrom copies the reportable fields of r. The header map is
// cloned so the copy stays valid after the handler returns.
func RequestFrom(r *http.Request) Request {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}

	return Request{
		Method:   r.Method,
		Location: scheme + "://" + r.Host + r.URL.RequestURI(),
		Header:   r.Header.Clone(),
	}
}

// Response is the part of an HTTP response a report needs.
type Response struct {
	StatusCode int
	Header     http.Header
}

// ContentType returns the response content type, or "" when absent.
func (r Response) ContentType() string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// Conn describes the client connection.
type Conn struct {
	RemoteAddr string
}

// IP returns the client IP without the port.
func (c Conn) IP() string {
	host, _, err := net.SplitHostPort(c.RemoteAddr)
	if err != nil {
		return c.RemoteAddr
	}
	return host
}

// ReportParams are the inputs of NewReport.
type ReportParams struct {
	MeasurementID string
	Request       Request
	Response      Response
	Conn          Conn
}

// Report is a set of events destined for one collector send.
type Report struct {
	MeasurementID string
	Request       Request
	Response      Response
	Conn          Conn

	// Event selects the primary event. Left untouched it implies page_view.
	Event Selection
	// Events are sent after the primary event.
	Events []Event
}

// NewReport creates a report with the default primary event.
func NewReport(p ReportParams) *Report {
	return &Report{
		MeasurementID: p.MeasurementID,
		Request:       p.Request,
		Response:      p.Response,
		Conn:          p.Conn,
		Event:         Default(),
	}
}

// All returns the primary event, if any, followed by the other events.
func (r *Report) All() []Event {
	events := make([]Event, 0, len(r.Events)+1)
	if primary, ok := r.Event.Resolve(); ok {
		events = append(events, primary)
	}
	return append(events, r.Events...)
}

// Empty reports whether there is nothing to send.
func (r *Report) Empty() bool {
	return len(r.All()) == 0
}
