package analytics

import (
	"github.com/saaskit/saaskit/internal/ga4"
)

// ExceptionEvent builds the exception event for a failed exchange.
func ExceptionEvent(ex *Exchange) (ga4.Event, bool) {
	if !ex.Failed() {
		return ga4.Event{}, false
	}
	return ga4.Exception(ex.Err.String(), ga4.IsServerError(ex.Response.StatusCode)), true
}

// BuildReport assembles the report for a classified exchange. The primary
// selection is always set explicitly, so a suppressed selection removes
// the default page view. Callers must not send an empty report.
func BuildReport(measurementID string, ex *Exchange, sel ga4.Selection) *ga4.Report {
	report := ga4.NewReport(ga4.ReportParams{
		MeasurementID: measurementID,
		Request:       ex.Request,
		Response:      ex.Response,
		Conn:          ex.Conn,
	})

	report.Event = sel

	if exception, ok := ExceptionEvent(ex); ok {
		report.Events = append(report.Events, exception)
	}

	return report
}
