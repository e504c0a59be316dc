package analytics

import (
	"net/http"
	"regexp"

	"github.com/saaskit/saaskit/internal/ga4"
	"github.com/saaskit/saaskit/internal/metrics"
)

var htmlContentType = regexp.MustCompile(`text/html`)

// Classify decides whether ex is reportable and selects its primary
// event. A non-reportable exchange is a normal outcome, not an error.
func Classify(ex *Exchange) (ga4.Selection, bool) {
	sel, _, ok := classify(ex)
	return sel, ok
}

func classify(ex *Exchange) (ga4.Selection, string, bool) {
	// Page views and downloads are only ever served for these methods.
	if ex.Request.Method != http.MethodGet && ex.Request.Method != http.MethodPost {
		return ga4.Suppress(), metrics.SkipMethod, false
	}

	// Skip assets like css, images and fonts unless something failed.
	if !ga4.IsDocument(ex.Request, ex.Response) && !ex.Failed() {
		return ga4.Suppress(), metrics.SkipNotDocument, false
	}

	sel := ga4.Suppress()
	// Browsers without the client-side beacon still need a page view.
	if htmlContentType.MatchString(ex.Response.ContentType()) {
		sel = ga4.Override(ga4.PageView())
	}

	if sel.Kind() == ga4.KindSuppress && !ex.Failed() {
		return sel, metrics.SkipNoEvent, false
	}
	return sel, "", true
}
