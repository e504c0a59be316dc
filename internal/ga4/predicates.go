package ga4

import (
	"mime"
	"strings"
)

// IsDocument reports whether the exchange served a top-level document or
// a download. Assets such as stylesheets, images and fonts are not
// documents.
func IsDocument(req Request, resp Response) bool {
	if isAttachment(resp.Header.Get("Content-Disposition")) {
		return true
	}

	// Fetch metadata is authoritative when the browser sends it.
	if dest := req.Header.Get("Sec-Fetch-Dest"); dest != "" {
		return dest == "document"
	}

	return acceptsHTML(req.Header.Values("Accept"))
}

// IsServerError reports whether status is a 5xx code.
func IsServerError(status int) bool {
	return status >= 500 && status < 600
}

func isAttachment(disposition string) bool {
	if disposition == "" {
		return false
	}
	kind, _, err := mime.ParseMediaType(disposition)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(disposition)), "attachment")
	}
	return kind == "attachment"
}

func acceptsHTML(accept []string) bool {
	for _, value := range accept {
		for _, part := range strings.Split(value, ",") {
			mediaType, _, _ := strings.Cut(part, ";")
			if strings.EqualFold(strings.TrimSpace(mediaType), "text/html") {
				return true
			}
		}
	}
	return false
}
