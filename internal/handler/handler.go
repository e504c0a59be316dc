// Package handler provides HTTP request handlers.
package handler

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
)

var homeTemplate = template.Must(template.New("home").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1><p>{{.Tagline}}</p></body>
</html>
`))

// Handler serves the application's public pages.
type Handler struct {
	title string
	home  *template.Template
}

// New creates a new Handler instance.
func New(title string) *Handler {
	if title == "" {
		title = "SaaSKit"
	}
	return &Handler{title: title, home: homeTemplate}
}

// Home renders the landing page.
// GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := h.home.Execute(&buf, map[string]string{
		"Title":   h.title,
		"Tagline": "The fastest way to ship a SaaS.",
	})
	if err != nil {
		slog.Default().Error("failed to render home page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "resource not found",
	})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
