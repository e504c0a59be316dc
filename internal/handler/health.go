package handler

import (
	"net/http"
)

// AnalyticsStatus reports whether analytics reporting is configured.
type AnalyticsStatus interface {
	Configured() bool
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	analytics      AnalyticsStatus
	billingEnabled bool
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for analytics if reporting is not wired.
func NewHealthHandler(analytics AnalyticsStatus, billingEnabled bool) *HealthHandler {
	return &HealthHandler{
		analytics:      analytics,
		billingEnabled: billingEnabled,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint.
// It returns 200 if the server is running.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint. Optional integrations are listed
// but never make the service unready: the app serves pages without them.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"ga4":     "not configured",
		"billing": "not configured",
	}

	if h.analytics != nil {
		if h.analytics.Configured() {
			checks["ga4"] = "ok"
		} else {
			checks["ga4"] = "disabled"
		}
	}
	if h.billingEnabled {
		checks["billing"] = "ok"
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}
