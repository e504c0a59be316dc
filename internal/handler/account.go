package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/saaskit/saaskit/internal/session"
)

// BillingPortal creates hosted billing sessions.
type BillingPortal interface {
	CreateHostedSessionURL(ctx context.Context, customerID, returnURL string) (string, error)
}

// AccountHandler serves account pages.
type AccountHandler struct {
	billing BillingPortal
	baseURL string
	logger  *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
// Pass a nil billing portal when billing is not configured.
func NewAccountHandler(billing BillingPortal, baseURL string, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		billing: billing,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Manage sends the signed-in user to the hosted billing portal.
// GET /account/manage
func (h *AccountHandler) Manage(w http.ResponseWriter, r *http.Request) {
	if h.billing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "resource not found"})
		return
	}

	user := session.UserFrom(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}
	if user.StripeCustomerID == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User does not have a Stripe customer ID"})
		return
	}

	url, err := h.billing.CreateHostedSessionURL(r.Context(), user.StripeCustomerID, h.baseURL+"/account")
	if err != nil {
		h.logger.Error("failed to create billing portal session",
			"user_id", user.ID,
			"error", err,
		)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "billing portal unavailable"})
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}
