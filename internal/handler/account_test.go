package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saaskit/saaskit/internal/session"
)

type stubPortal struct {
	url        string
	err        error
	customerID string
	returnURL  string
}

func (s *stubPortal) CreateHostedSessionURL(ctx context.Context, customerID, returnURL string) (string, error) {
	s.customerID = customerID
	s.returnURL = returnURL
	return s.url, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func manageRequest(user *session.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/account/manage", nil)
	if user != nil {
		req = req.WithContext(session.WithUser(req.Context(), user))
	}
	return req
}

func TestAccountHandler_Manage_Redirects(t *testing.T) {
	portal := &stubPortal{url: "https://billing.stripe.com/p/session/abc"}
	h := NewAccountHandler(portal, "https://app.example.com/", discardLogger())

	rec := httptest.NewRecorder()
	h.Manage(rec, manageRequest(&session.User{ID: "u1", StripeCustomerID: "cus_42"}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != portal.url {
		t.Errorf("Location = %s, want %s", loc, portal.url)
	}
	if portal.customerID != "cus_42" {
		t.Errorf("customer = %s, want cus_42", portal.customerID)
	}
	if portal.returnURL != "https://app.example.com/account" {
		t.Errorf("return url = %s", portal.returnURL)
	}
}

func TestAccountHandler_Manage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		portal BillingPortal
		user   *session.User
		want   int
	}{
		{"billing disabled", nil, &session.User{StripeCustomerID: "cus_1"}, http.StatusNotFound},
		{"signed out", &stubPortal{}, nil, http.StatusUnauthorized},
		{"no customer id", &stubPortal{}, &session.User{ID: "u1"}, http.StatusNotFound},
		{"provider failure", &stubPortal{err: errors.New("stripe down")}, &session.User{ID: "u1", StripeCustomerID: "cus_1"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAccountHandler(tt.portal, "https://app.example.com", discardLogger())

			rec := httptest.NewRecorder()
			h.Manage(rec, manageRequest(tt.user))

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
