// Package billing creates hosted billing-portal sessions with Stripe.
package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// DefaultAPIURL is the Stripe API base URL.
const DefaultAPIURL = stripe.APIURL

const (
	defaultTimeout           = 10 * time.Second
	defaultMaxNetworkRetries = 2
)

// Sentinel errors for billing operations.
var (
	ErrNotConfigured = errors.New("billing is not configured")
	ErrNoCustomer    = errors.New("customer id is required")
	ErrProvider      = errors.New("billing provider error")
)

// StripePortal creates Stripe billing-portal sessions.
type StripePortal struct {
	api *client.API
}

// NewStripePortal creates a StripePortal. It returns ErrNotConfigured
// when secretKey is empty. apiURL overrides the Stripe API base URL.
func NewStripePortal(secretKey, apiURL string, httpClient *http.Client) (*StripePortal, error) {
	return newStripePortal(secretKey, apiURL, httpClient, defaultMaxNetworkRetries)
}

func newStripePortal(secretKey, apiURL string, httpClient *http.Client, retries int64) (*StripePortal, error) {
	if secretKey == "" {
		return nil, ErrNotConfigured
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(strings.TrimRight(apiURL, "/")),
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(retries),
		// Failures are returned to the caller, which logs them.
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return &StripePortal{
		api: client.New(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend}),
	}, nil
}

// CreateHostedSessionURL creates a portal session for customerID and
// returns the URL to send the customer to.
func (p *StripePortal) CreateHostedSessionURL(ctx context.Context, customerID, returnURL string) (string, error) {
	if customerID == "" {
		return "", ErrNoCustomer
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	session, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return "", fmt.Errorf("%w: %d %s", ErrProvider, stripeErr.HTTPStatusCode, stripeErr.Msg)
		}
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("%w: empty session url", ErrProvider)
	}

	return session.URL, nil
}
