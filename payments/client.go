package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// PaymentStatus values the provider reports on a checkout session.
const (
	SessionPaid   = "paid"
	SessionUnpaid = "unpaid"
)

// SessionLineItem is one price entry in a checkout session. UnitAmount is in
// minor currency units (cents).
type SessionLineItem struct {
	ProductID  uint   `json:"product_id"`
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
}

// CheckoutSession mirrors the provider's hosted-session object. The ID is
// opaque; only the provider can authoritatively resolve PaymentStatus, so
// callers must re-fetch the session before trusting it.
type CheckoutSession struct {
	ID                string            `json:"id"`
	URL               string            `json:"url"`
	PaymentStatus     string            `json:"payment_status"`
	ClientReferenceID string            `json:"client_reference_id"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	LineItems         []SessionLineItem `json:"line_items"`
}

// Account is a connected seller account at the provider.
type Account struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
	Disabled         bool   `json:"disabled"`
	OnboardingURL    string `json:"onboarding_url,omitempty"`
}

// Subscription is a seller's recurring billing state at the provider.
type Subscription struct {
	ID               string `json:"id"`
	AccountID        string `json:"account_id"`
	Status           string `json:"status"` // active, past_due, cancelled
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

// CreateSessionRequest is the payload for a new hosted checkout session.
type CreateSessionRequest struct {
	ClientReferenceID string            `json:"client_reference_id"`
	Currency          string            `json:"currency"`
	LineItems         []SessionLineItem `json:"line_items"`
	SuccessURL        string            `json:"success_url"`
	CancelURL         string            `json:"cancel_url"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the payment provider's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewFromEnv reads PAYMENT_API_URL and PAYMENT_API_KEY. Outbound calls get an
// explicit 15s timeout so a stalled provider cannot pin request goroutines.
func NewFromEnv() (*Client, error) {
	baseURL := os.Getenv("PAYMENT_API_URL")
	apiKey := os.Getenv("PAYMENT_API_KEY")
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("payment provider configuration missing")
	}
	return New(baseURL, apiKey), nil
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateCheckoutSession requests a hosted checkout session for the given line
// items and returns the session with its redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error) {
	var sess CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", req, &sess); err != nil {
		return nil, err
	}
	if sess.URL == "" {
		return nil, fmt.Errorf("provider returned empty checkout URL")
	}
	return &sess, nil
}

// GetCheckoutSession fetches the authoritative session state. Reads are
// idempotent and safe to retry.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	var sess CheckoutSession
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+id, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// CreateAccount opens a connected seller account and returns it along with
// the hosted onboarding URL.
func (c *Client) CreateAccount(ctx context.Context, email string) (*Account, error) {
	payload := map[string]string{"email": email}
	var acct Account
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", payload, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// GetAccount fetches current onboarding state for a connected account.
func (c *Client) GetAccount(ctx context.Context, id string) (*Account, error) {
	var acct Account
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/"+id, nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// GetSubscription fetches a subscription by id.
func (c *Client) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, http.MethodGet, "/v1/subscriptions/"+id, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach payment provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("provider error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("provider error (%d): %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse provider response: %w", err)
	}
	return nil
}
