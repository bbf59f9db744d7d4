package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/errors"
	"github.com/fakelit/scalewatch/internal/pricing"
)

const (
	// stripeBaseURL is the production Stripe API endpoint.
	stripeBaseURL = "https://api.stripe.com/v1"

	// stripeTimeout is the per-request timeout.
	stripeTimeout = 30 * time.Second
)

// Stripe charges a stored customer through the Stripe PaymentIntents API.
// Stripe accepts form-encoded bodies and returns JSON.
type Stripe struct {
	apiKey     string
	customerID string
	baseURL    string
	httpClient *http.Client
}

// stripeIntentRequest creates an off-session PaymentIntent that confirms
// immediately against the customer's default payment method.
type stripeIntentRequest struct {
	Amount      int64  `url:"amount"` // Minor units (cents)
	Currency    string `url:"currency"`
	Customer    string `url:"customer"`
	Confirm     bool   `url:"confirm"`
	OffSession  bool   `url:"off_session"`
	Description string `url:"description,omitempty"`
}

// stripeRefundRequest reverses a PaymentIntent.
type stripeRefundRequest struct {
	PaymentIntent string `url:"payment_intent"`
}

// stripeIntent is the subset of the PaymentIntent resource we read.
type stripeIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// stripeRefund is the subset of the Refund resource we read.
type stripeRefund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// stripeError is Stripe's error envelope.
type stripeError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewStripe creates a Stripe gateway from credentials.
func NewStripe(creds config.CredentialsConfig) *Stripe {
	baseURL := stripeBaseURL
	if creds.BaseURL != "" {
		baseURL = strings.TrimRight(creds.BaseURL, "/")
	}
	return &Stripe{
		apiKey:     creds.APIKey,
		customerID: creds.CustomerID,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: stripeTimeout},
	}
}

// Name returns the gateway identifier.
func (s *Stripe) Name() string { return config.GatewayStripe }

// Charge creates and confirms an off-session PaymentIntent for the total
// cost.
func (s *Stripe) Charge(ctx context.Context, cost pricing.Cost, description string) (Result, error) {
	intent := stripeIntentRequest{
		Amount:      toMinorUnits(cost.TotalCost),
		Currency:    strings.ToLower(cost.Currency),
		Customer:    s.customerID,
		Confirm:     true,
		OffSession:  true,
		Description: description,
	}

	var created stripeIntent
	raw, err := s.post(ctx, "/payment_intents", intent, &created)
	if err != nil {
		return Result{Gateway: s.Name(), Amount: cost.TotalCost, Raw: raw},
			errors.NewPaymentError("payment intent failed", err).WithGateway(s.Name())
	}

	if created.Status != "succeeded" {
		msg := fmt.Sprintf("payment intent status %q", created.Status)
		if created.Error != nil && created.Error.Message != "" {
			msg = created.Error.Message
		}
		return Result{
				Gateway:       s.Name(),
				TransactionID: created.ID,
				Amount:        cost.TotalCost,
				Raw:           raw,
			}, errors.NewPaymentError(msg, errors.ErrChargeDeclined).
				WithGateway(s.Name()).WithTransactionID(created.ID)
	}

	return Result{
		Success:       true,
		Gateway:       s.Name(),
		TransactionID: created.ID,
		Amount:        cost.TotalCost,
		Raw:           raw,
	}, nil
}

// Refund reverses a PaymentIntent by ID.
func (s *Stripe) Refund(ctx context.Context, transactionID, reason string) (RefundResult, error) {
	var refund stripeRefund
	raw, err := s.post(ctx, "/refunds", stripeRefundRequest{PaymentIntent: transactionID}, &refund)
	if err != nil {
		return RefundResult{Gateway: s.Name(), TransactionID: transactionID, Raw: raw},
			errors.NewPaymentError("refund failed", err).
				WithGateway(s.Name()).WithTransactionID(transactionID)
	}

	if refund.Status != "succeeded" && refund.Status != "pending" {
		return RefundResult{
				Gateway:       s.Name(),
				TransactionID: transactionID,
				RefundID:      refund.ID,
				Raw:           raw,
			}, errors.NewPaymentError(fmt.Sprintf("refund status %q", refund.Status), errors.ErrRefundFailed).
				WithGateway(s.Name()).WithTransactionID(transactionID)
	}

	return RefundResult{
		Success:       true,
		Gateway:       s.Name(),
		TransactionID: transactionID,
		RefundID:      refund.ID,
		Raw:           raw,
	}, nil
}

// post form-encodes payload, submits it with bearer auth, and decodes the
// JSON response into v. The raw response body is returned for audit logging.
func (s *Stripe) post(ctx context.Context, path string, payload, v any) (string, error) {
	form, err := query.Values(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	raw := string(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var stripeErr stripeError
		if json.Unmarshal(body, &stripeErr) == nil && stripeErr.Error.Message != "" {
			return raw, fmt.Errorf("status %d: %s", resp.StatusCode, stripeErr.Error.Message)
		}
		return raw, fmt.Errorf("status %d: %s", resp.StatusCode, raw)
	}

	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			return raw, fmt.Errorf("decode response: %w", err)
		}
	}
	return raw, nil
}

// toMinorUnits converts decimal dollars to cents.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
