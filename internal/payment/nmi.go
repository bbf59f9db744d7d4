package payment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/errors"
	"github.com/fakelit/scalewatch/internal/pricing"
)

const (
	// nmiEndpoint is the NMI Direct Post transaction endpoint.
	nmiEndpoint = "https://secure.networkmerchants.com/api/transact.php"

	// nmiTimeout is the per-request timeout.
	nmiTimeout = 30 * time.Second

	// nmiApproved is the response code for an approved transaction.
	nmiApproved = "1"
)

// NMI charges a stored customer vault through the NMI Direct Post API.
// Requests are form-encoded; responses come back URL-encoded.
type NMI struct {
	securityKey string
	customerID  string
	endpoint    string
	httpClient  *http.Client
}

// nmiSaleRequest is the transact.php sale payload.
type nmiSaleRequest struct {
	SecurityKey     string `url:"security_key"`
	Type            string `url:"type"`
	Amount          string `url:"amount"`
	Currency        string `url:"currency"`
	CustomerVaultID string `url:"customer_vault_id"`
	OrderDesc       string `url:"order_description,omitempty"`
}

// nmiRefundRequest is the transact.php refund payload.
type nmiRefundRequest struct {
	SecurityKey   string `url:"security_key"`
	Type          string `url:"type"`
	TransactionID string `url:"transactionid"`
	OrderDesc     string `url:"order_description,omitempty"`
}

// NewNMI creates an NMI gateway from credentials.
func NewNMI(creds config.CredentialsConfig) *NMI {
	endpoint := nmiEndpoint
	if creds.BaseURL != "" {
		endpoint = creds.BaseURL
	}
	return &NMI{
		securityKey: creds.SecurityKey,
		customerID:  creds.CustomerID,
		endpoint:    endpoint,
		httpClient:  &http.Client{Timeout: nmiTimeout},
	}
}

// Name returns the gateway identifier.
func (n *NMI) Name() string { return config.GatewayNMI }

// Charge runs a vault sale for the total cost.
func (n *NMI) Charge(ctx context.Context, cost pricing.Cost, description string) (Result, error) {
	sale := nmiSaleRequest{
		SecurityKey:     n.securityKey,
		Type:            "sale",
		Amount:          fmt.Sprintf("%.2f", cost.TotalCost),
		Currency:        cost.Currency,
		CustomerVaultID: n.customerID,
		OrderDesc:       description,
	}

	values, err := n.post(ctx, sale)
	if err != nil {
		return Result{}, errors.NewPaymentError("sale request failed", err).WithGateway(n.Name())
	}

	txnID := values.Get("transactionid")
	if values.Get("response") != nmiApproved {
		return Result{
				Gateway: n.Name(),
				Amount:  cost.TotalCost,
				Raw:     values.Encode(),
			}, errors.NewPaymentError(values.Get("responsetext"), errors.ErrChargeDeclined).
				WithGateway(n.Name()).WithTransactionID(txnID)
	}

	return Result{
		Success:       true,
		Gateway:       n.Name(),
		TransactionID: txnID,
		Amount:        cost.TotalCost,
		Raw:           values.Encode(),
	}, nil
}

// Refund reverses a prior sale by transaction ID.
func (n *NMI) Refund(ctx context.Context, transactionID, reason string) (RefundResult, error) {
	refund := nmiRefundRequest{
		SecurityKey:   n.securityKey,
		Type:          "refund",
		TransactionID: transactionID,
		OrderDesc:     reason,
	}

	values, err := n.post(ctx, refund)
	if err != nil {
		return RefundResult{}, errors.NewPaymentError("refund request failed", err).
			WithGateway(n.Name()).WithTransactionID(transactionID)
	}

	if values.Get("response") != nmiApproved {
		return RefundResult{
				Gateway:       n.Name(),
				TransactionID: transactionID,
				Raw:           values.Encode(),
			}, errors.NewPaymentError(values.Get("responsetext"), errors.ErrRefundFailed).
				WithGateway(n.Name()).WithTransactionID(transactionID)
	}

	return RefundResult{
		Success:       true,
		Gateway:       n.Name(),
		TransactionID: transactionID,
		RefundID:      values.Get("transactionid"),
		Raw:           values.Encode(),
	}, nil
}

// post form-encodes req, submits it, and parses the URL-encoded response.
func (n *NMI) post(ctx context.Context, payload any) (url.Values, error) {
	form, err := query.Values(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return values, nil
}
