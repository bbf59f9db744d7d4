package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/errors"
	"github.com/fakelit/scalewatch/internal/pricing"
)

func newNMITestServer(t *testing.T, response string, capture *url.Values) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if capture != nil {
			*capture = r.PostForm
		}
		w.Write([]byte(response))
	}))
}

func TestNMICharge(t *testing.T) {
	var form url.Values
	srv := newNMITestServer(t, "response=1&responsetext=SUCCESS&transactionid=txn-123", &form)
	defer srv.Close()

	gw := NewNMI(config.CredentialsConfig{
		SecurityKey: "sk-test",
		CustomerID:  "vault-9",
		BaseURL:     srv.URL,
	})

	cost := pricing.Cost{TargetUnits: 150, TotalCost: 275.00, Currency: "USD"}
	result, err := gw.Charge(context.Background(), cost, "capacity scaling")
	if err != nil {
		t.Fatalf("Charge() error = %v", err)
	}

	if !result.Success || result.TransactionID != "txn-123" {
		t.Errorf("Charge() = %+v, want success with txn-123", result)
	}
	if result.Gateway != config.GatewayNMI {
		t.Errorf("Gateway = %q, want nmi", result.Gateway)
	}
	if got := form.Get("amount"); got != "275.00" {
		t.Errorf("amount = %q, want 275.00", got)
	}
	if got := form.Get("type"); got != "sale" {
		t.Errorf("type = %q, want sale", got)
	}
	if got := form.Get("customer_vault_id"); got != "vault-9" {
		t.Errorf("customer_vault_id = %q, want vault-9", got)
	}
}

func TestNMIChargeDeclined(t *testing.T) {
	srv := newNMITestServer(t, "response=2&responsetext=DECLINED&transactionid=txn-456", nil)
	defer srv.Close()

	gw := NewNMI(config.CredentialsConfig{SecurityKey: "sk-test", BaseURL: srv.URL})

	_, err := gw.Charge(context.Background(), pricing.Cost{TotalCost: 10, Currency: "USD"}, "")
	if !errors.Is(err, errors.ErrChargeDeclined) {
		t.Fatalf("Charge() error = %v, want ErrChargeDeclined", err)
	}
	if errors.IsRetryable(err) {
		t.Error("declined charge should not be retryable")
	}
}

func TestNMIChargeTransportError(t *testing.T) {
	srv := newNMITestServer(t, "", nil)
	srv.Close() // connection refused

	gw := NewNMI(config.CredentialsConfig{SecurityKey: "sk-test", BaseURL: srv.URL})

	_, err := gw.Charge(context.Background(), pricing.Cost{TotalCost: 10, Currency: "USD"}, "")
	if err == nil {
		t.Fatal("Charge() expected error on transport failure")
	}
	var payErr *errors.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("Charge() error = %T, want *PaymentError", err)
	}
}

func TestNMIRefund(t *testing.T) {
	var form url.Values
	srv := newNMITestServer(t, "response=1&responsetext=SUCCESS&transactionid=ref-789", &form)
	defer srv.Close()

	gw := NewNMI(config.CredentialsConfig{SecurityKey: "sk-test", BaseURL: srv.URL})

	result, err := gw.Refund(context.Background(), "txn-123", "scaling failed")
	if err != nil {
		t.Fatalf("Refund() error = %v", err)
	}
	if !result.Success || result.RefundID != "ref-789" {
		t.Errorf("Refund() = %+v, want success with ref-789", result)
	}
	if got := form.Get("type"); got != "refund" {
		t.Errorf("type = %q, want refund", got)
	}
	if got := form.Get("transactionid"); got != "txn-123" {
		t.Errorf("transactionid = %q, want txn-123", got)
	}
}

func TestNMIRefundFailed(t *testing.T) {
	srv := newNMITestServer(t, "response=3&responsetext=Transaction+not+found", nil)
	defer srv.Close()

	gw := NewNMI(config.CredentialsConfig{SecurityKey: "sk-test", BaseURL: srv.URL})

	_, err := gw.Refund(context.Background(), "txn-missing", "")
	if !errors.Is(err, errors.ErrRefundFailed) {
		t.Fatalf("Refund() error = %v, want ErrRefundFailed", err)
	}
}
