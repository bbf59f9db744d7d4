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

func TestStripeCharge(t *testing.T) {
	var form url.Values
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		form = r.PostForm
		w.Write([]byte(`{"id":"pi_123","status":"succeeded"}`))
	}))
	defer srv.Close()

	gw := NewStripe(config.CredentialsConfig{
		APIKey:     "sk_test_abc",
		CustomerID: "cus_9",
		BaseURL:    srv.URL,
	})

	cost := pricing.Cost{TargetUnits: 150, TotalCost: 275.00, Currency: "USD"}
	result, err := gw.Charge(context.Background(), cost, "capacity scaling")
	if err != nil {
		t.Fatalf("Charge() error = %v", err)
	}

	if !result.Success || result.TransactionID != "pi_123" {
		t.Errorf("Charge() = %+v, want success with pi_123", result)
	}
	if auth != "Bearer sk_test_abc" {
		t.Errorf("Authorization = %q", auth)
	}
	if path != "/payment_intents" {
		t.Errorf("path = %q, want /payment_intents", path)
	}
	if got := form.Get("amount"); got != "27500" {
		t.Errorf("amount = %q, want 27500 minor units", got)
	}
	if got := form.Get("currency"); got != "usd" {
		t.Errorf("currency = %q, want usd", got)
	}
	if got := form.Get("customer"); got != "cus_9" {
		t.Errorf("customer = %q, want cus_9", got)
	}
}

func TestStripeChargeDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"pi_456","status":"requires_payment_method","last_payment_error":{"message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	gw := NewStripe(config.CredentialsConfig{APIKey: "sk", CustomerID: "cus", BaseURL: srv.URL})

	_, err := gw.Charge(context.Background(), pricing.Cost{TotalCost: 10, Currency: "USD"}, "")
	if !errors.Is(err, errors.ErrChargeDeclined) {
		t.Fatalf("Charge() error = %v, want ErrChargeDeclined", err)
	}
}

func TestStripeChargeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"No such customer","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	gw := NewStripe(config.CredentialsConfig{APIKey: "sk", CustomerID: "cus_missing", BaseURL: srv.URL})

	_, err := gw.Charge(context.Background(), pricing.Cost{TotalCost: 10, Currency: "USD"}, "")
	if err == nil {
		t.Fatal("Charge() expected error on API failure")
	}
	var payErr *errors.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("Charge() error = %T, want *PaymentError", err)
	}
}

func TestStripeRefund(t *testing.T) {
	var form url.Values
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = r.ParseForm()
		form = r.PostForm
		w.Write([]byte(`{"id":"re_789","status":"pending"}`))
	}))
	defer srv.Close()

	gw := NewStripe(config.CredentialsConfig{APIKey: "sk", BaseURL: srv.URL})

	result, err := gw.Refund(context.Background(), "pi_123", "scaling failed")
	if err != nil {
		t.Fatalf("Refund() error = %v", err)
	}
	if !result.Success || result.RefundID != "re_789" {
		t.Errorf("Refund() = %+v, want success with re_789", result)
	}
	if path != "/refunds" {
		t.Errorf("path = %q, want /refunds", path)
	}
	if got := form.Get("payment_intent"); got != "pi_123" {
		t.Errorf("payment_intent = %q, want pi_123", got)
	}
}

func TestStripeRefundFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"re_000","status":"failed"}`))
	}))
	defer srv.Close()

	gw := NewStripe(config.CredentialsConfig{APIKey: "sk", BaseURL: srv.URL})

	_, err := gw.Refund(context.Background(), "pi_123", "")
	if !errors.Is(err, errors.ErrRefundFailed) {
		t.Fatalf("Refund() error = %v, want ErrRefundFailed", err)
	}
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{275.00, 27500},
		{27.50, 2750},
		{0.1, 10},
		{19.99, 1999},
		{0, 0},
	}
	for _, tt := range tests {
		if got := toMinorUnits(tt.amount); got != tt.want {
			t.Errorf("toMinorUnits(%v) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}
