// Package payment wraps the supported payment backends (NMI, Stripe) behind
// a uniform charge/refund interface.
//
// The orchestrator calls Charge at most once per workflow attempt and never
// retries a failed charge: the next monitor tick is the retry mechanism, and
// automatic charge retries risk double-billing. Refund is a best-effort
// compensation for failures after a successful charge.
package payment

import (
	"context"

	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/errors"
	"github.com/fakelit/scalewatch/internal/pricing"
)

// Result is the outcome of a charge.
type Result struct {
	Success       bool    `json:"success"`
	Gateway       string  `json:"gateway"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	// Raw is the provider's response, kept verbatim for dispute resolution.
	Raw string `json:"raw,omitempty"`
}

// RefundResult is the outcome of a refund attempt.
type RefundResult struct {
	Success       bool   `json:"success"`
	Gateway       string `json:"gateway"`
	TransactionID string `json:"transaction_id"`
	RefundID      string `json:"refund_id,omitempty"`
	Raw           string `json:"raw,omitempty"`
}

// Gateway is the uniform payment backend interface.
type Gateway interface {
	// Name returns the gateway identifier ("nmi" or "stripe").
	Name() string

	// Charge bills the configured customer for the given cost. A declined or
	// failed charge returns an error; the caller treats it as workflow-fatal
	// for the attempt.
	Charge(ctx context.Context, cost pricing.Cost, description string) (Result, error)

	// Refund reverses a prior charge by transaction ID. Failure to refund is
	// logged by the caller, not retried.
	Refund(ctx context.Context, transactionID, reason string) (RefundResult, error)
}

// New selects and builds the configured gateway.
func New(cfg *config.Config) (Gateway, error) {
	name := cfg.Gateway()
	gw, ok := cfg.GatewayConfig(name)
	if !ok {
		return nil, errors.NewPaymentError("select gateway", errors.ErrGatewayUnknown).WithGateway(name)
	}
	if !gw.Enabled {
		return nil, errors.NewPaymentError("select gateway", errors.ErrGatewayDisabled).WithGateway(name)
	}

	switch name {
	case config.GatewayNMI:
		return NewNMI(gw.Credentials), nil
	case config.GatewayStripe:
		return NewStripe(gw.Credentials), nil
	default:
		return nil, errors.NewPaymentError("select gateway", errors.ErrGatewayUnknown).WithGateway(name)
	}
}
