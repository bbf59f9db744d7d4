package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestProbeErrorWrapping(t *testing.T) {
	err := NewProbeError("capacity check failed", ErrProviderUnavailable).WithServerID("srv-1")

	if !Is(err, ErrProviderUnavailable) {
		t.Error("ProbeError should match its cause sentinel")
	}
	if !IsRetryable(err) {
		t.Error("probe errors are retryable")
	}
	if !strings.Contains(err.Error(), "srv-1") {
		t.Errorf("Error() = %q, want server ID included", err.Error())
	}

	var probeErr *ProbeError
	if !As(err, &probeErr) {
		t.Fatal("As() failed for *ProbeError")
	}
	if probeErr.ServerID != "srv-1" {
		t.Errorf("ServerID = %q, want srv-1", probeErr.ServerID)
	}
}

func TestPaymentErrorNotRetryable(t *testing.T) {
	err := NewPaymentError("sale declined", ErrChargeDeclined).
		WithGateway("nmi").WithTransactionID("txn-9")

	if IsRetryable(err) {
		t.Error("payment errors must never be retryable")
	}
	if !Is(err, ErrChargeDeclined) {
		t.Error("PaymentError should match ErrChargeDeclined")
	}
	msg := err.Error()
	if !strings.Contains(msg, "nmi") || !strings.Contains(msg, "txn-9") {
		t.Errorf("Error() = %q, want gateway and transaction included", msg)
	}
}

func TestScaleErrorRetryable(t *testing.T) {
	timeout := NewScaleError("status poll exhausted", ErrScaleTimeout).
		WithServerID("srv-1").WithAttempts(60)
	if IsRetryable(timeout) {
		t.Error("a poll timeout is not retryable")
	}
	if !Is(timeout, ErrScaleTimeout) {
		t.Error("ScaleError should match ErrScaleTimeout")
	}
	if !strings.Contains(timeout.Error(), "attempts=60") {
		t.Errorf("Error() = %q, want attempts included", timeout.Error())
	}

	transient := NewScaleError("submission failed", ErrProviderUnavailable).WithRetryable(true)
	if !IsRetryable(transient) {
		t.Error("WithRetryable(true) should mark the error retryable")
	}
}

func TestIsRetryablePlainError(t *testing.T) {
	if IsRetryable(stderrors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
	if IsRetryable(nil) {
		t.Error("nil is not retryable")
	}
}

func TestSentinelsDistinct(t *testing.T) {
	sentinels := []error{
		ErrProviderUnavailable,
		ErrProviderUnauthorized,
		ErrChargeDeclined,
		ErrRefundFailed,
		ErrGatewayUnknown,
		ErrGatewayDisabled,
		ErrScaleRejected,
		ErrScaleTimeout,
		ErrScalingInFlight,
		ErrInvalidRange,
		ErrMonitorStopped,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %v matches %v", a, b)
			}
		}
	}
}
