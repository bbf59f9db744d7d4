// Package errors provides centralized error definitions and error handling
// utilities for the scalewatch codebase. It defines domain-specific errors,
// error constructors with context wrapping, and classification helpers.
//
// # Error Types
//
// Domain-specific errors represent failures from specific subsystems:
//   - ProbeError: errors from the capacity prober (inventory queries)
//   - PaymentError: errors from payment gateway adapters (charge/refund)
//   - ScaleError: errors from the scale executor (submission, status polls)
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewPaymentError("charge declined", errors.ErrChargeDeclined).
//		WithGateway("nmi").WithTransactionID("txn-123")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrScaleTimeout) { ... }
//
//	var payErr *errors.PaymentError
//	if errors.As(err, &payErr) { ... }
//
//	if errors.IsRetryable(err) { ... }
//
// # Classification
//
// Errors are classified by behavior:
//   - Retryable: transient failures where the next monitor tick may succeed
//   - UserFacing: safe to print in CLI summaries (vs internal detail)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Provider-related sentinel errors
var (
	// ErrProviderUnavailable indicates the provider API could not be reached.
	// Transient: the next monitor tick or retry may succeed.
	ErrProviderUnavailable = New("provider endpoint unavailable")
	// ErrProviderUnauthorized indicates the provider rejected our credentials.
	ErrProviderUnauthorized = New("provider credentials rejected")
)

// Payment-related sentinel errors
var (
	// ErrChargeDeclined indicates the gateway declined the charge.
	ErrChargeDeclined = New("charge declined")
	// ErrRefundFailed indicates a compensating refund attempt failed.
	ErrRefundFailed = New("refund failed")
	// ErrGatewayUnknown indicates an unrecognized gateway name was configured.
	ErrGatewayUnknown = New("unknown payment gateway")
	// ErrGatewayDisabled indicates the selected gateway is disabled in config.
	ErrGatewayDisabled = New("payment gateway disabled")
)

// Scale-related sentinel errors
var (
	// ErrScaleRejected indicates the provider rejected the scale submission.
	ErrScaleRejected = New("scale request rejected")
	// ErrScaleTimeout indicates the scale operation did not complete within
	// the polling deadline.
	ErrScaleTimeout = New("scale operation timed out")
)

// Orchestration sentinel errors
var (
	// ErrScalingInFlight indicates a scaling workflow is already running.
	ErrScalingInFlight = New("scaling already in flight")
	// ErrInvalidRange indicates a target below the current capacity.
	ErrInvalidRange = New("target is below current capacity")
	// ErrMonitorStopped indicates an operation was attempted after shutdown.
	ErrMonitorStopped = New("monitor is stopped")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ProbeError represents failures while querying provider inventory.
//
// Example:
//
//	err := errors.NewProbeError("capacity check failed", errors.ErrProviderUnavailable).
//		WithServerID("srv-1")
type ProbeError struct {
	baseError
	ServerID string
}

// NewProbeError creates a new ProbeError. Probe failures are retryable by
// default: the next monitor tick is the retry mechanism.
func NewProbeError(message string, cause error) *ProbeError {
	return &ProbeError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithServerID adds the provider server ID to the error context.
func (e *ProbeError) WithServerID(id string) *ProbeError {
	e.ServerID = id
	return e
}

// Error returns the formatted error message.
func (e *ProbeError) Error() string {
	prefix := "probe error"
	if e.ServerID != "" {
		prefix = fmt.Sprintf("probe error [server=%s]", e.ServerID)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ProbeError) Is(target error) bool {
	if _, ok := target.(*ProbeError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// PaymentError represents failures from a payment gateway adapter.
//
// Charge failures are never retryable within an attempt: retrying a charge
// risks double-billing, so the workflow treats them as attempt-fatal.
//
// Example:
//
//	err := errors.NewPaymentError("sale failed", errors.ErrChargeDeclined).
//		WithGateway("stripe").WithTransactionID("pi_123")
type PaymentError struct {
	baseError
	Gateway       string
	TransactionID string
}

// NewPaymentError creates a new PaymentError.
func NewPaymentError(message string, cause error) *PaymentError {
	return &PaymentError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithGateway adds the gateway name to the error context.
func (e *PaymentError) WithGateway(gateway string) *PaymentError {
	e.Gateway = gateway
	return e
}

// WithTransactionID adds the provider transaction ID to the error context.
func (e *PaymentError) WithTransactionID(id string) *PaymentError {
	e.TransactionID = id
	return e
}

// Error returns the formatted error message.
func (e *PaymentError) Error() string {
	var parts []string
	if e.Gateway != "" {
		parts = append(parts, fmt.Sprintf("gateway=%s", e.Gateway))
	}
	if e.TransactionID != "" {
		parts = append(parts, fmt.Sprintf("txn=%s", e.TransactionID))
	}

	prefix := "payment error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("payment error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *PaymentError) Is(target error) bool {
	if _, ok := target.(*PaymentError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ScaleError represents failures from the scale executor.
//
// Example:
//
//	err := errors.NewScaleError("status poll exhausted", errors.ErrScaleTimeout).
//		WithServerID("srv-1").WithAttempts(60)
type ScaleError struct {
	baseError
	ServerID string
	Attempts int
}

// NewScaleError creates a new ScaleError.
func NewScaleError(message string, cause error) *ScaleError {
	return &ScaleError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			retryable:  false,
			userFacing: true,
		},
		Attempts: -1, // -1 indicates not set
	}
}

// WithServerID adds the provider server ID to the error context.
func (e *ScaleError) WithServerID(id string) *ScaleError {
	e.ServerID = id
	return e
}

// WithAttempts records how many status polls were made before giving up.
func (e *ScaleError) WithAttempts(n int) *ScaleError {
	e.Attempts = n
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *ScaleError) WithRetryable(r bool) *ScaleError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *ScaleError) Error() string {
	var parts []string
	if e.ServerID != "" {
		parts = append(parts, fmt.Sprintf("server=%s", e.ServerID))
	}
	if e.Attempts >= 0 {
		parts = append(parts, fmt.Sprintf("attempts=%d", e.Attempts))
	}

	prefix := "scale error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("scale error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ScaleError) Is(target error) bool {
	if _, ok := target.(*ScaleError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// classifier is implemented by errors that carry classification metadata.
type classifier interface {
	IsRetryable() bool
	IsUserFacing() bool
}

// IsRetryable reports whether the error is transient and the operation may
// succeed on a later monitor tick. Unknown errors are not retryable.
func IsRetryable(err error) bool {
	var c classifier
	if errors.As(err, &c) {
		return c.IsRetryable()
	}
	return false
}

// IsUserFacing reports whether the error message is safe to display in CLI
// output. Unknown errors are treated as internal.
func IsUserFacing(err error) bool {
	var c classifier
	if errors.As(err, &c) {
		return c.IsUserFacing()
	}
	return false
}
