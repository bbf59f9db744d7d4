// Package event defines event types for decoupling scalewatch components.
// The monitor publishes these as a scaling run advances; the alert sink,
// prometheus collectors, and CLI progress output subscribe without requiring
// direct dependencies on the monitor.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "scaling.started", "probe.failed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Probe Events
// -----------------------------------------------------------------------------

// ProbeFailedEvent is emitted when a capacity check fails. The monitor keeps
// its prior state and retries on the next tick; observers may want to alert.
type ProbeFailedEvent struct {
	baseEvent
	ServerID string // Provider server that was being probed
	Error    string // Failure description
}

// NewProbeFailedEvent creates a ProbeFailedEvent.
func NewProbeFailedEvent(serverID, errMsg string) ProbeFailedEvent {
	return ProbeFailedEvent{
		baseEvent: newBaseEvent("probe.failed"),
		ServerID:  serverID,
		Error:     errMsg,
	}
}

// ProbeCompletedEvent is emitted after every successful capacity check.
type ProbeCompletedEvent struct {
	baseEvent
	TotalUnits    int // All provisioned apps on the server
	MatchingUnits int // Apps matching the billable predicate
	Threshold     int // Configured trigger threshold
}

// NewProbeCompletedEvent creates a ProbeCompletedEvent.
func NewProbeCompletedEvent(totalUnits, matchingUnits, threshold int) ProbeCompletedEvent {
	return ProbeCompletedEvent{
		baseEvent:     newBaseEvent("probe.completed"),
		TotalUnits:    totalUnits,
		MatchingUnits: matchingUnits,
		Threshold:     threshold,
	}
}

// -----------------------------------------------------------------------------
// Scaling Lifecycle Events
// -----------------------------------------------------------------------------

// ScalingStartedEvent is emitted when the threshold is crossed and a scaling
// workflow begins.
type ScalingStartedEvent struct {
	baseEvent
	EventID      string // ScalingEvent ID for correlation with history
	TriggerCount int    // Matching unit count that crossed the threshold
	CurrentLimit int    // Capacity before scaling
	TargetLimit  int    // Capacity being provisioned
	Manual       bool   // True when triggered by the CLI, bypassing threshold
}

// NewScalingStartedEvent creates a ScalingStartedEvent.
func NewScalingStartedEvent(eventID string, triggerCount, currentLimit, targetLimit int, manual bool) ScalingStartedEvent {
	return ScalingStartedEvent{
		baseEvent:    newBaseEvent("scaling.started"),
		EventID:      eventID,
		TriggerCount: triggerCount,
		CurrentLimit: currentLimit,
		TargetLimit:  targetLimit,
		Manual:       manual,
	}
}

// ScalingCompletedEvent is emitted when a scaling workflow finishes
// successfully and the persisted capacity limit has advanced.
type ScalingCompletedEvent struct {
	baseEvent
	EventID     string  // ScalingEvent ID for correlation with history
	NewLimit    int     // Capacity after scaling
	TotalCost   float64 // Amount charged for the run (0 if payment disabled)
	Gateway     string  // Gateway used, empty if payment disabled
	DurationStr string  // Wall-clock duration of the workflow
}

// NewScalingCompletedEvent creates a ScalingCompletedEvent.
func NewScalingCompletedEvent(eventID string, newLimit int, totalCost float64, gateway, duration string) ScalingCompletedEvent {
	return ScalingCompletedEvent{
		baseEvent:   newBaseEvent("scaling.completed"),
		EventID:     eventID,
		NewLimit:    newLimit,
		TotalCost:   totalCost,
		Gateway:     gateway,
		DurationStr: duration,
	}
}

// ScalingFailedEvent is emitted when any step of the workflow fails.
type ScalingFailedEvent struct {
	baseEvent
	EventID string // ScalingEvent ID for correlation with history
	Step    string // Workflow phase that failed (costing, paying, scaling, ...)
	Error   string // Failure description
}

// NewScalingFailedEvent creates a ScalingFailedEvent.
func NewScalingFailedEvent(eventID, step, errMsg string) ScalingFailedEvent {
	return ScalingFailedEvent{
		baseEvent: newBaseEvent("scaling.failed"),
		EventID:   eventID,
		Step:      step,
		Error:     errMsg,
	}
}

// -----------------------------------------------------------------------------
// Payment Events
// -----------------------------------------------------------------------------

// PaymentChargedEvent is emitted after a successful charge.
type PaymentChargedEvent struct {
	baseEvent
	EventID       string  // ScalingEvent ID for correlation with history
	Gateway       string  // Gateway that processed the charge
	TransactionID string  // Provider transaction ID
	Amount        float64 // Amount charged in configured currency
}

// NewPaymentChargedEvent creates a PaymentChargedEvent.
func NewPaymentChargedEvent(eventID, gateway, transactionID string, amount float64) PaymentChargedEvent {
	return PaymentChargedEvent{
		baseEvent:     newBaseEvent("payment.charged"),
		EventID:       eventID,
		Gateway:       gateway,
		TransactionID: transactionID,
		Amount:        amount,
	}
}

// RefundIssuedEvent is emitted after a compensating refund attempt.
// Success is best-effort: a failed refund is logged and alerted, not retried.
type RefundIssuedEvent struct {
	baseEvent
	EventID       string // ScalingEvent ID for correlation with history
	Gateway       string // Gateway the refund was issued against
	TransactionID string // Original charge transaction ID
	Success       bool   // Whether the gateway accepted the refund
	Reason        string // Why the refund was issued
}

// NewRefundIssuedEvent creates a RefundIssuedEvent.
func NewRefundIssuedEvent(eventID, gateway, transactionID string, success bool, reason string) RefundIssuedEvent {
	return RefundIssuedEvent{
		baseEvent:     newBaseEvent("payment.refunded"),
		EventID:       eventID,
		Gateway:       gateway,
		TransactionID: transactionID,
		Success:       success,
		Reason:        reason,
	}
}
