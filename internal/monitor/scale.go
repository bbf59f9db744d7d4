package monitor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fakelit/scalewatch/internal/errors"
	"github.com/fakelit/scalewatch/internal/event"
	"github.com/fakelit/scalewatch/internal/history"
	"github.com/fakelit/scalewatch/internal/logging"
	"github.com/fakelit/scalewatch/internal/payment"
	"github.com/fakelit/scalewatch/internal/pricing"
)

// Trigger runs one scaling operation. Only one operation runs at a time;
// a concurrent call returns ErrScalingInFlight. The manual flag marks
// operator-initiated scales in events and history.
func (m *Monitor) Trigger(ctx context.Context, manual bool) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return errors.ErrScalingInFlight
	}
	m.inFlight = true
	m.phase = PhaseTriggered
	m.triggerCount++
	count := m.triggerCount
	current := m.currentLimit
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
	}()

	target := m.cfg.Scaling.TargetLimit
	eventID := uuid.New().String()
	logger := m.logger.WithEvent(eventID)
	start := m.clock.Now()

	logger.Info("scaling triggered",
		"manual", manual,
		"trigger_count", count,
		"current_limit", current,
		"target_limit", target)
	if m.collect != nil {
		m.collect.RecordScalingStarted()
	}
	m.publish(event.NewScalingStartedEvent(eventID, count, current, target, manual))

	entry := history.ScalingEvent{
		ID:           eventID,
		Timestamp:    start,
		Status:       history.StatusPending,
		Manual:       manual,
		ServerID:     m.cfg.Cloudways.ServerID,
		CurrentUnits: current,
		TargetUnits:  target,
	}
	m.record(entry)

	// Costing.
	m.setPhase(PhaseCosting)
	cost, err := m.pricer.Calculate(current, target)
	if err != nil {
		return m.fail(entry, PhaseCosting, err, logger)
	}
	entry.Cost = cost
	logger.Info("cost calculated",
		"additional_units", cost.AdditionalUnits,
		"total_cost", cost.TotalCost,
		"currency", cost.Currency)

	// Payment. A charge is attempted at most once: retrying a charge
	// risks double billing.
	if m.paymentRequired(cost) {
		m.setPhase(PhasePaying)
		result, err := m.charge(ctx, eventID, cost, logger)
		if err != nil {
			return m.fail(entry, PhasePaying, err, logger)
		}
		entry.Gateway = result.Gateway
		entry.TransactionID = result.TransactionID
	}

	entry.Status = history.StatusInProgress
	m.record(entry)

	// Spec calculation.
	m.setPhase(PhaseSpeccing)
	spec := m.sizer.Required(target)
	entry.Spec = &spec
	logger.Info("resource spec calculated",
		"ram_gb", spec.RAMGB,
		"cpu_cores", spec.CPUCores,
		"storage_gb", spec.StorageGB)

	// Provider resize.
	m.setPhase(PhaseScaling)
	if _, err := m.runner.Scale(ctx, spec); err != nil {
		m.compensate(ctx, &entry, logger)
		return m.fail(entry, PhaseScaling, err, logger)
	}

	// Completed.
	now := m.clock.Now()
	duration := now.Sub(start)
	entry.Status = history.StatusCompleted
	entry.CompletedAt = &now
	m.record(entry)

	m.mu.Lock()
	m.currentLimit = target
	m.lastCompleted = now
	m.phase = PhaseCompleted
	m.mu.Unlock()

	if m.collect != nil {
		m.collect.RecordScalingCompleted(duration)
	}
	m.publish(event.NewScalingCompletedEvent(eventID, target, cost.TotalCost, entry.Gateway, duration.String()))
	m.alert(history.SeverityInfo, "scaling",
		fmt.Sprintf("scaled to %d units in %s", target, duration), eventID)
	logger.Info("scaling completed",
		"new_limit", target,
		"duration", duration.String())
	return nil
}

func (m *Monitor) paymentRequired(cost pricing.Cost) bool {
	return m.cfg.Scaling.RequirePayment && cost.TotalCost > 0
}

func (m *Monitor) charge(ctx context.Context, eventID string, cost pricing.Cost, logger *logging.Logger) (payment.Result, error) {
	if m.gateway == nil {
		return payment.Result{}, errors.New("payment required but no gateway configured")
	}

	description := fmt.Sprintf("Fakelit capacity scaling to %d units", cost.TargetUnits)
	result, err := m.gateway.Charge(ctx, cost, description)

	if m.payLog != nil {
		logEntry := payment.Entry{
			Timestamp: m.clock.Now(),
			Type:      payment.EntryCharge,
			EventID:   eventID,
			Gateway:   m.gateway.Name(),
			Amount:    cost.TotalCost,
			Success:   err == nil,
		}
		if err != nil {
			logEntry.Message = err.Error()
		} else {
			logEntry.TransactionID = result.TransactionID
		}
		if logErr := m.payLog.Append(logEntry); logErr != nil {
			logger.Error("writing payment log failed", "error", logErr)
		}
	}

	if err != nil {
		m.alert(history.SeverityCritical, "payment",
			fmt.Sprintf("charge of %.2f %s declined: %v", cost.TotalCost, cost.Currency, err), eventID)
		return payment.Result{}, err
	}

	if m.collect != nil {
		m.collect.RecordCharge(cost.TotalCost)
	}
	m.publish(event.NewPaymentChargedEvent(eventID, result.Gateway, result.TransactionID, result.Amount))
	logger.Info("payment charged",
		"gateway", result.Gateway,
		"transaction_id", result.TransactionID,
		"amount", result.Amount)
	return result, nil
}

// compensate refunds the charge recorded on entry after a failed resize.
// Best effort: a failed refund is alerted for manual follow-up, never
// retried automatically.
func (m *Monitor) compensate(ctx context.Context, entry *history.ScalingEvent, logger *logging.Logger) {
	if entry.TransactionID == "" || m.gateway == nil {
		return
	}

	reason := "scaling operation failed"
	refund, err := m.gateway.Refund(ctx, entry.TransactionID, reason)

	if m.payLog != nil {
		logEntry := payment.Entry{
			Timestamp:     m.clock.Now(),
			Type:          payment.EntryRefund,
			EventID:       entry.ID,
			Gateway:       m.gateway.Name(),
			TransactionID: entry.TransactionID,
			Amount:        entry.Cost.TotalCost,
			Success:       err == nil,
		}
		if err != nil {
			logEntry.Message = err.Error()
		}
		if logErr := m.payLog.Append(logEntry); logErr != nil {
			logger.Error("writing payment log failed", "error", logErr)
		}
	}

	if err != nil {
		m.publish(event.NewRefundIssuedEvent(entry.ID, m.gateway.Name(), entry.TransactionID, false, reason))
		m.alert(history.SeverityCritical, "payment",
			fmt.Sprintf("refund of transaction %s failed, manual refund required: %v", entry.TransactionID, err), entry.ID)
		logger.Error("refund failed",
			"transaction_id", entry.TransactionID,
			"error", err)
		return
	}

	entry.Refunded = true
	entry.RefundID = refund.RefundID
	if m.collect != nil {
		m.collect.RecordRefund()
	}
	m.publish(event.NewRefundIssuedEvent(entry.ID, m.gateway.Name(), entry.TransactionID, true, reason))
	m.alert(history.SeverityWarning, "payment",
		fmt.Sprintf("charge %s refunded after failed scaling", entry.TransactionID), entry.ID)
	logger.Info("refund issued",
		"transaction_id", entry.TransactionID,
		"refund_id", refund.RefundID)
}

// fail records the terminal failed state for entry and returns err.
func (m *Monitor) fail(entry history.ScalingEvent, step string, err error, logger *logging.Logger) error {
	entry.Status = history.StatusFailed
	entry.FailedStep = step
	entry.Error = err.Error()
	m.record(entry)

	m.mu.Lock()
	m.phase = PhaseFailed
	m.mu.Unlock()

	if m.collect != nil {
		m.collect.RecordScalingFailed()
	}
	m.publish(event.NewScalingFailedEvent(entry.ID, step, err.Error()))
	m.alert(history.SeverityCritical, "scaling",
		fmt.Sprintf("scaling failed at %s: %v", step, err), entry.ID)
	logger.Error("scaling failed", "step", step, "error", err)
	return err
}

func (m *Monitor) setPhase(phase string) {
	m.mu.Lock()
	m.phase = phase
	m.mu.Unlock()
}

// record appends entry to the history store. History writes are logged on
// failure but never abort the operation.
func (m *Monitor) record(entry history.ScalingEvent) {
	if m.store == nil {
		return
	}
	if err := m.store.Append(entry); err != nil {
		m.logger.Error("writing history failed", "error", err, "event_id", entry.ID)
	}
}
