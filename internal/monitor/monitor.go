// Package monitor runs the capacity watch loop: probe the provider on an
// interval, and when matching units cross the configured threshold, drive a
// scaling operation through costing, payment, spec calculation and the
// provider resize call.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fakelit/scalewatch/internal/clock"
	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/errors"
	"github.com/fakelit/scalewatch/internal/event"
	"github.com/fakelit/scalewatch/internal/history"
	"github.com/fakelit/scalewatch/internal/logging"
	"github.com/fakelit/scalewatch/internal/metrics"
	"github.com/fakelit/scalewatch/internal/payment"
	"github.com/fakelit/scalewatch/internal/pricing"
	"github.com/fakelit/scalewatch/internal/probe"
	"github.com/fakelit/scalewatch/internal/scaler"
	"github.com/fakelit/scalewatch/internal/sizing"
)

// Phase names for the scaling state machine.
const (
	PhaseIdle      = "idle"
	PhaseTriggered = "triggered"
	PhaseCosting   = "costing"
	PhasePaying    = "paying"
	PhaseSpeccing  = "speccing"
	PhaseScaling   = "scaling"
	PhaseCompleted = "completed"
	PhaseFailed    = "failed"
)

// CostCalculator produces the cost of moving between unit limits.
type CostCalculator interface {
	Calculate(current, target int) (pricing.Cost, error)
}

// SpecCalculator maps a unit count to server resources.
type SpecCalculator interface {
	Required(targetUnits int) sizing.ResourceSpec
}

// ScaleRunner executes a resize against the provider.
type ScaleRunner interface {
	Scale(ctx context.Context, spec sizing.ResourceSpec) (scaler.Result, error)
}

// Monitor owns the watch loop and the single-flight scaling pipeline.
type Monitor struct {
	cfg     *config.Config
	prober  probe.Prober
	pricer  CostCalculator
	sizer   SpecCalculator
	runner  ScaleRunner
	gateway payment.Gateway
	payLog  *payment.Log
	store   *history.Store
	alerts  *history.AlertLog
	bus     *event.Bus
	collect *metrics.Collector
	clock   clock.Clock
	logger  *logging.Logger

	mu            sync.Mutex
	inFlight      bool
	phase         string
	currentLimit  int
	triggerCount  int
	lastSample    *probe.Sample
	lastProbeAt   time.Time
	lastProbeErr  string
	lastCompleted time.Time
	manualAlerted bool
}

// Options bundles the monitor's collaborators. Gateway may be nil when
// payment is not required.
type Options struct {
	Prober  probe.Prober
	Pricer  CostCalculator
	Sizer   SpecCalculator
	Runner  ScaleRunner
	Gateway payment.Gateway
	PayLog  *payment.Log
	Store   *history.Store
	Alerts  *history.AlertLog
	Bus     *event.Bus
	Metrics *metrics.Collector
	Clock   clock.Clock
	Logger  *logging.Logger
}

// New creates a Monitor. The current unit limit is seeded from config, then
// advanced past any completed scale found in the history so a restart does
// not re-trigger an already performed operation.
func New(cfg *config.Config, opts Options) (*Monitor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	m := &Monitor{
		cfg:          cfg,
		prober:       opts.Prober,
		pricer:       opts.Pricer,
		sizer:        opts.Sizer,
		runner:       opts.Runner,
		gateway:      opts.Gateway,
		payLog:       opts.PayLog,
		store:        opts.Store,
		alerts:       opts.Alerts,
		bus:          opts.Bus,
		collect:      opts.Metrics,
		clock:        clk,
		logger:       logger,
		phase:        PhaseIdle,
		currentLimit: cfg.Scaling.CurrentLimit,
	}

	if m.store != nil {
		last, ok, err := m.store.LastCompleted()
		if err != nil {
			return nil, fmt.Errorf("loading scaling history: %w", err)
		}
		if ok {
			m.lastCompleted = last.Timestamp
			if last.TargetUnits > m.currentLimit {
				m.currentLimit = last.TargetUnits
				m.logger.Info("restored unit limit from history",
					"current_limit", m.currentLimit,
					"event_id", last.ID)
			}
		}
	}
	return m, nil
}

// Run drives the watch loop until ctx is cancelled. It writes a pidfile for
// the lifetime of the loop so a second monitor process refuses to start.
func (m *Monitor) Run(ctx context.Context) error {
	pidPath := m.cfg.Monitoring.PidPath()
	if err := writePidFile(pidPath); err != nil {
		return err
	}
	defer removePidFile(pidPath)

	m.logger.Info("monitor started",
		"server_id", m.cfg.Cloudways.ServerID,
		"app_label", m.cfg.Scaling.AppLabel,
		"threshold", m.cfg.Scaling.ScalingThreshold,
		"check_interval", m.cfg.Scaling.CheckInterval.String())

	ticker := m.clock.NewTicker(m.cfg.Scaling.CheckInterval)
	defer ticker.Stop()

	// First check runs immediately rather than one interval in.
	m.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return errors.ErrMonitorStopped
		case <-ticker.C():
			m.Check(ctx)
		}
	}
}

// Check performs one probe and triggers a scale when the threshold is
// crossed. Probe failures are logged and alerted but never fatal: the next
// tick retries.
func (m *Monitor) Check(ctx context.Context) {
	sample, err := m.prober.Probe(ctx)
	if err != nil {
		m.recordProbeFailure(err)
		return
	}

	m.mu.Lock()
	m.lastSample = &sample
	m.lastProbeAt = m.clock.Now()
	m.lastProbeErr = ""
	current := m.currentLimit
	m.mu.Unlock()

	if m.collect != nil {
		m.collect.RecordProbe(sample.TotalUnits, sample.MatchingUnits)
	}
	m.publish(event.NewProbeCompletedEvent(sample.TotalUnits, sample.MatchingUnits, m.cfg.Scaling.ScalingThreshold))
	m.logger.Debug("probe completed",
		"total_units", sample.TotalUnits,
		"matching_units", sample.MatchingUnits,
		"threshold", m.cfg.Scaling.ScalingThreshold)

	if sample.MatchingUnits < m.cfg.Scaling.ScalingThreshold {
		m.mu.Lock()
		m.manualAlerted = false
		m.mu.Unlock()
		return
	}
	if current >= m.cfg.Scaling.TargetLimit {
		m.logger.Debug("already at target limit", "current_limit", current)
		return
	}
	if cooldown, until := m.inCooldown(); cooldown {
		m.logger.Info("threshold crossed during cooldown",
			"matching_units", sample.MatchingUnits,
			"cooldown_until", until.Format(time.RFC3339))
		return
	}
	if m.cfg.Scaling.RequirePayment && !m.cfg.Scaling.AutoCharge {
		// Charging without an operator is disabled. Alert once per crossing
		// and wait for a manual scale.
		m.mu.Lock()
		alerted := m.manualAlerted
		m.manualAlerted = true
		m.mu.Unlock()
		if !alerted {
			m.alert(history.SeverityWarning, "scaling",
				fmt.Sprintf("threshold crossed (%d matching units) but auto charge is disabled, run a manual scale",
					sample.MatchingUnits), "")
		}
		return
	}

	if err := m.Trigger(ctx, false); err != nil {
		if errors.Is(err, errors.ErrScalingInFlight) {
			m.logger.Debug("scaling already in flight")
			return
		}
		m.logger.Error("scaling failed", "error", err)
	}
}

func (m *Monitor) recordProbeFailure(err error) {
	m.mu.Lock()
	m.lastProbeErr = err.Error()
	m.mu.Unlock()

	if m.collect != nil {
		m.collect.RecordProbeFailure()
	}
	m.publish(event.NewProbeFailedEvent(m.cfg.Cloudways.ServerID, err.Error()))
	m.alert(history.SeverityWarning, "probe", fmt.Sprintf("capacity probe failed: %v", err), "")
	m.logger.Warn("probe failed", "error", err)
}

// inCooldown reports whether a completed scale is recent enough to suppress
// a new trigger, and when the cooldown ends.
func (m *Monitor) inCooldown() (bool, time.Time) {
	m.mu.Lock()
	last := m.lastCompleted
	m.mu.Unlock()

	if last.IsZero() || m.cfg.Scaling.Cooldown <= 0 {
		return false, time.Time{}
	}
	until := last.Add(m.cfg.Scaling.Cooldown)
	return m.clock.Now().Before(until), until
}

// Status is a point-in-time snapshot of the monitor.
type Status struct {
	Phase         string    `json:"phase"`
	InFlight      bool      `json:"in_flight"`
	CurrentLimit  int       `json:"current_limit"`
	TargetLimit   int       `json:"target_limit"`
	Threshold     int       `json:"threshold"`
	TriggerCount  int       `json:"trigger_count"`
	TotalUnits    int       `json:"total_units"`
	MatchingUnits int       `json:"matching_units"`
	LastProbeAt   time.Time `json:"last_probe_at,omitempty"`
	LastProbeErr  string    `json:"last_probe_error,omitempty"`
	LastCompleted time.Time `json:"last_completed_at,omitempty"`
}

// Status returns a snapshot of the monitor's state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Status{
		Phase:         m.phase,
		InFlight:      m.inFlight,
		CurrentLimit:  m.currentLimit,
		TargetLimit:   m.cfg.Scaling.TargetLimit,
		Threshold:     m.cfg.Scaling.ScalingThreshold,
		TriggerCount:  m.triggerCount,
		LastProbeAt:   m.lastProbeAt,
		LastProbeErr:  m.lastProbeErr,
		LastCompleted: m.lastCompleted,
	}
	if m.lastSample != nil {
		s.TotalUnits = m.lastSample.TotalUnits
		s.MatchingUnits = m.lastSample.MatchingUnits
	}
	return s
}

func (m *Monitor) publish(ev event.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}

func (m *Monitor) alert(severity, source, message, eventID string) {
	if m.alerts == nil {
		return
	}
	if err := m.alerts.Append(history.Alert{
		Timestamp: m.clock.Now(),
		Severity:  severity,
		Source:    source,
		Message:   message,
		EventID:   eventID,
	}); err != nil {
		m.logger.Error("writing alert failed", "error", err)
	}
}
