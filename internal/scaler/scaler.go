// Package scaler submits server resize requests and waits for the provider
// to report them complete.
package scaler

import (
	"context"
	"time"

	"github.com/fakelit/scalewatch/internal/clock"
	"github.com/fakelit/scalewatch/internal/cloudways"
	"github.com/fakelit/scalewatch/internal/errors"
	"github.com/fakelit/scalewatch/internal/logging"
	"github.com/fakelit/scalewatch/internal/sizing"
)

// Provider is the slice of the cloudways client the executor needs.
type Provider interface {
	ScaleServer(ctx context.Context, serverID string, spec sizing.ResourceSpec) error
	ServerStatus(ctx context.Context, serverID string) (cloudways.Server, error)
}

// Result describes a completed scale operation.
type Result struct {
	Spec     sizing.ResourceSpec `json:"spec"`
	Polls    int                 `json:"polls"`
	Duration time.Duration       `json:"duration"`
}

// Config controls submission retries and completion polling.
type Config struct {
	// ServerID is the provider server being scaled.
	ServerID string
	// MaxRetries bounds re-submission after transient transport failures.
	// Provider rejections are never retried.
	MaxRetries int
	// RetryDelay is the wait between re-submissions.
	RetryDelay time.Duration
	// PollInterval is the wait between completion status polls.
	PollInterval time.Duration
	// PollMaxAttempts bounds status polls. Exceeding it is a hard deadline
	// failure, not a retry: the caller decides whether to compensate.
	PollMaxAttempts int
}

// Executor performs the two-phase scale operation: submit, then poll until
// the server reports ready.
type Executor struct {
	provider Provider
	cfg      Config
	clock    clock.Clock
	logger   *logging.Logger
}

// NewExecutor creates an Executor. A nil logger disables logging.
func NewExecutor(provider Provider, cfg Config, clk clock.Clock, logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Executor{
		provider: provider,
		cfg:      cfg,
		clock:    clk,
		logger:   logger.WithServer(cfg.ServerID),
	}
}

// Scale submits the resize request and polls until the server is ready.
// Submission rejections fail fast; transient transport failures are retried
// up to MaxRetries. Once submitted, the poll bound is a hard deadline.
func (e *Executor) Scale(ctx context.Context, spec sizing.ResourceSpec) (Result, error) {
	start := e.clock.Now()

	if err := e.submit(ctx, spec); err != nil {
		return Result{Spec: spec}, err
	}

	polls, err := e.awaitReady(ctx)
	result := Result{
		Spec:     spec,
		Polls:    polls,
		Duration: e.clock.Now().Sub(start),
	}
	if err != nil {
		return result, err
	}

	e.logger.Info("scale operation completed",
		"ram_gb", spec.RAMGB,
		"cpu_cores", spec.CPUCores,
		"storage_gb", spec.StorageGB,
		"polls", polls)
	return result, nil
}

// submit sends the scale request, retrying only transient transport errors.
func (e *Executor) submit(ctx context.Context, spec sizing.ResourceSpec) error {
	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			e.logger.Warn("retrying scale submission",
				"attempt", attempt,
				"error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.clock.After(e.cfg.RetryDelay):
			}
		}

		lastErr = e.provider.ScaleServer(ctx, e.cfg.ServerID, spec)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, errors.ErrProviderUnavailable) {
			// A rejection, not a transport blip. Fail fast.
			return errors.NewScaleError("submission rejected", lastErr).
				WithServerID(e.cfg.ServerID)
		}
	}

	return errors.NewScaleError("submission failed", lastErr).
		WithServerID(e.cfg.ServerID).
		WithRetryable(true)
}

// awaitReady polls server status until it reports ready or the attempt bound
// is exhausted. Returns the number of polls made.
func (e *Executor) awaitReady(ctx context.Context) (int, error) {
	for attempt := 1; attempt <= e.cfg.PollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return attempt - 1, ctx.Err()
		case <-e.clock.After(e.cfg.PollInterval):
		}

		srv, err := e.provider.ServerStatus(ctx, e.cfg.ServerID)
		if err != nil {
			// Transient status failures consume an attempt but do not abort:
			// the bound is the deadline.
			e.logger.Warn("status poll failed",
				"attempt", attempt,
				"error", err)
			continue
		}

		if srv.Ready() {
			return attempt, nil
		}
		e.logger.Debug("server still scaling",
			"attempt", attempt,
			"status", srv.Status)
	}

	return e.cfg.PollMaxAttempts, errors.NewScaleError("server not ready before deadline", errors.ErrScaleTimeout).
		WithServerID(e.cfg.ServerID).
		WithAttempts(e.cfg.PollMaxAttempts)
}
