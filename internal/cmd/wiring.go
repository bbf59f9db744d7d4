package cmd

import (
	"fmt"

	"github.com/fakelit/scalewatch/internal/clock"
	"github.com/fakelit/scalewatch/internal/cloudways"
	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/event"
	"github.com/fakelit/scalewatch/internal/history"
	"github.com/fakelit/scalewatch/internal/logging"
	"github.com/fakelit/scalewatch/internal/metrics"
	"github.com/fakelit/scalewatch/internal/monitor"
	"github.com/fakelit/scalewatch/internal/payment"
	"github.com/fakelit/scalewatch/internal/pricing"
	"github.com/fakelit/scalewatch/internal/probe"
	"github.com/fakelit/scalewatch/internal/scaler"
	"github.com/fakelit/scalewatch/internal/sizing"
)

// runtime bundles the monitor with the resources that must be closed when
// the process exits.
type runtime struct {
	monitor *monitor.Monitor
	logger  *logging.Logger
	metrics *metrics.Collector
}

func (r *runtime) Close() {
	if r.logger != nil {
		_ = r.logger.Close()
	}
}

// loadConfig reads and validates the configuration, including credentials.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if errs := cfg.ValidateCredentials(); len(errs) > 0 {
		return nil, config.ValidationErrors(errs)
	}
	return cfg, nil
}

// buildMonitor wires the full pipeline from configuration.
func buildMonitor(cfg *config.Config) (*runtime, error) {
	logger, err := logging.NewLogger(cfg.Monitoring.LogPath(), cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	var cwOpts []cloudways.Option
	if cfg.Cloudways.BaseURL != "" {
		cwOpts = append(cwOpts, cloudways.WithBaseURL(cfg.Cloudways.BaseURL))
	}
	client, err := cloudways.NewClient(cfg.Cloudways.Email, cfg.Cloudways.APIKey, cwOpts...)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("creating cloudways client: %w", err)
	}

	gwName := cfg.Gateway()
	gwCfg, ok := cfg.GatewayConfig(gwName)
	if !ok {
		_ = logger.Close()
		return nil, fmt.Errorf("unknown payment gateway %q", gwName)
	}

	// With payment disabled the workflow proceeds as if a zero-cost charge
	// succeeded, so no gateway is built and the cost calculator is zeroed.
	var gateway payment.Gateway
	pricer := pricing.Zero()
	if cfg.Scaling.RequirePayment {
		gateway, err = payment.New(cfg)
		if err != nil {
			_ = logger.Close()
			return nil, err
		}
		pricer = pricing.NewCalculator(gwCfg.Pricing)
	}

	clk := clock.New()
	collector := metrics.NewCollector()
	bus := event.NewBus()
	subscribeLogging(bus, logger)

	executor := scaler.NewExecutor(client, scaler.Config{
		ServerID:        cfg.Cloudways.ServerID,
		MaxRetries:      cfg.Scaling.MaxRetries,
		RetryDelay:      cfg.Scaling.RetryDelay,
		PollInterval:    cfg.Scaling.PollInterval,
		PollMaxAttempts: cfg.Scaling.PollMaxAttempts,
	}, clk, logger)

	mon, err := monitor.New(cfg, monitor.Options{
		Prober:  probe.NewCloudwaysProber(client, cfg.Cloudways.ServerID, cfg.Scaling.AppLabel),
		Pricer:  pricer,
		Sizer:   sizing.NewCalculator(sizing.DefaultCoefficients()),
		Runner:  executor,
		Gateway: gateway,
		PayLog:  payment.NewLog(cfg.Monitoring.PaymentLogPath()),
		Store:   history.NewStore(cfg.Monitoring.HistoryPath()),
		Alerts:  history.NewAlertLog(cfg.Monitoring.AlertPath()),
		Bus:     bus,
		Metrics: collector,
		Clock:   clk,
		Logger:  logger,
	})
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	return &runtime{monitor: mon, logger: logger, metrics: collector}, nil
}

// subscribeLogging mirrors every bus event into the structured log.
func subscribeLogging(bus *event.Bus, logger *logging.Logger) {
	bus.SubscribeAll(func(ev event.Event) {
		logger.Debug("event published", "event_type", ev.EventType())
	})
}
