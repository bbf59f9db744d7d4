// Package config defines the scalewatch configuration, its defaults, and
// validation. Configuration is loaded from a JSON config file via viper, with
// SCALEWATCH_ environment variable overrides for credentials.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Gateway name constants for payment.default_gateway and
// scaling.payment_method.
const (
	GatewayNMI    = "nmi"
	GatewayStripe = "stripe"
)

// Config represents the complete scalewatch configuration
type Config struct {
	Cloudways  CloudwaysConfig  `mapstructure:"cloudways"`
	Scaling    ScalingConfig    `mapstructure:"scaling"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Payment    PaymentConfig    `mapstructure:"payment"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// CloudwaysConfig holds credentials and target server for the hosting
// provider API.
type CloudwaysConfig struct {
	// Email is the Cloudways account email used for OAuth token exchange.
	Email string `mapstructure:"email"`
	// APIKey is the Cloudways API key paired with the account email.
	APIKey string `mapstructure:"api_key"`
	// ServerID is the provider server whose app inventory is monitored and
	// whose resources are scaled.
	ServerID string `mapstructure:"server_id"`
	// BaseURL overrides the API endpoint (used in tests).
	BaseURL string `mapstructure:"base_url"`
}

// ScalingConfig controls the monitor loop and the scaling workflow.
type ScalingConfig struct {
	// CurrentLimit is the provisioned site capacity the monitor starts from.
	// It is advanced to TargetLimit after each completed scaling run.
	CurrentLimit int `mapstructure:"current_limit"`
	// TargetLimit is the capacity provisioned when the threshold is crossed.
	TargetLimit int `mapstructure:"target_limit"`
	// CheckInterval is how often the capacity prober runs.
	CheckInterval time.Duration `mapstructure:"check_interval"`
	// ScalingThreshold is the matching-unit count that triggers scaling.
	ScalingThreshold int `mapstructure:"scaling_threshold"`
	// AppLabel is the app-name predicate counted by the prober.
	AppLabel string `mapstructure:"app_label"`
	// MaxRetries bounds scale-submission retries within one workflow attempt.
	MaxRetries int `mapstructure:"max_retries"`
	// RetryDelay is the wait between scale-submission retries.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// RequirePayment gates the paying step. When false the workflow proceeds
	// as if payment succeeded with zero cost.
	RequirePayment bool `mapstructure:"require_payment"`
	// AutoCharge allows charging without operator confirmation.
	AutoCharge bool `mapstructure:"auto_charge"`
	// PaymentMethod selects the gateway for this workflow; empty means use
	// payment.default_gateway.
	PaymentMethod string `mapstructure:"payment_method"`
	// PollInterval is the wait between scale-completion status polls.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// PollMaxAttempts bounds scale-completion status polls (hard deadline).
	PollMaxAttempts int `mapstructure:"poll_max_attempts"`
	// Cooldown suppresses re-triggering for a period after a completed run,
	// so a probe count still at the threshold does not immediately re-fire.
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// MonitoringConfig controls persistence paths and the metrics listener.
type MonitoringConfig struct {
	// DataDir is the base directory for all persisted state. Relative file
	// paths below resolve against it.
	DataDir string `mapstructure:"data_dir"`
	// HistoryFile is the append-only scaling-history log (JSONL).
	HistoryFile string `mapstructure:"history_file"`
	// AlertFile is the append-only alerts log (JSONL).
	AlertFile string `mapstructure:"alert_file"`
	// PaymentLogFile is the append-only payments log (JSONL).
	PaymentLogFile string `mapstructure:"payment_log_file"`
	// LogFile is the structured monitor log. Empty logs to stderr.
	LogFile string `mapstructure:"log_file"`
	// PidFile records the running monitor's PID for the stop command.
	PidFile string `mapstructure:"pid_file"`
	// MetricsAddr serves prometheus metrics when non-empty (e.g. ":9090").
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// PaymentConfig selects and configures payment gateways.
type PaymentConfig struct {
	// DefaultGateway is used when scaling.payment_method is empty.
	// Options: "nmi", "stripe"
	DefaultGateway string         `mapstructure:"default_gateway"`
	Gateways       GatewaysConfig `mapstructure:"gateways"`
}

// GatewaysConfig holds per-gateway settings.
type GatewaysConfig struct {
	NMI    GatewayConfig `mapstructure:"nmi"`
	Stripe GatewayConfig `mapstructure:"stripe"`
}

// GatewayConfig configures a single payment gateway.
type GatewayConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Pricing     PricingConfig     `mapstructure:"pricing"`
}

// CredentialsConfig holds gateway credentials. These are normally supplied
// via SCALEWATCH_ environment variables (loaded from .env), not the config
// file.
type CredentialsConfig struct {
	// SecurityKey is the NMI transact.php security key.
	SecurityKey string `mapstructure:"security_key"`
	// APIKey is the Stripe secret key.
	APIKey string `mapstructure:"api_key"`
	// CustomerID identifies the stored customer/vault billed for scaling.
	CustomerID string `mapstructure:"customer_id"`
	// BaseURL overrides the gateway endpoint (used in tests).
	BaseURL string `mapstructure:"base_url"`
}

// PricingConfig holds the cost-calculator coefficients for a gateway.
// All amounts are decimal dollars.
type PricingConfig struct {
	BaseCost    float64 `mapstructure:"base_cost"`
	PerUnitCost float64 `mapstructure:"per_unit_cost"`
	ScalingFee  float64 `mapstructure:"scaling_fee"`
	Currency    string  `mapstructure:"currency"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Cloudways: CloudwaysConfig{
			BaseURL: "https://api.cloudways.com/api/v1",
		},
		Scaling: ScalingConfig{
			CurrentLimit:     50,
			TargetLimit:      150,
			CheckInterval:    5 * time.Minute,
			ScalingThreshold: 45,
			AppLabel:         "magento",
			MaxRetries:       3,
			RetryDelay:       30 * time.Second,
			RequirePayment:   true,
			AutoCharge:       true,
			PaymentMethod:    "", // Use payment.default_gateway
			PollInterval:     5 * time.Second,
			PollMaxAttempts:  60, // 5 minutes at 5s per poll
			Cooldown:         10 * time.Minute,
		},
		Monitoring: MonitoringConfig{
			DataDir:        "scalewatch-data",
			HistoryFile:    "scaling-history.jsonl",
			AlertFile:      "alerts.jsonl",
			PaymentLogFile: "payments.jsonl",
			LogFile:        "monitor.log",
			PidFile:        "monitor.pid",
			MetricsAddr:    "", // Metrics disabled by default
		},
		Payment: PaymentConfig{
			DefaultGateway: GatewayNMI,
			Gateways: GatewaysConfig{
				NMI: GatewayConfig{
					Enabled: true,
					Pricing: PricingConfig{
						BaseCost:    0,
						PerUnitCost: 2.50,
						ScalingFee:  25.00,
						Currency:    "USD",
					},
				},
				Stripe: GatewayConfig{
					Enabled: false,
					Pricing: PricingConfig{
						BaseCost:    0,
						PerUnitCost: 2.50,
						ScalingFee:  25.00,
						Currency:    "USD",
					},
				},
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Cloudways defaults
	viper.SetDefault("cloudways.base_url", defaults.Cloudways.BaseURL)

	// Scaling defaults
	viper.SetDefault("scaling.current_limit", defaults.Scaling.CurrentLimit)
	viper.SetDefault("scaling.target_limit", defaults.Scaling.TargetLimit)
	viper.SetDefault("scaling.check_interval", defaults.Scaling.CheckInterval)
	viper.SetDefault("scaling.scaling_threshold", defaults.Scaling.ScalingThreshold)
	viper.SetDefault("scaling.app_label", defaults.Scaling.AppLabel)
	viper.SetDefault("scaling.max_retries", defaults.Scaling.MaxRetries)
	viper.SetDefault("scaling.retry_delay", defaults.Scaling.RetryDelay)
	viper.SetDefault("scaling.require_payment", defaults.Scaling.RequirePayment)
	viper.SetDefault("scaling.auto_charge", defaults.Scaling.AutoCharge)
	viper.SetDefault("scaling.payment_method", defaults.Scaling.PaymentMethod)
	viper.SetDefault("scaling.poll_interval", defaults.Scaling.PollInterval)
	viper.SetDefault("scaling.poll_max_attempts", defaults.Scaling.PollMaxAttempts)
	viper.SetDefault("scaling.cooldown", defaults.Scaling.Cooldown)

	// Monitoring defaults
	viper.SetDefault("monitoring.data_dir", defaults.Monitoring.DataDir)
	viper.SetDefault("monitoring.history_file", defaults.Monitoring.HistoryFile)
	viper.SetDefault("monitoring.alert_file", defaults.Monitoring.AlertFile)
	viper.SetDefault("monitoring.payment_log_file", defaults.Monitoring.PaymentLogFile)
	viper.SetDefault("monitoring.log_file", defaults.Monitoring.LogFile)
	viper.SetDefault("monitoring.pid_file", defaults.Monitoring.PidFile)
	viper.SetDefault("monitoring.metrics_addr", defaults.Monitoring.MetricsAddr)

	// Payment defaults
	viper.SetDefault("payment.default_gateway", defaults.Payment.DefaultGateway)
	viper.SetDefault("payment.gateways.nmi.enabled", defaults.Payment.Gateways.NMI.Enabled)
	viper.SetDefault("payment.gateways.nmi.pricing.base_cost", defaults.Payment.Gateways.NMI.Pricing.BaseCost)
	viper.SetDefault("payment.gateways.nmi.pricing.per_unit_cost", defaults.Payment.Gateways.NMI.Pricing.PerUnitCost)
	viper.SetDefault("payment.gateways.nmi.pricing.scaling_fee", defaults.Payment.Gateways.NMI.Pricing.ScalingFee)
	viper.SetDefault("payment.gateways.nmi.pricing.currency", defaults.Payment.Gateways.NMI.Pricing.Currency)
	viper.SetDefault("payment.gateways.stripe.enabled", defaults.Payment.Gateways.Stripe.Enabled)
	viper.SetDefault("payment.gateways.stripe.pricing.base_cost", defaults.Payment.Gateways.Stripe.Pricing.BaseCost)
	viper.SetDefault("payment.gateways.stripe.pricing.per_unit_cost", defaults.Payment.Gateways.Stripe.Pricing.PerUnitCost)
	viper.SetDefault("payment.gateways.stripe.pricing.scaling_fee", defaults.Payment.Gateways.Stripe.Pricing.ScalingFee)
	viper.SetDefault("payment.gateways.stripe.pricing.currency", defaults.Payment.Gateways.Stripe.Pricing.Currency)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Gateway returns the gateway name selected for scaling workflows:
// scaling.payment_method when set, else payment.default_gateway.
func (c *Config) Gateway() string {
	if c.Scaling.PaymentMethod != "" {
		return c.Scaling.PaymentMethod
	}
	return c.Payment.DefaultGateway
}

// GatewayConfig returns the configuration block for the named gateway.
// The bool result is false for unrecognized names.
func (c *Config) GatewayConfig(name string) (GatewayConfig, bool) {
	switch name {
	case GatewayNMI:
		return c.Payment.Gateways.NMI, true
	case GatewayStripe:
		return c.Payment.Gateways.Stripe, true
	default:
		return GatewayConfig{}, false
	}
}

// resolvePath resolves a possibly-relative file path against the data dir.
func (c *MonitoringConfig) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

// HistoryPath returns the absolute-or-datadir-relative history log path.
func (c *MonitoringConfig) HistoryPath() string { return c.resolvePath(c.HistoryFile) }

// AlertPath returns the alerts log path.
func (c *MonitoringConfig) AlertPath() string { return c.resolvePath(c.AlertFile) }

// PaymentLogPath returns the payments log path.
func (c *MonitoringConfig) PaymentLogPath() string { return c.resolvePath(c.PaymentLogFile) }

// LogPath returns the structured log path. Empty means stderr.
func (c *MonitoringConfig) LogPath() string { return c.resolvePath(c.LogFile) }

// PidPath returns the pidfile path.
func (c *MonitoringConfig) PidPath() string { return c.resolvePath(c.PidFile) }

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scalewatch")
	}
	// Fall back to ~/.config/scalewatch
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scalewatch"
	}
	return filepath.Join(home, ".config", "scalewatch")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// ValidGateways returns the list of supported payment gateway names.
func ValidGateways() []string {
	return []string{GatewayNMI, GatewayStripe}
}
