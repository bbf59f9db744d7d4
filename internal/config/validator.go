package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scaling.check_interval")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns all validation
// errors found. Configuration errors are fatal at startup: the process exits
// before entering the monitoring loop.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateScaling()...)
	errors = append(errors, c.validateMonitoring()...)
	errors = append(errors, c.validatePayment()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateScaling() []ValidationError {
	var errors []ValidationError
	s := c.Scaling

	if s.CurrentLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "scaling.current_limit",
			Value:   s.CurrentLimit,
			Message: "must be non-negative",
		})
	}
	if s.TargetLimit < s.CurrentLimit {
		errors = append(errors, ValidationError{
			Field:   "scaling.target_limit",
			Value:   s.TargetLimit,
			Message: fmt.Sprintf("must be at least current_limit (%d)", s.CurrentLimit),
		})
	}
	if s.CheckInterval <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scaling.check_interval",
			Value:   s.CheckInterval,
			Message: "must be positive",
		})
	}
	if s.ScalingThreshold <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scaling.scaling_threshold",
			Value:   s.ScalingThreshold,
			Message: "must be positive",
		})
	}
	if s.AppLabel == "" {
		errors = append(errors, ValidationError{
			Field:   "scaling.app_label",
			Value:   s.AppLabel,
			Message: "must not be empty",
		})
	}
	if s.MaxRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "scaling.max_retries",
			Value:   s.MaxRetries,
			Message: "must be non-negative",
		})
	}
	if s.PollInterval <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scaling.poll_interval",
			Value:   s.PollInterval,
			Message: "must be positive",
		})
	}
	if s.PollMaxAttempts <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scaling.poll_max_attempts",
			Value:   s.PollMaxAttempts,
			Message: "must be positive",
		})
	}
	if s.Cooldown < 0 {
		errors = append(errors, ValidationError{
			Field:   "scaling.cooldown",
			Value:   s.Cooldown,
			Message: "must be non-negative",
		})
	}
	if s.PaymentMethod != "" && !slices.Contains(ValidGateways(), s.PaymentMethod) {
		errors = append(errors, ValidationError{
			Field:   "scaling.payment_method",
			Value:   s.PaymentMethod,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidGateways(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateMonitoring() []ValidationError {
	var errors []ValidationError
	m := c.Monitoring

	if m.DataDir == "" {
		errors = append(errors, ValidationError{
			Field:   "monitoring.data_dir",
			Value:   m.DataDir,
			Message: "must not be empty",
		})
	}
	if m.HistoryFile == "" {
		errors = append(errors, ValidationError{
			Field:   "monitoring.history_file",
			Value:   m.HistoryFile,
			Message: "must not be empty",
		})
	}
	if m.AlertFile == "" {
		errors = append(errors, ValidationError{
			Field:   "monitoring.alert_file",
			Value:   m.AlertFile,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validatePayment() []ValidationError {
	var errors []ValidationError
	p := c.Payment

	if !slices.Contains(ValidGateways(), p.DefaultGateway) {
		errors = append(errors, ValidationError{
			Field:   "payment.default_gateway",
			Value:   p.DefaultGateway,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidGateways(), ", ")),
		})
		return errors
	}

	// When payment is required, the selected gateway must be usable.
	if c.Scaling.RequirePayment {
		name := c.Gateway()
		gw, ok := c.GatewayConfig(name)
		if !ok {
			return errors // Already reported above or via payment_method
		}
		if !gw.Enabled {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("payment.gateways.%s.enabled", name),
				Value:   gw.Enabled,
				Message: "selected gateway is disabled but scaling.require_payment is true",
			})
		}
		if gw.Pricing.PerUnitCost < 0 || gw.Pricing.BaseCost < 0 || gw.Pricing.ScalingFee < 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("payment.gateways.%s.pricing", name),
				Value:   gw.Pricing,
				Message: "pricing amounts must be non-negative",
			})
		}
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLevels, ", ")),
		})
	}

	return errors
}

// ValidateCredentials checks the credential fields needed to actually run the
// monitor. Kept separate from Validate so read-only commands (status) work
// without provider credentials.
func (c *Config) ValidateCredentials() []ValidationError {
	var errors []ValidationError

	if c.Cloudways.Email == "" {
		errors = append(errors, ValidationError{
			Field:   "cloudways.email",
			Value:   "",
			Message: "required to start monitoring",
		})
	}
	if c.Cloudways.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "cloudways.api_key",
			Value:   "",
			Message: "required to start monitoring",
		})
	}
	if c.Cloudways.ServerID == "" {
		errors = append(errors, ValidationError{
			Field:   "cloudways.server_id",
			Value:   "",
			Message: "required to start monitoring",
		})
	}

	if c.Scaling.RequirePayment {
		name := c.Gateway()
		gw, ok := c.GatewayConfig(name)
		if ok {
			switch name {
			case GatewayNMI:
				if gw.Credentials.SecurityKey == "" {
					errors = append(errors, ValidationError{
						Field:   "payment.gateways.nmi.credentials.security_key",
						Value:   "",
						Message: "required when payment is enabled",
					})
				}
			case GatewayStripe:
				if gw.Credentials.APIKey == "" {
					errors = append(errors, ValidationError{
						Field:   "payment.gateways.stripe.credentials.api_key",
						Value:   "",
						Message: "required when payment is enabled",
					})
				}
			}
			if gw.Credentials.CustomerID == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("payment.gateways.%s.credentials.customer_id", name),
					Value:   "",
					Message: "required when payment is enabled",
				})
			}
		}
	}

	return errors
}
