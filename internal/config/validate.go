package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrConfiguration marks configuration failures so callers can map them
// to a non-zero exit without starting a pass.
var ErrConfiguration = errors.New("configuration error")

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateArr(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateRules(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateArr() error {
	if c.Arr.BaseURL == "" {
		return fmt.Errorf("%w: arr.base_url is required (create a config with 'sweeparr config init')", ErrConfiguration)
	}
	parsed, err := url.Parse(c.Arr.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: arr.base_url %q is not an absolute URL", ErrConfiguration, c.Arr.BaseURL)
	}
	if c.Arr.APIKey == "" {
		return fmt.Errorf("%w: arr.api_key is required", ErrConfiguration)
	}
	switch c.Arr.Kind {
	case "sonarr", "radarr":
	default:
		return fmt.Errorf("%w: arr.kind must be \"sonarr\" or \"radarr\", got %q", ErrConfiguration, c.Arr.Kind)
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Name == "" {
		return fmt.Errorf("%w: store.name is required", ErrConfiguration)
	}
	if strings.ContainsAny(c.Store.Name, `/\`) {
		return fmt.Errorf("%w: store.name %q must not contain path separators", ErrConfiguration, c.Store.Name)
	}
	return nil
}

func (c *Config) validateRules() error {
	if c.Rules.StallThresholdHours <= 0 {
		return fmt.Errorf("%w: rules.stall_threshold_hours must be positive", ErrConfiguration)
	}
	if c.Rules.GracePeriodHours <= 0 {
		return fmt.Errorf("%w: rules.grace_period_hours must be positive", ErrConfiguration)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format must be \"console\" or \"json\", got %q", ErrConfiguration, c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q is not recognized", ErrConfiguration, c.Logging.Level)
	}
	return nil
}
