// Package config handles configuration loading and validation for shop.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

// DefaultBannedRoute is where the client navigates after a ban signal.
const DefaultBannedRoute = "/banned"

// Config holds the application configuration.
type Config struct {
	API         APIConfig `yaml:"api"`
	BannedRoute string    `yaml:"banned_route"`
	Currency    string    `yaml:"currency"`
	DataDir     string    `yaml:"-"` // set by caller, not from config file
}

// APIConfig configures the storefront backend connection.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://localhost:5000/api",
			Timeout:   10 * time.Second,
			UserAgent: "shop-cli",
		},
		BannedRoute: DefaultBannedRoute,
		Currency:    "USD",
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = defaults.API.UserAgent
	}
	if c.BannedRoute == "" {
		c.BannedRoute = defaults.BannedRoute
	}
	if c.Currency == "" {
		c.Currency = defaults.Currency
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("data directory cannot be empty"))
	}

	if err := validateBaseURL(c.API.BaseURL); err != nil {
		errs = errs.Append("api.base_url", err)
	}

	if c.API.Timeout < 0 {
		errs = errs.Append("api.timeout", fmt.Errorf("must not be negative"))
	}

	if len(c.BannedRoute) == 0 || c.BannedRoute[0] != '/' {
		errs = errs.Append("banned_route", fmt.Errorf("must be an absolute route starting with '/'"))
	}

	if _, err := currency.ParseISO(c.Currency); err != nil {
		errs = errs.Append("currency", fmt.Errorf("%q is not an ISO 4217 currency code", c.Currency))
	}

	return errs.ToError()
}

// CurrencyUnit returns the configured display currency, falling back to USD.
func (c *Config) CurrencyUnit() currency.Unit {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.USD
	}
	return unit
}

// SessionFile returns the path to the persisted session JSON file.
func (c *Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session.json")
}

// CartFile returns the path to the persisted cart JSON file.
func (c *Config) CartFile() string {
	return filepath.Join(c.DataDir, "cart.json")
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	return nil
}
