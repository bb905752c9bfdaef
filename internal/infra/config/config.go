// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Chat   ChatConfig   `yaml:"chat"`
	Media  MediaConfig  `yaml:"media"`
	Admin  AdminConfig  `yaml:"admin"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Addr               string `yaml:"addr" default:":8080"`
	ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec" default:"10" validate:"gte=1,lte=120"`
}

// StoreConfig represents the session store configuration.
type StoreConfig struct {
	DSN string `yaml:"dsn" default:"engage.db"`
}

// ChatConfig represents chat stream configuration.
type ChatConfig struct {
	MaxBodyLength int `yaml:"max_body_length" default:"500" validate:"gte=1,lte=4000"`
}

// MediaConfig represents media resolver configuration.
// An empty rule list falls back to the built-in rule order.
type MediaConfig struct {
	Rules []MediaRuleConfig `yaml:"rules"`
}

// MediaRuleConfig represents a single resolver rule configuration.
type MediaRuleConfig struct {
	Type     string         `yaml:"type" validate:"required"`
	Settings map[string]any `yaml:"settings"`
}

// AdminConfig represents the administrative surface configuration.
type AdminConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive
// fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("ENGAGE_ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
	if v := os.Getenv("ENGAGE_STORE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("ENGAGE_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
