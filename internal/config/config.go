package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/planpilot/planpilot/internal/errors"
	"github.com/planpilot/planpilot/internal/plan"
)

// DefaultPath is where the project configuration lives
const DefaultPath = ".planpilot/config.yaml"

// DefaultSyncMapPath is where the CLI persists sync maps unless configured
const DefaultSyncMapPath = ".planpilot/sync-map.json"

// Config is the project configuration for a sync run
type Config struct {
	// Target names the registered provider adapter to sync into
	Target string `yaml:"target"`

	// TargetOptions are adapter-specific settings passed to the factory
	TargetOptions map[string]string `yaml:"target_options,omitempty"`

	// Plan describes where the plan files live
	Plan plan.Paths `yaml:"plan"`

	// DiscoveryLabel is the label created items carry and discovery
	// filters on
	DiscoveryLabel string `yaml:"discovery_label,omitempty"`

	// Labels are extra labels applied to every created item
	Labels []string `yaml:"labels,omitempty"`

	// Concurrency bounds in-flight provider calls; 1 means sequential
	Concurrency int `yaml:"concurrency,omitempty"`

	// SyncMapPath is where the CLI persists the resulting sync map
	SyncMapPath string `yaml:"sync_map_path,omitempty"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level,omitempty"`

	// LogFormat is json or text
	LogFormat string `yaml:"log_format,omitempty"`
}

// Default returns the configuration defaults applied before file values
func Default() *Config {
	return &Config{
		Target:         "memory",
		DiscoveryLabel: "planpilot",
		Concurrency:    1,
		SyncMapPath:    DefaultSyncMapPath,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads and validates the configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeConfigNotFound, fmt.Sprintf("configuration not found: %s", path)).
				WithSuggestion("Create a .planpilot/config.yaml with a target and plan paths")
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read configuration %s", path), err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("parse configuration %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("configuration %s is invalid", path), err)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("target must be set")
	}
	if err := c.Plan.Validate(); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.DiscoveryLabel == "" {
		return fmt.Errorf("discovery_label must not be empty")
	}
	return nil
}
