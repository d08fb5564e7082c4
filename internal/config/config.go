// Package config loads and validates the planner's configuration: provider
// resolution, agent retry presets, and logging options. Configuration is
// read through viper so YAML, TOML, and JSON sources and environment
// overrides are all accepted uniformly.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete planner configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ProvidersConfig resolves which `<type>.<name>` provider string backs each
// role. Planner, Coach, and Player each fall back to DefaultProvider when
// unset.
type ProvidersConfig struct {
	// DefaultProvider is used for any role without an explicit override,
	// in the form "<type>.<name>" (e.g. "anthropic.claude-sonnet").
	DefaultProvider string `mapstructure:"default_provider"`
	// Planner overrides the provider used for requirements refinement,
	// summarisation, and commit-message generation.
	Planner string `mapstructure:"planner"`
	// Coach overrides the provider used for the coach role in the
	// implement-phase inner loop.
	Coach string `mapstructure:"coach"`
	// Player overrides the provider used for the player role.
	Player string `mapstructure:"player"`
}

// AgentConfig controls coach/player retry behavior. The planner role's
// retry preset is compiled in (see internal/orchestrator/retry) rather than
// read from here; only coach and player presets consult these fields.
type AgentConfig struct {
	// MaxRetryAttempts bounds coach/player retries in planning mode.
	MaxRetryAttempts int `mapstructure:"max_retry_attempts"`
	// AutonomousMaxRetryAttempts applies to autonomous (non-planning) mode
	// and is not consulted by the planner state machine.
	AutonomousMaxRetryAttempts int `mapstructure:"autonomous_max_retry_attempts"`
}

// LoggingConfig controls debug logging behavior.
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true).
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info").
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10).
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3).
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Providers: ProvidersConfig{},
		Agent: AgentConfig{
			MaxRetryAttempts:           3,
			AutonomousMaxRetryAttempts: 6,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("agent.max_retry_attempts", defaults.Agent.MaxRetryAttempts)
	viper.SetDefault("agent.autonomous_max_retry_attempts", defaults.Agent.AutonomousMaxRetryAttempts)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it.
// It first checks for the deprecated flat [providers] shape and returns
// ErrOldConfigFormat with a corrected example if found.
func Load() (*Config, error) {
	if err := checkOldProvidersFormat(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults if
// loading or validation fails.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ResolveProvider returns the `<type>.<name>` provider string for the given
// role, falling back to DefaultProvider. ok is false if neither resolves.
func (c *Config) ResolveProvider(role string) (provider string, ok bool) {
	var override string
	switch strings.ToLower(role) {
	case "planner":
		override = c.Providers.Planner
	case "coach":
		override = c.Providers.Coach
	case "player":
		override = c.Providers.Player
	}

	if override != "" {
		return override, true
	}
	if c.Providers.DefaultProvider != "" {
		return c.Providers.DefaultProvider, true
	}
	return "", false
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "g3planner")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".g3planner"
	}
	return filepath.Join(home, ".config", "g3planner")
}

// ConfigFile returns the path to the config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
