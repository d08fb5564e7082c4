package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/forgeplan/g3planner/internal/prompts"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // The config field path (e.g., "agent.max_retry_attempts")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
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

// ValidLogLevels returns the list of valid log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	errs = append(errs, c.validateProviders()...)
	errs = append(errs, c.validateAgent()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

// providerRefPattern matches a "<type>.<name>" provider reference such as
// "anthropic.claude-sonnet".
func isValidProviderRef(ref string) bool {
	parts := strings.SplitN(ref, ".", 2)
	if len(parts) != 2 {
		return false
	}
	return parts[0] != "" && parts[1] != ""
}

func (c *Config) validateProviders() []ValidationError {
	var errs []ValidationError

	refs := map[string]string{
		"providers.default_provider": c.Providers.DefaultProvider,
		"providers.planner":          c.Providers.Planner,
		"providers.coach":            c.Providers.Coach,
		"providers.player":           c.Providers.Player,
	}
	for field, ref := range refs {
		if ref == "" {
			continue
		}
		if !isValidProviderRef(ref) {
			errs = append(errs, ValidationError{
				Field:   field,
				Value:   ref,
				Message: `must be in the form "<type>.<name>"`,
			})
		}
	}

	if _, ok := c.ResolveProvider("planner"); !ok {
		errs = append(errs, ValidationError{
			Field:   "providers",
			Value:   nil,
			Message: "no provider resolves for role planner: set providers.default_provider or providers.planner",
		})
	}

	return errs
}

func (c *Config) validateAgent() []ValidationError {
	var errs []ValidationError

	if c.Agent.MaxRetryAttempts < 0 {
		errs = append(errs, ValidationError{
			Field:   "agent.max_retry_attempts",
			Value:   c.Agent.MaxRetryAttempts,
			Message: "must be non-negative",
		})
	}
	if c.Agent.AutonomousMaxRetryAttempts < 0 {
		errs = append(errs, ValidationError{
			Field:   "agent.autonomous_max_retry_attempts",
			Value:   c.Agent.AutonomousMaxRetryAttempts,
			Message: "must be non-negative",
		})
	}

	return errs
}

func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errs
}

// ErrOldConfigFormat is returned by Load when the config file uses the
// deprecated flat [providers] shape: bare "name = value" provider
// definitions with no default_provider key to select among them.
type ErrOldConfigFormat struct{}

func (ErrOldConfigFormat) Error() string {
	return prompts.OldConfigFormatError
}

// checkOldProvidersFormat inspects the raw [providers] table before typed
// unmarshaling. The old format populated this table with bare provider
// name/credential pairs and never defined default_provider, planner,
// coach, or player; presence of any other key alongside the absence of
// all four recognised keys is the old format's signature.
func checkOldProvidersFormat() error {
	sub := viper.Sub("providers")
	if sub == nil {
		return nil
	}

	keys := sub.AllSettings()
	if len(keys) == 0 {
		return nil
	}

	recognised := []string{"default_provider", "planner", "coach", "player"}
	for _, k := range recognised {
		if _, ok := keys[k]; ok {
			return nil
		}
	}

	return ErrOldConfigFormat{}
}
