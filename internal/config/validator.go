package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tungetti/sessionlog/internal/errors"
	"github.com/tungetti/sessionlog/internal/verbosity"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s", e.Field, e.Message)
}

// Validator validates configuration.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks cfg and returns every problem found rather than
// stopping at the first.
func (v *Validator) Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{&ValidationError{Field: "config", Message: "config is nil"}}
	}

	var errs []error

	if strings.TrimSpace(cfg.LogDir) == "" {
		errs = append(errs, &ValidationError{
			Field:   KeyLogDir,
			Message: "log directory cannot be empty",
		})
	}
	if cfg.BytesToBuffer < 0 {
		errs = append(errs, &ValidationError{
			Field:   KeyBytesToBuffer,
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.BytesToBuffer),
		})
	}
	if cfg.MaxMessageChars <= 0 {
		errs = append(errs, &ValidationError{
			Field:   KeyMaxMessageChars,
			Message: fmt.Sprintf("must be positive, got %d", cfg.MaxMessageChars),
		})
	}
	if cfg.Verbosity == nil {
		errs = append(errs, &ValidationError{
			Field:   KeyVerbosityLevel,
			Message: "verbosity policy is not set",
		})
	}

	return errs
}

// ValidateOrError validates and returns a single combined error, or nil.
func (v *Validator) ValidateOrError(cfg *Config) error {
	return combine(v.Validate(cfg), "config.Validate")
}

// IsValid returns true if the configuration is valid.
func (v *Validator) IsValid(cfg *Config) bool {
	return len(v.Validate(cfg)) == 0
}

// fromValues builds a Config from raw key/value strings. Every required key
// must be present; exactly one of VERBOSITY_LEVEL and VERBOSITY_MASK must be set.
func fromValues(values map[string]string) (*Config, []error) {
	var errs []error
	cfg := &Config{}

	known := make(map[string]bool, len(Keys))
	for _, k := range Keys {
		known[k] = true
	}
	for k := range values {
		if !known[k] {
			errs = append(errs, &ValidationError{Field: k, Message: "unknown key"})
		}
	}

	required := func(key string) (string, bool) {
		v, ok := values[key]
		if !ok {
			errs = append(errs, &ValidationError{Field: key, Message: "missing required key"})
		}
		return v, ok
	}
	integer := func(key string) (int, bool) {
		raw, ok := required(key)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, &ValidationError{Field: key, Message: fmt.Sprintf("invalid integer %q", raw)})
			return 0, false
		}
		return n, true
	}

	if dir, ok := required(KeyLogDir); ok {
		cfg.LogDir = dir
	}
	if n, ok := integer(KeyBytesToBuffer); ok {
		cfg.BytesToBuffer = n
	}
	if n, ok := integer(KeyMaxMessageChars); ok {
		cfg.MaxMessageChars = n
	}

	level, hasLevel := values[KeyVerbosityLevel]
	mask, hasMask := values[KeyVerbosityMask]
	switch {
	case hasLevel && hasMask:
		errs = append(errs, &ValidationError{
			Field:   KeyVerbosityLevel,
			Message: "cannot be combined with " + KeyVerbosityMask,
		})
	case hasLevel:
		l, err := verbosity.ParseLevel(level)
		if err != nil {
			errs = append(errs, &ValidationError{Field: KeyVerbosityLevel, Message: err.Error()})
		} else {
			cfg.Verbosity = verbosity.Threshold(l)
		}
	case hasMask:
		m, err := verbosity.ParseMask(mask)
		if err != nil {
			errs = append(errs, &ValidationError{Field: KeyVerbosityMask, Message: err.Error()})
		} else {
			cfg.Verbosity = m
		}
	default:
		errs = append(errs, &ValidationError{Field: KeyVerbosityLevel, Message: "missing required key"})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return cfg, NewValidator().Validate(cfg)
}

// toValues is the inverse of fromValues.
func toValues(cfg *Config) (map[string]string, error) {
	values := map[string]string{
		KeyLogDir:          cfg.LogDir,
		KeyBytesToBuffer:   strconv.Itoa(cfg.BytesToBuffer),
		KeyMaxMessageChars: strconv.Itoa(cfg.MaxMessageChars),
	}

	mask, ok := cfg.Verbosity.(verbosity.Mask)
	if !ok {
		return nil, errors.Newf(errors.Configuration, "cannot serialise verbosity policy %T", cfg.Verbosity).
			WithOp("config.Save")
	}
	level, isLevel := mask.Level()
	switch {
	case isLevel:
		values[KeyVerbosityLevel] = strconv.Itoa(int(level))
	case len(mask.Members()) == 0:
		values[KeyVerbosityLevel] = strconv.Itoa(int(verbosity.Off))
	default:
		names := make([]string, 0, 4)
		for _, l := range mask.Members() {
			names = append(names, l.String())
		}
		values[KeyVerbosityMask] = strings.Join(names, ",")
	}
	return values, nil
}

// ValidationErrors is every problem found in one configuration. Each
// *ValidationError stays reachable through errors.As.
type ValidationErrors []error

// Error joins the individual messages.
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap returns the individual errors.
func (v ValidationErrors) Unwrap() []error {
	return v
}

func combine(errs []error, op string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Wrap(errors.Configuration, "invalid configuration", ValidationErrors(errs)).WithOp(op)
}
