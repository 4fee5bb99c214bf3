// Package config loads the logger configuration. Files use either the
// line-oriented "KEY value" format or YAML, and every key can be overridden
// from the environment. Unlike most settings, nothing here falls back to a
// default: a missing key is a configuration error.
package config

import (
	"github.com/tungetti/sessionlog/internal/constants"
	"github.com/tungetti/sessionlog/internal/verbosity"
)

// Recognised configuration keys.
const (
	KeyLogDir          = "LOG_FILE_DIR"
	KeyBytesToBuffer   = "BYTES_TO_BUFFER"
	KeyMaxMessageChars = "MAX_MESSAGE_CHARS"
	KeyVerbosityLevel  = "VERBOSITY_LEVEL"
	KeyVerbosityMask   = "VERBOSITY_MASK"
)

// Keys lists every recognised key in file order.
var Keys = []string{
	KeyLogDir,
	KeyBytesToBuffer,
	KeyMaxMessageChars,
	KeyVerbosityLevel,
	KeyVerbosityMask,
}

// Config is the configuration of one log session. A session keeps its own
// copy, so changing a Config after Start has no effect on that session.
type Config struct {
	// LogDir is the directory session files are created in.
	LogDir string
	// BytesToBuffer is the flush threshold. Zero flushes after every message.
	BytesToBuffer int
	// MaxMessageChars caps a rendered line, prefix and newline included.
	MaxMessageChars int
	// Verbosity selects which messages are echoed to the console.
	Verbosity verbosity.Policy
}

// DefaultConfig returns the built-in configuration for programmatic use.
func DefaultConfig() *Config {
	return &Config{
		LogDir:          constants.DefaultLogDir,
		BytesToBuffer:   constants.DefaultBytesToBuffer,
		MaxMessageChars: constants.DefaultMaxMessageChars,
		Verbosity:       verbosity.Threshold(verbosity.Info),
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
