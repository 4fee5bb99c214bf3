// Package logging is the diagnostics logger of the facility itself: flush
// failures, truncated lines and lifecycle events go here, never into a
// session file. It wraps charmbracelet/log behind a small interface that
// is easy to replace in tests.
package logging

import "strings"

// Level represents diagnostics severity levels, ordered from most verbose
// (Debug) to least verbose (Error).
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for lifecycle events such as session rotation.
	LevelInfo
	// LevelWarn is for degraded operation, e.g. truncated lines.
	LevelWarn
	// LevelError is for failed flushes and writes.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
// Unrecognized strings default to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
