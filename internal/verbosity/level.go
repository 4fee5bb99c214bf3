// Package verbosity defines message severities and the policies that decide
// which messages are echoed to the console.
package verbosity

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is a message severity. Levels are ordered by increasing
// permissiveness: Off < Error < Warning < Info < All.
type Level int

const (
	// Off suppresses everything when used as a threshold.
	Off Level = iota
	// Error is for failures.
	Error
	// Warning is for potential problems.
	Warning
	// Info is the default severity of a message.
	Info
	// All permits everything when used as a threshold.
	All
)

// String returns the label used in rendered lines.
// Out-of-range values render as "Unknown".
func (l Level) String() string {
	switch l {
	case Off:
		return "Off"
	case Error:
		return "Error"
	case Warning:
		return "Warning"
	case Info:
		return "Info"
	case All:
		return "All"
	default:
		return "Unknown"
	}
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	return l >= Off && l <= All
}

// Levels returns every defined level in ascending order.
func Levels() []Level {
	return []Level{Off, Error, Warning, Info, All}
}

// ParseLevel converts a level name (case-insensitive) or its integer value
// 0-4 to a Level.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		l := Level(n)
		if !l.Valid() {
			return Off, fmt.Errorf("verbosity level %d out of range 0-%d", n, int(All))
		}
		return l, nil
	}

	switch strings.ToLower(s) {
	case "off":
		return Off, nil
	case "error":
		return Error, nil
	case "warning", "warn":
		return Warning, nil
	case "info":
		return Info, nil
	case "all":
		return All, nil
	default:
		return Off, fmt.Errorf("unknown verbosity level %q", s)
	}
}
