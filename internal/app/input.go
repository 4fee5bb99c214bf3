package app

import (
	"strings"

	"github.com/tungetti/sessionlog/internal/verbosity"
)

var linePrefixes = map[string]verbosity.Level{
	"E:": verbosity.Error,
	"W:": verbosity.Warning,
	"I:": verbosity.Info,
}

// ParseLine splits an optional severity prefix from an input line.
// Without a prefix the line is returned unchanged with def.
func ParseLine(line string, def verbosity.Level) (verbosity.Level, string) {
	if len(line) >= 2 {
		if sev, ok := linePrefixes[strings.ToUpper(line[:2])]; ok {
			return sev, strings.TrimLeft(line[2:], " \t")
		}
	}
	return def, line
}
