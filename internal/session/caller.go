package session

import (
	"path/filepath"
	"runtime"

	"github.com/tungetti/sessionlog/internal/verbosity"
)

// Emitter logs a message at a fixed severity, recording the caller's
// file and line.
type Emitter func(template string, args ...any) error

// Log emits at Info with the caller's location.
func (s *Session) Log(template string, args ...any) error {
	return s.emitFrom(2, verbosity.Info, template, args)
}

// Error emits at Error with the caller's location.
func (s *Session) Error(template string, args ...any) error {
	return s.emitFrom(2, verbosity.Error, template, args)
}

// Warning emits at Warning with the caller's location.
func (s *Session) Warning(template string, args ...any) error {
	return s.emitFrom(2, verbosity.Warning, template, args)
}

// Info emits at Info with the caller's location.
func (s *Session) Info(template string, args ...any) error {
	return s.emitFrom(2, verbosity.Info, template, args)
}

// At returns an Emitter bound to sev.
func (s *Session) At(sev verbosity.Level) Emitter {
	return func(template string, args ...any) error {
		return s.emitFrom(2, sev, template, args)
	}
}

// emitFrom resolves the frame skip levels above itself.
func (s *Session) emitFrom(skip int, sev verbosity.Level, template string, args []any) error {
	file, line := "???", 0
	if _, path, l, ok := runtime.Caller(skip); ok {
		file, line = filepath.Base(path), l
	}
	return s.Emit(file, line, sev, template, args...)
}
