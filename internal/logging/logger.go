package logging

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger defines the diagnostics logging operations.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
	// WithPrefix returns a Logger that tags every message with prefix.
	WithPrefix(prefix string) Logger
	// WithFields returns a Logger that adds keyvals to every message.
	WithFields(keyvals ...interface{}) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// Options configures the logger.
type Options struct {
	Level           Level
	Output          io.Writer
	TimeFormat      string
	Prefix          string
	NoColor         bool
	ReportTimestamp bool
}

// DefaultOptions logs warnings and errors to stderr, so diagnostics never
// mix with the console echo on stdout.
func DefaultOptions() Options {
	return Options{
		Level:           LevelWarn,
		Output:          os.Stderr,
		TimeFormat:      "15:04:05",
		ReportTimestamp: true,
	}
}

// FileOptions returns options for file output: no color, full timestamp.
func FileOptions(w io.Writer) Options {
	return Options{
		Level:           LevelDebug,
		Output:          w,
		TimeFormat:      "2006-01-02 15:04:05",
		NoColor:         true,
		ReportTimestamp: true,
	}
}

// RotationOptions bounds the size of a diagnostics file.
type RotationOptions struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotationOptions keeps three 5 MB backups for two weeks.
func DefaultRotationOptions() RotationOptions {
	return RotationOptions{MaxSizeMB: 5, MaxBackups: 3, MaxAgeDays: 14}
}

type logger struct {
	mu     sync.RWMutex
	impl   *log.Logger
	level  Level
	fields []interface{}
}

// New creates a new logger with the given options.
func New(opts Options) Logger {
	impl := log.NewWithOptions(opts.Output, log.Options{
		TimeFormat:      opts.TimeFormat,
		Level:           log.DebugLevel,
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.ReportTimestamp,
	})
	if opts.NoColor {
		impl.SetColorProfile(termenv.Ascii)
	}
	return &logger{impl: impl, level: opts.Level}
}

// NewFileLogger creates a logger appending to path through a size-bounded
// rotating writer. The directory must already exist.
func NewFileLogger(path string, level Level, rot RotationOptions) (Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	_ = f.Close()

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   rot.Compress,
	}
	opts := FileOptions(w)
	opts.Level = level
	return New(opts), w, nil
}

func (l *logger) enabled(level Level) bool {
	// Errors always pass.
	return level == LevelError || l.level <= level
}

func (l *logger) Debug(msg string, keyvals ...interface{}) {
	l.log(LevelDebug, msg, keyvals)
}

func (l *logger) Info(msg string, keyvals ...interface{}) {
	l.log(LevelInfo, msg, keyvals)
}

func (l *logger) Warn(msg string, keyvals ...interface{}) {
	l.log(LevelWarn, msg, keyvals)
}

func (l *logger) Error(msg string, keyvals ...interface{}) {
	l.log(LevelError, msg, keyvals)
}

func (l *logger) log(level Level, msg string, keyvals []interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.enabled(level) {
		return
	}

	kv := make([]interface{}, 0, len(l.fields)+len(keyvals))
	kv = append(kv, l.fields...)
	kv = append(kv, keyvals...)

	switch level {
	case LevelDebug:
		l.impl.Debug(msg, kv...)
	case LevelInfo:
		l.impl.Info(msg, kv...)
	case LevelWarn:
		l.impl.Warn(msg, kv...)
	default:
		l.impl.Error(msg, kv...)
	}
}

func (l *logger) WithPrefix(prefix string) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &logger{impl: l.impl.WithPrefix(prefix), level: l.level, fields: l.fields}
}

func (l *logger) WithFields(keyvals ...interface{}) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fields := make([]interface{}, 0, len(l.fields)+len(keyvals))
	fields = append(fields, l.fields...)
	fields = append(fields, keyvals...)
	return &logger{impl: l.impl, level: l.level, fields: fields}
}

func (l *logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})       {}
func (nopLogger) Info(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Error(string, ...interface{})       {}
func (n nopLogger) WithPrefix(string) Logger         { return n }
func (n nopLogger) WithFields(...interface{}) Logger { return n }
func (nopLogger) SetLevel(Level)                     {}
func (nopLogger) GetLevel() Level                    { return LevelInfo }

// NewMultiLogger fans every message out to all loggers, each applying its
// own level.
func NewMultiLogger(loggers ...Logger) Logger {
	return multiLogger(loggers)
}

type multiLogger []Logger

func (m multiLogger) Debug(msg string, keyvals ...interface{}) {
	for _, l := range m {
		l.Debug(msg, keyvals...)
	}
}

func (m multiLogger) Info(msg string, keyvals ...interface{}) {
	for _, l := range m {
		l.Info(msg, keyvals...)
	}
}

func (m multiLogger) Warn(msg string, keyvals ...interface{}) {
	for _, l := range m {
		l.Warn(msg, keyvals...)
	}
}

func (m multiLogger) Error(msg string, keyvals ...interface{}) {
	for _, l := range m {
		l.Error(msg, keyvals...)
	}
}

func (m multiLogger) WithPrefix(prefix string) Logger {
	out := make(multiLogger, len(m))
	for i, l := range m {
		out[i] = l.WithPrefix(prefix)
	}
	return out
}

func (m multiLogger) WithFields(keyvals ...interface{}) Logger {
	out := make(multiLogger, len(m))
	for i, l := range m {
		out[i] = l.WithFields(keyvals...)
	}
	return out
}

func (m multiLogger) SetLevel(level Level) {
	for _, l := range m {
		l.SetLevel(level)
	}
}

// GetLevel returns the most verbose level among the loggers.
func (m multiLogger) GetLevel() Level {
	if len(m) == 0 {
		return LevelInfo
	}
	min := m[0].GetLevel()
	for _, l := range m[1:] {
		if lv := l.GetLevel(); lv < min {
			min = lv
		}
	}
	return min
}
