// Package testing provides shared test infrastructure for sessionlog:
// a recording logger, sinks and writers that fail on demand, a controllable
// clock, configuration fixtures and a few assertions.
package testing

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/tungetti/sessionlog/internal/logging"
)

// ============================================================================
// MockLogger - Implements logging.Logger for testing
// ============================================================================

// LogMessage represents a recorded log message.
type LogMessage struct {
	Level   logging.Level
	Prefix  string
	Message string
	Fields  []interface{}
}

// Field returns the value recorded for key, if any.
func (m LogMessage) Field(key string) (interface{}, bool) {
	for i := 0; i+1 < len(m.Fields); i += 2 {
		if k, ok := m.Fields[i].(string); ok && k == key {
			return m.Fields[i+1], true
		}
	}
	return nil, false
}

// logStore is shared by a MockLogger and every logger derived from it.
type logStore struct {
	mu       sync.Mutex
	messages []LogMessage
	level    logging.Level
}

// MockLogger implements logging.Logger and records every message.
// Loggers returned by WithPrefix and WithFields write to the same store.
type MockLogger struct {
	store  *logStore
	prefix string
	fields []interface{}
}

// NewMockLogger creates a MockLogger recording at every level.
func NewMockLogger() *MockLogger {
	return &MockLogger{store: &logStore{level: logging.LevelDebug}}
}

// Debug logs a debug message.
func (m *MockLogger) Debug(msg string, keyvals ...interface{}) {
	m.record(logging.LevelDebug, msg, keyvals)
}

// Info logs an info message.
func (m *MockLogger) Info(msg string, keyvals ...interface{}) {
	m.record(logging.LevelInfo, msg, keyvals)
}

// Warn logs a warning message.
func (m *MockLogger) Warn(msg string, keyvals ...interface{}) {
	m.record(logging.LevelWarn, msg, keyvals)
}

// Error logs an error message.
func (m *MockLogger) Error(msg string, keyvals ...interface{}) {
	m.record(logging.LevelError, msg, keyvals)
}

// WithPrefix returns a logger sharing this logger's store.
func (m *MockLogger) WithPrefix(prefix string) logging.Logger {
	return &MockLogger{store: m.store, prefix: prefix, fields: m.fields}
}

// WithFields returns a logger sharing this logger's store.
func (m *MockLogger) WithFields(keyvals ...interface{}) logging.Logger {
	fields := make([]interface{}, 0, len(m.fields)+len(keyvals))
	fields = append(fields, m.fields...)
	fields = append(fields, keyvals...)
	return &MockLogger{store: m.store, prefix: m.prefix, fields: fields}
}

// SetLevel sets the minimum recorded level.
func (m *MockLogger) SetLevel(level logging.Level) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.level = level
}

// GetLevel returns the minimum recorded level.
func (m *MockLogger) GetLevel() logging.Level {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return m.store.level
}

func (m *MockLogger) record(level logging.Level, msg string, keyvals []interface{}) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if level < m.store.level {
		return
	}

	fields := make([]interface{}, 0, len(m.fields)+len(keyvals))
	fields = append(fields, m.fields...)
	fields = append(fields, keyvals...)

	m.store.messages = append(m.store.messages, LogMessage{
		Level:   level,
		Prefix:  m.prefix,
		Message: msg,
		Fields:  fields,
	})
}

// Messages returns all recorded log messages.
func (m *MockLogger) Messages() []LogMessage {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	out := make([]LogMessage, len(m.store.messages))
	copy(out, m.store.messages)
	return out
}

// MessagesAtLevel returns all messages at a specific log level.
func (m *MockLogger) MessagesAtLevel(level logging.Level) []LogMessage {
	var out []LogMessage
	for _, msg := range m.Messages() {
		if msg.Level == level {
			out = append(out, msg)
		}
	}
	return out
}

// Clear removes all recorded messages.
func (m *MockLogger) Clear() {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.messages = nil
}

// ContainsMessage checks if any recorded message contains the given substring.
func (m *MockLogger) ContainsMessage(substring string) bool {
	for _, msg := range m.Messages() {
		if strings.Contains(msg.Message, substring) {
			return true
		}
	}
	return false
}

// ContainsMessageAtLevel checks if any message at the given level contains the substring.
func (m *MockLogger) ContainsMessageAtLevel(level logging.Level, substring string) bool {
	for _, msg := range m.MessagesAtLevel(level) {
		if strings.Contains(msg.Message, substring) {
			return true
		}
	}
	return false
}

// MessageCount returns the total number of recorded messages.
func (m *MockLogger) MessageCount() int {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.messages)
}

// Ensure MockLogger implements logging.Logger.
var _ logging.Logger = (*MockLogger)(nil)

// ============================================================================
// Sinks and writers
// ============================================================================

// ErrInjected is returned by the failing doubles unless another error is set.
var ErrInjected = errors.New("injected failure")

// RecordingSink records every chunk passed to WriteChunk. Set Fail to make
// writes return Err (or ErrInjected) without recording.
type RecordingSink struct {
	mu     sync.Mutex
	chunks [][]byte
	fail   bool
	err    error
	calls  int
}

// NewRecordingSink creates a sink that accepts every write.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// WriteChunk records a copy of p.
func (s *RecordingSink) WriteChunk(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.fail {
		if s.err != nil {
			return s.err
		}
		return ErrInjected
	}
	s.chunks = append(s.chunks, append([]byte(nil), p...))
	return nil
}

// SetFail switches failure mode on or off. err may be nil.
func (s *RecordingSink) SetFail(fail bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
	s.err = err
}

// Chunks returns the successfully written chunks.
func (s *RecordingSink) Chunks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = string(c)
	}
	return out
}

// Calls returns how many times WriteChunk was called, failed calls included.
func (s *RecordingSink) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// FailingWriter is an io.Writer that fails every write.
type FailingWriter struct {
	Err error
}

// Write always fails.
func (w FailingWriter) Write([]byte) (int, error) {
	if w.Err != nil {
		return 0, w.Err
	}
	return 0, ErrInjected
}

// SyncBuffer is an io.Writer safe for concurrent use, for capturing console
// output from several goroutines.
type SyncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

// Write appends p.
func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything written so far.
func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var (
	_ io.Writer = FailingWriter{}
	_ io.Writer = (*SyncBuffer)(nil)
)
