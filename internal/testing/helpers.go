package testing

import (
	"sync"
	"testing"
	"time"
)

// ============================================================================
// MockTime - Controllable time for testing
// ============================================================================

// MockTime provides controllable time for testing. Its Now method can be
// passed wherever a func() time.Time clock is accepted.
type MockTime struct {
	mu      sync.Mutex
	current time.Time
}

// NewMockTime creates a new MockTime starting at the given time.
func NewMockTime(t time.Time) *MockTime {
	return &MockTime{current: t}
}

// Now returns the current mock time.
func (m *MockTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Advance advances the mock time by the given duration.
func (m *MockTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Set sets the mock time to the given value.
func (m *MockTime) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// ============================================================================
// Waiting
// ============================================================================

// WaitFor polls condition until it returns true or timeout expires.
func WaitFor(t testing.TB, condition func() bool, timeout, interval time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}
	t.Fatalf("condition not met within %v", timeout)
}

// ============================================================================
// Generic helpers
// ============================================================================

// MustParse returns value or panics if err is not nil. Use it only for
// inputs known to be valid.
func MustParse[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}
