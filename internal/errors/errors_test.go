package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_String(t *testing.T) {
	tests := []struct {
		code     Code
		expected string
	}{
		{Unknown, "Unknown"},
		{Configuration, "Configuration"},
		{Validation, "Validation"},
		{Usage, "Usage"},
		{IO, "IO"},
		{Permission, "Permission"},
		{NotFound, "NotFound"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code.String())
		})
	}
}

func TestCode_String_Unknown(t *testing.T) {
	assert.Equal(t, "Code(999)", Code(999).String())
}

func TestNewf(t *testing.T) {
	err := Newf(Validation, "value %d out of range", 7)

	require.NotNil(t, err)
	assert.Equal(t, Validation, err.Code)
	assert.Equal(t, "value 7 out of range", err.Message)
	assert.Nil(t, err.Cause)
}

func TestWrapf(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrapf(IO, cause, "write %s", "a.log")

	assert.Equal(t, IO, err.Code)
	assert.Equal(t, "write a.log", err.Message)
	assert.Equal(t, cause, err.Unwrap())
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      New(Unknown, "simple error"),
			expected: "simple error",
		},
		{
			name:     "with operation",
			err:      New(Usage, "not started").WithOp("session.Emit"),
			expected: "session.Emit: not started",
		},
		{
			name:     "with cause",
			err:      Wrap(IO, "flush failed", fmt.Errorf("disk full")),
			expected: "flush failed: disk full",
		},
		{
			name:     "with operation and cause",
			err:      Wrap(Permission, "mkdir failed", fmt.Errorf("denied")).WithOp("sink.EnsureDir"),
			expected: "sink.EnsureDir: mkdir failed: denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorsIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotStarted("session.Emit"))

	assert.True(t, errors.Is(err, ErrNotStarted))
	assert.False(t, errors.Is(err, ErrFlushFailed))
}

func TestNotStarted_DoesNotMutateSentinel(t *testing.T) {
	err := NotStarted("session.Stop")

	assert.Equal(t, "session.Stop", err.Op)
	assert.Empty(t, ErrNotStarted.Op)
	assert.NotSame(t, ErrNotStarted, err)
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(Configuration, "bad"), Configuration},
		{"wrapped by fmt", fmt.Errorf("x: %w", New(IO, "inner")), IO},
		{"outer code wins", Wrap(Permission, "outer", New(IO, "inner")), Permission},
		{"standard error", fmt.Errorf("standard"), Unknown},
		{"nil error", nil, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetCode(tt.err))
		})
	}
}

func TestIsCode(t *testing.T) {
	err := New(Permission, "denied")

	assert.True(t, IsCode(err, Permission))
	assert.False(t, IsCode(err, IO))
	assert.False(t, IsCode(nil, Permission))
}

func TestWrap_NilCause(t *testing.T) {
	err := Wrap(Unknown, "no cause", nil)

	require.NotNil(t, err)
	assert.Nil(t, err.Cause)
	assert.Equal(t, "no cause", err.Error())
}
