package buffer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/tungetti/sessionlog/internal/testing"
)

func TestAppend_BelowThresholdBuffers(t *testing.T) {
	sink := testutil.NewRecordingSink()
	b := New(100, sink)

	flushed, err := b.Append("hello\n")

	require.NoError(t, err)
	assert.False(t, flushed)
	assert.Equal(t, 6, b.Len())
	assert.Empty(t, sink.Chunks())
}

func TestAppend_FlushesOncePerCrossing(t *testing.T) {
	sink := testutil.NewRecordingSink()
	b := New(10, sink)
	lines := []string{"aaaa\n", "bbbb\n", "cc\n", "dddddddd\n", "e\n", "ffffffffffffff\n"}

	var flushes int
	for _, l := range lines {
		flushed, err := b.Append(l)
		require.NoError(t, err)
		if flushed {
			flushes++
			assert.Zero(t, b.Len(), "buffer must be empty right after a flush")
		}
	}

	// "aaaa\nbbbb\n" (10) | "cc\ndddddddd\n" (12) | "e\nffffffffffffff\n" (17)
	assert.Equal(t, 3, flushes)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cc\ndddddddd\n", "e\nffffffffffffff\n"}, sink.Chunks())
}

func TestAppend_OvershootIsAllowed(t *testing.T) {
	sink := testutil.NewRecordingSink()
	b := New(4, sink)

	flushed, err := b.Append(strings.Repeat("z", 1000))

	require.NoError(t, err)
	assert.True(t, flushed)
	require.Len(t, sink.Chunks(), 1)
	assert.Len(t, sink.Chunks()[0], 1000)
}

func TestAppend_ZeroThresholdFlushesEveryTime(t *testing.T) {
	sink := testutil.NewRecordingSink()
	b := New(0, sink)

	for i := 0; i < 5; i++ {
		flushed, err := b.Append(fmt.Sprintf("line %d\n", i))
		require.NoError(t, err)
		assert.True(t, flushed)
	}

	assert.Len(t, sink.Chunks(), 5)
	assert.Zero(t, b.Len())
}

func TestNew_NegativeThresholdClampsToZero(t *testing.T) {
	b := New(-5, testutil.NewRecordingSink())
	assert.Equal(t, 0, b.Threshold())
}

func TestFlush_FailureKeepsBuffer(t *testing.T) {
	sink := testutil.NewRecordingSink()
	sink.SetFail(true, fmt.Errorf("disk full"))
	b := New(5, sink)

	flushed, err := b.Append("first line\n")
	testutil.AssertErrorContains(t, err, "disk full")
	assert.False(t, flushed)
	assert.Equal(t, "first line\n", b.String())

	// Degraded mode keeps growing.
	_, err = b.Append("second\n")
	require.Error(t, err)
	assert.Equal(t, "first line\nsecond\n", b.String())

	// Recovery writes everything retained in one chunk.
	sink.SetFail(false, nil)
	flushed, err = b.Append("third\n")
	require.NoError(t, err)
	assert.True(t, flushed)
	assert.Equal(t, []string{"first line\nsecond\nthird\n"}, sink.Chunks())
	assert.Equal(t, 3, sink.Calls())
	assert.Zero(t, b.Len())
}

func TestFlush_EmptyWritesNothing(t *testing.T) {
	sink := testutil.NewRecordingSink()
	b := New(10, sink)

	require.NoError(t, b.Flush())
	assert.Empty(t, sink.Chunks())
	assert.Zero(t, sink.Calls())
}

func TestFlush_BelowThresholdIsUnconditional(t *testing.T) {
	sink := testutil.NewRecordingSink()
	b := New(1000, sink)
	_, _ = b.Append("tail\n")

	require.NoError(t, b.Flush())

	assert.Equal(t, []string{"tail\n"}, sink.Chunks())
	assert.Zero(t, b.Len())
}

func TestReset(t *testing.T) {
	sink := testutil.NewRecordingSink()
	b := New(1000, sink)
	_, _ = b.Append("gone\n")

	b.Reset()

	assert.Zero(t, b.Len())
	assert.Empty(t, sink.Chunks())
}
