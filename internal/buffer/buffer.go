// Package buffer holds a session's rendered lines in memory until they
// reach the flush threshold.
package buffer

import (
	"bytes"
)

// Sink receives flushed chunks.
type Sink interface {
	WriteChunk(p []byte) error
}

// SessionBuffer accumulates text and flushes it to a Sink once its size
// reaches the threshold. It is not safe for concurrent use; the owning
// session serialises access.
type SessionBuffer struct {
	buf       bytes.Buffer
	threshold int
	sink      Sink
}

// New creates a buffer that flushes to sink once it holds threshold bytes.
// A threshold of zero flushes after every Append.
func New(threshold int, sink Sink) *SessionBuffer {
	if threshold < 0 {
		threshold = 0
	}
	return &SessionBuffer{threshold: threshold, sink: sink}
}

// Append adds text and flushes if the buffer has reached the threshold.
// A single append may overshoot the threshold by any amount. flushed is
// true only when a flush was attempted and succeeded.
func (b *SessionBuffer) Append(text string) (flushed bool, err error) {
	b.buf.WriteString(text)
	if b.buf.Len() < b.threshold {
		return false, nil
	}
	if err := b.Flush(); err != nil {
		return false, err
	}
	return true, nil
}

// Flush writes the whole buffer to the sink and clears it. An empty buffer
// writes nothing. If the write fails the content is kept for the next try.
func (b *SessionBuffer) Flush() error {
	if b.buf.Len() == 0 {
		return nil
	}
	if err := b.sink.WriteChunk(b.buf.Bytes()); err != nil {
		return err
	}
	b.buf.Reset()
	return nil
}

// Len returns the number of buffered bytes.
func (b *SessionBuffer) Len() int {
	return b.buf.Len()
}

// Threshold returns the flush threshold in bytes.
func (b *SessionBuffer) Threshold() int {
	return b.threshold
}

// String returns the buffered text.
func (b *SessionBuffer) String() string {
	return b.buf.String()
}

// Reset discards buffered content without writing it.
func (b *SessionBuffer) Reset() {
	b.buf.Reset()
}
