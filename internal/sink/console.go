package sink

import (
	"io"
	"sync"
)

// ConsoleSink mirrors rendered lines to a writer, typically os.Stdout.
// It has its own lock so echoes never interleave inside a line and never
// contend with the session lock.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink wraps w. A nil writer discards everything.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = io.Discard
	}
	return &ConsoleSink{w: w}
}

// Echo writes line as-is.
func (c *ConsoleSink) Echo(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, line)
	return err
}
