// Package format renders log records into bounded text lines.
//
// A rendered line has the shape
//
//	<file> [<line>] , <severity>\t : <message>\n
//
// and is never longer than the configured maximum, newline included.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/tungetti/sessionlog/internal/constants"
	"github.com/tungetti/sessionlog/internal/verbosity"
)

// Record is a single log call before rendering.
type Record struct {
	File     string
	Line     int
	Severity verbosity.Level
	Template string
	Args     []any
}

// Truncation describes a line that was cut to fit the limit.
type Truncation struct {
	File     string
	Line     int
	Original int // rendered length before truncation, in bytes
	Limit    int
}

// Formatter renders records. It is safe for concurrent use; Format holds no lock.
type Formatter struct {
	maxLen     int
	onTruncate func(Truncation)
	truncated  atomic.Uint64
}

// New creates a formatter capping lines at maxLen bytes. A non-positive
// maxLen disables the cap.
func New(maxLen int) *Formatter {
	return &Formatter{maxLen: maxLen}
}

// OnTruncate registers fn to be called for every truncated line.
// It must be set before the formatter is shared between goroutines.
func (f *Formatter) OnTruncate(fn func(Truncation)) {
	f.onTruncate = fn
}

// MaxLen returns the configured cap.
func (f *Formatter) MaxLen() int {
	return f.maxLen
}

// Truncated returns how many lines have been truncated so far.
func (f *Formatter) Truncated() uint64 {
	return f.truncated.Load()
}

// Format renders r into a newline-terminated line of at most MaxLen bytes.
func (f *Formatter) Format(r Record) string {
	line, cut := f.Fit(r, Render(r))
	if cut != nil {
		f.Report(*cut)
	}
	return line
}

// Render returns the full line for r without applying any cap.
func Render(r Record) string {
	var b strings.Builder
	b.WriteString(r.File)
	b.WriteString(" [")
	b.WriteString(strconv.Itoa(r.Line))
	b.WriteString("] , ")
	b.WriteString(r.Severity.String())
	b.WriteString("\t : ")
	b.WriteString(Message(r.Template, r.Args...))
	b.WriteString(constants.LineSeparator)
	return b.String()
}

// Fit caps a line produced by Render for r. When the line had to be cut the
// returned Truncation is non-nil; Fit itself neither counts it nor calls the
// hook, so it can run under a caller's lock. Pass it to Report afterwards.
func (f *Formatter) Fit(r Record, line string) (string, *Truncation) {
	if f.maxLen <= 0 || len(line) <= f.maxLen {
		return line, nil
	}
	return Truncate(line, f.maxLen), &Truncation{File: r.File, Line: r.Line, Original: len(line), Limit: f.maxLen}
}

// Report counts a truncation returned by Fit and calls the hook.
func (f *Formatter) Report(t Truncation) {
	f.truncated.Add(1)
	if f.onTruncate != nil {
		f.onTruncate(t)
	}
}

// Message substitutes args into template. With no args the template is
// returned verbatim so a literal '%' survives.
func Message(template string, args ...any) string {
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// Truncate cuts s to maxLen-1 bytes and appends the line separator. The cut
// backs off to a rune boundary, so multi-byte text may come out shorter.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen - 1
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + constants.LineSeparator
}
