// Package session ties the pieces of the logger together: it owns the
// current session file, the in-memory buffer and the echo policy, and
// serialises every mutation behind a single lock.
//
// A Session is constructed explicitly and handed to whoever logs; there is
// no package-level instance.
package session

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tungetti/sessionlog/internal/buffer"
	"github.com/tungetti/sessionlog/internal/config"
	"github.com/tungetti/sessionlog/internal/constants"
	"github.com/tungetti/sessionlog/internal/errors"
	"github.com/tungetti/sessionlog/internal/format"
	"github.com/tungetti/sessionlog/internal/logging"
	"github.com/tungetti/sessionlog/internal/sink"
	"github.com/tungetti/sessionlog/internal/verbosity"
)

// Stats is a snapshot of the session counters. Counters survive rotation
// and Stop; they describe the Session value, not one file.
type Stats struct {
	Emitted     uint64
	Flushes     uint64
	FlushErrors uint64
	Truncated   uint64
	Echoed      uint64
}

// Option configures a Session.
type Option func(*Session)

// WithConsole sets the echo destination. Defaults to os.Stdout.
func WithConsole(w io.Writer) Option {
	return func(s *Session) {
		s.console = sink.NewConsoleSink(w)
	}
}

// WithClock sets the time source used to name session files.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the diagnostics logger. Defaults to a no-op logger.
func WithLogger(log logging.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTruncationHook registers fn to be called for every truncated line,
// in addition to the diagnostics warning.
func WithTruncationHook(fn func(format.Truncation)) Option {
	return func(s *Session) {
		s.onTruncate = fn
	}
}

// state is everything that belongs to one session file.
type state struct {
	cfg       *config.Config
	formatter *format.Formatter
	file      *sink.FileSink
	buf       *buffer.SessionBuffer
}

// Session is a debug log session. The zero value is not usable; call New.
type Session struct {
	mu  sync.Mutex
	cur atomic.Pointer[state]

	// lastBase and lastSeq remember the previous file name so two starts
	// within one second never share a file.
	lastBase string
	lastSeq  int

	console    *sink.ConsoleSink
	now        func() time.Time
	log        logging.Logger
	onTruncate func(format.Truncation)

	emitted     atomic.Uint64
	flushes     atomic.Uint64
	flushErrors atomic.Uint64
	truncated   atomic.Uint64
	echoed      atomic.Uint64
}

// New creates an inactive session.
func New(opts ...Option) *Session {
	s := &Session{
		console: sink.NewConsoleSink(os.Stdout),
		now:     time.Now,
		log:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithPrefix("session")
	return s
}

// Start begins a new session file using cfg. If a session is already
// active its buffer is flushed to its own file first; if that flush fails
// the old session stays active and the error is returned.
func (s *Session) Start(cfg *config.Config) error {
	if err := config.NewValidator().ValidateOrError(cfg); err != nil {
		return err
	}
	cfg = cfg.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if old := s.cur.Load(); old != nil {
		if err := s.flushLocked(old); err != nil {
			return errors.Wrap(errors.IO, "failed to flush previous session", err).
				WithOp("session.Start")
		}
	}

	if err := sink.EnsureDir(cfg.LogDir); err != nil {
		return err
	}

	name := s.nextName(cfg.LogDir)
	st := &state{
		cfg:       cfg,
		formatter: format.New(cfg.MaxMessageChars),
		file:      sink.NewFileSink(cfg.LogDir, name),
	}
	st.buf = buffer.New(cfg.BytesToBuffer, st.file)
	st.formatter.OnTruncate(s.truncationHook(name))

	s.cur.Store(st)

	s.log.Info("session started", "file", st.file.Path(), "buffer", cfg.BytesToBuffer,
		"max_chars", cfg.MaxMessageChars, "verbosity", cfg.Verbosity.String())
	return nil
}

// nextName derives the file name from the clock. A name already used by
// this session within the same second, or already present in dir, gets a
// "-<n>" suffix.
func (s *Session) nextName(dir string) string {
	base := s.now().UTC().Format(constants.SessionTimeLayout)
	n := 0
	if base == s.lastBase {
		n = s.lastSeq + 1
	}
	for sink.Exists(dir, sessionFileName(base, n)) {
		n++
	}
	s.lastBase, s.lastSeq = base, n
	return sessionFileName(base, n)
}

func sessionFileName(base string, n int) string {
	if n == 0 {
		return base + constants.SessionFileExt
	}
	return fmt.Sprintf("%s-%d%s", base, n, constants.SessionFileExt)
}

func (s *Session) truncationHook(name string) func(format.Truncation) {
	return func(t format.Truncation) {
		s.truncated.Add(1)
		s.log.Warn("line truncated", "session", name, "origin", fmt.Sprintf("%s:%d", t.File, t.Line),
			"length", t.Original, "limit", t.Limit)
		if s.onTruncate != nil {
			s.onTruncate(t)
		}
	}
}

// Emit formats a message, appends it to the session buffer and flushes if
// the threshold is reached. Lines that pass the verbosity policy are also
// echoed to the console. A flush error is returned but the line stays
// buffered and will be written by the next successful flush.
func (s *Session) Emit(file string, line int, sev verbosity.Level, template string, args ...any) error {
	if s.cur.Load() == nil {
		return errors.NotStarted("session.Emit")
	}

	rec := format.Record{
		File:     file,
		Line:     line,
		Severity: sev,
		Template: template,
		Args:     args,
	}
	raw := format.Render(rec)

	s.mu.Lock()
	// The cap comes from the session holding the lock, which may be a newer
	// one than when rendering started.
	cur := s.cur.Load()
	if cur == nil {
		s.mu.Unlock()
		return errors.NotStarted("session.Emit")
	}
	text, cut := cur.formatter.Fit(rec, raw)
	s.emitted.Add(1)
	flushed, err := cur.buf.Append(text)
	buffered := cur.buf.Len()
	s.mu.Unlock()

	if cut != nil {
		cur.formatter.Report(*cut)
	}
	if flushed {
		s.flushes.Add(1)
	}
	if err != nil {
		s.flushErrors.Add(1)
		s.log.Error("flush failed", "file", cur.file.Path(), "buffered", buffered, "err", err)
	}

	if cur.cfg.Verbosity.Echo(sev) {
		if echoErr := s.console.Echo(text); echoErr != nil {
			s.log.Debug("console echo failed", "err", echoErr)
		} else {
			s.echoed.Add(1)
		}
	}
	return err
}

// Flush writes the buffered lines to the session file regardless of the
// threshold. It is a no-op on an inactive session.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.cur.Load()
	if st == nil {
		return nil
	}
	return s.flushLocked(st)
}

// flushLocked must be called with s.mu held.
func (s *Session) flushLocked(st *state) error {
	if st.buf.Len() == 0 {
		return nil
	}
	if err := st.buf.Flush(); err != nil {
		s.flushErrors.Add(1)
		s.log.Error("flush failed", "file", st.file.Path(), "buffered", st.buf.Len(), "err", err)
		return err
	}
	s.flushes.Add(1)
	return nil
}

// Stop flushes whatever is buffered and ends the session. Stopping an
// inactive session does nothing. If the final flush fails the session
// still ends; the error is returned and the unwritten lines are lost.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.cur.Load()
	if st == nil {
		return nil
	}

	err := s.flushLocked(st)
	if err != nil {
		s.log.Warn("session stopped with unflushed data", "file", st.file.Path(), "lost", st.buf.Len())
	}
	st.buf.Reset()
	s.cur.Store(nil)

	s.log.Info("session stopped", "file", st.file.Path())
	return err
}

// Active reports whether a session has been started and not stopped.
func (s *Session) Active() bool {
	return s.cur.Load() != nil
}

// FileName returns the current session file name, or "" when inactive.
func (s *Session) FileName() string {
	if st := s.cur.Load(); st != nil {
		return st.file.Name()
	}
	return ""
}

// Path returns the full path of the current session file, or "" when inactive.
func (s *Session) Path() string {
	if st := s.cur.Load(); st != nil {
		return st.file.Path()
	}
	return ""
}

// Buffered returns the number of bytes waiting to be flushed.
func (s *Session) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.cur.Load(); st != nil {
		return st.buf.Len()
	}
	return 0
}

// Config returns a copy of the active configuration, or nil when inactive.
func (s *Session) Config() *config.Config {
	if st := s.cur.Load(); st != nil {
		return st.cfg.Clone()
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (s *Session) Stats() Stats {
	return Stats{
		Emitted:     s.emitted.Load(),
		Flushes:     s.flushes.Load(),
		FlushErrors: s.flushErrors.Load(),
		Truncated:   s.truncated.Load(),
		Echoed:      s.echoed.Load(),
	}
}

// String implements fmt.Stringer.
func (s *Session) String() string {
	var b strings.Builder
	b.WriteString("session(")
	if name := s.FileName(); name != "" {
		b.WriteString(name)
	} else {
		b.WriteString("inactive")
	}
	b.WriteString(")")
	return b.String()
}
