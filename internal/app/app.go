package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tungetti/sessionlog/internal/config"
	"github.com/tungetti/sessionlog/internal/constants"
	"github.com/tungetti/sessionlog/internal/errors"
	"github.com/tungetti/sessionlog/internal/logging"
	"github.com/tungetti/sessionlog/internal/session"
	"github.com/tungetti/sessionlog/internal/sink"
	"github.com/tungetti/sessionlog/internal/verbosity"
)

// App represents the main application with its dependencies and lifecycle.
type App struct {
	container *Container
	lifecycle *Lifecycle
	opts      Options

	mu     sync.Mutex
	signal os.Signal
}

// Options configures the application.
type Options struct {
	Version   string
	BuildTime string
	GitCommit string

	// ConfigPath is the configuration file. Empty means environment only.
	ConfigPath string
	// DiagLogPath, if set, also writes diagnostics to a rotating file.
	DiagLogPath string
	DiagLevel   logging.Level
	NoColor     bool

	// Console receives echoed lines; DiagOutput receives diagnostics.
	Console    io.Writer
	DiagOutput io.Writer

	// IdleFlush forces a flush after this long without input. Zero disables it.
	IdleFlush       time.Duration
	ShutdownTimeout time.Duration
	Clock           func() time.Time
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Version:         "unknown",
		BuildTime:       "unknown",
		GitCommit:       "unknown",
		ConfigPath:      constants.DefaultConfigFile,
		DiagLevel:       logging.LevelWarn,
		Console:         os.Stdout,
		DiagOutput:      os.Stderr,
		IdleFlush:       2 * time.Second,
		ShutdownTimeout: constants.ShutdownTimeout,
	}
}

// New creates a new application with the given options.
func New(opts Options) *App {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = constants.ShutdownTimeout
	}
	if opts.DiagOutput == nil {
		opts.DiagOutput = os.Stderr
	}
	return &App{
		container: NewContainer(),
		lifecycle: NewLifecycle(opts.ShutdownTimeout, nil),
		opts:      opts,
	}
}

// Initialize loads the configuration, builds the diagnostics logger and
// starts the log session. The session is stopped by Shutdown.
func (a *App) Initialize(ctx context.Context) error {
	cfg, err := config.NewLoader(a.opts.ConfigPath).Load()
	if err != nil {
		return errors.Wrap(errors.Configuration, "failed to load config", err).WithOp("app.Initialize")
	}
	a.container.SetConfig(cfg)

	logger, err := a.initLogger()
	if err != nil {
		return errors.Wrap(errors.Configuration, "failed to initialize logger", err).WithOp("app.Initialize")
	}
	a.container.SetLogger(logger)
	a.lifecycle.SetLogger(logger.WithPrefix("lifecycle"))
	// Registered first so it runs last.
	a.lifecycle.OnShutdown("closers", func(ctx context.Context) error {
		var first error
		for _, c := range a.container.Closers() {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	})

	logger.Debug("starting",
		"version", a.opts.Version,
		"build_time", a.opts.BuildTime,
		"git_commit", a.opts.GitCommit,
		"config", a.opts.ConfigPath,
	)

	sessOpts := []session.Option{
		session.WithConsole(a.opts.Console),
		session.WithLogger(logger),
	}
	if a.opts.Clock != nil {
		sessOpts = append(sessOpts, session.WithClock(a.opts.Clock))
	}
	sess := session.New(sessOpts...)
	if err := sess.Start(cfg); err != nil {
		return err
	}
	a.container.SetSession(sess)

	a.lifecycle.OnShutdown("session", func(ctx context.Context) error {
		st := sess.Stats()
		logger.Info("session summary",
			"file", sess.Path(),
			"emitted", st.Emitted,
			"flushes", st.Flushes,
			"flush_errors", st.FlushErrors,
			"truncated", st.Truncated,
		)
		return sess.Stop()
	})

	return a.container.Validate()
}

func (a *App) initLogger() (logging.Logger, error) {
	opts := logging.DefaultOptions()
	opts.Output = a.opts.DiagOutput
	opts.Level = a.opts.DiagLevel
	opts.NoColor = a.opts.NoColor
	console := logging.New(opts)

	if a.opts.DiagLogPath == "" {
		return console, nil
	}

	if err := sink.EnsureDir(filepath.Dir(a.opts.DiagLogPath)); err != nil {
		return nil, err
	}
	file, closer, err := logging.NewFileLogger(a.opts.DiagLogPath, logging.LevelDebug, logging.DefaultRotationOptions())
	if err != nil {
		return nil, err
	}
	a.container.AddCloser(closer)
	return logging.NewMultiLogger(console, file), nil
}

// Run reads lines from in and logs each one until EOF, ctx is done or
// shutdown begins. A line prefixed with "E:", "W:" or "I:" is logged at
// that severity; other lines use def. Write failures are reported to the
// diagnostics logger and do not stop the run.
func (a *App) Run(ctx context.Context, in io.Reader, def verbosity.Level) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = a.handlePanic(r)
		}
	}()

	sess := a.container.Session()
	if sess == nil {
		return errors.NotStarted("app.Run")
	}
	logger := a.container.Logger()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			case <-a.lifecycle.ShutdownCh():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var idle <-chan time.Time
	var timer *time.Timer
	if a.opts.IdleFlush > 0 {
		timer = time.NewTimer(a.opts.IdleFlush)
		defer timer.Stop()
		idle = timer.C
	}

	n := 0
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return errors.Wrap(errors.IO, "failed to read input", err).WithOp("app.Run")
					}
				default:
				}
				return nil
			}
			n++
			sev, text := ParseLine(line, def)
			if err := sess.Emit("stdin", n, sev, text); err != nil {
				logger.Debug("emit returned error", "line", n, "err", err)
			}
			if timer != nil {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(a.opts.IdleFlush)
			}
		case <-idle:
			if err := sess.Flush(); err != nil {
				logger.Debug("idle flush failed", "err", err)
			}
			timer.Reset(a.opts.IdleFlush)
		case <-ctx.Done():
			return nil
		case <-a.lifecycle.ShutdownCh():
			return nil
		}
	}
}

// RunWithLifecycle runs until input ends or SIGINT/SIGTERM arrives, then
// shuts down. The signal, if any, is available from Signal afterwards.
func (a *App) RunWithLifecycle(ctx context.Context, in io.Reader, def verbosity.Level) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if sig := a.lifecycle.WaitForSignal(ctx); sig != nil {
			a.container.Logger().Info("received signal", "signal", sig.String())
			a.mu.Lock()
			a.signal = sig
			a.mu.Unlock()
			cancel()
		}
	}()

	runErr := a.Run(ctx, in, def)
	shutdownErr := a.Shutdown()
	if runErr != nil {
		return runErr
	}
	return shutdownErr
}

// Signal returns the signal that ended RunWithLifecycle, or nil.
func (a *App) Signal() os.Signal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signal
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	return a.lifecycle.Shutdown()
}

// Container returns the dependency container.
func (a *App) Container() *Container {
	return a.container
}

// Lifecycle returns the lifecycle manager.
func (a *App) Lifecycle() *Lifecycle {
	return a.lifecycle
}

// Version returns the application version.
func (a *App) Version() string {
	return a.opts.Version
}

// handlePanic logs a recovered panic with its stack and returns it as an error.
func (a *App) handlePanic(r interface{}) error {
	stack := debug.Stack()
	a.container.Logger().Error("panic recovered",
		"panic", fmt.Sprintf("%v", r),
		"stack", string(stack),
	)
	return errors.Newf(errors.Unknown, "panic: %v", r)
}

// RecoverPanic can be deferred to log a panic instead of crashing.
func (a *App) RecoverPanic() {
	if r := recover(); r != nil {
		_ = a.handlePanic(r)
	}
}
