package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/tungetti/sessionlog/internal/logging"
)

// ShutdownFunc is a function called during shutdown.
// It receives a context that is cancelled if shutdown times out.
type ShutdownFunc func(ctx context.Context) error

type namedShutdown struct {
	name string
	fn   ShutdownFunc
}

// Lifecycle waits for termination signals and runs the registered
// shutdown functions exactly once, newest first.
type Lifecycle struct {
	mu           sync.Mutex
	funcs        []namedShutdown
	shutdownCh   chan struct{}
	doneCh       chan struct{}
	timeout      time.Duration
	shutdownOnce sync.Once
	shutdownErr  error
	log          logging.Logger
	signals      []os.Signal
}

// NewLifecycle creates a lifecycle with the given shutdown timeout.
func NewLifecycle(timeout time.Duration, log logging.Logger) *Lifecycle {
	if log == nil {
		log = logging.NewNop()
	}
	return &Lifecycle{
		shutdownCh: make(chan struct{}),
		doneCh:     make(chan struct{}),
		timeout:    timeout,
		log:        log,
		signals:    []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// SetLogger replaces the logger used to report shutdown progress.
func (l *Lifecycle) SetLogger(log logging.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if log != nil {
		l.log = log
	}
}

// OnShutdown registers fn under name. Functions run in reverse order of
// registration, so a component registered after its dependencies is
// stopped before them.
func (l *Lifecycle) OnShutdown(name string, fn ShutdownFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.funcs = append(l.funcs, namedShutdown{name: name, fn: fn})
}

// WaitForSignal blocks until SIGINT or SIGTERM arrives, ctx is done, or
// Shutdown is called. It returns the signal, or nil in the other cases.
func (l *Lifecycle) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, l.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		return sig
	case <-ctx.Done():
		return nil
	case <-l.shutdownCh:
		return nil
	}
}

// Shutdown runs every registered function once. Later calls return the
// result of the first. The first error encountered is returned; every
// failure is logged.
func (l *Lifecycle) Shutdown() error {
	l.shutdownOnce.Do(func() {
		close(l.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		l.mu.Lock()
		funcs := make([]namedShutdown, len(l.funcs))
		copy(funcs, l.funcs)
		log := l.log
		l.mu.Unlock()

		for i := len(funcs) - 1; i >= 0; i-- {
			f := funcs[i]
			if err := f.fn(ctx); err != nil {
				log.Error("shutdown step failed", "step", f.name, "err", err)
				if l.shutdownErr == nil {
					l.shutdownErr = err
				}
				continue
			}
			log.Debug("shutdown step done", "step", f.name)
		}

		close(l.doneCh)
	})

	<-l.doneCh
	return l.shutdownErr
}

// Done returns a channel that's closed when shutdown is complete.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.doneCh
}

// ShutdownCh returns a channel that's closed when shutdown starts.
func (l *Lifecycle) ShutdownCh() <-chan struct{} {
	return l.shutdownCh
}

// IsShuttingDown returns true if shutdown has been initiated.
func (l *Lifecycle) IsShuttingDown() bool {
	select {
	case <-l.shutdownCh:
		return true
	default:
		return false
	}
}

// Timeout returns the configured shutdown timeout.
func (l *Lifecycle) Timeout() time.Duration {
	return l.timeout
}
