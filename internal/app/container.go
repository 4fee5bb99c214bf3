// Package app wires the command-line front end: it loads configuration,
// builds the diagnostics logger, owns the log session and shuts everything
// down in order when input ends or a signal arrives.
package app

import (
	"io"
	"sync"

	"github.com/tungetti/sessionlog/internal/config"
	"github.com/tungetti/sessionlog/internal/errors"
	"github.com/tungetti/sessionlog/internal/logging"
	"github.com/tungetti/sessionlog/internal/session"
)

// Container holds the application's components once Initialize has run.
type Container struct {
	mu      sync.RWMutex
	config  *config.Config
	logger  logging.Logger
	session *session.Session
	closers []io.Closer
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{}
}

// SetConfig sets the configuration.
func (c *Container) SetConfig(cfg *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
}

// SetLogger sets the diagnostics logger.
func (c *Container) SetLogger(l logging.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

// SetSession sets the log session.
func (c *Container) SetSession(s *session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// AddCloser registers a resource to close after the session stops.
func (c *Container) AddCloser(cl io.Closer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, cl)
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// Logger returns the diagnostics logger, or a no-op logger if none is set.
func (c *Container) Logger() logging.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.logger == nil {
		return logging.NewNop()
	}
	return c.logger
}

// Session returns the log session.
func (c *Container) Session() *session.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Closers returns the registered closers in registration order.
func (c *Container) Closers() []io.Closer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]io.Closer, len(c.closers))
	copy(out, c.closers)
	return out
}

// Validate checks that all required components are set.
func (c *Container) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.config == nil {
		return errors.New(errors.Configuration, "config not initialized")
	}
	if c.logger == nil {
		return errors.New(errors.Configuration, "logger not initialized")
	}
	if c.session == nil {
		return errors.New(errors.Configuration, "session not initialized")
	}
	return nil
}
