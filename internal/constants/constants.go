// Package constants defines application-wide constants for sessionlog.
// All constants are typed to ensure type safety and prevent accidental misuse.
package constants

import "time"

// Application metadata
const (
	// AppName is the application name used in logs, configs, and user messages.
	AppName string = "sessionlog"
	// AppDescription is a short description of the application.
	AppDescription string = "Buffered session-file debug logger"
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix string = "SESSIONLOG_"
)

// ExitCode represents process exit codes for different termination scenarios.
type ExitCode int

const (
	// ExitSuccess indicates the application completed successfully.
	ExitSuccess ExitCode = iota
	// ExitError indicates a general error occurred.
	ExitError
	// ExitConfig indicates the configuration could not be loaded or validated.
	ExitConfig
	// ExitSession indicates the log session could not be started or flushed.
	ExitSession
	// ExitUserAbort indicates the user interrupted the process.
	ExitUserAbort
)

// Int returns the exit code as an int for use with os.Exit().
func (e ExitCode) Int() int {
	return int(e)
}

// Session file naming. SessionTimeLayout is the Go form of strftime "%F_%T".
const (
	// SessionTimeLayout formats the UTC start time of a session.
	SessionTimeLayout string = "2006-01-02_15:04:05"
	// SessionFileExt is appended to every session file name.
	SessionFileExt string = ".log"
	// LineSeparator terminates every rendered line and every flushed chunk.
	LineSeparator string = "\n"
)

// Defaults used when a Config is built in code rather than loaded from a file.
const (
	// DefaultLogDir is the directory session files are written to.
	DefaultLogDir string = "Log/"
	// DefaultBytesToBuffer is the flush threshold in bytes.
	DefaultBytesToBuffer int = 4096
	// DefaultMaxMessageChars caps a rendered line, prefix and newline included.
	DefaultMaxMessageChars int = 1023
	// DefaultConfigFile is the key-value config file looked up by the CLI.
	DefaultConfigFile string = "log.config"
)

// File permissions for created directories and session files.
const (
	DirPerm  = 0755
	FilePerm = 0644
)

// ShutdownTimeout bounds the final flush when the CLI receives a signal.
const ShutdownTimeout time.Duration = 10 * time.Second
