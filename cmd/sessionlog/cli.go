package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tungetti/sessionlog/internal/constants"
	"github.com/tungetti/sessionlog/internal/errors"
	"github.com/tungetti/sessionlog/internal/logging"
)

// errUserAbort is returned by commands that were ended by SIGINT or SIGTERM.
var errUserAbort = stderrors.New("interrupted")

// CLI encapsulates the command-line interface for sessionlog.
type CLI struct {
	root *cobra.Command
	v    *viper.Viper

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewCLI creates a new CLI instance bound to the process streams.
func NewCLI() *CLI {
	return newCLI(os.Stdin, os.Stdout, os.Stderr)
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *CLI {
	c := &CLI{
		v:      viper.New(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
	c.root = c.newRootCommand()
	return c
}

// Run parses arguments and executes the appropriate command.
// It returns an exit code suitable for os.Exit().
func (c *CLI) Run(args []string) int {
	c.root.SetArgs(args)
	err := c.root.Execute()
	if err == nil {
		return constants.ExitSuccess.Int()
	}

	code := exitCode(err)
	if code != constants.ExitUserAbort {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
	}
	return code.Int()
}

func (c *CLI) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     constants.AppName,
		Short:   constants.AppDescription,
		Version: Version,
		Long: `sessionlog writes debug lines to a per-run session file named after the
UTC start time, buffering them in memory and flushing in chunks. Lines
selected by the configured verbosity are also echoed to the console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.SetVersionTemplate(fmt.Sprintf("%s {{.Version}} (commit %s, built %s)\n", constants.AppName, GitCommit, BuildTime))

	flags := root.PersistentFlags()
	flags.StringP("config", "c", constants.DefaultConfigFile, "configuration file (KEY value lines, or YAML by extension)")
	flags.String("diag-log", "", "also write diagnostics to this rotating file")
	flags.String("diag-level", logging.LevelWarn.String(), "diagnostics level (debug, info, warn, error)")
	flags.Bool("no-color", false, "disable coloured output")
	for _, name := range []string{"config", "diag-log", "diag-level", "no-color"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}

	// SESSIONLOG_CONFIG, SESSIONLOG_DIAG_LOG and so on override flag defaults.
	c.v.SetEnvPrefix(strings.TrimSuffix(constants.EnvPrefix, "_"))
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(
		c.newRunCommand(),
		c.newCheckCommand(),
		c.newInitCommand(),
		c.newWatchCommand(),
		c.newVersionCommand(),
	)
	return root
}

// diagLogger builds the console diagnostics logger from the global flags.
func (c *CLI) diagLogger(w io.Writer) logging.Logger {
	opts := logging.DefaultOptions()
	opts.Output = w
	opts.Level = logging.ParseLevel(c.v.GetString("diag-level"))
	opts.NoColor = c.v.GetBool("no-color")
	return logging.New(opts)
}

// exitCode maps a command error to a process exit code.
func exitCode(err error) constants.ExitCode {
	if err == nil {
		return constants.ExitSuccess
	}
	if stderrors.Is(err, errUserAbort) {
		return constants.ExitUserAbort
	}
	switch errors.GetCode(err) {
	case errors.Configuration, errors.Validation, errors.NotFound:
		return constants.ExitConfig
	case errors.IO, errors.Permission:
		return constants.ExitSession
	default:
		return constants.ExitError
	}
}
