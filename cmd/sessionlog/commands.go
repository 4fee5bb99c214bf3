package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tungetti/sessionlog/internal/app"
	"github.com/tungetti/sessionlog/internal/config"
	"github.com/tungetti/sessionlog/internal/errors"
	"github.com/tungetti/sessionlog/internal/logging"
	"github.com/tungetti/sessionlog/internal/verbosity"
	"github.com/tungetti/sessionlog/internal/watch"
)

func (c *CLI) newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Log lines from standard input to a new session file",
		Long: `Start a log session and log every line read from standard input.

A line starting with "E:", "W:" or "I:" is logged as Error, Warning or Info
with the prefix removed. Other lines use --severity. The session is flushed
and closed when input ends or on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: c.runSession,
	}
	cmd.Flags().StringP("severity", "s", verbosity.Info.String(), "severity of lines without a prefix")
	cmd.Flags().Duration("idle-flush", 2*time.Second, "flush after this long without input (0 disables)")
	_ = c.v.BindPFlag("severity", cmd.Flags().Lookup("severity"))
	_ = c.v.BindPFlag("idle-flush", cmd.Flags().Lookup("idle-flush"))
	return cmd
}

func (c *CLI) runSession(cmd *cobra.Command, _ []string) error {
	sev, err := verbosity.ParseLevel(c.v.GetString("severity"))
	if err != nil {
		return errors.Wrap(errors.Usage, "invalid --severity", err).WithOp("cli.run")
	}
	if sev == verbosity.Off {
		return errors.New(errors.Usage, "--severity cannot be Off").WithOp("cli.run")
	}

	opts := app.DefaultOptions()
	opts.Version = Version
	opts.BuildTime = BuildTime
	opts.GitCommit = GitCommit
	opts.ConfigPath = c.v.GetString("config")
	opts.DiagLogPath = c.v.GetString("diag-log")
	opts.DiagLevel = logging.ParseLevel(c.v.GetString("diag-level"))
	opts.NoColor = c.v.GetBool("no-color")
	opts.Console = cmd.OutOrStdout()
	opts.DiagOutput = cmd.ErrOrStderr()
	opts.IdleFlush = c.v.GetDuration("idle-flush")

	application := app.New(opts)
	ctx := cmd.Context()

	if err := application.Initialize(ctx); err != nil {
		// Releases whatever Initialize opened before failing.
		_ = application.Shutdown()
		return err
	}
	if err := application.RunWithLifecycle(ctx, cmd.InOrStdin(), sev); err != nil {
		return err
	}
	if application.Signal() != nil {
		return errUserAbort
	}
	return nil
}

func (c *CLI) newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.v.GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK (%s)\n", path)
			fmt.Fprintf(out, "  log dir:           %s\n", cfg.LogDir)
			fmt.Fprintf(out, "  bytes to buffer:   %d\n", cfg.BytesToBuffer)
			fmt.Fprintf(out, "  max message chars: %d\n", cfg.MaxMessageChars)
			fmt.Fprintf(out, "  verbosity:         %s\n", cfg.Verbosity)
			return nil
		},
	}
}

func (c *CLI) newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Long: `Write the built-in configuration to path, or to --config when no path is
given. A .yaml or .yml extension selects YAML.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.v.GetString("config")
			if len(args) == 1 {
				path = args[0]
			}

			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf(errors.Usage, "%s already exists (use --force to overwrite)", path).WithOp("cli.init")
			}

			if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Follow the newest session file",
		Long: `Print lines from the newest session file in dir as they are flushed,
switching to each new session file as it is created. Without dir, the log
directory from the configuration is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := config.Load(c.v.GetString("config"))
				if err != nil {
					return err
				}
				dir = cfg.LogDir
			}

			fromStart, _ := cmd.Flags().GetBool("from-start")
			follower := watch.NewFollower(dir, cmd.OutOrStdout(), watch.Options{
				FromStart: fromStart,
				NoColor:   c.v.GetBool("no-color"),
				Logger:    c.diagLogger(cmd.ErrOrStderr()),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return follower.Run(ctx)
		},
	}
	cmd.Flags().Bool("from-start", false, "print the newest file from its beginning")
	return cmd
}

func (c *CLI) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sessionlog %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", GitCommit)
			fmt.Fprintf(out, "  built:  %s\n", BuildTime)
		},
	}
}
