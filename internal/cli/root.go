// Package cli implements the bizstate command line over a Workspace.
package cli

import (
	"bizstate/internal/config"
	"bizstate/internal/core"
	"bizstate/internal/durable"
	"bizstate/internal/logging"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format  string // "json" | "text"
	EnvFile string
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the bizstate CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:   "bizstate",
		Short: "Inspect and drive a bizstate workspace",
		Long: `bizstate manages the durable state of a small-business workspace:
business profiles, customers, orders, payments, notifications and more.

Storage is selected with BIZSTATE_STORAGE_DRIVER (default sqlite); see
internal/config for every variable.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the environment")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newActiveCommand(opts))
	cmd.AddCommand(newSwitchCommand(opts))
	cmd.AddCommand(newNotifyCommand(opts))
	cmd.AddCommand(newReadCommand(opts))
	cmd.AddCommand(newCheckRefsCommand(opts))
	cmd.AddCommand(newDumpCommand(opts))
	cmd.AddCommand(newDemoCommand(opts))
	return cmd
}

// session is an opened workspace plus what is needed to close it.
type session struct {
	ws   *core.Workspace
	log  *logrus.Logger
	cfg  config.Config
	seed core.Seed
	out  output
}

func (s *session) Close() error { return s.ws.Close() }

func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}
	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	log, err := logging.New(level, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure logging", err)
	}
	seed := core.DefaultSeed()
	if cfg.SeedFile != "" {
		if seed, err = core.LoadSeedFile(cfg.SeedFile); err != nil {
			return nil, WrapExitError(ExitCommandError, "load seed", err)
		}
	}
	backend, err := durable.Open(cmd.Context(), cfg.Storage)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open storage", err)
	}
	metrics, err := durable.NewMetrics(nil)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	backend = durable.Instrument(backend, metrics, nil)
	log.WithField("driver", backend.Driver()).Debug("storage opened")
	ws := core.OpenWorkspace(cmd.Context(), backend,
		core.WithLogger(log), core.WithMetrics(metrics), core.WithSeed(seed))
	return &session{ws: ws, log: log, cfg: cfg, seed: seed, out: output{format: opts.Format, w: cmd.OutOrStdout()}}, nil
}

// withSession opens a session, runs fn and closes the session.
func withSession(opts *RootOptions, fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, opts)
		if err != nil {
			return err
		}
		runErr := fn(cmd, args, s)
		if err := s.Close(); err != nil && runErr == nil {
			runErr = fmt.Errorf("close storage: %w", err)
		}
		return runErr
	}
}
