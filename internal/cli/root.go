// Package cli implements the desk command line: inspecting and editing the local document,
// syncing it with the server, backups and media.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inkwellpress/editorial-desk/internal/config"
	"github.com/inkwellpress/editorial-desk/internal/di"
	"github.com/inkwellpress/editorial-desk/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config is resolved against the environment and .env by config.Build.
	Config config.Flags
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the desk CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "desk",
		Short: "Editorial Desk data tools",
		Long: `Inspect and edit the editorial desk document.

The document lives in a local slot under --data-path. When --remote points at a
sync server the desk mirrors the server's copy and, with write-through enabled,
pushes every edit back to it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.Config.EnvFile, "env-file", ".env", "path to .env file")
	pf.StringVar(&opts.Config.DataPath, "data-path", "", "directory holding the local stores (default: ~/EditorialDesk)")
	pf.StringVar(&opts.Config.RemoteURL, "remote", "", "sync server base URL (default: $REMOTE_URL, empty for local only)")
	pf.StringVar(&opts.Config.RemoteTimeout, "remote-timeout", "", "per-request timeout for the sync server (default: 10s)")
	pf.StringVar(&opts.Config.WriteThrough, "write-through", "", "push edits to the server in server mode (default: false)")
	pf.StringVar(&opts.Config.LocalQuota, "local-quota", "", "largest local document in bytes, 0 for unlimited (default: 5242880)")
	pf.StringVar(&opts.Config.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.Config.LogFile, "log-file", "", "rotating log file (default: stderr)")

	// Add subcommands
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewPushCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(newCollectionCommands(opts)...)
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewDanglingCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))
	cmd.AddCommand(NewMediaCommand(opts))

	return cmd
}

// Execute runs the desk CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	if err := cmd.ExecuteContext(ctx); err != nil {
		out := &OutputFormatter{Format: opts.Format, Writer: os.Stdout, ErrWriter: os.Stderr}
		_ = out.Error(err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// withDesk resolves the configuration, opens the desk's stores for the duration of fn and
// shuts them down afterwards.
func (o *RootOptions) withDesk(cmd *cobra.Command, fn func(ctx context.Context, d *di.Desk, out *OutputFormatter) error) error {
	out := o.formatter(cmd)

	cfg, err := config.Build(o.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	out.VerboseLog("Data path: %s", cfg.Storage.DataPath)

	alerter := store.AlerterFunc(func(message string) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", message)
	})

	injector := di.NewDeskContainer(cfg, alerter)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			out.VerboseLog("Shutdown: %v", err)
		}
	}()

	d, err := di.ResolveDesk(injector)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open the desk", err)
	}

	return fn(cmd.Context(), d, out)
}
