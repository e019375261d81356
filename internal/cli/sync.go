package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwellpress/editorial-desk/internal/di"
	"github.com/inkwellpress/editorial-desk/internal/domain"
	"github.com/inkwellpress/editorial-desk/internal/remote"
	"github.com/inkwellpress/editorial-desk/internal/resolver"
)

// StatusView summarizes the resolved document.
type StatusView struct {
	Source       resolver.Source `json:"source"`
	Banner       string          `json:"banner"`
	Remote       string          `json:"remote,omitempty"`
	WriteThrough bool            `json:"writeThrough"`
	Counts       map[string]int  `json:"counts"`
	Dangling     int             `json:"dangling"`
}

func newStatusView(d *di.Desk, res resolver.Result) StatusView {
	v := StatusView{
		Source:       res.Source,
		Banner:       res.Source.Banner(),
		Remote:       d.Remote.BaseURL(),
		WriteThrough: d.Config.Remote.WriteThrough,
		Counts:       map[string]int{},
	}
	if res.Data != nil {
		v.Counts = res.Data.Counts()
		v.Dangling = len(res.Data.Dangling())
	}
	return v
}

func (v StatusView) render(w io.Writer) {
	fmt.Fprintln(w, v.Banner)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Source:\t%s\n", v.Source)
	remoteURL := v.Remote
	if remoteURL == "" {
		remoteURL = "(not configured)"
	}
	fmt.Fprintf(tw, "Remote:\t%s\n", remoteURL)
	for _, name := range collectionOrder {
		fmt.Fprintf(tw, "%s:\t%d\n", name, v.Counts[name])
	}
	if v.Dangling > 0 {
		fmt.Fprintf(tw, "dangling refs:\t%d\n", v.Dangling)
	}
	_ = tw.Flush()
}

var collectionOrder = []string{
	domain.CollectionImprints,
	domain.CollectionPseudonyms,
	domain.CollectionSeries,
	domain.CollectionBooks,
	domain.CollectionTasks,
	domain.CollectionSales,
	domain.CollectionHistory,
}

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Resolve the data source and summarize the document",
		Long: `Probe the sync server, decide where the document comes from and print a summary.

  server        the server holds a document; it is mirrored into the local slot
  empty_server  the server is reachable but has never been pushed to
  local         the server is unreachable or not configured`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				view := newStatusView(d, d.Workspace.Refresh(ctx))
				return out.Success(view, view.render)
			})
		},
	}
}

// PushOptions holds flags for the push command.
type PushOptions struct {
	*RootOptions
	Yes bool
}

// NewPushCommand creates the push command.
func NewPushCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PushOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Replace the server's document with the local one",
		Long: `Replace the server's document with the local one.

The server keeps a single document and the last write wins, so this overwrites
whatever another device pushed. Pass --yes to confirm.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return NewExitError(ExitCommandError, "push overwrites the server's document; re-run with --yes to confirm")
			}
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				if d.Remote.BaseURL() == "" {
					return NewExitError(ExitCommandError, "no sync server configured; set --remote or REMOTE_URL")
				}
				res, ok := d.Workspace.PushToServer(ctx)
				if !ok {
					return NewExitError(ExitFailure, "push failed: the server is unreachable or rejected the document")
				}
				view := newStatusView(d, res)
				return out.Success(view, func(w io.Writer) {
					fmt.Fprintf(w, "Pushed local data to %s\n", view.Remote)
					view.render(w)
				})
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm overwriting the server's document")

	return cmd
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow server changes and keep the local mirror current",
		Long: `Subscribe to the server's event stream. Every document.replaced event triggers a
refresh, which mirrors the new server document into the local slot. Stops on Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				return watch(ctx, d, out)
			})
		},
	}
}

func watch(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
	cancel := d.Workspace.Subscribe(func(res resolver.Result) {
		view := newStatusView(d, res)
		_ = out.Success(view, func(w io.Writer) {
			fmt.Fprintf(w, "%s  %s  books=%d tasks=%d sales=%d\n",
				time.Now().Format(time.TimeOnly), view.Source,
				view.Counts[domain.CollectionBooks], view.Counts[domain.CollectionTasks], view.Counts[domain.CollectionSales])
		})
	})
	defer cancel()

	d.Workspace.Refresh(ctx)

	err := d.Remote.Watch(ctx, func(ev remote.DocumentReplaced) {
		out.VerboseLog("document.replaced: %d bytes at %s", ev.SizeBytes, ev.UpdatedAt.Format(time.RFC3339))
		d.Workspace.Refresh(ctx)
	})
	switch {
	case errors.Is(err, remote.ErrNotConfigured):
		return WrapExitError(ExitCommandError, "no sync server configured; set --remote or REMOTE_URL", err)
	case errors.Is(err, context.Canceled):
		return nil
	case err != nil:
		return WrapExitError(ExitFailure, "event stream ended", err)
	}
	return nil
}
