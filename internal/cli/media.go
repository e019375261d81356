package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"maps"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inkwellpress/editorial-desk/internal/di"
	"github.com/inkwellpress/editorial-desk/internal/media"
)

// MediaEntry describes one stored blob.
type MediaEntry struct {
	Key string `json:"key"`
	*media.Info
	Error string `json:"error,omitempty"`
}

func inspectEntry(key, dataURL string) MediaEntry {
	info, err := media.Inspect(dataURL)
	if err != nil {
		return MediaEntry{Key: key, Error: err.Error()}
	}
	return MediaEntry{Key: key, Info: info}
}

func (e MediaEntry) dimensions() string {
	if e.Info == nil || e.Width == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// NewMediaCommand creates the media command and its subcommands.
func NewMediaCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Manage images kept outside the document",
		Long: fmt.Sprintf(`Manage images kept outside the document: author photos and imprint logos keyed by
the owner's id, plus the %q and %q branding images.`, media.KeyBrandLogo, media.KeyFavicon),
	}

	cmd.AddCommand(
		newMediaListCommand(opts),
		newMediaGetCommand(opts),
		newMediaPutCommand(opts),
		newMediaRemoveCommand(opts),
		newMediaClearCommand(opts),
		newMediaResetBrandingCommand(opts),
		newMediaInspectCommand(opts),
	)
	return cmd
}

func newMediaListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored blobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				all, err := d.Media.GetAll(ctx)
				if err != nil {
					return err
				}
				entries := make([]MediaEntry, 0, len(all))
				for _, key := range slices.Sorted(maps.Keys(all)) {
					entries = append(entries, inspectEntry(key, all[key]))
				}
				return out.Success(entries, func(w io.Writer) {
					if len(entries) == 0 {
						fmt.Fprintln(w, "No media.")
						return
					}
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "KEY\tTYPE\tBYTES\tSIZE")
					for _, e := range entries {
						if e.Info == nil {
							fmt.Fprintf(tw, "%s\t?\t-\t%s\n", e.Key, e.Error)
							continue
						}
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Key, e.MIME, e.Bytes, e.dimensions())
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

func newMediaGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a blob's data URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				dataURL, ok, err := d.Media.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return NewExitError(ExitFailure, fmt.Sprintf("no media stored under %q", args[0]))
				}
				return out.Success(map[string]string{"key": args[0], "dataUrl": dataURL}, func(w io.Writer) {
					fmt.Fprintln(w, dataURL)
				})
			})
		},
	}
}

func newMediaPutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <file>",
		Short: "Store an image file under key, replacing any previous blob",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, path := args[0], args[1]
			in, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			payload, err := io.ReadAll(in)
			_ = in.Close()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read image", err)
			}
			dataURL := toDataURL(path, payload)

			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				if err := d.Media.Save(ctx, key, dataURL); err != nil {
					return err
				}
				entry := inspectEntry(key, dataURL)
				return out.Success(entry, func(w io.Writer) {
					if entry.Info == nil {
						fmt.Fprintf(w, "Saved %s\n", key)
						return
					}
					fmt.Fprintf(w, "Saved %s (%s, %d bytes, %s)\n", key, entry.MIME, entry.Bytes, entry.dimensions())
				})
			})
		},
	}
}

// toDataURL encodes payload as a base64 data URL. The MIME type comes from the file
// extension, or is sniffed when the extension is unknown.
func toDataURL(path string, payload []byte) string {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(payload)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func newMediaRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>...",
		Short: "Delete blobs; missing keys are ignored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				if err := d.Media.Delete(ctx, args...); err != nil {
					return err
				}
				return out.Success(map[string][]string{"deleted": args}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted %s\n", strings.Join(args, ", "))
				})
			})
		},
	}
}

// ClearOptions holds flags for media clear.
type ClearOptions struct {
	*RootOptions
	Yes bool
}

func newMediaClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every blob",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return NewExitError(ExitCommandError, "clear deletes every image; re-run with --yes to confirm")
			}
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				if err := d.Media.Clear(ctx); err != nil {
					return err
				}
				return out.Success(map[string]bool{"cleared": true}, func(w io.Writer) {
					fmt.Fprintln(w, "Media cleared")
				})
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm deleting every image")

	return cmd
}

func newMediaResetBrandingCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-branding",
		Short: "Delete the brand logo and favicon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				if err := d.Media.ResetBranding(ctx); err != nil {
					return err
				}
				return out.Success(map[string][]string{"deleted": {media.KeyBrandLogo, media.KeyFavicon}}, func(w io.Writer) {
					fmt.Fprintln(w, "Branding reset")
				})
			})
		},
	}
}

func newMediaInspectCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <key>",
		Short: "Show a blob's type, size, dimensions and BlurHash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				dataURL, ok, err := d.Media.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return NewExitError(ExitFailure, fmt.Sprintf("no media stored under %q", args[0]))
				}
				info, err := media.Inspect(dataURL)
				if err != nil {
					return err
				}
				entry := MediaEntry{Key: args[0], Info: info}
				return out.Success(entry, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintf(tw, "Key:\t%s\n", entry.Key)
					fmt.Fprintf(tw, "Type:\t%s\n", info.MIME)
					fmt.Fprintf(tw, "Bytes:\t%d\n", info.Bytes)
					fmt.Fprintf(tw, "Size:\t%s\n", entry.dimensions())
					if info.BlurHash != "" {
						fmt.Fprintf(tw, "BlurHash:\t%s\n", info.BlurHash)
					}
					_ = tw.Flush()
				})
			})
		},
	}
}
