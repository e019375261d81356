package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkwellpress/editorial-desk/internal/backup"
	"github.com/inkwellpress/editorial-desk/internal/di"
	"github.com/inkwellpress/editorial-desk/internal/domain"
)

// BackupOptions holds flags for export and import.
type BackupOptions struct {
	*RootOptions
	Archive bool
}

// ExportView describes a finished export.
type ExportView struct {
	Path     string           `json:"path"`
	Counts   map[string]int   `json:"counts"`
	Manifest *backup.Manifest `json:"manifest,omitempty"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write a backup of the local document",
		Long: `Write the local document as indented JSON, to file or to stdout when no file is given.
With --archive the backup is a zip holding a manifest, the document and every media blob.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				return export(ctx, cmd, d, out, path, opts.Archive)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "write a zip archive including media")

	return cmd
}

func export(ctx context.Context, cmd *cobra.Command, d *di.Desk, out *OutputFormatter, path string, archive bool) error {
	if path == "-" {
		if archive {
			_, err := d.Backup.ExportArchive(ctx, cmd.OutOrStdout())
			return err
		}
		return d.Backup.Export(ctx, cmd.OutOrStdout())
	}

	f, err := os.Create(path) //#nosec G304 -- path comes from the user on purpose
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create export file", err)
	}

	view := ExportView{Path: path}
	if archive {
		view.Manifest, err = d.Backup.ExportArchive(ctx, f)
		if view.Manifest != nil {
			view.Counts = view.Manifest.Counts
		}
	} else {
		err = d.Backup.Export(ctx, f)
		view.Counts = d.Store.GetData(ctx).Counts()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("export: %w", err)
	}

	return out.Success(view, func(w io.Writer) {
		fmt.Fprintf(w, "Exported %d books to %s\n", view.Counts[domain.CollectionBooks], path)
		if view.Manifest != nil {
			fmt.Fprintf(w, "Archive includes %d media blobs\n", view.Manifest.MediaCount)
		}
	})
}

// ImportView describes a finished import.
type ImportView struct {
	Source      string         `json:"source"`
	Counts      map[string]int `json:"counts"`
	MediaSaved  int            `json:"mediaSaved,omitempty"`
	MediaFailed int            `json:"mediaFailed,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the local document with a backup",
		Long: `Replace the local document with a backup written by export. The backup is validated
first; an invalid file leaves the local document untouched. A history record notes the import.
Use - to read a JSON backup from stdin. With --archive the file is a zip written by export --archive
and its media blobs are restored too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Archive && args[0] == "-" {
				return NewExitError(ExitCommandError, "archives cannot be read from stdin")
			}
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				return importBackup(ctx, cmd, d, out, args[0], opts.Archive)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "read a zip archive including media")

	return cmd
}

func importBackup(ctx context.Context, cmd *cobra.Command, d *di.Desk, out *OutputFormatter, path string, archive bool) error {
	in, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	defer in.Close()

	var view ImportView
	res, err := d.Workspace.Mutate(ctx, func(ctx context.Context) error {
		if !archive {
			doc, err := d.Backup.Import(ctx, in)
			if err != nil {
				return err
			}
			view.Counts = doc.Counts()
			return nil
		}

		f, ok := in.(*os.File)
		if !ok {
			return NewExitError(ExitCommandError, "archives must be read from a file")
		}
		info, err := f.Stat()
		if err != nil {
			return err
		}
		result, err := d.Backup.ImportArchive(ctx, f, info.Size())
		if err != nil {
			return err
		}
		view.Counts = result.Document.Counts()
		view.MediaSaved = result.MediaSaved
		view.MediaFailed = result.MediaFailed
		return nil
	})
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	view.Source = string(res.Source)

	return out.Success(view, func(w io.Writer) {
		fmt.Fprintf(w, "Imported %d books, %d pseudonyms, %d imprints (%s)\n",
			view.Counts[domain.CollectionBooks], view.Counts[domain.CollectionPseudonyms],
			view.Counts[domain.CollectionImprints], view.Source)
		if archive {
			fmt.Fprintf(w, "Restored %d media blobs", view.MediaSaved)
			if view.MediaFailed > 0 {
				fmt.Fprintf(w, ", %d could not be saved", view.MediaFailed)
			}
			fmt.Fprintln(w)
		}
	})
}

// readInput opens path for reading, or stdin for "-".
func readInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path) //#nosec G304 -- path comes from the user on purpose
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open input", err)
	}
	return f, nil
}
