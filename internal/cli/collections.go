package cli

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inkwellpress/editorial-desk/internal/color"
	"github.com/inkwellpress/editorial-desk/internal/di"
	"github.com/inkwellpress/editorial-desk/internal/domain"
	"github.com/inkwellpress/editorial-desk/internal/id"
	"github.com/inkwellpress/editorial-desk/internal/resolver"
	"github.com/inkwellpress/editorial-desk/internal/store"
)

// collectionSpec binds one typed store collection to its subcommands.
type collectionSpec[T domain.Entity] struct {
	name   string
	prefix string // id prefix for items added without an id
	pick   func(*store.Store) *store.Collection[T]
	setID  func(*T, string)
	label  func(T) string
	fill   func(*T) // optional defaults applied by add
}

func newCollectionCommands(opts *RootOptions) []*cobra.Command {
	return []*cobra.Command{
		newCollectionCommand(opts, collectionSpec[domain.Imprint]{
			name:   domain.CollectionImprints,
			prefix: id.PrefixImprint,
			pick:   func(s *store.Store) *store.Collection[domain.Imprint] { return s.Imprints },
			setID:  func(v *domain.Imprint, newID string) { v.ID = newID },
			label:  func(v domain.Imprint) string { return v.Name },
			fill: func(v *domain.Imprint) {
				if v.Color == "" {
					v.Color = color.Accent(cmp.Or(v.Name, v.ID))
				}
			},
		}),
		newCollectionCommand(opts, collectionSpec[domain.Pseudonym]{
			name:   domain.CollectionPseudonyms,
			prefix: id.PrefixPseudonym,
			pick:   func(s *store.Store) *store.Collection[domain.Pseudonym] { return s.Pseudonyms },
			setID:  func(v *domain.Pseudonym, newID string) { v.ID = newID },
			label:  func(v domain.Pseudonym) string { return v.Name },
		}),
		newCollectionCommand(opts, collectionSpec[domain.Series]{
			name:   domain.CollectionSeries,
			prefix: id.PrefixSeries,
			pick:   func(s *store.Store) *store.Collection[domain.Series] { return s.Series },
			setID:  func(v *domain.Series, newID string) { v.ID = newID },
			label:  func(v domain.Series) string { return v.Name },
		}),
		newCollectionCommand(opts, collectionSpec[domain.Book]{
			name:   domain.CollectionBooks,
			prefix: id.PrefixBook,
			pick:   func(s *store.Store) *store.Collection[domain.Book] { return s.Books },
			setID:  func(v *domain.Book, newID string) { v.ID = newID },
			label: func(v domain.Book) string {
				if v.Status == "" {
					return v.Title
				}
				return fmt.Sprintf("%s [%s]", v.Title, v.Status)
			},
		}),
		newCollectionCommand(opts, collectionSpec[domain.Task]{
			name:   domain.CollectionTasks,
			prefix: id.PrefixTask,
			pick:   func(s *store.Store) *store.Collection[domain.Task] { return s.Tasks },
			setID:  func(v *domain.Task, newID string) { v.ID = newID },
			label: func(v domain.Task) string {
				if v.Completed {
					return "[x] " + v.Title
				}
				return "[ ] " + v.Title
			},
		}),
		newCollectionCommand(opts, collectionSpec[domain.Sale]{
			name:   domain.CollectionSales,
			prefix: id.PrefixSale,
			pick:   func(s *store.Store) *store.Collection[domain.Sale] { return s.Sales },
			setID:  func(v *domain.Sale, newID string) { v.ID = newID },
			label: func(v domain.Sale) string {
				return fmt.Sprintf("%s %s %d units %.2f %s", v.Date, v.Platform, v.Units, v.Revenue, v.Currency)
			},
		}),
	}
}

// itemOptions holds the --data flag shared by add and update.
type itemOptions struct {
	*RootOptions
	Data string
}

func newCollectionCommand[T domain.Entity](rootOpts *RootOptions, spec collectionSpec[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   spec.name,
		Short: fmt.Sprintf("List and edit %s", spec.name),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s in document order", spec.name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				items := spec.pick(d.Store).List(ctx)
				return out.Success(items, func(w io.Writer) {
					if len(items) == 0 {
						fmt.Fprintf(w, "No %s.\n", spec.name)
						return
					}
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME")
					for _, item := range items {
						fmt.Fprintf(tw, "%s\t%s\n", item.GetID(), spec.label(item))
					}
					_ = tw.Flush()
				})
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Print one item as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				item, err := spec.pick(d.Store).Get(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(item, func(w io.Writer) { writeIndented(w, item) })
			})
		},
	}

	addOpts := &itemOptions{RootOptions: rootOpts}
	add := &cobra.Command{
		Use:   "add",
		Short: "Append an item given as JSON",
		Long: fmt.Sprintf(`Append an item to %s. The item is read from --data, or from stdin with --data -.
An item without an id gets a generated one. Imprints without a color get an accent
from the imprint palette picked by name.`, spec.name),
		Example: fmt.Sprintf(`  desk %s add --data '{"id":"x1"}'`, spec.name),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var item T
			if err := decodeItem(cmd, addOpts.Data, &item); err != nil {
				return err
			}
			if item.GetID() == "" {
				generated, err := id.Generate(spec.prefix)
				if err != nil {
					return err
				}
				spec.setID(&item, generated)
			}
			if spec.fill != nil {
				spec.fill(&item)
			}

			return rootOpts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				res, err := d.Workspace.Mutate(ctx, func(ctx context.Context) error {
					return spec.pick(d.Store).Add(ctx, item)
				})
				if err != nil {
					return err
				}
				return out.Success(item, changed("Added", spec.name, item.GetID(), res))
			})
		},
	}
	add.Flags().StringVar(&addOpts.Data, "data", "", "item as a JSON object, or - to read stdin")
	_ = add.MarkFlagRequired("data")

	updateOpts := &itemOptions{RootOptions: rootOpts}
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an item",
		Long: `Merge the JSON object from --data into the item and save it.
Fields not present in --data keep their values; the id cannot be changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := readItemData(cmd, updateOpts.Data)
			if err != nil {
				return err
			}

			return rootOpts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				coll := spec.pick(d.Store)

				// The item is read inside the mutation so it comes from the copy the
				// workspace resolved, not from a local mirror the server has moved past.
				var item T
				res, err := d.Workspace.Mutate(ctx, func(ctx context.Context) error {
					current, err := coll.Get(ctx, args[0])
					if err != nil {
						return err
					}
					if err := json.Unmarshal(patch, &current); err != nil {
						return WrapExitError(ExitCommandError, "invalid --data JSON", err)
					}
					spec.setID(&current, args[0])
					item = current
					return coll.Update(ctx, item)
				})
				if err != nil {
					return err
				}
				return out.Success(item, changed("Updated", spec.name, args[0], res))
			})
		},
	}
	update.Flags().StringVar(&updateOpts.Data, "data", "", "fields as a JSON object, or - to read stdin")
	_ = update.MarkFlagRequired("data")

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove an item",
		Long: `Remove every item with the given id. References to it from other collections are
left in place; see "desk dangling".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				res, err := d.Workspace.Mutate(ctx, func(ctx context.Context) error {
					return spec.pick(d.Store).Delete(ctx, args[0])
				})
				if err != nil {
					return err
				}
				return out.Success(map[string]string{"id": args[0]}, changed("Removed", spec.name, args[0], res))
			})
		},
	}

	cmd.AddCommand(list, get, add, update, rm)
	return cmd
}

// changed renders the text output of a mutation.
func changed(verb, collection, itemID string, res resolver.Result) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, "%s %s %s (%s)\n", verb, collection, itemID, res.Source)
	}
}

// decodeItem decodes the --data value, or stdin for "-", into v.
func decodeItem(cmd *cobra.Command, data string, v any) error {
	raw, err := readItemData(cmd, data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return WrapExitError(ExitCommandError, "invalid --data JSON", err)
	}
	return nil
}

// readItemData returns the --data value, or stdin for "-", once it looks like a JSON object.
func readItemData(cmd *cobra.Command, data string) ([]byte, error) {
	raw := []byte(data)
	if data == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read stdin", err)
		}
		raw = b
	}

	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("{")) {
		return nil, NewExitError(ExitCommandError, "--data must be a JSON object")
	}
	return trimmed, nil
}

func writeIndented(w io.Writer, v any) {
	if err := json.MarshalWrite(w, v, jsontext.WithIndent("  ")); err != nil {
		fmt.Fprintln(w, v)
		return
	}
	fmt.Fprintln(w)
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the audit log, newest last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				records := d.Store.History.List(ctx)
				if opts.Limit > 0 && len(records) > opts.Limit {
					records = records[len(records)-opts.Limit:]
				}
				return out.Success(records, func(w io.Writer) {
					if len(records) == 0 {
						fmt.Fprintln(w, "No history.")
						return
					}
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "TIME\tACTION\tBOOK\tDETAILS")
					for _, r := range records {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Timestamp.Local().Format("2006-01-02 15:04"), r.Action, r.BookTitle, r.Details)
					}
					_ = tw.Flush()
				})
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "show only the last n records")

	return cmd
}

// NewDanglingCommand creates the dangling command.
func NewDanglingCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dangling",
		Short: "List references to deleted imprints, pseudonyms, series and books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				refs := d.Store.GetData(ctx).Dangling()
				if refs == nil {
					refs = []domain.DanglingRef{}
				}
				return out.Success(refs, func(w io.Writer) {
					if len(refs) == 0 {
						fmt.Fprintln(w, "No dangling references.")
						return
					}
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "COLLECTION\tID\tFIELD\tMISSING")
					for _, r := range refs {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Collection, r.ID, r.Field, r.Target)
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

var settingFlags = []string{"brand-name", "currency", "theme", "default-imprint", "daily-word-goal"}

// SettingsOptions holds flags for settings set.
type SettingsOptions struct {
	*RootOptions
	BrandName        string
	Currency         string
	Theme            string
	DefaultImprintID string
	DailyWordGoal    int
}

// NewSettingsCommand creates the settings command.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SettingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show desk settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				settings := d.Store.GetData(ctx).Settings
				return out.Success(settings, func(w io.Writer) { writeIndented(w, settings) })
			})
		},
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Change desk settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !slices.ContainsFunc(settingFlags, flags.Changed) {
				return NewExitError(ExitCommandError, "nothing to change; pass at least one setting flag")
			}
			return opts.withDesk(cmd, func(ctx context.Context, d *di.Desk, out *OutputFormatter) error {
				var settings domain.Settings
				res, err := d.Workspace.Mutate(ctx, func(ctx context.Context) error {
					doc := d.Store.GetData(ctx)
					if flags.Changed("brand-name") {
						doc.Settings.BrandName = opts.BrandName
					}
					if flags.Changed("currency") {
						doc.Settings.Currency = opts.Currency
					}
					if flags.Changed("theme") {
						doc.Settings.Theme = opts.Theme
					}
					if flags.Changed("default-imprint") {
						doc.Settings.DefaultImprintID = opts.DefaultImprintID
					}
					if flags.Changed("daily-word-goal") {
						doc.Settings.DailyWordGoal = opts.DailyWordGoal
					}
					settings = doc.Settings
					return d.Store.SaveData(ctx, doc)
				})
				if err != nil {
					return err
				}
				return out.Success(settings, func(w io.Writer) {
					fmt.Fprintf(w, "Settings saved (%s)\n", res.Source)
				})
			})
		},
	}
	f := set.Flags()
	f.StringVar(&opts.BrandName, "brand-name", "", "name shown in the header and on exports")
	f.StringVar(&opts.Currency, "currency", "", "ISO currency code for sales")
	f.StringVar(&opts.Theme, "theme", "", "light or dark")
	f.StringVar(&opts.DefaultImprintID, "default-imprint", "", "imprint preselected for new books")
	f.IntVar(&opts.DailyWordGoal, "daily-word-goal", 0, "words per day")

	cmd.AddCommand(set)
	return cmd
}
