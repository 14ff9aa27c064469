package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/marquee/internal/config"
	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/event"
	"github.com/javiermolinar/marquee/internal/tui/input"
)

// viewFlags shape the table before a command reads it.
type viewFlags struct {
	filters  []string
	search   string
	sort     string
	desc     bool
	page     int
	pageSize int
	mode     string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&v.filters, "filter", "f", nil, `Filter as "<column> <operator> <value>" (repeatable)`)
	cmd.Flags().StringVarP(&v.search, "search", "s", "", "Search every filterable column")
	cmd.Flags().StringVar(&v.sort, "sort", "", "Column to sort by")
	cmd.Flags().BoolVar(&v.desc, "desc", false, "Sort descending")
	cmd.Flags().IntVar(&v.page, "page", 1, "Page to show (1-based)")
	cmd.Flags().IntVar(&v.pageSize, "page-size", 0, "Rows per page (defaults to [table] page_size)")
	cmd.Flags().StringVar(&v.mode, "mode", "", "Override every table mode: local or manual")
}

// tableConfig applies the mode and page size overrides to base.
func (v *viewFlags) tableConfig(base config.TableConfig) (config.TableConfig, error) {
	tc := base
	switch v.mode {
	case "":
	case config.ModeLocal, config.ModeManual:
		tc.Pagination, tc.Sorting, tc.Filtering = v.mode, v.mode, v.mode
	default:
		return tc, fmt.Errorf("invalid mode %q: must be local or manual", v.mode)
	}
	if v.pageSize < 0 {
		return tc, fmt.Errorf("invalid page size %d", v.pageSize)
	}
	if v.pageSize > 0 {
		tc.PageSize = v.pageSize
		if !slices.Contains(tc.PageSizes, v.pageSize) {
			tc.PageSizes = append(append([]int(nil), tc.PageSizes...), v.pageSize)
		}
	}
	if v.sort != "" {
		// An explicit sort replaces the configured default.
		tc.DefaultSort = ""
	}
	return tc, nil
}

// apply runs the filters, search, sort and paging against t.
func (v *viewFlags) apply(ctx context.Context, t *datatable.Table[*event.Event]) error {
	for _, raw := range v.filters {
		key, op, value, err := parseFilter(raw, t.Columns())
		if err != nil {
			return err
		}
		if err := t.ApplyFilter(ctx, key, op, value); err != nil {
			return err
		}
	}
	if v.search != "" {
		if err := t.Search(ctx, v.search); err != nil {
			return err
		}
	}
	if v.sort != "" {
		key, ok := columnKey(v.sort, t.Columns(), func(c datatable.Column[*event.Event]) bool { return c.Sortable })
		if !ok {
			return fmt.Errorf("cannot sort by %q", v.sort)
		}
		dir := datatable.SortAsc
		if v.desc {
			dir = datatable.SortDesc
		}
		if err := t.SortBy(ctx, key, dir); err != nil {
			return err
		}
	}
	if v.page < 1 {
		return fmt.Errorf("invalid page %d", v.page)
	}
	for i := 1; i < v.page; i++ {
		if !t.CanNextPage() {
			return fmt.Errorf("page %d is past the last page (%d)", v.page, t.PageCount())
		}
		if err := t.NextPage(ctx); err != nil {
			return err
		}
	}
	return nil
}

// parseFilter reads "<column> <operator> <value>". Quotes group words.
func parseFilter(raw string, columns []datatable.Column[*event.Event]) (string, datatable.Operator, string, error) {
	args, err := input.Fields(raw)
	if err != nil {
		return "", "", "", err
	}
	if len(args) < 3 {
		return "", "", "", fmt.Errorf("invalid filter %q: want <column> <operator> <value>", raw)
	}
	key, ok := columnKey(args[0], columns, func(c datatable.Column[*event.Event]) bool { return c.Filterable })
	if !ok {
		return "", "", "", fmt.Errorf("cannot filter on %q", args[0])
	}
	op, err := datatable.ParseOperator(args[1])
	if err != nil {
		return "", "", "", err
	}
	return key, op, strings.Join(args[2:], " "), nil
}

// columnKey resolves a data column by key or label, ignoring case.
func columnKey(name string, columns []datatable.Column[*event.Event], keep func(datatable.Column[*event.Event]) bool) (string, bool) {
	for _, c := range columns {
		if c.Kind != datatable.KindData || !keep(c) {
			continue
		}
		if strings.EqualFold(c.Key, name) || strings.EqualFold(c.Label, name) {
			return c.Key, true
		}
	}
	return "", false
}

func (a *App) listCmd() *cobra.Command {
	var (
		view    viewFlags
		columns []string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of events",
		Long: `Print one page of the event table.

Filters, search, sort and paging go through the same table engine as the
interactive console, in the modes set by [table] or --mode.`,
		Example: `  marquee list
  marquee list -f "city = Berlin" --sort startsAt --desc
  marquee list -s jazz --page 2 --page-size 30
  marquee list --columns title,city,price`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tc, err := view.tableConfig(a.config.Table)
			if err != nil {
				return err
			}
			l, err := a.openListing(cmd, tc)
			if err != nil {
				return err
			}
			t := l.Table()
			if all {
				t.ShowAllColumns()
			}
			if len(columns) > 0 {
				if err := onlyColumns(t, columns); err != nil {
					return err
				}
			}
			if err := view.apply(cmd.Context(), t); err != nil {
				return err
			}

			printFrame(cmd.OutOrStdout(), t.Frame())
			return nil
		},
	}

	view.register(cmd)
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to show (comma-separated keys or labels)")
	cmd.Flags().BoolVar(&all, "all-columns", false, "Show hidden columns too")

	return cmd
}

// onlyColumns hides every hideable column not named in keep.
func onlyColumns(t *datatable.Table[*event.Event], keep []string) error {
	want := make(map[string]bool, len(keep))
	for _, name := range keep {
		key, ok := columnKey(name, t.Columns(), func(datatable.Column[*event.Event]) bool { return true })
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}
		want[key] = true
	}
	toolbar := t.Frame().Toolbar
	if toolbar == nil {
		return nil
	}
	for _, v := range toolbar.Visibility {
		if v.Visible != want[v.Key] {
			t.ToggleColumnVisibility(v.Key)
		}
	}
	return nil
}
