package ui

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/marquee/internal/datatable"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		view  viewFlags
		scope string
		ids   []string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export events to CSV",
		Long: `Export events as CSV through the table engine.

The full scope writes every row matching the filters and search. The
selected scope writes only the events named with --ids.`,
		Example: `  marquee export
  marquee export -f "status = published" --out /tmp
  marquee export --ids 0b6f...,5c1e...`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := datatable.Scope(strings.ToLower(scope))
			if scope == "" {
				s = datatable.ScopeFull
				if len(ids) > 0 {
					s = datatable.ScopeSelected
				}
			}
			if s != datatable.ScopeFull && s != datatable.ScopeSelected {
				return fmt.Errorf("invalid scope %q: must be selected or full", scope)
			}

			tc, err := view.tableConfig(a.config.Table)
			if err != nil {
				return err
			}
			if out != "" {
				path, err := resolvePath(out)
				if err != nil {
					return err
				}
				tc.ExportDir = path
			}

			l, err := a.openListing(cmd, tc)
			if err != nil {
				return err
			}
			t := l.Table()
			if err := view.apply(cmd.Context(), t); err != nil {
				return err
			}
			if len(ids) > 0 {
				t.SetRowsSelected(ids, true)
			}

			path, err := l.Export(cmd.Context(), s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	view.register(cmd)
	cmd.Flags().StringVar(&scope, "scope", "", "Rows to export: selected or full (default full, or selected with --ids)")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Event IDs to select (comma-separated)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Directory to write to (defaults to [table] export_dir)")

	return cmd
}
