package datatable

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ExportColumn is one exported column.
type ExportColumn struct {
	Key   string
	Label string
}

// Export is the descriptor consumed by the CSV writer: exportable columns in
// declaration order and the displayed value of each cell.
type Export struct {
	Columns []ExportColumn
	Rows    [][]string
}

// Len returns the number of exported rows.
func (e *Export) Len() int {
	return len(e.Rows)
}

// WriteCSV writes a header of column labels followed by one record per row.
func (e *Export) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	if err := cw.WriteAll(e.Rows); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	return nil
}

// CSV returns the export serialised as CSV.
func (e *Export) CSV() (string, error) {
	var buf bytes.Buffer
	if err := e.WriteCSV(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Export builds the export of scope. The selected scope covers the selected
// rows; the full scope covers the filtered rows in local mode and the loaded
// rows otherwise. An empty scope raises a warning toast and returns
// ErrNoRowsToExport.
//
// With DelegateExport set the export is handed to OnDownload (the selected ids,
// or nil for the full scope) and a nil *Export is returned.
func (t *Table[R]) Export(ctx context.Context, scope Scope) (*Export, error) {
	t.mu.Lock()
	rows, err := t.exportRows(scope)
	if err != nil {
		t.mu.Unlock()
		t.warn(err, nil)
		return nil, nil
	}
	if len(rows) == 0 {
		t.mu.Unlock()
		t.notifier.Notify(Toast{
			Level:   LevelWarning,
			Title:   "Nothing to export",
			Message: "There are no row(s) selected to download, please try again",
		})
		return nil, ErrNoRowsToExport
	}

	if t.opts.DelegateExport {
		var ids []string
		if scope == ScopeSelected {
			ids = make([]string, len(rows))
			for i, r := range rows {
				ids[i] = r.RowID()
			}
		}
		t.mu.Unlock()
		return nil, t.remote(ctx, "download", func(ctx context.Context) error {
			return t.opts.OnDownload(ctx, ids)
		})
	}
	defer t.mu.Unlock()

	var cols []Column[R]
	for _, c := range t.columns {
		if c.exportable() {
			cols = append(cols, c)
		}
	}
	e := &Export{Columns: make([]ExportColumn, len(cols))}
	for i, c := range cols {
		e.Columns[i] = ExportColumn{Key: c.Key, Label: c.Label}
	}
	for _, r := range rows {
		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = c.Display(r)
		}
		e.Rows = append(e.Rows, record)
	}
	return e, nil
}

func (t *Table[R]) exportRows(scope Scope) ([]R, error) {
	switch scope {
	case ScopeFull:
		if t.opts.Modes.Filtering == Local {
			return t.derived, nil
		}
		return t.data, nil
	case ScopeSelected:
		ordered := t.data
		if t.opts.Modes.Sorting == Local {
			ordered = t.sortRows(ordered)
		}
		var out []R
		for _, r := range ordered {
			if _, ok := t.selected[r.RowID()]; ok {
				out = append(out, r)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown export scope %q", ErrConfiguration, scope)
	}
}

// ExportFile materialises the export as <dir>/<download file name>.csv and
// returns the path. Delegated exports write nothing and return "".
func (t *Table[R]) ExportFile(ctx context.Context, scope Scope, dir string) (string, error) {
	e, err := t.Export(ctx, scope)
	if err != nil || e == nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, t.opts.DownloadFileName+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if err := e.WriteCSV(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}

	t.notifier.Notify(Toast{
		Level:   LevelSuccess,
		Title:   "Export complete",
		Message: fmt.Sprintf("%d row(s) written to %s", e.Len(), path),
	})
	return path, nil
}
