package datatable

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportEmptySelection(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	tbl, _ := newLocal(t, Options[item]{Notifier: rec})

	e, err := tbl.Export(ctx, ScopeSelected)
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrNoRowsToExport)
	require.Len(t, rec.toasts, 1)
	assert.Equal(t, LevelWarning, rec.toasts[0].Level)
	assert.Equal(t, "There are no row(s) selected to download, please try again", rec.toasts[0].Message)
}

func TestExportEmptyFilteredSet(t *testing.T) {
	ctx := context.Background()
	tbl, _ := newLocal(t, Options[item]{})
	require.NoError(t, tbl.ApplyFilter(ctx, "city", Equals, "paris"))

	dir := t.TempDir()
	path, err := tbl.ExportFile(ctx, ScopeFull, dir)
	assert.ErrorIs(t, err, ErrNoRowsToExport)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportColumnsAndDisplayValues(t *testing.T) {
	ctx := context.Background()
	cols := itemColumns()
	cols[3] = cols[3].WithFormat(func(v any) string { return fmt.Sprintf("$ %v", v) })
	tbl, err := New(cols, Options[item]{})
	require.NoError(t, err)
	tbl.SetData(items())

	require.NoError(t, tbl.ApplyFilter(ctx, "name", Contains, "jazz"))
	e, err := tbl.Export(ctx, ScopeFull)
	require.NoError(t, err)

	out, err := e.CSV()
	require.NoError(t, err)
	assert.Equal(t, "Name,City,Price\nJazz Night,Berlin,$ 10\nJazz Brunch,Berlin,$ 25\n", out)
}

func TestExportSelectedFollowsSortOrder(t *testing.T) {
	ctx := context.Background()
	tbl, _ := newLocal(t, Options[item]{PageSize: 2})

	tbl.SetRowsSelected([]string{"r1", "r5", "r2"}, true)
	require.NoError(t, tbl.ToggleSort(ctx, "price"))
	require.NoError(t, tbl.ToggleSort(ctx, "price"))

	e, err := tbl.Export(ctx, ScopeSelected)
	require.NoError(t, err)
	require.Equal(t, 3, e.Len())
	assert.Equal(t, "Techno", e.Rows[0][0])
	assert.Equal(t, "Jazz Night", e.Rows[1][0])
	assert.Equal(t, "Rock Fest", e.Rows[2][0])
}

func TestExportQuotesFields(t *testing.T) {
	e := &Export{
		Columns: []ExportColumn{{Key: "artists", Label: "Artists"}},
		Rows:    [][]string{{"Miles, Coltrane"}, {`say "hi"`}},
	}
	out, err := e.CSV()
	require.NoError(t, err)
	assert.Equal(t, "Artists\n\"Miles, Coltrane\"\n\"say \"\"hi\"\"\"\n", out)
}

func TestExportFile(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	tbl, _ := newLocal(t, Options[item]{Notifier: rec, DownloadFileName: "events"})
	tbl.SetRowsSelected([]string{"r4"}, true)

	dir := filepath.Join(t.TempDir(), "exports")
	path, err := tbl.ExportFile(ctx, ScopeSelected, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "events.csv"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Name,City,Price\nOpera,Vienna,9\n", string(b))

	require.Len(t, rec.toasts, 1)
	assert.Equal(t, LevelSuccess, rec.toasts[0].Level)
}

func TestDelegatedExport(t *testing.T) {
	ctx := context.Background()
	var calls [][]string
	tbl, _ := newLocal(t, Options[item]{
		DelegateExport: true,
		OnDownload: func(_ context.Context, ids []string) error {
			calls = append(calls, ids)
			return nil
		},
	})

	tbl.SetRowsSelected([]string{"r3", "r1"}, true)
	e, err := tbl.Export(ctx, ScopeSelected)
	require.NoError(t, err)
	assert.Nil(t, e)

	path, err := tbl.ExportFile(ctx, ScopeFull, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)

	require.Len(t, calls, 2)
	assert.Equal(t, []string{"r1", "r3"}, calls[0])
	assert.Nil(t, calls[1])
}
