package datatable

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// ToggleRowSelection flips the selection of the loaded row with the given id.
func (t *Table[R]) ToggleRowSelection(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded(id) {
		t.warn(fmt.Errorf("%w: %q", ErrUnknownRow, id), logrus.Fields{"row": id})
		return
	}
	if _, ok := t.selected[id]; ok {
		delete(t.selected, id)
		return
	}
	t.selected[id] = struct{}{}
}

// SetRowsSelected selects or deselects the given ids. Unknown ids are skipped.
func (t *Table[R]) SetRowsSelected(ids []string, selected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		if !t.loaded(id) {
			t.warn(fmt.Errorf("%w: %q", ErrUnknownRow, id), logrus.Fields{"row": id})
			continue
		}
		if selected {
			t.selected[id] = struct{}{}
		} else {
			delete(t.selected, id)
		}
	}
}

// TogglePageSelection selects every displayed row, or clears them when they are
// all selected already.
func (t *Table[R]) TogglePageSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := t.visibleRows()
	all := len(rows) > 0
	for _, r := range rows {
		if _, ok := t.selected[r.RowID()]; !ok {
			all = false
			break
		}
	}
	for _, r := range rows {
		if all {
			delete(t.selected, r.RowID())
		} else {
			t.selected[r.RowID()] = struct{}{}
		}
	}
}

// ClearSelection deselects every row.
func (t *Table[R]) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.selected)
}

// IsSelected reports whether id is selected.
func (t *Table[R]) IsSelected(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.selected[id]
	return ok
}

// Selected returns the selected ids in load order.
func (t *Table[R]) Selected() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectedIDs()
}

func (t *Table[R]) selectedIDs() []string {
	ids := make([]string, 0, len(t.selected))
	for _, r := range t.data {
		if _, ok := t.selected[r.RowID()]; ok {
			ids = append(ids, r.RowID())
		}
	}
	return ids
}

func (t *Table[R]) loaded(id string) bool {
	return slices.ContainsFunc(t.data, func(r R) bool { return r.RowID() == id })
}

func (t *Table[R]) pruneSelection() {
	if len(t.selected) == 0 {
		return
	}
	present := make(map[string]struct{}, len(t.data))
	for _, r := range t.data {
		present[r.RowID()] = struct{}{}
	}
	for id := range t.selected {
		if _, ok := present[id]; !ok {
			delete(t.selected, id)
		}
	}
}

// ToggleColumnVisibility hides or shows a hideable column. Hidden columns keep
// taking part in filtering, sorting and export.
func (t *Table[R]) ToggleColumnVisibility(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.column(key)
	if !ok {
		t.warn(fmt.Errorf("%w: %q", ErrUnknownColumn, key), logrus.Fields{"column": key})
		return
	}
	if !c.Hideable {
		t.warn(fmt.Errorf("%w: %q", ErrNotHideable, key), logrus.Fields{"column": key})
		return
	}
	t.hidden[key] = !t.hidden[key]
}

// ShowAllColumns makes every column visible again.
func (t *Table[R]) ShowAllColumns() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.hidden)
}

// VisibleColumns returns the columns currently displayed.
func (t *Table[R]) VisibleColumns() []Column[R] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visibleColumns()
}

func (t *Table[R]) visibleColumns() []Column[R] {
	out := make([]Column[R], 0, len(t.columns))
	for _, c := range t.columns {
		if !t.hidden[c.Key] {
			out = append(out, c)
		}
	}
	return out
}
