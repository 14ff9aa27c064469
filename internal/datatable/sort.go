package datatable

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// ToggleSort advances the sort of key through none, asc, desc and back to none.
// Sorting a column clears the sort of every other column.
func (t *Table[R]) ToggleSort(ctx context.Context, key string) error {
	t.mu.Lock()
	ok := t.sortable(key)
	next := t.direction(key).next()
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return t.setSort(ctx, key, next)
}

// SortBy sorts key in direction want with at most one remote call. Unknown and
// unsortable columns are left alone.
func (t *Table[R]) SortBy(ctx context.Context, key string, want SortDirection) error {
	t.mu.Lock()
	ok := t.sortable(key)
	current := t.direction(key)
	t.mu.Unlock()
	if !ok || current == want {
		return nil
	}
	return t.setSort(ctx, key, want)
}

// sortable reports whether key can be sorted, warning when it cannot. The
// caller holds the lock.
func (t *Table[R]) sortable(key string) bool {
	c, ok := t.column(key)
	switch {
	case !ok:
		t.warn(fmt.Errorf("%w: %q", ErrUnknownColumn, key), logrus.Fields{"column": key})
		return false
	case !c.Sortable:
		t.warn(fmt.Errorf("%w: %q", ErrNotSortable, key), logrus.Fields{"column": key})
		return false
	}
	return true
}

func (t *Table[R]) setSort(ctx context.Context, key string, dir SortDirection) error {
	t.mu.Lock()
	manual := t.opts.Modes.Sorting == Manual
	t.mu.Unlock()

	if manual {
		req := SortRequest{Key: key, SortType: dir.Type()}
		if err := t.remote(ctx, "sort", func(ctx context.Context) error {
			return t.opts.OnSort(ctx, req)
		}); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if dir == SortNone {
		t.sorting = nil
	} else {
		t.sorting = []SortEntry{{Key: key, Direction: dir}}
	}
	t.recompute()
	return nil
}

// SortDirection returns the current direction of key.
func (t *Table[R]) SortDirection(key string) SortDirection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.direction(key)
}

func (t *Table[R]) direction(key string) SortDirection {
	for _, s := range t.sorting {
		if s.Key == key {
			return s.Direction
		}
	}
	return SortNone
}

// sortRows returns a stably sorted copy of rows.
func (t *Table[R]) sortRows(rows []R) []R {
	if len(t.sorting) == 0 {
		return rows
	}
	s := t.sorting[0]
	c, ok := t.column(s.Key)
	if !ok {
		return rows
	}

	values := make(map[string]any, len(rows))
	for _, r := range rows {
		values[r.RowID()] = c.Value(r)
	}
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b R) int {
		n := compareValues(values[a.RowID()], values[b.RowID()])
		if s.Direction == SortDesc {
			return -n
		}
		return n
	})
	return out
}
