package datatable

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// ApplyFilter sets the filter of one column, replacing any filter the column
// already had. In local filtering mode the displayed rows are recomputed; in
// manual mode OnFilter is called and the rows stay as they are until the host
// supplies new data.
func (t *Table[R]) ApplyFilter(ctx context.Context, key string, op Operator, value string) error {
	fields := logrus.Fields{"column": key, "operator": op}

	t.mu.Lock()
	c, ok := t.column(key)
	switch {
	case !ok:
		t.mu.Unlock()
		t.warn(fmt.Errorf("%w: %q", ErrUnknownColumn, key), fields)
		return nil
	case !c.Filterable:
		t.mu.Unlock()
		t.warn(fmt.Errorf("%w: %q", ErrNotFilterable, key), fields)
		return nil
	case c.Filter == nil && !t.registry.Has(op):
		t.mu.Unlock()
		t.warn(fmt.Errorf("%w: %q", ErrUnknownOperator, op), fields)
		return nil
	}
	manual := t.opts.Modes.Filtering == Manual
	t.mu.Unlock()

	if manual {
		req := FilterRequest{Key: key, Operator: op, Value: value}
		if err := t.remote(ctx, "filter", func(ctx context.Context) error {
			return t.opts.OnFilter(ctx, req)
		}); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.filters = slices.DeleteFunc(t.filters, func(f ColumnFilter) bool { return f.Key == key })
	t.filters = append(t.filters, ColumnFilter{Key: key, Operator: op, Value: value})
	t.page.PageIndex = 0
	t.recompute()
	return nil
}

// ResetFilter clears the filters of the given columns, or every filter when no
// key is given.
func (t *Table[R]) ResetFilter(ctx context.Context, keys ...string) error {
	t.mu.Lock()
	for _, key := range keys {
		if _, ok := t.column(key); !ok {
			t.mu.Unlock()
			t.warn(fmt.Errorf("%w: %q", ErrUnknownColumn, key), logrus.Fields{"column": key})
			return nil
		}
	}
	manual := t.opts.Modes.Filtering == Manual
	t.mu.Unlock()

	if !manual {
		t.dropFilters(keys)
		return nil
	}

	// Each key is its own remote call; the ones already applied stay cleared
	// when a later one fails.
	reqs := []FilterRequest{{}}
	if len(keys) > 0 {
		reqs = reqs[:0]
		for _, key := range keys {
			reqs = append(reqs, FilterRequest{Key: key})
		}
	}
	for _, req := range reqs {
		if err := t.remote(ctx, "filter", func(ctx context.Context) error {
			return t.opts.OnFilter(ctx, req)
		}); err != nil {
			return err
		}
		if req.Key == "" {
			t.dropFilters(nil)
		} else {
			t.dropFilters([]string{req.Key})
		}
	}
	return nil
}

// dropFilters removes the filters of keys, or all of them when keys is empty,
// and returns to the first page.
func (t *Table[R]) dropFilters(keys []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(keys) == 0 {
		t.filters = nil
	} else {
		t.filters = slices.DeleteFunc(t.filters, func(f ColumnFilter) bool {
			return slices.Contains(keys, f.Key)
		})
	}
	t.page.PageIndex = 0
	t.recompute()
}

// Filters returns the active column filters.
func (t *Table[R]) Filters() []ColumnFilter {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.filters)
}

// Search sets the global search term. Locally it matches, case-insensitively,
// the displayed value of any filterable column.
func (t *Table[R]) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)

	t.mu.Lock()
	manual := t.opts.Modes.Filtering == Manual
	t.mu.Unlock()

	if manual {
		if t.opts.OnSearch == nil {
			t.warn(fmt.Errorf("%w: OnSearch", ErrMissingCallback), logrus.Fields{"search": term})
			return nil
		}
		if err := t.remote(ctx, "search", func(ctx context.Context) error {
			return t.opts.OnSearch(ctx, term)
		}); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.search = term
	t.page.PageIndex = 0
	t.recompute()
	return nil
}

// SearchTerm returns the active search term.
func (t *Table[R]) SearchTerm() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.search
}

func (t *Table[R]) filterRows(rows []R) []R {
	if len(t.filters) == 0 {
		return rows
	}
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if t.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// matches applies every active filter to r. A failing predicate keeps the row.
func (t *Table[R]) matches(r R) bool {
	for _, f := range t.filters {
		c, _ := t.column(f.Key)
		var (
			ok  bool
			err error
		)
		if c.Filter != nil {
			ok, err = guard(func() bool { return c.Filter(f.Operator, c.Value(r), f.Value) })
		} else {
			var v any
			if v, err = valueOf(c, r); err == nil {
				ok, err = t.registry.Evaluate(f.Operator, v, f.Value)
			}
		}
		if err != nil {
			t.log.WithError(err).WithFields(logrus.Fields{
				"column":   f.Key,
				"operator": f.Operator,
				"row":      r.RowID(),
			}).Warn("filter failed, keeping row")
			continue
		}
		if !ok {
			return false
		}
	}
	return true
}

// valueOf calls the accessor, converting a panic into ErrPredicateEvaluation.
func valueOf[R Identifiable](c Column[R], r R) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: accessor: %v", ErrPredicateEvaluation, rec)
		}
	}()
	return c.Value(r), nil
}

func (t *Table[R]) searchRows(rows []R) []R {
	if t.search == "" {
		return rows
	}
	needle := strings.ToLower(t.search)
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		for _, c := range t.columns {
			if c.Filterable && strings.Contains(strings.ToLower(c.Display(r)), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
