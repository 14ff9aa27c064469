package datatable

import "fmt"

// Text shown by the renderer.
const (
	EmptyText     = "No results."
	LoadMoreText  = "Load More"
	NoMoreText    = "No more results"
	CheckedBox    = "[x]"
	UncheckedBox  = "[ ]"
	IndicatorAsc  = "↑"
	IndicatorDesc = "↓"
	IndicatorNone = "↕"
)

// Frame is a framework independent snapshot of everything a renderer draws.
type Frame struct {
	Toolbar *Toolbar
	Headers []Header
	Rows    []FrameRow

	Loading  bool
	Skeleton int
	Empty    string

	Pagination *PaginationFooter
	Infinite   *InfiniteFooter
}

// Toolbar is the strip above the grid.
type Toolbar struct {
	// FilterColumns is empty when no column is filterable, in which case the
	// filter affordance is not shown.
	FilterColumns []ColumnRef
	Operators     []Operator
	Filters       []ColumnFilter
	Search        string
	Visibility    []VisibilityToggle
}

// ColumnRef names a column.
type ColumnRef struct {
	Key   string
	Label string
}

// VisibilityToggle is one entry of the column visibility menu.
type VisibilityToggle struct {
	Key     string
	Label   string
	Visible bool
}

// Header is one visible header cell.
type Header struct {
	Key       string
	Label     string
	Kind      ColumnKind
	Sortable  bool
	Direction SortDirection
	Indicator string
}

// FrameRow is one displayed row; Cells line up with Headers.
type FrameRow struct {
	ID       string
	Selected bool
	Cells    []string
}

// PaginationFooter is the footer of paged tables.
type PaginationFooter struct {
	SelectedCount int
	TotalRows     int
	Summary       string
	PageSizes     []int
	PageSize      int
	Position      string
	CanPrev       bool
	CanNext       bool
}

// InfiniteFooter is the footer of cursor tables.
type InfiniteFooter struct {
	HasMore bool
	Label   string
}

// Frame composes the current state into a Frame.
func (t *Table[R]) Frame() Frame {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols := t.visibleColumns()
	f := Frame{Loading: t.loading || t.pending > 0}

	for _, c := range cols {
		h := Header{Key: c.Key, Label: c.Label, Kind: c.Kind, Sortable: c.Sortable}
		if c.Sortable {
			h.Direction = t.direction(c.Key)
			h.Indicator = indicator(h.Direction)
		}
		f.Headers = append(f.Headers, h)
	}

	switch rows := t.visibleRows(); {
	case f.Loading:
		f.Skeleton = t.opts.SkeletonRows
	case len(rows) == 0:
		f.Empty = EmptyText
	default:
		for _, r := range rows {
			_, selected := t.selected[r.RowID()]
			fr := FrameRow{ID: r.RowID(), Selected: selected, Cells: make([]string, len(cols))}
			for i, c := range cols {
				if c.Kind == KindSelect {
					fr.Cells[i] = checkbox(selected)
					continue
				}
				fr.Cells[i] = c.Display(r)
			}
			f.Rows = append(f.Rows, fr)
		}
	}

	if t.opts.Static {
		return f
	}

	tb := &Toolbar{Filters: append([]ColumnFilter(nil), t.filters...), Search: t.search}
	for _, c := range t.columns {
		if c.Filterable {
			tb.FilterColumns = append(tb.FilterColumns, ColumnRef{Key: c.Key, Label: c.Label})
		}
		if c.Hideable {
			tb.Visibility = append(tb.Visibility, VisibilityToggle{Key: c.Key, Label: c.Label, Visible: !t.hidden[c.Key]})
		}
	}
	if len(tb.FilterColumns) > 0 {
		tb.Operators = Operators()
	}
	f.Toolbar = tb

	if t.opts.Modes.Pagination == PaginateCursor {
		label := NoMoreText
		if t.hasMore {
			label = LoadMoreText
		}
		f.Infinite = &InfiniteFooter{HasMore: t.hasMore, Label: label}
		return f
	}

	total := t.totalRowsLocked()
	pages := t.pageCountLocked()
	position := "0 / 0"
	if pages > 0 {
		position = fmt.Sprintf("%d / %d", t.page.PageIndex+1, pages)
	}
	f.Pagination = &PaginationFooter{
		SelectedCount: len(t.selected),
		TotalRows:     total,
		Summary:       fmt.Sprintf("%d of %d row(s) selected", len(t.selected), total),
		PageSizes:     append([]int(nil), t.opts.PageSizes...),
		PageSize:      t.page.PageSize,
		Position:      position,
		CanPrev:       t.canPrev(),
		CanNext:       t.canNext(),
	}
	return f
}

func indicator(d SortDirection) string {
	switch d {
	case SortAsc:
		return IndicatorAsc
	case SortDesc:
		return IndicatorDesc
	default:
		return IndicatorNone
	}
}

func checkbox(checked bool) string {
	if checked {
		return CheckedBox
	}
	return UncheckedBox
}
