package datatable

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Page returns the pagination descriptor.
func (t *Table[R]) Page() PageState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page
}

// PageCount returns the number of pages: computed from the filtered rows in
// local mode and supplied by the host in manual mode. Cursor tables have none.
func (t *Table[R]) PageCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pageCountLocked()
}

func (t *Table[R]) pageCountLocked() int {
	switch t.opts.Modes.Pagination {
	case PaginateLocal:
		return ceilDiv(len(t.derived), t.page.PageSize)
	case PaginateManual:
		return t.pageCount
	default:
		return 0
	}
}

// TotalRows is the row count reported in the footer.
func (t *Table[R]) TotalRows() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalRowsLocked()
}

func (t *Table[R]) totalRowsLocked() int {
	if t.opts.Modes.Pagination == PaginateManual && t.totalRows > 0 {
		return t.totalRows
	}
	return len(t.derived)
}

func ceilDiv(n, d int) int {
	if d <= 0 || n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

func (t *Table[R]) clampPage() {
	last := max(t.pageCountLocked()-1, 0)
	if t.page.PageIndex > last {
		t.page.PageIndex = last
	}
}

// CanPrevPage reports whether PrevPage would move.
func (t *Table[R]) CanPrevPage() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canPrev()
}

// CanNextPage reports whether NextPage would move.
func (t *Table[R]) CanNextPage() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canNext()
}

func (t *Table[R]) canPrev() bool {
	return t.opts.Modes.Pagination != PaginateCursor && t.page.PageIndex > 0
}

func (t *Table[R]) canNext() bool {
	return t.opts.Modes.Pagination != PaginateCursor && t.page.PageIndex+1 < t.pageCountLocked()
}

// NextPage moves to the next page. It is a no-op on the last page. In manual
// mode OnNextPage is called first and the index only moves when it succeeds.
func (t *Table[R]) NextPage(ctx context.Context) error {
	return t.step(ctx, 1)
}

// PrevPage moves to the previous page. It is a no-op on the first page.
func (t *Table[R]) PrevPage(ctx context.Context) error {
	return t.step(ctx, -1)
}

func (t *Table[R]) step(ctx context.Context, delta int) error {
	t.mu.Lock()
	mode := t.opts.Modes.Pagination
	if mode == PaginateCursor {
		t.mu.Unlock()
		t.warn(ErrWrongMode, logrus.Fields{"mode": mode})
		return nil
	}
	if (delta > 0 && !t.canNext()) || (delta < 0 && !t.canPrev()) {
		t.mu.Unlock()
		return nil
	}
	from := t.page.PageIndex
	t.mu.Unlock()

	if mode == PaginateManual {
		op, fn := "next page", t.opts.OnNextPage
		if delta < 0 {
			op, fn = "previous page", t.opts.OnPrevPage
		}
		if err := t.remote(ctx, op, fn); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.page.PageIndex = from + delta
	return nil
}

// SetPageSize changes the page size and returns to the first page. In cursor
// mode the host is expected to reload the first batch from OnPageSize.
func (t *Table[R]) SetPageSize(ctx context.Context, size int) error {
	if size <= 0 {
		t.warn(fmt.Errorf("%w: %d", ErrInvalidPageSize, size), logrus.Fields{"size": size})
		return nil
	}

	t.mu.Lock()
	mode := t.opts.Modes.Pagination
	t.mu.Unlock()

	if mode != PaginateLocal && t.opts.OnPageSize != nil {
		if err := t.remote(ctx, "page size", func(ctx context.Context) error {
			return t.opts.OnPageSize(ctx, size)
		}); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.page = PageState{PageIndex: 0, PageSize: size}
	if mode == PaginateManual && t.totalRows > 0 {
		t.pageCount = ceilDiv(t.totalRows, size)
	}
	return nil
}

// PageSizes returns the page sizes offered to the user.
func (t *Table[R]) PageSizes() []int {
	return slices.Clone(t.opts.PageSizes)
}

// SetPagination replaces the pagination descriptor. Manual hosts use it to
// mirror the page they fetched.
func (t *Table[R]) SetPagination(p PageState) {
	if p.PageIndex < 0 || p.PageSize <= 0 {
		t.warn(fmt.Errorf("%w: %+v", ErrInvalidPageSize, p), logrus.Fields{"pagination": p})
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.page = p
	if t.opts.Modes.Pagination == PaginateLocal {
		t.clampPage()
	}
}

// SetTotalRows records the server-reported row total. In manual mode it also
// derives the page count from the current page size.
func (t *Table[R]) SetTotalRows(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalRows = max(n, 0)
	if t.opts.Modes.Pagination == PaginateManual {
		t.pageCount = ceilDiv(t.totalRows, t.page.PageSize)
	}
}

// SetPageCount overrides the manual page count.
func (t *Table[R]) SetPageCount(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pageCount = max(n, 0)
}

// SetHasMore sets whether a cursor table can load more rows.
func (t *Table[R]) SetHasMore(hasMore bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hasMore = hasMore
}

// HasMore reports whether LoadMore would fetch anything.
func (t *Table[R]) HasMore() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasMore
}

// LoadMore fetches the batch after the last loaded row and appends it. Only
// cursor tables support it; with nothing more to load it is a no-op.
func (t *Table[R]) LoadMore(ctx context.Context) error {
	t.mu.Lock()
	if t.opts.Modes.Pagination != PaginateCursor {
		mode := t.opts.Modes.Pagination
		t.mu.Unlock()
		t.warn(ErrWrongMode, logrus.Fields{"mode": mode})
		return nil
	}
	if !t.hasMore {
		t.mu.Unlock()
		return nil
	}
	var cursor string
	if n := len(t.data); n > 0 {
		cursor = t.opts.CursorOf(t.data[n-1])
	}
	t.mu.Unlock()

	var batch Batch[R]
	if err := t.remote(ctx, "load more", func(ctx context.Context) error {
		var err error
		batch, err = t.opts.OnLoadMore(ctx, cursor)
		return err
	}); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.appendRows(batch.Rows)
	t.hasMore = batch.HasMore
	t.recompute()
	return nil
}
