package datatable

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// Defaults applied by New.
const (
	DefaultPageSize         = 10
	DefaultSkeletonRows     = 5
	DefaultDownloadFileName = "export"
)

// DefaultPageSizes are the page sizes offered by the pagination footer.
var DefaultPageSizes = []int{10, 30, 50}

// Options configures a Table.
type Options[R Identifiable] struct {
	Modes Modes

	PageSize  int
	PageSizes []int

	// DefaultSort is the key of a column sorted descending on construction.
	// Only honoured when sorting is local.
	DefaultSort string

	// Static tables render without toolbar and footer.
	Static       bool
	SkeletonRows int

	DownloadFileName string

	// HiddenColumns are hideable columns that start out hidden.
	HiddenColumns []string

	// DelegateExport hands exports to OnDownload instead of building the CSV.
	DelegateExport bool

	Registry *Registry

	OnFilter   func(ctx context.Context, req FilterRequest) error
	OnSort     func(ctx context.Context, req SortRequest) error
	OnSearch   func(ctx context.Context, term string) error
	OnNextPage func(ctx context.Context) error
	OnPrevPage func(ctx context.Context) error
	OnPageSize func(ctx context.Context, size int) error
	OnLoadMore func(ctx context.Context, cursor string) (Batch[R], error)
	OnDownload func(ctx context.Context, ids []string) error

	// CursorOf derives the load-more cursor from the last loaded row.
	// Defaults to RowID.
	CursorOf func(R) string

	Logger   logrus.FieldLogger
	Notifier Notifier
}

// Table is the data-table engine for rows of type R. All methods are safe for
// concurrent use; host callbacks run without the table lock held so they may
// call back into the table (typically SetData).
type Table[R Identifiable] struct {
	mu sync.Mutex

	columns []Column[R]
	index   map[string]int
	opts    Options[R]

	registry *Registry
	log      logrus.FieldLogger
	notifier Notifier

	data    []R
	derived []R

	filters []ColumnFilter
	search  string
	sorting []SortEntry
	page    PageState

	pageCount int
	totalRows int
	hasMore   bool

	selected map[string]struct{}
	hidden   map[string]bool

	loading bool
	pending int
}

// New validates columns and options and returns an empty table.
func New[R Identifiable](columns []Column[R], opts Options[R]) (*Table[R], error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := index[c.Key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Key)
		}
		index[c.Key] = i
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.PageSize == 0 {
		opts.PageSize = DefaultPageSize
	}
	if len(opts.PageSizes) == 0 {
		opts.PageSizes = slices.Clone(DefaultPageSizes)
	}
	if opts.SkeletonRows <= 0 {
		opts.SkeletonRows = DefaultSkeletonRows
	}
	if opts.DownloadFileName == "" {
		opts.DownloadFileName = DefaultDownloadFileName
	}
	if opts.CursorOf == nil {
		opts.CursorOf = func(r R) string { return r.RowID() }
	}

	t := &Table[R]{
		columns:  slices.Clone(columns),
		index:    index,
		opts:     opts,
		registry: opts.Registry,
		log:      opts.Logger,
		notifier: opts.Notifier,
		page:     PageState{PageSize: opts.PageSize},
		selected: make(map[string]struct{}),
		hidden:   make(map[string]bool),
	}
	if t.registry == nil {
		t.registry = DefaultRegistry()
	}
	if t.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		t.log = l
	}
	if t.notifier == nil {
		t.notifier = nopNotifier{}
	}

	for _, key := range opts.HiddenColumns {
		c, ok := t.column(key)
		if !ok || !c.Hideable {
			return nil, fmt.Errorf("%w: hidden column %q", ErrInvalidColumn, key)
		}
		t.hidden[key] = true
	}

	if key := opts.DefaultSort; key != "" && opts.Modes.Sorting == Local {
		c, ok := t.column(key)
		if !ok || !c.Sortable {
			return nil, fmt.Errorf("%w: default sort %q", ErrInvalidColumn, key)
		}
		t.sorting = []SortEntry{{Key: key, Direction: SortDesc}}
	}
	t.recompute()
	return t, nil
}

func (o Options[R]) validate() error {
	if o.PageSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, o.PageSize)
	}
	for _, size := range o.PageSizes {
		if size <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
		}
	}
	if o.Modes.Filtering == Manual && o.OnFilter == nil {
		return fmt.Errorf("%w: OnFilter", ErrMissingCallback)
	}
	if o.Modes.Sorting == Manual && o.OnSort == nil {
		return fmt.Errorf("%w: OnSort", ErrMissingCallback)
	}
	switch o.Modes.Pagination {
	case PaginateManual:
		if o.OnNextPage == nil || o.OnPrevPage == nil {
			return fmt.Errorf("%w: OnNextPage and OnPrevPage", ErrMissingCallback)
		}
	case PaginateCursor:
		if o.OnLoadMore == nil {
			return fmt.Errorf("%w: OnLoadMore", ErrMissingCallback)
		}
	}
	if o.DelegateExport && o.OnDownload == nil {
		return fmt.Errorf("%w: OnDownload", ErrMissingCallback)
	}
	return nil
}

// Modes returns the table's mode configuration.
func (t *Table[R]) Modes() Modes {
	return t.opts.Modes
}

// Columns returns the column descriptors in declaration order.
func (t *Table[R]) Columns() []Column[R] {
	return slices.Clone(t.columns)
}

// Column looks up a column by key.
func (t *Table[R]) Column(key string) (Column[R], bool) {
	return t.column(key)
}

func (t *Table[R]) column(key string) (Column[R], bool) {
	i, ok := t.index[key]
	if !ok {
		return Column[R]{}, false
	}
	return t.columns[i], true
}

// SetData replaces the row set. In manual pagination mode this is a data-set
// swap and clears the selection; otherwise selected ids that are no longer
// present are dropped.
func (t *Table[R]) SetData(rows []R) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data = slices.Clone(rows)
	if t.opts.Modes.Pagination == PaginateManual {
		clear(t.selected)
	} else {
		t.pruneSelection()
	}
	t.recompute()
}

// AppendData adds rows to the bottom of the loaded set.
func (t *Table[R]) AppendData(rows []R) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.appendRows(rows)
	t.recompute()
}

func (t *Table[R]) appendRows(rows []R) {
	seen := make(map[string]struct{}, len(t.data))
	for _, r := range t.data {
		seen[r.RowID()] = struct{}{}
	}
	for _, r := range rows {
		if _, dup := seen[r.RowID()]; dup {
			t.log.WithField("row", r.RowID()).Warn("skipping duplicate row")
			continue
		}
		seen[r.RowID()] = struct{}{}
		t.data = append(t.data, r)
	}
}

// Data returns a copy of the loaded rows as supplied by the host.
func (t *Table[R]) Data() []R {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.data)
}

// Row returns the loaded row with the given id.
func (t *Table[R]) Row(id string) (R, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.data {
		if r.RowID() == id {
			return r, true
		}
	}
	var zero R
	return zero, false
}

// SetLoading sets the external loading flag.
func (t *Table[R]) SetLoading(loading bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = loading
}

// Loading reports whether the host flagged loading or a callback is in flight.
func (t *Table[R]) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading || t.pending > 0
}

// State is a copy of the table state.
type State struct {
	Pagination       PageState
	Sorting          []SortEntry
	ColumnFilters    []ColumnFilter
	Search           string
	Selection        []string
	ColumnVisibility map[string]bool
}

// State returns a snapshot of the current table state.
func (t *Table[R]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	vis := make(map[string]bool, len(t.columns))
	for _, c := range t.columns {
		vis[c.Key] = !t.hidden[c.Key]
	}
	return State{
		Pagination:       t.page,
		Sorting:          slices.Clone(t.sorting),
		ColumnFilters:    slices.Clone(t.filters),
		Search:           t.search,
		Selection:        t.selectedIDs(),
		ColumnVisibility: vis,
	}
}

// recompute rebuilds the derived row set from data. Stages run only for the
// concerns handled locally; with every mode manual derived equals data.
func (t *Table[R]) recompute() {
	rows := t.data
	if t.opts.Modes.Filtering == Local {
		rows = t.filterRows(rows)
		rows = t.searchRows(rows)
	}
	if t.opts.Modes.Sorting == Local {
		rows = t.sortRows(rows)
	}
	t.derived = rows
	if t.opts.Modes.Pagination == PaginateLocal {
		t.clampPage()
	}
}

// Rows returns the rows currently displayed.
func (t *Table[R]) Rows() []R {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.visibleRows())
}

func (t *Table[R]) visibleRows() []R {
	if t.opts.Modes.Pagination != PaginateLocal {
		return t.derived
	}
	start := t.page.PageIndex * t.page.PageSize
	if start >= len(t.derived) {
		return nil
	}
	end := min(start+t.page.PageSize, len(t.derived))
	return t.derived[start:end]
}

// warn logs a configuration error; the calling operation becomes a no-op.
func (t *Table[R]) warn(err error, fields logrus.Fields) {
	t.log.WithError(err).WithFields(fields).Warn("ignoring table operation")
}

// remote runs a host callback without holding the lock. A failure is reported as
// an error toast and returned as *RemoteCallbackError; callers commit state only
// when it returns nil.
func (t *Table[R]) remote(ctx context.Context, op string, fn func(context.Context) error) error {
	t.mu.Lock()
	t.pending++
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.pending--
		t.mu.Unlock()
	}()

	if err := fn(ctx); err != nil {
		t.log.WithError(err).WithField("op", op).Error("remote callback failed")
		t.notifier.Notify(Toast{Level: LevelError, Title: "Something went wrong", Message: err.Error()})
		return remoteError(op, err)
	}
	return nil
}
