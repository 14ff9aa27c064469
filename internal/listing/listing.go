// Package listing wires the event store to a data table according to the
// configured modes.
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/javiermolinar/marquee/internal/config"
	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/event"
)

// ErrUnsupportedModes is returned for mode combinations the store cannot serve.
var ErrUnsupportedModes = errors.New("cursor pagination requires local sorting")

// HiddenColumns start out hidden in the console.
var HiddenColumns = []string{event.KeyCreatedAt, event.KeyUpdatedAt}

// Listing is the event table backed by a store. In local modes it loads the
// whole store once; manual concerns are forwarded to Store.Query.
type Listing struct {
	store    event.Store
	cfg      config.TableConfig
	log      logrus.FieldLogger
	notifier datatable.Notifier
	table    *datatable.Table[*event.Event]

	mu    sync.Mutex
	query event.Query
}

// Modes converts the table configuration to table modes.
func Modes(cfg config.TableConfig) datatable.Modes {
	if cfg.Manual() {
		return datatable.BundledModes(true)
	}
	var m datatable.Modes
	switch cfg.Pagination {
	case config.ModeManual:
		m.Pagination = datatable.PaginateManual
	case config.ModeCursor:
		m.Pagination = datatable.PaginateCursor
	}
	if cfg.Sorting == config.ModeManual {
		m.Sorting = datatable.Manual
	}
	if cfg.Filtering == config.ModeManual {
		m.Filtering = datatable.Manual
	}
	return m
}

// New builds the event table. Nothing is loaded until Load is called.
func New(store event.Store, cfg config.TableConfig, log logrus.FieldLogger, notifier datatable.Notifier) (*Listing, error) {
	modes := Modes(cfg)
	if modes.Pagination == datatable.PaginateCursor && modes.Sorting == datatable.Manual {
		return nil, ErrUnsupportedModes
	}

	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	if notifier == nil {
		notifier = datatable.NotifierFunc(func(datatable.Toast) {})
	}

	l := &Listing{
		store:    store,
		cfg:      cfg,
		log:      log,
		notifier: notifier,
	}
	if modes.Sorting == datatable.Manual && cfg.DefaultSort != "" {
		l.query.SortKey, l.query.SortDesc = cfg.DefaultSort, true
	}

	opts := datatable.Options[*event.Event]{
		Modes:            modes,
		PageSize:         cfg.PageSize,
		PageSizes:        cfg.PageSizes,
		SkeletonRows:     cfg.SkeletonRows,
		DownloadFileName: cfg.DownloadFileName,
		DelegateExport:   cfg.DelegateExport,
		HiddenColumns:    HiddenColumns,
		Logger:           log,
		Notifier:         notifier,
		OnFilter:         l.onFilter,
		OnSort:           l.onSort,
		OnSearch:         l.onSearch,
		OnNextPage:       func(ctx context.Context) error { return l.turn(ctx, 1) },
		OnPrevPage:       func(ctx context.Context) error { return l.turn(ctx, -1) },
		OnPageSize:       l.onPageSize,
		OnLoadMore:       l.onLoadMore,
		OnDownload:       l.onDownload,
	}
	if modes.Sorting == datatable.Local {
		opts.DefaultSort = cfg.DefaultSort
	}

	table, err := datatable.New(event.Columns(), opts)
	if err != nil {
		return nil, fmt.Errorf("creating event table: %w", err)
	}
	l.table = table
	return l, nil
}

// Table returns the underlying data table.
func (l *Listing) Table() *datatable.Table[*event.Event] {
	return l.table
}

// Load fetches the first view of events.
func (l *Listing) Load(ctx context.Context) error {
	l.table.SetLoading(true)
	defer l.table.SetLoading(false)

	modes := l.table.Modes()
	if modes == (datatable.Modes{}) {
		events, err := l.store.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}
		l.table.SetData(events)
		return nil
	}

	return l.fetch(ctx, l.next())
}

// Export writes the scope to the configured export directory and returns the
// file path.
func (l *Listing) Export(ctx context.Context, scope datatable.Scope) (string, error) {
	if l.cfg.DelegateExport {
		if _, err := l.table.Export(ctx, scope); err != nil {
			return "", err
		}
		return l.exportPath(), nil
	}
	return l.table.ExportFile(ctx, scope, l.cfg.ExportDir)
}

func (l *Listing) exportPath() string {
	return filepath.Join(l.cfg.ExportDir, l.cfg.DownloadFileName+".csv")
}

// fetch runs q against the store, shaped for the pagination mode, and hands
// the result to the table. The query is remembered only on success.
func (l *Listing) fetch(ctx context.Context, q event.Query) error {
	modes := l.table.Modes()
	switch modes.Pagination {
	case datatable.PaginateLocal:
		q.Offset, q.Limit = 0, 0
	case datatable.PaginateCursor:
		q.Offset, q.After = 0, ""
	}

	page, err := l.store.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("querying events: %w", err)
	}
	l.log.WithFields(logrus.Fields{
		"events": len(page.Events),
		"total":  page.Total,
		"offset": q.Offset,
	}).Debug("fetched events")

	l.mu.Lock()
	l.query = q
	l.mu.Unlock()

	l.table.SetData(page.Events)
	switch modes.Pagination {
	case datatable.PaginateManual:
		l.table.SetTotalRows(page.Total)
	case datatable.PaginateCursor:
		l.table.SetHasMore(page.HasMore)
	}
	return nil
}

// next returns a copy of the current query with paging reset.
func (l *Listing) next() event.Query {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.query
	q.Filters = slices.Clone(q.Filters)
	q.Offset = 0
	q.Limit = l.table.Page().PageSize
	return q
}

func (l *Listing) onFilter(ctx context.Context, req datatable.FilterRequest) error {
	q := l.next()
	switch {
	case req.Key == "":
		q.Filters = nil
	default:
		q.Filters = slices.DeleteFunc(q.Filters, func(f datatable.ColumnFilter) bool { return f.Key == req.Key })
		if req.Operator != "" {
			q.Filters = append(q.Filters, datatable.ColumnFilter{Key: req.Key, Operator: req.Operator, Value: req.Value})
		}
	}
	return l.fetch(ctx, q)
}

func (l *Listing) onSort(ctx context.Context, req datatable.SortRequest) error {
	q := l.next()
	switch req.SortType {
	case datatable.SortTypeAsc:
		q.SortKey, q.SortDesc = req.Key, false
	case datatable.SortTypeDesc:
		q.SortKey, q.SortDesc = req.Key, true
	default:
		q.SortKey, q.SortDesc = "", false
	}
	return l.fetch(ctx, q)
}

func (l *Listing) onSearch(ctx context.Context, term string) error {
	q := l.next()
	q.Search = term
	return l.fetch(ctx, q)
}

// turn moves the manual page window by delta pages.
func (l *Listing) turn(ctx context.Context, delta int) error {
	p := l.table.Page()
	q := l.next()
	q.Offset = (p.PageIndex + delta) * p.PageSize
	return l.fetch(ctx, q)
}

// onPageSize refetches the first page, or in cursor mode replaces the loaded
// set with a first batch of the new size.
func (l *Listing) onPageSize(ctx context.Context, size int) error {
	q := l.next()
	q.Limit = size
	return l.fetch(ctx, q)
}

func (l *Listing) onLoadMore(ctx context.Context, cursor string) (datatable.Batch[*event.Event], error) {
	q := l.next()
	q.After = cursor
	page, err := l.store.Query(ctx, q)
	if err != nil {
		return datatable.Batch[*event.Event]{}, fmt.Errorf("loading more events: %w", err)
	}
	return datatable.Batch[*event.Event]{Rows: page.Events, HasMore: page.HasMore}, nil
}

// onDownload streams the export straight from the store. Without ids the
// current remote filters and sort apply.
func (l *Listing) onDownload(ctx context.Context, ids []string) error {
	l.mu.Lock()
	q := l.query
	l.mu.Unlock()

	if err := os.MkdirAll(l.cfg.ExportDir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	path := l.exportPath()
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	n, err := l.store.StreamCSV(ctx, q, ids, l.table.Columns(), f)
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}

	l.notifier.Notify(datatable.Toast{
		Level:   datatable.LevelSuccess,
		Title:   "Export complete",
		Message: fmt.Sprintf("%d row(s) written to %s", n, path),
	})
	return nil
}
