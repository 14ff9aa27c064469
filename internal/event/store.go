package event

import (
	"context"
	"io"

	"github.com/javiermolinar/marquee/internal/datatable"
)

// Query selects a page of events. Filters use the table's operator semantics.
// After is a keyset cursor: the ID of the last event already loaded.
type Query struct {
	Filters  []datatable.ColumnFilter
	Search   string
	SortKey  string
	SortDesc bool
	Offset   int
	Limit    int // 0 means no limit
	After    string
}

// Page is the result of a Query.
type Page struct {
	Events  []*Event
	Total   int // matching events ignoring Offset, Limit and After
	HasMore bool
}

// Store defines the storage interface for events.
type Store interface {
	// Create adds a new event.
	Create(ctx context.Context, e *Event) error

	// CreateMany adds multiple events in one transaction.
	CreateMany(ctx context.Context, events []*Event) error

	// Get retrieves an event by ID. Returns ErrEventNotFound if absent.
	Get(ctx context.Context, id string) (*Event, error)

	// ListAll returns every event in insertion order.
	ListAll(ctx context.Context) ([]*Event, error)

	// Query returns one page of filtered, searched and sorted events.
	Query(ctx context.Context, q Query) (*Page, error)

	// StreamCSV writes the events matching q (ignoring paging) as CSV using the
	// exportable columns. With ids set only those events are written.
	// Returns the number of rows written.
	StreamCSV(ctx context.Context, q Query, ids []string, columns []datatable.Column[*Event], w io.Writer) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
