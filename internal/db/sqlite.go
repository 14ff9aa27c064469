// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/event"
)

// timeLayout stores times as sortable UTC text.
const timeLayout = "2006-01-02T15:04:05Z"

const selectEvents = `
	SELECT id, title, host, artists, venue, city, starts_at, price,
	       capacity, tickets_sold, status, created_at, updated_at
	FROM events`

const insertEvent = `
	INSERT INTO events (
		id, title, host, artists, venue, city, starts_at, price,
		capacity, tickets_sold, status, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// SQLite implements event.Store using SQLite.
type SQLite struct {
	db *sql.DB
}

var _ event.Store = (*SQLite)(nil)

// New creates a new SQLite store and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Create adds a new event to the store.
func (s *SQLite) Create(ctx context.Context, e *event.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, insertEvent, insertArgs(e)...); err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// CreateMany adds multiple events using a transaction.
func (s *SQLite) CreateMany(ctx context.Context, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}

	for _, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event %q: %w", e.Title, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertEvent)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, insertArgs(e)...); err != nil {
			return fmt.Errorf("inserting event %q: %w", e.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func insertArgs(e *event.Event) []any {
	return []any{
		e.ID,
		e.Title,
		e.Host,
		strings.Join(e.Artists, ";"),
		e.Venue,
		e.City,
		formatTime(e.StartsAt),
		e.Price,
		e.Capacity,
		e.TicketsSold,
		string(e.Status),
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
	}
}

// Get retrieves an event by ID.
func (s *SQLite) Get(ctx context.Context, id string) (*event.Event, error) {
	row := s.db.QueryRowContext(ctx, selectEvents+" WHERE id = ?", id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", event.ErrEventNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}
	return e, nil
}

// ListAll returns every event in insertion order.
func (s *SQLite) ListAll(ctx context.Context) ([]*event.Event, error) {
	return s.list(ctx, selectEvents+" ORDER BY rowid")
}

// Query returns one page of events. With After set the page starts after that
// event in insertion order.
func (s *SQLite) Query(ctx context.Context, q event.Query) (*event.Page, error) {
	where, args, err := whereClause(q.Filters, q.Search)
	if err != nil {
		return nil, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}

	if q.After != "" {
		if q.SortKey != "" {
			return nil, ErrCursorSort
		}
		cursor := "rowid > (SELECT rowid FROM events WHERE id = ?)"
		if where == "" {
			where = " WHERE " + cursor
		} else {
			where += " AND " + cursor
		}
		args = append(args, q.After)
	}

	order, err := orderClause(q.SortKey, q.SortDesc)
	if err != nil {
		return nil, err
	}

	query := selectEvents + where + order
	if q.Limit > 0 {
		// One extra row tells whether another page exists.
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit+1, q.Offset)
	} else if q.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, q.Offset)
	}

	events, err := s.list(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	page := &event.Page{Events: events, Total: total}
	if q.Limit > 0 && len(events) > q.Limit {
		page.Events = events[:q.Limit]
		page.HasMore = true
	}
	return page, nil
}

// StreamCSV writes matching events as CSV without loading them all at once.
// Only exportable columns are written, rendered as the table displays them.
func (s *SQLite) StreamCSV(ctx context.Context, q event.Query, ids []string, columns []datatable.Column[*event.Event], w io.Writer) (int, error) {
	var (
		where string
		args  []any
		err   error
	)
	if len(ids) > 0 {
		where = " WHERE id IN (?" + strings.Repeat(", ?", len(ids)-1) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	} else if where, args, err = whereClause(q.Filters, q.Search); err != nil {
		return 0, err
	}

	order, err := orderClause(q.SortKey, q.SortDesc)
	if err != nil {
		return 0, err
	}

	var cols []datatable.Column[*event.Event]
	for _, c := range columns {
		if c.Kind == datatable.KindData && c.Exportable {
			cols = append(cols, c)
		}
	}

	rows, err := s.db.QueryContext(ctx, selectEvents+where+order, args...)
	if err != nil {
		return 0, fmt.Errorf("querying events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("writing csv header: %w", err)
	}

	n := 0
	record := make([]string, len(cols))
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return n, err
		}
		for i, c := range cols {
			record[i] = c.Display(e)
		}
		if err := cw.Write(record); err != nil {
			return n, fmt.Errorf("writing csv row: %w", err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("iterating events: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flushing csv: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) list(ctx context.Context, query string, args ...any) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (*event.Event, error) {
	var (
		e                              event.Event
		artists, status                string
		startsAt, createdAt, updatedAt string
		price                          sql.NullFloat64
	)

	err := sc.Scan(
		&e.ID,
		&e.Title,
		&e.Host,
		&artists,
		&e.Venue,
		&e.City,
		&startsAt,
		&price,
		&e.Capacity,
		&e.TicketsSold,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if artists != "" {
		e.Artists = strings.Split(artists, ";")
	}
	if price.Valid {
		e.Price = &price.Float64
	}
	e.Status = event.Status(status)

	if e.StartsAt, err = parseTime(startsAt); err != nil {
		return nil, fmt.Errorf("parsing starts at: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated at: %w", err)
	}

	return &e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a stored time back in the local zone.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}
