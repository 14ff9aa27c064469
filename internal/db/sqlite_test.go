package db

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/event"
)

func ptr(v float64) *float64 { return &v }

func newEvent(t *testing.T, title, city string, price *float64, startsAt time.Time) *event.Event {
	t.Helper()
	e, err := event.New(event.Params{
		Title:       title,
		Host:        "Host of " + title,
		Artists:     []string{"Nina Calloway", "DJ Orbit"},
		Venue:       "Main Hall",
		City:        city,
		StartsAt:    startsAt,
		Price:       price,
		Capacity:    100,
		TicketsSold: 40,
		Status:      "published",
	})
	if err != nil {
		t.Fatalf("event.New failed: %v", err)
	}
	return e
}

// seed inserts five events in a fixed order and returns them.
func seed(t *testing.T, repo *SQLite) []*event.Event {
	t.Helper()
	base := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	events := []*event.Event{
		newEvent(t, "Jazz Night", "Berlin", ptr(10), base.Add(48*time.Hour)),
		newEvent(t, "Rock Fest", "Madrid", ptr(9), base.Add(24*time.Hour)),
		newEvent(t, "Jazz Brunch", "berlin", ptr(25), base.Add(72*time.Hour)),
		newEvent(t, "Opera", "Vienna", nil, base),
		newEvent(t, "Techno", "Berlin", ptr(100), base.Add(96*time.Hour)),
	}
	if err := repo.CreateMany(context.Background(), events); err != nil {
		t.Fatalf("CreateMany failed: %v", err)
	}
	return events
}

func titles(events []*event.Event) string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return strings.Join(out, ",")
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := newEvent(t, "Jazz Night", "Berlin", ptr(12.5), time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC))
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Title != e.Title || got.City != e.City || got.Host != e.Host {
		t.Errorf("got %+v, want %+v", got, e)
	}
	if got.Price == nil || *got.Price != 12.5 {
		t.Errorf("expected price 12.5, got %v", got.Price)
	}
	if strings.Join(got.Artists, ";") != "Nina Calloway;DJ Orbit" {
		t.Errorf("unexpected artists %v", got.Artists)
	}
	if !got.StartsAt.Equal(e.StartsAt) {
		t.Errorf("expected starts at %v, got %v", e.StartsAt, got.StartsAt)
	}
	if !got.CreatedAt.Equal(e.CreatedAt.Truncate(time.Second)) {
		t.Errorf("expected created at %v, got %v", e.CreatedAt, got.CreatedAt)
	}
	if got.Status != event.StatusPublished {
		t.Errorf("expected status published, got %s", got.Status)
	}
}

func TestCreate_NilPriceAndArtists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e, err := event.New(event.Params{Title: "Open Mic", StartsAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Price != nil {
		t.Errorf("expected nil price, got %v", *got.Price)
	}
	if got.Artists != nil {
		t.Errorf("expected nil artists, got %v", got.Artists)
	}
}

func TestCreate_Invalid(t *testing.T) {
	repo := newTestRepo(t)

	e := &event.Event{ID: "x", Title: "", StartsAt: time.Now(), Status: event.StatusDraft}
	if err := repo.Create(context.Background(), e); !errors.Is(err, event.ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, event.ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestCreateMany_RollsBackOnDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := newEvent(t, "Jazz Night", "Berlin", nil, time.Now())
	dup := *e
	if err := repo.CreateMany(ctx, []*event.Event{e, &dup}); err == nil {
		t.Fatal("expected duplicate id error")
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected rollback, found %d events", len(all))
	}
}

func TestListAll_InsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo)

	all, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if got := titles(all); got != "Jazz Night,Rock Fest,Jazz Brunch,Opera,Techno" {
		t.Errorf("unexpected order %s", got)
	}
}

func TestQuery_Filters(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo)

	tests := []struct {
		name   string
		filter datatable.ColumnFilter
		want   string
	}{
		{"contains is case-insensitive", datatable.ColumnFilter{Key: event.KeyTitle, Operator: datatable.Contains, Value: "JAZZ"}, "Jazz Night,Jazz Brunch"},
		{"equals text ignores case", datatable.ColumnFilter{Key: event.KeyCity, Operator: datatable.Equals, Value: "BERLIN"}, "Jazz Night,Jazz Brunch,Techno"},
		{"not equals text", datatable.ColumnFilter{Key: event.KeyCity, Operator: datatable.NotEquals, Value: "berlin"}, "Rock Fest,Opera"},
		{"equals numeric", datatable.ColumnFilter{Key: event.KeyPrice, Operator: datatable.Equals, Value: "9.0"}, "Rock Fest"},
		{"greater than numeric", datatable.ColumnFilter{Key: event.KeyPrice, Operator: datatable.GreaterThan, Value: "9"}, "Jazz Night,Jazz Brunch,Techno"},
		{"less than numeric skips null", datatable.ColumnFilter{Key: event.KeyPrice, Operator: datatable.LessThan, Value: "25"}, "Jazz Night,Rock Fest"},
		{"not equals keeps null", datatable.ColumnFilter{Key: event.KeyPrice, Operator: datatable.NotEquals, Value: "10"}, "Rock Fest,Jazz Brunch,Opera,Techno"},
		{"artists contains", datatable.ColumnFilter{Key: event.KeyArtists, Operator: datatable.Contains, Value: "calloway, dj"}, "Jazz Night,Rock Fest,Jazz Brunch,Opera,Techno"},
		{"sold percent", datatable.ColumnFilter{Key: event.KeySold, Operator: datatable.Equals, Value: "40"}, "Jazz Night,Rock Fest,Jazz Brunch,Opera,Techno"},
		{"text greater than", datatable.ColumnFilter{Key: event.KeyTitle, Operator: datatable.GreaterThan, Value: "p"}, "Rock Fest,Techno"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.Query(context.Background(), event.Query{Filters: []datatable.ColumnFilter{tt.filter}})
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if got := titles(page.Events); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if page.Total != len(page.Events) {
				t.Errorf("expected total %d, got %d", len(page.Events), page.Total)
			}
		})
	}
}

func TestQuery_FiltersConjoin(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo)

	page, err := repo.Query(context.Background(), event.Query{Filters: []datatable.ColumnFilter{
		{Key: event.KeyCity, Operator: datatable.Equals, Value: "berlin"},
		{Key: event.KeyTitle, Operator: datatable.Contains, Value: "jazz"},
	}})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := titles(page.Events); got != "Jazz Night,Jazz Brunch" {
		t.Errorf("unexpected result %s", got)
	}
}

func TestQuery_Search(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo)

	page, err := repo.Query(context.Background(), event.Query{Search: "  madrid "})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := titles(page.Events); got != "Rock Fest" {
		t.Errorf("unexpected result %s", got)
	}
}

func TestQuery_Sort(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo)
	ctx := context.Background()

	tests := []struct {
		key  string
		desc bool
		want string
	}{
		{event.KeyPrice, false, "Opera,Rock Fest,Jazz Night,Jazz Brunch,Techno"},
		{event.KeyPrice, true, "Techno,Jazz Brunch,Jazz Night,Rock Fest,Opera"},
		{event.KeyStartsAt, false, "Opera,Rock Fest,Jazz Night,Jazz Brunch,Techno"},
		{event.KeyCity, false, "Jazz Night,Jazz Brunch,Techno,Rock Fest,Opera"},
		{event.KeyCity, true, "Opera,Rock Fest,Jazz Night,Jazz Brunch,Techno"},
	}

	for _, tt := range tests {
		page, err := repo.Query(ctx, event.Query{SortKey: tt.key, SortDesc: tt.desc})
		if err != nil {
			t.Fatalf("Query(%s) failed: %v", tt.key, err)
		}
		if got := titles(page.Events); got != tt.want {
			t.Errorf("sort %s desc=%v: got %s, want %s", tt.key, tt.desc, got, tt.want)
		}
	}
}

func TestQuery_Paging(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo)
	ctx := context.Background()

	page, err := repo.Query(ctx, event.Query{Offset: 2, Limit: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := titles(page.Events); got != "Jazz Brunch,Opera" {
		t.Errorf("unexpected page %s", got)
	}
	if page.Total != 5 || !page.HasMore {
		t.Errorf("expected total 5 with more, got %d/%v", page.Total, page.HasMore)
	}

	last, err := repo.Query(ctx, event.Query{Offset: 4, Limit: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if titles(last.Events) != "Techno" || last.HasMore {
		t.Errorf("unexpected last page %s more=%v", titles(last.Events), last.HasMore)
	}
}

func TestQuery_Cursor(t *testing.T) {
	repo := newTestRepo(t)
	events := seed(t, repo)
	ctx := context.Background()

	page, err := repo.Query(ctx, event.Query{After: events[1].ID, Limit: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := titles(page.Events); got != "Jazz Brunch,Opera" {
		t.Errorf("unexpected batch %s", got)
	}
	if !page.HasMore {
		t.Error("expected more rows after the batch")
	}

	_, err = repo.Query(ctx, event.Query{After: events[1].ID, SortKey: event.KeyPrice})
	if !errors.Is(err, ErrCursorSort) {
		t.Errorf("expected ErrCursorSort, got %v", err)
	}
}

func TestQuery_Errors(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Query(ctx, event.Query{Filters: []datatable.ColumnFilter{{Key: "nope", Operator: datatable.Equals}}})
	if !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}

	_, err = repo.Query(ctx, event.Query{Filters: []datatable.ColumnFilter{{Key: event.KeyCity, Operator: "Between"}}})
	if !errors.Is(err, ErrUnknownOperator) {
		t.Errorf("expected ErrUnknownOperator, got %v", err)
	}

	_, err = repo.Query(ctx, event.Query{SortKey: event.KeyArtists})
	if !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn for unsortable artists, got %v", err)
	}

	_, err = repo.Query(ctx, event.Query{SortKey: "id; DROP TABLE events"})
	if !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestStreamCSV(t *testing.T) {
	repo := newTestRepo(t)
	events := seed(t, repo)
	ctx := context.Background()

	var buf bytes.Buffer
	n, err := repo.StreamCSV(ctx, event.Query{
		Filters: []datatable.ColumnFilter{{Key: event.KeyCity, Operator: datatable.Equals, Value: "berlin"}},
		SortKey: event.KeyPrice,
	}, nil, event.Columns(), &buf)
	if err != nil {
		t.Fatalf("StreamCSV failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Title,Host,Artists,Venue,City,Starts,Price,Capacity,Sold,Status" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Jazz Night,") || !strings.Contains(lines[1], "$ 10") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "Techno,") {
		t.Errorf("unexpected last row %q", lines[3])
	}

	buf.Reset()
	n, err = repo.StreamCSV(ctx, event.Query{}, []string{events[3].ID}, event.Columns(), &buf)
	if err != nil {
		t.Fatalf("StreamCSV failed: %v", err)
	}
	if n != 1 || !strings.Contains(buf.String(), "Opera,") || !strings.Contains(buf.String(), "N/A") {
		t.Errorf("unexpected selected export %q", buf.String())
	}
}

func TestNew_CreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	first, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_ = first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("reopening failed: %v", err)
	}
	_ = second.Close()
}

func newTestRepo(t *testing.T) *SQLite {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}
