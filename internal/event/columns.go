package event

import (
	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/datatable/cell"
)

// Column keys of the event table.
const (
	KeyTitle     = "title"
	KeyHost      = "host"
	KeyArtists   = "artists"
	KeyVenue     = "venue"
	KeyCity      = "city"
	KeyStartsAt  = "startsAt"
	KeyPrice     = "price"
	KeyCapacity  = "capacity"
	KeySold      = "sold"
	KeyStatus    = "status"
	KeyCreatedAt = "createdAt"
	KeyUpdatedAt = "updatedAt"
)

// Columns declares the event table. The selection, actions and timestamp
// columns are never exported.
func Columns() []datatable.Column[*Event] {
	text := func(key, label string, get func(*Event) string) datatable.Column[*Event] {
		return datatable.NewColumn(key, label, func(e *Event) any { return get(e) }).WithFormat(cell.Text)
	}

	artists := datatable.NewColumn(KeyArtists, "Artists", func(e *Event) any { return e.Artists }).
		WithFormat(cell.ListFormat(false))
	artists.Sortable = false

	createdAt := datatable.NewColumn(KeyCreatedAt, "Created", func(e *Event) any { return e.CreatedAt }).
		WithFormat(cell.DateTime)
	createdAt.Exportable = false

	updatedAt := datatable.NewColumn(KeyUpdatedAt, "Updated", func(e *Event) any { return e.UpdatedAt }).
		WithFormat(cell.DateTime)
	updatedAt.Exportable = false

	return []datatable.Column[*Event]{
		datatable.SelectColumn[*Event](),
		text(KeyTitle, "Title", func(e *Event) string { return e.Title }),
		text(KeyHost, "Host", func(e *Event) string { return e.Host }),
		artists,
		text(KeyVenue, "Venue", func(e *Event) string { return e.Venue }),
		text(KeyCity, "City", func(e *Event) string { return e.City }),
		datatable.NewColumn(KeyStartsAt, "Starts", func(e *Event) any { return e.StartsAt }).
			WithFormat(cell.DateTime),
		datatable.NewColumn(KeyPrice, "Price", func(e *Event) any { return e.Price }).
			WithFormat(cell.NumberFormat(cell.Price)),
		datatable.NewColumn(KeyCapacity, "Capacity", func(e *Event) any { return e.Capacity }).
			WithFormat(cell.NumberFormat(cell.Plain)),
		datatable.NewColumn(KeySold, "Sold", func(e *Event) any { return e.SoldPercent() }).
			WithFormat(cell.NumberFormat(cell.Percent)),
		text(KeyStatus, "Status", func(e *Event) string { return string(e.Status) }),
		createdAt,
		updatedAt,
		datatable.ActionsColumn("Actions", actions),
	}
}

// actions lists what can be done with an event from the console.
func actions(e *Event) string {
	switch e.Status {
	case StatusDraft:
		return "publish · edit"
	case StatusPublished:
		return "view · cancel"
	default:
		return "view"
	}
}
