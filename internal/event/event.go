// Package event defines the event listing domain for marquee.
package event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors.
var (
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrMissingStart     = errors.New("start time is required")
	ErrInvalidStatus    = errors.New("status must be draft, published, cancelled or completed")
	ErrNegativeCapacity = errors.New("capacity cannot be negative")
	ErrOversold         = errors.New("tickets sold cannot exceed capacity")
	ErrNegativePrice    = errors.New("price cannot be negative")
)

// Domain errors.
var (
	ErrEventNotFound = errors.New("event not found")
)

// Status represents the publication state of an event.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// ParseStatus parses a status name, case-insensitively. Empty means draft.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return StatusDraft, nil
	}
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Event is one listing of the marketplace.
type Event struct {
	ID          string
	Title       string
	Host        string
	Artists     []string
	Venue       string
	City        string
	StartsAt    time.Time
	Price       *float64 // nil means free or not yet priced
	Capacity    int
	TicketsSold int
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RowID returns the event ID.
func (e *Event) RowID() string {
	return e.ID
}

// SoldPercent returns the share of capacity sold, or nil without capacity.
func (e *Event) SoldPercent() *float64 {
	if e.Capacity <= 0 {
		return nil
	}
	p := float64(e.TicketsSold) * 100 / float64(e.Capacity)
	return &p
}

// IsUpcoming reports whether the event is published and starts after now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.Status == StatusPublished && e.StartsAt.After(now)
}

// Params holds the fields needed to create an event.
type Params struct {
	Title       string
	Host        string
	Artists     []string
	Venue       string
	City        string
	StartsAt    time.Time
	Price       *float64
	Capacity    int
	TicketsSold int
	Status      string
}

// New creates a new Event with validation and a fresh ID.
func New(p Params) (*Event, error) {
	e := &Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(p.Title),
		Host:        strings.TrimSpace(p.Host),
		Artists:     cleanNames(p.Artists),
		Venue:       strings.TrimSpace(p.Venue),
		City:        strings.TrimSpace(p.City),
		StartsAt:    p.StartsAt,
		Price:       p.Price,
		Capacity:    p.Capacity,
		TicketsSold: p.TicketsSold,
	}

	status, err := ParseStatus(p.Status)
	if err != nil {
		return nil, err
	}
	e.Status = status

	if err := e.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	return e, nil
}

// Validate checks the event invariants.
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrEmptyTitle
	}
	if e.StartsAt.IsZero() {
		return ErrMissingStart
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	if e.Capacity < 0 {
		return ErrNegativeCapacity
	}
	if e.TicketsSold < 0 || e.TicketsSold > e.Capacity {
		return ErrOversold
	}
	if e.Price != nil && *e.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

func cleanNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
