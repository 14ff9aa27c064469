package event

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/javiermolinar/marquee/internal/dateutil"
)

// CSV import errors.
var (
	ErrMissingColumn = errors.New("csv is missing a required column")
)

// ImportHeaders are the columns understood by ReadCSV. Only title and starts_at
// are required.
var ImportHeaders = []string{
	"title", "host", "artists", "venue", "city", "starts_at",
	"price", "capacity", "tickets_sold", "status",
}

// ReadCSV reads events from CSV with a header row. Artists are separated by
// semicolons. Date-times without a zone are read in loc.
func ReadCSV(r io.Reader, loc *time.Location) ([]*Event, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"title", "starts_at"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var events []*Event
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		get := func(name string) string {
			if i, ok := idx[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		e, err := parseRecord(get, loc)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func parseRecord(get func(string) string, loc *time.Location) (*Event, error) {
	startsAt, err := dateutil.ParseDateTime(get("starts_at"), loc)
	if err != nil {
		return nil, fmt.Errorf("starts_at: %w", err)
	}

	p := Params{
		Title:    get("title"),
		Host:     get("host"),
		Artists:  strings.Split(get("artists"), ";"),
		Venue:    get("venue"),
		City:     get("city"),
		StartsAt: startsAt,
		Status:   get("status"),
	}
	if v := get("price"); v != "" {
		v = strings.ReplaceAll(strings.TrimSpace(strings.TrimPrefix(v, "$")), ",", "")
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("price: %w", err)
		}
		p.Price = &price
	}
	if p.Capacity, err = atoi(get("capacity")); err != nil {
		return nil, fmt.Errorf("capacity: %w", err)
	}
	if p.TicketsSold, err = atoi(get("tickets_sold")); err != nil {
		return nil, fmt.Errorf("tickets_sold: %w", err)
	}
	return New(p)
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
