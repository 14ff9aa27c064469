package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/dateutil"
)

const suggestPrompt = `You translate requests about an event listing into table filters.

Today: %s (%s)

Columns (key: label, type, capabilities):
%s

Operators: Contains, Equals, NotEquals, GreaterThan, LessThan
- Contains matches a case-insensitive substring.
- GreaterThan and LessThan compare numbers numerically and other values as text.
- Dates compare as "YYYY-MM-DD HH:MM" text. You may use "today", "tomorrow",
  "next-week", "next-friday" or "YYYY-MM-DD" as date values.

User request: "%s"

Rules:
- Use only the column keys listed above.
- At most one filter per column.
- Put free text that does not map to a column in "search".
- Leave "sort" null unless the request asks for an order.
- Explain anything you could not express in "warnings".

Respond ONLY with valid JSON (no markdown, no explanation):
{
  "filters": [{"column": "key", "operator": "Equals", "value": "string"}],
  "search": "string",
  "sort": {"column": "key", "direction": "asc" or "desc"},
  "warnings": ["string"]
}`

// ValueKind describes how a column's values read to the model.
type ValueKind string

const (
	KindText   ValueKind = "text"
	KindNumber ValueKind = "number"
	KindDate   ValueKind = "date"
)

// ColumnHint describes one table column in the prompt.
type ColumnHint struct {
	Key        string
	Label      string
	Kind       ValueKind
	Filterable bool
	Sortable   bool
}

// Hints lists the filterable or sortable data columns. Columns missing from
// kinds are text.
func Hints[R datatable.Identifiable](columns []datatable.Column[R], kinds map[string]ValueKind) []ColumnHint {
	var hints []ColumnHint
	for _, c := range columns {
		if c.Kind != datatable.KindData || (!c.Filterable && !c.Sortable) {
			continue
		}
		kind, ok := kinds[c.Key]
		if !ok {
			kind = KindText
		}
		hints = append(hints, ColumnHint{
			Key:        c.Key,
			Label:      c.Label,
			Kind:       kind,
			Filterable: c.Filterable,
			Sortable:   c.Sortable,
		})
	}
	return hints
}

// SuggestRequest contains the input for Suggest.
type SuggestRequest struct {
	Input   string
	Columns []ColumnHint
	Now     time.Time
}

// Suggestion is a validated table view derived from a request.
type Suggestion struct {
	Filters  []datatable.ColumnFilter
	Search   string
	SortKey  string
	SortDesc bool
	Warnings []string
}

// Empty reports whether the suggestion changes nothing.
func (s *Suggestion) Empty() bool {
	return len(s.Filters) == 0 && s.Search == "" && s.SortKey == ""
}

type suggestResponse struct {
	Filters []struct {
		Column   string `json:"column"`
		Operator string `json:"operator"`
		Value    string `json:"value"`
	} `json:"filters"`
	Search string `json:"search"`
	Sort   *struct {
		Column    string `json:"column"`
		Direction string `json:"direction"`
	} `json:"sort"`
	Warnings []string `json:"warnings"`
}

// Assistant uses an LLM to turn natural language into table state.
type Assistant struct {
	client Client
}

// NewAssistant creates a new Assistant with the given LLM client.
func NewAssistant(client Client) *Assistant {
	return &Assistant{client: client}
}

// Suggest asks the model for filters matching req.Input. Anything the model
// returns that the table cannot apply is dropped with a warning.
func (a *Assistant) Suggest(ctx context.Context, req SuggestRequest) (*Suggestion, error) {
	var resp suggestResponse
	if err := a.client.ChatJSON(ctx, BuildSuggestMessages(req), &resp); err != nil {
		return nil, fmt.Errorf("getting filters from LLM: %w", err)
	}
	return resp.toSuggestion(req), nil
}

// BuildSuggestMessages creates the message list for a suggestion request.
func BuildSuggestMessages(req SuggestRequest) []Message {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	var cols strings.Builder
	for _, c := range req.Columns {
		var caps []string
		if c.Filterable {
			caps = append(caps, "filter")
		}
		if c.Sortable {
			caps = append(caps, "sort")
		}
		fmt.Fprintf(&cols, "- %s: %s, %s, %s\n", c.Key, c.Label, c.Kind, strings.Join(caps, "+"))
	}

	prompt := fmt.Sprintf(suggestPrompt,
		now.Format("2006-01-02"),
		now.Format("Monday"),
		strings.TrimRight(cols.String(), "\n"),
		req.Input,
	)
	return []Message{{Role: RoleSystem, Content: prompt}}
}

func (r *suggestResponse) toSuggestion(req SuggestRequest) *Suggestion {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	hints := make(map[string]ColumnHint, len(req.Columns))
	for _, c := range req.Columns {
		hints[c.Key] = c
	}

	s := &Suggestion{Search: strings.TrimSpace(r.Search), Warnings: r.Warnings}
	seen := make(map[string]bool)
	for _, f := range r.Filters {
		hint, ok := hints[f.Column]
		if !ok || !hint.Filterable {
			s.Warnings = append(s.Warnings, fmt.Sprintf("cannot filter on %q", f.Column))
			continue
		}
		if seen[f.Column] {
			s.Warnings = append(s.Warnings, fmt.Sprintf("ignoring extra filter on %q", f.Column))
			continue
		}
		op, err := datatable.ParseOperator(f.Operator)
		if err != nil {
			s.Warnings = append(s.Warnings, fmt.Sprintf("unknown operator %q", f.Operator))
			continue
		}
		value := strings.TrimSpace(f.Value)
		if hint.Kind == KindDate {
			if d, err := dateutil.ParseRelativeDate(value, now); err == nil && value != "" {
				value = d.Format(dateutil.FilterLayout)
			}
		}
		seen[f.Column] = true
		s.Filters = append(s.Filters, datatable.ColumnFilter{Key: f.Column, Operator: op, Value: value})
	}

	if r.Sort != nil && r.Sort.Column != "" {
		hint, ok := hints[r.Sort.Column]
		if ok && hint.Sortable {
			s.SortKey = r.Sort.Column
			s.SortDesc = strings.EqualFold(strings.TrimSpace(r.Sort.Direction), "desc")
		} else {
			s.Warnings = append(s.Warnings, fmt.Sprintf("cannot sort by %q", r.Sort.Column))
		}
	}
	return s
}

// Apply replaces the table's filters, search and sort with the suggestion.
func Apply[R datatable.Identifiable](ctx context.Context, t *datatable.Table[R], s *Suggestion) error {
	if err := t.ResetFilter(ctx); err != nil {
		return err
	}
	for _, f := range s.Filters {
		if err := t.ApplyFilter(ctx, f.Key, f.Operator, f.Value); err != nil {
			return err
		}
	}
	if s.Search != t.SearchTerm() {
		if err := t.Search(ctx, s.Search); err != nil {
			return err
		}
	}
	if s.SortKey == "" {
		return nil
	}

	want := datatable.SortAsc
	if s.SortDesc {
		want = datatable.SortDesc
	}
	return t.SortBy(ctx, s.SortKey, want)
}
