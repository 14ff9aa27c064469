// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/marquee/internal/config"
	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/event"
	"github.com/javiermolinar/marquee/internal/listing"
	"github.com/javiermolinar/marquee/internal/llm"
)

// LLMTimeout bounds a single assistant request.
const LLMTimeout = 2 * time.Minute

// LoadedMsg is sent when the first view of events is loaded.
type LoadedMsg struct{}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// TableUpdatedMsg is sent when a table operation finishes. Failed remote
// operations have already raised a toast through the notifier.
type TableUpdatedMsg struct {
	Op  string
	Err error
}

// ExportedMsg is sent when an export finishes.
type ExportedMsg struct {
	Scope datatable.Scope
	Path  string
	Err   error
}

// SuggestionMsg is sent when an /ask request has been applied to the table.
type SuggestionMsg struct {
	Input      string
	Suggestion *llm.Suggestion
}

// DigestMsg is sent when the listing digest is ready.
type DigestMsg struct {
	Text string
}

// ClearToastMsg is sent to clear the toast line.
type ClearToastMsg struct {
	Seq int
}

// NewClient creates the configured LLM client.
type NewClient func(cfg config.LLMConfig) (llm.Client, error)

// DefaultClient builds the client named by the [llm] section.
func DefaultClient(cfg config.LLMConfig) (llm.Client, error) {
	return llm.NewClient(cfg.Provider, cfg.Model, cfg.BaseURL)
}

// ValueKinds tells the assistant how event columns read.
var ValueKinds = map[string]llm.ValueKind{
	event.KeyStartsAt:  llm.KindDate,
	event.KeyCreatedAt: llm.KindDate,
	event.KeyUpdatedAt: llm.KindDate,
	event.KeyPrice:     llm.KindNumber,
	event.KeyCapacity:  llm.KindNumber,
	event.KeySold:      llm.KindNumber,
}

// Load fetches the first view of events.
func Load(l *listing.Listing) tea.Cmd {
	return func() tea.Msg {
		if err := l.Load(context.Background()); err != nil {
			return ErrMsg{Err: err}
		}
		return LoadedMsg{}
	}
}

// Run performs a table operation off the UI goroutine. Manual operations call
// into the store and may block.
func Run(op string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return TableUpdatedMsg{Op: op, Err: fn(context.Background())}
	}
}

// Export writes the scope to the export directory.
func Export(l *listing.Listing, scope datatable.Scope) tea.Cmd {
	return func() tea.Msg {
		path, err := l.Export(context.Background(), scope)
		return ExportedMsg{Scope: scope, Path: path, Err: err}
	}
}

// Ask turns a natural language request into filters, search and sort and
// applies them to the table.
func Ask(input string, cfg config.LLMConfig, newClient NewClient, table *datatable.Table[*event.Event], now time.Time) tea.Cmd {
	return func() tea.Msg {
		client, err := newClient(cfg)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("creating LLM client: %w", err)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), LLMTimeout)
		defer cancel()

		suggestion, err := llm.NewAssistant(client).Suggest(ctx, llm.SuggestRequest{
			Input:   input,
			Columns: llm.Hints(table.Columns(), ValueKinds),
			Now:     now,
		})
		if err != nil {
			return ErrMsg{Err: err}
		}
		if !suggestion.Empty() {
			if err := llm.Apply(ctx, table, suggestion); err != nil {
				return ErrMsg{Err: fmt.Errorf("applying suggestion: %w", err)}
			}
		}
		return SuggestionMsg{Input: input, Suggestion: suggestion}
	}
}

// Digest summarises the events currently on screen.
func Digest(cfg config.LLMConfig, newClient NewClient, events []*event.Event, now time.Time) tea.Cmd {
	return func() tea.Msg {
		client, err := newClient(cfg)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("creating LLM client: %w", err)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), LLMTimeout)
		defer cancel()

		text, err := llm.NewAssistant(client).Digest(ctx, events, now)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("summarizing events: %w", err)}
		}
		return DigestMsg{Text: text}
	}
}

// ClearToastAfter clears toast seq once d has passed, unless a newer toast
// replaced it.
func ClearToastAfter(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearToastMsg{Seq: seq}
	})
}
