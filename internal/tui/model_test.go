package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/marquee/internal/config"
	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/db"
	"github.com/javiermolinar/marquee/internal/event"
	"github.com/javiermolinar/marquee/internal/listing"
	"github.com/javiermolinar/marquee/internal/llm"
	"github.com/javiermolinar/marquee/internal/notify"
	"github.com/javiermolinar/marquee/internal/tui/commands"
	"github.com/javiermolinar/marquee/internal/tui/theme"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type fakeClient struct {
	reply string
	err   error
}

func (f fakeClient) Chat(context.Context, []llm.Message) (string, error) {
	return f.reply, f.err
}

func (f fakeClient) ChatJSON(_ context.Context, _ []llm.Message, result any) error {
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.reply), result)
}

// newTestModel returns a loaded, sized model over n seeded events.
func newTestModel(t *testing.T, n int, opts ...ModelOption) Model {
	t.Helper()
	m := newUnloadedModel(t, n, config.Default(), opts...)
	m = settle(t, m, m.Init())
	return update(m, tea.WindowSizeMsg{Width: 160, Height: 30})
}

func newUnloadedModel(t *testing.T, n int, cfg *config.Config, opts ...ModelOption) Model {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	base := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	events := make([]*event.Event, n)
	for i := range events {
		city := "Berlin"
		if i%2 == 1 {
			city = "Lisbon"
		}
		events[i], err = event.New(event.Params{
			Title:    fmt.Sprintf("Event %d", i+1),
			City:     city,
			StartsAt: base.Add(time.Duration(i) * time.Hour),
			Status:   "published",
		})
		if err != nil {
			t.Fatalf("failed to build event: %v", err)
		}
	}
	if err := store.CreateMany(context.Background(), events); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	cfg.Table.DefaultSort = ""
	cfg.Table.ExportDir = t.TempDir()
	toasts := notify.NewQueue()
	l, err := listing.New(store, cfg.Table, nil, toasts)
	if err != nil {
		t.Fatalf("failed to create listing: %v", err)
	}
	return New(l, cfg, toasts, opts...)
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

// settle runs a dispatched command and feeds its result back into the model.
// Toast timers are never run.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if inner := c(); isResult(inner) {
				msg = inner
				break
			}
		}
	}
	if !isResult(msg) {
		t.Fatalf("command returned %T, want a command result", msg)
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func isResult(msg tea.Msg) bool {
	switch msg.(type) {
	case commands.LoadedMsg, commands.TableUpdatedMsg, commands.ExportedMsg,
		commands.SuggestionMsg, commands.DigestMsg, commands.ErrMsg:
		return true
	}
	return false
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func pressAll(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = press(m, k)
	}
	return m
}

func TestNew_StartsBusyAndShowsPlaceholder(t *testing.T) {
	m := newUnloadedModel(t, 1, config.Default())
	if m.busy != 1 || !m.spinning {
		t.Fatalf("busy = %d, spinning = %v, want initial load in flight", m.busy, m.spinning)
	}
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View() before sizing = %q, want Loading...", got)
	}
}

func TestNew_UnknownThemeFallsBack(t *testing.T) {
	cfg := config.Default()
	cfg.UI.Theme = "nope"
	m := newUnloadedModel(t, 1, cfg)
	if m.theme == nil || m.theme.Name != theme.Default {
		t.Fatal("expected fallback theme")
	}
	toasts := m.toasts.Drain()
	if len(toasts) != 1 || toasts[0].Level != datatable.LevelWarning || !strings.Contains(toasts[0].Message, `"nope"`) {
		t.Fatalf("toasts = %+v, want one theme warning", toasts)
	}
}

func TestView_RendersGridAndFooter(t *testing.T) {
	m := newTestModel(t, 12)

	if m.busy != 0 {
		t.Fatalf("busy = %d after load, want 0", m.busy)
	}
	out := m.View()
	for _, want := range []string{"marquee", "NORMAL", "Title", "Event 1", "Rows per page", "Page 1 / 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines != 30 {
		t.Fatalf("view has %d lines, want 30", lines)
	}
}

func TestView_TooSmall(t *testing.T) {
	m := newTestModel(t, 2)
	m = update(m, tea.WindowSizeMsg{Width: 40, Height: 6})
	if !strings.Contains(m.View(), "Terminal too small") {
		t.Fatal("expected too small message")
	}
}

func TestCursorMovementClamps(t *testing.T) {
	m := newTestModel(t, 3)

	m = pressAll(m, "j", "j", "j", "j")
	if m.cursor.Row != 2 {
		t.Fatalf("cursor row = %d, want 2", m.cursor.Row)
	}
	m = pressAll(m, "g")
	if m.cursor.Row != 0 {
		t.Fatalf("cursor row after g = %d, want 0", m.cursor.Row)
	}
	m = pressAll(m, "G")
	if m.cursor.Row != 2 {
		t.Fatalf("cursor row after G = %d, want 2", m.cursor.Row)
	}
	m = pressAll(m, "h", "h")
	if m.cursor.Col != 0 {
		t.Fatalf("cursor col = %d, want 0", m.cursor.Col)
	}
}

func TestCursorScrollsIntoView(t *testing.T) {
	m := newTestModel(t, 30)
	m = update(m, tea.WindowSizeMsg{Width: 160, Height: 14})
	m, cmd := press(m, "+")
	m = settle(t, m, cmd)

	visible := m.bodyRows()
	for range visible + 2 {
		m = pressAll(m, "j")
	}
	if m.offset == 0 {
		t.Fatalf("offset = 0 with cursor at %d and %d visible rows", m.cursor.Row, visible)
	}
	if m.cursor.Row < m.offset || m.cursor.Row >= m.offset+visible {
		t.Fatalf("cursor %d outside window [%d, %d)", m.cursor.Row, m.offset, m.offset+visible)
	}
}

func TestSortKeyCyclesFocusedColumn(t *testing.T) {
	m := newTestModel(t, 12)
	m = pressAll(m, "l") // title

	m, cmd := press(m, "s")
	m = settle(t, m, cmd)
	if got := m.table.SortDirection(event.KeyTitle); got != datatable.SortAsc {
		t.Fatalf("direction = %v, want asc", got)
	}
	if got := m.table.Rows()[1].Title; got != "Event 10" {
		t.Fatalf("second row = %q, want Event 10", got)
	}

	m, cmd = press(m, "s")
	m = settle(t, m, cmd)
	if got := m.table.Rows()[0].Title; got != "Event 9" {
		t.Fatalf("first row desc = %q, want Event 9", got)
	}
}

func TestSortKeyIgnoresSelectColumn(t *testing.T) {
	m := newTestModel(t, 2)
	if _, cmd := press(m, "s"); cmd != nil {
		t.Fatal("expected no command on the select column")
	}
}

func TestSelectionKeys(t *testing.T) {
	m := newTestModel(t, 12)

	m = pressAll(m, "space")
	if got := len(m.table.Selected()); got != 1 {
		t.Fatalf("selected = %d, want 1", got)
	}
	m = pressAll(m, "c", "a")
	if got := len(m.table.Selected()); got != 10 {
		t.Fatalf("selected after page toggle = %d, want 10", got)
	}
	if !strings.Contains(m.View(), "10 of 12 row(s) selected") {
		t.Fatalf("view missing selection summary:\n%s", m.View())
	}
	m = pressAll(m, "c")
	if got := len(m.table.Selected()); got != 0 {
		t.Fatalf("selected after clear = %d, want 0", got)
	}
}

func TestPaginationKeys(t *testing.T) {
	m := newTestModel(t, 25)

	m, cmd := press(m, "]")
	m = settle(t, m, cmd)
	if got := m.table.Page().PageIndex; got != 1 {
		t.Fatalf("page index = %d, want 1", got)
	}
	m, cmd = press(m, "[")
	m = settle(t, m, cmd)
	if got := m.table.Page().PageIndex; got != 0 {
		t.Fatalf("page index = %d, want 0", got)
	}

	m, cmd = press(m, "+")
	m = settle(t, m, cmd)
	if got := m.table.Page().PageSize; got != 30 {
		t.Fatalf("page size = %d, want 30", got)
	}
	m, cmd = press(m, "-")
	m = settle(t, m, cmd)
	if got := m.table.Page().PageSize; got != 10 {
		t.Fatalf("page size = %d, want 10", got)
	}
	m, _ = press(m, "-")
	if _, cmd := press(m, "-"); cmd != nil {
		t.Fatal("expected no command below the smallest page size")
	}
	if _, cmd := press(m, "m"); cmd != nil {
		t.Fatal("load more should be ignored outside cursor pagination")
	}
}

func TestPromptOpensCompletesAndCloses(t *testing.T) {
	m := newTestModel(t, 2)

	m = pressAll(m, "/")
	if m.mode != ModePrompt || m.prompt.Value() != "/" {
		t.Fatalf("mode = %v value = %q, want prompt with /", m.mode, m.prompt.Value())
	}
	m.prompt.SetValue("/fil")
	m = pressAll(m, "tab")
	if got := m.prompt.Value(); got != "/filter " {
		t.Fatalf("completion = %q, want /filter ", got)
	}
	if !strings.Contains(m.View(), "usage: /filter") {
		t.Fatalf("view missing usage line:\n%s", m.View())
	}

	m = pressAll(m, "esc")
	if m.mode != ModeNormal || m.prompt.Value() != "" {
		t.Fatalf("mode = %v value = %q, want normal and cleared", m.mode, m.prompt.Value())
	}
}

func TestPromptFilterAndReset(t *testing.T) {
	m := newTestModel(t, 6)

	m = pressAll(m, "/")
	m.prompt.SetValue("/filter City = lisbon")
	m, cmd := press(m, "enter")
	m = settle(t, m, cmd)

	rows := m.table.Rows()
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for _, r := range rows {
		if r.City != "Lisbon" {
			t.Fatalf("unexpected row %q in %q", r.Title, r.City)
		}
	}
	if !strings.Contains(m.View(), "filters: city") {
		t.Fatalf("toolbar missing filter:\n%s", m.View())
	}

	next, cmd := m.handlePromptSubmit("/reset city")
	m = settle(t, next.(Model), cmd)
	if got := len(m.table.Rows()); got != 6 {
		t.Fatalf("rows after reset = %d, want 6", got)
	}
}

func TestPromptPlainTextSearches(t *testing.T) {
	m := newTestModel(t, 12)

	next, cmd := m.handlePromptSubmit("Event 11")
	m = settle(t, next.(Model), cmd)
	if got := m.table.SearchTerm(); got != "Event 11" {
		t.Fatalf("search term = %q", got)
	}
	if got := len(m.table.Rows()); got != 1 {
		t.Fatalf("rows = %d, want 1", got)
	}

	m, cmd = press(m, "r")
	m = settle(t, m, cmd)
	if m.table.SearchTerm() != "" || len(m.table.Rows()) != 10 {
		t.Fatalf("reset left search %q with %d rows", m.table.SearchTerm(), len(m.table.Rows()))
	}
}

func TestPromptSortAndPageSize(t *testing.T) {
	m := newTestModel(t, 12)

	next, cmd := m.handlePromptSubmit("/sort title desc")
	m = settle(t, next.(Model), cmd)
	if got := m.table.SortDirection(event.KeyTitle); got != datatable.SortDesc {
		t.Fatalf("direction = %v, want desc", got)
	}

	next, cmd = m.handlePromptSubmit("/pagesize 50")
	m = settle(t, next.(Model), cmd)
	if got := m.table.Page().PageSize; got != 50 {
		t.Fatalf("page size = %d, want 50", got)
	}
}

func TestPromptErrorsBecomeWarnings(t *testing.T) {
	m := newTestModel(t, 2)

	cases := []string{
		"/nope",
		"/filter",
		"/filter actions = x",
		"/filter city % x",
		"/sort artists",
		"/sort title sideways",
		"/pagesize zero",
		"/export everything",
		"/ask",
		`/search "open`,
	}
	for _, input := range cases {
		next, _ := m.handlePromptSubmit(input)
		got := next.(Model)
		if got.toast == nil || got.toast.Level != datatable.LevelWarning {
			t.Fatalf("%q: toast = %+v, want warning", input, got.toast)
		}
		if got.busy != 0 {
			t.Fatalf("%q: dispatched a command", input)
		}
	}
}

func TestColumnsPanel(t *testing.T) {
	m := newTestModel(t, 2)

	m = pressAll(m, "v")
	if m.mode != ModePanel || m.panel != PanelColumns {
		t.Fatalf("mode = %v panel = %v, want columns panel", m.mode, m.panel)
	}
	first := m.visibilityToggles()[0]
	m = pressAll(m, "space")
	if m.visibilityToggles()[0].Visible == first.Visible {
		t.Fatalf("toggle %q did not change", first.Key)
	}
	if !strings.Contains(m.View(), "Columns") {
		t.Fatalf("view missing panel:\n%s", m.View())
	}

	m = pressAll(m, "esc", "V")
	if m.mode != ModeNormal {
		t.Fatalf("mode = %v, want normal", m.mode)
	}
	if !m.visibilityToggles()[0].Visible {
		t.Fatal("show all did not restore the column")
	}
}

func TestHelpPanelListsCommands(t *testing.T) {
	m := newTestModel(t, 1)
	m = pressAll(m, "?")
	out := m.View()
	for _, want := range []string{"Keys", "/filter", "/digest"} {
		if !strings.Contains(out, want) {
			t.Fatalf("help missing %q:\n%s", want, out)
		}
	}
	m = pressAll(m, "q")
	if m.mode != ModeNormal {
		t.Fatal("q should close the panel, not quit")
	}
}

func TestCopyCell(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = orig })

	m := newTestModel(t, 3)
	if _, cmd := press(m, "y"); cmd != nil {
		t.Fatal("copying the checkbox column should do nothing")
	}

	m = pressAll(m, "j", "l", "y")
	want := m.table.Frame().Rows[1].Cells[1]
	if copied != want {
		t.Fatalf("copied %q, want %q", copied, want)
	}
	if m.toast == nil || m.toast.Level != datatable.LevelSuccess {
		t.Fatalf("toast = %+v, want success", m.toast)
	}

	writeClipboard = func(string) error { return errors.New("no display") }
	m = pressAll(m, "y")
	if m.toast == nil || m.toast.Level != datatable.LevelError {
		t.Fatalf("toast = %+v, want error", m.toast)
	}
}

func TestExportKeys(t *testing.T) {
	m := newTestModel(t, 3)

	m, cmd := press(m, "E")
	m = settle(t, m, cmd)
	if m.toast == nil || m.toast.Title != "Export complete" || !strings.Contains(m.toast.Message, "events.csv") {
		t.Fatalf("toast = %+v, want export success", m.toast)
	}

	m, cmd = press(m, "e")
	m = settle(t, m, cmd)
	if m.toast == nil || m.toast.Level == datatable.LevelSuccess {
		t.Fatalf("toast = %+v, want a failure for an empty selection", m.toast)
	}
}

func TestDigestOpensTextPanel(t *testing.T) {
	factory := WithClientFactory(func(config.LLMConfig) (llm.Client, error) {
		return fakeClient{reply: "HEADLINE: two shows in Berlin"}, nil
	})
	m := newTestModel(t, 2, factory)

	m, cmd := press(m, "d")
	m = settle(t, m, cmd)
	if m.mode != ModePanel || m.panel != PanelText {
		t.Fatalf("mode = %v panel = %v, want text panel", m.mode, m.panel)
	}
	if !strings.Contains(m.View(), "two shows in Berlin") {
		t.Fatalf("view missing digest:\n%s", m.View())
	}
}

func TestAskShowsAppliedSuggestion(t *testing.T) {
	reply := `{"filters": [{"column": "city", "operator": "Equals", "value": "berlin"}]}`
	factory := WithClientFactory(func(config.LLMConfig) (llm.Client, error) {
		return fakeClient{reply: reply}, nil
	})
	m := newTestModel(t, 4, factory)

	next, cmd := m.handlePromptSubmit("/ask berlin only")
	m = settle(t, next.(Model), cmd)
	if got := len(m.table.Rows()); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	if m.toast == nil || m.toast.Title != "Applied" {
		t.Fatalf("toast = %+v, want Applied", m.toast)
	}
}

func TestErrorToastAndExpiry(t *testing.T) {
	m := newTestModel(t, 1)

	m = update(m, commands.ErrMsg{Err: errors.New("boom")})
	if m.toast == nil || m.toast.Level != datatable.LevelError {
		t.Fatalf("toast = %+v, want error", m.toast)
	}
	if !strings.Contains(m.View(), "Error: boom") {
		t.Fatalf("view missing toast:\n%s", m.View())
	}

	m = update(m, commands.ClearToastMsg{Seq: m.toastSeq - 1})
	if m.toast == nil {
		t.Fatal("stale clear removed the current toast")
	}
	m = update(m, commands.ClearToastMsg{Seq: m.toastSeq})
	if m.toast != nil {
		t.Fatal("toast was not cleared")
	}
}

func TestQueuedToastsShowLatest(t *testing.T) {
	m := newTestModel(t, 1)
	m.toasts.Notify(datatable.Toast{Level: datatable.LevelInfo, Title: "first"})
	m.toasts.Notify(datatable.Toast{Level: datatable.LevelWarning, Title: "second"})

	m = update(m, commands.TableUpdatedMsg{Op: "sort"})
	if m.toast == nil || m.toast.Title != "second" {
		t.Fatalf("toast = %+v, want second", m.toast)
	}
	if m.toasts.Len() != 0 {
		t.Fatal("queue not drained")
	}
}

func TestRemoteErrorsAreNotToastedTwice(t *testing.T) {
	m := newTestModel(t, 1)
	err := &datatable.RemoteCallbackError{Op: "filter", Err: errors.New("offline")}

	m = update(m, commands.TableUpdatedMsg{Op: "filter", Err: err})
	if m.toast != nil {
		t.Fatalf("toast = %+v, want none", m.toast)
	}
}

func TestSpinnerStopsWhenIdle(t *testing.T) {
	m := newTestModel(t, 1)
	m = update(m, m.spinner.Tick())
	if m.spinning {
		t.Fatal("spinner still running with nothing in flight")
	}
}

func TestModeString(t *testing.T) {
	cases := map[Mode]string{ModeNormal: "normal", ModePrompt: "prompt", ModePanel: "panel"}
	for mode, want := range cases {
		if got := mode.String(); got != want {
			t.Fatalf("Mode(%d).String() = %q, want %q", mode, got, want)
		}
	}
}
