package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.Width = max(msg.Width-6, 10)
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		if m.busy == 0 {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case commands.LoadedMsg:
		m.done()
		m.clampCursor()
		m.logFrame("loaded")
		return m, m.drainToasts()

	case commands.TableUpdatedMsg:
		m.done()
		m.clampCursor()
		m.logFrame(msg.Op)
		return m, m.afterOp(msg.Op, msg.Err)

	case commands.ExportedMsg:
		m.done()
		if cmd := m.drainToasts(); cmd != nil {
			return m, cmd
		}
		if msg.Err != nil {
			return m, m.afterOp("export", msg.Err)
		}
		t := datatable.Toast{Level: datatable.LevelSuccess, Title: "Export requested", Message: fmt.Sprintf("%s export handed to the store", msg.Scope)}
		if msg.Path != "" {
			t.Title, t.Message = "Export complete", fmt.Sprintf("%s export written to %s", msg.Scope, msg.Path)
		}
		return m, m.showToast(t)

	case commands.SuggestionMsg:
		m.done()
		m.clampCursor()
		return m, m.showSuggestion(msg)

	case commands.DigestMsg:
		m.done()
		m.openPanel(PanelText, "Digest", msg.Text)
		return m, nil

	case commands.ErrMsg:
		m.done()
		m.logError("command", msg.Err)
		return m, m.showToast(datatable.Toast{Level: datatable.LevelError, Title: "Error", Message: msg.Err.Error()})

	case commands.ClearToastMsg:
		if msg.Seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil
	}

	return m, nil
}

// dispatch runs cmd as a tracked background command and keeps the spinner
// going until it reports back.
func (m *Model) dispatch(cmd tea.Cmd) tea.Cmd {
	m.busy++
	if m.spinning {
		return cmd
	}
	m.spinning = true
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) done() {
	if m.busy > 0 {
		m.busy--
	}
}

// afterOp surfaces the outcome of a table operation. Remote failures and
// empty exports have already queued their own toast.
func (m *Model) afterOp(op string, err error) tea.Cmd {
	if cmd := m.drainToasts(); cmd != nil {
		return cmd
	}
	if err == nil {
		return nil
	}
	m.logError(op, err)
	var remote *datatable.RemoteCallbackError
	if errors.As(err, &remote) {
		return nil
	}
	return m.showToast(datatable.Toast{Level: datatable.LevelError, Title: "Could not " + op, Message: err.Error()})
}

// drainToasts shows the most recent queued toast. Earlier ones are only logged.
func (m *Model) drainToasts() tea.Cmd {
	if m.toasts == nil {
		return nil
	}
	queued := m.toasts.Drain()
	if len(queued) == 0 {
		return nil
	}
	for _, t := range queued[:len(queued)-1] {
		m.log.WithField("toast", t.Level.String()).Debug(t.Title + ": " + t.Message)
	}
	return m.showToast(queued[len(queued)-1])
}

func (m *Model) showToast(t datatable.Toast) tea.Cmd {
	m.toastSeq++
	m.toast = &t
	d := toastDuration
	if t.Level == datatable.LevelError {
		d = errorToastDuration
	}
	return commands.ClearToastAfter(d, m.toastSeq)
}

func (m *Model) showSuggestion(msg commands.SuggestionMsg) tea.Cmd {
	if cmd := m.drainToasts(); cmd != nil {
		return cmd
	}
	s := msg.Suggestion
	if s.Empty() {
		message := "the request did not map to any column"
		if len(s.Warnings) > 0 {
			message = strings.Join(s.Warnings, "; ")
		}
		return m.showToast(datatable.Toast{Level: datatable.LevelWarning, Title: "Nothing to apply", Message: message})
	}

	var parts []string
	if n := len(s.Filters); n > 0 {
		parts = append(parts, fmt.Sprintf("%d filter(s)", n))
	}
	if s.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", s.Search))
	}
	if s.SortKey != "" {
		dir := "asc"
		if s.SortDesc {
			dir = "desc"
		}
		parts = append(parts, "sort "+s.SortKey+" "+dir)
	}
	t := datatable.Toast{Level: datatable.LevelSuccess, Title: "Applied", Message: strings.Join(parts, ", ")}
	if len(s.Warnings) > 0 {
		t.Level = datatable.LevelWarning
		t.Message += " (" + strings.Join(s.Warnings, "; ") + ")"
	}
	return m.showToast(t)
}

func (m *Model) openPanel(p PanelType, title, text string) {
	m.logModeChange(m.mode, ModePanel, title)
	m.mode = ModePanel
	m.panel = p
	m.panelTitle = title
	m.panelText = text
	m.panelCursor = 0
}

func (m *Model) closePanel() {
	m.logModeChange(m.mode, ModeNormal, "close panel")
	m.mode = ModeNormal
	m.panel = PanelNone
	m.panelText = ""
}

// clampCursor keeps the cursor on an existing row and column and scrolls it
// into view.
func (m *Model) clampCursor() {
	f := m.table.Frame()
	m.cursor.Row = clamp(m.cursor.Row, 0, len(f.Rows)-1)
	m.cursor.Col = clamp(m.cursor.Col, 0, len(f.Headers)-1)

	visible := m.bodyRows()
	if m.cursor.Row < m.offset {
		m.offset = m.cursor.Row
	}
	if m.cursor.Row >= m.offset+visible {
		m.offset = m.cursor.Row - visible + 1
	}
	m.offset = clamp(m.offset, 0, max(len(f.Rows)-visible, 0))
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
