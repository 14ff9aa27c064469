package tui

import (
	"context"
	"slices"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/tui/commands"
	"github.com/javiermolinar/marquee/internal/tui/input"
)

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

// handleKeyMsg routes key presses by mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logKeyPress(msg)

	// Global keys (work in all modes)
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModePrompt:
		return m.handlePromptKeys(msg)
	case ModePanel:
		return m.handlePanelKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	// Navigation
	case "j", "down":
		m.cursor.Row++
		m.clampCursor()
	case "k", "up":
		m.cursor.Row--
		m.clampCursor()
	case "h", "left":
		m.cursor.Col--
		m.clampCursor()
	case "l", "right":
		m.cursor.Col++
		m.clampCursor()
	case "g", "home":
		m.cursor.Row = 0
		m.clampCursor()
	case "G", "end":
		m.cursor.Row = len(m.table.Frame().Rows) - 1
		m.clampCursor()

	// Sorting and filtering
	case "s":
		h, ok := m.focusedHeader()
		if !ok || !h.Sortable {
			return m, nil
		}
		return m, m.dispatch(commands.Run("sort", func(ctx context.Context) error {
			return m.table.ToggleSort(ctx, h.Key)
		}))
	case "x":
		h, ok := m.focusedHeader()
		if !ok {
			return m, nil
		}
		return m, m.dispatch(commands.Run("reset filter", func(ctx context.Context) error {
			return m.table.ResetFilter(ctx, h.Key)
		}))
	case "r":
		return m, m.dispatch(commands.Run("reset", m.resetAll))

	// Selection
	case " ", "space":
		if id, ok := m.cursorRowID(); ok {
			m.table.ToggleRowSelection(id)
		}
	case "a":
		m.table.TogglePageSelection()
	case "c":
		m.table.ClearSelection()

	// Pagination
	case "]", "n":
		return m, m.dispatch(commands.Run("next page", m.table.NextPage))
	case "[", "p":
		return m, m.dispatch(commands.Run("previous page", m.table.PrevPage))
	case "+", "=":
		return m, m.stepPageSize(1)
	case "-":
		return m, m.stepPageSize(-1)
	case "m":
		if m.table.Modes().Pagination != datatable.PaginateCursor {
			return m, nil
		}
		return m, m.dispatch(commands.Run("load more", m.table.LoadMore))

	// Columns
	case "v":
		m.openPanel(PanelColumns, "Columns", "")
	case "V":
		m.table.ShowAllColumns()
		m.clampCursor()

	// Clipboard and export
	case "y":
		return m, m.copyCell()
	case "e":
		return m, m.dispatch(commands.Export(m.listing, datatable.ScopeSelected))
	case "E":
		return m, m.dispatch(commands.Export(m.listing, datatable.ScopeFull))

	// Assistant
	case "d":
		return m, m.dispatch(commands.Digest(m.config.LLM, m.newClient, m.table.Rows(), m.now()))

	case "/":
		m.logModeChange(m.mode, ModePrompt, "slash")
		m.mode = ModePrompt
		m.prompt.SetValue("/")
		m.prompt.CursorEnd()
		m.prompt.Focus()
		return m, textinput.Blink
	case "?":
		m.openPanel(PanelHelp, "Keys", "")
	}
	return m, nil
}

// handlePromptKeys handles keys while the prompt is open.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil

	case "enter":
		value := m.prompt.Value()
		m.closePrompt()
		return m.handlePromptSubmit(value)

	case "tab":
		if completion, ok := input.PromptAutocomplete(m.prompt.Value(), promptCommands); ok {
			m.prompt.SetValue(completion)
			m.prompt.CursorEnd()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.logModeChange(m.mode, ModeNormal, "prompt closed")
	m.mode = ModeNormal
	m.prompt.Blur()
	m.prompt.SetValue("")
}

// handlePanelKeys handles keys while a panel is shown.
func (m Model) handlePanelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.panel == PanelColumns {
		toggles := m.visibilityToggles()
		switch msg.String() {
		case "j", "down":
			m.panelCursor = clamp(m.panelCursor+1, 0, len(toggles)-1)
			return m, nil
		case "k", "up":
			m.panelCursor = clamp(m.panelCursor-1, 0, len(toggles)-1)
			return m, nil
		case " ", "space", "enter":
			if m.panelCursor < len(toggles) {
				m.table.ToggleColumnVisibility(toggles[m.panelCursor].Key)
				m.clampCursor()
			}
			return m, nil
		}
	}

	switch msg.String() {
	case "esc", "q", "enter", "?", "v":
		m.closePanel()
	case "y":
		if m.panel == PanelText {
			return m, m.copyText(m.panelText)
		}
	}
	return m, nil
}

// resetAll clears every filter and the search term.
func (m Model) resetAll(ctx context.Context) error {
	if err := m.table.ResetFilter(ctx); err != nil {
		return err
	}
	if m.table.SearchTerm() == "" {
		return nil
	}
	return m.table.Search(ctx, "")
}

// stepPageSize moves to the next or previous allowed page size.
func (m *Model) stepPageSize(delta int) tea.Cmd {
	sizes := m.table.PageSizes()
	if len(sizes) == 0 {
		return nil
	}
	i := slices.Index(sizes, m.table.Page().PageSize)
	next := clamp(i+delta, 0, len(sizes)-1)
	if i >= 0 && next == i {
		return nil
	}
	size := sizes[next]
	return m.dispatch(commands.Run("page size", func(ctx context.Context) error {
		return m.table.SetPageSize(ctx, size)
	}))
}

func (m Model) focusedHeader() (datatable.Header, bool) {
	headers := m.table.Frame().Headers
	if m.cursor.Col < 0 || m.cursor.Col >= len(headers) {
		return datatable.Header{}, false
	}
	return headers[m.cursor.Col], true
}

func (m Model) cursorRowID() (string, bool) {
	rows := m.table.Frame().Rows
	if m.cursor.Row < 0 || m.cursor.Row >= len(rows) {
		return "", false
	}
	return rows[m.cursor.Row].ID, true
}

func (m Model) visibilityToggles() []datatable.VisibilityToggle {
	if tb := m.table.Frame().Toolbar; tb != nil {
		return tb.Visibility
	}
	return nil
}

// copyCell copies the text of the focused cell.
func (m *Model) copyCell() tea.Cmd {
	f := m.table.Frame()
	if m.cursor.Row >= len(f.Rows) || m.cursor.Col >= len(f.Headers) {
		return nil
	}
	if f.Headers[m.cursor.Col].Kind != datatable.KindData {
		return nil
	}
	return m.copyText(f.Rows[m.cursor.Row].Cells[m.cursor.Col])
}

func (m *Model) copyText(text string) tea.Cmd {
	if err := writeClipboard(text); err != nil {
		m.logError("clipboard", err)
		return m.showToast(datatable.Toast{Level: datatable.LevelError, Title: "Copy failed", Message: err.Error()})
	}
	return m.showToast(datatable.Toast{Level: datatable.LevelSuccess, Title: "Copied to clipboard"})
}
