package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/marquee/internal/notify"
	"github.com/javiermolinar/marquee/internal/tui/view"
)

const (
	titleH         = 1
	toolbarH       = 1
	footerBaseH    = 2 // pager and toast
	promptMaxLines = 4
	gridChromeH    = 4 // top border, header, header rule, bottom border
	panelMaxW      = 72
)

const helpText = "j/k move  h/l column  s sort  / prompt  space select  v columns  ? help  q quit"

// View renders the TUI.
func (m Model) View() string {
	screen := view.Screen{
		Width:   m.width,
		Height:  m.height,
		PanelBg: m.styles.PanelBg(),
	}
	if m.width > 0 && m.height > 0 {
		screen.Content = m.renderAppContent()
	}
	if m.mode == ModePanel && m.panel != PanelNone {
		screen.Panel = m.renderPanel()
	}
	return view.Render(screen)
}

func (m Model) renderAppContent() string {
	if m.width <= 0 || m.gridHeight() <= gridChromeH {
		return "Terminal too small"
	}
	bg := m.styles.Bg()

	title := view.PlaceBox(m.width, titleH, lipgloss.Top, m.titleLine(), bg)
	toolbar := view.PlaceBox(m.width, toolbarH, lipgloss.Top,
		m.styles.ToolbarStyle.Render(" "+view.Clip(view.ToolbarLine(m.table.Frame().Toolbar), m.width-2)), bg)
	grid := view.RenderTable(m.tableViewState())
	footer := view.RenderFooter(m.footer())

	content := lipgloss.JoinVertical(lipgloss.Left, title, toolbar, grid, footer)
	return view.Fill(content, m.width, m.height, bg)
}

func (m Model) titleLine() string {
	parts := []string{
		m.styles.TitleStyle.Render(" marquee"),
		m.styles.BadgeStyle.Render(strings.ToUpper(m.mode.String())),
	}
	if m.busy > 0 {
		parts = append(parts, m.spinner.View())
	}
	return strings.Join(parts, " ")
}

func (m Model) tableViewState() view.TableViewState {
	gridH := m.gridHeight()
	if gridH <= 0 {
		return view.TableViewState{Render: false}
	}

	f := m.table.Frame()
	headers, headerStyles, content := view.FrameContent(f, m.cursor, m.styles.Table(), maxCellWidth)

	start := 0
	if !f.Loading && len(f.Rows) > 0 {
		start = min(m.offset, len(content.Rows))
	}
	end := min(start+m.bodyRows(), len(content.Rows))
	content.Rows = content.Rows[start:end]
	content.CellStyles = content.CellStyles[start:end]

	return view.TableViewState{
		InnerW:       m.width,
		GridH:        gridH,
		Headers:      headers,
		HeaderStyles: headerStyles,
		Content:      content,
		BorderStyle:  m.styles.BorderStyle,
		VAlign:       lipgloss.Top,
		Bg:           m.styles.Bg(),
		Render:       true,
	}
}

func (m Model) footer() view.Footer {
	f := view.Footer{
		Width:       m.width,
		Height:      m.footerHeight(),
		Pager:       view.PagerLine(m.table.Frame()),
		Help:        helpText,
		Prompt:      m.promptLines(),
		PagerStyle:  m.styles.PagerStyle,
		ToastStyle:  m.styles.ToastInfoStyle,
		HelpStyle:   m.styles.HelpStyle,
		PromptStyle: m.styles.PromptStyle,
		Bg:          m.styles.Bg(),
	}
	if m.toast != nil {
		f.Toast = notify.Format(*m.toast)
		f.ToastStyle = m.styles.Toast(m.toast.Level)
	}
	return f
}

func (m Model) promptLines() []string {
	if m.mode != ModePrompt {
		return nil
	}
	width := m.promptContentWidth()
	state := view.PromptState{
		Value:      m.prompt.Value(),
		Cursor:     "█",
		ModePrompt: true,
	}
	lines := view.PromptLines(state, width, promptCommands)
	return view.ClampPromptLines(lines, promptMaxLines, width)
}

func (m Model) promptContentWidth() int {
	frameW, _ := m.styles.PromptStyle.GetFrameSize()
	return max(m.width-frameW, 0)
}

func (m Model) footerHeight() int {
	if m.mode == ModePrompt {
		return footerBaseH + max(len(m.promptLines()), 1)
	}
	return footerBaseH + 1
}

func (m Model) gridHeight() int {
	return m.height - titleH - toolbarH - m.footerHeight()
}

// bodyRows is the number of table rows that fit in the grid.
func (m Model) bodyRows() int {
	return max(m.gridHeight()-gridChromeH, 1)
}

func (m Model) renderPanel() string {
	width := min(panelMaxW, max(m.width-8, 20))
	styles := m.styles.Panel()

	switch m.panel {
	case PanelHelp:
		return view.RenderPanel(m.panelTitle, m.helpBody(), "esc to close", styles)
	case PanelColumns:
		body := view.ColumnsBody(m.visibilityToggles(), m.panelCursor, styles)
		return view.RenderPanel(m.panelTitle, body, "space toggle  esc close", styles)
	case PanelText:
		return view.RenderPanel(m.panelTitle, view.WrapParagraphs(m.panelText, width), "y copy  esc close", styles)
	}
	return ""
}

func (m Model) helpBody() string {
	keys := [][2]string{
		{"j/k h/l", "move the cursor"},
		{"g/G", "first or last row"},
		{"s", "cycle the sort of the focused column"},
		{"x", "clear the focused column filter"},
		{"r", "clear every filter and the search"},
		{"space a c", "toggle row, toggle page, clear selection"},
		{"] [", "next or previous page"},
		{"+ -", "change rows per page"},
		{"m", "load more rows"},
		{"v V", "column menu, show all columns"},
		{"y", "copy the focused cell"},
		{"e E", "export selected or all rows"},
		{"d", "digest the visible events"},
		{"/", "open the prompt"},
	}
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(padRight(k[0], 12))
		b.WriteString(k[1])
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, c := range promptCommands {
		b.WriteString(padRight(c.Name, 12))
		b.WriteString(c.Description)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
