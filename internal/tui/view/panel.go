package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/marquee/internal/datatable"
)

// PanelStyles groups the styles needed to render a panel over the grid.
type PanelStyles struct {
	Frame  lipgloss.Style
	Title  lipgloss.Style
	Body   lipgloss.Style
	Footer lipgloss.Style
	Active lipgloss.Style
}

// RenderPanel renders a framed panel with the provided title, body and footer.
func RenderPanel(title, body, footer string, styles PanelStyles) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(title))
	if body != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Body.Render(body))
	}
	if footer != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Footer.Render(footer))
	}

	return styles.Frame.Render(b.String())
}

// ColumnsBody lists the visibility toggles with the entry at cursor highlighted.
func ColumnsBody(toggles []datatable.VisibilityToggle, cursor int, styles PanelStyles) string {
	lines := make([]string, len(toggles))
	for i, v := range toggles {
		box := datatable.UncheckedBox
		if v.Visible {
			box = datatable.CheckedBox
		}
		line := box + " " + v.Label
		if i == cursor {
			line = styles.Active.Render(line)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// WrapParagraphs wraps each line of text to width, keeping blank lines.
func WrapParagraphs(text string, width int) string {
	var out []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, WrapTextToWidths(line, width, width)...)
	}
	return strings.Join(out, "\n")
}
