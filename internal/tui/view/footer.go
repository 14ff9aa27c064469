package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Footer is the three-line strip under the grid: pager, latest toast, and
// either the help line or the open prompt.
type Footer struct {
	Width  int
	Height int

	Pager  string
	Toast  string
	Help   string
	Prompt []string // nil while the prompt is closed

	PagerStyle  lipgloss.Style
	ToastStyle  lipgloss.Style
	HelpStyle   lipgloss.Style
	PromptStyle lipgloss.Style
	Bg          lipgloss.Color
}

// RenderFooter renders f into a Width x Height box.
func RenderFooter(f Footer) string {
	if f.Height <= 0 {
		return ""
	}

	last := fitLine(f.Width, f.HelpStyle, f.Help)
	if f.Prompt != nil {
		last = RenderPrompt(f.Width, f.PromptStyle, f.Prompt)
	}
	s := strings.Join([]string{
		fitLine(f.Width, f.PagerStyle, f.Pager),
		fitLine(f.Width, f.ToastStyle, f.Toast),
		last,
	}, "\n")
	return PlaceBox(f.Width, f.Height, lipgloss.Top, s, f.Bg)
}

// fitLine renders content on a single styled line exactly width cells wide.
func fitLine(width int, style lipgloss.Style, content string) string {
	frameW, _ := style.GetFrameSize()
	inner := max(width-frameW, 0)
	if inner > 0 {
		content = ansi.Truncate(content, inner, "")
	}
	return style.Width(inner).Render(content)
}
