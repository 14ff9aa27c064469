package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/javiermolinar/marquee/internal/tui/input"
)

const (
	promptPrefix = "> "
	hintIndent   = "  "
)

// PromptState captures prompt input state for rendering.
type PromptState struct {
	Value      string
	Cursor     string
	ModePrompt bool
}

// PromptLines returns the wrapped input line followed by command hints.
// Once a command name is complete its usage replaces the suggestions.
func PromptLines(state PromptState, width int, commands []input.PromptCommand) []string {
	lines := indent(WrapTextToWidths(state.Value+state.Cursor, width-len(promptPrefix), width-len(hintIndent)), promptPrefix, hintIndent)
	if !state.ModePrompt {
		return lines
	}

	if cmd, ok := input.PromptCommandFor(state.Value, commands); ok {
		if cmd.Usage != "" {
			lines = append(lines, hint("usage: "+cmd.Name+" "+cmd.Usage, width)...)
		}
		return lines
	}
	for _, cmd := range input.PromptMatchingCommands(state.Value, commands) {
		lines = append(lines, hint(cmd.Name+" "+cmd.Description, width)...)
	}
	return lines
}

// ClampPromptLines keeps at most maxLines lines and marks the last kept line
// when anything was dropped.
func ClampPromptLines(lines []string, maxLines, width int) []string {
	if maxLines <= 0 {
		return nil
	}
	if len(lines) <= maxLines {
		return lines
	}
	clamped := append([]string(nil), lines[:maxLines]...)
	last := clamped[maxLines-1]
	if ansi.StringWidth(last)+3 > width {
		last = ansi.Truncate(last, max(width-3, 0), "")
	}
	clamped[maxLines-1] = last + "..."
	return clamped
}

// WrapTextToWidths word-wraps s so the first line fits firstWidth cells and
// the rest fit otherWidth. Words longer than a line are split.
func WrapTextToWidths(s string, firstWidth, otherWidth int) []string {
	if firstWidth <= 0 || otherWidth <= 0 {
		return []string{""}
	}

	var (
		lines []string
		line  strings.Builder
		used  int
	)
	limit := firstWidth
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		used = 0
		limit = otherWidth
	}

	for i, word := range strings.Split(s, " ") {
		w := runewidth.StringWidth(word)
		if i > 0 {
			if used+1+w <= limit {
				line.WriteByte(' ')
				used++
			} else {
				flush()
			}
		}
		for w > limit-used {
			head := runewidth.Truncate(word, limit-used, "")
			if head == "" && used > 0 {
				flush()
				continue
			}
			if head == "" {
				// a single rune wider than the line
				head = string([]rune(word)[:1])
			}
			line.WriteString(head)
			word = word[len(head):]
			w = runewidth.StringWidth(word)
			flush()
		}
		line.WriteString(word)
		used += w
	}
	return append(lines, line.String())
}

// RenderPrompt renders the prompt box with the provided lines.
func RenderPrompt(width int, style lipgloss.Style, lines []string) string {
	frameW, _ := style.GetFrameSize()
	if len(lines) == 0 {
		lines = []string{""}
	}
	return style.Width(max(width-frameW, 0)).Render(strings.Join(lines, "\n"))
}

func hint(s string, width int) []string {
	return indent(WrapTextToWidths(s, width-len(hintIndent), width-len(hintIndent)), hintIndent, hintIndent)
}

func indent(lines []string, first, rest string) []string {
	for i := range lines {
		if i == 0 {
			lines[i] = first + lines[i]
		} else {
			lines[i] = rest + lines[i]
		}
	}
	return lines
}
