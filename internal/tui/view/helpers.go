package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PlaceBox places content in a w x h box and fills the gaps with bg.
func PlaceBox(w, h int, vAlign lipgloss.Position, content string, bg lipgloss.Color) string {
	placed := lipgloss.Place(w, h, lipgloss.Left, vAlign, content, lipgloss.WithWhitespaceBackground(bg))
	return Fill(placed, w, h, bg)
}

// Fill pads every line of content to width with bg and pads or cuts the
// block to height lines. Lines wider than width are left alone.
func Fill(content string, width, height int, bg lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	pad := lipgloss.NewStyle().Background(bg)
	for i, line := range lines {
		if gap := width - lipgloss.Width(line); gap > 0 {
			lines[i] = line + pad.Render(strings.Repeat(" ", gap))
		}
	}
	return strings.Join(lines, "\n")
}

// Clip truncates s to width cells, marking the cut with an ellipsis.
func Clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// Overlay centers panel over base, which is first filled to width x height.
// Each panel line is padded to the widest one and keeps its background
// across any resets inside it.
func Overlay(base, panel string, width, height int, panelBg lipgloss.Color) string {
	panelLines := strings.Split(panel, "\n")
	panelW := min(lipgloss.Width(panel), width)
	if panelW <= 0 {
		return base
	}
	top := max((height-len(panelLines))/2, 0)
	left := max((width-panelW)/2, 0)

	pad := lipgloss.NewStyle().Background(panelBg)
	reset := backgroundSeq(panelBg)

	lines := strings.Split(Fill(base, width, height, ""), "\n")
	for i, pl := range panelLines {
		row := top + i
		if row >= len(lines) {
			break
		}
		if w := lipgloss.Width(pl); w > panelW {
			pl = ansi.Cut(pl, 0, panelW)
		} else if w < panelW {
			pl += pad.Render(strings.Repeat(" ", panelW-w))
		}
		if reset != "" {
			pl = keepBackground(pl, reset)
		}
		lines[row] = ansi.Cut(lines[row], 0, left) + pl + ansi.ResetStyle + ansi.Cut(lines[row], left+panelW, width)
	}
	return strings.Join(lines, "\n")
}

// keepBackground re-emits seq after every sequence that clears the background.
func keepBackground(line, seq string) string {
	for _, cut := range []string{ansi.ResetStyle, "\x1b[0m", "\x1b[49m"} {
		line = strings.ReplaceAll(line, cut, cut+seq)
	}
	return line
}

func backgroundSeq(bg lipgloss.Color) string {
	if bg == "" {
		return ""
	}
	return ansi.Style{}.BackgroundColor(ansi.HexColor(string(bg))).String()
}
