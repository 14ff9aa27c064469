package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/llm"
	"github.com/javiermolinar/marquee/internal/tui/view"
)

// maxCellWidth caps how wide a printed cell may grow.
const maxCellWidth = 28

// printFrame prints a table frame: toolbar summary, grid and footer. Cells
// are clipped so the grid keeps its natural width.
func printFrame(w io.Writer, f datatable.Frame) {
	// The bare filter hint only makes sense in the console.
	if line := view.ToolbarLine(f.Toolbar); line != "" && !strings.HasPrefix(line, "/") {
		fmt.Fprintln(w, formatMuted(line))
	}
	fmt.Fprintln(w, renderGrid(f))
	switch {
	case f.Infinite != nil:
		fmt.Fprintf(w, "%s %s\n", formatStats(fmt.Sprintf("%d row(s)", len(f.Rows))), formatMuted(f.Infinite.Label))
	case f.Pagination != nil:
		fmt.Fprintln(w, formatMuted(view.PagerLine(f)))
	}
}

// renderGrid renders headers and rows as a bordered table. The selection
// column is dropped since nothing can be selected from the command line.
func renderGrid(f datatable.Frame) string {
	var keep []int
	var headers []string
	for i, h := range f.Headers {
		if h.Kind == datatable.KindSelect {
			continue
		}
		keep = append(keep, i)
		headers = append(headers, view.HeaderLabel(h))
	}

	rows := make([][]string, 0, len(f.Rows))
	for _, r := range f.Rows {
		row := make([]string, 0, len(keep))
		for _, i := range keep {
			row = append(row, view.Clip(r.Cells[i], maxCellWidth))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 && len(headers) > 0 {
		empty := make([]string, len(headers))
		empty[0] = f.Empty
		rows = append(rows, empty)
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	return t.Render()
}

// printSuggestion describes what the assistant mapped a request to.
func printSuggestion(w io.Writer, s *llm.Suggestion) {
	if s.Empty() {
		fmt.Fprintln(w, formatWarning("Nothing to apply: the request did not map to any column."))
	}
	for _, f := range s.Filters {
		fmt.Fprintf(w, "%s %s %s %q\n", formatHeader("filter"), f.Key, f.Operator.Label(), f.Value)
	}
	if s.Search != "" {
		fmt.Fprintf(w, "%s %q\n", formatHeader("search"), s.Search)
	}
	if s.SortKey != "" {
		dir := "asc"
		if s.SortDesc {
			dir = "desc"
		}
		fmt.Fprintf(w, "%s %s %s\n", formatHeader("sort"), s.SortKey, dir)
	}
	for _, warning := range s.Warnings {
		fmt.Fprintln(w, formatWarning("warning: "+warning))
	}
}

// printInsightWrapped formats and prints assistant text preserving structure.
func printInsightWrapped(w io.Writer, text string, width int) {
	text = stripMarkdownCodeBlocks(text)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fmt.Fprintln(w)
			continue
		}

		prefix, content, contentWidth, isHeader := parseInsightLine(trimmed, width)
		if isHeader {
			fmt.Fprintln(w, formatHeader("  "+content))
			continue
		}
		wrapAndPrint(w, content, prefix, contentWidth)
	}
}

// parseInsightLine parses a line and returns formatting info.
// Returns: prefix, content, contentWidth, isHeader
func parseInsightLine(trimmed string, width int) (prefix, content string, contentWidth int, isHeader bool) {
	prefix = "  "
	content = trimmed
	contentWidth = width - 2

	switch {
	case strings.HasPrefix(trimmed, "HEADLINE:"):
		content = strings.TrimSpace(strings.TrimPrefix(trimmed, "HEADLINE:"))
		isHeader = true

	case strings.HasPrefix(trimmed, "#"):
		content = strings.TrimLeft(trimmed, "# ")
		isHeader = true

	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		prefix = "    • "
		content = strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* ")
		contentWidth = width - 6
	}

	return prefix, content, contentWidth, isHeader
}

// wrapAndPrint wraps text to width and prints with the given prefix.
func wrapAndPrint(w io.Writer, text, prefix string, width int) {
	continuation := strings.Repeat(" ", lipgloss.Width(prefix))
	for i, line := range view.WrapTextToWidths(text, width, width) {
		p := prefix
		if i > 0 {
			p = continuation
		}
		fmt.Fprintln(w, formatInsight(p+line))
	}
}

// stripMarkdownCodeBlocks removes ```...``` fences from text.
func stripMarkdownCodeBlocks(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			continue // Skip the fence line
		}
		if !inCodeBlock {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
