// Package view provides rendering helpers for the TUI.
package view

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/javiermolinar/marquee/internal/datatable"
)

// SkeletonCell fills placeholder rows while the table is loading.
const SkeletonCell = "░░░░░░"

// TableContent contains table rows and cell styles.
type TableContent struct {
	Rows       [][]string
	CellStyles [][]lipgloss.Style
}

// TableViewState holds data needed to render the event grid.
type TableViewState struct {
	InnerW       int
	GridH        int
	Headers      []string
	HeaderStyles []lipgloss.Style
	Content      TableContent
	BorderStyle  lipgloss.Style
	VAlign       lipgloss.Position
	Bg           lipgloss.Color
	Render       bool
}

// TableStyles holds the styles used to paint a frame.
type TableStyles struct {
	Header      lipgloss.Style
	HeaderFocus lipgloss.Style
	Cell        lipgloss.Style
	CellAlt     lipgloss.Style
	Cursor      lipgloss.Style
	Selected    lipgloss.Style
	Muted       lipgloss.Style
}

// Cursor locates the highlighted body row and the focused column.
type Cursor struct {
	Row int
	Col int
}

// HeaderLabel renders a header cell: the label followed by the sort indicator
// when the column is sortable.
func HeaderLabel(h datatable.Header) string {
	label := h.Label
	if h.Kind == datatable.KindSelect {
		label = " "
	}
	if h.Sortable {
		label += " " + h.Indicator
	}
	return label
}

// FrameContent converts a table frame into header labels and styled rows.
// Cells wider than maxCellW are clipped; zero disables clipping.
func FrameContent(f datatable.Frame, cur Cursor, styles TableStyles, maxCellW int) ([]string, []lipgloss.Style, TableContent) {
	headers := make([]string, len(f.Headers))
	headerStyles := make([]lipgloss.Style, len(f.Headers))
	for i, h := range f.Headers {
		headers[i] = HeaderLabel(h)
		headerStyles[i] = styles.Header
		if i == cur.Col {
			headerStyles[i] = styles.HeaderFocus
		}
	}

	var content TableContent
	switch {
	case f.Loading:
		for range f.Skeleton {
			row := make([]string, len(f.Headers))
			rowStyles := make([]lipgloss.Style, len(f.Headers))
			for i := range row {
				row[i] = SkeletonCell
				rowStyles[i] = styles.Muted
			}
			content.Rows = append(content.Rows, row)
			content.CellStyles = append(content.CellStyles, rowStyles)
		}
	case len(f.Rows) == 0:
		if len(f.Headers) == 0 {
			break
		}
		row := make([]string, len(f.Headers))
		rowStyles := make([]lipgloss.Style, len(f.Headers))
		for i := range rowStyles {
			rowStyles[i] = styles.Muted
		}
		// The message goes in the first data column so it is not squeezed
		// into the checkbox column.
		at := 0
		if f.Headers[0].Kind == datatable.KindSelect && len(f.Headers) > 1 {
			at = 1
		}
		row[at] = f.Empty
		content.Rows = append(content.Rows, row)
		content.CellStyles = append(content.CellStyles, rowStyles)
	default:
		for r, fr := range f.Rows {
			style := styles.Cell
			if r%2 == 1 {
				style = styles.CellAlt
			}
			if fr.Selected {
				style = styles.Selected
			}
			if r == cur.Row {
				style = styles.Cursor
			}
			row := make([]string, len(fr.Cells))
			rowStyles := make([]lipgloss.Style, len(fr.Cells))
			for i, c := range fr.Cells {
				if maxCellW > 0 {
					c = Clip(c, maxCellW)
				}
				row[i] = c
				rowStyles[i] = style
			}
			content.Rows = append(content.Rows, row)
			content.CellStyles = append(content.CellStyles, rowStyles)
		}
	}
	return headers, headerStyles, content
}

// RenderTable renders the event grid using a lipgloss table.
func RenderTable(state TableViewState) string {
	if !state.Render || state.GridH <= 0 {
		return ""
	}

	tableWidth := state.InnerW - 2
	if tableWidth < 0 {
		tableWidth = 0
	}

	t := table.New().
		Headers(state.Headers...).
		Width(tableWidth).
		Height(state.GridH).
		Border(lipgloss.RoundedBorder()).
		BorderHeader(true).
		BorderColumn(true).
		BorderRow(false).
		BorderStyle(state.BorderStyle).
		Rows(state.Content.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				if col >= 0 && col < len(state.HeaderStyles) {
					return state.HeaderStyles[col]
				}
				return lipgloss.NewStyle()
			}
			if row < 0 || row >= len(state.Content.CellStyles) || col < 0 || col >= len(state.Content.CellStyles[row]) {
				return lipgloss.NewStyle()
			}
			return state.Content.CellStyles[row][col]
		})

	grid := t.Render()
	return PlaceBox(state.InnerW, state.GridH, state.VAlign, grid, state.Bg)
}

// ToolbarLine summarises the search term, active filters and hidden columns.
func ToolbarLine(tb *datatable.Toolbar) string {
	if tb == nil {
		return ""
	}
	var parts []string
	if tb.Search != "" {
		parts = append(parts, "search: "+tb.Search)
	}
	if len(tb.Filters) > 0 {
		filters := make([]string, len(tb.Filters))
		for i, f := range tb.Filters {
			filters[i] = f.Key + " " + f.Operator.Label() + " " + f.Value
		}
		parts = append(parts, "filters: "+strings.Join(filters, ", "))
	}
	var hidden []string
	for _, v := range tb.Visibility {
		if !v.Visible {
			hidden = append(hidden, v.Label)
		}
	}
	if len(hidden) > 0 {
		parts = append(parts, "hidden: "+strings.Join(hidden, ", "))
	}
	if len(parts) == 0 {
		if len(tb.FilterColumns) == 0 {
			return ""
		}
		return "/ to filter or search"
	}
	return strings.Join(parts, "  │  ")
}

// PagerLine renders whichever footer the frame carries.
func PagerLine(f datatable.Frame) string {
	switch {
	case f.Pagination != nil:
		p := f.Pagination
		sizes := make([]string, len(p.PageSizes))
		for i, s := range p.PageSizes {
			label := strconv.Itoa(s)
			if s == p.PageSize {
				label = "[" + label + "]"
			}
			sizes[i] = label
		}
		prev, next := "‹", "›"
		if !p.CanPrev {
			prev = " "
		}
		if !p.CanNext {
			next = " "
		}
		return p.Summary + "   Rows per page: " + strings.Join(sizes, " ") + "   " + prev + " Page " + p.Position + " " + next
	case f.Infinite != nil:
		if f.Infinite.HasMore {
			return "m: " + f.Infinite.Label
		}
		return f.Infinite.Label
	default:
		return ""
	}
}
