package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/tui/theme"
	"github.com/javiermolinar/marquee/internal/tui/view"
)

// maxCellWidth caps how wide a single grid cell may grow.
const maxCellWidth = 32

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle   lipgloss.Style
	BadgeStyle   lipgloss.Style
	SpinnerStyle lipgloss.Style
	ToolbarStyle lipgloss.Style

	// Grid
	HeaderStyle      lipgloss.Style
	HeaderFocusStyle lipgloss.Style
	CellStyle        lipgloss.Style
	CellAltStyle     lipgloss.Style
	CursorStyle      lipgloss.Style
	SelectedStyle    lipgloss.Style
	MutedStyle       lipgloss.Style
	BorderStyle      lipgloss.Style

	// Footer
	PagerStyle  lipgloss.Style
	HelpStyle   lipgloss.Style
	PromptStyle lipgloss.Style

	ToastInfoStyle    lipgloss.Style
	ToastSuccessStyle lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style

	// Panels
	PanelStyle       lipgloss.Style
	PanelTitleStyle  lipgloss.Style
	PanelBodyStyle   lipgloss.Style
	PanelFooterStyle lipgloss.Style
	PanelActiveStyle lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	base := lipgloss.NewStyle().Background(p.Bg).Foreground(p.Fg)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return &Styles{
		palette: p,

		TitleStyle:   base.Bold(true).Foreground(p.Accent),
		BadgeStyle:   lipgloss.NewStyle().Background(p.Accent).Foreground(p.TextOnAccent).Padding(0, 1),
		SpinnerStyle: base.Foreground(p.Accent),
		ToolbarStyle: base.Foreground(p.FgMuted),

		HeaderStyle:      cell.Bold(true).Foreground(p.Header).Background(p.Bg),
		HeaderFocusStyle: cell.Bold(true).Underline(true).Foreground(p.TextOnAccent).Background(p.Accent),
		CellStyle:        cell.Foreground(p.Fg).Background(p.Bg),
		CellAltStyle:     cell.Foreground(p.Fg).Background(p.RowAlt),
		CursorStyle:      cell.Foreground(p.TextOnSelection).Background(p.BgSelection),
		SelectedStyle:    cell.Foreground(p.Fg).Background(p.SelectedBg),
		MutedStyle:       cell.Foreground(p.FgMuted).Background(p.Bg),
		BorderStyle:      lipgloss.NewStyle().Foreground(p.Border).Background(p.Bg),

		PagerStyle:  base.Foreground(p.Fg).Padding(0, 1),
		HelpStyle:   base.Foreground(p.FgMuted).Padding(0, 1),
		PromptStyle: base.Padding(0, 1),

		ToastInfoStyle:    base.Foreground(p.Accent).Padding(0, 1),
		ToastSuccessStyle: base.Foreground(p.Success).Padding(0, 1),
		ToastWarningStyle: base.Foreground(p.Warning).Padding(0, 1),
		ToastErrorStyle:   base.Bold(true).Foreground(p.Error).Padding(0, 1),

		PanelStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			BorderBackground(p.BgHighlight).
			Background(p.BgHighlight).
			Foreground(p.Fg).
			Padding(1, 2),
		PanelTitleStyle:  lipgloss.NewStyle().Bold(true).Foreground(p.Accent).Background(p.BgHighlight),
		PanelBodyStyle:   lipgloss.NewStyle().Foreground(p.Fg).Background(p.BgHighlight),
		PanelFooterStyle: lipgloss.NewStyle().Foreground(p.FgMuted).Background(p.BgHighlight),
		PanelActiveStyle: lipgloss.NewStyle().Foreground(p.TextOnSelection).Background(p.BgSelection),
	}
}

// Bg returns the base background color.
func (s *Styles) Bg() lipgloss.Color {
	return s.palette.Bg
}

// PanelBg returns the panel background color.
func (s *Styles) PanelBg() lipgloss.Color {
	return s.palette.BgHighlight
}

// Table returns the grid styles.
func (s *Styles) Table() view.TableStyles {
	return view.TableStyles{
		Header:      s.HeaderStyle,
		HeaderFocus: s.HeaderFocusStyle,
		Cell:        s.CellStyle,
		CellAlt:     s.CellAltStyle,
		Cursor:      s.CursorStyle,
		Selected:    s.SelectedStyle,
		Muted:       s.MutedStyle,
	}
}

// Panel returns the panel styles.
func (s *Styles) Panel() view.PanelStyles {
	return view.PanelStyles{
		Frame:  s.PanelStyle,
		Title:  s.PanelTitleStyle,
		Body:   s.PanelBodyStyle,
		Footer: s.PanelFooterStyle,
		Active: s.PanelActiveStyle,
	}
}

// Toast returns the style for a toast of the given level.
func (s *Styles) Toast(level datatable.Level) lipgloss.Style {
	switch level {
	case datatable.LevelSuccess:
		return s.ToastSuccessStyle
	case datatable.LevelWarning:
		return s.ToastWarningStyle
	case datatable.LevelError:
		return s.ToastErrorStyle
	default:
		return s.ToastInfoStyle
	}
}
