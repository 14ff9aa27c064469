package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Success     lipgloss.Color
	Warning     lipgloss.Color
	Error       lipgloss.Color
	Header      lipgloss.Color
	Border      lipgloss.Color

	// RowAlt stripes every other body row.
	RowAlt lipgloss.Color
	// SelectedBg marks rows in the selection.
	SelectedBg lipgloss.Color

	TextOnAccent    lipgloss.Color
	TextOnSelection lipgloss.Color
	TextOnSuccess   lipgloss.Color
	TextOnWarning   lipgloss.Color
	TextOnError     lipgloss.Color
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(Default)
	}

	isLight := isLightTheme(t.Bg)
	textOn := func(bg string) lipgloss.Color {
		return lipgloss.Color(chooseTextColor(bg, t.Bg, t.Fg))
	}

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Success:     lipgloss.Color(t.Success),
		Warning:     lipgloss.Color(t.Warning),
		Error:       lipgloss.Color(t.Error),
		Header:      lipgloss.Color(t.Header),
		Border:      lipgloss.Color(t.Border),

		RowAlt:     lipgloss.Color(alternateShade(t.Bg, isLight)),
		SelectedBg: lipgloss.Color(selectedBg(t.Success, t.Bg, isLight)),

		TextOnAccent:    textOn(t.Accent),
		TextOnSelection: lipgloss.Color(chooseTextColor(t.BgSelection, t.Fg, t.Bg)),
		TextOnSuccess:   textOn(t.Success),
		TextOnWarning:   textOn(t.Warning),
		TextOnError:     textOn(t.Error),
	}
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

// selectedBg tints the background toward the success color, stronger on dark
// themes where small shifts are hard to see.
func selectedBg(success, bg string, isLight bool) string {
	if isLight {
		return blendColors(success, bg, 0.85)
	}
	return blendColors(success, bg, 0.75)
}

// alternateShade nudges hex toward black on light themes and toward white on
// dark ones.
func alternateShade(hex string, isLight bool) string {
	if isLight {
		return blendColors(hex, "#000000", 0.04)
	}
	return blendColors(hex, "#ffffff", 0.05)
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

// contrastRatio is the WCAG contrast ratio between two colors.
func contrastRatio(a, b string) float64 {
	hi, lo := relativeLuminance(a), relativeLuminance(b)
	if hi < lo {
		hi, lo = lo, hi
	}
	return (hi + 0.05) / (lo + 0.05)
}

// relativeLuminance returns 0 for anything that is not a #rrggbb color.
func relativeLuminance(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// blendColors mixes ratio of b into a in RGB space. Invalid input returns a
// unchanged.
func blendColors(a, b string, ratio float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return ca.BlendRgb(cb, min(max(ratio, 0), 1)).Clamped().Hex()
}
