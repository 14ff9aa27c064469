// Package theme provides color themes for the TUI.
package theme

import (
	"cmp"
	"embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`           // Base background
	BgHighlight string `toml:"bg_highlight"` // Striped rows, toolbar
	BgSelection string `toml:"bg_selection"` // Cursor row
	Fg          string `toml:"fg"`           // Primary foreground
	FgMuted     string `toml:"fg_muted"`     // Placeholders, N/A, help
	Accent      string `toml:"accent"`       // Title, borders, focused column
	Success     string `toml:"success"`      // Success toasts, selected rows
	Warning     string `toml:"warning"`      // Warning toasts, active filters
	Error       string `toml:"error"`        // Error toasts

	// Optional overrides
	Header string `toml:"header"`
	Border string `toml:"border"`
}

// Default is used when no theme is configured.
const Default = "mocha"

// ErrUnknownTheme is returned by Load for names with no embedded theme.
var ErrUnknownTheme = errors.New("unknown theme")

// Load reads the named theme from the embedded set. Names are case
// insensitive and an empty name loads Default.
func Load(name string) (*Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Default
	}
	if !IsAvailable(name) {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownTheme, name, strings.Join(Available(), ", "))
	}

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}
	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()
	return &t, nil
}

func (t *Theme) applyDefaults() {
	if t.Header == "" {
		t.Header = t.Accent
	}
	if t.Border == "" {
		t.Border = cmp.Or(t.BgSelection, t.FgMuted)
	}
	if t.Success == "" {
		t.Success = t.Accent
	}
	if t.Error == "" {
		t.Error = t.Warning
	}
}

// Available lists the embedded themes, dark ones first.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte", "light"}
}

// IsAvailable reports whether name is an embedded theme.
func IsAvailable(name string) bool {
	return slices.Contains(Available(), strings.ToLower(name))
}
