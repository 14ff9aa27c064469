// Package tui provides the terminal user interface for marquee.
package tui

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/javiermolinar/marquee/internal/config"
	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/event"
	"github.com/javiermolinar/marquee/internal/listing"
	"github.com/javiermolinar/marquee/internal/notify"
	"github.com/javiermolinar/marquee/internal/tui/commands"
	"github.com/javiermolinar/marquee/internal/tui/theme"
	"github.com/javiermolinar/marquee/internal/tui/view"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt
	ModePanel
)

// String returns the string representation of a Mode.
func (m Mode) String() string {
	switch m {
	case ModePrompt:
		return "prompt"
	case ModePanel:
		return "panel"
	default:
		return "normal"
	}
}

// PanelType identifies the panel drawn over the grid.
type PanelType int

const (
	PanelNone PanelType = iota
	PanelHelp
	PanelColumns
	PanelText // digest and other assistant output
)

// Toast display durations.
const (
	toastDuration      = 4 * time.Second
	errorToastDuration = 8 * time.Second
)

// Model is the main TUI model.
type Model struct {
	// Dependencies
	listing   *listing.Listing
	table     *datatable.Table[*event.Event]
	config    *config.Config
	toasts    *notify.Queue
	log       logrus.FieldLogger
	newClient commands.NewClient
	now       func() time.Time

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	// State
	mode        Mode
	panel       PanelType
	panelTitle  string
	panelText   string
	panelCursor int
	cursor      view.Cursor
	offset      int // first body row drawn
	busy        int // commands in flight
	spinning    bool

	// Components
	prompt  textinput.Model
	spinner spinner.Model

	// Toast line
	toast    *datatable.Toast
	toastSeq int

	// Terminal dimensions
	width  int
	height int
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithLogger sets the logger for key presses and command results.
func WithLogger(log logrus.FieldLogger) ModelOption {
	return func(m *Model) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock overrides the clock used for relative dates.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// WithClientFactory overrides how LLM clients are created.
func WithClientFactory(newClient commands.NewClient) ModelOption {
	return func(m *Model) {
		m.newClient = newClient
	}
}

// New creates a new TUI model. toasts must be the notifier the listing
// reports to.
func New(l *listing.Listing, cfg *config.Config, toasts *notify.Queue, opts ...ModelOption) Model {
	ti := textinput.New()
	ti.Placeholder = "/filter city = berlin"
	ti.Prompt = ""

	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load(theme.Default)
		toasts.Notify(datatable.Toast{Level: datatable.LevelWarning, Title: "Theme", Message: err.Error()})
	}
	styles := NewStyles(t)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	m := Model{
		listing:   l,
		table:     l.Table(),
		config:    cfg,
		toasts:    toasts,
		log:       discard,
		newClient: commands.DefaultClient,
		now:       time.Now,
		theme:     t,
		styles:    styles,
		mode:      ModeNormal,
		prompt:    ti,
		spinner:   sp,
		busy:      1, // initial load
		spinning:  true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(commands.Load(m.listing), m.spinner.Tick)
}

// Run starts the TUI.
func Run(l *listing.Listing, cfg *config.Config, toasts *notify.Queue, log logrus.FieldLogger) error {
	model := New(l, cfg, toasts, WithLogger(log))
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
