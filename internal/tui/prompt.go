package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/event"
	"github.com/javiermolinar/marquee/internal/tui/commands"
	"github.com/javiermolinar/marquee/internal/tui/input"
)

var promptCommands = []input.PromptCommand{
	{
		Name:        "/filter",
		Usage:       "<column> <operator> <value>",
		Description: "Filter a column (operators: contains, =, !=, >, <)",
	},
	{
		Name:        "/reset",
		Usage:       "[column]",
		Description: "Clear one filter, or every filter and the search",
	},
	{
		Name:        "/search",
		Usage:       "<term>",
		Description: "Search every filterable column",
	},
	{
		Name:        "/sort",
		Usage:       "<column> [asc|desc|none]",
		Description: "Sort by a column",
	},
	{
		Name:        "/pagesize",
		Usage:       "<rows>",
		Description: "Change the rows per page",
	},
	{
		Name:        "/export",
		Usage:       "[selected|full]",
		Description: "Write the rows to CSV",
	},
	{
		Name:        "/ask",
		Usage:       "<request>",
		Description: "Describe the events you want to see",
	},
	{
		Name:        "/digest",
		Description: "Summarize the events on screen",
	},
	{
		Name:        "/columns",
		Description: "Show or hide columns",
	},
	{
		Name:        "/help",
		Description: "Show available keys and commands",
	},
}

// handlePromptSubmit runs a prompt line. Text without a leading slash
// searches the table.
func (m Model) handlePromptSubmit(value string) (tea.Model, tea.Cmd) {
	name, args, err := input.Split(value)
	if err != nil {
		return m, m.promptError(err.Error())
	}
	m.log.WithField("command", name).Debug("prompt submitted")

	switch name {
	case "":
		if len(args) == 0 {
			return m, nil
		}
		return m, m.search(args[0])

	case "/filter":
		if len(args) < 3 {
			return m, m.promptError("usage: /filter <column> <operator> <value>")
		}
		key, ok := m.columnKey(args[0], func(c datatable.Column[*event.Event]) bool { return c.Filterable })
		if !ok {
			return m, m.promptError(fmt.Sprintf("cannot filter on %q", args[0]))
		}
		op, err := datatable.ParseOperator(args[1])
		if err != nil {
			return m, m.promptError(err.Error())
		}
		value := strings.Join(args[2:], " ")
		return m, m.dispatch(commands.Run("filter", func(ctx context.Context) error {
			return m.table.ApplyFilter(ctx, key, op, value)
		}))

	case "/reset":
		if len(args) == 0 {
			return m, m.dispatch(commands.Run("reset", m.resetAll))
		}
		keys := make([]string, 0, len(args))
		for _, a := range args {
			key, ok := m.columnKey(a, func(c datatable.Column[*event.Event]) bool { return c.Filterable })
			if !ok {
				return m, m.promptError(fmt.Sprintf("unknown column %q", a))
			}
			keys = append(keys, key)
		}
		return m, m.dispatch(commands.Run("reset filter", func(ctx context.Context) error {
			return m.table.ResetFilter(ctx, keys...)
		}))

	case "/search":
		return m, m.search(strings.Join(args, " "))

	case "/sort":
		if len(args) == 0 {
			return m, m.promptError("usage: /sort <column> [asc|desc|none]")
		}
		key, ok := m.columnKey(args[0], func(c datatable.Column[*event.Event]) bool { return c.Sortable })
		if !ok {
			return m, m.promptError(fmt.Sprintf("cannot sort by %q", args[0]))
		}
		want := datatable.SortAsc
		if len(args) > 1 {
			switch strings.ToLower(args[1]) {
			case "asc":
			case "desc":
				want = datatable.SortDesc
			case "none":
				want = datatable.SortNone
			default:
				return m, m.promptError(fmt.Sprintf("unknown direction %q", args[1]))
			}
		}
		return m, m.dispatch(commands.Run("sort", func(ctx context.Context) error {
			return m.table.SortBy(ctx, key, want)
		}))

	case "/pagesize":
		if len(args) != 1 {
			return m, m.promptError("usage: /pagesize <rows>")
		}
		size, err := strconv.Atoi(args[0])
		if err != nil || size <= 0 {
			return m, m.promptError(fmt.Sprintf("invalid page size %q", args[0]))
		}
		return m, m.dispatch(commands.Run("page size", func(ctx context.Context) error {
			return m.table.SetPageSize(ctx, size)
		}))

	case "/export":
		scope := datatable.ScopeFull
		if len(args) > 0 {
			scope = datatable.Scope(strings.ToLower(args[0]))
		}
		if scope != datatable.ScopeFull && scope != datatable.ScopeSelected {
			return m, m.promptError(fmt.Sprintf("unknown export scope %q", args[0]))
		}
		return m, m.dispatch(commands.Export(m.listing, scope))

	case "/ask":
		request := strings.Join(args, " ")
		if request == "" {
			return m, m.promptError("usage: /ask <request>")
		}
		return m, m.dispatch(commands.Ask(request, m.config.LLM, m.newClient, m.table, m.now()))

	case "/digest":
		return m, m.dispatch(commands.Digest(m.config.LLM, m.newClient, m.table.Rows(), m.now()))

	case "/columns":
		m.openPanel(PanelColumns, "Columns", "")
		return m, nil

	case "/help":
		m.openPanel(PanelHelp, "Keys", "")
		return m, nil
	}

	return m, m.promptError(fmt.Sprintf("unknown command %s", name))
}

func (m *Model) search(term string) tea.Cmd {
	return m.dispatch(commands.Run("search", func(ctx context.Context) error {
		return m.table.Search(ctx, term)
	}))
}

func (m *Model) promptError(message string) tea.Cmd {
	return m.showToast(datatable.Toast{Level: datatable.LevelWarning, Title: "Prompt", Message: message})
}

// columnKey resolves a column by key or label, case-insensitively, among the
// columns accepted by keep.
func (m Model) columnKey(name string, keep func(datatable.Column[*event.Event]) bool) (string, bool) {
	for _, c := range m.table.Columns() {
		if c.Kind != datatable.KindData || !keep(c) {
			continue
		}
		if strings.EqualFold(c.Key, name) || strings.EqualFold(c.Label, name) {
			return c.Key, true
		}
	}
	return "", false
}
