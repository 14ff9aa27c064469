package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// logKeyPress logs a key press with the mode it arrived in.
func (m Model) logKeyPress(msg tea.KeyMsg) {
	m.log.WithFields(logrus.Fields{
		"key":  msg.String(),
		"mode": m.mode.String(),
	}).Debug("key press")
}

// logModeChange logs a mode change.
func (m Model) logModeChange(from, to Mode, reason string) {
	if from == to {
		return
	}
	m.log.WithFields(logrus.Fields{
		"from":   from.String(),
		"to":     to.String(),
		"reason": reason,
	}).Debug("mode change")
}

// logFrame logs the table state after an operation completes.
func (m Model) logFrame(op string) {
	page := m.table.Page()
	m.log.WithFields(logrus.Fields{
		"op":        op,
		"rows":      len(m.table.Rows()),
		"total":     m.table.TotalRows(),
		"page":      page.PageIndex,
		"page_size": page.PageSize,
		"selected":  len(m.table.Selected()),
		"search":    m.table.SearchTerm(),
		"filters":   len(m.table.Filters()),
	}).Debug("table updated")
}

func (m Model) logError(op string, err error) {
	m.log.WithError(err).WithField("op", op).Error("operation failed")
}
