package view

import "github.com/charmbracelet/lipgloss"

// Screen is the whole terminal: the app content and an optional panel on top.
type Screen struct {
	Width   int
	Height  int
	Content string
	Panel   string
	PanelBg lipgloss.Color
}

// Render composes the final view output. Before the first resize there is no
// size to lay out against.
func Render(s Screen) string {
	if s.Width == 0 || s.Height == 0 {
		return "Loading..."
	}
	if s.Panel != "" {
		return Overlay(s.Content, s.Panel, s.Width, s.Height, s.PanelBg)
	}
	return s.Content
}
