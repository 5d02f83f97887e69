// Package help renders the expanded keybinding reference.
package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/keys"
	"github.com/moldworks/moldtrack/internal/theme"
)

// Model is the help view component.
type Model struct {
	help   help.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new help view model.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	h.Width = width

	return Model{
		help:   h,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the full keybinding reference.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Keyboard Shortcuts") + "\n" +
		m.help.View(m.keys)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}
