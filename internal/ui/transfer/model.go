// Package transfer is the import/export view for the task collection.
// The view only collects intent; the parent performs the file I/O and
// the state mutation.
package transfer

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/theme"
)

// ExportRequestMsg asks the parent to export all tasks to the given
// path.
type ExportRequestMsg struct {
	Path          string
	IncludeTrials bool
}

// ImportRequestMsg asks the parent to import tasks from the given path.
type ImportRequestMsg struct {
	Path string
}

// action identifies one menu entry.
type action int

const (
	actionExport action = iota
	actionExportWithTrials
	actionImport
)

var actionLabels = []string{
	"Export tasks (CSV)",
	"Export tasks with trial history (CSV)",
	"Import tasks from CSV",
}

// Model is the import/export view component.
type Model struct {
	selected  action
	pathMode  bool
	pathInput textinput.Model
	lastNote  string
	width     int
	height    int
}

// New creates a new transfer view model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/file.csv"
	ti.Prompt = "> "
	ti.Width = width - 8

	return Model{
		pathInput: ti,
		width:     width,
		height:    height,
	}
}

// SetNote shows a one-line result note under the menu.
func (m *Model) SetNote(note string) {
	m.lastNote = note
}

// Capturing reports whether the path input is capturing keystrokes.
func (m Model) Capturing() bool {
	return m.pathMode
}

// Update handles messages for the transfer view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.pathMode {
			var cmd tea.Cmd
			m.pathInput, cmd = m.pathInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.pathMode {
		return m.handlePathKeys(key)
	}

	switch key.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if int(m.selected) < len(actionLabels)-1 {
			m.selected++
		}
	case "enter":
		m.pathMode = true
		m.pathInput.Reset()
		if m.selected == actionImport {
			m.pathInput.Placeholder = "path of the CSV to import"
		} else {
			m.pathInput.Placeholder = "destination path, e.g. tasks.csv"
		}
		focus := m.pathInput.Focus()
		return m, focus
	}

	return m, nil
}

// handlePathKeys processes key input while entering a file path.
func (m Model) handlePathKeys(key tea.KeyMsg) (Model, tea.Cmd) {
	switch key.String() {
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		m.pathMode = false
		if path == "" {
			return m, nil
		}
		selected := m.selected
		return m, func() tea.Msg {
			if selected == actionImport {
				return ImportRequestMsg{Path: path}
			}
			return ExportRequestMsg{
				Path:          path,
				IncludeTrials: selected == actionExportWithTrials,
			}
		}

	case "esc":
		m.pathMode = false
		return m, nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(key)
	return m, cmd
}

// View renders the transfer view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render("Import / Export")}

	for i, label := range actionLabels {
		if action(i) == m.selected {
			lines = append(lines, theme.SelectedItemStyle.Render(label))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(label))
		}
	}

	if m.pathMode {
		lines = append(lines, "", m.pathInput.View())
	}
	if m.lastNote != "" {
		lines = append(lines, "", theme.HelpStyle.Render(m.lastNote))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.pathInput.Width = width - 8
}
