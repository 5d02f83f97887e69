// Package board is the kanban view: one column per status, tasks as
// cards.
package board

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/theme"
)

// SelectedTaskMsg is sent when a user opens a card.
type SelectedTaskMsg struct {
	TaskID string
}

// Model is the kanban board view component.
type Model struct {
	columns map[model.TaskStatus][]model.Task
	col     int
	row     int
	width   int
	height  int
}

// New creates a new board model.
func New(width, height int) Model {
	return Model{
		columns: make(map[model.TaskStatus][]model.Task),
		width:   width,
		height:  height,
	}
}

// SetTasks regroups the visible tasks into status columns and clamps
// the cursor.
func (m *Model) SetTasks(tasks []model.Task) {
	columns := make(map[model.TaskStatus][]model.Task, len(model.AllStatuses))
	for _, t := range tasks {
		columns[t.Status] = append(columns[t.Status], t)
	}
	m.columns = columns
	m.clampCursor()
}

// SelectedTask returns the task under the cursor, or nil.
func (m Model) SelectedTask() *model.Task {
	col := m.columns[model.AllStatuses[m.col]]
	if m.row < 0 || m.row >= len(col) {
		return nil
	}
	t := col[m.row]
	return &t
}

// Update handles messages for the board view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "left", "h":
		if m.col > 0 {
			m.col--
			m.clampCursor()
		}
	case "right", "l":
		if m.col < len(model.AllStatuses)-1 {
			m.col++
			m.clampCursor()
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.columns[model.AllStatuses[m.col]])-1 {
			m.row++
		}
	case "enter":
		if t := m.SelectedTask(); t != nil {
			id := t.ID
			return m, func() tea.Msg {
				return SelectedTaskMsg{TaskID: id}
			}
		}
	}

	return m, nil
}

// View renders the board.
func (m Model) View() string {
	colWidth := m.width/len(model.AllStatuses) - 2
	if colWidth < 14 {
		colWidth = 14
	}

	rendered := make([]string, len(model.AllStatuses))
	for i, status := range model.AllStatuses {
		rendered[i] = m.renderColumn(i, status, colWidth)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderColumn draws one status column with its cards.
func (m Model) renderColumn(index int, status model.TaskStatus, width int) string {
	tasks := m.columns[status]

	header := theme.StatusStyle(status).Render(
		fmt.Sprintf("%s (%d)", model.TaskStatusLabels[status], len(tasks)),
	)

	parts := []string{header}
	for r, t := range tasks {
		parts = append(parts, m.renderCard(t, width, index == m.col && r == m.row))
	}
	if len(tasks) == 0 {
		parts = append(parts, theme.HelpStyle.Render("empty"))
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderCard draws a single task card.
func (m Model) renderCard(t model.Task, width int, selected bool) string {
	pri := theme.PriorityStyle(t.Priority).Render(model.PriorityLabels[t.Priority])

	body := fmt.Sprintf("%s %s\n%s\n%s · %d%%",
		t.ID, pri, t.Title, t.MoldName, t.Progress)

	style := theme.PanelStyle.Width(width - 2).Padding(0, 1)
	if selected {
		style = style.BorderForeground(theme.ColorBlue)
	}
	return style.Render(body)
}

// clampCursor keeps the row inside the current column.
func (m *Model) clampCursor() {
	col := m.columns[model.AllStatuses[m.col]]
	if m.row >= len(col) {
		m.row = len(col) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// SetSize updates the board dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
