// Package team is the workload view: one row per member with active
// task count and a capacity bar.
package team

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/stats"
	"github.com/moldworks/moldtrack/internal/theme"
)

// SelectedTaskMsg is sent when a user opens one of the selected
// member's active tasks.
type SelectedTaskMsg struct {
	TaskID string
}

// barWidth is the rendered width of the capacity bar.
const barWidth = 20

// Model is the team workload view component.
type Model struct {
	members  []model.Member
	stats    stats.Stats
	selected int
	width    int
	height   int
}

// New creates a new team view model.
func New(width, height int) Model {
	return Model{
		width:  width,
		height: height,
	}
}

// SetData replaces the member roster and aggregates.
func (m *Model) SetData(members []model.Member, s stats.Stats) {
	m.members = members
	m.stats = s
	if m.selected >= len(members) {
		m.selected = len(members) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// Update handles messages for the team view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.members)-1 {
			m.selected++
		}
	case "enter":
		if m.selected < len(m.members) {
			ms := m.stats.Member(m.members[m.selected].Name)
			if len(ms.ActiveTasks) > 0 {
				id := ms.ActiveTasks[0].ID
				return m, func() tea.Msg {
					return SelectedTaskMsg{TaskID: id}
				}
			}
		}
	}

	return m, nil
}

// View renders the team view.
func (m Model) View() string {
	if len(m.members) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No members.")
	}

	rows := make([]string, 0, len(m.members)+1)
	for i, member := range m.members {
		rows = append(rows, m.renderRow(member, i == m.selected))
	}
	if m.selected < len(m.members) {
		rows = append(rows, "", m.renderActiveTasks(m.members[m.selected]))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderRow draws one member line with the workload bar.
func (m Model) renderRow(member model.Member, selected bool) string {
	ms := m.stats.Member(member.Name)
	ratio := ms.WorkloadRatio()

	filled := int(ratio * barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	barColor := theme.ColorGreen
	switch {
	case ratio >= 1.0:
		barColor = theme.ColorRed
	case ratio >= 0.6:
		barColor = theme.ColorYellow
	}

	role := string(member.Role)
	line := fmt.Sprintf("%-8s %-12s %-9s %s %d active / %d total",
		member.EmpID,
		member.Name,
		role,
		lipgloss.NewStyle().Foreground(barColor).Render(bar),
		len(ms.ActiveTasks),
		ms.Total,
	)

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// renderActiveTasks lists the selected member's active work.
func (m Model) renderActiveTasks(member model.Member) string {
	ms := m.stats.Member(member.Name)

	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render(fmt.Sprintf("Active tasks for %s", member.Name))

	if len(ms.ActiveTasks) == 0 {
		return header + "\n" + theme.HelpStyle.Render("  none")
	}

	lines := []string{header}
	for _, t := range ms.ActiveTasks {
		lines = append(lines, fmt.Sprintf("  %-6s %s %s (%d%%)",
			t.ID,
			theme.StatusStyle(t.Status).Render(model.TaskStatusLabels[t.Status]),
			t.Title,
			t.Progress,
		))
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
