// Package timeline is the schedule view: a flat task list with status,
// phase, and due-date window filters.
package timeline

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/filter"
	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/theme"
)

// SelectedTaskMsg is sent when a user opens a task row.
type SelectedTaskMsg struct {
	TaskID string
}

// FilterChangedMsg tells the parent the timeline filters changed; the
// parent recomputes the visible subset and calls SetTasks.
type FilterChangedMsg struct {
	Status    model.TaskStatus
	Phase     model.Phase
	DateRange filter.DateRange
}

// Model is the timeline view component.
type Model struct {
	list        list.Model
	statusIndex int
	phaseIndex  int
	rangeIndex  int
	width       int
	height      int
}

// New creates a new timeline model.
func New(width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Timeline"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		width:  width,
		height: height,
	}
}

// SetTasks replaces the visible rows.
func (m *Model) SetTasks(tasks []model.Task) tea.Cmd {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = TaskItem{Task: t}
	}
	return m.list.SetItems(items)
}

// SelectedTask returns the task under the cursor, or nil.
func (m Model) SelectedTask() *model.Task {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return nil
	}
	t := item.Task
	return &t
}

// Update handles messages for the timeline view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if t := m.SelectedTask(); t != nil {
				id := t.ID
				return m, func() tea.Msg {
					return SelectedTaskMsg{TaskID: id}
				}
			}
			return m, nil

		case "s":
			m.statusIndex = (m.statusIndex + 1) % (len(model.AllStatuses) + 1)
			return m, m.filterChanged()

		case "p":
			m.phaseIndex = (m.phaseIndex + 1) % (len(model.AllPhases) + 1)
			return m, m.filterChanged()

		case "w":
			m.rangeIndex = (m.rangeIndex + 1) % len(filter.AllDateRanges)
			return m, m.filterChanged()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// filterChanged emits the current filter triple. Index 0 means "all"
// for status and phase.
func (m Model) filterChanged() tea.Cmd {
	var status model.TaskStatus
	if m.statusIndex > 0 {
		status = model.AllStatuses[m.statusIndex-1]
	}
	var phase model.Phase
	if m.phaseIndex > 0 {
		phase = model.AllPhases[m.phaseIndex-1]
	}
	dateRange := filter.AllDateRanges[m.rangeIndex]

	return func() tea.Msg {
		return FilterChangedMsg{Status: status, Phase: phase, DateRange: dateRange}
	}
}

// FilterSummary describes the active filters for the status bar, or "".
func (m Model) FilterSummary() string {
	var parts []string
	if m.statusIndex > 0 {
		parts = append(parts, "status: "+model.TaskStatusLabels[model.AllStatuses[m.statusIndex-1]])
	}
	if m.phaseIndex > 0 {
		parts = append(parts, "phase: "+model.PhaseLabels[model.AllPhases[m.phaseIndex-1]])
	}
	if r := filter.AllDateRanges[m.rangeIndex]; r != filter.RangeAll {
		parts = append(parts, "due: "+filter.DateRangeLabels[r])
	}
	return strings.Join(parts, " | ")
}

// View renders the timeline view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No matching tasks.\nTry adjusting the filters (s/p/w).")
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
