package timeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	t := ti.Task

	statusBadge := theme.StatusStyle(t.Status).Render(model.TaskStatusLabels[t.Status])
	priBadge := theme.PriorityStyle(t.Priority).Render(model.PriorityLabels[t.Priority])
	phaseBadge := theme.PhaseStyle(t.PrimaryPhase()).Render(model.PhaseLabels[t.PrimaryPhase()])

	dates := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(fmt.Sprintf("%s → %s", orDash(t.StartDate), orDash(t.DueDate)))

	assignee := t.Assignee
	if assignee == "" {
		assignee = "unassigned"
	}

	line := fmt.Sprintf("%-6s %s %s %s %s  %s · %s · %d%%",
		t.ID, statusBadge, priBadge, phaseBadge, t.Title, assignee, dates, t.Progress)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

func orDash(date string) string {
	if date == "" {
		return "—"
	}
	return date
}
