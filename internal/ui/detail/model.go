// Package detail is the task detail view: full fields, the trial
// history, and per-trial AI advice.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/theme"
)

// BackMsg signals the parent to navigate back.
type BackMsg struct{}

// EditRequestMsg asks the parent to open the edit form for the task.
type EditRequestMsg struct {
	TaskID string
}

// DeleteRequestMsg asks the parent to delete the task. Sent only after
// the in-view confirmation.
type DeleteRequestMsg struct {
	TaskID string
}

// AddTrialRequestMsg asks the parent to open the trial form.
type AddTrialRequestMsg struct {
	TaskID string
}

// AdviceRequestMsg asks the parent to fetch AI advice for one trial.
type AdviceRequestMsg struct {
	TaskID  string
	TrialID string
}

// Model is the task detail view component.
type Model struct {
	task          *model.Task
	trialIndex    int
	confirmDelete bool
	pendingAdvice map[string]bool
	viewport      viewport.Model
	width         int
	height        int
}

// New creates a new detail view model.
func New(width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		pendingAdvice: make(map[string]bool),
		viewport:      vp,
		width:         width,
		height:        height,
	}
}

// SetTask replaces the displayed task. Passing the same id keeps the
// trial cursor; a different task resets it.
func (m *Model) SetTask(task *model.Task) {
	if task == nil || m.task == nil || m.task.ID != task.ID {
		m.trialIndex = 0
	}
	m.task = task
	m.confirmDelete = false
	if m.task != nil && m.trialIndex >= len(m.task.Trials) {
		m.trialIndex = len(m.task.Trials) - 1
	}
	if m.trialIndex < 0 {
		m.trialIndex = 0
	}
	m.refresh()
}

// SetAdvicePending marks one trial's advice request as in flight.
func (m *Model) SetAdvicePending(trialID string, pending bool) {
	if pending {
		m.pendingAdvice[trialID] = true
	} else {
		delete(m.pendingAdvice, trialID)
	}
	m.refresh()
}

// CurrentTaskID returns the displayed task's id, or "".
func (m Model) CurrentTaskID() string {
	if m.task == nil {
		return ""
	}
	return m.task.ID
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.confirmDelete {
		m.confirmDelete = false
		if key.String() == "y" && m.task != nil {
			id := m.task.ID
			return m, func() tea.Msg {
				return DeleteRequestMsg{TaskID: id}
			}
		}
		m.refresh()
		return m, nil
	}

	switch key.String() {
	case "esc":
		return m, func() tea.Msg { return BackMsg{} }

	case "e":
		if m.task != nil {
			id := m.task.ID
			return m, func() tea.Msg { return EditRequestMsg{TaskID: id} }
		}

	case "d":
		if m.task != nil {
			m.confirmDelete = true
			m.refresh()
		}
		return m, nil

	case "t":
		if m.task != nil {
			id := m.task.ID
			return m, func() tea.Msg { return AddTrialRequestMsg{TaskID: id} }
		}

	case "tab":
		if m.task != nil && len(m.task.Trials) > 0 {
			m.trialIndex = (m.trialIndex + 1) % len(m.task.Trials)
			m.refresh()
		}
		return m, nil

	case "i":
		if m.task == nil || m.trialIndex >= len(m.task.Trials) {
			return m, nil
		}
		trial := m.task.Trials[m.trialIndex]
		// One request per trial at a time; advice already attached
		// means there is nothing to fetch.
		if m.pendingAdvice[trial.ID] || trial.AIAdvice != "" {
			return m, nil
		}
		taskID := m.task.ID
		trialID := trial.ID
		return m, func() tea.Msg {
			return AdviceRequestMsg{TaskID: taskID, TrialID: trialID}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No task selected")
	}

	return m.viewport.View()
}

// refresh rebuilds the viewport content.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}
	t := m.task

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var sections []string

	sections = append(sections,
		titleStyle.Render(fmt.Sprintf("%s  %s", t.ID, t.Title)))

	meta := []string{
		labelStyle.Render("Mold: ") + t.MoldName,
		labelStyle.Render("Status: ") +
			theme.StatusStyle(t.Status).Render(model.TaskStatusLabels[t.Status]),
		labelStyle.Render("Priority: ") +
			theme.PriorityStyle(t.Priority).Render(model.PriorityLabels[t.Priority]),
		labelStyle.Render("Phase: ") +
			theme.PhaseStyle(t.PrimaryPhase()).Render(model.PhaseLabels[t.PrimaryPhase()]),
		labelStyle.Render("Assignee: ") + orNone(t.Assignee),
		labelStyle.Render("Schedule: ") +
			fmt.Sprintf("%s to %s", orNone(t.StartDate), orNone(t.DueDate)),
		labelStyle.Render("Progress: ") + fmt.Sprintf("%d%%", t.Progress),
	}
	sections = append(sections, strings.Join(meta, "\n"))

	if t.Description != "" {
		sections = append(sections,
			titleStyle.Render("Description")+"\n"+t.Description)
	}

	sections = append(sections, m.renderTrials())

	if m.confirmDelete {
		sections = append(sections, lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorRed).
			Render("Delete this task? This cannot be undone. (y/n)"))
	}

	return strings.Join(sections, "\n\n")
}

// renderTrials draws the trial history with the cursor and any advice.
func (m Model) renderTrials() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	if len(m.task.Trials) == 0 {
		return titleStyle.Render("Trial History") + "\n" +
			theme.HelpStyle.Render("No trials recorded. Press t to record one.")
	}

	lines := []string{titleStyle.Render("Trial History")}
	for i, tr := range m.task.Trials {
		cursor := "  "
		if i == m.trialIndex {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%s  %s  %s  %s",
			cursor, tr.Version, tr.Date, trialResultBadge(tr.Result), tr.Condition)
		lines = append(lines, line)

		switch {
		case tr.AIAdvice != "":
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.ColorMagenta).
				PaddingLeft(4).
				Width(m.width-8).
				Render("AI: "+tr.AIAdvice))
		case m.pendingAdvice[tr.ID]:
			lines = append(lines, theme.HelpStyle.
				PaddingLeft(4).
				Render("fetching advice..."))
		}
	}

	lines = append(lines, "",
		theme.HelpStyle.Render("tab select trial | i request advice"))
	return strings.Join(lines, "\n")
}

// trialResultBadge color-codes a trial outcome.
func trialResultBadge(r model.TrialResult) string {
	style := lipgloss.NewStyle().Bold(true)
	switch r {
	case model.TrialPass:
		style = style.Foreground(theme.ColorGreen)
	case model.TrialFail:
		style = style.Foreground(theme.ColorRed)
	case model.TrialAdjust:
		style = style.Foreground(theme.ColorYellow)
	default:
		style = style.Foreground(theme.ColorGray)
	}
	return style.Render(string(r))
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.refresh()
}
