// Package trialform is the form for recording an injection-molding
// trial on a task.
package trialform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/theme"
)

// SavedMsg carries the recorded trial. The parent appends it to the
// task's history.
type SavedMsg struct {
	TaskID string
	Trial  model.MoldTrial
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	version   string
	date      string
	condition string
	result    model.TrialResult
}

// Model is the Bubble Tea model for the trial form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	taskID string
	width  int
	height int
}

// New creates a new trial form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form for recording a trial on the given task.
// The version defaults to the next T-number after the existing history.
func (m *Model) Start(task model.Task) tea.Cmd {
	m.taskID = task.ID
	*m.fb = formBindings{
		version: fmt.Sprintf("T%d", len(task.Trials)+1),
		date:    time.Now().Format("2006-01-02"),
		result:  model.TrialPending,
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the trial form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		taskID := m.taskID
		trial := model.MoldTrial{
			Version:   strings.TrimSpace(m.fb.version),
			Date:      strings.TrimSpace(m.fb.date),
			Condition: strings.TrimSpace(m.fb.condition),
			Result:    m.fb.result,
		}
		m.form = nil
		return m, func() tea.Msg {
			return SavedMsg{TaskID: taskID, Trial: trial}
		}
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the trial form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(fmt.Sprintf("Record Trial for %s", m.taskID)) +
		"\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Version").
				Placeholder("e.g. T1").
				Value(&m.fb.version),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.date).
				Validate(validateOptionalDate),
			huh.NewText().
				Title("Observed Condition").
				Placeholder("e.g. flash at the gate, sink marks on boss...").
				Value(&m.fb.condition).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("condition description is required")
					}
					return nil
				}),
			huh.NewSelect[model.TrialResult]().
				Title("Result").
				Options(
					huh.NewOption("Pending", model.TrialPending),
					huh.NewOption("Pass", model.TrialPass),
					huh.NewOption("Adjust", model.TrialAdjust),
					huh.NewOption("Fail", model.TrialFail),
				).
				Value(&m.fb.result),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
