// Package login is the sign-in gate shown whenever no session is
// active. It collects credentials and hands them to the parent; the
// parent performs the actual authentication against the member
// collection and calls Fail on a rejected attempt.
package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/theme"
)

// SubmitMsg carries the credentials the user entered.
type SubmitMsg struct {
	EmpID    string
	Password string
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	empID    string
	password string
}

// Model is the Bubble Tea model for the login form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	failMsg string
	width   int
	height  int
}

// New creates a new login model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start resets the fields and builds a fresh form.
func (m *Model) Start() tea.Cmd {
	m.fb.empID = ""
	m.fb.password = ""
	m.failMsg = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Fail records a rejected attempt and re-opens the form.
func (m *Model) Fail(reason string) tea.Cmd {
	m.failMsg = reason
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the login form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		empID := strings.TrimSpace(m.fb.empID)
		password := m.fb.password
		m.form = nil
		return m, func() tea.Msg {
			return SubmitMsg{EmpID: empID, Password: password}
		}
	}
	if m.form.State == huh.StateAborted {
		// There is nowhere to go back to before sign-in; reopen.
		restart := m.Start()
		return m, restart
	}

	return m, cmd
}

// View renders the login form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections := []string{titleStyle.Render("MoldTrack Sign In")}
	if m.failMsg != "" {
		sections = append(sections,
			lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.failMsg))
	}
	sections = append(sections, m.form.View())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(theme.PanelStyle.Render(content))
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
				Title("Employee ID").
				Placeholder("e.g. M001").
				Value(&m.fb.empID).
				Validate(validateRequired("Employee ID")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(formWidth(m.width))
}

func formWidth(w int) int {
	w -= 8
	if w < 40 {
		w = 40
	}
	if w > 60 {
		w = 60
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
