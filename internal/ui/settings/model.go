// Package settings is the administration view: member creation, the
// system sender address, password changes, the AI API key, and the
// delayed-task reminder action. The view collects input with forms;
// the parent applies the mutations.
package settings

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/theme"
)

// CreateMemberMsg asks the parent to add a member.
type CreateMemberMsg struct {
	Member model.Member
}

// SenderEmailMsg asks the parent to update the system sender address.
type SenderEmailMsg struct {
	Addr string
}

// ChangePasswordMsg asks the parent to change the session password.
type ChangePasswordMsg struct {
	Old     string
	New     string
	Confirm string
}

// APIKeyMsg asks the parent to store the AI API key in the keyring.
type APIKeyMsg struct {
	Key string
}

// RemindersRequestMsg asks the parent to send delayed-task reminders.
type RemindersRequestMsg struct{}

// action identifies one settings menu entry.
type action int

const (
	actionCreateMember action = iota
	actionSenderEmail
	actionChangePassword
	actionAPIKey
	actionReminders
)

type menuEntry struct {
	action      action
	label       string
	managerOnly bool
}

var menu = []menuEntry{
	{actionCreateMember, "Add team member", true},
	{actionSenderEmail, "Set system sender email", true},
	{actionChangePassword, "Change my password", false},
	{actionAPIKey, "Set AI API key", false},
	{actionReminders, "Send delayed-task reminders", true},
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	empID string
	name  string
	email string
	role  model.Role

	senderEmail string

	oldPass     string
	newPass     string
	confirmPass string

	apiKey string
}

// Model is the settings view component.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	active    action
	selected  int
	isManager bool
	width     int
	height    int
}

// New creates a new settings view model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetManager toggles the manager-only menu entries.
func (m *Model) SetManager(isManager bool) {
	m.isManager = isManager
	m.selected = 0
}

// SetSenderEmail seeds the sender-email form with the current value.
func (m *Model) SetSenderEmail(addr string) {
	m.fb.senderEmail = addr
}

// CloseForm abandons the open form, e.g. after the parent reported a
// validation error via toast.
func (m *Model) CloseForm() {
	m.form = nil
}

// HasForm reports whether a form is open and capturing input.
func (m Model) HasForm() bool {
	return m.form != nil
}

// visibleMenu filters the menu for the session role.
func (m Model) visibleMenu() []menuEntry {
	out := make([]menuEntry, 0, len(menu))
	for _, e := range menu {
		if e.managerOnly && !m.isManager {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	entries := m.visibleMenu()
	switch key.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(entries)-1 {
			m.selected++
		}
	case "enter":
		if m.selected >= len(entries) {
			return m, nil
		}
		entry := entries[m.selected]
		if entry.action == actionReminders {
			return m, func() tea.Msg { return RemindersRequestMsg{} }
		}
		m.active = entry.action
		m.form = m.buildForm(entry.action)
		return m, m.form.Init()
	}

	return m, nil
}

// updateForm drives the open form and emits the result message.
func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, nil
	}
	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.form = nil
	switch m.active {
	case actionCreateMember:
		member := model.Member{
			EmpID: strings.TrimSpace(m.fb.empID),
			Name:  strings.TrimSpace(m.fb.name),
			Email: strings.TrimSpace(m.fb.email),
			Role:  m.fb.role,
		}
		return m, func() tea.Msg { return CreateMemberMsg{Member: member} }

	case actionSenderEmail:
		addr := strings.TrimSpace(m.fb.senderEmail)
		return m, func() tea.Msg { return SenderEmailMsg{Addr: addr} }

	case actionChangePassword:
		msg := ChangePasswordMsg{
			Old:     m.fb.oldPass,
			New:     m.fb.newPass,
			Confirm: m.fb.confirmPass,
		}
		m.fb.oldPass = ""
		m.fb.newPass = ""
		m.fb.confirmPass = ""
		return m, func() tea.Msg { return msg }

	case actionAPIKey:
		key := strings.TrimSpace(m.fb.apiKey)
		m.fb.apiKey = ""
		return m, func() tea.Msg { return APIKeyMsg{Key: key} }
	}

	return m, nil
}

// View renders the settings view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	if m.form != nil {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(titleStyle.Render("Settings") + "\n" + m.form.View())
	}

	lines := []string{titleStyle.Render("Settings")}
	for i, entry := range m.visibleMenu() {
		if i == m.selected {
			lines = append(lines, theme.SelectedItemStyle.Render(entry.label))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(entry.label))
		}
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm(a action) *huh.Form {
	var group *huh.Group

	switch a {
	case actionCreateMember:
		m.fb.empID = ""
		m.fb.name = ""
		m.fb.email = ""
		m.fb.role = model.RoleEngineer
		group = huh.NewGroup(
			huh.NewInput().
				Title("Employee ID").
				Placeholder("e.g. E005").
				Value(&m.fb.empID).
				Validate(validateRequired("Employee ID")),
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(validateRequired("Email")),
			huh.NewSelect[model.Role]().
				Title("Role").
				Options(
					huh.NewOption("Engineer", model.RoleEngineer),
					huh.NewOption("Manager", model.RoleManager),
				).
				Value(&m.fb.role),
		)

	case actionSenderEmail:
		group = huh.NewGroup(
			huh.NewInput().
				Title("Sender Email").
				Placeholder("noreply@example.com").
				Value(&m.fb.senderEmail).
				Validate(validateRequired("Sender email")),
		)

	case actionChangePassword:
		m.fb.oldPass = ""
		m.fb.newPass = ""
		m.fb.confirmPass = ""
		group = huh.NewGroup(
			huh.NewInput().
				Title("Current Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.oldPass),
			huh.NewInput().
				Title("New Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.newPass),
			huh.NewInput().
				Title("Confirm New Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.confirmPass),
		)

	case actionAPIKey:
		m.fb.apiKey = ""
		group = huh.NewGroup(
			huh.NewInput().
				Title("AI API Key").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.apiKey).
				Validate(validateRequired("API key")),
		)
	}

	return huh.NewForm(group).WithWidth(m.formWidth())
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
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
