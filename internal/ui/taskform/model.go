// Package taskform is the create/edit form for mold-development tasks.
package taskform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/state"
	"github.com/moldworks/moldtrack/internal/theme"
)

// SavedMsg is dispatched when the form is submitted. The parent applies
// the patch to the state container.
type SavedMsg struct {
	Patch state.TaskPatch
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	moldName    string
	title       string
	description string
	status      model.TaskStatus
	priority    model.Priority
	phase       model.Phase
	assignee    string
	startDate   string
	dueDate     string
	progress    string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	members  []model.Member
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetMembers sets the assignable members for the assignee selector.
func (m *Model) SetMembers(members []model.Member) {
	m.members = members
}

// StartCreate initializes the form for creating a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	*m.fb = formBindings{
		status:   model.StatusTodo,
		priority: model.PriorityMedium,
		phase:    model.PhaseDesign,
		progress: "0",
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing task's fields.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editMode = true
	m.editID = task.ID
	*m.fb = formBindings{
		moldName:    task.MoldName,
		title:       task.Title,
		description: task.Description,
		status:      task.Status,
		priority:    task.Priority,
		phase:       task.PrimaryPhase(),
		assignee:    task.Assignee,
		startDate:   task.StartDate,
		dueDate:     task.DueDate,
		progress:    strconv.Itoa(task.Progress),
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = fmt.Sprintf("Edit Task %s", m.editID)
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

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
	statusOpts := make([]huh.Option[model.TaskStatus], len(model.AllStatuses))
	for i, s := range model.AllStatuses {
		statusOpts[i] = huh.NewOption(model.TaskStatusLabels[s], s)
	}
	priorityOpts := make([]huh.Option[model.Priority], len(model.AllPriorities))
	for i, p := range model.AllPriorities {
		priorityOpts[i] = huh.NewOption(model.PriorityLabels[p], p)
	}
	phaseOpts := make([]huh.Option[model.Phase], len(model.AllPhases))
	for i, p := range model.AllPhases {
		phaseOpts[i] = huh.NewOption(model.PhaseLabels[p], p)
	}

	assigneeOpts := []huh.Option[string]{huh.NewOption("Unassigned", "")}
	for _, mem := range m.members {
		assigneeOpts = append(assigneeOpts, huh.NewOption(mem.Name, mem.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Mold").
				Placeholder("e.g. MOLD-A1").
				Value(&m.fb.moldName).
				Validate(validateRequired("Mold")),
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
			huh.NewSelect[model.TaskStatus]().
				Title("Status").
				Options(statusOpts...).
				Value(&m.fb.status),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(priorityOpts...).
				Value(&m.fb.priority),
			huh.NewSelect[model.Phase]().
				Title("Phase").
				Options(phaseOpts...).
				Value(&m.fb.phase),
			huh.NewSelect[string]().
				Title("Assignee").
				Options(assigneeOpts...).
				Value(&m.fb.assignee),
			huh.NewInput().
				Title("Start Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.startDate).
				Validate(validateOptionalDate),
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.dueDate).
				Validate(validateOptionalDate),
			huh.NewInput().
				Title("Progress %").
				Placeholder("0-100").
				Value(&m.fb.progress).
				Validate(validateProgress),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	progress := 0
	if p, err := strconv.Atoi(strings.TrimSpace(m.fb.progress)); err == nil {
		progress = p
	}

	patch := state.TaskPatch{
		ID:          m.editID,
		MoldName:    &m.fb.moldName,
		Title:       &m.fb.title,
		Description: &m.fb.description,
		Status:      &m.fb.status,
		Priority:    &m.fb.priority,
		Phase:       &m.fb.phase,
		Assignee:    &m.fb.assignee,
		StartDate:   &m.fb.startDate,
		DueDate:     &m.fb.dueDate,
		Progress:    &progress,
	}

	return func() tea.Msg { return SavedMsg{Patch: patch} }
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

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	_, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateProgress(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 0 || p > 100 {
		return fmt.Errorf("progress must be a number between 0 and 100")
	}
	return nil
}
