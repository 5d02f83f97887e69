package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	aiservice "github.com/moldworks/moldtrack/internal/ai"
	"github.com/moldworks/moldtrack/internal/filter"
	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/reminder"
	"github.com/moldworks/moldtrack/internal/state"
	"github.com/moldworks/moldtrack/internal/stats"
	appsync "github.com/moldworks/moldtrack/internal/sync"
	"github.com/moldworks/moldtrack/internal/ui"
	"github.com/moldworks/moldtrack/internal/ui/board"
	"github.com/moldworks/moldtrack/internal/ui/command"
	"github.com/moldworks/moldtrack/internal/ui/dashboard"
	"github.com/moldworks/moldtrack/internal/ui/detail"
	helpview "github.com/moldworks/moldtrack/internal/ui/help"
	"github.com/moldworks/moldtrack/internal/ui/login"
	"github.com/moldworks/moldtrack/internal/ui/settings"
	"github.com/moldworks/moldtrack/internal/ui/taskform"
	"github.com/moldworks/moldtrack/internal/ui/team"
	"github.com/moldworks/moldtrack/internal/ui/timeline"
	"github.com/moldworks/moldtrack/internal/ui/toast"
	"github.com/moldworks/moldtrack/internal/ui/transfer"
	"github.com/moldworks/moldtrack/internal/ui/trialform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewTeam
	ViewBoard
	ViewTimeline
	ViewTransfer
	ViewSettings
	ViewDetail
	ViewTaskForm
	ViewTrialForm
	ViewHelp
	ViewCommand
)

// syncTickMsg re-renders the header while the syncing indicator decays.
type syncTickMsg struct{}

// Model is the root Bubble Tea model that manages view routing, layout,
// and access to the state container.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	st           *state.State
	syn          *appsync.Synchronizer
	cfg          *model.AppConfig
	gateway      *aiservice.Gateway
	composer     *reminder.Composer
	keys         *KeyMap

	selection     filter.Selection
	searchMode    bool
	searchInput   textinput.Model
	analyzing     bool
	pendingAdvice map[string]bool

	loginView     login.Model
	dashboardView dashboard.Model
	teamView      team.Model
	boardView     board.Model
	timelineView  timeline.Model
	transferView  transfer.Model
	settingsView  settings.Model
	detailView    detail.Model
	taskFormView  taskform.Model
	trialFormView trialform.Model
	helpView      helpview.Model
	commandView   command.Model
	toasts        toast.Model

	ready bool
}

// New creates the root application model. The AI gateway is built from
// the config plus the key in the environment or keyring; it stays nil
// until a key is available.
func New(st *state.State, syn *appsync.Synchronizer, cfg *model.AppConfig, composer *reminder.Composer) Model {
	keys := DefaultKeyMap()
	gateway := loadGateway(cfg)

	si := textinput.New()
	si.Placeholder = "search title, mold, or assignee..."
	si.Prompt = "/ "

	m := Model{
		currentView:   ViewDashboard,
		st:            st,
		syn:           syn,
		cfg:           cfg,
		gateway:       gateway,
		composer:      composer,
		keys:          keys,
		searchInput:   si,
		pendingAdvice: make(map[string]bool),
		loginView:     login.New(80, 24),
		dashboardView: dashboard.New(80, 24),
		teamView:      team.New(80, 24),
		boardView:     board.New(80, 24),
		timelineView:  timeline.New(80, 24),
		transferView:  transfer.New(80, 24),
		settingsView:  settings.New(80, 24),
		detailView:    detail.New(80, 24),
		taskFormView:  taskform.New(80, 24),
		trialFormView: trialform.New(80, 24),
		helpView:      helpview.New(keys, 80, 24),
		commandView:   command.New(80, 24),
		toasts:        toast.New(),
	}

	if st.Session() == nil {
		m.currentView = ViewLogin
	}
	m.refresh()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewLogin {
		return m.loginView.Start()
	}
	return nil
}

// refresh pushes the current state into every derived view. Called
// after each mutation and filter change.
func (m *Model) refresh() {
	tasks := m.st.Tasks()
	agg := stats.Compute(tasks)

	m.dashboardView.SetStats(agg)
	m.teamView.SetData(m.st.Members(), agg)

	boardSel := m.selection
	boardSel.View = filter.ViewBoard
	m.boardView.SetTasks(filter.Apply(tasks, boardSel, time.Now()))

	timelineSel := m.selection
	timelineSel.View = filter.ViewTimeline
	m.timelineView.SetTasks(filter.Apply(tasks, timelineSel, time.Now()))

	m.taskFormView.SetMembers(m.st.Members())
	if sess := m.st.Session(); sess != nil {
		m.settingsView.SetManager(sess.IsManager())
	}
	m.settingsView.SetSenderEmail(m.st.SenderEmail())

	if id := m.detailView.CurrentTaskID(); id != "" {
		m.detailView.SetTask(m.st.TaskByID(id))
	}
}

// afterMutation refreshes derived views and keeps the header's syncing
// indicator ticking until it decays.
func (m *Model) afterMutation() tea.Cmd {
	m.refresh()
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return syncTickMsg{}
	})
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.dashboardView.SetSize(w, h)
		m.teamView.SetSize(w, h)
		m.boardView.SetSize(w, h)
		m.timelineView.SetSize(w, h)
		m.transferView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.detailView.SetSize(w, h)
		m.taskFormView.SetSize(w, h)
		m.trialFormView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.searchInput.Width = w - 4
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case syncTickMsg:
		if m.syn.Syncing() {
			return m, tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
				return syncTickMsg{}
			})
		}
		return m, nil

	case toast.ExpireMsg:
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Update(msg)
		return m, cmd

	case login.SubmitMsg:
		return m.handleLogin(msg)

	case dashboard.DrillThroughMsg:
		m.selection.BoardColumn = msg.Status
		m.currentView = ViewBoard
		m.refresh()
		return m, nil

	case board.SelectedTaskMsg:
		return m.openDetail(msg.TaskID)

	case timeline.SelectedTaskMsg:
		return m.openDetail(msg.TaskID)

	case team.SelectedTaskMsg:
		return m.openDetail(msg.TaskID)

	case timeline.FilterChangedMsg:
		m.selection.Status = msg.Status
		m.selection.Phase = msg.Phase
		m.selection.DateRange = msg.DateRange
		m.refresh()
		return m, nil

	case taskform.SavedMsg:
		return m.handleSaveTask(msg)

	case taskform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case trialform.SavedMsg:
		return m.handleAddTrial(msg)

	case trialform.CancelMsg:
		m.currentView = ViewDetail
		return m, nil

	case detail.BackMsg:
		m.currentView = m.previousView
		if m.currentView == ViewDetail || m.currentView == ViewTaskForm || m.currentView == ViewTrialForm {
			m.currentView = ViewDashboard
		}
		return m, nil

	case detail.EditRequestMsg:
		return m.openTaskForm(msg.TaskID)

	case detail.DeleteRequestMsg:
		return m.handleDeleteTask(msg.TaskID)

	case detail.AddTrialRequestMsg:
		task := m.st.TaskByID(msg.TaskID)
		if task == nil {
			return m, nil
		}
		m.currentView = ViewTrialForm
		cmd := m.trialFormView.Start(*task)
		return m, cmd

	case detail.AdviceRequestMsg:
		return m.handleAdviceRequest(msg)

	case adviceMsg:
		return m.handleAdviceResult(msg)

	case insightMsg:
		return m.handleInsightResult(msg)

	case transfer.ExportRequestMsg:
		return m.handleExport(msg)

	case transfer.ImportRequestMsg:
		return m.handleImport(msg)

	case settings.CreateMemberMsg:
		return m.handleCreateMember(msg)

	case settings.SenderEmailMsg:
		return m.handleSenderEmail(msg)

	case settings.ChangePasswordMsg:
		return m.handleChangePassword(msg)

	case settings.APIKeyMsg:
		return m.handleAPIKey(msg)

	case settings.RemindersRequestMsg:
		return m.handleReminders()

	case remindersMsg:
		return m.handleRemindersResult(msg)

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work regardless of the active
// view. Returns handled=false to fall through to the active view.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return true, m, tea.Quit
	}

	// Forms, login, search, and the command palette own the keyboard.
	if m.currentView == ViewLogin || m.currentView == ViewTaskForm ||
		m.currentView == ViewTrialForm || m.currentView == ViewCommand {
		if msg.String() == "esc" && m.currentView == ViewCommand {
			m.currentView = m.previousView
			return true, m, nil
		}
		return false, m, nil
	}
	if m.searchMode {
		mdl, cmd := m.handleSearchKeys(msg)
		return true, mdl, cmd
	}
	if m.inputHasFocus() {
		return false, m, nil
	}

	switch msg.String() {
	case "q":
		if m.isTabView() {
			return true, m, tea.Quit
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case ":":
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return true, m, cmd

	case "/":
		if m.isTabView() {
			m.searchMode = true
			m.searchInput.SetValue(m.selection.Query)
			cmd := m.searchInput.Focus()
			return true, m, cmd
		}

	case "1":
		return true, m.switchTab(ViewDashboard), nil
	case "2":
		return true, m.switchTab(ViewTeam), nil
	case "3":
		return true, m.switchTab(ViewBoard), nil
	case "4":
		return true, m.switchTab(ViewTimeline), nil
	case "5":
		return true, m.switchTab(ViewTransfer), nil
	case "6":
		return true, m.switchTab(ViewSettings), nil

	case "n":
		if m.isTabView() {
			mdl, cmd := m.openTaskForm("")
			return true, mdl, cmd
		}

	case "a":
		if m.isTabView() || m.currentView == ViewDetail {
			mdl, cmd := m.startAnalysis()
			return true, mdl, cmd
		}

	case "L":
		if m.isTabView() {
			m.st.Logout()
			m.currentView = ViewLogin
			cmd := tea.Batch(m.afterMutation(), m.loginView.Start())
			return true, m, cmd
		}

	case "esc":
		if m.currentView == ViewBoard && m.selection.BoardColumn != "" {
			m.selection.BoardColumn = ""
			m.refresh()
			return true, m, nil
		}
	}

	return false, m, nil
}

// inputHasFocus reports whether the active view is capturing text
// input, so global letter keys must not be intercepted.
func (m Model) inputHasFocus() bool {
	switch m.currentView {
	case ViewSettings:
		return m.settingsView.HasForm()
	case ViewTransfer:
		return m.transferView.Capturing()
	}
	return false
}

// isTabView reports whether the current view is one of the six
// top-level tabs.
func (m Model) isTabView() bool {
	switch m.currentView {
	case ViewDashboard, ViewTeam, ViewBoard, ViewTimeline, ViewTransfer, ViewSettings:
		return true
	}
	return false
}

// switchTab activates a top-level tab.
func (m Model) switchTab(v ViewState) Model {
	m.previousView = m.currentView
	m.currentView = v
	m.refresh()
	return m
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.selection.Query = m.searchInput.Value()
		m.refresh()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.selection.Query = ""
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// openDetail navigates to the detail view for a task.
func (m Model) openDetail(taskID string) (tea.Model, tea.Cmd) {
	task := m.st.TaskByID(taskID)
	if task == nil {
		return m, nil
	}
	m.previousView = m.currentView
	m.currentView = ViewDetail
	m.detailView.SetTask(task)
	return m, nil
}

// openTaskForm opens the create form (empty id) or edit form. Manager
// only; engineers get a toast instead.
func (m Model) openTaskForm(taskID string) (tea.Model, tea.Cmd) {
	sess := m.st.Session()
	if sess == nil || !sess.IsManager() {
		cmd := m.toasts.Push(toast.LevelError, "Only managers can modify tasks.")
		return m, cmd
	}

	m.previousView = m.currentView
	m.currentView = ViewTaskForm
	if taskID == "" {
		cmd := m.taskFormView.StartCreate()
		return m, cmd
	}
	task := m.st.TaskByID(taskID)
	if task == nil {
		m.currentView = m.previousView
		return m, nil
	}
	cmd := m.taskFormView.StartEdit(*task)
	return m, cmd
}

// handleLogin authenticates the submitted credentials.
func (m Model) handleLogin(msg login.SubmitMsg) (tea.Model, tea.Cmd) {
	sess, err := m.st.Authenticate(msg.EmpID, msg.Password)
	if err != nil {
		cmd := m.loginView.Fail("Invalid employee ID or password.")
		return m, cmd
	}

	m.currentView = ViewDashboard
	m.refresh()
	cmd := tea.Batch(
		m.afterMutation(),
		m.toasts.Push(toast.LevelSuccess, fmt.Sprintf("Welcome back, %s.", sess.Name)),
	)
	return m, cmd
}

// handleSaveTask applies a create/update patch from the task form.
func (m Model) handleSaveTask(msg taskform.SavedMsg) (tea.Model, tea.Cmd) {
	task, err := m.st.SaveTask(msg.Patch)
	if err != nil {
		m.currentView = m.previousView
		cmd := m.toastError(err)
		return m, cmd
	}

	m.currentView = m.previousView
	verb := "updated"
	if msg.Patch.ID == "" {
		verb = "created"
	}
	cmd := tea.Batch(
		m.afterMutation(),
		m.toasts.Push(toast.LevelSuccess, fmt.Sprintf("Task %s %s.", task.ID, verb)),
	)
	return m, cmd
}

// handleDeleteTask removes a task after the detail view confirmed.
func (m Model) handleDeleteTask(taskID string) (tea.Model, tea.Cmd) {
	if err := m.st.DeleteTask(taskID); err != nil {
		cmd := m.toastError(err)
		return m, cmd
	}

	m.currentView = m.previousView
	if m.currentView == ViewDetail {
		m.currentView = ViewDashboard
	}
	m.detailView.SetTask(nil)
	cmd := tea.Batch(
		m.afterMutation(),
		m.toasts.Push(toast.LevelSuccess, fmt.Sprintf("Task %s deleted.", taskID)),
	)
	return m, cmd
}

// handleAddTrial appends a recorded trial from the trial form.
func (m Model) handleAddTrial(msg trialform.SavedMsg) (tea.Model, tea.Cmd) {
	trial, err := m.st.AddTrial(msg.TaskID, msg.Trial)
	if err != nil {
		m.currentView = ViewDetail
		cmd := m.toastError(err)
		return m, cmd
	}

	m.currentView = ViewDetail
	cmd := tea.Batch(
		m.afterMutation(),
		m.toasts.Push(toast.LevelSuccess, fmt.Sprintf("Trial %s recorded.", trial.Version)),
	)
	return m, cmd
}

// handleCreateMember adds a team member from the settings form.
func (m Model) handleCreateMember(msg settings.CreateMemberMsg) (tea.Model, tea.Cmd) {
	if err := m.st.CreateMember(msg.Member); err != nil {
		cmd := m.toastError(err)
		return m, cmd
	}
	cmd := tea.Batch(
		m.afterMutation(),
		m.toasts.Push(toast.LevelSuccess,
			fmt.Sprintf("Member %s added with the default password.", msg.Member.EmpID)),
	)
	return m, cmd
}

// handleSenderEmail updates the system sender address.
func (m Model) handleSenderEmail(msg settings.SenderEmailMsg) (tea.Model, tea.Cmd) {
	if err := m.st.SetSenderEmail(msg.Addr); err != nil {
		cmd := m.toastError(err)
		return m, cmd
	}
	cmd := tea.Batch(
		m.afterMutation(),
		m.toasts.Push(toast.LevelSuccess, "Sender email updated."),
	)
	return m, cmd
}

// handleChangePassword changes the session member's password.
func (m Model) handleChangePassword(msg settings.ChangePasswordMsg) (tea.Model, tea.Cmd) {
	if err := m.st.ChangePassword(msg.Old, msg.New, msg.Confirm); err != nil {
		cmd := m.toastError(err)
		return m, cmd
	}
	cmd := tea.Batch(
		m.afterMutation(),
		m.toasts.Push(toast.LevelSuccess, "Password changed."),
	)
	return m, cmd
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewDashboard:
		m.dashboardView, cmd = m.dashboardView.Update(msg)
	case ViewTeam:
		m.teamView, cmd = m.teamView.Update(msg)
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewTimeline:
		m.timelineView, cmd = m.timelineView.Update(msg)
	case ViewTransfer:
		m.transferView, cmd = m.transferView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewTaskForm:
		m.taskFormView, cmd = m.taskFormView.Update(msg)
	case ViewTrialForm:
		m.trialFormView, cmd = m.trialFormView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewLogin {
		return m.loginView.View()
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.syncStatus())
	content := m.renderContent()
	if m.searchMode {
		content = m.searchInput.View() + "\n" + content
	}
	if toasts := m.toasts.View(); toasts != "" {
		content += "\n" + toasts
	}
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// headerTitle names the app, the active tab, and the session.
func (m Model) headerTitle() string {
	title := "MoldTrack"
	if name := m.tabName(); name != "" {
		title += " · " + name
	}
	if sess := m.st.Session(); sess != nil {
		role := "Engineer"
		if sess.IsManager() {
			role = "Manager"
		}
		title += fmt.Sprintf(" · %s (%s)", sess.Name, role)
	}
	return title
}

func (m Model) tabName() string {
	switch m.currentView {
	case ViewDashboard:
		return "Dashboard"
	case ViewTeam:
		return "Team"
	case ViewBoard:
		return "Board"
	case ViewTimeline:
		return "Timeline"
	case ViewTransfer:
		return "Import/Export"
	case ViewSettings:
		return "Settings"
	case ViewDetail:
		return "Task Detail"
	}
	return ""
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewTeam:
		return m.teamView.View()
	case ViewBoard:
		return m.boardView.View()
	case ViewTimeline:
		return m.timelineView.View()
	case ViewTransfer:
		return m.transferView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewTaskForm:
		return m.taskFormView.View()
	case ViewTrialForm:
		return m.trialFormView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the persistence state.
func (m Model) syncStatus() string {
	if err := m.syn.LastError(); err != nil {
		return "⚠ save failed"
	}
	if m.syn.Syncing() {
		return "syncing..."
	}
	if m.analyzing {
		return "analyzing..."
	}
	return "saved"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close command | enter execute | esc back"
	case ViewDetail:
		return "esc back | e edit | d delete | t trial | tab/i advice | j/k scroll"
	case ViewTaskForm, ViewTrialForm:
		return "enter submit | esc cancel"
	case ViewTimeline:
		if summary := m.timelineView.FilterSummary(); summary != "" {
			return summary
		}
		return "enter open | s status | p phase | w date range | / search"
	case ViewBoard:
		if m.selection.BoardColumn != "" {
			return "column: " + model.TaskStatusLabels[m.selection.BoardColumn] + " | esc clear"
		}
		return "h/l column | j/k card | enter open | / search"
	case ViewTeam:
		return "j/k member | enter open first active task"
	case ViewTransfer:
		return "j/k choose | enter confirm | esc cancel"
	case ViewSettings:
		return "j/k choose | enter open | esc cancel"
	default:
		return "q quit | ? help | 1-6 views | n new | a analyze | / search | L logout"
	}
}

// toastError shows an error toast, wording validation errors as-is.
func (m *Model) toastError(err error) tea.Cmd {
	switch {
	case state.IsValidation(err):
		return m.toasts.Push(toast.LevelError, err.Error())
	case errors.Is(err, state.ErrNotPermitted):
		return m.toasts.Push(toast.LevelError, "Only managers can do that.")
	case errors.Is(err, state.ErrNoSession):
		return m.toasts.Push(toast.LevelError, "Please sign in first.")
	default:
		return m.toasts.Push(toast.LevelError, err.Error())
	}
}
