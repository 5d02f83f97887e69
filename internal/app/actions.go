package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	aiservice "github.com/moldworks/moldtrack/internal/ai"
	"github.com/moldworks/moldtrack/internal/credential"
	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/report"
	"github.com/moldworks/moldtrack/internal/ui/detail"
	"github.com/moldworks/moldtrack/internal/ui/settings"
	"github.com/moldworks/moldtrack/internal/ui/toast"
	"github.com/moldworks/moldtrack/internal/ui/transfer"
)

// apiKeyName is the keyring entry holding the AI API key.
const apiKeyName = "gemini-api-key"

// requestTimeout bounds one AI request.
const requestTimeout = 60 * time.Second

// insightMsg carries the result of a bulk analysis request.
type insightMsg struct {
	insight *aiservice.Insight
	err     error
}

// adviceMsg carries the result of a per-trial advice request.
type adviceMsg struct {
	taskID  string
	trialID string
	advice  string
	err     error
}

// remindersMsg carries the result of the reminder mail action.
type remindersMsg struct {
	count int
	err   error
}

// loadGateway builds the AI gateway by loading the API key from the
// environment variable or system keyring. Returns nil if no key is
// available.
func loadGateway(cfg *model.AppConfig) *aiservice.Gateway {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		var err error
		apiKey, err = credential.Get(apiKeyName)
		if err != nil || apiKey == "" {
			return nil
		}
	}

	return aiservice.New(apiKey, cfg.AI.Model, cfg.AI.MaxOutputTokens, cfg.AI.BaseURL)
}

// startAnalysis kicks off a bulk analysis. One at a time; a second
// request while one is running is dropped with a toast.
func (m Model) startAnalysis() (tea.Model, tea.Cmd) {
	if m.gateway == nil {
		cmd := m.toasts.Push(toast.LevelError,
			"No AI API key configured. Set one under Settings.")
		return m, cmd
	}
	if m.analyzing {
		cmd := m.toasts.Push(toast.LevelInfo, "Analysis already running.")
		return m, cmd
	}

	m.analyzing = true
	m.dashboardView.SetAnalyzing(true)

	gateway := m.gateway
	tasks := model.CloneTasks(m.st.Tasks())
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		insight, err := gateway.BulkInsight(ctx, tasks)
		return insightMsg{insight: insight, err: err}
	}
}

// handleInsightResult lands a finished bulk analysis. On error the
// dashboard keeps whatever insight it was already showing.
func (m Model) handleInsightResult(msg insightMsg) (tea.Model, tea.Cmd) {
	m.analyzing = false
	m.dashboardView.SetAnalyzing(false)

	if msg.err != nil {
		cmd := m.toasts.Push(toast.LevelError, "Analysis failed: "+msg.err.Error())
		return m, cmd
	}

	m.dashboardView.SetInsight(msg.insight)
	cmd := m.toasts.Push(toast.LevelSuccess, "Analysis complete.")
	return m, cmd
}

// handleAdviceRequest starts a per-trial advice fetch. Requests are
// deduplicated per trial id.
func (m Model) handleAdviceRequest(msg detail.AdviceRequestMsg) (tea.Model, tea.Cmd) {
	if m.gateway == nil {
		cmd := m.toasts.Push(toast.LevelError,
			"No AI API key configured. Set one under Settings.")
		return m, cmd
	}
	if m.pendingAdvice[msg.TrialID] {
		return m, nil
	}

	task := m.st.TaskByID(msg.TaskID)
	if task == nil {
		return m, nil
	}
	var trial *model.MoldTrial
	for i := range task.Trials {
		if task.Trials[i].ID == msg.TrialID {
			trial = &task.Trials[i]
			break
		}
	}
	if trial == nil {
		return m, nil
	}

	m.pendingAdvice[msg.TrialID] = true
	m.detailView.SetAdvicePending(msg.TrialID, true)

	gateway := m.gateway
	moldName := task.MoldName
	taskID := msg.TaskID
	trialID := msg.TrialID
	tr := *trial
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		advice, err := gateway.TrialAdvice(ctx, moldName, tr)
		return adviceMsg{taskID: taskID, trialID: trialID, advice: advice, err: err}
	}
}

// handleAdviceResult attaches fetched advice to the trial record.
func (m Model) handleAdviceResult(msg adviceMsg) (tea.Model, tea.Cmd) {
	delete(m.pendingAdvice, msg.trialID)
	m.detailView.SetAdvicePending(msg.trialID, false)

	if msg.err != nil {
		cmd := m.toasts.Push(toast.LevelError, "Advice request failed: "+msg.err.Error())
		return m, cmd
	}

	if err := m.st.AttachTrialAdvice(msg.taskID, msg.trialID, msg.advice); err != nil {
		cmd := m.toastError(err)
		return m, cmd
	}
	cmd := m.afterMutation()
	return m, cmd
}

// handleExport writes the full task collection to a CSV file.
func (m Model) handleExport(msg transfer.ExportRequestMsg) (tea.Model, tea.Cmd) {
	data := report.Export(m.st.Tasks(), msg.IncludeTrials)
	if err := os.WriteFile(msg.Path, data, 0o644); err != nil {
		cmd := m.toasts.Push(toast.LevelError, "Export failed: "+err.Error())
		return m, cmd
	}

	note := fmt.Sprintf("Exported %d task(s) to %s", len(m.st.Tasks()), msg.Path)
	m.transferView.SetNote(note)
	cmd := m.toasts.Push(toast.LevelSuccess, note)
	return m, cmd
}

// handleImport reads a CSV file and bulk-appends its rows as tasks.
func (m Model) handleImport(msg transfer.ImportRequestMsg) (tea.Model, tea.Cmd) {
	data, err := os.ReadFile(msg.Path)
	if err != nil {
		cmd := m.toasts.Push(toast.LevelError, "Import failed: "+err.Error())
		return m, cmd
	}

	count, err := m.st.ImportTasks(report.Import(string(data)))
	if err != nil {
		cmd := m.toastError(err)
		return m, cmd
	}

	note := fmt.Sprintf("Imported %d task(s) from %s", count, msg.Path)
	m.transferView.SetNote(note)
	cmd := tea.Batch(
		m.afterMutation(),
		m.toasts.Push(toast.LevelSuccess, note),
	)
	return m, cmd
}

// handleAPIKey stores the AI API key and rebuilds the gateway.
func (m Model) handleAPIKey(msg settings.APIKeyMsg) (tea.Model, tea.Cmd) {
	if err := credential.Set(apiKeyName, msg.Key); err != nil {
		cmd := m.toasts.Push(toast.LevelError, "Storing the key failed: "+err.Error())
		return m, cmd
	}

	m.gateway = aiservice.New(msg.Key, m.cfg.AI.Model, m.cfg.AI.MaxOutputTokens, m.cfg.AI.BaseURL)
	cmd := m.toasts.Push(toast.LevelSuccess, "AI API key saved.")
	return m, cmd
}

// handleReminders composes reminder mail for every delayed task.
func (m Model) handleReminders() (tea.Model, tea.Cmd) {
	sess := m.st.Session()
	if sess == nil || !sess.IsManager() {
		cmd := m.toasts.Push(toast.LevelError, "Only managers can send reminders.")
		return m, cmd
	}

	composer := m.composer
	sender := m.st.SenderEmail()
	members := append([]model.Member(nil), m.st.Members()...)
	tasks := model.CloneTasks(m.st.Tasks())
	return m, func() tea.Msg {
		count, err := composer.SendDelayedReminders(sender, members, tasks)
		return remindersMsg{count: count, err: err}
	}
}

// handleRemindersResult reports the reminder outcome.
func (m Model) handleRemindersResult(msg remindersMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		cmd := m.toasts.Push(toast.LevelError, "Reminders failed: "+msg.err.Error())
		return m, cmd
	}
	if msg.count == 0 {
		cmd := m.toasts.Push(toast.LevelInfo, "No delayed tasks to remind about.")
		return m, cmd
	}
	cmd := m.toasts.Push(toast.LevelSuccess,
		fmt.Sprintf("Composed %d reminder(s).", msg.count))
	return m, cmd
}

// executeCommand handles a command string from the command palette.
func (m Model) executeCommand(input string) (tea.Model, tea.Cmd) {
	switch input {
	case "analyze", "analysis":
		return m.startAnalysis()
	case "remind", "reminders":
		return m.handleReminders()
	case "quit", "q":
		return m, tea.Quit
	case "dashboard":
		return m.switchTab(ViewDashboard), nil
	case "team":
		return m.switchTab(ViewTeam), nil
	case "board":
		return m.switchTab(ViewBoard), nil
	case "timeline":
		return m.switchTab(ViewTimeline), nil
	case "export", "import", "transfer":
		return m.switchTab(ViewTransfer), nil
	case "settings":
		return m.switchTab(ViewSettings), nil
	case "new task", "new":
		return m.openTaskForm("")
	case "logout":
		m.st.Logout()
		m.currentView = ViewLogin
		cmd := tea.Batch(m.afterMutation(), m.loginView.Start())
		return m, cmd
	case "clear filters", "clear":
		m.selection.Query = ""
		m.selection.Status = ""
		m.selection.Phase = ""
		m.selection.DateRange = ""
		m.selection.BoardColumn = ""
		m.refresh()
		return m, nil
	default:
		cmd := m.toasts.Push(toast.LevelError, fmt.Sprintf("Unknown command %q.", input))
		return m, cmd
	}
}
