// Package dashboard is the landing view: status summary cards, the
// phase distribution, a delayed-work alert, and the AI analysis panel.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moldworks/moldtrack/internal/ai"
	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/stats"
	"github.com/moldworks/moldtrack/internal/theme"
)

// DrillThroughMsg asks the parent to open the board view filtered to
// the selected status column.
type DrillThroughMsg struct {
	Status model.TaskStatus
}

// Model is the dashboard view component.
type Model struct {
	stats       stats.Stats
	insight     *ai.Insight
	analyzing   bool
	selected    int
	insightView viewport.Model
	width       int
	height      int
}

// New creates a new dashboard model.
func New(width, height int) Model {
	vp := viewport.New(width, insightHeight(height))
	return Model{
		insightView: vp,
		width:       width,
		height:      height,
	}
}

// SetStats replaces the aggregates the dashboard renders.
func (m *Model) SetStats(s stats.Stats) {
	m.stats = s
}

// SetInsight replaces the AI analysis panel content. A nil insight
// keeps the panel in its empty/prompt state.
func (m *Model) SetInsight(insight *ai.Insight) {
	m.insight = insight
	m.insightView.SetContent(m.renderInsight())
	m.insightView.GotoTop()
}

// SetAnalyzing toggles the in-flight indicator on the analysis panel.
func (m *Model) SetAnalyzing(busy bool) {
	m.analyzing = busy
}

// Update handles messages for the dashboard view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "left", "h":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "right", "l":
			if m.selected < len(model.AllStatuses)-1 {
				m.selected++
			}
			return m, nil
		case "enter":
			status := model.AllStatuses[m.selected]
			return m, func() tea.Msg {
				return DrillThroughMsg{Status: status}
			}
		}
	}

	var cmd tea.Cmd
	m.insightView, cmd = m.insightView.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	sections := []string{
		m.renderCards(),
		m.renderPhases(),
	}
	if alert := m.renderDelayedAlert(); alert != "" {
		sections = append(sections, alert)
	}
	sections = append(sections, m.renderInsightPanel())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderCards draws one count card per status, selectable for
// drill-through to the board.
func (m Model) renderCards() string {
	cards := make([]string, len(model.AllStatuses))
	cardWidth := m.width/len(model.AllStatuses) - 2
	if cardWidth < 10 {
		cardWidth = 10
	}

	for i, status := range model.AllStatuses {
		count := m.stats.StatusCounts[status]
		body := fmt.Sprintf("%s\n%s",
			theme.StatusStyle(status).Render(model.TaskStatusLabels[status]),
			lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d", count)),
		)

		style := theme.PanelStyle.Width(cardWidth).Padding(0, 1)
		if i == m.selected {
			style = style.BorderForeground(theme.ColorBlue)
		}
		cards[i] = style.Render(body)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderPhases draws the pipeline distribution as a single line.
func (m Model) renderPhases() string {
	parts := make([]string, len(model.AllPhases))
	for i, phase := range model.AllPhases {
		parts[i] = fmt.Sprintf("%s %d",
			theme.PhaseStyle(phase).Render(model.PhaseLabels[phase]),
			m.stats.PhaseCounts[phase],
		)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(parts, "   "))
}

// renderDelayedAlert lists delayed tasks, or returns "" when none.
func (m Model) renderDelayedAlert() string {
	delayed := m.stats.StatusCounts[model.StatusDelayed]
	if delayed == 0 {
		return ""
	}

	text := fmt.Sprintf("%d task(s) delayed", delayed)
	return lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(theme.ColorRed).
		Bold(true).
		Render("⚠ " + text)
}

// renderInsightPanel wraps the analysis viewport in a titled panel.
func (m Model) renderInsightPanel() string {
	title := "AI Analysis"
	if m.analyzing {
		title = "AI Analysis (analyzing...)"
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorMagenta).
		Render(title)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, m.insightView.View()))
}

// renderInsight builds the analysis text for the viewport.
func (m Model) renderInsight() string {
	if m.insight == nil {
		return theme.HelpStyle.Render("Press a to run a project analysis.")
	}

	var sb strings.Builder
	section := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	sb.WriteString(section.Render("Health"))
	sb.WriteString("\n" + m.insight.HealthSummary + "\n\n")

	sb.WriteString(section.Render("Bottlenecks"))
	sb.WriteString("\n" + bulletList(m.insight.Bottlenecks) + "\n")

	sb.WriteString(section.Render("At Risk"))
	sb.WriteString("\n" + bulletList(m.insight.AtRisk) + "\n")

	sb.WriteString(section.Render("Suggestions"))
	sb.WriteString("\n" + bulletList(m.insight.Suggestions))

	return sb.String()
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "  (none)\n"
	}
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("  • " + item + "\n")
	}
	return sb.String()
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.insightView.Width = width - 8
	m.insightView.Height = insightHeight(height)
	m.insightView.SetContent(m.renderInsight())
}

// insightHeight reserves room for the cards, phase line, and alert.
func insightHeight(total int) int {
	h := total - 10
	if h < 4 {
		h = 4
	}
	return h
}
