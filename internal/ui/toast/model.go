// Package toast renders a stack of transient notifications. Each toast
// carries a unique id so the expiry message cannot dismiss a newer
// toast that reused a slot.
package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/moldworks/moldtrack/internal/theme"
)

// Level classifies a toast for styling.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// lifetime is how long a toast stays on screen.
const lifetime = 4 * time.Second

// ExpireMsg dismisses the toast with the given id.
type ExpireMsg struct {
	ID string
}

type toast struct {
	id    string
	level Level
	text  string
}

// Model holds the active toast stack, newest last.
type Model struct {
	toasts []toast
}

// New creates an empty toast stack.
func New() Model {
	return Model{}
}

// Push appends a toast and returns the command that expires it.
func (m *Model) Push(level Level, text string) tea.Cmd {
	id := uuid.NewString()
	m.toasts = append(m.toasts, toast{id: id, level: level, text: text})

	return tea.Tick(lifetime, func(time.Time) tea.Msg {
		return ExpireMsg{ID: id}
	})
}

// Update handles expiry messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if expire, ok := msg.(ExpireMsg); ok {
		kept := m.toasts[:0:0]
		for _, t := range m.toasts {
			if t.id != expire.ID {
				kept = append(kept, t)
			}
		}
		m.toasts = kept
	}
	return m, nil
}

// View renders the toast stack, one line per toast.
func (m Model) View() string {
	if len(m.toasts) == 0 {
		return ""
	}

	lines := make([]string, len(m.toasts))
	for i, t := range m.toasts {
		lines[i] = m.style(t.level).Render(t.text)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) style(level Level) lipgloss.Style {
	switch level {
	case LevelSuccess:
		return theme.ToastStyle.Background(theme.ColorGreen)
	case LevelError:
		return theme.ToastStyle.Background(theme.ColorRed)
	default:
		return theme.ToastStyle
	}
}
