package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// View tabs
	Dashboard key.Binding
	Team      key.Binding
	Board     key.Binding
	Timeline  key.Binding
	Transfer  key.Binding
	Settings  key.Binding

	// Task actions
	NewTask    key.Binding
	EditTask   key.Binding
	DeleteTask key.Binding
	AddTrial   key.Binding

	// AI
	Analyze key.Binding
	Advice  key.Binding

	// Timeline filter cycling
	CycleStatus key.Binding
	CyclePhase  key.Binding
	CycleRange  key.Binding

	// Session
	Logout key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Team: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "team"),
		),
		Board: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "board"),
		),
		Timeline: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "timeline"),
		),
		Transfer: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "import/export"),
		),
		Settings: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "settings"),
		),
		NewTask: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		EditTask: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit task"),
		),
		DeleteTask: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete task"),
		),
		AddTrial: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "record trial"),
		),
		Analyze: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "AI analysis"),
		),
		Advice: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "trial advice"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle status filter"),
		),
		CyclePhase: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle phase filter"),
		),
		CycleRange: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "cycle date range"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Dashboard, k.Team, k.Board, k.Timeline, k.Transfer, k.Settings},
		{k.NewTask, k.EditTask, k.DeleteTask, k.AddTrial},
		{k.Search, k.CycleStatus, k.CyclePhase, k.CycleRange},
		{k.Analyze, k.Advice, k.Command, k.Help, k.Logout},
	}
}
