// Package watch is the live lock viewer TUI. It polls the repository's
// roster file and guard directories and renders who holds what, refreshing
// on a timer. Reads are snapshot reads — the roster is written atomically by
// holders, so no mutation guard is needed just to look.
package watch

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/repolock/repolock/internal/lock"
)

// refreshInterval is how often the view re-reads the lock state.
const refreshInterval = time.Second

// KeyMap defines the watch TUI key bindings.
type KeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh, k.Quit}}
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Snapshot is one observation of the lock state.
type Snapshot struct {
	Taken   time.Time
	Mode    lock.Mode
	Holders []lock.Identity
	Guards  []lock.GuardInfo
	Err     error
}

// TakeSnapshot reads the current lock state for the lock named base in dir.
func TakeSnapshot(dir, base string) Snapshot {
	snap := Snapshot{Taken: time.Now()}

	roster, err := lock.LoadRoster(lock.New(dir, base, lock.Identity{}).RosterPath())
	if err != nil {
		snap.Err = err
		return snap
	}
	snap.Mode = roster.Mode()
	snap.Holders = roster.Holders()

	guards, err := lock.InspectGuards(dir, base)
	if err != nil {
		snap.Err = err
		return snap
	}
	snap.Guards = guards
	return snap
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the bubbletea model for `repolock watch`.
type Model struct {
	dir  string
	base string

	snap   Snapshot
	width  int
	height int

	keys KeyMap
	help help.Model
}

// NewModel creates a watch model for the lock named base inside dir.
func NewModel(dir, base string) Model {
	return Model{
		dir:  dir,
		base: base,
		snap: TakeSnapshot(dir, base),
		keys: DefaultKeyMap(),
		help: help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.snap = TakeSnapshot(m.dir, m.base)
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.snap = TakeSnapshot(m.dir, m.base)
			return m, nil
		}
	}
	return m, nil
}
