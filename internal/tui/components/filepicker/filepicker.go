// Package filepicker implements a bubbletea component for picking a spec file to run.
package filepicker

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.followtheprocess.codes/specify/internal/tui/theme"
)

// How long a warning about a file that is not a spec stays on screen.
const warningTimeout = 2 * time.Second

// Extensions are the file extensions of spec files, only these may be picked.
var Extensions = []string{".yaml", ".yml"}

// Model is the spec file picker, it quits as soon as a spec file is chosen.
type Model struct {
	browser  filepicker.Model
	help     help.Model
	keys     keys
	warning  string // Shown in place of the prompt after picking something that isn't a spec
	chosen   string // Path of the chosen spec file
	quitting bool
}

// New returns a new [Model] browsing from dir.
func New(dir string) Model {
	keys := defaultKeys()

	browser := filepicker.New()
	browser.AllowedTypes = Extensions
	browser.CurrentDirectory = dir
	browser.Styles = theme.Picker()
	browser.KeyMap = keys.KeyMap

	return Model{
		browser: browser,
		help:    help.New(),
		keys:    keys,
	}
}

// Selected returns the spec file that was chosen, or "" if the user quit without
// choosing one.
func (m Model) Selected() string {
	return m.chosen
}

// keys are the bubbles filepicker bindings with vim style movement, plus our own
// for quitting and expanding the help bar.
type keys struct {
	filepicker.KeyMap

	Help key.Binding
	Quit key.Binding
}

func defaultKeys() keys {
	return keys{
		KeyMap: filepicker.KeyMap{
			GoToTop:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "first")),
			GoToLast: key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "last")),
			Down:     key.NewBinding(key.WithKeys("j", "down", "ctrl+n"), key.WithHelp("↓/j", "down")),
			Up:       key.NewBinding(key.WithKeys("k", "up", "ctrl+p"), key.WithHelp("↑/k", "up")),
			PageUp:   key.NewBinding(key.WithKeys("K", "pgup"), key.WithHelp("pgup", "page up")),
			PageDown: key.NewBinding(key.WithKeys("J", "pgdown"), key.WithHelp("pgdown", "page down")),
			Back:     key.NewBinding(key.WithKeys("h", "backspace", "left", "esc"), key.WithHelp("h", "up a directory")),
			Open:     key.NewBinding(key.WithKeys("l", "right", "enter"), key.WithHelp("l", "open directory")),
			Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		},
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements [help.KeyMap].
func (k keys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Help, k.Quit}
}

// FullHelp implements [help.KeyMap].
func (k keys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.GoToTop, k.GoToLast, k.Open, k.Back},
		{k.Select, k.Help, k.Quit},
	}
}

// warningExpired clears the warning.
type warningExpired struct{}

func expireWarning() tea.Cmd {
	return tea.Tick(warningTimeout, func(time.Time) tea.Msg {
		return warningExpired{}
	})
}

// Init implements [tea.Model], reading the starting directory.
func (m Model) Init() tea.Cmd {
	return m.browser.Init()
}

// Update implements [tea.Model].
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.browser.SetHeight(msg.Height)
		m.help.Width = msg.Width
	case warningExpired:
		m.warning = ""
	}

	var cmd tea.Cmd
	m.browser, cmd = m.browser.Update(msg)

	if picked, path := m.browser.DidSelectDisabledFile(msg); picked {
		m.warning = fmt.Sprintf("%s is not a spec file, pick one ending in %s", path, strings.Join(Extensions, " or "))
		return m, tea.Batch(cmd, expireWarning())
	}

	if picked, path := m.browser.DidSelectFile(msg); picked {
		m.chosen = path
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// View implements [tea.Model], rendering nothing once the picker is done so the
// spec report starts on a clean screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	prompt := "Pick a spec file to run:"
	if m.warning != "" {
		prompt = theme.Error().Render(m.warning)
	}

	return "\n" + prompt + "\n" + m.browser.View() + m.help.View(m.keys)
}
