package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskwm/internal/apps"
)

const (
	menuWidth     = 36
	menuMaxHeight = 18
)

var menuStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Background(lipgloss.Color("235")).
	Padding(0, 1)

// appItem implements list.Item for the start menu.
type appItem struct {
	def apps.Definition
}

func (i appItem) Title() string {
	if i.def.Pinned {
		return "* " + i.def.Name
	}
	return "  " + i.def.Name
}

func (i appItem) Description() string { return i.def.Description }
func (i appItem) FilterValue() string { return i.def.Name }

// startMenu is the app launcher shown above the Start button.
type startMenu struct {
	input    textinput.Model
	list     list.Model
	registry *apps.Registry
	height   int
}

func newStartMenu(registry *apps.Registry) startMenu {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Placeholder = "Search apps"
	ti.Prompt = "> "
	ti.CharLimit = 48

	m := startMenu{input: ti, list: l, registry: registry}
	m.refilter()
	return m
}

// open clears the search and sizes the menu for a terminal with rows rows.
func (m *startMenu) open(registry *apps.Registry, rows int) tea.Cmd {
	m.registry = registry
	m.input.SetValue("")
	m.height = max(min(menuMaxHeight, rows-taskbarRows), 6)
	// Border plus the search row and its gap.
	m.list.SetSize(menuWidth-4, m.height-4)
	m.refilter()
	m.list.Select(0)
	return m.input.Focus()
}

func (m *startMenu) close() {
	m.input.Blur()
}

func (m *startMenu) refilter() {
	var items []list.Item
	if m.registry != nil {
		for _, d := range m.registry.Search(m.input.Value()) {
			items = append(items, appItem{def: d})
		}
	}
	m.list.SetItems(items)
}

// selected returns the highlighted app key.
func (m startMenu) selected() (string, bool) {
	item, ok := m.list.SelectedItem().(appItem)
	if !ok {
		return "", false
	}
	return item.def.Key, true
}

// update handles a key while the menu is open. It reports an app to launch
// and whether the menu should close.
func (m startMenu) update(msg tea.KeyMsg) (startMenu, string, bool, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, "", true, nil
	case "enter":
		key, ok := m.selected()
		if !ok {
			return m, "", false, nil
		}
		return m, key, true, nil
	case "up", "down", "pgup", "pgdown", "ctrl+p", "ctrl+n":
		switch msg.String() {
		case "ctrl+p":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "ctrl+n":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, "", false, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refilter()
		m.list.Select(0)
	}
	return m, "", false, cmd
}

func (m startMenu) view() string {
	body := m.input.View() + "\n\n" + m.list.View()
	return menuStyle.Width(menuWidth - 2).Height(m.height - 2).Render(body)
}
