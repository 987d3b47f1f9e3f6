package palette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MenuItem is one row of the desktop menu. Rows with a Submenu open a nested
// level instead of returning an action.
type MenuItem struct {
	Label     string
	Action    string // open:<app>, focus:<id>, minimize:<id>, ...
	Icon      string
	Meta      string // extra search keywords, e.g. the app key
	IsHeader  bool
	IsDivider bool
	IsActive  bool // the active window
	Submenu   []MenuItem
}

// IsParent reports whether the item opens a submenu.
func (m MenuItem) IsParent() bool {
	return len(m.Submenu) > 0
}

// MenuResult is the chosen leaf action and the launcher's exit code
// (ExitNormal, ExitAlternate or ExitMaximize).
type MenuResult struct {
	Action   string
	ExitCode int
}

// Reserved actions for navigation rows. They never reach Execute.
const (
	actionBack      = "menu:back"
	actionOpenLevel = "menu:open:"
	actionNoop      = "noop"
)

// Menu walks a tree of MenuItems one launcher invocation per level.
type Menu struct {
	backend Backend
	root    []MenuItem
	prompt  string
	message string
}

type menuLevel struct {
	title string
	items []MenuItem
}

// NewMenu creates a menu over items with the default "deskwm" prompt.
func NewMenu(backend Backend, items []MenuItem) *Menu {
	return &Menu{backend: backend, root: items, prompt: "deskwm"}
}

// SetPrompt sets the top-level prompt.
func (m *Menu) SetPrompt(prompt string) {
	m.prompt = prompt
}

// SetMessage sets the message bar text for backends that have one.
func (m *Menu) SetMessage(msg string) {
	m.message = msg
}

// Show runs the launcher until a leaf is picked. Cancelling at the top level
// returns ErrCancelled; cancelling or picking Back in a submenu goes up one
// level.
func (m *Menu) Show() (MenuResult, error) {
	if len(m.root) == 0 {
		return MenuResult{}, fmt.Errorf("menu: no items to show")
	}
	stack := []menuLevel{{title: m.prompt, items: m.root}}

	for {
		level := stack[len(stack)-1]
		nested := len(stack) > 1

		res, err := m.backend.Show(level.title, levelRows(level.items, nested), m.message)
		if errors.Is(err, ErrCancelled) && nested {
			stack = stack[:len(stack)-1]
			continue
		}
		if err != nil {
			return MenuResult{}, err
		}

		picked := res.Item
		switch {
		case picked.IsHeader || picked.IsDivider:
			// Backends without non-selectable rows can still return these.
			continue
		case picked.Action == actionBack:
			stack = stack[:len(stack)-1]
			continue
		case strings.HasPrefix(picked.Action, actionOpenLevel):
			idx, err := strconv.Atoi(strings.TrimPrefix(picked.Action, actionOpenLevel))
			if err != nil || idx < 0 || idx >= len(level.items) || !level.items[idx].IsParent() {
				continue
			}
			sub := level.items[idx]
			stack = append(stack, menuLevel{title: sub.Label, items: sub.Submenu})
			continue
		}
		return MenuResult{Action: picked.Action, ExitCode: res.ExitCode}, nil
	}
}

// levelRows converts one level to launcher rows, prefixed by a Back row when
// nested.
func levelRows(items []MenuItem, nested bool) []Item {
	rows := make([]Item, 0, len(items)+1)
	if nested {
		rows = append(rows, Item{Label: "← Back", Action: actionBack, Icon: "go-previous"})
	}
	for i, it := range items {
		row := Item{
			Label:     it.Label,
			Action:    it.Action,
			Icon:      it.Icon,
			Meta:      it.Meta,
			IsHeader:  it.IsHeader,
			IsDivider: it.IsDivider,
			IsActive:  it.IsActive,
		}
		switch {
		case it.IsParent():
			row.Label += " →"
			row.Action = actionOpenLevel + strconv.Itoa(i)
			if row.Icon == "" {
				row.Icon = "folder"
			}
		case strings.TrimSpace(row.Action) == "":
			row.Action = actionNoop
		}
		rows = append(rows, row)
	}
	return rows
}
