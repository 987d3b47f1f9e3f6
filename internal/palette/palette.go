// Package palette drives dmenu-style launchers (rofi, fuzzel, wofi, dmenu)
// as a keyboard front end for the desktop.
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Exit codes reported by the launcher program.
const (
	ExitNormal    = 0
	ExitCancelled = 1
	// ExitAlternate is kb-custom-1 (Alt+Return): act on the window instead of focusing it.
	ExitAlternate = 10
	// ExitMaximize is kb-custom-2 (Alt+m).
	ExitMaximize  = 11
	exitCustomMax = 12
)

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label     string // Display text
	Action    string // Action identifier returned on selection
	Icon      string // Icon name for rofi -show-icons
	Info      string // Hidden data returned on selection
	Meta      string // Hidden search keywords
	IsHeader  bool   // Non-selectable section header (bold)
	IsDivider bool   // Non-selectable divider line (dim)
	IsActive  bool   // Highlighted as current/active
	IsUrgent  bool   // Highlighted as urgent
}

// SelectResult contains the result of a palette selection.
type SelectResult struct {
	Item     Item
	ExitCode int
}

// Capabilities describes what features a backend supports.
type Capabilities struct {
	Icons         bool
	Markup        bool
	NonSelectable bool
	CustomKeys    bool
	IndexOutput   bool
	MessageBar    bool
	RowStates     bool
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	// Show displays items under prompt, with an optional message bar.
	Show(prompt string, items []Item, message string) (SelectResult, error)
	Capabilities() Capabilities
}

// Priority order used by auto detection.
var detectOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// DetectBackend returns the first launcher program found in PATH.
func DetectBackend() (string, error) {
	for _, name := range detectOrder {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(detectOrder, ", "))
}

// NewBackend creates a backend by name: auto, rofi, fuzzel, wofi or dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	p, ok := programs[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(detectOrder, ", "))
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", name)
	}
	return newProgram(name, p), nil
}
