// Package apps is the static catalog of launchable apps.
package apps

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/geom"
)

// ErrNotFound is returned when an app key is not registered.
var ErrNotFound = errors.New("app not found")

// Content is whatever a window hosts. The window manager never looks inside.
type Content interface {
	// Lines returns a plain-text rendering for shells that cannot host rich
	// content.
	Lines() []string
}

// Factory builds the content for a new window. It is called exactly once per
// window, outside the window manager's lock, so it may query the manager.
type Factory func(windowID, appKey string) Content

// Definition is the registry entry for one app.
type Definition struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	DefaultSize geom.Size `json:"default_size"`
	MinSize     geom.Size `json:"min_size"`
	Resizable   bool      `json:"resizable"`
	Pinned      bool      `json:"pinned,omitempty"`
	Hidden      bool      `json:"hidden,omitempty"`
	Order       int       `json:"-"`
	Factory     Factory   `json:"-"`
}

// NewContent runs the factory, falling back to a placeholder panel.
func (d Definition) NewContent(windowID string) Content {
	if d.Factory != nil {
		if c := d.Factory(windowID, d.Key); c != nil {
			return c
		}
	}
	return Placeholder{WindowID: windowID, AppKey: d.Key, Title: d.Name, Body: d.Description}
}

// Registry is an immutable, ordered app catalog.
type Registry struct {
	defs  []Definition
	index map[string]int
}

// New builds a registry from definitions. Later duplicates replace earlier
// ones.
func New(defs ...Definition) *Registry {
	r := &Registry{index: make(map[string]int, len(defs))}
	for _, d := range defs {
		if i, ok := r.index[d.Key]; ok {
			r.defs[i] = d
			continue
		}
		r.index[d.Key] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	sort.SliceStable(r.defs, func(i, j int) bool {
		if r.defs[i].Order != r.defs[j].Order {
			return r.defs[i].Order < r.defs[j].Order
		}
		return r.defs[i].Key < r.defs[j].Key
	})
	for i, d := range r.defs {
		r.index[d.Key] = i
	}
	return r
}

// FromConfig builds the registry from the effective config. factories may
// supply content for specific keys; the rest get placeholders.
func FromConfig(cfg *config.Config, factories map[string]Factory) *Registry {
	defs := make([]Definition, 0, len(cfg.Apps))
	for key, app := range cfg.Apps {
		defs = append(defs, Definition{
			Key:         key,
			Name:        app.Name,
			Icon:        app.Icon,
			Description: app.Description,
			DefaultSize: app.DefaultSize,
			MinSize:     app.MinSize,
			Resizable:   app.Resizable,
			Pinned:      app.Pinned,
			Hidden:      app.Hidden,
			Order:       app.Order,
			Factory:     factories[key],
		})
	}
	return New(defs...)
}

// Lookup returns the definition for key.
func (r *Registry) Lookup(key string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	i, ok := r.index[key]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Get is Lookup with an error for callers that propagate it.
func (r *Registry) Get(key string) (Definition, error) {
	d, ok := r.Lookup(key)
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return d, nil
}

// All returns every definition in menu order, hidden apps included.
func (r *Registry) All() []Definition {
	if r == nil {
		return nil
	}
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Visible returns the apps shown in the start menu.
func (r *Registry) Visible() []Definition {
	var out []Definition
	for _, d := range r.All() {
		if !d.Hidden {
			out = append(out, d)
		}
	}
	return out
}

// Pinned returns the taskbar apps in menu order.
func (r *Registry) Pinned() []Definition {
	var out []Definition
	for _, d := range r.All() {
		if d.Pinned && !d.Hidden {
			out = append(out, d)
		}
	}
	return out
}

// Search returns visible apps whose name contains query, ignoring case. An
// empty query matches everything.
func (r *Registry) Search(query string) []Definition {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Definition
	for _, d := range r.Visible() {
		if query == "" || strings.Contains(strings.ToLower(d.Name), query) {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of registered apps.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}
