package palette

import (
	"errors"
	"fmt"
	"strings"
)

// AppEntry is a launchable app as the palette shows it.
type AppEntry struct {
	Key         string
	Name        string
	Icon        string
	Description string
	Pinned      bool
}

// WindowEntry is an open window as the palette shows it.
type WindowEntry struct {
	ID        string
	AppKey    string
	Title     string
	Icon      string
	Active    bool
	Minimized bool
	Maximized bool
}

// Desktop is what the palette acts on: an in-process session or a daemon.
type Desktop interface {
	Apps() ([]AppEntry, error)
	Windows() ([]WindowEntry, error)
	Open(appKey string) error
	Focus(id string) error
	Minimize(id string) error
	ToggleMaximize(id string) error
	Close(id string) error
}

// BuildMenu lays out open windows (front first) followed by the apps.
// Windows carry a submenu of window actions; selecting the window row
// itself focuses it.
func BuildMenu(apps []AppEntry, windows []WindowEntry) []MenuItem {
	var items []MenuItem

	if len(windows) > 0 {
		items = append(items, MenuItem{Label: "Windows", IsHeader: true})
		for i := len(windows) - 1; i >= 0; i-- {
			w := windows[i]
			label := w.Title
			switch {
			case w.Minimized:
				label += " (minimized)"
			case w.Maximized:
				label += " (maximized)"
			}
			items = append(items, MenuItem{
				Label:    label,
				Action:   "focus:" + w.ID,
				Icon:     w.Icon,
				Meta:     w.AppKey,
				IsActive: w.Active,
			})
		}
		items = append(items, MenuItem{Label: "Window actions", Submenu: windowActions(windows)})
		items = append(items, MenuItem{Label: "────────", IsDivider: true})
	}

	items = append(items, MenuItem{Label: "Apps", IsHeader: true})
	for _, a := range apps {
		label := a.Name
		if a.Description != "" {
			label = fmt.Sprintf("%s  %s", a.Name, a.Description)
		}
		items = append(items, MenuItem{
			Label:  label,
			Action: "open:" + a.Key,
			Icon:   a.Icon,
			Meta:   a.Key,
		})
	}
	return items
}

func windowActions(windows []WindowEntry) []MenuItem {
	out := make([]MenuItem, 0, len(windows))
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		maximize := "Maximize"
		if w.Maximized {
			maximize = "Restore size"
		}
		out = append(out, MenuItem{
			Label: w.Title,
			Icon:  w.Icon,
			Submenu: []MenuItem{
				{Label: "Focus", Action: "focus:" + w.ID, Icon: "go-up"},
				{Label: "Minimize", Action: "minimize:" + w.ID, Icon: "go-down"},
				{Label: maximize, Action: "maximize:" + w.ID, Icon: "view-fullscreen"},
				{Label: "Close", Action: "close:" + w.ID, Icon: "window-close"},
			},
		})
	}
	return out
}

// Execute performs a menu action. Alt+Return closes a selected window row;
// Alt+m toggles maximize on it (or on a freshly opened app).
func Execute(d Desktop, action string, exitCode int) error {
	verb, arg, ok := strings.Cut(action, ":")
	if !ok || arg == "" {
		if action == "noop" {
			return nil
		}
		return fmt.Errorf("palette: malformed action %q", action)
	}

	switch verb {
	case "open":
		if err := d.Open(arg); err != nil {
			return err
		}
		if exitCode == ExitMaximize {
			return maximizeApp(d, arg)
		}
		return nil
	case "focus":
		switch exitCode {
		case ExitAlternate:
			return d.Close(arg)
		case ExitMaximize:
			return d.ToggleMaximize(arg)
		}
		return d.Focus(arg)
	case "minimize":
		return d.Minimize(arg)
	case "maximize":
		return d.ToggleMaximize(arg)
	case "close":
		return d.Close(arg)
	default:
		return fmt.Errorf("palette: unknown action %q", verb)
	}
}

func maximizeApp(d Desktop, appKey string) error {
	windows, err := d.Windows()
	if err != nil {
		return err
	}
	for _, w := range windows {
		if w.AppKey == appKey && w.Active {
			if w.Maximized {
				return nil
			}
			return d.ToggleMaximize(w.ID)
		}
	}
	return nil
}

// Run shows the desktop menu on backend and executes the choice. A cancelled
// palette is not an error.
func Run(backend Backend, d Desktop) error {
	apps, err := d.Apps()
	if err != nil {
		return err
	}
	windows, err := d.Windows()
	if err != nil {
		return err
	}

	menu := NewMenu(backend, BuildMenu(apps, windows))
	if backend.Capabilities().MessageBar {
		menu.SetMessage("Enter: open/focus   Alt+Return: close window   Alt+m: maximize")
	}
	res, err := menu.Show()
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	return Execute(d, res.Action, res.ExitCode)
}
