package palette

import (
	"github.com/1broseidon/deskwm/internal/ipc"
	"github.com/1broseidon/deskwm/internal/session"
	"github.com/1broseidon/deskwm/internal/wm"
)

// SessionDesktop drives an in-process session.
type SessionDesktop struct {
	Session *session.Session
}

var _ Desktop = SessionDesktop{}

func (d SessionDesktop) Apps() ([]AppEntry, error) {
	return appEntries(ipc.ListApps(d.Session).Apps), nil
}

func (d SessionDesktop) Windows() ([]WindowEntry, error) {
	return windowEntries(d.Session.Snapshot().Stacked()), nil
}

func (d SessionDesktop) Open(appKey string) error {
	_, _, err := d.Session.Open(appKey, wm.Overrides{})
	return err
}

func (d SessionDesktop) Focus(id string) error          { return d.Session.Focus(id) }
func (d SessionDesktop) Minimize(id string) error       { return d.Session.Minimize(id) }
func (d SessionDesktop) ToggleMaximize(id string) error { return d.Session.ToggleMaximize(id) }
func (d SessionDesktop) Close(id string) error          { return d.Session.Close(id) }

// ClientDesktop drives a running daemon over IPC.
type ClientDesktop struct {
	Client *ipc.Client
}

var _ Desktop = ClientDesktop{}

func (d ClientDesktop) Apps() ([]AppEntry, error) {
	data, err := d.Client.ListApps()
	if err != nil {
		return nil, err
	}
	return appEntries(data.Apps), nil
}

func (d ClientDesktop) Windows() ([]WindowEntry, error) {
	data, err := d.Client.ListWindows()
	if err != nil {
		return nil, err
	}
	return windowEntries(data.Windows), nil
}

func (d ClientDesktop) Open(appKey string) error {
	_, err := d.Client.Open(appKey, wm.Overrides{})
	return err
}

func (d ClientDesktop) Focus(id string) error {
	_, err := d.Client.Focus(id)
	return err
}

func (d ClientDesktop) Minimize(id string) error {
	_, err := d.Client.Minimize(id)
	return err
}

func (d ClientDesktop) ToggleMaximize(id string) error {
	_, err := d.Client.ToggleMaximize(id)
	return err
}

func (d ClientDesktop) Close(id string) error {
	return d.Client.Close(id)
}

func appEntries(apps []ipc.AppInfo) []AppEntry {
	out := make([]AppEntry, 0, len(apps))
	for _, a := range apps {
		out = append(out, AppEntry{Key: a.Key, Name: a.Name, Icon: a.Icon, Description: a.Description, Pinned: a.Pinned})
	}
	return out
}

func windowEntries(windows []wm.Window) []WindowEntry {
	out := make([]WindowEntry, 0, len(windows))
	for _, w := range windows {
		out = append(out, WindowEntry{
			ID:        w.ID,
			AppKey:    w.AppKey,
			Title:     w.Title,
			Icon:      w.Icon,
			Active:    w.Active,
			Minimized: w.Minimized,
			Maximized: w.Maximized,
		})
	}
	return out
}
