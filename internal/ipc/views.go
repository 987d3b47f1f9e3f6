package ipc

import (
	"github.com/1broseidon/deskwm/internal/apps"
	"github.com/1broseidon/deskwm/internal/session"
)

// ListApps describes the visible registry entries in launcher order.
func ListApps(sess *session.Session) AppsData {
	defs := sess.Registry().Visible()
	out := AppsData{Apps: make([]AppInfo, 0, len(defs))}
	for _, d := range defs {
		out.Apps = append(out.Apps, AppInfoFrom(d))
	}
	return out
}

// AppInfoFrom converts a registry definition.
func AppInfoFrom(d apps.Definition) AppInfo {
	return AppInfo{
		Key:         d.Key,
		Name:        d.Name,
		Icon:        d.Icon,
		Description: d.Description,
		DefaultSize: d.DefaultSize,
		MinSize:     d.MinSize,
		Resizable:   d.Resizable,
		Pinned:      d.Pinned,
		Hidden:      d.Hidden,
	}
}

// ListWindows returns the open windows back to front.
func ListWindows(sess *session.Session) WindowsData {
	snap := sess.Snapshot()
	return WindowsData{
		Windows:  snap.Stacked(),
		ActiveID: snap.ActiveID,
		Viewport: snap.Viewport,
	}
}
