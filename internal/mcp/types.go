package mcp

import "github.com/1broseidon/deskwm/internal/wm"

// ListAppsInput is the input for the list_apps tool.
type ListAppsInput struct{}

// AppInfo describes one launchable app.
type AppInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Resizable   bool   `json:"resizable"`
	Pinned      bool   `json:"pinned"`
	Open        bool   `json:"open"`
}

// ListAppsOutput is the output for the list_apps tool.
type ListAppsOutput struct {
	Apps []AppInfo `json:"apps"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	VisibleOnly bool `json:"visible_only,omitempty" jsonschema:"Skip minimized windows (default: false)"`
}

// WindowInfo describes one open window.
type WindowInfo struct {
	ID        string `json:"id"`
	AppKey    string `json:"app_key"`
	Title     string `json:"title"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ZIndex    int    `json:"z_index"`
	Active    bool   `json:"active"`
	Minimized bool   `json:"minimized"`
	Maximized bool   `json:"maximized"`
}

// ListWindowsOutput is the output for the list_windows tool. Windows are
// ordered back to front.
type ListWindowsOutput struct {
	ActiveID string       `json:"active_id,omitempty"`
	Windows  []WindowInfo `json:"windows"`
}

// OpenWindowInput is the input for the open_window tool.
type OpenWindowInput struct {
	AppKey string `json:"app_key" jsonschema:"App key from list_apps"`
	X      *int   `json:"x,omitempty" jsonschema:"Initial x in pixels (default: cascaded from center)"`
	Y      *int   `json:"y,omitempty" jsonschema:"Initial y in pixels (default: cascaded from center)"`
	Width  *int   `json:"width,omitempty" jsonschema:"Initial width in pixels (default: the app's size)"`
	Height *int   `json:"height,omitempty" jsonschema:"Initial height in pixels (default: the app's size)"`
}

// OpenWindowOutput is the output for the open_window tool.
type OpenWindowOutput struct {
	// Result is created, focused or restored.
	Result string     `json:"result"`
	Window WindowInfo `json:"window"`
}

// WindowInput targets one window.
type WindowInput struct {
	WindowID string `json:"window_id" jsonschema:"Window id from list_windows"`
}

// WindowOutput is the window state after an operation.
type WindowOutput struct {
	Window WindowInfo `json:"window"`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	Closed   string `json:"closed"`
	ActiveID string `json:"active_id,omitempty"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	WindowID string `json:"window_id" jsonschema:"Window id from list_windows"`
	X        int    `json:"x" jsonschema:"New left edge in pixels"`
	Y        int    `json:"y" jsonschema:"New top edge in pixels"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	WindowID string `json:"window_id" jsonschema:"Window id from list_windows"`
	Width    int    `json:"width" jsonschema:"New width in pixels; raised to the window's minimum"`
	Height   int    `json:"height" jsonschema:"New height in pixels; raised to the window's minimum"`
}

func windowInfo(w wm.Window) WindowInfo {
	return WindowInfo{
		ID:        w.ID,
		AppKey:    w.AppKey,
		Title:     w.Title,
		X:         w.Bounds.X,
		Y:         w.Bounds.Y,
		Width:     w.Bounds.Width,
		Height:    w.Bounds.Height,
		ZIndex:    w.ZIndex,
		Active:    w.Active,
		Minimized: w.Minimized,
		Maximized: w.Maximized,
	}
}
