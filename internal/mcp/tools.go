package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskwm/internal/wm"
)

func (s *Server) handleListApps(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListAppsInput) (*mcpsdk.CallToolResult, ListAppsOutput, error) {
	apps, err := s.desktop.ListApps()
	if err != nil {
		return nil, ListAppsOutput{}, err
	}
	windows, err := s.desktop.ListWindows()
	if err != nil {
		return nil, ListAppsOutput{}, err
	}
	open := make(map[string]bool, len(windows.Windows))
	for _, w := range windows.Windows {
		open[w.AppKey] = true
	}

	out := ListAppsOutput{Apps: make([]AppInfo, 0, len(apps.Apps))}
	for _, a := range apps.Apps {
		out.Apps = append(out.Apps, AppInfo{
			Key:         a.Key,
			Name:        a.Name,
			Description: a.Description,
			Resizable:   a.Resizable,
			Pinned:      a.Pinned,
			Open:        open[a.Key],
		})
	}
	return nil, out, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.desktop.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{ActiveID: data.ActiveID, Windows: make([]WindowInfo, 0, len(data.Windows))}
	for _, w := range data.Windows {
		if args.VisibleOnly && w.Minimized {
			continue
		}
		out.Windows = append(out.Windows, windowInfo(w))
	}
	return nil, out, nil
}

func (s *Server) handleOpenWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, OpenWindowOutput, error) {
	key := strings.TrimSpace(args.AppKey)
	if key == "" {
		return nil, OpenWindowOutput{}, fmt.Errorf("app_key is required")
	}
	for name, v := range map[string]*int{"width": args.Width, "height": args.Height} {
		if v != nil && *v <= 0 {
			return nil, OpenWindowOutput{}, fmt.Errorf("%s must be positive, got %d", name, *v)
		}
	}

	data, err := s.desktop.Open(key, wm.Overrides{X: args.X, Y: args.Y, Width: args.Width, Height: args.Height})
	if err != nil {
		s.logger.Debug("open_window failed", "app", key, "error", err)
		return nil, OpenWindowOutput{}, err
	}
	s.logger.Debug("open_window", "app", key, "id", data.Window.ID, "result", data.Result)
	return nil, OpenWindowOutput{Result: string(data.Result), Window: windowInfo(data.Window)}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	id, err := requireID(args.WindowID)
	if err != nil {
		return nil, CloseWindowOutput{}, err
	}
	if err := s.desktop.Close(id); err != nil {
		return nil, CloseWindowOutput{}, err
	}
	out := CloseWindowOutput{Closed: id}
	if data, err := s.desktop.ListWindows(); err == nil {
		out.ActiveID = data.ActiveID
	}
	return nil, out, nil
}

func (s *Server) handleMinimizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp(args.WindowID, s.desktop.Minimize)
}

func (s *Server) handleToggleMaximize(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp(args.WindowID, s.desktop.ToggleMaximize)
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp(args.WindowID, s.desktop.Focus)
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp(args.WindowID, func(id string) (*wm.Window, error) {
		return s.desktop.Move(id, args.X, args.Y)
	})
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if args.Width <= 0 || args.Height <= 0 {
		return nil, WindowOutput{}, fmt.Errorf("width and height must be positive, got %dx%d", args.Width, args.Height)
	}
	return s.windowOp(args.WindowID, func(id string) (*wm.Window, error) {
		return s.desktop.Resize(id, args.Width, args.Height)
	})
}

func (s *Server) windowOp(rawID string, op func(id string) (*wm.Window, error)) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id, err := requireID(rawID)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	w, err := op(id)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if w == nil {
		return nil, WindowOutput{}, fmt.Errorf("window %q no longer exists", id)
	}
	return nil, WindowOutput{Window: windowInfo(*w)}, nil
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("window_id is required")
	}
	return id, nil
}
