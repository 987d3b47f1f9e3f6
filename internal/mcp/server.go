package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskwm/internal/ipc"
	"github.com/1broseidon/deskwm/internal/wm"
)

const (
	ServerName    = "deskwm"
	ServerVersion = "0.1.0"
)

// Desktop is the daemon surface the tools drive. *ipc.Client implements it.
type Desktop interface {
	ListApps() (*ipc.AppsData, error)
	ListWindows() (*ipc.WindowsData, error)
	Open(appKey string, ov wm.Overrides) (*ipc.OpenData, error)
	Close(windowID string) error
	Minimize(windowID string) (*wm.Window, error)
	ToggleMaximize(windowID string) (*wm.Window, error)
	Focus(windowID string) (*wm.Window, error)
	Move(windowID string, x, y int) (*wm.Window, error)
	Resize(windowID string, width, height int) (*wm.Window, error)
}

// Server is the MCP server exposing desktop window tools.
type Server struct {
	mcpServer *mcpsdk.Server
	desktop   Desktop
	logger    *slog.Logger
}

// NewServer creates a new MCP server backed by desktop. logger may be nil.
func NewServer(desktop Desktop, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{desktop: desktop, logger: logger}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_apps",
		Description: "List the apps that can be opened as desktop windows, in launcher order, and whether each already has a window.",
	}, s.handleListApps)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List open windows back to front with their bounds, stacking order and state. The last entry is the front-most window.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open the window for an app. If the app already has a window it is focused (or restored when minimized) instead of opening a second one.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window. The front-most remaining visible window becomes active.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Minimize a window to the taskbar. Focus passes to the front-most remaining visible window.",
	}, s.handleMinimizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_maximize_window",
		Description: "Maximize a window to fill the work area, or restore it to its previous bounds when already maximized.",
	}, s.handleToggleMaximize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Bring a window to the front and make it active, restoring it first when minimized.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Set a window's top-left corner in pixels. Coordinates are applied as given.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Set a window's size in pixels. Sizes below the window's minimum are raised to the minimum.",
	}, s.handleResizeWindow)
}
