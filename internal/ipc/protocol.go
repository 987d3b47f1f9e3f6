package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/session"
	"github.com/1broseidon/deskwm/internal/surface"
	"github.com/1broseidon/deskwm/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandGetMonitors    CommandType = "GET_MONITORS"
	CommandListApps       CommandType = "LIST_APPS"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandOpen           CommandType = "OPEN"
	CommandClose          CommandType = "CLOSE"
	CommandMinimize       CommandType = "MINIMIZE"
	CommandToggleMaximize CommandType = "TOGGLE_MAXIMIZE"
	CommandFocus          CommandType = "FOCUS"
	CommandMove           CommandType = "MOVE"
	CommandResize         CommandType = "RESIZE"
	CommandPointer        CommandType = "POINTER"
	CommandMounted        CommandType = "MOUNTED"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WindowCount   int              `json:"window_count"`
	VisibleCount  int              `json:"visible_count"`
	ActiveID      string           `json:"active_id,omitempty"`
	Viewport      geom.Viewport    `json:"viewport"`
	Gesture       *surface.Gesture `json:"gesture,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	DaemonRunning bool             `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// AppInfo describes one registry entry.
type AppInfo struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	DefaultSize geom.Size `json:"default_size"`
	MinSize     geom.Size `json:"min_size"`
	Resizable   bool      `json:"resizable"`
	Pinned      bool      `json:"pinned,omitempty"`
	Hidden      bool      `json:"hidden,omitempty"`
}

type AppsData struct {
	Apps []AppInfo `json:"apps"`
}

// WindowsData is returned by LIST_WINDOWS; windows are stacked back to front.
type WindowsData struct {
	Windows  []wm.Window   `json:"windows"`
	ActiveID string        `json:"active_id,omitempty"`
	Viewport geom.Viewport `json:"viewport"`
}

type OpenPayload struct {
	AppKey    string       `json:"app_key"`
	Overrides wm.Overrides `json:"overrides,omitempty"`
}

type OpenData struct {
	Window wm.Window     `json:"window"`
	Result wm.OpenResult `json:"result"`
}

// WindowPayload targets one window by id.
type WindowPayload struct {
	WindowID string `json:"window_id"`
}

type MovePayload struct {
	WindowID string `json:"window_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

type ResizePayload struct {
	WindowID string `json:"window_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// PointerPayload is a pointer event forwarded from a remote shell.
type PointerPayload = session.PointerEvent

// PointerData is the controller's answer to a POINTER request.
type PointerData = session.PointerResult

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// decodePayload unmarshals a request payload into v.
func decodePayload(req *Request, v any) error {
	if len(req.Payload) == 0 {
		return fmt.Errorf("%s requires a payload", req.Command)
	}
	if err := json.Unmarshal(req.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", req.Command, err)
	}
	return nil
}
