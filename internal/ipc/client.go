package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/deskwm/internal/runtimepath"
	"github.com/1broseidon/deskwm/internal/wm"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the daemon listening on socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// ListApps returns the launchable apps.
func (c *Client) ListApps() (*AppsData, error) {
	var data AppsData
	if err := c.call(CommandListApps, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListWindows returns the open windows back to front.
func (c *Client) ListWindows() (*WindowsData, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Open focuses, restores or creates the window for appKey.
func (c *Client) Open(appKey string, ov wm.Overrides) (*OpenData, error) {
	var data OpenData
	if err := c.call(CommandOpen, OpenPayload{AppKey: appKey, Overrides: ov}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Close closes a window.
func (c *Client) Close(windowID string) error {
	return c.call(CommandClose, WindowPayload{WindowID: windowID}, nil)
}

// Minimize minimizes a window and returns its new state.
func (c *Client) Minimize(windowID string) (*wm.Window, error) {
	return c.windowCall(CommandMinimize, WindowPayload{WindowID: windowID})
}

// ToggleMaximize flips a window's maximized state.
func (c *Client) ToggleMaximize(windowID string) (*wm.Window, error) {
	return c.windowCall(CommandToggleMaximize, WindowPayload{WindowID: windowID})
}

// Focus brings a window to front and activates it.
func (c *Client) Focus(windowID string) (*wm.Window, error) {
	return c.windowCall(CommandFocus, WindowPayload{WindowID: windowID})
}

// Mounted reports that the caller has drawn the window for the first time.
func (c *Client) Mounted(windowID string) (*wm.Window, error) {
	return c.windowCall(CommandMounted, WindowPayload{WindowID: windowID})
}

// Move sets a window's origin.
func (c *Client) Move(windowID string, x, y int) (*wm.Window, error) {
	return c.windowCall(CommandMove, MovePayload{WindowID: windowID, X: x, Y: y})
}

// Resize sets a window's size.
func (c *Client) Resize(windowID string, width, height int) (*wm.Window, error) {
	return c.windowCall(CommandResize, ResizePayload{WindowID: windowID, Width: width, Height: height})
}

// Pointer forwards a pointer event to the daemon's surface controller.
func (c *Client) Pointer(ev PointerPayload) (*PointerData, error) {
	var data PointerData
	if err := c.call(CommandPointer, ev, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) windowCall(command CommandType, payload any) (*wm.Window, error) {
	var w wm.Window
	if err := c.call(command, payload, &w); err != nil {
		return nil, err
	}
	return &w, nil
}
