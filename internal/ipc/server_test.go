package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/session"
	"github.com/1broseidon/deskwm/internal/wm"
)

func startServer(t *testing.T, monitors MonitorSource) (*Server, *Client, *session.Session, chan struct{}) {
	t.Helper()

	cfg := config.DefaultConfig()
	n := 0
	sess, err := session.New(cfg, session.Options{NewID: func(k string) string {
		n++
		return fmt.Sprintf("%s-%d", k, n)
	}})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	t.Cleanup(sess.Shutdown)

	dir, err := os.MkdirTemp("", "dwm")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	reload := make(chan struct{}, 1)
	srv := NewServerAt(filepath.Join(dir, "d.sock"), sess, monitors, reload)
	srv.loadConfig = func() (*config.Config, error) { return config.DefaultConfig(), nil }
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(srv.Stop)

	return srv, NewClientAt(srv.SocketPath()), sess, reload
}

func TestSocketPermissions(t *testing.T) {
	srv, _, _, _ := startServer(t, nil)
	info, err := os.Stat(srv.SocketPath())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("socket mode = %o, want 0600", perm)
	}
}

func TestOpenAndListWindows(t *testing.T) {
	_, client, _, _ := startServer(t, nil)

	opened, err := client.Open("about", wm.Overrides{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if opened.Result != wm.OpenCreated {
		t.Errorf("Result = %q, want created", opened.Result)
	}
	if opened.Window.ID != "about-1" || !opened.Window.Active || opened.Window.ZIndex != 10 {
		t.Errorf("unexpected window %+v", opened.Window)
	}

	again, err := client.Open("about", wm.Overrides{})
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	if again.Result != wm.OpenFocused || again.Window.ID != "about-1" {
		t.Errorf("second Open = %+v", again)
	}

	if _, err := client.Open("projects", wm.Overrides{}); err != nil {
		t.Fatal(err)
	}

	list, err := client.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows() error = %v", err)
	}
	if len(list.Windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(list.Windows))
	}
	if list.Windows[1].ID != "projects-2" || list.ActiveID != "projects-2" {
		t.Errorf("stack = %+v active = %q", list.Windows, list.ActiveID)
	}
}

func TestOpenUnknownApp(t *testing.T) {
	_, client, _, _ := startServer(t, nil)
	_, err := client.Open("nope", wm.Overrides{})
	if err == nil || !strings.Contains(err.Error(), "unknown app") {
		t.Fatalf("Open(nope) error = %v, want unknown app", err)
	}
}

func TestWindowCommands(t *testing.T) {
	_, client, sess, _ := startServer(t, nil)
	opened, err := client.Open("about", wm.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	id := opened.Window.ID

	w, err := client.Move(id, 12, 34)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if w.Bounds.X != 12 || w.Bounds.Y != 34 {
		t.Errorf("bounds after move = %+v", w.Bounds)
	}

	w, err = client.Resize(id, 10, 10)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if w.Bounds.Width != w.MinSize.Width || w.Bounds.Height != w.MinSize.Height {
		t.Errorf("resize below minimum = %+v, min %+v", w.Bounds, w.MinSize)
	}

	w, err = client.ToggleMaximize(id)
	if err != nil || !w.Maximized {
		t.Fatalf("ToggleMaximize() = %+v, %v", w, err)
	}

	w, err = client.Minimize(id)
	if err != nil || !w.Minimized || w.Active {
		t.Fatalf("Minimize() = %+v, %v", w, err)
	}

	if _, err := client.Focus(id); err != nil {
		t.Fatalf("Focus() error = %v", err)
	}

	if err := client.Close(id); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := len(sess.Snapshot().Windows); got != 0 {
		t.Errorf("%d windows left after close", got)
	}

	if err := client.Close(id); err == nil || !strings.Contains(err.Error(), "window not found") {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestMountedCommand(t *testing.T) {
	_, client, _, _ := startServer(t, nil)
	opened, err := client.Open("about", wm.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if !opened.Window.FocusedOnMount {
		t.Fatalf("new window not flagged: %+v", opened.Window)
	}

	w, err := client.Mounted(opened.Window.ID)
	if err != nil {
		t.Fatalf("Mounted() error = %v", err)
	}
	if w.FocusedOnMount {
		t.Errorf("flag still set after Mounted(): %+v", w)
	}

	if _, err := client.Mounted("ghost"); err == nil || !strings.Contains(err.Error(), "window not found") {
		t.Errorf("Mounted(ghost) error = %v", err)
	}
}

func TestPointerCommand(t *testing.T) {
	_, client, _, _ := startServer(t, nil)
	opened, err := client.Open("about", wm.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	start := opened.Window.Bounds

	res, err := client.Pointer(PointerPayload{Phase: session.PhaseTitleDown, WindowID: opened.Window.ID, X: 100, Y: 100, Clicks: 1})
	if err != nil {
		t.Fatalf("title_down error = %v", err)
	}
	if res.Gesture == nil || res.Gesture.WindowID != opened.Window.ID {
		t.Fatalf("gesture = %+v", res.Gesture)
	}

	if _, err := client.Pointer(PointerPayload{Phase: session.PhaseMove, X: 90, Y: 120}); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Pointer(PointerPayload{Phase: session.PhaseUp}); err != nil {
		t.Fatal(err)
	}

	list, err := client.ListWindows()
	if err != nil {
		t.Fatal(err)
	}
	got := list.Windows[0]
	if got.Bounds.X != start.X-10 || got.Bounds.Y != start.Y+20 || got.Dragging {
		t.Errorf("after drag = %+v, start %+v", got, start)
	}

	if _, err := client.Pointer(PointerPayload{Phase: "bogus"}); err == nil {
		t.Error("bogus phase accepted")
	}
}

func TestStatusAndApps(t *testing.T) {
	_, client, _, _ := startServer(t, nil)
	if _, err := client.Open("contact", wm.Overrides{}); err != nil {
		t.Fatal(err)
	}

	st, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if !st.DaemonRunning || st.WindowCount != 1 || st.ActiveID != "contact-1" {
		t.Errorf("status = %+v", st)
	}
	if st.Viewport.TaskbarHeight != 48 {
		t.Errorf("taskbar = %d", st.Viewport.TaskbarHeight)
	}

	apps, err := client.ListApps()
	if err != nil {
		t.Fatalf("ListApps() error = %v", err)
	}
	if len(apps.Apps) == 0 || apps.Apps[0].Key != "projects" {
		t.Errorf("apps = %+v", apps.Apps)
	}
}

func TestReloadSignalsOnce(t *testing.T) {
	_, client, _, reload := startServer(t, nil)
	if err := client.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	// Second reload does not block while one is pending.
	if err := client.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	select {
	case <-reload:
	default:
		t.Fatal("reload not signalled")
	}
}

func TestReloadReportsConfigErrors(t *testing.T) {
	srv, client, _, reload := startServer(t, nil)
	srv.loadConfig = func() (*config.Config, error) { return nil, errors.New("bad yaml") }
	err := client.Reload()
	if err == nil || !strings.Contains(err.Error(), "bad yaml") {
		t.Fatalf("Reload() error = %v", err)
	}
	if len(reload) != 0 {
		t.Error("reload signalled for invalid config")
	}
}

func TestGetMonitors(t *testing.T) {
	_, client, _, _ := startServer(t, nil)
	if _, err := client.GetMonitors(); err == nil {
		t.Error("GetMonitors() without a source should fail")
	}

	_, client, _, _ = startServer(t, func() ([]MonitorInfo, error) {
		return []MonitorInfo{{ID: 0, Name: "eDP-1", Width: 1920, Height: 1080}}, nil
	})
	data, err := client.GetMonitors()
	if err != nil {
		t.Fatalf("GetMonitors() error = %v", err)
	}
	if len(data.Monitors) != 1 || data.Monitors[0].Name != "eDP-1" {
		t.Errorf("monitors = %+v", data.Monitors)
	}
}

func TestInvalidRequests(t *testing.T) {
	srv, _, _, _ := startServer(t, nil)

	send := func(line string) string {
		t.Helper()
		conn, err := net.Dial("unix", srv.SocketPath())
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			t.Fatal(err)
		}
		buf := make([]byte, 4096)
		n, _ := conn.Read(buf)
		return string(buf[:n])
	}

	if got := send("not json"); !strings.Contains(got, `"status":"ERROR"`) || !strings.Contains(got, "Invalid request") {
		t.Errorf("garbage response = %s", got)
	}
	if got := send(`{"command":"DANCE"}`); !strings.Contains(got, "Unknown command") {
		t.Errorf("unknown command response = %s", got)
	}
	if got := send(`{"command":"MOVE"}`); !strings.Contains(got, "requires a payload") {
		t.Errorf("missing payload response = %s", got)
	}
}
