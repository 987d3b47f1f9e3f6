package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/ipc"
	"github.com/1broseidon/deskwm/internal/session"
	"github.com/1broseidon/deskwm/internal/surface"
	"github.com/1broseidon/deskwm/internal/wm"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *session.Session) {
	t.Helper()
	return newTestServerWith(t, Options{})
}

func newTestServerWith(t *testing.T, opts Options) (*Server, *httptest.Server, *session.Session) {
	t.Helper()
	n := 0
	sess, err := session.New(config.DefaultConfig(), session.Options{NewID: func(k string) string {
		n++
		return fmt.Sprintf("%s-%d", k, n)
	}})
	require.NoError(t, err)
	t.Cleanup(sess.Shutdown)

	srv := New(sess, opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, ts, sess
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestOpenAndListWindows(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/windows", ipc.OpenPayload{AppKey: "about"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	opened := decode[ipc.OpenData](t, resp)
	assert.Equal(t, "about-1", opened.Window.ID)
	assert.Equal(t, wm.OpenCreated, opened.Result)

	resp = do(t, ts, http.MethodPost, "/api/windows", ipc.OpenPayload{AppKey: "about"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, wm.OpenFocused, decode[ipc.OpenData](t, resp).Result)

	do(t, ts, http.MethodPost, "/api/windows", ipc.OpenPayload{AppKey: "projects"})

	list := decode[ipc.WindowsData](t, do(t, ts, http.MethodGet, "/api/windows", nil))
	require.Len(t, list.Windows, 2)
	assert.Equal(t, "projects-2", list.ActiveID)
	assert.Equal(t, "projects-2", list.Windows[1].ID)
}

func TestOpen_Errors(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/windows", ipc.OpenPayload{AppKey: "nope"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/windows", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/windows", map[string]string{"bogus": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
}

func TestWindowOperations(t *testing.T) {
	_, ts, sess := newTestServer(t)
	w, _, err := sess.Open("about", wm.Overrides{})
	require.NoError(t, err)
	path := "/api/windows/" + w.ID

	resp := do(t, ts, http.MethodPost, path+"/maximize", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[wm.Window](t, resp).Maximized)

	resp = do(t, ts, http.MethodPost, path+"/maximize", nil)
	assert.False(t, decode[wm.Window](t, resp).Maximized)

	resp = do(t, ts, http.MethodPost, path+"/move", moveRequest{X: 40, Y: 30})
	got := decode[wm.Window](t, resp)
	assert.Equal(t, 40, got.Bounds.X)
	assert.Equal(t, 30, got.Bounds.Y)

	resp = do(t, ts, http.MethodPost, path+"/resize", resizeRequest{Width: 1, Height: 1})
	got = decode[wm.Window](t, resp)
	assert.Equal(t, got.MinSize.Width, got.Bounds.Width)
	assert.Equal(t, got.MinSize.Height, got.Bounds.Height)

	resp = do(t, ts, http.MethodPost, path+"/minimize", nil)
	assert.True(t, decode[wm.Window](t, resp).Minimized)

	resp = do(t, ts, http.MethodPost, path+"/focus", nil)
	assert.False(t, decode[wm.Window](t, resp).Minimized)

	resp = do(t, ts, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, ts, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, sess.Snapshot().Windows)

	resp = do(t, ts, http.MethodPost, path+"/minimize", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, ts, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, ts, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPointerEndpoint(t *testing.T) {
	_, ts, sess := newTestServer(t)
	w, _, err := sess.Open("about", wm.Overrides{})
	require.NoError(t, err)

	resp := do(t, ts, http.MethodPost, "/api/pointer", session.PointerEvent{Phase: session.PhaseTitleDown, WindowID: w.ID, X: 100, Y: 100, Clicks: 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[session.PointerResult](t, resp)
	assert.True(t, res.Consumed)
	require.NotNil(t, res.Gesture)

	do(t, ts, http.MethodPost, "/api/pointer", session.PointerEvent{Phase: session.PhaseMove, X: 90, Y: 120})
	do(t, ts, http.MethodPost, "/api/pointer", session.PointerEvent{Phase: session.PhaseUp})

	got, err := sess.Window(w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.Bounds.X-10, got.Bounds.X)
	assert.Equal(t, w.Bounds.Y+20, got.Bounds.Y)

	resp = do(t, ts, http.MethodPost, "/api/pointer", session.PointerEvent{Phase: "bogus"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthStatusAndMetrics(t *testing.T) {
	_, ts, sess := newTestServer(t)
	_, _, err := sess.Open("about", wm.Overrides{})
	require.NoError(t, err)

	resp := do(t, ts, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	st := decode[session.Status](t, do(t, ts, http.MethodGet, "/api/status", nil))
	assert.Equal(t, 1, st.WindowCount)
	assert.Equal(t, "about-1", st.ActiveID)

	apps := decode[ipc.AppsData](t, do(t, ts, http.MethodGet, "/api/apps", nil))
	assert.NotEmpty(t, apps.Apps)

	resp = do(t, ts, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), "deskwm_windows_open 1")
	assert.Contains(t, string(text), `deskwm_events_total{kind="opened"} 1`)
	assert.Contains(t, string(text), `deskwm_http_requests_total{code="200",route="/api/status"} 1`)
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func writeMessage(t *testing.T, conn *websocket.Conn, in Inbound) {
	t.Helper()
	data, err := json.Marshal(in)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func TestWebsocket_SnapshotThenEvents(t *testing.T) {
	_, ts, sess := newTestServer(t)
	_, _, err := sess.Open("about", wm.Overrides{})
	require.NoError(t, err)

	conn := dialWS(t, ts)
	first := readMessage(t, conn)
	require.Equal(t, MessageSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Len(t, first.Snapshot.Windows, 1)

	_, _, err = sess.Open("projects", wm.Overrides{})
	require.NoError(t, err)

	ev := readMessage(t, conn)
	assert.Equal(t, MessageEvent, ev.Type)
	assert.Equal(t, wm.EventOpened, ev.Kind)
	assert.Equal(t, "projects-2", ev.WindowID)
	require.NotNil(t, ev.Snapshot)
	assert.Greater(t, ev.Snapshot.Seq, first.Snapshot.Seq)
}

func TestWebsocket_PointerMessages(t *testing.T) {
	_, ts, sess := newTestServer(t)
	w, _, err := sess.Open("about", wm.Overrides{})
	require.NoError(t, err)

	conn := dialWS(t, ts)
	require.Equal(t, MessageSnapshot, readMessage(t, conn).Type)

	writeMessage(t, conn, Inbound{Type: MessagePointer, Pointer: &session.PointerEvent{
		Phase: session.PhaseTitleDown, WindowID: w.ID, X: 100, Y: 100, Clicks: 1,
	}})

	// The gesture event is broadcast before the direct reply.
	var reply Message
	for reply.Type != MessagePointer {
		reply = readMessage(t, conn)
	}
	require.NotNil(t, reply.Pointer)
	assert.Equal(t, w.ID, reply.Pointer.WindowID)
	assert.True(t, reply.Pointer.Consumed)

	writeMessage(t, conn, Inbound{Type: "dance"})
	var errMsg Message
	for errMsg.Type != MessageError {
		errMsg = readMessage(t, conn)
	}
	assert.Contains(t, errMsg.Error, "dance")
}

func readPointerReply(t *testing.T, conn *websocket.Conn) session.PointerResult {
	t.Helper()
	for {
		msg := readMessage(t, conn)
		if msg.Type == MessagePointer {
			require.NotNil(t, msg.Pointer)
			return *msg.Pointer
		}
	}
}

func TestMounted_HTTPAndWebsocket(t *testing.T) {
	_, ts, sess := newTestServer(t)
	a, _, err := sess.Open("about", wm.Overrides{})
	require.NoError(t, err)
	b, _, err := sess.Open("projects", wm.Overrides{})
	require.NoError(t, err)
	require.True(t, a.FocusedOnMount)

	resp := do(t, ts, http.MethodPost, "/api/windows/"+a.ID+"/mounted", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[wm.Window](t, resp).FocusedOnMount)

	conn := dialWS(t, ts)
	require.Equal(t, MessageSnapshot, readMessage(t, conn).Type)
	writeMessage(t, conn, Inbound{Type: MessageMounted, WindowID: b.ID})
	for {
		msg := readMessage(t, conn)
		if msg.Type == MessageEvent && msg.Kind == wm.EventMounted {
			assert.Equal(t, b.ID, msg.WindowID)
			break
		}
	}
	got, err := sess.Window(b.ID)
	require.NoError(t, err)
	assert.False(t, got.FocusedOnMount)

	writeMessage(t, conn, Inbound{Type: MessageMounted, WindowID: "ghost"})
	var errMsg Message
	for errMsg.Type != MessageError {
		errMsg = readMessage(t, conn)
	}
	assert.Contains(t, errMsg.Error, "ghost")

	resp = do(t, ts, http.MethodPost, "/api/windows/ghost/mounted", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocket_DisconnectMidDragReleasesGesture(t *testing.T) {
	_, ts, sess := newTestServer(t)
	w, _, err := sess.Open("about", wm.Overrides{})
	require.NoError(t, err)
	other, _, err := sess.Open("projects", wm.Overrides{})
	require.NoError(t, err)

	conn := dialWS(t, ts)
	require.Equal(t, MessageSnapshot, readMessage(t, conn).Type)

	start := session.PointerEvent{Phase: session.PhaseTitleDown, WindowID: w.ID, X: float64(w.Bounds.X + 10), Y: float64(w.Bounds.Y + 5), Clicks: 1}
	writeMessage(t, conn, Inbound{Type: MessagePointer, Pointer: &start})
	require.Equal(t, surface.OutcomeStarted, readPointerReply(t, conn).Outcome)

	move := session.PointerEvent{Phase: session.PhaseMove, X: start.X + 30, Y: start.Y + 30}
	writeMessage(t, conn, Inbound{Type: MessagePointer, Pointer: &move})
	require.NotNil(t, readPointerReply(t, conn).Gesture)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

	require.Eventually(t, func() bool {
		_, active := sess.Controller().Active()
		return !active
	}, 5*time.Second, 10*time.Millisecond)

	got, err := sess.Window(w.ID)
	require.NoError(t, err)
	assert.False(t, got.Dragging)
	assert.Equal(t, w.Bounds.X, got.Bounds.X)
	assert.Equal(t, w.Bounds.Y, got.Bounds.Y)

	res, err := sess.Pointer(session.PointerEvent{Phase: session.PhaseTitleDown, WindowID: other.ID, X: float64(other.Bounds.X + 10), Y: float64(other.Bounds.Y + 5), Clicks: 1})
	require.NoError(t, err)
	assert.Equal(t, surface.OutcomeStarted, res.Outcome)
}

func TestWebsocket_ThrottledMovesLandOnRelease(t *testing.T) {
	_, ts, sess := newTestServerWith(t, Options{PointerRate: 0.001, PointerBurst: 1})
	x, y, h := 300, 200, 400
	w, _, err := sess.Open("about", wm.Overrides{X: &x, Y: &y, Height: &h})
	require.NoError(t, err)

	conn := dialWS(t, ts)
	require.Equal(t, MessageSnapshot, readMessage(t, conn).Type)

	sx, sy := float64(x+10), float64(y+5)
	writeMessage(t, conn, Inbound{Type: MessagePointer, Pointer: &session.PointerEvent{
		Phase: session.PhaseTitleDown, WindowID: w.ID, X: sx, Y: sy, Clicks: 1,
	}})
	require.Equal(t, surface.OutcomeStarted, readPointerReply(t, conn).Outcome)

	for i := 1; i <= 100; i++ {
		writeMessage(t, conn, Inbound{Type: MessagePointer, Pointer: &session.PointerEvent{
			Phase: session.PhaseMove, X: sx - float64(i), Y: sy,
		}})
	}
	writeMessage(t, conn, Inbound{Type: MessagePointer, Pointer: &session.PointerEvent{
		Phase: session.PhaseUp, X: sx - 100, Y: sy,
	}})

	for {
		if res := readPointerReply(t, conn); res.Gesture == nil {
			break
		}
	}

	got, err := sess.Window(w.ID)
	require.NoError(t, err)
	assert.Equal(t, x-100, got.Bounds.X)
	assert.Equal(t, y, got.Bounds.Y)
	assert.False(t, got.Dragging)
}

type fakeConn struct {
	writes chan []byte
}

func (f *fakeConn) Write(ctx context.Context, _ websocket.MessageType, data []byte) error {
	select {
	case f.writes <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeConn) Close(websocket.StatusCode, string) error { return nil }

func (f *fakeConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	<-ctx.Done()
	return websocket.MessageText, nil, ctx.Err()
}

func TestHub_SkipsEventsCoveredBySnapshotAndDropsSlowClients(t *testing.T) {
	var clients atomic.Int32
	hub := NewHub(func(n int) { clients.Store(int32(n)) })

	c := hub.register(&fakeConn{writes: make(chan []byte, 1)}, func() wm.Snapshot { return wm.Snapshot{Seq: 5} })
	require.NotNil(t, c)
	assert.Equal(t, int32(1), clients.Load())

	hub.Broadcast(Message{Type: MessageEvent, Snapshot: &wm.Snapshot{Seq: 5}})
	assert.Len(t, c.send, 1, "stale event queued")

	for i := 0; i < wsSendBuffer; i++ {
		hub.Broadcast(Message{Type: MessageEvent, Snapshot: &wm.Snapshot{Seq: uint64(6 + i)}})
	}
	require.Eventually(t, func() bool { return clients.Load() == 0 }, time.Second, 10*time.Millisecond)
	assert.Zero(t, hub.Len())

	hub.Close()
	assert.Nil(t, hub.register(&fakeConn{}, func() wm.Snapshot { return wm.Snapshot{} }))
}
