package ipc

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/runtimepath"
	"github.com/1broseidon/deskwm/internal/session"
)

// MonitorSource lists the physical monitors; it may be nil.
type MonitorSource func() ([]MonitorInfo, error)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	sess         *session.Session
	monitors     MonitorSource
	loadConfig   func() (*config.Config, error)
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the runtime socket path.
func NewServer(sess *session.Session, monitors MonitorSource, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, sess, monitors, reloadChan), nil
}

// NewServerAt creates a server bound to socketPath.
func NewServerAt(socketPath string, sess *session.Session, monitors MonitorSource, reloadChan chan struct{}) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		sess:       sess,
		monitors:   monitors,
		loadConfig: config.Load,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}
}

// SetConfigLoader replaces the loader RELOAD validates with. Call it before
// Start.
func (s *Server) SetConfigLoader(load func() (*config.Config, error)) {
	s.loadConfig = load
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandListApps:
		return okResponse(ListApps(s.sess))
	case CommandListWindows:
		return okResponse(ListWindows(s.sess))
	case CommandOpen:
		return s.handleOpen(req)
	case CommandClose:
		return s.handleWindowOp(req, s.sess.Close)
	case CommandMinimize:
		return s.handleWindowOp(req, s.sess.Minimize)
	case CommandToggleMaximize:
		return s.handleWindowOp(req, s.sess.ToggleMaximize)
	case CommandFocus:
		return s.handleWindowOp(req, s.sess.Focus)
	case CommandMounted:
		return s.handleWindowOp(req, s.sess.Mounted)
	case CommandMove:
		return s.handleMove(req)
	case CommandResize:
		return s.handleResize(req)
	case CommandPointer:
		return s.handlePointer(req)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload validates the config on disk and signals the daemon.
func (s *Server) handleReload() *Response {
	if _, err := s.loadConfig(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to load config: %v", err))
	}

	select {
	case s.reloadChan <- struct{}{}:
	default:
		// A reload is already pending.
	}

	return okResponse(nil)
}

func (s *Server) handleGetStatus() *Response {
	st := s.sess.Status()
	return okResponse(StatusData{
		WindowCount:   st.WindowCount,
		VisibleCount:  st.VisibleCount,
		ActiveID:      st.ActiveID,
		Viewport:      st.Viewport,
		Gesture:       st.Gesture,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	})
}

func (s *Server) handleGetMonitors() *Response {
	if s.monitors == nil {
		return NewErrorResponse("Monitor information is not available")
	}
	monitors, err := s.monitors()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}
	return okResponse(MonitorsData{Monitors: monitors})
}

func (s *Server) handleOpen(req *Request) *Response {
	var p OpenPayload
	if err := decodePayload(req, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	w, result, err := s.sess.Open(p.AppKey, p.Overrides)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to open %q: %v", p.AppKey, err))
	}
	return okResponse(OpenData{Window: w, Result: result})
}

func (s *Server) handleWindowOp(req *Request, op func(id string) error) *Response {
	var p WindowPayload
	if err := decodePayload(req, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	if err := op(p.WindowID); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.windowResponse(p.WindowID)
}

func (s *Server) handleMove(req *Request) *Response {
	var p MovePayload
	if err := decodePayload(req, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	if err := s.sess.Move(p.WindowID, p.X, p.Y); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.windowResponse(p.WindowID)
}

func (s *Server) handleResize(req *Request) *Response {
	var p ResizePayload
	if err := decodePayload(req, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	if err := s.sess.Resize(p.WindowID, p.Width, p.Height); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.windowResponse(p.WindowID)
}

func (s *Server) handlePointer(req *Request) *Response {
	var p PointerPayload
	if err := decodePayload(req, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	res, err := s.sess.Pointer(p)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return okResponse(res)
}

// windowResponse returns the window after an operation. Closed windows
// answer with no data.
func (s *Server) windowResponse(id string) *Response {
	w, err := s.sess.Window(id)
	if err != nil {
		return okResponse(nil)
	}
	return okResponse(w)
}

func okResponse(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
