// Package httpapi exposes a session over HTTP and streams its window state
// to websocket clients.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"

	"github.com/1broseidon/deskwm/internal/ipc"
	"github.com/1broseidon/deskwm/internal/session"
	"github.com/1broseidon/deskwm/internal/surface"
	"github.com/1broseidon/deskwm/internal/wm"
)

const shutdownTimeout = 5 * time.Second

// Options configure a Server.
type Options struct {
	Listen string
	Logger *slog.Logger
	// OriginPatterns are extra hosts allowed to open websockets. Same-origin
	// and origin-less clients are always accepted.
	OriginPatterns []string
	// PointerRate caps websocket pointer moves per second per client.
	PointerRate  float64
	PointerBurst int
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.PointerRate <= 0 {
		o.PointerRate = 120
	}
	if o.PointerBurst <= 0 {
		o.PointerBurst = 30
	}
	return o
}

// Server is the HTTP shell transport for one session.
type Server struct {
	sess        *session.Session
	opts        Options
	logger      *slog.Logger
	hub         *Hub
	metrics     *Metrics
	router      chi.Router
	unsubscribe func()
}

// New builds the router and subscribes to sess. Call Close when done.
func New(sess *session.Session, opts Options) *Server {
	opts = opts.withDefaults()
	s := &Server{
		sess:    sess,
		opts:    opts,
		logger:  opts.Logger,
		metrics: NewMetrics(),
	}
	s.hub = NewHub(func(n int) { s.metrics.wsClients.Set(float64(n)) })
	s.metrics.ObserveSnapshot(sess.Snapshot())
	s.unsubscribe = sess.Manager().Subscribe(s.onEvent)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(s.metrics.middleware)

	router.Get("/healthz", s.handleHealth)
	router.Get("/ws", s.handleWS)
	router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/apps", s.handleApps)
		r.Get("/windows", s.handleWindows)
		r.Post("/windows", s.handleOpen)
		r.Get("/windows/{id}", s.handleWindow)
		r.Delete("/windows/{id}", s.handleClose)
		r.Post("/windows/{id}/minimize", s.windowOp(s.sess.Minimize))
		r.Post("/windows/{id}/maximize", s.windowOp(s.sess.ToggleMaximize))
		r.Post("/windows/{id}/focus", s.windowOp(s.sess.Focus))
		r.Post("/windows/{id}/mounted", s.windowOp(s.sess.Mounted))
		r.Post("/windows/{id}/move", s.handleMove)
		r.Post("/windows/{id}/resize", s.handleResize)
		r.Post("/pointer", s.handlePointer)
	})
	return router
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Close detaches from the session and disconnects websocket clients.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.hub.Close()
}

// ListenAndServe serves on opts.Listen until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("http api listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) onEvent(ev wm.Event) {
	s.metrics.Observe(ev)
	snap := ev.Snapshot
	s.hub.Broadcast(Message{
		Type:      MessageEvent,
		Kind:      ev.Kind,
		WindowID:  ev.WindowID,
		Snapshot:  &snap,
		Timestamp: time.Now(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.sess.Status())
}

func (s *Server) handleApps(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ipc.ListApps(s.sess))
}

func (s *Server) handleWindows(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ipc.ListWindows(s.sess))
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req ipc.OpenPayload
	if status, err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, status, err)
		return
	}
	if req.AppKey == "" {
		respondError(w, http.StatusBadRequest, errors.New("app_key is required"))
		return
	}
	win, res, err := s.sess.Open(req.AppKey, req.Overrides)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	status := http.StatusOK
	if res == wm.OpenCreated {
		status = http.StatusCreated
	}
	respondJSON(w, status, ipc.OpenData{Window: win, Result: res})
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	win, err := s.sess.Window(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, win)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Close(chi.URLParam(r, "id")); err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// windowOp adapts a session operation on one window into a handler that
// answers with the window's new state.
func (s *Server) windowOp(op func(id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := op(id); err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		s.respondWindow(w, id)
	}
}

func (s *Server) respondWindow(w http.ResponseWriter, id string) {
	win, err := s.sess.Window(id)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, win)
}

type moveRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if status, err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, status, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.sess.Move(id, req.X, req.Y); err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	s.respondWindow(w, id)
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if status, err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, status, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.sess.Resize(id, req.Width, req.Height); err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	s.respondWindow(w, id)
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var ev session.PointerEvent
	if status, err := decodeJSONBody(w, r, &ev); err != nil {
		respondError(w, status, err)
		return
	}
	res, err := s.sess.Pointer(ev)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.opts.OriginPatterns,
	})
	if err != nil {
		s.logger.Debug("websocket accept failed", "error", err)
		return
	}
	conn.SetReadLimit(wsReadLimit)

	c := s.hub.register(conn, s.sess.Snapshot)
	if c == nil {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer s.hub.remove(c)

	startWSPing(ctx, conn)
	go func() {
		if err := c.writeLoop(ctx); err != nil {
			cancel()
		}
	}()

	s.readLoop(ctx, c)
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// readLoop handles client frames until the connection fails. Pointer moves
// beyond the client's rate are held back and only the newest is kept; it is
// applied before the next up so a gesture ends where the pointer was
// released. Downs, ups and cancels are never dropped. A gesture this client
// started is abandoned when the connection goes away.
func (s *Server) readLoop(ctx context.Context, c *client) {
	limiter := rate.NewLimiter(rate.Limit(s.opts.PointerRate), s.opts.PointerBurst)
	var (
		owned   *surface.Gesture
		pending *session.PointerEvent
	)
	defer func() {
		if owned != nil && s.sess.Controller().Abandon(*owned) {
			s.logger.Debug("abandoned gesture of closed websocket", "window", owned.WindowID)
		}
	}()

	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			s.hub.send(c, errorMessage(fmt.Errorf("invalid message: %w", err)))
			continue
		}

		switch in.Type {
		case MessageSnapshot:
			snap := s.sess.Snapshot()
			s.hub.send(c, Message{Type: MessageSnapshot, Snapshot: &snap, Timestamp: time.Now()})
		case MessagePointer:
			ev := in.Pointer
			if ev == nil {
				s.hub.send(c, errorMessage(errors.New("pointer message without pointer")))
				continue
			}
			switch ev.Phase {
			case session.PhaseMove:
				if !limiter.Allow() {
					s.metrics.pointerDropped.Inc()
					pending = ev
					continue
				}
			case session.PhaseUp:
				if pending != nil {
					_, _ = s.sess.Pointer(*pending)
				}
			}
			pending = nil

			res, err := s.sess.Pointer(*ev)
			if err != nil {
				s.hub.send(c, errorMessage(err))
				continue
			}
			if res.Outcome == surface.OutcomeStarted && res.Gesture != nil {
				g := *res.Gesture
				owned = &g
			}
			s.hub.send(c, Message{Type: MessagePointer, Pointer: &res, Timestamp: time.Now()})
		case MessageMounted:
			if err := s.sess.Mounted(in.WindowID); err != nil {
				s.hub.send(c, errorMessage(err))
			}
		default:
			s.hub.send(c, errorMessage(fmt.Errorf("unknown message type %q", in.Type)))
		}
	}
}

func errorMessage(err error) Message {
	return Message{Type: MessageError, Error: err.Error(), Timestamp: time.Now()}
}
