package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/1broseidon/deskwm/internal/wm"
)

// Metrics holds the desktop's Prometheus collectors on a private registry so
// several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	windowsOpen    prometheus.Gauge
	windowsVisible prometheus.Gauge
	gestureActive  prometheus.Gauge
	wsClients      prometheus.Gauge
	events         *prometheus.CounterVec
	requests       *prometheus.CounterVec
	pointerDropped prometheus.Counter
}

// NewMetrics registers every collector.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		windowsOpen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "deskwm",
			Name:      "windows_open",
			Help:      "Number of open windows, minimized included.",
		}),
		windowsVisible: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "deskwm",
			Name:      "windows_visible",
			Help:      "Number of windows that are not minimized.",
		}),
		gestureActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "deskwm",
			Name:      "gesture_active",
			Help:      "1 while a drag or resize is running.",
		}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "deskwm",
			Name:      "ws_clients",
			Help:      "Connected websocket clients.",
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deskwm",
			Name:      "events_total",
			Help:      "Window manager events by kind.",
		}, []string{"kind"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deskwm",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		pointerDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "deskwm",
			Name:      "pointer_moves_dropped_total",
			Help:      "Websocket pointer moves dropped by the rate limiter.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe records one manager event.
func (m *Metrics) Observe(ev wm.Event) {
	m.events.WithLabelValues(string(ev.Kind)).Inc()
	m.ObserveSnapshot(ev.Snapshot)
}

// ObserveSnapshot refreshes the window gauges.
func (m *Metrics) ObserveSnapshot(s wm.Snapshot) {
	visible, gesture := 0, 0
	for _, w := range s.Windows {
		if !w.Minimized {
			visible++
		}
		if w.InGesture() {
			gesture = 1
		}
	}
	m.windowsOpen.Set(float64(len(s.Windows)))
	m.windowsVisible.Set(float64(visible))
	m.gestureActive.Set(float64(gesture))
}

// middleware counts requests by their chi route pattern.
func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	})
}
