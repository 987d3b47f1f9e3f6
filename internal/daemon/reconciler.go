// Package daemon holds the background loops the deskwm daemon runs next to
// its IPC and HTTP servers.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/deskwm/internal/geom"
)

// ViewportSource returns the current display viewport.
type ViewportSource func(ctx context.Context) (geom.Viewport, error)

// ViewportSink receives a changed viewport and reports whether it applied.
type ViewportSink func(v geom.Viewport) bool

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-reads the display size and pushes changes into
// the window manager, so monitor hot-plugs and panel changes are picked up.
type Reconciler struct {
	interval time.Duration
	source   ViewportSource
	sink     ViewportSink
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, source ViewportSource, sink ViewportSink) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reconciler{
		interval: interval,
		source:   source,
		sink:     sink,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)
	r.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	v, err := r.source(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("reconciler: failed to read viewport", "error", err)
		}
		return
	}
	if v.Width <= 0 || v.Height <= 0 {
		r.logger.Warn("reconciler: ignoring empty viewport", "width", v.Width, "height", v.Height)
		return
	}
	if r.sink(v) {
		r.logger.Info("reconciler: viewport changed", "width", v.Width, "height", v.Height)
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}
