package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/deskwm/internal/actionlog"
	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/daemon"
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/hotkeys"
	"github.com/1broseidon/deskwm/internal/httpapi"
	"github.com/1broseidon/deskwm/internal/ipc"
	"github.com/1broseidon/deskwm/internal/platform"
	"github.com/1broseidon/deskwm/internal/runtimepath"
	"github.com/1broseidon/deskwm/internal/session"
	"github.com/1broseidon/deskwm/internal/wm"
	"github.com/1broseidon/deskwm/internal/x11"
)

// daemonActions routes hotkey actions into the session.
type daemonActions struct {
	sess *session.Session
}

func (a daemonActions) Open(appKey string) error {
	_, _, err := a.sess.Open(appKey, wm.Overrides{})
	return err
}

func (a daemonActions) CloseActive() error    { return a.sess.CloseActive() }
func (a daemonActions) MinimizeActive() error { return a.sess.MinimizeActive() }
func (a daemonActions) MaximizeActive() error { return a.sess.MaximizeActive() }

// ShowPalette runs "deskwm palette" as a child so the daemon never blocks
// on the launcher.
func (a daemonActions) ShowPalette() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to find executable: %w", err)
	}
	cmd := exec.Command(exe, "palette")
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch palette: %w", err)
	}
	go cmd.Wait()
	return nil
}

// viewportSource reads the display size for the reconciler. The current
// config decides the taskbar height and whether the display is consulted at
// all, so a reload to a static viewport is not undone by the next pass.
func viewportSource(p platform.ViewportProvider, sess *session.Session) daemon.ViewportSource {
	return func(ctx context.Context) (geom.Viewport, error) {
		cfg := sess.Config()
		if _, static := p.(platform.Static); static || cfg.Viewport.Source == config.ViewportStatic {
			return cfg.ViewportFallback(), nil
		}
		v, err := p.Viewport(ctx)
		if err != nil {
			return geom.Viewport{}, err
		}
		v.TaskbarHeight = cfg.TaskbarHeight
		return v, nil
	}
}

// watchPaths is the main config file plus every file it pulled in. The main
// file is watched even when it does not exist yet.
func watchPaths(main string, files []string) []string {
	out := []string{main}
	for _, f := range files {
		if f != main {
			out = append(out, f)
		}
	}
	return out
}

// monitorSource adapts the provider's displays to the IPC monitor list.
func monitorSource(p platform.ViewportProvider) ipc.MonitorSource {
	return func() ([]ipc.MonitorInfo, error) {
		displays, err := p.Displays()
		if err != nil {
			return nil, err
		}
		out := make([]ipc.MonitorInfo, 0, len(displays))
		for _, d := range displays {
			out = append(out, ipc.MonitorInfo{
				ID:     d.ID,
				Name:   d.Name,
				X:      d.Bounds.X,
				Y:      d.Bounds.Y,
				Width:  d.Bounds.Width,
				Height: d.Bounds.Height,
			})
		}
		return out, nil
	}
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the desktop session in the foreground. SIGHUP reloads the config.")
	}
	path := fs.String("path", "", "Config file path (default: ~/.config/deskwm/config.yaml)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config
	logger := newLogger(cfg.LogLevel)
	log.Printf("Configuration loaded (%d apps, viewport source: %s)", len(cfg.Apps), cfg.Viewport.Source)

	pidPath, err := runtimepath.PIDPath()
	if err != nil {
		log.Printf("Failed to resolve runtime dir: %v", err)
		return 1
	}
	releasePID, err := runtimepath.ClaimPID(pidPath)
	if err != nil {
		log.Printf("Failed to start: %v", err)
		return 1
	}
	defer releasePID()

	if env, err := platform.ResolveX11Env(cfg, os.Environ()); err != nil {
		logger.Info("no X11 display found", "error", err)
	} else if err := env.Apply(); err != nil {
		logger.Warn("failed to apply X11 environment", "error", err)
	}

	provider, err := platform.NewProvider(cfg, logger)
	if err != nil {
		log.Printf("Failed to open display: %v", err)
		return 1
	}
	defer provider.Close()

	actions, err := actionlog.New(actionlog.OptionsFromConfig(cfg))
	if err != nil {
		log.Printf("Warning: action log disabled: %v", err)
		actions = nil
	}
	defer actions.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vp, err := provider.Viewport(ctx)
	if err != nil {
		logger.Warn("viewport unavailable, using configured size", "error", err)
		vp = cfg.ViewportFallback()
	}
	sess, err := session.New(cfg, session.Options{Viewport: &vp, Logger: logger, Actions: actions})
	if err != nil {
		log.Printf("Failed to start session: %v", err)
		return 1
	}
	defer sess.Shutdown()
	log.Printf("Session started on %s (%dx%d)", provider.Name(), vp.Width, vp.Height)

	reloadChan := make(chan struct{}, 1)
	ipcServer, err := ipc.NewServer(sess, monitorSource(provider), reloadChan)
	if err != nil {
		log.Printf("Failed to create IPC server: %v", err)
		return 1
	}
	ipcServer.SetConfigLoader(func() (*config.Config, error) {
		r, err := loadConfig(*path)
		if err != nil {
			return nil, err
		}
		return r.Config, nil
	})
	if err := ipcServer.Start(); err != nil {
		log.Printf("Failed to start IPC server: %v", err)
		return 1
	}
	defer ipcServer.Stop()

	var hotkeyHandler *hotkeys.Handler
	var conn *x11.Connection
	if x, ok := provider.(interface{ Conn() *x11.Connection }); ok {
		conn = x.Conn()
		hotkeyHandler = hotkeys.NewHandler(conn, daemonActions{sess: sess})
		if err := hotkeyHandler.Bind(cfg.Hotkeys); err != nil {
			log.Printf("Warning: %v", err)
		}
		log.Printf("Hotkeys registered: %v", hotkeyHandler.Bound())
	}

	g, gctx := errgroup.WithContext(ctx)

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: time.Duration(cfg.ReconcileIntervalSeconds) * time.Second,
		Logger:   logger,
	}, viewportSource(provider, sess), sess.SetViewport)
	g.Go(func() error {
		reconciler.Run(gctx)
		return nil
	})

	if cfg.HTTP.Enabled {
		api := httpapi.New(sess, httpapi.Options{Listen: cfg.HTTP.Listen, Logger: logger})
		defer api.Close()
		g.Go(func() error {
			return api.ListenAndServe(gctx)
		})
	}

	mainPath := *path
	if mainPath == "" {
		if mainPath, err = config.DefaultConfigPath(); err != nil {
			log.Printf("Failed to resolve config path: %v", err)
			return 1
		}
	}
	watchChan := make(chan struct{}, 1)
	watcher := daemon.NewConfigWatcher(watchPaths(mainPath, res.Files), 0, watchChan, logger)
	g.Go(func() error {
		return watcher.Run(gctx)
	})

	if conn != nil {
		g.Go(func() error {
			conn.EventLoop()
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			conn.Quit()
			// The loop only sees Quit after its next event; closing the
			// connection delivers one.
			provider.Close()
			return nil
		})
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g.Go(func() error {
		for {
			var reason string
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				reason = "SIGHUP"
			case <-reloadChan:
				reason = "ipc"
			case <-watchChan:
				reason = "file change"
			}
			if r := reloadDaemon(*path, reason, sess, hotkeyHandler, logger); r != nil {
				watcher.SetPaths(watchPaths(mainPath, r.Files))
				reconciler.ReconcileNow(gctx)
			}
		}
	})

	log.Println("deskwm daemon started successfully")
	err = g.Wait()
	log.Println("Shutting down deskwm daemon...")
	if err != nil {
		log.Printf("Daemon error: %v", err)
		return 1
	}
	return 0
}

// reloadDaemon applies the config on disk and returns what it loaded. A
// broken file leaves the running config untouched and returns nil.
func reloadDaemon(path, reason string, sess *session.Session, h *hotkeys.Handler, logger *slog.Logger) *config.LoadResult {
	log.Printf("Reloading config (%s)...", reason)
	res, err := loadConfig(path)
	if err != nil {
		log.Printf("Config reload failed: %v", err)
		return nil
	}
	if err := sess.Reload(res.Config); err != nil {
		log.Printf("Config reload failed: %v", err)
		return nil
	}
	if h != nil {
		if err := h.Bind(res.Config.Hotkeys); err != nil {
			logger.Warn("hotkey rebind incomplete", "error", err)
		}
	}
	log.Println("Config reloaded successfully")
	return res
}
