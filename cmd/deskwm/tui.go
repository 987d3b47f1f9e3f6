package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/1broseidon/deskwm/internal/actionlog"
	"github.com/1broseidon/deskwm/internal/session"
	"github.com/1broseidon/deskwm/internal/tui"
)

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm tui [--path PATH] [--open app1,app2]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run a standalone desktop in this terminal. Drag titles with the mouse,")
		fmt.Fprintln(os.Stderr, "resize from the borders, 's' opens the start menu and 'q' quits.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	path := fs.String("path", "", "Config file path (default: ~/.config/deskwm/config.yaml)")
	open := fs.String("open", "", "Comma-separated app keys to open at start")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config

	actions, err := actionlog.New(actionlog.OptionsFromConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: action log disabled: %v\n", err)
		actions = nil
	}
	defer actions.Close()

	// The screen belongs to the desktop; component logs would tear it.
	sess, err := session.New(cfg, session.Options{
		Logger:  slog.New(slog.DiscardHandler),
		Actions: actions,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sess.Shutdown()

	var keys []string
	for _, k := range strings.Split(*open, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tui.Run(ctx, sess, tui.Options{Open: keys}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
