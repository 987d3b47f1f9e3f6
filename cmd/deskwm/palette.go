package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/deskwm/internal/ipc"
	"github.com/1broseidon/deskwm/internal/palette"
)

func runPalette(args []string) int {
	fs := flag.NewFlagSet("palette", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm palette [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show open windows and launchable apps in a palette.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings (rofi only):")
		fmt.Fprintln(os.Stderr, "  Enter       - Open app / focus window")
		fmt.Fprintln(os.Stderr, "  Alt+Return  - Close window")
		fmt.Fprintln(os.Stderr, "  Alt+m       - Toggle maximize")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Backends: rofi, dmenu, wofi, fuzzel (configured via palette_backend, default: auto).")
	}
	path := fs.String("path", "", "Config file path (default: ~/.config/deskwm/config.yaml)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	backend, err := palette.NewBackend(res.Config.PaletteBackend)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := palette.Run(backend, palette.ClientDesktop{Client: ipc.NewClient()}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
