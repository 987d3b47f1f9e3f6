package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/1broseidon/deskwm/internal/ipc"
	"github.com/1broseidon/deskwm/internal/wm"
)

var errPickCancelled = errors.New("cancelled")

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runApps(args []string) int {
	fs := flag.NewFlagSet("apps", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm apps [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the apps the daemon can open.")
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	data, err := ipc.NewClient().ListApps()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return writeJSON(os.Stdout, data)
	}

	rows := make([][]string, 0, len(data.Apps))
	for _, a := range data.Apps {
		pinned := ""
		if a.Pinned {
			pinned = "yes"
		}
		rows = append(rows, []string{
			a.Key,
			a.Name,
			fmt.Sprintf("%dx%d", a.DefaultSize.Width, a.DefaultSize.Height),
			pinned,
		})
	}
	fmt.Println(renderTable([]string{"KEY", "NAME", "SIZE", "PINNED"}, rows))
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm list [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List open windows, front to back.")
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	data, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return writeJSON(os.Stdout, data)
	}
	if len(data.Windows) == 0 {
		fmt.Println("no open windows")
		return 0
	}
	fmt.Println(renderTable([]string{"ID", "TITLE", "BOUNDS", "Z", "STATE"}, windowRows(data.Windows)))
	return 0
}

// windowRows lists windows front first.
func windowRows(windows []wm.Window) [][]string {
	rows := make([][]string, 0, len(windows))
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		b := w.Bounds
		rows = append(rows, []string{
			w.ID,
			w.Title,
			fmt.Sprintf("%d,%d %dx%d", b.X, b.Y, b.Width, b.Height),
			strconv.Itoa(w.ZIndex),
			windowState(w),
		})
	}
	return rows
}

func windowState(w wm.Window) string {
	var parts []string
	if w.Active {
		parts = append(parts, "active")
	}
	if w.Minimized {
		parts = append(parts, "minimized")
	}
	if w.Maximized {
		parts = append(parts, "maximized")
	}
	if w.Dragging {
		parts = append(parts, "dragging")
	}
	if w.Resizing {
		parts = append(parts, "resizing")
	}
	return strings.Join(parts, ",")
}

func runOpen(args []string) int {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm open [--x N] [--y N] [--width N] [--height N] [app]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Focus, restore or open the window for an app. Without an app key an")
		fmt.Fprintln(os.Stderr, "interactive picker is shown. Geometry flags only apply to new windows.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	x := fs.Int("x", 0, "Window x")
	y := fs.Int("y", 0, "Window y")
	width := fs.Int("width", 0, "Window width")
	height := fs.Int("height", 0, "Window height")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	var ov wm.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "x":
			ov.X = x
		case "y":
			ov.Y = y
		case "width":
			ov.Width = width
		case "height":
			ov.Height = height
		}
	})
	if (ov.Width != nil && *ov.Width <= 0) || (ov.Height != nil && *ov.Height <= 0) {
		fmt.Fprintln(os.Stderr, "width and height must be positive")
		return 2
	}

	client := ipc.NewClient()
	key := strings.TrimSpace(fs.Arg(0))
	if key == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "open requires <app> when not run from a terminal")
			fs.Usage()
			return 2
		}
		picked, err := pickApp(client)
		if errors.Is(err, errPickCancelled) {
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		key = picked
	}

	data, err := client.Open(key, ov)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s %s\n", data.Result, data.Window.ID)
	return 0
}

// pickApp asks for an app with a huh select, open apps marked.
func pickApp(client *ipc.Client) (string, error) {
	apps, err := client.ListApps()
	if err != nil {
		return "", err
	}
	if len(apps.Apps) == 0 {
		return "", fmt.Errorf("no apps registered")
	}
	open := map[string]bool{}
	if windows, err := client.ListWindows(); err == nil {
		for _, w := range windows.Windows {
			open[w.AppKey] = true
		}
	}

	opts := make([]huh.Option[string], 0, len(apps.Apps))
	for _, a := range apps.Apps {
		label := a.Name
		if open[a.Key] {
			label += " (open)"
		}
		opts = append(opts, huh.NewOption(label, a.Key))
	}

	var key string
	err = huh.NewSelect[string]().
		Title("Open app").
		Options(opts...).
		Value(&key).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", errPickCancelled
	}
	return key, err
}

func runWindowCommand(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: deskwm %s <window-id>\n", name)
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires <window-id>\n", name)
		fs.Usage()
		return 2
	}
	id := fs.Arg(0)
	client := ipc.NewClient()

	var (
		w   *wm.Window
		err error
	)
	switch name {
	case "close":
		err = client.Close(id)
	case "minimize":
		w, err = client.Minimize(id)
	case "maximize":
		w, err = client.ToggleMaximize(id)
	case "focus":
		w, err = client.Focus(id)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if w != nil {
		fmt.Printf("%s %s\n", w.ID, windowState(*w))
	}
	return 0
}

func runMove(args []string) int {
	return runGeometry("move", "<window-id> <x> <y>", args, func(c *ipc.Client, id string, a, b int) (*wm.Window, error) {
		return c.Move(id, a, b)
	})
}

func runResize(args []string) int {
	return runGeometry("resize", "<window-id> <width> <height>", args, func(c *ipc.Client, id string, a, b int) (*wm.Window, error) {
		if a <= 0 || b <= 0 {
			return nil, fmt.Errorf("width and height must be positive, got %dx%d", a, b)
		}
		return c.Resize(id, a, b)
	})
}

func runGeometry(name, usage string, args []string, op func(*ipc.Client, string, int, int) (*wm.Window, error)) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: deskwm %s %s\n", name, usage)
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return 2
	}
	a, errA := strconv.Atoi(fs.Arg(1))
	b, errB := strconv.Atoi(fs.Arg(2))
	if err := errors.Join(errA, errB); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		return 2
	}

	w, err := op(ipc.NewClient(), fs.Arg(0), a, b)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	r := w.Bounds
	fmt.Printf("%s %d,%d %dx%d\n", w.ID, r.X, r.Y, r.Width, r.Height)
	return 0
}
