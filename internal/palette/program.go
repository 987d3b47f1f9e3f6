package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type programKind int

const (
	kindRofi programKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

type programSpec struct {
	kind programKind
	caps Capabilities
}

var programs = map[string]programSpec{
	"rofi": {kindRofi, Capabilities{
		Icons: true, Markup: true, NonSelectable: true, CustomKeys: true,
		IndexOutput: true, MessageBar: true, RowStates: true,
	}},
	"fuzzel": {kindFuzzel, Capabilities{Icons: true, IndexOutput: true}},
	"wofi":   {kindWofi, Capabilities{Icons: true, Markup: true}},
	"dmenu":  {kindDmenu, Capabilities{}},
}

// runFunc runs the launcher with input on stdin and returns stdout, stderr
// and the process error.
type runFunc func(command string, args []string, input string) (string, string, error)

func execRun(command string, args []string, input string) (string, string, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	return string(out), stderr.String(), err
}

// program is a dmenu-compatible launcher.
type program struct {
	command string
	kind    programKind
	caps    Capabilities
	run     runFunc

	fuzzyMatching bool
}

type rowStates struct {
	active         []int
	urgent         []int
	selectedRow    int
	hasSelectedRow bool
}

func newProgram(command string, spec programSpec) *program {
	return &program{command: command, kind: spec.kind, caps: spec.caps, run: execRun}
}

func (b *program) Capabilities() Capabilities {
	return b.caps
}

// SetFuzzyMatching enables rofi's fuzzy matching mode when supported.
func (b *program) SetFuzzyMatching(enabled bool) {
	b.fuzzyMatching = enabled
}

func (b *program) Show(prompt string, items []Item, message string) (SelectResult, error) {
	if len(items) == 0 {
		return SelectResult{}, fmt.Errorf("palette: no items to show")
	}

	displayItems := make([]Item, len(items))
	copy(displayItems, items)

	input, states := b.formatInput(displayItems)
	out, stderr, err := b.run(b.command, b.buildArgs(prompt, message, states), input)
	selection := strings.TrimSpace(out)

	exitCode := ExitNormal
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if selection == "" && isCancelExit(err) {
			return SelectResult{}, ErrCancelled
		}
		// kb-custom exits carry a selection and are not failures.
		if exitCode < ExitAlternate || exitCode > exitCustomMax {
			if msg := strings.TrimSpace(stderr); msg != "" {
				return SelectResult{}, fmt.Errorf("%s failed: %s", b.command, msg)
			}
			return SelectResult{}, fmt.Errorf("%s failed: %w", b.command, err)
		}
	}

	if selection == "" {
		return SelectResult{}, ErrCancelled
	}

	item, err := b.parseSelection(selection, displayItems)
	if err != nil {
		return SelectResult{}, err
	}
	return SelectResult{Item: item, ExitCode: exitCode}, nil
}

func (b *program) buildArgs(prompt string, message string, states rowStates) []string {
	var args []string

	switch b.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		// Select by index; labels may contain ':' or markup.
		args = append(args, "-format", "i", "-no-custom")
		if b.fuzzyMatching {
			args = append(args, "-matching", "fuzzy")
		}
		if b.caps.Markup {
			args = append(args, "-markup-rows")
		}
		if b.caps.Icons {
			args = append(args, "-show-icons")
		}
		if len(states.active) > 0 {
			args = append(args, "-a", formatIndices(states.active))
		}
		if len(states.urgent) > 0 {
			args = append(args, "-u", formatIndices(states.urgent))
		}
		if states.hasSelectedRow {
			args = append(args, "-selected-row", strconv.Itoa(states.selectedRow))
		}
		args = append(args, "-kb-custom-1", "Alt+Return", "-kb-custom-2", "Alt+m")
		if message != "" {
			args = append(args, "-mesg", message)
		}

	case kindFuzzel:
		args = []string{"--dmenu"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
		args = append(args, "--index")

	case kindWofi:
		args = []string{"--dmenu"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
		args = append(args, "--allow-markup", "--allow-images")

	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}

	return args
}

func (b *program) formatInput(items []Item) (string, rowStates) {
	var states rowStates
	firstSelectable, firstActive := -1, -1

	// Text-matching launchers (dmenu/wofi) need unique labels.
	if !b.caps.IndexOutput {
		seen := make(map[string]int)
		for i := range items {
			if items[i].IsHeader || items[i].IsDivider {
				continue
			}
			key := sanitizeLabel(items[i].Label)
			if key == "" {
				continue
			}
			if count := seen[key]; count > 0 {
				items[i].Label = fmt.Sprintf("%s (%d)", key, count+1)
			}
			seen[key]++
		}
	}

	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, b.formatItem(item))

		selectable := !item.IsHeader && !item.IsDivider
		if !selectable {
			continue
		}
		if firstSelectable == -1 {
			firstSelectable = i
		}
		if item.IsActive && firstActive == -1 {
			firstActive = i
		}
		if b.caps.RowStates {
			if item.IsActive {
				states.active = append(states.active, i)
			}
			if item.IsUrgent {
				states.urgent = append(states.urgent, i)
			}
		}
	}

	switch {
	case firstActive != -1:
		states.selectedRow, states.hasSelectedRow = firstActive, true
	case firstSelectable != -1:
		states.selectedRow, states.hasSelectedRow = firstSelectable, true
	}

	return strings.Join(lines, "\n"), states
}

func (b *program) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if b.caps.Markup {
		display = html.EscapeString(display)
		if item.IsHeader {
			display = "<b>" + display + "</b>"
		} else if item.IsDivider {
			display = "<span foreground='#666666'>" + display + "</span>"
		}
	}

	// Rofi row properties: one NUL, then key\x1fvalue pairs joined by \x1f.
	if b.kind != kindRofi {
		return display
	}

	var attrs []string
	if (item.IsHeader || item.IsDivider) && b.caps.NonSelectable {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Icon != "" && b.caps.Icons {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if item.Info != "" {
		attrs = append(attrs, "info", sanitizeRofiField(item.Info))
	}
	if item.Meta != "" {
		attrs = append(attrs, "meta", sanitizeRofiField(item.Meta))
	}
	if item.IsActive {
		attrs = append(attrs, "active", "true")
	}
	if item.IsUrgent {
		attrs = append(attrs, "urgent", "true")
	}

	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (b *program) parseSelection(selection string, items []Item) (Item, error) {
	if b.caps.IndexOutput {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.NewReplacer("\x00", " ", "\x1f", " ", "\r", " ", "\n", " ").Replace(value)
	return strings.TrimSpace(value)
}

func formatIndices(indices []int) string {
	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, ",")
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
