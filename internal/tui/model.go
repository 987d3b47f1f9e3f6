package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskwm/internal/session"
	"github.com/1broseidon/deskwm/internal/wm"
)

// doubleClickWindow is how close two presses on the same cell must be to
// count as one double click.
const doubleClickWindow = 500 * time.Millisecond

// tickMsg redraws the taskbar clock.
type tickMsg time.Time

// statusMsg shows a line in the taskbar.
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status line after a delay.
type clearStatusMsg struct{}

// desktopChangedMsg asks for a redraw after the window manager changed.
type desktopChangedMsg struct{}

type click struct {
	at       time.Time
	col, row int
	count    int
}

// model is the root bubbletea model: one desktop drawn into the terminal.
type model struct {
	sess *session.Session
	now  func() time.Time

	width  int
	height int

	menu     startMenu
	menuOpen bool

	last   click
	clock  time.Time
	status string
}

func newModel(sess *session.Session, now func() time.Time) model {
	if now == nil {
		now = time.Now
	}
	return model{
		sess:  sess,
		now:   now,
		menu:  newStartMenu(sess.Registry()),
		clock: now(),
	}
}

func tick() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.mountDrawn()
	return m.update(msg)
}

// mountDrawn marks windows still waiting for their first frame as mounted,
// back to front so their stacking is kept.
func (m model) mountDrawn() {
	if m.width == 0 || m.height == 0 {
		return
	}
	for _, w := range m.sess.Snapshot().Stacked() {
		if w.FocusedOnMount && !w.Minimized {
			_ = m.sess.Mounted(w.ID)
		}
	}
}

func (m model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sess.SetViewport(viewportFor(m.width, m.height))
		return m, nil

	case tickMsg:
		m.clock = time.Time(msg)
		return m, tick()

	case statusMsg:
		m.status = msg.text
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case desktopChangedMsg:
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.menuOpen {
			return m.updateMenu(msg)
		}
		return m.updateKeys(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	menu, key, done, cmd := m.menu.update(msg)
	m.menu = menu
	if done {
		m.closeMenu()
	}
	if key != "" {
		return m, tea.Batch(cmd, m.launch(key))
	}
	return m, cmd
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "s":
		return m, m.openMenu()
	case "tab":
		m.cycleFocus()
	case "esc":
		m.sess.Controller().Cancel()
	case "w":
		return m, report(m.sess.CloseActive())
	case "m":
		return m, report(m.sess.MinimizeActive())
	case "f":
		return m, report(m.sess.MaximizeActive())
	}
	return m, nil
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := pixelAt(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionMotion:
		if _, ok := m.sess.Controller().Active(); ok {
			m.pointer(session.PointerEvent{Phase: session.PhaseMove, X: float64(p.X), Y: float64(p.Y)})
		}
		return m, nil
	case tea.MouseActionRelease:
		m.pointer(session.PointerEvent{Phase: session.PhaseUp, X: float64(p.X), Y: float64(p.Y)})
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	clicks := m.registerClick(msg.X, msg.Y)
	h := hitTest(m.sess.Snapshot(), m.width, m.height, msg.X, msg.Y)

	if m.menuOpen {
		if m.inMenu(msg.X, msg.Y) {
			return m, nil
		}
		m.closeMenu()
		if h.kind == hitStart {
			return m, nil
		}
	}

	ev := session.PointerEvent{WindowID: h.windowID, X: float64(p.X), Y: float64(p.Y)}
	switch h.kind {
	case hitStart:
		return m, m.openMenu()
	case hitTask:
		return m, report(m.taskbarClick(h.windowID))
	case hitTitle:
		ev.Phase, ev.Clicks = session.PhaseTitleDown, clicks
		return m, m.pointer(ev)
	case hitHandle:
		ev.Phase, ev.Direction = session.PhaseHandleDown, h.dir.String()
		return m, m.pointer(ev)
	case hitBody:
		ev.Phase = session.PhaseWindowDown
		return m, m.pointer(ev)
	case hitMinimize:
		m.sess.Controller().PointerDown(h.windowID)
		return m, report(m.sess.Minimize(h.windowID))
	case hitMaximize:
		m.sess.Controller().PointerDown(h.windowID)
		return m, report(m.sess.ToggleMaximize(h.windowID))
	case hitClose:
		m.sess.Controller().PointerDown(h.windowID)
		return m, report(m.sess.Close(h.windowID))
	}
	return m, nil
}

func (m *model) pointer(ev session.PointerEvent) tea.Cmd {
	_, err := m.sess.Pointer(ev)
	return report(err)
}

// registerClick counts consecutive presses on one cell.
func (m *model) registerClick(col, row int) int {
	now := m.now()
	if m.last.count > 0 && m.last.col == col && m.last.row == row && now.Sub(m.last.at) <= doubleClickWindow {
		m.last.count++
	} else {
		m.last.count = 1
	}
	m.last.at, m.last.col, m.last.row = now, col, row
	return m.last.count
}

// taskbarClick minimizes the active window and focuses any other.
func (m *model) taskbarClick(id string) error {
	w, err := m.sess.Window(id)
	if err != nil {
		return err
	}
	if w.Active && !w.Minimized {
		return m.sess.Minimize(id)
	}
	return m.sess.Focus(id)
}

// cycleFocus raises the backmost visible window, so repeated presses walk
// the whole stack.
func (m *model) cycleFocus() {
	for _, w := range m.sess.Snapshot().Stacked() {
		if !w.Minimized {
			m.sess.Focus(w.ID)
			return
		}
	}
}

func (m *model) launch(appKey string) tea.Cmd {
	w, res, err := m.sess.Open(appKey, wm.Overrides{})
	if err != nil {
		return report(err)
	}
	if res != wm.OpenCreated {
		return report(fmt.Errorf("%s %s", w.Title, res))
	}
	return nil
}

func (m *model) openMenu() tea.Cmd {
	m.menuOpen = true
	return m.menu.open(m.sess.Registry(), m.height)
}

func (m *model) closeMenu() {
	m.menuOpen = false
	m.menu.close()
}

// menuRect is where the start menu is drawn: bottom left, above the taskbar.
func (m model) menuRect() cellRect {
	bottom := m.height - taskbarRows - 1
	return cellRect{x0: 0, y0: bottom - m.menu.height + 1, x1: menuWidth - 1, y1: bottom}
}

func (m model) inMenu(col, row int) bool {
	return m.menuRect().contains(col, row)
}

// report turns an error into a status line. Missing windows are ignored: the
// desktop may have changed under the pointer.
func report(err error) tea.Cmd {
	if err == nil || errors.Is(err, session.ErrWindowNotFound) {
		return nil
	}
	return func() tea.Msg { return statusMsg{text: err.Error()} }
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	c := drawDesktop(m.sess.Snapshot(), m.width, m.height, m.clock, m.menuOpen, m.status)
	lines := c.lines()

	if m.menuOpen {
		r := m.menuRect()
		for i, ml := range strings.Split(m.menu.view(), "\n") {
			y := r.y0 + i
			if y < 0 || y > r.y1 {
				continue
			}
			w := lipgloss.Width(ml)
			if w >= m.width {
				lines[y] = ml
				continue
			}
			lines[y] = ml + c.row(y, w)
		}
	}
	return strings.Join(lines, "\n")
}
