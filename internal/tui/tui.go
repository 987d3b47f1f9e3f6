// Package tui draws a desktop session in the terminal. Each cell stands for
// a block of desktop pixels; mouse presses are hit-tested against the drawn
// frames and fed to the session as pointer events.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/deskwm/internal/session"
	"github.com/1broseidon/deskwm/internal/wm"
)

// Options configure Run.
type Options struct {
	// Open lists app keys to open before the first frame.
	Open []string
	// Now overrides the clock.
	Now func() time.Time
}

// Run shows sess until the user quits or ctx ends.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		sess.SetViewport(viewportFor(cols, rows))
	}
	for _, key := range opts.Open {
		if _, _, err := sess.Open(key, wm.Overrides{}); err != nil {
			return fmt.Errorf("open %s: %w", key, err)
		}
	}

	p := tea.NewProgram(newModel(sess, opts.Now),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Redraw on changes made outside the terminal. Events fire on whatever
	// goroutine changed the desktop, including Update itself, so they are
	// coalesced and forwarded from here.
	changed := make(chan struct{}, 1)
	done := make(chan struct{})
	unsubscribe := sess.Manager().Subscribe(func(wm.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-changed:
				p.Send(desktopChangedMsg{})
			}
		}
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
