// Package hotkeys binds global X11 key sequences to desktop actions.
package hotkeys

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Actions are the operations a hotkey can trigger.
type Actions interface {
	Open(appKey string) error
	CloseActive() error
	MinimizeActive() error
	MaximizeActive() error
	ShowPalette() error
}

// Handler manages global keyboard shortcuts
type Handler struct {
	mu      sync.Mutex
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions Actions
	bound   []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler on conn.
func NewHandler(conn *x11.Connection, actions Actions) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:      conn.XUtil,
		root:    conn.Root,
		actions: actions,
	}
}

// Bind replaces all current bindings with hotkeys (key sequence -> action).
// Bindings that fail are reported together; the rest stay active.
func (h *Handler) Bind(hotkeys map[string]string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.bound) > 0 {
		keybind.Detach(h.xu, h.root)
		h.bound = nil
	}

	seqs := make([]string, 0, len(hotkeys))
	for seq := range hotkeys {
		seqs = append(seqs, seq)
	}
	sort.Strings(seqs)

	var errs []error
	for _, seq := range seqs {
		action, err := config.ParseHotkeyAction(hotkeys[seq])
		if err != nil {
			errs = append(errs, fmt.Errorf("hotkey %s: %w", seq, err))
			continue
		}
		if err := h.RegisterFunc(seq, func() {
			log.Printf("Hotkey %s triggered (%s)", seq, hotkeys[seq])
			if err := Dispatch(h.actions, action); err != nil {
				log.Printf("Hotkey %s failed: %v", seq, err)
			}
		}); err != nil {
			errs = append(errs, fmt.Errorf("hotkey %s: %w", seq, err))
			continue
		}
		h.bound = append(h.bound, seq)
	}
	return errors.Join(errs...)
}

// Bound lists the key sequences currently grabbed.
func (h *Handler) Bound() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.bound...)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Dispatch runs one parsed hotkey action.
func Dispatch(a Actions, action config.HotkeyAction) error {
	switch action.Kind {
	case "open":
		return a.Open(action.AppKey)
	case "close-active":
		return a.CloseActive()
	case "minimize-active":
		return a.MinimizeActive()
	case "maximize-active":
		return a.MaximizeActive()
	case "palette":
		return a.ShowPalette()
	default:
		return fmt.Errorf("unknown hotkey action %q", action.Kind)
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns every combination of the lock modifiers in base,
// including no modifier at all.
func ignoreMasks(base []uint16) []uint16 {
	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	sort.Slice(ignore, func(i, j int) bool { return ignore[i] < ignore[j] })
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
