package hotkeys

import (
	"errors"
	"reflect"
	"testing"

	"github.com/1broseidon/deskwm/internal/config"
)

type recorder struct {
	calls []string
	err   error
}

func (r *recorder) Open(appKey string) error { r.calls = append(r.calls, "open:"+appKey); return r.err }
func (r *recorder) CloseActive() error       { r.calls = append(r.calls, "close"); return r.err }
func (r *recorder) MinimizeActive() error    { r.calls = append(r.calls, "minimize"); return r.err }
func (r *recorder) MaximizeActive() error    { r.calls = append(r.calls, "maximize"); return r.err }
func (r *recorder) ShowPalette() error       { r.calls = append(r.calls, "palette"); return r.err }

func TestDispatch(t *testing.T) {
	r := &recorder{}
	for _, value := range []string{"open:about", "close-active", "minimize-active", "maximize-active", "palette"} {
		action, err := config.ParseHotkeyAction(value)
		if err != nil {
			t.Fatalf("ParseHotkeyAction(%q) error = %v", value, err)
		}
		if err := Dispatch(r, action); err != nil {
			t.Fatalf("Dispatch(%q) error = %v", value, err)
		}
	}

	want := []string{"open:about", "close", "minimize", "maximize", "palette"}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestDispatch_Errors(t *testing.T) {
	r := &recorder{err: errors.New("no active window")}
	if err := Dispatch(r, config.HotkeyAction{Kind: "close-active"}); err == nil {
		t.Error("expected action error to propagate")
	}
	if err := Dispatch(r, config.HotkeyAction{Kind: "launch-rockets"}); err == nil {
		t.Error("expected unknown action error")
	}
}

func TestIgnoreMasks(t *testing.T) {
	got := ignoreMasks([]uint16{2, 16})
	want := []uint16{0, 2, 16, 18}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ignoreMasks() = %v, want %v", got, want)
	}

	if got := ignoreMasks(nil); !reflect.DeepEqual(got, []uint16{0}) {
		t.Errorf("ignoreMasks(nil) = %v", got)
	}
}
