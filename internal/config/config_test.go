package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(data)+"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_ValidAndHasBuiltinApps(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if _, ok := cfg.Apps["projects"]; !ok {
		t.Fatalf("expected builtin app %q", "projects")
	}
	if cfg.TaskbarHeight != 48 {
		t.Fatalf("expected taskbar height 48, got %d", cfg.TaskbarHeight)
	}
	if cfg.InitialZIndex != 10 {
		t.Fatalf("expected initial z index 10, got %d", cfg.InitialZIndex)
	}
}

func TestBuiltinApps_PinnedSet(t *testing.T) {
	var pinned []string
	for key, app := range BuiltinApps() {
		if app.Pinned {
			pinned = append(pinned, key)
		}
	}
	if len(pinned) != 5 {
		t.Fatalf("expected 5 pinned apps, got %v", pinned)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Viewport.Width != 1280 {
		t.Fatalf("expected default viewport width, got %d", res.Config.Viewport.Width)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Cascade.Step != 20 || res.Config.Cascade.Cycle != 5 {
		t.Fatalf("unexpected cascade defaults: %#v", res.Config.Cascade)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "unknown_key: 1")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, configD, "10-base.yaml", "taskbar_height: 30\ninitial_z_index: 100")
	writeConfig(t, configD, "20-override.yaml", "taskbar_height: 40")

	path := writeConfig(t, dir, "config.yaml", `
include:
  - config.d
taskbar_height: 50
`)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.TaskbarHeight != 50 {
		t.Fatalf("expected taskbar_height 50, got %d", res.Config.TaskbarHeight)
	}
	if res.Config.InitialZIndex != 100 {
		t.Fatalf("expected initial_z_index from include, got %d", res.Config.InitialZIndex)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml")
	writeConfig(t, dir, "b.yaml", "include: a.yaml")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_AppPatchKeepsBuiltinFieldsAndExplainSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
apps:
  about:
    default_size:
      width: 640
`)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	about := res.Config.Apps["about"]
	if about.DefaultSize.Width != 640 || about.DefaultSize.Height != 700 {
		t.Fatalf("expected patched width and builtin height, got %#v", about.DefaultSize)
	}
	if about.Name != "About Me" {
		t.Fatalf("expected builtin name, got %q", about.Name)
	}

	val, src, err := Explain(res, "apps.about.default_size.width")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 640 {
		t.Fatalf("expected 640, got %#v", val)
	}
	if src.Kind != SourceFile || src.File == "" || src.Line == 0 {
		t.Fatalf("expected file source, got %#v", src)
	}

	_, src, err = Explain(res, "apps.about.min_size.width")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceBuiltin || src.Name != "about" {
		t.Fatalf("expected builtin source, got %#v", src)
	}

	_, src, err = Explain(res, "cascade.step")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source, got %#v", src)
	}
}

func TestLoadFromPath_UserAppRequiresName(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
apps:
  notes:
    default_size:
      width: 400
      height: 300
`)

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "apps.notes.name" {
		t.Fatalf("unexpected path %q", verr.Path)
	}
}

func TestLoadFromPath_UserAppDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
apps:
  notes:
    name: Notes
    resizable: false
`)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	notes := res.Config.Apps["notes"]
	if notes.Resizable {
		t.Fatalf("expected resizable false")
	}
	if res.AppBases["notes"] != "" {
		t.Fatalf("expected user app to have no builtin base, got %q", res.AppBases["notes"])
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
viewport:
  source: wayland
`)

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Path != "viewport.source" {
		t.Fatalf("unexpected path %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %d", verr.Source.Line)
	}
	if !strings.HasPrefix(err.Error(), verr.Source.File+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_HotkeysMergeAndUnbind(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
hotkeys:
  "Mod4-Mod1-w": ""
  "Mod4-Mod1-1": "open:about"
`)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := res.Config.Hotkeys["Mod4-Mod1-w"]; ok {
		t.Fatalf("expected hotkey to be unbound")
	}
	if got := res.Config.Hotkeys["Mod4-Mod1-1"]; got != "open:about" {
		t.Fatalf("expected open:about, got %q", got)
	}
	if got := res.Config.Hotkeys["Mod4-Mod1-p"]; got != "palette" {
		t.Fatalf("expected default palette hotkey kept, got %q", got)
	}
}

func TestValidate_HotkeyUnknownApp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hotkeys["Mod4-x"] = "open:missing"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected unknown app error, got %v", err)
	}
}

func TestValidate_TaskbarTallerThanViewport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaskbarHeight = cfg.Viewport.Height
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseHotkeyAction(t *testing.T) {
	tests := []struct {
		in      string
		want    HotkeyAction
		wantErr bool
	}{
		{in: "palette", want: HotkeyAction{Kind: "palette"}},
		{in: " open:terminal ", want: HotkeyAction{Kind: "open", AppKey: "terminal"}},
		{in: "open:", wantErr: true},
		{in: "launch", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseHotkeyAction(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: got %#v want %#v", tt.in, got, tt.want)
		}
	}
}

func TestSaveTo_RoundTripsOverridesOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TaskbarHeight = 32
	app := cfg.Apps["terminal"]
	app.Pinned = true
	cfg.Apps["terminal"] = app

	path := filepath.Join(dir, "out", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "photography") {
		t.Fatalf("expected unchanged builtin apps to be omitted:\n%s", data)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if res.Config.TaskbarHeight != 32 {
		t.Fatalf("expected taskbar 32, got %d", res.Config.TaskbarHeight)
	}
	if !res.Config.Apps["terminal"].Pinned {
		t.Fatalf("expected terminal pinned after reload")
	}
}
