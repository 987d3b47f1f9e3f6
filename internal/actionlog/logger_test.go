package actionlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, opts Options) *Logger {
	t.Helper()
	opts.Enabled = true
	if opts.FilePath == "" {
		opts.FilePath = filepath.Join(t.TempDir(), "logs", "actions.log")
	}
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { l.Close() })
	return l
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

func TestLog_FormatsEntry(t *testing.T) {
	l := newTestLogger(t, Options{Level: LevelInfo, MaxSizeMB: 1, MaxFiles: 2})

	l.Log(ActionOpen, "about-1", "about", map[string]any{"title": "About Me", "z": 10})

	got := readLog(t, l.opts.FilePath)
	want := `2024-05-01 12:00:00 [OPEN] window=about-1 app=about title="About Me" z=10` + "\n"
	if got != want {
		t.Errorf("log entry = %q, want %q", got, want)
	}
}

func TestLog_LevelFiltering(t *testing.T) {
	l := newTestLogger(t, Options{Level: LevelInfo, MaxSizeMB: 1, MaxFiles: 2})

	l.Log(ActionFocus, "about-1", "about", nil)
	l.Log(ActionClose, "about-1", "about", nil)

	got := readLog(t, l.opts.FilePath)
	if strings.Contains(got, "[FOCUS]") {
		t.Errorf("debug action written at info level: %q", got)
	}
	if !strings.Contains(got, "[CLOSE]") {
		t.Errorf("info action missing: %q", got)
	}
}

func TestLog_GeometryRequiresOptIn(t *testing.T) {
	l := newTestLogger(t, Options{Level: LevelDebug, MaxSizeMB: 1, MaxFiles: 2})
	l.Log(ActionMove, "about-1", "about", map[string]any{"x": 1, "y": 2})
	if got := readLog(t, l.opts.FilePath); got != "" {
		t.Errorf("move logged without LogGeometry: %q", got)
	}

	l.opts.LogGeometry = true
	l.Log(ActionMove, "about-1", "about", map[string]any{"x": 1, "y": 2})
	if got := readLog(t, l.opts.FilePath); !strings.Contains(got, "[MOVE] window=about-1 app=about x=1 y=2") {
		t.Errorf("move entry = %q", got)
	}
}

func TestLog_Rotation(t *testing.T) {
	l := newTestLogger(t, Options{Level: LevelInfo, MaxSizeMB: 1, MaxFiles: 2})
	path := l.opts.FilePath

	// Pretend the file is already full.
	l.currentSize = 1024 * 1024
	l.Log(ActionOpen, "a-1", "a", nil)

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("rotated file missing: %v", err)
	}
	if got := readLog(t, path); !strings.Contains(got, "window=a-1") {
		t.Errorf("new log = %q", got)
	}

	l.currentSize = 1024 * 1024
	l.Log(ActionOpen, "b-1", "b", nil)
	l.currentSize = 1024 * 1024
	l.Log(ActionOpen, "c-1", "c", nil)

	if _, err := os.Stat(path + ".2"); err != nil {
		t.Errorf(".2 missing: %v", err)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf(".3 should not exist with MaxFiles=2, err = %v", err)
	}
}

func TestLog_DisabledAndNil(t *testing.T) {
	var nilLogger *Logger
	nilLogger.Log(ActionOpen, "x", "x", nil)
	if err := nilLogger.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "actions.log")
	l, err := New(Options{Enabled: false, FilePath: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Log(ActionOpen, "x", "x", nil)
	if l.Enabled() {
		t.Error("Enabled() = true for disabled logger")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("disabled logger created %s", path)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"warn":    LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
