// Package actionlog writes a rotating audit trail of window actions.
package actionlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/deskwm/internal/config"
)

// LogLevel defines the logging verbosity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Action is the kind of window action being logged.
type Action string

const (
	ActionOpen     Action = "OPEN"
	ActionClose    Action = "CLOSE"
	ActionMinimize Action = "MINIMIZE"
	ActionMaximize Action = "MAXIMIZE"
	ActionRestore  Action = "RESTORE"
	ActionFocus    Action = "FOCUS"
	ActionMove     Action = "MOVE"
	ActionResize   Action = "RESIZE"
	ActionGesture  Action = "GESTURE"
)

func actionLevel(action Action) LogLevel {
	switch action {
	case ActionMove, ActionResize, ActionGesture, ActionFocus:
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Options holds the resolved logger settings.
type Options struct {
	Enabled     bool
	Level       LogLevel
	FilePath    string
	MaxSizeMB   int
	MaxFiles    int
	LogGeometry bool
}

// OptionsFromConfig converts the config section, defaults included.
func OptionsFromConfig(cfg *config.Config) Options {
	lc := cfg.GetLoggingConfig()
	return Options{
		Enabled:     lc.Enabled,
		Level:       ParseLogLevel(lc.Level),
		FilePath:    lc.File,
		MaxSizeMB:   lc.MaxSizeMB,
		MaxFiles:    lc.MaxFiles,
		LogGeometry: lc.LogGeometry,
	}
}

// Logger appends action lines to a size-rotated file. A nil or disabled
// Logger drops everything.
type Logger struct {
	mu          sync.Mutex
	file        *os.File
	opts        Options
	currentSize int64
	now         func() time.Time
}

// New opens the log file described by opts.
func New(opts Options) (*Logger, error) {
	l := &Logger{opts: opts, now: time.Now}
	if !opts.Enabled {
		return l, nil
	}

	dir := filepath.Dir(opts.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", opts.FilePath, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	l.file = f
	l.currentSize = stat.Size()
	return l, nil
}

// Enabled reports whether entries are written.
func (l *Logger) Enabled() bool {
	return l != nil && l.opts.Enabled
}

// Log records one action against a window. Move and resize entries are
// only written when geometry logging is on.
func (l *Logger) Log(action Action, windowID, appKey string, details map[string]any) {
	if l == nil || !l.opts.Enabled {
		return
	}
	if (action == ActionMove || action == ActionResize) && !l.opts.LogGeometry {
		return
	}
	if actionLevel(action) < l.opts.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	maxBytes := int64(l.opts.MaxSizeMB) * 1024 * 1024
	if maxBytes > 0 && l.currentSize >= maxBytes {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	var sb strings.Builder
	sb.WriteString(l.now().Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(action))
	sb.WriteString("]")
	if windowID != "" {
		sb.WriteString(" window=")
		sb.WriteString(windowID)
	}
	if appKey != "" {
		sb.WriteString(" app=")
		sb.WriteString(appKey)
	}

	if len(details) > 0 {
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch val := details[k].(type) {
			case string:
				fmt.Fprintf(&sb, " %s=%q", k, val)
			default:
				fmt.Fprintf(&sb, " %s=%v", k, val)
			}
		}
	}
	sb.WriteString("\n")

	n, err := l.file.WriteString(sb.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
		return
	}
	l.currentSize += int64(n)
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate shifts actions.log -> actions.log.1 -> ... and drops the oldest.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	basePath := l.opts.FilePath
	for i := l.opts.MaxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", basePath, i)
		if i == l.opts.MaxFiles {
			os.Remove(oldPath)
		} else {
			os.Rename(oldPath, fmt.Sprintf("%s.%d", basePath, i+1))
		}
	}

	if l.opts.MaxFiles > 0 {
		if err := os.Rename(basePath, basePath+".1"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	} else {
		os.Remove(basePath)
	}

	f, err := os.OpenFile(basePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}
	l.file = f
	l.currentSize = 0
	return nil
}

// ParseLogLevel converts a string to LogLevel; unknown values mean info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
