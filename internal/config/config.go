package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/deskwm/internal/geom"
	"gopkg.in/yaml.v3"
)

// ViewportSource selects where the desktop viewport size comes from.
type ViewportSource string

const (
	ViewportAuto   ViewportSource = "auto"
	ViewportX11    ViewportSource = "x11"
	ViewportStatic ViewportSource = "static"
)

// ViewportConfig is the fallback host size used when the display cannot be
// queried or when the static source is selected.
type ViewportConfig struct {
	Width  int            `yaml:"width"`
	Height int            `yaml:"height"`
	Source ViewportSource `yaml:"source"`
}

// CascadeConfig controls where new windows are placed.
type CascadeConfig struct {
	// Step is the per-window offset on both axes, in pixels.
	Step int `yaml:"step"`
	// Cycle is how many windows cascade before the offset wraps to zero.
	Cycle int `yaml:"cycle"`
	// Lift moves the centered position up so the window clears the taskbar.
	Lift int `yaml:"lift"`
}

// AppConfig describes one launchable app.
type AppConfig struct {
	Name        string    `yaml:"name"`
	Icon        string    `yaml:"icon,omitempty"`
	Description string    `yaml:"description,omitempty"`
	DefaultSize geom.Size `yaml:"default_size,omitempty"`
	MinSize     geom.Size `yaml:"min_size,omitempty"`
	Resizable   bool      `yaml:"resizable"`
	Pinned      bool      `yaml:"pinned,omitempty"`
	Hidden      bool      `yaml:"hidden,omitempty"`
	Order       int       `yaml:"order,omitempty"`
}

type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LoggingConfig configures the window action log.
type LoggingConfig struct {
	// Enabled turns action logging on/off
	Enabled bool `yaml:"enabled,omitempty"`
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: ~/.local/share/deskwm/actions.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
	// LogGeometry records every move/resize commit (noisy, default: false)
	LogGeometry bool `yaml:"log_geometry,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	Viewport                 ViewportConfig       `yaml:"viewport"`
	TaskbarHeight            int                  `yaml:"taskbar_height"`
	InitialZIndex            int                  `yaml:"initial_z_index"`
	Cascade                  CascadeConfig        `yaml:"cascade"`
	DefaultSize              geom.Size            `yaml:"default_size"`
	MinSize                  geom.Size            `yaml:"min_size"`
	Apps                     map[string]AppConfig `yaml:"apps"`
	Hotkeys                  map[string]string    `yaml:"hotkeys,omitempty"`
	PaletteBackend           string               `yaml:"palette_backend"`
	Display                  string               `yaml:"display,omitempty"`
	XAuthority               string               `yaml:"xauthority,omitempty"`
	HTTP                     HTTPConfig           `yaml:"http"`
	ReconcileIntervalSeconds int                  `yaml:"reconcile_interval_seconds"`
	LogLevel                 string               `yaml:"log_level"`
	Logging                  LoggingConfig        `yaml:"logging,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:  1280,
			Height: 800,
			Source: ViewportAuto,
		},
		TaskbarHeight: geom.DefaultTaskbarHeight,
		InitialZIndex: 10,
		Cascade: CascadeConfig{
			Step:  20,
			Cycle: 5,
			Lift:  50,
		},
		DefaultSize: geom.Size{Width: 600, Height: 400},
		MinSize:     geom.Size{Width: 300, Height: 200},
		Apps:        BuiltinApps(),
		Hotkeys: map[string]string{
			"Mod4-Mod1-p": "palette",
			"Mod4-Mod1-w": "close-active",
			"Mod4-Mod1-m": "minimize-active",
			"Mod4-Mod1-f": "maximize-active",
		},
		PaletteBackend: "auto",
		HTTP: HTTPConfig{
			Enabled: true,
			Listen:  "127.0.0.1:7717",
		},
		ReconcileIntervalSeconds: 5,
		LogLevel:                 "info",
	}
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/deskwm/actions.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// ViewportFallback returns the configured viewport as geometry.
func (c *Config) ViewportFallback() geom.Viewport {
	return geom.Viewport{
		Width:         c.Viewport.Width,
		Height:        c.Viewport.Height,
		TaskbarHeight: c.TaskbarHeight,
	}
}

// SaveTo writes the effective configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := *c
	save.Apps = appsForSave(c.Apps)

	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func appsForSave(apps map[string]AppConfig) map[string]AppConfig {
	builtin := BuiltinApps()
	out := make(map[string]AppConfig)
	for key, app := range apps {
		if base, ok := builtin[key]; ok && base == app {
			continue
		}
		out[key] = app
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Viewport.Source {
	case ViewportAuto, ViewportX11, ViewportStatic:
	default:
		return &ValidationError{Path: "viewport.source", Err: fmt.Errorf("viewport.source must be one of: auto, x11, static")}
	}
	if c.Viewport.Width <= 0 {
		return &ValidationError{Path: "viewport.width", Err: fmt.Errorf("viewport.width must be > 0")}
	}
	if c.Viewport.Height <= 0 {
		return &ValidationError{Path: "viewport.height", Err: fmt.Errorf("viewport.height must be > 0")}
	}
	if c.TaskbarHeight < 0 {
		return &ValidationError{Path: "taskbar_height", Err: fmt.Errorf("taskbar_height must be >= 0")}
	}
	if c.TaskbarHeight >= c.Viewport.Height {
		return &ValidationError{Path: "taskbar_height", Err: fmt.Errorf("taskbar_height must be smaller than viewport.height")}
	}
	if c.InitialZIndex < 0 {
		return &ValidationError{Path: "initial_z_index", Err: fmt.Errorf("initial_z_index must be >= 0")}
	}
	if c.Cascade.Step < 0 {
		return &ValidationError{Path: "cascade.step", Err: fmt.Errorf("cascade.step must be >= 0")}
	}
	if c.Cascade.Cycle < 1 {
		return &ValidationError{Path: "cascade.cycle", Err: fmt.Errorf("cascade.cycle must be >= 1")}
	}
	if err := validateSize("default_size", c.DefaultSize); err != nil {
		return err
	}
	if err := validateSize("min_size", c.MinSize); err != nil {
		return err
	}
	for _, key := range sortedKeys(c.Apps) {
		if err := validateApp(key, c.Apps[key]); err != nil {
			return err
		}
	}
	for seq, action := range c.Hotkeys {
		if strings.TrimSpace(seq) == "" {
			return &ValidationError{Path: "hotkeys", Err: fmt.Errorf("hotkeys contains an empty key sequence")}
		}
		if err := c.validateHotkeyAction(action); err != nil {
			return &ValidationError{Path: "hotkeys." + seq, Err: err}
		}
	}
	switch c.PaletteBackend {
	case "auto", "rofi", "fuzzel", "dmenu", "wofi":
	default:
		return &ValidationError{Path: "palette_backend", Err: fmt.Errorf("palette_backend must be one of: auto, rofi, fuzzel, dmenu, wofi")}
	}
	if c.HTTP.Enabled && strings.TrimSpace(c.HTTP.Listen) == "" {
		return &ValidationError{Path: "http.listen", Err: fmt.Errorf("http.listen is required when http is enabled")}
	}
	if c.ReconcileIntervalSeconds < 0 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be >= 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Logging.Level != "" {
		switch c.Logging.Level {
		case "debug", "info", "warn", "error":
		default:
			return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warn, error")}
		}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("logging.max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("logging.max_files must be >= 0")}
	}
	return nil
}

func validateSize(path string, s geom.Size) error {
	if s.Width <= 0 {
		return &ValidationError{Path: path + ".width", Err: fmt.Errorf("width must be > 0")}
	}
	if s.Height <= 0 {
		return &ValidationError{Path: path + ".height", Err: fmt.Errorf("height must be > 0")}
	}
	return nil
}

func validateApp(key string, app AppConfig) error {
	path := "apps." + key
	if strings.TrimSpace(key) == "" {
		return &ValidationError{Path: "apps", Err: fmt.Errorf("apps contains an empty key")}
	}
	if strings.ContainsAny(key, " \t\n") {
		return &ValidationError{Path: path, Err: fmt.Errorf("app key must not contain whitespace")}
	}
	if strings.TrimSpace(app.Name) == "" {
		return &ValidationError{Path: path + ".name", Err: fmt.Errorf("name is required")}
	}
	if app.DefaultSize.Width < 0 || app.DefaultSize.Height < 0 {
		return &ValidationError{Path: path + ".default_size", Err: fmt.Errorf("default_size must not be negative")}
	}
	if app.MinSize.Width < 0 || app.MinSize.Height < 0 {
		return &ValidationError{Path: path + ".min_size", Err: fmt.Errorf("min_size must not be negative")}
	}
	return nil
}

// HotkeyAction is a parsed hotkey binding target.
type HotkeyAction struct {
	Kind   string // palette, open, close-active, minimize-active, maximize-active
	AppKey string // set for open
}

// ParseHotkeyAction parses values like "palette" or "open:about".
func ParseHotkeyAction(value string) (HotkeyAction, error) {
	value = strings.TrimSpace(value)
	if app, ok := strings.CutPrefix(value, "open:"); ok {
		app = strings.TrimSpace(app)
		if app == "" {
			return HotkeyAction{}, fmt.Errorf("open action requires an app key")
		}
		return HotkeyAction{Kind: "open", AppKey: app}, nil
	}
	switch value {
	case "palette", "close-active", "minimize-active", "maximize-active":
		return HotkeyAction{Kind: value}, nil
	}
	return HotkeyAction{}, fmt.Errorf("unknown hotkey action %q", value)
}

func (c *Config) validateHotkeyAction(value string) error {
	action, err := ParseHotkeyAction(value)
	if err != nil {
		return err
	}
	if action.Kind == "open" {
		if _, ok := c.Apps[action.AppKey]; !ok {
			return fmt.Errorf("unknown app %q", action.AppKey)
		}
	}
	return nil
}
