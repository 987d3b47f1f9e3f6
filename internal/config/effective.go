package config

import (
	"fmt"
	"sort"

	"github.com/1broseidon/deskwm/internal/geom"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

// BuildEffectiveConfig overlays raw onto the defaults. The returned map records,
// for every app, the builtin entry it was patched from ("" for user apps).
func BuildEffectiveConfig(raw RawConfig) (*Config, map[string]string, error) {
	cfg := DefaultConfig()

	if raw.Viewport != nil {
		if raw.Viewport.Width != nil {
			cfg.Viewport.Width = *raw.Viewport.Width
		}
		if raw.Viewport.Height != nil {
			cfg.Viewport.Height = *raw.Viewport.Height
		}
		if raw.Viewport.Source != nil {
			cfg.Viewport.Source = *raw.Viewport.Source
		}
	}
	if raw.TaskbarHeight != nil {
		cfg.TaskbarHeight = *raw.TaskbarHeight
	}
	if raw.InitialZIndex != nil {
		cfg.InitialZIndex = *raw.InitialZIndex
	}
	if raw.Cascade != nil {
		if raw.Cascade.Step != nil {
			cfg.Cascade.Step = *raw.Cascade.Step
		}
		if raw.Cascade.Cycle != nil {
			cfg.Cascade.Cycle = *raw.Cascade.Cycle
		}
		if raw.Cascade.Lift != nil {
			cfg.Cascade.Lift = *raw.Cascade.Lift
		}
	}
	cfg.DefaultSize = applyRawSize(cfg.DefaultSize, raw.DefaultSize)
	cfg.MinSize = applyRawSize(cfg.MinSize, raw.MinSize)

	appBases, err := applyApps(cfg, raw)
	if err != nil {
		return nil, nil, err
	}

	if raw.Hotkeys != nil {
		if cfg.Hotkeys == nil {
			cfg.Hotkeys = make(map[string]string, len(raw.Hotkeys))
		}
		for seq, action := range raw.Hotkeys {
			// An empty action unbinds a default hotkey.
			if action == "" {
				delete(cfg.Hotkeys, seq)
				continue
			}
			cfg.Hotkeys[seq] = action
		}
	}
	if raw.PaletteBackend != nil {
		cfg.PaletteBackend = *raw.PaletteBackend
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.HTTP != nil {
		if raw.HTTP.Enabled != nil {
			cfg.HTTP.Enabled = *raw.HTTP.Enabled
		}
		if raw.HTTP.Listen != nil {
			cfg.HTTP.Listen = *raw.HTTP.Listen
		}
	}
	if raw.ReconcileIntervalSeconds != nil {
		cfg.ReconcileIntervalSeconds = *raw.ReconcileIntervalSeconds
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	if raw.Logging != nil {
		if raw.Logging.Enabled != nil {
			cfg.Logging.Enabled = *raw.Logging.Enabled
		}
		if raw.Logging.Level != nil {
			cfg.Logging.Level = *raw.Logging.Level
		}
		if raw.Logging.File != nil {
			cfg.Logging.File = *raw.Logging.File
		}
		if raw.Logging.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *raw.Logging.MaxSizeMB
		}
		if raw.Logging.MaxFiles != nil {
			cfg.Logging.MaxFiles = *raw.Logging.MaxFiles
		}
		if raw.Logging.LogGeometry != nil {
			cfg.Logging.LogGeometry = *raw.Logging.LogGeometry
		}
	}

	return cfg, appBases, nil
}

func applyRawSize(base geom.Size, patch *RawSize) geom.Size {
	if patch == nil {
		return base
	}
	if patch.Width != nil {
		base.Width = *patch.Width
	}
	if patch.Height != nil {
		base.Height = *patch.Height
	}
	return base
}

func applyApps(cfg *Config, raw RawConfig) (map[string]string, error) {
	builtin := BuiltinApps()
	bases := make(map[string]string, len(builtin)+len(raw.Apps))
	for key := range builtin {
		bases[key] = key
	}

	for _, key := range sortedKeys(raw.Apps) {
		patch := raw.Apps[key]
		base, ok := builtin[key]
		if !ok {
			if patch.Name == nil {
				return nil, &ValidationError{
					Path: "apps." + key + ".name",
					Err:  fmt.Errorf("name is required for app %q", key),
				}
			}
			base = AppConfig{Resizable: true, Order: 1000}
			bases[key] = ""
		}
		cfg.Apps[key] = mergeAppPatch(base, patch)
	}
	return bases, nil
}

func mergeAppPatch(base AppConfig, patch RawApp) AppConfig {
	out := base
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Icon != nil {
		out.Icon = *patch.Icon
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	out.DefaultSize = applyRawSize(out.DefaultSize, patch.DefaultSize)
	out.MinSize = applyRawSize(out.MinSize, patch.MinSize)
	if patch.Resizable != nil {
		out.Resizable = *patch.Resizable
	}
	if patch.Pinned != nil {
		out.Pinned = *patch.Pinned
	}
	if patch.Hidden != nil {
		out.Hidden = *patch.Hidden
	}
	if patch.Order != nil {
		out.Order = *patch.Order
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
