package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawSize struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawViewport struct {
	Width  *int            `yaml:"width"`
	Height *int            `yaml:"height"`
	Source *ViewportSource `yaml:"source"`
}

type RawCascade struct {
	Step  *int `yaml:"step"`
	Cycle *int `yaml:"cycle"`
	Lift  *int `yaml:"lift"`
}

type RawApp struct {
	Name        *string  `yaml:"name"`
	Icon        *string  `yaml:"icon"`
	Description *string  `yaml:"description"`
	DefaultSize *RawSize `yaml:"default_size"`
	MinSize     *RawSize `yaml:"min_size"`
	Resizable   *bool    `yaml:"resizable"`
	Pinned      *bool    `yaml:"pinned"`
	Hidden      *bool    `yaml:"hidden"`
	Order       *int     `yaml:"order"`
}

type RawHTTP struct {
	Enabled *bool   `yaml:"enabled"`
	Listen  *string `yaml:"listen"`
}

type RawLoggingConfig struct {
	Enabled     *bool   `yaml:"enabled"`
	Level       *string `yaml:"level"`
	File        *string `yaml:"file"`
	MaxSizeMB   *int    `yaml:"max_size_mb"`
	MaxFiles    *int    `yaml:"max_files"`
	LogGeometry *bool   `yaml:"log_geometry"`
}

type RawConfig struct {
	Include                  IncludeList       `yaml:"include"`
	Viewport                 *RawViewport      `yaml:"viewport"`
	TaskbarHeight            *int              `yaml:"taskbar_height"`
	InitialZIndex            *int              `yaml:"initial_z_index"`
	Cascade                  *RawCascade       `yaml:"cascade"`
	DefaultSize              *RawSize          `yaml:"default_size"`
	MinSize                  *RawSize          `yaml:"min_size"`
	Apps                     map[string]RawApp `yaml:"apps"`
	Hotkeys                  map[string]string `yaml:"hotkeys"`
	PaletteBackend           *string           `yaml:"palette_backend"`
	Display                  *string           `yaml:"display"`
	XAuthority               *string           `yaml:"xauthority"`
	HTTP                     *RawHTTP          `yaml:"http"`
	ReconcileIntervalSeconds *int              `yaml:"reconcile_interval_seconds"`
	LogLevel                 *string           `yaml:"log_level"`
	Logging                  *RawLoggingConfig `yaml:"logging"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Viewport != nil {
		if out.Viewport == nil {
			out.Viewport = &RawViewport{}
		}
		if overlay.Viewport.Width != nil {
			out.Viewport.Width = overlay.Viewport.Width
		}
		if overlay.Viewport.Height != nil {
			out.Viewport.Height = overlay.Viewport.Height
		}
		if overlay.Viewport.Source != nil {
			out.Viewport.Source = overlay.Viewport.Source
		}
	}
	if overlay.TaskbarHeight != nil {
		out.TaskbarHeight = overlay.TaskbarHeight
	}
	if overlay.InitialZIndex != nil {
		out.InitialZIndex = overlay.InitialZIndex
	}
	if overlay.Cascade != nil {
		if out.Cascade == nil {
			out.Cascade = &RawCascade{}
		}
		if overlay.Cascade.Step != nil {
			out.Cascade.Step = overlay.Cascade.Step
		}
		if overlay.Cascade.Cycle != nil {
			out.Cascade.Cycle = overlay.Cascade.Cycle
		}
		if overlay.Cascade.Lift != nil {
			out.Cascade.Lift = overlay.Cascade.Lift
		}
	}
	out.DefaultSize = mergeRawSize(out.DefaultSize, overlay.DefaultSize)
	out.MinSize = mergeRawSize(out.MinSize, overlay.MinSize)

	if overlay.Apps != nil {
		if out.Apps == nil {
			out.Apps = make(map[string]RawApp, len(overlay.Apps))
		}
		for key, app := range overlay.Apps {
			base, ok := out.Apps[key]
			if !ok {
				out.Apps[key] = app
				continue
			}
			out.Apps[key] = mergeRawApp(base, app)
		}
	}
	if overlay.Hotkeys != nil {
		if out.Hotkeys == nil {
			out.Hotkeys = make(map[string]string, len(overlay.Hotkeys))
		}
		for seq, action := range overlay.Hotkeys {
			out.Hotkeys[seq] = action
		}
	}
	if overlay.PaletteBackend != nil {
		out.PaletteBackend = overlay.PaletteBackend
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.HTTP != nil {
		if out.HTTP == nil {
			out.HTTP = &RawHTTP{}
		}
		if overlay.HTTP.Enabled != nil {
			out.HTTP.Enabled = overlay.HTTP.Enabled
		}
		if overlay.HTTP.Listen != nil {
			out.HTTP.Listen = overlay.HTTP.Listen
		}
	}
	if overlay.ReconcileIntervalSeconds != nil {
		out.ReconcileIntervalSeconds = overlay.ReconcileIntervalSeconds
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Logging != nil {
		if out.Logging == nil {
			out.Logging = &RawLoggingConfig{}
		}
		if overlay.Logging.Enabled != nil {
			out.Logging.Enabled = overlay.Logging.Enabled
		}
		if overlay.Logging.Level != nil {
			out.Logging.Level = overlay.Logging.Level
		}
		if overlay.Logging.File != nil {
			out.Logging.File = overlay.Logging.File
		}
		if overlay.Logging.MaxSizeMB != nil {
			out.Logging.MaxSizeMB = overlay.Logging.MaxSizeMB
		}
		if overlay.Logging.MaxFiles != nil {
			out.Logging.MaxFiles = overlay.Logging.MaxFiles
		}
		if overlay.Logging.LogGeometry != nil {
			out.Logging.LogGeometry = overlay.Logging.LogGeometry
		}
	}

	// Includes are resolved by the loader; keep the last writer for
	// introspection only.
	if overlay.Include != nil {
		out.Include = overlay.Include
	}

	return out
}

func mergeRawSize(base *RawSize, overlay *RawSize) *RawSize {
	if overlay == nil {
		return base
	}
	out := RawSize{}
	if base != nil {
		out = *base
	}
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	return &out
}

func mergeRawApp(base RawApp, overlay RawApp) RawApp {
	out := base
	if overlay.Name != nil {
		out.Name = overlay.Name
	}
	if overlay.Icon != nil {
		out.Icon = overlay.Icon
	}
	if overlay.Description != nil {
		out.Description = overlay.Description
	}
	out.DefaultSize = mergeRawSize(out.DefaultSize, overlay.DefaultSize)
	out.MinSize = mergeRawSize(out.MinSize, overlay.MinSize)
	if overlay.Resizable != nil {
		out.Resizable = overlay.Resizable
	}
	if overlay.Pinned != nil {
		out.Pinned = overlay.Pinned
	}
	if overlay.Hidden != nil {
		out.Hidden = overlay.Hidden
	}
	if overlay.Order != nil {
		out.Order = overlay.Order
	}
	return out
}
