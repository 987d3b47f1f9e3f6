package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	viewport.width
//	viewport.source
//	taskbar_height
//	initial_z_index
//	cascade.step
//	default_size.width
//	min_size
//	apps.<key>.default_size.width
//	apps.<key>.resizable
//	hotkeys.<sequence>
//	palette_backend
//	http.listen
//	log_level
//	logging.max_files
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins, then the closest configured parent.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	if key := appKeyFromPath(path); key != "" {
		if base := res.AppBases[key]; base != "" {
			return value, Source{Kind: SourceBuiltin, Name: base}, nil
		}
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func appKeyFromPath(path string) string {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || parts[0] != "apps" {
		return ""
	}
	return parts[1]
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	unknown := fmt.Errorf("unknown path: %s", path)

	scalar := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, unknown
		}
		return v, nil
	}

	switch parts[0] {
	case "viewport":
		if len(parts) == 1 {
			return cfg.Viewport, nil
		}
		if len(parts) != 2 {
			return nil, unknown
		}
		switch parts[1] {
		case "width":
			return cfg.Viewport.Width, nil
		case "height":
			return cfg.Viewport.Height, nil
		case "source":
			return cfg.Viewport.Source, nil
		}
		return nil, unknown
	case "taskbar_height":
		return scalar(cfg.TaskbarHeight)
	case "initial_z_index":
		return scalar(cfg.InitialZIndex)
	case "cascade":
		if len(parts) == 1 {
			return cfg.Cascade, nil
		}
		if len(parts) != 2 {
			return nil, unknown
		}
		switch parts[1] {
		case "step":
			return cfg.Cascade.Step, nil
		case "cycle":
			return cfg.Cascade.Cycle, nil
		case "lift":
			return cfg.Cascade.Lift, nil
		}
		return nil, unknown
	case "default_size":
		return lookupSize(cfg.DefaultSize.Width, cfg.DefaultSize.Height, parts[1:], unknown)
	case "min_size":
		return lookupSize(cfg.MinSize.Width, cfg.MinSize.Height, parts[1:], unknown)
	case "apps":
		if len(parts) == 1 {
			return cfg.Apps, nil
		}
		app, ok := cfg.Apps[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown app %q", parts[1])
		}
		return lookupApp(app, parts[2:], unknown)
	case "hotkeys":
		if len(parts) == 1 {
			return cfg.Hotkeys, nil
		}
		// Key sequences never contain dots, but be lenient with the join.
		seq := strings.Join(parts[1:], ".")
		action, ok := cfg.Hotkeys[seq]
		if !ok {
			return nil, fmt.Errorf("unknown hotkey %q", seq)
		}
		return action, nil
	case "palette_backend":
		return scalar(cfg.PaletteBackend)
	case "display":
		return scalar(cfg.Display)
	case "xauthority":
		return scalar(cfg.XAuthority)
	case "http":
		if len(parts) == 1 {
			return cfg.HTTP, nil
		}
		if len(parts) != 2 {
			return nil, unknown
		}
		switch parts[1] {
		case "enabled":
			return cfg.HTTP.Enabled, nil
		case "listen":
			return cfg.HTTP.Listen, nil
		}
		return nil, unknown
	case "reconcile_interval_seconds":
		return scalar(cfg.ReconcileIntervalSeconds)
	case "log_level":
		return scalar(cfg.LogLevel)
	case "logging":
		logging := cfg.GetLoggingConfig()
		if len(parts) == 1 {
			return logging, nil
		}
		if len(parts) != 2 {
			return nil, unknown
		}
		switch parts[1] {
		case "enabled":
			return logging.Enabled, nil
		case "level":
			return logging.Level, nil
		case "file":
			return logging.File, nil
		case "max_size_mb":
			return logging.MaxSizeMB, nil
		case "max_files":
			return logging.MaxFiles, nil
		case "log_geometry":
			return logging.LogGeometry, nil
		}
		return nil, unknown
	}
	return nil, unknown
}

func lookupSize(width, height int, rest []string, unknown error) (any, error) {
	switch {
	case len(rest) == 0:
		return map[string]int{"width": width, "height": height}, nil
	case len(rest) == 1 && rest[0] == "width":
		return width, nil
	case len(rest) == 1 && rest[0] == "height":
		return height, nil
	}
	return nil, unknown
}

func lookupApp(app AppConfig, rest []string, unknown error) (any, error) {
	if len(rest) == 0 {
		return app, nil
	}
	switch rest[0] {
	case "default_size":
		return lookupSize(app.DefaultSize.Width, app.DefaultSize.Height, rest[1:], unknown)
	case "min_size":
		return lookupSize(app.MinSize.Width, app.MinSize.Height, rest[1:], unknown)
	}
	if len(rest) != 1 {
		return nil, unknown
	}
	switch rest[0] {
	case "name":
		return app.Name, nil
	case "icon":
		return app.Icon, nil
	case "description":
		return app.Description, nil
	case "resizable":
		return app.Resizable, nil
	case "pinned":
		return app.Pinned, nil
	case "hidden":
		return app.Hidden, nil
	case "order":
		return app.Order, nil
	}
	return nil, unknown
}
