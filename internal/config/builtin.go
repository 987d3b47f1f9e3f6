package config

import "github.com/1broseidon/deskwm/internal/geom"

// BuiltinApps returns the built-in app catalog.
//
// These are always available without being defined in YAML. Entries under
// apps.<key> patch a builtin with the same key or add a new app.
func BuiltinApps() map[string]AppConfig {
	return map[string]AppConfig{
		"projects": {
			Name:        "Projects",
			Icon:        "folder",
			Description: "Selected projects and case studies",
			DefaultSize: geom.Size{Width: 800, Height: 600},
			MinSize:     geom.Size{Width: 400, Height: 300},
			Resizable:   true,
			Pinned:      true,
			Order:       10,
		},
		"about": {
			Name:        "About Me",
			Icon:        "user",
			Description: "Background and interests",
			DefaultSize: geom.Size{Width: 600, Height: 700},
			MinSize:     geom.Size{Width: 350, Height: 400},
			Resizable:   true,
			Pinned:      true,
			Order:       20,
		},
		"contact": {
			Name:        "Contact",
			Icon:        "mail",
			Description: "Ways to get in touch",
			DefaultSize: geom.Size{Width: 500, Height: 650},
			MinSize:     geom.Size{Width: 300, Height: 400},
			Resizable:   true,
			Pinned:      true,
			Order:       30,
		},
		"resume": {
			Name:        "Resume",
			Icon:        "file-text",
			Description: "Experience and skills",
			DefaultSize: geom.Size{Width: 700, Height: 800},
			MinSize:     geom.Size{Width: 400, Height: 500},
			Resizable:   true,
			Pinned:      true,
			Order:       40,
		},
		"photography": {
			Name:        "Photography",
			Icon:        "camera",
			Description: "Photo gallery",
			DefaultSize: geom.Size{Width: 900, Height: 600},
			MinSize:     geom.Size{Width: 500, Height: 400},
			Resizable:   true,
			Pinned:      true,
			Order:       50,
		},
		"futureProjects": {
			Name:        "Future Projects",
			Icon:        "zap",
			DefaultSize: geom.Size{Width: 750, Height: 550},
			MinSize:     geom.Size{Width: 450, Height: 350},
			Resizable:   true,
			Order:       60,
		},
		"terminal": {
			Name:        "Terminal",
			Icon:        "code",
			DefaultSize: geom.Size{Width: 600, Height: 400},
			MinSize:     geom.Size{Width: 400, Height: 300},
			Resizable:   true,
			Order:       70,
		},
		"settingsApp": {
			Name:        "Settings",
			Icon:        "settings",
			DefaultSize: geom.Size{Width: 500, Height: 400},
			MinSize:     geom.Size{Width: 300, Height: 200},
			Resizable:   true,
			Order:       80,
		},
		"mobileDev": {
			Name:        "Mobile Apps",
			Icon:        "smartphone",
			DefaultSize: geom.Size{Width: 400, Height: 600},
			Resizable:   true,
			Order:       90,
		},
		"gameDev": {
			Name:        "Game Dev",
			Icon:        "gamepad",
			DefaultSize: geom.Size{Width: 600, Height: 400},
			Resizable:   true,
			Order:       100,
		},
		"dataViz": {
			Name:        "Data Viz",
			Icon:        "bar-chart",
			DefaultSize: geom.Size{Width: 700, Height: 500},
			Resizable:   true,
			Order:       110,
		},
		"aiProjectsAppDef": {
			Name:        "AI Sandbox",
			Icon:        "brain",
			DefaultSize: geom.Size{Width: 600, Height: 500},
			Resizable:   true,
			Order:       120,
		},
		"designWork": {
			Name:        "Design Work",
			Icon:        "palette",
			DefaultSize: geom.Size{Width: 800, Height: 600},
			Resizable:   true,
			Order:       130,
		},
		"backendApi": {
			Name:        "Backend APIs",
			Icon:        "server",
			DefaultSize: geom.Size{Width: 500, Height: 400},
			Resizable:   true,
			Order:       140,
		},
		"securityTools": {
			Name:        "Security Tools",
			Icon:        "shield",
			DefaultSize: geom.Size{Width: 600, Height: 450},
			Resizable:   true,
			Order:       150,
		},
	}
}
