package tui

import (
	"strings"

	"github.com/oakwood-commons/gridx/internal/config"
	"github.com/oakwood-commons/gridx/internal/ui"
)

// Config holds host-provided settings for showing a grid.
type Config struct {
	// Title is drawn above the grid.
	Title   string
	Width   int
	Height  int
	NoColor bool
	// ThemeName selects a built-in palette (dark, light). Empty uses the
	// default theme.
	ThemeName string
	// Theme, when set, replaces the palette selected by ThemeName.
	Theme *ui.Theme
	// StartKeys are fed to the grid before it is shown, in Vim notation
	// ("<Tab>", "<CR>") mixed with literal text.
	StartKeys []string
	// Keys overrides the key bindings.
	Keys *ui.KeyMap
}

// DefaultConfig returns the settings the CLI starts from.
func DefaultConfig() Config {
	return Config{ThemeName: defaultThemeName()}
}

func defaultThemeName() string {
	cfg, err := config.Default()
	if err != nil {
		return ""
	}
	return cfg.Theme.Default
}

// theme resolves the configured palette. NoColor forces the plain theme.
func (c Config) theme() ui.Theme {
	if c.NoColor {
		return ui.PlainTheme()
	}
	if c.Theme != nil {
		return *c.Theme
	}
	cfg, err := config.Default()
	if err != nil {
		return ui.PlainTheme()
	}
	if name := strings.TrimSpace(c.ThemeName); name != "" {
		cfg.Theme.Default = name
	}
	return ui.ThemeFromPalette(cfg.Theme.Palette())
}
