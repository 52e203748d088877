package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridx/pkg/grid"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// DefaultConfigYAML returns a copy of the embedded default configuration.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default decodes the embedded defaults.
func Default() (Config, error) {
	var cfg Config
	if len(embeddedDefaultConfig) == 0 {
		return cfg, fmt.Errorf("embedded default config is empty")
	}
	if err := yaml.Unmarshal(embeddedDefaultConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("decode embedded default config: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/<app>/config.yaml, falling back to
// ~/.config/<app>/config.yaml.
func DefaultPath(app string) string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, app, "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", app, "config.yaml")
}

// Load returns the defaults overlaid with the file at path. An explicit
// path must exist. With an empty path the default location is used when
// present.
func Load(path, app string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	explicit := path != ""
	if !explicit {
		path = DefaultPath(app)
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Overlay(&cfg, data); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Overlay decodes data on top of cfg. Fields present in data replace the
// current values; lists replace wholesale and theme maps gain or replace
// entries by name.
func Overlay(cfg *Config, data []byte) error {
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Validate reports every problem in cfg at once.
func (c Config) Validate() error {
	var errs []error
	if c.Grid.PageSize != nil && *c.Grid.PageSize < 1 {
		errs = append(errs, fmt.Errorf("grid.pageSize must be positive, got %d", *c.Grid.PageSize))
	}
	if c.Grid.Position != "" {
		if _, err := grid.ParsePosition(c.Grid.Position); err != nil {
			errs = append(errs, fmt.Errorf("grid.position: %w", err))
		}
	}
	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		where := fmt.Sprintf("columns[%d]", i)
		if col.Key == "" {
			errs = append(errs, fmt.Errorf("%s: key is required", where))
		} else {
			where = fmt.Sprintf("columns[%d] (%s)", i, col.Key)
			if seen[col.Key] {
				errs = append(errs, fmt.Errorf("%s: duplicate key", where))
			}
			seen[col.Key] = true
		}
		if _, err := grid.ParseWidth(col.Width); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
		if col.Highlight != "" && col.Render == "" {
			errs = append(errs, fmt.Errorf("%s: highlight requires render", where))
		}
		for _, f := range col.Filters {
			if f.Value == "" {
				errs = append(errs, fmt.Errorf("%s: filter value is required", where))
			}
		}
	}
	if _, ok := c.Theme.Themes[c.Theme.Default]; !ok && c.Theme.Default != "" {
		errs = append(errs, fmt.Errorf("theme.default: unknown theme %q", c.Theme.Default))
	}
	return errors.Join(errs...)
}
