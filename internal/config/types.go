package config

// Config is the merged gridx configuration: the embedded defaults overlaid
// with the user file.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Columns   []ColumnConfig  `yaml:"columns,omitempty"`
	Expand    ExpandConfig    `yaml:"expand,omitempty"`
	Selection SelectionConfig `yaml:"selection,omitempty"`
	// RowClass is a CEL expression returning a class name for each row.
	// It sees the record as "_" and its position as "index".
	RowClass string      `yaml:"rowClass,omitempty"`
	Theme    ThemeConfig `yaml:"theme"`
}

// GridConfig holds grid-wide switches. Pointer fields distinguish unset
// from false in user files.
type GridConfig struct {
	PageSize   *int   `yaml:"pageSize,omitempty"`
	Resizable  *bool  `yaml:"resizable,omitempty"`
	Position   string `yaml:"position,omitempty"`
	Selectable *bool  `yaml:"selectable,omitempty"`
	Expandable *bool  `yaml:"expandable,omitempty"`
	// OrderKey is the state-store key for the saved column order.
	OrderKey string `yaml:"orderKey,omitempty"`
}

// ColumnConfig declares one column.
type ColumnConfig struct {
	Title string `yaml:"title,omitempty"`
	Key   string `yaml:"key"`
	// Width is "20%", a fixed cell count such as "12", or empty for auto.
	Width    string `yaml:"width,omitempty"`
	Sortable bool   `yaml:"sortable,omitempty"`
	// SortBy is a CEL expression producing the sort value. It implies
	// Sortable.
	SortBy     string `yaml:"sortBy,omitempty"`
	Searchable bool   `yaml:"searchable,omitempty"`
	// Format is a CEL expression producing the searched text. The cell still
	// shows the raw field.
	Format string `yaml:"format,omitempty"`
	// Render is a text/template executed with the record fields as
	// strings plus "text", the raw cell value.
	Render string `yaml:"render,omitempty"`
	// Highlight names the template prop replaced by the highlighted search
	// text while this column holds the search. Requires Render.
	Highlight     string         `yaml:"highlight,omitempty"`
	Filters       []FilterConfig `yaml:"filters,omitempty"`
	DefaultFilter []string       `yaml:"defaultFilter,omitempty"`
}

// FilterConfig is one checklist entry. An empty Label shows the value.
type FilterConfig struct {
	Label string `yaml:"label,omitempty"`
	Value string `yaml:"value"`
}

// ExpandConfig controls the expansion panel.
type ExpandConfig struct {
	// Render is a text/template over the record fields. Empty lists every
	// field as "name: value".
	Render string `yaml:"render,omitempty"`
	// When is a CEL predicate limiting which rows expand.
	When string `yaml:"when,omitempty"`
}

// SelectionConfig customises row checkboxes.
type SelectionConfig struct {
	// Disabled is a CEL predicate.
	Disabled string `yaml:"disabled,omitempty"`
	// Label is a text/template over the record fields.
	Label string `yaml:"label,omitempty"`
}

// ThemeConfig selects a palette by name.
type ThemeConfig struct {
	Default string                   `yaml:"default,omitempty"`
	Themes  map[string]PaletteConfig `yaml:"themes,omitempty"`
}

// PaletteConfig holds colors as ANSI 256 numbers or hex strings. Classes
// maps row class names to foreground colors.
type PaletteConfig struct {
	HeaderFG    string            `yaml:"headerFg,omitempty"`
	HeaderBG    string            `yaml:"headerBg,omitempty"`
	Border      string            `yaml:"border,omitempty"`
	CursorFG    string            `yaml:"cursorFg,omitempty"`
	CursorBG    string            `yaml:"cursorBg,omitempty"`
	Selected    string            `yaml:"selected,omitempty"`
	HighlightFG string            `yaml:"highlightFg,omitempty"`
	HighlightBG string            `yaml:"highlightBg,omitempty"`
	Muted       string            `yaml:"muted,omitempty"`
	Accent      string            `yaml:"accent,omitempty"`
	Error       string            `yaml:"error,omitempty"`
	Classes     map[string]string `yaml:"classes,omitempty"`
}

// Palette returns the selected palette, falling back to "dark".
func (t ThemeConfig) Palette() PaletteConfig {
	if p, ok := t.Themes[t.Default]; ok {
		return p
	}
	return t.Themes["dark"]
}
