package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridx/internal/cel"
	"github.com/oakwood-commons/gridx/pkg/grid"
)

func newEvaluator(t *testing.T) *cel.Evaluator {
	t.Helper()
	ev, err := cel.NewEvaluator()
	require.NoError(t, err)
	return ev
}

func person(key, first, last string, age float64) grid.MapRecord {
	return grid.MapRecord{Key: key, Values: map[string]any{
		"key": key, "firstName": first, "lastName": last, "age": age,
	}}
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, *cfg.Grid.PageSize)
	assert.Equal(t, "columnsOrder", cfg.Grid.OrderKey)
	assert.Equal(t, "dark", cfg.Theme.Default)
	assert.Equal(t, "203", cfg.Theme.Palette().Classes["danger"])
	assert.NotEmpty(t, DefaultConfigYAML())
}

func TestLoadOverlaysUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
grid:
  pageSize: 5
  selectable: true
columns:
  - key: name
    searchable: true
theme:
  default: light
`), 0o600))

	cfg, err := Load(path, "gridx")
	require.NoError(t, err)
	assert.Equal(t, 5, *cfg.Grid.PageSize)
	assert.True(t, *cfg.Grid.Selectable)
	assert.True(t, *cfg.Grid.Resizable, "unset fields keep defaults")
	assert.Equal(t, "bottomRight", cfg.Grid.Position)
	require.Len(t, cfg.Columns, 1)
	assert.Equal(t, "light", cfg.Theme.Default)
	assert.Contains(t, cfg.Theme.Themes, "dark", "theme map keeps default entries")

	_, err = Load(filepath.Join(dir, "missing.yaml"), "gridx")
	assert.Error(t, err, "explicit path must exist")
}

func TestLoadDefaultLocation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "gridx", "config.yaml"), DefaultPath("gridx"))

	cfg, err := Load("", "gridx")
	require.NoError(t, err, "missing default file is fine")
	assert.Equal(t, 20, *cfg.Grid.PageSize)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gridx"), 0o755))
	require.NoError(t, os.WriteFile(DefaultPath("gridx"), []byte("grid:\n  position: topLeft\n"), 0o600))
	cfg, err = Load("", "gridx")
	require.NoError(t, err)
	assert.Equal(t, "topLeft", cfg.Grid.Position)
}

func TestValidateAggregates(t *testing.T) {
	zero := 0
	cfg := Config{
		Grid: GridConfig{PageSize: &zero, Position: "middle"},
		Columns: []ColumnConfig{
			{Key: "a", Width: "150%"},
			{Key: "a", Highlight: "text"},
			{Filters: []FilterConfig{{Label: "x"}}},
		},
		Theme: ThemeConfig{Default: "neon"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"grid.pageSize", "grid.position", "columns[0] (a)", "duplicate key",
		"highlight requires render", "key is required", "filter value is required", "unknown theme",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestCompileInfersColumns(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	c, err := cfg.Compile(newEvaluator(t), []string{"key", "firstName", "last_name"})
	require.NoError(t, err)

	require.Len(t, c.Columns, 3)
	assert.Equal(t, "First Name", c.Columns[1].Title)
	assert.Equal(t, "Last Name", c.Columns[2].Title)
	assert.True(t, c.Columns[1].Sortable())
	assert.True(t, c.Columns[1].Searchable)
	assert.Equal(t, grid.CellPlain, c.Columns[1].Cell.Kind())
	assert.Equal(t, 20, c.Pagination.PageSize)
	assert.True(t, c.Pagination.Resizable)
	assert.False(t, c.Selectable)
	assert.Equal(t, "columnsOrder", c.OrderKey)

	props := c.Props([]grid.MapRecord{person("1", "John", "Brown", 32)}, logr.Discard())
	assert.Len(t, props.Rows, 1)
	assert.Len(t, props.Columns, 3)
}

func TestCompileCellStrategies(t *testing.T) {
	cfg := Config{Columns: []ColumnConfig{
		{Key: "firstName", Searchable: true},
		{Key: "lastName", Format: `_.lastName.upperAscii()`, Searchable: true},
		{Key: "age", Render: `<{{.text}}y>`},
		{Key: "name", Title: "Name", Render: `{{.firstName}} {{.lastName}}`, Highlight: "firstName", Format: `_.firstName`, Searchable: true},
	}}
	c, err := cfg.Compile(newEvaluator(t), nil)
	require.NoError(t, err)

	hl := grid.MarkerHighlighter("[", "]")
	rec := person("1", "John", "Brown", 32)

	kinds := []grid.CellKind{grid.CellPlain, grid.CellFormatted, grid.CellCustom, grid.CellCustomHighlight}
	for i, want := range kinds {
		assert.Equal(t, want, c.Columns[i].Cell.Kind(), c.Columns[i].Key)
	}

	render := func(i int, query string) string {
		col := c.Columns[i]
		return col.Cell.Render(col, rec, query, hl)
	}
	assert.Equal(t, "J[oh]n", render(0, "oh"))
	assert.Equal(t, "B[ro]wn", render(1, "ro"))
	assert.Equal(t, "Brown", render(1, ""))
	assert.Equal(t, "<32y>", render(2, ""))
	assert.Equal(t, "[3]2", render(2, "3"))
	assert.Equal(t, "John Brown", render(3, ""))
	assert.Equal(t, "[Jo]hn Brown", render(3, "jo"))
	assert.Equal(t, "BROWN", c.Columns[1].SearchText(rec))
}

func TestCompileSortByAndPredicates(t *testing.T) {
	sel, exp := true, true
	cfg := Config{
		Grid: GridConfig{Selectable: &sel, Expandable: &exp, Position: "top-left"},
		Columns: []ColumnConfig{
			{Key: "name", SortBy: `size(_.lastName)`, Width: "30%"},
			{Key: "age", Sortable: true, Width: "6"},
		},
		Expand:    ExpandConfig{Render: `{{.firstName}} is {{.age}}`, When: `_.age > 40.0`},
		Selection: SelectionConfig{Disabled: `_.firstName == "Disabled User"`, Label: `select {{.firstName}}`},
		RowClass:  `_.age > 40.0 ? "danger" : (index % 2 == 1 ? "muted" : "")`,
	}
	c, err := cfg.Compile(newEvaluator(t), nil)
	require.NoError(t, err)

	assert.Equal(t, grid.TopLeft, c.Pagination.Position)
	assert.Equal(t, grid.Percent(30), c.Columns[0].Width)
	assert.Equal(t, grid.Fixed(6), c.Columns[1].Width)

	short := person("1", "Ann", "Li", 20)
	long := person("2", "Bob", "Anderson", 45)
	assert.Equal(t, -1, c.Columns[0].Compare(short, long))
	assert.Equal(t, 1, c.Columns[1].Compare(long, short))

	assert.True(t, c.Selectable)
	assert.True(t, c.Expandable)
	assert.False(t, c.RowExpandable(short))
	assert.True(t, c.RowExpandable(long))
	assert.Equal(t, "Bob is 45", c.ExpandedRender(long))

	assert.Equal(t, grid.CheckboxProps{Label: "select Ann"}, c.CheckboxProps(short))
	assert.True(t, c.CheckboxProps(person("3", "Disabled User", "X", 1)).Disabled)

	assert.Equal(t, "", c.RowClass(short, 0))
	assert.Equal(t, "muted", c.RowClass(short, 1))
	assert.Equal(t, "danger", c.RowClass(long, 0))
}

func TestCompileErrors(t *testing.T) {
	ev := newEvaluator(t)
	for name, cfg := range map[string]Config{
		"format":   {Columns: []ColumnConfig{{Key: "a", Format: "_.a +"}}},
		"sortBy":   {Columns: []ColumnConfig{{Key: "a", SortBy: ")"}}},
		"render":   {Columns: []ColumnConfig{{Key: "a", Render: "{{.a"}}},
		"when":     {Expand: ExpandConfig{When: "=="}},
		"rowClass": {RowClass: "'"},
		"invalid":  {Columns: []ColumnConfig{{Key: ""}}},
	} {
		_, err := cfg.Compile(ev, nil)
		assert.Error(t, err, name)
	}
}

func TestDescribeRecord(t *testing.T) {
	rec := grid.MapRecord{Key: "1", Values: map[string]any{"b": 2, "a": "x", "z": nil}}
	assert.Equal(t, "b: 2\na: x\nz: ", DescribeRecord(rec, []string{"b", "missing"}))
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"key":        "Key",
		"firstName":  "First Name",
		"last_name":  "Last Name",
		"userID":     "User ID",
		"created-at": "Created At",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Humanize(in), in)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	out, err := Marshal(cfg)
	require.NoError(t, err)

	var back Config
	require.NoError(t, Overlay(&back, out))
	assert.Equal(t, cfg, back)
}
