package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridx/pkg/orderstore"
)

const peopleJSON = `[
  {"name": "John Brown", "age": 32, "tags": "nice"},
  {"name": "Jim Green", "age": 42, "tags": "loser"},
  {"name": "Joe Black", "age": 32, "tags": "cool"}
]`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// runCLI executes a fresh root command isolated from the user's config and
// state directories.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func stubPiped(t *testing.T, piped bool) {
	t.Helper()
	orig := stdinIsPiped
	stdinIsPiped = func() bool { return piped }
	t.Cleanup(func() { stdinIsPiped = orig })
}

func TestCLI_TableOutput(t *testing.T) {
	path := writeFixture(t, "people.json", peopleJSON)
	out, err := runCLI(t, "", path, "--no-color", "--width", "60")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6, out)
	assert.True(t, strings.HasPrefix(lines[0], "Name"), lines[0])
	assert.Contains(t, lines[2], "John Brown")
	assert.Contains(t, lines[4], "Joe Black")
	assert.Contains(t, lines[5], "3 items")
	assert.NotContains(t, out, "\x1b[")
}

func TestCLI_QueryFiltersJSONOutput(t *testing.T) {
	path := writeFixture(t, "people.json", peopleJSON)
	out, err := runCLI(t, "", path, "-q", "tags=nice,cool", "-o", "json")
	require.NoError(t, err)
	require.True(t, gjson.Valid(out), out)

	assert.Equal(t, int64(2), gjson.Get(out, "#").Int())
	assert.Equal(t, "John Brown", gjson.Get(out, "0.name").String())
	assert.Equal(t, "Joe Black", gjson.Get(out, "1.name").String())
	assert.Equal(t, int64(32), gjson.Get(out, "0.age").Int())

	// Keys keep the input field order.
	name, age, tags := strings.Index(out, `"name"`), strings.Index(out, `"age"`), strings.Index(out, `"tags"`)
	assert.Less(t, name, age)
	assert.Less(t, age, tags)
}

func TestCLI_YAMLOutput(t *testing.T) {
	path := writeFixture(t, "people.json", peopleJSON)
	out, err := runCLI(t, "", path, "-o", "yaml")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "Jim Green", got[1]["name"])
	assert.True(t, strings.HasPrefix(out, "- name: John Brown"), out)
}

func TestCLI_CSVOutput(t *testing.T) {
	path := writeFixture(t, "people.json", peopleJSON)
	out, err := runCLI(t, "", path, "-o", "csv", "-q", "tags=loser")
	require.NoError(t, err)
	assert.Equal(t, "name,age,tags\nJim Green,42,loser\n", out)
}

func TestCLI_CSVInput(t *testing.T) {
	path := writeFixture(t, "people.csv", "name,city\nJohn Brown,New York\nJim Green,London\n")
	out, err := runCLI(t, "", path, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.Get(out, "#").Int())
	assert.Equal(t, "London", gjson.Get(out, "1.city").String())
}

func TestCLI_ReadsPipedStdin(t *testing.T) {
	stubPiped(t, true)
	ndjson := `{"name":"Ann","team":"red"}` + "\n" + `{"name":"Bob","team":"blue"}`
	out, err := runCLI(t, ndjson, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Bob"}, []string{gjson.Get(out, "0.name").String(), gjson.Get(out, "1.name").String()})
}

func TestCLI_NoInputShowsHelp(t *testing.T) {
	stubPiped(t, false)
	out, err := runCLI(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--query")
}

func TestCLI_Errors(t *testing.T) {
	path := writeFixture(t, "people.json", peopleJSON)

	_, err := runCLI(t, "", path, "-o", "xml")
	assert.ErrorContains(t, err, `unknown output format "xml"`)

	_, err = runCLI(t, "", path, "--position", "middle")
	assert.ErrorContains(t, err, "grid.position")

	_, err = runCLI(t, "", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read input")

	_, err = runCLI(t, "", path, "--format", "xml")
	assert.Error(t, err)

	cfg := writeFixture(t, "config.yaml", "grid:\n  pageSize: 0\n")
	_, err = runCLI(t, "", path, "-c", cfg)
	assert.ErrorContains(t, err, "grid.pageSize must be positive")
}

func TestCLI_SnapshotSearch(t *testing.T) {
	path := writeFixture(t, "people.json", peopleJSON)
	state := filepath.Join(t.TempDir(), "state.json")
	out, err := runCLI(t, "", path, "--snapshot", "--no-color", "--width", "60", "--height", "10",
		"--state-file", state, "--press", "/", "--press", "jim<CR>")
	require.NoError(t, err)

	plain := ansi.Strip(out)
	assert.Contains(t, plain, "Jim Green")
	assert.NotContains(t, plain, "John Brown")
	assert.Contains(t, plain, "1 item")
}

func TestCLI_SnapshotRestoresColumnOrder(t *testing.T) {
	path := writeFixture(t, "people.json", peopleJSON)
	state := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, orderstore.NewFileStore(state).Set(orderstore.DefaultKey, `[{"elementKey":"tags","toIndex":0}]`))

	out, err := runCLI(t, "", path, "--snapshot", "--no-color", "--width", "60", "--height", "10", "--state-file", state)
	require.NoError(t, err)
	header := ansi.Strip(strings.Split(out, "\n")[0])
	assert.True(t, strings.HasPrefix(header, "Tags"), header)
	assert.Less(t, strings.Index(header, "Name"), strings.Index(header, "Age"))

	// Printed output ignores the remembered order.
	out, err = runCLI(t, "", path, "--no-color", "--width", "60", "--state-file", state)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Name"), out)
}

func TestOrderCommands(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.json")

	out, err := runCLI(t, "", "order", "show", "--state-file", state)
	require.NoError(t, err)
	assert.Equal(t, "no saved column order under \"columnsOrder\"\n", out)

	store := orderstore.NewFileStore(state)
	require.NoError(t, store.Set(orderstore.DefaultKey, `[{"elementKey":"email","toIndex":0},{"elementKey":"key","toIndex":1}]`))
	require.NoError(t, store.Set("people", `[]`))

	out, err = runCLI(t, "", "order", "show", "--state-file", state)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"INDEX", "COLUMN"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "email"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", "key"}, strings.Fields(lines[2]))

	out, err = runCLI(t, "", "order", "keys", "--state-file", state)
	require.NoError(t, err)
	assert.Equal(t, "columnsOrder\npeople\n", out)

	out, err = runCLI(t, "", "order", "reset", "--key", "people", "--state-file", state)
	require.NoError(t, err)
	assert.Equal(t, "column order \"people\" reset\n", out)

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"columnsOrder"}, keys)
}

func TestConfigCommand(t *testing.T) {
	out, err := runCLI(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "pageSize: 20")

	out, err = runCLI(t, "", "config", "-o", "json")
	require.NoError(t, err)
	require.True(t, gjson.Valid(out), out)
	assert.Equal(t, int64(20), gjson.Get(out, "grid.pageSize").Int())
	assert.Equal(t, "dark", gjson.Get(out, "theme.default").String())

	cfg := writeFixture(t, "config.yaml", "grid:\n  pageSize: 5\ntheme:\n  default: light\n")
	out, err = runCLI(t, "", "config", "-c", cfg, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, int64(5), gjson.Get(out, "grid.pageSize").Int())
	assert.Equal(t, "light", gjson.Get(out, "theme.default").String())
	assert.True(t, gjson.Get(out, "theme.themes.dark").Exists(), "embedded themes survive the overlay")

	_, err = runCLI(t, "", "config", "-o", "toml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestConfigThemesCommand(t *testing.T) {
	out, err := runCLI(t, "", "config", "themes")
	require.NoError(t, err)
	assert.Equal(t, "Available themes (default: dark):\n - dark\n - light\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "gridx "), out)
	assert.Contains(t, out, "commit")

	flagOut, err := runCLI(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, out, flagOut)
}

func TestCLI_LimitingOutput(t *testing.T) {
	path := writeFixture(t, "people.json", peopleJSON)

	out, err := runCLI(t, "", path, "-o", "csv", "--offset", "1", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, "name,age,tags\nJim Green,42,loser\n", out)

	out, err = runCLI(t, "", path, "-o", "csv", "--tail", "1", "--offset", "2")
	require.NoError(t, err)
	assert.Equal(t, "name,age,tags\nJoe Black,32,cool\n", out)

	out, err = runCLI(t, "", path, "--no-color", "--width", "60", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 items")
	assert.NotContains(t, out, "Joe Black")

	_, err = runCLI(t, "", path, "--limit", "1", "--tail", "1")
	assert.ErrorContains(t, err, "mutually exclusive")
}
