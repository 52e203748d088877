package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridx/internal/config"
	"github.com/oakwood-commons/gridx/internal/ui/table"
	"github.com/oakwood-commons/gridx/pkg/grid"
)

type rec = grid.MapRecord

func people() []rec {
	return []rec{
		{Key: "1", Values: map[string]any{"name": "John Brown", "age": 32, "address": "New York", "tags": "nice"}},
		{Key: "2", Values: map[string]any{"name": "Jim Green", "age": 42, "address": "London", "tags": "loser"}},
		{Key: "3", Values: map[string]any{"name": "Joe Black", "age": 32, "address": "Sydney", "tags": "cool"}},
	}
}

func peopleColumns() []grid.Column[rec] {
	return []grid.Column[rec]{
		{Title: "Name", Key: "name", Searchable: true, Compare: grid.CompareText[rec]("name")},
		{Title: "Age", Key: "age", Compare: grid.CompareText[rec]("age")},
		{Title: "Address", Key: "address"},
		{Title: "Tags", Key: "tags", Filters: []grid.FilterOption{
			{Label: "Nice", Value: "nice"}, {Label: "Loser", Value: "loser"}, {Label: "Cool", Value: "cool"},
		}},
	}
}

type host struct {
	rows     []rec
	cols     []grid.Column[rec]
	selected []rec
}

func newModel(tweak func(*Options[rec])) (*Model[rec], *host) {
	h := &host{}
	opts := Options[rec]{
		Props: grid.Props[rec]{
			Rows:            people(),
			Columns:         peopleColumns(),
			OnRowsChange:    func(r []rec) { h.rows = r },
			OnColumnsChange: func(c []grid.Column[rec]) { h.cols = c },
			OnSelect:        func(s []rec) { h.selected = s },
		},
		Width:  80,
		Height: 24,
	}
	if tweak != nil {
		tweak(&opts)
	}
	return New(opts), h
}

func keysOf(rows []rec) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Key)
	}
	return out
}

func frameKeys(m *Model[rec]) []string {
	var out []string
	for _, r := range m.Grid().Frame().Rows {
		out = append(out, r.Key)
	}
	return out
}

func plain(m *Model[rec]) string { return ansi.Strip(m.Render()) }

func TestSearchPopover(t *testing.T) {
	m, _ := newModel(nil)
	ApplyStartupKeys(m, []string{"/"})
	assert.Equal(t, ModeSearch, m.Mode())
	assert.Contains(t, plain(m), "Search Name")

	ApplyStartupKeys(m, []string{"jim", "<CR>"})
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, grid.SearchState{Query: "jim", ColumnKey: "name"}, m.Grid().SearchState())
	assert.Equal(t, []string{"2"}, frameKeys(m))

	out := plain(m)
	assert.Contains(t, out, "Jim Green")
	assert.Contains(t, out, "1 item")
	assert.NotContains(t, out, "John Brown")

	ApplyStartupKeys(m, []string{"/"})
	assert.Equal(t, "jim", m.SearchInput().Value(), "reopening shows the active query")
	ApplyStartupKeys(m, []string{"<C-r>"})
	assert.Equal(t, ModeNormal, m.Mode())
	assert.False(t, m.Grid().SearchState().Active())
	assert.Len(t, frameKeys(m), 3)
}

func TestSearchKeepsSurroundingSpaces(t *testing.T) {
	m, _ := newModel(nil)
	ApplyStartupKeys(m, []string{"/", "<Space>green<CR>"})
	assert.Equal(t, grid.SearchState{Query: " green", ColumnKey: "name"}, m.Grid().SearchState())
	assert.Equal(t, []string{"2"}, frameKeys(m))
}

func TestSearchFocusIsDelayed(t *testing.T) {
	m, _ := newModel(nil)
	_, cmd := m.Update(tea.KeyPressMsg{Code: '/', Text: "/"})
	require.NotNil(t, cmd)
	assert.False(t, m.SearchInput().Focused())

	m.Update(searchFocusMsg{seq: m.focusSeq - 1})
	assert.False(t, m.SearchInput().Focused(), "stale focus ticks are ignored")

	m.Update(searchFocusMsg{seq: m.focusSeq})
	assert.True(t, m.SearchInput().Focused())

	ApplyStartupKeys(m, []string{"<Esc>"})
	assert.Equal(t, ModeNormal, m.Mode())
	m.Update(searchFocusMsg{seq: m.focusSeq})
	assert.False(t, m.SearchInput().Focused(), "closed popovers stay blurred")
}

func TestSearchWithoutSearchableColumn(t *testing.T) {
	m, _ := newModel(func(o *Options[rec]) {
		o.Props.Columns = []grid.Column[rec]{{Title: "Age", Key: "age"}}
	})
	ApplyStartupKeys(m, []string{"/"})
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, "no searchable column here", m.Status())
}

func TestFilterPopover(t *testing.T) {
	m, _ := newModel(nil)
	ApplyStartupKeys(m, []string{"f"})
	require.Equal(t, ModeFilter, m.Mode())
	assert.Equal(t, 3, m.Table().Column(), "header cursor jumps to the filterable column")
	assert.Contains(t, plain(m), "Filter Tags")

	ApplyStartupKeys(m, []string{"<Space>", "<Down>", "<Space>"})
	assert.Equal(t, []string{"nice", "loser"}, m.Grid().PendingFilter("tags"))
	assert.Empty(t, m.Grid().AppliedFilter("tags"), "nothing applies before confirming")

	ApplyStartupKeys(m, []string{"<CR>"})
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, []string{"1", "2"}, frameKeys(m))

	ApplyStartupKeys(m, []string{"f", "<Esc>"})
	assert.Equal(t, []string{"1", "2"}, frameKeys(m), "cancel keeps the applied filter")

	ApplyStartupKeys(m, []string{"f", "<C-r>"})
	assert.Len(t, frameKeys(m), 3)
	assert.Empty(t, m.Grid().AppliedFilter("tags"))
}

func TestSortFromHeader(t *testing.T) {
	m, _ := newModel(nil)
	ApplyStartupKeys(m, []string{"<Tab>", "s"})
	assert.Equal(t, table.FocusHeader, m.Table().Focus())
	assert.Equal(t, []string{"2", "3", "1"}, frameKeys(m))
	assert.Contains(t, plain(m), "Name ▲")

	ApplyStartupKeys(m, []string{"<CR>"})
	assert.Equal(t, []string{"1", "3", "2"}, frameKeys(m), "enter on a header cycles the sort")

	ApplyStartupKeys(m, []string{"<Right>", "<Right>", "s"})
	assert.Equal(t, "Address is not sortable", m.Status())
}

func TestSelection(t *testing.T) {
	m, h := newModel(func(o *Options[rec]) {
		o.Props.Selectable = true
		o.Props.CheckboxProps = func(r rec) grid.CheckboxProps {
			return grid.CheckboxProps{Disabled: r.Key == "3"}
		}
	})
	ApplyStartupKeys(m, []string{"<Space>"})
	assert.Equal(t, []string{"1"}, keysOf(h.selected))
	assert.Equal(t, h.selected, m.Selected())

	ApplyStartupKeys(m, []string{"a"})
	assert.Equal(t, []string{"1", "2"}, keysOf(m.Selected()), "disabled rows are skipped")
	assert.True(t, strings.HasPrefix(strings.Split(plain(m), "\n")[0], "[x]"))

	ApplyStartupKeys(m, []string{"a"})
	assert.Empty(t, m.Selected())
}

func TestExpansion(t *testing.T) {
	m, _ := newModel(func(o *Options[rec]) {
		o.Props.Expandable = true
		o.Props.ExpandedRender = func(r rec) string { return "lives in " + grid.FieldText(r, "address") }
		o.Props.RowExpandable = func(r rec) bool { return r.Key != "2" }
	})
	assert.NotContains(t, plain(m), "lives in")
	ApplyStartupKeys(m, []string{"<CR>"})
	assert.True(t, m.Grid().IsExpanded("1"))
	assert.Contains(t, plain(m), "lives in New York")

	ApplyStartupKeys(m, []string{"<Down>", "e"})
	assert.False(t, m.Grid().IsExpanded("2"), "rows the predicate rejects never expand")
}

func TestPaginationKeys(t *testing.T) {
	m, _ := newModel(func(o *Options[rec]) {
		o.Props.Pagination = grid.Pagination{PageSize: 2, Resizable: true, SizeOptions: []int{2, 5}}
	})
	assert.Equal(t, []string{"1", "2"}, frameKeys(m))
	out := plain(m)
	assert.Contains(t, out, "3 items")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "2 / page")

	ApplyStartupKeys(m, []string{"]"})
	assert.Equal(t, []string{"3"}, frameKeys(m))
	ApplyStartupKeys(m, []string{"]"})
	assert.Equal(t, 1, m.Grid().Page(), "last page stays put")

	ApplyStartupKeys(m, []string{"+"})
	assert.Equal(t, 5, m.Grid().PageSize())
	assert.Equal(t, []string{"1", "2", "3"}, frameKeys(m))
}

func TestPaginationBarPosition(t *testing.T) {
	m, _ := newModel(func(o *Options[rec]) {
		o.Title = "People"
		o.Props.Pagination = grid.Pagination{Position: grid.TopLeft}
	})
	lines := strings.Split(plain(m), "\n")
	assert.Equal(t, "People", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "3 items"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Name"), lines[2])

	m, _ = newModel(nil)
	lines = strings.Split(plain(m), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "Name"), lines[0])
	assert.True(t, strings.HasSuffix(lines[5], "3 items"), "bottom right: %q", lines[5])
}

func TestRowGrab(t *testing.T) {
	m, h := newModel(func(o *Options[rec]) { o.Props.Expandable = true })
	ApplyStartupKeys(m, []string{"m"})
	require.Equal(t, ModeGrabRow, m.Mode())
	assert.Contains(t, plain(m), table.GrabMark)

	ApplyStartupKeys(m, []string{"<Down>", "<Down>", "<CR>"})
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, []string{"2", "3", "1"}, keysOf(h.rows))
	assert.Equal(t, []string{"2", "3", "1"}, frameKeys(m))
	assert.Equal(t, 2, m.Table().Cursor(), "cursor follows the moved row")

	ApplyStartupKeys(m, []string{"m", "<Up>", "<Esc>"})
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, []string{"2", "3", "1"}, frameKeys(m), "cancel leaves the order alone")
}

type memOrder struct {
	saved   []grid.OrderEntry
	cleared bool
}

func (o *memOrder) SaveOrder(e []grid.OrderEntry) error { o.saved = e; return nil }
func (o *memOrder) ClearOrder() error                   { o.cleared = true; return nil }

func TestColumnGrabPersistsAndResets(t *testing.T) {
	order := &memOrder{}
	m, h := newModel(func(o *Options[rec]) { o.Props.Order = order })
	ApplyStartupKeys(m, []string{"<Tab>", "m", "<Right>", "<CR>"})
	assert.Equal(t, ModeNormal, m.Mode())

	var keys []string
	for _, c := range h.cols {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"age", "name", "address", "tags"}, keys)
	assert.Equal(t, "age", m.Grid().Columns()[0].Key)
	require.Len(t, order.saved, 4)
	assert.Equal(t, grid.OrderEntry{ElementKey: "name", ToIndex: 1}, order.saved[1])

	ApplyStartupKeys(m, []string{"R"})
	assert.Equal(t, "name", m.Grid().Columns()[0].Key)
	assert.True(t, order.cleared)
}

func TestMouse(t *testing.T) {
	m, h := newModel(func(o *Options[rec]) { o.Props.Selectable = true })
	m.Render()
	hits := m.Table().Hits()

	m.Update(tea.MouseClickMsg{X: 1, Y: 2, Button: tea.MouseLeft})
	assert.Equal(t, []string{"1"}, keysOf(m.Selected()), "checkbox click selects")

	name := hits.Columns[0].Start + 1
	m.Update(tea.MouseClickMsg{X: name, Y: 2, Button: tea.MouseLeft})
	m.Update(tea.MouseReleaseMsg{X: name, Y: 4, Button: tea.MouseLeft})
	assert.Equal(t, []string{"2", "3", "1"}, keysOf(h.rows), "dragging a row drops it on the target")

	m.Render()
	m.Update(tea.MouseClickMsg{X: name, Y: 0, Button: tea.MouseLeft})
	m.Update(tea.MouseReleaseMsg{X: name, Y: 0, Button: tea.MouseLeft})
	assert.Equal(t, grid.SortState{ColumnKey: "name", Order: grid.SortAscend}, m.Grid().Sort())
	assert.Equal(t, table.FocusHeader, m.Table().Focus())

	age := m.Table().Hits().Columns[1].Start + 1
	m.Update(tea.MouseClickMsg{X: name, Y: 0, Button: tea.MouseLeft})
	m.Update(tea.MouseReleaseMsg{X: age, Y: 0, Button: tea.MouseLeft})
	assert.Equal(t, "age", m.Grid().Columns()[0].Key, "dragging a header moves the column")

	m.Update(tea.MouseClickMsg{X: 1, Y: 0, Button: tea.MouseLeft})
	assert.Len(t, m.Selected(), 3, "header checkbox toggles the page")

	m.Table().SetFocus(table.FocusRows)
	m.Table().SetCursor(0)
	m.Update(tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	assert.Equal(t, 1, m.Table().Cursor())
}

func TestLoading(t *testing.T) {
	m, _ := newModel(func(o *Options[rec]) {
		o.Props.Rows = nil
		o.Load = func(ctx context.Context) ([]rec, error) { return people(), nil }
	})
	assert.True(t, m.Grid().Frame().Loading)
	assert.Contains(t, plain(m), "Loading")
	assert.NotNil(t, m.Init())

	m.Update(RowsLoadedMsg[rec]{Rows: people()})
	assert.False(t, m.Grid().Frame().Loading)
	assert.Len(t, frameKeys(m), 3)
	assert.NotContains(t, plain(m), "Loading")

	m.Update(LoadingMsg(true))
	m.Update(RowsLoadedMsg[rec]{Err: errors.New("boom")})
	assert.EqualError(t, m.Err(), "boom")
	assert.Contains(t, plain(m), "error: boom")
	assert.Len(t, frameKeys(m), 3, "a failed reload keeps the rows")
}

func TestEmptyGrid(t *testing.T) {
	m, _ := newModel(func(o *Options[rec]) { o.Props.Rows = nil })
	out := plain(m)
	assert.Contains(t, out, grid.EmptyText)
	assert.Contains(t, out, "No item")
	assert.Nil(t, m.Init())
}

func TestBodyScrollsToCursor(t *testing.T) {
	var rows []rec
	for i := range 10 {
		rows = append(rows, rec{Key: fmt.Sprint(i), Values: map[string]any{"name": fmt.Sprintf("Row %d", i)}})
	}
	m, _ := newModel(func(o *Options[rec]) {
		o.Props.Rows = rows
		o.Props.Columns = []grid.Column[rec]{{Title: "Name", Key: "name"}}
		o.Height = 8
	})
	out := plain(m)
	assert.Contains(t, out, "Row 0")
	assert.Len(t, strings.Split(out, "\n"), 8)

	m.Table().SetCursor(9)
	out = plain(m)
	assert.Contains(t, out, "Row 9")
	assert.NotContains(t, out, "Row 0")
	assert.Len(t, strings.Split(out, "\n"), 8)
}

func TestCopyRow(t *testing.T) {
	copied, restore := StubPlatformActions()
	defer restore()
	m, _ := newModel(nil)
	ApplyStartupKeys(m, []string{"y"})
	assert.Equal(t, []string{"John Brown\t32\tNew York\tnice"}, copied())
	assert.Equal(t, "row copied", m.Status())
}

func TestQuitAndWindowSize(t *testing.T) {
	m, _ := newModel(nil)
	m.Update(tea.WindowSizeMsg{Width: 50, Height: 10})
	assert.Equal(t, 50, m.Table().Width())

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	assert.True(t, m.Quitting())
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewEnablesMouse(t *testing.T) {
	m, _ := newModel(nil)
	v := m.View()
	assert.True(t, v.AltScreen)
	assert.Equal(t, tea.MouseModeCellMotion, v.MouseMode)
}

func TestThemeFromPalette(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	th := ThemeFromPalette(cfg.Theme.Palette())
	out := th.Highlighter().Highlight("John Brown", "bro")
	assert.Equal(t, "John Brown", ansi.Strip(out))
	assert.NotEqual(t, "John Brown", out)
	assert.Contains(t, th.Table.Classes, "danger")

	m, _ := newModel(func(o *Options[rec]) { o.Theme = &th })
	assert.Contains(t, plain(m), "John Brown")
}
