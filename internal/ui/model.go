// Package ui is the interactive grid: a Bubble Tea model that hosts a
// grid.Grid, owns its rows and columns, and maps keys and mouse gestures to
// grid operations.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/paginator"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridx/internal/ui/table"
	"github.com/oakwood-commons/gridx/pkg/grid"
)

// SearchFocusDelay is how long the search popover waits before focusing its
// input.
const SearchFocusDelay = 100 * time.Millisecond

// Mode is the interaction state of the view.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeFilter
	ModeGrabRow
	ModeGrabColumn
)

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeFilter:
		return "filter"
	case ModeGrabRow:
		return "move row"
	case ModeGrabColumn:
		return "move column"
	default:
		return "normal"
	}
}

// Options configures a Model.
type Options[T grid.Record] struct {
	// Props are passed to the grid. The model wraps the change callbacks so
	// it can apply them before forwarding.
	Props grid.Props[T]
	Title string
	// Theme defaults to PlainTheme.
	Theme   *Theme
	Keys    *KeyMap
	Width   int
	Height  int
	Context context.Context
	// Load fetches rows in the background. The loading indicator shows until
	// it returns.
	Load func(ctx context.Context) ([]T, error)
}

// RowsLoadedMsg delivers rows fetched by Options.Load.
type RowsLoadedMsg[T grid.Record] struct {
	Rows []T
	Err  error
}

// LoadingMsg toggles the loading indicator.
type LoadingMsg bool

type searchFocusMsg struct{ seq int }

type pressState struct {
	header bool
	key    string
	x, y   int
}

// Model is the interactive grid.
type Model[T grid.Record] struct {
	grid    *grid.Grid[T]
	table   *table.Model
	keys    KeyMap
	help    help.Model
	input   textinput.Model
	spinner spinner.Model
	pager   paginator.Model
	theme   Theme
	title   string
	width   int
	height  int

	mode      Mode
	popColumn string
	popCursor int
	focusSeq  int
	grabKey   string
	press     *pressState
	tableTop  int
	scroll    int
	status    string
	err       error

	ctx  context.Context
	load func(ctx context.Context) ([]T, error)

	hostRows    func([]T)
	hostColumns func([]grid.Column[T])
	hostSelect  func([]T)
	selected    []T

	log      logr.Logger
	quitting bool
}

// New builds the model and its grid.
func New[T grid.Record](opts Options[T]) *Model[T] {
	theme := PlainTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Props.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	in := textinput.New()
	in.Prompt = "search: "
	in.Placeholder = "text"
	in.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	pg := paginator.New()
	pg.Type = paginator.Arabic

	m := &Model[T]{
		table:   table.New(),
		keys:    keys,
		help:    help.New(),
		input:   in,
		spinner: sp,
		pager:   pg,
		theme:   theme,
		title:   opts.Title,
		width:   opts.Width,
		height:  opts.Height,
		ctx:     ctx,
		load:    opts.Load,
		log:     log,
	}
	if m.width <= 0 {
		m.width = 80
	}
	if m.height <= 0 {
		m.height = 24
	}

	p := opts.Props
	m.hostRows, m.hostColumns, m.hostSelect = p.OnRowsChange, p.OnColumnsChange, p.OnSelect
	p.OnRowsChange = m.applyRows
	p.OnColumnsChange = m.applyColumns
	p.OnSelect = m.applySelection
	if p.Highlighter == nil {
		p.Highlighter = theme.Highlighter()
	}
	if opts.Load != nil {
		p.Loading = true
	}
	p.Logger = log
	m.grid = grid.New(p)
	m.table.SetStyles(theme.Table)
	m.table.SetWidth(m.width)
	m.help.SetWidth(m.width)
	m.sync()
	return m
}

func (m *Model[T]) applyRows(rows []T) {
	m.grid.SetRows(rows)
	if m.hostRows != nil {
		m.hostRows(rows)
	}
}

func (m *Model[T]) applyColumns(cols []grid.Column[T]) {
	m.grid.SetColumns(cols)
	if m.hostColumns != nil {
		m.hostColumns(cols)
	}
}

func (m *Model[T]) applySelection(rows []T) {
	m.selected = rows
	if m.hostSelect != nil {
		m.hostSelect(rows)
	}
}

// Grid exposes the underlying grid.
func (m *Model[T]) Grid() *grid.Grid[T] { return m.grid }

// Table exposes the renderer, mainly for its cursor.
func (m *Model[T]) Table() *table.Model { return m.table }

// Mode returns the interaction mode.
func (m *Model[T]) Mode() Mode { return m.mode }

// Selected returns the last emitted selection.
func (m *Model[T]) Selected() []T { return m.selected }

// Err returns the last load error.
func (m *Model[T]) Err() error { return m.err }

// Status returns the status line text.
func (m *Model[T]) Status() string { return m.status }

// Quitting reports whether the model asked the program to exit.
func (m *Model[T]) Quitting() bool { return m.quitting }

// SearchInput returns the search popover input.
func (m *Model[T]) SearchInput() textinput.Model { return m.input }

// SetSize sets the view size.
func (m *Model[T]) SetSize(width, height int) {
	if width > 0 {
		m.width = width
		m.table.SetWidth(width)
		m.help.SetWidth(width)
	}
	if height > 0 {
		m.height = height
	}
}

// sync pushes the grid frame into the renderer and the paginator.
func (m *Model[T]) sync() {
	f := m.grid.Frame()
	m.table.SetFrame(f)
	m.pager.PerPage = max(f.PageSize, 1)
	m.pager.SetTotalPages(f.Total)
	m.pager.Page = f.Page
	grabRow, grabCol := "", ""
	switch m.mode {
	case ModeGrabRow:
		grabRow = m.grabKey
	case ModeGrabColumn:
		grabCol = m.grabKey
	}
	m.table.SetGrabbed(grabRow, grabCol)
}

// Init starts the background load, if any.
func (m *Model[T]) Init() tea.Cmd {
	if m.load == nil {
		return nil
	}
	load, ctx := m.load, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		rows, err := load(ctx)
		return RowsLoadedMsg[T]{Rows: rows, Err: err}
	})
}

// Update handles messages.
func (m *Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case spinner.TickMsg:
		if m.grid.Frame().Loading {
			m.spinner, cmd = m.spinner.Update(msg)
		}
	case RowsLoadedMsg[T]:
		m.grid.SetLoading(false)
		if msg.Err != nil {
			m.err = msg.Err
			m.log.Error(msg.Err, "failed to load rows")
		} else {
			m.applyRows(msg.Rows)
		}
	case LoadingMsg:
		m.grid.SetLoading(bool(msg))
		if msg {
			cmd = m.spinner.Tick
		}
	case searchFocusMsg:
		if m.mode == ModeSearch && msg.seq == m.focusSeq && !m.input.Focused() {
			cmd = m.input.Focus()
		}
	case tea.KeyPressMsg:
		cmd = m.handleKey(msg)
	case tea.MouseClickMsg:
		m.handleMouseClick(msg)
	case tea.MouseReleaseMsg:
		m.handleMouseRelease(msg)
	case tea.MouseWheelMsg:
		m.handleMouseWheel(msg)
	}
	m.sync()
	return m, cmd
}

func (m *Model[T]) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeFilter:
		m.handleFilterKey(msg)
		return nil
	case ModeGrabRow, ModeGrabColumn:
		m.handleGrabKey(msg)
		return nil
	}

	m.status = ""
	header := m.table.Focus() == table.FocusHeader
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.FocusHeader):
		if header {
			m.table.SetFocus(table.FocusRows)
		} else {
			m.table.SetFocus(table.FocusHeader)
		}
	case key.Matches(msg, m.keys.Up):
		m.table.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.table.MoveCursor(1)
	case key.Matches(msg, m.keys.Left):
		m.table.MoveColumn(-1)
	case key.Matches(msg, m.keys.Right):
		m.table.MoveColumn(1)
	case key.Matches(msg, m.keys.NextPage):
		if m.grid.NextPage() {
			m.table.SetCursor(0)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if m.grid.PrevPage() {
			m.table.SetCursor(0)
		}
	case key.Matches(msg, m.keys.GrowPage):
		m.grid.CyclePageSize(1)
	case key.Matches(msg, m.keys.ShrinkPage):
		m.grid.CyclePageSize(-1)
	case key.Matches(msg, m.keys.Sort):
		if h, ok := m.table.CursorHeader(); ok && !m.grid.ToggleSort(h.Key) {
			m.status = fmt.Sprintf("%s is not sortable", h.Title)
		}
	case key.Matches(msg, m.keys.Search):
		return m.openSearch()
	case key.Matches(msg, m.keys.Filter):
		m.openFilter()
	case key.Matches(msg, m.keys.ResetSearch):
		if h, ok := m.table.CursorHeader(); ok {
			if h.Searchable {
				m.grid.ResetSearch(h.Key)
			} else {
				m.grid.ResetFilter(h.Key)
			}
		}
	case key.Matches(msg, m.keys.ResetOrder):
		m.grid.ResetColumnOrder()
		m.status = "column order reset"
	case key.Matches(msg, m.keys.Grab):
		m.startGrab(header)
	case header && key.Matches(msg, m.keys.Expand):
		if h, ok := m.table.CursorHeader(); ok {
			m.grid.ToggleSort(h.Key)
		}
	case key.Matches(msg, m.keys.Expand):
		if row, ok := m.table.CursorRow(); ok {
			m.grid.ToggleExpanded(row.Key)
		}
	case key.Matches(msg, m.keys.Select):
		if row, ok := m.table.CursorRow(); ok {
			m.grid.ToggleSelected(row.Key)
		}
	case key.Matches(msg, m.keys.SelectPage):
		m.grid.TogglePageSelection()
	case key.Matches(msg, m.keys.Copy):
		m.copyCursorRow()
	}
	return nil
}

// currentColumn is the header under the header cursor, falling back to the
// first column accepting the requested popover.
func (m *Model[T]) currentColumn(accept func(grid.HeaderCell) bool) (grid.HeaderCell, bool) {
	if h, ok := m.table.CursorHeader(); ok && accept(h) {
		return h, true
	}
	if m.table.Focus() == table.FocusHeader {
		return grid.HeaderCell{}, false
	}
	for i, h := range m.table.Frame().Headers {
		if accept(h) {
			m.table.SetColumn(i)
			return h, true
		}
	}
	return grid.HeaderCell{}, false
}

func (m *Model[T]) startGrab(header bool) {
	if header {
		if h, ok := m.table.CursorHeader(); ok {
			m.mode = ModeGrabColumn
			m.grabKey = h.Key
			m.status = fmt.Sprintf("moving column %s: ←/→ then enter, esc cancels", h.Title)
		}
		return
	}
	if row, ok := m.table.CursorRow(); ok {
		m.mode = ModeGrabRow
		m.grabKey = row.Key
		m.status = "moving row: ↑/↓ then enter, esc cancels"
	}
}

func (m *Model[T]) handleGrabKey(msg tea.KeyPressMsg) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.status = "move cancelled"
	case key.Matches(msg, m.keys.Confirm):
		m.drop()
	case m.mode == ModeGrabRow && key.Matches(msg, m.keys.Up):
		m.table.MoveCursor(-1)
		return
	case m.mode == ModeGrabRow && key.Matches(msg, m.keys.Down):
		m.table.MoveCursor(1)
		return
	case m.mode == ModeGrabColumn && key.Matches(msg, m.keys.Left):
		m.table.MoveColumn(-1)
		return
	case m.mode == ModeGrabColumn && key.Matches(msg, m.keys.Right):
		m.table.MoveColumn(1)
		return
	default:
		return
	}
	m.mode = ModeNormal
	m.grabKey = ""
}

// drop finishes a keyboard move onto the item under the cursor.
func (m *Model[T]) drop() {
	switch m.mode {
	case ModeGrabRow:
		row, ok := m.table.CursorRow()
		if ok && m.grid.DragRowEnd(m.grabKey, row.Key) {
			m.status = "row moved"
			m.table.SetCursor(m.rowPosition(m.grabKey))
		}
	case ModeGrabColumn:
		from := m.columnIndex(m.grabKey)
		to := m.table.Column()
		if m.grid.DragColumnEnd(from, to) {
			m.status = "column moved"
		}
	}
}

func (m *Model[T]) rowPosition(key string) int {
	for i, r := range m.grid.PageRows() {
		if r.RowKey() == key {
			return i
		}
	}
	return m.table.Cursor()
}

func (m *Model[T]) columnIndex(key string) int {
	for i, c := range m.grid.Columns() {
		if c.Key == key {
			return i
		}
	}
	return -1
}

func (m *Model[T]) copyCursorRow() {
	row, ok := m.table.CursorRow()
	if !ok {
		return
	}
	cells := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		cells[i] = stripStyles(c)
	}
	if err := CopyToClipboard(strings.Join(cells, "\t")); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "row copied"
}

// View renders the screen.
func (m *Model[T]) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// Render draws the screen as a string.
func (m *Model[T]) Render() string {
	f := m.table.Frame()
	var top, bottom []string
	if m.title != "" {
		top = append(top, m.theme.Title.Render(m.title))
	}
	bar := m.paginationBar(f)
	if f.Position.Top() {
		top = append(top, bar)
	}

	var body string
	if f.Loading {
		cursor := m.table.Cursor()
		header := f
		header.Rows, header.Empty = nil, false
		m.table.SetFrame(header)
		body = m.table.View() + "\n" + m.spinner.View() + " Loading…"
		m.table.SetFrame(f)
		m.table.SetCursor(cursor)
	} else {
		body = m.table.View()
	}

	if !f.Position.Top() {
		bottom = append(bottom, bar)
	}
	if pop := m.popoverView(); pop != "" {
		bottom = append(bottom, pop)
	}
	switch {
	case m.err != nil:
		bottom = append(bottom, m.theme.Error.Render("error: "+m.err.Error()))
	case m.status != "":
		bottom = append(bottom, m.theme.Status.Render(m.status))
	}
	bottom = append(bottom, m.help.View(m.keys))

	avail := m.height - countLines(top) - countLines(bottom)
	m.tableTop = countLines(top)
	body = m.cropBody(body, avail)

	parts := append(append(top, body), bottom...)
	return strings.Join(parts, "\n")
}

// paginationBar is the caption, page indicator and page size, aligned to
// the configured corner.
func (m *Model[T]) paginationBar(f grid.Frame) string {
	parts := []string{m.theme.Caption.Render(f.Caption)}
	if f.PageCount > 1 {
		parts = append(parts, m.pager.View())
	}
	if f.Resizable {
		parts = append(parts, m.theme.Caption.Render(fmt.Sprintf("%d / page", f.PageSize)))
	}
	bar := strings.Join(parts, "  ")
	if f.Position.Left() {
		return bar
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, bar)
}

// cropBody keeps the two header lines and scrolls the rest so the cursor
// row stays visible.
func (m *Model[T]) cropBody(body string, avail int) string {
	m.scroll = 0
	lines := strings.Split(body, "\n")
	if avail < 3 || len(lines) <= avail {
		return body
	}
	head, rest := lines[:2], lines[2:]
	room := avail - 2
	cursorLine := 0
	for line, idx := range m.table.Hits().Rows {
		if idx == m.table.Cursor() {
			cursorLine = line - 2
		}
	}
	start := 0
	if cursorLine >= room {
		start = cursorLine - room + 1
	}
	end := min(start+room, len(rest))
	m.scroll = start
	return strings.Join(append(head, rest[start:end]...), "\n")
}

func countLines(parts []string) int {
	if len(parts) == 0 {
		return 0
	}
	n := 0
	for _, p := range parts {
		n += strings.Count(p, "\n") + 1
	}
	return n
}
