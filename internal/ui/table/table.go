// Package table draws a grid.Frame as terminal lines and records where each
// header and row landed so mouse events can be mapped back to them.
package table

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/gridx/pkg/grid"
)

const (
	checkboxWidth = 4 // "[x] "
	chevronWidth  = 2 // "› "
	minAutoWidth  = 4
	ellipsis      = "…"
)

// Glyphs used in headers and rows.
const (
	ChevronCollapsed = "›"
	ChevronExpanded  = "⌄"
	SortAscend       = "▲"
	SortDescend      = "▼"
	SortNone         = "↕"
	SearchMark       = "⌕"
	FilterMark       = "▾"
	GrabMark         = "≡"
)

// Focus says whether the cursor is on the header row or the body.
type Focus int

const (
	FocusRows Focus = iota
	FocusHeader
)

// Styles are the lipgloss styles used for each part of the table.
type Styles struct {
	Header       lipgloss.Style
	HeaderActive lipgloss.Style
	Cell         lipgloss.Style
	Cursor       lipgloss.Style
	Selected     lipgloss.Style
	Muted        lipgloss.Style
	Border       lipgloss.Style
	Grabbed      lipgloss.Style
	Classes      map[string]lipgloss.Style
}

// PlainStyles renders without color. The cursor is shown in reverse video.
func PlainStyles() Styles {
	return Styles{
		Header:       lipgloss.NewStyle().Bold(true),
		HeaderActive: lipgloss.NewStyle().Bold(true).Underline(true),
		Cell:         lipgloss.NewStyle(),
		Cursor:       lipgloss.NewStyle().Reverse(true),
		Selected:     lipgloss.NewStyle().Bold(true),
		Muted:        lipgloss.NewStyle().Faint(true),
		Border:       lipgloss.NewStyle(),
		Grabbed:      lipgloss.NewStyle().Underline(true),
		Classes:      map[string]lipgloss.Style{},
	}
}

// Colors are the palette inputs of ColorStyles. Nil colors are left unset.
type Colors struct {
	HeaderFG, HeaderBG color.Color
	Border             color.Color
	CursorFG, CursorBG color.Color
	Selected           color.Color
	Muted              color.Color
	Accent             color.Color
	Classes            map[string]color.Color
}

// ColorStyles builds styles from a palette on top of PlainStyles.
func ColorStyles(c Colors) Styles {
	s := PlainStyles()
	if c.HeaderFG != nil {
		s.Header = s.Header.Foreground(c.HeaderFG)
	}
	if c.HeaderBG != nil {
		s.Header = s.Header.Background(c.HeaderBG)
	}
	if c.Accent != nil {
		s.HeaderActive = s.Header.Foreground(c.Accent).Underline(true)
		s.Grabbed = s.Grabbed.Foreground(c.Accent)
	}
	if c.Border != nil {
		s.Border = s.Border.Foreground(c.Border)
	}
	if c.CursorFG != nil || c.CursorBG != nil {
		s.Cursor = lipgloss.NewStyle()
		if c.CursorFG != nil {
			s.Cursor = s.Cursor.Foreground(c.CursorFG)
		}
		if c.CursorBG != nil {
			s.Cursor = s.Cursor.Background(c.CursorBG)
		}
	}
	if c.Selected != nil {
		s.Selected = s.Selected.Foreground(c.Selected)
	}
	if c.Muted != nil {
		s.Muted = lipgloss.NewStyle().Foreground(c.Muted)
	}
	for name, fg := range c.Classes {
		s.Classes[name] = lipgloss.NewStyle().Foreground(fg)
	}
	return s
}

// Span is a half-open horizontal range [Start, End) owned by Key.
type Span struct {
	Key   string
	Start int
	End   int
}

// Contains reports whether x is inside the span.
func (s Span) Contains(x int) bool { return x >= s.Start && x < s.End }

// HitMap locates the parts of the last rendered view. Lines are relative to
// the first line of the table.
type HitMap struct {
	Columns  []Span
	Checkbox Span
	Chevron  Span
	// Rows maps a line to the page row drawn on it.
	Rows map[int]int
}

// ColumnAt returns the column key under x on the header line.
func (h HitMap) ColumnAt(x int) (string, bool) {
	for _, s := range h.Columns {
		if s.Contains(x) {
			return s.Key, true
		}
	}
	return "", false
}

// RowAt returns the page row drawn on line y.
func (h HitMap) RowAt(y int) (int, bool) {
	i, ok := h.Rows[y]
	return i, ok
}

// HeaderLine is the line holding column titles.
const HeaderLine = 0

// Model renders frames. It keeps the cursor but no grid state.
type Model struct {
	frame      grid.Frame
	styles     Styles
	width      int
	cursor     int
	column     int
	focus      Focus
	grabbedRow string
	grabbedCol string
	noCursor   bool
	hits       HitMap
}

// New returns a model 80 cells wide with plain styles.
func New() *Model {
	return &Model{styles: PlainStyles(), width: 80}
}

// SetFrame replaces the frame and clamps the cursors to it.
func (m *Model) SetFrame(f grid.Frame) {
	m.frame = f
	m.SetCursor(m.cursor)
	m.SetColumn(m.column)
}

// Frame returns the current frame.
func (m *Model) Frame() grid.Frame { return m.frame }

// SetWidth sets the rendered width.
func (m *Model) SetWidth(width int) {
	if width > 0 {
		m.width = width
	}
}

// Width returns the rendered width.
func (m *Model) Width() int { return m.width }

// SetStyles replaces the styles.
func (m *Model) SetStyles(s Styles) {
	if s.Classes == nil {
		s.Classes = map[string]lipgloss.Style{}
	}
	m.styles = s
}

// Cursor is the focused row within the page.
func (m *Model) Cursor() int { return m.cursor }

// SetCursor moves the row cursor, clamped to the page.
func (m *Model) SetCursor(i int) {
	m.cursor = clamp(i, len(m.frame.Rows))
}

// MoveCursor moves the row cursor by delta.
func (m *Model) MoveCursor(delta int) { m.SetCursor(m.cursor + delta) }

// Column is the focused header index.
func (m *Model) Column() int { return m.column }

// SetColumn moves the header cursor, clamped to the headers.
func (m *Model) SetColumn(i int) {
	m.column = clamp(i, len(m.frame.Headers))
}

// MoveColumn moves the header cursor by delta.
func (m *Model) MoveColumn(delta int) { m.SetColumn(m.column + delta) }

// HideCursor draws no cursor, for static output.
func (m *Model) HideCursor(hide bool) { m.noCursor = hide }

// Focus returns which part holds the cursor.
func (m *Model) Focus() Focus { return m.focus }

// SetFocus moves the cursor between header and body.
func (m *Model) SetFocus(f Focus) { m.focus = f }

// SetGrabbed marks the row and column being dragged. Empty keys clear.
func (m *Model) SetGrabbed(rowKey, colKey string) {
	m.grabbedRow = rowKey
	m.grabbedCol = colKey
}

// CursorRow returns the row under the cursor.
func (m *Model) CursorRow() (grid.FrameRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.frame.Rows) {
		return grid.FrameRow{}, false
	}
	return m.frame.Rows[m.cursor], true
}

// CursorHeader returns the header under the header cursor.
func (m *Model) CursorHeader() (grid.HeaderCell, bool) {
	if m.column < 0 || m.column >= len(m.frame.Headers) {
		return grid.HeaderCell{}, false
	}
	return m.frame.Headers[m.column], true
}

// Hits returns the layout of the last View.
func (m *Model) Hits() HitMap { return m.hits }

// ColumnWidths distributes width over the headers: fixed widths first, then
// percentages of what is left after the row prefix and separators, then an
// equal share of the rest for auto columns.
func ColumnWidths(headers []grid.HeaderCell, width, prefix int) []int {
	n := len(headers)
	out := make([]int, n)
	if n == 0 {
		return out
	}
	avail := width - prefix - (n - 1)
	if avail < n {
		avail = n
	}
	used, autos := 0, 0
	for i, h := range headers {
		switch h.Width.Unit {
		case grid.WidthFixed:
			out[i] = max(h.Width.Value, 1)
			used += out[i]
		case grid.WidthPercent:
			out[i] = max(avail*h.Width.Value/100, 1)
			used += out[i]
		default:
			autos++
		}
	}
	if autos == 0 {
		return out
	}
	rest := avail - used
	share := max(rest/autos, minAutoWidth)
	extra := 0
	if rest > share*autos {
		extra = rest - share*autos
	}
	for i, h := range headers {
		if h.Width.Unit != grid.WidthAuto {
			continue
		}
		out[i] = share
		if extra > 0 {
			out[i]++
			extra--
		}
	}
	return out
}

func (m *Model) prefixWidth() int {
	w := 0
	if m.frame.Selectable {
		w += checkboxWidth
	}
	if m.frame.Expandable {
		w += chevronWidth
	}
	return w
}

// View draws the header, a rule and the page rows with their expansions.
func (m *Model) View() string {
	f := m.frame
	prefix := m.prefixWidth()
	widths := ColumnWidths(f.Headers, m.width, prefix)
	m.hits = HitMap{Rows: map[int]int{}}

	x := 0
	if f.Selectable {
		m.hits.Checkbox = Span{Start: 0, End: checkboxWidth}
		x += checkboxWidth
	}
	if f.Expandable {
		m.hits.Chevron = Span{Start: x, End: x + chevronWidth}
		x += chevronWidth
	}
	for i, h := range f.Headers {
		m.hits.Columns = append(m.hits.Columns, Span{Key: h.Key, Start: x, End: x + widths[i]})
		x += widths[i] + 1
	}

	var lines []string
	lines = append(lines, m.headerLine(widths))
	lines = append(lines, m.styles.Border.Render(strings.Repeat("─", m.width)))

	if f.Empty {
		lines = append(lines, m.styles.Muted.Render(center(grid.EmptyText, m.width)))
		return strings.Join(lines, "\n")
	}
	for i, row := range f.Rows {
		m.hits.Rows[len(lines)] = i
		lines = append(lines, m.rowLine(i, row, widths))
		if row.Expanded && row.Expansion != "" {
			indent := strings.Repeat(" ", prefix+2)
			for _, l := range strings.Split(row.Expansion, "\n") {
				lines = append(lines, m.styles.Muted.Render(fit(indent+l, m.width)))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) headerLine(widths []int) string {
	f := m.frame
	var b strings.Builder
	if f.Selectable {
		box := "[ ] "
		if f.AllSelected {
			box = "[x] "
		}
		b.WriteString(m.styles.Header.Render(box))
	}
	if f.Expandable {
		b.WriteString(strings.Repeat(" ", chevronWidth))
	}
	for i, h := range f.Headers {
		if i > 0 {
			b.WriteString(" ")
		}
		style := m.styles.Header
		if h.Searched || h.Filtered {
			style = m.styles.HeaderActive
		}
		if h.Key == m.grabbedCol && m.grabbedCol != "" {
			style = m.styles.Grabbed
		}
		if !m.noCursor && m.focus == FocusHeader && i == m.column {
			style = m.styles.Cursor.Bold(true)
		}
		b.WriteString(style.Render(pad(headerText(h, m.grabbedCol == h.Key && h.Key != ""), widths[i])))
	}
	return fit(b.String(), m.width)
}

// headerText is the title followed by sort, search and filter marks.
func headerText(h grid.HeaderCell, grabbed bool) string {
	var marks []string
	if h.Sortable {
		switch h.Sort {
		case grid.SortAscend:
			marks = append(marks, SortAscend)
		case grid.SortDescend:
			marks = append(marks, SortDescend)
		default:
			marks = append(marks, SortNone)
		}
	}
	if h.Searchable {
		marks = append(marks, SearchMark)
	}
	if h.Filterable {
		marks = append(marks, FilterMark)
	}
	title := h.Title
	if grabbed {
		title = GrabMark + " " + title
	}
	if len(marks) == 0 {
		return title
	}
	return title + " " + strings.Join(marks, "")
}

func (m *Model) rowLine(i int, row grid.FrameRow, widths []int) string {
	f := m.frame
	var b strings.Builder
	if f.Selectable {
		switch {
		case row.Checkbox.Disabled:
			b.WriteString(m.styles.Muted.Render("[-] "))
		case row.Selected:
			b.WriteString(m.styles.Selected.Render("[x] "))
		default:
			b.WriteString("[ ] ")
		}
	}
	if f.Expandable {
		switch {
		case row.Key == m.grabbedRow && m.grabbedRow != "":
			b.WriteString(GrabMark + " ")
		case !row.Expandable:
			b.WriteString("  ")
		case row.Expanded:
			b.WriteString(ChevronExpanded + " ")
		default:
			b.WriteString(ChevronCollapsed + " ")
		}
	}
	var cells strings.Builder
	for c, w := range widths {
		if c > 0 {
			cells.WriteString(" ")
		}
		text := ""
		if c < len(row.Cells) {
			text = strings.ReplaceAll(row.Cells[c], "\n", " ")
		}
		cells.WriteString(pad(text, w))
	}
	style := m.styles.Cell
	if cs, ok := m.styles.Classes[row.Class]; ok && row.Class != "" {
		style = cs
	}
	if row.Key == m.grabbedRow && m.grabbedRow != "" {
		style = m.styles.Grabbed
	}
	if !m.noCursor && m.focus == FocusRows && i == m.cursor {
		style = m.styles.Cursor
	}
	b.WriteString(style.Render(cells.String()))
	return fit(b.String(), m.width)
}

// pad truncates or space-pads s, which may carry ANSI styling, to w cells.
func pad(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > w {
		s = ansi.Truncate(s, w, ellipsis)
	}
	if n := ansi.StringWidth(s); n < w {
		s += strings.Repeat(" ", w-n)
	}
	return s
}

func fit(s string, w int) string {
	if ansi.StringWidth(s) > w {
		return ansi.Truncate(s, w, "")
	}
	return s
}

func center(s string, w int) string {
	n := runewidth.StringWidth(s)
	if n >= w {
		return s
	}
	return strings.Repeat(" ", (w-n)/2) + s
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// String describes the model for debugging.
func (m *Model) String() string {
	return fmt.Sprintf("Table[rows=%d, cols=%d, cursor=%d, column=%d, focus=%d]",
		len(m.frame.Rows), len(m.frame.Headers), m.cursor, m.column, m.focus)
}
