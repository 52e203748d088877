package ui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/gridx/internal/ui/table"
)

// tableLine maps a screen row to a line of the last rendered table.
func (m *Model[T]) tableLine(y int) int {
	line := y - m.tableTop
	if line >= 2 {
		line += m.scroll
	}
	return line
}

// handleMouseClick starts a drag or acts on the checkbox and chevron
// columns. Only the left button is handled.
func (m *Model[T]) handleMouseClick(msg tea.MouseClickMsg) {
	if msg.Button != tea.MouseLeft || m.mode == ModeSearch || m.mode == ModeFilter {
		return
	}
	hits := m.table.Hits()
	line := m.tableLine(msg.Y)
	if line == table.HeaderLine {
		if m.table.Frame().Selectable && hits.Checkbox.Contains(msg.X) {
			m.grid.TogglePageSelection()
			return
		}
		if key, ok := hits.ColumnAt(msg.X); ok {
			m.press = &pressState{header: true, key: key, x: msg.X, y: msg.Y}
		}
		return
	}
	idx, ok := hits.RowAt(line)
	if !ok {
		return
	}
	m.table.SetFocus(table.FocusRows)
	m.table.SetCursor(idx)
	row, _ := m.table.CursorRow()
	f := m.table.Frame()
	switch {
	case f.Selectable && hits.Checkbox.Contains(msg.X):
		m.grid.ToggleSelected(row.Key)
	case f.Expandable && hits.Chevron.Contains(msg.X):
		m.grid.ToggleExpanded(row.Key)
	default:
		m.press = &pressState{key: row.Key, x: msg.X, y: msg.Y}
	}
}

// handleMouseRelease ends a press. Releasing over another row or header
// moves the pressed one there; releasing in place on a header focuses it
// and cycles its sort.
func (m *Model[T]) handleMouseRelease(msg tea.MouseReleaseMsg) {
	press := m.press
	m.press = nil
	if press == nil {
		return
	}
	hits := m.table.Hits()
	line := m.tableLine(msg.Y)
	if press.header {
		if line != table.HeaderLine {
			return
		}
		over, ok := hits.ColumnAt(msg.X)
		if !ok {
			return
		}
		if over == press.key {
			m.table.SetFocus(table.FocusHeader)
			m.table.SetColumn(m.columnIndex(over))
			m.grid.ToggleSort(over)
			return
		}
		if m.grid.DragColumnEnd(m.columnIndex(press.key), m.columnIndex(over)) {
			m.status = "column moved"
		}
		return
	}
	idx, ok := hits.RowAt(line)
	if !ok {
		return
	}
	rows := m.table.Frame().Rows
	if idx >= len(rows) || rows[idx].Key == press.key {
		return
	}
	if m.grid.DragRowEnd(press.key, rows[idx].Key) {
		m.status = "row moved"
		m.table.SetCursor(m.rowPosition(press.key))
	}
}

func (m *Model[T]) handleMouseWheel(msg tea.MouseWheelMsg) {
	switch msg.Button {
	case tea.MouseWheelUp:
		m.table.MoveCursor(-1)
	case tea.MouseWheelDown:
		m.table.MoveCursor(1)
	}
}
