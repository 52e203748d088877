package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/gridx/pkg/grid"
)

// openSearch shows the search popover for the column under the header
// cursor. The input takes focus after SearchFocusDelay.
func (m *Model[T]) openSearch() tea.Cmd {
	h, ok := m.currentColumn(func(h grid.HeaderCell) bool { return h.Searchable })
	if !ok {
		m.status = "no searchable column here"
		return nil
	}
	m.mode = ModeSearch
	m.popColumn = h.Key
	m.input.Blur()
	m.input.SetValue(m.grid.SearchState().ActiveFor(h.Key))
	m.input.CursorEnd()
	m.focusSeq++
	seq := m.focusSeq
	return tea.Tick(SearchFocusDelay, func(time.Time) tea.Msg { return searchFocusMsg{seq: seq} })
}

func (m *Model[T]) handleSearchKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePopover()
		return nil
	case key.Matches(msg, m.keys.Confirm):
		m.grid.Search(m.popColumn, m.input.Value())
		m.table.SetCursor(0)
		m.closePopover()
		return nil
	case key.Matches(msg, m.keys.Reset):
		m.grid.ResetSearch(m.popColumn)
		m.table.SetCursor(0)
		m.closePopover()
		return nil
	}
	var cmds []tea.Cmd
	if !m.input.Focused() {
		// A key typed before the delayed focus lands in the input.
		cmds = append(cmds, m.input.Focus())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// openFilter shows the checklist popover for the column under the header
// cursor, starting from the applied values.
func (m *Model[T]) openFilter() {
	h, ok := m.currentColumn(func(h grid.HeaderCell) bool { return h.Filterable })
	if !ok {
		m.status = "no filterable column here"
		return
	}
	m.mode = ModeFilter
	m.popColumn = h.Key
	m.popCursor = 0
	m.grid.BeginFilter(h.Key)
}

func (m *Model[T]) filterOptions() []grid.FilterOption {
	col, ok := m.grid.Column(m.popColumn)
	if !ok {
		return nil
	}
	return col.Filters
}

func (m *Model[T]) handleFilterKey(msg tea.KeyPressMsg) {
	opts := m.filterOptions()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePopover()
	case key.Matches(msg, m.keys.Confirm):
		m.grid.ConfirmFilter(m.popColumn)
		m.table.SetCursor(0)
		m.closePopover()
	case key.Matches(msg, m.keys.Reset), key.Matches(msg, m.keys.ResetSearch):
		m.grid.ResetFilter(m.popColumn)
		m.table.SetCursor(0)
		m.closePopover()
	case key.Matches(msg, m.keys.Up):
		m.popCursor = max(m.popCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.popCursor = min(m.popCursor+1, max(len(opts)-1, 0))
	case key.Matches(msg, m.keys.Select):
		if m.popCursor < len(opts) {
			m.grid.ToggleFilterOption(m.popColumn, opts[m.popCursor].Value)
		}
	}
}

func (m *Model[T]) closePopover() {
	m.mode = ModeNormal
	m.popColumn = ""
	m.popCursor = 0
	m.input.Blur()
	m.focusSeq++
}

func (m *Model[T]) popoverView() string {
	col, ok := m.grid.Column(m.popColumn)
	if !ok {
		return ""
	}
	var lines []string
	switch m.mode {
	case ModeSearch:
		lines = append(lines,
			m.theme.Accent.Render(fmt.Sprintf("Search %s", col.Title)),
			m.input.View(),
			m.theme.Caption.Render("enter search · ctrl+r reset · esc close"),
		)
	case ModeFilter:
		lines = append(lines, m.theme.Accent.Render(fmt.Sprintf("Filter %s", col.Title)))
		pending := m.grid.PendingFilter(col.Key)
		for i, opt := range col.Filters {
			box := "[ ]"
			if slices.Contains(pending, opt.Value) {
				box = "[x]"
			}
			cursor := "  "
			if i == m.popCursor {
				cursor = "> "
			}
			label := opt.Label
			if label == "" {
				label = opt.Value
			}
			lines = append(lines, cursor+box+" "+label)
		}
		lines = append(lines, m.theme.Caption.Render("space toggle · enter ok · ctrl+r reset · esc close"))
	default:
		return ""
	}
	return m.theme.Popover.Render(strings.Join(lines, "\n"))
}
