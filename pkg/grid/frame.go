package grid

// EmptyText replaces the body when there are no rows to show.
const EmptyText = "Empty"

// HeaderCell is the render-neutral description of a column header.
type HeaderCell struct {
	Title      string
	Key        string
	Width      Width
	Sortable   bool
	Sort       SortOrder
	Searchable bool
	Filterable bool
	Filtered   bool
	Searched   bool
}

// FrameRow is one rendered body row.
type FrameRow struct {
	Key        string
	Index      int
	Cells      []string
	Class      string
	Selected   bool
	Checkbox   CheckboxProps
	Expandable bool
	Expanded   bool
	Expansion  string
}

// Frame is the presentation of the grid for one render: the current page of
// rows with every cell already formatted and highlighted.
type Frame struct {
	Headers    []HeaderCell
	Rows       []FrameRow
	Caption    string
	Total      int
	Page       int
	PageCount  int
	PageSize   int
	Resizable  bool
	Position   Position
	Loading    bool
	Empty      bool
	Selectable bool
	Expandable bool
	// AllSelected is true when every enabled row of the page is selected.
	AllSelected bool
}

// Frame renders the current state.
func (g *Grid[T]) Frame() Frame {
	p := g.props
	f := Frame{
		Page:       g.page,
		PageSize:   g.pageSize,
		Resizable:  p.Pagination.Resizable,
		Position:   p.Pagination.Position,
		Loading:    p.Loading,
		Selectable: p.Selectable,
		Expandable: p.Expandable,
	}
	for _, col := range p.Columns {
		h := HeaderCell{
			Title:      col.Title,
			Key:        col.Key,
			Width:      col.Width,
			Sortable:   col.Sortable(),
			Searchable: col.Searchable,
			Filterable: col.Filterable(),
			Filtered:   g.Filtered(col.Key),
			Searched:   g.search.ActiveFor(col.Key) != "",
		}
		if g.sort.ColumnKey == col.Key {
			h.Sort = g.sort.Order
		}
		f.Headers = append(f.Headers, h)
	}

	vis := g.Visible()
	f.Total = len(vis)
	f.Caption = Caption(f.Total)
	f.PageCount = PageCount(f.Total, g.pageSize)
	start, end := PageBounds(g.page, g.pageSize, len(vis))
	page := vis[start:end]
	f.Empty = len(page) == 0

	all := p.Selectable
	enabled := 0
	for i, rec := range page {
		row := FrameRow{
			Key:   rec.RowKey(),
			Index: start + i,
			Cells: make([]string, len(p.Columns)),
		}
		for c, col := range p.Columns {
			row.Cells[c] = col.Cell.Render(col, rec, g.search.ActiveFor(col.Key), p.Highlighter)
		}
		if p.RowClass != nil {
			row.Class = p.RowClass(rec, start+i)
		}
		if p.Selectable {
			row.Selected = g.selected[row.Key]
			row.Checkbox = g.Checkbox(rec)
			if !row.Checkbox.Disabled {
				enabled++
				if !row.Selected {
					all = false
				}
			}
		}
		if g.CanExpand(rec) {
			row.Expandable = true
			row.Expanded = g.expanded[row.Key]
			if row.Expanded {
				row.Expansion = p.ExpandedRender(rec)
			}
		}
		f.Rows = append(f.Rows, row)
	}
	f.AllSelected = all && enabled > 0
	return f
}
