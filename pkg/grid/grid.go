package grid

import (
	"slices"
	"sort"

	"github.com/go-logr/logr"
)

// CheckboxProps customises the selection checkbox of one row.
type CheckboxProps struct {
	Disabled bool
	Label    string
}

// SortOrder is the direction of the active sort.
type SortOrder int

const (
	SortNone SortOrder = iota
	SortAscend
	SortDescend
)

func (o SortOrder) String() string {
	switch o {
	case SortAscend:
		return "ascend"
	case SortDescend:
		return "descend"
	default:
		return "none"
	}
}

// SortState names the sorted column.
type SortState struct {
	ColumnKey string
	Order     SortOrder
}

// Props is everything the host passes to the grid. Optional behaviour
// (selection, expansion, page resizing) is off unless enabled.
type Props[T Record] struct {
	Rows    []T
	Columns []Column[T]
	// DeclaredColumns is the original column order restored by
	// ResetColumnOrder. Defaults to Columns as first passed to New.
	DeclaredColumns []Column[T]

	OnRowsChange    func(rows []T)
	OnColumnsChange func(cols []Column[T])

	Loading bool

	Selectable    bool
	OnSelect      func(selected []T)
	CheckboxProps func(rec T) CheckboxProps

	Expandable     bool
	ExpandedRender func(rec T) string
	RowExpandable  func(rec T) bool

	RowClass func(rec T, index int) string

	Pagination  Pagination
	Highlighter Highlighter
	Order       OrderPersister

	// InitialQuery is a URL query string read once by New to seed default
	// column filters.
	InitialQuery string

	Logger logr.Logger
}

// Grid is the data-grid state machine. It is not safe for concurrent use;
// every method is meant to run inside the host's event loop.
type Grid[T Record] struct {
	props    Props[T]
	search   SearchState
	filters  filterSet
	sort     SortState
	page     int
	pageSize int
	selected map[string]bool
	expanded map[string]bool
	log      logr.Logger
}

// New builds a grid and seeds column filters from each column's
// DefaultFilter, falling back to props.InitialQuery.
func New[T Record](props Props[T]) *Grid[T] {
	if props.DeclaredColumns == nil {
		props.DeclaredColumns = slices.Clone(props.Columns)
	}
	if props.Highlighter == nil {
		props.Highlighter = MarkerHighlighter("[", "]")
	}
	log := props.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	g := &Grid[T]{
		props:    props,
		filters:  newFilterSet(),
		pageSize: props.Pagination.pageSize(),
		selected: map[string]bool{},
		expanded: map[string]bool{},
		log:      log,
	}
	seeded := ParseQueryFilters(props.InitialQuery, props.Columns)
	for _, col := range props.Columns {
		switch {
		case len(col.DefaultFilter) > 0:
			g.filters.apply(col.Key, col.DefaultFilter)
		case len(seeded[col.Key]) > 0:
			g.filters.apply(col.Key, seeded[col.Key])
			g.log.V(1).Info("seeded column filter from query", "column", col.Key, "values", seeded[col.Key])
		}
	}
	return g
}

// Props returns the current props.
func (g *Grid[T]) Props() Props[T] { return g.props }

// SetProps replaces the props, keeping transient state such as the search,
// filters, page and selection.
func (g *Grid[T]) SetProps(p Props[T]) {
	if p.DeclaredColumns == nil {
		p.DeclaredColumns = g.props.DeclaredColumns
	}
	if p.Highlighter == nil {
		p.Highlighter = g.props.Highlighter
	}
	g.props = p
	g.clampPage()
}

// SetRows replaces the rows prop.
func (g *Grid[T]) SetRows(rows []T) {
	g.props.Rows = rows
	g.clampPage()
}

// SetColumns replaces the columns prop.
func (g *Grid[T]) SetColumns(cols []Column[T]) { g.props.Columns = cols }

// SetLoading toggles the loading indicator.
func (g *Grid[T]) SetLoading(loading bool) { g.props.Loading = loading }

// Rows returns the host rows as last passed in.
func (g *Grid[T]) Rows() []T { return g.props.Rows }

// Columns returns the columns as last passed in.
func (g *Grid[T]) Columns() []Column[T] { return g.props.Columns }

// Column looks up a column by key.
func (g *Grid[T]) Column(key string) (Column[T], bool) {
	i := columnIndex(g.props.Columns, key)
	if i < 0 {
		return Column[T]{}, false
	}
	return g.props.Columns[i], true
}

// SearchState returns the active search.
func (g *Grid[T]) SearchState() SearchState { return g.search }

// Search makes key the active search column and filters it by query.
// An empty query behaves like ResetSearch. It returns false when key is not
// a searchable column.
func (g *Grid[T]) Search(key, query string) bool {
	col, ok := g.Column(key)
	if !ok || !col.Searchable {
		return false
	}
	if query == "" {
		g.ResetSearch(key)
		return true
	}
	g.search = SearchState{Query: query, ColumnKey: key}
	g.filters.apply(key, []string{query})
	g.page = 0
	g.log.V(1).Info("column search", "column", key, "query", query)
	return true
}

// ResetSearch clears key's filter and, when key owns it, the highlight.
func (g *Grid[T]) ResetSearch(key string) {
	g.filters.clear(key)
	if g.search.ColumnKey == key {
		g.search = SearchState{}
	}
	g.page = 0
	g.log.V(1).Info("column search reset", "column", key)
}

// AppliedFilter returns the values filtering key.
func (g *Grid[T]) AppliedFilter(key string) []string {
	return slices.Clone(g.filters.applied[key])
}

// Filtered reports whether key has an applied filter.
func (g *Grid[T]) Filtered(key string) bool { return len(g.filters.applied[key]) > 0 }

// BeginFilter restarts key's pending checklist selection from the applied
// values, as when the popover opens.
func (g *Grid[T]) BeginFilter(key string) {
	g.filters.pending[key] = slices.Clone(g.filters.applied[key])
}

// PendingFilter returns the checklist selection not yet confirmed.
func (g *Grid[T]) PendingFilter(key string) []string {
	return slices.Clone(g.filters.pending[key])
}

// ToggleFilterOption adds or removes value from key's pending selection.
func (g *Grid[T]) ToggleFilterOption(key, value string) {
	g.filters.toggle(key, value)
}

// ConfirmFilter applies key's pending selection.
func (g *Grid[T]) ConfirmFilter(key string) {
	g.filters.apply(key, g.filters.pending[key])
	g.page = 0
	g.log.V(1).Info("column filter applied", "column", key, "values", g.filters.applied[key])
}

// ResetFilter clears key's pending and applied selection.
func (g *Grid[T]) ResetFilter(key string) {
	g.filters.clear(key)
	g.page = 0
}

// Sort returns the active sort.
func (g *Grid[T]) Sort() SortState { return g.sort }

// ToggleSort cycles key through ascend, descend and unsorted. It returns
// false when the column has no comparator.
func (g *Grid[T]) ToggleSort(key string) bool {
	col, ok := g.Column(key)
	if !ok || !col.Sortable() {
		return false
	}
	next := SortAscend
	if g.sort.ColumnKey == key {
		switch g.sort.Order {
		case SortAscend:
			next = SortDescend
		case SortDescend:
			next = SortNone
		}
	}
	if next == SortNone {
		g.sort = SortState{}
	} else {
		g.sort = SortState{ColumnKey: key, Order: next}
	}
	g.page = 0
	return true
}

// Visible returns the filtered, sorted rows across all pages.
func (g *Grid[T]) Visible() []T {
	out := make([]T, 0, len(g.props.Rows))
	for _, r := range g.props.Rows {
		if keep(g.props.Columns, g.filters, r) {
			out = append(out, r)
		}
	}
	if g.sort.Order == SortNone {
		return out
	}
	col, ok := g.Column(g.sort.ColumnKey)
	if !ok || col.Compare == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := col.Compare(out[i], out[j])
		if g.sort.Order == SortDescend {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Total is the number of visible rows.
func (g *Grid[T]) Total() int { return len(g.Visible()) }

// Caption is the pagination total label.
func (g *Grid[T]) Caption() string { return Caption(g.Total()) }

// Page returns the zero-based current page.
func (g *Grid[T]) Page() int { return g.page }

// PageSize returns the current page size.
func (g *Grid[T]) PageSize() int { return g.pageSize }

// PageCount returns the number of pages of visible rows.
func (g *Grid[T]) PageCount() int { return PageCount(g.Total(), g.pageSize) }

// SetPage moves to page, clamped to the available pages.
func (g *Grid[T]) SetPage(page int) {
	g.page = page
	g.clampPage()
}

// NextPage advances one page if possible.
func (g *Grid[T]) NextPage() bool {
	if g.page+1 >= g.PageCount() {
		return false
	}
	g.page++
	return true
}

// PrevPage goes back one page if possible.
func (g *Grid[T]) PrevPage() bool {
	if g.page == 0 {
		return false
	}
	g.page--
	return true
}

// SetPageSize changes the page size, keeping the first row of the current
// page visible. It returns false when resizing is disabled or size invalid.
func (g *Grid[T]) SetPageSize(size int) bool {
	if !g.props.Pagination.Resizable || size <= 0 || size == g.pageSize {
		return false
	}
	first := g.page * g.pageSize
	g.pageSize = size
	g.page = first / size
	g.clampPage()
	g.log.V(1).Info("page size changed", "size", size)
	return true
}

// CyclePageSize steps through the size options by delta positions.
func (g *Grid[T]) CyclePageSize(delta int) bool {
	opts := g.props.Pagination.sizeOptions()
	i := slices.Index(opts, g.pageSize)
	if i < 0 {
		i = 0
		for i < len(opts)-1 && opts[i] < g.pageSize {
			i++
		}
	} else {
		i += delta
	}
	if i < 0 || i >= len(opts) {
		return false
	}
	return g.SetPageSize(opts[i])
}

// PageRows returns the visible rows of the current page.
func (g *Grid[T]) PageRows() []T {
	vis := g.Visible()
	start, end := PageBounds(g.page, g.pageSize, len(vis))
	return vis[start:end]
}

func (g *Grid[T]) clampPage() {
	if n := g.PageCount(); g.page >= n {
		g.page = n - 1
	}
	if g.page < 0 {
		g.page = 0
	}
}

// Checkbox returns the checkbox props of rec.
func (g *Grid[T]) Checkbox(rec T) CheckboxProps {
	if g.props.CheckboxProps == nil {
		return CheckboxProps{}
	}
	return g.props.CheckboxProps(rec)
}

// IsSelected reports whether the row with key is selected.
func (g *Grid[T]) IsSelected(key string) bool { return g.selected[key] }

// ToggleSelected flips the selection of one row and emits the selection.
func (g *Grid[T]) ToggleSelected(key string) bool {
	if !g.props.Selectable {
		return false
	}
	i := indexOfKey(g.props.Rows, key)
	if i < 0 || g.Checkbox(g.props.Rows[i]).Disabled {
		return false
	}
	if g.selected[key] {
		delete(g.selected, key)
	} else {
		g.selected[key] = true
	}
	g.emitSelection()
	return true
}

// TogglePageSelection selects every enabled row of the current page, or
// clears them when all are already selected.
func (g *Grid[T]) TogglePageSelection() bool {
	if !g.props.Selectable {
		return false
	}
	var keys []string
	all := true
	for _, r := range g.PageRows() {
		if g.Checkbox(r).Disabled {
			continue
		}
		keys = append(keys, r.RowKey())
		if !g.selected[r.RowKey()] {
			all = false
		}
	}
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		if all {
			delete(g.selected, k)
		} else {
			g.selected[k] = true
		}
	}
	g.emitSelection()
	return true
}

// SelectedRows returns the selected records in host row order.
func (g *Grid[T]) SelectedRows() []T {
	var out []T
	for _, r := range g.props.Rows {
		if g.selected[r.RowKey()] {
			out = append(out, r)
		}
	}
	return out
}

func (g *Grid[T]) emitSelection() {
	if g.props.OnSelect != nil {
		g.props.OnSelect(g.SelectedRows())
	}
}

// CanExpand reports whether rec may be expanded.
func (g *Grid[T]) CanExpand(rec T) bool {
	if !g.props.Expandable || g.props.ExpandedRender == nil {
		return false
	}
	return g.props.RowExpandable == nil || g.props.RowExpandable(rec)
}

// IsExpanded reports whether the row with key is expanded.
func (g *Grid[T]) IsExpanded(key string) bool { return g.expanded[key] }

// ToggleExpanded opens or closes one row.
func (g *Grid[T]) ToggleExpanded(key string) bool {
	i := indexOfKey(g.props.Rows, key)
	if i < 0 || !g.CanExpand(g.props.Rows[i]) {
		return false
	}
	if g.expanded[key] {
		delete(g.expanded, key)
	} else {
		g.expanded[key] = true
	}
	return true
}

// DragRowEnd moves the row activeKey to the position of overKey and hands the
// new slice to OnRowsChange. Unknown keys and self-drops are no-ops.
func (g *Grid[T]) DragRowEnd(activeKey, overKey string) bool {
	rows, ok := MoveByKey(g.props.Rows, activeKey, overKey)
	if !ok {
		g.log.V(1).Info("row drag ignored", "active", activeKey, "over", overKey)
		return false
	}
	g.log.V(1).Info("row moved", "active", activeKey, "over", overKey)
	if g.props.OnRowsChange != nil {
		g.props.OnRowsChange(rows)
	}
	return true
}

// DragColumnEnd moves the column at from to to, hands the new order to
// OnColumnsChange and persists it.
func (g *Grid[T]) DragColumnEnd(from, to int) bool {
	n := len(g.props.Columns)
	if from == to || from < 0 || to < 0 || from >= n || to >= n {
		g.log.V(1).Info("column drag ignored", "from", from, "to", to)
		return false
	}
	cols := Move(g.props.Columns, from, to)
	g.log.V(1).Info("column moved", "column", cols[to].Key, "from", from, "to", to)
	if g.props.OnColumnsChange != nil {
		g.props.OnColumnsChange(cols)
	}
	if g.props.Order != nil {
		if err := g.props.Order.SaveOrder(OrderEntries(cols)); err != nil {
			g.log.Error(err, "failed to persist column order")
		}
	}
	return true
}

// ResetColumnOrder restores the declared column order and clears the
// persisted order.
func (g *Grid[T]) ResetColumnOrder() {
	cols := slices.Clone(g.props.DeclaredColumns)
	if g.props.OnColumnsChange != nil {
		g.props.OnColumnsChange(cols)
	}
	if g.props.Order != nil {
		if err := g.props.Order.ClearOrder(); err != nil {
			g.log.Error(err, "failed to clear column order")
		}
	}
	g.log.V(1).Info("column order reset")
}
