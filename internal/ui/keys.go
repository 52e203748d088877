package ui

import "charm.land/bubbles/v2/key"

// KeyMap holds every binding of the grid view. It implements help.KeyMap.
type KeyMap struct {
	Up, Down    key.Binding
	Left, Right key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	GrowPage    key.Binding
	ShrinkPage  key.Binding
	FocusHeader key.Binding
	Sort        key.Binding
	Search      key.Binding
	Filter      key.Binding
	ResetSearch key.Binding
	Select      key.Binding
	SelectPage  key.Binding
	Expand      key.Binding
	Grab        key.Binding
	ResetOrder  key.Binding
	Copy        key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	Reset       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the vim-flavoured default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		NextPage:    key.NewBinding(key.WithKeys("pgdown", "]"), key.WithHelp("]", "next page")),
		PrevPage:    key.NewBinding(key.WithKeys("pgup", "["), key.WithHelp("[", "prev page")),
		GrowPage:    key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "larger pages")),
		ShrinkPage:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller pages")),
		FocusHeader: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "header/rows")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search column")),
		Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter column")),
		ResetSearch: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear column")),
		Select:      key.NewBinding(key.WithKeys("space", " "), key.WithHelp("space", "select")),
		SelectPage:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		Expand:      key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "expand")),
		Grab:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		ResetOrder:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset columns")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy row")),
		Confirm:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Reset:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.FocusHeader, k.Sort, k.Search, k.Filter, k.Help, k.Quit}
}

// FullHelp is shown after pressing the help key.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.FocusHeader},
		{k.NextPage, k.PrevPage, k.GrowPage, k.ShrinkPage},
		{k.Sort, k.Search, k.Filter, k.ResetSearch},
		{k.Select, k.SelectPage, k.Expand, k.Copy},
		{k.Grab, k.ResetOrder, k.Help, k.Quit},
	}
}
