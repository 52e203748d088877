package grid

import "maps"

// CellKind is the rendering capability of a column.
type CellKind int

const (
	// CellPlain renders the stringified field and highlights it directly.
	CellPlain CellKind = iota
	// CellFormatted searches the output of a formatter but renders and
	// highlights the raw field.
	CellFormatted
	// CellCustom renders an Element. While its column is searched it falls
	// back to the highlighted raw field.
	CellCustom
	// CellCustomHighlight renders an Element and injects the highlighted
	// formatter output into one of its props while its column is searched.
	CellCustomHighlight
)

func (k CellKind) String() string {
	switch k {
	case CellFormatted:
		return "formatted"
	case CellCustom:
		return "custom"
	case CellCustomHighlight:
		return "custom-highlight"
	default:
		return "plain"
	}
}

// Cell is the rendering strategy of a column. The zero value is Plain.
type Cell[T Record] struct {
	kind   CellKind
	format func(T) string
	render func(text string, rec T) Element
	target string
}

// Plain renders the raw field text.
func Plain[T Record]() Cell[T] { return Cell[T]{kind: CellPlain} }

// Formatted matches searches against format(rec) and renders the raw field.
func Formatted[T Record](format func(T) string) Cell[T] {
	if format == nil {
		return Plain[T]()
	}
	return Cell[T]{kind: CellFormatted, format: format}
}

// Custom renders an element built from the raw field text, or the highlighted
// raw text while its column is searched. format, when not nil, replaces the
// raw text for searching.
func Custom[T Record](render func(text string, rec T) Element, format func(T) string) Cell[T] {
	if render == nil {
		return Formatted(format)
	}
	return Cell[T]{kind: CellCustom, render: render, format: format}
}

// CustomHighlight renders an element and, while its column holds the active
// search, replaces the element prop named target with the highlighted search
// text. Without a formatter the injected text is empty.
func CustomHighlight[T Record](render func(text string, rec T) Element, target string, format func(T) string) Cell[T] {
	if target == "" {
		return Custom(render, format)
	}
	if render == nil {
		return Formatted(format)
	}
	return Cell[T]{kind: CellCustomHighlight, render: render, target: target, format: format}
}

// Kind reports the strategy.
func (c Cell[T]) Kind() CellKind { return c.kind }

// Target is the highlight injection prop, empty unless CellCustomHighlight.
func (c Cell[T]) Target() string { return c.target }

// Render produces the cell text. query is non-empty only when the owning
// column holds the active search.
func (c Cell[T]) Render(col Column[T], rec T, query string, hl Highlighter) string {
	raw := FieldText(rec, col.Key)
	switch c.kind {
	case CellCustom:
		if query != "" {
			return hl.Highlight(raw, query)
		}
		return c.render(raw, rec).String()
	case CellCustomHighlight:
		el := c.render(raw, rec)
		if query == "" {
			return el.String()
		}
		text := ""
		if c.format != nil {
			text = c.format(rec)
		}
		return el.With(c.target, hl.Highlight(text, query)).String()
	default:
		if query != "" {
			return hl.Highlight(raw, query)
		}
		return raw
	}
}

// ChildrenProp is the prop Text elements render.
const ChildrenProp = "children"

// Element is a renderable cell built from named string props and a layout
// that composes them. Elements are values; With returns a modified copy.
type Element struct {
	props  map[string]string
	layout func(props map[string]string) string
}

// NewElement builds an element. A nil layout renders the children prop.
func NewElement(layout func(props map[string]string) string, props map[string]string) Element {
	return Element{props: maps.Clone(props), layout: layout}
}

// Text is an element whose only prop is its children.
func Text(s string) Element {
	return Element{props: map[string]string{ChildrenProp: s}}
}

// Prop returns the named prop.
func (e Element) Prop(name string) string { return e.props[name] }

// With returns a copy of e with prop name set to value.
func (e Element) With(name, value string) Element {
	props := maps.Clone(e.props)
	if props == nil {
		props = map[string]string{}
	}
	props[name] = value
	return Element{props: props, layout: e.layout}
}

func (e Element) String() string {
	if e.layout == nil {
		return e.props[ChildrenProp]
	}
	return e.layout(e.props)
}
