package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// WidthUnit says how a column Width is measured.
type WidthUnit int

const (
	WidthAuto WidthUnit = iota
	WidthPercent
	WidthFixed
)

// Width is a column width, either a share of the grid or a fixed cell count.
type Width struct {
	Value int
	Unit  WidthUnit
}

// Percent returns a width of n percent of the available space.
func Percent(n int) Width { return Width{Value: n, Unit: WidthPercent} }

// Fixed returns a width of n terminal cells.
func Fixed(n int) Width { return Width{Value: n, Unit: WidthFixed} }

// ParseWidth parses "20%", "12" or "" (auto).
func ParseWidth(s string) (Width, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "auto" {
		return Width{}, nil
	}
	if strings.HasSuffix(s, "%") {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "%")))
		if err != nil || n <= 0 || n > 100 {
			return Width{}, fmt.Errorf("invalid percent width %q", s)
		}
		return Percent(n), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return Width{}, fmt.Errorf("invalid width %q", s)
	}
	return Fixed(n), nil
}

func (w Width) String() string {
	switch w.Unit {
	case WidthPercent:
		return strconv.Itoa(w.Value) + "%"
	case WidthFixed:
		return strconv.Itoa(w.Value)
	default:
		return "auto"
	}
}

// FilterOption is one entry of a column checklist filter.
type FilterOption struct {
	Label string
	Value string
}

// Column describes one grid column.
//
// Key addresses Record.Field. Compare enables sorting when set. A Searchable
// column gets the search popover; otherwise a non-empty Filters list gets the
// checklist popover. DefaultFilter seeds the applied filter and takes
// precedence over the initial query string.
type Column[T Record] struct {
	Title         string
	Key           string
	Width         Width
	Compare       func(a, b T) int
	Searchable    bool
	Cell          Cell[T]
	Filters       []FilterOption
	DefaultFilter []string
}

// Sortable reports whether the column has a comparator.
func (c Column[T]) Sortable() bool { return c.Compare != nil }

// Filterable reports whether the column exposes a checklist filter.
func (c Column[T]) Filterable() bool { return !c.Searchable && len(c.Filters) > 0 }

// SearchText is the text a search query is matched against.
func (c Column[T]) SearchText(rec T) string {
	if c.Cell.format != nil {
		return c.Cell.format(rec)
	}
	return FieldText(rec, c.Key)
}

// CompareText orders two records by the stringified field value, numerically
// when both values are numbers.
func CompareText[T Record](key string) func(a, b T) int {
	return func(a, b T) int {
		av, _ := a.Field(key)
		bv, _ := b.Field(key)
		return CompareValues(av, bv)
	}
}

// CompareValues orders numbers numerically and everything else by
// case-insensitive text. Numeric strings, as read from CSV, count as numbers.
func CompareValues(a, b any) int {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(strings.ToLower(Stringify(a)), strings.ToLower(Stringify(b)))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func columnIndex[T Record](cols []Column[T], key string) int {
	for i, c := range cols {
		if c.Key == key {
			return i
		}
	}
	return -1
}
