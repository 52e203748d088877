package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPageSize is used when Pagination.PageSize is not positive.
const DefaultPageSize = 20

// DefaultSizeOptions are the page sizes offered when the size is resizable.
var DefaultSizeOptions = []int{10, 20, 50, 100}

// Position places the pagination bar at one of the grid corners.
type Position int

const (
	BottomRight Position = iota
	BottomLeft
	TopRight
	TopLeft
)

// ParsePosition accepts topLeft, topRight, bottomLeft and bottomRight in any
// case, with or without a separator.
func ParsePosition(s string) (Position, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "", "bottomright":
		return BottomRight, nil
	case "bottomleft":
		return BottomLeft, nil
	case "topright":
		return TopRight, nil
	case "topleft":
		return TopLeft, nil
	}
	return BottomRight, fmt.Errorf("unknown pagination position %q", s)
}

func (p Position) String() string {
	switch p {
	case BottomLeft:
		return "bottomLeft"
	case TopRight:
		return "topRight"
	case TopLeft:
		return "topLeft"
	default:
		return "bottomRight"
	}
}

// Top reports whether the bar sits above the body.
func (p Position) Top() bool { return p == TopLeft || p == TopRight }

// Left reports whether the bar is left aligned.
func (p Position) Left() bool { return p == TopLeft || p == BottomLeft }

// Pagination configures paging.
type Pagination struct {
	PageSize    int
	Resizable   bool
	Position    Position
	SizeOptions []int
}

func (p Pagination) pageSize() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

func (p Pagination) sizeOptions() []int {
	if len(p.SizeOptions) > 0 {
		return p.SizeOptions
	}
	return DefaultSizeOptions
}

// Caption is the total-count label: "No item", "1 item" or "N items".
func Caption(total int) string {
	switch {
	case total <= 0:
		return "No item"
	case total == 1:
		return "1 item"
	default:
		return strconv.Itoa(total) + " items"
	}
}

// PageCount returns the number of pages for total rows, at least 1.
func PageCount(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// PageBounds returns the half-open row range of a zero-based page, clamped
// to total.
func PageBounds(page, size, total int) (start, end int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	start = page * size
	if start > total {
		start = total
	}
	if start < 0 {
		start = 0
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}
