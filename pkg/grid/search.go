package grid

import (
	"strings"
	"unicode"
)

// SearchState is the single active search. Only ColumnKey's cells are
// highlighted.
type SearchState struct {
	Query     string
	ColumnKey string
}

// Active reports whether a search is highlighting a column.
func (s SearchState) Active() bool { return s.ColumnKey != "" && s.Query != "" }

// ActiveFor returns the query when key owns the active search, else "".
func (s SearchState) ActiveFor(key string) string {
	if s.Active() && s.ColumnKey == key {
		return s.Query
	}
	return ""
}

// Contains reports whether text contains query, ignoring case on both sides.
func Contains(text, query string) bool {
	if query == "" {
		return true
	}
	return indexFold([]rune(text), []rune(query), 0) >= 0
}

// Segment is a run of text that either matches the query or not.
type Segment struct {
	Text  string
	Match bool
}

// SplitMatches cuts text into alternating segments around every
// case-insensitive, non-overlapping occurrence of query. The query is literal.
func SplitMatches(text, query string) []Segment {
	if text == "" {
		return nil
	}
	tr := []rune(text)
	qr := []rune(query)
	if len(qr) == 0 {
		return []Segment{{Text: text}}
	}
	var out []Segment
	pos := 0
	for pos <= len(tr)-len(qr) {
		i := indexFold(tr, qr, pos)
		if i < 0 {
			break
		}
		if i > pos {
			out = append(out, Segment{Text: string(tr[pos:i])})
		}
		out = append(out, Segment{Text: string(tr[i : i+len(qr)]), Match: true})
		pos = i + len(qr)
	}
	if pos < len(tr) {
		out = append(out, Segment{Text: string(tr[pos:])})
	}
	return out
}

func indexFold(text, query []rune, from int) int {
	for i := from; i+len(query) <= len(text); i++ {
		ok := true
		for j, q := range query {
			if unicode.ToLower(text[i+j]) != unicode.ToLower(q) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

// Highlighter wraps the matching parts of text.
type Highlighter interface {
	Highlight(text, query string) string
}

// HighlightFunc adapts a function to Highlighter.
type HighlightFunc func(text, query string) string

// Highlight calls f.
func (f HighlightFunc) Highlight(text, query string) string { return f(text, query) }

// MarkerHighlighter wraps matches in open and close markers.
func MarkerHighlighter(open, closing string) Highlighter {
	return HighlightFunc(func(text, query string) string {
		var b strings.Builder
		for _, seg := range SplitMatches(text, query) {
			if seg.Match {
				b.WriteString(open)
				b.WriteString(seg.Text)
				b.WriteString(closing)
				continue
			}
			b.WriteString(seg.Text)
		}
		return b.String()
	})
}
