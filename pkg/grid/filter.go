package grid

import (
	"net/url"
	"slices"
	"strings"
)

// filterSet holds the applied and pending filter values per column key.
type filterSet struct {
	applied map[string][]string
	pending map[string][]string
}

func newFilterSet() filterSet {
	return filterSet{applied: map[string][]string{}, pending: map[string][]string{}}
}

func (f filterSet) apply(key string, values []string) {
	if len(values) == 0 {
		delete(f.applied, key)
		delete(f.pending, key)
		return
	}
	f.applied[key] = slices.Clone(values)
	f.pending[key] = slices.Clone(values)
}

func (f filterSet) clear(key string) {
	delete(f.applied, key)
	delete(f.pending, key)
}

func (f filterSet) toggle(key, value string) {
	cur := f.pending[key]
	if i := slices.Index(cur, value); i >= 0 {
		f.pending[key] = slices.Delete(slices.Clone(cur), i, i+1)
		return
	}
	f.pending[key] = append(slices.Clone(cur), value)
}

// keep reports whether rec passes every applied column filter. A column
// filter passes when any of its values matches.
func keep[T Record](cols []Column[T], f filterSet, rec T) bool {
	for _, col := range cols {
		values := f.applied[col.Key]
		if len(values) == 0 {
			continue
		}
		if !matchesAny(col, rec, values) {
			return false
		}
	}
	return true
}

func matchesAny[T Record](col Column[T], rec T, values []string) bool {
	if col.Searchable {
		text := col.SearchText(rec)
		for _, v := range values {
			if Contains(text, v) {
				return true
			}
		}
		return false
	}
	text := FieldText(rec, col.Key)
	return slices.Contains(values, text)
}

// ParseQueryFilters extracts default filter values from a URL query string
// (with or without the leading "?", or a full URL). Every parameter whose name
// is a column key yields that parameter's comma-separated values. Malformed
// pairs are skipped.
func ParseQueryFilters[T Record](rawQuery string, cols []Column[T]) map[string][]string {
	out := map[string][]string{}
	rawQuery = strings.TrimSpace(rawQuery)
	if rawQuery == "" {
		return out
	}
	switch {
	case strings.HasPrefix(rawQuery, "?"):
		rawQuery = rawQuery[1:]
	case strings.Contains(rawQuery, "?"):
		// Only a URL carries its query after "?". In a bare query string the
		// "?" belongs to a value.
		if u, err := url.Parse(rawQuery); err == nil && (u.Scheme != "" || strings.HasPrefix(u.Path, "/")) {
			rawQuery = u.RawQuery
		}
	}
	// ParseQuery still returns every well-formed pair alongside the error.
	params, _ := url.ParseQuery(rawQuery)
	for _, col := range cols {
		v := params.Get(col.Key)
		if v == "" {
			continue
		}
		var values []string
		for _, part := range strings.Split(v, ",") {
			if part != "" {
				values = append(values, part)
			}
		}
		if len(values) > 0 {
			out[col.Key] = values
		}
	}
	return out
}
