// Package grid implements a controlled data-grid component: column and row
// models, search and checklist filtering with highlight, selection, expansion,
// pagination and drag reordering of rows and columns.
//
// The grid never owns the rows or columns it displays. The host passes them in
// through Props and receives every reordered slice back through the change
// callbacks; the grid itself only keeps transient UI state such as the active
// search, applied filters, the current page and the selection.
package grid

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is a row bound to the grid.
// RowKey must be unique within a row set and stable across reorders.
type Record interface {
	RowKey() string
	Field(key string) (any, bool)
}

// MapRecord is a Record backed by a generic map, as produced by the loaders.
type MapRecord struct {
	Key    string
	Values map[string]any
}

// RowKey returns the record identity.
func (r MapRecord) RowKey() string { return r.Key }

// Field returns the value stored under key.
func (r MapRecord) Field(key string) (any, bool) {
	if r.Values == nil {
		return nil, false
	}
	v, ok := r.Values[key]
	return v, ok
}

// Stringify renders a field value as display text. Nil and absent values
// become the empty string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// FieldText returns the stringified value of rec's field, or "" when absent.
func FieldText(rec Record, key string) string {
	v, ok := rec.Field(key)
	if !ok {
		return ""
	}
	return Stringify(v)
}

func indexOfKey[T Record](rows []T, key string) int {
	for i, r := range rows {
		if r.RowKey() == key {
			return i
		}
	}
	return -1
}
