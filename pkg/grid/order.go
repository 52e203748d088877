package grid

import (
	"slices"
	"sort"
)

// OrderEntry is one persisted column position.
type OrderEntry struct {
	ElementKey string `json:"elementKey"`
	ToIndex    int    `json:"toIndex"`
}

// OrderPersister stores the user's column order.
type OrderPersister interface {
	SaveOrder(entries []OrderEntry) error
	ClearOrder() error
}

// Move returns a copy of items with the element at from reinserted at to.
// Out of range indices return an unchanged copy.
func Move[E any](items []E, from, to int) []E {
	out := slices.Clone(items)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	el := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, el)
}

// MoveByKey moves the row identified by activeKey to the index held by the
// row identified by overKey. ok is false, and rows are returned as a copy,
// when either key is unknown or both name the same row.
func MoveByKey[T Record](rows []T, activeKey, overKey string) (out []T, ok bool) {
	from := indexOfKey(rows, activeKey)
	to := indexOfKey(rows, overKey)
	if from < 0 || to < 0 || from == to {
		return slices.Clone(rows), false
	}
	return Move(rows, from, to), true
}

// OrderEntries describes cols as one entry per column.
func OrderEntries[T Record](cols []Column[T]) []OrderEntry {
	out := make([]OrderEntry, len(cols))
	for i, c := range cols {
		out[i] = OrderEntry{ElementKey: c.Key, ToIndex: i}
	}
	return out
}

// ReconcileColumns applies a saved order to the declared columns. Saved
// entries are taken in ToIndex order; keys no longer declared and repeated
// keys are dropped; declared columns missing from the saved order are
// appended in declared order. An empty saved order returns the declared order.
func ReconcileColumns[T Record](declared []Column[T], saved []OrderEntry) []Column[T] {
	if len(saved) == 0 {
		return slices.Clone(declared)
	}
	entries := slices.Clone(saved)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ToIndex < entries[j].ToIndex })

	out := make([]Column[T], 0, len(declared))
	used := make(map[string]bool, len(declared))
	for _, e := range entries {
		if used[e.ElementKey] {
			continue
		}
		i := columnIndex(declared, e.ElementKey)
		if i < 0 {
			continue
		}
		used[e.ElementKey] = true
		out = append(out, declared[i])
	}
	for _, c := range declared {
		if !used[c.Key] {
			out = append(out, c)
		}
	}
	return out
}
