package orderstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridx/pkg/grid"
)

// DefaultKey is the store key holding the column order.
const DefaultKey = "columnsOrder"

// DecodeOrder parses a persisted column order. An empty value is no order.
func DecodeOrder(value string) ([]grid.OrderEntry, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var entries []grid.OrderEntry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		return nil, fmt.Errorf("decode column order: %w", err)
	}
	return entries, nil
}

// EncodeOrder serialises a column order.
func EncodeOrder(entries []grid.OrderEntry) (string, error) {
	if entries == nil {
		entries = []grid.OrderEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode column order: %w", err)
	}
	return string(b), nil
}

// Persister stores one grid's column order under Key. It implements
// grid.OrderPersister.
type Persister struct {
	Store  Store
	Key    string
	Logger logr.Logger
}

// NewPersister binds a store and key. An empty key uses DefaultKey.
func NewPersister(store Store, key string, log logr.Logger) *Persister {
	if key == "" {
		key = DefaultKey
	}
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Persister{Store: store, Key: key, Logger: log}
}

// LoadOrder reads the saved order. Missing, empty, unreadable or malformed
// values all mean no saved order.
func (p *Persister) LoadOrder() []grid.OrderEntry {
	raw, err := p.Store.Get(p.Key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			p.Logger.Error(err, "failed to read column order", "key", p.Key)
		}
		return nil
	}
	entries, err := DecodeOrder(raw)
	if err != nil {
		p.Logger.V(1).Info("ignoring malformed column order", "key", p.Key, "error", err.Error())
		return nil
	}
	return entries
}

// SaveOrder writes entries under Key.
func (p *Persister) SaveOrder(entries []grid.OrderEntry) error {
	value, err := EncodeOrder(entries)
	if err != nil {
		return err
	}
	if err := p.Store.Set(p.Key, value); err != nil {
		return fmt.Errorf("save column order: %w", err)
	}
	p.Logger.V(1).Info("column order saved", "key", p.Key, "columns", len(entries))
	return nil
}

// ClearOrder removes the saved order.
func (p *Persister) ClearOrder() error {
	if err := p.Store.Delete(p.Key); err != nil {
		return fmt.Errorf("clear column order: %w", err)
	}
	return nil
}

// Restore reconciles declared columns with the saved order, as done once
// when a host mounts the grid.
func Restore[T grid.Record](p *Persister, declared []grid.Column[T]) []grid.Column[T] {
	return grid.ReconcileColumns(declared, p.LoadOrder())
}
