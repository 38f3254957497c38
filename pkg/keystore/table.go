// Package keystore persists recovered Crypto-1 keys across cmd/hnbf
// invocations, adapted from the teacher's result.Table/checkpoint pair for
// the key-recovery domain instead of optimizer rules.
package keystore

import (
	"sort"
	"sync"
)

// Key is one recovered key for a sector's A or B key slot.
type Key struct {
	Block uint8
	IsB   bool
	Value uint64
}

// Table is a mutex-protected, sorted collection of recovered keys.
type Table struct {
	mu   sync.Mutex
	keys []Key
}

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{} }

// Add records a recovered key.
func (t *Table) Add(k Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.keys = append(t.keys, k)
}

// Keys returns a snapshot of every recorded key, sorted by block then key
// slot.
func (t *Table) Keys() []Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := append([]Key(nil), t.keys...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Block != out[j].Block {
			return out[i].Block < out[j].Block
		}
		return !out[i].IsB && out[j].IsB
	})
	return out
}

// Len reports how many keys have been recorded.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.keys)
}
