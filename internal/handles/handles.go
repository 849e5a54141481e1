// Package handles provides a thread-safe handle system for storing Go objects
// that need to be referenced from host callbacks.
//
// The host must never hold a Go pointer. Instead, a Go object is registered
// and the host receives an opaque uint64 handle that can be stored in C memory
// and later resolved back to the object.
//
// Handles are never reused within a Table: the counter only grows, so a stale
// handle resolves to nothing instead of to a newer object. Handle 0 is never
// issued and is reserved to signal failure.
package handles

import (
	"sync"
)

// Table maps handles to values of type T.
type Table[T any] struct {
	mu     sync.RWMutex
	values map[uint64]T
	nextID uint64
}

// New creates an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{values: make(map[uint64]T)}
}

// Register stores v and returns its handle.
//
// Thread-safe.
func (t *Table[T]) Register(v T) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.values == nil {
		t.values = make(map[uint64]T)
	}
	t.nextID++
	id := t.nextID
	t.values[id] = v
	return id
}

// Lookup retrieves the value for a handle.
//
// Thread-safe.
func (t *Table[T]) Lookup(id uint64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[id]
	return v, ok
}

// Take removes a handle and returns its value. A handle can be taken once.
//
// Thread-safe.
func (t *Table[T]) Take(id uint64) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[id]
	if ok {
		delete(t.values, id)
	}
	return v, ok
}

// Unregister removes a handle and allows the value to be garbage collected.
//
// Thread-safe.
func (t *Table[T]) Unregister(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.values, id)
}

// Count returns the number of currently registered handles.
// Useful for debugging and testing leaks.
//
// Thread-safe.
func (t *Table[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}
