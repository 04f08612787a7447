// Package asset stores engine resources (images, materials) in generational tables and loads
// images from disk on a background worker pool. Consumers hold typed Handles instead of
// pointers so that a resource can be replaced in place and every holder sees the change.
package asset

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAssetNotFound is returned when a handle does not resolve to a stored value.
var ErrAssetNotFound = errors.New("asset: not found")

// Assets is a thread-safe table of values addressed by generational handles.
type Assets[T any] interface {
	// Add stores a value and returns its new handle.
	//
	// Parameters:
	//   - value: the value to store
	//
	// Returns:
	//   - Handle[T]: handle addressing the value
	Add(value T) Handle[T]

	// Reserve allocates a handle without a value. Get reports false for it until Set is called.
	//
	// Returns:
	//   - Handle[T]: the reserved handle
	Reserve() Handle[T]

	// Get looks up a value.
	//
	// Parameters:
	//   - h: the handle to resolve
	//
	// Returns:
	//   - T: the stored value, or the zero value
	//   - bool: true if the handle resolves to a value
	Get(h Handle[T]) (T, bool)

	// Set replaces the value behind a live or reserved handle.
	//
	// Parameters:
	//   - h: the handle to write
	//   - value: the new value
	//
	// Returns:
	//   - error: ErrAssetNotFound if the handle was removed or never issued
	Set(h Handle[T], value T) error

	// Remove frees the slot behind a handle. The handle and all copies of it become stale.
	//
	// Parameters:
	//   - h: the handle to remove
	//
	// Returns:
	//   - T: the removed value, or the zero value
	//   - bool: true if a slot was freed
	Remove(h Handle[T]) (T, bool)

	// Contains reports whether the handle resolves to a value.
	Contains(h Handle[T]) bool

	// Len returns the number of stored values, not counting reserved handles.
	Len() int

	// Each calls fn for every stored value in slot order. fn must not call back into the table.
	//
	// Parameters:
	//   - fn: callback receiving each handle and value
	Each(fn func(h Handle[T], value T))
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
	filled     bool
}

type assets[T any] struct {
	mu    sync.RWMutex
	slots []slot[T]
	free  []uint32
	count int
}

var _ Assets[int] = &assets[int]{}

// NewAssets creates an empty table.
//
// Returns:
//   - Assets[T]: the new table
func NewAssets[T any]() Assets[T] {
	return &assets[T]{}
}

func (a *assets[T]) Add(value T) Handle[T] {
	a.mu.Lock()
	defer a.mu.Unlock()

	h := a.alloc()
	s := &a.slots[h.index]
	s.value = value
	s.filled = true
	a.count++
	return h
}

func (a *assets[T]) Reserve() Handle[T] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alloc()
}

func (a *assets[T]) Get(h Handle[T]) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := a.lookup(h)
	if s == nil || !s.filled {
		var zero T
		return zero, false
	}
	return s.value, true
}

func (a *assets[T]) Set(h Handle[T], value T) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.lookup(h)
	if s == nil {
		return fmt.Errorf("%w: handle %s", ErrAssetNotFound, h)
	}
	if !s.filled {
		s.filled = true
		a.count++
	}
	s.value = value
	return nil
}

func (a *assets[T]) Remove(h Handle[T]) (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var zero T
	s := a.lookup(h)
	if s == nil {
		return zero, false
	}
	value := s.value
	if s.filled {
		a.count--
	}
	s.value = zero
	s.live = false
	s.filled = false
	a.free = append(a.free, h.index)
	return value, true
}

func (a *assets[T]) Contains(h Handle[T]) bool {
	_, ok := a.Get(h)
	return ok
}

func (a *assets[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.count
}

func (a *assets[T]) Each(fn func(h Handle[T], value T)) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := range a.slots {
		s := &a.slots[i]
		if s.live && s.filled {
			fn(Handle[T]{index: uint32(i), generation: s.generation}, s.value)
		}
	}
}

// alloc returns a live, unfilled slot. Caller holds the write lock.
func (a *assets[T]) alloc() Handle[T] {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[idx]
	s.generation++
	s.live = true
	return Handle[T]{index: idx, generation: s.generation}
}

// lookup resolves a handle to its live slot. Caller holds a lock.
func (a *assets[T]) lookup(h Handle[T]) *slot[T] {
	if !h.IsValid() || int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if !s.live || s.generation != h.generation {
		return nil
	}
	return s
}
