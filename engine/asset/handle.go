package asset

import "fmt"

// Handle is a typed, generational reference to a value stored in an Assets table.
// The zero Handle is invalid. A Handle whose slot has been removed stays invalid even
// if the slot is reused, because the generation no longer matches.
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// IsValid reports whether the handle was ever issued by a table. It does not check whether
// the value is still present; use Assets.Contains for that.
func (h Handle[T]) IsValid() bool {
	return h.generation != 0
}

// String returns a compact debug representation such as "3v2".
func (h Handle[T]) String() string {
	return fmt.Sprintf("%dv%d", h.index, h.generation)
}
