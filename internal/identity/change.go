// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

// Change is an optional field of an update. An unset change leaves the field
// alone; a set change to the zero value clears it.
type Change[T any] struct {
	value T
	set   bool
}

// Set returns a change to v.
func Set[T any](v T) Change[T] {
	return Change[T]{value: v, set: true}
}

// IsSet reports whether the change carries a value.
func (c Change[T]) IsSet() bool { return c.set }

// Value returns the new value and whether the change is set.
func (c Change[T]) Value() (T, bool) { return c.value, c.set }

// Ptr returns a pointer to the new value, nil when unset. Events store
// changes as pointers so that absent fields stay absent in JSON.
func (c Change[T]) Ptr() *T {
	if !c.set {
		return nil
	}
	v := c.value
	return &v
}
