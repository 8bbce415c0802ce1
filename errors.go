package husk

import "fmt"

// NotAComponentError reports that a handle used where a component is
// required was never registered with a {size, align} descriptor.
type NotAComponentError struct {
	Component Component
}

func (e NotAComponentError) Error() string {
	return fmt.Sprintf("handle %T is not a registered component", e.Component)
}

// NotAnEntityError reports that a handle is zero or absent from the
// entity directory.
type NotAnEntityError struct {
	Entity Entity
}

func (e NotAnEntityError) Error() string {
	return fmt.Sprintf("entity %d is not alive", e.Entity)
}

// ComponentNotInFamilyError reports a get/set against a component the
// entity does not, and will not, carry.
type ComponentNotInFamilyError struct {
	Entity    Entity
	Component Component
}

func (e ComponentNotInFamilyError) Error() string {
	return fmt.Sprintf("entity %d's family does not contain component %T", e.Entity, e.Component)
}

// OutOfMemoryError reports that a backing buffer failed to grow.
type OutOfMemoryError struct {
	Cause error
}

func (e OutOfMemoryError) Error() string {
	return fmt.Sprintf("out of memory: %v", e.Cause)
}

func (e OutOfMemoryError) Unwrap() error { return e.Cause }

// ReentrantProgressError reports a recursive call to (*World).Progress.
// A world has at most one active frame; this is always a caller bug.
type ReentrantProgressError struct{}

func (e ReentrantProgressError) Error() string {
	return "world.Progress called re-entrantly while a frame is already running"
}

// InternalInvariantError marks a detected violation of a storage
// invariant. It is returned as an ordinary error value; the World does
// not record it, is not poisoned by it, and later calls proceed as usual.
type InternalInvariantError struct {
	Detail string
}

func (e InternalInvariantError) Error() string {
	return fmt.Sprintf("internal invariant violated: %s", e.Detail)
}
