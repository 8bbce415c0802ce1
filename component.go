package husk

import "github.com/TheBitDrifter/table"

// Component identifies a data attribute attachable to entities. Per
// spec.md §3, a component is "an entity that additionally carries a
// descriptor {size, align}" — table.ElementType supplies that descriptor
// via Go's type system and table.Schema, so husk never hand-rolls a
// byte-level size/align pair the way a reflection-free language would.
type Component interface {
	table.ElementType
}

// AccessibleComponent pairs a Component with a typed column accessor,
// giving callers a pointer straight into the archetype's contiguous
// storage — this is spec.md §6's data(row, column_index) -> pointer,
// rendered as a generic Go accessor instead of a void* cursor call.
type AccessibleComponent[T any] struct {
	Component
	table.Accessor[T]
}

// GetFromEntity retrieves the component value for an alive entity.
func (c AccessibleComponent[T]) GetFromEntity(w *World, e Entity) (*T, error) {
	arch, row, err := w.dir.locate(e)
	if err != nil {
		return nil, err
	}
	if !c.Accessor.Check(arch.tbl) {
		return nil, ComponentNotInFamilyError{Entity: e, Component: c.Component}
	}
	return c.Get(row, arch.tbl), nil
}

// GetFromIteration retrieves the component value for the row currently
// visited by a system's Iteration cursor.
func (c AccessibleComponent[T]) GetFromIteration(it *Iteration, row int) *T {
	return c.Get(row, it.archetype.tbl)
}

// CheckEntity reports whether an alive entity's family carries this
// component, without requiring the caller to handle ComponentNotInFamilyError.
func (c AccessibleComponent[T]) CheckEntity(w *World, e Entity) bool {
	arch, _, err := w.dir.locate(e)
	if err != nil {
		return false
	}
	return c.Accessor.Check(arch.tbl)
}

