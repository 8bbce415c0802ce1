/*
Package husk is the hard core of an Entity-Component-System runtime: an
archetype store that groups entities by the exact set of components they
carry, dispatches registered systems over contiguous column slices, and
defers structural edits made during a running frame until it is safe to
apply them.

Core Concepts:

  - Entity: an opaque handle, never reused within a world's lifetime.
  - Component: a data attribute, identified by its own handle.
  - Family: the set of components an entity carries, interned to a
    FamilyId; every entity with the same family lives in the same
    Archetype table.
  - Stage: the deferred-mutation buffer a World consults while a system
    is iterating, merged into committed state at a safe point.
  - System: a callback bound to a phase and a family, invoked once per
    matching archetype.

Basic usage:

	w := husk.Init()
	defer w.Fini()

	position := husk.FactoryNewComponent[Position]()
	velocity := husk.FactoryNewComponent[Velocity]()

	family := w.RegisterFamily(position.Component, velocity.Component)
	e, _ := w.New(family)
	husk.Set(w, e, position, Position{X: 1, Y: 2})
	husk.Set(w, e, velocity, Velocity{X: 0, Y: -1})

	w.RegisterSystem(husk.PhaseOnFrame, family, func(w *husk.World, it *husk.Iteration) {
		for row := it.First(); row < it.Last(); row = it.Next(row) {
			pos := position.GetFromIteration(it, row)
			vel := velocity.GetFromIteration(it, row)
			pos.X += vel.X * it.DT()
			pos.Y += vel.Y * it.DT()
		}
	})

	w.Progress(1.0 / 60.0)

husk is the ECS runtime underlying a larger game framework but also works
as a standalone library.
*/
package husk
