package husk

import "github.com/TheBitDrifter/table"

// Iteration is the cursor handed to a system callback, spec.md §6's
// "iteration cursor" (first/last row bounds, entity(row), data(row,
// column) -> pointer, next(row) -> row, and a reference to the world").
// Grounded on the teacher's Cursor, narrowed from "resolve queries across
// many archetypes" (now System/matching's job, see system.go) down to
// "walk one already-matched archetype's rows".
type Iteration struct {
	world     *World
	archetype *Archetype
	dt        float64
	first     int
	last      int
}

// World returns the world this iteration belongs to, for staged writes.
func (it *Iteration) World() *World { return it.world }

// DT returns the frame delta-time Progress was called with.
func (it *Iteration) DT() float64 { return it.dt }

// First is the first valid row index in this iteration.
func (it *Iteration) First() int { return it.first }

// Last is one past the last valid row index in this iteration.
func (it *Iteration) Last() int { return it.last }

// Next returns the row after row; callers stop once it no longer satisfies
// row < it.Last().
func (it *Iteration) Next(row int) int { return row + 1 }

// Entity returns the entity handle occupying row.
func (it *Iteration) Entity(row int) (Entity, error) {
	entry, err := it.archetype.tbl.Entry(row)
	if err != nil {
		return 0, NotAnEntityError{}
	}
	return Entity(entry.ID()), nil
}

// Table exposes the archetype's raw columnar store, for callers that read
// component data directly rather than through an AccessibleComponent.
func (it *Iteration) Table() table.Table { return it.archetype.tbl }
