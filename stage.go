package husk

import "reflect"

// pendingWrite is one entry of spec.md §4.3's data_stage: a component and
// the value it should carry once the owning entity's row exists in its
// resolved family's table.
type pendingWrite struct {
	component Component
	value     reflect.Value
}

// stage is the deferred-mutation buffer of spec.md §4.3/§4.4, grounded on
// _examples/original_source/src/stage.c. A World owns two: mainStage
// (used outside a frame, merged synchronously after every call) and
// frameStage (used while a system runs, merged once the system returns).
//
// Two of the C stage's fields have no Go-idiomatic equivalent and are
// deliberately not reproduced — see DESIGN.md:
//   - family_stage: families are interned directly into the World's
//     single familyRegistry; a freshly minted FamilyId never has rows in
//     it, so there is nothing for a concurrent reader to observe early.
//   - table_db_stage: a manual-ownership arena with no purpose once Go's
//     garbage collector owns table_stage's entries.
//
// table_stage survives as stage.scratch, but narrowed to its only real
// job: giving a brand-new or cloned entity a row to live in before its
// resolved family is known (see mint below). Every
// other structural edit — add/remove/set on an entity that already has a
// main-store row — needs no shadow table at all: the real source row
// already holds its current state, and the move happens directly against
// the real destination table at commit time.
type stage struct {
	world *World

	addStage    map[Entity]FamilyId
	removeStage map[Entity]FamilyId
	dataStage   map[Entity][]pendingWrite
	deleteStage []Entity

	touched    []Entity
	touchedSet map[Entity]struct{}

	scratch map[FamilyId]*Archetype
}

func newStage(w *World) *stage {
	return &stage{
		world:       w,
		addStage:    make(map[Entity]FamilyId),
		removeStage: make(map[Entity]FamilyId),
		dataStage:   make(map[Entity][]pendingWrite),
		touchedSet:  make(map[Entity]struct{}),
		scratch:     make(map[FamilyId]*Archetype),
	}
}

func (s *stage) touch(e Entity) {
	if _, ok := s.touchedSet[e]; ok {
		return
	}
	s.touchedSet[e] = struct{}{}
	s.touched = append(s.touched, e)
}

// scratchTableFor lazily creates (and memoizes, for this stage's
// lifetime) the shadow table backing brand-new entities minted in family
// fam before their final resolved family is known.
func (s *stage) scratchTableFor(fam FamilyId) (*Archetype, error) {
	if a, ok := s.scratch[fam]; ok {
		return a, nil
	}
	w := s.world
	a, err := newArchetype(w.schema, w.dir.entries, fam, w.families.Mask(fam), w.families.Components(fam))
	if err != nil {
		return nil, err
	}
	a.scratch = true
	w.dir.track(a)
	s.scratch[fam] = a
	return a, nil
}

// mint allocates a fresh entity handle by inserting it into a scratch
// table for the empty family — spec.md §4.5's "allocate a fresh handle".
// Insertion (not a bare counter) is required because the entity's handle
// is assigned by the shared entry index at the moment of insertion.
func (s *stage) mint() (Entity, error) {
	a, err := s.scratchTableFor(EmptyFamily)
	if err != nil {
		return 0, err
	}
	e, err := a.insert()
	if err != nil {
		return 0, err
	}
	s.touch(e)
	return e, nil
}

// stageAddFamily unions fam's components into e's pending target family:
// add_stage[e] := merge(add_stage[e] or current_family(e), fam, 0).
func (s *stage) stageAddFamily(e Entity, fam FamilyId) {
	s.touch(e)
	base, ok := s.addStage[e]
	if !ok {
		base = s.world.dir.familyOf(e)
	}
	s.addStage[e] = s.world.families.Merge(base, fam, EmptyFamily)
}

// stageRemoveFamily unions fam's components into e's pending removal set.
func (s *stage) stageRemoveFamily(e Entity, fam FamilyId) {
	s.touch(e)
	s.removeStage[e] = s.world.families.Merge(s.removeStage[e], fam, EmptyFamily)
}

// stageSet ensures component c is present on e after merge (an implicit
// add) and records the pending value, last-writer-wins for this stage.
func (s *stage) stageSet(e Entity, c Component, value reflect.Value) {
	single := s.world.families.Register(c)
	s.stageAddFamily(e, single)

	writes := s.dataStage[e]
	for i, w := range writes {
		if w.component.ID() == c.ID() {
			writes[i].value = value
			return
		}
	}
	s.dataStage[e] = append(writes, pendingWrite{component: c, value: value})
}

func (s *stage) stageDelete(e Entity) {
	s.deleteStage = append(s.deleteStage, e)
}

// resolvedFamily computes an entity's post-merge family, spec.md §4.3's
// commit resolution: (add_stage ∪ current) \ remove_stage.
func (s *stage) resolvedFamily(e Entity) FamilyId {
	base, ok := s.addStage[e]
	if !ok {
		base = s.world.dir.familyOf(e)
	}
	return s.world.families.Merge(base, EmptyFamily, s.removeStage[e])
}

func (s *stage) isEmpty() bool {
	return len(s.touched) == 0 && len(s.deleteStage) == 0
}

func (s *stage) reset() {
	s.addStage = make(map[Entity]FamilyId)
	s.removeStage = make(map[Entity]FamilyId)
	s.dataStage = make(map[Entity][]pendingWrite)
	s.deleteStage = nil
	s.touched = nil
	s.touchedSet = make(map[Entity]struct{})
	for fam, a := range s.scratch {
		s.world.dir.untrack(a)
		delete(s.scratch, fam)
	}
}
