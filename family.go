package husk

import (
	"sort"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// FamilyId identifies a component set. Two families intern to the same
// FamilyId iff their component sets are equal; the empty set always
// interns to EmptyFamily. FamilyId is a newtype over the interned mask's
// slot, not a hash of the set, so no collision handling is required (see
// DESIGN.md).
type FamilyId uint64

// EmptyFamily is the reserved id for the family with no components.
const EmptyFamily FamilyId = 0

// family is one interned component set: its structural identity (mask),
// and its canonical, registration-order column ordering.
type family struct {
	id         FamilyId
	mask       mask.Mask
	components []Component
}

// familyRegistry interns component sets into stable FamilyIds. It is the
// Family registry of spec.md §4.1, generalized out of the teacher's
// storage.archetypes (mask -> archetypeID map).
type familyRegistry struct {
	schema table.Schema
	nextID FamilyId
	byMask map[mask.Mask]FamilyId
	byID   map[FamilyId]*family
}

func newFamilyRegistry(schema table.Schema) *familyRegistry {
	r := &familyRegistry{
		schema: schema,
		nextID: 1,
		byMask: make(map[mask.Mask]FamilyId),
		byID:   make(map[FamilyId]*family),
	}
	r.byID[EmptyFamily] = &family{id: EmptyFamily}
	r.byMask[mask.Mask{}] = EmptyFamily
	return r
}

// Register interns a component set, returning its stable FamilyId.
// Repeated calls with an equal set return the same id.
func (r *familyRegistry) Register(components ...Component) FamilyId {
	if len(components) == 0 {
		return EmptyFamily
	}
	m := r.maskOf(components)
	if id, ok := r.byMask[m]; ok {
		return id
	}
	return r.intern(m, components)
}

// Merge computes (base ∪ added) \ removed and interns the result.
func (r *familyRegistry) Merge(base, added, removed FamilyId) FamilyId {
	present := make(map[uint32]Component)
	r.accumulate(present, base, true)
	r.accumulate(present, added, true)
	r.accumulate(present, removed, false)

	if len(present) == 0 {
		return EmptyFamily
	}
	components := make([]Component, 0, len(present))
	var m mask.Mask
	for bit, c := range present {
		m.Mark(bit)
		components = append(components, c)
	}
	if id, ok := r.byMask[m]; ok {
		return id
	}
	return r.intern(m, components)
}

// Components returns the canonical, ascending-by-registration-order
// column sequence for a family.
func (r *familyRegistry) Components(id FamilyId) []Component {
	f := r.byID[id]
	if f == nil {
		return nil
	}
	return f.components
}

// Contains reports whether a family's set includes a given component.
func (r *familyRegistry) Contains(id FamilyId, c Component) bool {
	f := r.byID[id]
	if f == nil {
		return false
	}
	return f.mask.ContainsAll(r.singleton(c))
}

// Mask returns a family's structural bitset, used by the system matcher.
func (r *familyRegistry) Mask(id FamilyId) mask.Mask {
	f := r.byID[id]
	if f == nil {
		return mask.Mask{}
	}
	return f.mask
}

func (r *familyRegistry) accumulate(into map[uint32]Component, id FamilyId, add bool) {
	f := r.byID[id]
	if f == nil {
		return
	}
	for _, c := range f.components {
		bit := r.schema.RowIndexFor(c)
		if add {
			into[bit] = c
		} else {
			delete(into, bit)
		}
	}
}

func (r *familyRegistry) singleton(c Component) mask.Mask {
	r.schema.Register(c)
	var m mask.Mask
	m.Mark(r.schema.RowIndexFor(c))
	return m
}

func (r *familyRegistry) maskOf(components []Component) mask.Mask {
	var m mask.Mask
	for _, c := range components {
		r.schema.Register(c)
		m.Mark(r.schema.RowIndexFor(c))
	}
	return m
}

func (r *familyRegistry) intern(m mask.Mask, components []Component) FamilyId {
	ordered := make([]Component, len(components))
	copy(ordered, components)
	sort.Slice(ordered, func(i, j int) bool {
		return r.schema.RowIndexFor(ordered[i]) < r.schema.RowIndexFor(ordered[j])
	})
	id := r.nextID
	r.nextID++
	r.byMask[m] = id
	r.byID[id] = &family{id: id, mask: m, components: ordered}
	return id
}
