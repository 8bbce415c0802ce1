package husk

import "github.com/TheBitDrifter/mask"

// Phase names a point in the frame at which a group of systems runs,
// spec.md §4.6/§8's Phase. Phases execute in this declared order.
type Phase int

const (
	PhasePreFrame Phase = iota
	PhaseOnFrame
	PhasePostFrame
)

var orderedPhases = [...]Phase{PhasePreFrame, PhaseOnFrame, PhasePostFrame}

// SystemCallback is a user system: invoked once per matching archetype
// table with an Iteration over that table's rows, spec.md §6's callback
// shape ("a reference to the world for staged writes").
type SystemCallback func(w *World, it *Iteration)

// System binds a callback to a phase and a required component family —
// spec.md §4.6's matcher unit, grounded on the teacher's Cursor/Query
// mask-containment check generalized from ad hoc queries to registered,
// per-frame dispatch.
type System struct {
	id       Entity
	callback SystemCallback
	phase    Phase
	family   FamilyId
	mask     mask.Mask
}

// ID returns the handle spec.md §6's system_register returns — systems
// are entities like everything else interned by the world.
func (s *System) ID() Entity { return s.id }

// RegisterSystem binds callback to phase, matching every archetype whose
// family is a superset of the given family — spec.md §6's system_register.
func (w *World) RegisterSystem(phase Phase, family FamilyId, callback SystemCallback) (Entity, error) {
	id, err := w.New(EmptyFamily)
	if err != nil {
		return 0, err
	}
	w.systems[phase] = append(w.systems[phase], &System{
		id:       id,
		callback: callback,
		phase:    phase,
		family:   family,
		mask:     w.families.Mask(family),
	})
	return id, nil
}

// matching returns the real, matcher-visible archetypes whose family is a
// superset of sys's declared family — spec.md §4.6: "S.family ⊆ T.family".
// Archetypes are rescanned on every call rather than cached per-system,
// matching the teacher's Cursor.Initialize pattern of resolving matches
// fresh against whatever tables currently exist.
func (w *World) matching(sys *System) []*Archetype {
	var out []*Archetype
	for _, arch := range w.archetypes {
		if arch.mask.ContainsAll(sys.mask) {
			out = append(out, arch)
		}
	}
	return out
}

// Progress runs one frame: every phase, in declared order, every system
// in that phase in registration order, merging the frame stage after each
// system completes — spec.md §4.6/§6's world_progress, and the
// Concurrency Model's "all staged edits from system S are applied before
// system S+1 starts".
func (w *World) Progress(dt float64) error {
	if w.inProgress {
		if Config.worldEvents.OnReentrantProgress != nil {
			Config.worldEvents.OnReentrantProgress(w)
		}
		return ReentrantProgressError{}
	}
	w.inProgress = true
	defer func() { w.inProgress = false }()

	for _, phase := range orderedPhases {
		for _, sys := range w.systems[phase] {
			for _, arch := range w.matching(sys) {
				n := arch.Len()
				if n == 0 {
					continue
				}
				it := &Iteration{world: w, archetype: arch, dt: dt, first: 0, last: n}
				sys.callback(w, it)
			}
			if err := w.merge(w.frameStage); err != nil {
				return err
			}
		}
	}
	return nil
}
