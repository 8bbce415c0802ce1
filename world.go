package husk

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

// World owns every family, archetype table, the entity directory, both
// stages, and the registered systems — spec.md §2/§6's World, grounded on
// the teacher's storage.go generalized from "one flat table list" to
// "family-keyed archetypes plus staged merge".
type World struct {
	schema   table.Schema
	families *familyRegistry
	dir      *directory

	archetypes map[FamilyId]*Archetype

	mainStage  *stage
	frameStage *stage
	inProgress bool

	systems map[Phase][]*System

	componentNames Cache[Component]

	ctx any
}

// Init constructs a ready-to-use World, spec.md §6's world_init.
func Init() *World {
	schema := table.Factory.NewSchema()
	w := &World{
		schema:         schema,
		dir:            newDirectory(),
		archetypes:     make(map[FamilyId]*Archetype),
		systems:        make(map[Phase][]*System),
		componentNames: FactoryNewCache[Component](componentNameCacheCapacity),
	}
	w.families = newFamilyRegistry(schema)
	w.mainStage = newStage(w)
	w.frameStage = newStage(w)

	empty, err := newArchetype(schema, w.dir.entries, EmptyFamily, w.families.Mask(EmptyFamily), nil)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	w.archetypes[EmptyFamily] = empty
	w.dir.track(empty)
	return w
}

// componentNameCacheCapacity bounds RegisterComponent's name index. The
// teacher's SimpleCache is fixed-capacity and Init always uses this
// bound: once this many names are registered, RegisterComponent returns
// the cache's capacity error for any further new name.
const componentNameCacheCapacity = 4096

// Fini releases a world's resources. Any panic raised while doing so is
// recovered, traced with bark.AddTrace, and returned as Fini's error
// rather than swallowed, matching spec.md §5's "release on all exit
// paths, including error paths".
func (w *World) Fini() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = bark.AddTrace(toError(r))
		}
	}()
	w.mainStage.reset()
	w.frameStage.reset()
	w.archetypes = nil
	return nil
}

func toError(r any) error {
	if e, ok := r.(error); ok {
		return e
	}
	return InternalInvariantError{Detail: "panic during Fini"}
}

// RegisterComponent interns a component descriptor by name, spec.md §6's
// component_register. Registering the same name for the same component
// twice is a no-op; registering it for a different component is rejected
// rather than letting one silently shadow the other's schema slot.
func (w *World) RegisterComponent(name string, c Component) error {
	if idx, ok := w.componentNames.GetIndex(name); ok {
		if existing := w.componentNames.GetItem(idx); (*existing).ID() != c.ID() {
			return fmt.Errorf("component name %q already registered to a different component", name)
		}
		return nil
	}
	_, err := w.componentNames.Register(name, c)
	return err
}

// RegisterFamily interns a component set, spec.md §4.1's family_register.
func (w *World) RegisterFamily(components ...Component) FamilyId {
	return w.families.Register(components...)
}

// resolveStage returns the stage write operations should target: the
// frame stage while a system is running, the main stage otherwise. The
// choice is made on every call from the World's inProgress flag, which
// Progress sets for the duration of a frame; no per-call context handle
// is involved.
func (w *World) resolveStage() *stage {
	if w.inProgress {
		return w.frameStage
	}
	return w.mainStage
}

// settle merges the main stage synchronously whenever a mutation happens
// outside a running frame (spec.md §4.5's commit semantics for the main
// stage). It is a no-op inside a frame: the frame stage merges only at
// the system boundary (Progress).
func (w *World) settle() error {
	if w.inProgress {
		return nil
	}
	return w.merge(w.mainStage)
}

// tableFor returns the real, matcher-visible archetype for a family,
// creating it on first use.
func (w *World) tableFor(fam FamilyId) (*Archetype, error) {
	if a, ok := w.archetypes[fam]; ok {
		return a, nil
	}
	a, err := newArchetype(w.schema, w.dir.entries, fam, w.families.Mask(fam), w.families.Components(fam))
	if err != nil {
		return nil, err
	}
	w.archetypes[fam] = a
	w.dir.track(a)
	return a, nil
}

// deleteImmediate removes a row using the archetype's swap-with-last
// delete, spec.md §4.5's entity_delete.
func (w *World) deleteImmediate(e Entity) error {
	arch, row, err := w.dir.locate(e)
	if err != nil {
		return nil // already gone: delete is idempotent
	}
	return arch.delete(row)
}

// merge folds a stage into committed world state in the four ordered
// phases of spec.md §4.4, with the family/table phases collapsed into the
// immediate registry operations already performed when the stage's
// methods were called (see stage.go).
func (w *World) merge(s *stage) error {
	if s.isEmpty() {
		return nil
	}

	// Phase 3: deletes, before commits so a delete always wins over a
	// same-frame structural edit to the same entity.
	deleted := make(map[Entity]struct{}, len(s.deleteStage))
	for _, e := range s.deleteStage {
		if _, ok := deleted[e]; ok {
			continue
		}
		deleted[e] = struct{}{}
		if err := w.deleteImmediate(e); err != nil {
			return err
		}
	}

	// Phase 4: commits.
	for _, e := range s.touched {
		if _, ok := deleted[e]; ok {
			continue
		}
		if err := w.commitEntity(s, e); err != nil {
			return err
		}
	}

	s.reset()
	if Config.worldEvents.OnMerge != nil {
		Config.worldEvents.OnMerge(w)
	}
	return nil
}

// commitEntity moves e into its resolved family's real table (if it
// isn't already there) and applies any pending component writes.
func (w *World) commitEntity(s *stage, e Entity) error {
	resolved := s.resolvedFamily(e)
	dst, err := w.tableFor(resolved)
	if err != nil {
		return err
	}

	arch, row, err := w.dir.locate(e)
	switch {
	case err != nil:
		return InternalInvariantError{Detail: "touched entity missing from directory at commit"}
	case arch.scratch, arch.id != resolved:
		if err := arch.moveRow(row, dst); err != nil {
			return err
		}
	}

	return w.applyDataStage(s, e, resolved)
}

func (w *World) applyDataStage(s *stage, e Entity, resolved FamilyId) error {
	writes := s.dataStage[e]
	if len(writes) == 0 {
		return nil
	}
	arch, row, err := w.dir.locate(e)
	if err != nil {
		return InternalInvariantError{Detail: "entity missing from directory after commit move"}
	}
	for _, pw := range writes {
		if !w.families.Contains(resolved, pw.component) {
			continue // discarded per spec.md §4.3: stale write for a dropped component
		}
		if err := writeComponentValue(arch.tbl, row, pw.component, pw.value); err != nil {
			return ComponentNotInFamilyError{Entity: e, Component: pw.component}
		}
	}
	return nil
}

// writeComponentValue writes a reflected value into an entity's column
// slot, matching the teacher's AddComponentWithValue reflection pattern:
// find the column whose element type matches, then index and set.
func writeComponentValue(tbl table.Table, row int, c Component, value reflect.Value) error {
	for _, col := range tbl.Rows() {
		rv := reflect.Value(col)
		if rv.Type().Elem() == value.Type() {
			rv.Index(row).Set(value)
			return nil
		}
	}
	return ComponentNotInFamilyError{Component: c}
}

// New allocates a fresh entity handle and, if familyHint is non-empty,
// stages it into that family — spec.md §4.5's entity_new.
func (w *World) New(familyHint FamilyId) (Entity, error) {
	e, err := w.resolveStage().mint()
	if err != nil {
		return 0, err
	}
	if familyHint != EmptyFamily {
		w.resolveStage().stageAddFamily(e, familyHint)
	}
	if err := w.settle(); err != nil {
		return 0, err
	}
	return e, nil
}

// Delete stages (or, outside a frame, immediately performs) an entity's
// removal — spec.md §4.5's entity_delete. Deleting an already-dead
// handle is a no-op, so a repeated Delete does not fail.
func (w *World) Delete(e Entity) error {
	if !w.dir.alive(e) {
		return nil
	}
	w.resolveStage().stageDelete(e)
	return w.settle()
}

// Add stages c onto e — spec.md §6's entity_add.
func (w *World) Add(e Entity, c Component) error {
	if !w.dir.alive(e) {
		return NotAnEntityError{Entity: e}
	}
	single := w.families.Register(c)
	w.resolveStage().stageAddFamily(e, single)
	return w.settle()
}

// Remove stages c off e — spec.md §6's entity_remove.
func (w *World) Remove(e Entity, c Component) error {
	if !w.dir.alive(e) {
		return NotAnEntityError{Entity: e}
	}
	single := w.families.Register(c)
	w.resolveStage().stageRemoveFamily(e, single)
	return w.settle()
}

// Has reports whether e currently carries c, reading the committed main
// store only (spec.md §5: "reads bypass the stage").
func (w *World) Has(e Entity, c Component) bool {
	arch, _, err := w.dir.locate(e)
	if err != nil {
		return false
	}
	return w.families.Contains(arch.id, c)
}

// Clone allocates a fresh handle for source's family, optionally copying
// every component's current value — spec.md §4.5's entity_clone / S2-S3.
func (w *World) Clone(source Entity, copyValues bool) (Entity, error) {
	srcArch, srcRow, err := w.dir.locate(source)
	if err != nil {
		return 0, err
	}
	s := w.resolveStage()

	clone, err := s.mint()
	if err != nil {
		return 0, err
	}
	s.stageAddFamily(clone, srcArch.id)

	if copyValues {
		for _, c := range w.families.Components(srcArch.id) {
			v, err := readComponentValue(srcArch.tbl, srcRow, c)
			if err != nil {
				return 0, err
			}
			s.stageSet(clone, c, v)
		}
	}

	if err := w.settle(); err != nil {
		return 0, err
	}
	return clone, nil
}

// readComponentValue copies an entity's current column value out by
// element type, the read-side mirror of writeComponentValue.
func readComponentValue(tbl table.Table, row int, c Component) (reflect.Value, error) {
	elemType := c.Type()
	for _, col := range tbl.Rows() {
		rv := reflect.Value(col)
		if rv.Type().Elem() == elemType {
			v := reflect.New(elemType).Elem()
			v.Set(rv.Index(row))
			return v, nil
		}
	}
	return reflect.Value{}, ComponentNotInFamilyError{Component: c}
}

// SetContext stores the user pointer spec.md §6's world_set_context.
func (w *World) SetContext(ctx any) { w.ctx = ctx }

// Context returns the user pointer spec.md §6's world_get_context.
func (w *World) Context() any { return w.ctx }

// Set writes a typed component value onto e, staging it through the
// entity's stage — the generic free-function form of spec.md §6's
// entity_set (Go disallows a type parameter on a *World method).
func Set[T any](w *World, e Entity, c AccessibleComponent[T], value T) error {
	if !w.dir.alive(e) {
		return NotAnEntityError{Entity: e}
	}
	w.resolveStage().stageSet(e, c.Component, reflect.ValueOf(value))
	return w.settle()
}

// Get reads a typed component value off an alive entity, erroring if its
// family does not carry the component — spec.md §6's entity_get.
func Get[T any](w *World, e Entity, c AccessibleComponent[T]) (*T, error) {
	return c.GetFromEntity(w, e)
}
