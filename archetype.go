package husk

import (
	"fmt"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// Archetype is the columnar store for every entity whose component set
// equals one family — spec.md §3/§4.2's Table. It wraps the
// dependency-provided table.Table, which already supplies
// table_insert/table_delete/table_move_row semantics (see SPEC_FULL.md §3).
type Archetype struct {
	id   FamilyId
	mask mask.Mask
	tbl  table.Table

	// scratch marks a table minted by a stage purely to give a
	// brand-new or cloned entity a real row before its final family is
	// known (see stage.go). Scratch tables are never added to a World's
	// matcher-visible archetype list; a row living in one is always
	// moved into the canonical archetype for its resolved family at
	// merge, even if that family happens to equal the scratch table's.
	scratch bool
}

// ID returns the archetype's family id.
func (a *Archetype) ID() FamilyId { return a.id }

// Table exposes the raw columnar store for callers (system dispatch,
// ad hoc queries) that need to read component data directly.
func (a *Archetype) Table() table.Table { return a.tbl }

// Len reports the number of rows currently stored.
func (a *Archetype) Len() int { return a.tbl.Length() }

func newArchetype(schema table.Schema, entryIndex table.EntryIndex, id FamilyId, m mask.Mask, components []Component) (*Archetype, error) {
	elementTypes := make([]table.ElementType, len(components))
	for i, c := range components {
		elementTypes[i] = c
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build table for family %d: %w", id, err)
	}
	return &Archetype{id: id, mask: m, tbl: tbl}, nil
}

// insert grows every column by one row, returning the new row's entity.
func (a *Archetype) insert() (Entity, error) {
	entries, err := a.tbl.NewEntries(1)
	if err != nil {
		return 0, OutOfMemoryError{Cause: err}
	}
	return Entity(entries[0].ID()), nil
}

// delete removes a row via swap-with-last. The dependency's shared
// EntryIndex updates the directory entry for whichever entity was
// relocated into the vacated slot, preserving invariant 1 of spec.md §4.2.
func (a *Archetype) delete(row int) error {
	_, err := a.tbl.DeleteEntries(row)
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", row, err)
	}
	return nil
}

// moveRow copies the entity and every component shared between this
// archetype and dst into a newly inserted row in dst, leaves
// dst-only components default-initialised, drops src-only components,
// and then deletes the source row — table_move_row from spec.md §4.2.
func (a *Archetype) moveRow(row int, dst *Archetype) error {
	if err := a.tbl.TransferEntries(dst.tbl, row); err != nil {
		return fmt.Errorf("failed to transfer row %d to family %d: %w", row, dst.id, err)
	}
	return nil
}
