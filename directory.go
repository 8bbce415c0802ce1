package husk

import (
	"fmt"

	"github.com/TheBitDrifter/table"
)

// Entity is an opaque handle referring to a logical thing in the world.
// table.EntryID already supplies exactly the contract spec.md §3 asks for:
// a 64-bit value, never reused within a world's lifetime, with 0 reserved
// to mean "none" (see DESIGN.md "Entity = table.EntryID").
type Entity = table.EntryID

// directory is the world's Entity -> (family, row) lookup (spec.md §3,
// §4.2 invariant 1). It wraps a single table.EntryIndex shared by every
// archetype table in the world; the dependency already relocates the
// directory entry for the row swapped in on delete.
type directory struct {
	entries  table.EntryIndex
	byRawTbl map[table.Table]*Archetype
}

func newDirectory() *directory {
	return &directory{
		entries:  table.Factory.NewEntryIndex(),
		byRawTbl: make(map[table.Table]*Archetype),
	}
}

// track registers an archetype so rows resolved through entries can be
// mapped back to the husk-level Archetype that owns them.
func (d *directory) track(a *Archetype) {
	d.byRawTbl[a.tbl] = a
}

// untrack drops a scratch archetype once every row it ever held has been
// moved into a real archetype and a stage resets. Real, matcher-visible
// archetypes are never untracked.
func (d *directory) untrack(a *Archetype) {
	delete(d.byRawTbl, a.tbl)
}

// locate resolves a live entity to its archetype and row index.
func (d *directory) locate(e Entity) (*Archetype, int, error) {
	if e == 0 {
		return nil, 0, NotAnEntityError{Entity: e}
	}
	entry, err := d.entries.Entry(int(e) - 1)
	if err != nil {
		return nil, 0, NotAnEntityError{Entity: e}
	}
	arch, ok := d.byRawTbl[entry.Table()]
	if !ok {
		return nil, 0, InternalInvariantError{
			Detail: fmt.Sprintf("entity %d resolved to an untracked table", e),
		}
	}
	return arch, entry.Index(), nil
}

// familyOf returns the family an alive entity currently belongs to, or
// EmptyFamily if the entity has no main-store row yet.
func (d *directory) familyOf(e Entity) FamilyId {
	arch, _, err := d.locate(e)
	if err != nil {
		return EmptyFamily
	}
	return arch.id
}

// alive reports whether the directory currently tracks e.
func (d *directory) alive(e Entity) bool {
	_, _, err := d.locate(e)
	return err == nil
}
