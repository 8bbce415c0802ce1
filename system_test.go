package husk

import "testing"

// TestS4CloneInsideSystemVisibleAfterProgress is scenario S4: a system
// matching Foo clones each matched row with values and doubles the
// clone's Foo. After Progress returns, the clone exists with Foo doubled.
func TestS4CloneInsideSystemVisibleAfterProgress(t *testing.T) {
	w := Init()
	defer w.Fini()

	foo := FactoryNewComponent[Position]()
	fam := w.RegisterFamily(foo.Component)

	e, err := w.New(fam)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := Set(w, e, foo, Position{X: 5}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var clones []Entity
	w.RegisterSystem(PhaseOnFrame, fam, func(w *World, it *Iteration) {
		for row := it.First(); row < it.Last(); row = it.Next(row) {
			srcEntity, err := it.Entity(row)
			if err != nil {
				t.Fatalf("Entity: %v", err)
			}
			clone, err := w.Clone(srcEntity, true)
			if err != nil {
				t.Fatalf("Clone: %v", err)
			}
			clones = append(clones, clone)

			src := foo.GetFromIteration(it, row)
			if err := Set(w, clone, foo, Position{X: 2 * src.X}); err != nil {
				t.Fatalf("Set on clone: %v", err)
			}
		}
	})

	if err := w.Progress(0); err != nil {
		t.Fatalf("Progress: %v", err)
	}

	if len(clones) != 1 {
		t.Fatalf("expected exactly one clone, got %d", len(clones))
	}
	pos, err := Get(w, clones[0], foo)
	if err != nil {
		t.Fatalf("Get on clone after Progress: %v", err)
	}
	if pos.X != 10 {
		t.Errorf("clone's Foo.X = %v, want 10", pos.X)
	}
}

// TestS5SecondSystemSeesFirstSystemsStructuralEdits is scenario S5: two
// systems in the same phase, the first adds Bar to every Foo-bearing
// entity, the second matches {Foo, Bar}. System 2 must iterate exactly
// the entities system 1 touched — neither more (it ran before they had
// Bar) nor fewer (merge happens between the two).
func TestS5SecondSystemSeesFirstSystemsStructuralEdits(t *testing.T) {
	w := Init()
	defer w.Fini()

	foo := FactoryNewComponent[Position]()
	bar := FactoryNewComponent[Velocity]()
	fooOnly := w.RegisterFamily(foo.Component)
	fooBar := w.RegisterFamily(foo.Component, bar.Component)

	const n = 6
	want := make(map[Entity]bool, n)
	for i := 0; i < n; i++ {
		e, err := w.New(fooOnly)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		want[e] = true
	}

	var touchedByFirst []Entity
	w.RegisterSystem(PhaseOnFrame, fooOnly, func(w *World, it *Iteration) {
		for row := it.First(); row < it.Last(); row = it.Next(row) {
			e, _ := it.Entity(row)
			touchedByFirst = append(touchedByFirst, e)
			if err := w.Add(e, bar.Component); err != nil {
				t.Fatalf("Add: %v", err)
			}
		}
	})

	var seenBySecond []Entity
	w.RegisterSystem(PhaseOnFrame, fooBar, func(w *World, it *Iteration) {
		for row := it.First(); row < it.Last(); row = it.Next(row) {
			e, _ := it.Entity(row)
			seenBySecond = append(seenBySecond, e)
		}
	})

	if err := w.Progress(0); err != nil {
		t.Fatalf("Progress: %v", err)
	}

	if len(touchedByFirst) != n {
		t.Fatalf("first system touched %d entities, want %d", len(touchedByFirst), n)
	}
	if len(seenBySecond) != len(touchedByFirst) {
		t.Fatalf("second system saw %d entities, want %d", len(seenBySecond), len(touchedByFirst))
	}
	for _, e := range seenBySecond {
		if !want[e] {
			t.Errorf("second system saw unexpected entity %d", e)
		}
	}
}

// TestStagingAtomicityWithinOneSystem is invariant 5: structural edits
// issued by a system are not observable to that same system's own
// iteration, only to the next system.
func TestStagingAtomicityWithinOneSystem(t *testing.T) {
	w := Init()
	defer w.Fini()

	foo := FactoryNewComponent[Position]()
	fam := w.RegisterFamily(foo.Component)

	e, err := w.New(fam)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var sawDeleted bool
	w.RegisterSystem(PhaseOnFrame, fam, func(w *World, it *Iteration) {
		for row := it.First(); row < it.Last(); row = it.Next(row) {
			cur, _ := it.Entity(row)
			if cur == e {
				if err := w.Delete(e); err != nil {
					t.Fatalf("Delete: %v", err)
				}
			}
		}
		// The deleted entity must still report alive to a read issued
		// within the same system invocation: the delete is staged, not
		// yet merged.
		if w.dir.alive(e) {
			sawDeleted = false
		} else {
			sawDeleted = true
		}
	})

	if err := w.Progress(0); err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if sawDeleted {
		t.Error("expected the delete to remain invisible within the same system invocation")
	}
	if w.dir.alive(e) {
		t.Error("expected the delete to be visible after Progress returns")
	}
}

func TestReentrantProgressRejected(t *testing.T) {
	w := Init()
	defer w.Fini()

	foo := FactoryNewComponent[Position]()
	fam := w.RegisterFamily(foo.Component)
	if _, err := w.New(fam); err != nil {
		t.Fatalf("New: %v", err)
	}

	var inner error
	w.RegisterSystem(PhaseOnFrame, fam, func(w *World, it *Iteration) {
		inner = w.Progress(0)
	})

	if err := w.Progress(0); err != nil {
		t.Fatalf("outer Progress: %v", err)
	}
	if _, ok := inner.(ReentrantProgressError); !ok {
		t.Errorf("expected ReentrantProgressError from recursive call, got %v", inner)
	}
}
