package husk

import "testing"

// TestS1AddComponentMovesFamily is scenario S1: registering Foo and Bar,
// creating an entity with Foo, then adding Bar moves it to {Foo, Bar}.
func TestS1AddComponentMovesFamily(t *testing.T) {
	w := Init()
	defer w.Fini()

	foo := FactoryNewComponent[Position]()
	bar := FactoryNewComponent[Velocity]()

	fooOnly := w.RegisterFamily(foo.Component)
	e, err := w.New(fooOnly)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !w.Has(e, foo.Component) {
		t.Fatal("expected entity to have Foo")
	}
	if w.Has(e, bar.Component) {
		t.Fatal("expected entity not to have Bar yet")
	}

	if err := w.Add(e, bar.Component); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !w.Has(e, foo.Component) || !w.Has(e, bar.Component) {
		t.Fatal("expected entity to have both Foo and Bar after Add")
	}

	arch, _, err := w.dir.locate(e)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	want := w.RegisterFamily(foo.Component, bar.Component)
	if arch.id != want {
		t.Errorf("entity's family = %d, want %d", arch.id, want)
	}
}

// TestS2CloneWithoutValues is scenario S2: cloning without copying values
// leaves the clone's component default-initialised but present.
func TestS2CloneWithoutValues(t *testing.T) {
	w := Init()
	defer w.Fini()

	foo := FactoryNewComponent[Position]()
	fam := w.RegisterFamily(foo.Component)

	e, _ := w.New(fam)
	if err := Set(w, e, foo, Position{X: 10}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	clone, err := w.Clone(e, false)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	if !w.Has(clone, foo.Component) {
		t.Fatal("expected clone to carry Foo")
	}
	pos, err := Get(w, clone, foo)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if pos.X != 0 {
		t.Errorf("clone's Foo.X = %v, want zero value", pos.X)
	}
}

// TestS3CloneWithValues is scenario S3: cloning with copy_values=true
// carries every component's current value over byte-for-byte.
func TestS3CloneWithValues(t *testing.T) {
	w := Init()
	defer w.Fini()

	foo := FactoryNewComponent[Position]()
	bar := FactoryNewComponent[Velocity]()
	fam := w.RegisterFamily(foo.Component, bar.Component)

	e, _ := w.New(fam)
	if err := Set(w, e, foo, Position{X: 10}); err != nil {
		t.Fatalf("Set foo: %v", err)
	}
	if err := Set(w, e, bar, Velocity{X: 20}); err != nil {
		t.Fatalf("Set bar: %v", err)
	}

	clone, err := w.Clone(e, true)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	pos, err := Get(w, clone, foo)
	if err != nil || pos.X != 10 {
		t.Errorf("clone Foo.X = %v (err %v), want 10", pos, err)
	}
	vel, err := Get(w, clone, bar)
	if err != nil || vel.X != 20 {
		t.Errorf("clone Bar.X = %v (err %v), want 20", vel, err)
	}
}

// TestS6CloneEmptyFamily is scenario S6: an entity with the empty family
// can be cloned; both entities exist and the directory records both.
func TestS6CloneEmptyFamily(t *testing.T) {
	w := Init()
	defer w.Fini()

	e, err := w.New(EmptyFamily)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clone, err := w.Clone(e, true)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	if !w.dir.alive(e) || !w.dir.alive(clone) {
		t.Fatal("expected both source and clone to be alive")
	}
	if w.dir.familyOf(e) != EmptyFamily || w.dir.familyOf(clone) != EmptyFamily {
		t.Error("expected both entities to remain in the empty family")
	}
}

// TestInvariant6AddRemoveIdempotence: add(e,c); add(e,c) leaves exactly
// one occurrence of c; remove(e,c); remove(e,c) leaves e without c and
// does not fail the second time.
func TestInvariant6AddRemoveIdempotence(t *testing.T) {
	w := Init()
	defer w.Fini()

	foo := FactoryNewComponent[Position]()
	e, err := w.New(EmptyFamily)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := w.Add(e, foo.Component); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := w.Add(e, foo.Component); err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if !w.Has(e, foo.Component) {
		t.Fatal("expected entity to have Foo")
	}
	arch, _, _ := w.dir.locate(e)
	if len(w.families.Components(arch.id)) != 1 {
		t.Errorf("expected exactly one component, got %d", len(w.families.Components(arch.id)))
	}

	if err := w.Remove(e, foo.Component); err != nil {
		t.Fatalf("first Remove: %v", err)
	}
	if err := w.Remove(e, foo.Component); err != nil {
		t.Fatalf("second Remove should not fail: %v", err)
	}
	if w.Has(e, foo.Component) {
		t.Fatal("expected entity not to have Foo after Remove")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	w := Init()
	defer w.Fini()

	e, _ := w.New(EmptyFamily)
	if err := w.Delete(e); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if w.dir.alive(e) {
		t.Fatal("expected entity to be dead after Delete")
	}
	if err := w.Delete(e); err != nil {
		t.Fatalf("second Delete should not fail: %v", err)
	}
}

func TestDeleteThenGetReturnsNotAnEntity(t *testing.T) {
	w := Init()
	defer w.Fini()

	foo := FactoryNewComponent[Position]()
	fam := w.RegisterFamily(foo.Component)
	e, _ := w.New(fam)

	if err := w.Delete(e); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Get(w, e, foo); err == nil {
		t.Fatal("expected Get on a deleted entity to fail")
	}
}
