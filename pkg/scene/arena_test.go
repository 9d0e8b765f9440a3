package scene

import "testing"

func TestArenaAddGet(t *testing.T) {
	a := NewArena()
	h := a.Add(Actor{Kind: ActorBase})

	actor, ok := a.Get(h)
	if !ok {
		t.Fatal("handle does not resolve")
	}
	if actor.Kind != ActorBase {
		t.Errorf("kind = %v, want ActorBase", actor.Kind)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
}

func TestArenaZeroHandleNeverResolves(t *testing.T) {
	a := NewArena()
	a.Add(Actor{Kind: ActorBase})

	var zero Handle
	if !zero.IsNil() {
		t.Error("zero handle should be nil")
	}
	if _, ok := a.Get(zero); ok {
		t.Error("zero handle resolved")
	}
	if a.Remove(zero) {
		t.Error("removing through zero handle succeeded")
	}
}

func TestArenaRemoveInvalidatesHandle(t *testing.T) {
	a := NewArena()
	h := a.Add(Actor{Kind: ActorClip})

	if !a.Remove(h) {
		t.Fatal("remove failed")
	}
	if _, ok := a.Get(h); ok {
		t.Error("stale handle still resolves")
	}
	if a.Remove(h) {
		t.Error("double remove succeeded")
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d, want 0", a.Len())
	}
}

func TestArenaSlotReuseBumpsGeneration(t *testing.T) {
	a := NewArena()
	old := a.Add(Actor{Kind: ActorBase})
	a.Remove(old)

	// The freed slot is reused; the old handle must not see the new
	// occupant.
	fresh := a.Add(Actor{Kind: ActorPick})
	if fresh.index != old.index {
		t.Fatalf("slot not reused: fresh index %d, old index %d", fresh.index, old.index)
	}
	if _, ok := a.Get(old); ok {
		t.Error("stale handle resolves to the new occupant")
	}
	actor, ok := a.Get(fresh)
	if !ok || actor.Kind != ActorPick {
		t.Error("fresh handle does not resolve to the new occupant")
	}
}

func TestArenaEachVisitsInSlotOrder(t *testing.T) {
	a := NewArena()
	a.Add(Actor{Kind: ActorBase})
	a.Add(Actor{Kind: ActorEdges})
	mid := a.Add(Actor{Kind: ActorClip})
	a.Add(Actor{Kind: ActorPick})
	a.Remove(mid)

	var kinds []ActorKind
	a.Each(func(_ Handle, actor *Actor) {
		kinds = append(kinds, actor.Kind)
	})

	want := []ActorKind{ActorBase, ActorEdges, ActorPick}
	if len(kinds) != len(want) {
		t.Fatalf("visited %d actors, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}
