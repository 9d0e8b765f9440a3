package scene

import (
	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/mesh"
)

// ActorKind says what an arena actor represents.
type ActorKind int

const (
	// ActorBase is the model's surface.
	ActorBase ActorKind = iota
	// ActorEdges is the feature-edge overlay.
	ActorEdges
	// ActorClip is the section tool's clipped-surface overlay.
	ActorClip
	// ActorMeasure is the measurement tool's probe overlay.
	ActorMeasure
	// ActorPick is the point-picking marker.
	ActorPick
)

func (k ActorKind) String() string {
	switch k {
	case ActorBase:
		return "base"
	case ActorEdges:
		return "edges"
	case ActorClip:
		return "clip"
	case ActorMeasure:
		return "measure"
	case ActorPick:
		return "pick"
	}
	return "unknown"
}

// Actor is one renderable entity: mesh data plus the display properties
// the mode table and tools mutate. Edge actors carry both the mesh (for
// vertex positions) and the edge set (for segment indices); measurement
// and pick overlays carry marker positions instead of a mesh.
type Actor struct {
	Kind    ActorKind
	Mesh    *mesh.TriangleMesh
	Edges   *mesh.EdgeSet
	Markers []geom.Vec3
	Props   ActorProps
}

// Handle refers to an arena slot. Handles survive the pointed-to actor
// being removed: a stale handle simply stops resolving. The zero Handle
// never resolves.
type Handle struct {
	index int
	gen   uint32
}

// IsNil reports whether the handle is the zero value.
func (h Handle) IsNil() bool { return h.gen == 0 }

type slot struct {
	gen   uint32
	live  bool
	actor Actor
}

// Arena owns every live actor and hands out index-based handles instead
// of pointers, so teardown-then-rebuild is "invalidate handle, allocate
// new" with no dangling references. Slots are reused; each reuse bumps
// the generation so handles into the old occupant go stale.
type Arena struct {
	slots []slot
	free  []int
	live  int
}

func NewArena() *Arena {
	return &Arena{}
}

// Add stores the actor and returns its handle.
func (a *Arena) Add(actor Actor) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.live = true
		s.actor = actor
		a.live++
		return Handle{index: idx, gen: s.gen}
	}
	a.slots = append(a.slots, slot{gen: 1, live: true, actor: actor})
	a.live++
	return Handle{index: len(a.slots) - 1, gen: 1}
}

// Get resolves a handle to its actor. Stale or zero handles report false.
func (a *Arena) Get(h Handle) (*Actor, bool) {
	if h.index < 0 || h.index >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil, false
	}
	return &s.actor, true
}

// Remove frees the actor's slot. Removing through a stale handle is a
// no-op reporting false.
func (a *Arena) Remove(h Handle) bool {
	if _, ok := a.Get(h); !ok {
		return false
	}
	s := &a.slots[h.index]
	s.live = false
	s.gen++
	s.actor = Actor{}
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// Len returns the number of live actors.
func (a *Arena) Len() int { return a.live }

// Each visits live actors in slot order.
func (a *Arena) Each(fn func(Handle, *Actor)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.live {
			fn(Handle{index: i, gen: s.gen}, &s.actor)
		}
	}
}
