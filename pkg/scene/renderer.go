package scene

import "sync"

// ActorView is the flat render payload for one actor: position/normal/index
// buffers in upload layout plus the resolved display properties. Line
// overlays (edges, the measure segment) use Lines as index pairs into
// Vertices.
type ActorView struct {
	Kind     ActorKind
	Vertices []float32
	Normals  []float32
	Indices  []uint32
	Lines    []uint32
	Props    ActorProps
}

// view flattens the actor into its render payload.
func (a *Actor) view() ActorView {
	v := ActorView{Kind: a.Kind, Props: a.Props}
	switch {
	case a.Kind == ActorEdges && a.Mesh != nil && a.Edges != nil:
		v.Vertices = a.Mesh.FlatVertices()
		v.Lines = make([]uint32, 0, len(a.Edges.Segments)*2)
		for _, seg := range a.Edges.Segments {
			v.Lines = append(v.Lines, uint32(seg[0]), uint32(seg[1]))
		}
	case len(a.Markers) > 0:
		v.Vertices = make([]float32, 0, len(a.Markers)*3)
		for _, p := range a.Markers {
			v.Vertices = append(v.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		}
		if a.Kind == ActorMeasure && len(a.Markers) == 2 {
			v.Lines = []uint32{0, 1}
		}
	case a.Mesh != nil:
		v.Vertices = a.Mesh.FlatVertices()
		v.Normals = a.Mesh.FlatNormals()
		v.Indices = a.Mesh.FlatIndices()
	}
	return v
}

// Snapshot flattens every live actor, in stable arena order, into the
// frame a renderer draws.
func (s *Scene) Snapshot() []ActorView {
	out := make([]ActorView, 0, s.arena.Len())
	s.arena.Each(func(_ Handle, a *Actor) {
		out = append(out, a.view())
	})
	return out
}

// Renderer consumes scene snapshots. The real GPU renderer lives outside
// this module; tests and the CLI use the implementations below.
type Renderer interface {
	Render(frame []ActorView)
}

// NopRenderer discards every frame.
type NopRenderer struct{}

func (NopRenderer) Render([]ActorView) {}

// Recorder keeps every frame it is asked to draw, for tests and dry runs.
type Recorder struct {
	mu     sync.Mutex
	frames [][]ActorView
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Render(frame []ActorView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

// FrameCount returns how many frames have been rendered.
func (r *Recorder) FrameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Last returns the most recent frame.
func (r *Recorder) Last() ([]ActorView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return nil, false
	}
	return r.frames[len(r.frames)-1], true
}

// Reset drops all recorded frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

var _ Renderer = NopRenderer{}
var _ Renderer = (*Recorder)(nil)
