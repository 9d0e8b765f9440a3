// Package scene holds the presentation state of a loaded model: an actor
// arena, the display-mode state machine, materials, and the interactive
// tools (section, measurement, point picking). It never mutates mesh
// geometry, only actor properties; mesh replacement happens in the owning
// session.
package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/mesh"
)

// Scene is the display-mode state machine over the actor arena. Applying
// a mode is total and idempotent: every actor property in the mode table
// is rewritten on each apply, so no artifact of the previous mode (such as
// Transparent's forced opacity) survives a switch.
type Scene struct {
	logger *zap.Logger
	arena  *Arena

	base  Handle
	edges Handle

	mode          DisplayMode
	material      Material
	interpolation Interpolation
	edgeOverlay   bool
	activeField   string

	// baseSuppressed is set while the section tool owns base-mesh
	// visibility; it wins over the mode table until cleared.
	baseSuppressed bool
}

// New returns an empty scene in Shaded mode with the default material.
func New(logger *zap.Logger) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scene{
		logger:   logger,
		arena:    NewArena(),
		mode:     Shaded,
		material: DefaultMaterial(),
	}
}

// SetModel replaces the base and edge actors with a freshly imported or
// re-derived mesh and its edge set, then reapplies the current mode. The
// previous actors are invalidated, not patched. Tool overlays are the
// tools' own responsibility; deactivate them before replacing the model.
func (s *Scene) SetModel(m *mesh.TriangleMesh, edges *mesh.EdgeSet) {
	s.dropModelActors()
	s.base = s.arena.Add(Actor{Kind: ActorBase, Mesh: m})
	s.edges = s.arena.Add(Actor{Kind: ActorEdges, Mesh: m, Edges: edges})
	s.apply()
	s.logger.Debug("scene model set",
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("edges", edges.Count()),
		zap.Stringer("mode", s.mode))
}

// Clear drops the model actors and the active-field record. The selected
// display mode and material persist for the next model.
func (s *Scene) Clear() {
	s.dropModelActors()
	s.activeField = ""
	s.baseSuppressed = false
}

func (s *Scene) dropModelActors() {
	s.arena.Remove(s.base)
	s.arena.Remove(s.edges)
	s.base = Handle{}
	s.edges = Handle{}
}

// HasModel reports whether a mesh is loaded.
func (s *Scene) HasModel() bool {
	_, ok := s.arena.Get(s.base)
	return ok
}

// Mesh returns the loaded mesh, or nil.
func (s *Scene) Mesh() *mesh.TriangleMesh {
	if a, ok := s.arena.Get(s.base); ok {
		return a.Mesh
	}
	return nil
}

// EdgeSet returns the loaded mesh's edge overlay, or nil.
func (s *Scene) EdgeSet() *mesh.EdgeSet {
	if a, ok := s.arena.Get(s.edges); ok {
		return a.Edges
	}
	return nil
}

// SetMode switches the display mode and reapplies the table.
func (s *Scene) SetMode(mode DisplayMode) {
	s.mode = mode
	s.apply()
}

// Mode returns the current display mode.
func (s *Scene) Mode() DisplayMode { return s.mode }

// SetMaterial replaces the shared material, clamping scalar components to
// [0,1], and reapplies the current mode.
func (s *Scene) SetMaterial(m Material) {
	s.material = m.clamped()
	s.apply()
}

// Material returns the current material.
func (s *Scene) Material() Material { return s.material }

// SetInterpolation switches flat/phong shading on the base actor.
func (s *Scene) SetInterpolation(i Interpolation) {
	s.interpolation = i
	s.apply()
}

// Interpolation returns the current shading interpolation.
func (s *Scene) Interpolation() Interpolation { return s.interpolation }

// SetEdgeOverlay toggles the feature-edge overlay shown in Shaded mode.
// Other modes fix edge visibility themselves.
func (s *Scene) SetEdgeOverlay(on bool) {
	s.edgeOverlay = on
	s.apply()
}

// EdgeOverlay reports the Shaded-mode edge-overlay toggle.
func (s *Scene) EdgeOverlay() bool { return s.edgeOverlay }

// SetActiveField records which named scalar field the renderer should bind
// a color map to. The field must already be attached to the mesh. The
// record survives mode switches and is cleared by Clear.
func (s *Scene) SetActiveField(key string) error {
	m := s.Mesh()
	if m == nil {
		return &NoGeometryError{Op: "field display"}
	}
	if m.Field(key) == nil {
		return fmt.Errorf("scene: mesh has no field %q", key)
	}
	s.activeField = key
	return nil
}

// ActiveField returns the recorded scalar-field key, empty for none.
func (s *Scene) ActiveField() string { return s.activeField }

// NearestVertex returns the mesh vertex closest to p, for snapping picked
// points. Reports false when no model is loaded.
func (s *Scene) NearestVertex(p geom.Vec3) (geom.Vec3, bool) {
	m := s.Mesh()
	if m == nil || m.IsEmpty() {
		return geom.Vec3{}, false
	}
	best := m.Vertices[0]
	bestD := p.Distance(best)
	for _, v := range m.Vertices[1:] {
		if d := p.Distance(v); d < bestD {
			best, bestD = v, d
		}
	}
	return best, true
}

// suppressBase hands base-mesh visibility to the section tool (true) or
// back to the mode table (false).
func (s *Scene) suppressBase(hidden bool) {
	s.baseSuppressed = hidden
	s.apply()
}

// apply rewrites the base and edge actor properties per the mode table.
// No-op without a model.
func (s *Scene) apply() {
	base, okBase := s.arena.Get(s.base)
	edge, okEdge := s.arena.Get(s.edges)
	if !okBase || !okEdge {
		return
	}

	base.Props = ActorProps{
		Visible:       true,
		Style:         StyleSurface,
		Opacity:       s.material.Opacity,
		Color:         s.material.Color,
		EdgeColor:     EdgeColorDark,
		Interpolation: s.interpolation,
		Specular:      s.material.Specular,
		Ambient:       s.material.Ambient,
		Diffuse:       s.material.Diffuse,
	}
	edge.Props = ActorProps{
		Visible:   false,
		Opacity:   1,
		Color:     EdgeColorDark,
		LineWidth: EdgeLineWidth,
	}

	switch s.mode {
	case ShadedWithEdges:
		base.Props.Style = StyleSurfaceWithEdges
	case Wireframe:
		base.Props.Visible = false
		edge.Props.Visible = true
		edge.Props.Color = EdgeColorLight
	case Transparent:
		base.Props.Opacity = TransparentOpacity
		edge.Props.Visible = true
		edge.Props.Color = EdgeColorLight
	case Points:
		base.Props.Style = StylePoints
		base.Props.PointSize = PointSize
		base.Props.PointsAsSpheres = true
	default: // Shaded
		edge.Props.Visible = s.edgeOverlay
	}

	if s.baseSuppressed {
		base.Props.Visible = false
	}
}
