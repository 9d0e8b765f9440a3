package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/mesh"
)

// Overlay colors for the interactive tools.
const (
	measureColor = "#f39c12"
	pickColor    = "#e74c3c"
	probeSize    = 8.0
)

// Tools drives the three interactive tools over a scene. Each tool is a
// small independent state machine; only the section tool touches base-mesh
// visibility, and while active it wins that contention over the display
// mode.
type Tools struct {
	scene  *Scene
	logger *zap.Logger

	measureOn     bool
	measureHandle Handle
	probePoints   []geom.Vec3

	sectionActive bool
	sectionAxis   geom.Axis
	clipHandle    Handle

	pickOn     bool
	pickHandle Handle
	onPick     func(geom.Vec3)
}

// NewTools returns a controller with every tool off.
func NewTools(s *Scene, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{scene: s, logger: logger}
}

// DeactivateAll turns every tool off. Called before the model is replaced
// or cleared so no overlay outlives the mesh it was derived from.
func (t *Tools) DeactivateAll() {
	t.DeactivateSection()
	t.DeactivateMeasurement()
	t.DeactivatePicking()
}

// --- measurement ---

// ActivateMeasurement attaches the distance-probe overlay. Activating an
// already-active tool is a no-op.
func (t *Tools) ActivateMeasurement() error {
	if !t.scene.HasModel() {
		return &NoGeometryError{Op: "measurement"}
	}
	if t.measureOn {
		return nil
	}
	t.measureHandle = t.scene.arena.Add(Actor{
		Kind: ActorMeasure,
		Props: ActorProps{
			Visible:         true,
			Style:           StylePoints,
			Opacity:         1,
			Color:           measureColor,
			PointSize:       probeSize,
			PointsAsSpheres: true,
			LineWidth:       EdgeLineWidth,
		},
	})
	t.measureOn = true
	return nil
}

// DeactivateMeasurement detaches the overlay and clears any partial
// measurement. Idempotent.
func (t *Tools) DeactivateMeasurement() {
	if !t.measureOn {
		return
	}
	t.scene.arena.Remove(t.measureHandle)
	t.measureHandle = Handle{}
	t.probePoints = nil
	t.measureOn = false
}

// MeasurementOn reports whether the measurement tool is active.
func (t *Tools) MeasurementOn() bool { return t.measureOn }

// AddProbePoint records a probe endpoint. The first two points define a
// measurement; a third starts a new one.
func (t *Tools) AddProbePoint(p geom.Vec3) error {
	if !t.measureOn {
		return &ToolStateError{Tool: "measurement", Reason: "probe point with tool off"}
	}
	if len(t.probePoints) >= 2 {
		t.probePoints = t.probePoints[:0]
	}
	t.probePoints = append(t.probePoints, p)
	if a, ok := t.scene.arena.Get(t.measureHandle); ok {
		a.Markers = append([]geom.Vec3(nil), t.probePoints...)
	}
	return nil
}

// Distance returns the probe distance once two points are set.
func (t *Tools) Distance() (float64, bool) {
	if len(t.probePoints) != 2 {
		return 0, false
	}
	return t.probePoints[0].Distance(t.probePoints[1]), true
}

// --- section ---

// ActivateSection cuts the mesh with an axis-aligned plane through the
// bounding-box center: the clipped half replaces the base mesh on screen
// until deactivation. Re-activating while active tears the previous
// overlay down first.
func (t *Tools) ActivateSection(axis geom.Axis) error {
	m := t.scene.Mesh()
	if m == nil {
		return &NoGeometryError{Op: "section"}
	}
	if t.sectionActive {
		t.removeClip()
	}

	min, max := m.Bounds()
	pl := geom.AxisPlane(axis, min.Lerp(max, 0.5))
	clip, err := mesh.ClipByPlane(m, pl)
	if err != nil {
		return fmt.Errorf("section: %w", err)
	}

	t.clipHandle = t.scene.arena.Add(Actor{
		Kind: ActorClip,
		Mesh: clip,
		Props: ActorProps{
			Visible:       true,
			Style:         StyleSurface,
			Opacity:       t.scene.material.Opacity,
			Color:         t.scene.material.Color,
			EdgeColor:     EdgeColorDark,
			Interpolation: t.scene.interpolation,
			Specular:      t.scene.material.Specular,
			Ambient:       t.scene.material.Ambient,
			Diffuse:       t.scene.material.Diffuse,
		},
	})
	t.sectionActive = true
	t.sectionAxis = axis
	t.scene.suppressBase(true)
	t.logger.Debug("section activated",
		zap.Stringer("axis", axis),
		zap.Int("clip_triangles", clip.TriangleCount()))
	return nil
}

// DeactivateSection removes the clip overlay and returns base-mesh
// visibility to whatever the current display mode dictates. Idempotent.
func (t *Tools) DeactivateSection() {
	if !t.sectionActive {
		return
	}
	t.removeClip()
	t.sectionActive = false
	t.scene.suppressBase(false)
}

// ResetSection recuts along the active axis, equivalent to deactivating
// and reactivating with the same axis.
func (t *Tools) ResetSection() error {
	if !t.sectionActive {
		return &ToolStateError{Tool: "section", Reason: "reset with no active section"}
	}
	axis := t.sectionAxis
	t.DeactivateSection()
	return t.ActivateSection(axis)
}

// SectionState returns the active axis and whether the section is active.
func (t *Tools) SectionState() (geom.Axis, bool) {
	return t.sectionAxis, t.sectionActive
}

// ClipMesh returns the section overlay mesh, or nil when inactive.
func (t *Tools) ClipMesh() *mesh.TriangleMesh {
	if a, ok := t.scene.arena.Get(t.clipHandle); ok {
		return a.Mesh
	}
	return nil
}

func (t *Tools) removeClip() {
	t.scene.arena.Remove(t.clipHandle)
	t.clipHandle = Handle{}
}

// --- point picking ---

// ActivatePicking attaches the pick marker and callback. The callback may
// be nil when only the marker is wanted.
func (t *Tools) ActivatePicking(onPick func(geom.Vec3)) error {
	if !t.scene.HasModel() {
		return &NoGeometryError{Op: "point picking"}
	}
	if t.pickOn {
		t.onPick = onPick
		return nil
	}
	t.pickHandle = t.scene.arena.Add(Actor{
		Kind: ActorPick,
		Props: ActorProps{
			Visible:         true,
			Style:           StylePoints,
			Opacity:         1,
			Color:           pickColor,
			PointSize:       probeSize,
			PointsAsSpheres: true,
		},
	})
	t.onPick = onPick
	t.pickOn = true
	return nil
}

// DeactivatePicking detaches the marker and callback. Idempotent.
func (t *Tools) DeactivatePicking() {
	if !t.pickOn {
		return
	}
	t.scene.arena.Remove(t.pickHandle)
	t.pickHandle = Handle{}
	t.onPick = nil
	t.pickOn = false
}

// PickingOn reports whether the picking tool is active.
func (t *Tools) PickingOn() bool { return t.pickOn }

// ReportPick snaps p to the nearest mesh vertex, moves the marker there
// and invokes the callback with the snapped point.
func (t *Tools) ReportPick(p geom.Vec3) (geom.Vec3, error) {
	if !t.pickOn {
		return geom.Vec3{}, &ToolStateError{Tool: "picking", Reason: "pick with tool off"}
	}
	snapped, ok := t.scene.NearestVertex(p)
	if !ok {
		return geom.Vec3{}, &NoGeometryError{Op: "point picking"}
	}
	if a, found := t.scene.arena.Get(t.pickHandle); found {
		a.Markers = []geom.Vec3{snapped}
	}
	if t.onPick != nil {
		t.onPick(snapped)
	}
	return snapped, nil
}
