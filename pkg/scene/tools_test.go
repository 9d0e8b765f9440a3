package scene

import (
	"math"
	"testing"

	"github.com/zimin2020/polarbear/pkg/geom"
)

func newTestTools(t *testing.T) (*Scene, *Tools) {
	t.Helper()
	s := newTestScene(t)
	return s, NewTools(s, nil)
}

func TestSectionHidesBaseAndShowsClip(t *testing.T) {
	s, tools := newTestTools(t)

	if err := tools.ActivateSection(geom.AxisZ); err != nil {
		t.Fatalf("ActivateSection: %v", err)
	}
	if baseProps(t, s).Visible {
		t.Error("base mesh visible while section active")
	}
	clip := tools.ClipMesh()
	if clip == nil || clip.IsEmpty() {
		t.Fatal("no clip overlay mesh")
	}
	// The clip keeps the half below the plane through the bbox center.
	_, max := clip.Bounds()
	if max.Z > 0.5+1e-9 {
		t.Errorf("clip reaches z=%v, want <= 0.5", max.Z)
	}
	if axis, active := tools.SectionState(); !active || axis != geom.AxisZ {
		t.Errorf("SectionState() = %v, %v", axis, active)
	}
}

func TestSectionDeactivateRestoresModeVisibility(t *testing.T) {
	cases := []struct {
		mode        DisplayMode
		baseVisible bool
	}{
		{Shaded, true},
		{Wireframe, false},
		{Transparent, true},
	}
	for _, tc := range cases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			s, tools := newTestTools(t)
			s.SetMode(tc.mode)

			before := baseProps(t, s).Visible
			if before != tc.baseVisible {
				t.Fatalf("precondition: base visible = %v, want %v", before, tc.baseVisible)
			}
			if err := tools.ActivateSection(geom.AxisX); err != nil {
				t.Fatalf("ActivateSection: %v", err)
			}
			tools.DeactivateSection()
			if got := baseProps(t, s).Visible; got != before {
				t.Errorf("base visible = %v after deactivate, want %v", got, before)
			}
			if tools.ClipMesh() != nil {
				t.Error("clip overlay survived deactivation")
			}
		})
	}
}

func TestSectionWinsVisibilityWhileActive(t *testing.T) {
	s, tools := newTestTools(t)

	if err := tools.ActivateSection(geom.AxisY); err != nil {
		t.Fatalf("ActivateSection: %v", err)
	}
	// Mode switches while the section is active must not reveal the base.
	for _, mode := range []DisplayMode{Shaded, ShadedWithEdges, Transparent, Points} {
		s.SetMode(mode)
		if baseProps(t, s).Visible {
			t.Errorf("mode %v revealed base mesh during active section", mode)
		}
	}
	tools.DeactivateSection()
	if !baseProps(t, s).Visible {
		t.Error("base mesh still hidden after section deactivated")
	}
}

func TestSectionReactivateReplacesOverlay(t *testing.T) {
	s, tools := newTestTools(t)

	if err := tools.ActivateSection(geom.AxisZ); err != nil {
		t.Fatalf("ActivateSection: %v", err)
	}
	if err := tools.ActivateSection(geom.AxisX); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	// base + edges + a single clip overlay
	if s.arena.Len() != 3 {
		t.Errorf("arena has %d actors, want 3", s.arena.Len())
	}
	if axis, _ := tools.SectionState(); axis != geom.AxisX {
		t.Errorf("axis = %v, want x", axis)
	}
	_, max := tools.ClipMesh().Bounds()
	if max.X > 0.5+1e-9 {
		t.Errorf("clip reaches x=%v, want <= 0.5", max.X)
	}
}

func TestSectionReset(t *testing.T) {
	_, tools := newTestTools(t)

	if err := tools.ResetSection(); err == nil {
		t.Error("reset with no active section should fail")
	} else if _, ok := err.(*ToolStateError); !ok {
		t.Errorf("expected *ToolStateError, got %T", err)
	}

	if err := tools.ActivateSection(geom.AxisZ); err != nil {
		t.Fatalf("ActivateSection: %v", err)
	}
	if err := tools.ResetSection(); err != nil {
		t.Fatalf("ResetSection: %v", err)
	}
	if axis, active := tools.SectionState(); !active || axis != geom.AxisZ {
		t.Errorf("after reset: SectionState() = %v, %v", axis, active)
	}
}

func TestSectionWithoutModel(t *testing.T) {
	s := New(nil)
	tools := NewTools(s, nil)

	err := tools.ActivateSection(geom.AxisZ)
	if _, ok := err.(*NoGeometryError); !ok {
		t.Errorf("expected *NoGeometryError, got %v", err)
	}
}

func TestMeasurementProbe(t *testing.T) {
	s, tools := newTestTools(t)

	if err := tools.AddProbePoint(geom.Vec3{}); err == nil {
		t.Error("probe point accepted with tool off")
	}

	if err := tools.ActivateMeasurement(); err != nil {
		t.Fatalf("ActivateMeasurement: %v", err)
	}
	if !tools.MeasurementOn() {
		t.Fatal("tool not on after activation")
	}
	if _, ok := tools.Distance(); ok {
		t.Error("distance available with no probe points")
	}

	if err := tools.AddProbePoint(geom.V(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := tools.AddProbePoint(geom.V(3, 4, 0)); err != nil {
		t.Fatal(err)
	}
	d, ok := tools.Distance()
	if !ok || math.Abs(d-5) > 1e-12 {
		t.Errorf("Distance() = %v, %v, want 5, true", d, ok)
	}

	// A third point starts a new measurement.
	if err := tools.AddProbePoint(geom.V(1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if _, ok := tools.Distance(); ok {
		t.Error("distance still available after starting a new measurement")
	}

	tools.DeactivateMeasurement()
	if tools.MeasurementOn() {
		t.Error("tool still on after deactivation")
	}
	if err := tools.ActivateMeasurement(); err != nil {
		t.Fatal(err)
	}
	if _, ok := tools.Distance(); ok {
		t.Error("deactivation did not clear the partial measurement")
	}
	if s.arena.Len() != 3 {
		t.Errorf("arena has %d actors, want 3", s.arena.Len())
	}
}

func TestMeasurementWithoutModel(t *testing.T) {
	s := New(nil)
	tools := NewTools(s, nil)
	err := tools.ActivateMeasurement()
	if _, ok := err.(*NoGeometryError); !ok {
		t.Errorf("expected *NoGeometryError, got %v", err)
	}
}

func TestPickingSnapsAndReports(t *testing.T) {
	_, tools := newTestTools(t)

	var reported []geom.Vec3
	if err := tools.ActivatePicking(func(p geom.Vec3) {
		reported = append(reported, p)
	}); err != nil {
		t.Fatalf("ActivatePicking: %v", err)
	}

	got, err := tools.ReportPick(geom.V(0.9, -0.1, 0.2))
	if err != nil {
		t.Fatalf("ReportPick: %v", err)
	}
	if want := geom.V(1, 0, 0); got != want {
		t.Errorf("snapped = %v, want %v", got, want)
	}
	if len(reported) != 1 || reported[0] != got {
		t.Errorf("callback got %v, want [%v]", reported, got)
	}

	tools.DeactivatePicking()
	if _, err := tools.ReportPick(geom.Vec3{}); err == nil {
		t.Error("pick accepted with tool off")
	}
}

func TestPickingWithoutModel(t *testing.T) {
	s := New(nil)
	tools := NewTools(s, nil)
	err := tools.ActivatePicking(nil)
	if _, ok := err.(*NoGeometryError); !ok {
		t.Errorf("expected *NoGeometryError, got %v", err)
	}
}

func TestDeactivateAll(t *testing.T) {
	s, tools := newTestTools(t)

	if err := tools.ActivateSection(geom.AxisZ); err != nil {
		t.Fatal(err)
	}
	if err := tools.ActivateMeasurement(); err != nil {
		t.Fatal(err)
	}
	if err := tools.ActivatePicking(nil); err != nil {
		t.Fatal(err)
	}
	if s.arena.Len() != 5 {
		t.Fatalf("arena has %d actors, want 5", s.arena.Len())
	}

	tools.DeactivateAll()
	if tools.MeasurementOn() || tools.PickingOn() {
		t.Error("tools still on")
	}
	if _, active := tools.SectionState(); active {
		t.Error("section still active")
	}
	if s.arena.Len() != 2 {
		t.Errorf("arena has %d actors, want 2 (base + edges)", s.arena.Len())
	}
	if !baseProps(t, s).Visible {
		t.Error("base mesh not restored")
	}
}
