package mesh

import (
	"math"
	"testing"

	"github.com/zimin2020/polarbear/pkg/geom"
)

func TestElevation(t *testing.T) {
	m := unitCube()
	data := Elevation(m)
	if len(data) != 8 {
		t.Fatalf("elevation length = %d, want 8", len(data))
	}
	for i, v := range m.Vertices {
		if data[i] != v.Z {
			t.Errorf("vertex %d: elevation %v, want %v", i, data[i], v.Z)
		}
	}
	f := m.Field(FieldElevation)
	if f == nil || f.Assoc != PerVertex {
		t.Error("elevation field not stored per vertex")
	}
}

// grid builds an n x n vertex sheet in the z=0 plane.
func grid(n int) *TriangleMesh {
	m := New()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			m.Vertices = append(m.Vertices, geom.V(float64(x), float64(y), 0))
		}
	}
	idx := func(x, y int) int { return y*n + x }
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			m.Triangles = append(m.Triangles,
				Tri{idx(x, y), idx(x+1, y), idx(x+1, y+1)},
				Tri{idx(x, y), idx(x+1, y+1), idx(x, y+1)},
			)
		}
	}
	return m
}

func TestMeanCurvatureFlat(t *testing.T) {
	m := grid(5)
	data := MeanCurvature(m)
	for i, h := range data {
		if math.Abs(h) > 1e-9 {
			t.Errorf("vertex %d: curvature %v on a flat sheet", i, h)
		}
	}
	if m.Field(FieldCurvature) == nil {
		t.Error("curvature field not stored")
	}
}

func TestMeanCurvatureConvex(t *testing.T) {
	data := MeanCurvature(unitCube())
	for i, h := range data {
		if h <= 0 {
			t.Errorf("vertex %d: curvature %v, want positive on a convex solid", i, h)
		}
	}
}

func TestCellQuality(t *testing.T) {
	m := New()
	h := math.Sqrt(3) / 2
	m.Vertices = []geom.Vec3{
		// Equilateral with unit sides.
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0.5, Y: h, Z: 0},
		// Sliver: nearly collinear.
		{X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0.5, Y: 1.001, Z: 0},
	}
	m.Triangles = []Tri{{0, 1, 2}, {3, 4, 5}}

	data := CellQuality(m)
	if math.Abs(data[0]-1) > 1e-9 {
		t.Errorf("equilateral quality = %v, want 1", data[0])
	}
	if data[1] > 0.02 || data[1] <= 0 {
		t.Errorf("sliver quality = %v, want small positive", data[1])
	}

	f := m.Field(FieldQuality)
	if f == nil || f.Assoc != PerCell {
		t.Error("quality field not stored per cell")
	}
}

func TestCellQualityCubeFaces(t *testing.T) {
	// Right isosceles halves of the cube faces score 2/sqrt(6).
	data := CellQuality(unitCube())
	want := 2 / math.Sqrt(6)
	for i, q := range data {
		if math.Abs(q-want) > 1e-9 {
			t.Errorf("triangle %d: quality %v, want %v", i, q, want)
		}
	}
}
