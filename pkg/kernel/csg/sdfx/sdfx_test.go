package sdfx

import (
	"math"
	"testing"
)

func TestBoxBoundingBox(t *testing.T) {
	b := New()
	s := b.Box(20, 10, 5)

	min, max := s.BoundingBox()
	want := [3]float64{10, 5, 2.5}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]+want[i]) > 1e-9 || math.Abs(max[i]-want[i]) > 1e-9 {
			t.Errorf("axis %d: bbox [%v, %v], want [-%v, %v]", i, min[i], max[i], want[i], want[i])
		}
	}
}

func TestSphereBoundingBox(t *testing.T) {
	b := New()
	s := b.Sphere(4)

	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if min[i] > -4+1e-9 || max[i] < 4-1e-9 {
			t.Errorf("axis %d: bbox [%v, %v] does not cover sphere of radius 4", i, min[i], max[i])
		}
	}
}

func TestTranslateShiftsBounds(t *testing.T) {
	b := New()
	s := b.Translate(b.Box(2, 2, 2), 10, 0, 0)

	min, max := s.BoundingBox()
	if math.Abs(min[0]-9) > 1e-9 || math.Abs(max[0]-11) > 1e-9 {
		t.Errorf("x bounds [%v, %v], want [9, 11]", min[0], max[0])
	}
	if math.Abs(min[1]+1) > 1e-9 || math.Abs(max[1]-1) > 1e-9 {
		t.Errorf("y bounds [%v, %v], want [-1, 1]", min[1], max[1])
	}
}

func TestMeshBox(t *testing.T) {
	b := New()
	s := b.Box(10, 10, 10)

	tris, err := b.Mesh(s, 32)
	if err != nil {
		t.Fatalf("Mesh failed: %v", err)
	}
	if len(tris) == 0 {
		t.Fatal("Mesh returned no triangles")
	}
	t.Logf("box meshed into %d triangles at 32 cells", len(tris))

	// All vertices must lie within the (slightly inflated) bounding box.
	for i, tri := range tris {
		for j := 0; j < 3; j++ {
			v := tri[j]
			if math.Abs(v.X) > 5.5 || math.Abs(v.Y) > 5.5 || math.Abs(v.Z) > 5.5 {
				t.Fatalf("triangle %d vertex %d = %v outside box bounds", i, j, v)
			}
		}
	}
}

func TestMeshResolutionMonotone(t *testing.T) {
	b := New()
	s := b.Sphere(5)

	coarse, err := b.Mesh(s, 16)
	if err != nil {
		t.Fatalf("coarse mesh failed: %v", err)
	}
	fine, err := b.Mesh(s, 64)
	if err != nil {
		t.Fatalf("fine mesh failed: %v", err)
	}
	if len(fine) < len(coarse) {
		t.Errorf("fine mesh has %d triangles, coarse has %d; want fine >= coarse", len(fine), len(coarse))
	}
	t.Logf("sphere: %d triangles at 16 cells, %d at 64 cells", len(coarse), len(fine))
}

func TestMeshRejectsTinyGrid(t *testing.T) {
	b := New()
	s := b.Box(1, 1, 1)

	if _, err := b.Mesh(s, 1); err == nil {
		t.Error("expected error for 1-cell grid")
	}
}

func TestDifferenceKeepsOuterBounds(t *testing.T) {
	b := New()
	outer := b.Box(10, 10, 10)
	inner := b.Cylinder(12, 2)
	s := b.Difference(outer, inner)

	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if min[i] > -5+1e-6 || max[i] < 5-1e-6 {
			t.Errorf("axis %d: difference bbox [%v, %v] smaller than outer box", i, min[i], max[i])
		}
	}
}

func TestUnionCoversBoth(t *testing.T) {
	b := New()
	a := b.Box(2, 2, 2)
	c := b.Translate(b.Sphere(1), 5, 0, 0)
	s := b.Union(a, c)

	min, max := s.BoundingBox()
	if min[0] > -1+1e-6 {
		t.Errorf("union min x %v, want <= -1", min[0])
	}
	if max[0] < 6-1e-6 {
		t.Errorf("union max x %v, want >= 6", max[0])
	}
}
