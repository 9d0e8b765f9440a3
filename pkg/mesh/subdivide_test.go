package mesh

import (
	"math"
	"testing"
)

func TestSubdivideCounts(t *testing.T) {
	tests := []struct {
		iterations int
		scheme     SubdivisionScheme
	}{
		{1, SchemeLinear},
		{2, SchemeLinear},
		{1, SchemeLoop},
		{2, SchemeLoop},
	}
	for _, tt := range tests {
		out, err := Subdivide(unitCube(), tt.iterations, tt.scheme)
		if err != nil {
			t.Fatalf("Subdivide(%d, %v): %v", tt.iterations, tt.scheme, err)
		}
		want := 12 * int(math.Pow(4, float64(tt.iterations)))
		if out.TriangleCount() != want {
			t.Errorf("%d iterations (%v): %d triangles, want %d", tt.iterations, tt.scheme, out.TriangleCount(), want)
		}
		if err := out.Validate(); err != nil {
			t.Errorf("%d iterations (%v): invalid: %v", tt.iterations, tt.scheme, err)
		}
		if p := ComputeProperties(out); !p.Closed {
			t.Errorf("%d iterations (%v): subdivided cube no longer closed", tt.iterations, tt.scheme)
		}
	}
}

func TestSubdivideLinearPreservesShape(t *testing.T) {
	out, err := Subdivide(unitCube(), 1, SchemeLinear)
	if err != nil {
		t.Fatalf("Subdivide: %v", err)
	}
	p := ComputeProperties(out)
	if math.Abs(p.Volume-1) > 1e-12 {
		t.Errorf("linear subdivision changed volume: %v", p.Volume)
	}
}

func TestSubdivideLoopSmooths(t *testing.T) {
	out, err := Subdivide(unitCube(), 2, SchemeLoop)
	if err != nil {
		t.Fatalf("Subdivide: %v", err)
	}
	p := ComputeProperties(out)
	// Loop smoothing pulls a convex solid inward, toward a rounder shape.
	if !p.VolumeValid || p.Volume >= 1 || p.Volume < 0.3 {
		t.Errorf("loop-subdivided cube volume = %v (valid=%v)", p.Volume, p.VolumeValid)
	}
}

func TestSubdivideOpenBoundary(t *testing.T) {
	// Boundary edges split at midpoints, so an open sheet keeps its
	// footprint under the linear scheme.
	out, err := Subdivide(quad(), 1, SchemeLinear)
	if err != nil {
		t.Fatalf("Subdivide: %v", err)
	}
	min, max := out.Bounds()
	if min.X != 0 || min.Y != 0 || max.X != 1 || max.Y != 1 {
		t.Errorf("bounds %v..%v, want unit square", min, max)
	}
	if out.TriangleCount() != 8 {
		t.Errorf("triangles = %d, want 8", out.TriangleCount())
	}
}

func TestSubdivideBadInput(t *testing.T) {
	if _, err := Subdivide(unitCube(), 0, SchemeLoop); err == nil {
		t.Error("zero iterations accepted")
	}
	if _, err := Subdivide(New(), 1, SchemeLoop); err == nil {
		t.Error("empty mesh accepted")
	}
}

func TestParseScheme(t *testing.T) {
	if s, err := ParseScheme("loop"); err != nil || s != SchemeLoop {
		t.Errorf("loop: %v %v", s, err)
	}
	if s, err := ParseScheme("linear"); err != nil || s != SchemeLinear {
		t.Errorf("linear: %v %v", s, err)
	}
	if _, err := ParseScheme("catmull"); err == nil {
		t.Error("unknown scheme accepted")
	}
}
