package mesh

import (
	"math"
	"testing"
)

func TestDecimateRatio(t *testing.T) {
	// A twice-subdivided cube has 192 triangles, enough to reduce.
	base, err := Subdivide(unitCube(), 2, SchemeLinear)
	if err != nil {
		t.Fatalf("subdivide fixture: %v", err)
	}
	original := base.TriangleCount()

	tests := []float64{0.3, 0.5, 0.7}
	for _, ratio := range tests {
		out, err := Decimate(base, ratio)
		if err != nil {
			t.Fatalf("Decimate(%v): %v", ratio, err)
		}
		if out.TriangleCount() > original {
			t.Errorf("ratio %v: %d triangles exceeds original %d", ratio, out.TriangleCount(), original)
		}
		target := float64(original) * (1 - ratio)
		if math.Abs(float64(out.TriangleCount())-target) > target*0.15+2 {
			t.Errorf("ratio %v: %d triangles, want about %.0f", ratio, out.TriangleCount(), target)
		}
		if err := out.Validate(); err != nil {
			t.Errorf("ratio %v: invalid result: %v", ratio, err)
		}
	}
}

func TestDecimateLeavesInputUntouched(t *testing.T) {
	base, _ := Subdivide(unitCube(), 1, SchemeLinear)
	before := base.TriangleCount()
	if _, err := Decimate(base, 0.5); err != nil {
		t.Fatalf("Decimate: %v", err)
	}
	if base.TriangleCount() != before {
		t.Error("input mesh was modified")
	}
	if err := base.Validate(); err != nil {
		t.Errorf("input mesh corrupted: %v", err)
	}
}

func TestDecimateBadRatio(t *testing.T) {
	for _, ratio := range []float64{0, 1, -0.5, 1.5} {
		if _, err := Decimate(unitCube(), ratio); err == nil {
			t.Errorf("ratio %v accepted", ratio)
		}
	}
}

func TestDecimateEmpty(t *testing.T) {
	if _, err := Decimate(New(), 0.5); err == nil {
		t.Error("empty mesh accepted")
	}
}

func TestDecimateDropsDerivedData(t *testing.T) {
	base, _ := Subdivide(unitCube(), 1, SchemeLinear)
	base.SourcePrecision = "medium"
	Elevation(base)

	out, err := Decimate(base, 0.5)
	if err != nil {
		t.Fatalf("Decimate: %v", err)
	}
	if out.SourcePrecision != "" {
		t.Error("precision tag carried over to decimated mesh")
	}
	if out.Field(FieldElevation) != nil {
		t.Error("stale scalar field carried over to decimated mesh")
	}
}
