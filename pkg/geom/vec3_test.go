package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestVecAlgebra(t *testing.T) {
	a := V(1, 2, 3)
	b := V(4, 5, 6)

	if got := a.Add(b); got != V(5, 7, 9) {
		t.Errorf("Add: got %v", got)
	}
	if got := b.Sub(a); got != V(3, 3, 3) {
		t.Errorf("Sub: got %v", got)
	}
	if got := a.Scale(2); got != V(2, 4, 6) {
		t.Errorf("Scale: got %v", got)
	}
	if got := a.Dot(b); !almostEqual(got, 32) {
		t.Errorf("Dot: got %v", got)
	}
}

func TestCrossOrthogonal(t *testing.T) {
	x := V(1, 0, 0)
	y := V(0, 1, 0)
	z := x.Cross(y)
	if z != V(0, 0, 1) {
		t.Fatalf("x cross y = %v, want (0,0,1)", z)
	}
	// The cross product is perpendicular to both inputs.
	a := V(1.5, -2, 0.25)
	b := V(0.5, 3, -1)
	c := a.Cross(b)
	if !almostEqual(c.Dot(a), 0) || !almostEqual(c.Dot(b), 0) {
		t.Errorf("cross product not orthogonal: %v", c)
	}
}

func TestNormalize(t *testing.T) {
	v := V(3, 4, 0)
	n := v.Normalize()
	if !almostEqual(n.Length(), 1) {
		t.Errorf("normalized length = %v, want 1", n.Length())
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero vector should normalize to zero, got %v", got)
	}
}

func TestLerp(t *testing.T) {
	a := V(0, 0, 0)
	b := V(10, -4, 2)
	mid := a.Lerp(b, 0.5)
	if mid != V(5, -2, 1) {
		t.Errorf("Lerp(0.5) = %v", mid)
	}
	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %v", got)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v", got)
	}
}

func TestAxis(t *testing.T) {
	tests := []struct {
		in   string
		want Axis
	}{
		{"x", AxisX},
		{"Y", AxisY},
		{"z", AxisZ},
	}
	for _, tt := range tests {
		got, err := ParseAxis(tt.in)
		if err != nil {
			t.Errorf("ParseAxis(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAxis(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseAxis("w"); err == nil {
		t.Error("ParseAxis(\"w\") should fail")
	}
	if AxisY.Unit() != V(0, 1, 0) {
		t.Errorf("AxisY.Unit() = %v", AxisY.Unit())
	}
}

func TestPlaneSignedDistance(t *testing.T) {
	pl := AxisPlane(AxisZ, V(0, 0, 2))
	tests := []struct {
		p    Vec3
		want float64
	}{
		{V(0, 0, 2), 0},
		{V(5, 5, 3), 1},
		{V(-1, 2, 0), -2},
	}
	for _, tt := range tests {
		if got := pl.SignedDistance(tt.p); !almostEqual(got, tt.want) {
			t.Errorf("SignedDistance(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestComponent(t *testing.T) {
	v := V(1, 2, 3)
	if v.Component(AxisX) != 1 || v.Component(AxisY) != 2 || v.Component(AxisZ) != 3 {
		t.Errorf("Component mismatch for %v", v)
	}
}
