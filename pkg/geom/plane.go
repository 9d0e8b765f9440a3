package geom

import "fmt"

// Axis identifies one of the three world axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the lowercase axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis converts "x", "y" or "z" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	default:
		return AxisX, fmt.Errorf("invalid axis %q", s)
	}
}

// Unit returns the unit vector along the axis.
func (a Axis) Unit() Vec3 {
	switch a {
	case AxisX:
		return Vec3{X: 1}
	case AxisY:
		return Vec3{Y: 1}
	default:
		return Vec3{Z: 1}
	}
}

// Plane is an oriented plane in normal-offset form: a point p lies on the
// plane when Normal·p == Offset. The normal need not be unit length for
// classification, only for distances.
type Plane struct {
	Normal Vec3
	Offset float64
}

// PlaneThrough returns the plane with the given normal passing through point.
func PlaneThrough(normal, point Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Offset: n.Dot(point)}
}

// AxisPlane returns the plane perpendicular to axis passing through point.
func AxisPlane(a Axis, point Vec3) Plane {
	return PlaneThrough(a.Unit(), point)
}

// SignedDistance returns the signed distance from p to the plane. Positive
// values lie on the side the normal points toward.
func (pl Plane) SignedDistance(p Vec3) float64 {
	return pl.Normal.Dot(p) - pl.Offset
}
