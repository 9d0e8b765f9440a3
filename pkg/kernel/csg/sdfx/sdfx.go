// Package sdfx implements the csg.Builder interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/kernel/csg"
)

// Compile-time interface check.
var _ csg.Builder = (*Builder)(nil)

// sdfxSolid wraps an sdf.SDF3 to implement csg.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Builder implements csg.Builder using sdfx.
type Builder struct{}

// New returns a new sdfx Builder.
func New() *Builder {
	return &Builder{}
}

// Name identifies the backend.
func (b *Builder) Name() string {
	return "sdfx"
}

// unwrap extracts the underlying sdf.SDF3 from a csg.Solid.
func unwrap(s csg.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a csg.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) csg.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given dimensions, centered at the origin.
func (b *Builder) Box(x, y, z float64) csg.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(s)
}

// Sphere creates a sphere with the given radius, centered at the origin.
func (b *Builder) Sphere(radius float64) csg.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a cylinder along the Z axis, centered at the origin.
func (b *Builder) Cylinder(height, radius float64) csg.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Union returns the union of two solids.
func (b *Builder) Union(a, s csg.Solid) csg.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(s)))
}

// Difference returns the difference a - s.
func (b *Builder) Difference(a, s csg.Solid) csg.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(s)))
}

// Intersection returns the intersection of two solids.
func (b *Builder) Intersection(a, s csg.Solid) csg.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(s)))
}

// Translate moves a solid by (x, y, z).
func (b *Builder) Translate(s csg.Solid, x, y, z float64) csg.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (b *Builder) Rotate(s csg.Solid, x, y, z float64) csg.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Mesh extracts the surface with marching cubes at the given resolution.
func (b *Builder) Mesh(s csg.Solid, cells int) ([]csg.Triangle, error) {
	if cells < 2 {
		return nil, fmt.Errorf("sdfx: mesh cells %d too small", cells)
	}
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(sdf3, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles")
	}

	out := make([]csg.Triangle, len(triangles))
	for i, tri := range triangles {
		for j := 0; j < 3; j++ {
			out[i][j] = geom.Vec3{X: tri[j].X, Y: tri[j].Y, Z: tri[j].Z}
		}
	}
	return out, nil
}
