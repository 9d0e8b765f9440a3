// Package csg defines the constructive-solid-geometry builder used by the
// B-Rep kernel backend's script engine. Implementations (sdfx, manifold)
// provide primitives, boolean operations and transforms behind this
// interface; the script engine never depends on which one is live.
package csg

import "github.com/zimin2020/polarbear/pkg/geom"

// Solid is an opaque handle to a builder solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Triangle is one world-space triangle of an extracted surface.
type Triangle [3]geom.Vec3

// Builder is the constructive solid modeling interface.
type Builder interface {
	// Name identifies the implementation in logs.
	Name() string

	// Primitives. Box and Sphere are centered at the origin; Cylinder
	// stands along the Z axis, centered.
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	Cylinder(height, radius float64) Solid

	// Boolean operations.
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms.
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh extracts the surface as a triangle soup. The cells parameter
	// bounds the sampling resolution along the longest axis: more cells,
	// finer surface, never fewer triangles for the same solid.
	Mesh(s Solid, cells int) ([]Triangle, error)
}
