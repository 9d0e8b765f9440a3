//go:build manifold

// Package manifold provides a CGo-based csg.Builder binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold provides
// guaranteed-manifold mesh boolean operations, so solids meshed through it
// are always watertight.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/kernel/csg"
)

// Compile-time interface checks.
var _ csg.Builder = (*Builder)(nil)
var _ csg.Solid = (*manifoldSolid)(nil)

// Circular primitives are discretized at creation time, so the mesh
// resolution requested later has no effect on them.
const circularSegments = 64

// manifoldSolid wraps a C ManifoldManifold pointer and implements csg.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with a Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// Builder implements csg.Builder using the Manifold C library.
type Builder struct{}

// New creates a new manifold Builder. Returns an error if the Manifold
// C library cannot be initialized.
func New() (csg.Builder, error) {
	return &Builder{}, nil
}

// Name identifies the backend.
func (b *Builder) Name() string {
	return "manifold"
}

// Box creates an axis-aligned box with the given dimensions.
// The box is centered at the origin.
func (b *Builder) Box(x, y, z float64) csg.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(x), C.double(y), C.double(z),
		C.int(1), // center=true
	)
	return newSolid(ptr)
}

// Sphere creates a sphere with the given radius, centered at the origin.
func (b *Builder) Sphere(radius float64) csg.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_sphere(alloc,
		C.double(radius),
		C.int(circularSegments),
	)
	return newSolid(ptr)
}

// Cylinder creates a cylinder along the Z axis with the given height and
// radius. The cylinder is centered at the origin.
func (b *Builder) Cylinder(height, radius float64) csg.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(radius), // radius_low
		C.double(radius), // radius_high (same = not tapered)
		C.int(circularSegments),
		C.int(1), // center=true
	)
	return newSolid(ptr)
}

// Union returns the boolean union of two solids.
func (b *Builder) Union(a, s csg.Solid) csg.Solid {
	sa := a.(*manifoldSolid)
	sb := s.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_union(alloc, sa.ptr, sb.ptr)
	return newSolid(ptr)
}

// Difference returns the boolean difference (a minus s).
func (b *Builder) Difference(a, s csg.Solid) csg.Solid {
	sa := a.(*manifoldSolid)
	sb := s.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_difference(alloc, sa.ptr, sb.ptr)
	return newSolid(ptr)
}

// Intersection returns the boolean intersection of two solids.
func (b *Builder) Intersection(a, s csg.Solid) csg.Solid {
	sa := a.(*manifoldSolid)
	sb := s.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_intersection(alloc, sa.ptr, sb.ptr)
	return newSolid(ptr)
}

// Translate moves the solid by (x, y, z).
func (b *Builder) Translate(s csg.Solid, x, y, z float64) csg.Solid {
	ms := s.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, ms.ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// Rotate rotates the solid by Euler angles (in degrees) around the X, Y, Z axes.
func (b *Builder) Rotate(s csg.Solid, x, y, z float64) csg.Solid {
	ms := s.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_rotate(alloc, ms.ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// Mesh extracts the triangle mesh from the solid using Manifold's MeshGL
// format. Manifold meshes exactly, so the cells parameter only bounds
// validation; triangle density for curved primitives is fixed at creation.
func (b *Builder) Mesh(s csg.Solid, cells int) ([]csg.Triangle, error) {
	if cells < 2 {
		return nil, fmt.Errorf("manifold: mesh cells %d too small", cells)
	}
	ms := s.(*manifoldSolid)

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return nil, fmt.Errorf("manifold: solid produced no triangles")
	}

	// MeshGL stores vertex properties in a flat float array with numProp
	// properties per vertex. The first 3 are always position (x, y, z).
	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	out := make([]csg.Triangle, numTri)
	for t := 0; t < numTri; t++ {
		for j := 0; j < 3; j++ {
			base := int(indices[t*3+j]) * numProp
			out[t][j] = geom.Vec3{
				X: float64(propData[base+0]),
				Y: float64(propData[base+1]),
				Z: float64(propData[base+2]),
			}
		}
	}
	return out, nil
}
