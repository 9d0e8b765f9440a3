// Package kernel defines the abstract geometry kernel interface. A kernel
// backend owns parametric shapes: it imports them from source files,
// triangulates them face by face at a requested deflection, and serializes
// them back out. The rest of the system depends only on this interface, so
// backends with different capabilities (full B-Rep support versus
// mesh-only) can be selected once at startup and injected.
package kernel

import (
	"errors"
	"io"

	"github.com/zimin2020/polarbear/pkg/geom"
)

// Capability is a bitmask of optional kernel abilities.
type Capability uint32

const (
	// CapBRep means the backend can hold a live parametric shape and
	// re-triangulate it at any precision.
	CapBRep Capability = 1 << iota
	// CapExportShape means the backend can serialize a shape it imported.
	CapExportShape
)

// Has reports whether all bits of want are present.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Shape is an opaque handle to a parametric solid owned by a kernel
// backend. Implementations wrap their internal representation.
type Shape interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// FaceMesh is the triangulation of one topological face after a meshing
// pass: node positions already transformed to world space, and triangles
// as 1-based indices into Nodes, the form meshing kernels hand out. The
// tessellate package assembles FaceMeshes into a single mesh. A face the
// meshing pass failed to triangulate has no nodes and no triangles.
type FaceMesh struct {
	Name  string
	Nodes []geom.Vec3
	Tris  [][3]int
}

// Empty reports whether the face carries no triangulation.
func (f *FaceMesh) Empty() bool {
	return len(f.Nodes) == 0 || len(f.Tris) == 0
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Name identifies the backend in logs and the file info surface.
	Name() string

	// Capabilities reports what this backend can do.
	Capabilities() Capability

	// ImportShape parses a parametric source file into a live Shape.
	// Backends without B-Rep support return ErrNoBRep; B-Rep backends
	// return ErrUnsupportedShape for source formats they cannot parse,
	// letting the caller fall back to external meshing.
	ImportShape(path string) (Shape, error)

	// Triangulate runs one meshing pass over the whole shape at the
	// given deflections and returns the per-face triangulations. For a
	// fixed shape, smaller deflections never produce fewer triangles.
	// Returns ErrNoFaces when nothing on the shape is triangulable.
	Triangulate(shape Shape, linearDeflection, angularDeflection float64) ([]FaceMesh, error)

	// ExportShape serializes the parametric solid, independent of any
	// tessellation derived from it.
	ExportShape(shape Shape, w io.Writer) error
}

var (
	// ErrNoBRep is returned by backends with no parametric capability.
	ErrNoBRep = errors.New("kernel has no B-Rep capability")
	// ErrUnsupportedShape is returned when a B-Rep backend cannot parse
	// the given source format.
	ErrUnsupportedShape = errors.New("unsupported parametric source format")
	// ErrNoFaces is returned when a shape yields no triangulable faces.
	ErrNoFaces = errors.New("shape has no triangulable faces")
)
