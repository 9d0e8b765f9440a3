// Package mesh implements the triangle mesh model: vertex/triangle storage,
// derived feature-edge overlays, named scalar fields, geometric property
// queries, and the mesh-replacing operations (decimate, subdivide, clip).
package mesh

import (
	"fmt"

	"github.com/zimin2020/polarbear/pkg/geom"
)

// Tri holds the three vertex indices of one triangle, 0-based.
type Tri [3]int

// FieldAssociation says whether a scalar field has one value per vertex or
// one value per triangle.
type FieldAssociation int

const (
	PerVertex FieldAssociation = iota
	PerCell
)

// Stable scalar field keys. Renderers bind color maps by these names.
const (
	FieldCurvature = "curvature"
	FieldElevation = "elevation"
	FieldQuality   = "quality"
)

// ScalarField is a named per-vertex or per-cell float array attached to a
// mesh.
type ScalarField struct {
	Assoc FieldAssociation
	Data  []float64
}

// TriangleMesh is the polygonal model owned by a session. Triangle indices
// are 0-based and always within the vertex array. Fields holds derived
// scalar arrays keyed by the Field* constants. SourcePrecision records the
// precision level a tessellated mesh was produced at, empty for meshes read
// directly from a file.
type TriangleMesh struct {
	Vertices        []geom.Vec3
	Triangles       []Tri
	Fields          map[string]*ScalarField
	SourcePrecision string
}

// New returns an empty mesh with an initialized field map.
func New() *TriangleMesh {
	return &TriangleMesh{Fields: make(map[string]*ScalarField)}
}

// VertexCount returns the number of vertices.
func (m *TriangleMesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *TriangleMesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *TriangleMesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Triangles) == 0
}

// Validate checks that every triangle index is within the vertex array and
// that every field has the length its association demands.
func (m *TriangleMesh) Validate() error {
	for i, t := range m.Triangles {
		for _, idx := range t {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("triangle %d: index %d out of range [0,%d)", i, idx, len(m.Vertices))
			}
		}
	}
	for name, f := range m.Fields {
		want := len(m.Vertices)
		if f.Assoc == PerCell {
			want = len(m.Triangles)
		}
		if len(f.Data) != want {
			return fmt.Errorf("field %q: %d values for %d elements", name, len(f.Data), want)
		}
	}
	return nil
}

// SetField attaches a scalar field under the given key, replacing any
// previous field of that name.
func (m *TriangleMesh) SetField(name string, assoc FieldAssociation, data []float64) error {
	want := len(m.Vertices)
	if assoc == PerCell {
		want = len(m.Triangles)
	}
	if len(data) != want {
		return fmt.Errorf("field %q: %d values for %d elements", name, len(data), want)
	}
	if m.Fields == nil {
		m.Fields = make(map[string]*ScalarField)
	}
	m.Fields[name] = &ScalarField{Assoc: assoc, Data: data}
	return nil
}

// Field returns the named scalar field, or nil.
func (m *TriangleMesh) Field(name string) *ScalarField {
	if m.Fields == nil {
		return nil
	}
	return m.Fields[name]
}

// Clone returns a deep copy. Mesh-replacing operations work on clones so a
// failure leaves the original untouched.
func (m *TriangleMesh) Clone() *TriangleMesh {
	out := &TriangleMesh{
		Vertices:        make([]geom.Vec3, len(m.Vertices)),
		Triangles:       make([]Tri, len(m.Triangles)),
		Fields:          make(map[string]*ScalarField, len(m.Fields)),
		SourcePrecision: m.SourcePrecision,
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Triangles, m.Triangles)
	for name, f := range m.Fields {
		data := make([]float64, len(f.Data))
		copy(data, f.Data)
		out.Fields[name] = &ScalarField{Assoc: f.Assoc, Data: data}
	}
	return out
}

// Bounds returns the axis-aligned bounding box. The zero box is returned
// for an empty mesh.
func (m *TriangleMesh) Bounds() (min, max geom.Vec3) {
	if len(m.Vertices) == 0 {
		return geom.Vec3{}, geom.Vec3{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// corners returns the three corner positions of triangle t.
func (m *TriangleMesh) corners(t Tri) (a, b, c geom.Vec3) {
	return m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
}

// FaceNormal returns the unit normal of triangle i, or the zero vector for
// a degenerate triangle.
func (m *TriangleMesh) FaceNormal(i int) geom.Vec3 {
	a, b, c := m.corners(m.Triangles[i])
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// FaceArea returns the area of triangle i.
func (m *TriangleMesh) FaceArea(i int) float64 {
	a, b, c := m.corners(m.Triangles[i])
	return b.Sub(a).Cross(c.Sub(a)).Length() / 2
}

// VertexNormals returns area-weighted per-vertex normals, the input for
// smooth (phong) shading.
func (m *TriangleMesh) VertexNormals() []geom.Vec3 {
	normals := make([]geom.Vec3, len(m.Vertices))
	for _, t := range m.Triangles {
		a, b, c := m.corners(t)
		n := b.Sub(a).Cross(c.Sub(a)) // length is 2x area, weighting larger faces more
		for _, idx := range t {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

// FlatVertices returns vertex positions as a flat float32 array,
// [x0,y0,z0, x1,y1,z1, ...], the layout renderers upload.
func (m *TriangleMesh) FlatVertices() []float32 {
	out := make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		out = append(out, float32(v.X), float32(v.Y), float32(v.Z))
	}
	return out
}

// FlatIndices returns triangle indices as a flat uint32 array.
func (m *TriangleMesh) FlatIndices() []uint32 {
	out := make([]uint32, 0, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		out = append(out, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	return out
}

// FlatNormals returns per-vertex normals as a flat float32 array.
func (m *TriangleMesh) FlatNormals() []float32 {
	normals := m.VertexNormals()
	out := make([]float32, 0, len(normals)*3)
	for _, n := range normals {
		out = append(out, float32(n.X), float32(n.Y), float32(n.Z))
	}
	return out
}
