package mesh

import "github.com/zimin2020/polarbear/pkg/geom"

// FromSoup builds an indexed mesh from independent triangles, welding
// coincident corners. Triangles that collapse under welding are dropped.
func FromSoup(tris [][3]geom.Vec3) *TriangleMesh {
	b := newMeshBuilder()
	for _, t := range tris {
		b.addTriangle(t[0], t[1], t[2])
	}
	return b.mesh()
}
