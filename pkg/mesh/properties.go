package mesh

import "math"

// Properties summarizes the measurable geometry of a mesh.
type Properties struct {
	Volume        float64
	VolumeValid   bool // false for open or non-manifold meshes
	SurfaceArea   float64
	BoundsMin     [3]float64
	BoundsMax     [3]float64
	Centroid      [3]float64 // bounding-box center
	VertexCount   int
	TriangleCount int
	Closed        bool
}

// ComputeProperties measures the mesh. Volume uses the divergence theorem
// over the closed surface and is only meaningful when every edge is shared
// by exactly two triangles; open or non-manifold meshes report
// VolumeValid=false with Volume=0 rather than a garbage number.
func ComputeProperties(m *TriangleMesh) Properties {
	p := Properties{
		VertexCount:   m.VertexCount(),
		TriangleCount: m.TriangleCount(),
	}
	if m.IsEmpty() {
		return p
	}

	min, max := m.Bounds()
	p.BoundsMin = [3]float64{min.X, min.Y, min.Z}
	p.BoundsMax = [3]float64{max.X, max.Y, max.Z}
	p.Centroid = [3]float64{
		(min.X + max.X) / 2,
		(min.Y + max.Y) / 2,
		(min.Z + max.Z) / 2,
	}

	counts := make(map[[2]int]int, len(m.Triangles)*3/2)
	for _, t := range m.Triangles {
		for e := 0; e < 3; e++ {
			counts[edgeKey(t[e], t[(e+1)%3])]++
		}
	}
	p.Closed = true
	for _, c := range counts {
		if c != 2 {
			p.Closed = false
			break
		}
	}

	volume := 0.0
	for i, t := range m.Triangles {
		a, b, c := m.corners(t)
		p.SurfaceArea += m.FaceArea(i)
		volume += a.Dot(b.Cross(c))
	}
	if p.Closed {
		p.Volume = math.Abs(volume) / 6
		p.VolumeValid = true
	}
	return p
}
