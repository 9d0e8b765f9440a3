package mesh

import (
	"math"

	"github.com/zimin2020/polarbear/pkg/geom"
)

// Elevation computes the z coordinate of every vertex, stores it under
// FieldElevation and returns the data.
func Elevation(m *TriangleMesh) []float64 {
	data := make([]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		data[i] = v.Z
	}
	m.SetField(FieldElevation, PerVertex, data)
	return data
}

// MeanCurvature computes a discrete mean-curvature estimate per vertex,
// stores it under FieldCurvature and returns the data. Each interior edge
// contributes length * signed dihedral angle to both endpoints, normalized
// by the one-ring area; flat regions come out near zero, convex creases
// positive, concave creases negative.
func MeanCurvature(m *TriangleMesh) []float64 {
	data := make([]float64, len(m.Vertices))
	area := make([]float64, len(m.Vertices))

	for i := range m.Triangles {
		a := m.FaceArea(i) / 3
		for _, idx := range m.Triangles[i] {
			area[idx] += a
		}
	}

	type edgeFaces struct {
		faces [2]int
		count int
	}
	edges := make(map[[2]int]*edgeFaces)
	for fi, t := range m.Triangles {
		for e := 0; e < 3; e++ {
			key := edgeKey(t[e], t[(e+1)%3])
			info, ok := edges[key]
			if !ok {
				info = &edgeFaces{}
				edges[key] = info
			}
			if info.count < 2 {
				info.faces[info.count] = fi
			}
			info.count++
		}
	}

	centroid := func(fi int) geom.Vec3 {
		a, b, c := m.corners(m.Triangles[fi])
		return a.Add(b).Add(c).Scale(1.0 / 3.0)
	}

	for key, info := range edges {
		if info.count != 2 {
			continue
		}
		n0 := m.FaceNormal(info.faces[0])
		n1 := m.FaceNormal(info.faces[1])
		dot := n0.Dot(n1)
		if dot > 1 {
			dot = 1
		} else if dot < -1 {
			dot = -1
		}
		beta := math.Acos(dot)
		if beta == 0 {
			continue
		}
		// Convex when the two face normals diverge.
		d := centroid(info.faces[1]).Sub(centroid(info.faces[0]))
		if n0.Dot(d) > 0 {
			beta = -beta
		}
		length := m.Vertices[key[0]].Distance(m.Vertices[key[1]])
		for _, idx := range key {
			if area[idx] > 0 {
				data[idx] += length * beta / (4 * area[idx])
			}
		}
	}

	m.SetField(FieldCurvature, PerVertex, data)
	return data
}

// CellQuality computes the scaled-Jacobian quality of every triangle,
// stores it under FieldQuality and returns the data. Equilateral triangles
// score 1, degenerate slivers approach 0.
func CellQuality(m *TriangleMesh) []float64 {
	norm := 2.0 / math.Sqrt(3)
	data := make([]float64, len(m.Triangles))
	for i, t := range m.Triangles {
		a, b, c := m.corners(t)
		e0 := b.Sub(a)
		e1 := c.Sub(b)
		e2 := a.Sub(c)
		l0, l1, l2 := e0.Length(), e1.Length(), e2.Length()
		maxProd := math.Max(l0*l1, math.Max(l1*l2, l2*l0))
		if maxProd == 0 {
			data[i] = 0
			continue
		}
		// |e0 x e1| is twice the triangle area at any corner.
		data[i] = norm * e0.Cross(e1).Length() / maxProd
	}
	m.SetField(FieldQuality, PerCell, data)
	return data
}
