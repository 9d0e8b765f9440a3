package mesh

import "math"

// DefaultFeatureAngle is the dihedral-angle threshold in degrees above
// which a shared edge counts as a feature edge.
const DefaultFeatureAngle = 30.0

// EdgeKind classifies an extracted edge.
type EdgeKind uint8

const (
	// EdgeBoundary edges border exactly one triangle.
	EdgeBoundary EdgeKind = iota
	// EdgeFeature edges are shared by two triangles whose normals differ
	// by more than the feature angle.
	EdgeFeature
	// EdgeNonManifold edges are shared by three or more triangles.
	EdgeNonManifold
)

// String returns the kind name.
func (k EdgeKind) String() string {
	switch k {
	case EdgeBoundary:
		return "boundary"
	case EdgeFeature:
		return "feature"
	case EdgeNonManifold:
		return "non-manifold"
	}
	return "unknown"
}

// EdgeSet is a derived overlay of line segments extracted from a mesh:
// boundary edges, sharp feature edges and non-manifold edges. Smooth
// manifold edges are excluded. Segments index into the owning mesh's
// vertex array; the set is regenerated whole whenever the mesh is
// replaced, never patched.
type EdgeSet struct {
	Segments [][2]int
	Kinds    []EdgeKind
}

// Count returns the number of extracted edges.
func (e *EdgeSet) Count() int {
	return len(e.Segments)
}

// CountKind returns the number of edges of the given kind.
func (e *EdgeSet) CountKind(kind EdgeKind) int {
	n := 0
	for _, k := range e.Kinds {
		if k == kind {
			n++
		}
	}
	return n
}

// edgeKey is an undirected edge, lower index first.
func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// ExtractEdges classifies every undirected edge of the mesh and returns
// those that are boundary, feature (dihedral angle above featureAngle
// degrees) or non-manifold. Pass DefaultFeatureAngle for the standard
// threshold. Output order is deterministic: edges appear in first-seen
// order over the triangle list.
func ExtractEdges(m *TriangleMesh, featureAngle float64) *EdgeSet {
	type edgeInfo struct {
		faces [2]int // first two incident triangles
		count int
	}
	infos := make(map[[2]int]*edgeInfo, len(m.Triangles)*3/2)
	order := make([][2]int, 0, len(m.Triangles)*3/2)

	for fi, t := range m.Triangles {
		for e := 0; e < 3; e++ {
			key := edgeKey(t[e], t[(e+1)%3])
			info, ok := infos[key]
			if !ok {
				info = &edgeInfo{}
				infos[key] = info
				order = append(order, key)
			}
			if info.count < 2 {
				info.faces[info.count] = fi
			}
			info.count++
		}
	}

	cosThreshold := math.Cos(featureAngle * math.Pi / 180)
	out := &EdgeSet{}
	for _, key := range order {
		info := infos[key]
		switch {
		case info.count == 1:
			out.Segments = append(out.Segments, key)
			out.Kinds = append(out.Kinds, EdgeBoundary)
		case info.count == 2:
			n0 := m.FaceNormal(info.faces[0])
			n1 := m.FaceNormal(info.faces[1])
			if n0.Dot(n1) < cosThreshold {
				out.Segments = append(out.Segments, key)
				out.Kinds = append(out.Kinds, EdgeFeature)
			}
		default:
			out.Segments = append(out.Segments, key)
			out.Kinds = append(out.Kinds, EdgeNonManifold)
		}
	}
	return out
}
