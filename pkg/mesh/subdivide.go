package mesh

import (
	"fmt"
	"math"

	"github.com/zimin2020/polarbear/pkg/geom"
)

// SubdivisionScheme selects how Subdivide places new vertices.
type SubdivisionScheme int

const (
	// SchemeLoop smooths positions with Loop's weights.
	SchemeLoop SubdivisionScheme = iota
	// SchemeLinear splits edges at their midpoints without smoothing.
	SchemeLinear
)

// ParseScheme converts "loop" or "linear" to a SubdivisionScheme.
func ParseScheme(s string) (SubdivisionScheme, error) {
	switch s {
	case "loop":
		return SchemeLoop, nil
	case "linear":
		return SchemeLinear, nil
	default:
		return SchemeLoop, fmt.Errorf("unknown subdivision scheme %q", s)
	}
}

// String returns the scheme name.
func (s SubdivisionScheme) String() string {
	if s == SchemeLinear {
		return "linear"
	}
	return "loop"
}

// Subdivide returns a refined copy of the mesh: every iteration splits each
// triangle into four. The Loop scheme also smooths vertex positions; the
// Linear scheme keeps them. Scalar fields and the precision tag do not
// carry over. The input mesh is never modified.
func Subdivide(m *TriangleMesh, iterations int, scheme SubdivisionScheme) (*TriangleMesh, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("subdivide: iterations %d < 1", iterations)
	}
	if m.IsEmpty() {
		return nil, fmt.Errorf("subdivide: empty mesh")
	}

	cur := &TriangleMesh{Vertices: m.Vertices, Triangles: m.Triangles}
	for i := 0; i < iterations; i++ {
		cur = subdivideOnce(cur, scheme)
	}
	out := New()
	out.Vertices = cur.Vertices
	out.Triangles = cur.Triangles
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("subdivide: %w", err)
	}
	return out, nil
}

func subdivideOnce(m *TriangleMesh, scheme SubdivisionScheme) *TriangleMesh {
	type edgeInfo struct {
		faces    [2]int
		count    int
		midpoint int // index of the new edge vertex
	}
	edges := make(map[[2]int]*edgeInfo, len(m.Triangles)*3/2)
	for fi, t := range m.Triangles {
		for e := 0; e < 3; e++ {
			key := edgeKey(t[e], t[(e+1)%3])
			info, ok := edges[key]
			if !ok {
				info = &edgeInfo{}
				edges[key] = info
			}
			if info.count < 2 {
				info.faces[info.count] = fi
			}
			info.count++
		}
	}

	out := New()
	out.Vertices = make([]geom.Vec3, len(m.Vertices), len(m.Vertices)+len(edges))

	if scheme == SchemeLoop {
		// Reposition the original vertices with Loop's vertex rule.
		neighbors := make(map[int]map[int]bool, len(m.Vertices))
		onBoundary := make(map[int]bool)
		boundaryNeighbors := make(map[int][]int)
		addNeighbor := func(a, b int) {
			set, ok := neighbors[a]
			if !ok {
				set = make(map[int]bool)
				neighbors[a] = set
			}
			set[b] = true
		}
		for key, info := range edges {
			addNeighbor(key[0], key[1])
			addNeighbor(key[1], key[0])
			if info.count == 1 {
				onBoundary[key[0]] = true
				onBoundary[key[1]] = true
				boundaryNeighbors[key[0]] = append(boundaryNeighbors[key[0]], key[1])
				boundaryNeighbors[key[1]] = append(boundaryNeighbors[key[1]], key[0])
			}
		}
		for i, v := range m.Vertices {
			if onBoundary[i] {
				bn := boundaryNeighbors[i]
				if len(bn) == 2 {
					out.Vertices[i] = v.Scale(0.75).
						Add(m.Vertices[bn[0]].Scale(0.125)).
						Add(m.Vertices[bn[1]].Scale(0.125))
				} else {
					out.Vertices[i] = v
				}
				continue
			}
			n := len(neighbors[i])
			if n < 3 {
				out.Vertices[i] = v
				continue
			}
			t := 0.375 + 0.25*math.Cos(2*math.Pi/float64(n))
			beta := (0.625 - t*t) / float64(n)
			sum := geom.Vec3{}
			for nb := range neighbors[i] {
				sum = sum.Add(m.Vertices[nb])
			}
			out.Vertices[i] = v.Scale(1 - float64(n)*beta).Add(sum.Scale(beta))
		}
	} else {
		copy(out.Vertices, m.Vertices)
	}

	// One new vertex per edge.
	for key, info := range edges {
		a := m.Vertices[key[0]]
		b := m.Vertices[key[1]]
		var p geom.Vec3
		if scheme == SchemeLoop && info.count == 2 {
			c := oppositeVertex(m.Triangles[info.faces[0]], key)
			d := oppositeVertex(m.Triangles[info.faces[1]], key)
			p = a.Add(b).Scale(0.375).
				Add(m.Vertices[c].Add(m.Vertices[d]).Scale(0.125))
		} else {
			p = a.Lerp(b, 0.5)
		}
		info.midpoint = len(out.Vertices)
		out.Vertices = append(out.Vertices, p)
	}

	out.Triangles = make([]Tri, 0, len(m.Triangles)*4)
	for _, t := range m.Triangles {
		mab := edges[edgeKey(t[0], t[1])].midpoint
		mbc := edges[edgeKey(t[1], t[2])].midpoint
		mca := edges[edgeKey(t[2], t[0])].midpoint
		out.Triangles = append(out.Triangles,
			Tri{t[0], mab, mca},
			Tri{t[1], mbc, mab},
			Tri{t[2], mca, mbc},
			Tri{mab, mbc, mca},
		)
	}
	return out
}

// oppositeVertex returns the triangle corner not on the given edge.
func oppositeVertex(t Tri, key [2]int) int {
	for _, idx := range t {
		if idx != key[0] && idx != key[1] {
			return idx
		}
	}
	return t[0]
}
