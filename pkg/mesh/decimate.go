package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/zimin2020/polarbear/pkg/geom"
)

// Decimate returns a copy of the mesh reduced by approximately the given
// ratio: a ratio of 0.5 aims at half the original triangle count. The
// result never has more triangles than the input. Scalar fields and the
// precision tag do not carry over. The input mesh is never modified, so a
// failure leaves the caller's state untouched.
//
// Reduction collapses the shortest edges first, merging each edge to its
// midpoint and dropping the triangles that degenerate. Collapses within
// one pass never share a vertex, which keeps the removal accounting exact;
// passes repeat until the target is reached or no further collapse is
// possible (a tetrahedron cannot shrink below four faces).
func Decimate(m *TriangleMesh, ratio float64) (*TriangleMesh, error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, fmt.Errorf("decimate: ratio %v outside (0,1)", ratio)
	}
	if m.IsEmpty() {
		return nil, fmt.Errorf("decimate: empty mesh")
	}

	target := int(math.Round(float64(len(m.Triangles)) * (1 - ratio)))
	if target < 1 {
		target = 1
	}

	positions := make([]geom.Vec3, len(m.Vertices))
	copy(positions, m.Vertices)
	tris := make([]Tri, len(m.Triangles))
	copy(tris, m.Triangles)

	for len(tris) > target {
		counts := make(map[[2]int]int, len(tris)*3/2)
		for _, t := range tris {
			for e := 0; e < 3; e++ {
				counts[edgeKey(t[e], t[(e+1)%3])]++
			}
		}

		type candidate struct {
			key    [2]int
			length float64
		}
		cands := make([]candidate, 0, len(counts))
		for key := range counts {
			cands = append(cands, candidate{key: key, length: positions[key[0]].Distance(positions[key[1]])})
		}
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].length != cands[j].length {
				return cands[i].length < cands[j].length
			}
			if cands[i].key[0] != cands[j].key[0] {
				return cands[i].key[0] < cands[j].key[0]
			}
			return cands[i].key[1] < cands[j].key[1]
		})

		touched := make(map[int]bool)
		remap := make(map[int]int)
		remaining := len(tris)
		collapsed := 0
		for _, c := range cands {
			if remaining <= target {
				break
			}
			u, v := c.key[0], c.key[1]
			if touched[u] || touched[v] {
				continue
			}
			positions[u] = positions[u].Lerp(positions[v], 0.5)
			remap[v] = u
			touched[u], touched[v] = true, true
			remaining -= counts[c.key]
			collapsed++
		}
		if collapsed == 0 {
			break
		}

		next := tris[:0]
		for _, t := range tris {
			for i, idx := range t {
				if to, ok := remap[idx]; ok {
					t[i] = to
				}
			}
			if t[0] == t[1] || t[1] == t[2] || t[2] == t[0] {
				continue
			}
			next = append(next, t)
		}
		tris = next
	}

	out := compact(positions, tris)
	if out.IsEmpty() {
		return nil, fmt.Errorf("decimate: reduction left no geometry")
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("decimate: %w", err)
	}
	return out, nil
}

// compact rebuilds a mesh keeping only vertices referenced by triangles,
// renumbering indices densely in first-use order.
func compact(positions []geom.Vec3, tris []Tri) *TriangleMesh {
	out := New()
	index := make(map[int]int, len(positions))
	for _, t := range tris {
		var nt Tri
		for i, idx := range t {
			ni, ok := index[idx]
			if !ok {
				ni = len(out.Vertices)
				index[idx] = ni
				out.Vertices = append(out.Vertices, positions[idx])
			}
			nt[i] = ni
		}
		out.Triangles = append(out.Triangles, nt)
	}
	return out
}
