package mesh

import (
	"fmt"
	"math"

	"github.com/zimin2020/polarbear/pkg/geom"
)

// weldTolerance is the distance below which clip vertices are considered
// the same point, both for index welding and contour chaining.
const weldTolerance = 1e-6

// ClipByPlane returns the part of the mesh on the negative side of the
// plane (the side the normal points away from). Crossing triangles are
// split at the plane and the opening is capped with ear-clipped polygons
// so the section face appears solid. Scalar fields do not carry over. The
// input mesh is never modified. Clipping everything away yields an empty
// mesh, not an error.
func ClipByPlane(m *TriangleMesh, pl geom.Plane) (*TriangleMesh, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("clip: empty mesh")
	}

	b := newMeshBuilder()
	var cuts [][2]geom.Vec3

	for _, t := range m.Triangles {
		v := [3]geom.Vec3{m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]}
		var d [3]float64
		inside := 0
		for i := 0; i < 3; i++ {
			d[i] = pl.SignedDistance(v[i])
			if d[i] <= 0 {
				inside++
			}
		}

		switch inside {
		case 3:
			b.addTriangle(v[0], v[1], v[2])
		case 0:
			// dropped
		case 1:
			i := 0
			for ; i < 3; i++ {
				if d[i] <= 0 {
					break
				}
			}
			v0, v1, v2 := v[i], v[(i+1)%3], v[(i+2)%3]
			d0, d1, d2 := d[i], d[(i+1)%3], d[(i+2)%3]
			p1 := v0.Lerp(v1, d0/(d0-d1))
			p2 := v0.Lerp(v2, d0/(d0-d2))
			b.addTriangle(v0, p1, p2)
			cuts = append(cuts, [2]geom.Vec3{p1, p2})
		case 2:
			i := 0
			for ; i < 3; i++ {
				if d[i] > 0 {
					break
				}
			}
			v0, v1, v2 := v[i], v[(i+1)%3], v[(i+2)%3]
			d0, d1, d2 := d[i], d[(i+1)%3], d[(i+2)%3]
			p1 := v0.Lerp(v1, d0/(d0-d1))
			p2 := v0.Lerp(v2, d0/(d0-d2))
			// The kept quad, split along p1-v2.
			b.addTriangle(v1, v2, p1)
			b.addTriangle(v2, p2, p1)
			cuts = append(cuts, [2]geom.Vec3{p2, p1})
		}
	}

	for _, contour := range chainContours(cuts) {
		for _, tri := range earClip(contour) {
			// Cap faces point out of the kept half, along the plane normal.
			n := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
			if n.Dot(pl.Normal) < 0 {
				tri[1], tri[2] = tri[2], tri[1]
			}
			b.addTriangle(tri[0], tri[1], tri[2])
		}
	}

	out := b.mesh()
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("clip: %w", err)
	}
	return out, nil
}

// meshBuilder accumulates triangles, welding coincident vertices.
type meshBuilder struct {
	m     *TriangleMesh
	index map[[3]int64]int
}

func newMeshBuilder() *meshBuilder {
	return &meshBuilder{m: New(), index: make(map[[3]int64]int)}
}

func (b *meshBuilder) vertex(p geom.Vec3) int {
	key := [3]int64{
		int64(math.Round(p.X / weldTolerance)),
		int64(math.Round(p.Y / weldTolerance)),
		int64(math.Round(p.Z / weldTolerance)),
	}
	if i, ok := b.index[key]; ok {
		return i
	}
	i := len(b.m.Vertices)
	b.index[key] = i
	b.m.Vertices = append(b.m.Vertices, p)
	return i
}

func (b *meshBuilder) addTriangle(p0, p1, p2 geom.Vec3) {
	i0, i1, i2 := b.vertex(p0), b.vertex(p1), b.vertex(p2)
	if i0 == i1 || i1 == i2 || i2 == i0 {
		return
	}
	b.m.Triangles = append(b.m.Triangles, Tri{i0, i1, i2})
}

func (b *meshBuilder) mesh() *TriangleMesh {
	return b.m
}

// chainContours orders unordered cut segments into closed loops by matching
// endpoints within the weld tolerance. Open chains are dropped.
func chainContours(cuts [][2]geom.Vec3) [][]geom.Vec3 {
	same := func(a, b geom.Vec3) bool {
		return a.Sub(b).Length() < weldTolerance
	}

	unused := make([][2]geom.Vec3, len(cuts))
	copy(unused, cuts)
	var contours [][]geom.Vec3

	for len(unused) > 0 {
		contour := []geom.Vec3{unused[0][0], unused[0][1]}
		unused = unused[1:]
		closed := false

		for limit := len(cuts) * 2; limit > 0 && len(unused) > 0; limit-- {
			last := contour[len(contour)-1]
			found := false
			for j, seg := range unused {
				var next geom.Vec3
				if same(seg[0], last) {
					next = seg[1]
				} else if same(seg[1], last) {
					next = seg[0]
				} else {
					continue
				}
				unused = append(unused[:j], unused[j+1:]...)
				if same(next, contour[0]) {
					closed = true
				} else {
					contour = append(contour, next)
				}
				found = true
				break
			}
			if closed || !found {
				break
			}
		}

		if closed && len(contour) >= 3 {
			contours = append(contours, contour)
		}
	}
	return contours
}

// earClip triangulates a simple planar polygon by ear clipping, projecting
// to 2D along the polygon's dominant normal axis. On pathological input it
// falls back to a fan so the cap is never left open.
func earClip(polygon []geom.Vec3) [][3]geom.Vec3 {
	if len(polygon) < 3 {
		return nil
	}
	if len(polygon) == 3 {
		return [][3]geom.Vec3{{polygon[0], polygon[1], polygon[2]}}
	}

	normal := polygonNormal(polygon)
	ax, ay, az := math.Abs(normal.X), math.Abs(normal.Y), math.Abs(normal.Z)
	project := func(v geom.Vec3) (float64, float64) {
		switch {
		case ax >= ay && ax >= az:
			return v.Y, v.Z
		case ay >= ax && ay >= az:
			return v.X, v.Z
		default:
			return v.X, v.Y
		}
	}

	indices := make([]int, len(polygon))
	for i := range indices {
		indices[i] = i
	}
	// Make the projected polygon counter-clockwise so convexity tests agree.
	if signedArea2D(polygon, indices, project) < 0 {
		for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
			indices[i], indices[j] = indices[j], indices[i]
		}
	}

	var tris [][3]geom.Vec3
	for len(indices) > 3 {
		clipped := false
		for i := range indices {
			if !isEar(polygon, indices, i, project) {
				continue
			}
			n := len(indices)
			prev := indices[(i-1+n)%n]
			curr := indices[i]
			next := indices[(i+1)%n]
			tris = append(tris, [3]geom.Vec3{polygon[prev], polygon[curr], polygon[next]})
			indices = append(indices[:i], indices[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			for i := 1; i < len(indices)-1; i++ {
				tris = append(tris, [3]geom.Vec3{
					polygon[indices[0]], polygon[indices[i]], polygon[indices[i+1]],
				})
			}
			return tris
		}
	}
	tris = append(tris, [3]geom.Vec3{polygon[indices[0]], polygon[indices[1]], polygon[indices[2]]})
	return tris
}

func polygonNormal(polygon []geom.Vec3) geom.Vec3 {
	// Newell's method: stable for slightly non-planar loops.
	var n geom.Vec3
	for i, cur := range polygon {
		next := polygon[(i+1)%len(polygon)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

func signedArea2D(polygon []geom.Vec3, indices []int, project func(geom.Vec3) (float64, float64)) float64 {
	area := 0.0
	for i := range indices {
		x0, y0 := project(polygon[indices[i]])
		x1, y1 := project(polygon[indices[(i+1)%len(indices)]])
		area += x0*y1 - x1*y0
	}
	return area / 2
}

func isEar(polygon []geom.Vec3, indices []int, i int, project func(geom.Vec3) (float64, float64)) bool {
	n := len(indices)
	prev := indices[(i-1+n)%n]
	curr := indices[i]
	next := indices[(i+1)%n]

	ax, ay := project(polygon[prev])
	bx, by := project(polygon[curr])
	cx, cy := project(polygon[next])

	cross := (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
	if cross <= 0 {
		return false
	}

	for _, idx := range indices {
		if idx == prev || idx == curr || idx == next {
			continue
		}
		px, py := project(polygon[idx])
		if pointInTriangle2D(px, py, ax, ay, bx, by, cx, cy) {
			return false
		}
	}
	return true
}

func pointInTriangle2D(px, py, ax, ay, bx, by, cx, cy float64) bool {
	sign := func(x1, y1, x2, y2, x3, y3 float64) float64 {
		return (x1-x3)*(y2-y3) - (x2-x3)*(y1-y3)
	}
	d1 := sign(px, py, ax, ay, bx, by)
	d2 := sign(px, py, bx, by, cx, cy)
	d3 := sign(px, py, cx, cy, ax, ay)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
