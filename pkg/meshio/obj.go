package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/mesh"
)

// readOBJ reads a Wavefront OBJ stream. Only geometry is kept: v and f
// statements. Faces with more than three corners are fan-triangulated;
// texture and normal references (f v/vt/vn) are ignored.
func readOBJ(r io.Reader) (*mesh.TriangleMesh, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	m := mesh.New()
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: v needs 3 coordinates", line)
			}
			var v geom.Vec3
			var err error
			if v.X, err = strconv.ParseFloat(fields[1], 64); err == nil {
				if v.Y, err = strconv.ParseFloat(fields[2], 64); err == nil {
					v.Z, err = strconv.ParseFloat(fields[3], 64)
				}
			}
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: bad coordinate: %w", line, err)
			}
			m.Vertices = append(m.Vertices, v)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: face needs at least 3 corners", line)
			}
			corners := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idx, err := objIndex(tok, len(m.Vertices))
				if err != nil {
					return nil, fmt.Errorf("obj: line %d: %w", line, err)
				}
				corners = append(corners, idx)
			}
			for i := 1; i < len(corners)-1; i++ {
				m.Triangles = append(m.Triangles, mesh.Tri{corners[0], corners[i], corners[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj: scan: %w", err)
	}

	return m, nil
}

// objIndex resolves one face corner token to a 0-based vertex index.
// OBJ indices are 1-based; negative values count back from the most
// recently read vertex.
func objIndex(tok string, vertexCount int) (int, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q: %w", tok, err)
	}
	switch {
	case n > 0:
		if n > vertexCount {
			return 0, fmt.Errorf("face index %d exceeds %d vertices", n, vertexCount)
		}
		return n - 1, nil
	case n < 0:
		idx := vertexCount + n
		if idx < 0 {
			return 0, fmt.Errorf("relative face index %d reaches before the first vertex", n)
		}
		return idx, nil
	}
	return 0, fmt.Errorf("face index must not be zero")
}

// writeOBJ writes the mesh as Wavefront OBJ.
func writeOBJ(m *mesh.TriangleMesh, w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# polarbear mesh: %d vertices, %d triangles\n",
		m.VertexCount(), m.TriangleCount())
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("obj: write: %w", err)
	}
	return nil
}
