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

// readPLY reads an ascii PLY stream. Binary PLY variants are rejected.
// Extra vertex properties beyond x/y/z are tolerated and skipped; faces
// with more than three corners are fan-triangulated.
func readPLY(r io.Reader) (*mesh.TriangleMesh, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	readLine := func() (string, bool) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "comment") {
				return line, true
			}
		}
		return "", false
	}

	line, ok := readLine()
	if !ok || line != "ply" {
		return nil, fmt.Errorf("ply: missing magic, got %q", line)
	}

	vertexCount := -1
	faceCount := -1
	xProp, yProp, zProp := -1, -1, -1
	vertexProps := 0
	currentElement := ""

header:
	for {
		line, ok = readLine()
		if !ok {
			return nil, fmt.Errorf("ply: unexpected end of header")
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("ply: only ascii format is supported, got %q", line)
			}
		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("ply: malformed element line %q", line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("ply: element count: %w", err)
			}
			currentElement = fields[1]
			switch currentElement {
			case "vertex":
				vertexCount = n
			case "face":
				faceCount = n
			}
		case "property":
			if currentElement == "vertex" && len(fields) >= 3 && fields[1] != "list" {
				switch fields[2] {
				case "x":
					xProp = vertexProps
				case "y":
					yProp = vertexProps
				case "z":
					zProp = vertexProps
				}
				vertexProps++
			}
		case "end_header":
			break header
		}
	}

	if vertexCount < 0 || faceCount < 0 {
		return nil, fmt.Errorf("ply: header lacks vertex or face element")
	}
	if xProp < 0 || yProp < 0 || zProp < 0 {
		return nil, fmt.Errorf("ply: vertex element lacks x/y/z properties")
	}

	m := mesh.New()
	m.Vertices = make([]geom.Vec3, 0, vertexCount)

	for i := 0; i < vertexCount; i++ {
		line, ok = readLine()
		if !ok {
			return nil, fmt.Errorf("ply: vertex %d: unexpected end of file", i)
		}
		fields := strings.Fields(line)
		if len(fields) < vertexProps {
			return nil, fmt.Errorf("ply: vertex %d: %d properties, header declared %d",
				i, len(fields), vertexProps)
		}
		var v geom.Vec3
		var err error
		if v.X, err = strconv.ParseFloat(fields[xProp], 64); err == nil {
			if v.Y, err = strconv.ParseFloat(fields[yProp], 64); err == nil {
				v.Z, err = strconv.ParseFloat(fields[zProp], 64)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("ply: vertex %d: bad coordinate: %w", i, err)
		}
		m.Vertices = append(m.Vertices, v)
	}

	for i := 0; i < faceCount; i++ {
		line, ok = readLine()
		if !ok {
			return nil, fmt.Errorf("ply: face %d: unexpected end of file", i)
		}
		fields := strings.Fields(line)
		if len(fields) < 1 {
			return nil, fmt.Errorf("ply: face %d: empty line", i)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 3 || len(fields) < 1+n {
			return nil, fmt.Errorf("ply: face %d: malformed corner list %q", i, line)
		}
		corners := make([]int, n)
		for j := 0; j < n; j++ {
			idx, err := strconv.Atoi(fields[1+j])
			if err != nil {
				return nil, fmt.Errorf("ply: face %d: bad index: %w", i, err)
			}
			if idx < 0 || idx >= len(m.Vertices) {
				return nil, fmt.Errorf("ply: face %d: index %d out of range", i, idx)
			}
			corners[j] = idx
		}
		for j := 1; j < n-1; j++ {
			m.Triangles = append(m.Triangles, mesh.Tri{corners[0], corners[j], corners[j+1]})
		}
	}

	return m, nil
}

// writePLY writes the mesh as ascii PLY.
func writePLY(m *mesh.TriangleMesh, w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintln(bw, "comment written by polarbear")
	fmt.Fprintf(bw, "element vertex %d\n", m.VertexCount())
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	fmt.Fprintf(bw, "element face %d\n", m.TriangleCount())
	fmt.Fprintln(bw, "property list uchar int vertex_indices")
	fmt.Fprintln(bw, "end_header")

	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "3 %d %d %d\n", t[0], t[1], t[2])
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("ply: write: %w", err)
	}
	return nil
}
