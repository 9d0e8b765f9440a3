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

// readVTK reads a legacy-format VTK polydata stream (ascii only). The
// POINTS and POLYGONS sections are consumed; trailing attribute sections
// such as POINT_DATA are ignored.
func readVTK(r io.Reader) (*mesh.TriangleMesh, error) {
	br := bufio.NewReader(r)

	readHeaderLine := func() (string, error) {
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	magic, err := readHeaderLine()
	if err != nil || !strings.HasPrefix(magic, "# vtk DataFile") {
		return nil, fmt.Errorf("vtk: missing magic line, got %q", magic)
	}
	if _, err := readHeaderLine(); err != nil { // title, ignored
		return nil, fmt.Errorf("vtk: missing title line")
	}
	encoding, err := readHeaderLine()
	if err != nil || strings.ToUpper(encoding) != "ASCII" {
		return nil, fmt.Errorf("vtk: only ASCII encoding is supported, got %q", encoding)
	}
	dataset, err := readHeaderLine()
	if err != nil || !strings.HasPrefix(strings.ToUpper(dataset), "DATASET POLYDATA") {
		return nil, fmt.Errorf("vtk: expected DATASET POLYDATA, got %q", dataset)
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)

	next := func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return scanner.Text(), nil
	}
	nextInt := func() (int, error) {
		w, err := next()
		if err != nil {
			return 0, err
		}
		return strconv.Atoi(w)
	}
	nextFloat := func() (float64, error) {
		w, err := next()
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(w, 64)
	}

	kw, err := next()
	if err != nil || strings.ToUpper(kw) != "POINTS" {
		return nil, fmt.Errorf("vtk: expected POINTS section, got %q", kw)
	}
	pointCount, err := nextInt()
	if err != nil {
		return nil, fmt.Errorf("vtk: point count: %w", err)
	}
	if _, err := next(); err != nil { // scalar type, ignored
		return nil, fmt.Errorf("vtk: points type: %w", err)
	}

	m := mesh.New()
	m.Vertices = make([]geom.Vec3, 0, pointCount)
	for i := 0; i < pointCount; i++ {
		var v geom.Vec3
		if v.X, err = nextFloat(); err == nil {
			if v.Y, err = nextFloat(); err == nil {
				v.Z, err = nextFloat()
			}
		}
		if err != nil {
			return nil, fmt.Errorf("vtk: point %d: %w", i, err)
		}
		m.Vertices = append(m.Vertices, v)
	}

	kw, err = next()
	if err != nil || strings.ToUpper(kw) != "POLYGONS" {
		return nil, fmt.Errorf("vtk: expected POLYGONS section, got %q", kw)
	}
	polyCount, err := nextInt()
	if err != nil {
		return nil, fmt.Errorf("vtk: polygon count: %w", err)
	}
	if _, err := nextInt(); err != nil { // total index count, ignored
		return nil, fmt.Errorf("vtk: polygon size: %w", err)
	}

	for i := 0; i < polyCount; i++ {
		n, err := nextInt()
		if err != nil || n < 3 {
			return nil, fmt.Errorf("vtk: polygon %d: bad corner count", i)
		}
		corners := make([]int, n)
		for j := 0; j < n; j++ {
			idx, err := nextInt()
			if err != nil {
				return nil, fmt.Errorf("vtk: polygon %d: %w", i, err)
			}
			if idx < 0 || idx >= len(m.Vertices) {
				return nil, fmt.Errorf("vtk: polygon %d: index %d out of range", i, idx)
			}
			corners[j] = idx
		}
		for j := 1; j < n-1; j++ {
			m.Triangles = append(m.Triangles, mesh.Tri{corners[0], corners[j], corners[j+1]})
		}
	}

	return m, nil
}

// writeVTK writes the mesh as legacy-format ascii VTK polydata.
func writeVTK(m *mesh.TriangleMesh, w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# vtk DataFile Version 3.0")
	fmt.Fprintln(bw, "polarbear mesh")
	fmt.Fprintln(bw, "ASCII")
	fmt.Fprintln(bw, "DATASET POLYDATA")

	fmt.Fprintf(bw, "POINTS %d float\n", m.VertexCount())
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%g %g %g\n", v.X, v.Y, v.Z)
	}

	fmt.Fprintf(bw, "POLYGONS %d %d\n", m.TriangleCount(), m.TriangleCount()*4)
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "3 %d %d %d\n", t[0], t[1], t[2])
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("vtk: write: %w", err)
	}
	return nil
}
