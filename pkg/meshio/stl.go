package meshio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/mesh"
)

// stlRecord is the 50-byte binary STL triangle layout.
type stlRecord struct {
	Normal [3]float32
	Verts  [3][3]float32
	Attr   uint16
}

// readSTL reads an STL stream, sniffing whether it is ascii or binary.
// Corner positions are welded into an indexed mesh, matching the usual
// mesh-library import behavior for STL soups.
func readSTL(r io.ReadSeeker) (*mesh.TriangleMesh, error) {
	header := make([]byte, 5)
	n, err := r.Read(header)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("stl: read header: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("stl: rewind: %w", err)
	}

	if n >= 5 && string(header[:5]) == "solid" {
		return readSTLASCII(r)
	}
	return readSTLBinary(r)
}

func readSTLASCII(r io.Reader) (*mesh.TriangleMesh, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var soup [][3]geom.Vec3
	var corners []geom.Vec3
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("stl: line %d: vertex needs 3 coordinates", line)
			}
			var v geom.Vec3
			var err error
			if v.X, err = strconv.ParseFloat(fields[1], 64); err == nil {
				if v.Y, err = strconv.ParseFloat(fields[2], 64); err == nil {
					v.Z, err = strconv.ParseFloat(fields[3], 64)
				}
			}
			if err != nil {
				return nil, fmt.Errorf("stl: line %d: bad coordinate: %w", line, err)
			}
			corners = append(corners, v)

		case "endfacet":
			if len(corners) != 3 {
				return nil, fmt.Errorf("stl: line %d: facet has %d vertices, want 3", line, len(corners))
			}
			soup = append(soup, [3]geom.Vec3{corners[0], corners[1], corners[2]})
			corners = corners[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stl: scan: %w", err)
	}

	return mesh.FromSoup(soup), nil
}

func readSTLBinary(r io.Reader) (*mesh.TriangleMesh, error) {
	br := bufio.NewReader(r)

	header := make([]byte, 80)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("stl: read binary header: %w", err)
	}

	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("stl: read triangle count: %w", err)
	}

	soup := make([][3]geom.Vec3, 0, count)
	for i := uint32(0); i < count; i++ {
		var rec stlRecord
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("stl: read triangle %d: %w", i, err)
		}
		var tri [3]geom.Vec3
		for j := 0; j < 3; j++ {
			tri[j] = geom.Vec3{
				X: float64(rec.Verts[j][0]),
				Y: float64(rec.Verts[j][1]),
				Z: float64(rec.Verts[j][2]),
			}
		}
		soup = append(soup, tri)
	}

	return mesh.FromSoup(soup), nil
}

// writeSTL writes the mesh as binary STL with recomputed face normals.
func writeSTL(m *mesh.TriangleMesh, w io.Writer) error {
	bw := bufio.NewWriter(w)

	var header [80]byte
	copy(header[:], "binary STL, written by polarbear")
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("stl: write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return fmt.Errorf("stl: write triangle count: %w", err)
	}

	for i, t := range m.Triangles {
		n := m.FaceNormal(i)
		rec := stlRecord{
			Normal: [3]float32{float32(n.X), float32(n.Y), float32(n.Z)},
		}
		for j := 0; j < 3; j++ {
			v := m.Vertices[t[j]]
			rec.Verts[j] = [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
		}
		if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("stl: write triangle %d: %w", i, err)
		}
	}

	return bw.Flush()
}
