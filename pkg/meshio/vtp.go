package meshio

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/mesh"
)

// VTP is the XML flavor of VTK polydata. Only inline ascii DataArray
// payloads are supported; appended or base64 binary payloads are rejected.

type vtpFile struct {
	XMLName   xml.Name    `xml:"VTKFile"`
	Type      string      `xml:"type,attr"`
	Version   string      `xml:"version,attr,omitempty"`
	ByteOrder string      `xml:"byte_order,attr,omitempty"`
	PolyData  vtpPolyData `xml:"PolyData"`
}

type vtpPolyData struct {
	Pieces []vtpPiece `xml:"Piece"`
}

type vtpPiece struct {
	NumberOfPoints int       `xml:"NumberOfPoints,attr"`
	NumberOfPolys  int       `xml:"NumberOfPolys,attr"`
	Points         vtpArrays `xml:"Points"`
	Polys          vtpArrays `xml:"Polys"`
}

type vtpArrays struct {
	Data []vtpDataArray `xml:"DataArray"`
}

type vtpDataArray struct {
	Type               string `xml:"type,attr"`
	Name               string `xml:"Name,attr,omitempty"`
	NumberOfComponents int    `xml:"NumberOfComponents,attr,omitempty"`
	Format             string `xml:"format,attr"`
	Value              string `xml:",chardata"`
}

// readVTP reads an XML VTP polydata stream.
func readVTP(r io.Reader) (*mesh.TriangleMesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("vtp: read: %w", err)
	}

	var file vtpFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("vtp: parse: %w", err)
	}
	if !strings.EqualFold(file.Type, "PolyData") {
		return nil, fmt.Errorf("vtp: unsupported dataset type %q", file.Type)
	}
	if len(file.PolyData.Pieces) == 0 {
		return nil, fmt.Errorf("vtp: no Piece element")
	}

	m := mesh.New()
	for pi, piece := range file.PolyData.Pieces {
		base := m.VertexCount()

		points, err := pieceArray(piece.Points, "Points", "")
		if err != nil {
			return nil, fmt.Errorf("vtp: piece %d: %w", pi, err)
		}
		coords, err := parseFloats(points.Value)
		if err != nil {
			return nil, fmt.Errorf("vtp: piece %d: points: %w", pi, err)
		}
		if len(coords)%3 != 0 {
			return nil, fmt.Errorf("vtp: piece %d: %d coordinates is not a multiple of 3", pi, len(coords))
		}
		for i := 0; i+2 < len(coords); i += 3 {
			m.Vertices = append(m.Vertices, geom.V(coords[i], coords[i+1], coords[i+2]))
		}

		conn, err := pieceArray(piece.Polys, "Polys", "connectivity")
		if err != nil {
			return nil, fmt.Errorf("vtp: piece %d: %w", pi, err)
		}
		offsets, err := pieceArray(piece.Polys, "Polys", "offsets")
		if err != nil {
			return nil, fmt.Errorf("vtp: piece %d: %w", pi, err)
		}
		connIdx, err := parseInts(conn.Value)
		if err != nil {
			return nil, fmt.Errorf("vtp: piece %d: connectivity: %w", pi, err)
		}
		offIdx, err := parseInts(offsets.Value)
		if err != nil {
			return nil, fmt.Errorf("vtp: piece %d: offsets: %w", pi, err)
		}

		start := 0
		for fi, end := range offIdx {
			if end < start || end > len(connIdx) {
				return nil, fmt.Errorf("vtp: piece %d: face %d: offset %d out of range", pi, fi, end)
			}
			corners := connIdx[start:end]
			if len(corners) < 3 {
				return nil, fmt.Errorf("vtp: piece %d: face %d has %d corners", pi, fi, len(corners))
			}
			for j := 1; j < len(corners)-1; j++ {
				m.Triangles = append(m.Triangles, mesh.Tri{
					base + corners[0],
					base + corners[j],
					base + corners[j+1],
				})
			}
			start = end
		}
	}

	return m, nil
}

// pieceArray finds a DataArray by name within a section and checks it is
// inline ascii. An empty name matches the first array in the section.
func pieceArray(section vtpArrays, sectionName, name string) (*vtpDataArray, error) {
	for i := range section.Data {
		da := &section.Data[i]
		if name != "" && !strings.EqualFold(da.Name, name) {
			continue
		}
		if !strings.EqualFold(da.Format, "ascii") {
			return nil, fmt.Errorf("%s %s: only ascii format is supported, got %q",
				sectionName, da.Name, da.Format)
		}
		return da, nil
	}
	return nil, fmt.Errorf("%s: missing DataArray %q", sectionName, name)
}

func parseFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// writeVTP writes the mesh as XML VTP polydata with ascii payloads.
func writeVTP(m *mesh.TriangleMesh, w io.Writer) error {
	var points, conn, offsets strings.Builder
	for _, v := range m.Vertices {
		fmt.Fprintf(&points, "%g %g %g\n", v.X, v.Y, v.Z)
	}
	for i, t := range m.Triangles {
		fmt.Fprintf(&conn, "%d %d %d\n", t[0], t[1], t[2])
		fmt.Fprintf(&offsets, "%d\n", (i+1)*3)
	}

	file := vtpFile{
		Type:      "PolyData",
		Version:   "1.0",
		ByteOrder: "LittleEndian",
		PolyData: vtpPolyData{
			Pieces: []vtpPiece{{
				NumberOfPoints: m.VertexCount(),
				NumberOfPolys:  m.TriangleCount(),
				Points: vtpArrays{Data: []vtpDataArray{{
					Type:               "Float64",
					Name:               "Points",
					NumberOfComponents: 3,
					Format:             "ascii",
					Value:              points.String(),
				}}},
				Polys: vtpArrays{Data: []vtpDataArray{
					{
						Type:   "Int64",
						Name:   "connectivity",
						Format: "ascii",
						Value:  conn.String(),
					},
					{
						Type:   "Int64",
						Name:   "offsets",
						Format: "ascii",
						Value:  offsets.String(),
					},
				}},
			}},
		},
	}

	out, err := xml.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("vtp: marshal: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("vtp: write: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("vtp: write: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("vtp: write: %w", err)
	}
	return nil
}
