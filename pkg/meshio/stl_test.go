package meshio

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/zimin2020/polarbear/pkg/mesh"
)

// asciiSTL renders a mesh as ascii STL text for parser tests.
func asciiSTL(m *mesh.TriangleMesh) string {
	var b strings.Builder
	b.WriteString("solid test\n")
	for _, t := range m.Triangles {
		b.WriteString("facet normal 0 0 0\n")
		b.WriteString(" outer loop\n")
		for _, idx := range t {
			v := m.Vertices[idx]
			fmt.Fprintf(&b, "  vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		b.WriteString(" endloop\n")
		b.WriteString("endfacet\n")
	}
	b.WriteString("endsolid test\n")
	return b.String()
}

func TestReadSTLASCIISingleFacet(t *testing.T) {
	const src = `solid tri
facet normal 0 0 1
 outer loop
  vertex 0 0 0
  vertex 1 0 0
  vertex 0 1 0
 endloop
endfacet
endsolid tri
`
	m, err := readSTL(strings.NewReader(src))
	if err != nil {
		t.Fatalf("readSTL: %v", err)
	}
	if m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Errorf("got %d vertices / %d triangles, want 3 / 1",
			m.VertexCount(), m.TriangleCount())
	}
}

func TestReadSTLASCIIWeldsSharedCorners(t *testing.T) {
	// Two facets sharing an edge describe a quad: 6 soup corners weld
	// down to 4 vertices.
	const src = `solid quad
facet normal 0 0 1
 outer loop
  vertex 0 0 0
  vertex 1 0 0
  vertex 1 1 0
 endloop
endfacet
facet normal 0 0 1
 outer loop
  vertex 0 0 0
  vertex 1 1 0
  vertex 0 1 0
 endloop
endfacet
endsolid quad
`
	m, err := readSTL(strings.NewReader(src))
	if err != nil {
		t.Fatalf("readSTL: %v", err)
	}
	if m.VertexCount() != 4 {
		t.Errorf("got %d vertices, want 4 after welding", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("got %d triangles, want 2", m.TriangleCount())
	}
}

func TestReadSTLASCIIWholeCube(t *testing.T) {
	m, err := readSTL(strings.NewReader(asciiSTL(cubeMesh())))
	if err != nil {
		t.Fatalf("readSTL: %v", err)
	}
	if m.VertexCount() != 8 || m.TriangleCount() != 12 {
		t.Errorf("got %d vertices / %d triangles, want 8 / 12",
			m.VertexCount(), m.TriangleCount())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("welded cube invalid: %v", err)
	}
}

func TestReadSTLASCIIErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "short facet",
			src: "solid s\nfacet normal 0 0 1\n outer loop\n" +
				"  vertex 0 0 0\n  vertex 1 0 0\n endloop\nendfacet\n",
			want: "facet has 2 vertices",
		},
		{
			name: "bad coordinate",
			src:  "solid s\nfacet\n outer loop\n  vertex 0 0 bogus\n",
			want: "bad coordinate",
		},
		{
			name: "missing coordinate",
			src:  "solid s\nfacet\n outer loop\n  vertex 0 0\n",
			want: "vertex needs 3 coordinates",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readSTL(strings.NewReader(tc.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestSTLBinaryRoundtrip(t *testing.T) {
	src := cubeMesh()

	var buf bytes.Buffer
	if err := writeSTL(src, &buf); err != nil {
		t.Fatalf("writeSTL: %v", err)
	}
	// 80-byte header, 4-byte count, 50 bytes per triangle.
	if want := 84 + 50*src.TriangleCount(); buf.Len() != want {
		t.Errorf("binary size = %d, want %d", buf.Len(), want)
	}

	got, err := readSTL(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("readSTL: %v", err)
	}
	if got.VertexCount() != 8 || got.TriangleCount() != 12 {
		t.Errorf("got %d vertices / %d triangles, want 8 / 12",
			got.VertexCount(), got.TriangleCount())
	}
}

func TestReadSTLBinaryTruncated(t *testing.T) {
	src := cubeMesh()
	var buf bytes.Buffer
	if err := writeSTL(src, &buf); err != nil {
		t.Fatalf("writeSTL: %v", err)
	}

	_, err := readSTL(bytes.NewReader(buf.Bytes()[:buf.Len()-10]))
	if err == nil {
		t.Fatal("expected error for truncated binary STL")
	}
}
