package meshio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/mesh"
)

func TestReadPLYTriangle(t *testing.T) {
	const src = `ply
format ascii 1.0
comment made by hand
element vertex 3
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0
3 0 1 2
`
	m, err := readPLY(strings.NewReader(src))
	if err != nil {
		t.Fatalf("readPLY: %v", err)
	}
	if m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Errorf("got %d vertices / %d triangles, want 3 / 1",
			m.VertexCount(), m.TriangleCount())
	}
}

func TestReadPLYPropertyOrder(t *testing.T) {
	// x/y/z need not be the leading vertex properties. Extra columns are
	// skipped.
	const src = `ply
format ascii 1.0
element vertex 3
property float confidence
property float x
property float y
property float z
property uchar red
element face 1
property list uchar int vertex_indices
end_header
0.9 10 20 30 255
0.8 11 21 31 255
0.7 12 22 32 255
3 0 1 2
`
	m, err := readPLY(strings.NewReader(src))
	if err != nil {
		t.Fatalf("readPLY: %v", err)
	}
	want := []geom.Vec3{
		geom.V(10, 20, 30),
		geom.V(11, 21, 31),
		geom.V(12, 22, 32),
	}
	if diff := cmp.Diff(want, m.Vertices); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPLYQuadFan(t *testing.T) {
	const src = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 2 3
`
	m, err := readPLY(strings.NewReader(src))
	if err != nil {
		t.Fatalf("readPLY: %v", err)
	}
	want := []mesh.Tri{{0, 1, 2}, {0, 2, 3}}
	if diff := cmp.Diff(want, m.Triangles); diff != "" {
		t.Errorf("fan triangulation mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPLYErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "not ply",
			src:  "obj\n",
			want: "missing magic",
		},
		{
			name: "binary format",
			src:  "ply\nformat binary_little_endian 1.0\nend_header\n",
			want: "only ascii",
		},
		{
			name: "missing z property",
			src: "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\n" +
				"property float y\nelement face 1\n" +
				"property list uchar int vertex_indices\nend_header\n0 0\n3 0 0 0\n",
			want: "lacks x/y/z",
		},
		{
			name: "no elements",
			src:  "ply\nformat ascii 1.0\nend_header\n",
			want: "lacks vertex or face element",
		},
		{
			name: "face index out of range",
			src: "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\n" +
				"property float y\nproperty float z\nelement face 1\n" +
				"property list uchar int vertex_indices\nend_header\n0 0 0\n3 0 1 2\n",
			want: "out of range",
		},
		{
			name: "truncated vertices",
			src: "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\n" +
				"property float y\nproperty float z\nelement face 1\n" +
				"property list uchar int vertex_indices\nend_header\n0 0 0\n",
			want: "unexpected end of file",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readPLY(strings.NewReader(tc.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestPLYRoundtrip(t *testing.T) {
	src := cubeMesh()

	var buf bytes.Buffer
	if err := writePLY(src, &buf); err != nil {
		t.Fatalf("writePLY: %v", err)
	}
	got, err := readPLY(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("readPLY: %v", err)
	}

	if diff := cmp.Diff(src.Vertices, got.Vertices); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(src.Triangles, got.Triangles); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%s", diff)
	}
}
