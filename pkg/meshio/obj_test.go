package meshio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zimin2020/polarbear/pkg/mesh"
)

func TestReadOBJTriangle(t *testing.T) {
	const src = `# a single triangle
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`
	m, err := readOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("readOBJ: %v", err)
	}
	want := []mesh.Tri{{0, 1, 2}}
	if diff := cmp.Diff(want, m.Triangles); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%s", diff)
	}
}

func TestReadOBJQuadFan(t *testing.T) {
	const src = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	m, err := readOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("readOBJ: %v", err)
	}
	want := []mesh.Tri{{0, 1, 2}, {0, 2, 3}}
	if diff := cmp.Diff(want, m.Triangles); diff != "" {
		t.Errorf("fan triangulation mismatch (-want +got):\n%s", diff)
	}
}

func TestReadOBJSlashReferences(t *testing.T) {
	// Texture and normal references are ignored, only the vertex index
	// before the first slash counts.
	const src = `v 0 0 0
v 1 0 0
v 0 1 0
f 1/1/1 2/2/2 3//3
`
	m, err := readOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("readOBJ: %v", err)
	}
	want := []mesh.Tri{{0, 1, 2}}
	if diff := cmp.Diff(want, m.Triangles); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%s", diff)
	}
}

func TestReadOBJNegativeIndices(t *testing.T) {
	const src = `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	m, err := readOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("readOBJ: %v", err)
	}
	want := []mesh.Tri{{0, 1, 2}}
	if diff := cmp.Diff(want, m.Triangles); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%s", diff)
	}
}

func TestReadOBJErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", "must not be zero"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n", "exceeds"},
		{"negative out of range", "v 0 0 0\nf -2 -1 -1\n", "before the first vertex"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", "at least 3 corners"},
		{"bad coordinate", "v 0 zero 0\n", "bad coordinate"},
		{"short vertex", "v 0 0\n", "v needs 3 coordinates"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readOBJ(strings.NewReader(tc.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestOBJRoundtrip(t *testing.T) {
	src := cubeMesh()

	var buf bytes.Buffer
	if err := writeOBJ(src, &buf); err != nil {
		t.Fatalf("writeOBJ: %v", err)
	}
	got, err := readOBJ(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("readOBJ: %v", err)
	}

	if diff := cmp.Diff(src.Vertices, got.Vertices); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(src.Triangles, got.Triangles); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%s", diff)
	}
}
