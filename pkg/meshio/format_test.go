package meshio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/mesh"
)

// cubeMesh returns a unit cube with 8 vertices and 12 triangles, wound
// outward.
func cubeMesh() *mesh.TriangleMesh {
	m := mesh.New()
	m.Vertices = []geom.Vec3{
		geom.V(0, 0, 0), geom.V(1, 0, 0), geom.V(1, 1, 0), geom.V(0, 1, 0),
		geom.V(0, 0, 1), geom.V(1, 0, 1), geom.V(1, 1, 1), geom.V(0, 1, 1),
	}
	m.Triangles = []mesh.Tri{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{2, 3, 7}, {2, 7, 6},
		{0, 4, 7}, {0, 7, 3},
		{1, 2, 6}, {1, 6, 5},
	}
	return m
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path string
		want Format
	}{
		{"part.stl", FormatSTL},
		{"PART.STL", FormatSTL},
		{"model.obj", FormatOBJ},
		{"scan.ply", FormatPLY},
		{"grid.vtk", FormatVTK},
		{"grid.vtp", FormatVTP},
		{"/tmp/nested/deep.Stl", FormatSTL},
		{"noextension", FormatUnknown},
		{"archive.zip", FormatUnknown},
		{"shape.step", FormatUnknown},
	}
	for _, tc := range cases {
		if got := DetectFormat(tc.path); got != tc.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestFormatString(t *testing.T) {
	cases := []struct {
		format Format
		want   string
	}{
		{FormatSTL, "stl"},
		{FormatOBJ, "obj"},
		{FormatPLY, "ply"},
		{FormatVTK, "vtk"},
		{FormatVTP, "vtp"},
		{FormatUnknown, "unknown"},
	}
	for _, tc := range cases {
		if got := tc.format.String(); got != tc.want {
			t.Errorf("Format(%d).String() = %q, want %q", int(tc.format), got, tc.want)
		}
	}
}

func TestImportUnknownExtension(t *testing.T) {
	_, err := Import("shape.step")
	var ierr *ImportError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *ImportError, got %v", err)
	}
	if ierr.Kind != UnsupportedFormat {
		t.Errorf("kind = %v, want UnsupportedFormat", ierr.Kind)
	}
}

func TestImportMissingFile(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "missing.stl"))
	var ierr *ImportError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *ImportError, got %v", err)
	}
	if ierr.Kind != ReadFailed {
		t.Errorf("kind = %v, want ReadFailed", ierr.Kind)
	}
}

func TestImportFileWithoutTriangles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.stl")
	if err := os.WriteFile(path, []byte("solid empty\nendsolid empty\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Import(path)
	var ierr *ImportError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *ImportError, got %v", err)
	}
	if ierr.Kind != ReadFailed {
		t.Errorf("kind = %v, want ReadFailed", ierr.Kind)
	}
}

func TestExportNoGeometry(t *testing.T) {
	for _, m := range []*mesh.TriangleMesh{nil, mesh.New()} {
		err := Export(m, filepath.Join(t.TempDir(), "out.stl"))
		var eerr *ExportError
		if !errors.As(err, &eerr) {
			t.Fatalf("expected *ExportError, got %v", err)
		}
		if eerr.Kind != NoGeometry {
			t.Errorf("kind = %v, want NoGeometry", eerr.Kind)
		}
	}
}

func TestExportUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dat")
	err := Export(cubeMesh(), path)
	var eerr *ExportError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected *ExportError, got %v", err)
	}
	if eerr.Kind != FormatMismatch {
		t.Errorf("kind = %v, want FormatMismatch", eerr.Kind)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("no file should be created on format mismatch")
	}
}

func TestRoundtripAllFormats(t *testing.T) {
	src := cubeMesh()
	dir := t.TempDir()

	for _, ext := range []string{".stl", ".obj", ".ply", ".vtk", ".vtp"} {
		path := filepath.Join(dir, "cube"+ext)
		if err := Export(src, path); err != nil {
			t.Fatalf("%s: export: %v", ext, err)
		}
		got, err := Import(path)
		if err != nil {
			t.Fatalf("%s: import: %v", ext, err)
		}
		if got.VertexCount() != src.VertexCount() {
			t.Errorf("%s: %d vertices, want %d", ext, got.VertexCount(), src.VertexCount())
		}
		if got.TriangleCount() != src.TriangleCount() {
			t.Errorf("%s: %d triangles, want %d", ext, got.TriangleCount(), src.TriangleCount())
		}
		if err := got.Validate(); err != nil {
			t.Errorf("%s: invalid mesh after roundtrip: %v", ext, err)
		}

		gotMin, gotMax := got.Bounds()
		srcMin, srcMax := src.Bounds()
		if !vecNear(gotMin, srcMin) || !vecNear(gotMax, srcMax) {
			t.Errorf("%s: bounds [%v %v], want [%v %v]", ext, gotMin, gotMax, srcMin, srcMax)
		}
	}
}

func vecNear(a, b geom.Vec3) bool {
	const eps = 1e-6
	return a.Sub(b).Length() < eps
}

func TestImportErrorString(t *testing.T) {
	err := &ImportError{Kind: ReadFailed, Path: "a.stl", Err: errors.New("boom")}
	want := "import a.stl: read failed: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestExportErrorString(t *testing.T) {
	err := &ExportError{Kind: NoGeometry, Path: "b.obj", Err: errors.New("no mesh")}
	want := "export b.obj: no geometry: no mesh"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
