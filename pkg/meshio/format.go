// Package meshio reads and writes polygon mesh files. It supports STL
// (ascii and binary), OBJ, PLY (ascii), legacy VTK polydata, and VTP XML
// polydata, plus an external-converter fallback for parametric formats no
// in-process backend can triangulate.
package meshio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zimin2020/polarbear/pkg/mesh"
)

// Format identifies a mesh file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatSTL
	FormatOBJ
	FormatPLY
	FormatVTK
	FormatVTP
)

func (f Format) String() string {
	switch f {
	case FormatSTL:
		return "stl"
	case FormatOBJ:
		return "obj"
	case FormatPLY:
		return "ply"
	case FormatVTK:
		return "vtk"
	case FormatVTP:
		return "vtp"
	}
	return "unknown"
}

// DetectFormat maps a file path to its mesh format by extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return FormatSTL
	case ".obj":
		return FormatOBJ
	case ".ply":
		return FormatPLY
	case ".vtk":
		return FormatVTK
	case ".vtp":
		return FormatVTP
	}
	return FormatUnknown
}

// Import reads a mesh file, detecting the format from the extension.
// Failures are reported as *ImportError.
func Import(path string) (*mesh.TriangleMesh, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, &ImportError{
			Kind: UnsupportedFormat,
			Path: path,
			Err:  fmt.Errorf("unrecognized extension %q", filepath.Ext(path)),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ImportError{Kind: ReadFailed, Path: path, Err: err}
	}
	defer f.Close()

	var m *mesh.TriangleMesh
	switch format {
	case FormatSTL:
		m, err = readSTL(f)
	case FormatOBJ:
		m, err = readOBJ(f)
	case FormatPLY:
		m, err = readPLY(f)
	case FormatVTK:
		m, err = readVTK(f)
	case FormatVTP:
		m, err = readVTP(f)
	}
	if err != nil {
		return nil, &ImportError{Kind: ReadFailed, Path: path, Err: err}
	}

	if m.IsEmpty() {
		return nil, &ImportError{
			Kind: ReadFailed,
			Path: path,
			Err:  fmt.Errorf("file contains no triangles"),
		}
	}
	if err := m.Validate(); err != nil {
		return nil, &ImportError{Kind: ReadFailed, Path: path, Err: err}
	}
	return m, nil
}

// Export writes the mesh to a file, detecting the format from the
// extension. Failures are reported as *ExportError.
func Export(m *mesh.TriangleMesh, path string) error {
	if m == nil || m.IsEmpty() {
		return &ExportError{
			Kind: NoGeometry,
			Path: path,
			Err:  fmt.Errorf("no mesh to write"),
		}
	}

	format := DetectFormat(path)
	if format == FormatUnknown {
		return &ExportError{
			Kind: FormatMismatch,
			Path: path,
			Err:  fmt.Errorf("unrecognized extension %q", filepath.Ext(path)),
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &ExportError{Kind: WriteFailed, Path: path, Err: err}
	}

	switch format {
	case FormatSTL:
		err = writeSTL(m, f)
	case FormatOBJ:
		err = writeOBJ(m, f)
	case FormatPLY:
		err = writePLY(m, f)
	case FormatVTK:
		err = writeVTK(m, f)
	case FormatVTP:
		err = writeVTP(m, f)
	}
	if err != nil {
		f.Close()
		os.Remove(path)
		return &ExportError{Kind: WriteFailed, Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &ExportError{Kind: WriteFailed, Path: path, Err: err}
	}
	return nil
}
