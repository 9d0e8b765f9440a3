package meshio

import "fmt"

// ImportErrorKind classifies why a mesh import failed.
type ImportErrorKind int

const (
	// UnsupportedFormat: the file extension names no known codec.
	UnsupportedFormat ImportErrorKind = iota
	// ReadFailed: the file could not be opened or parsed.
	ReadFailed
	// TriangulationFailed: the source was readable but yielded no usable
	// triangles (including a failed external meshing fallback).
	TriangulationFailed
)

func (k ImportErrorKind) String() string {
	switch k {
	case UnsupportedFormat:
		return "unsupported format"
	case ReadFailed:
		return "read failed"
	case TriangulationFailed:
		return "triangulation failed"
	}
	return fmt.Sprintf("ImportErrorKind(%d)", int(k))
}

// ImportError reports a failed mesh or shape import.
type ImportError struct {
	Kind ImportErrorKind
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("import %s: %s", e.Path, e.Kind)
}

func (e *ImportError) Unwrap() error { return e.Err }

// ExportErrorKind classifies why a mesh export failed.
type ExportErrorKind int

const (
	// NoGeometry: there is nothing to write.
	NoGeometry ExportErrorKind = iota
	// FormatMismatch: the requested format cannot represent the content
	// on hand (e.g. a parametric format without a live shape).
	FormatMismatch
	// WriteFailed: the target could not be created or written.
	WriteFailed
)

func (k ExportErrorKind) String() string {
	switch k {
	case NoGeometry:
		return "no geometry"
	case FormatMismatch:
		return "format mismatch"
	case WriteFailed:
		return "write failed"
	}
	return fmt.Sprintf("ExportErrorKind(%d)", int(k))
}

// ExportError reports a failed export.
type ExportError struct {
	Kind ExportErrorKind
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("export %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("export %s: %s", e.Path, e.Kind)
}

func (e *ExportError) Unwrap() error { return e.Err }
