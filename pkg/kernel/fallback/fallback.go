// Package fallback implements the mesh-only geometry backend. It advertises
// no B-Rep capability, so parametric imports are refused and the session
// works purely with imported meshes.
package fallback

import (
	"fmt"
	"io"

	"github.com/zimin2020/polarbear/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Kernel is the mesh-only backend.
type Kernel struct{}

// New returns the mesh-only backend.
func New() *Kernel {
	return &Kernel{}
}

// Name identifies the backend.
func (k *Kernel) Name() string {
	return "none"
}

// Capabilities reports no capabilities.
func (k *Kernel) Capabilities() kernel.Capability {
	return 0
}

// ImportShape always refuses: this backend cannot hold parametric shapes.
func (k *Kernel) ImportShape(path string) (kernel.Shape, error) {
	return nil, fmt.Errorf("fallback: import %s: %w", path, kernel.ErrNoBRep)
}

// Triangulate always refuses; no shape can originate from this backend.
func (k *Kernel) Triangulate(shape kernel.Shape, linearDeflection, angularDeflection float64) ([]kernel.FaceMesh, error) {
	return nil, fmt.Errorf("fallback: triangulate: %w", kernel.ErrNoBRep)
}

// ExportShape always refuses; no shape can originate from this backend.
func (k *Kernel) ExportShape(shape kernel.Shape, w io.Writer) error {
	return fmt.Errorf("fallback: export: %w", kernel.ErrNoBRep)
}
