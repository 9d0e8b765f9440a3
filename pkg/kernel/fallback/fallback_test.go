package fallback

import (
	"bytes"
	"errors"
	"testing"

	"github.com/zimin2020/polarbear/pkg/kernel"
)

func TestNoCapabilities(t *testing.T) {
	k := New()
	if k.Name() != "none" {
		t.Errorf("Name() = %q, want %q", k.Name(), "none")
	}
	if k.Capabilities().Has(kernel.CapBRep) {
		t.Error("fallback backend must not advertise CapBRep")
	}
	if k.Capabilities().Has(kernel.CapExportShape) {
		t.Error("fallback backend must not advertise CapExportShape")
	}
}

func TestAllOperationsReportNoBRep(t *testing.T) {
	k := New()

	if _, err := k.ImportShape("model.step"); !errors.Is(err, kernel.ErrNoBRep) {
		t.Errorf("ImportShape error = %v, want ErrNoBRep", err)
	}
	if _, err := k.Triangulate(nil, 0.1, 0.5); !errors.Is(err, kernel.ErrNoBRep) {
		t.Errorf("Triangulate error = %v, want ErrNoBRep", err)
	}
	var buf bytes.Buffer
	if err := k.ExportShape(nil, &buf); !errors.Is(err, kernel.ErrNoBRep) {
		t.Errorf("ExportShape error = %v, want ErrNoBRep", err)
	}
}
