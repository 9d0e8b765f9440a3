//go:build !manifold

// Package manifold binds csg.Builder to the Manifold C library. Without
// the "manifold" build tag only this stub compiles; callers probe New and
// fall back to another builder when it reports unavailability.
package manifold

import (
	"errors"

	"github.com/zimin2020/polarbear/pkg/kernel/csg"
)

// New reports that the Manifold library was not compiled in. Rebuild with
// -tags=manifold and the manifoldc shared library installed to enable it.
func New() (csg.Builder, error) {
	return nil, errors.New("manifold builder not available: build with -tags=manifold")
}
