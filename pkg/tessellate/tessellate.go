// Package tessellate turns a kernel shape into a single renderable
// triangle mesh. The kernel triangulates each topological face on its own;
// this package assembles the per-face meshes into one vertex and index
// buffer in face order.
package tessellate

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zimin2020/polarbear/pkg/kernel"
	"github.com/zimin2020/polarbear/pkg/mesh"
)

// ErrNoTriangles reports that no face of the shape produced any
// triangulation at the requested precision.
var ErrNoTriangles = errors.New("tessellate: no face produced triangles")

// Tessellate meshes the shape at the given precision level.
//
// Faces are assembled in the order the kernel reports them. Each face
// contributes its nodes verbatim; coincident nodes on shared face
// boundaries are kept duplicated, so face seams stay visible as edges.
// Faces without a triangulation are skipped with a warning. The kernel's
// 1-based face-local node indices are rebased into the global 0-based
// vertex buffer.
func Tessellate(k kernel.Kernel, shape kernel.Shape, level Level, logger *zap.Logger) (*mesh.TriangleMesh, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	linear, angular := level.Deflection()
	faces, err := k.Triangulate(shape, linear, angular)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	out := mesh.New()
	skipped := 0
	for i, face := range faces {
		if face.Empty() {
			logger.Warn("face has no triangulation, skipping",
				zap.Int("face", i),
				zap.String("name", face.Name))
			skipped++
			continue
		}

		// The offset is recorded before this face's nodes are appended;
		// rebasing a face-local index n to offset+n-1 lands it on the
		// face's own nodes.
		offset := out.VertexCount()
		out.Vertices = append(out.Vertices, face.Nodes...)

		for _, tri := range face.Tris {
			out.Triangles = append(out.Triangles, mesh.Tri{
				tri[0] + offset - 1,
				tri[1] + offset - 1,
				tri[2] + offset - 1,
			})
		}
	}

	if out.IsEmpty() {
		return nil, ErrNoTriangles
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("tessellate: kernel produced invalid face indices: %w", err)
	}

	out.SourcePrecision = level.String()

	logger.Debug("shape tessellated",
		zap.String("precision", level.String()),
		zap.Int("faces", len(faces)),
		zap.Int("skipped", skipped),
		zap.Int("vertices", out.VertexCount()),
		zap.Int("triangles", out.TriangleCount()))
	return out, nil
}
