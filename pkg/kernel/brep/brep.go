package brep

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/kernel"
	"github.com/zimin2020/polarbear/pkg/kernel/csg"
	"github.com/zimin2020/polarbear/pkg/kernel/csg/manifold"
	"github.com/zimin2020/polarbear/pkg/kernel/csg/sdfx"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*Kernel)(nil)
var _ kernel.Shape = (*brepShape)(nil)

const (
	// minMeshCells and maxMeshCells bound the marching-cubes grid
	// resolution derived from the linear deflection.
	minMeshCells = 16
	maxMeshCells = 400

	// weldEpsilon quantizes node positions when indexing a part's
	// triangle soup. Nodes are only welded within a part, never across
	// parts.
	weldEpsilon = 1e-6
)

// ScriptError reports evaluation failures in a solid script, with line
// information where the interpreter provides it.
type ScriptError struct {
	Path   string
	Errors []EvalError
}

func (e *ScriptError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s: script evaluation failed", e.Path)
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s: %s", e.Path, e.Errors[0].Error())
	}
	return fmt.Sprintf("%s: %s (and %d more errors)", e.Path, e.Errors[0].Error(), len(e.Errors)-1)
}

// brepShape is the kernel.Shape produced by this backend: an evaluated
// solid script.
type brepShape struct {
	model *Model
}

// BoundingBox returns the union of the part bounding boxes.
func (s *brepShape) BoundingBox() (min, max [3]float64) {
	for i, p := range s.model.Parts {
		pmin, pmax := p.Solid.BoundingBox()
		if i == 0 {
			min, max = pmin, pmax
			continue
		}
		for a := 0; a < 3; a++ {
			if pmin[a] < min[a] {
				min[a] = pmin[a]
			}
			if pmax[a] > max[a] {
				max[a] = pmax[a]
			}
		}
	}
	return min, max
}

// Kernel is the B-Rep-capable backend. It evaluates .csg solid scripts
// and triangulates their parts with marching cubes.
type Kernel struct {
	builder csg.Builder
	engine  *Engine
	logger  *zap.Logger
}

// ProbeBuilder selects the best available csg.Builder: the Manifold
// binding when compiled in, otherwise sdfx.
func ProbeBuilder(logger *zap.Logger) csg.Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if b, err := manifold.New(); err == nil {
		logger.Info("csg builder selected", zap.String("builder", b.Name()))
		return b
	}
	b := sdfx.New()
	logger.Info("csg builder selected", zap.String("builder", b.Name()))
	return b
}

// New creates the backend with the best available builder.
func New(logger *zap.Logger) *Kernel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewWithBuilder(ProbeBuilder(logger), logger)
}

// NewWithBuilder creates the backend with an explicit builder.
func NewWithBuilder(b csg.Builder, logger *zap.Logger) *Kernel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Kernel{
		builder: b,
		engine:  NewEngine(b),
		logger:  logger,
	}
}

// Name identifies the backend.
func (k *Kernel) Name() string {
	return "brep"
}

// Capabilities reports B-Rep and parametric re-export support.
func (k *Kernel) Capabilities() kernel.Capability {
	return kernel.CapBRep | kernel.CapExportShape
}

// ImportShape evaluates a .csg solid script into a Shape. Formats this
// backend cannot parse (including .step) are declined with
// kernel.ErrUnsupportedShape so the caller can fall back to external
// meshing.
func (k *Kernel) ImportShape(path string) (kernel.Shape, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csg" {
		return nil, fmt.Errorf("brep: %q: %w", ext, kernel.ErrUnsupportedShape)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("brep: read %s: %w", path, err)
	}

	model, evalErrs, err := k.engine.Evaluate(string(data))
	if err != nil {
		return nil, fmt.Errorf("brep: evaluate %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		return nil, &ScriptError{Path: filepath.Base(path), Errors: evalErrs}
	}
	if len(model.Parts) == 0 {
		return nil, fmt.Errorf("brep: %s: script defines no parts", filepath.Base(path))
	}

	k.logger.Debug("script evaluated",
		zap.String("path", path),
		zap.Int("parts", len(model.Parts)))
	return &brepShape{model: model}, nil
}

// Triangulate meshes each part of the shape with marching cubes at a
// resolution derived from the deflections and the part's bounding box.
// Parts are meshed in parallel; results keep declaration order. A part
// whose meshing fails yields an empty FaceMesh so one degenerate part
// does not sink the whole model.
func (k *Kernel) Triangulate(shape kernel.Shape, linearDeflection, angularDeflection float64) ([]kernel.FaceMesh, error) {
	bs, ok := shape.(*brepShape)
	if !ok {
		return nil, fmt.Errorf("brep: triangulate: %w", kernel.ErrUnsupportedShape)
	}
	if linearDeflection <= 0 || angularDeflection <= 0 {
		return nil, fmt.Errorf("brep: deflection must be positive, got linear=%v angular=%v",
			linearDeflection, angularDeflection)
	}
	parts := bs.model.Parts
	if len(parts) == 0 {
		return nil, kernel.ErrNoFaces
	}

	results := make([]kernel.FaceMesh, len(parts))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range parts {
		i, p := i, p
		g.Go(func() error {
			cells := meshCells(p.Solid, linearDeflection, angularDeflection)
			tris, err := k.builder.Mesh(p.Solid, cells)
			if err != nil {
				k.logger.Warn("part meshing failed",
					zap.String("part", p.Name),
					zap.Int("cells", cells),
					zap.Error(err))
				results[i] = kernel.FaceMesh{Name: p.Name}
				return nil
			}
			results[i] = indexTriangles(p.Name, tris)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("brep: triangulate: %w", err)
	}
	return results, nil
}

// ExportShape writes the shape's script source.
func (k *Kernel) ExportShape(shape kernel.Shape, w io.Writer) error {
	bs, ok := shape.(*brepShape)
	if !ok {
		return fmt.Errorf("brep: export: %w", kernel.ErrUnsupportedShape)
	}
	src := bs.model.Source
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	if _, err := io.WriteString(w, src); err != nil {
		return fmt.Errorf("brep: write script: %w", err)
	}
	return nil
}

// meshCells maps the deflections and a solid's bounding box to a
// marching-cubes grid resolution. The mapping is monotone: a smaller
// deflection never yields fewer cells.
func meshCells(s csg.Solid, linearDeflection, angularDeflection float64) int {
	min, max := s.BoundingBox()
	dx := max[0] - min[0]
	dy := max[1] - min[1]
	dz := max[2] - min[2]
	diag := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if diag <= 0 {
		return minMeshCells
	}

	cells := int(math.Ceil(diag / linearDeflection))
	if byAngle := int(math.Ceil(math.Pi / angularDeflection)); byAngle > cells {
		cells = byAngle
	}
	if cells < minMeshCells {
		cells = minMeshCells
	}
	if cells > maxMeshCells {
		cells = maxMeshCells
	}
	return cells
}

// indexTriangles converts a triangle soup into an indexed FaceMesh with
// 1-based node indices, welding coincident corners within the part.
// Triangles that collapse under welding are dropped.
func indexTriangles(name string, tris []csg.Triangle) kernel.FaceMesh {
	fm := kernel.FaceMesh{Name: name}
	index := make(map[[3]int64]int, len(tris))

	quant := func(v geom.Vec3) [3]int64 {
		return [3]int64{
			int64(math.Round(v.X / weldEpsilon)),
			int64(math.Round(v.Y / weldEpsilon)),
			int64(math.Round(v.Z / weldEpsilon)),
		}
	}

	for _, tri := range tris {
		var idx [3]int
		for j := 0; j < 3; j++ {
			key := quant(tri[j])
			n, ok := index[key]
			if !ok {
				fm.Nodes = append(fm.Nodes, tri[j])
				n = len(fm.Nodes) // 1-based
				index[key] = n
			}
			idx[j] = n
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			continue
		}
		fm.Tris = append(fm.Tris, idx)
	}
	return fm
}
