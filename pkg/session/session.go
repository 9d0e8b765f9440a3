// Package session owns the viewer's working state: the active Shape /
// Mesh / EdgeSet triple, the scene it is displayed in, the tools acting
// on it, and the worker that runs long geometry jobs. All mutation goes
// through the session, and every replacement tears the old state down
// completely before the new state becomes visible.
//
// A session is single-owner: its methods are not safe for concurrent
// use. Long operations are computed on the session worker from inputs
// captured at submit time and installed back on the calling goroutine,
// so a failed job never leaves partial state behind.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zimin2020/polarbear/pkg/config"
	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/kernel"
	"github.com/zimin2020/polarbear/pkg/kernel/brep"
	"github.com/zimin2020/polarbear/pkg/kernel/fallback"
	"github.com/zimin2020/polarbear/pkg/mesh"
	"github.com/zimin2020/polarbear/pkg/meshio"
	"github.com/zimin2020/polarbear/pkg/scene"
	"github.com/zimin2020/polarbear/pkg/tessellate"
	"github.com/zimin2020/polarbear/pkg/watch"
)

// Session ties a geometry kernel, a scene, and a worker together around
// one loaded model.
type Session struct {
	ctx      Context
	kernel   kernel.Kernel
	mesher   *meshio.ExternalMesher
	scene    *scene.Scene
	tools    *scene.Tools
	renderer scene.Renderer
	worker   *Worker

	shape        kernel.Shape
	sourcePath   string
	sourceFormat string
	level        tessellate.Level
	lastJob      uuid.UUID
	onPick       func(geom.Vec3)
	watcher      *watch.Watcher
}

// modelState is the immutable result of a geometry job, computed off the
// owner goroutine and installed by a commit closure on it.
type modelState struct {
	shape  kernel.Shape
	mesh   *mesh.TriangleMesh
	edges  *mesh.EdgeSet
	format string
	level  tessellate.Level
}

// New creates a session with the kernel named in the configuration:
// "brep" for the parametric backend, "none" for the mesh-only fallback.
func New(ctx Context) *Session {
	if ctx.Config == (config.Config{}) {
		ctx.Config = config.Default()
	}
	var k kernel.Kernel
	if ctx.Config.Kernel == "none" {
		k = fallback.New()
	} else {
		k = brep.New(ctx.logger())
	}
	return NewWithKernel(ctx, k)
}

// NewWithKernel creates a session around an explicit kernel backend.
func NewWithKernel(ctx Context, k kernel.Kernel) *Session {
	if ctx.Config == (config.Config{}) {
		ctx.Config = config.Default()
	}
	logger := ctx.logger()

	sc := scene.New(logger)
	mat := scene.DefaultMaterial()
	mat.Color = ctx.Config.Material.Color
	mat.Opacity = ctx.Config.Material.Opacity
	mat.Specular = ctx.Config.Material.Specular
	sc.SetMaterial(mat)

	s := &Session{
		ctx:      ctx,
		kernel:   k,
		mesher:   meshio.NewExternalMesher(ctx.Config.MesherCommand, logger),
		scene:    sc,
		tools:    scene.NewTools(sc, logger),
		renderer: scene.NopRenderer{},
		worker:   NewWorker(logger),
		level:    ctx.Config.Level(),
	}
	logger.Debug("session ready",
		zap.String("kernel", k.Name()),
		zap.String("precision", s.level.String()))
	return s
}

// Close releases the worker and any active file watch. The session must
// not be used afterwards.
func (s *Session) Close() {
	s.Unwatch()
	s.worker.Close()
}

// Scene returns the display state.
func (s *Session) Scene() *scene.Scene { return s.scene }

// Tools returns the tool controller.
func (s *Session) Tools() *scene.Tools { return s.tools }

// SetRenderer replaces the render sink. The default is a no-op.
func (s *Session) SetRenderer(r scene.Renderer) {
	if r == nil {
		r = scene.NopRenderer{}
	}
	s.renderer = r
	if s.scene.HasModel() {
		s.render()
	}
}

// Progress returns the worker's progress stream.
func (s *Session) Progress() <-chan Progress {
	return s.worker.Progress()
}

// HasShape reports whether a live parametric shape is loaded.
func (s *Session) HasShape() bool { return s.shape != nil }

// Precision returns the tessellation level of the current model.
func (s *Session) Precision() tessellate.Level { return s.level }

func (s *Session) render() {
	s.renderer.Render(s.scene.Snapshot())
}

// Import loads path, replacing any current model. Parametric sources
// (.csg, .step, .stp) yield a Shape plus a derived Mesh when the backend
// can parse them; a declined parametric source goes through the external
// meshing fallback and yields a Mesh alone; mesh files are read
// directly. On failure the previous model is untouched.
func (s *Session) Import(path string) error {
	_, ch := s.ImportAsync(path)
	return s.collect(ch)
}

// ImportAsync submits the import to the worker and returns without
// waiting. Pass the eventual TaskResult to Apply on the owner goroutine.
func (s *Session) ImportAsync(path string) (uuid.UUID, <-chan TaskResult) {
	k := s.kernel
	mesher := s.mesher
	level := s.level
	angle := s.ctx.Config.FeatureAngle
	logger := s.ctx.logger()

	id, ch := s.worker.Submit("import "+filepath.Base(path), func(ctx context.Context, report func(int)) (func(), error) {
		out, err := computeImport(ctx, k, mesher, path, level, angle, logger, report)
		if err != nil {
			return nil, err
		}
		return func() { s.installModel(path, out) }, nil
	})
	s.lastJob = id
	return id, ch
}

// computeImport does the file-format routing and all heavy work. It runs
// on the worker and touches no session state.
func computeImport(ctx context.Context, k kernel.Kernel, mesher *meshio.ExternalMesher, path string, level tessellate.Level, featureAngle float64, logger *zap.Logger, report func(int)) (*modelState, error) {
	ext := strings.ToLower(filepath.Ext(path))
	out := &modelState{format: strings.TrimPrefix(ext, "."), level: level}

	switch ext {
	case ".csg", ".step", ".stp":
		shape, err := k.ImportShape(path)
		switch {
		case err == nil:
			report(30)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			m, terr := tessellate.Tessellate(k, shape, level, logger)
			if terr != nil {
				return nil, &meshio.ImportError{Kind: meshio.TriangulationFailed, Path: path, Err: terr}
			}
			out.shape = shape
			out.mesh = m
		case errors.Is(err, kernel.ErrUnsupportedShape), errors.Is(err, kernel.ErrNoBRep):
			if _, serr := os.Stat(path); serr != nil {
				return nil, &meshio.ImportError{Kind: meshio.ReadFailed, Path: path, Err: serr}
			}
			if !mesher.Available() {
				return nil, &meshio.ImportError{
					Kind: meshio.TriangulationFailed,
					Path: path,
					Err:  fmt.Errorf("backend declined %s source and no external mesher is configured: %w", ext, err),
				}
			}
			logger.Debug("falling back to external mesher", zap.String("path", path))
			report(20)
			m, merr := mesher.MeshFile(ctx, path)
			if merr != nil {
				return nil, &meshio.ImportError{Kind: meshio.TriangulationFailed, Path: path, Err: merr}
			}
			out.mesh = m
		default:
			return nil, &meshio.ImportError{Kind: meshio.ReadFailed, Path: path, Err: err}
		}
	case ".stl", ".obj", ".ply", ".vtk", ".vtp":
		m, err := meshio.Import(path)
		if err != nil {
			return nil, err
		}
		out.mesh = m
	default:
		return nil, &meshio.ImportError{
			Kind: meshio.UnsupportedFormat,
			Path: path,
			Err:  fmt.Errorf("unrecognized extension %q", ext),
		}
	}

	report(70)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out.edges = mesh.ExtractEdges(out.mesh, featureAngle)
	return out, nil
}

// installModel replaces the whole model. Tools are deactivated and the
// old actors dropped before the new state is wired in.
func (s *Session) installModel(path string, out *modelState) {
	s.tools.DeactivateAll()
	s.shape = out.shape
	s.sourcePath = path
	s.sourceFormat = out.format
	s.level = out.level
	s.scene.SetModel(out.mesh, out.edges)

	if s.watcher != nil {
		if abs, err := filepath.Abs(path); err == nil && abs != s.watcher.Target() {
			s.Unwatch()
		}
	}

	s.ctx.logger().Info("model loaded",
		zap.String("path", path),
		zap.String("format", out.format),
		zap.Bool("shape", out.shape != nil),
		zap.Int("vertices", out.mesh.VertexCount()),
		zap.Int("triangles", out.mesh.TriangleCount()),
		zap.Int("edges", out.edges.Count()))
}

// installMesh replaces the mesh and edge set, keeping shape and source.
func (s *Session) installMesh(out *modelState) {
	s.tools.DeactivateAll()
	s.level = out.level
	s.scene.SetModel(out.mesh, out.edges)
}

// Apply installs a completed job's result on the owner goroutine.
// Results of superseded jobs are dropped.
func (s *Session) Apply(r TaskResult) error {
	if r.Err != nil {
		return r.Err
	}
	if r.ID != s.lastJob {
		s.ctx.logger().Debug("stale job result dropped",
			zap.String("job", r.Name),
			zap.Stringer("id", r.ID))
		return nil
	}
	r.Commit()
	s.render()
	return nil
}

func (s *Session) collect(ch <-chan TaskResult) error {
	return s.Apply(<-ch)
}

// SetPrecision re-tessellates the live Shape at the new level. Any
// simplify or subdivide edits are discarded: the mesh is always derived
// fresh from the Shape. Without a Shape this is a no-op.
func (s *Session) SetPrecision(level tessellate.Level) error {
	if s.shape == nil {
		s.ctx.logger().Debug("precision change ignored, no parametric shape",
			zap.String("level", level.String()))
		return nil
	}

	k := s.kernel
	shape := s.shape
	path := s.sourcePath
	angle := s.ctx.Config.FeatureAngle
	logger := s.ctx.logger()

	id, ch := s.worker.Submit("precision "+level.String(), func(ctx context.Context, report func(int)) (func(), error) {
		m, err := tessellate.Tessellate(k, shape, level, logger)
		if err != nil {
			return nil, &meshio.ImportError{Kind: meshio.TriangulationFailed, Path: path, Err: err}
		}
		report(70)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := &modelState{mesh: m, edges: mesh.ExtractEdges(m, angle), level: level}
		return func() { s.installMesh(out) }, nil
	})
	s.lastJob = id
	return s.collect(ch)
}

// Simplify decimates the current mesh to roughly (1-ratio) of its
// triangle count, then rebuilds the edge set. All-or-nothing: on error
// the mesh is unchanged.
func (s *Session) Simplify(ratio float64) error {
	m := s.scene.Mesh()
	if m == nil {
		return &scene.NoGeometryError{Op: "simplify"}
	}
	angle := s.ctx.Config.FeatureAngle
	level := s.level

	id, ch := s.worker.Submit("simplify", func(ctx context.Context, report func(int)) (func(), error) {
		dm, err := mesh.Decimate(m, ratio)
		if err != nil {
			return nil, err
		}
		report(60)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := &modelState{mesh: dm, edges: mesh.ExtractEdges(dm, angle), level: level}
		return func() { s.installMesh(out) }, nil
	})
	s.lastJob = id
	return s.collect(ch)
}

// Subdivide refines the current mesh, then rebuilds the edge set.
// All-or-nothing like Simplify.
func (s *Session) Subdivide(iterations int, scheme mesh.SubdivisionScheme) error {
	m := s.scene.Mesh()
	if m == nil {
		return &scene.NoGeometryError{Op: "subdivide"}
	}
	angle := s.ctx.Config.FeatureAngle
	level := s.level

	id, ch := s.worker.Submit("subdivide", func(ctx context.Context, report func(int)) (func(), error) {
		sm, err := mesh.Subdivide(m, iterations, scheme)
		if err != nil {
			return nil, err
		}
		report(60)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := &modelState{mesh: sm, edges: mesh.ExtractEdges(sm, angle), level: level}
		return func() { s.installMesh(out) }, nil
	})
	s.lastJob = id
	return s.collect(ch)
}

// Export writes the model to path. Parametric extensions serialize the
// live Shape independent of the current tessellation; mesh extensions
// serialize the current mesh buffers. The loaded model is never modified.
func (s *Session) Export(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csg", ".step", ".stp":
		if s.shape == nil || !s.kernel.Capabilities().Has(kernel.CapExportShape) {
			return &meshio.ExportError{
				Kind: meshio.FormatMismatch,
				Path: path,
				Err:  fmt.Errorf("parametric export requires a live shape"),
			}
		}
		f, err := os.Create(path)
		if err != nil {
			return &meshio.ExportError{Kind: meshio.WriteFailed, Path: path, Err: err}
		}
		if err := s.kernel.ExportShape(s.shape, f); err != nil {
			f.Close()
			return &meshio.ExportError{Kind: meshio.WriteFailed, Path: path, Err: err}
		}
		if err := f.Close(); err != nil {
			return &meshio.ExportError{Kind: meshio.WriteFailed, Path: path, Err: err}
		}
		s.ctx.logger().Info("shape exported", zap.String("path", path))
		return nil
	default:
		if err := meshio.Export(s.scene.Mesh(), path); err != nil {
			return err
		}
		s.ctx.logger().Info("mesh exported", zap.String("path", path))
		return nil
	}
}

// Properties measures the current mesh.
func (s *Session) Properties() (mesh.Properties, error) {
	m := s.scene.Mesh()
	if m == nil {
		return mesh.Properties{}, &scene.NoGeometryError{Op: "properties"}
	}
	return mesh.ComputeProperties(m), nil
}

// ApplyField computes the named scalar field (elevation, curvature, or
// quality) over the current mesh and makes it the active color-map
// field.
func (s *Session) ApplyField(name string) error {
	m := s.scene.Mesh()
	if m == nil {
		return &scene.NoGeometryError{Op: "field " + name}
	}
	switch name {
	case mesh.FieldElevation:
		mesh.Elevation(m)
	case mesh.FieldCurvature:
		mesh.MeanCurvature(m)
	case mesh.FieldQuality:
		mesh.CellQuality(m)
	default:
		return fmt.Errorf("session: unknown field %q", name)
	}
	if err := s.scene.SetActiveField(name); err != nil {
		return err
	}
	s.render()
	return nil
}

// Clear drops the model: shape, mesh, edge set, tool overlays, and any
// file watch. Display mode and material persist for the next model.
func (s *Session) Clear() {
	s.Unwatch()
	s.tools.DeactivateAll()
	s.scene.Clear()
	s.shape = nil
	s.sourcePath = ""
	s.sourceFormat = ""
	s.render()
	s.ctx.logger().Debug("model cleared")
}

// Info describes the session for a status surface.
type Info struct {
	Path      string
	Format    string
	Kernel    string
	HasShape  bool
	Precision string
	Vertices  int
	Triangles int
	Edges     int
	Watching  bool
}

// Info reports the loaded model. Precision is only set when a parametric
// shape drives the tessellation.
func (s *Session) Info() Info {
	info := Info{
		Path:     s.sourcePath,
		Format:   s.sourceFormat,
		Kernel:   s.kernel.Name(),
		HasShape: s.shape != nil,
		Watching: s.watcher != nil,
	}
	if s.shape != nil {
		info.Precision = s.level.String()
	}
	if m := s.scene.Mesh(); m != nil {
		info.Vertices = m.VertexCount()
		info.Triangles = m.TriangleCount()
		if m.SourcePrecision != "" {
			info.Precision = m.SourcePrecision
		}
	}
	if e := s.scene.EdgeSet(); e != nil {
		info.Edges = e.Count()
	}
	return info
}

// SetMode switches the display mode and re-renders.
func (s *Session) SetMode(m scene.DisplayMode) {
	s.scene.SetMode(m)
	s.render()
}

// SetMaterial updates the base material and re-renders.
func (s *Session) SetMaterial(m scene.Material) {
	s.scene.SetMaterial(m)
	s.render()
}

// SetInterpolation switches flat or phong shading and re-renders.
func (s *Session) SetInterpolation(i scene.Interpolation) {
	s.scene.SetInterpolation(i)
	s.render()
}

// SetEdgeOverlay toggles the feature-edge overlay in Shaded mode.
func (s *Session) SetEdgeOverlay(on bool) {
	s.scene.SetEdgeOverlay(on)
	s.render()
}

// Section activates the section tool along the given axis.
func (s *Session) Section(axis geom.Axis) error {
	if err := s.tools.ActivateSection(axis); err != nil {
		return err
	}
	s.render()
	return nil
}

// SectionOff deactivates the section tool.
func (s *Session) SectionOff() {
	s.tools.DeactivateSection()
	s.render()
}

// SectionReset recomputes the active section on its current axis.
func (s *Session) SectionReset() error {
	if err := s.tools.ResetSection(); err != nil {
		return err
	}
	s.render()
	return nil
}

// ToggleMeasurement flips the measurement tool and reports its new
// state.
func (s *Session) ToggleMeasurement() (bool, error) {
	if s.tools.MeasurementOn() {
		s.tools.DeactivateMeasurement()
		s.render()
		return false, nil
	}
	if err := s.tools.ActivateMeasurement(); err != nil {
		return false, err
	}
	s.render()
	return true, nil
}

// OnPick registers the callback invoked with each picked world point.
func (s *Session) OnPick(cb func(geom.Vec3)) {
	s.onPick = cb
}

// TogglePicking flips the point-picking tool and reports its new state.
func (s *Session) TogglePicking() (bool, error) {
	if s.tools.PickingOn() {
		s.tools.DeactivatePicking()
		s.render()
		return false, nil
	}
	if err := s.tools.ActivatePicking(s.onPick); err != nil {
		return false, err
	}
	s.render()
	return true, nil
}

// Watch reloads the model whenever its source file changes on disk.
// Reloads run on the watcher's goroutine; while a watch is active the
// session must not be driven from other goroutines at the same time.
// onReload, when non-nil, receives the result of every reload attempt.
func (s *Session) Watch(onReload func(error)) error {
	if s.sourcePath == "" {
		return &scene.NoGeometryError{Op: "watch"}
	}
	s.Unwatch()

	w, err := watch.New(s.sourcePath, s.ctx.Config.Watch.Debounce(), func(p string) {
		err := s.Import(p)
		if err != nil {
			s.ctx.logger().Warn("reload failed", zap.String("path", p), zap.Error(err))
		} else {
			s.ctx.logger().Info("model reloaded", zap.String("path", p))
		}
		if onReload != nil {
			onReload(err)
		}
	}, s.ctx.logger())
	if err != nil {
		return err
	}
	s.watcher = w
	return nil
}

// Unwatch stops any active file watch.
func (s *Session) Unwatch() {
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
}
