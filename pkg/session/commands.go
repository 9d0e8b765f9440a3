package session

import (
	"fmt"
	"strconv"

	"github.com/zimin2020/polarbear/pkg/geom"
	"github.com/zimin2020/polarbear/pkg/mesh"
	"github.com/zimin2020/polarbear/pkg/scene"
	"github.com/zimin2020/polarbear/pkg/tessellate"
)

// Command is one entry of the stable command table: a UI-agnostic id
// mapped to a core operation. Frontends dispatch by id and never bind to
// session methods directly.
type Command struct {
	ID   string
	Help string
	Run  func(s *Session, args []string) error
}

// Commands returns the command table in display order.
func Commands() []Command {
	return commandTable
}

// Dispatch runs the command with the given id.
func Dispatch(s *Session, id string, args ...string) error {
	cmd, ok := commandIndex[id]
	if !ok {
		return fmt.Errorf("unknown command %q", id)
	}
	return cmd.Run(s, args)
}

var commandIndex = make(map[string]Command, len(commandTable))

func init() {
	for _, c := range commandTable {
		commandIndex[c.ID] = c
	}
}

var commandTable = []Command{
	{"open", "load a model file", func(s *Session, args []string) error {
		path, err := oneArg("open", args)
		if err != nil {
			return err
		}
		return s.Import(path)
	}},
	{"export", "write the model to a file", func(s *Session, args []string) error {
		path, err := oneArg("export", args)
		if err != nil {
			return err
		}
		return s.Export(path)
	}},
	{"delete", "remove the current model", func(s *Session, args []string) error {
		if err := noArgs("delete", args); err != nil {
			return err
		}
		s.Clear()
		return nil
	}},

	{"precision.low", "re-tessellate at low precision", precisionCmd(tessellate.Low)},
	{"precision.medium", "re-tessellate at medium precision", precisionCmd(tessellate.Medium)},
	{"precision.high", "re-tessellate at high precision", precisionCmd(tessellate.High)},

	{"mode.shaded", "shaded surface", modeCmd(scene.Shaded)},
	{"mode.shaded-edges", "shaded surface with baked edges", modeCmd(scene.ShadedWithEdges)},
	{"mode.wireframe", "feature-edge wireframe", modeCmd(scene.Wireframe)},
	{"mode.transparent", "near-transparent surface", modeCmd(scene.Transparent)},
	{"mode.points", "vertex point cloud", modeCmd(scene.Points)},

	{"section.x", "section along the x axis", sectionCmd(geom.AxisX)},
	{"section.y", "section along the y axis", sectionCmd(geom.AxisY)},
	{"section.z", "section along the z axis", sectionCmd(geom.AxisZ)},
	{"section.off", "deactivate the section tool", func(s *Session, args []string) error {
		if err := noArgs("section.off", args); err != nil {
			return err
		}
		s.SectionOff()
		return nil
	}},
	{"section.reset", "recompute the active section", func(s *Session, args []string) error {
		if err := noArgs("section.reset", args); err != nil {
			return err
		}
		return s.SectionReset()
	}},

	{"measure.toggle", "toggle the measurement tool", func(s *Session, args []string) error {
		if err := noArgs("measure.toggle", args); err != nil {
			return err
		}
		_, err := s.ToggleMeasurement()
		return err
	}},
	{"pick.toggle", "toggle point picking", func(s *Session, args []string) error {
		if err := noArgs("pick.toggle", args); err != nil {
			return err
		}
		_, err := s.TogglePicking()
		return err
	}},

	{"simplify", "decimate the mesh by a ratio in (0,1)", func(s *Session, args []string) error {
		arg, err := oneArg("simplify", args)
		if err != nil {
			return err
		}
		ratio, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("simplify: bad ratio %q: %w", arg, err)
		}
		return s.Simplify(ratio)
	}},
	{"subdivide", "refine the mesh: iterations [loop|linear]", func(s *Session, args []string) error {
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("subdivide: want iterations [scheme], got %d arguments", len(args))
		}
		iterations, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("subdivide: bad iteration count %q: %w", args[0], err)
		}
		scheme := mesh.SchemeLoop
		if len(args) == 2 {
			scheme, err = mesh.ParseScheme(args[1])
			if err != nil {
				return fmt.Errorf("subdivide: %w", err)
			}
		}
		return s.Subdivide(iterations, scheme)
	}},

	{"field.elevation", "color by vertex elevation", fieldCmd(mesh.FieldElevation)},
	{"field.curvature", "color by mean curvature", fieldCmd(mesh.FieldCurvature)},
	{"field.quality", "color by triangle quality", fieldCmd(mesh.FieldQuality)},
}

func precisionCmd(level tessellate.Level) func(*Session, []string) error {
	return func(s *Session, args []string) error {
		if err := noArgs("precision."+level.String(), args); err != nil {
			return err
		}
		return s.SetPrecision(level)
	}
}

func modeCmd(mode scene.DisplayMode) func(*Session, []string) error {
	return func(s *Session, args []string) error {
		if err := noArgs("mode."+mode.String(), args); err != nil {
			return err
		}
		s.SetMode(mode)
		return nil
	}
}

func sectionCmd(axis geom.Axis) func(*Session, []string) error {
	return func(s *Session, args []string) error {
		if err := noArgs("section."+axis.String(), args); err != nil {
			return err
		}
		return s.Section(axis)
	}
}

func fieldCmd(name string) func(*Session, []string) error {
	return func(s *Session, args []string) error {
		if err := noArgs("field."+name, args); err != nil {
			return err
		}
		return s.ApplyField(name)
	}
}

func oneArg(id string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s: want exactly one argument, got %d", id, len(args))
	}
	return args[0], nil
}

func noArgs(id string, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%s takes no arguments", id)
	}
	return nil
}
