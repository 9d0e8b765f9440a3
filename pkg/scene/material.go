package scene

import "fmt"

// Fixed colors and sizes used by the display-mode table.
const (
	// DefaultBaseColor is the untinted surface color.
	DefaultBaseColor = "#bcbcbc"
	// EdgeColorDark is the edge-overlay color over a shaded surface.
	EdgeColorDark = "#333333"
	// EdgeColorLight is the edge color for wireframe and transparent modes.
	EdgeColorLight = "#d6d6d6"
	// TransparentOpacity is the forced near-zero opacity of Transparent mode.
	TransparentOpacity = 0.04
	// PointSize is the fixed point diameter of Points mode.
	PointSize = 5.0
	// EdgeLineWidth is the line width of every edge overlay.
	EdgeLineWidth = 2.0
)

// Interpolation selects how the renderer shades across a triangle.
type Interpolation int

const (
	// InterpPhong interpolates vertex normals (smooth shading).
	InterpPhong Interpolation = iota
	// InterpFlat shades each triangle with its face normal.
	InterpFlat
)

func (i Interpolation) String() string {
	if i == InterpFlat {
		return "flat"
	}
	return "phong"
}

// ParseInterpolation converts "flat" or "phong" to an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "flat":
		return InterpFlat, nil
	case "phong", "smooth":
		return InterpPhong, nil
	}
	return InterpPhong, fmt.Errorf("unknown interpolation %q (want flat or phong)", s)
}

// Material is the surface appearance shared by all display modes, unless
// a mode overrides a component (Transparent forces opacity).
type Material struct {
	Color    string
	Opacity  float64
	Specular float64
	Ambient  float64
	Diffuse  float64
}

// DefaultMaterial returns the standard viewer material.
func DefaultMaterial() Material {
	return Material{
		Color:    DefaultBaseColor,
		Opacity:  1.0,
		Specular: 0.5,
		Ambient:  0.3,
		Diffuse:  0.8,
	}
}

// clamped returns the material with its scalar components limited to [0,1].
func (m Material) clamped() Material {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	m.Opacity = clamp(m.Opacity)
	m.Specular = clamp(m.Specular)
	m.Ambient = clamp(m.Ambient)
	m.Diffuse = clamp(m.Diffuse)
	if m.Color == "" {
		m.Color = DefaultBaseColor
	}
	return m
}
