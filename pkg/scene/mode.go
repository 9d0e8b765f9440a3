package scene

import "fmt"

// DisplayMode selects how the loaded model is presented. Exactly one mode
// is applied at a time.
type DisplayMode int

const (
	Shaded DisplayMode = iota
	ShadedWithEdges
	Wireframe
	Transparent
	Points
)

func (m DisplayMode) String() string {
	switch m {
	case Shaded:
		return "shaded"
	case ShadedWithEdges:
		return "shaded-edges"
	case Wireframe:
		return "wireframe"
	case Transparent:
		return "transparent"
	case Points:
		return "points"
	}
	return fmt.Sprintf("DisplayMode(%d)", int(m))
}

// ParseMode converts a mode name to a DisplayMode.
func ParseMode(s string) (DisplayMode, error) {
	switch s {
	case "shaded":
		return Shaded, nil
	case "shaded-edges", "shaded_edges":
		return ShadedWithEdges, nil
	case "wireframe":
		return Wireframe, nil
	case "transparent":
		return Transparent, nil
	case "points":
		return Points, nil
	}
	return Shaded, fmt.Errorf("unknown display mode %q", s)
}

// Style is the base actor's geometric representation.
type Style int

const (
	// StyleSurface draws filled triangles.
	StyleSurface Style = iota
	// StyleSurfaceWithEdges draws filled triangles with cell edges baked in.
	StyleSurfaceWithEdges
	// StylePoints draws vertices only.
	StylePoints
)

func (s Style) String() string {
	switch s {
	case StyleSurfaceWithEdges:
		return "surface+edges"
	case StylePoints:
		return "points"
	}
	return "surface"
}

// ActorProps are the renderable properties the mode table and tools
// mutate. Every apply rebuilds them from scratch so no mode leaks values
// into the next.
type ActorProps struct {
	Visible         bool
	Style           Style
	Opacity         float64
	Color           string
	EdgeColor       string
	Interpolation   Interpolation
	Specular        float64
	Ambient         float64
	Diffuse         float64
	PointSize       float64
	PointsAsSpheres bool
	LineWidth       float64
}
