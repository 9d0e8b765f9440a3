package tessellate

import "fmt"

// Level selects a meshing precision. Each level maps to a fixed pair of
// linear and angular deflection targets handed to the kernel.
type Level int

const (
	Low Level = iota
	Medium
	High
)

// DefaultLevel is used when no precision is configured.
const DefaultLevel = Medium

// deflections is the precision table. Linear deflection is in model units,
// angular deflection in radians.
var deflections = map[Level]struct {
	linear  float64
	angular float64
}{
	Low:    {0.5, 0.8},
	Medium: {0.1, 0.5},
	High:   {0.02, 0.1},
}

// Deflection returns the linear and angular deflection targets for the level.
func (l Level) Deflection() (linear, angular float64) {
	d, ok := deflections[l]
	if !ok {
		d = deflections[Medium]
	}
	return d.linear, d.angular
}

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel converts a precision name to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	}
	return Medium, fmt.Errorf("unknown precision level %q (want low, medium, or high)", s)
}
