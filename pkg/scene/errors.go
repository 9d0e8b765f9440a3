package scene

import "fmt"

// NoGeometryError reports an operation that needs a loaded mesh when none
// is present.
type NoGeometryError struct {
	Op string
}

func (e *NoGeometryError) Error() string {
	return fmt.Sprintf("%s: no geometry loaded", e.Op)
}

// ToolStateError reports a tool transition that is invalid in the tool's
// current state.
type ToolStateError struct {
	Tool   string
	Reason string
}

func (e *ToolStateError) Error() string {
	return fmt.Sprintf("%s tool: %s", e.Tool, e.Reason)
}
