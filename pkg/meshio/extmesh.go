package meshio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/zimin2020/polarbear/pkg/mesh"
)

// ExternalMesher shells out to a converter program that turns CAD files the
// built-in kernels cannot read into STL. The configured command is a
// template: {input} and {output} placeholders are replaced per invocation,
// and missing placeholders are appended as trailing arguments in that order.
type ExternalMesher struct {
	command string
	logger  *zap.Logger
}

// NewExternalMesher returns a mesher that runs the given converter command.
func NewExternalMesher(command string, logger *zap.Logger) *ExternalMesher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExternalMesher{command: command, logger: logger}
}

// Available reports whether the converter binary can be found in PATH.
func (em *ExternalMesher) Available() bool {
	fields := strings.Fields(em.command)
	if len(fields) == 0 {
		return false
	}
	_, err := exec.LookPath(fields[0])
	return err == nil
}

// MeshFile runs the converter on path and reads back the STL it produces.
// The converter's output goes to a temporary file that is removed before
// returning.
func (em *ExternalMesher) MeshFile(ctx context.Context, path string) (*mesh.TriangleMesh, error) {
	fields := strings.Fields(em.command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("extmesh: no converter command configured")
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("extmesh: converter %q not found in PATH", fields[0])
	}

	outDir, err := os.MkdirTemp("", "polarbear-mesh-")
	if err != nil {
		return nil, fmt.Errorf("extmesh: %w", err)
	}
	defer os.RemoveAll(outDir)
	outFile := filepath.Join(outDir, "converted.stl")

	var args []string
	sawInput, sawOutput := false, false
	for _, f := range fields[1:] {
		if strings.Contains(f, "{input}") {
			f = strings.ReplaceAll(f, "{input}", path)
			sawInput = true
		}
		if strings.Contains(f, "{output}") {
			f = strings.ReplaceAll(f, "{output}", outFile)
			sawOutput = true
		}
		args = append(args, f)
	}
	if !sawInput {
		args = append(args, path)
	}
	if !sawOutput {
		args = append(args, outFile)
	}

	cmd := exec.CommandContext(ctx, fields[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	em.logger.Debug("running external mesher",
		zap.String("command", fields[0]),
		zap.Strings("args", args))

	if err := cmd.Run(); err != nil {
		var msg strings.Builder
		fmt.Fprintf(&msg, "extmesh: %s failed: %v", fields[0], err)
		if stderr.Len() > 0 {
			msg.WriteString(": ")
			msg.WriteString(strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%s", msg.String())
	}

	f, err := os.Open(outFile)
	if err != nil {
		return nil, fmt.Errorf("extmesh: converter produced no output: %w", err)
	}
	defer f.Close()

	m, err := readSTL(f)
	if err != nil {
		return nil, fmt.Errorf("extmesh: converter output: %w", err)
	}
	if m.IsEmpty() {
		return nil, fmt.Errorf("extmesh: converter produced an empty mesh")
	}
	return m, nil
}
