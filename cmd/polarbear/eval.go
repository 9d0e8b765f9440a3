package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zimin2020/polarbear/pkg/kernel/brep"
	"github.com/zimin2020/polarbear/pkg/tessellate"
)

var evalPrecision string

var evalCmd = &cobra.Command{
	Use:   "eval <file.csg>",
	Short: "Evaluate a solid script and report its parts",
	Long: `Run a solid script through the script kernel and print the parts it
defines with their triangulation sizes at the chosen precision. Script
errors are reported with line numbers. The model is not kept; use the
convert command to write a mesh file.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalPrecision, "precision", "", "tessellation level: low, medium or high")
}

func runEval(cmd *cobra.Command, args []string) error {
	name := cfg.Precision
	if evalPrecision != "" {
		name = evalPrecision
	}
	level, err := tessellate.ParseLevel(name)
	if err != nil {
		return err
	}
	linear, angular := level.Deflection()

	k := brep.New(logger)
	shape, err := k.ImportShape(args[0])
	if err != nil {
		return err
	}
	faces, err := k.Triangulate(shape, linear, angular)
	if err != nil {
		return err
	}

	fmt.Println("Script Evaluation")
	fmt.Println("=================")
	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Kernel:    %s\n", k.Name())
	fmt.Printf("Precision: %s (linear %.4f, angular %.4f)\n", level, linear, angular)
	fmt.Println()

	fmt.Println("Parts:")
	var nodes, tris int
	for i := range faces {
		fm := &faces[i]
		if fm.Empty() {
			fmt.Printf("  %-20s no triangulation\n", fm.Name)
			continue
		}
		fmt.Printf("  %-20s %7d nodes %7d triangles\n", fm.Name, len(fm.Nodes), len(fm.Tris))
		nodes += len(fm.Nodes)
		tris += len(fm.Tris)
	}
	fmt.Println()

	min, max := shape.BoundingBox()
	fmt.Println("Bounding box:")
	fmt.Printf("  Min:  (%.6f, %.6f, %.6f)\n", min[0], min[1], min[2])
	fmt.Printf("  Max:  (%.6f, %.6f, %.6f)\n", max[0], max[1], max[2])
	fmt.Printf("  Size: (%.6f, %.6f, %.6f)\n", max[0]-min[0], max[1]-min[1], max[2]-min[2])
	fmt.Println()

	fmt.Printf("Total: %d parts, %d nodes, %d triangles\n", len(faces), nodes, tris)
	return nil
}
