package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var convertPrecision string

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a model between the supported formats",
	Long: `Import a model and write it back out in the format named by the
output extension. Mesh targets (.stl, .obj, .ply, .vtk, .vtp) work for
any input; parametric targets (.csg) need a parametric input the kernel
could parse, since the solid script is serialized, not the
tessellation.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertPrecision, "precision", "", "tessellation level: low, medium or high")
}

func runConvert(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]

	s, err := newSession(convertPrecision)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Import(input); err != nil {
		return err
	}
	if err := s.Export(output); err != nil {
		return err
	}

	info := s.Info()
	fmt.Printf("%s -> %s (%d vertices, %d triangles)\n",
		input, output, info.Vertices, info.Triangles)
	return nil
}
