package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zimin2020/polarbear/pkg/mesh"
)

var (
	edgesAngle float64
	edgesCount int
)

var edgesCmd = &cobra.Command{
	Use:   "edges <file>",
	Short: "Extract and classify the edges of a model",
	Long: `Import a model and extract its boundary, feature and non-manifold
edges. The feature threshold is the dihedral angle in degrees between
adjacent triangles; smooth manifold edges are excluded.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdges,
}

func init() {
	rootCmd.AddCommand(edgesCmd)
	edgesCmd.Flags().Float64Var(&edgesAngle, "angle", 0, "feature angle in degrees (default from configuration)")
	edgesCmd.Flags().IntVarP(&edgesCount, "count", "n", 10, "number of edges to list, 0 for none")
}

func runEdges(cmd *cobra.Command, args []string) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Import(args[0]); err != nil {
		return err
	}

	m := s.Scene().Mesh()
	angle := edgesAngle
	if angle == 0 {
		angle = cfg.FeatureAngle
	}
	es := mesh.ExtractEdges(m, angle)

	fmt.Printf("Edges of %s at %.1f degrees\n", args[0], angle)
	fmt.Println("=============================")
	fmt.Printf("Total:        %d\n", es.Count())
	fmt.Printf("Feature:      %d\n", es.CountKind(mesh.EdgeFeature))
	fmt.Printf("Boundary:     %d\n", es.CountKind(mesh.EdgeBoundary))
	fmt.Printf("Non-manifold: %d\n", es.CountKind(mesh.EdgeNonManifold))

	if edgesCount <= 0 || es.Count() == 0 {
		return nil
	}
	n := es.Count()
	if n > edgesCount {
		n = edgesCount
	}
	fmt.Printf("\nFirst %d edges:\n", n)
	fmt.Printf("%-5s %-12s %-32s %-32s %s\n", "#", "Kind", "Start", "End", "Length")
	for i := 0; i < n; i++ {
		a := m.Vertices[es.Segments[i][0]]
		b := m.Vertices[es.Segments[i][1]]
		fmt.Printf("%-5d %-12s (%9.4f, %9.4f, %9.4f) (%9.4f, %9.4f, %9.4f) %.4f\n",
			i+1, es.Kinds[i], a.X, a.Y, a.Z, b.X, b.Y, b.Z, a.Distance(b))
	}
	return nil
}
