package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchPrecision string

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Load a model and reload it whenever the file changes",
	Long: `Import a model and keep watching its source file. Every time the file
is written the model is reimported after a short debounce and the new
mesh counts are printed. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPrecision, "precision", "", "tessellation level: low, medium or high")
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(watchPrecision)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Import(args[0]); err != nil {
		return err
	}
	info := s.Info()
	fmt.Printf("loaded %s: %d vertices, %d triangles\n", info.Path, info.Vertices, info.Triangles)

	err = s.Watch(func(reloadErr error) {
		if reloadErr != nil {
			fmt.Printf("reload failed: %v\n", reloadErr)
			return
		}
		in := s.Info()
		fmt.Printf("reloaded %s: %d vertices, %d triangles\n", in.Path, in.Vertices, in.Triangles)
	})
	if err != nil {
		return err
	}
	fmt.Printf("watching %s (debounce %s), press Ctrl-C to stop\n", args[0], cfg.Watch.Debounce())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println()
	fmt.Println("stopping")
	return nil
}
