package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zimin2020/polarbear/pkg/config"
	"github.com/zimin2020/polarbear/pkg/session"
	"github.com/zimin2020/polarbear/pkg/tessellate"
)

var (
	cfgPath string
	verbose bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "polarbear",
	Short: "Solid-script CAD viewer core: tessellate, inspect and convert models",
	Long: `polarbear drives the viewer core from the command line. It evaluates
.csg solid scripts through the parametric kernel, tessellates them at a
configurable precision, reads and writes the supported mesh formats
(stl, obj, ply, vtk, vtp), and can keep a model hot-reloaded while you
edit its source.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgPath != "" {
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a polarbear.toml configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newSession builds a session from the loaded configuration, optionally
// overriding the tessellation precision.
func newSession(precision string) (*session.Session, error) {
	c := cfg
	if precision != "" {
		if _, err := tessellate.ParseLevel(precision); err != nil {
			return nil, err
		}
		c.Precision = precision
	}
	return session.New(session.Context{Logger: logger, Config: c}), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
