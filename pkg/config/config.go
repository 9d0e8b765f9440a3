// Package config loads viewer settings from a TOML file. Every field has
// a default, so a missing file or a partial file is fine; unknown keys are
// rejected so typos fail loudly instead of silently reverting a setting.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/zimin2020/polarbear/pkg/mesh"
	"github.com/zimin2020/polarbear/pkg/tessellate"
)

// Material holds the default appearance of the base mesh actor.
type Material struct {
	Color    string  `toml:"color"`
	Opacity  float64 `toml:"opacity"`
	Specular float64 `toml:"specular"`
}

// Watch holds auto-reload settings.
type Watch struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Config is the full viewer configuration.
type Config struct {
	// Precision is the startup tessellation level: low, medium, or high.
	Precision string `toml:"precision"`
	// Kernel selects the geometry backend: brep or none.
	Kernel string `toml:"kernel"`
	// MesherCommand is the external converter template used for
	// parametric formats the backend declines. Empty disables the
	// fallback. {input} and {output} are substituted when present.
	MesherCommand string `toml:"mesher_command"`
	// FeatureAngle is the dihedral angle in degrees above which an edge
	// counts as a feature edge.
	FeatureAngle float64 `toml:"feature_angle"`

	Material Material `toml:"material"`
	Watch    Watch    `toml:"watch"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Precision:    tessellate.DefaultLevel.String(),
		Kernel:       "brep",
		FeatureAngle: mesh.DefaultFeatureAngle,
		Material: Material{
			Color:    "#bcbcbc",
			Opacity:  1.0,
			Specular: 0.5,
		},
		Watch: Watch{DebounceMS: 300},
	}
}

// Debounce returns the watch debounce as a duration.
func (w Watch) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// Level returns the configured precision as a tessellation level.
func (c Config) Level() tessellate.Level {
	lvl, err := tessellate.ParseLevel(c.Precision)
	if err != nil {
		return tessellate.DefaultLevel
	}
	return lvl
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("config: %s: unknown keys:\n%s", path, strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			return cfg, fmt.Errorf("config: %s: %s", path, decodeErr.String())
		}
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	if _, err := tessellate.ParseLevel(c.Precision); err != nil {
		return err
	}
	switch c.Kernel {
	case "brep", "none":
	default:
		return fmt.Errorf("unknown kernel %q (want brep or none)", c.Kernel)
	}
	if c.FeatureAngle <= 0 || c.FeatureAngle >= 180 {
		return fmt.Errorf("feature_angle %v out of range (0, 180)", c.FeatureAngle)
	}
	if c.Material.Opacity < 0 || c.Material.Opacity > 1 {
		return fmt.Errorf("material.opacity %v out of range [0, 1]", c.Material.Opacity)
	}
	if c.Material.Specular < 0 || c.Material.Specular > 1 {
		return fmt.Errorf("material.specular %v out of range [0, 1]", c.Material.Specular)
	}
	if err := validateColor(c.Material.Color); err != nil {
		return fmt.Errorf("material.color: %w", err)
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms %d must not be negative", c.Watch.DebounceMS)
	}
	return nil
}

func validateColor(s string) error {
	if !strings.HasPrefix(s, "#") || len(s) != 7 {
		return fmt.Errorf("%q is not a #rrggbb color", s)
	}
	if _, err := strconv.ParseUint(s[1:], 16, 32); err != nil {
		return fmt.Errorf("%q is not a #rrggbb color", s)
	}
	return nil
}
