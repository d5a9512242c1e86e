//go:build !nogpu

package app

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/gogpu/gpuca"
	"github.com/gogpu/gpuca/internal/lattice"
)

// ErrUnknownSeeder is returned for a -seeder value other than patch or
// random.
var ErrUnknownSeeder = errors.New("app: unknown seeder")

// Config represents the command-line parameters shared by the binaries.
type Config struct {
	Rule     string
	Width    int
	Height   int
	Seed     int64
	Seeder   string
	Density  float64
	Tiled    bool
	SPIRV    bool
	Scale    int
	LogLevel string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Rule:     "life",
		Width:    lattice.DefaultWidth,
		Height:   lattice.DefaultHeight,
		Seed:     1,
		Seeder:   "patch",
		Density:  lattice.DefaultSymmetricPatch().Density,
		Scale:    5,
		LogLevel: "info",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Rule, "rule", c.Rule, "transition rule: life or brain")
	fs.IntVar(&c.Width, "width", c.Width, "lattice width in cells")
	fs.IntVar(&c.Height, "height", c.Height, "lattice height in cells")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "base seed for reseeding")
	fs.StringVar(&c.Seeder, "seeder", c.Seeder, "initial pattern: patch or random")
	fs.Float64Var(&c.Density, "density", c.Density, "probability a seeded cell is alive")
	fs.BoolVar(&c.Tiled, "tiled", c.Tiled, "use the shared-memory halo kernel")
	fs.BoolVar(&c.SPIRV, "spirv", c.SPIRV, "precompile kernels to SPIR-V with naga")
	fs.IntVar(&c.Scale, "scale", c.Scale, "window pixels per cell")
	fs.StringVar(&c.LogLevel, "log", c.LogLevel, "log level: debug, info, warn or error")
}

// Options converts the configuration to Context options.
func (c *Config) Options() ([]gpuca.Option, error) {
	rule, err := lattice.ParseRule(c.Rule)
	if err != nil {
		return nil, err
	}
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", lattice.ErrInvalidGeometry, c.Width, c.Height)
	}
	seeder, err := c.seeder()
	if err != nil {
		return nil, err
	}
	w, h := uint32(c.Width), uint32(c.Height)
	return []gpuca.Option{
		gpuca.WithGeometry(w, h),
		gpuca.WithRule(rule),
		gpuca.WithHaloTiling(c.Tiled),
		gpuca.WithSeeder(seeder),
		gpuca.WithSeed(c.Seed),
		gpuca.WithPrecompiledSPIRV(c.SPIRV),
		gpuca.WithSurfaceSize(c.WindowSize()),
	}, nil
}

func (c *Config) seeder() (lattice.Seeder, error) {
	switch c.Seeder {
	case "patch":
		s := lattice.DefaultSymmetricPatch()
		s.Density = c.Density
		return s, nil
	case "random":
		return lattice.RandomFill{Density: c.Density, Alive: lattice.StateOn}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeeder, c.Seeder)
	}
}

// WindowSize returns the initial window size: the lattice scaled by Scale.
func (c *Config) WindowSize() (width, height uint32) {
	scale := c.Scale
	if scale < 1 {
		scale = 1
	}
	return uint32(c.Width * scale), uint32(c.Height * scale)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("app: log level: %w", err)
	}
	return level, nil
}
