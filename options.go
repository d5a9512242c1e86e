//go:build !nogpu

package gpuca

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpuca/internal/lattice"
)

// Option configures a Context.
type Option func(*options)

// options holds configuration for Context creation.
type options struct {
	geometry      lattice.Geometry
	rule          lattice.Rule
	workgroup     lattice.Workgroup
	seeder        lattice.Seeder
	seed          int64
	precompile    bool
	surfaceSize   SurfaceGeometry
	surfaceFormat gputypes.TextureFormat
}

// defaultOptions returns the default options: a 128x128 Life lattice on
// the untiled workgroup, seeded with a mirrored patch.
func defaultOptions() options {
	return options{
		geometry:      lattice.DefaultGeometry(),
		rule:          lattice.RuleLife,
		workgroup:     lattice.DirectWorkgroup(),
		seeder:        lattice.DefaultSymmetricPatch(),
		seed:          1,
		surfaceSize:   SurfaceGeometry{Width: 800, Height: 600},
		surfaceFormat: gputypes.TextureFormatBGRA8Unorm,
	}
}

// WithGeometry sets the lattice dimensions. They cannot change after the
// Context is created.
func WithGeometry(width, height uint32) Option {
	return func(o *options) {
		o.geometry = lattice.Geometry{Width: width, Height: height}
	}
}

// WithRule selects the transition rule.
func WithRule(r lattice.Rule) Option {
	return func(o *options) {
		o.rule = r
	}
}

// WithHaloTiling selects the shared-memory kernel: a 16x16 launch with a
// one-cell halo that writes 14x14 cells per workgroup.
func WithHaloTiling(enabled bool) Option {
	return func(o *options) {
		if enabled {
			o.workgroup = lattice.TiledWorkgroup()
		} else {
			o.workgroup = lattice.DirectWorkgroup()
		}
	}
}

// WithSeeder sets the generator used by Setup and Reseed.
func WithSeeder(s lattice.Seeder) Option {
	return func(o *options) {
		if s != nil {
			o.seeder = s
		}
	}
}

// WithSeed sets the base seed. Reseed n uses seed+n, so a run is
// reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithPrecompiledSPIRV compiles the kernels to SPIR-V with naga before
// creating shader modules.
func WithPrecompiledSPIRV(enabled bool) Option {
	return func(o *options) {
		o.precompile = enabled
	}
}

// WithSurfaceSize sets the initial surface size configured by NewContext.
func WithSurfaceSize(width, height uint32) Option {
	return func(o *options) {
		o.surfaceSize = SurfaceGeometry{Width: width, Height: height}
	}
}

// WithSurfaceFormat sets the color format used when the provider reports
// none.
func WithSurfaceFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.surfaceFormat = f
	}
}
