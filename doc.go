//go:build !nogpu

// Package gpuca runs two-dimensional cellular automata on the GPU.
//
// # Overview
//
// gpuca keeps the whole lattice in GPU memory. Two state textures form a
// double buffer: each frame a compute kernel reads one and writes the
// next generation into the other, a render pass draws the fresh generation
// to the presentation surface, and the roles swap. The host only touches
// cell data when it seeds the lattice or reads a snapshot back.
//
// # Quick Start
//
//	import "github.com/gogpu/gpuca"
//
//	provider, err := gpuca.OpenStandalone(gputypes.TextureFormatRGBA8Unorm)
//	if err != nil {
//		log.Fatal(err)
//	}
//	surface := gpuca.NewOffscreenSurface(provider.HalDevice().(hal.Device), gputypes.TextureFormatRGBA8Unorm)
//
//	ca, err := gpuca.Initialize(provider, surface,
//		gpuca.WithGeometry(256, 256),
//		gpuca.WithRule(lattice.RuleBrain),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ca.Close()
//
//	for range 100 {
//		if err := ca.AdvanceAndRender(); err != nil {
//			log.Print(err)
//		}
//	}
//
// # Lifecycle
//
// NewContext binds a device and configures the surface. Setup builds the
// pipelines, allocates both state buffers and seeds the lattice, moving the
// Context to StateReady. Initialize runs both. Close releases everything
// and is safe to call twice.
//
// # Rules
//
// Two rules ship with the package: Conway's Life and Brian's Brain, a
// three-state rule with a refractory state. Both use the Moore
// neighborhood on a toroidal lattice. The lattice package carries a CPU
// reference implementation of each, used to verify GPU output.
//
// # Workgroups
//
// The transition kernel runs 16x16 workgroups. WithHaloTiling switches to
// a variant that stages a tile with a one-cell halo in workgroup memory,
// covering 14x14 cells per group. Both produce identical generations.
//
// # Logging
//
// Logging is silent by default. Use SetLogger to route the package's
// slog output to a handler of your choice.
package gpuca
