// Package lattice holds the host-side model of a 2D cellular automaton:
// lattice and workgroup geometry, the dispatch arithmetic shared with the
// GPU kernels, host snapshots of cell state, seed generators and CPU
// reference rules.
//
// Nothing in this package touches the GPU. The internal/gpu package uploads
// and reads back [Pattern] values; tests and the verify tool diff GPU output
// against [Rule.Step].
package lattice
