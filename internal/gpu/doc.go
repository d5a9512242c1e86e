//go:build !nogpu

// Package gpu runs a 2D cellular automaton on the GPU.
//
// This is an internal package used by gpuca. It drives the gogpu/wgpu HAL
// directly (Pure Go, zero CGO) and owns every GPU object the simulation
// needs.
//
// # Architecture Overview
//
// Each frame advances the lattice by exactly one generation and draws it:
//
//	read buffer -> transition (compute) -> write buffer -> display (render) -> surface
//	                                        then swap
//
// Key components:
//
//   - PipelineSet: transition compute pipeline, display render pipeline,
//     bind group layouts, the quad vertex buffer and the display uniform
//   - StateBuffer: one R32Uint texture with its view, sampler and bind groups
//   - DoubleBuffer: two StateBuffers in alternating read/write roles
//   - FrameController: records, submits and swaps, one generation per frame
//   - Upload, Seed, ReadState: bulk host transfers
//
// # Ordering
//
// All work goes through one in-order queue. Seeding writes into the write
// buffer and then swaps, so a seed submitted between frames is observed by
// the next transition and never by a frame already submitted. The display
// pass follows the transition pass on the same queue and needs no host-side
// synchronization.
//
// # Kernels
//
// WGSL sources are embedded from shaders/. The transition kernel is linked
// from a rule (rule_life.wgsl, rule_brain.wgsl) and a launch shape
// (transition.wgsl for 16x16, transition_tiled.wgsl for 16x16 with a
// one-cell halo and 14x14 outputs per workgroup). Kernels can optionally be
// compiled to SPIR-V with gogpu/naga before reaching the device.
package gpu
