//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpuca/internal/lattice"
)

//go:embed shaders/transition.wgsl
var transitionShaderSource string

//go:embed shaders/transition_tiled.wgsl
var transitionTiledShaderSource string

//go:embed shaders/rule_life.wgsl
var ruleLifeShaderSource string

//go:embed shaders/rule_brain.wgsl
var ruleBrainShaderSource string

//go:embed shaders/display.wgsl
var displayShaderSource string

// TransitionSource returns the WGSL for the transition kernel of rule
// launched with wg. Only the 16x16 workgroup is compiled, with either no
// halo or a one-cell halo.
func TransitionSource(rule lattice.Rule, wg lattice.Workgroup) (string, error) {
	var kernel string
	switch {
	case wg.Size == lattice.WorkgroupSize && wg.Halo == 0:
		kernel = transitionShaderSource
	case wg.Size == lattice.WorkgroupSize && wg.Halo == 1:
		kernel = transitionTiledShaderSource
	default:
		return "", fmt.Errorf("%w: size %d halo %d", ErrUnsupportedWorkgroup, wg.Size, wg.Halo)
	}

	var ruleSrc string
	switch rule {
	case lattice.RuleLife:
		ruleSrc = ruleLifeShaderSource
	case lattice.RuleBrain:
		ruleSrc = ruleBrainShaderSource
	default:
		return "", fmt.Errorf("gpu: no kernel for %v", rule)
	}
	return ruleSrc + "\n" + kernel, nil
}

// DisplaySource returns the WGSL for the display render kernel.
func DisplaySource() string { return displayShaderSource }

// CompileSPIRV compiles WGSL to SPIR-V words with naga.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}
	// SPIR-V is a stream of little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return code, nil
}

// shaderSource builds the module source for label, optionally precompiled.
func shaderSource(label, wgsl string, precompile bool) (hal.ShaderSource, error) {
	if !precompile {
		return hal.ShaderSource{WGSL: wgsl}, nil
	}
	code, err := CompileSPIRV(wgsl)
	if err != nil {
		return hal.ShaderSource{}, fmt.Errorf("%s: %w", label, err)
	}
	slogger().Debug("kernel precompiled", "label", label, "words", len(code))
	return hal.ShaderSource{SPIRV: code}, nil
}
