//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpuca/internal/lattice"
)

// StateFormat is the texel format of every state buffer.
const StateFormat = gputypes.TextureFormatR32Uint

// displayUniformSize is the byte size of the Display struct in display.wgsl:
// surface_size and lattice_size, both vec2<u32>.
const displayUniformSize = 16

// quadVertexStride is three float32 per vertex.
const quadVertexStride = 12

// quadVertices is the unit square as a triangle strip.
var quadVertices = [4][3]float32{
	{0, 0, 0},
	{1, 0, 0},
	{0, 1, 0},
	{1, 1, 0},
}

// QuadVertexCount is the vertex count of the display draw.
const QuadVertexCount = uint32(len(quadVertices))

// PipelineConfig selects the kernels a PipelineSet is built from.
type PipelineConfig struct {
	Rule      lattice.Rule
	Workgroup lattice.Workgroup

	// SurfaceFormat is the color target format of the display pipeline.
	SurfaceFormat gputypes.TextureFormat

	// PrecompileSPIRV compiles the kernels with naga and hands SPIR-V to the
	// device instead of WGSL.
	PrecompileSPIRV bool
}

// DefaultPipelineConfig returns Life on the untiled workgroup, drawing to a
// BGRA8 surface.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Rule:          lattice.RuleLife,
		Workgroup:     lattice.DirectWorkgroup(),
		SurfaceFormat: gputypes.TextureFormatBGRA8Unorm,
	}
}

// PipelineSet owns the transition compute pipeline, the display render
// pipeline and the resources shared by every frame: the quad vertex buffer
// and the display uniform buffer.
//
// The bind group layouts exist before any state buffer is created, since
// state buffers build their bind groups against them. Nothing in a
// PipelineSet changes after construction except the uniform contents.
type PipelineSet struct {
	device hal.Device
	config PipelineConfig

	transitionShader     hal.ShaderModule
	inputLayout          hal.BindGroupLayout
	outputLayout         hal.BindGroupLayout
	transitionPipeLayout hal.PipelineLayout
	transitionPipeline   hal.ComputePipeline

	displayShader     hal.ShaderModule
	displayLayout     hal.BindGroupLayout
	displayPipeLayout hal.PipelineLayout
	displayPipeline   hal.RenderPipeline

	quadBuf    hal.Buffer
	uniformBuf hal.Buffer
}

// NewPipelineSet builds every pipeline object in dependency order. On
// failure the partially built set is destroyed and the error wraps
// ErrPipelineBuild.
func NewPipelineSet(device hal.Device, queue hal.Queue, config PipelineConfig) (*PipelineSet, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	p := &PipelineSet{device: device, config: config}
	if err := p.build(queue); err != nil {
		p.Destroy()
		return nil, fmt.Errorf("%w: %w", ErrPipelineBuild, err)
	}
	slogger().Info("gpu: pipelines ready",
		"rule", config.Rule.String(),
		"workgroup", config.Workgroup.Size,
		"halo", config.Workgroup.Halo,
		"spirv", config.PrecompileSPIRV,
	)
	return p, nil
}

func (p *PipelineSet) build(queue hal.Queue) error {
	if err := p.createLayouts(); err != nil {
		return err
	}
	if err := p.createTransitionPipeline(); err != nil {
		return err
	}
	if err := p.createDisplayPipeline(); err != nil {
		return err
	}
	return p.createBuffers(queue)
}

func (p *PipelineSet) createLayouts() error {
	inputLayout, err := p.device.CreateBindGroupLayout(storageLayout("ca_input_layout", gputypes.StorageTextureAccessReadOnly))
	if err != nil {
		return fmt.Errorf("create input bind group layout: %w", err)
	}
	p.inputLayout = inputLayout

	outputLayout, err := p.device.CreateBindGroupLayout(storageLayout("ca_output_layout", gputypes.StorageTextureAccessWriteOnly))
	if err != nil {
		return fmt.Errorf("create output bind group layout: %w", err)
	}
	p.outputLayout = outputLayout

	displayLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "ca_display_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeUint,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeNonFiltering},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create display bind group layout: %w", err)
	}
	p.displayLayout = displayLayout
	return nil
}

func (p *PipelineSet) createTransitionPipeline() error {
	wgsl, err := TransitionSource(p.config.Rule, p.config.Workgroup)
	if err != nil {
		return err
	}
	src, err := shaderSource("ca_transition", wgsl, p.config.PrecompileSPIRV)
	if err != nil {
		return err
	}
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "ca_transition",
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("compile transition shader: %w", err)
	}
	p.transitionShader = shader

	// The same layout serves group 0 (input) and group 1 (output).
	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "ca_transition_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.inputLayout, p.outputLayout},
	})
	if err != nil {
		return fmt.Errorf("create transition pipeline layout: %w", err)
	}
	p.transitionPipeLayout = pipeLayout

	pipeline, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "ca_transition_pipeline",
		Layout:  p.transitionPipeLayout,
		Compute: hal.ComputeState{Module: p.transitionShader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create transition compute pipeline: %w", err)
	}
	p.transitionPipeline = pipeline
	return nil
}

func (p *PipelineSet) createDisplayPipeline() error {
	src, err := shaderSource("ca_display", DisplaySource(), p.config.PrecompileSPIRV)
	if err != nil {
		return err
	}
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "ca_display",
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("compile display shader: %w", err)
	}
	p.displayShader = shader

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "ca_display_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.displayLayout},
	})
	if err != nil {
		return fmt.Errorf("create display pipeline layout: %w", err)
	}
	p.displayPipeLayout = pipeLayout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "ca_display_pipeline",
		Layout: p.displayPipeLayout,
		Vertex: hal.VertexState{
			Module:     p.displayShader,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.displayShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.config.SurfaceFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create display render pipeline: %w", err)
	}
	p.displayPipeline = pipeline
	return nil
}

func (p *PipelineSet) createBuffers(queue hal.Queue) error {
	quadBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ca_quad",
		Size:  uint64(len(quadVertices) * quadVertexStride),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create quad vertex buffer: %w", err)
	}
	p.quadBuf = quadBuf
	if err := queue.WriteBuffer(p.quadBuf, 0, quadVertexBytes()); err != nil {
		return fmt.Errorf("write quad vertices: %w", err)
	}

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ca_display_uniform",
		Size:  displayUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create display uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf
	return nil
}

// Config returns the configuration the set was built from.
func (p *PipelineSet) Config() PipelineConfig { return p.config }

// WriteDisplayUniform uploads the surface and lattice sizes read by the
// display kernel.
func (p *PipelineSet) WriteDisplayUniform(queue hal.Queue, surfaceW, surfaceH uint32, g lattice.Geometry) error {
	if err := queue.WriteBuffer(p.uniformBuf, 0, displayUniformBytes(surfaceW, surfaceH, g)); err != nil {
		return fmt.Errorf("write display uniform: %w", err)
	}
	return nil
}

// Destroy releases every object in reverse creation order. Safe on a
// partially built set.
func (p *PipelineSet) Destroy() {
	if p.device == nil {
		return
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.quadBuf != nil {
		p.device.DestroyBuffer(p.quadBuf)
		p.quadBuf = nil
	}
	if p.displayPipeline != nil {
		p.device.DestroyRenderPipeline(p.displayPipeline)
		p.displayPipeline = nil
	}
	if p.displayPipeLayout != nil {
		p.device.DestroyPipelineLayout(p.displayPipeLayout)
		p.displayPipeLayout = nil
	}
	if p.displayShader != nil {
		p.device.DestroyShaderModule(p.displayShader)
		p.displayShader = nil
	}
	if p.transitionPipeline != nil {
		p.device.DestroyComputePipeline(p.transitionPipeline)
		p.transitionPipeline = nil
	}
	if p.transitionPipeLayout != nil {
		p.device.DestroyPipelineLayout(p.transitionPipeLayout)
		p.transitionPipeLayout = nil
	}
	if p.transitionShader != nil {
		p.device.DestroyShaderModule(p.transitionShader)
		p.transitionShader = nil
	}
	if p.displayLayout != nil {
		p.device.DestroyBindGroupLayout(p.displayLayout)
		p.displayLayout = nil
	}
	if p.outputLayout != nil {
		p.device.DestroyBindGroupLayout(p.outputLayout)
		p.outputLayout = nil
	}
	if p.inputLayout != nil {
		p.device.DestroyBindGroupLayout(p.inputLayout)
		p.inputLayout = nil
	}
}

// storageLayout describes a single R32Uint storage texture at binding 0
// with the given access, visible to the transition kernel.
func storageLayout(label string, access gputypes.StorageTextureAccess) *hal.BindGroupLayoutDescriptor {
	return &hal.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				StorageTexture: &gputypes.StorageTextureBindingLayout{
					Access:        access,
					Format:        StateFormat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	}
}

// quadVertexLayout matches the vs_main input in display.wgsl:
//
//	location 0: position (vec3<f32>)
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			},
		},
	}
}

func quadVertexBytes() []byte {
	buf := make([]byte, 0, len(quadVertices)*quadVertexStride)
	for _, v := range quadVertices {
		for _, c := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c))
		}
	}
	return buf
}

func displayUniformBytes(surfaceW, surfaceH uint32, g lattice.Geometry) []byte {
	buf := make([]byte, 0, displayUniformSize)
	buf = binary.LittleEndian.AppendUint32(buf, surfaceW)
	buf = binary.LittleEndian.AppendUint32(buf, surfaceH)
	buf = binary.LittleEndian.AppendUint32(buf, g.Width)
	buf = binary.LittleEndian.AppendUint32(buf, g.Height)
	return buf
}
