//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpuca/internal/lattice"
)

// StateBuffer is one generation's worth of lattice storage: an R32Uint
// texture plus everything needed to bind it. The input group binds the
// texture as a read-only storage texture at group 0 while the buffer holds
// the current generation; the output group binds it write-only at group 1
// while it receives the next one. The display group binds it as a sampled
// texture with the shared display uniform.
type StateBuffer struct {
	label    string
	geometry lattice.Geometry

	texture hal.Texture
	view    hal.TextureView
	sampler hal.Sampler

	inputGroup   hal.BindGroup
	outputGroup  hal.BindGroup
	displayGroup hal.BindGroup
}

// NewStateBuffer allocates a state buffer for g with bind groups built
// against the layouts of set.
func NewStateBuffer(device hal.Device, set *PipelineSet, g lattice.Geometry, label string) (*StateBuffer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if err := g.Validate(0); err != nil {
		return nil, err
	}
	b := &StateBuffer{label: label, geometry: g}
	if err := b.create(device, set); err != nil {
		b.Destroy(device)
		return nil, fmt.Errorf("state buffer %s: %w", label, err)
	}
	slogger().Debug("gpu: state buffer created", "label", label, "size", g.String())
	return b, nil
}

func (b *StateBuffer) create(device hal.Device, set *PipelineSet) error {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: b.label,
		Size: hal.Extent3D{
			Width:              b.geometry.Width,
			Height:             b.geometry.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        StateFormat,
		Usage: gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageStorageBinding |
			gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create texture: %w", err)
	}
	b.texture = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: b.label + "_view"})
	if err != nil {
		return fmt.Errorf("create texture view: %w", err)
	}
	b.view = view

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        b.label + "_sampler",
		AddressModeU: gputypes.AddressModeRepeat,
		AddressModeV: gputypes.AddressModeRepeat,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	b.sampler = sampler

	storage := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
	}
	inputGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   b.label + "_input",
		Layout:  set.inputLayout,
		Entries: storage,
	})
	if err != nil {
		return fmt.Errorf("create input bind group: %w", err)
	}
	b.inputGroup = inputGroup

	outputGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   b.label + "_output",
		Layout:  set.outputLayout,
		Entries: storage,
	})
	if err != nil {
		return fmt.Errorf("create output bind group: %w", err)
	}
	b.outputGroup = outputGroup

	displayGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  b.label + "_display",
		Layout: set.displayLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
			{Binding: 2, Resource: gputypes.BufferBinding{
				Buffer: set.uniformBuf.NativeHandle(), Offset: 0, Size: displayUniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create display bind group: %w", err)
	}
	b.displayGroup = displayGroup
	return nil
}

// Geometry returns the fixed dimensions of the buffer.
func (b *StateBuffer) Geometry() lattice.Geometry { return b.geometry }

// Texture returns the backing texture.
func (b *StateBuffer) Texture() hal.Texture { return b.texture }

// InputGroup returns the read-only storage bind group.
func (b *StateBuffer) InputGroup() hal.BindGroup { return b.inputGroup }

// OutputGroup returns the write-only storage bind group.
func (b *StateBuffer) OutputGroup() hal.BindGroup { return b.outputGroup }

// DisplayGroup returns the sampled-texture bind group.
func (b *StateBuffer) DisplayGroup() hal.BindGroup { return b.displayGroup }

// Destroy releases the buffer's GPU objects. Safe on a partially built
// buffer and safe to call twice.
func (b *StateBuffer) Destroy(device hal.Device) {
	if device == nil {
		return
	}
	if b.displayGroup != nil {
		device.DestroyBindGroup(b.displayGroup)
		b.displayGroup = nil
	}
	if b.outputGroup != nil {
		device.DestroyBindGroup(b.outputGroup)
		b.outputGroup = nil
	}
	if b.inputGroup != nil {
		device.DestroyBindGroup(b.inputGroup)
		b.inputGroup = nil
	}
	if b.sampler != nil {
		device.DestroySampler(b.sampler)
		b.sampler = nil
	}
	if b.view != nil {
		device.DestroyTextureView(b.view)
		b.view = nil
	}
	if b.texture != nil {
		device.DestroyTexture(b.texture)
		b.texture = nil
	}
}

// DoubleBuffer alternates two state buffers. Read is the current
// generation and Write receives the next; they never alias. Only Swap
// changes which is which.
type DoubleBuffer struct {
	buffers [2]*StateBuffer
	active  int
}

// NewDoubleBuffer pairs two distinct state buffers of equal geometry.
// The first starts in the read position.
func NewDoubleBuffer(a, b *StateBuffer) (*DoubleBuffer, error) {
	if a == nil || b == nil || a == b {
		return nil, ErrAliasedBuffers
	}
	if a.geometry != b.geometry {
		return nil, fmt.Errorf("%w: %s vs %s", ErrGeometryMismatch, a.geometry, b.geometry)
	}
	return &DoubleBuffer{buffers: [2]*StateBuffer{a, b}}, nil
}

// Read returns the buffer holding the current generation.
func (d *DoubleBuffer) Read() *StateBuffer { return d.buffers[d.active] }

// Write returns the buffer the next generation is written to.
func (d *DoubleBuffer) Write() *StateBuffer { return d.buffers[1-d.active] }

// Swap exchanges the read and write roles.
func (d *DoubleBuffer) Swap() { d.active = 1 - d.active }

// Active returns the index of the read buffer, 0 or 1.
func (d *DoubleBuffer) Active() int { return d.active }

// Destroy releases both buffers.
func (d *DoubleBuffer) Destroy(device hal.Device) {
	for _, b := range d.buffers {
		if b != nil {
			b.Destroy(device)
		}
	}
}
