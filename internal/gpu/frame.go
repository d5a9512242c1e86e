//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// FrameState is the state of a FrameController.
type FrameState int

const (
	// FrameIdle means no frame is being recorded.
	FrameIdle FrameState = iota

	// FrameRendering means a frame is between its first submission and its
	// swap.
	FrameRendering
)

// String returns the string representation of FrameState.
func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "Idle"
	case FrameRendering:
		return "Rendering"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// FrameStats counts the work a FrameController has done.
type FrameStats struct {
	// Generation is the number of transitions computed since the last seed.
	Generation uint64

	// Frames is the total number of frames submitted.
	Frames uint64
}

// clearColor fills the render target outside the letterboxed lattice
// before the display kernel runs.
var clearColor = gputypes.Color{R: 0.02, G: 0.02, B: 0.03, A: 1}

// FrameController advances and displays one generation per frame.
//
// Frame records and submits the transition pass, then the display pass,
// then swaps the double buffer. The two submissions go to the same queue
// in that order, so the display always sees the completed transition
// without a host wait in between. The display pass binds the buffer the
// transition just wrote, so the frame shows the freshly computed
// generation.
//
// Command buffers of frame N are freed at the start of frame N+1 once the
// queue reports the last submission of frame N complete, which keeps at
// most one frame in flight.
//
// FrameController is NOT safe for concurrent use.
type FrameController struct {
	device  hal.Device
	queue   hal.Queue
	set     *PipelineSet
	buffers *DoubleBuffer

	state FrameState

	inflight      []hal.CommandBuffer
	inflightIndex uint64

	stats FrameStats
}

// NewFrameController creates a controller driving buffers with set.
func NewFrameController(device hal.Device, queue hal.Queue, set *PipelineSet, buffers *DoubleBuffer) (*FrameController, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &FrameController{
		device:   device,
		queue:    queue,
		set:      set,
		buffers:  buffers,
		inflight: make([]hal.CommandBuffer, 0, 2),
	}, nil
}

// State returns the current controller state.
func (f *FrameController) State() FrameState { return f.state }

// Stats returns the frame counters.
func (f *FrameController) Stats() FrameStats { return f.stats }

// ResetGeneration marks the current read buffer as generation zero.
// Called after seeding.
func (f *FrameController) ResetGeneration() { f.stats.Generation = 0 }

// Frame advances the lattice by one generation and draws it to target.
//
// If the transition was submitted but the display pass fails, the buffers
// are still swapped so the host view matches the GPU contents, and the
// error is returned.
func (f *FrameController) Frame(target hal.TextureView) error {
	if f.state != FrameIdle {
		return ErrFrameInProgress
	}
	f.state = FrameRendering
	defer func() { f.state = FrameIdle }()

	if err := f.reclaim(); err != nil {
		return err
	}

	read, write := f.buffers.Read(), f.buffers.Write()
	computeBuf, err := f.encodeTransition(read, write)
	if err != nil {
		return fmt.Errorf("transition: %w", err)
	}
	if err := f.submitOffscreen(computeBuf); err != nil {
		return fmt.Errorf("transition: %w", err)
	}
	f.stats.Generation++

	renderErr := f.display(write, target)
	f.buffers.Swap()
	f.stats.Frames++
	if renderErr != nil {
		return fmt.Errorf("display: %w", renderErr)
	}
	return nil
}

func (f *FrameController) display(src *StateBuffer, target hal.TextureView) error {
	renderBuf, err := f.encodeDisplay(src, target)
	if err != nil {
		return err
	}
	return f.submit(renderBuf)
}

// encodeTransition records one compute pass reading read at group 0 and
// writing write at group 1.
func (f *FrameController) encodeTransition(read, write *StateBuffer) (hal.CommandBuffer, error) {
	encoder, err := f.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ca_transition_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ca_transition"); err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	x, y := f.set.config.Workgroup.Dispatch(read.geometry)
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "ca_transition_pass"})
	pass.SetPipeline(f.set.transitionPipeline)
	pass.SetBindGroup(0, read.inputGroup, nil)
	pass.SetBindGroup(1, write.outputGroup, nil)
	pass.Dispatch(x, y, 1)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	return cmdBuf, nil
}

// encodeDisplay records one render pass drawing src over target.
func (f *FrameController) encodeDisplay(src *StateBuffer, target hal.TextureView) (hal.CommandBuffer, error) {
	encoder, err := f.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ca_display_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ca_display"); err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(DisplayPassDescriptor(target))
	rp.SetPipeline(f.set.displayPipeline)
	rp.SetBindGroup(0, src.displayGroup, nil)
	rp.SetVertexBuffer(0, f.set.quadBuf, 0)
	rp.Draw(QuadVertexCount, 1, 0, 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	return cmdBuf, nil
}

// DisplayPassDescriptor returns the render pass drawing to target.
func DisplayPassDescriptor(target hal.TextureView) *hal.RenderPassDescriptor {
	return &hal.RenderPassDescriptor{
		Label: "ca_display_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       target,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clearColor,
			},
		},
	}
}

func (f *FrameController) submit(cmdBuf hal.CommandBuffer) error {
	index, err := f.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		f.device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("submit: %w", err)
	}
	f.inflight = append(f.inflight, cmdBuf)
	f.inflightIndex = index
	return nil
}

// submitOffscreen submits work that does not touch the surface. Swapchain
// semaphores stay unbound so that they attach to the display submission
// and presentation waits for the frame that draws into the surface.
func (f *FrameController) submitOffscreen(cmdBuf hal.CommandBuffer) error {
	f.queue.SetSwapchainSuppressed(true)
	defer f.queue.SetSwapchainSuppressed(false)
	return f.submit(cmdBuf)
}

// reclaim waits for the previous frame and frees its command buffers.
func (f *FrameController) reclaim() error {
	if len(f.inflight) == 0 {
		return nil
	}
	if err := waitSubmission(f.queue, f.inflightIndex); err != nil {
		return fmt.Errorf("wait for previous frame: %w", err)
	}
	for _, cb := range f.inflight {
		f.device.FreeCommandBuffer(cb)
	}
	f.inflight = f.inflight[:0]
	return nil
}

// Wait blocks until every submitted frame has completed and frees its
// command buffers.
func (f *FrameController) Wait() error {
	return f.reclaim()
}

// Destroy waits for in-flight work and frees its command buffers.
func (f *FrameController) Destroy() {
	if f.device == nil {
		return
	}
	if err := f.reclaim(); err != nil {
		slogger().Warn("gpu: frame controller drain failed", "err", err)
	}
	f.device = nil
}
