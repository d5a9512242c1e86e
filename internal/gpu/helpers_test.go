//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/gpuca/internal/lattice"
)

// createNoopDevice creates a noop HAL device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		t.Fatal("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// recorder collects the commands issued through the recording wrappers as
// short strings, in order.
type recorder struct {
	events []string
}

func (r *recorder) log(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) reset() { r.events = r.events[:0] }

// labeledBindGroup remembers the label a bind group was created with so
// recorded SetBindGroup calls can be told apart.
type labeledBindGroup struct {
	hal.BindGroup
	label string
}

func groupLabel(g hal.BindGroup) string {
	if lg, ok := g.(*labeledBindGroup); ok {
		return lg.label
	}
	return "?"
}

type recordingDevice struct {
	hal.Device
	rec *recorder

	// failEnd makes EndEncoding fail on every encoder created afterwards.
	failEnd bool
}

func (d *recordingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	bg, err := d.Device.CreateBindGroup(desc)
	if err != nil {
		return nil, err
	}
	return &labeledBindGroup{BindGroup: bg, label: desc.Label}, nil
}

func (d *recordingDevice) DestroyBindGroup(g hal.BindGroup) {
	if lg, ok := g.(*labeledBindGroup); ok {
		g = lg.BindGroup
	}
	d.Device.DestroyBindGroup(g)
}

func (d *recordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, rec: d.rec, failEnd: d.failEnd}, nil
}

type recordingEncoder struct {
	hal.CommandEncoder
	rec     *recorder
	failEnd bool
}

var errEncodingFailed = errors.New("encoding failed")

func (e *recordingEncoder) EndEncoding() (hal.CommandBuffer, error) {
	if e.failEnd {
		return nil, errEncodingFailed
	}
	return e.CommandEncoder.EndEncoding()
}

func (e *recordingEncoder) DiscardEncoding() {
	e.rec.log("discard")
	e.CommandEncoder.DiscardEncoding()
}

func (e *recordingEncoder) BeginComputePass(desc *hal.ComputePassDescriptor) hal.ComputePassEncoder {
	e.rec.log("compute")
	return &recordingComputePass{ComputePassEncoder: e.CommandEncoder.BeginComputePass(desc), rec: e.rec}
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.rec.log("render")
	return &recordingRenderPass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc), rec: e.rec}
}

type recordingComputePass struct {
	hal.ComputePassEncoder
	rec *recorder
}

func (p *recordingComputePass) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	p.rec.log("bind %d %s", index, groupLabel(group))
	p.ComputePassEncoder.SetBindGroup(index, group, offsets)
}

func (p *recordingComputePass) Dispatch(x, y, z uint32) {
	p.rec.log("dispatch %d %d %d", x, y, z)
	p.ComputePassEncoder.Dispatch(x, y, z)
}

type recordingRenderPass struct {
	hal.RenderPassEncoder
	rec *recorder
}

func (p *recordingRenderPass) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	p.rec.log("bind %d %s", index, groupLabel(group))
	p.RenderPassEncoder.SetBindGroup(index, group, offsets)
}

func (p *recordingRenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.rec.log("draw %d", vertexCount)
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

type recordingQueue struct {
	hal.Queue
	rec  *recorder
	fail bool
}

var errSubmitRejected = errors.New("submit rejected")

func (q *recordingQueue) Submit(bufs []hal.CommandBuffer) (uint64, error) {
	if q.fail {
		return 0, errSubmitRejected
	}
	q.rec.log("submit")
	return q.Queue.Submit(bufs)
}

func (q *recordingQueue) SetSwapchainSuppressed(suppressed bool) {
	q.rec.log("suppress %t", suppressed)
	q.Queue.SetSwapchainSuppressed(suppressed)
}

// harness is a fully wired simulation on a noop device.
type harness struct {
	rec     *recorder
	device  *recordingDevice
	queue   *recordingQueue
	set     *PipelineSet
	buffers *DoubleBuffer
	frames  *FrameController
	target  hal.TextureView
}

func newHarness(t *testing.T, g lattice.Geometry, wg lattice.Workgroup) *harness {
	t.Helper()
	dev, q, cleanup := createNoopDevice(t)
	rec := &recorder{}
	h := &harness{
		rec:    rec,
		device: &recordingDevice{Device: dev, rec: rec},
		queue:  &recordingQueue{Queue: q, rec: rec},
	}

	config := DefaultPipelineConfig()
	config.Workgroup = wg
	set, err := NewPipelineSet(h.device, h.queue, config)
	if err != nil {
		cleanup()
		t.Fatalf("NewPipelineSet: %v", err)
	}
	h.set = set

	a, err := NewStateBuffer(h.device, set, g, "state_a")
	if err != nil {
		t.Fatalf("NewStateBuffer(a): %v", err)
	}
	b, err := NewStateBuffer(h.device, set, g, "state_b")
	if err != nil {
		t.Fatalf("NewStateBuffer(b): %v", err)
	}
	h.buffers, err = NewDoubleBuffer(a, b)
	if err != nil {
		t.Fatalf("NewDoubleBuffer: %v", err)
	}
	h.frames, err = NewFrameController(h.device, h.queue, set, h.buffers)
	if err != nil {
		t.Fatalf("NewFrameController: %v", err)
	}

	tex, err := dev.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_target",
		Size:          hal.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	view, err := dev.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "test_target_view"})
	if err != nil {
		t.Fatalf("CreateTextureView: %v", err)
	}
	h.target = view

	t.Cleanup(func() {
		h.frames.Destroy()
		h.buffers.Destroy(h.device)
		h.set.Destroy()
		dev.DestroyTextureView(view)
		dev.DestroyTexture(tex)
		cleanup()
	})
	return h
}
