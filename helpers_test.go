//go:build !nogpu

package gpuca

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop HAL device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
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
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

var errPresentLost = errors.New("surface lost")

// testSurface wraps an OffscreenSurface so tests can inject present
// failures and observe teardown.
type testSurface struct {
	*OffscreenSurface
	presentErr error
	destroyed  int
}

func (s *testSurface) Present() error {
	if s.presentErr != nil {
		return s.presentErr
	}
	return s.OffscreenSurface.Present()
}

func (s *testSurface) Destroy() {
	s.destroyed++
	s.OffscreenSurface.Destroy()
}

// newTestProvider returns a provider and surface over a fresh noop device.
func newTestProvider(t *testing.T) (*HALProvider, *testSurface) {
	t.Helper()
	device, queue := createNoopDevice(t)
	provider := NewHALProvider(device, queue, gputypes.TextureFormatBGRA8Unorm)
	surface := &testSurface{OffscreenSurface: NewOffscreenSurface(device, gputypes.TextureFormatBGRA8Unorm)}
	return provider, surface
}

// newReadyContext returns an initialized Context on a noop device.
func newReadyContext(t *testing.T, opts ...Option) (*Context, *testSurface) {
	t.Helper()
	provider, surface := newTestProvider(t)
	c, err := Initialize(provider, surface, opts...)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, surface
}

// laggingQueue reports each submission complete only after lag polls, so
// work stays in flight until something waits for it.
type laggingQueue struct {
	hal.Queue
	lag       int
	polls     int
	submitted uint64
	completed uint64
}

func (q *laggingQueue) Submit(bufs []hal.CommandBuffer) (uint64, error) {
	index, err := q.Queue.Submit(bufs)
	if err == nil {
		q.submitted = index
		q.polls = 0
	}
	return index, err
}

func (q *laggingQueue) PollCompleted() uint64 {
	if q.polls < q.lag {
		q.polls++
		return q.completed
	}
	q.completed = q.submitted
	return q.completed
}

func (q *laggingQueue) inFlight() bool { return q.completed < q.submitted }

// watchingDevice counts textures destroyed while the queue has work in
// flight.
type watchingDevice struct {
	hal.Device
	queue             *laggingQueue
	destroyedInFlight int
}

func (d *watchingDevice) DestroyTexture(texture hal.Texture) {
	if d.queue.inFlight() {
		d.destroyedInFlight++
	}
	d.Device.DestroyTexture(texture)
}
