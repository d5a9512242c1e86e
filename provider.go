//go:build !nogpu

package gpuca

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpuca/internal/gpu"
)

// HALProvider is a gpucontext.DeviceProvider backed directly by a HAL
// device. It lets a Context run without a window host: headless tools open
// one with OpenStandalone, tests wrap a noop device with NewHALProvider.
//
// The gpucontext handle accessors return nil; consumers reach the device
// through HalDevice and HalQueue.
type HALProvider struct {
	dev    *gpu.Device
	format gputypes.TextureFormat
}

var _ gpucontext.DeviceProvider = (*HALProvider)(nil)

// OpenStandalone opens a Vulkan device owned by the returned provider.
// Close the provider after every Context using it is closed.
func OpenStandalone(format gputypes.TextureFormat) (*HALProvider, error) {
	dev, err := gpu.OpenStandalone()
	if err != nil {
		return nil, err
	}
	return &HALProvider{dev: dev, format: format}, nil
}

// NewHALProvider wraps an existing device and queue. Close does not destroy
// them.
func NewHALProvider(device hal.Device, queue hal.Queue, format gputypes.TextureFormat) *HALProvider {
	return &HALProvider{dev: gpu.Shared(device, queue), format: format}
}

func (p *HALProvider) Device() gpucontext.Device             { return nil }
func (p *HALProvider) Queue() gpucontext.Queue               { return nil }
func (p *HALProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *HALProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }

// AdapterInfo reports the adapter name. The type is not tracked.
func (p *HALProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: p.dev.AdapterName, Type: gpucontext.AdapterTypeUnknown}
}

// HalDevice returns the hal.Device.
func (p *HALProvider) HalDevice() any { return p.dev.Device }

// HalQueue returns the hal.Queue.
func (p *HALProvider) HalQueue() any { return p.dev.Queue }

// HAL returns the typed device and queue.
func (p *HALProvider) HAL() (hal.Device, hal.Queue) { return p.dev.Device, p.dev.Queue }

// AdapterName returns the adapter name of a standalone device.
func (p *HALProvider) AdapterName() string { return p.dev.AdapterName }

// Close destroys a device opened by OpenStandalone.
func (p *HALProvider) Close() { p.dev.Close() }
