//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device bundles the HAL device and queue a simulation runs on.
//
// A Device is either owned, created by OpenStandalone or OpenInstance and
// destroyed by Close, or shared, wrapping a device that belongs to a host
// such as a gogpu window. Close never destroys a shared device.
type Device struct {
	Device hal.Device
	Queue  hal.Queue

	// AdapterName is empty for shared devices.
	AdapterName string

	instance hal.Instance
	external bool
}

// InstanceCreator is the part of a HAL backend needed to open a device.
// Registered backends returned by hal.GetBackend and noop.API satisfy it.
type InstanceCreator interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// OpenStandalone opens a device on the Vulkan backend, preferring a discrete
// or integrated GPU over software adapters.
func OpenStandalone() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	return OpenInstance(backend)
}

// OpenInstance creates an instance on api and opens its preferred adapter.
func OpenInstance(api InstanceCreator) (*Device, error) {
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	slogger().Info("gpu: adapter selected", "name", selected.Info.Name, "adapters", len(adapters))
	return &Device{
		Device:      openDev.Device,
		Queue:       openDev.Queue,
		AdapterName: selected.Info.Name,
		instance:    instance,
	}, nil
}

// FromProvider wraps a device shared by a host. The provider either
// implements HalDevice() any and HalQueue() any, or returns from Device() a
// value with typed HalDevice and HalQueue accessors such as *wgpu.Device,
// which is what a gogpu window provides.
func FromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if hp, ok := provider.(halProvider); ok {
		device, ok := hp.HalDevice().(hal.Device)
		if !ok || device == nil {
			return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrNilDevice)
		}
		queue, ok := hp.HalQueue().(hal.Queue)
		if !ok || queue == nil {
			return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrNilDevice)
		}
		return Shared(device, queue), nil
	}

	type deviceProvider interface {
		Device() gpucontext.Device
	}
	type halDevice interface {
		HalDevice() hal.Device
		HalQueue() hal.Queue
	}
	dp, ok := provider.(deviceProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNilDevice)
	}
	hd, ok := dp.Device().(halDevice)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNilDevice)
	}
	device, queue := hd.HalDevice(), hd.HalQueue()
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: provider device is released", ErrNilDevice)
	}
	return Shared(device, queue), nil
}

// Shared wraps an externally owned device and queue.
func Shared(device hal.Device, queue hal.Queue) *Device {
	return &Device{Device: device, Queue: queue, external: true}
}

// External reports whether the device belongs to someone else.
func (d *Device) External() bool { return d.external }

// Close destroys an owned device and its instance. It is a no-op for shared
// devices and safe to call more than once.
func (d *Device) Close() {
	if d.external {
		return
	}
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.Queue = nil
}
