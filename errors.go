//go:build !nogpu

package gpuca

import (
	"errors"

	"github.com/gogpu/gpuca/internal/gpu"
)

var (
	// ErrNotReady is returned by frame and seed operations before Setup
	// has completed.
	ErrNotReady = errors.New("gpuca: context is not ready")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("gpuca: context is closed")

	// ErrAlreadySetUp is returned when Setup is called twice.
	ErrAlreadySetUp = errors.New("gpuca: context is already set up")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("gpuca: nil DeviceProvider")

	// ErrNilSurface is returned when a nil Surface is passed.
	ErrNilSurface = errors.New("gpuca: nil Surface")

	// ErrNoDevice is returned when the provider does not yield a usable
	// HAL device and queue.
	ErrNoDevice = errors.New("gpuca: no GPU device")

	// ErrStateSize is returned by LoadState for a payload whose length is
	// not four bytes per cell.
	ErrStateSize = errors.New("gpuca: state payload size mismatch")

	// ErrSurfaceNotConfigured is returned by Acquire before Configure.
	ErrSurfaceNotConfigured = errors.New("gpuca: surface is not configured")

	// ErrPipelineBuild is returned when the GPU pipelines cannot be built.
	// It is fatal: the context stays uninitialized.
	ErrPipelineBuild = gpu.ErrPipelineBuild
)
