//go:build !nogpu

package gpu

import "errors"

var (
	// ErrNilDevice is returned when a constructor receives a nil device or queue.
	ErrNilDevice = errors.New("gpu: device is nil")

	// ErrNoAdapter is returned when no GPU adapter could be opened.
	ErrNoAdapter = errors.New("gpu: no GPU adapter available")

	// ErrPipelineBuild wraps every failure while building the pipeline set.
	// Callers treat it as fatal.
	ErrPipelineBuild = errors.New("gpu: pipeline build failed")

	// ErrAliasedBuffers is returned when a double buffer is built from a
	// single state buffer.
	ErrAliasedBuffers = errors.New("gpu: read and write state buffers alias")

	// ErrUnsupportedWorkgroup is returned for a workgroup shape no kernel is
	// compiled for.
	ErrUnsupportedWorkgroup = errors.New("gpu: unsupported workgroup shape")

	// ErrGeometryMismatch is returned when a pattern does not match the
	// dimensions of the state buffer it is uploaded to.
	ErrGeometryMismatch = errors.New("gpu: pattern geometry does not match state buffer")

	// ErrFrameInProgress is returned when a frame is started while another
	// is still being recorded.
	ErrFrameInProgress = errors.New("gpu: frame already in progress")

	// ErrGPUTimeout is returned when a submission does not complete in time.
	ErrGPUTimeout = errors.New("gpu: timed out waiting for GPU")
)
