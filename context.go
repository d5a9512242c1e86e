//go:build !nogpu

package gpuca

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpuca/internal/gpu"
	"github.com/gogpu/gpuca/internal/lattice"
)

// State is the lifecycle state of a Context.
type State int

const (
	// StateUninitialized means the device and surface are bound but no
	// pipelines or state buffers exist.
	StateUninitialized State = iota

	// StateReady means frames, reseeds and state loads are accepted.
	StateReady

	// StateClosed means every GPU object owned by the Context is released.
	StateClosed
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Context runs one cellular automaton on a GPU device and presents it to a
// Surface.
//
// Construction is two-phase. NewContext binds the device and configures the
// surface; Setup builds the pipelines, allocates the two state buffers and
// seeds the lattice. Initialize does both. Frame and seed operations fail
// with ErrNotReady until Setup succeeds.
//
// Each AdvanceAndRender computes exactly one generation and displays it.
// After a seed, the k-th frame shows generation k.
//
// Context is safe for concurrent use; operations are serialized.
type Context struct {
	mu sync.Mutex

	opts    options
	device  *gpu.Device
	surface Surface
	format  gputypes.TextureFormat

	geometry    lattice.Geometry
	surfaceSize SurfaceGeometry
	state       State

	set     *gpu.PipelineSet
	buffers *gpu.DoubleBuffer
	frames  *gpu.FrameController

	reseeds int64
}

// Initialize creates a Context and runs Setup. On failure nothing is left
// allocated.
func Initialize(provider gpucontext.DeviceProvider, surface Surface, opts ...Option) (*Context, error) {
	c, err := NewContext(provider, surface, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Setup(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewContext binds the provider's device and configures surface at the
// configured surface size. The provider must expose HalDevice and HalQueue.
// The returned Context is uninitialized.
func NewContext(provider gpucontext.DeviceProvider, surface Surface, opts ...Option) (*Context, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if surface == nil {
		return nil, ErrNilSurface
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.geometry.Validate(gputypes.DefaultLimits().MaxTextureDimension2D); err != nil {
		return nil, err
	}

	dev, err := gpu.FromProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}

	format := provider.SurfaceFormat()
	if format == 0 {
		format = o.surfaceFormat
	}

	c := &Context{
		opts:     o,
		device:   dev,
		surface:  surface,
		format:   format,
		geometry: o.geometry,
	}
	if o.surfaceSize.Width > 0 && o.surfaceSize.Height > 0 {
		if err := surface.Configure(o.surfaceSize.Width, o.surfaceSize.Height); err != nil {
			return nil, fmt.Errorf("gpuca: configure surface: %w", err)
		}
		c.surfaceSize = o.surfaceSize
	}
	Logger().Debug("gpuca: context created",
		"lattice", c.geometry.String(),
		"surface_width", c.surfaceSize.Width,
		"surface_height", c.surfaceSize.Height,
	)
	return c, nil
}

// Setup builds the pipeline set, allocates both state buffers, writes the
// display uniform and seeds the lattice. It moves the Context to Ready.
// A failure leaves the Context uninitialized with nothing allocated.
func (c *Context) Setup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateReady:
		return ErrAlreadySetUp
	case StateClosed:
		return ErrClosed
	}

	if err := c.setupLocked(); err != nil {
		c.teardownLocked()
		return err
	}
	c.state = StateReady
	if err := c.reseedLocked(); err != nil {
		c.teardownLocked()
		c.state = StateUninitialized
		return err
	}
	Logger().Info("gpuca: ready",
		"lattice", c.geometry.String(),
		"rule", c.opts.rule.String(),
		"halo", c.opts.workgroup.Halo,
	)
	return nil
}

func (c *Context) setupLocked() error {
	set, err := gpu.NewPipelineSet(c.device.Device, c.device.Queue, gpu.PipelineConfig{
		Rule:            c.opts.rule,
		Workgroup:       c.opts.workgroup,
		SurfaceFormat:   c.format,
		PrecompileSPIRV: c.opts.precompile,
	})
	if err != nil {
		return err
	}
	c.set = set

	a, err := gpu.NewStateBuffer(c.device.Device, set, c.geometry, "ca_state_0")
	if err != nil {
		return err
	}
	b, err := gpu.NewStateBuffer(c.device.Device, set, c.geometry, "ca_state_1")
	if err != nil {
		a.Destroy(c.device.Device)
		return err
	}
	buffers, err := gpu.NewDoubleBuffer(a, b)
	if err != nil {
		a.Destroy(c.device.Device)
		b.Destroy(c.device.Device)
		return err
	}
	c.buffers = buffers

	frames, err := gpu.NewFrameController(c.device.Device, c.device.Queue, set, buffers)
	if err != nil {
		return err
	}
	c.frames = frames

	return set.WriteDisplayUniform(c.device.Queue, c.surfaceSize.Width, c.surfaceSize.Height, c.geometry)
}

// teardownLocked releases pipelines and buffers in reverse order.
func (c *Context) teardownLocked() {
	if c.frames != nil {
		c.frames.Destroy()
		c.frames = nil
	}
	if c.buffers != nil {
		c.buffers.Destroy(c.device.Device)
		c.buffers = nil
	}
	if c.set != nil {
		c.set.Destroy()
		c.set = nil
	}
}

// Resize reconfigures the surface. A zero width or height is ignored
// without touching the surface, which happens while a window is minimized.
// The submitted frame is waited for first, since reconfiguring may release
// the view it renders into. The lattice geometry never changes.
func (c *Context) Resize(width, height uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	if width == 0 || height == 0 {
		Logger().Debug("gpuca: resize ignored", "width", width, "height", height)
		return nil
	}
	if c.frames != nil {
		if err := c.frames.Wait(); err != nil {
			return fmt.Errorf("gpuca: resize: %w", err)
		}
	}
	if err := c.surface.Configure(width, height); err != nil {
		return fmt.Errorf("gpuca: configure surface: %w", err)
	}
	c.surfaceSize = SurfaceGeometry{Width: width, Height: height}
	if c.set != nil {
		return c.set.WriteDisplayUniform(c.device.Queue, width, height, c.geometry)
	}
	return nil
}

// AdvanceAndRender computes one generation and presents it.
func (c *Context) AdvanceAndRender() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireReady(); err != nil {
		return err
	}
	view, err := c.surface.Acquire()
	if err != nil {
		return fmt.Errorf("gpuca: acquire surface: %w", err)
	}
	if err := c.frames.Frame(view); err != nil {
		return fmt.Errorf("gpuca: frame: %w", err)
	}
	if err := c.surface.Present(); err != nil {
		return fmt.Errorf("gpuca: present: %w", err)
	}
	return nil
}

// Reseed replaces the lattice with a fresh pattern from the configured
// seeder. Each call draws from a new deterministic stream.
func (c *Context) Reseed() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireReady(); err != nil {
		return err
	}
	return c.reseedLocked()
}

func (c *Context) reseedLocked() error {
	rng := lattice.NewRNG(c.opts.seed + c.reseeds)
	c.reseeds++
	p := c.opts.seeder.Seed(c.geometry, rng)
	if err := gpu.Seed(c.device.Queue, c.buffers, p); err != nil {
		return fmt.Errorf("gpuca: seed: %w", err)
	}
	c.frames.ResetGeneration()
	Logger().Info("gpuca: lattice seeded", "reseed", c.reseeds, "live", p.Count(lattice.StateOn))
	return nil
}

// LoadState replaces the lattice with raw, four little-endian bytes per
// cell in row-major order.
func (c *Context) LoadState(raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireReady(); err != nil {
		return err
	}
	p, err := lattice.PatternFromBytes(c.geometry, raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStateSize, err)
	}
	if err := gpu.Seed(c.device.Queue, c.buffers, p); err != nil {
		return fmt.Errorf("gpuca: load state: %w", err)
	}
	c.frames.ResetGeneration()
	return nil
}

// Snapshot reads the current generation back to the host. It blocks until
// all submitted frames have completed.
func (c *Context) Snapshot() (lattice.Pattern, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireReady(); err != nil {
		return lattice.Pattern{}, err
	}
	p, err := gpu.ReadState(c.device.Device, c.device.Queue, c.buffers.Read())
	if err != nil {
		return lattice.Pattern{}, fmt.Errorf("gpuca: snapshot: %w", err)
	}
	return p, nil
}

// Close waits for submitted work and releases every GPU object the Context
// owns, including the surface. A device shared through the provider stays
// alive. Close is idempotent.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil
	}
	c.teardownLocked()
	c.surface.Destroy()
	c.device.Close()
	c.state = StateClosed
	Logger().Debug("gpuca: context closed")
	return nil
}

func (c *Context) requireReady() error {
	switch c.state {
	case StateReady:
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return ErrNotReady
	}
}

// State returns the lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Geometry returns the lattice dimensions.
func (c *Context) Geometry() lattice.Geometry { return c.geometry }

// SurfaceGeometry returns the last accepted surface size.
func (c *Context) SurfaceGeometry() SurfaceGeometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surfaceSize
}

// Active returns the index of the state buffer holding the current
// generation, or -1 before Setup.
func (c *Context) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buffers == nil {
		return -1
	}
	return c.buffers.Active()
}

// Generation returns the number of generations computed since the last
// seed or state load.
func (c *Context) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frames == nil {
		return 0
	}
	return c.frames.Stats().Generation
}

// IsFatal reports whether err leaves the Context unusable. Pipeline build
// and device errors are fatal; per-frame errors are not.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPipelineBuild) || errors.Is(err, ErrNoDevice)
}
