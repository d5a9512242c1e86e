package lattice

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned for a lattice with a zero dimension or one
// that exceeds the device texture limit.
var ErrInvalidGeometry = errors.New("lattice: invalid geometry")

// DefaultWidth and DefaultHeight are the lattice dimensions used when none
// are configured.
const (
	DefaultWidth  = 128
	DefaultHeight = 128
)

// Geometry is the fixed width and height of the lattice in cells.
type Geometry struct {
	Width  uint32
	Height uint32
}

// DefaultGeometry returns the 128x128 lattice.
func DefaultGeometry() Geometry {
	return Geometry{Width: DefaultWidth, Height: DefaultHeight}
}

// Cells returns the number of cells in the lattice.
func (g Geometry) Cells() int {
	return int(g.Width) * int(g.Height)
}

// Validate checks that both dimensions are positive and, when maxDim is
// non-zero, no larger than maxDim.
func (g Geometry) Validate(maxDim uint32) error {
	if g.Width == 0 || g.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, g.Width, g.Height)
	}
	if maxDim != 0 && (g.Width > maxDim || g.Height > maxDim) {
		return fmt.Errorf("%w: %dx%d exceeds device limit %d", ErrInvalidGeometry, g.Width, g.Height, maxDim)
	}
	return nil
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// WorkgroupSize is the square workgroup extent compiled into every kernel.
const WorkgroupSize = 16

// Workgroup describes the launch shape of the transition kernel. Size is the
// launched extent along each axis. Halo is the number of border invocations
// per side that only load neighbors into shared memory and produce no
// output, so each workgroup advances Useful() cells per axis.
type Workgroup struct {
	Size uint32
	Halo uint32
}

// DirectWorkgroup is the untiled 16x16 launch.
func DirectWorkgroup() Workgroup {
	return Workgroup{Size: WorkgroupSize}
}

// TiledWorkgroup is the 16x16 launch with a one-cell halo (14x14 useful).
func TiledWorkgroup() Workgroup {
	return Workgroup{Size: WorkgroupSize, Halo: 1}
}

// Useful returns the number of cells per axis a single workgroup writes.
func (w Workgroup) Useful() uint32 {
	if 2*w.Halo >= w.Size {
		return 0
	}
	return w.Size - 2*w.Halo
}

// Dispatch returns the workgroup counts along x and y for the lattice.
func (w Workgroup) Dispatch(g Geometry) (x, y uint32) {
	u := w.Useful()
	return DispatchCount(g.Width, u), DispatchCount(g.Height, u)
}

// DispatchCount returns the smallest number of groups of size useful that
// covers d cells: ceil(d / useful). A zero useful extent yields zero.
func DispatchCount(d, useful uint32) uint32 {
	if useful == 0 {
		return 0
	}
	return (d + useful - 1) / useful
}
