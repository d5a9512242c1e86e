//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpuca/internal/lattice"
)

// Upload writes p into buf in a single bulk texture write. The write is
// ordered on the queue before any command buffer submitted afterwards.
func Upload(queue hal.Queue, buf *StateBuffer, p lattice.Pattern) error {
	if queue == nil {
		return ErrNilDevice
	}
	if p.Geometry != buf.geometry || len(p.Cells) != buf.geometry.Cells() {
		return fmt.Errorf("%w: pattern %s, buffer %s", ErrGeometryMismatch, p.Geometry, buf.geometry)
	}
	w, h := buf.geometry.Width, buf.geometry.Height
	err := queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: buf.texture, MipLevel: 0},
		p.Bytes(),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * lattice.BytesPerCell, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", buf.label, err)
	}
	slogger().Debug("gpu: state uploaded", "buffer", buf.label, "bytes", len(p.Cells)*lattice.BytesPerCell)
	return nil
}

// Seed uploads p into the write buffer of db and swaps, so p becomes the
// current generation. Any frame already submitted reads the old buffers
// first because the queue executes in order.
func Seed(queue hal.Queue, db *DoubleBuffer, p lattice.Pattern) error {
	if err := Upload(queue, db.Write(), p); err != nil {
		return err
	}
	db.Swap()
	return nil
}
