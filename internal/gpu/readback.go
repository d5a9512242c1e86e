//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpuca/internal/lattice"
)

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// alignedRowPitch returns the staging row pitch for a lattice row.
func alignedRowPitch(width uint32) uint32 {
	row := width * lattice.BytesPerCell
	return (row + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// ReadState copies buf to the host and blocks until the copy completes.
// Work submitted earlier on queue finishes first.
func ReadState(device hal.Device, queue hal.Queue, buf *StateBuffer) (lattice.Pattern, error) {
	if device == nil || queue == nil {
		return lattice.Pattern{}, ErrNilDevice
	}
	g := buf.geometry
	pitch := alignedRowPitch(g.Width)
	stagingSize := uint64(pitch) * uint64(g.Height)

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ca_readback_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return lattice.Pattern{}, fmt.Errorf("create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ca_readback_encoder"})
	if err != nil {
		return lattice.Pattern{}, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ca_readback"); err != nil {
		encoder.DiscardEncoding()
		return lattice.Pattern{}, fmt.Errorf("begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: buf.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageStorageBinding,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(buf.texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: g.Height},
		TextureBase:  hal.ImageCopyTexture{Texture: buf.texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: g.Width, Height: g.Height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: buf.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageStorageBinding,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return lattice.Pattern{}, fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	queue.SetSwapchainSuppressed(true)
	index, err := queue.Submit([]hal.CommandBuffer{cmdBuf})
	queue.SetSwapchainSuppressed(false)
	if err != nil {
		return lattice.Pattern{}, fmt.Errorf("submit: %w", err)
	}
	if err := waitSubmission(queue, index); err != nil {
		return lattice.Pattern{}, fmt.Errorf("wait for readback: %w", err)
	}

	mapping, err := device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return lattice.Pattern{}, fmt.Errorf("map staging buffer: %w", err)
	}
	raw := make([]byte, stagingSize)
	copy(raw, unsafe.Slice((*byte)(mapping.Ptr), stagingSize))
	if err := device.UnmapBuffer(staging); err != nil {
		slogger().Warn("gpu: unmap staging buffer failed", "err", err)
	}
	return unpackRows(g, raw, pitch), nil
}

// unpackRows strips the per-row padding of a staging copy.
func unpackRows(g lattice.Geometry, raw []byte, pitch uint32) lattice.Pattern {
	p := lattice.NewPattern(g)
	for y := uint32(0); y < g.Height; y++ {
		row := raw[y*pitch:]
		for x := uint32(0); x < g.Width; x++ {
			p.Set(x, y, binary.LittleEndian.Uint32(row[x*lattice.BytesPerCell:]))
		}
	}
	return p
}
