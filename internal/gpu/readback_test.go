//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"testing"

	"github.com/gogpu/gpuca/internal/lattice"
)

func TestAlignedRowPitch(t *testing.T) {
	tests := []struct {
		width uint32
		want  uint32
	}{
		{1, 256},
		{64, 256},
		{65, 512},
		{128, 512},
	}
	for _, tt := range tests {
		if got := alignedRowPitch(tt.width); got != tt.want {
			t.Errorf("alignedRowPitch(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestUnpackRowsStripsPadding(t *testing.T) {
	g := lattice.Geometry{Width: 3, Height: 2}
	pitch := alignedRowPitch(g.Width)
	raw := make([]byte, pitch*g.Height)
	for i := range raw {
		raw[i] = 0xFF
	}
	for y := uint32(0); y < g.Height; y++ {
		for x := uint32(0); x < g.Width; x++ {
			binary.LittleEndian.PutUint32(raw[y*pitch+x*4:], y*10+x)
		}
	}

	p := unpackRows(g, raw, pitch)
	for y := uint32(0); y < g.Height; y++ {
		for x := uint32(0); x < g.Width; x++ {
			if got := p.At(x, y); got != y*10+x {
				t.Errorf("At(%d, %d) = %d, want %d", x, y, got, y*10+x)
			}
		}
	}
}

func TestReadStateOnNoop(t *testing.T) {
	h := newHarness(t, lattice.Geometry{Width: 8, Height: 4}, lattice.DirectWorkgroup())
	p, err := ReadState(h.device, h.queue, h.buffers.Read())
	if err != nil {
		t.Fatalf("ReadState: %v", err)
	}
	if p.Geometry != (lattice.Geometry{Width: 8, Height: 4}) || len(p.Cells) != 32 {
		t.Errorf("ReadState returned %v with %d cells", p.Geometry, len(p.Cells))
	}
}
