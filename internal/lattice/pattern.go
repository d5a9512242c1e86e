package lattice

import (
	"encoding/binary"
	"fmt"
)

// BytesPerCell is the size of one cell in the GPU state format (R32Uint).
const BytesPerCell = 4

// Pattern is a host snapshot of lattice state in row-major order.
type Pattern struct {
	Geometry Geometry
	Cells    []uint32
}

// NewPattern returns an all-zero pattern for the geometry.
func NewPattern(g Geometry) Pattern {
	return Pattern{Geometry: g, Cells: make([]uint32, g.Cells())}
}

// PatternFromBytes decodes little-endian u32 cells. The payload length must
// be exactly g.Cells()*BytesPerCell.
func PatternFromBytes(g Geometry, raw []byte) (Pattern, error) {
	if len(raw) != g.Cells()*BytesPerCell {
		return Pattern{}, fmt.Errorf("lattice: state is %d bytes, want %d for %s", len(raw), g.Cells()*BytesPerCell, g)
	}
	p := NewPattern(g)
	for i := range p.Cells {
		p.Cells[i] = binary.LittleEndian.Uint32(raw[i*BytesPerCell:])
	}
	return p, nil
}

// At returns the cell value at (x, y).
func (p Pattern) At(x, y uint32) uint32 {
	return p.Cells[y*p.Geometry.Width+x]
}

// Set stores v at (x, y).
func (p Pattern) Set(x, y, v uint32) {
	p.Cells[y*p.Geometry.Width+x] = v
}

// Wrap applies toroidal wrapping to signed coordinates.
func (p Pattern) Wrap(x, y int) (uint32, uint32) {
	w, h := int(p.Geometry.Width), int(p.Geometry.Height)
	x = (x%w + w) % w
	y = (y%h + h) % h
	return uint32(x), uint32(y)
}

// Bytes encodes the cells as little-endian u32, the upload layout of the
// state texture with a row pitch of Width*BytesPerCell.
func (p Pattern) Bytes() []byte {
	out := make([]byte, len(p.Cells)*BytesPerCell)
	for i, c := range p.Cells {
		binary.LittleEndian.PutUint32(out[i*BytesPerCell:], c)
	}
	return out
}

// Count returns the number of cells equal to v.
func (p Pattern) Count(v uint32) int {
	n := 0
	for _, c := range p.Cells {
		if c == v {
			n++
		}
	}
	return n
}

// Equal reports whether both patterns have the same geometry and cells.
func (p Pattern) Equal(q Pattern) bool {
	if p.Geometry != q.Geometry || len(p.Cells) != len(q.Cells) {
		return false
	}
	for i := range p.Cells {
		if p.Cells[i] != q.Cells[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (p Pattern) Clone() Pattern {
	q := Pattern{Geometry: p.Geometry, Cells: make([]uint32, len(p.Cells))}
	copy(q.Cells, p.Cells)
	return q
}
