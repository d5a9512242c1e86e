package lattice

import "testing"

func TestPatternBytesLayout(t *testing.T) {
	g := Geometry{Width: 2, Height: 2}
	p := NewPattern(g)
	p.Set(1, 0, 1)
	p.Set(0, 1, 0x01020304)

	raw := p.Bytes()
	if len(raw) != g.Cells()*BytesPerCell {
		t.Fatalf("len(Bytes()) = %d, want %d", len(raw), g.Cells()*BytesPerCell)
	}
	if raw[4] != 1 || raw[8] != 0x04 || raw[11] != 0x01 {
		t.Errorf("unexpected little-endian layout: % x", raw)
	}

	q, err := PatternFromBytes(g, raw)
	if err != nil {
		t.Fatalf("PatternFromBytes() error = %v", err)
	}
	if !q.Equal(p) {
		t.Errorf("decoded %v, want %v", q.Cells, p.Cells)
	}
}

func TestPatternFromBytesSize(t *testing.T) {
	g := Geometry{Width: 4, Height: 4}
	for _, n := range []int{0, 63, 65, 4 * 4} {
		if _, err := PatternFromBytes(g, make([]byte, n)); err == nil {
			t.Errorf("PatternFromBytes(%d bytes) succeeded", n)
		}
	}
}

func TestPatternWrap(t *testing.T) {
	p := NewPattern(Geometry{Width: 3, Height: 2})
	x, y := p.Wrap(-1, 2)
	if x != 2 || y != 0 {
		t.Errorf("Wrap(-1, 2) = (%d, %d), want (2, 0)", x, y)
	}
}
