package lattice

import "testing"

func TestSymmetricPatchMirrors(t *testing.T) {
	geoms := []Geometry{
		{Width: 128, Height: 128},
		{Width: 64, Height: 40},
		{Width: 33, Height: 21},
	}
	for _, g := range geoms {
		t.Run(g.String(), func(t *testing.T) {
			p := DefaultSymmetricPatch().Seed(g, NewRNG(7))
			if p.Count(1) == 0 {
				t.Fatal("pattern is empty")
			}
			for y := uint32(0); y < g.Height; y++ {
				for x := uint32(0); x < g.Width; x++ {
					v := p.At(x, y)
					mx, my := g.Width-1-x, g.Height-1-y
					if p.At(mx, y) != v || p.At(x, my) != v || p.At(mx, my) != v {
						t.Fatalf("cell (%d,%d) = %d is not mirrored", x, y, v)
					}
				}
			}
		})
	}
}

func TestSymmetricPatchMargins(t *testing.T) {
	g := Geometry{Width: 64, Height: 64}
	s := SymmetricPatch{Border: 5, Center: 3, Density: 1, Value: 2}
	p := s.Seed(g, NewRNG(1))

	for y := uint32(0); y < g.Height; y++ {
		for x := uint32(0); x < g.Width; x++ {
			// Fold to the top-left quadrant.
			qx, qy := min(x, g.Width-1-x), min(y, g.Height-1-y)
			inside := qx >= 5 && qx < 32-3 && qy >= 5 && qy < 32-3
			want := uint32(0)
			if inside {
				want = 2
			}
			if got := p.At(x, y); got != want {
				t.Fatalf("cell (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestSymmetricPatchTooSmall(t *testing.T) {
	p := DefaultSymmetricPatch().Seed(Geometry{Width: 4, Height: 4}, NewRNG(1))
	if n := p.Count(0); n != 16 {
		t.Errorf("zero cells = %d, want 16", n)
	}
}

func TestRandomFillDeterministic(t *testing.T) {
	g := Geometry{Width: 32, Height: 32}
	a := DefaultRandomFill().Seed(g, NewRNG(42))
	b := DefaultRandomFill().Seed(g, NewRNG(42))
	if !a.Equal(b) {
		t.Error("equal seeds produced different patterns")
	}
	c := DefaultRandomFill().Seed(g, NewRNG(43))
	if a.Equal(c) {
		t.Error("different seeds produced identical patterns")
	}
	for _, v := range a.Cells {
		if v != 0 && v != 1 {
			t.Fatalf("cell value %d outside {0,1}", v)
		}
	}
}

func TestRandomFillDensityBounds(t *testing.T) {
	g := Geometry{Width: 8, Height: 8}
	if n := (RandomFill{Density: 0, Alive: 1}).Seed(g, NewRNG(1)).Count(1); n != 0 {
		t.Errorf("density 0 produced %d live cells", n)
	}
	if n := (RandomFill{Density: 1, Alive: 3}).Seed(g, NewRNG(1)).Count(3); n != 64 {
		t.Errorf("density 1 produced %d live cells, want 64", n)
	}
}
