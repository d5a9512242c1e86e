package lattice

// Seeder generates an initial lattice state.
type Seeder interface {
	Seed(g Geometry, rng *RNG) Pattern
}

// RandomFill sets each cell independently to Alive with probability Density
// and to 0 otherwise.
type RandomFill struct {
	Density float64
	Alive   uint32
}

// DefaultRandomFill is an even split between 0 and 1.
func DefaultRandomFill() RandomFill {
	return RandomFill{Density: 0.5, Alive: 1}
}

// Seed implements Seeder.
func (f RandomFill) Seed(g Geometry, rng *RNG) Pattern {
	p := NewPattern(g)
	for i := range p.Cells {
		if rng.Chance(f.Density) {
			p.Cells[i] = f.Alive
		}
	}
	return p
}

// SymmetricPatch fills the top-left quadrant with a sparse random pattern
// and mirrors it across both axes, so that cell (x, y) equals (w-1-x, y),
// (x, h-1-y) and (w-1-x, h-1-y). Border cells along the lattice edge and
// Center cells next to each mirror axis are left at 0.
type SymmetricPatch struct {
	Border  uint32
	Center  uint32
	Density float64
	Value   uint32
}

// DefaultSymmetricPatch returns the patch used by the window binary.
func DefaultSymmetricPatch() SymmetricPatch {
	return SymmetricPatch{Border: 4, Center: 2, Density: 0.35, Value: 1}
}

// Seed implements Seeder.
func (s SymmetricPatch) Seed(g Geometry, rng *RNG) Pattern {
	p := NewPattern(g)
	x0, x1 := s.span(g.Width)
	y0, y1 := s.span(g.Height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if !rng.Chance(s.Density) {
				continue
			}
			mx, my := g.Width-1-x, g.Height-1-y
			p.Set(x, y, s.Value)
			p.Set(mx, y, s.Value)
			p.Set(x, my, s.Value)
			p.Set(mx, my, s.Value)
		}
	}
	return p
}

// span returns the half-open range of the quadrant interior along an axis
// of length n. The range is empty when the margins leave no room.
func (s SymmetricPatch) span(n uint32) (lo, hi uint32) {
	half := n / 2
	if s.Border+s.Center >= half {
		return 0, 0
	}
	return s.Border, half - s.Center
}
