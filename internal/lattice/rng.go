package lattice

import "math/rand/v2"

// RNG is a deterministic random source for seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a PCG-backed RNG from seed. Equal seeds yield equal streams.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Chance returns true with probability p.
func (r *RNG) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.r.Float64() < p
}
