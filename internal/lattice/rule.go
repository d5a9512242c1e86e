package lattice

import (
	"fmt"
	"strings"
)

// Rule selects the transition function compiled into the compute kernel.
type Rule int

const (
	// RuleLife is Conway's Game of Life (B3/S23). States: 0 dead, 1 alive.
	RuleLife Rule = iota
	// RuleBrain is Brian's Brain. States: 0 off, 1 firing, 2 refractory.
	RuleBrain
)

// Cell states shared by the rules and the display kernel.
const (
	StateOff   uint32 = 0
	StateOn    uint32 = 1
	StateDying uint32 = 2
)

// Rules lists every supported rule in declaration order.
var Rules = []Rule{RuleLife, RuleBrain}

func (r Rule) String() string {
	switch r {
	case RuleLife:
		return "life"
	case RuleBrain:
		return "brain"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// ParseRule converts a rule name as printed by String back to a Rule.
func ParseRule(s string) (Rule, error) {
	for _, r := range Rules {
		if strings.EqualFold(s, r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("lattice: unknown rule %q", s)
}

// States returns the number of distinct cell states the rule uses.
func (r Rule) States() uint32 {
	if r == RuleBrain {
		return 3
	}
	return 2
}

// Step computes one generation of src into dst on a torus. Both patterns
// must share a geometry and must not alias.
func (r Rule) Step(src, dst Pattern) {
	w, h := int(src.Geometry.Width), int(src.Geometry.Height)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := src.Wrap(x+dx, y+dy)
					if src.At(nx, ny) == StateOn {
						n++
					}
				}
			}
			cur := src.At(uint32(x), uint32(y))
			dst.Set(uint32(x), uint32(y), r.next(cur, n))
		}
	}
}

// next returns the successor of a cell with n firing neighbors.
func (r Rule) next(cur uint32, n int) uint32 {
	switch r {
	case RuleBrain:
		switch cur {
		case StateOn:
			return StateDying
		case StateDying:
			return StateOff
		}
		if n == 2 {
			return StateOn
		}
		return StateOff
	default:
		if n == 3 || (n == 2 && cur == StateOn) {
			return StateOn
		}
		return StateOff
	}
}

// Run advances p by n generations and returns the result.
func (r Rule) Run(p Pattern, n int) Pattern {
	cur, nxt := p.Clone(), NewPattern(p.Geometry)
	for range n {
		r.Step(cur, nxt)
		cur, nxt = nxt, cur
	}
	return cur
}
