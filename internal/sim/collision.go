package sim

import "sort"

// BodyKind tags what a collision body stands for.
type BodyKind uint8

const (
	KindParticle BodyKind = iota
	KindBall
)

// Body is a frame-local view of a moving entity for collision tests.
type Body struct {
	ID       uint64
	Kind     BodyKind
	Position Vector2
	Radius   float64
}

// Pair is an unordered colliding pair, normalised so A < B.
type Pair struct {
	A, B uint64
}

func makePair(a, b uint64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Detector finds colliding pairs. It holds no state between calls.
type Detector struct {
	Policy    CollisionPolicy
	Threshold float64
}

// Find scans every unordered pair of bodies. Two bodies collide when their
// distance is strictly below the threshold (or the sum of their radii under
// CollideRadii). The result is sorted and free of duplicates, so it depends
// only on the set of bodies, not their order.
func (d Detector) Find(bodies []Body) []Pair {
	var pairs []Pair
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if a.ID == b.ID {
				continue
			}
			limit := d.Threshold
			if d.Policy == CollideRadii {
				limit = a.Radius + b.Radius
			}
			if a.Position.DistSq(b.Position) < limit*limit {
				pairs = append(pairs, makePair(a.ID, b.ID))
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return dedupe(pairs)
}

func dedupe(pairs []Pair) []Pair {
	if len(pairs) < 2 {
		return pairs
	}
	out := pairs[:1]
	for _, p := range pairs[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
