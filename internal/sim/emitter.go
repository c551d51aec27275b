package sim

import (
	"math"
	"math/rand"
)

// edgeOffset is how far outside the domain an edge spawn lands.
const edgeOffset = 20

// Emitter decides when to spawn and where. All randomness comes from one
// seeded source, so a seed fixes every spawn of a run.
//
// Source selection is uniform over the attractors plus, when edge spawning
// is on, the four domain edges. An attractor spawn lands at a uniform angle
// and a uniform distance in Jitter; an edge spawn lands edgeOffset outside
// a uniform point of the chosen edge, inset by the jitter minimum. With no
// source available the domain center is used.
type Emitter struct {
	interval      int
	maxPopulation int
	jitter        Range
	edges         bool
	width, height float64
	rng           *rand.Rand
}

// NewEmitter validates the cadence and population cap.
func NewEmitter(interval, maxPopulation int, jitter Range, edges bool, width, height float64, seed int64) (*Emitter, error) {
	if err := requirePositiveInt("spawn_interval_ticks", interval); err != nil {
		return nil, err
	}
	if err := requirePositiveInt("max_population", maxPopulation); err != nil {
		return nil, err
	}
	if err := validateRange("spawn_jitter", jitter, true); err != nil {
		return nil, err
	}
	return &Emitter{
		interval:      interval,
		maxPopulation: maxPopulation,
		jitter:        jitter,
		edges:         edges,
		width:         width,
		height:        height,
		rng:           rand.New(rand.NewSource(seed)),
	}, nil
}

// ShouldSpawn is true on every interval-th tick (tick 0 included) while the
// population is under the cap.
func (e *Emitter) ShouldSpawn(tick uint64, population int) bool {
	return tick%uint64(e.interval) == 0 && population < e.maxPopulation
}

// SpawnPoint picks a spawn location near an attractor or a domain edge.
func (e *Emitter) SpawnPoint(attractors []Attractor) Vector2 {
	sources := len(attractors)
	if e.edges {
		sources += 4
	}
	if sources == 0 {
		return e.around(Vector2{X: e.width / 2, Y: e.height / 2})
	}
	pick := e.rng.Intn(sources)
	if pick < len(attractors) {
		return e.around(attractors[pick].Position)
	}
	return e.edgePoint(pick - len(attractors))
}

func (e *Emitter) around(center Vector2) Vector2 {
	angle := e.rng.Float64() * 2 * math.Pi
	r := e.Uniform(e.jitter)
	return center.Add(FromAngle(angle, r))
}

// edgePoint follows the order top, bottom, left, right.
func (e *Emitter) edgePoint(edge int) Vector2 {
	inset := e.jitter.Min
	switch edge {
	case 0:
		return Vector2{X: inset + e.rng.Float64()*math.Max(0, e.width-2*inset), Y: -edgeOffset}
	case 1:
		return Vector2{X: inset + e.rng.Float64()*math.Max(0, e.width-2*inset), Y: e.height + edgeOffset}
	case 2:
		return Vector2{X: -edgeOffset, Y: inset + e.rng.Float64()*math.Max(0, e.height-2*inset)}
	default:
		return Vector2{X: e.width + edgeOffset, Y: inset + e.rng.Float64()*math.Max(0, e.height-2*inset)}
	}
}

// Velocity draws each component uniformly from [-speed, speed].
func (e *Emitter) Velocity(speed float64) Vector2 {
	return Vector2{
		X: (e.rng.Float64()*2 - 1) * speed,
		Y: (e.rng.Float64()*2 - 1) * speed,
	}
}

// Uniform samples r.
func (e *Emitter) Uniform(r Range) float64 {
	return r.Min + e.rng.Float64()*(r.Max-r.Min)
}

// Intn exposes the emitter's source for other seeded decisions of a tick.
func (e *Emitter) Intn(n int) int {
	return e.rng.Intn(n)
}

// Float64 exposes the emitter's source for other seeded decisions of a tick.
func (e *Emitter) Float64() float64 {
	return e.rng.Float64()
}

// Reseed restarts the random sequence.
func (e *Emitter) Reseed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}
