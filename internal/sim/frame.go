package sim

// ParticleState is the renderer's view of one particle.
type ParticleState struct {
	ID       uint64
	Position Vector2
	Velocity Vector2
	Radius   float64
	Alpha    float64
	Color    Color
	Trail    []Vector2
}

// RippleState is the renderer's view of one ripple.
type RippleState struct {
	ID        uint64
	Position  Vector2
	Radius    float64
	MaxRadius float64
	Alpha     float64
	Color     Color
	Cause     RippleCause
}

// AttractorState is the renderer's view of one attractor.
type AttractorState struct {
	Name            string
	Position        Vector2
	InfluenceRadius float64
	Strength        float64
}

// BeaconState is one twinkling dot.
type BeaconState struct {
	Position Vector2
	Opacity  float64
}

// PathState is one beacon path and the balls riding it.
type PathState struct {
	ID     uint64
	Points []Vector2
	Color  Color
	Balls  []Vector2
}

// Collision is one collision effect applied during the tick.
type Collision struct {
	A, B uint64
	At   Vector2
}

// Frame is a completed tick as handed to renderers. Tick counts the ticks
// completed so far; the frame built by New has Tick 0.
type Frame struct {
	Tick       uint64
	Paused     bool
	Width      float64
	Height     float64
	Spawned    int
	Particles  []ParticleState
	Effects    []RippleState
	Attractors []AttractorState
	Beacons    []BeaconState
	Paths      []PathState
	Collisions []Collision
}

// Clone deep-copies the frame so callers may keep or modify it freely.
func (f Frame) Clone() Frame {
	out := f
	out.Particles = make([]ParticleState, len(f.Particles))
	for i, p := range f.Particles {
		p.Trail = append([]Vector2(nil), p.Trail...)
		out.Particles[i] = p
	}
	out.Effects = append([]RippleState(nil), f.Effects...)
	out.Attractors = append([]AttractorState(nil), f.Attractors...)
	out.Beacons = append([]BeaconState(nil), f.Beacons...)
	out.Paths = make([]PathState, len(f.Paths))
	for i, p := range f.Paths {
		p.Points = append([]Vector2(nil), p.Points...)
		p.Balls = append([]Vector2(nil), p.Balls...)
		out.Paths[i] = p
	}
	out.Collisions = append([]Collision(nil), f.Collisions...)
	return out
}

// Balls counts the energy balls across all paths.
func (f Frame) Balls() int {
	n := 0
	for _, p := range f.Paths {
		n += len(p.Balls)
	}
	return n
}
