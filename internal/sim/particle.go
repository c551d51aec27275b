package sim

import "math"

// Particle is a steering agent with a trail and a finite life. It is dead
// once Life reaches zero or a collision kills it, and is never revived.
type Particle struct {
	ID uint64
	Agent
	Life      float64
	MaxLife   float64
	DecayRate float64
	Radius    float64
	Color     Color

	trail  *Trail
	killed bool
}

// ParticleSpec carries the per-particle values drawn at spawn time.
type ParticleSpec struct {
	Position  Vector2
	Velocity  Vector2
	MaxSpeed  float64
	MaxForce  float64
	MaxLife   float64
	DecayRate float64
	Radius    float64
	Trail     int
	Color     Color
}

// NewParticle validates spec and builds a live particle.
func NewParticle(id uint64, spec ParticleSpec) (*Particle, error) {
	agent, err := NewAgent(spec.Position, spec.Velocity, spec.MaxSpeed, spec.MaxForce)
	if err != nil {
		return nil, err
	}
	trail, err := NewTrail(spec.Trail)
	if err != nil {
		return nil, err
	}
	for _, check := range []struct {
		field string
		v     float64
	}{
		{"max_life", spec.MaxLife},
		{"decay_rate", spec.DecayRate},
		{"radius", spec.Radius},
	} {
		if err := requirePositive(check.field, check.v); err != nil {
			return nil, err
		}
	}
	return &Particle{
		ID:        id,
		Agent:     *agent,
		Life:      spec.MaxLife,
		MaxLife:   spec.MaxLife,
		DecayRate: spec.DecayRate,
		Radius:    spec.Radius,
		Color:     spec.Color,
		trail:     trail,
	}, nil
}

// Tick applies forces, steps the agent, records the new position in the
// trail and decays life.
func (p *Particle) Tick(forces ...Vector2) {
	for _, f := range forces {
		p.ApplyForce(f)
	}
	p.Step()
	p.trail.Push(p.Position)
	p.Life -= p.DecayRate
}

// Dead is true once life runs out or the particle was killed. It never
// turns false again.
func (p *Particle) Dead() bool {
	return p.killed || p.Life <= 0
}

// Kill removes the particle at the end of the current tick.
func (p *Particle) Kill() {
	p.killed = true
}

// Alpha is the remaining life fraction in [0,1].
func (p *Particle) Alpha() float64 {
	return math.Max(0, math.Min(1, p.Life/p.MaxLife))
}

// Trail returns a copy of the particle's recent positions, oldest first.
func (p *Particle) Trail() []Vector2 {
	return p.trail.Points()
}
