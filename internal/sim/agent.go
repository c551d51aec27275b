package sim

// Agent is a steering entity. Forces accumulate in Acceleration during a
// tick and are consumed by exactly one Step.
type Agent struct {
	Position     Vector2
	Velocity     Vector2
	Acceleration Vector2
	MaxSpeed     float64
	MaxForce     float64
}

// NewAgent creates an agent at pos moving with vel. maxSpeed and maxForce
// must both be positive.
func NewAgent(pos, vel Vector2, maxSpeed, maxForce float64) (*Agent, error) {
	if err := requirePositive("max_speed", maxSpeed); err != nil {
		return nil, err
	}
	if err := requirePositive("max_force", maxForce); err != nil {
		return nil, err
	}
	return &Agent{
		Position: pos,
		Velocity: vel.Limit(maxSpeed),
		MaxSpeed: maxSpeed,
		MaxForce: maxForce,
	}, nil
}

// Seek returns the steering force toward target without mutating the agent.
// A target at the agent's exact position yields the zero force.
func (a *Agent) Seek(target Vector2) Vector2 {
	offset := target.Sub(a.Position)
	if offset.MagSq() == 0 {
		return Vector2{}
	}
	desired := offset.SetMag(a.MaxSpeed)
	return desired.Sub(a.Velocity).Limit(a.MaxForce)
}

// Flee is Seek reversed.
func (a *Agent) Flee(target Vector2) Vector2 {
	return a.Seek(target).Scale(-1)
}

// ApplyForce adds f to the accumulated acceleration for this tick.
func (a *Agent) ApplyForce(f Vector2) {
	a.Acceleration = a.Acceleration.Add(f)
}

// Step integrates the accumulated force, clamps the speed and clears the
// accumulator. Call once per tick after every ApplyForce.
func (a *Agent) Step() {
	a.Velocity = a.Velocity.Add(a.Acceleration).Limit(a.MaxSpeed)
	a.Position = a.Position.Add(a.Velocity)
	a.Acceleration = Vector2{}
}
