package sim

// RippleCause records why a ripple was emitted.
type RippleCause uint8

const (
	CauseCollision RippleCause = iota
	CausePeriodic
	CausePointer
)

// Ripple is an expanding ring. It grows by Speed each tick and is spent
// once Radius reaches MaxRadius.
type Ripple struct {
	ID        uint64
	Position  Vector2
	Radius    float64
	MaxRadius float64
	Speed     float64
	Color     Color
	Cause     RippleCause
}

// Advance grows the ring by one tick.
func (r *Ripple) Advance() {
	r.Radius += r.Speed
}

// Dead reports whether the ring has reached MaxRadius.
func (r *Ripple) Dead() bool {
	return r.Radius >= r.MaxRadius
}

// Alpha fades linearly from 1 at birth to 0 at MaxRadius.
func (r *Ripple) Alpha() float64 {
	return clamp(1-r.Radius/r.MaxRadius, 0, 1)
}

// Touches reports whether the ring is within width of p this tick.
func (r *Ripple) Touches(p Vector2, width float64) bool {
	d := r.Position.Dist(p) - r.Radius
	return d < width && d > -width
}
