package sim

import "math"

// Vector2 is a 2D vector in world units. Methods return new values.
type Vector2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// V is shorthand for Vector2{X: x, Y: y}.
func V(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// FromAngle builds a vector with the given heading (radians) and magnitude.
func FromAngle(theta, mag float64) Vector2 {
	return Vector2{X: math.Cos(theta) * mag, Y: math.Sin(theta) * mag}
}

// Add returns v + o.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale multiplies both components by f.
func (v Vector2) Scale(f float64) Vector2 {
	return Vector2{X: v.X * f, Y: v.Y * f}
}

// MagSq returns the squared length, avoiding the square root for comparisons.
func (v Vector2) MagSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Mag returns the length of v.
func (v Vector2) Mag() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector, or the zero vector when v has no length.
func (v Vector2) Normalize() Vector2 {
	m := v.Mag()
	if m == 0 {
		return Vector2{}
	}
	return Vector2{X: v.X / m, Y: v.Y / m}
}

// SetMag returns a vector with v's direction and length m.
func (v Vector2) SetMag(m float64) Vector2 {
	return v.Normalize().Scale(m)
}

// Limit caps the length of v at max. The result's Mag never exceeds max,
// even after rounding.
func (v Vector2) Limit(max float64) Vector2 {
	if v.Mag() <= max {
		return v
	}
	out := v.Scale(max / v.Mag())
	for out.Mag() > max {
		out = Vector2{X: math.Nextafter(out.X, 0), Y: math.Nextafter(out.Y, 0)}
	}
	return out
}

// Dist returns the distance between v and o.
func (v Vector2) Dist(o Vector2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// DistSq is Dist squared.
func (v Vector2) DistSq(o Vector2) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return dx*dx + dy*dy
}

// Lerp interpolates between v (t=0) and o (t=1).
func (v Vector2) Lerp(o Vector2, t float64) Vector2 {
	return Vector2{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

// Midpoint returns the point halfway between v and o.
func (v Vector2) Midpoint(o Vector2) Vector2 {
	return v.Lerp(o, 0.5)
}

// IsFinite reports whether neither component is NaN or infinite.
func (v Vector2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
