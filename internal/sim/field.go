package sim

import (
	"fmt"
	"math"
)

// Orbit moves an attractor around Center on an ellipse. Position at time t
// is Center + (cos(t*AngularSpeed+Phase)*RadiusX, sin(...)*RadiusY).
type Orbit struct {
	Center       Vector2 `yaml:"center"`
	RadiusX      float64 `yaml:"radius_x"`
	RadiusY      float64 `yaml:"radius_y"`
	AngularSpeed float64 `yaml:"angular_speed"`
	Phase        float64 `yaml:"phase"`
}

// At returns the orbit position at time t.
func (o Orbit) At(t float64) Vector2 {
	angle := t*o.AngularSpeed + o.Phase
	return Vector2{
		X: o.Center.X + math.Cos(angle)*o.RadiusX,
		Y: o.Center.Y + math.Sin(angle)*o.RadiusY,
	}
}

// Attractor pulls particles within InfluenceRadius. Negative Strength repels.
type Attractor struct {
	Name            string
	Position        Vector2
	InfluenceRadius float64
	Strength        float64
	Orbit           *Orbit
}

// Field is a set of attractors answering force queries. It does not own
// particles and is read-only while a tick advances them.
type Field struct {
	attractors []Attractor
	cap        float64
}

// NewField builds a field whose summed force is limited to forceCap.
func NewField(forceCap float64, attractors ...Attractor) (*Field, error) {
	if err := requirePositive("field_force_cap", forceCap); err != nil {
		return nil, err
	}
	f := &Field{cap: forceCap, attractors: make([]Attractor, 0, len(attractors))}
	for i, a := range attractors {
		if err := requirePositive(fmt.Sprintf("attractors[%d].influence_radius", i), a.InfluenceRadius); err != nil {
			return nil, err
		}
		if a.Orbit != nil {
			o := *a.Orbit
			a.Orbit = &o
			a.Position = o.At(0)
		}
		f.attractors = append(f.attractors, a)
	}
	return f, nil
}

func newFieldFromConfig(cfg Config) (*Field, error) {
	attractors := make([]Attractor, len(cfg.Attractors))
	for i, a := range cfg.Attractors {
		attractors[i] = Attractor{
			Name:            a.Name,
			Position:        a.Position,
			InfluenceRadius: a.InfluenceRadius,
			Strength:        a.Strength,
			Orbit:           a.Orbit,
		}
	}
	return NewField(cfg.FieldForceCap, attractors...)
}

// ForceOn sums the pull of every attractor within range of pos. Each
// contribution points at the attractor with magnitude
// Strength * (1 - d/InfluenceRadius), so it vanishes at the boundary. The
// total is limited to the field cap.
func (f *Field) ForceOn(pos Vector2) Vector2 {
	var total Vector2
	for _, a := range f.attractors {
		offset := a.Position.Sub(pos)
		d := offset.Mag()
		if d == 0 || d >= a.InfluenceRadius {
			continue
		}
		falloff := 1 - d/a.InfluenceRadius
		total = total.Add(offset.Scale(a.Strength * falloff / d))
	}
	return total.Limit(f.cap)
}

// Advance repositions every orbiting attractor for time t.
func (f *Field) Advance(t float64) {
	for i := range f.attractors {
		if o := f.attractors[i].Orbit; o != nil {
			f.attractors[i].Position = o.At(t)
		}
	}
}

// Move places the named attractor at pos and detaches it from its orbit.
// It reports whether the attractor exists.
func (f *Field) Move(name string, pos Vector2) bool {
	for i := range f.attractors {
		if f.attractors[i].Name == name {
			f.attractors[i].Position = pos
			f.attractors[i].Orbit = nil
			return true
		}
	}
	return false
}

// Attractors returns a copy of the current attractors.
func (f *Field) Attractors() []Attractor {
	out := make([]Attractor, len(f.attractors))
	copy(out, f.attractors)
	for i := range out {
		if o := out[i].Orbit; o != nil {
			cp := *o
			out[i].Orbit = &cp
		}
	}
	return out
}

// orbitingCenters lays out three attractors 120 degrees apart on an ellipse
// around the middle of a width x height domain.
func orbitingCenters(width, height, radius, strength float64) []AttractorConfig {
	names := []string{"void-a", "void-b", "void-c"}
	out := make([]AttractorConfig, len(names))
	for i, name := range names {
		out[i] = AttractorConfig{
			Name:            name,
			InfluenceRadius: radius,
			Strength:        strength,
			Orbit: &Orbit{
				Center:       Vector2{X: width / 2, Y: height / 2},
				RadiusX:      width * 0.1875,
				RadiusY:      height / 6,
				AngularSpeed: 0.01,
				Phase:        float64(i) * 2 * math.Pi / 3,
			},
		}
	}
	return out
}
