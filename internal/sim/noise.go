package sim

import (
	"math"

	"github.com/aquilax/go-perlin"
)

const (
	noiseAlpha  = 2
	noiseBeta   = 2
	noiseOctave = 3
)

// FlowField turns 3D Perlin noise into a unit heading per point and time,
// scaled to a steady drifting force.
type FlowField struct {
	noise     *perlin.Perlin
	scale     float64
	timeScale float64
	strength  float64
}

// NewFlowField seeds the noise so equal seeds give equal fields.
func NewFlowField(cfg NoiseConfig, seed int64) *FlowField {
	return &FlowField{
		noise:     perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed),
		scale:     cfg.Scale,
		timeScale: cfg.TimeScale,
		strength:  cfg.Strength,
	}
}

// ForceAt samples the field at pos for tick t. Safe for concurrent use.
func (f *FlowField) ForceAt(pos Vector2, t float64) Vector2 {
	n := f.noise.Noise3D(pos.X*f.scale, pos.Y*f.scale, t*f.timeScale)
	return FromAngle(n*2*math.Pi, f.strength)
}
