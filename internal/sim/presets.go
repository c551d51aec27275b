package sim

import (
	"fmt"
	"math"
	"sort"
)

var presets = map[string]func() Config{
	"sunyata": DefaultConfig,
	"battle":  battlePreset,
	"zazen":   zazenPreset,
	"trinity": trinityPreset,
}

// Preset returns the named tuning of the engine. Values are starting points
// meant to be overridden, not fixed behaviour.
func Preset(name string) (Config, error) {
	build, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown preset %q (valid: %v)", name, PresetNames())
	}
	return build(), nil
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// battlePreset: energy balls race along beacon paths and burst into
// ripples when they meet; sparks drift in from the edges and join in.
func battlePreset() Config {
	c := DefaultConfig()
	c.Attractors = nil
	c.MaxPopulation = 12
	c.SpawnIntervalTicks = 45
	c.SpawnFromEdges = true
	c.SpawnJitter = Range{Min: 50, Max: 50}
	c.BoundaryPolicy = BoundaryDie
	c.BoundaryMargin = 40
	c.CollisionPolicy = CollideThreshold
	c.CollisionThreshold = 35
	c.CollisionEffect = EffectRippleRemove
	c.DecayRate = 0.4
	c.DecayJitter = 0.2
	c.InitialSpeed = 1.5
	c.ParticleColor = Color{R: 255, G: 170, B: 60, A: 255}
	c.Ripple = RippleConfig{MaxRadius: 100, Speed: 2, Color: HSV(180, 1, 1)}
	c.Paths.Enabled = true
	return c
}

// zazenPreset: a breathing center sending out slow ripples over particles
// drifting on a noise field.
func zazenPreset() Config {
	c := DefaultConfig()
	center := Vector2{X: c.Width / 2, Y: c.Height / 3}
	c.Attractors = []AttractorConfig{{Name: "enso", Position: center, InfluenceRadius: 250, Strength: 0.02}}
	c.MaxPopulation = 60
	c.SpawnIntervalTicks = 20
	c.SpawnJitter = Range{Min: 80, Max: 200}
	c.BoundaryPolicy = BoundaryReflect
	c.BoundaryMargin = 0
	c.DecayRate = 0.6
	c.DecayJitter = 0.3
	c.MaxSpeed = 0.8
	c.Noise = NoiseConfig{Enabled: true, Scale: 0.004, TimeScale: 0.005, Strength: 0.03}
	c.Ripple = RippleConfig{
		MaxRadius:     300,
		Speed:         2,
		IntervalTicks: 120,
		Origin:        center,
		Color:         Color{R: 255, G: 255, B: 255, A: 255},
	}
	return c
}

// trinityPreset: three fixed nodes in a triangle trading a handful of long
// lived particles; touching particles ripple without dying.
func trinityPreset() Config {
	c := DefaultConfig()
	cx, cy, r := c.Width/2, c.Height/2, 150.0
	c.Attractors = make([]AttractorConfig, 3)
	for i, name := range []string{"mind", "body", "spirit"} {
		angle := -math.Pi/2 + float64(i)*2*math.Pi/3
		c.Attractors[i] = AttractorConfig{
			Name:            name,
			Position:        Vector2{X: cx + math.Cos(angle)*r, Y: cy + math.Sin(angle)*r},
			InfluenceRadius: 260,
			Strength:        0.08,
		}
	}
	c.MaxPopulation = 20
	c.SpawnIntervalTicks = 30
	c.BoundaryPolicy = BoundaryClamp
	c.BoundaryMargin = 0
	c.CollisionPolicy = CollideRadii
	c.CollisionEffect = EffectRipple
	c.TrailCapacity = 15
	c.MaxLife = 600
	c.DecayRate = 0.5
	c.DecayJitter = 0.25
	c.Radius = Range{Min: 2, Max: 5}
	c.MaxSpeed = 3
	c.MaxForce = 0.1
	c.FieldForceCap = 0.2
	c.Ripple = RippleConfig{MaxRadius: 60, Speed: 1.5, Color: Color{R: 200, G: 180, B: 255, A: 255}}
	return c
}
