package sim

import (
	"errors"
	"fmt"
	"math"
)

// BoundaryPolicy decides what happens to a particle that leaves the domain
// by more than the boundary margin.
type BoundaryPolicy string

const (
	BoundaryWrap    BoundaryPolicy = "wrap"
	BoundaryDie     BoundaryPolicy = "die"
	BoundaryClamp   BoundaryPolicy = "clamp"
	BoundaryReflect BoundaryPolicy = "reflect"
)

// CollisionPolicy selects the distance a pair must be under to collide.
type CollisionPolicy string

const (
	// CollideThreshold compares against Config.CollisionThreshold.
	CollideThreshold CollisionPolicy = "threshold"
	// CollideRadii compares against the sum of both radii.
	CollideRadii CollisionPolicy = "radii"
)

// CollisionEffect is what the simulation does with a colliding pair.
type CollisionEffect string

const (
	EffectRippleRemove CollisionEffect = "ripple-remove"
	EffectRemove       CollisionEffect = "remove"
	EffectRipple       CollisionEffect = "ripple"
	EffectNone         CollisionEffect = "none"
)

// Range is an inclusive [Min, Max] interval sampled uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// AttractorConfig declares one attractor of the field.
type AttractorConfig struct {
	Name            string  `yaml:"name"`
	Position        Vector2 `yaml:"position"`
	InfluenceRadius float64 `yaml:"influence_radius"`
	Strength        float64 `yaml:"strength"`
	Orbit           *Orbit  `yaml:"orbit,omitempty"`
}

// PointerConfig controls repulsion from the input pointer.
type PointerConfig struct {
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

// NoiseConfig controls the Perlin flow-field ambient force.
type NoiseConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Scale     float64 `yaml:"scale"`
	TimeScale float64 `yaml:"time_scale"`
	Strength  float64 `yaml:"strength"`
}

// RippleConfig shapes ripple effects. IntervalTicks > 0 emits a ripple at
// Origin on that cadence.
type RippleConfig struct {
	MaxRadius     float64 `yaml:"max_radius"`
	Speed         float64 `yaml:"speed"`
	IntervalTicks int     `yaml:"interval_ticks"`
	Origin        Vector2 `yaml:"origin"`
	Color         Color   `yaml:"color"`
}

// PathConfig enables beacon paths carrying energy balls.
type PathConfig struct {
	Enabled             bool    `yaml:"enabled"`
	Beacons             int     `yaml:"beacons"`
	BeaconFade          float64 `yaml:"beacon_fade"`
	BeaconThreshold     float64 `yaml:"beacon_threshold"`
	IntervalTicks       int     `yaml:"interval_ticks"`
	MaxPaths            int     `yaml:"max_paths"`
	MinNodes            int     `yaml:"min_nodes"`
	MaxNodes            int     `yaml:"max_nodes"`
	SnapRadius          float64 `yaml:"snap_radius"`
	EdgeMargin          float64 `yaml:"edge_margin"`
	BallSpeed           float64 `yaml:"ball_speed"`
	BallRadius          float64 `yaml:"ball_radius"`
	ReseedCooldownTicks int     `yaml:"reseed_cooldown_ticks"`
	Color               Color   `yaml:"color"`
}

// Config enumerates every simulation option. Zero values are not defaults;
// start from DefaultConfig or a preset.
type Config struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Seed   int64   `yaml:"seed" env:"VOIDFIELD_SEED"`

	MaxPopulation      int   `yaml:"max_population" env:"VOIDFIELD_MAX_POPULATION"`
	SpawnIntervalTicks int   `yaml:"spawn_interval_ticks" env:"VOIDFIELD_SPAWN_INTERVAL"`
	SpawnFromEdges     bool  `yaml:"spawn_from_edges"`
	SpawnJitter        Range `yaml:"spawn_jitter"`

	Attractors    []AttractorConfig `yaml:"attractors"`
	FieldForceCap float64           `yaml:"field_force_cap"`

	BoundaryPolicy BoundaryPolicy `yaml:"boundary_policy" env:"VOIDFIELD_BOUNDARY"`
	BoundaryMargin float64        `yaml:"boundary_margin"`

	CollisionPolicy    CollisionPolicy `yaml:"collision_policy"`
	CollisionThreshold float64         `yaml:"collision_threshold"`
	CollisionEffect    CollisionEffect `yaml:"collision_effect" env:"VOIDFIELD_COLLISION_EFFECT"`

	TrailCapacity int     `yaml:"trail_capacity"`
	MaxLife       float64 `yaml:"max_life"`
	DecayRate     float64 `yaml:"decay_rate"`
	DecayJitter   float64 `yaml:"decay_jitter"`
	Radius        Range   `yaml:"radius"`
	InitialSpeed  float64 `yaml:"initial_speed"`
	MaxSpeed      float64 `yaml:"max_speed"`
	MaxForce      float64 `yaml:"max_force"`
	ParticleColor Color   `yaml:"particle_color"`

	Pointer PointerConfig `yaml:"pointer"`
	Wind    Vector2       `yaml:"wind"`
	Noise   NoiseConfig   `yaml:"noise"`
	Ripple  RippleConfig  `yaml:"ripple"`
	Paths   PathConfig    `yaml:"paths"`

	Workers           int `yaml:"workers" env:"VOIDFIELD_WORKERS"`
	ParallelThreshold int `yaml:"parallel_threshold"`
}

// DefaultConfig returns the sunyata preset: three orbiting void centers
// pulling short-lived particles that wrap at the edges.
func DefaultConfig() Config {
	return Config{
		Width:              800,
		Height:             600,
		Seed:               1,
		MaxPopulation:      150,
		SpawnIntervalTicks: 10,
		SpawnJitter:        Range{Min: 10, Max: 50},
		Attractors:         orbitingCenters(800, 600, 200, 0.05),
		FieldForceCap:      0.15,
		BoundaryPolicy:     BoundaryWrap,
		BoundaryMargin:     50,
		CollisionPolicy:    CollideThreshold,
		CollisionThreshold: 35,
		CollisionEffect:    EffectNone,
		TrailCapacity:      20,
		MaxLife:            255,
		DecayRate:          1.25,
		DecayJitter:        0.75,
		Radius:             Range{Min: 2, Max: 8},
		InitialSpeed:       1,
		MaxSpeed:           2,
		MaxForce:           0.05,
		ParticleColor:      Color{R: 255, G: 255, B: 255, A: 255},
		Pointer:            PointerConfig{Radius: 100, Strength: 0.5},
		Noise:              NoiseConfig{Scale: 0.005, TimeScale: 0.01, Strength: 0.02},
		Ripple: RippleConfig{
			MaxRadius: 100,
			Speed:     2,
			Origin:    Vector2{X: 400, Y: 300},
			Color:     Color{R: 150, G: 150, B: 255, A: 255},
		},
		Paths: PathConfig{
			Beacons:             120,
			BeaconFade:          0.006,
			BeaconThreshold:     0.35,
			IntervalTicks:       100,
			MaxPaths:            4,
			MinNodes:            6,
			MaxNodes:            10,
			SnapRadius:          200,
			EdgeMargin:          50,
			BallSpeed:           0.005,
			BallRadius:          18,
			ReseedCooldownTicks: 60,
			Color:               Color{R: 0, G: 255, B: 255, A: 255},
		},
		ParallelThreshold: 512,
	}
}

// Validate reports every invalid option at once.
func (c Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(requirePositive("width", c.Width))
	add(requirePositive("height", c.Height))
	add(requirePositiveInt("max_population", c.MaxPopulation))
	add(requirePositiveInt("spawn_interval_ticks", c.SpawnIntervalTicks))
	add(validateRange("spawn_jitter", c.SpawnJitter, true))
	add(requirePositive("field_force_cap", c.FieldForceCap))

	for i, a := range c.Attractors {
		field := fmt.Sprintf("attractors[%d]", i)
		add(requirePositive(field+".influence_radius", a.InfluenceRadius))
		if math.IsNaN(a.Strength) || math.IsInf(a.Strength, 0) {
			add(configErr(field+".strength", a.Strength, "must be finite"))
		}
		if a.Orbit != nil && (a.Orbit.RadiusX < 0 || a.Orbit.RadiusY < 0) {
			add(configErr(field+".orbit", *a.Orbit, "radii must be >= 0"))
		}
	}

	switch c.BoundaryPolicy {
	case BoundaryWrap, BoundaryDie, BoundaryClamp, BoundaryReflect:
	default:
		add(configErr("boundary_policy", c.BoundaryPolicy, "must be wrap, die, clamp or reflect"))
	}
	if c.BoundaryMargin < 0 {
		add(configErr("boundary_margin", c.BoundaryMargin, "must be >= 0"))
	}

	switch c.CollisionPolicy {
	case CollideThreshold:
		add(requirePositive("collision_threshold", c.CollisionThreshold))
	case CollideRadii:
	default:
		add(configErr("collision_policy", c.CollisionPolicy, "must be threshold or radii"))
	}
	switch c.CollisionEffect {
	case EffectRippleRemove, EffectRemove, EffectRipple, EffectNone:
	default:
		add(configErr("collision_effect", c.CollisionEffect, "must be ripple-remove, remove, ripple or none"))
	}

	add(requirePositiveInt("trail_capacity", c.TrailCapacity))
	add(requirePositive("max_life", c.MaxLife))
	add(requirePositive("decay_rate", c.DecayRate))
	if c.DecayJitter < 0 || c.DecayJitter >= c.DecayRate {
		add(configErr("decay_jitter", c.DecayJitter, "must be in [0, decay_rate)"))
	}
	add(validateRange("radius", c.Radius, false))
	if c.InitialSpeed < 0 {
		add(configErr("initial_speed", c.InitialSpeed, "must be >= 0"))
	}
	add(requirePositive("max_speed", c.MaxSpeed))
	add(requirePositive("max_force", c.MaxForce))

	if c.Pointer.Radius < 0 {
		add(configErr("pointer.radius", c.Pointer.Radius, "must be >= 0"))
	}
	if !c.Wind.IsFinite() {
		add(configErr("wind", c.Wind, "must be finite"))
	}
	if c.Noise.Enabled {
		add(requirePositive("noise.scale", c.Noise.Scale))
		if c.Noise.Strength < 0 {
			add(configErr("noise.strength", c.Noise.Strength, "must be >= 0"))
		}
	}

	add(requirePositive("ripple.max_radius", c.Ripple.MaxRadius))
	add(requirePositive("ripple.speed", c.Ripple.Speed))
	if c.Ripple.IntervalTicks < 0 {
		add(configErr("ripple.interval_ticks", c.Ripple.IntervalTicks, "must be >= 0"))
	}

	if c.Paths.Enabled {
		p := c.Paths
		if p.Beacons < 3 {
			add(configErr("paths.beacons", p.Beacons, "must be >= 3"))
		}
		add(requirePositiveInt("paths.interval_ticks", p.IntervalTicks))
		add(requirePositiveInt("paths.max_paths", p.MaxPaths))
		if p.MinNodes < 3 || p.MaxNodes < p.MinNodes {
			add(configErr("paths.nodes", [2]int{p.MinNodes, p.MaxNodes}, "need 3 <= min_nodes <= max_nodes"))
		}
		add(requirePositive("paths.snap_radius", p.SnapRadius))
		if !(p.BallSpeed > 0 && p.BallSpeed <= 1) {
			add(configErr("paths.ball_speed", p.BallSpeed, "must be in (0, 1]"))
		}
		add(requirePositive("paths.ball_radius", p.BallRadius))
		if p.BeaconFade < 0 || p.ReseedCooldownTicks < 0 || p.EdgeMargin < 0 {
			add(configErr("paths", p, "fade, cooldown and margin must be >= 0"))
		}
	}

	if c.Workers < 0 {
		add(configErr("workers", c.Workers, "must be >= 0"))
	}
	if c.ParallelThreshold < 0 {
		add(configErr("parallel_threshold", c.ParallelThreshold, "must be >= 0"))
	}

	return errors.Join(errs...)
}

func validateRange(field string, r Range, allowZero bool) error {
	if r.Min < 0 || (!allowZero && r.Min == 0) {
		return configErr(field+".min", r.Min, "out of range")
	}
	if r.Max < r.Min {
		return configErr(field, r, "max must be >= min")
	}
	return nil
}
