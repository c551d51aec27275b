package sim

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmitterCadence(t *testing.T) {
	e, err := NewEmitter(10, 150, Range{Min: 10, Max: 50}, false, 800, 600, 1)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	spawns := 0
	for tick := uint64(0); tick < 25; tick++ {
		if e.ShouldSpawn(tick, spawns) {
			spawns++
		}
	}
	if spawns != 3 {
		t.Fatalf("expected 3 spawns over 25 ticks, got %d", spawns)
	}
	if e.ShouldSpawn(30, 150) {
		t.Fatal("expected no spawn at the population cap")
	}
}

func TestEmitterSpawnsAroundAttractors(t *testing.T) {
	e, err := NewEmitter(1, 10, Range{Min: 10, Max: 50}, false, 800, 600, 3)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	center := V(400, 300)
	attractors := []Attractor{{Name: "a", Position: center, InfluenceRadius: 100}}

	for i := 0; i < 100; i++ {
		d := e.SpawnPoint(attractors).Dist(center)
		if d < 10-eps || d > 50+eps {
			t.Fatalf("spawn %d at distance %v outside jitter [10, 50]", i, d)
		}
	}
}

func TestEmitterSpawnsOutsideEdges(t *testing.T) {
	e, err := NewEmitter(1, 10, Range{Min: 10, Max: 50}, true, 800, 600, 5)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	for i := 0; i < 100; i++ {
		p := e.SpawnPoint(nil)
		outside := p.X == -edgeOffset || p.X == 800+edgeOffset || p.Y == -edgeOffset || p.Y == 600+edgeOffset
		if !outside {
			t.Fatalf("edge spawn %d landed inside the domain: %+v", i, p)
		}
	}
}

func TestEmitterIsDeterministicPerSeed(t *testing.T) {
	draw := func(seed int64) []Vector2 {
		e, err := NewEmitter(1, 10, Range{Min: 10, Max: 50}, true, 800, 600, seed)
		if err != nil {
			t.Fatalf("NewEmitter: %v", err)
		}
		attractors := []Attractor{{Position: V(100, 100), InfluenceRadius: 10}}
		var out []Vector2
		for i := 0; i < 20; i++ {
			out = append(out, e.SpawnPoint(attractors), e.Velocity(1))
		}
		return out
	}

	if diff := cmp.Diff(draw(42), draw(42)); diff != "" {
		t.Fatalf("same seed diverged (-first +second):\n%s", diff)
	}
	if cmp.Equal(draw(42), draw(43)) {
		t.Fatal("different seeds produced identical spawns")
	}
}

func TestEmitterVelocityBounds(t *testing.T) {
	e, err := NewEmitter(1, 10, Range{}, false, 800, 600, 9)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	for i := 0; i < 100; i++ {
		v := e.Velocity(1.5)
		if v.X < -1.5 || v.X > 1.5 || v.Y < -1.5 || v.Y > 1.5 {
			t.Fatalf("velocity %+v outside [-1.5, 1.5]", v)
		}
	}
}

func TestNewEmitterRejectsNonPositiveLimits(t *testing.T) {
	cases := []struct {
		name                    string
		interval, maxPopulation int
		expectedField           string
	}{
		{"zero interval", 0, 10, "spawn_interval_ticks"},
		{"negative interval", -3, 10, "spawn_interval_ticks"},
		{"zero population", 10, 0, "max_population"},
		{"negative population", 10, -1, "max_population"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEmitter(tc.interval, tc.maxPopulation, Range{Min: 10, Max: 50}, false, 800, 600, 1)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tc.expectedField {
				t.Fatalf("expected field %q, got %v", tc.expectedField, err)
			}
		})
	}
}
