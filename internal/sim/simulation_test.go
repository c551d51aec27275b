package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

// quietConfig is the default tuning with every ambient force switched off,
// so injected particles move only by their own velocity.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Attractors = nil
	cfg.Noise.Enabled = false
	cfg.Wind = Vector2{}
	cfg.Ripple.IntervalTicks = 0
	return cfg
}

func newTestSimulation(t *testing.T, cfg Config) *Simulation {
	t.Helper()
	s, err := New(cfg, WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func inject(t *testing.T, s *Simulation, pos, vel Vector2) *Particle {
	t.Helper()
	p, err := NewParticle(s.newID(), ParticleSpec{
		Position:  pos,
		Velocity:  vel,
		MaxSpeed:  s.cfg.MaxSpeed,
		MaxForce:  s.cfg.MaxForce,
		MaxLife:   255,
		DecayRate: 0.5,
		Radius:    4,
		Trail:     5,
		Color:     White,
	})
	if err != nil {
		t.Fatalf("NewParticle: %v", err)
	}
	s.particles = append(s.particles, p)
	return p
}

func TestSpawnCadence(t *testing.T) {
	cfg := quietConfig()
	cfg.BoundaryMargin = 1000

	s := newTestSimulation(t, cfg)
	spawned := 0
	for i := 0; i < 25; i++ {
		s.Tick()
		spawned += s.Snapshot().Spawned
	}
	if spawned != 3 {
		t.Fatalf("expected 3 spawns in 25 ticks, got %d", spawned)
	}
	if n := len(s.Snapshot().Particles); n != 3 {
		t.Fatalf("expected 3 live particles, got %d", n)
	}
}

func TestPopulationNeverExceedsCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPopulation = 5
	cfg.SpawnIntervalTicks = 1

	s := newTestSimulation(t, cfg)
	for i := 0; i < 300; i++ {
		s.Tick()
		frame := s.Snapshot()
		if len(frame.Particles) > cfg.MaxPopulation {
			t.Fatalf("tick %d: population %d exceeds cap %d", i, len(frame.Particles), cfg.MaxPopulation)
		}
		for _, p := range frame.Particles {
			if speed := p.Velocity.Mag(); speed > cfg.MaxSpeed {
				t.Fatalf("tick %d: particle %d speed %v exceeds %v", i, p.ID, speed, cfg.MaxSpeed)
			}
			if len(p.Trail) > cfg.TrailCapacity {
				t.Fatalf("tick %d: particle %d trail %d exceeds %d", i, p.ID, len(p.Trail), cfg.TrailCapacity)
			}
		}
	}
}

func TestParticlesFadeAndNeverReturn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Noise.Enabled = true
	s := newTestSimulation(t, cfg)

	alpha := map[uint64]float64{}
	gone := map[uint64]bool{}
	for i := 0; i < 600; i++ {
		s.Tick()
		seen := map[uint64]bool{}
		for _, p := range s.Snapshot().Particles {
			if gone[p.ID] {
				t.Fatalf("tick %d: particle %d came back", i, p.ID)
			}
			if prev, ok := alpha[p.ID]; ok && p.Alpha > prev {
				t.Fatalf("tick %d: particle %d alpha rose %v -> %v", i, p.ID, prev, p.Alpha)
			}
			alpha[p.ID] = p.Alpha
			seen[p.ID] = true
		}
		for id := range alpha {
			if !seen[id] {
				gone[id] = true
			}
		}
	}
	if len(gone) == 0 {
		t.Fatal("expected some particles to have died after 600 ticks")
	}
}

func TestCollisionRemovesBothAndRipplesAtMidpoint(t *testing.T) {
	cfg := quietConfig()
	cfg.MaxPopulation = 2
	cfg.CollisionEffect = EffectRippleRemove

	s := newTestSimulation(t, cfg)
	a := inject(t, s, V(100, 100), V(1, 0))
	b := inject(t, s, V(140, 100), V(-1, 0))

	// Gap closes by 2 per tick: 38, 36, then 34 < 35.
	s.Tick()
	s.Tick()
	frame := s.Snapshot()
	if len(frame.Particles) != 2 || len(frame.Effects) != 0 {
		t.Fatalf("collided early: %d particles, %d effects", len(frame.Particles), len(frame.Effects))
	}

	s.Tick()
	frame = s.Snapshot()
	if len(frame.Particles) != 0 {
		t.Fatalf("expected both particles removed, got %d", len(frame.Particles))
	}
	if len(frame.Effects) != 1 {
		t.Fatalf("expected exactly one ripple, got %d", len(frame.Effects))
	}
	ripple := frame.Effects[0]
	if ripple.Position != V(120, 100) || ripple.Cause != CauseCollision {
		t.Fatalf("unexpected ripple %+v", ripple)
	}
	want := []Collision{{A: a.ID, B: b.ID, At: V(120, 100)}}
	if diff := cmp.Diff(want, frame.Collisions); diff != "" {
		t.Fatalf("collisions mismatch (-want +got):\n%s", diff)
	}
}

func TestCollisionConsumesEachParticleOnce(t *testing.T) {
	cfg := quietConfig()
	cfg.MaxPopulation = 3
	cfg.CollisionEffect = EffectRemove

	s := newTestSimulation(t, cfg)
	inject(t, s, V(100, 100), V(0, 0))
	inject(t, s, V(110, 100), V(0, 0))
	inject(t, s, V(120, 100), V(0, 0))

	s.Tick()
	frame := s.Snapshot()
	if len(frame.Collisions) != 1 {
		t.Fatalf("expected one applied collision, got %v", frame.Collisions)
	}
	if len(frame.Particles) != 1 || frame.Particles[0].Position != V(120, 100) {
		t.Fatalf("expected only the third particle to survive, got %+v", frame.Particles)
	}
	if len(frame.Effects) != 0 {
		t.Fatalf("remove effect must not ripple, got %d ripples", len(frame.Effects))
	}
}

func TestRippleEffectFiresOnNewContactOnly(t *testing.T) {
	cfg := quietConfig()
	cfg.MaxPopulation = 2
	cfg.CollisionEffect = EffectRipple

	s := newTestSimulation(t, cfg)
	inject(t, s, V(100, 100), V(0, 0))
	inject(t, s, V(110, 100), V(0, 0))

	for i := 0; i < 5; i++ {
		s.Tick()
	}
	frame := s.Snapshot()
	if len(frame.Particles) != 2 {
		t.Fatalf("ripple effect must keep particles, got %d", len(frame.Particles))
	}
	if len(frame.Effects) != 1 {
		t.Fatalf("expected one ripple for a sustained contact, got %d", len(frame.Effects))
	}
}

func TestPointerRepels(t *testing.T) {
	cfg := quietConfig()
	cfg.MaxPopulation = 1

	s := newTestSimulation(t, cfg)
	p := inject(t, s, V(100, 100), V(0, 0))
	s.SetPointer(V(110, 100))
	s.Tick()

	if p.Velocity.X >= 0 {
		t.Fatalf("expected particle pushed away from the pointer, velocity %+v", p.Velocity)
	}

	s.ClearPointer()
	before := p.Velocity
	s.Tick()
	if p.Velocity != before {
		t.Fatalf("velocity changed without pointer: %+v -> %+v", before, p.Velocity)
	}
}

func TestWindAndAmbientForces(t *testing.T) {
	cfg := quietConfig()
	cfg.MaxPopulation = 1

	s := newTestSimulation(t, cfg)
	p := inject(t, s, V(100, 100), V(0, 0))
	s.SetWind(V(0.01, 0))
	s.Tick(V(0, 0.02))

	if math.Abs(p.Velocity.X-0.01) > eps || math.Abs(p.Velocity.Y-0.02) > eps {
		t.Fatalf("expected velocity (0.01, 0.02), got %+v", p.Velocity)
	}
	s.SetWind(V(math.NaN(), 0))
	if s.Wind() != V(0.01, 0) {
		t.Fatalf("non-finite wind accepted: %+v", s.Wind())
	}
}

func TestEmitAndPeriodicRipples(t *testing.T) {
	cfg := quietConfig()
	cfg.Ripple.IntervalTicks = 5

	s := newTestSimulation(t, cfg)
	s.EmitRipple(V(10, 10))
	s.Tick()

	causes := map[RippleCause]int{}
	for _, r := range s.Snapshot().Effects {
		causes[r.Cause]++
		if r.Radius != cfg.Ripple.Speed {
			t.Fatalf("ripple %d radius %v after one tick", r.ID, r.Radius)
		}
	}
	if causes[CausePointer] != 1 || causes[CausePeriodic] != 1 {
		t.Fatalf("expected one pointer and one periodic ripple, got %v", causes)
	}

	// Max radius 100 at speed 2 lasts 50 ticks.
	for i := 0; i < 50; i++ {
		s.Tick()
	}
	for _, r := range s.Snapshot().Effects {
		if r.Cause == CausePointer {
			t.Fatalf("pointer ripple outlived its radius: %+v", r)
		}
	}
}

func TestPauseSuppressesTicks(t *testing.T) {
	s := newTestSimulation(t, DefaultConfig())
	s.Tick()
	s.Pause()
	before := s.Snapshot()
	s.Tick()
	s.Tick()
	after := s.Snapshot()

	if !after.Paused || after.Tick != before.Tick {
		t.Fatalf("paused simulation advanced: %d -> %d", before.Tick, after.Tick)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("paused frame changed (-before +after):\n%s", diff)
	}

	if s.TogglePause() {
		t.Fatal("expected toggle to resume")
	}
	s.Tick()
	if got := s.Snapshot().Tick; got != before.Tick+1 {
		t.Fatalf("expected tick %d after resume, got %d", before.Tick+1, got)
	}
}

func TestResetRestoresInitialFrame(t *testing.T) {
	cfg, err := Preset("battle")
	if err != nil {
		t.Fatalf("Preset: %v", err)
	}
	s := newTestSimulation(t, cfg)
	initial := s.Snapshot()
	for i := 0; i < 150; i++ {
		s.Tick()
	}
	s.SetPointer(V(1, 1))
	s.Reset()

	if diff := cmp.Diff(initial, s.Snapshot()); diff != "" {
		t.Fatalf("reset frame differs from a fresh one (-fresh +reset):\n%s", diff)
	}

	s.Pause()
	s.Reset()
	if !s.Paused() {
		t.Fatal("reset dropped the pause flag")
	}
}

func TestSameSeedSameFrames(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			cfg, err := Preset(name)
			if err != nil {
				t.Fatalf("Preset: %v", err)
			}
			first := newTestSimulation(t, cfg)
			second := newTestSimulation(t, cfg)
			for i := 0; i < 300; i++ {
				first.Tick()
				second.Tick()
			}
			if diff := cmp.Diff(first.Snapshot(), second.Snapshot()); diff != "" {
				t.Fatalf("same seed diverged (-first +second):\n%s", diff)
			}
		})
	}
}

func TestParallelStepMatchesSequential(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnIntervalTicks = 1
	cfg.Noise.Enabled = true

	parallel := cfg
	parallel.Workers = 4
	parallel.ParallelThreshold = 1

	seq := newTestSimulation(t, cfg)
	par := newTestSimulation(t, parallel)
	for i := 0; i < 200; i++ {
		seq.Tick()
		par.Tick()
	}
	if diff := cmp.Diff(seq.Snapshot(), par.Snapshot()); diff != "" {
		t.Fatalf("parallel step diverged (-sequential +parallel):\n%s", diff)
	}
}

func TestBattlePathsCarryBalls(t *testing.T) {
	cfg, err := Preset("battle")
	if err != nil {
		t.Fatalf("Preset: %v", err)
	}
	s := newTestSimulation(t, cfg)

	sawPath := false
	for i := 0; i < 600; i++ {
		s.Tick()
		frame := s.Snapshot()
		if len(frame.Beacons) != cfg.Paths.Beacons {
			t.Fatalf("tick %d: expected %d beacons, got %d", i, cfg.Paths.Beacons, len(frame.Beacons))
		}
		if len(frame.Paths) > cfg.Paths.MaxPaths {
			t.Fatalf("tick %d: %d paths exceed max %d", i, len(frame.Paths), cfg.Paths.MaxPaths)
		}
		for _, p := range frame.Paths {
			sawPath = true
			if len(p.Points) < 3 || len(p.Balls) == 0 {
				t.Fatalf("tick %d: malformed path %+v", i, p)
			}
			for _, b := range p.Balls {
				if !b.IsFinite() {
					t.Fatalf("tick %d: ball at non-finite position %+v", i, b)
				}
			}
		}
	}
	if !sawPath {
		t.Fatal("expected at least one path within 600 ticks")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	cfg := quietConfig()
	cfg.MaxPopulation = 1
	s := newTestSimulation(t, cfg)
	inject(t, s, V(100, 100), V(1, 0))
	s.Tick()

	frame := s.Snapshot()
	frame.Particles[0].Trail[0] = V(-1, -1)
	if got := s.Snapshot().Particles[0].Trail[0]; got != V(101, 100) {
		t.Fatalf("snapshot aliases simulation state: %+v", got)
	}
}

func TestRunReportsFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestSimulation(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	frames := make(chan Frame, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, 5*time.Millisecond, func(f Frame) {
			select {
			case frames <- f:
			default:
			}
		})
	}()

	select {
	case f := <-frames:
		if f.Tick == 0 {
			t.Fatalf("expected a completed tick, got frame %d", f.Tick)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
