package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Option customises a Simulation.
type Option func(*Simulation)

// WithLogger routes simulation logs to l. The default discards them.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.log = l
		}
	}
}

// Simulation owns every piece of mutable state of one animation. Tick is the
// only mutator of particles and effects; control calls (pause, pointer,
// wind, ripples) serialise with it through the mutex so renderers only ever
// observe completed frames.
type Simulation struct {
	mu  sync.RWMutex
	cfg Config
	log *zap.Logger

	field    *Field
	emitter  *Emitter
	detector Detector
	boundary Boundary
	flow     *FlowField
	net      *network

	particles []*Particle
	ripples   []*Ripple
	contacts  map[Pair]struct{}

	tick    uint64
	nextID  uint64
	paused  bool
	pointer *Vector2
	wind    Vector2

	frame Frame
}

// New validates cfg and builds a simulation ready for its first Tick.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulation) init() error {
	field, err := newFieldFromConfig(s.cfg)
	if err != nil {
		return err
	}
	emitter, err := NewEmitter(s.cfg.SpawnIntervalTicks, s.cfg.MaxPopulation, s.cfg.SpawnJitter,
		s.cfg.SpawnFromEdges, s.cfg.Width, s.cfg.Height, s.cfg.Seed)
	if err != nil {
		return err
	}

	s.field = field
	s.emitter = emitter
	s.detector = Detector{Policy: s.cfg.CollisionPolicy, Threshold: s.cfg.CollisionThreshold}
	s.boundary = Boundary{Width: s.cfg.Width, Height: s.cfg.Height, Margin: s.cfg.BoundaryMargin, Policy: s.cfg.BoundaryPolicy}
	s.flow = nil
	if s.cfg.Noise.Enabled {
		s.flow = NewFlowField(s.cfg.Noise, s.cfg.Seed)
	}
	s.net = nil
	if s.cfg.Paths.Enabled {
		s.net = newNetwork(s.cfg.Paths, s.cfg.Width, s.cfg.Height, emitter)
	}

	s.particles = nil
	s.ripples = nil
	s.contacts = make(map[Pair]struct{})
	s.tick = 0
	s.nextID = 0
	s.pointer = nil
	s.wind = s.cfg.Wind
	s.publish(0, nil)
	return nil
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config {
	return s.cfg
}

// Tick advances the simulation by one step. It does nothing while paused.
//
// Order: attractor motion, spawning, particle and ball motion, collision
// detection, collision effects, ripples, pruning, frame publication.
func (s *Simulation) Tick(ambient ...Vector2) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return
	}
	t := s.tick

	s.field.Advance(float64(t))

	spawned := 0
	if s.emitter.ShouldSpawn(t, len(s.particles)) && s.spawn() {
		spawned++
	}
	if s.net != nil {
		s.net.twinkle()
		if p := s.net.maybeSpawn(s.emitter, s.newID); p != nil {
			s.log.Debug("path laid", zap.Uint64("tick", t), zap.Uint64("path", p.ID), zap.Int("nodes", len(p.Nodes)))
		}
	}

	s.advanceParticles(t, ambient)
	if s.net != nil {
		s.net.advanceBalls()
	}

	var collisions []Collision
	if s.cfg.CollisionEffect != EffectNone {
		entities := s.entities()
		bodies := make([]Body, len(entities))
		for i, e := range entities {
			bodies[i] = e.body
		}
		collisions = s.applyCollisions(s.detector.Find(bodies), entities)
	}

	s.advanceRipples(t)
	s.prune()

	s.tick++
	s.publish(spawned, collisions)
}

func (s *Simulation) newID() uint64 {
	s.nextID++
	return s.nextID
}

func (s *Simulation) spawn() bool {
	spec := ParticleSpec{
		Position:  s.emitter.SpawnPoint(s.field.attractors),
		Velocity:  s.emitter.Velocity(s.cfg.InitialSpeed),
		MaxSpeed:  s.cfg.MaxSpeed,
		MaxForce:  s.cfg.MaxForce,
		MaxLife:   s.cfg.MaxLife,
		DecayRate: s.cfg.DecayRate + (s.emitter.Float64()*2-1)*s.cfg.DecayJitter,
		Radius:    s.emitter.Uniform(s.cfg.Radius),
		Trail:     s.cfg.TrailCapacity,
		Color:     s.cfg.ParticleColor,
	}
	p, err := NewParticle(s.newID(), spec)
	if err != nil {
		s.log.Error("spawn rejected", zap.Error(err))
		return false
	}
	s.particles = append(s.particles, p)
	s.log.Debug("particle spawned", zap.Uint64("id", p.ID), zap.Float64("x", p.Position.X), zap.Float64("y", p.Position.Y))
	return true
}

// advanceParticles runs step two for every live particle. Particles only
// read shared state here, so large populations are split across workers;
// all writes land before the collision snapshot is taken.
func (s *Simulation) advanceParticles(t uint64, ambient []Vector2) {
	var shared Vector2
	for _, f := range ambient {
		shared = shared.Add(f)
	}
	shared = shared.Add(s.wind)

	step := func(p *Particle) {
		force := shared.Add(s.field.ForceOn(p.Position))
		if s.flow != nil {
			force = force.Add(s.flow.ForceAt(p.Position, float64(t)))
		}
		if s.pointer != nil && p.Position.Dist(*s.pointer) < s.cfg.Pointer.Radius {
			force = force.Add(p.Flee(*s.pointer).Scale(s.cfg.Pointer.Strength))
		}
		p.Tick(force)
		if !s.boundary.Apply(&p.Agent) {
			p.Kill()
		}
	}

	workers := s.cfg.Workers
	if workers <= 1 || len(s.particles) < s.cfg.ParallelThreshold {
		for _, p := range s.particles {
			step(p)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	chunk := (len(s.particles) + workers - 1) / workers
	for start := 0; start < len(s.particles); start += chunk {
		part := s.particles[start:min(start+chunk, len(s.particles))]
		g.Go(func() error {
			for _, p := range part {
				step(p)
			}
			return nil
		})
	}
	_ = g.Wait()
}

type entity struct {
	body     Body
	color    Color
	particle *Particle
	ball     *Ball
}

func (s *Simulation) entities() []entity {
	out := make([]entity, 0, len(s.particles))
	for _, p := range s.particles {
		if p.Dead() {
			continue
		}
		out = append(out, entity{
			body:     Body{ID: p.ID, Kind: KindParticle, Position: p.Position, Radius: p.Radius},
			color:    p.Color,
			particle: p,
		})
	}
	if s.net != nil {
		for _, path := range s.net.paths {
			for _, b := range path.Balls {
				if b.dead {
					continue
				}
				out = append(out, entity{
					body:  Body{ID: b.ID, Kind: KindBall, Position: s.net.ballPosition(path, b), Radius: s.cfg.Paths.BallRadius},
					color: path.Color,
					ball:  b,
				})
			}
		}
	}
	return out
}

// applyCollisions runs the configured effect for each pair in order. An
// entity removed by one pair is skipped by the later pairs of the tick.
func (s *Simulation) applyCollisions(pairs []Pair, entities []entity) []Collision {
	if len(pairs) == 0 && s.cfg.CollisionEffect != EffectRipple {
		return nil
	}
	byID := make(map[uint64]*entity, len(entities))
	for i := range entities {
		byID[entities[i].body.ID] = &entities[i]
	}

	removes := s.cfg.CollisionEffect == EffectRippleRemove || s.cfg.CollisionEffect == EffectRemove
	consumed := make(map[uint64]bool)
	contacts := make(map[Pair]struct{}, len(pairs))
	var out []Collision

	for _, pr := range pairs {
		if consumed[pr.A] || consumed[pr.B] {
			continue
		}
		a, b := byID[pr.A], byID[pr.B]
		mid := a.body.Position.Midpoint(b.body.Position)

		switch s.cfg.CollisionEffect {
		case EffectRippleRemove:
			s.addRipple(mid, a.color.Blend(b.color, 0.5), CauseCollision)
		case EffectRipple:
			contacts[pr] = struct{}{}
			if _, touching := s.contacts[pr]; touching {
				continue
			}
			s.addRipple(mid, a.color.Blend(b.color, 0.5), CauseCollision)
		}
		if removes {
			for _, e := range []*entity{a, b} {
				consumed[e.body.ID] = true
				if e.particle != nil {
					e.particle.Kill()
				} else if e.ball != nil {
					e.ball.dead = true
				}
			}
		}
		out = append(out, Collision{A: pr.A, B: pr.B, At: mid})
		s.log.Debug("collision", zap.Uint64("a", pr.A), zap.Uint64("b", pr.B))
	}

	if s.cfg.CollisionEffect == EffectRipple {
		s.contacts = contacts
	}
	return out
}

func (s *Simulation) addRipple(at Vector2, c Color, cause RippleCause) {
	s.ripples = append(s.ripples, &Ripple{
		ID:        s.newID(),
		Position:  at,
		MaxRadius: s.cfg.Ripple.MaxRadius,
		Speed:     s.cfg.Ripple.Speed,
		Color:     c,
		Cause:     cause,
	})
}

func (s *Simulation) advanceRipples(t uint64) {
	if n := s.cfg.Ripple.IntervalTicks; n > 0 && t%uint64(n) == 0 {
		s.addRipple(s.cfg.Ripple.Origin, s.cfg.Ripple.Color, CausePeriodic)
	}
	live := s.ripples[:0]
	for _, r := range s.ripples {
		r.Advance()
		if s.net != nil {
			if n := s.net.reseed(r, s.newID); n > 0 {
				s.log.Debug("balls reseeded", zap.Uint64("tick", t), zap.Uint64("ripple", r.ID), zap.Int("balls", n))
			}
		}
		if !r.Dead() {
			live = append(live, r)
		}
	}
	s.ripples = live
}

func (s *Simulation) prune() {
	live := s.particles[:0]
	for _, p := range s.particles {
		if !p.Dead() {
			live = append(live, p)
		}
	}
	for i := len(live); i < len(s.particles); i++ {
		s.particles[i] = nil
	}
	s.particles = live
	if s.net != nil {
		s.net.prune()
	}
}

// publish builds the frame renderers will read until the next tick.
func (s *Simulation) publish(spawned int, collisions []Collision) {
	f := Frame{
		Tick:       s.tick,
		Paused:     s.paused,
		Width:      s.cfg.Width,
		Height:     s.cfg.Height,
		Spawned:    spawned,
		Particles:  make([]ParticleState, len(s.particles)),
		Effects:    make([]RippleState, len(s.ripples)),
		Attractors: make([]AttractorState, len(s.field.attractors)),
		Collisions: collisions,
	}
	for i, p := range s.particles {
		f.Particles[i] = ParticleState{
			ID:       p.ID,
			Position: p.Position,
			Velocity: p.Velocity,
			Radius:   p.Radius,
			Alpha:    p.Alpha(),
			Color:    p.Color,
			Trail:    p.Trail(),
		}
	}
	for i, r := range s.ripples {
		f.Effects[i] = RippleState{
			ID:        r.ID,
			Position:  r.Position,
			Radius:    r.Radius,
			MaxRadius: r.MaxRadius,
			Alpha:     r.Alpha(),
			Color:     r.Color,
			Cause:     r.Cause,
		}
	}
	for i, a := range s.field.attractors {
		f.Attractors[i] = AttractorState{Name: a.Name, Position: a.Position, InfluenceRadius: a.InfluenceRadius, Strength: a.Strength}
	}
	if s.net != nil {
		f.Beacons = make([]BeaconState, len(s.net.beacons))
		for i, b := range s.net.beacons {
			f.Beacons[i] = BeaconState{Position: b.Position, Opacity: b.Opacity}
		}
		f.Paths = make([]PathState, len(s.net.paths))
		for i, p := range s.net.paths {
			ps := PathState{ID: p.ID, Color: p.Color, Points: make([]Vector2, len(p.Nodes))}
			for j, idx := range p.Nodes {
				ps.Points[j] = s.net.beacons[idx].Position
			}
			for _, b := range p.Balls {
				ps.Balls = append(ps.Balls, s.net.ballPosition(p, b))
			}
			f.Paths[i] = ps
		}
	}
	s.frame = f
}

// Snapshot returns a deep copy of the last completed frame.
func (s *Simulation) Snapshot() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame.Clone()
}

// Pause stops Tick from advancing until Resume.
func (s *Simulation) Pause() { s.setPaused(true) }

// Resume lets Tick advance again.
func (s *Simulation) Resume() { s.setPaused(false) }

// TogglePause flips the pause flag and returns the new state.
func (s *Simulation) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	s.frame.Paused = s.paused
	return s.paused
}

func (s *Simulation) setPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
	s.frame.Paused = paused
}

// Paused reports whether ticks are currently suppressed.
func (s *Simulation) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// Reset discards every particle, effect and path and restarts the random
// sequence from the configured seed. The pause flag is kept.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	paused := s.paused
	if err := s.init(); err != nil {
		// init only fails on configuration New already accepted.
		panic(fmt.Sprintf("sim: reset with validated config: %v", err))
	}
	s.paused = paused
	s.frame.Paused = paused
	s.log.Debug("simulation reset", zap.Int64("seed", s.cfg.Seed))
}

// SetPointer places the repelling pointer at p.
func (s *Simulation) SetPointer(p Vector2) {
	if !p.IsFinite() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = &p
}

// ClearPointer removes pointer repulsion.
func (s *Simulation) ClearPointer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = nil
}

// SetWind replaces the constant wind force. Non-finite values are ignored.
func (s *Simulation) SetWind(w Vector2) {
	if !w.IsFinite() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wind = w
}

// Wind returns the current wind force.
func (s *Simulation) Wind() Vector2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wind
}

// EmitRipple starts a ripple at p; it shows up from the next frame.
func (s *Simulation) EmitRipple(p Vector2) {
	if !p.IsFinite() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addRipple(p, s.cfg.Ripple.Color, CausePointer)
}

// Run ticks every interval until ctx is done, handing each completed frame
// to report. Frames keep flowing while paused so renderers stay live.
func (s *Simulation) Run(ctx context.Context, interval time.Duration, report func(Frame)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
			frame := s.Snapshot()
			if report != nil {
				report(frame)
			}
			s.log.Debug("simulation step",
				zap.Uint64("tick", frame.Tick),
				zap.Int("particles", len(frame.Particles)),
				zap.Int("effects", len(frame.Effects)))
		}
	}
}
