package sim

// rippleTouchWidth is how close a ring must pass to a beacon to touch it.
const rippleTouchWidth = 10

// Beacon is a twinkling dot that paths snap to.
type Beacon struct {
	Position   Vector2
	Opacity    float64
	fade       float64
	direction  float64
	influenced bool
	cooldown   int
}

// Ball is an energy ball riding a path, Progress along segment Segment.
type Ball struct {
	ID       uint64
	Segment  int
	Progress float64
	dead     bool
}

// Path is a polyline of beacon indexes crossing the domain edge to edge.
type Path struct {
	ID    uint64
	Nodes []int
	Color Color
	Balls []*Ball
}

// network owns the beacons and paths of a run.
type network struct {
	cfg           PathConfig
	width, height float64
	beacons       []Beacon
	paths         []*Path
	timer         int
}

func newNetwork(cfg PathConfig, width, height float64, rng *Emitter) *network {
	n := &network{cfg: cfg, width: width, height: height}
	n.beacons = make([]Beacon, cfg.Beacons)
	for i := range n.beacons {
		dir := 1.0
		if rng.Float64() > 0.5 {
			dir = -1
		}
		n.beacons[i] = Beacon{
			Position:  Vector2{X: rng.Float64() * width, Y: rng.Float64() * height},
			Opacity:   rng.Float64() * 0.7,
			fade:      cfg.BeaconFade * (0.5 + rng.Float64()*1.5),
			direction: dir,
		}
	}
	return n
}

// twinkle fades every beacon in or out and counts down reseed cooldowns.
func (n *network) twinkle() {
	for i := range n.beacons {
		b := &n.beacons[i]
		rate := b.fade
		if b.influenced {
			rate = n.cfg.BeaconFade * 2
		}
		b.Opacity += rate * b.direction
		if b.Opacity > 1 {
			b.Opacity = 1
			b.direction = -1
			b.influenced = false
		} else if b.Opacity < 0 {
			b.Opacity = 0
			b.direction = 1
		}
		if b.cooldown > 0 {
			b.cooldown--
		}
	}
}

// maybeSpawn counts ticks and lays a new path once the interval has passed
// and there is room. The timer only resets when a path was actually laid.
func (n *network) maybeSpawn(rng *Emitter, nextID func() uint64) *Path {
	n.timer++
	if n.timer < n.cfg.IntervalTicks || len(n.paths) >= n.cfg.MaxPaths {
		return nil
	}
	p := n.layPath(rng, nextID)
	if p == nil {
		return nil
	}
	n.paths = append(n.paths, p)
	n.timer = 0
	return p
}

func (n *network) layPath(rng *Emitter, nextID func() uint64) *Path {
	start := n.edgePoint(rng.Intn(4), rng)
	end := n.edgePoint(rng.Intn(4), rng)
	count := n.cfg.MinNodes + rng.Intn(n.cfg.MaxNodes-n.cfg.MinNodes+1)

	nodes := make([]int, 0, count)
	for i := 0; i < count; i++ {
		target := start.Lerp(end, float64(i)/float64(count-1))
		idx := n.nearestBeacon(target)
		if idx < 0 || (len(nodes) > 0 && nodes[len(nodes)-1] == idx) {
			continue
		}
		b := &n.beacons[idx]
		b.influenced = true
		if b.Opacity < 0.5 {
			b.Opacity = 0.5
		}
		nodes = append(nodes, idx)
	}
	if len(nodes) < 3 {
		return nil
	}
	return &Path{
		ID:    nextID(),
		Nodes: nodes,
		Color: n.cfg.Color.HueShift(rng.Float64()*40 - 20),
		Balls: []*Ball{{ID: nextID()}},
	}
}

func (n *network) nearestBeacon(target Vector2) int {
	best, bestDist := -1, n.cfg.SnapRadius*n.cfg.SnapRadius
	for i, b := range n.beacons {
		if d := b.Position.DistSq(target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (n *network) edgePoint(edge int, rng *Emitter) Vector2 {
	m := n.cfg.EdgeMargin
	along := func(span float64) float64 { return m + rng.Float64()*max(0, span-2*m) }
	switch edge {
	case 0:
		return Vector2{X: along(n.width), Y: -edgeOffset}
	case 1:
		return Vector2{X: along(n.width), Y: n.height + edgeOffset}
	case 2:
		return Vector2{X: -edgeOffset, Y: along(n.height)}
	default:
		return Vector2{X: n.width + edgeOffset, Y: along(n.height)}
	}
}

// advanceBalls moves every ball along its path; a ball finishing a segment
// starts the next one from its beginning.
func (n *network) advanceBalls() {
	for _, p := range n.paths {
		for _, b := range p.Balls {
			b.Progress += n.cfg.BallSpeed
			if b.Progress >= 1 {
				b.Progress = 0
				b.Segment++
			}
			if b.Segment >= len(p.Nodes)-1 {
				b.dead = true
			}
		}
	}
}

func (n *network) ballPosition(p *Path, b *Ball) Vector2 {
	from := n.beacons[p.Nodes[b.Segment]].Position
	to := n.beacons[p.Nodes[b.Segment+1]].Position
	return from.Lerp(to, b.Progress)
}

// reseed starts a new ball wherever the ripple passes a bright, rested
// beacon that is a non-final node of an active path.
func (n *network) reseed(r *Ripple, nextID func() uint64) int {
	seeded := 0
	for idx := range n.beacons {
		b := &n.beacons[idx]
		if b.cooldown > 0 || b.Opacity <= n.cfg.BeaconThreshold || !r.Touches(b.Position, rippleTouchWidth) {
			continue
		}
		for _, p := range n.paths {
			for node := 0; node < len(p.Nodes)-1; node++ {
				if p.Nodes[node] != idx {
					continue
				}
				p.Balls = append(p.Balls, &Ball{ID: nextID(), Segment: node})
				b.cooldown = n.cfg.ReseedCooldownTicks
				seeded++
				break
			}
		}
	}
	return seeded
}

// prune drops spent balls and paths left without any ball.
func (n *network) prune() {
	paths := n.paths[:0]
	for _, p := range n.paths {
		balls := p.Balls[:0]
		for _, b := range p.Balls {
			if !b.dead {
				balls = append(balls, b)
			}
		}
		p.Balls = balls
		if len(p.Balls) > 0 {
			paths = append(paths, p)
		}
	}
	n.paths = paths
}
