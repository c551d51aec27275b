package sim

// Trail is a fixed-capacity history of recent positions, oldest first.
// Pushing past capacity evicts the oldest point.
type Trail struct {
	buf   []Vector2
	start int
	n     int
}

// NewTrail returns an empty trail holding at most capacity points.
func NewTrail(capacity int) (*Trail, error) {
	if err := requirePositiveInt("trail_capacity", capacity); err != nil {
		return nil, err
	}
	return &Trail{buf: make([]Vector2, capacity)}, nil
}

// Push appends p, evicting the oldest point when full.
func (t *Trail) Push(p Vector2) {
	if t.n < len(t.buf) {
		t.buf[(t.start+t.n)%len(t.buf)] = p
		t.n++
		return
	}
	t.buf[t.start] = p
	t.start = (t.start + 1) % len(t.buf)
}

// Points returns a copy of the trail, oldest to newest. Renderers map the
// index to alpha and stroke width, index 0 being the faintest.
func (t *Trail) Points() []Vector2 {
	out := make([]Vector2, t.n)
	for i := 0; i < t.n; i++ {
		out[i] = t.buf[(t.start+i)%len(t.buf)]
	}
	return out
}

// Len is the number of points held.
func (t *Trail) Len() int { return t.n }

// Cap is the capacity given to NewTrail.
func (t *Trail) Cap() int { return len(t.buf) }

// Reset empties the trail and keeps its capacity.
func (t *Trail) Reset() {
	t.start, t.n = 0, 0
}
