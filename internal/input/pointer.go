package input

import (
	"sync"

	"github.com/charmbracelet/harmonica"

	"voidfield/internal/sim"
)

// Pointer follows the raw pointer through a critically damped spring so
// the repelling point glides instead of jumping between samples.
type Pointer struct {
	mu       sync.Mutex
	spring   harmonica.Spring
	pos, vel sim.Vector2
	target   sim.Vector2
	active   bool
}

// NewPointer steps the spring fps times a second. frequency is the angular
// frequency, damping the damping ratio (1 is critically damped).
func NewPointer(fps int, frequency, damping float64) *Pointer {
	return &Pointer{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

// MoveTo sets the raw pointer position. The first sample after a leave
// places the smoothed pointer there directly.
func (p *Pointer) MoveTo(v sim.Vector2) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		p.pos = v
		p.vel = sim.Vector2{}
	}
	p.target = v
	p.active = true
}

// Leave deactivates the pointer.
func (p *Pointer) Leave() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
}

// Update advances the spring one frame and returns the smoothed position.
// ok is false while the pointer is away.
func (p *Pointer) Update() (pos sim.Vector2, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return sim.Vector2{}, false
	}
	p.pos.X, p.vel.X = p.spring.Update(p.pos.X, p.vel.X, p.target.X)
	p.pos.Y, p.vel.Y = p.spring.Update(p.pos.Y, p.vel.Y, p.target.Y)
	return p.pos, true
}

// Position returns the smoothed position without advancing the spring.
func (p *Pointer) Position() (sim.Vector2, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos, p.active
}
