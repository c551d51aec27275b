// Package input turns user gestures into simulation control calls.
package input

import (
	"sync"

	"go.uber.org/zap"

	"voidfield/internal/sim"
)

// Target is the control surface of a simulation.
type Target interface {
	Pause()
	Resume()
	TogglePause() bool
	Reset()
	SetPointer(sim.Vector2)
	ClearPointer()
	EmitRipple(sim.Vector2)
	SetWind(sim.Vector2)
	Wind() sim.Vector2
}

var _ Target = (*sim.Simulation)(nil)

// EventKind enumerates the gestures a Driver understands.
type EventKind uint8

const (
	EventPause EventKind = iota
	EventResume
	EventTogglePause
	EventReset
	// EventPointerMove carries the raw pointer in Position.
	EventPointerMove
	EventPointerLeave
	// EventClick emits a ripple at Position, or at the smoothed pointer when
	// AtPointer is set.
	EventClick
	// EventWind replaces the wind with Position.
	EventWind
	// EventGust adds Position to the current wind.
	EventGust
)

// Event is one user gesture.
type Event struct {
	Kind      EventKind
	Position  sim.Vector2
	AtPointer bool
}

// Driver applies events to a target. Pointer motion goes through a spring
// and reaches the target on Update, once per rendered frame.
type Driver struct {
	mu      sync.Mutex
	target  Target
	pointer *Pointer
	log     *zap.Logger
}

// NewDriver wires target to pointer. A nil pointer passes raw positions
// straight through.
func NewDriver(target Target, pointer *Pointer, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{target: target, pointer: pointer, log: log}
}

// Apply performs ev on the target. Pointer moves only reach the target
// through Update when a spring is configured.
func (d *Driver) Apply(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev.Kind {
	case EventPause:
		d.target.Pause()
	case EventResume:
		d.target.Resume()
	case EventTogglePause:
		paused := d.target.TogglePause()
		d.log.Debug("pause toggled", zap.Bool("paused", paused))
	case EventReset:
		d.target.Reset()
	case EventPointerMove:
		if d.pointer == nil {
			d.target.SetPointer(ev.Position)
			return
		}
		d.pointer.MoveTo(ev.Position)
	case EventPointerLeave:
		if d.pointer != nil {
			d.pointer.Leave()
		}
		d.target.ClearPointer()
	case EventClick:
		at := ev.Position
		if ev.AtPointer {
			pos, ok := d.pointerPosition()
			if !ok {
				return
			}
			at = pos
		}
		d.target.EmitRipple(at)
	case EventWind:
		d.target.SetWind(ev.Position)
	case EventGust:
		d.target.SetWind(d.target.Wind().Add(ev.Position))
	default:
		d.log.Warn("unknown input event", zap.Uint8("kind", uint8(ev.Kind)))
	}
}

func (d *Driver) pointerPosition() (sim.Vector2, bool) {
	if d.pointer == nil {
		return sim.Vector2{}, false
	}
	return d.pointer.Position()
}

// Update advances the pointer spring and forwards the smoothed position.
func (d *Driver) Update() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pointer == nil {
		return
	}
	if pos, ok := d.pointer.Update(); ok {
		d.target.SetPointer(pos)
	}
}
