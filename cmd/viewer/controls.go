package main

import (
	"github.com/gdamore/tcell/v2"

	"voidfield/internal/input"
	"voidfield/internal/render"
	"voidfield/internal/sim"
)

// gust is the wind change per w/a/s/d press.
const gust = 0.02

// controls translates terminal events into driver events.
type controls struct {
	screen   tcell.Screen
	terminal *render.Terminal
	width    float64
	height   float64
	pressed  bool
}

func newControls(screen tcell.Screen, terminal *render.Terminal, width, height float64) *controls {
	return &controls{screen: screen, terminal: terminal, width: width, height: height}
}

// translate returns the events for ev. quit is set when the user asked to
// leave.
func (c *controls) translate(ev tcell.Event) (events []input.Event, quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.key(ev)
	case *tcell.EventMouse:
		return c.mouse(ev), false
	}
	return nil, false
}

func (c *controls) key(ev *tcell.EventKey) ([]input.Event, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return nil, true
	case tcell.KeyRune:
	default:
		return nil, false
	}

	switch ev.Rune() {
	case 'q':
		return nil, true
	case ' ':
		return []input.Event{{Kind: input.EventTogglePause}}, false
	case 'r':
		return []input.Event{{Kind: input.EventReset}}, false
	case 'c':
		return []input.Event{{Kind: input.EventClick, AtPointer: true}}, false
	case 'x':
		return []input.Event{{Kind: input.EventWind}}, false
	case 'w':
		return []input.Event{{Kind: input.EventGust, Position: sim.V(0, -gust)}}, false
	case 's':
		return []input.Event{{Kind: input.EventGust, Position: sim.V(0, gust)}}, false
	case 'a':
		return []input.Event{{Kind: input.EventGust, Position: sim.V(-gust, 0)}}, false
	case 'd':
		return []input.Event{{Kind: input.EventGust, Position: sim.V(gust, 0)}}, false
	}
	return nil, false
}

// mouse moves the pointer while it is over the field and clicks on the
// press edge of the primary button. The status row counts as leaving.
func (c *controls) mouse(ev *tcell.EventMouse) []input.Event {
	col, row := ev.Position()
	cols, rows := c.screen.Size()
	if col < 0 || col >= cols || row < 0 || row >= rows-1 {
		c.pressed = false
		return []input.Event{{Kind: input.EventPointerLeave}}
	}

	at := c.terminal.ToWorld(col, row, c.width, c.height)
	events := []input.Event{{Kind: input.EventPointerMove, Position: at}}
	down := ev.Buttons()&tcell.ButtonPrimary != 0
	if down && !c.pressed {
		events = append(events, input.Event{Kind: input.EventClick, Position: at})
	}
	c.pressed = down
	return events
}
