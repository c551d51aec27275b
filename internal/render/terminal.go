// Package render draws simulation frames on a terminal screen.
package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"voidfield/internal/sim"
)

const (
	glyphParticle  = '●'
	glyphSmall     = '•'
	glyphTrail     = '·'
	glyphRipple    = '∘'
	glyphAttractor = '◎'
	glyphBeacon    = '⋅'
	glyphPath      = '─'
	glyphBall      = '◉'

	// particles at least this large get the big glyph
	bigRadius = 5
)

// Terminal maps world coordinates onto the cells of a tcell screen. The
// bottom row is kept for the status line.
type Terminal struct {
	screen tcell.Screen
}

// NewTerminal draws on screen. The caller owns Init and Fini.
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) fieldSize() (cols, rows int) {
	cols, rows = t.screen.Size()
	return cols, max(rows-1, 0)
}

// ToCell maps a world point to a cell. ok is false off screen.
func (t *Terminal) ToCell(p sim.Vector2, width, height float64) (col, row int, ok bool) {
	cols, rows := t.fieldSize()
	if cols == 0 || rows == 0 || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	col = int(math.Floor(p.X / width * float64(cols)))
	row = int(math.Floor(p.Y / height * float64(rows)))
	return col, row, col >= 0 && col < cols && row >= 0 && row < rows
}

// ToWorld maps the center of a cell back to world coordinates.
func (t *Terminal) ToWorld(col, row int, width, height float64) sim.Vector2 {
	cols, rows := t.fieldSize()
	if cols == 0 || rows == 0 {
		return sim.Vector2{}
	}
	return sim.Vector2{
		X: (float64(col) + 0.5) / float64(cols) * width,
		Y: (float64(row) + 0.5) / float64(rows) * height,
	}
}

// Draw renders f and shows it. Later layers overwrite earlier ones:
// beacons, paths, ripples, trails, particles, balls, attractors, status.
func (t *Terminal) Draw(f sim.Frame) {
	t.screen.Clear()

	for _, b := range f.Beacons {
		if b.Opacity > 0.05 {
			t.plot(f, b.Position, glyphBeacon, rgb(sim.White, b.Opacity*0.6))
		}
	}
	for _, p := range f.Paths {
		for i := 1; i < len(p.Points); i++ {
			t.line(f, p.Points[i-1], p.Points[i], glyphPath, rgb(p.Color, 0.35))
		}
	}
	for _, r := range f.Effects {
		t.ring(f, r)
	}
	for _, p := range f.Particles {
		n := len(p.Trail)
		for i, pt := range p.Trail {
			// oldest is faintest
			intensity := float64(i+1) / float64(n+1)
			t.plot(f, pt, glyphTrail, rgb(p.Color, p.Alpha*intensity*0.6))
		}
	}
	for _, p := range f.Particles {
		glyph := glyphSmall
		if p.Radius >= bigRadius {
			glyph = glyphParticle
		}
		t.plot(f, p.Position, glyph, rgb(p.Color, p.Alpha))
	}
	for _, p := range f.Paths {
		for _, b := range p.Balls {
			t.plot(f, b, glyphBall, rgb(p.Color, 1).Bold(true))
		}
	}
	for _, a := range f.Attractors {
		t.plot(f, a.Position, glyphAttractor, tcell.StyleDefault.Foreground(tcell.ColorPurple))
	}

	t.status(f)
	t.screen.Show()
}

func (t *Terminal) plot(f sim.Frame, p sim.Vector2, glyph rune, style tcell.Style) {
	col, row, ok := t.ToCell(p, f.Width, f.Height)
	if !ok {
		return
	}
	t.screen.SetContent(col, row, glyph, nil, style)
}

func (t *Terminal) line(f sim.Frame, from, to sim.Vector2, glyph rune, style tcell.Style) {
	c0, r0, _ := t.ToCell(from, f.Width, f.Height)
	c1, r1, _ := t.ToCell(to, f.Width, f.Height)
	steps := max(abs(c1-c0), abs(r1-r0), 1)
	for i := 0; i <= steps; i++ {
		t.plot(f, from.Lerp(to, float64(i)/float64(steps)), glyph, style)
	}
}

func (t *Terminal) ring(f sim.Frame, r sim.RippleState) {
	cols, _ := t.fieldSize()
	if cols == 0 || f.Width <= 0 {
		return
	}
	// enough samples to touch every cell the circle crosses
	cellsAcross := r.Radius / f.Width * float64(cols)
	samples := max(int(2*math.Pi*cellsAcross*2), 8)
	style := rgb(r.Color, r.Alpha)
	for i := 0; i < samples; i++ {
		angle := float64(i) / float64(samples) * 2 * math.Pi
		t.plot(f, r.Position.Add(sim.FromAngle(angle, r.Radius)), glyphRipple, style)
	}
}

func (t *Terminal) status(f sim.Frame) {
	cols, rows := t.screen.Size()
	if rows == 0 {
		return
	}
	line := fmt.Sprintf(" tick %d  particles %d  effects %d  paths %d", f.Tick, len(f.Particles), len(f.Effects), len(f.Paths))
	if f.Paused {
		line += "  [paused]"
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	col := 0
	for _, ch := range line {
		if col >= cols {
			break
		}
		t.screen.SetContent(col, rows-1, ch, nil, style)
		col++
	}
}

// rgb scales c by its own alpha and by alpha, fading toward the background.
func rgb(c sim.Color, alpha float64) tcell.Style {
	k := math.Max(0, math.Min(1, alpha)) * float64(c.A) / 255
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(
		int32(float64(c.R)*k),
		int32(float64(c.G)*k),
		int32(float64(c.B)*k),
	))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
