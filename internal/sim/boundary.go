package sim

// Boundary applies the configured edge policy to agents leaving the
// [0,Width] x [0,Height] domain by more than Margin.
type Boundary struct {
	Width, Height float64
	Margin        float64
	Policy        BoundaryPolicy
}

// Apply enforces the policy on a and reports whether the agent survives.
// Only BoundaryDie ever returns false.
func (b Boundary) Apply(a *Agent) bool {
	minX, maxX := -b.Margin, b.Width+b.Margin
	minY, maxY := -b.Margin, b.Height+b.Margin
	p := a.Position
	outside := p.X < minX || p.X > maxX || p.Y < minY || p.Y > maxY
	if !outside {
		return true
	}

	switch b.Policy {
	case BoundaryDie:
		return false
	case BoundaryWrap:
		if p.X < minX {
			a.Position.X = maxX
		} else if p.X > maxX {
			a.Position.X = minX
		}
		if p.Y < minY {
			a.Position.Y = maxY
		} else if p.Y > maxY {
			a.Position.Y = minY
		}
	case BoundaryClamp:
		if p.X < minX || p.X > maxX {
			a.Position.X = clamp(p.X, minX, maxX)
			a.Velocity.X = 0
		}
		if p.Y < minY || p.Y > maxY {
			a.Position.Y = clamp(p.Y, minY, maxY)
			a.Velocity.Y = 0
		}
	case BoundaryReflect:
		if p.X < minX {
			a.Position.X = 2*minX - p.X
			a.Velocity.X = -a.Velocity.X
		} else if p.X > maxX {
			a.Position.X = 2*maxX - p.X
			a.Velocity.X = -a.Velocity.X
		}
		if p.Y < minY {
			a.Position.Y = 2*minY - p.Y
			a.Velocity.Y = -a.Velocity.Y
		} else if p.Y > maxY {
			a.Position.Y = 2*maxY - p.Y
			a.Velocity.Y = -a.Velocity.Y
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
