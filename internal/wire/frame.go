package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"voidfield/internal/sim"
)

// EncodeFrame serialises a frame as a voidfield.v1.Frame message.
func EncodeFrame(f sim.Frame) []byte {
	e := encoder{b: make([]byte, 0, 64+len(f.Particles)*96)}
	e.varint(1, f.Tick)
	e.flag(2, f.Paused)
	e.double(3, f.Width)
	e.double(4, f.Height)
	e.varint(5, uint64(f.Spawned))

	for _, p := range f.Particles {
		e.message(6, func(m *encoder) {
			m.varint(1, p.ID)
			m.vec(2, p.Position)
			m.vec(3, p.Velocity)
			m.double(4, p.Radius)
			m.double(5, p.Alpha)
			m.color(6, p.Color)
			m.vecs(7, p.Trail)
		})
	}
	for _, r := range f.Effects {
		e.message(7, func(m *encoder) {
			m.varint(1, r.ID)
			m.vec(2, r.Position)
			m.double(3, r.Radius)
			m.double(4, r.MaxRadius)
			m.double(5, r.Alpha)
			m.color(6, r.Color)
			m.varint(7, uint64(r.Cause))
		})
	}
	for _, a := range f.Attractors {
		e.message(8, func(m *encoder) {
			m.text(1, a.Name)
			m.vec(2, a.Position)
			m.double(3, a.InfluenceRadius)
			m.double(4, a.Strength)
		})
	}
	for _, b := range f.Beacons {
		e.message(9, func(m *encoder) {
			m.vec(1, b.Position)
			m.double(2, b.Opacity)
		})
	}
	for _, p := range f.Paths {
		e.message(10, func(m *encoder) {
			m.varint(1, p.ID)
			m.vecs(2, p.Points)
			m.color(3, p.Color)
			m.vecs(4, p.Balls)
		})
	}
	for _, c := range f.Collisions {
		e.message(11, func(m *encoder) {
			m.varint(1, c.A)
			m.varint(2, c.B)
			m.vec(3, c.At)
		})
	}
	return e.b
}

// DecodeFrame parses a voidfield.v1.Frame message. Unknown fields are
// skipped.
func DecodeFrame(data []byte) (sim.Frame, error) {
	var f sim.Frame
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint(typ, b, &f.Tick), nil
		case 2:
			return consumeBool(typ, b, &f.Paused), nil
		case 3:
			return consumeDouble(typ, b, &f.Width), nil
		case 4:
			return consumeDouble(typ, b, &f.Height), nil
		case 5:
			var v uint64
			n := consumeUint(typ, b, &v)
			if n > 0 {
				f.Spawned = int(v)
			}
			return n, nil
		case 6:
			var p sim.ParticleState
			n, err := consumeMessage(typ, b, particleFields(&p))
			if n > 0 && err == nil {
				f.Particles = append(f.Particles, p)
			}
			return n, err
		case 7:
			var r sim.RippleState
			n, err := consumeMessage(typ, b, rippleFields(&r))
			if n > 0 && err == nil {
				f.Effects = append(f.Effects, r)
			}
			return n, err
		case 8:
			var a sim.AttractorState
			n, err := consumeMessage(typ, b, attractorFields(&a))
			if n > 0 && err == nil {
				f.Attractors = append(f.Attractors, a)
			}
			return n, err
		case 9:
			var bc sim.BeaconState
			n, err := consumeMessage(typ, b, beaconFields(&bc))
			if n > 0 && err == nil {
				f.Beacons = append(f.Beacons, bc)
			}
			return n, err
		case 10:
			var p sim.PathState
			n, err := consumeMessage(typ, b, pathFields(&p))
			if n > 0 && err == nil {
				f.Paths = append(f.Paths, p)
			}
			return n, err
		case 11:
			var c sim.Collision
			n, err := consumeMessage(typ, b, collisionFields(&c))
			if n > 0 && err == nil {
				f.Collisions = append(f.Collisions, c)
			}
			return n, err
		}
		return 0, nil
	})
	if err != nil {
		return sim.Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

func particleFields(p *sim.ParticleState) fieldFunc {
	return func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint(typ, b, &p.ID), nil
		case 2:
			return consumeVec(typ, b, &p.Position)
		case 3:
			return consumeVec(typ, b, &p.Velocity)
		case 4:
			return consumeDouble(typ, b, &p.Radius), nil
		case 5:
			return consumeDouble(typ, b, &p.Alpha), nil
		case 6:
			return consumeColor(typ, b, &p.Color), nil
		case 7:
			return appendVec(typ, b, &p.Trail)
		}
		return 0, nil
	}
}

func rippleFields(r *sim.RippleState) fieldFunc {
	return func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint(typ, b, &r.ID), nil
		case 2:
			return consumeVec(typ, b, &r.Position)
		case 3:
			return consumeDouble(typ, b, &r.Radius), nil
		case 4:
			return consumeDouble(typ, b, &r.MaxRadius), nil
		case 5:
			return consumeDouble(typ, b, &r.Alpha), nil
		case 6:
			return consumeColor(typ, b, &r.Color), nil
		case 7:
			var v uint64
			n := consumeUint(typ, b, &v)
			if n > 0 {
				r.Cause = sim.RippleCause(v)
			}
			return n, nil
		}
		return 0, nil
	}
}

func attractorFields(a *sim.AttractorState) fieldFunc {
	return func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &a.Name), nil
		case 2:
			return consumeVec(typ, b, &a.Position)
		case 3:
			return consumeDouble(typ, b, &a.InfluenceRadius), nil
		case 4:
			return consumeDouble(typ, b, &a.Strength), nil
		}
		return 0, nil
	}
}

func beaconFields(bc *sim.BeaconState) fieldFunc {
	return func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeVec(typ, b, &bc.Position)
		case 2:
			return consumeDouble(typ, b, &bc.Opacity), nil
		}
		return 0, nil
	}
}

func pathFields(p *sim.PathState) fieldFunc {
	return func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint(typ, b, &p.ID), nil
		case 2:
			return appendVec(typ, b, &p.Points)
		case 3:
			return consumeColor(typ, b, &p.Color), nil
		case 4:
			return appendVec(typ, b, &p.Balls)
		}
		return 0, nil
	}
}

func collisionFields(c *sim.Collision) fieldFunc {
	return func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint(typ, b, &c.A), nil
		case 2:
			return consumeUint(typ, b, &c.B), nil
		case 3:
			return consumeVec(typ, b, &c.At)
		}
		return 0, nil
	}
}
