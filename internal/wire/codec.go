// Package wire encodes frames and control messages in the protobuf wire
// format described by proto/voidfield.proto.
package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"voidfield/internal/sim"
)

// encoder appends fields, skipping proto3 zero values.
type encoder struct {
	b []byte
}

func (e *encoder) varint(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

func (e *encoder) flag(num protowire.Number, v bool) {
	e.varint(num, protowire.EncodeBool(v))
}

func (e *encoder) double(num protowire.Number, v float64) {
	bits := math.Float64bits(v)
	if bits == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed64Type)
	e.b = protowire.AppendFixed64(e.b, bits)
}

func (e *encoder) color(num protowire.Number, c sim.Color) {
	v := uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed32Type)
	e.b = protowire.AppendFixed32(e.b, v)
}

func (e *encoder) text(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, s)
}

// message always writes the field, so repeated entries keep their count
// even when every member is zero.
func (e *encoder) message(num protowire.Number, fill func(*encoder)) {
	var sub encoder
	fill(&sub)
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, sub.b)
}

func (e *encoder) vec(num protowire.Number, v sim.Vector2) {
	if v == (sim.Vector2{}) {
		return
	}
	e.message(num, func(m *encoder) {
		m.double(1, v.X)
		m.double(2, v.Y)
	})
}

func (e *encoder) vecs(num protowire.Number, vs []sim.Vector2) {
	for _, v := range vs {
		e.message(num, func(m *encoder) {
			m.double(1, v.X)
			m.double(2, v.Y)
		})
	}
}

// fieldFunc consumes the value of one field and returns its length. Zero
// means the field is unknown or has an unexpected wire type and is skipped.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func walk(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func consumeUint(typ protowire.Type, b []byte, dst *uint64) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n > 0 {
		*dst = v
	}
	return n
}

func consumeBool(typ protowire.Type, b []byte, dst *bool) int {
	var v uint64
	n := consumeUint(typ, b, &v)
	if n > 0 {
		*dst = protowire.DecodeBool(v)
	}
	return n
}

func consumeDouble(typ protowire.Type, b []byte, dst *float64) int {
	if typ != protowire.Fixed64Type {
		return 0
	}
	v, n := protowire.ConsumeFixed64(b)
	if n > 0 {
		*dst = math.Float64frombits(v)
	}
	return n
}

func consumeColor(typ protowire.Type, b []byte, dst *sim.Color) int {
	if typ != protowire.Fixed32Type {
		return 0
	}
	v, n := protowire.ConsumeFixed32(b)
	if n > 0 {
		*dst = sim.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	}
	return n
}

func consumeString(typ protowire.Type, b []byte, dst *string) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeString(b)
	if n > 0 {
		*dst = v
	}
	return n
}

func consumeMessage(typ protowire.Type, b []byte, fn fieldFunc) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	return n, walk(v, fn)
}

func vecFields(dst *sim.Vector2) fieldFunc {
	return func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeDouble(typ, b, &dst.X), nil
		case 2:
			return consumeDouble(typ, b, &dst.Y), nil
		}
		return 0, nil
	}
}

func consumeVec(typ protowire.Type, b []byte, dst *sim.Vector2) (int, error) {
	return consumeMessage(typ, b, vecFields(dst))
}

func appendVec(typ protowire.Type, b []byte, dst *[]sim.Vector2) (int, error) {
	var v sim.Vector2
	n, err := consumeVec(typ, b, &v)
	if n > 0 && err == nil {
		*dst = append(*dst, v)
	}
	return n, err
}
