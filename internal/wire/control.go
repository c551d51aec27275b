package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"voidfield/internal/sim"
)

// ControlKind mirrors voidfield.v1.ControlKind.
type ControlKind uint8

const (
	ControlUnspecified ControlKind = iota
	ControlPause
	ControlResume
	ControlToggle
	ControlReset
	ControlPointer
	ControlPointerLeave
	ControlRipple
	ControlWind
)

var controlNames = [...]string{
	ControlUnspecified:  "unspecified",
	ControlPause:        "pause",
	ControlResume:       "resume",
	ControlToggle:       "toggle",
	ControlReset:        "reset",
	ControlPointer:      "pointer",
	ControlPointerLeave: "pointer_leave",
	ControlRipple:       "ripple",
	ControlWind:         "wind",
}

func (k ControlKind) String() string {
	if int(k) < len(controlNames) {
		return controlNames[k]
	}
	return fmt.Sprintf("ControlKind(%d)", uint8(k))
}

// ErrUnknownControl is returned for a control message with no usable kind.
var ErrUnknownControl = errors.New("unknown control kind")

// Control is a client request. X and Y are the pointer position, ripple
// center or wind force, depending on Kind.
type Control struct {
	Kind ControlKind
	X, Y float64
}

// Point returns the control's coordinates as a vector.
func (c Control) Point() sim.Vector2 {
	return sim.Vector2{X: c.X, Y: c.Y}
}

// EncodeControl serialises c as a voidfield.Control message.
func EncodeControl(c Control) []byte {
	var e encoder
	e.varint(1, uint64(c.Kind))
	e.double(2, c.X)
	e.double(3, c.Y)
	return e.b
}

// DecodeControl parses a voidfield.v1.Control message.
func DecodeControl(data []byte) (Control, error) {
	var (
		c    Control
		kind uint64
	)
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint(typ, b, &kind), nil
		case 2:
			return consumeDouble(typ, b, &c.X), nil
		case 3:
			return consumeDouble(typ, b, &c.Y), nil
		}
		return 0, nil
	})
	if err != nil {
		return Control{}, fmt.Errorf("decode control: %w", err)
	}
	if kind == 0 || kind > uint64(ControlWind) {
		return Control{}, fmt.Errorf("decode control: %w: %d", ErrUnknownControl, kind)
	}
	c.Kind = ControlKind(kind)
	return c, nil
}
