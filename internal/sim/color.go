package sim

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGBA value carried opaquely to the renderer.
type Color struct {
	R, G, B, A uint8
}

// White is opaque white, the default particle color.
var White = Color{R: 255, G: 255, B: 255, A: 255}

// ParseColor accepts "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	if len(s) == 9 {
		c, err := colorful.Hex(s[:7])
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return Color{}, fmt.Errorf("parse color alpha %q: %w", s, err)
		}
		return fromColorful(c, a), nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return fromColorful(c, 255), nil
}

// HSV builds an opaque color from hue in degrees and saturation/value in [0,1].
func HSV(h, s, v float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return fromColorful(colorful.Hsv(h, s, v), 255)
}

func fromColorful(c colorful.Color, a uint8) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b, A: a}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Blend mixes two colors in Lab space; alpha is averaged linearly.
func (c Color) Blend(o Color, t float64) Color {
	mixed := c.colorful().BlendLab(o.colorful(), t)
	a := float64(c.A) + (float64(o.A)-float64(c.A))*t
	return fromColorful(mixed, uint8(math.Round(a)))
}

// WithAlpha scales the alpha channel by f in [0,1].
func (c Color) WithAlpha(f float64) Color {
	f = math.Max(0, math.Min(1, f))
	c.A = uint8(math.Round(float64(c.A) * f))
	return c
}

// Hex renders the color as "#rrggbbaa".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// MarshalText writes the color in hex so config files stay readable.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText reads a hex color from YAML or the environment.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// HueShift rotates the hue by deg degrees, keeping saturation, value and alpha.
func (c Color) HueShift(deg float64) Color {
	h, s, v := c.colorful().Hsv()
	shifted := HSV(h+deg, s, v)
	shifted.A = c.A
	return shifted
}
