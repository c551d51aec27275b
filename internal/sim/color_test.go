package sim

import "testing"

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#ff0000":   {R: 255, A: 255},
		"#00ff0080": {G: 255, A: 128},
		"#102030ff": {R: 16, G: 32, B: 48, A: 255},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", in, got, want)
		}
		if back, _ := ParseColor(got.Hex()); back != got {
			t.Fatalf("hex round trip of %q gave %+v", in, back)
		}
	}

	if _, err := ParseColor("red"); err == nil {
		t.Fatal("expected error for a named color")
	}
}

func TestColorBlendEndpoints(t *testing.T) {
	a := Color{R: 255, A: 255}
	b := Color{B: 255, A: 0}
	if got := a.Blend(b, 0); got != a {
		t.Fatalf("blend at 0 = %+v, want %+v", got, a)
	}
	if got := a.Blend(b, 1); got != b {
		t.Fatalf("blend at 1 = %+v, want %+v", got, b)
	}
	if got := a.Blend(b, 0.5); got.A != 128 {
		t.Fatalf("expected averaged alpha 128, got %d", got.A)
	}
}

func TestHSVAndHueShift(t *testing.T) {
	if got := HSV(0, 1, 1); got != (Color{R: 255, A: 255}) {
		t.Fatalf("HSV red = %+v", got)
	}
	if got := HSV(-240, 1, 1); got != (Color{G: 255, A: 255}) {
		t.Fatalf("HSV wrapped green = %+v", got)
	}
	shifted := Color{R: 255, A: 40}.HueShift(240)
	if shifted != (Color{B: 255, A: 40}) {
		t.Fatalf("hue shift to blue = %+v", shifted)
	}
}

func TestColorWithAlpha(t *testing.T) {
	if got := White.WithAlpha(0.5).A; got != 128 {
		t.Fatalf("expected alpha 128, got %d", got)
	}
	if got := White.WithAlpha(2).A; got != 255 {
		t.Fatalf("expected alpha clamped to 255, got %d", got)
	}
}
