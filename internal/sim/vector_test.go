package sim

import (
	"math/rand"
	"testing"
)

func TestLimitNeverExceedsMax(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200000; i++ {
		v := V(rng.Float64()*20-10, rng.Float64()*20-10)
		limit := 0.1 + rng.Float64()*4
		if got := v.Limit(limit).Mag(); got > limit {
			t.Fatalf("Limit(%v) of %+v has length %v", limit, v, got)
		}
	}
}

func TestLimitKeepsShortVectors(t *testing.T) {
	v := V(0.3, 0.4)
	if got := v.Limit(0.5); got != v {
		t.Fatalf("expected %+v unchanged, got %+v", v, got)
	}
	if got := V(3, 4).Limit(0); got.Mag() != 0 {
		t.Fatalf("expected zero vector, got %+v", got)
	}
}

func TestLimitKeepsDirection(t *testing.T) {
	got := V(30, 40).Limit(5)
	if cross := got.X*4 - got.Y*3; cross > 1e-12 || cross < -1e-12 {
		t.Fatalf("direction changed: %+v", got)
	}
	if got.Mag() > 5 || got.Mag() < 5-1e-12 {
		t.Fatalf("expected length just under 5, got %v", got.Mag())
	}
}
