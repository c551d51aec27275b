package sim

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func TestAgentStepClampsSpeed(t *testing.T) {
	agent, err := NewAgent(V(0, 0), V(0, 0), 2, 0.05)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20000; i++ {
		// Far larger than MaxForce, and applied several times per tick.
		for j := 0; j < 3; j++ {
			agent.ApplyForce(V(rng.Float64()*100-50, rng.Float64()*100-50))
		}
		agent.Step()
		if speed := agent.Velocity.Mag(); speed > agent.MaxSpeed {
			t.Fatalf("tick %d: speed %v exceeds max %v", i, speed, agent.MaxSpeed)
		}
		if agent.Acceleration != (Vector2{}) {
			t.Fatalf("tick %d: acceleration not cleared: %+v", i, agent.Acceleration)
		}
	}
}

func TestAgentStepMovesByVelocity(t *testing.T) {
	agent, err := NewAgent(V(10, 10), V(1, 0), 2, 0.05)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	agent.ApplyForce(V(0, 0.5))
	agent.Step()

	if agent.Position != V(11, 10.5) {
		t.Fatalf("expected position (11, 10.5), got %+v", agent.Position)
	}
}

func TestSeekAtOwnPositionIsZero(t *testing.T) {
	agent, err := NewAgent(V(3, 4), V(1, 1), 2, 0.05)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	force := agent.Seek(V(3, 4))
	if force != (Vector2{}) {
		t.Fatalf("expected zero force, got %+v", force)
	}
	if !agent.Flee(V(3, 4)).IsFinite() {
		t.Fatal("flee at own position produced a non-finite force")
	}
}

func TestSeekLimitsSteeringForce(t *testing.T) {
	agent, err := NewAgent(V(0, 0), V(0, 0), 2, 0.05)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	force := agent.Seek(V(10, 0))
	if math.Abs(force.X-0.05) > eps || math.Abs(force.Y) > eps {
		t.Fatalf("expected (0.05, 0), got %+v", force)
	}

	flee := agent.Flee(V(10, 0))
	if flee != force.Scale(-1) {
		t.Fatalf("expected flee to mirror seek, got %+v", flee)
	}
}

func TestSeekDoesNotMutate(t *testing.T) {
	agent, err := NewAgent(V(0, 0), V(1, 0), 2, 0.05)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	before := *agent
	agent.Seek(V(0, 50))
	if *agent != before {
		t.Fatalf("seek mutated the agent: %+v -> %+v", before, *agent)
	}
}

func TestNewAgentRejectsNonPositiveLimits(t *testing.T) {
	cases := []struct {
		name          string
		speed, force  float64
		expectedField string
	}{
		{"zero speed", 0, 1, "max_speed"},
		{"negative force", 1, -1, "max_force"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAgent(V(0, 0), V(0, 0), tc.speed, tc.force)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tc.expectedField {
				t.Fatalf("expected field %q, got %v", tc.expectedField, err)
			}
		})
	}
}
