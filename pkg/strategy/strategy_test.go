package strategy

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

func TestRegistry_Resolve(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{"idle", "seek", "boids", "steer_away", "damper"} {
		if _, err := r.Agent(name); err != nil {
			t.Errorf("Agent(%q) error: %v", name, err)
		}
	}
	for _, name := range []string{"constant", "homing"} {
		if _, err := r.Projectile(name); err != nil {
			t.Errorf("Projectile(%q) error: %v", name, err)
		}
	}
	if _, err := r.Agent("teleport"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Agent(teleport) error = %v; want ErrUnknownStrategy", err)
	}
	if _, err := r.Projectile("laser"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Projectile(laser) error = %v; want ErrUnknownStrategy", err)
	}
}

func TestFactories_RejectBadParams(t *testing.T) {
	if _, err := NewSeek("a", Params{"max_speed": -1}); err == nil {
		t.Error("NewSeek accepted a negative max_speed")
	}
	if _, err := NewDamper("a", Params{"gain": 0}); err == nil {
		t.Error("NewDamper accepted a zero gain")
	}
	if _, err := NewHoming(Params{"turn_rate": math.Inf(1)}); err == nil {
		t.Error("NewHoming accepted an infinite turn rate")
	}
}

// Every built-in strategy must keep its velocity changes under the acceleration limit.
func TestStrategies_RespectAccelerationLimit(t *testing.T) {
	const (
		limit = 0.1
		dt    = 0.1
		ticks = 200
	)
	r := DefaultRegistry()
	target := entity.TargetArea{Position: geometry.Vector2D{X: 0, Y: 50}, Size: 10}
	obstacles := []entity.Obstacle{{Position: geometry.Vector2D{X: 80, Y: 50}, Size: 5}}
	projectiles := []entity.ProjectileState{{Pos: geometry.Vector2D{X: 95, Y: 48}, Size: 1}}

	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			factory, err := r.Agent(name)
			if err != nil {
				t.Fatal(err)
			}
			agents := make([]*entity.Agent, 3)
			for i := range agents {
				id := fmt.Sprintf("agent_%d", i+1)
				b, err := factory(id, nil)
				if err != nil {
					t.Fatal(err)
				}
				agents[i] = entity.NewAgent(entity.AgentParams{
					ID:                 id,
					Position:           geometry.Vector2D{X: 100, Y: 45 + float64(i)*5},
					Size:               1,
					AccelerationLimit:  limit,
					PerceptionDistance: 30,
					SwarmDistance:      20,
				}, b)
			}

			for tick := 0; tick < ticks; tick++ {
				states := make([]entity.AgentState, len(agents))
				for i, a := range agents {
					states[i] = a.State()
				}
				swarm := entity.NewSwarm(states)
				for _, a := range agents {
					before := a.Velocity()
					p := entity.NewPerception(obstacles, swarm, target, projectiles)
					if err := a.Process(tick, dt, p); err != nil {
						t.Fatalf("tick %d: %v", tick, err)
					}
					if change := a.Velocity().Sub(before).Len(); change > limit+geometry.Epsilon {
						t.Fatalf("tick %d: velocity change %g above limit %g", tick, change, limit)
					}
				}
			}
		})
	}
}

func TestSeek_MovesTowardsTarget(t *testing.T) {
	b, err := NewSeek("a", Params{"max_speed": 2})
	if err != nil {
		t.Fatal(err)
	}
	a := entity.NewAgent(entity.AgentParams{ID: "a", Position: geometry.Vector2D{X: 50, Y: 0}, Size: 1, AccelerationLimit: 0.5}, b)
	p := entity.NewPerception(nil, entity.NewSwarm(nil), entity.TargetArea{Size: 5}, nil)

	start := a.Position().Len()
	for tick := 0; tick < 20; tick++ {
		if err := a.Process(tick, 1, p); err != nil {
			t.Fatal(err)
		}
	}
	if a.Position().Len() >= start {
		t.Errorf("agent did not get closer to the target: %v", a.Position())
	}
}

func TestHoming_TurnsTowardsClosestAgent(t *testing.T) {
	h := &Homing{TurnRate: 0.5}
	self := entity.ProjectileState{Vel: geometry.Vector2D{X: 1, Y: 0}, Size: 1}
	swarm := entity.NewSwarm([]entity.AgentState{
		{ID: "near", Pos: geometry.Vector2D{X: 0, Y: 10}},
		{ID: "far", Pos: geometry.Vector2D{X: 0, Y: -100}},
	})

	v := h.ComputeVelocity(self, 0, 1, swarm)

	want := geometry.NewVectorPolar(1, 0.5)
	if !v.Eq(want) {
		t.Errorf("velocity = %v; want %v", v, want)
	}

	if got := h.ComputeVelocity(self, 0, 1, entity.NewSwarm(nil)); !got.Eq(self.Vel) {
		t.Errorf("velocity without agents = %v; want unchanged %v", got, self.Vel)
	}
}
