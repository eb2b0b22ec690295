package strategy

import (
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// SteerAway seeks the target while being pushed away from the obstacles and
// projectiles it perceives. The push grows as the gap between the bodies shrinks.
type SteerAway struct {
	MaxSpeed       float64
	ObstacleWeight float64
	DangerWeight   float64
	Margin         float64 // gap under which repulsion starts
}

// NewSteerAway builds a SteerAway behaviour. Params: max_speed, obstacle_weight, danger_weight, margin.
func NewSteerAway(_ string, params Params) (entity.Behavior, error) {
	maxSpeed, err := params.positive("max_speed", 5)
	if err != nil {
		return nil, err
	}
	margin, err := params.positive("margin", 10)
	if err != nil {
		return nil, err
	}
	return &SteerAway{
		MaxSpeed:       maxSpeed,
		ObstacleWeight: params.Get("obstacle_weight", 1),
		DangerWeight:   params.Get("danger_weight", 2),
		Margin:         margin,
	}, nil
}

func (s *SteerAway) ComputeVelocity(self entity.AgentState, _ int, _ float64, p *entity.Perception) geometry.Vector2D {
	desired := seekVelocity(self, p.Target(), s.MaxSpeed)

	var push geometry.Vector2D
	for o := range p.Obstacles() {
		if self.Pos.DistanceTo(o.Position) > self.PerceptionDistance+o.Size {
			continue
		}
		push = push.Add(s.repulsion(self, o).Mul(s.ObstacleWeight))
	}
	for pr := range p.Projectiles() {
		push = push.Add(s.repulsion(self, pr).Mul(s.DangerWeight))
	}

	desired = desired.Add(push.Mul(s.MaxSpeed)).ClampLen(s.MaxSpeed)
	return steer(self, desired)
}

func (s *SteerAway) ComputeAcceleration(entity.AgentState, int, float64, *entity.Perception) geometry.Vector2D {
	return geometry.Zero
}

// repulsion points from b to self, with a strength in [0, 1] rising as the gap closes.
func (s *SteerAway) repulsion(self entity.AgentState, b entity.Body) geometry.Vector2D {
	away := self.Pos.Sub(b.Center())
	gap := away.Len() - b.Radius() - self.Size
	if gap >= s.Margin {
		return geometry.Zero
	}
	strength := 1.0
	if gap > 0 {
		strength = (s.Margin - gap) / s.Margin
	}
	return away.Normalize().Mul(strength)
}
