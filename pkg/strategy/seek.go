package strategy

import (
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// Seek heads straight for the centre of the target area at a cruise speed.
type Seek struct {
	MaxSpeed float64
}

// NewSeek builds a Seek behaviour. Params: max_speed.
func NewSeek(_ string, params Params) (entity.Behavior, error) {
	maxSpeed, err := params.positive("max_speed", 5)
	if err != nil {
		return nil, err
	}
	return &Seek{MaxSpeed: maxSpeed}, nil
}

func (s *Seek) ComputeVelocity(self entity.AgentState, _ int, _ float64, p *entity.Perception) geometry.Vector2D {
	return steer(self, seekVelocity(self, p.Target(), s.MaxSpeed))
}

func (s *Seek) ComputeAcceleration(entity.AgentState, int, float64, *entity.Perception) geometry.Vector2D {
	return geometry.Zero
}

// seekVelocity is the cruise velocity towards the target centre, slowing down inside the area.
func seekVelocity(self entity.AgentState, target entity.TargetArea, maxSpeed float64) geometry.Vector2D {
	toTarget := target.Position.Sub(self.Pos)
	dist := toTarget.Len()
	speed := maxSpeed
	if dist < target.Size && target.Size > 0 {
		speed = maxSpeed * dist / target.Size
	}
	return toTarget.Normalize().Mul(speed)
}
