package strategy

import (
	"math"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// Homing turns a projectile towards the closest agent of the snapshot, keeping its speed.
type Homing struct {
	TurnRate float64 // radians per unit of time
	Range    float64 // agents further away are ignored; 0 means unlimited
}

// NewHoming builds a Homing projectile behaviour. Params: turn_rate, range.
func NewHoming(params Params) (entity.ProjectileBehavior, error) {
	turn, err := params.positive("turn_rate", 0.5)
	if err != nil {
		return nil, err
	}
	return &Homing{TurnRate: turn, Range: params.Get("range", 0)}, nil
}

func (h *Homing) ComputeVelocity(self entity.ProjectileState, _ int, dt float64, swarm *entity.Swarm) geometry.Vector2D {
	closest, ok := h.closest(self, swarm)
	if !ok {
		return self.Vel
	}

	heading := self.Vel.Angle()
	wanted := closest.Pos.Sub(self.Pos).Angle()
	maxTurn := h.TurnRate * dt
	turn := math.Max(-maxTurn, math.Min(maxTurn, geometry.AngleDiff(heading, wanted)))
	return self.Vel.Rotate(turn)
}

func (h *Homing) closest(self entity.ProjectileState, swarm *entity.Swarm) (entity.AgentState, bool) {
	var closest entity.AgentState
	found := false
	minDistSq := math.MaxFloat64
	if h.Range > 0 {
		minDistSq = h.Range * h.Range
	}
	for a := range swarm.All() {
		distSq := self.Pos.DistanceSquaredTo(a.Pos)
		if distSq < minDistSq {
			minDistSq = distSq
			closest = a
			found = true
		}
	}
	return closest, found
}
