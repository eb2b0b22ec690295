package strategy

import (
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// Boids is Craig Reynolds' flocking model (separation, alignment, cohesion)
// with an extra pull towards the target area.
// Neighbours are the snapshot agents within the agent's swarm distance.
// https://en.wikipedia.org/wiki/Boids
type Boids struct {
	ProtectedRange  float64 // Personal space radius
	AvoidFactor     float64 // Separation strength
	MatchingFactor  float64 // Alignment strength
	CenteringFactor float64 // Cohesion strength
	TargetFactor    float64 // Pull towards the target centre
	MaxSpeed        float64
	MinSpeed        float64
}

// NewBoids builds a Boids behaviour.
// Params: protected_range, avoid_factor, matching_factor, centering_factor, target_factor, max_speed, min_speed.
func NewBoids(_ string, params Params) (entity.Behavior, error) {
	maxSpeed, err := params.positive("max_speed", 4)
	if err != nil {
		return nil, err
	}
	return &Boids{
		ProtectedRange:  params.Get("protected_range", 20),
		AvoidFactor:     params.Get("avoid_factor", 0.05),
		MatchingFactor:  params.Get("matching_factor", 0.05),
		CenteringFactor: params.Get("centering_factor", 0.0005),
		TargetFactor:    params.Get("target_factor", 0.05),
		MaxSpeed:        maxSpeed,
		MinSpeed:        params.Get("min_speed", 0),
	}, nil
}

func (b *Boids) ComputeVelocity(self entity.AgentState, _ int, _ float64, p *entity.Perception) geometry.Vector2D {
	desired := b.flock(self, p.Swarm())
	desired = desired.Add(seekVelocity(self, p.Target(), b.MaxSpeed).Mul(b.TargetFactor))
	return steer(self, clampSpeed(desired, b.MinSpeed, b.MaxSpeed))
}

func (b *Boids) ComputeAcceleration(entity.AgentState, int, float64, *entity.Perception) geometry.Vector2D {
	return geometry.Zero
}

// flock applies the three boids rules to the current velocity.
func (b *Boids) flock(self entity.AgentState, swarm *entity.Swarm) geometry.Vector2D {
	vel := self.Vel

	var closeD, velAvg, posAvg geometry.Vector2D
	neighbors := 0.0
	protectedSq := b.ProtectedRange * b.ProtectedRange
	visualSq := self.SwarmDistance * self.SwarmDistance

	for other := range swarm.All() {
		if other.ID == self.ID {
			continue
		}
		d := self.Pos.Sub(other.Pos)
		distSq := d.LenSqr()

		// 1. Separation
		if distSq < protectedSq {
			closeD = closeD.Add(d)
		}

		// visual range for cohesion and alignment
		if distSq < visualSq {
			velAvg = velAvg.Add(other.Vel)
			posAvg = posAvg.Add(other.Pos)
			neighbors++
		}
	}

	vel = vel.Add(closeD.Mul(b.AvoidFactor))

	if neighbors > 0 {
		velAvg = velAvg.Mul(1 / neighbors)
		posAvg = posAvg.Mul(1 / neighbors)
		vel = vel.Add(velAvg.Sub(vel).Mul(b.MatchingFactor))
		vel = vel.Add(posAvg.Sub(self.Pos).Mul(b.CenteringFactor))
	}
	return vel
}
