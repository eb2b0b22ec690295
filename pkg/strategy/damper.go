package strategy

import (
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// Damper drives the agent through its acceleration only: a damped spring pulling the
// velocity towards the cruise velocity aimed at the target.
type Damper struct {
	CruiseSpeed float64
	Gain        float64 // fraction of the velocity error corrected per unit of time
}

// NewDamper builds a Damper behaviour. Params: cruise_speed, gain.
func NewDamper(_ string, params Params) (entity.Behavior, error) {
	cruise, err := params.positive("cruise_speed", 3)
	if err != nil {
		return nil, err
	}
	gain, err := params.positive("gain", 0.5)
	if err != nil {
		return nil, err
	}
	return &Damper{CruiseSpeed: cruise, Gain: gain}, nil
}

func (d *Damper) ComputeVelocity(self entity.AgentState, _ int, _ float64, _ *entity.Perception) geometry.Vector2D {
	return self.Vel
}

func (d *Damper) ComputeAcceleration(self entity.AgentState, _ int, dt float64, p *entity.Perception) geometry.Vector2D {
	if dt <= 0 {
		return geometry.Zero
	}
	errVel := seekVelocity(self, p.Target(), d.CruiseSpeed).Sub(self.Vel)
	acc := errVel.Mul(d.Gain)
	// acc*dt is the velocity change of the tick, it has to stay under the limit
	return acc.ClampLen(self.AccelerationLimit * limitMargin / dt)
}
