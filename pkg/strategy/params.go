package strategy

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// Params are the numeric knobs of a strategy, as found in the configuration file.
type Params map[string]float64

// Get returns the value of key or def when it is not set.
func (p Params) Get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// positive returns the value of key, failing when it is not strictly positive.
func (p Params) positive(key string, def float64) (float64, error) {
	v := p.Get(key, def)
	if !(v > 0) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parameter %q must be a positive number, got %g", key, v)
	}
	return v, nil
}

// limitMargin keeps bounded velocity changes strictly under the limit despite rounding.
const limitMargin = 1 - 1e-9

// steer moves the velocity of self towards desired, as far as the acceleration limit allows in one tick.
func steer(self entity.AgentState, desired geometry.Vector2D) geometry.Vector2D {
	change := desired.Sub(self.Vel).ClampLen(self.AccelerationLimit * limitMargin)
	return self.Vel.Add(change)
}

// clampSpeed keeps the norm of v between min and max. A zero vector stays zero.
func clampSpeed(v geometry.Vector2D, min, max float64) geometry.Vector2D {
	speed := v.Len()
	if speed < geometry.Epsilon {
		return v
	}
	if speed > max {
		return v.Mul(max / speed)
	}
	if speed < min {
		return v.Mul(min / speed)
	}
	return v
}
