package entity

import (
	"math"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// Body is anything with a circular footprint in the world.
type Body interface {
	Center() geometry.Vector2D
	Radius() float64
}

func validSize(size float64) bool {
	return size > 0 && !math.IsInf(size, 0) && !math.IsNaN(size)
}
