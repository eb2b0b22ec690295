package entity

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// Obstacle is a fixed circle. Touching it is fatal for an agent.
type Obstacle struct {
	Position geometry.Vector2D `json:"position" msgpack:"position"`
	Size     float64           `json:"size" msgpack:"size"`
}

// CollidesWith reports whether b overlaps the obstacle. Tangency is not a collision.
func (o Obstacle) CollidesWith(b Body) bool {
	return o.Position.DistanceTo(b.Center()) < o.Size+b.Radius()
}

func (o Obstacle) Center() geometry.Vector2D { return o.Position }
func (o Obstacle) Radius() float64           { return o.Size }

// Validate checks the obstacle can be placed in the world.
func (o Obstacle) Validate(index int) error {
	if !o.Position.IsFinite() {
		return &ContractViolationError{Kind: "obstacle", Index: index, Reason: "non finite position"}
	}
	if !validSize(o.Size) {
		return &ContractViolationError{Kind: "obstacle", Index: index, Reason: fmt.Sprintf("invalid size %g", o.Size)}
	}
	return nil
}

// TargetArea is the circle the swarm tries to reach.
type TargetArea struct {
	Position geometry.Vector2D `json:"position" msgpack:"position"`
	Size     float64           `json:"size" msgpack:"size"`
}

// Contains reports whether b fits entirely inside the area.
// When b is larger than the area the bound is negative and nothing is ever contained.
func (t TargetArea) Contains(b Body) bool {
	return t.Position.DistanceTo(b.Center()) <= t.Size-b.Radius()
}

func (t TargetArea) Center() geometry.Vector2D { return t.Position }
func (t TargetArea) Radius() float64           { return t.Size }

// Validate checks the target area can be placed in the world.
func (t TargetArea) Validate() error {
	if !t.Position.IsFinite() {
		return &ContractViolationError{Kind: "target area", Reason: "non finite position"}
	}
	if !validSize(t.Size) {
		return &ContractViolationError{Kind: "target area", Reason: fmt.Sprintf("invalid size %g", t.Size)}
	}
	return nil
}

// MapStructure describes the world layout, left to right:
// the danger area [0, DangerAreaWidth) then the safe area where the swarm starts.
// The environment pipeline never reads it, generators do.
type MapStructure struct {
	Width           float64 `json:"width" msgpack:"width"`
	Height          float64 `json:"height" msgpack:"height"`
	DangerAreaWidth float64 `json:"danger_area_width" msgpack:"danger_area_width"`
	SafeAreaWidth   float64 `json:"safe_area_width" msgpack:"safe_area_width"`
}
