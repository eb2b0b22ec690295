package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

func agentID(i int) string {
	return fmt.Sprintf("agent_%d", i+1)
}

func newAgents(spec AgentSpec, behavior BehaviorSource, position func(i int) geometry.Vector2D) ([]*entity.Agent, error) {
	agents := make([]*entity.Agent, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		id := agentID(i)
		b, err := behavior(id)
		if err != nil {
			return nil, fmt.Errorf("behaviour of %s: %w", id, err)
		}
		agents = append(agents, entity.NewAgent(entity.AgentParams{
			ID:                 id,
			Position:           position(i),
			Size:               spec.Size,
			AccelerationLimit:  spec.AccelerationLimit,
			PerceptionDistance: spec.PerceptionDistance,
			SwarmDistance:      spec.SwarmDistance,
		}, b))
	}
	return agents, nil
}

// BasicAgents scatters the swarm uniformly over the safe area, standing still.
func BasicAgents(rng *rand.Rand, m entity.MapStructure, spec AgentSpec, behavior BehaviorSource) ([]*entity.Agent, error) {
	minX, maxX := m.DangerAreaWidth, m.DangerAreaWidth+m.SafeAreaWidth
	return newAgents(spec, behavior, func(int) geometry.Vector2D {
		return geometry.Vector2D{X: uniform(rng, minX, maxX), Y: uniform(rng, 0, m.Height)}
	})
}

// LineAgents lines the swarm up, evenly spaced, along the middle of the safe area.
func LineAgents(_ *rand.Rand, m entity.MapStructure, spec AgentSpec, behavior BehaviorSource) ([]*entity.Agent, error) {
	x := m.DangerAreaWidth + m.SafeAreaWidth/2
	step := m.Height / float64(spec.Count+1)
	return newAgents(spec, behavior, func(i int) geometry.Vector2D {
		return geometry.Vector2D{X: x, Y: float64(i+1) * step}
	})
}

// BasicObstacles scatters obstacles over the last three quarters of the danger area.
func BasicObstacles(rng *rand.Rand, m entity.MapStructure, spec ObstacleSpec) []entity.Obstacle {
	minX, maxX := m.DangerAreaWidth/4, m.DangerAreaWidth
	obstacles := make([]entity.Obstacle, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		obstacles = append(obstacles, entity.Obstacle{
			Position: geometry.Vector2D{X: uniform(rng, minX, maxX), Y: uniform(rng, 0, m.Height)},
			Size:     uniform(rng, spec.MinSize, spec.MaxSize),
		})
	}
	return obstacles
}

// NoObstacles leaves the map empty.
func NoObstacles(*rand.Rand, entity.MapStructure, ObstacleSpec) []entity.Obstacle {
	return nil
}

// FixedTarget uses the configured position.
func FixedTarget(_ entity.MapStructure, spec TargetSpec) entity.TargetArea {
	return entity.TargetArea{Position: spec.Position, Size: spec.Size}
}

// LeftEdgeTarget centres the target on the left border of the danger area.
func LeftEdgeTarget(m entity.MapStructure, spec TargetSpec) entity.TargetArea {
	return entity.TargetArea{Position: geometry.Vector2D{X: 0, Y: m.Height / 2}, Size: spec.Size}
}
