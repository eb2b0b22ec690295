// Package generator places the initial swarm, obstacles and target area, and spawns
// projectiles during a run. Generators are looked up by name when a configuration is built.
package generator

import (
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// ErrUnknownGenerator is returned when a name is not registered.
var ErrUnknownGenerator = errors.New("unknown generator")

// AgentSpec describes the swarm to generate.
type AgentSpec struct {
	Count              int
	Size               float64
	AccelerationLimit  float64
	PerceptionDistance float64
	SwarmDistance      float64
}

// BehaviorSource returns the behaviour of the agent with the given id.
type BehaviorSource func(agentID string) (entity.Behavior, error)

// AgentGenerator creates the initial swarm.
type AgentGenerator func(rng *rand.Rand, m entity.MapStructure, spec AgentSpec, behavior BehaviorSource) ([]*entity.Agent, error)

// ObstacleSpec describes the obstacles to generate.
type ObstacleSpec struct {
	Count   int
	MinSize float64
	MaxSize float64
}

// ObstacleGenerator creates the static obstacles.
type ObstacleGenerator func(rng *rand.Rand, m entity.MapStructure, spec ObstacleSpec) []entity.Obstacle

// TargetSpec describes the target area. Position is only used by the fixed generator.
type TargetSpec struct {
	Position geometry.Vector2D
	Size     float64
}

// TargetGenerator places the target area.
type TargetGenerator func(m entity.MapStructure, spec TargetSpec) entity.TargetArea

// ProjectileSpec describes the projectile waves.
type ProjectileSpec struct {
	Count         int
	Size          float64
	Speed         float64
	LifetimeTicks int
	Period        int
}

// ProjectileGeneratorFactory returns the per-tick projectile generator of one run.
// The behaviour is shared by every projectile it spawns.
type ProjectileGeneratorFactory func(rng *rand.Rand, m entity.MapStructure, spec ProjectileSpec, behavior entity.ProjectileBehavior) entity.ProjectileGenerator

// Registry maps generator names to implementations.
type Registry struct {
	agents      map[string]AgentGenerator
	obstacles   map[string]ObstacleGenerator
	targets     map[string]TargetGenerator
	projectiles map[string]ProjectileGeneratorFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		agents:      make(map[string]AgentGenerator),
		obstacles:   make(map[string]ObstacleGenerator),
		targets:     make(map[string]TargetGenerator),
		projectiles: make(map[string]ProjectileGeneratorFactory),
	}
}

// DefaultRegistry returns a registry holding every built-in generator.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.agents["basic"] = BasicAgents
	r.agents["line"] = LineAgents
	r.obstacles["basic"] = BasicObstacles
	r.obstacles["none"] = NoObstacles
	r.targets["fixed"] = FixedTarget
	r.targets["left_edge"] = LeftEdgeTarget
	r.projectiles["none"] = NoProjectiles
	r.projectiles["random"] = RandomProjectiles
	r.projectiles["barrage"] = BarrageProjectiles
	return r
}

func (r *Registry) RegisterAgents(name string, g AgentGenerator)       { r.agents[name] = g }
func (r *Registry) RegisterObstacles(name string, g ObstacleGenerator) { r.obstacles[name] = g }
func (r *Registry) RegisterTarget(name string, g TargetGenerator)      { r.targets[name] = g }
func (r *Registry) RegisterProjectiles(name string, g ProjectileGeneratorFactory) {
	r.projectiles[name] = g
}

func (r *Registry) Agents(name string) (AgentGenerator, error) {
	return lookup(r.agents, "agent", name)
}

func (r *Registry) Obstacles(name string) (ObstacleGenerator, error) {
	return lookup(r.obstacles, "obstacle", name)
}

func (r *Registry) Target(name string) (TargetGenerator, error) {
	return lookup(r.targets, "target", name)
}

func (r *Registry) Projectiles(name string) (ProjectileGeneratorFactory, error) {
	return lookup(r.projectiles, "projectile", name)
}

func lookup[V any](m map[string]V, kind, name string) (V, error) {
	v, ok := m[name]
	if !ok {
		return v, fmt.Errorf("%w: %s generator %q (known: %v)", ErrUnknownGenerator, kind, name, slices.Sorted(maps.Keys(m)))
	}
	return v, nil
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
