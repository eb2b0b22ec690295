package entity

import (
	"iter"
	"slices"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// AgentState is a read-only copy of an agent taken at one instant.
// Behaviours receive it for themselves and for every member of the swarm snapshot.
type AgentState struct {
	ID                 string
	Pos                geometry.Vector2D
	Vel                geometry.Vector2D
	Acc                geometry.Vector2D
	Size               float64
	AccelerationLimit  float64
	PerceptionDistance float64
	SwarmDistance      float64
}

func (s AgentState) Center() geometry.Vector2D { return s.Pos }
func (s AgentState) Radius() float64           { return s.Size }

// ProjectileState is a read-only copy of a projectile taken at one instant.
type ProjectileState struct {
	Pos           geometry.Vector2D
	Vel           geometry.Vector2D
	Size          float64
	SpawnTick     int
	LifetimeTicks int
}

func (s ProjectileState) Center() geometry.Vector2D { return s.Pos }
func (s ProjectileState) Radius() float64           { return s.Size }

// Swarm is the snapshot of every agent taken once per tick, before anybody moves.
// It is shared by all perceptions of that tick and cannot be modified.
type Swarm struct {
	agents []AgentState
	index  map[string]int
}

// NewSwarm copies states into a new snapshot.
func NewSwarm(states []AgentState) *Swarm {
	s := &Swarm{
		agents: slices.Clone(states),
		index:  make(map[string]int, len(states)),
	}
	for i, a := range s.agents {
		s.index[a.ID] = i
	}
	return s
}

// Len is the number of agents in the snapshot.
func (s *Swarm) Len() int {
	if s == nil {
		return 0
	}
	return len(s.agents)
}

// At returns the i-th agent of the snapshot.
func (s *Swarm) At(i int) AgentState {
	return s.agents[i]
}

// Get looks an agent up by id.
func (s *Swarm) Get(id string) (AgentState, bool) {
	if s == nil {
		return AgentState{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return AgentState{}, false
	}
	return s.agents[i], true
}

// All iterates over the snapshot in collection order.
func (s *Swarm) All() iter.Seq[AgentState] {
	return func(yield func(AgentState) bool) {
		if s == nil {
			return
		}
		for _, a := range s.agents {
			if !yield(a) {
				return
			}
		}
	}
}

// Perception is what one agent sees during one tick.
// Obstacles and target are global, the swarm is the shared pre-move snapshot
// and projectiles are limited to the agent's perception distance.
type Perception struct {
	obstacles   []Obstacle
	swarm       *Swarm
	target      TargetArea
	projectiles []ProjectileState
}

// NewPerception assembles a perception. The slices must not be modified afterwards.
func NewPerception(obstacles []Obstacle, swarm *Swarm, target TargetArea, projectiles []ProjectileState) *Perception {
	return &Perception{
		obstacles:   obstacles,
		swarm:       swarm,
		target:      target,
		projectiles: projectiles,
	}
}

func (p *Perception) Obstacles() iter.Seq[Obstacle] {
	return func(yield func(Obstacle) bool) {
		for _, o := range p.obstacles {
			if !yield(o) {
				return
			}
		}
	}
}

func (p *Perception) Projectiles() iter.Seq[ProjectileState] {
	return func(yield func(ProjectileState) bool) {
		for _, pr := range p.projectiles {
			if !yield(pr) {
				return
			}
		}
	}
}

func (p *Perception) NumObstacles() int   { return len(p.obstacles) }
func (p *Perception) NumProjectiles() int { return len(p.projectiles) }
func (p *Perception) Swarm() *Swarm       { return p.swarm }
func (p *Perception) Target() TargetArea  { return p.target }
