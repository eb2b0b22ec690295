package simulation

import (
	"fmt"
	"slices"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	golog "github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"
)

// Environment owns the world of one run and advances it tick by tick.
// It is not safe for concurrent use; only the movement phase fans out internally.
type Environment struct {
	agents       []*entity.Agent
	projectiles  []*entity.Projectile
	obstacles    []entity.Obstacle
	target       entity.TargetArea
	mapStructure entity.MapStructure
	generate     entity.ProjectileGenerator

	deltaTime float64
	maxTicks  int

	initialAgents  int
	lastTick       int
	reached        int
	firstReachTick int
	lastReachTick  int
	finished       bool

	parallelism int
	logger      golog.Logger
}

// Option configures an Environment.
type Option func(*Environment)

// WithLogger sets the logger used for debug traces of the run.
func WithLogger(l golog.Logger) Option {
	return func(e *Environment) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithParallelism processes agents and projectiles on up to n goroutines.
// The outcome is the same as with the sequential default.
func WithParallelism(n int) Option {
	return func(e *Environment) {
		e.parallelism = max(n, 1)
	}
}

// NewEnvironment validates the initial world and places the pre-placed projectiles (gen(-1)).
func NewEnvironment(
	agents []*entity.Agent,
	gen entity.ProjectileGenerator,
	obstacles []entity.Obstacle,
	target entity.TargetArea,
	mapStructure entity.MapStructure,
	deltaTime float64,
	maxTicks int,
	opts ...Option,
) (*Environment, error) {
	if gen == nil {
		gen = entity.NoProjectiles
	}
	e := &Environment{
		agents:         slices.Clone(agents),
		obstacles:      slices.Clone(obstacles),
		target:         target,
		mapStructure:   mapStructure,
		generate:       gen,
		deltaTime:      deltaTime,
		maxTicks:       maxTicks,
		initialAgents:  len(agents),
		lastTick:       -1,
		firstReachTick: -1,
		lastReachTick:  -1,
		parallelism:    1,
		logger:         golog.DiscardLogger,
	}
	for _, opt := range opts {
		opt(e)
	}

	ids := make(map[string]struct{}, len(e.agents))
	for i, a := range e.agents {
		if err := a.Validate(i); err != nil {
			return nil, err
		}
		if _, dup := ids[a.ID()]; dup {
			return nil, &entity.ContractViolationError{Kind: "agent", Index: i, Reason: fmt.Sprintf("duplicate id %s", a.ID())}
		}
		ids[a.ID()] = struct{}{}
	}
	for i, o := range e.obstacles {
		if err := o.Validate(i); err != nil {
			return nil, err
		}
	}
	if err := e.target.Validate(); err != nil {
		return nil, err
	}
	if err := e.spawn(-1); err != nil {
		return nil, err
	}
	return e, nil
}

// Process advances the world by one tick.
func (e *Environment) Process(tick int) error {
	if e.finished {
		return ErrSimulationFinished
	}
	e.lastTick = tick
	if err := e.spawn(tick); err != nil {
		return fmt.Errorf("tick %d: %w", tick, err)
	}
	if err := e.move(tick); err != nil {
		return fmt.Errorf("tick %d: %w", tick, err)
	}
	e.pruneProjectiles()
	e.removeCollided(tick)
	e.captureAgents(tick)
	if e.lastTick+1 >= e.maxTicks || len(e.agents) == 0 {
		e.finished = true
	}
	return nil
}

func (e *Environment) spawn(tick int) error {
	spawned := e.generate(tick)
	for i, p := range spawned {
		if err := p.Validate(i); err != nil {
			return err
		}
	}
	if len(spawned) > 0 {
		e.logger.Debugf("tick %d: %d projectiles spawned", tick, len(spawned))
		e.projectiles = append(e.projectiles, spawned...)
	}
	return nil
}

// move runs every agent, then every projectile, against one snapshot taken before anything moves.
func (e *Environment) move(tick int) error {
	states := make([]entity.AgentState, len(e.agents))
	for i, a := range e.agents {
		states[i] = a.State()
	}
	swarm := entity.NewSwarm(states)
	projectiles := make([]entity.ProjectileState, len(e.projectiles))
	for i, p := range e.projectiles {
		projectiles[i] = p.State()
	}

	err := e.each(len(e.agents), func(i int) error {
		a := e.agents[i]
		return a.Process(tick, e.deltaTime, e.perceive(a, swarm, projectiles))
	})
	if err != nil {
		return err
	}
	return e.each(len(e.projectiles), func(i int) error {
		e.projectiles[i].Process(tick, e.deltaTime, swarm)
		return nil
	})
}

// each calls fn for 0..n-1, on the errgroup when parallelism allows it.
func (e *Environment) each(n int, fn func(i int) error) error {
	if e.parallelism <= 1 || n < 2 {
		for i := range n {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i := range n {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

func (e *Environment) perceive(a *entity.Agent, swarm *entity.Swarm, projectiles []entity.ProjectileState) *entity.Perception {
	visible := make([]entity.ProjectileState, 0, len(projectiles))
	for _, p := range projectiles {
		if a.Position().DistanceTo(p.Pos) <= a.PerceptionDistance() {
			visible = append(visible, p)
		}
	}
	return entity.NewPerception(e.obstacles, swarm, e.target, visible)
}

func (e *Environment) pruneProjectiles() {
	e.projectiles = slices.DeleteFunc(e.projectiles, func(p *entity.Projectile) bool {
		return !p.IsActive()
	})
}

func (e *Environment) removeCollided(tick int) {
	e.agents = slices.DeleteFunc(e.agents, func(a *entity.Agent) bool {
		for _, o := range e.obstacles {
			if o.CollidesWith(a) {
				e.logger.Debugf("tick %d: %s hit an obstacle at %v", tick, a.ID(), o.Position)
				return true
			}
		}
		for _, p := range e.projectiles {
			if p.CollidesWith(a) {
				e.logger.Debugf("tick %d: %s hit by a projectile at %v", tick, a.ID(), p.Position())
				return true
			}
		}
		return false
	})
}

func (e *Environment) captureAgents(tick int) {
	e.agents = slices.DeleteFunc(e.agents, func(a *entity.Agent) bool {
		if !e.target.Contains(a) {
			return false
		}
		e.reached++
		if e.firstReachTick < 0 {
			e.firstReachTick = tick
		}
		e.lastReachTick = tick
		e.logger.Debugf("tick %d: %s reached the target", tick, a.ID())
		return true
	})
}

func (e *Environment) Finished() bool              { return e.finished }
func (e *Environment) LastTick() int               { return e.lastTick }
func (e *Environment) MaxTicks() int               { return e.maxTicks }
func (e *Environment) DeltaTime() float64          { return e.deltaTime }
func (e *Environment) NumAgents() int              { return len(e.agents) }
func (e *Environment) NumProjectiles() int         { return len(e.projectiles) }
func (e *Environment) InitialAgents() int          { return e.initialAgents }
func (e *Environment) NumAgentsReachedTarget() int { return e.reached }

// FirstReachTick is the tick of the first capture, -1 while nobody reached the target.
func (e *Environment) FirstReachTick() int { return e.firstReachTick }

// LastReachTick is the tick of the latest capture, -1 while nobody reached the target.
func (e *Environment) LastReachTick() int { return e.lastReachTick }

// Summary returns a detached view of the current state. It does not change the environment.
func (e *Environment) Summary() entity.EnvironmentSummary {
	agents := make([]entity.AgentSummary, len(e.agents))
	for i, a := range e.agents {
		agents[i] = a.Summary()
	}
	projectiles := make([]entity.ProjectileSummary, len(e.projectiles))
	for i, p := range e.projectiles {
		projectiles[i] = p.Summary()
	}
	return entity.EnvironmentSummary{
		Header: entity.Header{
			SimulationFinished: e.finished,
			LastTick:           e.lastTick,
			MaxTicks:           e.maxTicks,
			DeltaTime:          e.deltaTime,
		},
		Structure: entity.Structure{
			MapStructure: e.mapStructure,
			TargetArea:   e.target,
			Obstacles:    append(make([]entity.Obstacle, 0, len(e.obstacles)), e.obstacles...),
			Projectiles:  projectiles,
			SwarmAgents:  agents,
		},
	}
}
