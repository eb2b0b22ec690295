package entity

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// Behavior is the strategy plugged into an agent.
// Both hooks must only read their arguments: self is the agent's own state, p its perception.
// Strategies differ in what they propose, never in how it is integrated.
type Behavior interface {
	// ComputeVelocity returns the velocity the agent wants right now.
	// Returning self.Vel keeps the current velocity.
	ComputeVelocity(self AgentState, tick int, dt float64, p *Perception) geometry.Vector2D
	// ComputeAcceleration returns the acceleration integrated over dt after the velocity update.
	ComputeAcceleration(self AgentState, tick int, dt float64, p *Perception) geometry.Vector2D
}

// Passive keeps the current velocity and never accelerates.
type Passive struct{}

func (Passive) ComputeVelocity(self AgentState, _ int, _ float64, _ *Perception) geometry.Vector2D {
	return self.Vel
}

func (Passive) ComputeAcceleration(AgentState, int, float64, *Perception) geometry.Vector2D {
	return geometry.Zero
}

// AgentParams holds the physical parameters of a new agent.
type AgentParams struct {
	ID                 string
	Position           geometry.Vector2D
	Velocity           geometry.Vector2D
	Size               float64
	AccelerationLimit  float64
	PerceptionDistance float64
	SwarmDistance      float64
}

// Agent is a swarm member. It is owned by the environment and mutated only by Process.
type Agent struct {
	id                 string
	pos                geometry.Vector2D
	vel                geometry.Vector2D
	acc                geometry.Vector2D
	size               float64
	accLimit           float64
	perceptionDistance float64
	swarmDistance      float64
	behavior           Behavior
}

// NewAgent creates an agent driven by b. A nil behaviour means Passive.
func NewAgent(p AgentParams, b Behavior) *Agent {
	if b == nil {
		b = Passive{}
	}
	return &Agent{
		id:                 p.ID,
		pos:                p.Position,
		vel:                p.Velocity,
		size:               p.Size,
		accLimit:           p.AccelerationLimit,
		perceptionDistance: p.PerceptionDistance,
		swarmDistance:      p.SwarmDistance,
		behavior:           b,
	}
}

// Validate checks the generated agent is physically meaningful.
func (a *Agent) Validate(index int) error {
	switch {
	case a.id == "":
		return &ContractViolationError{Kind: "agent", Index: index, Reason: "empty id"}
	case !a.pos.IsFinite() || !a.vel.IsFinite():
		return &ContractViolationError{Kind: "agent", Index: index, Reason: "non finite position or velocity"}
	case !validSize(a.size):
		return &ContractViolationError{Kind: "agent", Index: index, Reason: fmt.Sprintf("invalid size %g", a.size)}
	case !(a.accLimit >= 0):
		return &ContractViolationError{Kind: "agent", Index: index, Reason: fmt.Sprintf("invalid acceleration limit %g", a.accLimit)}
	case !(a.perceptionDistance >= 0):
		return &ContractViolationError{Kind: "agent", Index: index, Reason: fmt.Sprintf("invalid perception distance %g", a.perceptionDistance)}
	}
	return nil
}

// Process runs one tick: velocity hook, bounded velocity update, acceleration hook,
// then velocity and position integration over dt.
// A velocity change above the acceleration limit, from either hook, aborts with an
// *AccelerationLimitError and leaves the agent as it was.
func (a *Agent) Process(tick int, dt float64, p *Perception) error {
	before := a.vel

	desired := a.behavior.ComputeVelocity(a.State(), tick, dt, p)
	if err := a.ApplyVelocity(desired); err != nil {
		return err
	}

	acc := a.behavior.ComputeAcceleration(a.State(), tick, dt, p)
	next := a.vel.Add(acc.Mul(dt))
	if change := next.Sub(before).Len(); !(change <= a.accLimit+geometry.Epsilon) {
		a.vel = before
		return &AccelerationLimitError{AgentID: a.id, Limit: a.accLimit, Requested: change}
	}

	a.acc = acc
	a.vel = next
	a.pos = a.pos.Add(a.vel.Mul(dt))
	return nil
}

// ApplyVelocity sets the velocity if ‖target − velocity‖ stays within the acceleration limit.
// It never clamps: larger changes have to be spread over several ticks by the strategy.
func (a *Agent) ApplyVelocity(target geometry.Vector2D) error {
	diff := a.vel.Sub(target).Len()
	// written so that a NaN difference is rejected too
	if !(diff <= a.accLimit) {
		return &AccelerationLimitError{AgentID: a.id, Limit: a.accLimit, Requested: diff}
	}
	a.vel = target
	return nil
}

func (a *Agent) ID() string                      { return a.id }
func (a *Agent) Position() geometry.Vector2D     { return a.pos }
func (a *Agent) Velocity() geometry.Vector2D     { return a.vel }
func (a *Agent) Acceleration() geometry.Vector2D { return a.acc }
func (a *Agent) Size() float64                   { return a.size }
func (a *Agent) AccelerationLimit() float64      { return a.accLimit }
func (a *Agent) PerceptionDistance() float64     { return a.perceptionDistance }
func (a *Agent) SwarmDistance() float64          { return a.swarmDistance }
func (a *Agent) Center() geometry.Vector2D       { return a.pos }
func (a *Agent) Radius() float64                 { return a.size }

// State returns a copy of the agent's current state.
func (a *Agent) State() AgentState {
	return AgentState{
		ID:                 a.id,
		Pos:                a.pos,
		Vel:                a.vel,
		Acc:                a.acc,
		Size:               a.size,
		AccelerationLimit:  a.accLimit,
		PerceptionDistance: a.perceptionDistance,
		SwarmDistance:      a.swarmDistance,
	}
}

// Summary returns the reporting view of the agent.
func (a *Agent) Summary() AgentSummary {
	return AgentSummary{
		ID:                 a.id,
		Position:           a.pos,
		Velocity:           a.vel,
		Size:               a.size,
		AccelerationLimit:  a.accLimit,
		PerceptionDistance: a.perceptionDistance,
		SwarmDistance:      a.swarmDistance,
	}
}

func (a *Agent) String() string {
	return fmt.Sprintf("Agent(%s pos: %s vel: %s size: %g acc limit: %g)", a.id, a.pos, a.vel, a.size, a.accLimit)
}
