package entity

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// ProjectileBehavior steers a projectile. The swarm is the same pre-move snapshot the agents see.
// Generators may share one behaviour between projectiles, so implementations keep no state.
type ProjectileBehavior interface {
	ComputeVelocity(self ProjectileState, tick int, dt float64, swarm *Swarm) geometry.Vector2D
}

// ProjectileGenerator hands out the projectiles spawned at a tick.
// It is called once with tick -1 before the simulation starts, for pre-placed projectiles.
type ProjectileGenerator func(tick int) []*Projectile

// NoProjectiles is a generator that never spawns anything.
func NoProjectiles(int) []*Projectile { return nil }

// ConstantVelocity keeps the spawn velocity forever.
type ConstantVelocity struct{}

func (ConstantVelocity) ComputeVelocity(self ProjectileState, _ int, _ float64, _ *Swarm) geometry.Vector2D {
	return self.Vel
}

// ProjectileParams holds the initial state of a projectile.
type ProjectileParams struct {
	Size          float64
	Position      geometry.Vector2D
	Velocity      geometry.Vector2D
	SpawnTick     int
	LifetimeTicks int
}

// Projectile is a transient hazard. It lives in the environment until it expires.
type Projectile struct {
	size          float64
	pos           geometry.Vector2D
	vel           geometry.Vector2D
	spawnTick     int
	lifetimeTicks int
	active        bool
	behavior      ProjectileBehavior
}

// NewProjectile creates an active projectile. A nil behaviour means ConstantVelocity.
func NewProjectile(p ProjectileParams, b ProjectileBehavior) *Projectile {
	if b == nil {
		b = ConstantVelocity{}
	}
	return &Projectile{
		size:          p.Size,
		pos:           p.Position,
		vel:           p.Velocity,
		spawnTick:     p.SpawnTick,
		lifetimeTicks: p.LifetimeTicks,
		active:        true,
		behavior:      b,
	}
}

// Validate checks the generated projectile is physically meaningful.
func (p *Projectile) Validate(index int) error {
	switch {
	case !validSize(p.size):
		return &ContractViolationError{Kind: "projectile", Index: index, Reason: fmt.Sprintf("invalid size %g", p.size)}
	case p.lifetimeTicks < 0:
		return &ContractViolationError{Kind: "projectile", Index: index, Reason: fmt.Sprintf("negative lifetime %d", p.lifetimeTicks)}
	case !p.pos.IsFinite() || !p.vel.IsFinite():
		return &ContractViolationError{Kind: "projectile", Index: index, Reason: "non finite position or velocity"}
	}
	return nil
}

// Process moves the projectile for one tick.
// Past its lifetime it turns inactive and stays where it is.
func (p *Projectile) Process(tick int, dt float64, swarm *Swarm) {
	if tick-p.spawnTick > p.lifetimeTicks {
		p.active = false
		return
	}
	p.vel = p.behavior.ComputeVelocity(p.State(), tick, dt, swarm)
	p.pos = p.pos.Add(p.vel.Mul(dt))
}

// CollidesWith reports whether b overlaps the projectile. Tangency is not a collision.
func (p *Projectile) CollidesWith(b Body) bool {
	return b.Center().DistanceTo(p.pos) < p.size+b.Radius()
}

func (p *Projectile) IsActive() bool              { return p.active }
func (p *Projectile) Position() geometry.Vector2D { return p.pos }
func (p *Projectile) Velocity() geometry.Vector2D { return p.vel }
func (p *Projectile) Size() float64               { return p.size }
func (p *Projectile) SpawnTick() int              { return p.spawnTick }
func (p *Projectile) LifetimeTicks() int          { return p.lifetimeTicks }
func (p *Projectile) Center() geometry.Vector2D   { return p.pos }
func (p *Projectile) Radius() float64             { return p.size }

// State returns a copy of the projectile's current state.
func (p *Projectile) State() ProjectileState {
	return ProjectileState{
		Pos:           p.pos,
		Vel:           p.vel,
		Size:          p.size,
		SpawnTick:     p.spawnTick,
		LifetimeTicks: p.lifetimeTicks,
	}
}

// Summary returns the reporting view of the projectile.
func (p *Projectile) Summary() ProjectileSummary {
	return ProjectileSummary{
		Position:      p.pos,
		Velocity:      p.vel,
		Size:          p.size,
		SpawnTick:     p.spawnTick,
		LifetimeTicks: p.lifetimeTicks,
	}
}
