// Package strategy holds the concrete agent and projectile behaviours and the registry
// that resolves them by name when a configuration is built.
package strategy

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
)

// ErrUnknownStrategy is returned when a name is not registered.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Factory builds the behaviour of one agent. Each agent gets its own instance.
type Factory func(agentID string, params Params) (entity.Behavior, error)

// ProjectileFactory builds the behaviour of one projectile.
type ProjectileFactory func(params Params) (entity.ProjectileBehavior, error)

// Registry maps strategy names to factories.
type Registry struct {
	agents      map[string]Factory
	projectiles map[string]ProjectileFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		agents:      make(map[string]Factory),
		projectiles: make(map[string]ProjectileFactory),
	}
}

// DefaultRegistry returns a registry holding every built-in behaviour.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("idle", func(string, Params) (entity.Behavior, error) { return entity.Passive{}, nil })
	r.Register("seek", NewSeek)
	r.Register("boids", NewBoids)
	r.Register("steer_away", NewSteerAway)
	r.Register("damper", NewDamper)

	r.RegisterProjectile("constant", func(Params) (entity.ProjectileBehavior, error) { return entity.ConstantVelocity{}, nil })
	r.RegisterProjectile("homing", NewHoming)
	return r
}

// Register adds or replaces an agent behaviour.
func (r *Registry) Register(name string, f Factory) {
	r.agents[name] = f
}

// RegisterProjectile adds or replaces a projectile behaviour.
func (r *Registry) RegisterProjectile(name string, f ProjectileFactory) {
	r.projectiles[name] = f
}

// Agent resolves an agent behaviour factory.
func (r *Registry) Agent(name string) (Factory, error) {
	f, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownStrategy, name, sortedKeys(r.agents))
	}
	return f, nil
}

// Projectile resolves a projectile behaviour factory.
func (r *Registry) Projectile(name string) (ProjectileFactory, error) {
	f, ok := r.projectiles[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownStrategy, name, sortedKeys(r.projectiles))
	}
	return f, nil
}

// Names lists the registered agent behaviours.
func (r *Registry) Names() []string {
	return sortedKeys(r.agents)
}

// ProjectileNames lists the registered projectile behaviours.
func (r *Registry) ProjectileNames() []string {
	return sortedKeys(r.projectiles)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
