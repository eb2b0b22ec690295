package generator

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
)

// maxDeviation is the largest angle between a wave projectile and the vertical.
const maxDeviation = math.Pi / 6

// NoProjectiles never spawns anything.
func NoProjectiles(*rand.Rand, entity.MapStructure, ProjectileSpec, entity.ProjectileBehavior) entity.ProjectileGenerator {
	return entity.NoProjectiles
}

// RandomProjectiles fires a wave of spec.Count projectiles every spec.Period ticks.
// Each one enters the danger area from the top or bottom edge and crosses it roughly vertically.
func RandomProjectiles(rng *rand.Rand, m entity.MapStructure, spec ProjectileSpec, behavior entity.ProjectileBehavior) entity.ProjectileGenerator {
	period := max(spec.Period, 1)
	return func(tick int) []*entity.Projectile {
		if tick < 0 || tick%period != 0 {
			return nil
		}
		wave := make([]*entity.Projectile, 0, spec.Count)
		for i := 0; i < spec.Count; i++ {
			pos := geometry.Vector2D{X: uniform(rng, 0, m.DangerAreaWidth)}
			heading := math.Pi/2 + uniform(rng, -maxDeviation, maxDeviation)
			if rng.IntN(2) == 1 {
				pos.Y = m.Height
				heading = -heading
			}
			wave = append(wave, entity.NewProjectile(entity.ProjectileParams{
				Size:          spec.Size,
				Position:      pos,
				Velocity:      geometry.NewVectorPolar(spec.Speed, heading),
				SpawnTick:     tick,
				LifetimeTicks: spec.LifetimeTicks,
			}, behavior))
		}
		return wave
	}
}

// BarrageProjectiles places spec.Count projectiles over the danger area before the start,
// with random headings, and never spawns again.
func BarrageProjectiles(rng *rand.Rand, m entity.MapStructure, spec ProjectileSpec, behavior entity.ProjectileBehavior) entity.ProjectileGenerator {
	return func(tick int) []*entity.Projectile {
		if tick != -1 {
			return nil
		}
		barrage := make([]*entity.Projectile, 0, spec.Count)
		for i := 0; i < spec.Count; i++ {
			barrage = append(barrage, entity.NewProjectile(entity.ProjectileParams{
				Size:          spec.Size,
				Position:      geometry.Vector2D{X: uniform(rng, 0, m.DangerAreaWidth), Y: uniform(rng, 0, m.Height)},
				Velocity:      geometry.NewVectorPolar(spec.Speed, uniform(rng, -math.Pi, math.Pi)),
				SpawnTick:     tick,
				LifetimeTicks: spec.LifetimeTicks,
			}, behavior))
		}
		return barrage
	}
}
