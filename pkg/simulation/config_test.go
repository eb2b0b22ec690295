package simulation

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/generator"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonConfig = `{
  "name": "corridor",
  "seed": 11,
  "delta_time": 0.2,
  "max_ticks": 300,
  "map": {"width": 500, "height": 200, "danger_area_width": 400, "safe_area_width": 100},
  "target_area": {"generator": "fixed", "position": {"x": 10, "y": 100}, "size": 25},
  "agents": {"generator": "line", "count": 8, "strategy": "seek", "params": {"max_speed": 6}},
  "obstacles": {"generator": "none"},
  "projectiles": {"generator": "barrage", "behavior": "homing", "count": 3, "params": {"turn_rate": 0.2}}
}`

const tomlConfig = `
name = "corridor"
seed = 11
delta_time = 0.2
max_ticks = 300

[map]
width = 500
height = 200
danger_area_width = 400
safe_area_width = 100

[target_area]
generator = "fixed"
size = 25
position = { x = 10, y = 100 }

[agents]
generator = "line"
count = 8
strategy = "seek"
params = { max_speed = 6 }

[obstacles]
generator = "none"

[projectiles]
generator = "barrage"
behavior = "homing"
count = 3
params = { turn_rate = 0.2 }
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfig(t *testing.T) {
	for _, file := range []struct{ name, content string }{
		{"corridor.json", jsonConfig},
		{"corridor.toml", tomlConfig},
	} {
		t.Run(file.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeFile(t, file.name, file.content))
			require.NoError(t, err)

			assert.Equal(t, "corridor", cfg.Name)
			assert.Equal(t, uint64(11), cfg.Seed)
			assert.Equal(t, 0.2, cfg.DeltaTime)
			assert.Equal(t, 300, cfg.MaxTicks())
			assert.Equal(t, MapConfig{Width: 500, Height: 200, DangerAreaWidth: 400, SafeAreaWidth: 100}, cfg.Map)
			assert.Equal(t, geometry.NewVector(10, 100), cfg.TargetArea.Position)
			assert.Equal(t, 8, cfg.Agents.Count)
			assert.Equal(t, strategy.Params{"max_speed": 6}, cfg.Agents.Params)
			assert.Equal(t, "homing", cfg.Projectiles.Behavior)

			// fields left out keep their defaults
			def := DefaultConfig()
			assert.Equal(t, def.Agents.Size, cfg.Agents.Size)
			assert.Equal(t, def.Projectiles.LifetimeTicks, cfg.Projectiles.LifetimeTicks)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", `{"speed_of_light": 1}`, "speed_of_light"},
		{"negative count", `{"agents": {"count": -2}}`, "/agents/count"},
		{"zero delta time", `{"delta_time": 0}`, "/delta_time"},
		{"string params", `{"agents": {"params": {"max_speed": "fast"}}}`, "/agents/params/max_speed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "bad.json", tt.content))
			require.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "bad.json", `{"name": `))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfiguration)

	_, err = LoadConfig(writeFile(t, "bad.toml", `name = `))
	require.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeltaTime = -1
	cfg.Agents.Strategy = "teleport"
	cfg.Obstacles.Generator = "maze"
	cfg.Obstacles.MinSize = 40
	cfg.Projectiles.Params = strategy.Params{}
	cfg.Projectiles.Behavior = "homing"
	cfg.Projectiles.Params["turn_rate"] = -1

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
	assert.ErrorIs(t, err, generator.ErrUnknownGenerator)

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Problems.Errors, 5)
	assert.Contains(t, err.Error(), "delta_time")
	assert.Contains(t, err.Error(), "teleport")
	assert.Contains(t, err.Error(), "maze")
	assert.Contains(t, err.Error(), "turn_rate")
}

func TestBuildEnvironment(t *testing.T) {
	cfg, err := ParseConfig([]byte(jsonConfig), ".json")
	require.NoError(t, err)

	env, err := cfg.BuildEnvironment()
	require.NoError(t, err)
	assert.Equal(t, 8, env.NumAgents())
	assert.Equal(t, 3, env.NumProjectiles(), "the barrage is placed before the first tick")

	s := env.Summary()
	assert.Equal(t, 300, s.Header.MaxTicks)
	assert.Equal(t, 0.2, s.Header.DeltaTime)
	assert.Empty(t, s.Structure.Obstacles)
	assert.Equal(t, geometry.NewVector(10, 100), s.Structure.TargetArea.Position)
	assert.Equal(t, "agent_1", s.Structure.SwarmAgents[0].ID)

	again, err := cfg.BuildEnvironment()
	require.NoError(t, err)
	assert.Equal(t, s, again.Summary(), "a seeded configuration builds the same world")
}

func TestBuildEnvironmentSeeds(t *testing.T) {
	cfg := DefaultConfig()
	first, err := cfg.WithSeed(1).BuildEnvironment()
	require.NoError(t, err)
	second, err := cfg.WithSeed(2).BuildEnvironment()
	require.NoError(t, err)
	assert.NotEqual(t, first.Summary(), second.Summary())
	assert.Zero(t, cfg.Seed, "WithSeed leaves the original untouched")
}

func TestBuildEnvironmentRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agents.Generator = "spiral"
	_, err := cfg.BuildEnvironment()
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestCustomRegistries(t *testing.T) {
	gens := generator.DefaultRegistry()
	gens.RegisterObstacles("wall", func(_ *rand.Rand, m entity.MapStructure, _ generator.ObstacleSpec) []entity.Obstacle {
		return []entity.Obstacle{{Position: geometry.NewVector(m.DangerAreaWidth/2, m.Height/2), Size: 10}}
	})
	cfg := DefaultConfig()
	cfg.Seed = 5
	cfg.Obstacles.Generator = "wall"

	require.ErrorIs(t, cfg.Validate(), ErrConfiguration)

	cfg.SetRegistries(gens, strategy.DefaultRegistry())
	env, err := cfg.BuildEnvironment()
	require.NoError(t, err)
	assert.Len(t, env.Summary().Structure.Obstacles, 1)
}

func TestShippedConfigs(t *testing.T) {
	for _, name := range []string{"escape.json", "barrage.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadConfig(filepath.Join("..", "..", "configs", name))
			require.NoError(t, err)
			env, err := cfg.BuildEnvironment()
			require.NoError(t, err)
			assert.Positive(t, env.NumAgents())
		})
	}
}
