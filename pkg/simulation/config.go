package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/generator"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/strategy"
	"github.com/santhosh-tekuri/jsonschema/v5"
	golog "github.com/tochemey/goakt/v3/log"
)

//go:embed config.schema.json
var configSchema string

type MapConfig struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	DangerAreaWidth float64 `json:"danger_area_width"`
	SafeAreaWidth   float64 `json:"safe_area_width"`
}

type TargetConfig struct {
	Generator string            `json:"generator"`
	Position  geometry.Vector2D `json:"position"`
	Size      float64           `json:"size"`
}

type AgentsConfig struct {
	Generator          string          `json:"generator"`
	Count              int             `json:"count"`
	Size               float64         `json:"size"`
	AccelerationLimit  float64         `json:"acceleration_limit"`
	PerceptionDistance float64         `json:"perception_distance"`
	SwarmDistance      float64         `json:"swarm_distance"`
	Strategy           string          `json:"strategy"`
	Params             strategy.Params `json:"params,omitempty"`
}

type ObstaclesConfig struct {
	Generator string  `json:"generator"`
	Count     int     `json:"count"`
	MinSize   float64 `json:"min_size"`
	MaxSize   float64 `json:"max_size"`
}

type ProjectilesConfig struct {
	Generator     string          `json:"generator"`
	Behavior      string          `json:"behavior"`
	Count         int             `json:"count"`
	Size          float64         `json:"size"`
	Speed         float64         `json:"speed"`
	LifetimeTicks int             `json:"lifetime_ticks"`
	Period        int             `json:"period"`
	Params        strategy.Params `json:"params,omitempty"`
}

// Config describes one simulation run.
type Config struct {
	Name string `json:"name"`
	// Seed of the generators. Zero draws a new seed for every environment built.
	Seed        uint64  `json:"seed"`
	DeltaTime   float64 `json:"delta_time"`
	TickLimit   int     `json:"max_ticks"`
	Parallelism int     `json:"parallelism"` // goroutines of the movement phase, 0 or 1 is sequential

	Map         MapConfig         `json:"map"`
	TargetArea  TargetConfig      `json:"target_area"`
	Agents      AgentsConfig      `json:"agents"`
	Obstacles   ObstaclesConfig   `json:"obstacles"`
	Projectiles ProjectilesConfig `json:"projectiles"`

	generators *generator.Registry
	strategies *strategy.Registry
	logger     golog.Logger
}

func DefaultConfig() *Config {
	return &Config{
		Name:      "default",
		DeltaTime: 0.1,
		TickLimit: 2000,
		Map: MapConfig{
			Width:           1000,
			Height:          600,
			DangerAreaWidth: 800,
			SafeAreaWidth:   200,
		},
		TargetArea: TargetConfig{
			Generator: "left_edge",
			Size:      60,
		},
		Agents: AgentsConfig{
			Generator:          "basic",
			Count:              30,
			Size:               3,
			AccelerationLimit:  1,
			PerceptionDistance: 80,
			SwarmDistance:      50,
			Strategy:           "boids",
		},
		Obstacles: ObstaclesConfig{
			Generator: "basic",
			Count:     20,
			MinSize:   10,
			MaxSize:   30,
		},
		Projectiles: ProjectilesConfig{
			Generator:     "random",
			Behavior:      "constant",
			Count:         2,
			Size:          4,
			Speed:         30,
			LifetimeTicks: 300,
			Period:        50,
		},
	}
}

// LoadConfig reads a JSON or TOML (by extension) configuration, checks it against the
// embedded schema and decodes it on top of DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := ParseConfig(b, filepath.Ext(configFile))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configFile, err)
	}
	return cfg, nil
}

// ParseConfig decodes a configuration document. ext selects TOML for ".toml", JSON otherwise.
func ParseConfig(b []byte, ext string) (*Config, error) {
	doc, err := JSONDocument(b, ext)
	if err != nil {
		return nil, err
	}
	if err := ValidateDocument(configSchema, doc); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// JSONDocument returns the JSON form of a document, converting it from TOML when ext is ".toml".
func JSONDocument(b []byte, ext string) ([]byte, error) {
	if !strings.EqualFold(ext, ".toml") {
		return b, nil
	}
	var raw map[string]any
	if err := toml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode config toml: %w", err)
	}
	out, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config toml: %w", err)
	}
	return out, nil
}

// ValidateDocument checks a JSON document against a JSON schema.
// Schema violations are reported as a *ConfigurationError.
func ValidateDocument(schema string, doc []byte) error {
	sch, err := jsonschema.CompileString("schema.json", schema)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("config validation failed: %w", err)
		}
		var problems *multierror.Error
		for _, leaf := range leaves(ve) {
			problems = multierror.Append(problems, fmt.Errorf("%s: %s", leaf.InstanceLocation, leaf.Message))
		}
		return &ConfigurationError{Source: "schema", Problems: problems}
	}
	return nil
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

// SetRegistries replaces the default generator and strategy registries.
func (c *Config) SetRegistries(g *generator.Registry, s *strategy.Registry) {
	c.generators = g
	c.strategies = s
}

// SetLogger sets the logger handed to the environments built from c.
func (c *Config) SetLogger(l golog.Logger) {
	c.logger = l
}

// WithSeed returns a copy of c using seed.
func (c *Config) WithSeed(seed uint64) *Config {
	cp := *c
	cp.Seed = seed
	return &cp
}

func (c *Config) registries() (*generator.Registry, *strategy.Registry) {
	g, s := c.generators, c.strategies
	if g == nil {
		g = generator.DefaultRegistry()
	}
	if s == nil {
		s = strategy.DefaultRegistry()
	}
	return g, s
}

// Validate checks the semantic rules the schema cannot express and reports all of them at once.
func (c *Config) Validate() error {
	var problems *multierror.Error
	add := func(format string, args ...any) {
		problems = multierror.Append(problems, fmt.Errorf(format, args...))
	}

	if !(c.DeltaTime > 0) {
		add("delta_time must be positive, got %g", c.DeltaTime)
	}
	if c.TickLimit <= 0 {
		add("max_ticks must be positive, got %d", c.TickLimit)
	}
	if c.Parallelism < 0 {
		add("parallelism cannot be negative, got %d", c.Parallelism)
	}
	if !(c.Map.Width > 0) || !(c.Map.Height > 0) {
		add("map dimensions must be positive, got %gx%g", c.Map.Width, c.Map.Height)
	}
	if c.Map.DangerAreaWidth < 0 || c.Map.SafeAreaWidth < 0 {
		add("map areas cannot be negative")
	}
	if c.Map.DangerAreaWidth+c.Map.SafeAreaWidth > c.Map.Width {
		add("danger and safe areas (%g) exceed the map width %g", c.Map.DangerAreaWidth+c.Map.SafeAreaWidth, c.Map.Width)
	}

	gens, strats := c.registries()
	if _, err := gens.Target(c.TargetArea.Generator); err != nil {
		add("target_area.generator: %w", err)
	}
	if !(c.TargetArea.Size > 0) {
		add("target_area.size must be positive, got %g", c.TargetArea.Size)
	}

	if _, err := gens.Agents(c.Agents.Generator); err != nil {
		add("agents.generator: %w", err)
	}
	if c.Agents.Count < 0 {
		add("agents.count cannot be negative, got %d", c.Agents.Count)
	}
	if !(c.Agents.Size > 0) {
		add("agents.size must be positive, got %g", c.Agents.Size)
	}
	if c.Agents.AccelerationLimit < 0 || c.Agents.PerceptionDistance < 0 || c.Agents.SwarmDistance < 0 {
		add("agents acceleration_limit, perception_distance and swarm_distance cannot be negative")
	}
	if f, err := strats.Agent(c.Agents.Strategy); err != nil {
		add("agents.strategy: %w", err)
	} else if _, err := f("", c.Agents.Params); err != nil {
		add("agents.params: %w", err)
	}

	if _, err := gens.Obstacles(c.Obstacles.Generator); err != nil {
		add("obstacles.generator: %w", err)
	}
	if c.Obstacles.Count < 0 {
		add("obstacles.count cannot be negative, got %d", c.Obstacles.Count)
	}
	if c.Obstacles.Count > 0 && !(0 < c.Obstacles.MinSize && c.Obstacles.MinSize <= c.Obstacles.MaxSize) {
		add("obstacles size range [%g, %g] is invalid", c.Obstacles.MinSize, c.Obstacles.MaxSize)
	}

	if _, err := gens.Projectiles(c.Projectiles.Generator); err != nil {
		add("projectiles.generator: %w", err)
	}
	if f, err := strats.Projectile(c.Projectiles.Behavior); err != nil {
		add("projectiles.behavior: %w", err)
	} else if _, err := f(c.Projectiles.Params); err != nil {
		add("projectiles.params: %w", err)
	}
	if c.Projectiles.Count > 0 && !(c.Projectiles.Size > 0) {
		add("projectiles.size must be positive, got %g", c.Projectiles.Size)
	}
	if c.Projectiles.LifetimeTicks < 0 || c.Projectiles.Period < 0 || c.Projectiles.Speed < 0 {
		add("projectiles lifetime_ticks, period and speed cannot be negative")
	}

	if problems.ErrorOrNil() != nil {
		return &ConfigurationError{Source: c.Name, Problems: problems}
	}
	return nil
}

// BuildEnvironment generates a new world from the configuration.
func (c *Config) BuildEnvironment() (*Environment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	gens, strats := c.registries()
	agentGen, _ := gens.Agents(c.Agents.Generator)
	obstacleGen, _ := gens.Obstacles(c.Obstacles.Generator)
	targetGen, _ := gens.Target(c.TargetArea.Generator)
	projectileGen, _ := gens.Projectiles(c.Projectiles.Generator)
	newBehavior, _ := strats.Agent(c.Agents.Strategy)
	newProjectileBehavior, _ := strats.Projectile(c.Projectiles.Behavior)

	seed := c.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	m := entity.MapStructure{
		Width:           c.Map.Width,
		Height:          c.Map.Height,
		DangerAreaWidth: c.Map.DangerAreaWidth,
		SafeAreaWidth:   c.Map.SafeAreaWidth,
	}

	agents, err := agentGen(rng, m, generator.AgentSpec{
		Count:              c.Agents.Count,
		Size:               c.Agents.Size,
		AccelerationLimit:  c.Agents.AccelerationLimit,
		PerceptionDistance: c.Agents.PerceptionDistance,
		SwarmDistance:      c.Agents.SwarmDistance,
	}, func(id string) (entity.Behavior, error) {
		return newBehavior(id, c.Agents.Params)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate agents: %w", err)
	}
	obstacles := obstacleGen(rng, m, generator.ObstacleSpec{
		Count:   c.Obstacles.Count,
		MinSize: c.Obstacles.MinSize,
		MaxSize: c.Obstacles.MaxSize,
	})
	target := targetGen(m, generator.TargetSpec{Position: c.TargetArea.Position, Size: c.TargetArea.Size})
	projectileBehavior, err := newProjectileBehavior(c.Projectiles.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to build projectile behaviour: %w", err)
	}
	gen := projectileGen(rng, m, generator.ProjectileSpec{
		Count:         c.Projectiles.Count,
		Size:          c.Projectiles.Size,
		Speed:         c.Projectiles.Speed,
		LifetimeTicks: c.Projectiles.LifetimeTicks,
		Period:        c.Projectiles.Period,
	}, projectileBehavior)

	opts := []Option{WithParallelism(c.Parallelism)}
	if c.logger != nil {
		opts = append(opts, WithLogger(c.logger))
	}
	return NewEnvironment(agents, gen, obstacles, target, m, c.DeltaTime, c.TickLimit, opts...)
}

// MaxTicks implements EnvironmentBuilder.
func (c *Config) MaxTicks() int { return c.TickLimit }
