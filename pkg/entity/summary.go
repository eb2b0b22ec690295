package entity

import (
	"encoding/json"
	"fmt"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
	"google.golang.org/protobuf/types/known/structpb"
)

// AgentSummary is the reporting view of an agent.
type AgentSummary struct {
	ID                 string            `json:"id" msgpack:"id"`
	Position           geometry.Vector2D `json:"position" msgpack:"position"`
	Velocity           geometry.Vector2D `json:"velocity" msgpack:"velocity"`
	Size               float64           `json:"size" msgpack:"size"`
	AccelerationLimit  float64           `json:"acceleration_limit" msgpack:"acceleration_limit"`
	PerceptionDistance float64           `json:"perception_distance" msgpack:"perception_distance"`
	SwarmDistance      float64           `json:"swarm_distance" msgpack:"swarm_distance"`
}

// ProjectileSummary is the reporting view of a projectile.
type ProjectileSummary struct {
	Position      geometry.Vector2D `json:"position" msgpack:"position"`
	Velocity      geometry.Vector2D `json:"velocity" msgpack:"velocity"`
	Size          float64           `json:"size" msgpack:"size"`
	SpawnTick     int               `json:"spawn_tick" msgpack:"spawn_tick"`
	LifetimeTicks int               `json:"lifetime_ticks" msgpack:"lifetime_ticks"`
}

// Header is the bookkeeping part of an environment summary.
type Header struct {
	SimulationFinished bool    `json:"simulation_finished" msgpack:"simulation_finished"`
	LastTick           int     `json:"last_tick" msgpack:"last_tick"`
	MaxTicks           int     `json:"max_ticks" msgpack:"max_ticks"`
	DeltaTime          float64 `json:"delta_time" msgpack:"delta_time"`
}

// Structure is the world part of an environment summary.
type Structure struct {
	MapStructure MapStructure        `json:"map_structure" msgpack:"map_structure"`
	TargetArea   TargetArea          `json:"target_area" msgpack:"target_area"`
	Obstacles    []Obstacle          `json:"obstacles" msgpack:"obstacles"`
	Projectiles  []ProjectileSummary `json:"projectiles" msgpack:"projectiles"`
	SwarmAgents  []AgentSummary      `json:"swarm_agents" msgpack:"swarm_agents"`
}

// EnvironmentSummary is the state of an environment after a tick.
// Consumers rely on the field names, keep them stable.
type EnvironmentSummary struct {
	Header    Header    `json:"header" msgpack:"header"`
	Structure Structure `json:"structure" msgpack:"structure"`
}

// ToProto converts the summary into a protobuf Struct, the nested mapping sent over the wire.
func (s EnvironmentSummary) ToProto() (*structpb.Struct, error) {
	obstacles := make([]any, 0, len(s.Structure.Obstacles))
	for _, o := range s.Structure.Obstacles {
		obstacles = append(obstacles, circleMap(o.Position, o.Size))
	}
	projectiles := make([]any, 0, len(s.Structure.Projectiles))
	for _, p := range s.Structure.Projectiles {
		projectiles = append(projectiles, map[string]any{
			"position":       vectorMap(p.Position),
			"velocity":       vectorMap(p.Velocity),
			"size":           p.Size,
			"spawn_tick":     p.SpawnTick,
			"lifetime_ticks": p.LifetimeTicks,
		})
	}
	agents := make([]any, 0, len(s.Structure.SwarmAgents))
	for _, a := range s.Structure.SwarmAgents {
		agents = append(agents, map[string]any{
			"id":                  a.ID,
			"position":            vectorMap(a.Position),
			"velocity":            vectorMap(a.Velocity),
			"size":                a.Size,
			"acceleration_limit":  a.AccelerationLimit,
			"perception_distance": a.PerceptionDistance,
			"swarm_distance":      a.SwarmDistance,
		})
	}
	m := s.Structure.MapStructure

	st, err := structpb.NewStruct(map[string]any{
		"header": map[string]any{
			"simulation_finished": s.Header.SimulationFinished,
			"last_tick":           s.Header.LastTick,
			"max_ticks":           s.Header.MaxTicks,
			"delta_time":          s.Header.DeltaTime,
		},
		"structure": map[string]any{
			"map_structure": map[string]any{
				"width":             m.Width,
				"height":            m.Height,
				"danger_area_width": m.DangerAreaWidth,
				"safe_area_width":   m.SafeAreaWidth,
			},
			"target_area":  circleMap(s.Structure.TargetArea.Position, s.Structure.TargetArea.Size),
			"obstacles":    obstacles,
			"projectiles":  projectiles,
			"swarm_agents": agents,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert summary to proto: %w", err)
	}
	return st, nil
}

// SummaryFromProto converts a protobuf Struct produced by ToProto back into a summary.
func SummaryFromProto(st *structpb.Struct) (EnvironmentSummary, error) {
	var s EnvironmentSummary
	b, err := json.Marshal(st.AsMap())
	if err != nil {
		return s, fmt.Errorf("failed to marshal proto summary: %w", err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("failed to decode proto summary: %w", err)
	}
	return s, nil
}

func vectorMap(v geometry.Vector2D) map[string]any {
	return map[string]any{"x": v.X, "y": v.Y}
}

func circleMap(pos geometry.Vector2D, size float64) map[string]any {
	return map[string]any{"position": vectorMap(pos), "size": size}
}
