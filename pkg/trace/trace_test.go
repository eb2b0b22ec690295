package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordedTrace(t *testing.T) *Trace {
	t.Helper()
	agents := []*entity.Agent{
		entity.NewAgent(entity.AgentParams{ID: "agent_1", Position: geometry.NewVector(50, 20), Velocity: geometry.NewVector(-1.5, 0.25), Size: 1, AccelerationLimit: 1, PerceptionDistance: 30}, nil),
		entity.NewAgent(entity.AgentParams{ID: "agent_2", Position: geometry.NewVector(60, 70), Velocity: geometry.NewVector(-1, 0), Size: 1.5, AccelerationLimit: 2, SwarmDistance: 10}, nil),
	}
	gen := func(tick int) []*entity.Projectile {
		return []*entity.Projectile{entity.NewProjectile(entity.ProjectileParams{
			Size:          0.5,
			Position:      geometry.NewVector(10, 0),
			Velocity:      geometry.NewVector(0, 3.3),
			SpawnTick:     tick,
			LifetimeTicks: 40,
		}, nil)}
	}
	env, err := simulation.NewEnvironment(agents, gen,
		[]entity.Obstacle{{Position: geometry.NewVector(30, 90), Size: 4}},
		entity.TargetArea{Position: geometry.NewVector(0, 50), Size: 10},
		entity.MapStructure{Width: 100, Height: 100, DangerAreaWidth: 80, SafeAreaWidth: 20},
		0.1, 20)
	require.NoError(t, err)

	tr := New("unit", "configs/unit.json")
	tr.Append(env.Summary())
	for tick := range 3 {
		require.NoError(t, env.Process(tick))
		tr.Append(env.Summary())
	}
	return tr
}

func TestTraceRoundTrip(t *testing.T) {
	want := recordedTrace(t)
	for _, f := range []Format{JSON, ProtoJSON, MsgPack} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, want, f))

			var got Trace
			require.NoError(t, Read(&buf, &got, f))
			assert.True(t, want.Timestamp.Equal(got.Timestamp))
			got.Timestamp = want.Timestamp
			assert.Equal(t, *want, got)
		})
	}
}

func TestProtoJSONKeepsFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, recordedTrace(t), ProtoJSON))
	for _, key := range []string{`"simulation_finished"`, `"last_tick"`, `"swarm_agents"`, `"map_structure"`, `"lifetime_ticks"`} {
		assert.Contains(t, buf.String(), key)
	}
}

func TestRunRecordFiles(t *testing.T) {
	rec := NewRunRecord("unit", "unit.toml", 4, simulation.Result{
		NumAgents:              10,
		NumAgentsReachedTarget: 7,
		FirstReachTick:         12,
		LastReachTick:          40,
		Ticks:                  55,
		TotalTime:              5.5,
		DeltaTimeTarget:        2.8,
		Finished:               true,
	})
	dir := filepath.Join(t.TempDir(), "out")

	for _, f := range []Format{JSON, ProtoJSON, MsgPack} {
		path, err := SaveFile(dir, "run_"+string(f), rec, f)
		require.NoError(t, err)
		assert.Equal(t, f.Ext(), path[len(path)-len(f.Ext()):])

		var got RunRecord
		require.NoError(t, LoadFile(path, &got))
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.Repetition, got.Repetition)
		assert.Equal(t, rec.Result, got.Result)
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", JSON},
		{"json", JSON},
		{"ProtoJSON", ProtoJSON},
		{"msgpack", MsgPack},
	}
	for _, tt := range tests {
		f, err := ParseFormat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, f)
	}
	_, err := ParseFormat("yaml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	f, err := FormatOf("out/trace_1.pb.json")
	require.NoError(t, err)
	assert.Equal(t, ProtoJSON, f)
	_, err = FormatOf("trace.csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorIs(t, Write(&bytes.Buffer{}, 1, Format("xml")), ErrUnknownFormat)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, LoadFile(filepath.Join(dir, "missing.json"), &Trace{}), os.ErrNotExist)

	path := filepath.Join(dir, "broken.msgpack")
	require.NoError(t, os.WriteFile(path, []byte{0xc1}, 0o644))
	assert.Error(t, LoadFile(path, &Trace{}))
}

func TestWriteFileUsesExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.msgpack")
	rec := NewRunRecord("unit", "unit.json", 0, simulation.Result{NumAgents: 2, Ticks: 9})
	require.NoError(t, WriteFile(path, rec))

	var got RunRecord
	require.NoError(t, LoadFile(path, &got))
	assert.Equal(t, rec.Result, got.Result)

	assert.ErrorIs(t, WriteFile(filepath.Join(t.TempDir(), "run.txt"), rec), ErrUnknownFormat)
}
