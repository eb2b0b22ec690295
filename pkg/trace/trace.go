// Package trace persists the summaries of a run and the results of experiment trials.
package trace

import (
	"time"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/simulation"
	"google.golang.org/protobuf/types/known/structpb"
)

// Trace is the full history of one run: the initial summary, then one per tick.
type Trace struct {
	ID           string                      `json:"id" msgpack:"id"`
	Name         string                      `json:"name" msgpack:"name"`
	Timestamp    time.Time                   `json:"timestamp" msgpack:"timestamp"`
	ConfigFile   string                      `json:"config_file" msgpack:"config_file"`
	Environments []entity.EnvironmentSummary `json:"environments" msgpack:"environments"`
}

// New starts an empty trace.
func New(name, configFile string) *Trace {
	return &Trace{
		ID:           uuid.NewString(),
		Name:         name,
		Timestamp:    time.Now().UTC(),
		ConfigFile:   configFile,
		Environments: []entity.EnvironmentSummary{},
	}
}

func (t *Trace) Append(s entity.EnvironmentSummary) {
	t.Environments = append(t.Environments, s)
}

// ToProto converts the trace into a protobuf Struct.
func (t *Trace) ToProto() (*structpb.Struct, error) {
	envs := make([]any, 0, len(t.Environments))
	for _, e := range t.Environments {
		st, err := e.ToProto()
		if err != nil {
			return nil, err
		}
		envs = append(envs, st.AsMap())
	}
	return structpb.NewStruct(map[string]any{
		"id":           t.ID,
		"name":         t.Name,
		"timestamp":    t.Timestamp.Format(time.RFC3339Nano),
		"config_file":  t.ConfigFile,
		"environments": envs,
	})
}

// RunRecord is the outcome of one run without its history.
type RunRecord struct {
	ID         string            `json:"id" msgpack:"id"`
	Name       string            `json:"name" msgpack:"name"`
	Timestamp  time.Time         `json:"timestamp" msgpack:"timestamp"`
	ConfigFile string            `json:"config_file" msgpack:"config_file"`
	Repetition int               `json:"repetition" msgpack:"repetition"`
	Result     simulation.Result `json:"result" msgpack:"result"`
}

// NewRunRecord stamps a result with a fresh id.
func NewRunRecord(name, configFile string, repetition int, r simulation.Result) *RunRecord {
	return &RunRecord{
		ID:         uuid.NewString(),
		Name:       name,
		Timestamp:  time.Now().UTC(),
		ConfigFile: configFile,
		Repetition: repetition,
		Result:     r,
	}
}
