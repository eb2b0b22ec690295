package experiment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/trace"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ErrTrialFailed is returned when a repetition could not run to the end.
var ErrTrialFailed = errors.New("trial failed")

// Trial runs the repetitions of one simulation configuration, one at a time.
// It is asked with the repetition number and answers with the run result.
type Trial struct {
	cfg        *simulation.Config
	configFile string
	saved      int
	outputDir  string
	format     trace.Format
	runs       int
}

var _ actor.Actor = (*Trial)(nil)

func NewTrial(cfg *simulation.Config, configFile string, saved int, outputDir string, format trace.Format) *Trial {
	return &Trial{
		cfg:        cfg,
		configFile: configFile,
		saved:      saved,
		outputDir:  outputDir,
		format:     format,
	}
}

func (t *Trial) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Debugf("trial %s ready for %s", ctx.ActorName(), t.configFile)
	return nil
}

func (t *Trial) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Debugf("trial %s stopped after %d runs", ctx.ActorName(), t.runs)
	return nil
}

func (t *Trial) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		t.cfg.SetLogger(ctx.Logger())

	case *wrapperspb.Int64Value:
		t.runs++
		r, err := t.run(int(msg.GetValue()), ctx.Logger())
		if err != nil {
			ctx.Logger().Errorf("%s repetition %d: %v", t.configFile, msg.GetValue(), err)
			ctx.Response(errorStruct(err))
			return
		}
		resp, err := encodeResult(r)
		if err != nil {
			ctx.Response(errorStruct(err))
			return
		}
		ctx.Response(resp)

	default:
		ctx.Unhandled()
	}
}

// run plays one repetition. A seeded configuration gets a distinct, reproducible seed per repetition.
func (t *Trial) run(repetition int, logger golog.Logger) (simulation.Result, error) {
	cfg := t.cfg
	if cfg.Seed != 0 {
		cfg = cfg.WithSeed(cfg.Seed + uint64(repetition))
	}
	sim := simulation.NewSimulator(cfg, simulation.WithSimulatorLogger(logger))

	var tr *trace.Trace
	if repetition < t.saved {
		tr = trace.New(cfg.Name, t.configFile)
	}
	for s, err := range sim.Run() {
		if err != nil {
			return simulation.Result{}, err
		}
		if tr != nil {
			tr.Append(s)
		}
	}
	r, _ := sim.LastResult()

	if tr != nil {
		path, err := trace.SaveFile(t.outputDir, fmt.Sprintf("%s_trace_%d", cfg.Name, repetition), tr, t.format)
		if err != nil {
			return r, err
		}
		logger.Infof("trace of %s repetition %d saved to %s", cfg.Name, repetition, path)
	}
	return r, nil
}

func encodeResult(r simulation.Result) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"num_agents":                r.NumAgents,
		"num_agents_reached_target": r.NumAgentsReachedTarget,
		"first_reach_tick":          r.FirstReachTick,
		"last_reach_tick":           r.LastReachTick,
		"ticks":                     r.Ticks,
		"total_time":                r.TotalTime,
		"delta_time_target":         r.DeltaTimeTarget,
		"finished":                  r.Finished,
	})
}

func errorStruct(err error) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"error": structpb.NewStringValue(err.Error()),
	}}
}

func decodeResult(st *structpb.Struct) (simulation.Result, error) {
	var r simulation.Result
	if e, ok := st.GetFields()["error"]; ok {
		return r, fmt.Errorf("%w: %s", ErrTrialFailed, e.GetStringValue())
	}
	b, err := json.Marshal(st.AsMap())
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("failed to decode trial result: %w", err)
	}
	return r, nil
}
