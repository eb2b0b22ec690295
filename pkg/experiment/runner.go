// Package experiment repeats simulation runs over several configurations and averages the results.
// Each configuration is driven by its own trial actor; configurations run concurrently.
package experiment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/trace"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ConfigReport holds the averages over the repetitions of one simulation configuration.
type ConfigReport struct {
	Name            string            `json:"name" msgpack:"name"`
	ConfigFile      string            `json:"config_file" msgpack:"config_file"`
	Repetitions     int               `json:"repetitions" msgpack:"repetitions"`
	AvgAgentSuccess float64           `json:"avg_agent_success" msgpack:"avg_agent_success"`
	AvgTime         float64           `json:"avg_time" msgpack:"avg_time"`
	AvgDeltaTime    float64           `json:"avg_delta_time" msgpack:"avg_delta_time"`
	Runs            []trace.RunRecord `json:"runs" msgpack:"runs"`
}

// Report is the outcome of an experiment.
type Report struct {
	ID             string         `json:"id" msgpack:"id"`
	ExperimentName string         `json:"experiment_name" msgpack:"experiment_name"`
	Timestamp      time.Time      `json:"timestamp" msgpack:"timestamp"`
	Configs        []ConfigReport `json:"configs" msgpack:"configs"`
}

type options struct {
	logger   golog.Logger
	progress func()
}

// Option configures Run.
type Option func(*options)

// WithLogger sets the logger of the actor system and of the runs.
func WithLogger(l golog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProgress registers a callback invoked once per finished repetition.
// Calls are serialized.
func WithProgress(fn func()) Option {
	return func(o *options) { o.progress = fn }
}

// Trials is the number of repetitions an experiment runs in total.
func (c *Config) Trials() int {
	return len(c.SimulationConfigFiles) * c.NumRepetitions
}

// Run plays every repetition of every configuration and writes the report to the output
// directory when one is set.
func Run(ctx context.Context, cfg *Config, opts ...Option) (*Report, error) {
	o := options{logger: golog.DiscardLogger, progress: func() {}}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout, _ := cfg.timeout()

	sims := make([]*simulation.Config, len(cfg.SimulationConfigFiles))
	for i, f := range cfg.SimulationConfigFiles {
		sc, err := simulation.LoadConfig(f)
		if err != nil {
			return nil, err
		}
		sims[i] = sc
	}

	system, err := actor.NewActorSystem("SwarmExperiment", actor.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}
	defer func() {
		if err := system.Stop(context.WithoutCancel(ctx)); err != nil {
			o.logger.Errorf("failed to stop actor system: %v", err)
		}
	}()

	report := &Report{
		ID:             uuid.NewString(),
		ExperimentName: cfg.ExperimentName,
		Timestamp:      time.Now().UTC(),
		Configs:        make([]ConfigReport, len(sims)),
	}
	var mu sync.Mutex
	done := func() {
		mu.Lock()
		defer mu.Unlock()
		o.progress()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.MaxConcurrency, 1))
	for i, sc := range sims {
		file := cfg.SimulationConfigFiles[i]
		g.Go(func() error {
			pid, err := system.Spawn(gctx, fmt.Sprintf("trial-%d", i),
				NewTrial(sc, file, cfg.SavedRepetitions, cfg.OutputDir, cfg.format()))
			if err != nil {
				return fmt.Errorf("failed to spawn trial for %s: %w", file, err)
			}
			cr := ConfigReport{Name: sc.Name, ConfigFile: file, Runs: make([]trace.RunRecord, 0, cfg.NumRepetitions)}
			for rep := range cfg.NumRepetitions {
				resp, err := actor.Ask(gctx, pid, wrapperspb.Int64(int64(rep)), timeout)
				if err != nil {
					return fmt.Errorf("%s repetition %d: %w", file, rep, err)
				}
				st, ok := resp.(*structpb.Struct)
				if !ok {
					return fmt.Errorf("%s repetition %d: unexpected reply %T", file, rep, resp)
				}
				r, err := decodeResult(st)
				if err != nil {
					return fmt.Errorf("%s repetition %d: %w", file, rep, err)
				}
				cr.Runs = append(cr.Runs, *trace.NewRunRecord(sc.Name, file, rep, r))
				done()
			}
			report.Configs[i] = summarize(cr)
			o.logger.Infof("%s: %d repetitions, success %.3f", sc.Name, report.Configs[i].Repetitions, report.Configs[i].AvgAgentSuccess)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cfg.OutputDir != "" {
		path, err := trace.SaveFile(cfg.OutputDir, cfg.ExperimentName+"_report", report, cfg.format())
		if err != nil {
			return report, err
		}
		o.logger.Infof("report saved to %s", path)
	}
	return report, nil
}

// summarize fills the averages of a config report from its runs.
func summarize(cr ConfigReport) ConfigReport {
	cr.Repetitions = len(cr.Runs)
	if cr.Repetitions == 0 {
		return cr
	}
	var success, total, delta float64
	for _, run := range cr.Runs {
		success += run.Result.SuccessRate()
		total += run.Result.TotalTime
		delta += run.Result.DeltaTimeTarget
	}
	n := float64(cr.Repetitions)
	cr.AvgAgentSuccess = success / n
	cr.AvgTime = total / n
	cr.AvgDeltaTime = delta / n
	return cr
}
