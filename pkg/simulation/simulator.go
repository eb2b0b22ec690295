package simulation

import (
	"iter"
	"sync"

	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/entity"
	golog "github.com/tochemey/goakt/v3/log"
)

// EnvironmentBuilder produces a fresh environment for every run.
type EnvironmentBuilder interface {
	BuildEnvironment() (*Environment, error)
	MaxTicks() int
}

// Result holds the final counters of a run.
type Result struct {
	NumAgents              int     `json:"num_agents" msgpack:"num_agents"`
	NumAgentsReachedTarget int     `json:"num_agents_reached_target" msgpack:"num_agents_reached_target"`
	FirstReachTick         int     `json:"first_reach_tick" msgpack:"first_reach_tick"`
	LastReachTick          int     `json:"last_reach_tick" msgpack:"last_reach_tick"`
	Ticks                  int     `json:"ticks" msgpack:"ticks"`
	TotalTime              float64 `json:"total_time" msgpack:"total_time"`
	DeltaTimeTarget        float64 `json:"delta_time_target" msgpack:"delta_time_target"`
	Finished               bool    `json:"finished" msgpack:"finished"`
}

// SuccessRate is the share of the initial swarm that reached the target.
func (r Result) SuccessRate() float64 {
	if r.NumAgents == 0 {
		return 0
	}
	return float64(r.NumAgentsReachedTarget) / float64(r.NumAgents)
}

// ResultOf reads the counters of an environment.
func ResultOf(e *Environment) Result {
	r := Result{
		NumAgents:              e.InitialAgents(),
		NumAgentsReachedTarget: e.NumAgentsReachedTarget(),
		FirstReachTick:         e.FirstReachTick(),
		LastReachTick:          e.LastReachTick(),
		Ticks:                  e.LastTick() + 1,
		Finished:               e.Finished(),
	}
	r.TotalTime = float64(r.Ticks) * e.DeltaTime()
	if r.NumAgentsReachedTarget > 0 {
		r.DeltaTimeTarget = float64(r.LastReachTick-r.FirstReachTick) * e.DeltaTime()
	}
	return r
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithSimulatorLogger sets the logger of the simulator.
func WithSimulatorLogger(l golog.Logger) SimulatorOption {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// Simulator runs environments built by an EnvironmentBuilder and streams their summaries.
type Simulator struct {
	builder EnvironmentBuilder
	logger  golog.Logger

	mu     sync.Mutex
	last   Result
	hasRun bool
}

func NewSimulator(b EnvironmentBuilder, opts ...SimulatorOption) *Simulator {
	s := &Simulator{builder: b, logger: golog.DiscardLogger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run returns the lazy sequence of summaries of a new run: the initial state, then one
// summary per processed tick up to and including the tick that finishes the environment.
// An error is yielded once and ends the sequence. Breaking out of the loop stops the run.
// Every iteration starts a new run.
func (s *Simulator) Run() iter.Seq2[entity.EnvironmentSummary, error] {
	return func(yield func(entity.EnvironmentSummary, error) bool) {
		env, err := s.builder.BuildEnvironment()
		if err != nil {
			yield(entity.EnvironmentSummary{}, err)
			return
		}
		s.logger.Infof("run started: %d agents, %d ticks max", env.NumAgents(), s.builder.MaxTicks())
		defer func() {
			r := ResultOf(env)
			s.record(r)
			s.logger.Infof("run stopped after %d ticks: %d/%d agents reached the target",
				r.Ticks, r.NumAgentsReachedTarget, r.NumAgents)
		}()

		if !yield(env.Summary(), nil) {
			return
		}
		for tick := range s.builder.MaxTicks() {
			if env.Finished() {
				return
			}
			if err := env.Process(tick); err != nil {
				yield(entity.EnvironmentSummary{}, err)
				return
			}
			if !yield(env.Summary(), nil) {
				return
			}
		}
	}
}

// LastResult returns the counters of the latest run, ok is false before any run.
func (s *Simulator) LastResult() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasRun
}

func (s *Simulator) record(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = r
	s.hasRun = true
}
