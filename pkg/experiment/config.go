package experiment

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/trace"
)

//go:embed experiment.schema.json
var experimentSchema string

const defaultTrialTimeout = 5 * time.Minute

// Config describes a batch of repeated runs over several simulation configurations.
type Config struct {
	ExperimentName        string   `json:"experiment_name"`
	SimulationConfigFiles []string `json:"simulation_config_files"`
	NumRepetitions        int      `json:"num_repetitions"`
	// SavedRepetitions is the number of leading repetitions whose full trace is written to OutputDir.
	SavedRepetitions int    `json:"saved_repetitions"`
	OutputDir        string `json:"output_dir"`
	TraceFormat      string `json:"trace_format"`
	MaxConcurrency   int    `json:"max_concurrency"`
	TrialTimeout     string `json:"trial_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		ExperimentName: "experiment",
		NumRepetitions: 10,
		OutputDir:      "output",
		TraceFormat:    string(trace.JSON),
		MaxConcurrency: 4,
		TrialTimeout:   defaultTrialTimeout.String(),
	}
}

// LoadConfig reads a JSON or TOML experiment file. Relative simulation config paths are
// resolved against the directory of the experiment file.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file: %w", err)
	}
	doc, err := simulation.JSONDocument(b, filepath.Ext(configFile))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configFile, err)
	}
	if err := simulation.ValidateDocument(experimentSchema, doc); err != nil {
		return nil, fmt.Errorf("%s: %w", configFile, err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(doc, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal experiment: %w", err)
	}
	base := filepath.Dir(configFile)
	for i, f := range cfg.SimulationConfigFiles {
		if !filepath.IsAbs(f) {
			cfg.SimulationConfigFiles[i] = filepath.Join(base, f)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configFile, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var problems *multierror.Error
	if len(c.SimulationConfigFiles) == 0 {
		problems = multierror.Append(problems, fmt.Errorf("simulation_config_files is empty"))
	}
	if c.NumRepetitions <= 0 {
		problems = multierror.Append(problems, fmt.Errorf("num_repetitions must be positive, got %d", c.NumRepetitions))
	}
	if c.SavedRepetitions < 0 {
		problems = multierror.Append(problems, fmt.Errorf("saved_repetitions cannot be negative, got %d", c.SavedRepetitions))
	}
	if c.SavedRepetitions > 0 && c.OutputDir == "" {
		problems = multierror.Append(problems, fmt.Errorf("saved_repetitions needs an output_dir"))
	}
	if _, err := trace.ParseFormat(c.TraceFormat); err != nil {
		problems = multierror.Append(problems, fmt.Errorf("trace_format: %w", err))
	}
	if _, err := c.timeout(); err != nil {
		problems = multierror.Append(problems, err)
	}
	if problems.ErrorOrNil() != nil {
		return &simulation.ConfigurationError{Source: c.ExperimentName, Problems: problems}
	}
	return nil
}

func (c *Config) format() trace.Format {
	f, _ := trace.ParseFormat(c.TraceFormat)
	return f
}

func (c *Config) timeout() (time.Duration, error) {
	if c.TrialTimeout == "" {
		return defaultTrialTimeout, nil
	}
	d, err := time.ParseDuration(c.TrialTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("trial_timeout %q is not a positive duration", c.TrialTimeout)
	}
	return d, nil
}
