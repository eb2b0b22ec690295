package simulation

import (
	"errors"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrConfiguration is returned when a configuration cannot describe a valid run.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrSimulationFinished is returned when Process is called on a finished environment.
	ErrSimulationFinished = errors.New("simulation already finished")
)

// ConfigurationError lists every problem found in one configuration.
type ConfigurationError struct {
	Source   string
	Problems *multierror.Error
}

func (e *ConfigurationError) Error() string {
	if e.Source == "" {
		return e.Problems.Error()
	}
	return e.Source + ": " + e.Problems.Error()
}

// Unwrap exposes both the sentinel and the individual problems to errors.Is/As.
func (e *ConfigurationError) Unwrap() []error {
	return append([]error{ErrConfiguration}, e.Problems.WrappedErrors()...)
}
