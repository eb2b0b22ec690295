package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrAccelerationLimitExceeded is returned when a behaviour asks for a velocity change
	// larger than the agent's acceleration limit. It is fatal to the run.
	ErrAccelerationLimitExceeded = errors.New("acceleration limit exceeded")

	// ErrGeneratorContract is returned when a generator hands out a malformed entity.
	ErrGeneratorContract = errors.New("generator contract violation")
)

// AccelerationLimitError carries the details of a rejected velocity change.
type AccelerationLimitError struct {
	AgentID   string
	Limit     float64
	Requested float64
}

func (e *AccelerationLimitError) Error() string {
	return fmt.Sprintf("agent %s cannot apply velocity, limit: %g, actual: %g",
		e.AgentID, e.Limit, e.Requested)
}

func (e *AccelerationLimitError) Unwrap() error { return ErrAccelerationLimitExceeded }

// ContractViolationError describes a generated entity that cannot be placed in the world.
type ContractViolationError struct {
	Kind   string // "projectile", "agent", "obstacle", "target area"
	Index  int
	Reason string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s #%d: %s", e.Kind, e.Index, e.Reason)
}

func (e *ContractViolationError) Unwrap() error { return ErrGeneratorContract }
