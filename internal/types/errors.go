package types

import (
	"errors"
	"fmt"
)

// Error kinds reported by the forecast pipeline. Callers match them with errors.Is.
var (
	// ErrInputValidation covers bad locations, empty or unordered time ranges
	// and missing mandatory weather fields.
	ErrInputValidation = errors.New("invalid input")
	// ErrProfileNotFound is returned when a module or inverter name cannot be resolved.
	ErrProfileNotFound = errors.New("device profile not found")
	// ErrDuplicateID is returned when an array id is registered twice.
	ErrDuplicateID = errors.New("duplicate array id")
	// ErrPrecondition signals an orchestration bug, e.g. decomposing before Prepare.
	ErrPrecondition = errors.New("precondition violated")
)

// UpstreamComputationError wraps a failure inside a numeric model run and
// names the scenario and array whose run failed.
type UpstreamComputationError struct {
	Scenario Scenario
	ArrayID  string
	Err      error
}

func (e *UpstreamComputationError) Error() string {
	if e.ArrayID == "" {
		return fmt.Sprintf("computation failed in scenario %s: %v", e.Scenario, e.Err)
	}
	return fmt.Sprintf("computation failed for array %s in scenario %s: %v", e.ArrayID, e.Scenario, e.Err)
}

func (e *UpstreamComputationError) Unwrap() error { return e.Err }
