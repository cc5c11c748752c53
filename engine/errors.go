/*
errors.go - Centralized error types for the contract engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages and stores wrap these errors with additional context.

ERROR CATEGORIES:
  1. Configuration errors - malformed or missing rate configurations
  2. Schedule errors - data-integrity problems in a period set
  3. Store errors - persistence and concurrency failures

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, engine.ErrNoActiveConfiguration) {
        // fatal for this computation: never fall back to a default rate
    }

SEE ALSO:
  - config.go: Raises configuration errors at authoring time
  - status derivation in savings/ and lending/: raises schedule errors
  - store implementations: raise conflict and not-found errors
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfiguration is returned when a bonus table or penalty rule
	// is malformed. Rejected at authoring time, never silently coerced.
	ErrInvalidConfiguration = errors.New("invalid rate configuration")

	// ErrNoActiveConfiguration is returned when a computation needs the
	// active version for a family/date and none exists. Fatal to that
	// computation; there is no fallback rate.
	ErrNoActiveConfiguration = errors.New("no active rate configuration")

	// ErrInconsistentSchedule is returned when a period set has duplicate or
	// missing month indices. Signals a data-integrity bug upstream.
	ErrInconsistentSchedule = errors.New("inconsistent schedule")

	// ErrConcurrentActivation is returned when two activations raced on the
	// same family. The loser is reported, never silently dropped.
	ErrConcurrentActivation = errors.New("concurrent activation conflict")

	// ErrVersionNotFound is returned when a referenced configuration version
	// doesn't exist.
	ErrVersionNotFound = errors.New("configuration version not found")

	// ErrContractNotFound is returned when a referenced contract doesn't exist.
	ErrContractNotFound = errors.New("contract not found")

	// ErrPeriodNotFound is returned when a (contract, month index) pair has
	// no due period.
	ErrPeriodNotFound = errors.New("due period not found")

	// ErrPeriodNotDue is returned when recording a payment or refusal against
	// a period that is no longer DUE. PAID and REFUSED are terminal.
	ErrPeriodNotDue = errors.New("due period is not in DUE state")

	// ErrInvalidTransition is returned by the status machines when an
	// explicit administrative transition is not allowed from the current state.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidConfigurationError reports which part of a configuration is malformed.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid rate configuration: %s: %s", e.Field, e.Reason)
}

func (e *InvalidConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// InconsistentScheduleError reports the month index at fault.
type InconsistentScheduleError struct {
	ContractID ContractID
	MonthIndex int
	Reason     string // "duplicate" or "missing"
}

func (e *InconsistentScheduleError) Error() string {
	return fmt.Sprintf("inconsistent schedule for %s: %s month index %d",
		e.ContractID, e.Reason, e.MonthIndex)
}

func (e *InconsistentScheduleError) Unwrap() error {
	return ErrInconsistentSchedule
}

// NoActiveConfigurationError reports which family/date lookup failed.
type NoActiveConfigurationError struct {
	Family Family
	AsOf   DatePoint
}

func (e *NoActiveConfigurationError) Error() string {
	return fmt.Sprintf("no active rate configuration for family %s as of %s", e.Family, e.AsOf)
}

func (e *NoActiveConfigurationError) Unwrap() error {
	return ErrNoActiveConfiguration
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrPeriodNotDue) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrVersionNotFound) ||
		errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrPeriodNotFound) ||
		errors.Is(err, ErrNoActiveConfiguration)
}

// IsConflict returns true if the error indicates a lost race.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrentActivation)
}
