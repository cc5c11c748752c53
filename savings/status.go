/*
status.go - Savings contract status machine

PURPOSE:
  Derives the contract-level status from the full set of due periods.
  ACTIVE -> LATE_NO_PENALTY -> LATE_WITH_PENALTY -> COMPLETED, with
  TERMINATED reachable from any non-terminal state by explicit
  administrative action only.

DERIVATION RULE:
  Status is recomputed, never stored as an independent fact:
    - every period PAID                          -> COMPLETED
    - earliest non-PAID period resolves red      -> LATE_WITH_PENALTY
    - earliest non-PAID resolves orange/yellow   -> LATE_NO_PENALTY
    - otherwise                                  -> ACTIVE

FAILURE SEMANTICS:
  A malformed period set (duplicate or missing month index) fails with
  ErrInconsistentSchedule rather than guessing.

SEE ALSO:
  - engine/resolver.go: Per-period severity
  - lending/status.go: The lending-family machine
*/
package savings

import "github.com/coopkit/contract-engine/engine"

// DeriveStatus recomputes the savings status from the period set as of today.
func DeriveStatus(periods []engine.DuePeriod, today engine.DatePoint, rule engine.PenaltyRule, params engine.ResolverParams) (Status, error) {
	ordered, err := engine.OrderPeriods(periods)
	if err != nil {
		return "", err
	}

	earliest, ok := engine.EarliestUnpaid(ordered)
	if !ok {
		return StatusCompleted, nil
	}

	res := engine.Resolve(earliest, today, rule, params)
	switch res.Severity {
	case engine.SeverityRed:
		return StatusLateWithPenalty, nil
	case engine.SeverityOrange, engine.SeverityYellow:
		return StatusLateNoPenalty, nil
	default:
		return StatusActive, nil
	}
}

// Terminate performs the explicit administrative termination. Allowed from
// any non-terminal state only.
func Terminate(current Status) (Status, error) {
	if current.Terminal() {
		return current, engine.ErrInvalidTransition
	}
	return StatusTerminated, nil
}
