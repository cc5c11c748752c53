/*
status.go - Lending contract status machine

PURPOSE:
  Two kinds of movement:

  1. Explicit workflow transitions (Advance): the pre-disbursement chain
     DRAFT -> PENDING -> APPROVED -> SIMULATED -> ACTIVE, and the
     administrative terminals TRANSFORMED / BLOCKED / DISCHARGED / CLOSED
     reachable from any running state. These are driven by the external
     origination workflow and are guarded, never derived.

  2. Derivation (DeriveRunning): once the loan is running, the earliest
     non-paid-period rule promotes ACTIVE to OVERDUE (a red-severity
     unpaid period exists) or PARTIAL (a period was explicitly paid below
     its scheduled amount). OVERDUE outranks PARTIAL when both hold.

FAILURE SEMANTICS:
  Malformed period sets fail with ErrInconsistentSchedule; disallowed
  workflow transitions fail with ErrInvalidTransition.

SEE ALSO:
  - savings/status.go: The savings-family machine
  - engine/resolver.go: Per-period severity
*/
package lending

import "github.com/coopkit/contract-engine/engine"

// workflow lists the allowed explicit transitions.
var workflow = map[Status][]Status{
	StatusDraft:     {StatusPending},
	StatusPending:   {StatusApproved},
	StatusApproved:  {StatusSimulated},
	StatusSimulated: {StatusActive},
	StatusActive:    {StatusTransformed, StatusBlocked, StatusDischarged, StatusClosed},
	StatusOverdue:   {StatusTransformed, StatusBlocked, StatusDischarged, StatusClosed},
	StatusPartial:   {StatusTransformed, StatusBlocked, StatusDischarged, StatusClosed},
}

// Advance performs an explicit workflow transition.
func Advance(from, to Status) (Status, error) {
	for _, allowed := range workflow[from] {
		if allowed == to {
			return to, nil
		}
	}
	return from, engine.ErrInvalidTransition
}

// DeriveRunning recomputes the status of a running loan from its period set.
// Pre-disbursement and terminal statuses pass through untouched: they are
// explicit workflow facts, not derived ones.
func DeriveRunning(current Status, periods []engine.DuePeriod, today engine.DatePoint, rule engine.PenaltyRule, params engine.ResolverParams) (Status, error) {
	if !current.Running() {
		return current, nil
	}

	ordered, err := engine.OrderPeriods(periods)
	if err != nil {
		return "", err
	}

	earliest, unpaid := engine.EarliestUnpaid(ordered)
	if unpaid {
		res := engine.Resolve(earliest, today, rule, params)
		if res.Severity == engine.SeverityRed {
			return StatusOverdue, nil
		}
	}

	for _, p := range ordered {
		if p.Partial {
			return StatusPartial, nil
		}
	}
	return StatusActive, nil
}
