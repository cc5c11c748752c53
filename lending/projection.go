/*
projection.go - Derived running totals for a lending contract

PURPOSE:
  Computes the loan-side read model: installments paid, amounts moved and
  outstanding, accumulated penalties, and the derived lifecycle status.
  The lending counterpart of the savings projection.

DERIVED, NEVER STORED:
  Everything here is recomputed from the period set and the active
  configuration on every read. Pre-disbursement and terminal statuses pass
  through untouched; only running loans re-derive.

SEE ALSO:
  - status.go: DeriveRunning
  - engine/summary.go: The underlying rollup
*/
package lending

import "github.com/coopkit/contract-engine/engine"

// Projection is the derived state of one lending contract.
//
// INVARIANTS:
//   - InstallmentsPaid <= the scheduled installment count
//   - AmountPaid + AmountRemaining == total scheduled amount
type Projection struct {
	InstallmentsPaid int
	AmountPaid       engine.Money
	AmountRemaining  engine.Money
	OverdueAmount    engine.Money
	PenaltiesTotal   engine.Money
	NextDueAt        *engine.DatePoint
	Status           Status
}

// Project computes the projection for one lending contract.
func Project(c engine.Contract, periods []engine.DuePeriod, today engine.DatePoint, cfg engine.RateConfigurationVersion, params engine.ResolverParams) (Projection, error) {
	summary, err := engine.Summarize(periods, today, cfg.PenaltyRule, params)
	if err != nil {
		return Projection{}, err
	}

	status, err := DeriveRunning(Status(c.Status), periods, today, cfg.PenaltyRule, params)
	if err != nil {
		return Projection{}, err
	}

	return Projection{
		InstallmentsPaid: summary.PaidPeriods,
		AmountPaid:       summary.PaidAmount,
		AmountRemaining:  summary.RemainingAmount,
		OverdueAmount:    summary.OverdueAmount,
		PenaltiesTotal:   summary.PenaltiesTotal,
		NextDueAt:        summary.NextDueAt,
		Status:           status,
	}, nil
}
