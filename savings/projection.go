package savings

import "github.com/coopkit/contract-engine/engine"

// =============================================================================
// PROJECTION - Derived running totals for one savings contract
// =============================================================================

// Projection carries the derived totals the admin screens display. It is
// recomputed from the period set and the active configuration on every
// read; nothing here is independently settable state.
//
// INVARIANTS:
//   - CurrentMonthIndex <= months planned
//   - AmountPaid + AmountRemaining == total scheduled amount
//   - BonusAccrued and PenaltiesTotal only grow as months complete
type Projection struct {
	CurrentMonthIndex int
	NominalPaid       engine.Money
	BonusAccrued      engine.Money
	PenaltiesTotal    engine.Money
	AmountPaid        engine.Money
	AmountRemaining   engine.Money
	NextDueAt         *engine.DatePoint
	Status            Status
}

// Project computes the projection for one savings contract.
//
// CurrentMonthIndex counts completed (PAID) months; the bonus accrual is a
// full idempotent recomputation over that progress.
func Project(c engine.Contract, periods []engine.DuePeriod, today engine.DatePoint, cfg engine.RateConfigurationVersion, params engine.ResolverParams) (Projection, error) {
	summary, err := engine.Summarize(periods, today, cfg.PenaltyRule, params)
	if err != nil {
		return Projection{}, err
	}

	status, err := DeriveStatus(periods, today, cfg.PenaltyRule, params)
	if err != nil {
		return Projection{}, err
	}

	currentMonth := summary.PaidPeriods
	return Projection{
		CurrentMonthIndex: currentMonth,
		NominalPaid:       summary.PaidAmount,
		BonusAccrued:      engine.AccruedBonus(c.MonthlyAmount, currentMonth, cfg.BonusTable),
		PenaltiesTotal:    summary.PenaltiesTotal,
		AmountPaid:        summary.PaidAmount,
		AmountRemaining:   summary.RemainingAmount,
		NextDueAt:         summary.NextDueAt,
		Status:            status,
	}, nil
}
