/*
penalty.go - Lateness classification and penalty amounts

PURPOSE:
  Computes how late a DUE period is and what penalty that lateness carries
  under the active configuration.

ARITHMETIC:
  penaltyDays = max(0, daysBetween(dueAt, today))

  Flat:   penalty = amount * percentPerDay * penaltyDays / 100
  Tiered: penalty = amount * rate(matched step) * penaltyDays / 100

  The matched step's rate multiplies the FULL elapsed day count, not only
  the days falling inside that step. The rule lives behind
  PenaltyRule.RatePerDay so the multiplication rule can be swapped without
  touching calling code.

CLAMPING:
  The rule only defines behavior for days 1..N; days beyond N use the rate
  of the last step. Days <= 0 mean "not yet overdue": no penalty.

SEE ALSO:
  - config.go: FlatRule / TieredRule and their RatePerDay
  - resolver.go: Turns penalty state into a severity color
*/
package engine

import "github.com/shopspring/decimal"

// Penalty is the computed lateness state of a single DUE period.
type Penalty struct {
	Days   int
	Amount Money
}

// PenaltyDays returns the elapsed overdue days for a period, floored at zero.
func PenaltyDays(dueAt, today DatePoint) int {
	days := DaysBetween(dueAt, today)
	if days < 0 {
		return 0
	}
	return days
}

// ComputePenalty computes the penalty a still-DUE period carries as of today.
// Periods not yet overdue carry a zero penalty.
func ComputePenalty(period DuePeriod, today DatePoint, rule PenaltyRule) Penalty {
	days := PenaltyDays(period.DueAt, today)
	if days == 0 {
		return Penalty{Days: 0, Amount: NewMoney(0)}
	}

	rate := rule.RatePerDay(days)
	return Penalty{
		Days:   days,
		Amount: period.Amount.Percent(rate.Mul(decimal.NewFromInt(int64(days)))),
	}
}
