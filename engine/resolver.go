/*
resolver.go - Per-period status and severity classification

PURPOSE:
  Pure classification of one due period plus "today". Answers two
  questions: what is the period's status (DUE / PAID / REFUSED), and how
  should it display (gray / green / yellow / orange / red)?

SEVERITY RULES:
  gray:   dueAt > today (not yet due; due today counts as not yet overdue)
  green:  paid, always, regardless of lateness at payment time
  orange: overdue but inside the grace head of the window (no penalty yet)
  yellow: overdue, penalized, but penalty below the low-penalty ratio
  red:    overdue beyond the penalty window, penalty at or above the
          low-penalty ratio, or REFUSED

PARAMETERS:
  The grace head and the low-penalty ratio are administratively
  configurable; they are carried in ResolverParams, never hardcoded.

SEE ALSO:
  - penalty.go: Penalty arithmetic reused here
  - calendar.go: Worst-of aggregation over these severities
*/
package engine

import "github.com/shopspring/decimal"

// ResolverParams carries the administratively configurable thresholds.
type ResolverParams struct {
	// GraceDays is the non-penalized head of the overdue window: periods
	// overdue by at most this many days are orange, with no penalty yet.
	GraceDays int

	// LowPenaltyRatio is the "low" threshold for yellow, expressed as a
	// fraction of the period amount (e.g. 0.10 = penalty under 10% of the
	// installment is yellow).
	LowPenaltyRatio decimal.Decimal
}

// DefaultResolverParams mirror the back office's shipped defaults.
func DefaultResolverParams() ResolverParams {
	return ResolverParams{
		GraceDays:       3,
		LowPenaltyRatio: MustParseDecimal("0.1"),
	}
}

// Resolution is the classified state of one period.
type Resolution struct {
	Status   PeriodStatus
	Severity Severity
	Penalty  Penalty // zero for paid/refused/not-yet-overdue periods
}

// Resolve classifies a single period as of today under the given penalty rule.
func Resolve(period DuePeriod, today DatePoint, rule PenaltyRule, params ResolverParams) Resolution {
	switch period.Status {
	case PeriodPaid:
		return Resolution{Status: PeriodPaid, Severity: SeverityGreen}
	case PeriodRefused:
		return Resolution{Status: PeriodRefused, Severity: SeverityRed}
	}

	days := PenaltyDays(period.DueAt, today)
	if days == 0 {
		return Resolution{Status: PeriodDue, Severity: SeverityGray}
	}

	if days <= params.GraceDays {
		return Resolution{Status: PeriodDue, Severity: SeverityOrange, Penalty: Penalty{Days: days}}
	}

	penalty := ComputePenalty(period, today, rule)

	// Past the defined window entirely: red. A zero window means the rule
	// is unbounded (flat) and never expires into red by elapsed days alone.
	if w := rule.WindowDays(); w > 0 && days > w {
		return Resolution{Status: PeriodDue, Severity: SeverityRed, Penalty: penalty}
	}

	threshold := period.Amount.Mul(params.LowPenaltyRatio)
	if penalty.Amount.LessThan(threshold) {
		return Resolution{Status: PeriodDue, Severity: SeverityYellow, Penalty: penalty}
	}
	return Resolution{Status: PeriodDue, Severity: SeverityRed, Penalty: penalty}
}
