package engine

// =============================================================================
// SCHEDULE SUMMARY - Per-contract rollup for reporting screens
// =============================================================================

// ScheduleSummary rolls a contract's period set into the totals the
// reporting and export layers consume.
type ScheduleSummary struct {
	TotalPeriods   int
	PaidPeriods    int
	OverduePeriods int
	RefusedPeriods int

	TotalAmount     Money
	PaidAmount      Money
	RemainingAmount Money
	OverdueAmount   Money
	PenaltiesTotal  Money

	NextDueAt *DatePoint
}

// Summarize computes the rollup as of today.
//
// PenaltiesTotal combines penalties frozen on paid periods with the live
// penalty carried by each overdue DUE period; it only grows as time passes
// or payments land.
func Summarize(periods []DuePeriod, today DatePoint, rule PenaltyRule, params ResolverParams) (ScheduleSummary, error) {
	ordered, err := OrderPeriods(periods)
	if err != nil {
		return ScheduleSummary{}, err
	}

	s := ScheduleSummary{
		TotalAmount:     NewMoney(0),
		PaidAmount:      NewMoney(0),
		RemainingAmount: NewMoney(0),
		OverdueAmount:   NewMoney(0),
		PenaltiesTotal:  NewMoney(0),
	}

	for _, p := range ordered {
		s.TotalPeriods++
		s.TotalAmount = s.TotalAmount.Add(p.Amount)

		switch p.Status {
		case PeriodPaid:
			s.PaidPeriods++
			s.PaidAmount = s.PaidAmount.Add(p.Amount)
			s.PenaltiesTotal = s.PenaltiesTotal.Add(p.PenaltyApplied)
		case PeriodRefused:
			s.RefusedPeriods++
		default:
			res := Resolve(p, today, rule, params)
			if res.Penalty.Days > 0 {
				s.OverduePeriods++
				s.OverdueAmount = s.OverdueAmount.Add(p.Amount)
				s.PenaltiesTotal = s.PenaltiesTotal.Add(res.Penalty.Amount)
			}
			if s.NextDueAt == nil {
				due := p.DueAt
				s.NextDueAt = &due
			}
		}
	}

	s.RemainingAmount = s.TotalAmount.Sub(s.PaidAmount)
	return s, nil
}
