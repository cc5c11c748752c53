package engine

import "sort"

// =============================================================================
// CALENDAR AGGREGATION - Day-level totals for the payment calendar
// =============================================================================

// CalendarDayAggregate is the derived day-level view of all due periods
// sharing one calendar date. Days with zero periods have no aggregate.
type CalendarDayAggregate struct {
	Date            DatePoint
	Count           int
	TotalAmount     Money
	PaidAmount      Money
	RemainingAmount Money
	Severity        Severity
}

// SeverityFunc resolves the severity of one period. The caller binds it to
// the period's contract family and active configuration; the aggregator
// itself has no configuration knowledge.
type SeverityFunc func(DuePeriod) Severity

// AggregateCalendar groups periods (across all contracts) by calendar day.
//
// Per day: Count, TotalAmount = sum of amounts, PaidAmount = sum of amounts
// of PAID periods, RemainingAmount = TotalAmount - PaidAmount, Severity =
// the worst severity among that day's periods. Results are ordered by date.
//
// Conservation: the sum of TotalAmount over all aggregates equals the sum
// of Amount over all input periods.
func AggregateCalendar(periods []DuePeriod, severity SeverityFunc) []CalendarDayAggregate {
	byDay := make(map[string]*CalendarDayAggregate)

	for _, p := range periods {
		key := p.DueAt.String()
		agg, ok := byDay[key]
		if !ok {
			agg = &CalendarDayAggregate{
				Date:            p.DueAt,
				TotalAmount:     NewMoney(0),
				PaidAmount:      NewMoney(0),
				RemainingAmount: NewMoney(0),
				Severity:        SeverityGray,
			}
			byDay[key] = agg
		}

		agg.Count++
		agg.TotalAmount = agg.TotalAmount.Add(p.Amount)
		if p.Status == PeriodPaid {
			agg.PaidAmount = agg.PaidAmount.Add(p.Amount)
		}
		agg.RemainingAmount = agg.TotalAmount.Sub(agg.PaidAmount)
		agg.Severity = agg.Severity.Worst(severity(p))
	}

	result := make([]CalendarDayAggregate, 0, len(byDay))
	for _, agg := range byDay {
		result = append(result, *agg)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}
