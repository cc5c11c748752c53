package engine

// =============================================================================
// BONUS ACCRUAL - Progress reward for savings contracts
// =============================================================================

// AccruedBonus computes the total bonus earned through currentMonthIndex.
//
// For each completed month m from 4 up to min(currentMonthIndex, 12), the
// table's percentage of the monthly amount is added. Months 1-3 and months
// beyond 12 contribute zero.
//
// Recomputation is idempotent: this is a full recalculation over the month
// range, not an incremental add-on-each-call. Monotonic in currentMonthIndex
// because table entries are non-negative.
func AccruedBonus(monthlyAmount Money, currentMonthIndex int, table BonusTable) Money {
	total := NewMoney(0)

	last := currentMonthIndex
	if last > BonusMaxMonth {
		last = BonusMaxMonth
	}
	for m := BonusMinMonth; m <= last; m++ {
		pct, ok := table[m]
		if !ok {
			continue
		}
		total = total.Add(monthlyAmount.Percent(pct))
	}
	return total
}
