package engine

import "sort"

// =============================================================================
// SCHEDULE CONSISTENCY - Guard before any status derivation
// =============================================================================

// OrderPeriods sorts a contract's periods by month index and verifies the
// sequence is exactly 1..n with no duplicates and no gaps. Status derivation
// fails on a malformed set rather than guessing.
func OrderPeriods(periods []DuePeriod) ([]DuePeriod, error) {
	ordered := make([]DuePeriod, len(periods))
	copy(ordered, periods)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].MonthIndex < ordered[j].MonthIndex
	})

	for i, p := range ordered {
		want := i + 1
		if p.MonthIndex == want {
			continue
		}
		reason := "missing"
		at := want
		if i > 0 && p.MonthIndex == ordered[i-1].MonthIndex {
			reason = "duplicate"
			at = p.MonthIndex
		}
		var contractID ContractID
		if len(ordered) > 0 {
			contractID = ordered[0].ContractID
		}
		return nil, &InconsistentScheduleError{
			ContractID: contractID,
			MonthIndex: at,
			Reason:     reason,
		}
	}
	return ordered, nil
}

// EarliestUnpaid returns the first period (by month index) that is not PAID,
// or false if every period is paid. Input must already be ordered.
func EarliestUnpaid(ordered []DuePeriod) (DuePeriod, bool) {
	for _, p := range ordered {
		if p.Status != PeriodPaid {
			return p, true
		}
	}
	return DuePeriod{}, false
}
