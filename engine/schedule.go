/*
schedule.go - Payment schedule generation

PURPOSE:
  Produces the ordered list of due periods for a contract from its terms.
  Generation is a pure function of its inputs: calling it twice with
  identical inputs yields identical output.

KEY CONCEPTS:
  - InstallmentPlan: How much is due each month. Savings contracts use a
    constant amount; lending contracts use a fixed installment with the
    rounding residue absorbed by the final period (see lending package).
  - Duration cap: Generation never emits more periods than the cap.

DUE DATES:
  dueAt(i) = firstDueAt + (i-1) months, incrementing the month component.

SEE ALSO:
  - lending/installments.go: Fixed-installment plan with residue
  - consistency.go: Integrity check over a generated/stored period set
*/
package engine

// =============================================================================
// INSTALLMENT PLAN - Amount due per month index
// =============================================================================

// InstallmentPlan answers how much is due at each 1-based month index.
type InstallmentPlan interface {
	// Installments returns the number of scheduled periods.
	Installments() int

	// AmountAt returns the amount due at the given 1-based month index.
	AmountAt(monthIndex int) Money
}

// ConstantPlan is the savings-family plan: the same monthly amount for
// every period.
type ConstantPlan struct {
	Monthly Money
	Months  int
}

func (p ConstantPlan) Installments() int        { return p.Months }
func (p ConstantPlan) AmountAt(_ int) Money     { return p.Monthly }

var _ InstallmentPlan = ConstantPlan{}

// =============================================================================
// SCHEDULE GENERATION
// =============================================================================

// GenerateSchedule produces one DuePeriod skeleton per month starting at
// firstDueAt, capped at durationCap entries. All periods start out DUE.
func GenerateSchedule(contractID ContractID, firstDueAt DatePoint, plan InstallmentPlan, durationCap int) []DuePeriod {
	n := plan.Installments()
	if durationCap > 0 && n > durationCap {
		n = durationCap
	}

	periods := make([]DuePeriod, 0, n)
	for i := 1; i <= n; i++ {
		periods = append(periods, DuePeriod{
			ContractID: contractID,
			MonthIndex: i,
			DueAt:      firstDueAt.AddMonths(i - 1),
			Amount:     plan.AmountAt(i),
			Status:     PeriodDue,
		})
	}
	return periods
}

// TotalScheduled returns the sum of all scheduled amounts.
func TotalScheduled(periods []DuePeriod) Money {
	total := NewMoney(0)
	for _, p := range periods {
		total = total.Add(p.Amount)
	}
	return total
}
