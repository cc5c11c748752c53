package lending_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopkit/contract-engine/engine"
	"github.com/coopkit/contract-engine/lending"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Shared with status_test.go.

func money(s string) engine.Money {
	m, err := engine.MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func date(year int, month time.Month, day int) engine.DatePoint {
	return engine.NewDate(year, month, day)
}

func terms(principal, rate string, months int) lending.LoanTerms {
	return lending.LoanTerms{
		Principal:      money(principal),
		InterestRate:   engine.MustParseDecimal(rate),
		DurationMonths: months,
	}
}

// =============================================================================
// LOAN TERMS TESTS
// =============================================================================

func TestLoanTerms_TotalDue(t *testing.T) {
	// 100000 principal at 12% over the term: 12000 interest, 112000 due.
	tm := terms("100000", "12", 12)

	assert.True(t, tm.TotalInterest().Equal(money("12000")))
	assert.True(t, tm.TotalDue().Equal(money("112000")))
}

// =============================================================================
// INSTALLMENT PLAN TESTS
// =============================================================================

func TestLoanPlan_EvenSplit(t *testing.T) {
	// GIVEN: 112000 total due over 8 months (divides evenly)
	// WHEN: Building the plan
	// THEN: 14000 every month, final included

	plan := lending.NewLoanPlan(terms("100000", "12", 8))

	for i := 1; i <= 8; i++ {
		assert.True(t, plan.AmountAt(i).Equal(money("14000")), "month %d: %s", i, plan.AmountAt(i))
	}
}

func TestLoanPlan_ResidueOnFinalInstallment(t *testing.T) {
	// GIVEN: 10000 total due over 3 months: 3333.33 rounded down per month
	// WHEN: Building the plan
	// THEN: Final month absorbs the residue: 10000 - 2*3333.33 = 3333.34

	plan := lending.NewLoanPlan(terms("10000", "0", 3))

	assert.True(t, plan.AmountAt(1).Equal(money("3333.33")))
	assert.True(t, plan.AmountAt(2).Equal(money("3333.33")))
	assert.True(t, plan.AmountAt(3).Equal(money("3333.34")), "got %s", plan.AmountAt(3))
}

func TestLoanPlan_ScheduleSumsToTotalDue(t *testing.T) {
	// GIVEN: Awkward terms that do not divide evenly
	// WHEN: Generating the full schedule
	// THEN: The schedule total equals principal + interest exactly

	tm := terms("99999.99", "17.5", 11)
	plan := lending.NewLoanPlan(tm)
	periods := engine.GenerateSchedule("loan-1", date(2026, time.February, 1), plan, tm.DurationMonths)

	require.Len(t, periods, 11)
	assert.True(t, engine.TotalScheduled(periods).Equal(tm.TotalDue()),
		"scheduled %s, due %s", engine.TotalScheduled(periods), tm.TotalDue())
}

func TestLoanPlan_SingleMonth(t *testing.T) {
	plan := lending.NewLoanPlan(terms("5000", "10", 1))
	assert.True(t, plan.AmountAt(1).Equal(money("5500")))
}
