package savings_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopkit/contract-engine/engine"
	"github.com/coopkit/contract-engine/savings"
)

func standardContract() engine.Contract {
	return engine.Contract{
		ID:            "ct-1",
		Family:        savings.FamilyStandard,
		Status:        string(savings.StatusActive),
		MonthlyAmount: money("5000"),
		FirstDueAt:    date(2026, time.January, 15),
		Months:        12,
	}
}

// =============================================================================
// PROJECTION TESTS
// =============================================================================

func TestProject_FiveMonthsPaid(t *testing.T) {
	// GIVEN: A standard contract with months 1-5 paid on time, viewed
	//        before month 6 falls due
	// WHEN: Projecting
	// THEN: Month index 5, bonus = 5000*(2% + 2.5%) = 225, no penalties,
	//       conservation between paid and remaining

	cfg := savings.StandardConfiguration(date(2026, time.January, 1), "admin")
	contract := standardContract()
	periods := schedule(5)
	today := date(2026, time.June, 14)

	p, err := savings.Project(contract, periods, today, cfg, params())
	require.NoError(t, err)

	assert.Equal(t, 5, p.CurrentMonthIndex)
	assert.Equal(t, savings.StatusActive, p.Status)
	assert.True(t, p.BonusAccrued.Equal(money("225")), "got %s", p.BonusAccrued)
	assert.True(t, p.PenaltiesTotal.IsZero())
	assert.True(t, p.AmountPaid.Equal(money("25000")))
	assert.True(t, p.AmountRemaining.Equal(money("35000")))
	assert.True(t, p.AmountPaid.Add(p.AmountRemaining).Equal(money("60000")))

	require.NotNil(t, p.NextDueAt)
	assert.True(t, p.NextDueAt.Equal(date(2026, time.June, 15)))
}

func TestProject_BeforeBonusWindow_NoBonus(t *testing.T) {
	// GIVEN: Only two months paid
	// WHEN: Projecting
	// THEN: Zero bonus; the window opens at month 4

	cfg := savings.StandardConfiguration(date(2026, time.January, 1), "admin")
	p, err := savings.Project(standardContract(), schedule(2), date(2026, time.March, 1), cfg, params())
	require.NoError(t, err)

	assert.Equal(t, 2, p.CurrentMonthIndex)
	assert.True(t, p.BonusAccrued.IsZero())
}

func TestProject_Completed_FullBonus(t *testing.T) {
	// GIVEN: All 12 months paid
	// WHEN: Projecting
	// THEN: COMPLETED, bonus sums the full table: 5000 * 36% = 1800

	cfg := savings.StandardConfiguration(date(2026, time.January, 1), "admin")
	p, err := savings.Project(standardContract(), schedule(12), date(2027, time.January, 1), cfg, params())
	require.NoError(t, err)

	assert.Equal(t, savings.StatusCompleted, p.Status)
	assert.Equal(t, 12, p.CurrentMonthIndex)
	assert.True(t, p.BonusAccrued.Equal(money("1800")), "got %s", p.BonusAccrued)
	assert.True(t, p.AmountRemaining.IsZero())
	assert.Nil(t, p.NextDueAt)
}

func TestProject_OverduePeriod_CarriesLivePenalty(t *testing.T) {
	// GIVEN: Month 6 overdue 5 days: 5000 * 2% * 5 = 500
	// WHEN: Projecting
	// THEN: PenaltiesTotal shows the live penalty, status degrades

	cfg := savings.StandardConfiguration(date(2026, time.January, 1), "admin")
	p, err := savings.Project(standardContract(), schedule(5), date(2026, time.June, 20), cfg, params())
	require.NoError(t, err)

	assert.True(t, p.PenaltiesTotal.Equal(money("500")), "got %s", p.PenaltiesTotal)
	assert.Equal(t, savings.StatusLateWithPenalty, p.Status)
}

func TestProject_Idempotent(t *testing.T) {
	// Projection is a pure recomputation: same inputs, same output.
	cfg := savings.StandardConfiguration(date(2026, time.January, 1), "admin")
	today := date(2026, time.June, 14)

	a, err := savings.Project(standardContract(), schedule(5), today, cfg, params())
	require.NoError(t, err)
	b, err := savings.Project(standardContract(), schedule(5), today, cfg, params())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
