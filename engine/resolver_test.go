package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coopkit/contract-engine/engine"
)

// =============================================================================
// PAYMENT STATUS RESOLUTION TESTS
// =============================================================================
// One test per severity color, plus the boundaries between them.

func TestResolve_Paid_Green(t *testing.T) {
	// GIVEN: A paid period, regardless of how late the payment was
	// WHEN: Resolving today
	// THEN: Green, no live penalty

	period := paidPeriod(1, date(2026, time.June, 10), "10000", date(2026, time.June, 30))
	res := engine.Resolve(period, date(2026, time.July, 15), flatRule("1"), engine.DefaultResolverParams())

	assert.Equal(t, engine.SeverityGreen, res.Severity)
	assert.Equal(t, 0, res.Penalty.Days)
}

func TestResolve_Refused_Red(t *testing.T) {
	period := duePeriod(1, date(2026, time.June, 10), "10000")
	period.Status = engine.PeriodRefused

	res := engine.Resolve(period, date(2026, time.June, 11), flatRule("1"), engine.DefaultResolverParams())
	assert.Equal(t, engine.SeverityRed, res.Severity)
}

func TestResolve_NotYetOverdue_Gray(t *testing.T) {
	// GIVEN: A DUE period whose date has not arrived
	// WHEN: Resolving
	// THEN: Gray, zero penalty

	period := duePeriod(1, date(2026, time.June, 10), "10000")
	res := engine.Resolve(period, date(2026, time.June, 10), flatRule("1"), engine.DefaultResolverParams())

	assert.Equal(t, engine.SeverityGray, res.Severity)
	assert.True(t, res.Penalty.Amount.IsZero())
}

func TestResolve_InsideGrace_Orange(t *testing.T) {
	// GIVEN: Default grace of 3 days, period 3 days late
	// WHEN: Resolving
	// THEN: Orange, days counted but no penalty amount yet

	period := duePeriod(1, date(2026, time.June, 10), "10000")
	res := engine.Resolve(period, date(2026, time.June, 13), standardTiers(), engine.DefaultResolverParams())

	assert.Equal(t, engine.SeverityOrange, res.Severity)
	assert.Equal(t, 3, res.Penalty.Days)
	assert.True(t, res.Penalty.Amount.IsZero())
}

func TestResolve_LowPenalty_Yellow(t *testing.T) {
	// GIVEN: 4 days late at 2%/day: penalty = 10000 * 2% * 4 = 800,
	//        under the 10% threshold (1000)
	// WHEN: Resolving
	// THEN: Yellow with the live penalty attached

	period := duePeriod(1, date(2026, time.June, 10), "10000")
	res := engine.Resolve(period, date(2026, time.June, 14), standardTiers(), engine.DefaultResolverParams())

	assert.Equal(t, engine.SeverityYellow, res.Severity)
	assert.Equal(t, 4, res.Penalty.Days)
	assert.True(t, res.Penalty.Amount.Equal(money("800")), "got %s", res.Penalty.Amount)
}

func TestResolve_HighPenalty_Red(t *testing.T) {
	// GIVEN: 6 days late at 2%/day: penalty = 10000 * 2% * 6 = 1200,
	//        at or over the 10% threshold
	// WHEN: Resolving
	// THEN: Red

	period := duePeriod(1, date(2026, time.June, 10), "10000")
	res := engine.Resolve(period, date(2026, time.June, 16), standardTiers(), engine.DefaultResolverParams())

	assert.Equal(t, engine.SeverityRed, res.Severity)
}

func TestResolve_BeyondWindow_Red(t *testing.T) {
	// GIVEN: 13 days late against a rule defined up to day 12
	// WHEN: Resolving
	// THEN: Red regardless of the penalty-to-amount ratio

	period := duePeriod(1, date(2026, time.June, 10), "1000000")
	res := engine.Resolve(period, date(2026, time.June, 23), standardTiers(), engine.DefaultResolverParams())

	assert.Equal(t, engine.SeverityRed, res.Severity)
	assert.Equal(t, 13, res.Penalty.Days)
}

func TestResolve_FlatRule_NeverExpiresIntoRedByDaysAlone(t *testing.T) {
	// GIVEN: A flat rule (unbounded window) with a tiny rate, 100 days late
	//        but penalty still under the threshold
	// WHEN: Resolving
	// THEN: Yellow; only the ratio moves a flat-rule period to red

	period := duePeriod(1, date(2026, time.March, 1), "10000")
	res := engine.Resolve(period, date(2026, time.June, 9), flatRule("0.0001"), engine.DefaultResolverParams())

	assert.Equal(t, engine.SeverityYellow, res.Severity)
}

func TestSeverity_WorstOrdering(t *testing.T) {
	assert.Equal(t, engine.SeverityRed, engine.SeverityYellow.Worst(engine.SeverityRed))
	assert.Equal(t, engine.SeverityOrange, engine.SeverityOrange.Worst(engine.SeverityGreen))
	assert.Equal(t, engine.SeverityGreen, engine.SeverityGray.Worst(engine.SeverityGreen))
}
