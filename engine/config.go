/*
config.go - Versioned, effective-dated rate configuration

PURPOSE:
  Defines the bonus/penalty configuration that drives every computation in
  the engine. Configurations are versioned per contract family, with exactly
  one active version per family at a time.

KEY CONCEPTS:
  - BonusTable: month-index-keyed percentage (months 4..12 only)
  - PenaltyRule: closed variant, Flat or Tiered - a calculator can never be
    handed an ambiguous or empty rule
  - RateConfigurationVersion: identity + tables + effectiveAt + active flag

EXCLUSIVE ACTIVATION:
  The active flag is not a field anyone may set directly. It is mutated
  ONLY by ConfigStore.Activate, which deactivates every other version of
  the same family atomically. See store.go.

VALIDATION:
  Validate() is called at authoring time. Malformed tables are rejected
  with ErrInvalidConfiguration, never coerced into something runnable.

SEE ALSO:
  - penalty.go: Consumes PenaltyRule
  - bonus.go: Consumes BonusTable
  - store.go: ConfigStore contract
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bonus tables are defined for months 4..12 inclusive; months 1-3 and
// months beyond 12 never earn a bonus.
const (
	BonusMinMonth = 4
	BonusMaxMonth = 12
)

// =============================================================================
// BONUS TABLE - Month index -> bonus percentage
// =============================================================================

type BonusTable map[int]decimal.Decimal

func (t BonusTable) Validate() error {
	for month, pct := range t {
		if month < BonusMinMonth || month > BonusMaxMonth {
			return &InvalidConfigurationError{
				Field:  "bonusTable",
				Reason: fmt.Sprintf("month index %d outside %d..%d", month, BonusMinMonth, BonusMaxMonth),
			}
		}
		if pct.IsNegative() {
			return &InvalidConfigurationError{
				Field:  "bonusTable",
				Reason: fmt.Sprintf("negative percentage for month %d", month),
			}
		}
	}
	return nil
}

// =============================================================================
// PENALTY RULE - Closed variant: Flat or Tiered
// =============================================================================

// PenaltyRule defines how overdue days translate into a daily penalty rate.
// The variant set is closed (sealed interface): exactly FlatRule and
// TieredRule exist, so calculators never face an ambiguous rule shape.
type PenaltyRule interface {
	// RatePerDay returns the percent-per-day rate for the given number of
	// overdue days. Days beyond the defined window use the last step's rate;
	// days <= 0 never reach here (not yet overdue, no penalty).
	//
	// This is the single swap point for the tier-to-amount multiplication
	// rule; see penalty.go.
	RatePerDay(days int) decimal.Decimal

	// WindowDays returns the last day the rule explicitly defines.
	// Zero means the window is unbounded (flat rules).
	WindowDays() int

	Validate() error

	sealedPenaltyRule()
}

// FlatRule applies one rate for every overdue day.
type FlatRule struct {
	PercentPerDay decimal.Decimal
}

func (r FlatRule) RatePerDay(days int) decimal.Decimal { return r.PercentPerDay }

// WindowDays for a flat rule is unbounded.
func (r FlatRule) WindowDays() int { return 0 }

func (r FlatRule) Validate() error {
	if r.PercentPerDay.IsNegative() {
		return &InvalidConfigurationError{Field: "penaltyRule", Reason: "negative flat rate"}
	}
	return nil
}

func (r FlatRule) sealedPenaltyRule() {}

// TierStep is one [FromDay, ToDay] band of a tiered rule. ToDay is inclusive.
type TierStep struct {
	FromDay       int
	ToDay         int
	PercentPerDay decimal.Decimal
}

// TieredRule applies the rate of the step containing the elapsed day count.
// Steps must be contiguous, non-overlapping, and start at day 1.
type TieredRule struct {
	Steps []TierStep
}

func (r TieredRule) RatePerDay(days int) decimal.Decimal {
	for _, step := range r.Steps {
		if days >= step.FromDay && days <= step.ToDay {
			return step.PercentPerDay
		}
	}
	// Beyond the window: clamp to the last step's rate.
	if n := len(r.Steps); n > 0 && days > r.Steps[n-1].ToDay {
		return r.Steps[n-1].PercentPerDay
	}
	return decimal.Zero
}

func (r TieredRule) WindowDays() int {
	if n := len(r.Steps); n > 0 {
		return r.Steps[n-1].ToDay
	}
	return 0
}

func (r TieredRule) Validate() error {
	if len(r.Steps) == 0 {
		return &InvalidConfigurationError{Field: "penaltyRule", Reason: "tiered rule has no steps"}
	}
	if r.Steps[0].FromDay != 1 {
		return &InvalidConfigurationError{Field: "penaltyRule", Reason: "first step must start at day 1"}
	}
	prevTo := 0
	for i, step := range r.Steps {
		if step.FromDay > step.ToDay {
			return &InvalidConfigurationError{
				Field:  "penaltyRule",
				Reason: fmt.Sprintf("step %d: fromDay %d after toDay %d", i, step.FromDay, step.ToDay),
			}
		}
		if step.FromDay != prevTo+1 {
			return &InvalidConfigurationError{
				Field:  "penaltyRule",
				Reason: fmt.Sprintf("step %d: fromDay %d not contiguous with previous toDay %d", i, step.FromDay, prevTo),
			}
		}
		if step.PercentPerDay.IsNegative() {
			return &InvalidConfigurationError{
				Field:  "penaltyRule",
				Reason: fmt.Sprintf("step %d: negative rate", i),
			}
		}
		prevTo = step.ToDay
	}
	return nil
}

func (r TieredRule) sealedPenaltyRule() {}

// =============================================================================
// RATE CONFIGURATION VERSION
// =============================================================================

// RateConfigurationVersion is one versioned bonus/penalty configuration for
// a contract family.
//
// INVARIANT: at most one version per family has Active == true. Activating
// a version deactivates every other version of the SAME family only.
type RateConfigurationVersion struct {
	ID          VersionID
	Family      Family
	BonusTable  BonusTable
	PenaltyRule PenaltyRule
	EffectiveAt DatePoint
	Active      bool

	// Audit fields
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the version at authoring time.
func (v RateConfigurationVersion) Validate() error {
	if v.Family == "" {
		return &InvalidConfigurationError{Field: "family", Reason: "empty family code"}
	}
	if v.PenaltyRule == nil {
		return &InvalidConfigurationError{Field: "penaltyRule", Reason: "missing penalty rule"}
	}
	if err := v.BonusTable.Validate(); err != nil {
		return err
	}
	return v.PenaltyRule.Validate()
}
