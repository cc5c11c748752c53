/*
presets.go - Pre-built savings rate configurations

PURPOSE:
  Ready-to-use configuration versions for the common savings families.
  These are convenience constructors matching the cooperative's typical
  commercial terms; administrators adjust them before activation.

AVAILABLE PRESETS:
  StandardConfiguration: Rising bonus from month 4, tiered daily penalty
  LibreConfiguration:    Flat bonus, flat daily penalty

CUSTOMIZATION:
  These are starting points. Real deployments tune the bonus percentages
  and penalty bands per campaign before calling ConfigStore.CreateVersion.

SEE ALSO:
  - engine/config.go: Validation rules the presets already satisfy
*/
package savings

import (
	"github.com/coopkit/contract-engine/engine"
)

// StandardConfiguration returns the STANDARD family preset: bonus rises
// from month 4 through month 12, penalty in three daily bands.
func StandardConfiguration(effectiveAt engine.DatePoint, createdBy string) engine.RateConfigurationVersion {
	return engine.RateConfigurationVersion{
		Family: FamilyStandard,
		BonusTable: engine.BonusTable{
			4:  engine.MustParseDecimal("2"),
			5:  engine.MustParseDecimal("2.5"),
			6:  engine.MustParseDecimal("3"),
			7:  engine.MustParseDecimal("3.5"),
			8:  engine.MustParseDecimal("4"),
			9:  engine.MustParseDecimal("4.5"),
			10: engine.MustParseDecimal("5"),
			11: engine.MustParseDecimal("5.5"),
			12: engine.MustParseDecimal("6"),
		},
		PenaltyRule: engine.TieredRule{
			Steps: []engine.TierStep{
				{FromDay: 1, ToDay: 3, PercentPerDay: engine.MustParseDecimal("1")},
				{FromDay: 4, ToDay: 7, PercentPerDay: engine.MustParseDecimal("2")},
				{FromDay: 8, ToDay: 12, PercentPerDay: engine.MustParseDecimal("3")},
			},
		},
		EffectiveAt: effectiveAt,
		CreatedBy:   createdBy,
	}
}

// LibreConfiguration returns the LIBRE family preset: a small flat bonus
// on months 4..12 and a flat one-percent daily penalty.
func LibreConfiguration(effectiveAt engine.DatePoint, createdBy string) engine.RateConfigurationVersion {
	table := engine.BonusTable{}
	for m := engine.BonusMinMonth; m <= engine.BonusMaxMonth; m++ {
		table[m] = engine.MustParseDecimal("1.5")
	}
	return engine.RateConfigurationVersion{
		Family:      FamilyLibre,
		BonusTable:  table,
		PenaltyRule: engine.FlatRule{PercentPerDay: engine.MustParseDecimal("1")},
		EffectiveAt: effectiveAt,
		CreatedBy:   createdBy,
	}
}
