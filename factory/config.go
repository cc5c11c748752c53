/*
Package factory provides JSON to Go rate-configuration conversion.

PURPOSE:
  Converts JSON configuration definitions into engine.RateConfigurationVersion
  values and back. This enables rate authoring without code changes - the
  back office edits bonus tables and penalty bands as JSON, and the factory
  creates the proper Go structs.

WHY JSON?
  - Non-developers can author configurations
  - Easy integration with the admin UI
  - Database storage of configuration payloads

JSON SCHEMA:
  {
    "family": "STANDARD",
    "effective_at": "2026-01-01",
    "bonus_table": {"4": "2", "5": "2.5"},
    "penalty_rule": {
      "type": "tiered",
      "steps": [
        {"from_day": 1, "to_day": 3, "percent_per_day": "1"},
        {"from_day": 4, "to_day": 7, "percent_per_day": "2"}
      ]
    }
  }

  Flat variant:
    "penalty_rule": {"type": "flat", "percent_per_day": "1"}

  Percentages are JSON strings: monetary semantics require exact decimals,
  never binary floating point.

USAGE:
  f := factory.NewConfigFactory()
  version, err := f.Parse(payload)
  payload, err := f.Render(version)

SEE ALSO:
  - engine/config.go: The closed PenaltyRule variant and validation
  - store/sqlite: Stores the rendered payload
  - api/handlers.go: Accepts/serves ConfigJSON
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/coopkit/contract-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the JSON representation of a rate configuration version.
type ConfigJSON struct {
	ID          string            `json:"id,omitempty"`
	Family      string            `json:"family"`
	EffectiveAt string            `json:"effective_at"`
	BonusTable  map[string]string `json:"bonus_table"`
	PenaltyRule PenaltyRuleJSON   `json:"penalty_rule"`
	Active      bool              `json:"active,omitempty"`
	CreatedBy   string            `json:"created_by,omitempty"`
}

// PenaltyRuleJSON is the tagged JSON form of the Flat|Tiered variant.
type PenaltyRuleJSON struct {
	Type          string     `json:"type"` // "flat" or "tiered"
	PercentPerDay string     `json:"percent_per_day,omitempty"`
	Steps         []StepJSON `json:"steps,omitempty"`
}

// StepJSON is one tier band.
type StepJSON struct {
	FromDay       int    `json:"from_day"`
	ToDay         int    `json:"to_day"`
	PercentPerDay string `json:"percent_per_day"`
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

type ConfigFactory struct{}

func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{}
}

// Parse converts a ConfigJSON into a validated RateConfigurationVersion.
// Malformed shapes are rejected with ErrInvalidConfiguration.
func (f *ConfigFactory) Parse(j ConfigJSON) (engine.RateConfigurationVersion, error) {
	effectiveAt, err := engine.ParseDate(j.EffectiveAt)
	if err != nil {
		return engine.RateConfigurationVersion{}, &engine.InvalidConfigurationError{
			Field: "effective_at", Reason: fmt.Sprintf("bad date %q", j.EffectiveAt),
		}
	}

	table := engine.BonusTable{}
	for monthStr, pctStr := range j.BonusTable {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			return engine.RateConfigurationVersion{}, &engine.InvalidConfigurationError{
				Field: "bonus_table", Reason: fmt.Sprintf("non-numeric month key %q", monthStr),
			}
		}
		pct, err := decimal.NewFromString(pctStr)
		if err != nil {
			return engine.RateConfigurationVersion{}, &engine.InvalidConfigurationError{
				Field: "bonus_table", Reason: fmt.Sprintf("bad percentage %q for month %d", pctStr, month),
			}
		}
		table[month] = pct
	}

	rule, err := f.parseRule(j.PenaltyRule)
	if err != nil {
		return engine.RateConfigurationVersion{}, err
	}

	v := engine.RateConfigurationVersion{
		ID:          engine.VersionID(j.ID),
		Family:      engine.Family(j.Family),
		BonusTable:  table,
		PenaltyRule: rule,
		EffectiveAt: effectiveAt,
		Active:      j.Active,
		CreatedBy:   j.CreatedBy,
	}
	if err := v.Validate(); err != nil {
		return engine.RateConfigurationVersion{}, err
	}
	return v, nil
}

func (f *ConfigFactory) parseRule(j PenaltyRuleJSON) (engine.PenaltyRule, error) {
	switch j.Type {
	case "flat":
		rate, err := decimal.NewFromString(j.PercentPerDay)
		if err != nil {
			return nil, &engine.InvalidConfigurationError{
				Field: "penalty_rule", Reason: fmt.Sprintf("bad flat rate %q", j.PercentPerDay),
			}
		}
		return engine.FlatRule{PercentPerDay: rate}, nil

	case "tiered":
		steps := make([]engine.TierStep, 0, len(j.Steps))
		for i, s := range j.Steps {
			rate, err := decimal.NewFromString(s.PercentPerDay)
			if err != nil {
				return nil, &engine.InvalidConfigurationError{
					Field: "penalty_rule", Reason: fmt.Sprintf("step %d: bad rate %q", i, s.PercentPerDay),
				}
			}
			steps = append(steps, engine.TierStep{FromDay: s.FromDay, ToDay: s.ToDay, PercentPerDay: rate})
		}
		return engine.TieredRule{Steps: steps}, nil

	default:
		return nil, &engine.InvalidConfigurationError{
			Field: "penalty_rule", Reason: fmt.Sprintf("unknown type %q", j.Type),
		}
	}
}

// Render converts a version back into its JSON form.
func (f *ConfigFactory) Render(v engine.RateConfigurationVersion) ConfigJSON {
	table := make(map[string]string, len(v.BonusTable))
	for month, pct := range v.BonusTable {
		table[strconv.Itoa(month)] = pct.String()
	}

	return ConfigJSON{
		ID:          string(v.ID),
		Family:      string(v.Family),
		EffectiveAt: v.EffectiveAt.String(),
		BonusTable:  table,
		PenaltyRule: f.renderRule(v.PenaltyRule),
		Active:      v.Active,
		CreatedBy:   v.CreatedBy,
	}
}

func (f *ConfigFactory) renderRule(rule engine.PenaltyRule) PenaltyRuleJSON {
	switch r := rule.(type) {
	case engine.FlatRule:
		return PenaltyRuleJSON{Type: "flat", PercentPerDay: r.PercentPerDay.String()}
	case engine.TieredRule:
		steps := make([]StepJSON, len(r.Steps))
		for i, s := range r.Steps {
			steps[i] = StepJSON{FromDay: s.FromDay, ToDay: s.ToDay, PercentPerDay: s.PercentPerDay.String()}
		}
		return PenaltyRuleJSON{Type: "tiered", Steps: steps}
	default:
		return PenaltyRuleJSON{}
	}
}

// ParseBytes parses a raw JSON payload (as stored in the database).
func (f *ConfigFactory) ParseBytes(payload []byte) (engine.RateConfigurationVersion, error) {
	var j ConfigJSON
	if err := json.Unmarshal(payload, &j); err != nil {
		return engine.RateConfigurationVersion{}, &engine.InvalidConfigurationError{
			Field: "payload", Reason: err.Error(),
		}
	}
	return f.Parse(j)
}

// RenderBytes renders a version to a raw JSON payload.
func (f *ConfigFactory) RenderBytes(v engine.RateConfigurationVersion) ([]byte, error) {
	return json.Marshal(f.Render(v))
}
