// Package savings implements the savings-family side of the contract
// engine: family codes, preset rate configurations, the savings status
// machine, and per-contract projections.
package savings

import "github.com/coopkit/contract-engine/engine"

// =============================================================================
// SAVINGS FAMILIES
// =============================================================================

// Families of savings contracts. Each family selects its own versioned
// rate configuration.
const (
	FamilyStandard engine.Family = "STANDARD"
	FamilyLibre    engine.Family = "LIBRE"
	FamilyJunior   engine.Family = "JUNIOR"
)

// IsSavingsFamily reports whether a family code belongs to this package.
func IsSavingsFamily(f engine.Family) bool {
	switch f {
	case FamilyStandard, FamilyLibre, FamilyJunior:
		return true
	}
	return false
}

// =============================================================================
// SAVINGS STATUS
// =============================================================================

// Status is the contract-level lifecycle state for savings contracts.
// It is recomputed from the period set, never stored as independent fact.
type Status string

const (
	StatusActive          Status = "ACTIVE"
	StatusLateNoPenalty   Status = "LATE_NO_PENALTY"
	StatusLateWithPenalty Status = "LATE_WITH_PENALTY"
	StatusCompleted       Status = "COMPLETED"
	StatusTerminated      Status = "TERMINATED"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusTerminated
}
