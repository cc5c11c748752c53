/*
store.go - Persistence interfaces for configurations, contracts, periods

PURPOSE:
  Defines the boundary between the engine and whatever stores its state.
  Two interfaces: ConfigStore for versioned rate configurations and
  ContractStore for contracts with their due periods.

EXCLUSIVE ACTIVATION CONTRACT:
  Activate is the ONLY mutator of the active flag. The "deactivate all
  others, activate target" sequence is a single logical transaction and
  must be serialized per family: two concurrent activations on the same
  family must not both end up active, nor both inactive. A detected race
  rejects one caller with ErrConcurrentActivation.

PERIOD MUTATION CONTRACT:
  Within one contract, period updates must be serialized: status
  derivation reads the full period set and must not observe a partially
  updated one. Updates across different contracts may run in parallel.

IMPLEMENTATIONS:
  - engine/store: In-memory, for testing and development
  - store/sqlite: Production persistence

SEE ALSO:
  - config.go: What a ConfigStore stores
  - types.go: Contract and DuePeriod
*/
package engine

import "context"

// =============================================================================
// CONFIG STORE - Versioned rate configurations, exclusive activation
// =============================================================================

type ConfigStore interface {
	// CreateVersion validates and persists a new version (inactive).
	// The store assigns the ID when the caller leaves it empty.
	CreateVersion(ctx context.Context, v RateConfigurationVersion) (RateConfigurationVersion, error)

	// Activate sets the target version active and every other version of
	// the SAME family inactive, atomically. Versions of other families are
	// untouched.
	Activate(ctx context.Context, id VersionID) error

	// ActiveVersion returns the active version of family among those with
	// effectiveAt <= asOf. No active version -> ErrNoActiveConfiguration.
	ActiveVersion(ctx context.Context, family Family, asOf DatePoint) (RateConfigurationVersion, error)

	// Version returns a version by ID, ErrVersionNotFound if absent.
	Version(ctx context.Context, id VersionID) (RateConfigurationVersion, error)

	// ListVersions returns all versions of a family, newest first.
	ListVersions(ctx context.Context, family Family) ([]RateConfigurationVersion, error)
}

// =============================================================================
// CONTRACT STORE - Contracts and their due periods
// =============================================================================

type ContractStore interface {
	// CreateContract persists a contract together with its initial period
	// set, atomically.
	CreateContract(ctx context.Context, c Contract, periods []DuePeriod) error

	// Contract returns a contract by ID, ErrContractNotFound if absent.
	Contract(ctx context.Context, id ContractID) (Contract, error)

	// ListContracts returns all contracts.
	ListContracts(ctx context.Context) ([]Contract, error)

	// Periods returns all due periods of a contract.
	Periods(ctx context.Context, id ContractID) ([]DuePeriod, error)

	// PeriodsInRange returns all periods across all contracts whose dueAt
	// falls in [from, to]. Feeds the calendar aggregator.
	PeriodsInRange(ctx context.Context, from, to DatePoint) ([]DuePeriod, error)

	// RecordPayment marks a DUE period PAID, freezing the supplied penalty
	// fields. PAID and REFUSED periods reject further payments with
	// ErrPeriodNotDue.
	RecordPayment(ctx context.Context, id ContractID, monthIndex int, event PaymentEvent) (DuePeriod, error)

	// RefusePeriod marks a DUE period REFUSED (terminal, administrative).
	RefusePeriod(ctx context.Context, id ContractID, monthIndex int) (DuePeriod, error)

	// UpdateStatus stores the recomputed contract-level status projection.
	UpdateStatus(ctx context.Context, id ContractID, status string) error
}
