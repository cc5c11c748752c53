// Package store provides in-memory implementations of the engine's
// persistence interfaces, for testing and development.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coopkit/contract-engine/engine"
)

// =============================================================================
// MEMORY CONFIG STORE
// =============================================================================

// MemoryConfigStore holds rate configuration versions in memory. A single
// mutex serializes activation, which makes the exclusive-activation
// invariant trivially safe here; the sqlite store needs real transactions.
type MemoryConfigStore struct {
	mu       sync.RWMutex
	versions map[engine.VersionID]engine.RateConfigurationVersion
}

func NewMemoryConfigStore() *MemoryConfigStore {
	return &MemoryConfigStore{
		versions: make(map[engine.VersionID]engine.RateConfigurationVersion),
	}
}

func (s *MemoryConfigStore) CreateVersion(_ context.Context, v engine.RateConfigurationVersion) (engine.RateConfigurationVersion, error) {
	if err := v.Validate(); err != nil {
		return engine.RateConfigurationVersion{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == "" {
		v.ID = engine.VersionID(uuid.NewString())
	}
	if _, exists := s.versions[v.ID]; exists {
		return engine.RateConfigurationVersion{}, fmt.Errorf("version %s already exists", v.ID)
	}

	now := time.Now().UTC()
	v.Active = false // only Activate mutates the flag
	v.CreatedAt = now
	v.UpdatedAt = now
	s.versions[v.ID] = v
	return v, nil
}

func (s *MemoryConfigStore) Activate(_ context.Context, id engine.VersionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.versions[id]
	if !ok {
		return engine.ErrVersionNotFound
	}

	now := time.Now().UTC()
	for vid, v := range s.versions {
		if v.Family != target.Family {
			continue
		}
		wantActive := vid == id
		if v.Active != wantActive {
			v.Active = wantActive
			v.UpdatedAt = now
			s.versions[vid] = v
		}
	}
	if !target.Active {
		target.Active = true
		target.UpdatedAt = now
		s.versions[id] = target
	}
	return nil
}

func (s *MemoryConfigStore) ActiveVersion(_ context.Context, family engine.Family, asOf engine.DatePoint) (engine.RateConfigurationVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.versions {
		if v.Family == family && v.Active && v.EffectiveAt.BeforeOrEqual(asOf) {
			return v, nil
		}
	}
	return engine.RateConfigurationVersion{}, &engine.NoActiveConfigurationError{Family: family, AsOf: asOf}
}

func (s *MemoryConfigStore) Version(_ context.Context, id engine.VersionID) (engine.RateConfigurationVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[id]
	if !ok {
		return engine.RateConfigurationVersion{}, engine.ErrVersionNotFound
	}
	return v, nil
}

func (s *MemoryConfigStore) ListVersions(_ context.Context, family engine.Family) ([]engine.RateConfigurationVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []engine.RateConfigurationVersion
	for _, v := range s.versions {
		if v.Family == family {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

var _ engine.ConfigStore = (*MemoryConfigStore)(nil)

// =============================================================================
// MEMORY CONTRACT STORE
// =============================================================================

// MemoryContractStore holds contracts and periods in memory. Period
// mutations take the store lock, so status derivation never observes a
// partially updated period set.
type MemoryContractStore struct {
	mu        sync.RWMutex
	contracts map[engine.ContractID]engine.Contract
	periods   map[engine.ContractID][]engine.DuePeriod
}

func NewMemoryContractStore() *MemoryContractStore {
	return &MemoryContractStore{
		contracts: make(map[engine.ContractID]engine.Contract),
		periods:   make(map[engine.ContractID][]engine.DuePeriod),
	}
}

func (s *MemoryContractStore) CreateContract(_ context.Context, c engine.Contract, periods []engine.DuePeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contracts[c.ID]; exists {
		return fmt.Errorf("contract %s already exists", c.ID)
	}
	s.contracts[c.ID] = c
	stored := make([]engine.DuePeriod, len(periods))
	copy(stored, periods)
	s.periods[c.ID] = stored
	return nil
}

func (s *MemoryContractStore) Contract(_ context.Context, id engine.ContractID) (engine.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return engine.Contract{}, engine.ErrContractNotFound
	}
	return c, nil
}

func (s *MemoryContractStore) ListContracts(_ context.Context) ([]engine.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]engine.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *MemoryContractStore) Periods(_ context.Context, id engine.ContractID) ([]engine.DuePeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.contracts[id]; !ok {
		return nil, engine.ErrContractNotFound
	}
	result := make([]engine.DuePeriod, len(s.periods[id]))
	copy(result, s.periods[id])
	return result, nil
}

func (s *MemoryContractStore) PeriodsInRange(_ context.Context, from, to engine.DatePoint) ([]engine.DuePeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []engine.DuePeriod
	for _, periods := range s.periods {
		for _, p := range periods {
			if from.BeforeOrEqual(p.DueAt) && p.DueAt.BeforeOrEqual(to) {
				result = append(result, p)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueAt.Equal(result[j].DueAt) {
			return result[i].DueAt.Before(result[j].DueAt)
		}
		if result[i].ContractID != result[j].ContractID {
			return result[i].ContractID < result[j].ContractID
		}
		return result[i].MonthIndex < result[j].MonthIndex
	})
	return result, nil
}

func (s *MemoryContractStore) RecordPayment(_ context.Context, id engine.ContractID, monthIndex int, event engine.PaymentEvent) (engine.DuePeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(id, monthIndex, func(p *engine.DuePeriod) {
		paidAt := event.PaidAt
		p.Status = engine.PeriodPaid
		p.PaidAt = &paidAt
		p.PaidAmount = event.Amount
		p.Mode = event.Mode
		p.Partial = event.Partial
		p.PenaltyDays = event.PenaltyDays
		p.PenaltyApplied = event.PenaltyApplied
	})
}

func (s *MemoryContractStore) RefusePeriod(_ context.Context, id engine.ContractID, monthIndex int) (engine.DuePeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(id, monthIndex, func(p *engine.DuePeriod) {
		p.Status = engine.PeriodRefused
	})
}

func (s *MemoryContractStore) transitionLocked(id engine.ContractID, monthIndex int, apply func(*engine.DuePeriod)) (engine.DuePeriod, error) {
	if _, ok := s.contracts[id]; !ok {
		return engine.DuePeriod{}, engine.ErrContractNotFound
	}
	periods := s.periods[id]
	for i := range periods {
		if periods[i].MonthIndex != monthIndex {
			continue
		}
		if periods[i].Status != engine.PeriodDue {
			return engine.DuePeriod{}, engine.ErrPeriodNotDue
		}
		apply(&periods[i])
		return periods[i], nil
	}
	return engine.DuePeriod{}, engine.ErrPeriodNotFound
}

func (s *MemoryContractStore) UpdateStatus(_ context.Context, id engine.ContractID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[id]
	if !ok {
		return engine.ErrContractNotFound
	}
	c.Status = status
	s.contracts[id] = c
	return nil
}

var _ engine.ContractStore = (*MemoryContractStore)(nil)
