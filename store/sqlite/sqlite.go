/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements engine.ConfigStore and engine.ContractStore using SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  config_versions: Versioned bonus/penalty configurations per family
  contracts:       Contract terms + stored status projection
  due_periods:     One row per (contract, month index)

EXCLUSIVE ACTIVATION:
  Activate runs "deactivate family, activate target" inside one SQL
  transaction. A partial unique index on (family) WHERE is_active = 1 is
  the backstop: should two activations ever interleave, the losing write
  hits the index and is rejected with ErrConcurrentActivation instead of
  leaving zero or two active versions.

DUE PERIOD INVARIANT:
  PRIMARY KEY (contract_id, month_index) enforces exactly one period per
  (contract, month). Payments and refusals are conditional updates guarded
  on status = 'DUE', so PAID/REFUSED stay terminal.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers don't
  block, single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/coop.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/coopkit/contract-engine/engine"
	"github.com/coopkit/contract-engine/factory"
)

// Store implements both storage interfaces using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	configs *factory.ConfigFactory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, configs: factory.NewConfigFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Versioned rate configurations
	CREATE TABLE IF NOT EXISTS config_versions (
		id TEXT PRIMARY KEY,
		family TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		effective_at TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 0,
		created_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_config_versions_family
		ON config_versions(family);
	-- Backstop for the single-active-version invariant
	CREATE UNIQUE INDEX IF NOT EXISTS idx_config_versions_one_active
		ON config_versions(family) WHERE is_active = 1;

	-- Contracts (status column is a stored projection of the period set)
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		family TEXT NOT NULL,
		status TEXT NOT NULL,
		monthly_amount TEXT NOT NULL,
		principal TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		duration_months INTEGER NOT NULL,
		config_version TEXT NOT NULL,
		first_due_at TEXT NOT NULL,
		months INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Due periods: exactly one per (contract, month index)
	CREATE TABLE IF NOT EXISTS due_periods (
		contract_id TEXT NOT NULL,
		month_index INTEGER NOT NULL,
		due_at TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'DUE',
		paid_at TEXT,
		paid_amount TEXT NOT NULL DEFAULT '0',
		mode TEXT,
		partial INTEGER NOT NULL DEFAULT 0,
		penalty_days INTEGER NOT NULL DEFAULT 0,
		penalty_applied TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (contract_id, month_index),
		FOREIGN KEY (contract_id) REFERENCES contracts(id)
	);

	CREATE INDEX IF NOT EXISTS idx_due_periods_due_at
		ON due_periods(due_at);
	CREATE INDEX IF NOT EXISTS idx_due_periods_status
		ON due_periods(contract_id, status);
	`

	_, err := s.db.Exec(schema)
	return err
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// =============================================================================
// CONFIG STORE (engine.ConfigStore interface)
// =============================================================================

func (s *Store) CreateVersion(ctx context.Context, v engine.RateConfigurationVersion) (engine.RateConfigurationVersion, error) {
	if err := v.Validate(); err != nil {
		return engine.RateConfigurationVersion{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == "" {
		v.ID = engine.VersionID(uuid.NewString())
	}
	now := time.Now().UTC()
	v.Active = false
	v.CreatedAt = now
	v.UpdatedAt = now

	payload, err := s.configs.RenderBytes(v)
	if err != nil {
		return engine.RateConfigurationVersion{}, fmt.Errorf("failed to encode configuration: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO config_versions
		(id, family, payload_json, effective_at, is_active, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		v.ID, v.Family, string(payload), v.EffectiveAt.String(),
		v.CreatedBy, now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return engine.RateConfigurationVersion{}, fmt.Errorf("failed to insert configuration: %w", err)
	}
	return v, nil
}

func (s *Store) Activate(ctx context.Context, id engine.VersionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin activation: %w", err)
	}
	defer tx.Rollback()

	var family string
	err = tx.QueryRowContext(ctx,
		`SELECT family FROM config_versions WHERE id = ?`, id,
	).Scan(&family)
	if err == sql.ErrNoRows {
		return engine.ErrVersionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load version: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`UPDATE config_versions SET is_active = 0, updated_at = ?
		 WHERE family = ? AND is_active = 1`, now, family); err != nil {
		return fmt.Errorf("failed to deactivate family %s: %w", family, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE config_versions SET is_active = 1, updated_at = ?
		 WHERE id = ?`, now, id); err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrConcurrentActivation
		}
		return fmt.Errorf("failed to activate %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrConcurrentActivation
		}
		return fmt.Errorf("failed to commit activation: %w", err)
	}
	return nil
}

func (s *Store) ActiveVersion(ctx context.Context, family engine.Family, asOf engine.DatePoint) (engine.RateConfigurationVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, payload_json, is_active, created_at, updated_at
		FROM config_versions
		WHERE family = ? AND is_active = 1 AND effective_at <= ?`,
		family, asOf.String(),
	)
	v, err := s.scanVersion(row)
	if err == sql.ErrNoRows {
		return engine.RateConfigurationVersion{}, &engine.NoActiveConfigurationError{Family: family, AsOf: asOf}
	}
	return v, err
}

func (s *Store) Version(ctx context.Context, id engine.VersionID) (engine.RateConfigurationVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, payload_json, is_active, created_at, updated_at
		FROM config_versions WHERE id = ?`, id,
	)
	v, err := s.scanVersion(row)
	if err == sql.ErrNoRows {
		return engine.RateConfigurationVersion{}, engine.ErrVersionNotFound
	}
	return v, err
}

func (s *Store) ListVersions(ctx context.Context, family engine.Family) ([]engine.RateConfigurationVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload_json, is_active, created_at, updated_at
		FROM config_versions WHERE family = ?
		ORDER BY created_at DESC`, family,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var result []engine.RateConfigurationVersion
	for rows.Next() {
		v, err := s.scanVersion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanVersion(row rowScanner) (engine.RateConfigurationVersion, error) {
	var (
		id, payload, createdAt, updatedAt string
		active                            int
	)
	if err := row.Scan(&id, &payload, &active, &createdAt, &updatedAt); err != nil {
		return engine.RateConfigurationVersion{}, err
	}

	v, err := s.configs.ParseBytes([]byte(payload))
	if err != nil {
		return engine.RateConfigurationVersion{}, fmt.Errorf("corrupt configuration %s: %w", id, err)
	}
	v.ID = engine.VersionID(id)
	v.Active = active == 1
	v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	v.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return v, nil
}

var _ engine.ConfigStore = (*Store)(nil)

// =============================================================================
// CONTRACT STORE (engine.ContractStore interface)
// =============================================================================

func (s *Store) CreateContract(ctx context.Context, c engine.Contract, periods []engine.DuePeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin contract creation: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contracts
		(id, family, status, monthly_amount, principal, interest_rate,
		 duration_months, config_version, first_due_at, months, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Family, c.Status,
		c.MonthlyAmount.Value.String(), c.Principal.Value.String(), c.InterestRate.String(),
		c.DurationMonths, c.ConfigVersion, c.FirstDueAt.String(), c.Months,
		c.CreatedAt.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}

	for _, p := range periods {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO due_periods (contract_id, month_index, due_at, amount, status)
			VALUES (?, ?, ?, ?, ?)`,
			p.ContractID, p.MonthIndex, p.DueAt.String(), p.Amount.Value.String(), p.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert period %d: %w", p.MonthIndex, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Contract(ctx context.Context, id engine.ContractID) (engine.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, family, status, monthly_amount, principal, interest_rate,
		       duration_months, config_version, first_due_at, months, created_at
		FROM contracts WHERE id = ?`, id,
	)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return engine.Contract{}, engine.ErrContractNotFound
	}
	return c, err
}

func (s *Store) ListContracts(ctx context.Context) ([]engine.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, family, status, monthly_amount, principal, interest_rate,
		       duration_months, config_version, first_due_at, months, created_at
		FROM contracts ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var result []engine.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanContract(row rowScanner) (engine.Contract, error) {
	var (
		c                                             engine.Contract
		monthly, principal, rate, firstDue, createdAt string
	)
	err := row.Scan(&c.ID, &c.Family, &c.Status, &monthly, &principal, &rate,
		&c.DurationMonths, &c.ConfigVersion, &firstDue, &c.Months, &createdAt)
	if err != nil {
		return engine.Contract{}, err
	}

	if c.MonthlyAmount, err = engine.MoneyFromString(monthly); err != nil {
		return engine.Contract{}, fmt.Errorf("corrupt monthly amount: %w", err)
	}
	if c.Principal, err = engine.MoneyFromString(principal); err != nil {
		return engine.Contract{}, fmt.Errorf("corrupt principal: %w", err)
	}
	c.InterestRate = engine.MustParseDecimal(rate)
	if c.FirstDueAt, err = engine.ParseDate(firstDue); err != nil {
		return engine.Contract{}, fmt.Errorf("corrupt first due date: %w", err)
	}
	if c.CreatedAt, err = engine.ParseDate(createdAt); err != nil {
		return engine.Contract{}, fmt.Errorf("corrupt creation date: %w", err)
	}
	return c, nil
}

func (s *Store) Periods(ctx context.Context, id engine.ContractID) ([]engine.DuePeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contracts WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, engine.ErrContractNotFound
	}

	return s.queryPeriods(ctx, `
		SELECT contract_id, month_index, due_at, amount, status,
		       paid_at, paid_amount, mode, partial, penalty_days, penalty_applied
		FROM due_periods WHERE contract_id = ?
		ORDER BY month_index`, id)
}

func (s *Store) PeriodsInRange(ctx context.Context, from, to engine.DatePoint) ([]engine.DuePeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPeriods(ctx, `
		SELECT contract_id, month_index, due_at, amount, status,
		       paid_at, paid_amount, mode, partial, penalty_days, penalty_applied
		FROM due_periods WHERE due_at >= ? AND due_at <= ?
		ORDER BY due_at, contract_id, month_index`,
		from.String(), to.String())
}

func (s *Store) queryPeriods(ctx context.Context, query string, args ...any) ([]engine.DuePeriod, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	var result []engine.DuePeriod
	for rows.Next() {
		var (
			p                                  engine.DuePeriod
			dueAt, amount, paidAmount, penalty string
			paidAt, mode                       sql.NullString
			partial                            int
		)
		err := rows.Scan(&p.ContractID, &p.MonthIndex, &dueAt, &amount, &p.Status,
			&paidAt, &paidAmount, &mode, &partial, &p.PenaltyDays, &penalty)
		if err != nil {
			return nil, err
		}

		if p.DueAt, err = engine.ParseDate(dueAt); err != nil {
			return nil, fmt.Errorf("corrupt due date: %w", err)
		}
		if p.Amount, err = engine.MoneyFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount: %w", err)
		}
		if p.PaidAmount, err = engine.MoneyFromString(paidAmount); err != nil {
			return nil, fmt.Errorf("corrupt paid amount: %w", err)
		}
		if p.PenaltyApplied, err = engine.MoneyFromString(penalty); err != nil {
			return nil, fmt.Errorf("corrupt penalty: %w", err)
		}
		if paidAt.Valid {
			dp, err := engine.ParseDate(paidAt.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt paid date: %w", err)
			}
			p.PaidAt = &dp
		}
		if mode.Valid {
			p.Mode = engine.PaymentMode(mode.String)
		}
		p.Partial = partial == 1
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) RecordPayment(ctx context.Context, id engine.ContractID, monthIndex int, event engine.PaymentEvent) (engine.DuePeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	partial := 0
	if event.Partial {
		partial = 1
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE due_periods
		SET status = ?, paid_at = ?, paid_amount = ?, mode = ?, partial = ?,
		    penalty_days = ?, penalty_applied = ?
		WHERE contract_id = ? AND month_index = ? AND status = 'DUE'`,
		engine.PeriodPaid, event.PaidAt.String(), event.Amount.Value.String(),
		string(event.Mode), partial, event.PenaltyDays, event.PenaltyApplied.Value.String(),
		id, monthIndex,
	)
	if err != nil {
		return engine.DuePeriod{}, fmt.Errorf("failed to record payment: %w", err)
	}
	return s.checkTransition(ctx, res, id, monthIndex)
}

func (s *Store) RefusePeriod(ctx context.Context, id engine.ContractID, monthIndex int) (engine.DuePeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE due_periods SET status = ?
		WHERE contract_id = ? AND month_index = ? AND status = 'DUE'`,
		engine.PeriodRefused, id, monthIndex,
	)
	if err != nil {
		return engine.DuePeriod{}, fmt.Errorf("failed to refuse period: %w", err)
	}
	return s.checkTransition(ctx, res, id, monthIndex)
}

// checkTransition distinguishes "no such period" from "not DUE anymore"
// after a guarded update touched zero rows, then reloads the period.
func (s *Store) checkTransition(ctx context.Context, res sql.Result, id engine.ContractID, monthIndex int) (engine.DuePeriod, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return engine.DuePeriod{}, err
	}
	if affected == 0 {
		var count int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM due_periods WHERE contract_id = ? AND month_index = ?`,
			id, monthIndex).Scan(&count); err != nil {
			return engine.DuePeriod{}, err
		}
		if count == 0 {
			return engine.DuePeriod{}, engine.ErrPeriodNotFound
		}
		return engine.DuePeriod{}, engine.ErrPeriodNotDue
	}

	periods, err := s.queryPeriods(ctx, `
		SELECT contract_id, month_index, due_at, amount, status,
		       paid_at, paid_amount, mode, partial, penalty_days, penalty_applied
		FROM due_periods WHERE contract_id = ? AND month_index = ?`, id, monthIndex)
	if err != nil {
		return engine.DuePeriod{}, err
	}
	if len(periods) == 0 {
		return engine.DuePeriod{}, engine.ErrPeriodNotFound
	}
	return periods[0], nil
}

func (s *Store) UpdateStatus(ctx context.Context, id engine.ContractID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE contracts SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return engine.ErrContractNotFound
	}
	return nil
}

var _ engine.ContractStore = (*Store)(nil)
