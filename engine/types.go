/*
Package engine provides the core contract financial engine.

PURPOSE:
  This package contains family-agnostic types and algorithms for turning
  a contract's commercial terms plus a versioned rate configuration into
  a payment schedule, per-period bonus/penalty amounts, a derived contract
  status, and day-level calendar aggregates.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: An exact decimal monetary amount (never binary floating point)
  - DuePeriod: One scheduled installment/contribution for a contract
  - Severity: Ordered classification (gray < green < yellow < orange < red)
  - Contract: Commercial terms shared by every family

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all monetary arithmetic
  2. Purity: Calculators are side-effect-free functions of their inputs
  3. Derived state: Statuses and totals are recomputed, never hand-set
  4. Type Safety: Strong typing for IDs prevents mixing contract/version IDs

USAGE:
  plan := engine.ConstantPlan{Monthly: engine.NewMoney(50000), Months: 12}
  periods := engine.GenerateSchedule("ctr-1", firstDue, plan, 12)

SEE ALSO:
  - config.go: Versioned bonus/penalty configuration
  - schedule.go: Schedule generation
  - resolver.go: Per-period status and severity
  - calendar.go: Day-level aggregation
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact decimal monetary amount
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Value: d}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (m Money) Add(o Money) Money          { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money          { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) Neg() Money                 { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool               { return m.Value.IsZero() }
func (m Money) IsNegative() bool           { return m.Value.IsNegative() }
func (m Money) IsPositive() bool           { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool         { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool   { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool      { return m.Value.LessThan(o.Value) }
func (m Money) String() string             { return m.Value.String() }

// Percent returns m * p / 100, exact.
func (m Money) Percent(p decimal.Decimal) Money {
	return Money{Value: m.Value.Mul(p).Div(decimal.NewFromInt(100))}
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ContractID string
type VersionID string

// Family is the contract category (savings-type vs lending-type) that selects
// which RateConfigurationVersion and which status machine apply.
// Concrete family codes are declared by the domain packages (savings, lending).
type Family string

// PaymentMode tags the channel a payment came through.
type PaymentMode string

const (
	ModeCash     PaymentMode = "cash"
	ModeTransfer PaymentMode = "transfer"
	ModeMobile   PaymentMode = "mobile"
	ModeCheque   PaymentMode = "cheque"
)

// =============================================================================
// SEVERITY - Ordered display classification
// =============================================================================

// Severity ranks a period (or a calendar day) for display.
// Order matters: worst-of aggregation uses this ordering.
type Severity int

const (
	SeverityGray Severity = iota
	SeverityGreen
	SeverityYellow
	SeverityOrange
	SeverityRed
)

func (s Severity) String() string {
	switch s {
	case SeverityGray:
		return "gray"
	case SeverityGreen:
		return "green"
	case SeverityYellow:
		return "yellow"
	case SeverityOrange:
		return "orange"
	case SeverityRed:
		return "red"
	default:
		return "unknown"
	}
}

// Worst returns the higher-ranked of the two severities.
func (s Severity) Worst(o Severity) Severity {
	if o > s {
		return o
	}
	return s
}

// =============================================================================
// DUE PERIOD - One scheduled installment/contribution
// =============================================================================

type PeriodStatus string

const (
	PeriodDue     PeriodStatus = "DUE"
	PeriodPaid    PeriodStatus = "PAID"    // terminal unless refused by admin
	PeriodRefused PeriodStatus = "REFUSED" // terminal
)

// DuePeriod is one scheduled month of a contract.
//
// INVARIANTS:
//   - Exactly one DuePeriod per (ContractID, MonthIndex)
//   - Status == PeriodPaid implies PaidAt is set and PenaltyApplied is
//     frozen: it is never recomputed after payment.
type DuePeriod struct {
	ContractID ContractID
	MonthIndex int // 1-based
	DueAt      DatePoint
	Amount     Money
	Status     PeriodStatus

	// Set when the period is paid
	PaidAt     *DatePoint
	PaidAmount Money
	Mode       PaymentMode

	// Explicit underpayment flag; set by the payment recording flow,
	// never inferred from PaidAmount alone.
	Partial bool

	// Frozen at payment time
	PenaltyDays    int
	PenaltyApplied Money
}

// =============================================================================
// CONTRACT - Commercial terms shared by every family
// =============================================================================

// Contract generalizes savings-type and lending-type contracts.
// The Status field is a projection of the period set (recomputed after
// every period transition), never independently settable business state.
type Contract struct {
	ID     ContractID
	Family Family
	Status string // family-specific status code

	// Savings terms
	MonthlyAmount Money

	// Lending terms
	Principal      Money
	InterestRate   decimal.Decimal // percent over the whole term
	DurationMonths int

	ConfigVersion VersionID
	FirstDueAt    DatePoint
	Months        int // number of scheduled periods

	CreatedAt DatePoint
}

// PaymentEvent is what the payment recording flow supplies for one period.
// PenaltyDays/PenaltyApplied are computed by the caller against the active
// configuration before recording, and frozen on the period.
type PaymentEvent struct {
	Amount         Money
	PaidAt         DatePoint
	Mode           PaymentMode
	Partial        bool
	PenaltyDays    int
	PenaltyApplied Money
}
