// Package lending implements the lending-family side of the contract
// engine: loan terms, fixed-installment schedule plans, and the loan
// status machine.
package lending

import (
	"github.com/shopspring/decimal"

	"github.com/coopkit/contract-engine/engine"
)

// =============================================================================
// LENDING FAMILIES
// =============================================================================

const (
	FamilyLoan      engine.Family = "LOAN"
	FamilyMicroLoan engine.Family = "MICRO_LOAN"
)

// IsLendingFamily reports whether a family code belongs to this package.
func IsLendingFamily(f engine.Family) bool {
	return f == FamilyLoan || f == FamilyMicroLoan
}

// =============================================================================
// LOAN TERMS
// =============================================================================

// LoanTerms are the commercial terms of a lending contract. InterestRate is
// a percentage applied to the principal over the whole term.
type LoanTerms struct {
	Principal      engine.Money
	InterestRate   decimal.Decimal
	DurationMonths int
}

// TotalInterest returns principal * rate / 100, exact.
func (t LoanTerms) TotalInterest() engine.Money {
	return t.Principal.Percent(t.InterestRate)
}

// TotalDue returns principal plus total interest.
func (t LoanTerms) TotalDue() engine.Money {
	return t.Principal.Add(t.TotalInterest())
}

// =============================================================================
// LOAN STATUS
// =============================================================================

// Status is the contract-level lifecycle state for lending contracts.
//
// DRAFT..SIMULATED are pre-disbursement states driven by the external
// origination workflow; OVERDUE and PARTIAL are derived from the period
// set once ACTIVE; the remaining terminals are explicit administrative
// transitions, never derived.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusSimulated Status = "SIMULATED"
	StatusActive    Status = "ACTIVE"

	// Derived while running
	StatusOverdue Status = "OVERDUE"
	StatusPartial Status = "PARTIAL"

	// Explicit administrative terminals
	StatusTransformed Status = "TRANSFORMED"
	StatusBlocked     Status = "BLOCKED"
	StatusDischarged  Status = "DISCHARGED"
	StatusClosed      Status = "CLOSED"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusTransformed, StatusBlocked, StatusDischarged, StatusClosed:
		return true
	}
	return false
}

// Running reports whether the loan is past disbursement and its status is
// derived from the period set.
func (s Status) Running() bool {
	return s == StatusActive || s == StatusOverdue || s == StatusPartial
}
