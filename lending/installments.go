/*
installments.go - Fixed-installment plan with final-period residue

PURPOSE:
  Turns loan terms into the per-month amounts the schedule generator
  emits. Every period carries the same fixed installment except possibly
  the last, which absorbs the rounding residue so that the sum of all
  installments equals principal + total interest EXACTLY. The residue is
  assigned to the final period, never distributed.

EXAMPLE:
  Principal 100000, rate 10%, 12 months:
    total due   = 110000
    installment = 9166.67 (rounded down to 2 places)
    last period = 110000 - 11*9166.67 = 9166.63

SEE ALSO:
  - engine/schedule.go: Consumes InstallmentPlan
*/
package lending

import (
	"github.com/shopspring/decimal"

	"github.com/coopkit/contract-engine/engine"
)

// installmentScale is the decimal precision installments are rounded to.
const installmentScale = 2

// LoanPlan is the InstallmentPlan for a lending contract.
type LoanPlan struct {
	terms       LoanTerms
	installment engine.Money
	final       engine.Money
}

// NewLoanPlan precomputes the fixed installment and the residue-bearing
// final amount from the terms.
func NewLoanPlan(terms LoanTerms) LoanPlan {
	n := terms.DurationMonths
	totalDue := terms.TotalDue()

	if n <= 1 {
		return LoanPlan{terms: terms, installment: totalDue, final: totalDue}
	}

	installment := engine.NewMoneyFromDecimal(
		totalDue.Value.Div(decimal.NewFromInt(int64(n))).RoundDown(installmentScale),
	)
	allButLast := installment.Mul(decimal.NewFromInt(int64(n - 1)))
	return LoanPlan{
		terms:       terms,
		installment: installment,
		final:       totalDue.Sub(allButLast),
	}
}

func (p LoanPlan) Installments() int { return p.terms.DurationMonths }

func (p LoanPlan) AmountAt(monthIndex int) engine.Money {
	if monthIndex == p.terms.DurationMonths {
		return p.final
	}
	return p.installment
}

// MonthlyInstallment returns the fixed installment (all periods but the last).
func (p LoanPlan) MonthlyInstallment() engine.Money { return p.installment }

var _ engine.InstallmentPlan = LoanPlan{}
