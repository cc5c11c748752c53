/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Monetary amounts cross the wire as decimal strings, never floats: the
  engine's exact-decimal semantics survive serialization untouched.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: ConfigJSON, the configuration payload shape
*/
package api

// Configuration payloads reuse factory.ConfigJSON directly: the authoring
// shape and the wire shape are the same document.

// =============================================================================
// CONTRACT TYPES
// =============================================================================

// CreateContractRequest originates a contract. Savings families use
// monthly_amount + months; lending families use principal + interest_rate +
// duration_months.
type CreateContractRequest struct {
	ID            string `json:"id,omitempty"`
	Family        string `json:"family"`
	FirstDueDate  string `json:"first_due_date"`
	MonthlyAmount string `json:"monthly_amount,omitempty"`
	Months        int    `json:"months,omitempty"`

	Principal      string `json:"principal,omitempty"`
	InterestRate   string `json:"interest_rate,omitempty"`
	DurationMonths int    `json:"duration_months,omitempty"`
}

// ContractDTO is a contract in API responses.
type ContractDTO struct {
	ID            string `json:"id"`
	Family        string `json:"family"`
	Status        string `json:"status"`
	MonthlyAmount string `json:"monthly_amount,omitempty"`
	Principal     string `json:"principal,omitempty"`
	InterestRate  string `json:"interest_rate,omitempty"`
	FirstDueDate  string `json:"first_due_date"`
	Months        int    `json:"months"`
	ConfigVersion string `json:"config_version"`
}

// DuePeriodDTO is one schedule line.
type DuePeriodDTO struct {
	MonthIndex     int    `json:"month_index"`
	DueAt          string `json:"due_at"`
	Amount         string `json:"amount"`
	Status         string `json:"status"`
	Severity       string `json:"severity"`
	PaidAt         string `json:"paid_at,omitempty"`
	PaidAmount     string `json:"paid_amount,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Partial        bool   `json:"partial,omitempty"`
	PenaltyDays    int    `json:"penalty_days,omitempty"`
	PenaltyApplied string `json:"penalty_applied,omitempty"`
}

// SummaryDTO is the per-contract rollup plus family-specific totals.
type SummaryDTO struct {
	Status            string `json:"status"`
	TotalPeriods      int    `json:"total_periods"`
	PaidPeriods       int    `json:"paid_periods"`
	OverduePeriods    int    `json:"overdue_periods"`
	TotalAmount       string `json:"total_amount"`
	AmountPaid        string `json:"amount_paid"`
	AmountRemaining   string `json:"amount_remaining"`
	OverdueAmount     string `json:"overdue_amount"`
	PenaltiesTotal    string `json:"penalties_total"`
	NextDueAt         string `json:"next_due_at,omitempty"`
	CurrentMonthIndex int    `json:"current_month_index,omitempty"`
	BonusAccrued      string `json:"bonus_accrued,omitempty"`
}

// =============================================================================
// PAYMENT TYPES
// =============================================================================

// RecordPaymentRequest records a payment against one period.
type RecordPaymentRequest struct {
	MonthIndex int    `json:"month_index"`
	Amount     string `json:"amount"`
	PaidAt     string `json:"paid_at"`
	Mode       string `json:"mode,omitempty"`
	Partial    bool   `json:"partial,omitempty"`
}

// AdvanceStatusRequest performs an explicit workflow transition on a
// lending contract, or terminates a savings contract.
type AdvanceStatusRequest struct {
	To string `json:"to"`
}

// =============================================================================
// CALENDAR TYPES
// =============================================================================

// CalendarDayDTO is one day of the payment calendar.
type CalendarDayDTO struct {
	Date            string `json:"date"`
	Count           int    `json:"count"`
	TotalAmount     string `json:"total_amount"`
	PaidAmount      string `json:"paid_amount"`
	RemainingAmount string `json:"remaining_amount"`
	Severity        string `json:"severity"`
}

// ErrorDTO is the uniform error body.
type ErrorDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
