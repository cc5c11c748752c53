/*
handlers.go - HTTP API handlers for the contract financial engine

PURPOSE:
  Exposes the engine to its boundary collaborators (configuration
  authoring UI, contract origination flow, payment recording flow,
  calendar/reporting UI). Handles HTTP request/response and JSON
  serialization, and delegates computation to the engine packages.

ENDPOINTS:
  Configurations:
    GET    /api/configurations?family=F        List versions of a family
    POST   /api/configurations                 Create a version
    GET    /api/configurations/{id}            Get one version
    POST   /api/configurations/{id}/activate   Exclusive activation

  Contracts:
    GET    /api/contracts                      List contracts
    POST   /api/contracts                      Originate (terms -> schedule)
    GET    /api/contracts/{id}                 Get contract
    GET    /api/contracts/{id}/schedule        Periods with severities
    GET    /api/contracts/{id}/summary         Rollup + family totals
    POST   /api/contracts/{id}/payments        Record a payment
    POST   /api/contracts/{id}/periods/{month}/refuse  Administrative refusal
    POST   /api/contracts/{id}/status          Explicit workflow transition

  Calendar:
    GET    /api/calendar?from=D&to=D           Day-level aggregates

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call engine logic (schedule, penalty, status derivation)
  4. Recompute and store the contract status projection after mutations
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, invalid transitions
  - 404: Missing contract/version/period, no active configuration
  - 409: Concurrent activation conflict, period no longer DUE
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coopkit/contract-engine/engine"
	"github.com/coopkit/contract-engine/factory"
	"github.com/coopkit/contract-engine/lending"
	"github.com/coopkit/contract-engine/savings"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Configs   engine.ConfigStore
	Contracts engine.ContractStore
	Factory   *factory.ConfigFactory
	Params    engine.ResolverParams

	// Clock hook so tests control "today"
	Now func() engine.DatePoint
}

// NewHandler creates a new handler over the given stores.
func NewHandler(configs engine.ConfigStore, contracts engine.ContractStore) *Handler {
	return &Handler{
		Configs:   configs,
		Contracts: contracts,
		Factory:   factory.NewConfigFactory(),
		Params:    engine.DefaultResolverParams(),
		Now:       engine.Today,
	}
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

func (h *Handler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var payload factory.ConfigJSON
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	version, err := h.Factory.Parse(payload)
	if err != nil {
		writeEngineError(w, "Invalid configuration", err)
		return
	}

	created, err := h.Configs.CreateVersion(r.Context(), version)
	if err != nil {
		writeEngineError(w, "Failed to create configuration", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.Render(created))
}

func (h *Handler) ActivateConfig(w http.ResponseWriter, r *http.Request) {
	id := engine.VersionID(chi.URLParam(r, "id"))

	if err := h.Configs.Activate(r.Context(), id); err != nil {
		writeEngineError(w, "Failed to activate configuration", err)
		return
	}

	version, err := h.Configs.Version(r.Context(), id)
	if err != nil {
		writeEngineError(w, "Failed to load configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.Render(version))
}

func (h *Handler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	family := engine.Family(r.URL.Query().Get("family"))
	if family == "" {
		writeError(w, http.StatusBadRequest, "Missing family query parameter", nil)
		return
	}

	versions, err := h.Configs.ListVersions(r.Context(), family)
	if err != nil {
		writeEngineError(w, "Failed to list configurations", err)
		return
	}

	dtos := make([]factory.ConfigJSON, len(versions))
	for i, v := range versions {
		dtos[i] = h.Factory.Render(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	id := engine.VersionID(chi.URLParam(r, "id"))

	version, err := h.Configs.Version(r.Context(), id)
	if err != nil {
		writeEngineError(w, "Failed to load configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.Render(version))
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	family := engine.Family(req.Family)
	firstDue, err := engine.ParseDate(req.FirstDueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid first_due_date (use YYYY-MM-DD)", err)
		return
	}

	// Origination requires an active configuration; there is no fallback rate.
	cfg, err := h.Configs.ActiveVersion(r.Context(), family, h.Now())
	if err != nil {
		writeEngineError(w, "No active configuration for family", err)
		return
	}

	contract := engine.Contract{
		ID:            engine.ContractID(req.ID),
		Family:        family,
		ConfigVersion: cfg.ID,
		FirstDueAt:    firstDue,
		CreatedAt:     h.Now(),
	}
	if contract.ID == "" {
		contract.ID = engine.ContractID(uuid.NewString())
	}

	var plan engine.InstallmentPlan
	switch {
	case savings.IsSavingsFamily(family):
		monthly, err := engine.MoneyFromString(req.MonthlyAmount)
		if err != nil || !monthly.IsPositive() || req.Months <= 0 {
			writeError(w, http.StatusBadRequest, "Savings contracts need a positive monthly_amount and months", err)
			return
		}
		contract.MonthlyAmount = monthly
		contract.Months = req.Months
		contract.Status = string(savings.StatusActive)
		plan = engine.ConstantPlan{Monthly: monthly, Months: req.Months}

	case lending.IsLendingFamily(family):
		principal, err := engine.MoneyFromString(req.Principal)
		if err != nil || !principal.IsPositive() || req.DurationMonths <= 0 {
			writeError(w, http.StatusBadRequest, "Lending contracts need a positive principal and duration_months", err)
			return
		}
		rate, err := decimal.NewFromString(req.InterestRate)
		if err != nil || rate.IsNegative() {
			writeError(w, http.StatusBadRequest, "Invalid interest_rate", err)
			return
		}
		terms := lending.LoanTerms{Principal: principal, InterestRate: rate, DurationMonths: req.DurationMonths}
		contract.Principal = principal
		contract.InterestRate = rate
		contract.DurationMonths = req.DurationMonths
		contract.Months = req.DurationMonths
		contract.Status = string(lending.StatusDraft)
		plan = lending.NewLoanPlan(terms)

	default:
		writeError(w, http.StatusBadRequest, "Unknown contract family", nil)
		return
	}

	periods := engine.GenerateSchedule(contract.ID, firstDue, plan, contract.Months)
	if err := h.Contracts.CreateContract(r.Context(), contract, periods); err != nil {
		writeEngineError(w, "Failed to create contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(contract))
}

func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Contracts.ListContracts(r.Context())
	if err != nil {
		writeEngineError(w, "Failed to list contracts", err)
		return
	}

	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.Contracts.Contract(r.Context(), engine.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		writeEngineError(w, "Failed to load contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(contract))
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	_, periods, cfg, err := h.loadContractState(r)
	if err != nil {
		writeEngineError(w, "Failed to load schedule", err)
		return
	}

	today := h.Now()
	dtos := make([]DuePeriodDTO, len(periods))
	for i, p := range periods {
		res := engine.Resolve(p, today, cfg.PenaltyRule, h.Params)
		dtos[i] = toPeriodDTO(p, res)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	contract, periods, cfg, err := h.loadContractState(r)
	if err != nil {
		writeEngineError(w, "Failed to load summary", err)
		return
	}

	today := h.Now()
	summary, err := engine.Summarize(periods, today, cfg.PenaltyRule, h.Params)
	if err != nil {
		writeEngineError(w, "Failed to summarize schedule", err)
		return
	}

	dto := SummaryDTO{
		Status:          contract.Status,
		TotalPeriods:    summary.TotalPeriods,
		PaidPeriods:     summary.PaidPeriods,
		OverduePeriods:  summary.OverduePeriods,
		TotalAmount:     summary.TotalAmount.String(),
		AmountPaid:      summary.PaidAmount.String(),
		AmountRemaining: summary.RemainingAmount.String(),
		OverdueAmount:   summary.OverdueAmount.String(),
		PenaltiesTotal:  summary.PenaltiesTotal.String(),
	}
	if summary.NextDueAt != nil {
		dto.NextDueAt = summary.NextDueAt.String()
	}

	switch {
	case savings.IsSavingsFamily(contract.Family):
		projection, err := savings.Project(contract, periods, today, cfg, h.Params)
		if err != nil {
			writeEngineError(w, "Failed to project contract", err)
			return
		}
		dto.Status = string(projection.Status)
		dto.CurrentMonthIndex = projection.CurrentMonthIndex
		dto.BonusAccrued = projection.BonusAccrued.String()

	case lending.IsLendingFamily(contract.Family):
		projection, err := lending.Project(contract, periods, today, cfg, h.Params)
		if err != nil {
			writeEngineError(w, "Failed to project contract", err)
			return
		}
		dto.Status = string(projection.Status)
		dto.CurrentMonthIndex = projection.InstallmentsPaid
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := engine.MoneyFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Invalid payment amount", err)
		return
	}
	paidAt, err := engine.ParseDate(req.PaidAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid paid_at (use YYYY-MM-DD)", err)
		return
	}

	contract, periods, cfg, err := h.loadContractState(r)
	if err != nil {
		writeEngineError(w, "Failed to load contract", err)
		return
	}

	var target *engine.DuePeriod
	for i := range periods {
		if periods[i].MonthIndex == req.MonthIndex {
			target = &periods[i]
			break
		}
	}
	if target == nil {
		writeEngineError(w, "No such period", engine.ErrPeriodNotFound)
		return
	}

	// The penalty frozen on the period is the one the resolver showed at
	// payment time: a payment inside the grace head freezes zero, exactly
	// what an orange period was carrying. Never recomputed retroactively.
	resolved := engine.Resolve(*target, paidAt, cfg.PenaltyRule, h.Params)
	event := engine.PaymentEvent{
		Amount:         amount,
		PaidAt:         paidAt,
		Mode:           engine.PaymentMode(req.Mode),
		Partial:        req.Partial,
		PenaltyDays:    resolved.Penalty.Days,
		PenaltyApplied: resolved.Penalty.Amount,
	}

	updated, err := h.Contracts.RecordPayment(r.Context(), contract.ID, req.MonthIndex, event)
	if err != nil {
		writeEngineError(w, "Failed to record payment", err)
		return
	}

	if err := h.recomputeStatus(r, contract, cfg); err != nil {
		writeEngineError(w, "Failed to recompute contract status", err)
		return
	}

	res := engine.Resolve(updated, h.Now(), cfg.PenaltyRule, h.Params)
	writeJSON(w, http.StatusOK, toPeriodDTO(updated, res))
}

func (h *Handler) RefusePeriod(w http.ResponseWriter, r *http.Request) {
	monthIndex, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month index", err)
		return
	}

	contract, _, cfg, err := h.loadContractState(r)
	if err != nil {
		writeEngineError(w, "Failed to load contract", err)
		return
	}

	updated, err := h.Contracts.RefusePeriod(r.Context(), contract.ID, monthIndex)
	if err != nil {
		writeEngineError(w, "Failed to refuse period", err)
		return
	}

	if err := h.recomputeStatus(r, contract, cfg); err != nil {
		writeEngineError(w, "Failed to recompute contract status", err)
		return
	}

	res := engine.Resolve(updated, h.Now(), cfg.PenaltyRule, h.Params)
	writeJSON(w, http.StatusOK, toPeriodDTO(updated, res))
}

// AdvanceStatus performs an explicit administrative transition: the
// pre-disbursement workflow and terminals for loans, termination for
// savings contracts.
func (h *Handler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	var req AdvanceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	contract, err := h.Contracts.Contract(r.Context(), engine.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		writeEngineError(w, "Failed to load contract", err)
		return
	}

	var next string
	switch {
	case savings.IsSavingsFamily(contract.Family):
		if req.To != string(savings.StatusTerminated) {
			writeError(w, http.StatusBadRequest, "Savings contracts only support explicit termination", nil)
			return
		}
		status, err := savings.Terminate(savings.Status(contract.Status))
		if err != nil {
			writeEngineError(w, "Cannot terminate contract", err)
			return
		}
		next = string(status)

	case lending.IsLendingFamily(contract.Family):
		status, err := lending.Advance(lending.Status(contract.Status), lending.Status(req.To))
		if err != nil {
			writeEngineError(w, "Transition not allowed", err)
			return
		}
		next = string(status)

	default:
		writeError(w, http.StatusBadRequest, "Unknown contract family", nil)
		return
	}

	if err := h.Contracts.UpdateStatus(r.Context(), contract.ID, next); err != nil {
		writeEngineError(w, "Failed to update status", err)
		return
	}
	contract.Status = next
	writeJSON(w, http.StatusOK, toContractDTO(contract))
}

// =============================================================================
// CALENDAR HANDLER
// =============================================================================

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	from, err := engine.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := engine.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	periods, err := h.Contracts.PeriodsInRange(r.Context(), from, to)
	if err != nil {
		writeEngineError(w, "Failed to load periods", err)
		return
	}

	severity, err := h.severityResolver(r, periods)
	if err != nil {
		writeEngineError(w, "Failed to resolve severities", err)
		return
	}

	aggregates := engine.AggregateCalendar(periods, severity)
	dtos := make([]CalendarDayDTO, len(aggregates))
	for i, a := range aggregates {
		dtos[i] = CalendarDayDTO{
			Date:            a.Date.String(),
			Count:           a.Count,
			TotalAmount:     a.TotalAmount.String(),
			PaidAmount:      a.PaidAmount.String(),
			RemainingAmount: a.RemainingAmount.String(),
			Severity:        a.Severity.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// severityResolver binds each period's contract family to its active
// configuration. A family without an active configuration fails the whole
// read: the engine never defaults to a fallback rate.
func (h *Handler) severityResolver(r *http.Request, periods []engine.DuePeriod) (engine.SeverityFunc, error) {
	today := h.Now()

	families := make(map[engine.ContractID]engine.Family)
	rules := make(map[engine.Family]engine.PenaltyRule)

	for _, p := range periods {
		if _, ok := families[p.ContractID]; ok {
			continue
		}
		contract, err := h.Contracts.Contract(r.Context(), p.ContractID)
		if err != nil {
			return nil, err
		}
		families[p.ContractID] = contract.Family

		if _, ok := rules[contract.Family]; !ok {
			cfg, err := h.Configs.ActiveVersion(r.Context(), contract.Family, today)
			if err != nil {
				return nil, err
			}
			rules[contract.Family] = cfg.PenaltyRule
		}
	}

	return func(p engine.DuePeriod) engine.Severity {
		rule := rules[families[p.ContractID]]
		return engine.Resolve(p, today, rule, h.Params).Severity
	}, nil
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadContractState loads a contract, its periods, and the active
// configuration for its family.
func (h *Handler) loadContractState(r *http.Request) (engine.Contract, []engine.DuePeriod, engine.RateConfigurationVersion, error) {
	id := engine.ContractID(chi.URLParam(r, "id"))

	contract, err := h.Contracts.Contract(r.Context(), id)
	if err != nil {
		return engine.Contract{}, nil, engine.RateConfigurationVersion{}, err
	}
	periods, err := h.Contracts.Periods(r.Context(), id)
	if err != nil {
		return engine.Contract{}, nil, engine.RateConfigurationVersion{}, err
	}
	cfg, err := h.Configs.ActiveVersion(r.Context(), contract.Family, h.Now())
	if err != nil {
		return engine.Contract{}, nil, engine.RateConfigurationVersion{}, err
	}
	return contract, periods, cfg, nil
}

// recomputeStatus re-derives and stores the contract status projection
// after a period transition. Explicit terminal states stay put.
func (h *Handler) recomputeStatus(r *http.Request, contract engine.Contract, cfg engine.RateConfigurationVersion) error {
	periods, err := h.Contracts.Periods(r.Context(), contract.ID)
	if err != nil {
		return err
	}
	today := h.Now()

	var next string
	switch {
	case savings.IsSavingsFamily(contract.Family):
		if savings.Status(contract.Status) == savings.StatusTerminated {
			return nil
		}
		status, err := savings.DeriveStatus(periods, today, cfg.PenaltyRule, h.Params)
		if err != nil {
			return err
		}
		next = string(status)

	case lending.IsLendingFamily(contract.Family):
		status, err := lending.DeriveRunning(lending.Status(contract.Status), periods, today, cfg.PenaltyRule, h.Params)
		if err != nil {
			return err
		}
		next = string(status)

	default:
		return nil
	}

	if next == contract.Status {
		return nil
	}
	return h.Contracts.UpdateStatus(r.Context(), contract.ID, next)
}

func toContractDTO(c engine.Contract) ContractDTO {
	dto := ContractDTO{
		ID:            string(c.ID),
		Family:        string(c.Family),
		Status:        c.Status,
		FirstDueDate:  c.FirstDueAt.String(),
		Months:        c.Months,
		ConfigVersion: string(c.ConfigVersion),
	}
	if !c.MonthlyAmount.IsZero() {
		dto.MonthlyAmount = c.MonthlyAmount.String()
	}
	if !c.Principal.IsZero() {
		dto.Principal = c.Principal.String()
		dto.InterestRate = c.InterestRate.String()
	}
	return dto
}

func toPeriodDTO(p engine.DuePeriod, res engine.Resolution) DuePeriodDTO {
	dto := DuePeriodDTO{
		MonthIndex: p.MonthIndex,
		DueAt:      p.DueAt.String(),
		Amount:     p.Amount.String(),
		Status:     string(p.Status),
		Severity:   res.Severity.String(),
		Partial:    p.Partial,
	}
	if p.PaidAt != nil {
		dto.PaidAt = p.PaidAt.String()
		dto.PaidAmount = p.PaidAmount.String()
		dto.Mode = string(p.Mode)
		dto.PenaltyDays = p.PenaltyDays
		dto.PenaltyApplied = p.PenaltyApplied.String()
	} else if res.Penalty.Days > 0 {
		dto.PenaltyDays = res.Penalty.Days
		dto.PenaltyApplied = res.Penalty.Amount.String()
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	dto := ErrorDTO{Error: msg}
	if err != nil {
		dto.Details = err.Error()
	}
	writeJSON(w, status, dto)
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, msg string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, msg, err)
	case engine.IsConflict(err), errors.Is(err, engine.ErrPeriodNotDue):
		writeError(w, http.StatusConflict, msg, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, msg, err)
	default:
		writeError(w, http.StatusInternalServerError, msg, err)
	}
}
