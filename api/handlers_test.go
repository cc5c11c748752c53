/*
handlers_test.go - HTTP-level tests for the API

Exercises the full request flow through the chi router with in-memory
stores and a pinned clock: configuration authoring and activation,
contract origination, payment recording with penalty freezing, status
transitions, and the calendar read.
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopkit/contract-engine/engine"
	"github.com/coopkit/contract-engine/engine/store"
	"github.com/coopkit/contract-engine/factory"
	"github.com/coopkit/contract-engine/lending"
	"github.com/coopkit/contract-engine/savings"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	handler *Handler
	router  http.Handler
}

func newTestServer(today engine.DatePoint) *testServer {
	h := NewHandler(store.NewMemoryConfigStore(), store.NewMemoryContractStore())
	h.Now = func() engine.DatePoint { return today }
	return &testServer{handler: h, router: NewRouter(h)}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func standardConfigJSON(effectiveAt string) factory.ConfigJSON {
	return factory.ConfigJSON{
		Family:      string(savings.FamilyStandard),
		EffectiveAt: effectiveAt,
		BonusTable:  map[string]string{"4": "2", "5": "2.5"},
		PenaltyRule: factory.PenaltyRuleJSON{
			Type: "tiered",
			Steps: []factory.StepJSON{
				{FromDay: 1, ToDay: 3, PercentPerDay: "1"},
				{FromDay: 4, ToDay: 7, PercentPerDay: "2"},
				{FromDay: 8, ToDay: 12, PercentPerDay: "3"},
			},
		},
		CreatedBy: "admin",
	}
}

// createActiveConfig pushes a configuration through the HTTP surface and
// activates it, returning its ID.
func createActiveConfig(t *testing.T, ts *testServer, payload factory.ConfigJSON) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/configurations", payload)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	created := decode[factory.ConfigJSON](t, rec)
	require.NotEmpty(t, created.ID)

	rec = ts.do(t, http.MethodPost, "/api/configurations/"+created.ID+"/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	return created.ID
}

func createSavingsContract(t *testing.T, ts *testServer, id string) ContractDTO {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/contracts", CreateContractRequest{
		ID:            id,
		Family:        string(savings.FamilyStandard),
		FirstDueDate:  "2026-01-15",
		MonthlyAmount: "5000",
		Months:        12,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decode[ContractDTO](t, rec)
}

// =============================================================================
// CONFIGURATION ENDPOINT TESTS
// =============================================================================

func TestAPI_ConfigLifecycle(t *testing.T) {
	// GIVEN: Two versions of one family created over HTTP
	// WHEN: Activating the second
	// THEN: The listing shows exactly one active version

	ts := newTestServer(engine.NewDate(2026, time.June, 1))

	rec := ts.do(t, http.MethodPost, "/api/configurations", standardConfigJSON("2026-01-01"))
	require.Equal(t, http.StatusCreated, rec.Code)
	v1 := decode[factory.ConfigJSON](t, rec)
	assert.False(t, v1.Active)

	v2ID := createActiveConfig(t, ts, standardConfigJSON("2026-02-01"))

	rec = ts.do(t, http.MethodGet, "/api/configurations?family=STANDARD", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	versions := decode[[]factory.ConfigJSON](t, rec)
	require.Len(t, versions, 2)

	active := 0
	for _, v := range versions {
		if v.Active {
			active++
			assert.Equal(t, v2ID, v.ID)
		}
	}
	assert.Equal(t, 1, active)
}

func TestAPI_CreateConfig_InvalidPayload(t *testing.T) {
	ts := newTestServer(engine.NewDate(2026, time.June, 1))

	payload := standardConfigJSON("2026-01-01")
	payload.PenaltyRule.Type = "exponential"

	rec := ts.do(t, http.MethodPost, "/api/configurations", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ActivateConfig_Unknown(t *testing.T) {
	ts := newTestServer(engine.NewDate(2026, time.June, 1))

	rec := ts.do(t, http.MethodPost, "/api/configurations/missing/activate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ListConfigs_MissingFamily(t *testing.T) {
	ts := newTestServer(engine.NewDate(2026, time.June, 1))

	rec := ts.do(t, http.MethodGet, "/api/configurations", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// CONTRACT ORIGINATION TESTS
// =============================================================================

func TestAPI_CreateContract_RequiresActiveConfig(t *testing.T) {
	// Origination with no active configuration for the family fails; the
	// engine never falls back to a default rate.
	ts := newTestServer(engine.NewDate(2026, time.January, 1))

	rec := ts.do(t, http.MethodPost, "/api/contracts", CreateContractRequest{
		Family:        string(savings.FamilyStandard),
		FirstDueDate:  "2026-01-15",
		MonthlyAmount: "5000",
		Months:        12,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CreateSavingsContract_GeneratesSchedule(t *testing.T) {
	ts := newTestServer(engine.NewDate(2026, time.January, 1))
	createActiveConfig(t, ts, standardConfigJSON("2026-01-01"))

	contract := createSavingsContract(t, ts, "ct-1")
	assert.Equal(t, string(savings.StatusActive), contract.Status)

	rec := ts.do(t, http.MethodGet, "/api/contracts/ct-1/schedule", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	periods := decode[[]DuePeriodDTO](t, rec)

	require.Len(t, periods, 12)
	assert.Equal(t, "2026-01-15", periods[0].DueAt)
	assert.Equal(t, "gray", periods[0].Severity)
	assert.Equal(t, "5000", periods[0].Amount)
}

func TestAPI_CreateLendingContract_ResidueOnFinal(t *testing.T) {
	// GIVEN: An active LOAN configuration and a 10000 loan at 0% over 3 months
	// WHEN: Originating and reading the schedule
	// THEN: DRAFT status, 3333.33 + 3333.33 + 3333.34

	ts := newTestServer(engine.NewDate(2026, time.January, 1))

	payload := standardConfigJSON("2026-01-01")
	payload.Family = string(lending.FamilyLoan)
	payload.BonusTable = nil
	createActiveConfig(t, ts, payload)

	rec := ts.do(t, http.MethodPost, "/api/contracts", CreateContractRequest{
		ID:             "loan-1",
		Family:         string(lending.FamilyLoan),
		FirstDueDate:   "2026-02-01",
		Principal:      "10000",
		InterestRate:   "0",
		DurationMonths: 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	contract := decode[ContractDTO](t, rec)
	assert.Equal(t, string(lending.StatusDraft), contract.Status)

	rec = ts.do(t, http.MethodGet, "/api/contracts/loan-1/schedule", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	periods := decode[[]DuePeriodDTO](t, rec)

	require.Len(t, periods, 3)
	assert.Equal(t, "3333.33", periods[0].Amount)
	assert.Equal(t, "3333.34", periods[2].Amount)
}

func TestAPI_CreateContract_BadInput(t *testing.T) {
	ts := newTestServer(engine.NewDate(2026, time.January, 1))
	createActiveConfig(t, ts, standardConfigJSON("2026-01-01"))

	cases := []CreateContractRequest{
		{Family: "STANDARD", FirstDueDate: "not-a-date", MonthlyAmount: "5000", Months: 12},
		{Family: "STANDARD", FirstDueDate: "2026-01-15", MonthlyAmount: "-5", Months: 12},
		{Family: "STANDARD", FirstDueDate: "2026-01-15", MonthlyAmount: "5000", Months: 0},
		{Family: "UNKNOWN", FirstDueDate: "2026-01-15", MonthlyAmount: "5000", Months: 12},
	}
	for i, req := range cases {
		rec := ts.do(t, http.MethodPost, "/api/contracts", req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "case %d", i)
	}
}

// =============================================================================
// PAYMENT FLOW TESTS
// =============================================================================

func TestAPI_RecordPayment_LatePayment_FreezesPenalty(t *testing.T) {
	// GIVEN: Month 1 due Jan 15, paid 5 days late at the 2% tier
	// WHEN: Recording the payment
	// THEN: Penalty 5000*2%*5 = 500 frozen on the period

	ts := newTestServer(engine.NewDate(2026, time.January, 20))
	createActiveConfig(t, ts, standardConfigJSON("2026-01-01"))
	createSavingsContract(t, ts, "ct-1")

	rec := ts.do(t, http.MethodPost, "/api/contracts/ct-1/payments", RecordPaymentRequest{
		MonthIndex: 1,
		Amount:     "5000",
		PaidAt:     "2026-01-20",
		Mode:       "cash",
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	period := decode[DuePeriodDTO](t, rec)
	assert.Equal(t, string(engine.PeriodPaid), period.Status)
	assert.Equal(t, "green", period.Severity)
	assert.Equal(t, 5, period.PenaltyDays)
	assert.Equal(t, "500", period.PenaltyApplied)
}

func TestAPI_RecordPayment_InsideGrace_FreezesZeroPenalty(t *testing.T) {
	// GIVEN: Month 1 due Jan 15, paid 2 days late, inside the 3-day grace
	//        head where the period still resolves orange with no penalty
	// WHEN: Recording the payment
	// THEN: The frozen penalty is zero, matching what the period showed a
	//       moment before payment, and the summary total stays zero

	ts := newTestServer(engine.NewDate(2026, time.January, 17))
	createActiveConfig(t, ts, standardConfigJSON("2026-01-01"))
	createSavingsContract(t, ts, "ct-1")

	rec := ts.do(t, http.MethodGet, "/api/contracts/ct-1/schedule", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[[]DuePeriodDTO](t, rec)
	require.Equal(t, "orange", before[0].Severity)

	rec = ts.do(t, http.MethodPost, "/api/contracts/ct-1/payments", RecordPaymentRequest{
		MonthIndex: 1,
		Amount:     "5000",
		PaidAt:     "2026-01-17",
		Mode:       "cash",
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	period := decode[DuePeriodDTO](t, rec)
	assert.Equal(t, string(engine.PeriodPaid), period.Status)
	assert.Equal(t, 2, period.PenaltyDays)
	assert.Equal(t, "0", period.PenaltyApplied)

	rec = ts.do(t, http.MethodGet, "/api/contracts/ct-1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[SummaryDTO](t, rec)
	assert.Equal(t, "0", summary.PenaltiesTotal)
}

func TestAPI_RecordPayment_Twice_Conflict(t *testing.T) {
	ts := newTestServer(engine.NewDate(2026, time.January, 15))
	createActiveConfig(t, ts, standardConfigJSON("2026-01-01"))
	createSavingsContract(t, ts, "ct-1")

	payment := RecordPaymentRequest{MonthIndex: 1, Amount: "5000", PaidAt: "2026-01-15"}

	rec := ts.do(t, http.MethodPost, "/api/contracts/ct-1/payments", payment)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/contracts/ct-1/payments", payment)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_RecordPayment_UnknownPeriod(t *testing.T) {
	ts := newTestServer(engine.NewDate(2026, time.January, 15))
	createActiveConfig(t, ts, standardConfigJSON("2026-01-01"))
	createSavingsContract(t, ts, "ct-1")

	rec := ts.do(t, http.MethodPost, "/api/contracts/ct-1/payments", RecordPaymentRequest{
		MonthIndex: 99, Amount: "5000", PaidAt: "2026-01-15",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_RefusePeriod_DegradesContractStatus(t *testing.T) {
	// GIVEN: A refused first month
	// WHEN: Reading the contract back
	// THEN: The stored projection moved to LATE_WITH_PENALTY

	ts := newTestServer(engine.NewDate(2026, time.January, 15))
	createActiveConfig(t, ts, standardConfigJSON("2026-01-01"))
	createSavingsContract(t, ts, "ct-1")

	rec := ts.do(t, http.MethodPost, "/api/contracts/ct-1/periods/1/refuse", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	period := decode[DuePeriodDTO](t, rec)
	assert.Equal(t, string(engine.PeriodRefused), period.Status)
	assert.Equal(t, "red", period.Severity)

	rec = ts.do(t, http.MethodGet, "/api/contracts/ct-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	contract := decode[ContractDTO](t, rec)
	assert.Equal(t, string(savings.StatusLateWithPenalty), contract.Status)
}

// =============================================================================
// STATUS TRANSITION TESTS
// =============================================================================

func TestAPI_TerminateSavingsContract(t *testing.T) {
	ts := newTestServer(engine.NewDate(2026, time.January, 15))
	createActiveConfig(t, ts, standardConfigJSON("2026-01-01"))
	createSavingsContract(t, ts, "ct-1")

	rec := ts.do(t, http.MethodPost, "/api/contracts/ct-1/status", AdvanceStatusRequest{
		To: string(savings.StatusTerminated),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	contract := decode[ContractDTO](t, rec)
	assert.Equal(t, string(savings.StatusTerminated), contract.Status)

	// Only termination is accepted for savings families.
	rec = ts.do(t, http.MethodPost, "/api/contracts/ct-1/status", AdvanceStatusRequest{To: "COMPLETED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_LendingWorkflow_StepByStep(t *testing.T) {
	ts := newTestServer(engine.NewDate(2026, time.January, 1))

	payload := standardConfigJSON("2026-01-01")
	payload.Family = string(lending.FamilyLoan)
	payload.BonusTable = nil
	createActiveConfig(t, ts, payload)

	rec := ts.do(t, http.MethodPost, "/api/contracts", CreateContractRequest{
		ID:             "loan-1",
		Family:         string(lending.FamilyLoan),
		FirstDueDate:   "2026-02-01",
		Principal:      "10000",
		InterestRate:   "12",
		DurationMonths: 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Skipping steps is rejected
	rec = ts.do(t, http.MethodPost, "/api/contracts/loan-1/status", AdvanceStatusRequest{
		To: string(lending.StatusActive),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, next := range []lending.Status{
		lending.StatusPending,
		lending.StatusApproved,
		lending.StatusSimulated,
		lending.StatusActive,
	} {
		rec = ts.do(t, http.MethodPost, "/api/contracts/loan-1/status", AdvanceStatusRequest{To: string(next)})
		require.Equal(t, http.StatusOK, rec.Code, "to %s: %s", next, rec.Body.String())
		contract := decode[ContractDTO](t, rec)
		assert.Equal(t, string(next), contract.Status)
	}
}

// =============================================================================
// SUMMARY AND CALENDAR TESTS
// =============================================================================

func TestAPI_Summary_SavingsWithBonus(t *testing.T) {
	// GIVEN: Months 1-5 paid on time
	// WHEN: Reading the summary in June
	// THEN: Month index 5, bonus 5000*(2%+2.5%) = 225

	ts := newTestServer(engine.NewDate(2026, time.January, 15))
	createActiveConfig(t, ts, standardConfigJSON("2026-01-01"))
	createSavingsContract(t, ts, "ct-1")

	for m := 1; m <= 5; m++ {
		dueAt := engine.NewDate(2026, time.January, 15).AddMonths(m - 1)
		rec := ts.do(t, http.MethodPost, "/api/contracts/ct-1/payments", RecordPaymentRequest{
			MonthIndex: m, Amount: "5000", PaidAt: dueAt.String(),
		})
		require.Equal(t, http.StatusOK, rec.Code, "month %d: %s", m, rec.Body.String())
	}

	ts.handler.Now = func() engine.DatePoint { return engine.NewDate(2026, time.June, 10) }

	rec := ts.do(t, http.MethodGet, "/api/contracts/ct-1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[SummaryDTO](t, rec)

	assert.Equal(t, 12, summary.TotalPeriods)
	assert.Equal(t, 5, summary.PaidPeriods)
	assert.Equal(t, 5, summary.CurrentMonthIndex)
	assert.Equal(t, "225", summary.BonusAccrued)
	assert.Equal(t, "25000", summary.AmountPaid)
	assert.Equal(t, "35000", summary.AmountRemaining)
	assert.Equal(t, "2026-06-15", summary.NextDueAt)
}

func TestAPI_Calendar_AggregatesAcrossContracts(t *testing.T) {
	// GIVEN: Two contracts due on the same day, one paid and one overdue
	// WHEN: Reading the calendar window
	// THEN: One aggregate per day, worst severity, amounts conserved

	ts := newTestServer(engine.NewDate(2026, time.January, 15))
	createActiveConfig(t, ts, standardConfigJSON("2026-01-01"))
	createSavingsContract(t, ts, "ct-1")
	createSavingsContract(t, ts, "ct-2")

	rec := ts.do(t, http.MethodPost, "/api/contracts/ct-1/payments", RecordPaymentRequest{
		MonthIndex: 1, Amount: "5000", PaidAt: "2026-01-15",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Move past the penalty window so ct-2's first month resolves red
	ts.handler.Now = func() engine.DatePoint { return engine.NewDate(2026, time.February, 5) }

	rec = ts.do(t, http.MethodGet, "/api/calendar?from=2026-01-01&to=2026-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	days := decode[[]CalendarDayDTO](t, rec)

	require.Len(t, days, 1)
	assert.Equal(t, "2026-01-15", days[0].Date)
	assert.Equal(t, 2, days[0].Count)
	assert.Equal(t, "10000", days[0].TotalAmount)
	assert.Equal(t, "5000", days[0].PaidAmount)
	assert.Equal(t, "5000", days[0].RemainingAmount)
	assert.Equal(t, "red", days[0].Severity)
}

func TestAPI_Calendar_BadRange(t *testing.T) {
	ts := newTestServer(engine.NewDate(2026, time.January, 15))

	rec := ts.do(t, http.MethodGet, "/api/calendar?from=bad&to=2026-01-31", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
