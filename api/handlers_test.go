package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewbalance-team/BrewBalance/api"
	"github.com/brewbalance-team/BrewBalance/budget"
	"github.com/brewbalance-team/BrewBalance/ledger"
	"github.com/brewbalance-team/BrewBalance/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	router http.Handler
	clock  *ledger.ManualClock
	mem    *store.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mem := store.NewMemory()
	clock := ledger.NewManualClock(time.Date(2026, time.February, 9, 10, 0, 0, 0, time.UTC))
	calculator := budget.NewCalculator()
	log := ledger.NewEventLog(mem, nil)
	engine := ledger.NewEngine(log, clock, calculator, nil)
	migrator := ledger.NewMigrator(mem, log, engine, clock, nil)
	handler := api.NewHandler(engine, migrator, clock, calculator, nil)

	return &testServer{router: api.NewRouter(handler), clock: clock, mem: mem}
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
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// =============================================================================
// STATE AND MUTATIONS
// =============================================================================

func TestAPI_AddEntry_ShowsUpInState(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/entries", map[string]any{
		"date":   "2026-02-09",
		"amount": "12.50",
		"note":   "coffee",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	state := decode[api.StateDTO](t, ts.do(t, http.MethodGet, "/api/state", nil))
	require.Len(t, state.Entries, 1)
	assert.Equal(t, "coffee", state.Entries[0].Note)
	assert.Equal(t, 1, state.EventCount)
}

func TestAPI_AddEntry_InvalidDate(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/entries", map[string]any{
		"date":   "02/09/2026",
		"amount": "5",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_UpdateSettings_PartialPatch(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPatch, "/api/settings", map[string]any{
		"weekdayBudget": "300",
		"startDate":     "2026-02-09",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	settings := decode[ledger.Settings](t, rec)
	assert.Equal(t, "300", settings.WeekdayBudget.String())
	assert.Equal(t, "2026-02-09", settings.StartDate.String())
	// Untouched default survives the patch.
	assert.Equal(t, "USD", settings.Currency)
}

// =============================================================================
// BUDGETS
// =============================================================================

func TestAPI_GetBudget_PastDateFreezes_FutureDoesNot(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPatch, "/api/settings", map[string]any{
		"weekdayBudget": "300",
		"weekendBudget": "150",
		"startDate":     "2026-02-09",
	})

	// Advance to Tuesday; Monday is now past.
	ts.clock.Set(time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC))

	monday := decode[api.BudgetDTO](t, ts.do(t, http.MethodGet, "/api/budget/2026-02-09", nil))
	assert.True(t, monday.Frozen)
	assert.Equal(t, "300", monday.BaseBudget.String())

	// Today computes provisionally without freezing.
	tuesday := decode[api.BudgetDTO](t, ts.do(t, http.MethodGet, "/api/budget/2026-02-10", nil))
	assert.False(t, tuesday.Frozen)
	assert.Equal(t, "300", tuesday.BaseBudget.String())
	assert.Equal(t, "300", tuesday.Rollover.String())

	// The provisional read appended nothing.
	state := decode[api.StateDTO](t, ts.do(t, http.MethodGet, "/api/state", nil))
	_, frozen := state.DailyBudgets["2026-02-10"]
	assert.False(t, frozen, "today must not be frozen by a read")
}

func TestAPI_SetRollover_ReportsFoldResultAndFrozenState(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPatch, "/api/settings", map[string]any{
		"weekdayBudget": "300",
		"weekendBudget": "150",
		"startDate":     "2026-02-09",
	})

	// An unfrozen future date gets the rollover but no applied budget, so
	// the response must not claim it is frozen or carry a base budget.
	future := decode[api.BudgetDTO](t, ts.do(t, http.MethodPost, "/api/rollover", map[string]any{
		"date":     "2026-02-12",
		"rollover": "25",
		"reason":   "gift card",
	}))
	assert.False(t, future.Frozen)
	assert.Equal(t, "0", future.BaseBudget.String())
	assert.Equal(t, "25", future.Rollover.String())

	// Freeze Monday, then adjust it: now the date really is frozen and the
	// base comes from the applied budget.
	ts.clock.Set(time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC))
	ts.do(t, http.MethodGet, "/api/budget/2026-02-09", nil)

	monday := decode[api.BudgetDTO](t, ts.do(t, http.MethodPost, "/api/rollover", map[string]any{
		"date":     "2026-02-09",
		"rollover": "50",
	}))
	assert.True(t, monday.Frozen)
	assert.Equal(t, "300", monday.BaseBudget.String())
	assert.Equal(t, "50", monday.Rollover.String())
	assert.Equal(t, "350", monday.Total.String())
}

func TestAPI_Materialize_DefaultsToYesterday(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPatch, "/api/settings", map[string]any{
		"weekdayBudget": "300",
		"weekendBudget": "150",
		"startDate":     "2026-02-09",
	})
	ts.clock.Set(time.Date(2026, time.February, 11, 9, 0, 0, 0, time.UTC))

	resp := decode[api.MaterializeResponse](t, ts.do(t, http.MethodPost, "/api/materialize", nil))
	assert.Equal(t, []string{"2026-02-09", "2026-02-10"}, resp.Materialized)
}

func TestAPI_Materialize_NoStartDate_Conflict(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/materialize", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestAPI_Migrate_ThenReset(t *testing.T) {
	ts := newTestServer(t)

	require.NoError(t, ts.mem.SetItem(context.Background(), ledger.KeyLegacySettings,
		`{"weekdayBudget":"300","weekendBudget":"150","startDate":"2026-02-07"}`))

	report := decode[ledger.MigrationReport](t, ts.do(t, http.MethodPost, "/api/migrate", nil))
	assert.False(t, report.AlreadyMigrated)
	assert.True(t, report.SettingsMigrated)
	assert.Equal(t, 2, report.BudgetsCreated) // Sat 02-07, Sun 02-08

	again := decode[ledger.MigrationReport](t, ts.do(t, http.MethodPost, "/api/migrate", nil))
	assert.True(t, again.AlreadyMigrated)

	rec := ts.do(t, http.MethodPost, "/api/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	state := decode[api.StateDTO](t, ts.do(t, http.MethodGet, "/api/state", nil))
	assert.Zero(t, state.EventCount)
}

func TestAPI_Challenges_CreateAndArchive(t *testing.T) {
	ts := newTestServer(t)

	created := decode[ledger.Challenge](t, ts.do(t, http.MethodPost, "/api/challenges", map[string]any{
		"name":      "vacation fund",
		"target":    "500",
		"startDate": "2026-02-01",
		"endDate":   "2026-03-01",
	}))
	require.NotEmpty(t, created.ID)

	rec := ts.do(t, http.MethodPost, "/api/challenges/"+created.ID+"/archive", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	state := decode[api.StateDTO](t, ts.do(t, http.MethodGet, "/api/state", nil))
	require.Len(t, state.Settings.Challenges, 1)
	assert.True(t, state.Settings.Challenges[0].Archived)
}
