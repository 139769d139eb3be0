package budget_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewbalance-team/BrewBalance/budget"
	"github.com/brewbalance-team/BrewBalance/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func trackerSettings(startDate string, weekday, weekend float64) ledger.Settings {
	s := ledger.DefaultSettings()
	s.StartDate = ledger.MustDate(startDate)
	s.WeekdayBudget = decimal.NewFromFloat(weekday)
	s.WeekendBudget = decimal.NewFromFloat(weekend)
	return s
}

func entry(date string, amount float64) ledger.Entry {
	return ledger.Entry{
		ID:     "e-" + date,
		Date:   ledger.MustDate(date),
		Amount: decimal.NewFromFloat(amount),
	}
}

func figures(t *testing.T, settings ledger.Settings, entries []ledger.Entry, budgets map[ledger.Date]ledger.DailyBudget, date string) ledger.DailyBudget {
	t.Helper()
	b, err := budget.NewCalculator().DailyFigures(settings, entries, budgets, ledger.MustDate(date))
	require.NoError(t, err)
	return b
}

// =============================================================================
// BASE BUDGET
// =============================================================================

func TestBaseBudget_WeekdayVsWeekend(t *testing.T) {
	// 2026-02-09 is a Monday, 2026-02-07 a Saturday.
	settings := trackerSettings("2026-02-01", 300, 150)

	monday := figures(t, settings, nil, nil, "2026-02-09")
	assert.True(t, monday.BaseBudget.Equal(decimal.NewFromInt(300)))

	saturday := figures(t, settings, nil, nil, "2026-02-07")
	assert.True(t, saturday.BaseBudget.Equal(decimal.NewFromInt(150)))
}

func TestBaseBudget_PerDateOverrideWins(t *testing.T) {
	settings := trackerSettings("2026-02-01", 300, 150)
	settings.BudgetOverrides = map[ledger.Date]decimal.Decimal{
		ledger.MustDate("2026-02-09"): decimal.NewFromInt(50),
	}

	b := figures(t, settings, nil, nil, "2026-02-09")
	assert.True(t, b.BaseBudget.Equal(decimal.NewFromInt(50)))
}

func TestBaseBudget_OutsideTrackedRange_Zero(t *testing.T) {
	settings := trackerSettings("2026-02-09", 300, 150)
	end := ledger.MustDate("2026-02-20")
	settings.EndDate = &end

	before := figures(t, settings, nil, nil, "2026-02-08")
	assert.True(t, before.BaseBudget.IsZero())

	after := figures(t, settings, nil, nil, "2026-02-23")
	assert.True(t, after.BaseBudget.IsZero())
}

// =============================================================================
// ROLLOVER CHAIN
// =============================================================================

func TestRollover_StartDate_Zero(t *testing.T) {
	settings := trackerSettings("2026-02-09", 300, 150)

	b := figures(t, settings, nil, nil, "2026-02-09")
	assert.True(t, b.Rollover.IsZero())
}

func TestRollover_CarriesUnspentForward(t *testing.T) {
	// Mon 300, spend 120 -> Tue carries 180; Tue unspent -> Wed carries 480.
	settings := trackerSettings("2026-02-09", 300, 150)
	entries := []ledger.Entry{entry("2026-02-09", 120)}

	tuesday := figures(t, settings, entries, nil, "2026-02-10")
	assert.True(t, tuesday.Rollover.Equal(decimal.NewFromInt(180)), "got %v", tuesday.Rollover)

	wednesday := figures(t, settings, entries, nil, "2026-02-11")
	assert.True(t, wednesday.Rollover.Equal(decimal.NewFromInt(480)), "got %v", wednesday.Rollover)
}

func TestRollover_OverspendGoesNegative(t *testing.T) {
	settings := trackerSettings("2026-02-09", 300, 150)
	entries := []ledger.Entry{entry("2026-02-09", 400)}

	tuesday := figures(t, settings, entries, nil, "2026-02-10")
	assert.True(t, tuesday.Rollover.Equal(decimal.NewFromInt(-100)), "got %v", tuesday.Rollover)
}

func TestRollover_FrozenDayShortCircuitsTheChain(t *testing.T) {
	// GIVEN: Monday frozen with figures the current settings would NOT produce
	// WHEN: Computing Tuesday
	// THEN: The frozen figures feed the carry, not recomputation

	settings := trackerSettings("2026-02-01", 200, 100) // current rate: 200
	frozen := map[ledger.Date]ledger.DailyBudget{
		ledger.MustDate("2026-02-09"): {
			BaseBudget: decimal.NewFromInt(300), // frozen under the old rate
			Rollover:   decimal.Zero,
		},
	}

	tuesday := figures(t, settings, nil, frozen, "2026-02-10")
	assert.True(t, tuesday.Rollover.Equal(decimal.NewFromInt(300)),
		"frozen Monday must carry 300, got %v", tuesday.Rollover)
}

func TestRollover_PerDateOverrideWins(t *testing.T) {
	settings := trackerSettings("2026-02-01", 300, 150)
	settings.RolloverOverrides = map[ledger.Date]decimal.Decimal{
		ledger.MustDate("2026-02-10"): decimal.NewFromInt(7),
	}

	b := figures(t, settings, nil, nil, "2026-02-10")
	assert.True(t, b.Rollover.Equal(decimal.NewFromInt(7)))
}

// =============================================================================
// PURITY
// =============================================================================

func TestDailyFigures_Pure(t *testing.T) {
	// Same inputs twice, same output; inputs unmodified.
	settings := trackerSettings("2026-02-09", 300, 150)
	entries := []ledger.Entry{entry("2026-02-09", 120)}
	frozen := map[ledger.Date]ledger.DailyBudget{
		ledger.MustDate("2026-02-09"): {BaseBudget: decimal.NewFromInt(300), Rollover: decimal.Zero},
	}

	first := figures(t, settings, entries, frozen, "2026-02-10")
	second := figures(t, settings, entries, frozen, "2026-02-10")

	assert.True(t, first.BaseBudget.Equal(second.BaseBudget))
	assert.True(t, first.Rollover.Equal(second.Rollover))
	assert.Len(t, frozen, 1, "calculator must not mutate the budgets map")
}
