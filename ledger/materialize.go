/*
materialize.go - Freezing the applied budget for past dates

PURPOSE:
  A day's budget is computed from settings, but a day that has passed must
  never change when settings later do. The materializer is the boundary
  between the two regimes: for every date strictly before "today" that has
  no frozen budget yet, it computes the figures the settings in force AS OF
  that date would have produced and appends a DailyBudgetCreated event.
  From then on replay carries the frozen pair; nothing ever recomputes it.

SAFETY:
  - The frozen-budget event id is derived from the date, so a retried or
    concurrent-looking materialization pass appends nothing new (append is
    a no-op on a known id).
  - MaterializeUpTo only fills gaps; dates that already carry a budget are
    left exactly as they are. Calling it repeatedly is safe and cheap.
  - "Strictly before today" lives HERE, in the caller: EnsureDailyBudget-
    ForDate itself has no date restriction, so callers that want a
    provisional figure for today can ask for one without freezing it by
    accident (they must not append it; this function does, which is why
    the materializer never invokes it for today or the future).
*/
package ledger

import (
	"context"
)

// EnsureDailyBudgetForDate returns the applied budget for date. If a budget
// already exists after replay it is returned unchanged. Otherwise the state
// as of date is replayed, the stats calculator computes the figures, and a
// DailyBudgetCreated event with a deterministic id is appended.
func (en *Engine) EnsureDailyBudgetForDate(ctx context.Context, date Date, events []Event) (DailyBudget, error) {
	state := en.Replay(ctx, events, nil)
	if b, ok := state.DailyBudgets[date]; ok {
		return b, nil
	}

	if en.stats == nil {
		return DailyBudget{}, ErrStatsCalculator
	}

	// Settings and entries in force as of the date being frozen, not as of
	// now. The full budget map still rides along so the rollover chain can
	// use already-frozen neighbors.
	asOf := en.Replay(ctx, state.Events, &date)

	budget, err := en.stats.DailyFigures(asOf.Settings, asOf.Entries, state.DailyBudgets, date)
	if err != nil {
		return DailyBudget{}, err
	}

	en.log.Append(ctx, NewDailyBudgetCreated(en.clock, date, budget))
	return budget, nil
}

// MaterializeUpTo freezes every unfrozen date from the settings start date
// through `through` (inclusive) that lies strictly before the Clock's
// current date. It returns the dates newly materialized by this call; an
// empty slice means everything was already frozen or the range was empty.
// This is the sole mechanism that locks history.
func (en *Engine) MaterializeUpTo(ctx context.Context, through Date) ([]Date, error) {
	state := en.Replay(ctx, nil, nil)

	start := state.Settings.StartDate
	if start.IsZero() {
		return nil, ErrNoStartDate
	}

	today := en.clock.Today()

	var materialized []Date
	for date := start; !date.After(through); date = date.Next() {
		if !date.Before(today) {
			break
		}
		if _, ok := state.DailyBudgets[date]; ok {
			continue
		}
		budget, err := en.EnsureDailyBudgetForDate(ctx, date, nil)
		if err != nil {
			return materialized, err
		}
		// Keep the in-memory view current so the next iteration's rollover
		// chain sees this date as frozen without another load.
		state.DailyBudgets[date] = budget
		materialized = append(materialized, date)
	}
	return materialized, nil
}
