/*
Package budget is the shipped stats calculator for the ledger.

PURPOSE:
  Computes the applied {baseBudget, rollover} figures for a date from the
  settings and entries in force as of that date. The ledger core treats
  this arithmetic as opaque; this package pins one concrete policy:

  BASE BUDGET:
    - per-date override from settings, when present
    - otherwise the weekend rate on Saturday/Sunday, the weekday rate else
    - zero outside [startDate, endDate]

  ROLLOVER (opening carry):
    - per-date override from settings, when present
    - zero on or before the start date
    - otherwise (previous day's base + rollover) - previous day's spend

  Frozen days short-circuit the chain: when the previous day already has an
  applied budget, its frozen figures feed the carry, so later settings edits
  can never leak backwards through the rollover chain.

PURITY:
  DailyFigures reads nothing but its arguments. Same inputs, same output;
  the ledger's replay determinism depends on it.
*/
package budget

import (
	"github.com/shopspring/decimal"

	"github.com/brewbalance-team/BrewBalance/ledger"
)

// Calculator implements ledger.StatsCalculator.
type Calculator struct{}

func NewCalculator() Calculator { return Calculator{} }

// DailyFigures computes the applied budget for date.
func (c Calculator) DailyFigures(settings ledger.Settings, entries []ledger.Entry, budgets map[ledger.Date]ledger.DailyBudget, date ledger.Date) (ledger.DailyBudget, error) {
	return ledger.DailyBudget{
		BaseBudget: c.baseBudget(settings, date),
		Rollover:   c.rollover(settings, entries, budgets, date),
	}, nil
}

func (c Calculator) baseBudget(settings ledger.Settings, date ledger.Date) decimal.Decimal {
	if override, ok := settings.BudgetOverrides[date]; ok {
		return override
	}
	if !settings.StartDate.IsZero() && date.Before(settings.StartDate) {
		return decimal.Zero
	}
	if settings.EndDate != nil && date.After(*settings.EndDate) {
		return decimal.Zero
	}
	if date.IsWeekend() {
		return settings.WeekendBudget
	}
	return settings.WeekdayBudget
}

// rollover walks the carry chain backwards until it finds an anchor (the
// start date, a rollover override, or a frozen day), then folds forward.
func (c Calculator) rollover(settings ledger.Settings, entries []ledger.Entry, budgets map[ledger.Date]ledger.DailyBudget, date ledger.Date) decimal.Decimal {
	if override, ok := settings.RolloverOverrides[date]; ok {
		return override
	}
	if settings.StartDate.IsZero() || !date.After(settings.StartDate) {
		return decimal.Zero
	}

	// Collect the unanchored stretch of days ending at date's predecessor.
	var chain []ledger.Date
	cursor := date.Prev()
	for {
		chain = append(chain, cursor)
		if _, frozen := budgets[cursor]; frozen {
			break
		}
		if _, overridden := settings.RolloverOverrides[cursor]; overridden {
			break
		}
		if !cursor.After(settings.StartDate) {
			break
		}
		cursor = cursor.Prev()
	}

	spent := spendByDate(entries)

	// Fold forward from the anchor: carry after a day is its opening total
	// minus what was spent on it.
	carry := decimal.Zero
	for i := len(chain) - 1; i >= 0; i-- {
		day := chain[i]
		opening := carry.Add(c.baseBudget(settings, day))
		if frozen, ok := budgets[day]; ok {
			opening = frozen.Total()
		} else if override, ok := settings.RolloverOverrides[day]; ok {
			opening = override.Add(c.baseBudget(settings, day))
		}
		carry = opening.Sub(spent[day])
	}
	return carry
}

func spendByDate(entries []ledger.Entry) map[ledger.Date]decimal.Decimal {
	spent := make(map[ledger.Date]decimal.Decimal, len(entries))
	for _, e := range entries {
		spent[e.Date] = spent[e.Date].Add(e.Amount)
	}
	return spent
}
