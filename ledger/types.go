/*
Package ledger provides the event-sourced core of the budget tracker.

PURPOSE:
  Every change to the tracker (a settings edit, a recorded expense, a
  rollover adjustment, a frozen daily budget) is an immutable Event in an
  append-only log. Settings, entries and per-day budgets are never stored
  standalone; they are derived by replaying the log. There is no separate
  mutable state that can drift out of sync with history.

KEY CONCEPTS IN THIS FILE (types.go):
  - Event: tagged, timestamped log entry (the only unit of persistence)
  - Settings / SettingsPatch: derived configuration and partial updates
  - Entry: an immutable expense record
  - DailyBudget: the applied {baseBudget, rollover} pair for one date
  - State: the result of a replay

DESIGN PRINCIPLES:
  1. Append-only: events are inserted once, never edited or deleted
  2. Determinism: replay is a pure fold over the sorted event sequence
  3. Frozen history: once a past date has a DailyBudgetCreated event,
     later settings edits can never change that date's figures
  4. Precision: decimal.Decimal for all money, never float64

SEE ALSO:
  - eventlog.go: durable, ordered storage of events
  - replay.go: the fold from events to State
  - materialize.go: freezing past dates
  - migrate.go: one-time import of pre-event-sourced state
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// EVENT - Tagged union, the only unit of persistence
// =============================================================================

// Kind tags an event with its payload type.
type Kind string

const (
	KindSettingsUpdated    Kind = "settings_updated"
	KindEntryAdded         Kind = "entry_added"
	KindDailyBudgetCreated Kind = "daily_budget_created"
	KindCustomRolloverSet  Kind = "custom_rollover_set"
	KindChallengeCreated   Kind = "challenge_created"
	KindChallengeArchived  Kind = "challenge_archived"
)

// Event is one entry of the append-only log. Exactly one payload pointer is
// set, matching Kind. The flat header plus a kind-specific payload object is
// also the persisted JSON shape.
//
// Timestamp zero is reserved: only the migration settings event carries
// MigrationEpoch, so it sorts before everything else regardless of when the
// migration actually ran. Builders in events.go never produce it.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Timestamp Timestamp `json:"timestamp"`

	Settings  *SettingsPatch   `json:"settings,omitempty"`
	Entry     *Entry           `json:"entry,omitempty"`
	Budget    *BudgetPayload   `json:"budget,omitempty"`
	Rollover  *RolloverPayload `json:"rollover,omitempty"`
	Challenge *Challenge       `json:"challenge,omitempty"`
}

// BudgetPayload is the frozen, applied budget for one date.
type BudgetPayload struct {
	Date       Date            `json:"date"`
	BaseBudget decimal.Decimal `json:"baseBudget"`
	Rollover   decimal.Decimal `json:"rollover"`
}

// RolloverPayload adjusts a date's opening balance.
type RolloverPayload struct {
	Date     Date            `json:"date"`
	Rollover decimal.Decimal `json:"rollover"`
	Delta    decimal.Decimal `json:"delta"`
	Reason   string          `json:"reason,omitempty"`
}

// Challenge is a savings-goal snapshot. Challenges are lifecycle markers for
// display; replay carries them through but never folds them into budget
// arithmetic.
type Challenge struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Target    decimal.Decimal `json:"target"`
	StartDate Date            `json:"startDate"`
	EndDate   Date            `json:"endDate"`
	CreatedAt Timestamp       `json:"createdAt"`
	Archived  bool            `json:"archived,omitempty"`
}

// =============================================================================
// ENTRY - Immutable expense record
// =============================================================================

type Entry struct {
	ID        string          `json:"id"`
	Date      Date            `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	Timestamp Timestamp       `json:"timestamp"`
}

// =============================================================================
// SETTINGS - Derived configuration (never stored standalone)
// =============================================================================

// Settings is the configuration in force after folding every SettingsUpdated
// patch, in timestamp order, onto DefaultSettings.
type Settings struct {
	UserName       string          `json:"userName"`
	Currency       string          `json:"currency"`
	WeekdayBudget  decimal.Decimal `json:"weekdayBudget"`
	WeekendBudget  decimal.Decimal `json:"weekendBudget"`
	AlarmThreshold decimal.Decimal `json:"alarmThreshold"`
	StartDate      Date            `json:"startDate"`
	EndDate        *Date           `json:"endDate,omitempty"`

	// Per-date overrides of the base budget / opening rollover. These shape
	// future computation only; frozen dates are untouched by later edits.
	BudgetOverrides   map[Date]decimal.Decimal `json:"budgetOverrides,omitempty"`
	RolloverOverrides map[Date]decimal.Decimal `json:"rolloverOverrides,omitempty"`

	// Active and archived savings challenges, display-only.
	Challenges []Challenge `json:"challenges,omitempty"`
}

// DefaultSettings is the fixed fold seed. Replay determinism depends on this
// never changing per environment.
func DefaultSettings() Settings {
	return Settings{
		Currency:       "USD",
		WeekdayBudget:  decimal.Zero,
		WeekendBudget:  decimal.Zero,
		AlarmThreshold: decimal.Zero,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left untouched;
// non-nil fields replace the current value wholesale (shallow merge: maps
// are swapped, not merged key by key).
type SettingsPatch struct {
	UserName          *string                  `json:"userName,omitempty"`
	Currency          *string                  `json:"currency,omitempty"`
	WeekdayBudget     *decimal.Decimal         `json:"weekdayBudget,omitempty"`
	WeekendBudget     *decimal.Decimal         `json:"weekendBudget,omitempty"`
	AlarmThreshold    *decimal.Decimal         `json:"alarmThreshold,omitempty"`
	StartDate         *Date                    `json:"startDate,omitempty"`
	EndDate           *Date                    `json:"endDate,omitempty"`
	BudgetOverrides   map[Date]decimal.Decimal `json:"budgetOverrides,omitempty"`
	RolloverOverrides map[Date]decimal.Decimal `json:"rolloverOverrides,omitempty"`
	Challenges        []Challenge              `json:"challenges,omitempty"`
}

// ApplyTo shallow-merges the patch onto s and returns the result.
func (p *SettingsPatch) ApplyTo(s Settings) Settings {
	if p == nil {
		return s
	}
	if p.UserName != nil {
		s.UserName = *p.UserName
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.WeekdayBudget != nil {
		s.WeekdayBudget = *p.WeekdayBudget
	}
	if p.WeekendBudget != nil {
		s.WeekendBudget = *p.WeekendBudget
	}
	if p.AlarmThreshold != nil {
		s.AlarmThreshold = *p.AlarmThreshold
	}
	if p.StartDate != nil {
		s.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		s.EndDate = p.EndDate
	}
	if p.BudgetOverrides != nil {
		s.BudgetOverrides = p.BudgetOverrides
	}
	if p.RolloverOverrides != nil {
		s.RolloverOverrides = p.RolloverOverrides
	}
	if p.Challenges != nil {
		// Copied, not aliased: a later archive event mutates this slice, and
		// that must never write back into the patch payload.
		s.Challenges = append([]Challenge(nil), p.Challenges...)
	}
	return s
}

// =============================================================================
// DAILY BUDGET - The applied figures for one date
// =============================================================================

// DailyBudget is the applied {baseBudget, rollover} pair for a date. Once a
// DailyBudgetCreated event exists for a date in the past, these figures are
// frozen: they are replayed, never recomputed.
type DailyBudget struct {
	BaseBudget decimal.Decimal `json:"baseBudget"`
	Rollover   decimal.Decimal `json:"rollover"`
}

// Total is the opening balance for the date.
func (b DailyBudget) Total() decimal.Decimal {
	return b.BaseBudget.Add(b.Rollover)
}

// =============================================================================
// STATE - Result of a replay
// =============================================================================

// State is the derived application state after folding an event sequence.
// Events holds the sorted input, so callers can render history without a
// second load.
type State struct {
	Settings     Settings             `json:"settings"`
	Entries      []Entry              `json:"entries"`
	DailyBudgets map[Date]DailyBudget `json:"dailyBudgets"`
	Events       []Event              `json:"events"`
}

// SpentOn sums the entries recorded for a date.
func (s *State) SpentOn(date Date) decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Entries {
		if e.Date == date {
			total = total.Add(e.Amount)
		}
	}
	return total
}
