package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// EVENT BUILDERS
// =============================================================================
// User-originated events get a random id; the frozen-budget event gets a
// deterministic id derived from its date, so repeated materialization of the
// same date can never create duplicates (append is a no-op on a known id).

// stamp reads the clock and keeps MigrationEpoch unreachable for ordinary
// events. A clock sitting exactly on the epoch is clamped forward 1ms.
func stamp(clock Clock) Timestamp {
	ts := TimestampOf(clock.Now())
	if ts == MigrationEpoch {
		ts = MigrationEpoch + 1
	}
	return ts
}

func newID() string { return uuid.NewString() }

// NewSettingsUpdated records a partial settings edit.
func NewSettingsUpdated(clock Clock, patch SettingsPatch) Event {
	return Event{
		ID:        newID(),
		Kind:      KindSettingsUpdated,
		Timestamp: stamp(clock),
		Settings:  &patch,
	}
}

// NewEntryAdded records a spend.
func NewEntryAdded(clock Clock, date Date, amount decimal.Decimal, note string) Event {
	ts := stamp(clock)
	return Event{
		ID:        newID(),
		Kind:      KindEntryAdded,
		Timestamp: ts,
		Entry: &Entry{
			ID:        newID(),
			Date:      date,
			Amount:    amount,
			Note:      note,
			Timestamp: ts,
		},
	}
}

// NewCustomRolloverSet adjusts a date's opening balance. rollover is the new
// value, delta the change against the previous one.
func NewCustomRolloverSet(clock Clock, date Date, rollover, delta decimal.Decimal, reason string) Event {
	return Event{
		ID:        newID(),
		Kind:      KindCustomRolloverSet,
		Timestamp: stamp(clock),
		Rollover: &RolloverPayload{
			Date:     date,
			Rollover: rollover,
			Delta:    delta,
			Reason:   reason,
		},
	}
}

// NewChallengeCreated marks the start of a savings challenge.
func NewChallengeCreated(clock Clock, ch Challenge) Event {
	if ch.ID == "" {
		ch.ID = newID()
	}
	ts := stamp(clock)
	if ch.CreatedAt == 0 {
		ch.CreatedAt = ts
	}
	return Event{
		ID:        newID(),
		Kind:      KindChallengeCreated,
		Timestamp: ts,
		Challenge: &ch,
	}
}

// NewChallengeArchived marks the end of a savings challenge.
func NewChallengeArchived(clock Clock, ch Challenge) Event {
	ch.Archived = true
	return Event{
		ID:        newID(),
		Kind:      KindChallengeArchived,
		Timestamp: stamp(clock),
		Challenge: &ch,
	}
}

// DailyBudgetEventID is the deterministic id of the frozen-budget event for
// a date.
func DailyBudgetEventID(date Date) string {
	return "daily-budget-" + date.String()
}

// NewDailyBudgetCreated freezes the applied figures for a date.
func NewDailyBudgetCreated(clock Clock, date Date, budget DailyBudget) Event {
	return Event{
		ID:        DailyBudgetEventID(date),
		Kind:      KindDailyBudgetCreated,
		Timestamp: stamp(clock),
		Budget: &BudgetPayload{
			Date:       date,
			BaseBudget: budget.BaseBudget,
			Rollover:   budget.Rollover,
		},
	}
}

// Validate rejects events the log should never carry: a missing id or kind,
// or the reserved epoch timestamp on anything but the migration settings
// event (identified by migrationEventID).
func (e Event) Validate() error {
	if e.Timestamp == MigrationEpoch && e.ID != migrationEventID {
		return ErrReservedTimestamp
	}
	switch e.Kind {
	case KindSettingsUpdated, KindEntryAdded, KindDailyBudgetCreated,
		KindCustomRolloverSet, KindChallengeCreated, KindChallengeArchived:
		return nil
	default:
		return ErrUnknownKind
	}
}
