/*
replay.go - Pure fold of the event log into derived state

PURPOSE:
  Replay reconstructs settings, entries and per-day budgets from scratch on
  every read. It is a pure function of the event sequence plus an optional
  cutoff date: no wall-clock reads, no randomness, no external state. Two
  replays of the same sequence produce identical State.

CUTOFF SEMANTICS (pinned):
  Replay(events, through) folds exactly the events with
      timestamp < StartOfDay(through.Next())
  i.e. the whole of the cutoff day is included: an event stamped exactly at
  midnight UTC of `through` is IN, one stamped exactly at midnight of the
  following day is OUT. Both sides are covered by tests.

UNKNOWN KINDS (documented policy):
  An event whose kind no fold arm recognizes is skipped and logged, never
  folded and never fatal. A log written by a newer version of the program
  must still replay on an older one.

SEE ALSO:
  - materialize.go: freezing past dates via ensure/materialize
  - types.go: the fold rules' data model
*/
package ledger

import (
	"context"
	"log/slog"
)

// Engine replays the event log into State and materializes frozen budgets
// for past dates.
type Engine struct {
	log    *EventLog
	clock  Clock
	stats  StatsCalculator
	logger *slog.Logger
}

func NewEngine(log *EventLog, clock Clock, stats StatsCalculator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		log:    log,
		clock:  clock,
		stats:  stats,
		logger: logger.With("component", "replay"),
	}
}

// Log exposes the underlying event log for callers that append directly.
func (en *Engine) Log() *EventLog { return en.log }

// Replay folds events into derived state. A nil events slice loads from the
// event log; a non-nil through excludes everything after the cutoff day.
// The input is sorted defensively; it must not be assumed sorted.
func (en *Engine) Replay(ctx context.Context, events []Event, through *Date) State {
	if events == nil {
		events = en.log.Load(ctx)
	} else {
		events = append([]Event(nil), events...)
		sortEvents(events)
	}

	if through != nil {
		cutoff := StartOfDay(through.Next())
		kept := events[:0:0]
		for _, e := range events {
			if e.Timestamp < cutoff {
				kept = append(kept, e)
			}
		}
		events = kept
	}

	state := State{
		Settings:     DefaultSettings(),
		DailyBudgets: make(map[Date]DailyBudget),
		Events:       events,
	}

	for _, e := range events {
		switch e.Kind {
		case KindSettingsUpdated:
			state.Settings = e.Settings.ApplyTo(state.Settings)

		case KindEntryAdded:
			if e.Entry != nil {
				state.Entries = append(state.Entries, *e.Entry)
			}

		case KindDailyBudgetCreated:
			if e.Budget != nil {
				// Last writer within this fold wins. Safe because the
				// materializer never appends a second budget for a frozen
				// past date.
				state.DailyBudgets[e.Budget.Date] = DailyBudget{
					BaseBudget: e.Budget.BaseBudget,
					Rollover:   e.Budget.Rollover,
				}
			}

		case KindCustomRolloverSet:
			if e.Rollover != nil {
				b := state.DailyBudgets[e.Rollover.Date] // zero BaseBudget if absent
				b.Rollover = e.Rollover.Rollover
				state.DailyBudgets[e.Rollover.Date] = b
			}

		case KindChallengeCreated:
			if e.Challenge != nil {
				state.Settings.Challenges = append(state.Settings.Challenges, *e.Challenge)
			}

		case KindChallengeArchived:
			if e.Challenge != nil {
				state.Settings.Challenges = archiveChallenge(state.Settings.Challenges, *e.Challenge)
			}

		default:
			en.logger.WarnContext(ctx, "skipping event of unknown kind",
				"id", e.ID, "kind", string(e.Kind))
		}
	}
	return state
}

// archiveChallenge marks the matching challenge archived on a fresh copy of
// the slice, or records the archived snapshot directly when the creation
// event is missing. Copy-on-write: the incoming slice may still alias an
// input event's patch payload, which replay must never write into.
func archiveChallenge(challenges []Challenge, archived Challenge) []Challenge {
	for i, ch := range challenges {
		if ch.ID == archived.ID {
			out := append([]Challenge(nil), challenges...)
			out[i].Archived = true
			return out
		}
	}
	archived.Archived = true
	return append(challenges, archived)
}
