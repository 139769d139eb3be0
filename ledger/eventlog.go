/*
eventlog.go - Durable, ordered storage of events

PURPOSE:
  EventLog persists the full event sequence under a single Store key as a
  JSON array, sorted by timestamp ascending at rest. It is the only code
  that touches KeyEvents.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: the sequence grows; the only destructive operation is a
     full Clear (reset).
  2. IDEMPOTENT: appending an id the log already contains is a silent
     no-op, not an error and not a duplicate. Retries are always safe.
  3. SORTED AT REST: every save stable-sorts by timestamp; events that
     share a millisecond keep the relative order they were appended in.

ERROR POLICY:
  Absent or corrupt storage degrades to "no events", logged. A failed Store
  READ is different: Append refuses to write after one, because saving on
  top of a failed read would replace the whole history with a single event.
  Save failures are logged and swallowed; durability is best-effort
  (single-user local tool, see errors.go).

SEE ALSO:
  - store.go: the Store contract and key layout
  - replay.go: the consumer of Load
*/
package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
)

// EventLog is the append-only log over a Store. All operations are
// read-modify-write sequences with no locking; correct only under the
// single-writer assumption.
type EventLog struct {
	store  Store
	logger *slog.Logger
}

func NewEventLog(store Store, logger *slog.Logger) *EventLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLog{store: store, logger: logger.With("component", "eventlog")}
}

// Load returns all events, sorted by timestamp. Absent or unparseable
// storage yields an empty slice, never an error.
func (l *EventLog) Load(ctx context.Context) []Event {
	events, err := l.load(ctx)
	if err != nil {
		l.logger.ErrorContext(ctx, "event log read failed, treating as empty", "error", err)
		return nil
	}
	return events
}

// load distinguishes a failed Store read from absent or corrupt storage:
// only the former returns an error. Corrupt JSON still degrades to empty,
// since retrying cannot fix it.
func (l *EventLog) load(ctx context.Context) ([]Event, error) {
	raw, ok, err := l.store.GetItem(ctx, KeyEvents)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var events []Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		l.logger.ErrorContext(ctx, "event log corrupt, treating as empty", "error", err)
		return nil, nil
	}
	sortEvents(events)
	return events, nil
}

// Save overwrites the full sequence, sorted. Write failures are logged and
// otherwise ignored.
func (l *EventLog) Save(ctx context.Context, events []Event) {
	sortEvents(events)
	raw, err := json.Marshal(events)
	if err != nil {
		l.logger.ErrorContext(ctx, "event log encode failed, not saved", "error", err)
		return
	}
	if err := l.store.SetItem(ctx, KeyEvents, string(raw)); err != nil {
		l.logger.ErrorContext(ctx, "event log write failed, result not durable", "error", err)
	}
}

// Append inserts one event, keeping the sequence sorted. A duplicate id is
// a silent no-op. Returns true when the event was actually added. A failed
// Store read refuses the append entirely, so a transient error can never
// truncate the persisted history to the one new event.
func (l *EventLog) Append(ctx context.Context, event Event) bool {
	events, err := l.load(ctx)
	if err != nil {
		l.logger.ErrorContext(ctx, "event log read failed, append refused",
			"error", err, "id", event.ID, "kind", event.Kind)
		return false
	}
	for _, e := range events {
		if e.ID == event.ID {
			l.logger.DebugContext(ctx, "append skipped, id exists", "id", event.ID, "kind", event.Kind)
			return false
		}
	}
	events = append(events, event)
	l.Save(ctx, events)
	return true
}

// Clear removes the whole log. The checkpoint key is dropped with it since a
// snapshot of a destroyed log is meaningless.
func (l *EventLog) Clear(ctx context.Context) {
	if err := l.store.RemoveItem(ctx, KeyEvents); err != nil {
		l.logger.ErrorContext(ctx, "event log clear failed", "error", err)
	}
	if err := l.store.RemoveItem(ctx, KeyCheckpoint); err != nil {
		l.logger.ErrorContext(ctx, "checkpoint clear failed", "error", err)
	}
}

// sortEvents stable-sorts by timestamp ascending. Stability is load-bearing:
// same-millisecond events keep append order.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
}
