/*
store.go - Persistence boundary and calculator contract

PURPOSE:
  The ledger's only I/O boundary is a key->string Store. The ledger never
  assumes atomicity across keys, never caches reads across operations, and
  treats every failure as recoverable (see errors.go for the policy).

KEYS:
  KeyEvents:     the full event sequence, JSON array sorted by timestamp
  KeyCheckpoint: reserved for periodic replay snapshots; allocated but not
                 required for correctness
  KeyLegacySettings, KeyLegacyEntries: the pre-event-sourced flat state,
                 read once by the migration and never written again

IMPLEMENTATIONS:
  - store.Memory: in-memory, for tests and dev
  - store/sqlite: single key-value table, WAL mode

SEE ALSO:
  - eventlog.go: the only reader/writer of KeyEvents
  - migrate.go: the only reader of the legacy keys
*/
package ledger

import "context"

// Storage keys. A single key holds the whole event sequence; the ledger's
// read-modify-write cycle is safe only under the single-writer assumption
// this design states as a hard constraint.
const (
	KeyEvents         = "brewbalance.events"
	KeyCheckpoint     = "brewbalance.checkpoint"
	KeyLegacySettings = "brewbalance.settings"
	KeyLegacyEntries  = "brewbalance.entries"
)

// Store is an opaque key->string surface. The second return of GetItem
// reports presence, so an empty stored value is distinguishable from an
// absent key.
type Store interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// =============================================================================
// STATS CALCULATOR - Opaque budget arithmetic
// =============================================================================

// StatsCalculator computes the applied figures for a date from the state in
// force as of that date. It must be pure: same inputs, same output. The
// budgets map carries already-frozen days so the rollover chain can prefer
// frozen figures over recomputation; the calculator must not mutate any of
// its inputs.
//
// The materializer is the only caller in this package; budget.Calculator is
// the shipped implementation.
type StatsCalculator interface {
	DailyFigures(settings Settings, entries []Entry, budgets map[Date]DailyBudget, date Date) (DailyBudget, error)
}
