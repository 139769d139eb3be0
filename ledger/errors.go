/*
errors.go - Centralized error types for the ledger core

ERROR POLICY:
  Nothing in this core surfaces an unrecoverable, user-facing fatal error.
  The taxonomy:
  - Read corruption: an unparseable stored event list is treated as "no
    events exist"; logged, non-fatal. A failed Store read is different:
    appends are refused while it lasts (see eventlog.go).
  - Write failure: logged; the in-memory result is still returned, so an
    operation can appear to succeed without being durable. Accepted
    trade-off of a single-user local tool, not a bug.
  - Migration failure: caught per step, collected as warnings on the
    report; partial progress beats total failure.

  Sentinels below exist for the callers that do want to distinguish causes
  (API layer, tests); use errors.Is.
*/
package ledger

import "errors"

var (
	// ErrUnknownKind is reported when an event carries a kind no fold site
	// recognizes. Replay skips such events and logs them; the error exists
	// for validation paths that want to reject them up front.
	ErrUnknownKind = errors.New("unknown event kind")

	// ErrReservedTimestamp is returned when an event other than the
	// migration settings event is constructed with MigrationEpoch.
	ErrReservedTimestamp = errors.New("timestamp 0 is reserved for the migration event")

	// ErrNoStartDate is returned when materialization runs against settings
	// that never established a log start date.
	ErrNoStartDate = errors.New("settings have no start date")

	// ErrStatsCalculator is returned when the engine has no calculator wired
	// but a date needs to be materialized.
	ErrStatsCalculator = errors.New("no stats calculator configured")
)
