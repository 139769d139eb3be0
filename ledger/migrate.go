/*
migrate.go - One-time import of the pre-event-sourced flat model

PURPOSE:
  Before the ledger existed, settings and entries were stored as flat JSON
  under their own keys. Migration turns that state into an initial event
  log, exactly once:

    NotMigrated -> Migrated   (terminal; only a full reset goes back)

  "Migrated" simply means the event log is non-empty.

ORDERING:
  The single settings event carries the reserved MigrationEpoch timestamp
  so it sorts before every event that will ever be appended, no matter when
  migration actually ran. This pins a deterministic total order for the
  whole log. Entry events keep each entry's own timestamp.

FAILURE POLICY:
  Every step is caught individually. Malformed legacy JSON, store errors,
  a failed materialization: each becomes a warning on the report and the
  rest of the migration proceeds. Partial success beats total failure.
*/
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
)

// migrationEventID identifies the one event allowed to carry MigrationEpoch.
const migrationEventID = "migration-settings"

// MigrationReport describes what a migration run did.
type MigrationReport struct {
	AlreadyMigrated   bool     `json:"alreadyMigrated"`
	SettingsMigrated  bool     `json:"settingsMigrated"`
	EntriesCreated    int      `json:"entriesCreated"`
	BudgetsCreated    int      `json:"budgetsCreated"`
	MaterializedDates []Date   `json:"materializedDates,omitempty"`
	Warnings          []string `json:"warnings,omitempty"`
}

// Migrator performs the one-time flat-model import.
type Migrator struct {
	store  Store
	log    *EventLog
	engine *Engine
	clock  Clock
	logger *slog.Logger
}

func NewMigrator(store Store, log *EventLog, engine *Engine, clock Clock, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{
		store:  store,
		log:    log,
		engine: engine,
		clock:  clock,
		logger: logger.With("component", "migration"),
	}
}

// IsMigrated reports whether the event log already holds any events.
func (m *Migrator) IsMigrated(ctx context.Context) bool {
	return len(m.log.Load(ctx)) > 0
}

// MigrateFromLegacyModel seeds the event log from the legacy flat keys and
// freezes all pre-existing history through yesterday. Idempotent: a second
// call reports AlreadyMigrated and changes nothing.
func (m *Migrator) MigrateFromLegacyModel(ctx context.Context) MigrationReport {
	var report MigrationReport

	if m.IsMigrated(ctx) {
		report.AlreadyMigrated = true
		return report
	}

	var events []Event

	// Legacy settings become one full-patch settings event at the epoch.
	settings, found, err := m.readLegacySettings(ctx)
	switch {
	case err != nil:
		report.Warnings = append(report.Warnings, fmt.Sprintf("legacy settings unreadable: %v", err))
	case found:
		patch := patchFromSettings(settings)
		events = append(events, Event{
			ID:        migrationEventID,
			Kind:      KindSettingsUpdated,
			Timestamp: MigrationEpoch,
			Settings:  &patch,
		})
		report.SettingsMigrated = true
	}

	// One EntryAdded per legacy entry, ordered by the entry's own timestamp.
	entries, err := m.readLegacyEntries(ctx)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("legacy entries unreadable: %v", err))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})
	for _, entry := range entries {
		entry := entry
		ts := entry.Timestamp
		if ts == MigrationEpoch {
			ts = MigrationEpoch + 1
		}
		events = append(events, Event{
			ID:        newID(),
			Kind:      KindEntryAdded,
			Timestamp: ts,
			Entry:     &entry,
		})
		report.EntriesCreated++
	}

	m.log.Save(ctx, events)

	// Lock everything through yesterday to the figures the legacy model
	// would have shown at migration time.
	yesterday := m.clock.Today().Prev()
	dates, err := m.engine.MaterializeUpTo(ctx, yesterday)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("materialization incomplete: %v", err))
	}
	report.MaterializedDates = dates
	report.BudgetsCreated = len(dates)

	m.logger.InfoContext(ctx, "migration complete",
		"entries", report.EntriesCreated,
		"budgets", report.BudgetsCreated,
		"warnings", len(report.Warnings))
	return report
}

func (m *Migrator) readLegacySettings(ctx context.Context) (Settings, bool, error) {
	raw, ok, err := m.store.GetItem(ctx, KeyLegacySettings)
	if err != nil || !ok || raw == "" {
		return Settings{}, false, err
	}
	settings := DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return Settings{}, false, err
	}
	return settings, true, nil
}

func (m *Migrator) readLegacyEntries(ctx context.Context) ([]Entry, error) {
	raw, ok, err := m.store.GetItem(ctx, KeyLegacyEntries)
	if err != nil || !ok || raw == "" {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// patchFromSettings lifts full legacy settings into a patch that recreates
// them against any default.
func patchFromSettings(s Settings) SettingsPatch {
	patch := SettingsPatch{
		UserName:          &s.UserName,
		Currency:          &s.Currency,
		WeekdayBudget:     &s.WeekdayBudget,
		WeekendBudget:     &s.WeekendBudget,
		AlarmThreshold:    &s.AlarmThreshold,
		BudgetOverrides:   s.BudgetOverrides,
		RolloverOverrides: s.RolloverOverrides,
		Challenges:        s.Challenges,
	}
	if !s.StartDate.IsZero() {
		patch.StartDate = &s.StartDate
	}
	if s.EndDate != nil {
		patch.EndDate = s.EndDate
	}
	return patch
}
