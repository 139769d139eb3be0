/*
handlers.go - HTTP API handlers for the budget ledger

PURPOSE:
  Exposes the event-sourced ledger via REST. Handles HTTP request/response
  and JSON shape; every mutation goes through an event append, every read
  through a replay. No screen rendering or formatting lives here.

ENDPOINTS:
  State:
    GET    /api/state                Replayed settings/entries/budgets
    GET    /api/events               The raw event log, sorted

  Mutations (each appends one event):
    POST   /api/entries              Record a spend
    PATCH  /api/settings             Partial settings update
    POST   /api/rollover             Adjust a date's opening balance
    POST   /api/challenges           Start a savings challenge
    POST   /api/challenges/{id}/archive

  Budgets:
    GET    /api/budget/{date}        Applied figures; freezes past dates,
                                     computes (without freezing) today+
    POST   /api/materialize          Freeze history through a date

  Lifecycle:
    POST   /api/migrate              One-time legacy import
    POST   /api/reset                Destroy the log and derived state

ERROR HANDLING:
  JSON envelope with appropriate status: 400 invalid input, 409 not yet
  usable (e.g. no start date), 500 internal.

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brewbalance-team/BrewBalance/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine   *ledger.Engine
	Migrator *ledger.Migrator
	Clock    ledger.Clock
	Stats    ledger.StatsCalculator
	Logger   *slog.Logger
}

// NewHandler creates a handler around a fully wired engine.
func NewHandler(engine *ledger.Engine, migrator *ledger.Migrator, clock ledger.Clock, stats ledger.StatsCalculator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Engine:   engine,
		Migrator: migrator,
		Clock:    clock,
		Stats:    stats,
		Logger:   logger.With("component", "api"),
	}
}

// =============================================================================
// STATE HANDLERS
// =============================================================================

// GetState returns the fully replayed state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	state := h.Engine.Replay(r.Context(), nil, nil)
	writeJSON(w, http.StatusOK, stateDTO(state))
}

// GetEvents returns the raw event log.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events := h.Engine.Log().Load(r.Context())
	if events == nil {
		events = []ledger.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// =============================================================================
// MUTATION HANDLERS - One event append each
// =============================================================================

// AddEntry records a spend.
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	event := ledger.NewEntryAdded(h.Clock, date, req.Amount, req.Note)
	h.Engine.Log().Append(r.Context(), event)
	writeJSON(w, http.StatusCreated, event.Entry)
}

// UpdateSettings applies a partial settings patch.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.Engine.Log().Append(r.Context(), ledger.NewSettingsUpdated(h.Clock, patch))
	state := h.Engine.Replay(r.Context(), nil, nil)
	writeJSON(w, http.StatusOK, state.Settings)
}

// SetRollover adjusts a date's opening balance.
func (h *Handler) SetRollover(w http.ResponseWriter, r *http.Request) {
	var req SetRolloverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	ctx := r.Context()
	previous := h.Engine.Replay(ctx, nil, nil).DailyBudgets[date].Rollover
	delta := req.Rollover.Sub(previous)

	h.Engine.Log().Append(ctx, ledger.NewCustomRolloverSet(h.Clock, date, req.Rollover, delta, req.Reason))

	// Report what the fold actually produced, not what the request asked
	// for. The date only counts as frozen when an applied-budget event
	// exists for it; a rollover on an unfrozen date must not claim one.
	state := h.Engine.Replay(ctx, nil, nil)
	budget := state.DailyBudgets[date]
	writeJSON(w, http.StatusOK, BudgetDTO{
		Date:       date.String(),
		BaseBudget: budget.BaseBudget,
		Rollover:   budget.Rollover,
		Total:      budget.Total(),
		Frozen:     hasFrozenBudget(state.Events, date),
	})
}

// hasFrozenBudget reports whether an applied-budget event exists for date.
func hasFrozenBudget(events []ledger.Event, date ledger.Date) bool {
	for _, e := range events {
		if e.Kind == ledger.KindDailyBudgetCreated && e.Budget != nil && e.Budget.Date == date {
			return true
		}
	}
	return false
}

// CreateChallenge starts a savings challenge.
func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := ledger.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	end, err := ledger.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date", err)
		return
	}

	event := ledger.NewChallengeCreated(h.Clock, ledger.Challenge{
		Name:      req.Name,
		Target:    req.Target,
		StartDate: start,
		EndDate:   end,
	})
	h.Engine.Log().Append(r.Context(), event)
	writeJSON(w, http.StatusCreated, event.Challenge)
}

// ArchiveChallenge ends a savings challenge.
func (h *Handler) ArchiveChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state := h.Engine.Replay(r.Context(), nil, nil)
	for _, ch := range state.Settings.Challenges {
		if ch.ID == id && !ch.Archived {
			h.Engine.Log().Append(r.Context(), ledger.NewChallengeArchived(h.Clock, ch))
			writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "archived"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Challenge not found", nil)
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// GetBudget returns the applied figures for a date. Past dates are frozen on
// first access; today and future dates are computed fresh and NOT frozen
// (the strictly-before-today restriction lives in callers, and this handler
// is one).
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	date, err := ledger.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	ctx := r.Context()
	if date.Before(h.Clock.Today()) {
		budget, err := h.Engine.EnsureDailyBudgetForDate(ctx, date, nil)
		if err != nil {
			writeError(w, httpStatus(err), "Failed to materialize budget", err)
			return
		}
		writeJSON(w, http.StatusOK, BudgetDTO{
			Date:       date.String(),
			BaseBudget: budget.BaseBudget,
			Rollover:   budget.Rollover,
			Total:      budget.Total(),
			Frozen:     true,
		})
		return
	}

	state := h.Engine.Replay(ctx, nil, nil)
	if frozen, ok := state.DailyBudgets[date]; ok {
		writeJSON(w, http.StatusOK, BudgetDTO{
			Date:       date.String(),
			BaseBudget: frozen.BaseBudget,
			Rollover:   frozen.Rollover,
			Total:      frozen.Total(),
			Frozen:     true,
		})
		return
	}

	asOf := h.Engine.Replay(ctx, state.Events, &date)
	budget, err := h.Stats.DailyFigures(asOf.Settings, asOf.Entries, state.DailyBudgets, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute budget", err)
		return
	}
	writeJSON(w, http.StatusOK, BudgetDTO{
		Date:       date.String(),
		BaseBudget: budget.BaseBudget,
		Rollover:   budget.Rollover,
		Total:      budget.Total(),
		Frozen:     false,
	})
}

// Materialize freezes history through the requested date (default:
// yesterday).
func (h *Handler) Materialize(w http.ResponseWriter, r *http.Request) {
	var req MaterializeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	through := h.Clock.Today().Prev()
	if req.Through != "" {
		parsed, err := ledger.ParseDate(req.Through)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		through = parsed
	}

	dates, err := h.Engine.MaterializeUpTo(r.Context(), through)
	if err != nil {
		writeError(w, httpStatus(err), "Materialization failed", err)
		return
	}

	resp := MaterializeResponse{Materialized: make([]string, len(dates))}
	for i, d := range dates {
		resp.Materialized[i] = d.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// LIFECYCLE HANDLERS
// =============================================================================

// Migrate runs the one-time legacy import.
func (h *Handler) Migrate(w http.ResponseWriter, r *http.Request) {
	report := h.Migrator.MigrateFromLegacyModel(r.Context())
	writeJSON(w, http.StatusOK, report)
}

// Reset destroys the event log and all derived state.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.Engine.Log().Clear(r.Context())
	h.Logger.InfoContext(r.Context(), "event log reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func httpStatus(err error) int {
	if errors.Is(err, ledger.ErrNoStartDate) || errors.Is(err, ledger.ErrStatsCalculator) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
