/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface. Responses mostly reuse the ledger
  types directly (they carry stable json tags); the types here exist where
  the wire contract differs from the domain model: date strings in
  requests, map keys, error envelopes.

NAMING CONVENTION:
  - *Request: request body types from clients
  - *DTO / *Response: response types returned to clients

VALIDATION:
  Done in handlers, not in DTOs. DTOs are pure data carriers.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/brewbalance-team/BrewBalance/ledger"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AddEntryRequest records a spend. Amount accepts a JSON number or string.
type AddEntryRequest struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// UpdateSettingsRequest is a partial settings patch; absent fields are left
// untouched.
type UpdateSettingsRequest = ledger.SettingsPatch

// SetRolloverRequest adjusts a date's opening balance to Rollover.
type SetRolloverRequest struct {
	Date     string          `json:"date"`
	Rollover decimal.Decimal `json:"rollover"`
	Reason   string          `json:"reason,omitempty"`
}

// CreateChallengeRequest starts a savings challenge.
type CreateChallengeRequest struct {
	Name      string          `json:"name"`
	Target    decimal.Decimal `json:"target"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
}

// MaterializeRequest freezes history through a date. An empty Through means
// "through yesterday".
type MaterializeRequest struct {
	Through string `json:"through,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// StateDTO is the replayed application state.
type StateDTO struct {
	Settings     ledger.Settings               `json:"settings"`
	Entries      []ledger.Entry                `json:"entries"`
	DailyBudgets map[string]ledger.DailyBudget `json:"dailyBudgets"`
	EventCount   int                           `json:"eventCount"`
}

// BudgetDTO is the applied (or provisionally computed) budget for a date.
type BudgetDTO struct {
	Date       string          `json:"date"`
	BaseBudget decimal.Decimal `json:"baseBudget"`
	Rollover   decimal.Decimal `json:"rollover"`
	Total      decimal.Decimal `json:"total"`
	Frozen     bool            `json:"frozen"`
}

// MaterializeResponse lists what a materialization pass froze.
type MaterializeResponse struct {
	Materialized []string `json:"materialized"`
}

// ErrorResponse is the error envelope for all non-2xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func stateDTO(state ledger.State) StateDTO {
	budgets := make(map[string]ledger.DailyBudget, len(state.DailyBudgets))
	for date, b := range state.DailyBudgets {
		budgets[date.String()] = b
	}
	entries := state.Entries
	if entries == nil {
		entries = []ledger.Entry{}
	}
	return StateDTO{
		Settings:     state.Settings,
		Entries:      entries,
		DailyBudgets: budgets,
		EventCount:   len(state.Events),
	}
}
