/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the loan store and expense
	log with realistic data for demos. Each scenario creates loans through
	the factory JSON presets, so they go through the same validation as
	loans created over the API.

AVAILABLE SCENARIOS:

	dashboard:     Mortgage, auto loan and consumer loan plus a week of expenses
	new-mortgage:  Fresh mortgage with the payment derived from its term
	underwater:    A loan whose payment does not cover monthly interest
	nearly-done:   One loan a payment away from payoff, one already paid off

HOW SCENARIOS WORK:
 1. Reset the loan store and expense log
 2. Create loans via factory JSON
 3. Record expenses

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "dashboard"}

NOTE:

	Scenarios reset all data. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler and error helpers
  - factory/loan.go: Loan JSON presets
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/loan-engine/factory"
	"github.com/warp/loan-engine/loans"
)

// ErrUnknownScenario is returned when loading a scenario that doesn't exist.
var ErrUnknownScenario = errors.New("unknown scenario")

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "dashboard",
		Name:        "Dashboard",
		Description: "Mortgage, auto loan and consumer loan with a week of expenses",
		Category:    "portfolio",
	},
	{
		ID:          "new-mortgage",
		Name:        "New Mortgage",
		Description: "Fresh 10-year mortgage, payment derived from the term",
		Category:    "loans",
	},
	{
		ID:          "underwater",
		Name:        "Underwater Loan",
		Description: "Payment below monthly interest: the balance never goes down",
		Category:    "loans",
	},
	{
		ID:          "nearly-done",
		Name:        "Nearly Done",
		Description: "One loan a single payment from payoff, one already paid off",
		Category:    "loans",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current, Description: "Currently loaded scenario"})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.Load(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, ErrUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		h.fail(w, r, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// Reset clears all loans and expenses.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Load resets all data and loads the named scenario. It is also used by the
// server to preload a scenario at startup.
func (h *Handler) Load(ctx context.Context, id string) error {
	var loader func(context.Context) error
	switch id {
	case "dashboard":
		loader = h.loadDashboardScenario
	case "new-mortgage":
		loader = h.loadNewMortgageScenario
	case "underwater":
		loader = h.loadUnderwaterScenario
	case "nearly-done":
		loader = h.loadNearlyDoneScenario
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}

	if err := h.reset(ctx); err != nil {
		return err
	}
	if err := loader(ctx); err != nil {
		return fmt.Errorf("scenario %s: %w", id, err)
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()

	h.Logger.Info("scenario loaded", zap.String("scenario", id))
	return nil
}

func (h *Handler) reset(ctx context.Context) error {
	if err := h.Loans.Reset(ctx); err != nil {
		return err
	}
	h.Expenses.Reset(ctx)

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadDashboardScenario(ctx context.Context) error {
	for _, jsonStr := range []string{
		factory.LoanPresetJSON("1", "Mortgage - Almaty apartment", loans.KindMortgage, 15000000, 12500000, 150000, "12.5"),
		factory.LoanPresetJSON("2", "Auto loan - Toyota Camry", loans.KindAuto, 5000000, 3200000, 85000, "14"),
		factory.LoanPresetJSON("3", "Consumer loan", loans.KindConsumer, 1000000, 450000, 45000, "18.5"),
	} {
		if err := h.createLoanFromJSON(ctx, jsonStr); err != nil {
			return err
		}
	}

	for _, ej := range []factory.ExpenseJSON{
		{ID: "1", Amount: decimal.NewFromInt(15000), Category: "food", Description: "Groceries", Date: "2025-11-07"},
		{ID: "2", Amount: decimal.NewFromInt(8000), Category: "transport", Description: "Fuel", Date: "2025-11-06"},
		{ID: "3", Amount: decimal.NewFromInt(25000), Category: "education", Description: "Online course", Date: "2025-11-05"},
		{ID: "4", Amount: decimal.NewFromInt(12000), Category: "food", Description: "Restaurant", Date: "2025-11-04"},
		{ID: "5", Amount: decimal.NewFromInt(5000), Category: "entertainment", Description: "Cinema", Date: "2025-11-03"},
	} {
		e, err := factory.ExpenseFromJSON(ej)
		if err != nil {
			return err
		}
		if _, err := h.Expenses.Add(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadNewMortgageScenario(ctx context.Context) error {
	return h.createLoanFromJSON(ctx,
		factory.NewLoanJSON("mortgage", "Mortgage - new apartment", loans.KindMortgage, 15000000, "12.5", 120, "2025-11-01"))
}

func (h *Handler) loadUnderwaterScenario(ctx context.Context) error {
	for _, jsonStr := range []string{
		factory.LoanPresetJSON("card", "Credit line", loans.KindConsumer, 1000000, 1000000, 15000, "24"),
		factory.LoanPresetJSON("auto", "Auto loan - Toyota Camry", loans.KindAuto, 5000000, 3200000, 85000, "14"),
	} {
		if err := h.createLoanFromJSON(ctx, jsonStr); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadNearlyDoneScenario(ctx context.Context) error {
	for _, jsonStr := range []string{
		factory.LoanPresetJSON("phone", "Phone installment", loans.KindConsumer, 300000, 20000, 25000, "10"),
		factory.LoanPresetJSON("laptop", "Laptop installment", loans.KindConsumer, 450000, 0, 37500, "0"),
	} {
		if err := h.createLoanFromJSON(ctx, jsonStr); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) createLoanFromJSON(ctx context.Context, jsonStr string) error {
	loan, err := h.LoanFactory.ParseLoan(jsonStr)
	if err != nil {
		return err
	}
	loan.UpdatedAt = h.Tracker.Now()
	return h.Loans.Create(ctx, loan)
}
