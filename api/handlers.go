/*
handlers.go - HTTP API handlers for the loan engine

PURPOSE:
  Exposes the amortization engine and the loan tracker via REST API.
  Handles HTTP request/response and JSON serialization, and delegates every
  calculation to the amortization and loans packages.

ENDPOINTS:
  Projections (stateless, nothing stored):
    POST   /api/projections/payoff          Remaining term and interest
    POST   /api/projections/extra-payment   Before/after an extra payment
    POST   /api/projections/schedule        Month-by-month balance

  Loans:
    GET    /api/loans                       List loans
    POST   /api/loans                       Create loan from JSON
    GET    /api/loans/{id}                  Get loan
    PUT    /api/loans/{id}                  Edit loan
    DELETE /api/loans/{id}                  Delete loan
    GET    /api/loans/{id}/payoff           Payoff projection and date
    GET    /api/loans/{id}/schedule         Balance trajectory
    POST   /api/loans/{id}/what-if          Extra-payment projection only
    POST   /api/loans/{id}/payments         Record a monthly payment
    POST   /api/loans/{id}/extra-payments   Apply an extra payment

  Portfolio / Expenses / Scenarios:
    GET    /api/portfolio
    GET    /api/expenses, POST /api/expenses
    GET    /api/expenses/summary?view=daily|weekly|monthly
    GET    /api/scenarios, POST /api/scenarios/load

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: invalid_input, malformed body
  - 404: loan not found
  - 409: duplicate loan or expense, loan already paid off
  - 422: non_amortizing_payment, schedule too long
  - 500: anything else (logged)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/warp/loan-engine/amortization"
	"github.com/warp/loan-engine/expenses"
	"github.com/warp/loan-engine/factory"
	"github.com/warp/loan-engine/loans"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Loans       loans.Store
	Tracker     *loans.Tracker
	Expenses    *expenses.Log
	LoanFactory *factory.LoanFactory
	Logger      *zap.Logger

	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a handler over the given loan store.
func NewHandler(store loans.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Loans:       store,
		Tracker:     loans.NewTracker(store),
		Expenses:    expenses.NewLog(),
		LoanFactory: factory.NewLoanFactory(),
		Logger:      logger,
	}
}

// =============================================================================
// PROJECTION HANDLERS
// =============================================================================

// ProjectPayoff returns the remaining term and interest of a loan.
func (h *Handler) ProjectPayoff(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if !decode(w, r, &req) {
		return
	}

	projection, err := amortization.ProjectPayoff(req.snapshot())
	if err != nil {
		h.fail(w, r, "Failed to project payoff", err)
		return
	}

	writeJSON(w, http.StatusOK, toPayoffDTO(projection))
}

// ProjectExtraPayment compares a loan before and after an extra payment.
func (h *Handler) ProjectExtraPayment(w http.ResponseWriter, r *http.Request) {
	var req ExtraPaymentRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := amortization.ApplyExtraPayment(req.Loan.snapshot(), amortization.ExtraPayment{Amount: req.ExtraPayment})
	if err != nil {
		h.fail(w, r, "Failed to project extra payment", err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectionResultDTO(result))
}

// ProjectSchedule returns the month-by-month trajectory of a loan.
func (h *Handler) ProjectSchedule(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if !decode(w, r, &req) {
		return
	}

	entries, err := amortization.Schedule(req.snapshot())
	if err != nil {
		h.fail(w, r, "Failed to build schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, toScheduleDTOs(entries))
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

// ListLoans returns all loans.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	all, err := h.Loans.List(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list loans", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTOs(all))
}

// GetLoan returns a single loan.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Loans.Get(r.Context(), loanID(r))
	if err != nil {
		h.fail(w, r, "Failed to get loan", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(loan))
}

// CreateLoan creates a loan from its JSON definition.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req factory.LoanJSON
	if !decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Loan id is required", nil)
		return
	}

	loan, err := h.LoanFactory.FromJSON(req)
	if err != nil {
		h.fail(w, r, "Invalid loan", err)
		return
	}
	loan.UpdatedAt = h.Tracker.Now()

	if err := h.Loans.Create(r.Context(), loan); err != nil {
		h.fail(w, r, "Failed to create loan", err)
		return
	}

	h.Logger.Info("loan created", zap.String("loan_id", string(loan.ID)), zap.String("kind", string(loan.Kind)))
	writeJSON(w, http.StatusCreated, toLoanDTO(loan))
}

// UpdateLoan replaces an existing loan. The id in the path wins over the body.
// Repayment progress omitted from the body (remaining, payments_made,
// start_date, kind) is kept from the stored record.
func (h *Handler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	var req factory.LoanJSON
	if !decode(w, r, &req) {
		return
	}
	req.ID = string(loanID(r))

	existing, err := h.Loans.Get(r.Context(), loanID(r))
	if err != nil {
		h.fail(w, r, "Failed to update loan", err)
		return
	}
	stored := h.LoanFactory.ToJSON(existing)
	if req.Remaining == nil {
		req.Remaining = stored.Remaining
	}
	if req.PaymentsMade == nil {
		req.PaymentsMade = stored.PaymentsMade
	}
	if req.StartDate == "" {
		req.StartDate = stored.StartDate
	}
	if req.Kind == "" {
		req.Kind = stored.Kind
	}

	loan, err := h.LoanFactory.FromJSON(req)
	if err != nil {
		h.fail(w, r, "Invalid loan", err)
		return
	}
	loan.UpdatedAt = h.Tracker.Now()

	if err := h.Loans.Update(r.Context(), loan); err != nil {
		h.fail(w, r, "Failed to update loan", err)
		return
	}

	writeJSON(w, http.StatusOK, toLoanDTO(loan))
}

// DeleteLoan removes a loan.
func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	id := loanID(r)
	if err := h.Loans.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete loan", err)
		return
	}

	h.Logger.Info("loan deleted", zap.String("loan_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

// GetPayoff returns the payoff projection of a stored loan.
func (h *Handler) GetPayoff(w http.ResponseWriter, r *http.Request) {
	lp, err := h.Tracker.Projection(r.Context(), loanID(r))
	if err != nil {
		h.fail(w, r, "Failed to project payoff", err)
		return
	}

	payoff := toPayoffDTO(lp.Projection)
	payoff.PayoffDate = formatDate(lp.PayoffDate)
	writeJSON(w, http.StatusOK, LoanProjectionDTO{Loan: toLoanDTO(lp.Loan), Payoff: payoff})
}

// GetSchedule returns the balance trajectory of a stored loan.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Tracker.Schedule(r.Context(), loanID(r))
	if err != nil {
		h.fail(w, r, "Failed to build schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTOs(entries))
}

// WhatIf projects an extra payment on a stored loan without applying it.
func (h *Handler) WhatIf(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.Tracker.WhatIf(r.Context(), loanID(r), req.Amount)
	if err != nil {
		h.fail(w, r, "Failed to project extra payment", err)
		return
	}

	dto := toProjectionResultDTO(result)
	dto.NewPayoffDate = formatDate(amortization.PayoffDate(h.today(), result.NewPayoffMonth))
	writeJSON(w, http.StatusOK, dto)
}

// RecordPayment records a monthly payment. An empty body or zero amount pays
// the scheduled monthly payment.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Tracker.RecordPayment(r.Context(), loanID(r), req.Amount)
	if err != nil {
		h.fail(w, r, "Failed to record payment", err)
		return
	}

	h.Logger.Info("payment recorded",
		zap.String("loan_id", string(rec.Loan.ID)),
		zap.String("amount", rec.Split.Payment.StringFixed(2)),
		zap.String("remaining", rec.Loan.Remaining.StringFixed(2)),
	)
	writeJSON(w, http.StatusOK, PaymentDTO{
		Loan:       toLoanDTO(rec.Loan),
		Payment:    money(rec.Split.Payment),
		Interest:   money(rec.Split.Interest),
		Principal:  money(rec.Split.Principal),
		NewBalance: money(rec.Split.NewBalance),
	})
}

// ApplyExtraPayment applies an extra payment to principal.
func (h *Handler) ApplyExtraPayment(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !decode(w, r, &req) {
		return
	}

	rec, err := h.Tracker.ApplyExtraPayment(r.Context(), loanID(r), req.Amount)
	if err != nil {
		h.fail(w, r, "Failed to apply extra payment", err)
		return
	}

	h.Logger.Info("extra payment applied",
		zap.String("loan_id", string(rec.Loan.ID)),
		zap.String("applied", rec.Result.AppliedExtra.StringFixed(2)),
		zap.Int("months_saved", rec.Result.MonthsSaved),
	)
	result := toProjectionResultDTO(rec.Result)
	result.NewPayoffDate = formatDate(amortization.PayoffDate(h.today(), rec.Result.NewPayoffMonth))
	writeJSON(w, http.StatusOK, ExtraPaymentDTO{Loan: toLoanDTO(rec.Loan), Result: result})
}

// GetPortfolio returns the summary across all loans.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := h.Tracker.Portfolio(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to summarize portfolio", err)
		return
	}
	writeJSON(w, http.StatusOK, toPortfolioDTO(p))
}

// =============================================================================
// EXPENSE HANDLERS
// =============================================================================

// ListExpenses returns expenses, newest first.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	all := h.Expenses.List(r.Context())
	dtos := make([]ExpenseDTO, len(all))
	for i, e := range all {
		dtos[i] = toExpenseDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateExpense records an expense.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req factory.ExpenseJSON
	if !decode(w, r, &req) {
		return
	}

	e, err := factory.ExpenseFromJSON(req)
	if err != nil {
		h.fail(w, r, "Invalid expense", err)
		return
	}
	e, err = h.Expenses.Add(r.Context(), e)
	if err != nil {
		h.fail(w, r, "Failed to record expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseDTO(e))
}

// GetExpenseSummary totals expenses by category and by day, week or month.
func (h *Handler) GetExpenseSummary(w http.ResponseWriter, r *http.Request) {
	view, ok := expenses.ParseView(r.URL.Query().Get("view"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid view (use daily, weekly or monthly)", nil)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseSummaryDTO(h.Expenses.List(r.Context()), view))
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func loanID(r *http.Request) loans.LoanID {
	return loans.LoanID(chi.URLParam(r, "id"))
}

func (h *Handler) today() time.Time {
	now := h.Tracker.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// statusFor maps domain errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch kind := amortization.KindOf(err); kind {
	case amortization.KindInvalidInput:
		return http.StatusBadRequest, string(kind)
	case amortization.KindNonAmortizingPayment:
		return http.StatusUnprocessableEntity, string(kind)
	}

	switch {
	case errors.Is(err, amortization.ErrScheduleTooLong):
		return http.StatusUnprocessableEntity, "schedule_too_long"
	case loans.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case loans.IsConflict(err), errors.Is(err, expenses.ErrDuplicateExpense):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail writes err with the status it maps to. Server errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(message,
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: err.Error()})
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
