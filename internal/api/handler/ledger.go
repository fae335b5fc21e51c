// internal/api/handler/ledger.go
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"splitflow/internal/api/auth"
	"splitflow/internal/api/types"
	"splitflow/internal/domain"
	"splitflow/internal/service"
	"splitflow/internal/util" // For custom errors
)

// DefaultTimeout bounds request handling when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// LedgerHandler handles HTTP requests for the caller's account.
// The caller is always the authenticated principal; no route takes an identity parameter.
type LedgerHandler struct {
	service service.LedgerService
	logger  *slog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc service.LedgerService, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		service: svc,
		logger:  logger.With("component", "http"),
	}
}

// Helper function to send JSON responses.
func (h *LedgerHandler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// WriteError maps err onto a status code and sends it as an ErrorResponse.
// Unrecognized errors are logged and hidden behind a generic 500.
func (h *LedgerHandler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = util.ErrNotFound.Error()
	case util.IsError(err, util.ErrInvalidPolicy):
		statusCode = http.StatusUnprocessableEntity
		message = util.ErrInvalidPolicy.Error()
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = util.ErrInsufficientFunds.Error()
	case util.IsError(err, util.ErrInvalidArgument):
		statusCode = http.StatusBadRequest
		message = err.Error() // Use the error message directly for invalid input
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = err.Error()
		w.Header().Set("WWW-Authenticate", `Bearer realm="splitflow"`)
	case util.IsError(err, util.ErrForbidden):
		statusCode = http.StatusForbidden
		message = err.Error()
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled service error",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()))
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// principal returns the authenticated caller.
func principal(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return auth.Principal{}, util.ErrUnauthorized
	}
	return p, nil
}

// decode reads a JSON body into dst. Unknown fields are rejected, so a body
// that tries to name an identity fails instead of being silently ignored.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", util.ErrInvalidArgument, err)
	}
	return nil
}

// parseAmount accepts a JSON number or numeric string holding a positive
// whole number of minor units.
func parseAmount(d decimal.Decimal) (int64, error) {
	if !d.IsPositive() {
		return 0, util.ErrInvalidAmount
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: amount must be a whole number of minor units", util.ErrInvalidArgument)
	}
	if d.GreaterThan(maxAmount) {
		return 0, util.ErrAmountOverflow
	}
	return d.IntPart(), nil
}

// InitializeAccount creates the caller's account on first use and returns it.
// POST /v1/account
func (h *LedgerHandler) InitializeAccount(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	account, err := h.service.InitializeAccount(r.Context(), p.Identity)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, account)
}

// GetAccount returns the caller's account.
// GET /v1/account
func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	account, err := h.service.GetAccount(r.Context(), p.Identity)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, account)
}

// SetSplitPolicy replaces the caller's split policy.
// PUT /v1/account/policy
func (h *LedgerHandler) SetSplitPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	var req domain.SplitPolicy
	if err := decode(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	account, err := h.service.SetSplitPolicy(r.Context(), p.Identity, req)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, account)
}

// IncomeRequest represents the request body for income.
type IncomeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// RecordIncome splits an income across the caller's categories.
// POST /v1/account/income
func (h *LedgerHandler) RecordIncome(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	var req IncomeRequest
	if err := decode(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	balance, transaction, err := h.service.RecordIncome(r.Context(), p.Identity, amount)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.MutationResponse{Balance: balance, Transaction: transaction})
}

// SpendRequest represents the request body for spend.
type SpendRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Spend withdraws from the caller's spend category.
// POST /v1/account/spend
func (h *LedgerHandler) Spend(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	var req SpendRequest
	if err := decode(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	balance, transaction, err := h.service.Spend(r.Context(), p.Identity, amount, req.Description)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.MutationResponse{Balance: balance, Transaction: transaction})
}

// TransferRequest represents the request body for transfer.
type TransferRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Transfer moves funds between two of the caller's categories.
// POST /v1/account/transfers
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	var req TransferRequest
	if err := decode(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	from, err := domain.ParseCategory(req.From)
	if err != nil {
		h.WriteError(w, r, fmt.Errorf("from: %w", err))
		return
	}
	to, err := domain.ParseCategory(req.To)
	if err != nil {
		h.WriteError(w, r, fmt.Errorf("to: %w", err))
		return
	}

	balance, transaction, err := h.service.TransferBetweenCategories(r.Context(), p.Identity, from, to, amount)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.MutationResponse{Balance: balance, Transaction: transaction})
}

// ListTransactions returns the caller's transactions, newest first.
// GET /v1/account/transactions?limit=&offset=
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	// Parse query parameters for pagination
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), p.Identity)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.Page(transactions, limit, offset))
}

// queryInt reads a non-negative integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", util.ErrInvalidArgument, name)
	}
	return n, nil
}

// GetSystemStats reports account and transaction counts. The router restricts it to admins.
// GET /v1/stats
func (h *LedgerHandler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetSystemStats(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, stats)
}
