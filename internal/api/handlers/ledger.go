package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/smartbudget/internal/api/middleware"
	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/ledger"
	"github.com/dvloznov/smartbudget/internal/logger"
)

// LedgerService is the part of the tracker the ledger endpoints use.
type LedgerService interface {
	Accounts() []domain.Account
	AddAccount(ctx context.Context, spec ledger.AccountSpec) (domain.Account, error)
	UpdateAccount(ctx context.Context, id string, patch ledger.AccountPatch) (domain.Account, error)
	RemoveAccount(ctx context.Context, id string) error

	Transactions() []domain.Transaction
	PostTransaction(ctx context.Context, spec ledger.TransactionSpec) (domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch ledger.TransactionPatch) (domain.Transaction, error)
	RemoveTransaction(ctx context.Context, id string) error

	Debts() []domain.Debt
	AddDebt(ctx context.Context, spec ledger.DebtSpec) (domain.Debt, error)
	MarkDebtPaid(ctx context.Context, id string) (ledger.Settlement, error)
	RemoveDebt(ctx context.Context, id string) error
}

// LedgerHandler handles accounts, transactions and debts.
type LedgerHandler struct {
	svc LedgerService
	log zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(svc LedgerService, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{svc: svc, log: log}
}

// ListAccounts handles GET /api/accounts
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.svc.Accounts()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// CreateAccount handles POST /api/accounts
func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var spec ledger.AccountSpec
	if !decodeJSON(w, r, &spec) {
		return
	}
	log := logger.FromContext(r.Context())
	acc, err := h.svc.AddAccount(r.Context(), spec)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	log.Info().Str("account_id", acc.ID).Msg("Account created")
	middleware.WriteJSON(w, http.StatusCreated, acc)
}

// UpdateAccount handles PATCH /api/accounts/{id}
func (h *LedgerHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var patch ledger.AccountPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	acc, err := h.svc.UpdateAccount(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, acc)
}

// DeleteAccount handles DELETE /api/accounts/{id}
func (h *LedgerHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveAccount(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTransactions handles GET /api/transactions
//
// Optional filters: type, account_id, category, start_date, end_date
// (YYYY-MM-DD, inclusive) and q (case-insensitive description match).
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start, err := domain.ParseDate(query.Get("start_date"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
		return
	}
	end, err := domain.ParseDate(query.Get("end_date"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
		return
	}

	txType := domain.TransactionType(query.Get("type"))
	accountID := query.Get("account_id")
	category := strings.ToLower(strings.TrimSpace(query.Get("category")))
	text := strings.ToLower(strings.TrimSpace(query.Get("q")))

	result := []domain.Transaction{}
	for _, tx := range h.svc.Transactions() {
		if txType != "" && tx.Type != txType {
			continue
		}
		if accountID != "" && tx.AccountID != accountID && tx.ToAccountID != accountID {
			continue
		}
		if category != "" && strings.ToLower(tx.Category) != category {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(tx.Description), text) {
			continue
		}
		if !start.IsZero() && tx.Date.Before(start.Date) {
			continue
		}
		if !end.IsZero() && tx.Date.After(end.Date) {
			continue
		}
		result = append(result, tx)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": result,
		"count":        len(result),
	})
}

// CreateTransaction handles POST /api/transactions
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var spec ledger.TransactionSpec
	if !decodeJSON(w, r, &spec) {
		return
	}
	tx, err := h.svc.PostTransaction(r.Context(), spec)
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// UpdateTransaction handles PATCH /api/transactions/{id}
func (h *LedgerHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var patch ledger.TransactionPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	tx, err := h.svc.UpdateTransaction(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDebts handles GET /api/debts with optional status and type filters.
func (h *LedgerHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := domain.DebtStatus(query.Get("status"))
	debtType := domain.DebtType(query.Get("type"))

	result := []domain.Debt{}
	for _, d := range h.svc.Debts() {
		if status != "" && d.Status != status {
			continue
		}
		if debtType != "" && d.Type != debtType {
			continue
		}
		result = append(result, d)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"debts": result,
		"count": len(result),
	})
}

// CreateDebt handles POST /api/debts
func (h *LedgerHandler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var spec ledger.DebtSpec
	if !decodeJSON(w, r, &spec) {
		return
	}
	debt, err := h.svc.AddDebt(r.Context(), spec)
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, debt)
}

// PayDebt handles POST /api/debts/{id}/pay
func (h *LedgerHandler) PayDebt(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.svc.MarkDebtPaid(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, settlement)
}

// DeleteDebt handles DELETE /api/debts/{id}
func (h *LedgerHandler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveDebt(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
