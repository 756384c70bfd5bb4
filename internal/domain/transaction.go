package domain

import "github.com/dvloznov/smartbudget/internal/currency"

// TransactionType carries the direction of a transaction. Amounts are always
// stored as non-negative magnitudes.
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// Transaction is one ledger entry. Its balance effect is applied to the
// owning account once, when the transaction is posted.
type Transaction struct {
	ID          string          `json:"id"`
	Date        Date            `json:"date"`
	Amount      float64         `json:"amount"`
	Currency    currency.Code   `json:"currency"`
	Category    string          `json:"category"`
	SubCategory string          `json:"subCategory"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	AccountID   string          `json:"accountId"`
	ToAccountID string          `json:"toAccountId,omitempty"`
}

// PartialTransaction is a transaction draft extracted from a receipt. Every
// field is optional; nothing is posted until the user confirms it.
type PartialTransaction struct {
	Amount      *float64        `json:"amount,omitempty"`
	Currency    currency.Code   `json:"currency,omitempty"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	SubCategory string          `json:"subCategory,omitempty"`
	Date        Date            `json:"date,omitempty"`
	Type        TransactionType `json:"type,omitempty"`
}
