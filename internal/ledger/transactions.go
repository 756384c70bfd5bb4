package ledger

import (
	"fmt"
	"strings"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

// TransactionSpec is the input for PostTransaction. A zero Date defaults to
// today.
type TransactionSpec struct {
	Date        domain.Date            `json:"date"`
	Amount      float64                `json:"amount"`
	Currency    currency.Code          `json:"currency"`
	Category    string                 `json:"category"`
	SubCategory string                 `json:"subCategory"`
	Description string                 `json:"description"`
	Type        domain.TransactionType `json:"type"`
	AccountID   string                 `json:"accountId"`
	ToAccountID string                 `json:"toAccountId,omitempty"`
}

// TransactionPatch edits the descriptive fields of a posted transaction.
// Amount, currency, type and accounts are fixed once posted.
type TransactionPatch struct {
	Date        *domain.Date `json:"date,omitempty"`
	Category    *string      `json:"category,omitempty"`
	SubCategory *string      `json:"subCategory,omitempty"`
	Description *string      `json:"description,omitempty"`
}

// balanceDelta is a pending change to one account balance.
type balanceDelta struct {
	index  int
	amount float64
}

// PostTransaction records a transaction and applies it to the owning
// account: income adds and expense subtracts the amount converted into the
// account's currency. Transfers only move money in double-entry mode.
func (l *Ledger) PostTransaction(spec TransactionSpec) (domain.Transaction, error) {
	if err := l.validateTransaction(spec); err != nil {
		return domain.Transaction{}, err
	}

	tx := domain.Transaction{
		ID:          l.ids.NewID(transactionPrefix),
		Date:        spec.Date,
		Amount:      spec.Amount,
		Currency:    spec.Currency,
		Category:    strings.TrimSpace(spec.Category),
		SubCategory: strings.TrimSpace(spec.SubCategory),
		Description: strings.TrimSpace(spec.Description),
		Type:        spec.Type,
		AccountID:   spec.AccountID,
		ToAccountID: spec.ToAccountID,
	}
	if tx.Date.IsZero() {
		tx.Date = domain.DateOf(l.now())
	}

	deltas, err := l.postingDeltas(tx)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("PostTransaction: %w", err)
	}
	l.apply(deltas, 1)
	l.transactions = append([]domain.Transaction{tx}, l.transactions...)
	return tx, nil
}

// UpdateTransaction edits the descriptive fields of a transaction. Balances
// are never touched.
func (l *Ledger) UpdateTransaction(id string, patch TransactionPatch) (domain.Transaction, error) {
	i := l.transactionIndex(id)
	if i < 0 {
		return domain.Transaction{}, fmt.Errorf("UpdateTransaction: transaction %s: %w", id, ErrNotFound)
	}

	updated := l.transactions[i]
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		if desc == "" {
			return domain.Transaction{}, invalid("description", "is required")
		}
		updated.Description = desc
	}
	if patch.Date != nil {
		if patch.Date.IsZero() {
			return domain.Transaction{}, invalid("date", "is required")
		}
		updated.Date = *patch.Date
	}
	if patch.Category != nil {
		updated.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.SubCategory != nil {
		updated.SubCategory = strings.TrimSpace(*patch.SubCategory)
	}

	l.transactions[i] = updated
	return updated, nil
}

// RemoveTransaction deletes a transaction. The balance effect of the
// original posting stays in place unless double-entry mode is on, in which
// case it is reversed on the accounts that still exist.
func (l *Ledger) RemoveTransaction(id string) error {
	i := l.transactionIndex(id)
	if i < 0 {
		return fmt.Errorf("RemoveTransaction: transaction %s: %w", id, ErrNotFound)
	}

	if l.doubleEntry {
		deltas, err := l.postingDeltas(l.transactions[i])
		if err != nil {
			return fmt.Errorf("RemoveTransaction: %w", err)
		}
		l.apply(deltas, -1)
	}

	l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
	return nil
}

func (l *Ledger) validateTransaction(spec TransactionSpec) error {
	if strings.TrimSpace(spec.Description) == "" {
		return invalid("description", "is required")
	}
	if !positiveAmount(spec.Amount) {
		return invalid("amount", "must be a positive number")
	}
	if !spec.Currency.Valid() {
		return invalid("currency", fmt.Sprintf("%q is not supported", spec.Currency))
	}
	if !spec.Type.Valid() {
		return invalid("type", fmt.Sprintf("%q is not a transaction type", spec.Type))
	}
	if spec.AccountID == "" {
		return invalid("accountId", "is required")
	}
	if l.accountIndex(spec.AccountID) < 0 {
		return invalid("accountId", fmt.Sprintf("account %s does not exist", spec.AccountID))
	}
	if spec.Type == domain.TransactionTransfer && l.doubleEntry {
		if spec.ToAccountID == "" {
			return invalid("toAccountId", "is required for transfers")
		}
		if spec.ToAccountID == spec.AccountID {
			return invalid("toAccountId", "must differ from accountId")
		}
		if l.accountIndex(spec.ToAccountID) < 0 {
			return invalid("toAccountId", fmt.Sprintf("account %s does not exist", spec.ToAccountID))
		}
	}
	return nil
}

// postingDeltas computes the balance changes tx causes on accounts that
// exist. All conversions happen before anything is applied.
func (l *Ledger) postingDeltas(tx domain.Transaction) ([]balanceDelta, error) {
	var deltas []balanceDelta

	add := func(accountID string, sign float64) error {
		i := l.accountIndex(accountID)
		if i < 0 {
			return nil
		}
		v, err := currency.Convert(tx.Amount, tx.Currency, l.accounts[i].Currency)
		if err != nil {
			return fmt.Errorf("converting into account %s: %w", accountID, err)
		}
		deltas = append(deltas, balanceDelta{index: i, amount: sign * v})
		return nil
	}

	var err error
	switch tx.Type {
	case domain.TransactionIncome:
		err = add(tx.AccountID, 1)
	case domain.TransactionExpense:
		err = add(tx.AccountID, -1)
	case domain.TransactionTransfer:
		if l.doubleEntry && tx.ToAccountID != "" {
			if err = add(tx.AccountID, -1); err == nil {
				err = add(tx.ToAccountID, 1)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return deltas, nil
}

func (l *Ledger) apply(deltas []balanceDelta, sign float64) {
	for _, d := range deltas {
		l.accounts[d.index].Balance += sign * d.amount
	}
}
