package ledger

import (
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

// AccountSpec is the input for AddAccount. Balance is the opening balance in
// the account's currency and may be negative.
type AccountSpec struct {
	Name     string        `json:"name"`
	Balance  float64       `json:"balance"`
	Currency currency.Code `json:"currency"`
}

// AccountPatch edits an account in place. Nil fields are left unchanged.
// The currency of an account cannot change since its balance is expressed
// in it.
type AccountPatch struct {
	Name    *string  `json:"name,omitempty"`
	Balance *float64 `json:"balance,omitempty"`
	Color   *string  `json:"color,omitempty"`
}

// AddAccount creates an account with a fresh id and a random color.
func (l *Ledger) AddAccount(spec AccountSpec) (domain.Account, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return domain.Account{}, invalid("name", "is required")
	}
	if !finite(spec.Balance) {
		return domain.Account{}, invalid("balance", "must be a finite number")
	}
	if !spec.Currency.Valid() {
		return domain.Account{}, invalid("currency", fmt.Sprintf("%q is not supported", spec.Currency))
	}

	acc := domain.Account{
		ID:       l.ids.NewID(accountPrefix),
		Name:     name,
		Balance:  spec.Balance,
		Currency: spec.Currency,
		Color:    l.color(),
	}
	l.accounts = append(l.accounts, acc)
	return acc, nil
}

// UpdateAccount applies a direct edit to an account. Editing the balance
// here bypasses posting; it is how the user reconciles with the bank.
func (l *Ledger) UpdateAccount(id string, patch AccountPatch) (domain.Account, error) {
	i := l.accountIndex(id)
	if i < 0 {
		return domain.Account{}, fmt.Errorf("UpdateAccount: account %s: %w", id, ErrNotFound)
	}

	updated := l.accounts[i]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Account{}, invalid("name", "is required")
		}
		updated.Name = name
	}
	if patch.Balance != nil {
		if !finite(*patch.Balance) {
			return domain.Account{}, invalid("balance", "must be a finite number")
		}
		updated.Balance = *patch.Balance
	}
	if patch.Color != nil {
		color := strings.TrimSpace(*patch.Color)
		if color == "" {
			return domain.Account{}, invalid("color", "is required")
		}
		updated.Color = color
	}

	l.accounts[i] = updated
	return updated, nil
}

// RemoveAccount deletes an account unconditionally. Transactions and debts
// that reference it keep the dangling id.
func (l *Ledger) RemoveAccount(id string) error {
	i := l.accountIndex(id)
	if i < 0 {
		return fmt.Errorf("RemoveAccount: account %s: %w", id, ErrNotFound)
	}
	l.accounts = append(l.accounts[:i], l.accounts[i+1:]...)
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positiveAmount(v float64) bool {
	return finite(v) && v > 0
}
