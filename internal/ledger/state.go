package ledger

import (
	"fmt"
	"strings"

	"github.com/dvloznov/smartbudget/internal/domain"
)

// ValidateState checks an externally supplied state against the rules
// AddAccount, PostTransaction and AddDebt enforce, plus id uniqueness across
// all collections. References to missing accounts are allowed, as they are
// after RemoveAccount.
func ValidateState(state domain.PersistedState) error {
	seen := map[string]bool{}
	unique := func(kind, id string) error {
		if id == "" {
			return invalid(kind, "entry without id")
		}
		if seen[id] {
			return invalid(kind, fmt.Sprintf("duplicate id %s", id))
		}
		seen[id] = true
		return nil
	}

	for _, acc := range state.Accounts {
		if err := unique("accounts", acc.ID); err != nil {
			return err
		}
		if strings.TrimSpace(acc.Name) == "" {
			return invalid("accounts", fmt.Sprintf("account %s has no name", acc.ID))
		}
		if !acc.Currency.Valid() {
			return invalid("accounts", fmt.Sprintf("account %s has currency %q", acc.ID, acc.Currency))
		}
		if !finite(acc.Balance) {
			return invalid("accounts", fmt.Sprintf("account %s has a non-finite balance", acc.ID))
		}
	}

	for _, tx := range state.Transactions {
		if err := unique("transactions", tx.ID); err != nil {
			return err
		}
		if !tx.Currency.Valid() || !tx.Type.Valid() {
			return invalid("transactions", fmt.Sprintf("transaction %s has currency %q and type %q", tx.ID, tx.Currency, tx.Type))
		}
		if !positiveAmount(tx.Amount) {
			return invalid("transactions", fmt.Sprintf("transaction %s amount must be a positive number", tx.ID))
		}
		if strings.TrimSpace(tx.Description) == "" {
			return invalid("transactions", fmt.Sprintf("transaction %s has no description", tx.ID))
		}
	}

	for _, d := range state.Debts {
		if err := unique("debts", d.ID); err != nil {
			return err
		}
		if !d.Currency.Valid() || !d.Type.Valid() {
			return invalid("debts", fmt.Sprintf("debt %s has currency %q and type %q", d.ID, d.Currency, d.Type))
		}
		if !positiveAmount(d.Amount) {
			return invalid("debts", fmt.Sprintf("debt %s amount must be a positive number", d.ID))
		}
		if strings.TrimSpace(d.ContactName) == "" {
			return invalid("debts", fmt.Sprintf("debt %s has no contact", d.ID))
		}
		if d.Status != domain.DebtPending && d.Status != domain.DebtPaid {
			return invalid("debts", fmt.Sprintf("debt %s has status %q", d.ID, d.Status))
		}
	}
	return nil
}
