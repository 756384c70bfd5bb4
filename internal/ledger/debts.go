package ledger

import (
	"fmt"
	"strings"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

// DebtSpec is the input for AddDebt.
type DebtSpec struct {
	ContactName     string          `json:"contactName"`
	Amount          float64         `json:"amount"`
	Currency        currency.Code   `json:"currency"`
	Type            domain.DebtType `json:"type"`
	Description     string          `json:"description"`
	DueDate         domain.Date     `json:"dueDate"`
	LinkedAccountID string          `json:"linkedAccountId,omitempty"`
}

// Settlement is the outcome of MarkDebtPaid. Transaction is set only when a
// settling transaction was posted.
type Settlement struct {
	Debt        domain.Debt         `json:"debt"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
}

const (
	settlementCategory    = "Otros"
	settlementSubCategory = "General"
)

// AddDebt records a new pending debt.
func (l *Ledger) AddDebt(spec DebtSpec) (domain.Debt, error) {
	contact := strings.TrimSpace(spec.ContactName)
	if contact == "" {
		return domain.Debt{}, invalid("contactName", "is required")
	}
	if !positiveAmount(spec.Amount) {
		return domain.Debt{}, invalid("amount", "must be a positive number")
	}
	if !spec.Currency.Valid() {
		return domain.Debt{}, invalid("currency", fmt.Sprintf("%q is not supported", spec.Currency))
	}
	if !spec.Type.Valid() {
		return domain.Debt{}, invalid("type", fmt.Sprintf("%q is not a debt type", spec.Type))
	}
	if spec.LinkedAccountID != "" && l.accountIndex(spec.LinkedAccountID) < 0 {
		return domain.Debt{}, invalid("linkedAccountId", fmt.Sprintf("account %s does not exist", spec.LinkedAccountID))
	}

	debt := domain.Debt{
		ID:              l.ids.NewID(debtPrefix),
		ContactName:     contact,
		Amount:          spec.Amount,
		Currency:        spec.Currency,
		Type:            spec.Type,
		Description:     strings.TrimSpace(spec.Description),
		DueDate:         spec.DueDate,
		Status:          domain.DebtPending,
		LinkedAccountID: spec.LinkedAccountID,
	}
	l.debts = append(l.debts, debt)
	return debt, nil
}

// MarkDebtPaid moves a debt from pending to paid. Paying an already paid
// debt is a no-op. In double-entry mode a settling transaction is posted
// against the linked account when that account still exists.
func (l *Ledger) MarkDebtPaid(id string) (Settlement, error) {
	i := l.debtIndex(id)
	if i < 0 {
		return Settlement{}, fmt.Errorf("MarkDebtPaid: debt %s: %w", id, ErrNotFound)
	}

	debt := l.debts[i]
	if debt.Status == domain.DebtPaid {
		return Settlement{Debt: debt}, nil
	}

	var settlement Settlement
	if l.doubleEntry && debt.LinkedAccountID != "" && l.accountIndex(debt.LinkedAccountID) >= 0 {
		tx, err := l.PostTransaction(settlementSpec(debt))
		if err != nil {
			return Settlement{}, fmt.Errorf("MarkDebtPaid: posting settlement: %w", err)
		}
		settlement.Transaction = &tx
	}

	debt.Status = domain.DebtPaid
	l.debts[i] = debt
	settlement.Debt = debt
	return settlement, nil
}

// RemoveDebt deletes a debt regardless of its status.
func (l *Ledger) RemoveDebt(id string) error {
	i := l.debtIndex(id)
	if i < 0 {
		return fmt.Errorf("RemoveDebt: debt %s: %w", id, ErrNotFound)
	}
	l.debts = append(l.debts[:i], l.debts[i+1:]...)
	return nil
}

// DebtsByStatus filters debts by status and, when typ is non-empty, by
// direction.
func (l *Ledger) DebtsByStatus(status domain.DebtStatus, typ domain.DebtType) []domain.Debt {
	out := []domain.Debt{}
	for _, d := range l.debts {
		if d.Status != status {
			continue
		}
		if typ != "" && d.Type != typ {
			continue
		}
		out = append(out, d)
	}
	return out
}

func settlementSpec(debt domain.Debt) TransactionSpec {
	spec := TransactionSpec{
		Amount:      debt.Amount,
		Currency:    debt.Currency,
		Category:    settlementCategory,
		SubCategory: settlementSubCategory,
		AccountID:   debt.LinkedAccountID,
	}
	if debt.Type == domain.DebtToPay {
		spec.Type = domain.TransactionExpense
		spec.Description = "Pago de deuda a " + debt.ContactName
	} else {
		spec.Type = domain.TransactionIncome
		spec.Description = "Cobro de deuda de " + debt.ContactName
	}
	return spec
}
