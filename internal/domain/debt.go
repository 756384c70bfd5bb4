package domain

import "github.com/dvloznov/smartbudget/internal/currency"

// DebtType says who owes whom.
type DebtType string

const (
	// DebtToPay is money the user owes a contact.
	DebtToPay DebtType = "to_pay"
	// DebtToCollect is money a contact owes the user.
	DebtToCollect DebtType = "to_collect"
)

func (t DebtType) Valid() bool {
	return t == DebtToPay || t == DebtToCollect
}

// DebtStatus moves from pending to paid and never back.
type DebtStatus string

const (
	DebtPending DebtStatus = "pending"
	DebtPaid    DebtStatus = "paid"
)

// Debt is an outstanding obligation with a contact. LinkedAccountID may
// reference an account that no longer exists; lookups treat that as "no
// linked account".
type Debt struct {
	ID              string        `json:"id"`
	ContactName     string        `json:"contactName"`
	Amount          float64       `json:"amount"`
	Currency        currency.Code `json:"currency"`
	Type            DebtType      `json:"type"`
	Description     string        `json:"description"`
	DueDate         Date          `json:"dueDate"`
	Status          DebtStatus    `json:"status"`
	LinkedAccountID string        `json:"linkedAccountId,omitempty"`
}
