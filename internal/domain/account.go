package domain

import "github.com/dvloznov/smartbudget/internal/currency"

// Account is a named balance held in a single currency. Balance is always
// expressed in the account's own currency.
type Account struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Balance  float64       `json:"balance"`
	Currency currency.Code `json:"currency"`
	Color    string        `json:"color"`
}
