// Package aggregation derives totals from ledger collections. Every figure
// is recomputed from scratch and expressed in the reporting currency.
package aggregation

import (
	"fmt"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

// NetWorth is the sum of all account balances in UYU, with the same figure
// shown in USD.
type NetWorth struct {
	UYU float64 `json:"uyu"`
	USD float64 `json:"usd"`
}

// Stats is the dashboard summary.
type Stats struct {
	NetWorth       NetWorth `json:"netWorth"`
	DebtsToPay     float64  `json:"debtsToPay"`
	DebtsToCollect float64  `json:"debtsToCollect"`
}

// ComputeNetWorth converts every balance into UYU and sums them.
func ComputeNetWorth(accounts []domain.Account) (NetWorth, error) {
	var total float64
	for _, acc := range accounts {
		v, err := currency.Convert(acc.Balance, acc.Currency, currency.Reporting)
		if err != nil {
			return NetWorth{}, fmt.Errorf("ComputeNetWorth: account %s: %w", acc.ID, err)
		}
		total += v
	}
	usd, err := currency.Convert(total, currency.Reporting, currency.USD)
	if err != nil {
		return NetWorth{}, fmt.Errorf("ComputeNetWorth: %w", err)
	}
	return NetWorth{UYU: total, USD: usd}, nil
}

// OutstandingToPay sums pending debts the user owes, in UYU.
func OutstandingToPay(debts []domain.Debt) (float64, error) {
	return outstanding(debts, domain.DebtToPay)
}

// OutstandingToCollect sums pending debts owed to the user, in UYU.
func OutstandingToCollect(debts []domain.Debt) (float64, error) {
	return outstanding(debts, domain.DebtToCollect)
}

func outstanding(debts []domain.Debt, typ domain.DebtType) (float64, error) {
	var total float64
	for _, d := range debts {
		if d.Type != typ || d.Status != domain.DebtPending {
			continue
		}
		v, err := currency.Convert(d.Amount, d.Currency, currency.Reporting)
		if err != nil {
			return 0, fmt.Errorf("outstanding: debt %s: %w", d.ID, err)
		}
		total += v
	}
	return total, nil
}

// Compute builds the full dashboard summary.
func Compute(accounts []domain.Account, debts []domain.Debt) (Stats, error) {
	nw, err := ComputeNetWorth(accounts)
	if err != nil {
		return Stats{}, err
	}
	toPay, err := OutstandingToPay(debts)
	if err != nil {
		return Stats{}, err
	}
	toCollect, err := OutstandingToCollect(debts)
	if err != nil {
		return Stats{}, err
	}
	return Stats{NetWorth: nw, DebtsToPay: toPay, DebtsToCollect: toCollect}, nil
}
