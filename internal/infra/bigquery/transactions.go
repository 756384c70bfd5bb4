// Package bigquery mirrors ledger transactions into a BigQuery table for
// ad-hoc reporting. The ledger stays the source of truth; the table is
// append-only and keyed by transaction id.
package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Amount    *big.Rat `bigquery:"amount"`     // REQUIRED NUMERIC
	Currency  string   `bigquery:"currency"`   // REQUIRED STRING
	AmountUYU *big.Rat `bigquery:"amount_uyu"` // REQUIRED NUMERIC

	Type        string `bigquery:"type"`        // REQUIRED
	Description string `bigquery:"description"` // REQUIRED

	CategoryName    bigquery.NullString `bigquery:"category_name"`    // NULLABLE
	SubcategoryName bigquery.NullString `bigquery:"subcategory_name"` // NULLABLE

	AccountID   string              `bigquery:"account_id"`    // REQUIRED
	AccountName bigquery.NullString `bigquery:"account_name"`  // NULLABLE
	ToAccountID bigquery.NullString `bigquery:"to_account_id"` // NULLABLE

	ExportedTS time.Time `bigquery:"exported_ts"` // REQUIRED
}

// BuildRows converts ledger transactions into rows. Amounts are rounded to
// cents; account names are resolved from accounts when still present.
func BuildRows(txs []domain.Transaction, accounts []domain.Account, exportedAt time.Time) ([]*TransactionRow, error) {
	names := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		names[acc.ID] = acc.Name
	}

	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		uyu, err := currency.Convert(tx.Amount, tx.Currency, currency.Reporting)
		if err != nil {
			return nil, fmt.Errorf("BuildRows: transaction %s: %w", tx.ID, err)
		}
		rows = append(rows, &TransactionRow{
			TransactionID:   tx.ID,
			TransactionDate: tx.Date.Date,
			Amount:          toNumeric(tx.Amount),
			Currency:        string(tx.Currency),
			AmountUYU:       toNumeric(uyu),
			Type:            string(tx.Type),
			Description:     tx.Description,
			CategoryName:    nullString(tx.Category),
			SubcategoryName: nullString(tx.SubCategory),
			AccountID:       tx.AccountID,
			AccountName:     nullString(names[tx.AccountID]),
			ToAccountID:     nullString(tx.ToAccountID),
			ExportedTS:      exportedAt.UTC(),
		})
	}
	return rows, nil
}

func toNumeric(v float64) *big.Rat {
	return decimal.NewFromFloat(v).Round(2).Rat()
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
