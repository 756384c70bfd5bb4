// Package advisory talks to the remote model that produces budgeting
// advice, reads receipts and draws the advisor portrait.
package advisory

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

var (
	// ErrAdvisoryUnavailable covers transport failures and malformed
	// analysis responses. The caller keeps its previous analysis.
	ErrAdvisoryUnavailable = errors.New("advisory service unavailable")
	// ErrReceiptUnreadable means no usable fields came back for an image.
	ErrReceiptUnreadable = errors.New("receipt unreadable")
	// ErrNoData is returned when an analysis is requested with no
	// transactions. It is raised before any remote call.
	ErrNoData = errors.New("no transactions to analyze")
)

// Gateway is the remote advisory service.
type Gateway interface {
	// AnalyzeFinances returns budgeting advice for the given history. All
	// amounts in entries are already in the reporting currency.
	AnalyzeFinances(ctx context.Context, entries []AnalysisEntry, savingsGoal float64) (*domain.AIAnalysisResult, error)

	// ExtractReceipt reads a receipt image into a transaction draft.
	ExtractReceipt(ctx context.Context, image []byte) (*domain.PartialTransaction, error)

	// GeneratePortrait returns an image reference for the advisor avatar.
	GeneratePortrait(ctx context.Context) (string, error)
}

// AnalysisEntry is one transaction as sent to the analysis model.
type AnalysisEntry struct {
	Date                      string                 `json:"date"`
	AmountInReportingCurrency float64                `json:"amountInReportingCurrency"`
	Category                  string                 `json:"category"`
	SubCategory               string                 `json:"subCategory"`
	Type                      domain.TransactionType `json:"type"`
	Description               string                 `json:"description"`
}

// NormalizeEntries converts every transaction amount into the reporting
// currency before it leaves the process.
func NormalizeEntries(txs []domain.Transaction) ([]AnalysisEntry, error) {
	entries := make([]AnalysisEntry, 0, len(txs))
	for _, tx := range txs {
		amount, err := currency.Convert(tx.Amount, tx.Currency, currency.Reporting)
		if err != nil {
			return nil, fmt.Errorf("NormalizeEntries: transaction %s: %w", tx.ID, err)
		}
		entries = append(entries, AnalysisEntry{
			Date:                      tx.Date.String(),
			AmountInReportingCurrency: amount,
			Category:                  tx.Category,
			SubCategory:               tx.SubCategory,
			Type:                      tx.Type,
			Description:               tx.Description,
		})
	}
	return entries, nil
}

// Disabled is used when no model credentials are configured. Every call
// fails with ErrAdvisoryUnavailable.
type Disabled struct{}

func (Disabled) AnalyzeFinances(context.Context, []AnalysisEntry, float64) (*domain.AIAnalysisResult, error) {
	return nil, fmt.Errorf("AnalyzeFinances: not configured: %w", ErrAdvisoryUnavailable)
}

func (Disabled) ExtractReceipt(context.Context, []byte) (*domain.PartialTransaction, error) {
	return nil, fmt.Errorf("ExtractReceipt: not configured: %w", ErrAdvisoryUnavailable)
}

func (Disabled) GeneratePortrait(context.Context) (string, error) {
	return "", fmt.Errorf("GeneratePortrait: not configured: %w", ErrAdvisoryUnavailable)
}

var _ Gateway = Disabled{}
