package advisory

import (
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/ledger"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding text", "Acá va:\n{\"a\":1}\nSaludos", `{"a":1}`},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

const validAnalysis = `{
  "monthlyPrediction": 42000,
  "financialHealthScore": 72,
  "summary": "Vas bien, bo.",
  "topSavingsOpportunities": [{"title": "Delivery", "description": "Menos pedidos", "estimatedSavings": 3000}],
  "suggestedBudget": [{"category": "Alimentación", "suggestedLimit": 15000, "reasoning": "Promedio", "priority": "HIGH"}],
  "savingsGoalFeedback": {"isPossible": true, "verdict": "Se puede", "steps": ["Cociná más"]}
}`

func TestParseAnalysis(t *testing.T) {
	got, err := parseAnalysis("```json\n" + validAnalysis + "\n```")
	if err != nil {
		t.Fatalf("parseAnalysis() error = %v", err)
	}
	if got.FinancialHealthScore != 72 || got.MonthlyPrediction != 42000 {
		t.Errorf("parseAnalysis() = %+v", got)
	}
	if got.SuggestedBudget[0].Priority != domain.PriorityHigh {
		t.Errorf("priority = %q, want normalized high", got.SuggestedBudget[0].Priority)
	}
	if got.SavingsGoalFeedback == nil || !got.SavingsGoalFeedback.IsPossible {
		t.Errorf("SavingsGoalFeedback = %+v", got.SavingsGoalFeedback)
	}
}

func TestParseAnalysis_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "no sé"},
		{"wrong type", `{"financialHealthScore": "alto"}`},
		{"score too high", `{"financialHealthScore": 140}`},
		{"score negative", `{"financialHealthScore": -1}`},
		{"bad priority", `{"financialHealthScore": 50, "suggestedBudget": [{"priority": "urgent"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseAnalysis(tt.raw); err == nil {
				t.Error("parseAnalysis() error = nil, want error")
			}
		})
	}
}

func TestParseAnalysis_MissingListsAreEmpty(t *testing.T) {
	got, err := parseAnalysis(`{"financialHealthScore": 10, "summary": "ok"}`)
	if err != nil {
		t.Fatal(err)
	}
	if got.TopSavingsOpportunities == nil || got.SuggestedBudget == nil {
		t.Error("missing lists were not replaced with empty ones")
	}
}

func TestParseReceipt(t *testing.T) {
	raw := `{"amount": 1250.5, "currency": "uyu", "description": " Tienda Inglesa ", "category": "alimentación", "subCategory": "verduras", "date": "2025-02-10"}`

	got, err := parseReceipt(raw, ledger.DefaultTaxonomy)
	if err != nil {
		t.Fatalf("parseReceipt() error = %v", err)
	}
	if got.Amount == nil || *got.Amount != 1250.5 {
		t.Errorf("Amount = %v, want 1250.5", got.Amount)
	}
	if got.Currency != currency.UYU {
		t.Errorf("Currency = %q, want UYU", got.Currency)
	}
	if got.Description != "Tienda Inglesa" {
		t.Errorf("Description = %q", got.Description)
	}
	if got.Category != "Alimentación" || got.SubCategory != "Verduras" {
		t.Errorf("category = %q/%q, want canonical names", got.Category, got.SubCategory)
	}
	if got.Date != domain.NewDate(2025, time.February, 10) {
		t.Errorf("Date = %v", got.Date)
	}
}

func TestParseReceipt_PartialFields(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantAmount   float64
		wantCurrency currency.Code
		wantDate     bool
	}{
		{"amount as string", `{"amount": "1.234,50", "description": "Farmacia"}`, 1234.5, "", false},
		{"unsupported currency dropped", `{"amount": 10, "currency": "EUR"}`, 10, "", false},
		{"bad date dropped", `{"amount": 10, "currency": "USD", "date": "10/02/2025"}`, 10, currency.USD, false},
		{"symbol prefix", `{"amount": "$U 300"}`, 300, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReceipt(tt.raw, ledger.DefaultTaxonomy)
			if err != nil {
				t.Fatalf("parseReceipt() error = %v", err)
			}
			if got.Amount == nil || *got.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if got.Currency != tt.wantCurrency {
				t.Errorf("Currency = %q, want %q", got.Currency, tt.wantCurrency)
			}
			if !got.Date.IsZero() != tt.wantDate {
				t.Errorf("Date = %v", got.Date)
			}
		})
	}
}

func TestParseReceipt_Unreadable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "La imagen está borrosa"},
		{"no usable fields", `{"currency": "UYU"}`},
		{"zero amount only", `{"amount": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseReceipt(tt.raw, ledger.DefaultTaxonomy)
			if !errors.Is(err, ErrReceiptUnreadable) {
				t.Errorf("parseReceipt() error = %v, want ErrReceiptUnreadable", err)
			}
		})
	}
}

func TestParseLocaleAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1234.5", 1234.5, true},
		{"1.234,50", 1234.5, true},
		{"US$ 12,30", 12.3, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseLocaleAmount(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseLocaleAmount(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
