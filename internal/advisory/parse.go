package advisory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/ledger"
)

// cleanModelJSON strips Markdown fences and any text around the outermost
// JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

// parseAnalysis decodes and validates an analysis response. Anything that
// does not match the documented shape is rejected.
func parseAnalysis(raw string) (*domain.AIAnalysisResult, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("parseAnalysis: empty response")
	}

	var result domain.AIAnalysisResult
	dec := json.NewDecoder(strings.NewReader(clean))
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("parseAnalysis: unmarshal JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parseAnalysis: trailing data after JSON object")
	}

	if math.IsNaN(result.FinancialHealthScore) || result.FinancialHealthScore < 0 || result.FinancialHealthScore > 100 {
		return nil, fmt.Errorf("parseAnalysis: health score %v out of range", result.FinancialHealthScore)
	}
	for i := range result.SuggestedBudget {
		p := domain.Priority(strings.ToLower(strings.TrimSpace(string(result.SuggestedBudget[i].Priority))))
		if !p.Valid() {
			return nil, fmt.Errorf("parseAnalysis: suggestion %d has priority %q", i, result.SuggestedBudget[i].Priority)
		}
		result.SuggestedBudget[i].Priority = p
	}
	if result.TopSavingsOpportunities == nil {
		result.TopSavingsOpportunities = []domain.SavingsOpportunity{}
	}
	if result.SuggestedBudget == nil {
		result.SuggestedBudget = []domain.BudgetSuggestion{}
	}

	return &result, nil
}

// receiptFields is the raw receipt response. Amount is accepted as a number
// or a numeric string.
type receiptFields struct {
	Amount      flexibleNumber `json:"amount"`
	Currency    string         `json:"currency"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	SubCategory string         `json:"subCategory"`
	Date        string         `json:"date"`
}

type flexibleNumber struct {
	value *float64
}

func (n *flexibleNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, ok := parseLocaleAmount(s)
		if ok {
			n.value = &v
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.value = &v
	return nil
}

// parseLocaleAmount reads "1234.5", "1.234,50" or "$ 1234" style amounts.
func parseLocaleAmount(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "US$U "))
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseReceipt turns a receipt response into a draft. Fields that fail to
// parse are dropped; a response with neither amount nor description is
// unreadable.
func parseReceipt(raw string, taxonomy *ledger.Taxonomy) (*domain.PartialTransaction, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("parseReceipt: empty response: %w", ErrReceiptUnreadable)
	}

	var fields receiptFields
	if err := json.Unmarshal([]byte(clean), &fields); err != nil {
		return nil, fmt.Errorf("parseReceipt: unmarshal JSON: %v: %w", err, ErrReceiptUnreadable)
	}

	draft := &domain.PartialTransaction{
		Description: strings.TrimSpace(fields.Description),
	}
	if v := fields.Amount.value; v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v > 0 {
		amount := *v
		draft.Amount = &amount
	}
	if c, err := currency.Parse(fields.Currency); err == nil {
		draft.Currency = c
	}
	if d, err := domain.ParseDate(fields.Date); err == nil {
		draft.Date = d
	}
	draft.Category, draft.SubCategory = taxonomy.Canonical(fields.Category, fields.SubCategory)

	if draft.Amount == nil && draft.Description == "" {
		return nil, fmt.Errorf("parseReceipt: no amount or description: %w", ErrReceiptUnreadable)
	}
	return draft, nil
}
