package domain

// Priority ranks a suggested budget line.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// AIAnalysisResult is the advisory snapshot returned by the financial
// analysis. It is cached verbatim and replaced wholesale on the next
// successful analysis.
type AIAnalysisResult struct {
	MonthlyPrediction       float64              `json:"monthlyPrediction"`
	FinancialHealthScore    float64              `json:"financialHealthScore"`
	Summary                 string               `json:"summary"`
	TopSavingsOpportunities []SavingsOpportunity `json:"topSavingsOpportunities"`
	SuggestedBudget         []BudgetSuggestion   `json:"suggestedBudget"`
	SavingsGoalFeedback     *SavingsGoalFeedback `json:"savingsGoalFeedback,omitempty"`
}

type SavingsOpportunity struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	EstimatedSavings float64 `json:"estimatedSavings"`
}

type BudgetSuggestion struct {
	Category       string   `json:"category"`
	SuggestedLimit float64  `json:"suggestedLimit"`
	Reasoning      string   `json:"reasoning"`
	Priority       Priority `json:"priority"`
}

type SavingsGoalFeedback struct {
	IsPossible bool     `json:"isPossible"`
	Verdict    string   `json:"verdict"`
	Steps      []string `json:"steps"`
}
