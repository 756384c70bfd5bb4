package domain

// PersistedState is the full application state written to the blob store
// after every change. The JSON keys are a stable contract with stored data.
type PersistedState struct {
	Transactions  []Transaction     `json:"transactions"`
	Accounts      []Account         `json:"accounts"`
	Debts         []Debt            `json:"debts"`
	RocioPortrait *string           `json:"rocioPortrait"`
	LastAnalysis  *AIAnalysisResult `json:"lastAnalysis"`
}

// Normalize replaces missing collections with empty ones.
func (s *PersistedState) Normalize() {
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	if s.Accounts == nil {
		s.Accounts = []Account{}
	}
	if s.Debts == nil {
		s.Debts = []Debt{}
	}
}
