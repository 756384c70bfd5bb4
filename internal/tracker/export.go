package tracker

import (
	"context"
	"fmt"

	"github.com/dvloznov/smartbudget/internal/ledger"
	"github.com/dvloznov/smartbudget/internal/persistence"
)

// Export returns the full state in the persisted blob format.
func (s *Service) Export() ([]byte, error) {
	data, err := persistence.Encode(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("Export: %w", err)
	}
	return data, nil
}

// Import replaces the whole state with a previously exported blob and saves
// it. Balances are taken as exported.
func (s *Service) Import(ctx context.Context, data []byte) error {
	state, err := persistence.Decode(data)
	if err != nil {
		return &ledger.ValidationError{Field: "state", Reason: err.Error()}
	}
	if err := ledger.ValidateState(*state); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Restore(*state)
	s.analysis = state.LastAnalysis
	s.portrait = state.RocioPortrait
	s.commitLocked(ctx, "import")

	s.log.Info().
		Int("accounts", len(state.Accounts)).
		Int("transactions", len(state.Transactions)).
		Int("debts", len(state.Debts)).
		Msg("State imported")
	return nil
}
