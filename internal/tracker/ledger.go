package tracker

import (
	"context"

	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/ledger"
)

// AddAccount creates an account and saves the state.
func (s *Service) AddAccount(ctx context.Context, spec ledger.AccountSpec) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.ledger.AddAccount(spec)
	if err != nil {
		return domain.Account{}, err
	}
	s.commitLocked(ctx, "add_account")
	return acc, nil
}

// UpdateAccount applies patch to the account with the given id.
func (s *Service) UpdateAccount(ctx context.Context, id string, patch ledger.AccountPatch) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.ledger.UpdateAccount(id, patch)
	if err != nil {
		return domain.Account{}, err
	}
	s.commitLocked(ctx, "update_account")
	return acc, nil
}

// RemoveAccount deletes an account. Records that reference it keep the id.
func (s *Service) RemoveAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.RemoveAccount(id); err != nil {
		return err
	}
	s.commitLocked(ctx, "remove_account")
	return nil
}

// PostTransaction canonicalizes the category against the taxonomy, fills a
// missing subcategory with the category default and posts the transaction.
func (s *Service) PostTransaction(ctx context.Context, spec ledger.TransactionSpec) (domain.Transaction, error) {
	spec.Category, spec.SubCategory = s.taxonomy.Canonical(spec.Category, spec.SubCategory)
	if spec.SubCategory == "" {
		spec.SubCategory = s.taxonomy.DefaultSubcategory(spec.Category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.ledger.PostTransaction(spec)
	if err != nil {
		return domain.Transaction{}, err
	}
	s.log.Debug().
		Str("transaction_id", tx.ID).
		Str("account_id", tx.AccountID).
		Str("type", string(tx.Type)).
		Msg("Transaction posted")
	s.commitLocked(ctx, "post_transaction")
	return tx, nil
}

// UpdateTransaction edits descriptive fields. A changed category or
// subcategory is canonicalized together with the field it pairs with.
func (s *Service) UpdateTransaction(ctx context.Context, id string, patch ledger.TransactionPatch) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.findTransactionLocked(id); ok && (patch.Category != nil || patch.SubCategory != nil) {
		cat, sub := current.Category, current.SubCategory
		if patch.Category != nil {
			cat = *patch.Category
		}
		if patch.SubCategory != nil {
			sub = *patch.SubCategory
		}
		cat, sub = s.taxonomy.Canonical(cat, sub)
		patch.Category, patch.SubCategory = &cat, &sub
	}

	tx, err := s.ledger.UpdateTransaction(id, patch)
	if err != nil {
		return domain.Transaction{}, err
	}
	s.commitLocked(ctx, "update_transaction")
	return tx, nil
}

// RemoveTransaction deletes a transaction. Balances are reversed only in
// double-entry mode.
func (s *Service) RemoveTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.RemoveTransaction(id); err != nil {
		return err
	}
	s.commitLocked(ctx, "remove_transaction")
	return nil
}

// AddDebt records a pending debt.
func (s *Service) AddDebt(ctx context.Context, spec ledger.DebtSpec) (domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	debt, err := s.ledger.AddDebt(spec)
	if err != nil {
		return domain.Debt{}, err
	}
	s.commitLocked(ctx, "add_debt")
	return debt, nil
}

// MarkDebtPaid settles a debt. Paying a debt twice saves nothing the second
// time.
func (s *Service) MarkDebtPaid(ctx context.Context, id string) (ledger.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, _ := s.findDebtLocked(id)
	settlement, err := s.ledger.MarkDebtPaid(id)
	if err != nil {
		return ledger.Settlement{}, err
	}
	if before.Status != domain.DebtPaid {
		s.commitLocked(ctx, "mark_debt_paid")
	}
	return settlement, nil
}

// RemoveDebt deletes a debt whatever its status.
func (s *Service) RemoveDebt(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.RemoveDebt(id); err != nil {
		return err
	}
	s.commitLocked(ctx, "remove_debt")
	return nil
}

func (s *Service) findTransactionLocked(id string) (domain.Transaction, bool) {
	for _, tx := range s.ledger.Transactions() {
		if tx.ID == id {
			return tx, true
		}
	}
	return domain.Transaction{}, false
}

func (s *Service) findDebtLocked(id string) (domain.Debt, bool) {
	for _, d := range s.ledger.Debts() {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Debt{}, false
}
