package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "smartbudget.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStore_LoadEmpty(t *testing.T) {
	s, _ := openTestStore(t)

	state, err := s.LoadState(context.Background())
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if state != nil {
		t.Errorf("LoadState() = %+v, want nil", state)
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	first := domain.PersistedState{Accounts: []domain.Account{{ID: "acc_1", Name: "A", Balance: 1, Currency: currency.UYU}}}
	if err := s.SaveState(ctx, first); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	second := domain.PersistedState{Accounts: []domain.Account{{ID: "acc_2", Name: "B", Balance: 2, Currency: currency.USD}}}
	if err := s.SaveState(ctx, second); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	got, err := s.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if len(got.Accounts) != 1 || got.Accounts[0].ID != "acc_2" {
		t.Errorf("Accounts = %+v, want only acc_2", got.Accounts)
	}

	var rows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM app_state`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}

	updated, err := s.UpdatedAt(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !updated.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("UpdatedAt() = %v", updated)
	}
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	if err := s.SaveState(ctx, domain.PersistedState{Debts: []domain.Debt{{ID: "debt_1", ContactName: "Ana", Amount: 3, Currency: currency.UYU, Type: domain.DebtToPay, Status: domain.DebtPending}}}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Debts) != 1 || got.Debts[0].ContactName != "Ana" {
		t.Errorf("Debts = %+v", got.Debts)
	}
}
