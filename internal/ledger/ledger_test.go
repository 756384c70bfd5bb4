package ledger

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

// seqIDs hands out predictable ids.
type seqIDs struct{ n int }

func (s *seqIDs) NewID(prefix string) string {
	s.n++
	return fmt.Sprintf("%s%d", prefix, s.n)
}

var fixedNow = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

func newTestLedger(opts ...Option) *Ledger {
	base := []Option{
		WithIDGenerator(&seqIDs{}),
		WithColorPicker(func() string { return "#123456" }),
		WithClock(func() time.Time { return fixedNow }),
	}
	return New(append(base, opts...)...)
}

func mustAccount(t *testing.T, l *Ledger, name string, balance float64, c currency.Code) domain.Account {
	t.Helper()
	acc, err := l.AddAccount(AccountSpec{Name: name, Balance: balance, Currency: c})
	if err != nil {
		t.Fatalf("AddAccount(%s) error = %v", name, err)
	}
	return acc
}

func balanceOf(t *testing.T, l *Ledger, id string) float64 {
	t.Helper()
	acc, ok := l.Account(id)
	if !ok {
		t.Fatalf("account %s not found", id)
	}
	return acc.Balance
}

func TestAddAccount(t *testing.T) {
	l := newTestLedger()

	acc, err := l.AddAccount(AccountSpec{Name: "  Caja de ahorro ", Balance: 1500, Currency: currency.UYU})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	if acc.ID != "acc_1" {
		t.Errorf("ID = %q, want acc_1", acc.ID)
	}
	if acc.Name != "Caja de ahorro" {
		t.Errorf("Name = %q, want trimmed name", acc.Name)
	}
	if acc.Color != "#123456" {
		t.Errorf("Color = %q, want #123456", acc.Color)
	}
	if got := l.Accounts(); len(got) != 1 || got[0] != acc {
		t.Errorf("Accounts() = %+v, want [%+v]", got, acc)
	}
}

func TestAddAccount_Validation(t *testing.T) {
	tests := []struct {
		name  string
		spec  AccountSpec
		field string
	}{
		{"empty name", AccountSpec{Name: "", Currency: currency.UYU}, "name"},
		{"blank name", AccountSpec{Name: "   ", Currency: currency.UYU}, "name"},
		{"nan balance", AccountSpec{Name: "A", Balance: math.NaN(), Currency: currency.UYU}, "balance"},
		{"bad currency", AccountSpec{Name: "A", Currency: "EUR"}, "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger()
			_, err := l.AddAccount(tt.spec)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("AddAccount() error = %v, want ErrValidation", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("ValidationError field = %+v, want %q", verr, tt.field)
			}
			if len(l.Accounts()) != 0 {
				t.Error("rejected account was stored")
			}
		})
	}
}

func TestAddAccount_NegativeOpeningBalance(t *testing.T) {
	l := newTestLedger()
	acc := mustAccount(t, l, "Tarjeta", -2000, currency.UYU)
	if acc.Balance != -2000 {
		t.Errorf("Balance = %v, want -2000", acc.Balance)
	}
}

func TestUpdateAccount(t *testing.T) {
	l := newTestLedger()
	acc := mustAccount(t, l, "BROU", 100, currency.USD)

	name := "BROU USD"
	balance := 250.5
	updated, err := l.UpdateAccount(acc.ID, AccountPatch{Name: &name, Balance: &balance})
	if err != nil {
		t.Fatalf("UpdateAccount() error = %v", err)
	}
	if updated.Name != name || updated.Balance != balance || updated.Currency != currency.USD {
		t.Errorf("UpdateAccount() = %+v", updated)
	}
	if balanceOf(t, l, acc.ID) != balance {
		t.Error("balance edit not stored")
	}

	blank := " "
	if _, err := l.UpdateAccount(acc.ID, AccountPatch{Name: &blank}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank name error = %v, want ErrValidation", err)
	}
	if _, err := l.UpdateAccount("acc_missing", AccountPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestRemoveAccount_LeavesDanglingReferences(t *testing.T) {
	l := newTestLedger()
	acc := mustAccount(t, l, "Efectivo", 1000, currency.UYU)
	tx, err := l.PostTransaction(TransactionSpec{Amount: 100, Currency: currency.UYU, Description: "Feria", Type: domain.TransactionExpense, AccountID: acc.ID})
	if err != nil {
		t.Fatal(err)
	}
	debt, err := l.AddDebt(DebtSpec{ContactName: "Ana", Amount: 50, Currency: currency.UYU, Type: domain.DebtToCollect, LinkedAccountID: acc.ID})
	if err != nil {
		t.Fatal(err)
	}

	if err := l.RemoveAccount(acc.ID); err != nil {
		t.Fatalf("RemoveAccount() error = %v", err)
	}

	if _, ok := l.Account(acc.ID); ok {
		t.Error("account still present after removal")
	}
	txs := l.Transactions()
	if len(txs) != 1 || txs[0].AccountID != acc.ID || txs[0].ID != tx.ID {
		t.Errorf("transaction reference changed: %+v", txs)
	}
	debts := l.Debts()
	if len(debts) != 1 || debts[0].LinkedAccountID != acc.ID || debts[0].ID != debt.ID {
		t.Errorf("debt reference changed: %+v", debts)
	}

	if err := l.RemoveAccount(acc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveAccount() error = %v, want ErrNotFound", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	l := newTestLedger()
	acc := mustAccount(t, l, "Efectivo", 1000, currency.UYU)
	if _, err := l.PostTransaction(TransactionSpec{Amount: 100, Currency: currency.UYU, Description: "Pan", Type: domain.TransactionExpense, AccountID: acc.ID}); err != nil {
		t.Fatal(err)
	}

	snap := l.Snapshot()

	restored := newTestLedger()
	restored.Restore(snap)

	if got := balanceOf(t, restored, acc.ID); got != 900 {
		t.Errorf("restored balance = %v, want 900 (not re-posted)", got)
	}
	if len(restored.Transactions()) != 1 {
		t.Errorf("restored transactions = %d, want 1", len(restored.Transactions()))
	}
	if restored.Debts() == nil {
		t.Error("Debts() returned nil after restoring state without debts")
	}
}

func TestRestore_MissingCollections(t *testing.T) {
	l := newTestLedger()
	l.Restore(domain.PersistedState{Accounts: []domain.Account{{ID: "a", Name: "A", Currency: currency.UYU}}})

	if len(l.Debts()) != 0 || len(l.Transactions()) != 0 {
		t.Error("expected empty collections")
	}
	if len(l.Accounts()) != 1 {
		t.Errorf("Accounts() = %d, want 1", len(l.Accounts()))
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	l := newTestLedger()
	mustAccount(t, l, "A", 10, currency.UYU)

	accs := l.Accounts()
	accs[0].Balance = 999

	if l.Accounts()[0].Balance != 10 {
		t.Error("mutating Accounts() result changed the ledger")
	}
}

func TestUUIDGenerator_NoCollisions(t *testing.T) {
	const n = 10000
	gen := UUIDGenerator{}
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id := gen.NewID(transactionPrefix)
		if seen[id] {
			t.Fatalf("duplicate id after %d ids: %s", i, id)
		}
		seen[id] = true
	}
}

func TestRandomColor(t *testing.T) {
	for i := 0; i < 100; i++ {
		c := RandomColor()
		if len(c) != 7 || c[0] != '#' {
			t.Fatalf("RandomColor() = %q, want #rrggbb", c)
		}
	}
}
