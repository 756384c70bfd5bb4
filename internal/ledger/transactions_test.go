package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

func TestPostTransaction_ConvertsIntoAccountCurrency(t *testing.T) {
	l := newTestLedger()
	acc := mustAccount(t, l, "Dólares", 100, currency.USD)

	tx, err := l.PostTransaction(TransactionSpec{
		Amount:      400,
		Currency:    currency.UYU,
		Description: "Supermercado",
		Type:        domain.TransactionExpense,
		AccountID:   acc.ID,
	})
	if err != nil {
		t.Fatalf("PostTransaction() error = %v", err)
	}

	if got := balanceOf(t, l, acc.ID); got != 90 {
		t.Errorf("balance = %v, want 90", got)
	}
	if tx.Amount != 400 || tx.Currency != currency.UYU {
		t.Errorf("stored amount = %v %s, want 400 UYU", tx.Amount, tx.Currency)
	}
	if tx.Date != domain.DateOf(fixedNow) {
		t.Errorf("Date = %v, want today", tx.Date)
	}
}

func TestPostTransaction_Income(t *testing.T) {
	l := newTestLedger()
	acc := mustAccount(t, l, "Sueldo", 0, currency.UYU)

	if _, err := l.PostTransaction(TransactionSpec{Amount: 10, Currency: currency.USD, Description: "Freelance", Type: domain.TransactionIncome, AccountID: acc.ID}); err != nil {
		t.Fatal(err)
	}
	if got := balanceOf(t, l, acc.ID); got != 400 {
		t.Errorf("balance = %v, want 400", got)
	}
}

func TestPostTransaction_OnlyOwningAccountChanges(t *testing.T) {
	l := newTestLedger()
	a := mustAccount(t, l, "A", 1000, currency.UYU)
	b := mustAccount(t, l, "B", 50, currency.USD)

	if _, err := l.PostTransaction(TransactionSpec{Amount: 200, Currency: currency.UYU, Description: "UTE", Type: domain.TransactionExpense, AccountID: a.ID}); err != nil {
		t.Fatal(err)
	}
	if got := balanceOf(t, l, b.ID); got != 50 {
		t.Errorf("unrelated account balance = %v, want 50", got)
	}
}

func TestPostTransaction_MostRecentFirst(t *testing.T) {
	l := newTestLedger()
	acc := mustAccount(t, l, "A", 0, currency.UYU)

	var ids []string
	for _, desc := range []string{"uno", "dos", "tres"} {
		tx, err := l.PostTransaction(TransactionSpec{Amount: 1, Currency: currency.UYU, Description: desc, Type: domain.TransactionIncome, AccountID: acc.ID})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, tx.ID)
	}

	txs := l.Transactions()
	if txs[0].ID != ids[2] || txs[2].ID != ids[0] {
		t.Errorf("order = %v, want most recent first", []string{txs[0].ID, txs[1].ID, txs[2].ID})
	}
	if recent := l.Recent(2); len(recent) != 2 || recent[0].ID != ids[2] {
		t.Errorf("Recent(2) = %+v", recent)
	}
	if recent := l.Recent(10); len(recent) != 3 {
		t.Errorf("Recent(10) returned %d, want 3", len(recent))
	}
}

func TestPostTransaction_TransferLeavesBalancesAlone(t *testing.T) {
	l := newTestLedger()
	a := mustAccount(t, l, "A", 1000, currency.UYU)
	b := mustAccount(t, l, "B", 10, currency.USD)

	if _, err := l.PostTransaction(TransactionSpec{Amount: 400, Currency: currency.UYU, Description: "Cambio", Type: domain.TransactionTransfer, AccountID: a.ID, ToAccountID: b.ID}); err != nil {
		t.Fatal(err)
	}
	if balanceOf(t, l, a.ID) != 1000 || balanceOf(t, l, b.ID) != 10 {
		t.Error("transfer changed balances without double-entry")
	}
	if len(l.Transactions()) != 1 {
		t.Error("transfer not recorded")
	}
}

func TestPostTransaction_Validation(t *testing.T) {
	valid := TransactionSpec{Amount: 10, Currency: currency.UYU, Description: "x", Type: domain.TransactionExpense}

	tests := []struct {
		name   string
		mutate func(*TransactionSpec)
		field  string
	}{
		{"empty description", func(s *TransactionSpec) { s.Description = "  " }, "description"},
		{"zero amount", func(s *TransactionSpec) { s.Amount = 0 }, "amount"},
		{"negative amount", func(s *TransactionSpec) { s.Amount = -5 }, "amount"},
		{"infinite amount", func(s *TransactionSpec) { s.Amount = math.Inf(1) }, "amount"},
		{"bad currency", func(s *TransactionSpec) { s.Currency = "ARS" }, "currency"},
		{"bad type", func(s *TransactionSpec) { s.Type = "refund" }, "type"},
		{"missing account", func(s *TransactionSpec) { s.AccountID = "" }, "accountId"},
		{"unknown account", func(s *TransactionSpec) { s.AccountID = "acc_404" }, "accountId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger()
			acc := mustAccount(t, l, "A", 100, currency.UYU)
			spec := valid
			spec.AccountID = acc.ID
			tt.mutate(&spec)

			_, err := l.PostTransaction(spec)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("PostTransaction() error = %v, want validation on %q", err, tt.field)
			}
			if len(l.Transactions()) != 0 {
				t.Error("rejected transaction was stored")
			}
			if balanceOf(t, l, acc.ID) != 100 {
				t.Error("rejected transaction changed the balance")
			}
		})
	}
}

func TestRemoveTransaction_KeepsBalance(t *testing.T) {
	l := newTestLedger()
	acc := mustAccount(t, l, "A", 1000, currency.UYU)
	tx, err := l.PostTransaction(TransactionSpec{Amount: 300, Currency: currency.UYU, Description: "Renta", Type: domain.TransactionExpense, AccountID: acc.ID})
	if err != nil {
		t.Fatal(err)
	}

	if err := l.RemoveTransaction(tx.ID); err != nil {
		t.Fatalf("RemoveTransaction() error = %v", err)
	}
	if len(l.Transactions()) != 0 {
		t.Error("transaction still present")
	}
	if got := balanceOf(t, l, acc.ID); got != 700 {
		t.Errorf("balance = %v, want 700 (removal does not reverse)", got)
	}
	if err := l.RemoveTransaction(tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestPostingLaw(t *testing.T) {
	l := newTestLedger()
	acc := mustAccount(t, l, "A", 500, currency.UYU)

	postings := []struct {
		amount float64
		cur    currency.Code
		typ    domain.TransactionType
	}{
		{100, currency.UYU, domain.TransactionIncome},
		{2, currency.USD, domain.TransactionExpense},
		{35.5, currency.UYU, domain.TransactionExpense},
		{1, currency.USD, domain.TransactionIncome},
		{999, currency.UYU, domain.TransactionTransfer},
	}

	want := 500.0
	var ids []string
	for _, p := range postings {
		tx, err := l.PostTransaction(TransactionSpec{Amount: p.amount, Currency: p.cur, Description: "x", Type: p.typ, AccountID: acc.ID})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, tx.ID)
		v := currency.MustConvert(p.amount, p.cur, currency.UYU)
		switch p.typ {
		case domain.TransactionIncome:
			want += v
		case domain.TransactionExpense:
			want -= v
		}
	}

	if got := balanceOf(t, l, acc.ID); math.Abs(got-want) > 1e-9 {
		t.Fatalf("balance = %v, want %v", got, want)
	}

	for _, id := range ids[:3] {
		if err := l.RemoveTransaction(id); err != nil {
			t.Fatal(err)
		}
	}
	if got := balanceOf(t, l, acc.ID); math.Abs(got-want) > 1e-9 {
		t.Errorf("balance after removals = %v, want %v", got, want)
	}
}

func TestUpdateTransaction(t *testing.T) {
	l := newTestLedger()
	acc := mustAccount(t, l, "A", 1000, currency.UYU)
	tx, err := l.PostTransaction(TransactionSpec{Amount: 300, Currency: currency.UYU, Description: "Renta", Type: domain.TransactionExpense, AccountID: acc.ID})
	if err != nil {
		t.Fatal(err)
	}

	desc := "Renta marzo"
	cat := "Vivienda y Facturas"
	date := domain.NewDate(2025, time.March, 1)
	updated, err := l.UpdateTransaction(tx.ID, TransactionPatch{Description: &desc, Category: &cat, Date: &date})
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if updated.Description != desc || updated.Category != cat || updated.Date != date {
		t.Errorf("UpdateTransaction() = %+v", updated)
	}
	if updated.Amount != 300 || balanceOf(t, l, acc.ID) != 700 {
		t.Error("UpdateTransaction touched financial fields")
	}

	empty := ""
	if _, err := l.UpdateTransaction(tx.ID, TransactionPatch{Description: &empty}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty description error = %v, want ErrValidation", err)
	}
	if _, err := l.UpdateTransaction("tx_404", TransactionPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestDoubleEntry_Transfer(t *testing.T) {
	l := newTestLedger(WithDoubleEntry(true))
	a := mustAccount(t, l, "Pesos", 1000, currency.UYU)
	b := mustAccount(t, l, "Dólares", 10, currency.USD)

	tx, err := l.PostTransaction(TransactionSpec{Amount: 400, Currency: currency.UYU, Description: "Compra USD", Type: domain.TransactionTransfer, AccountID: a.ID, ToAccountID: b.ID})
	if err != nil {
		t.Fatalf("PostTransaction() error = %v", err)
	}
	if got := balanceOf(t, l, a.ID); got != 600 {
		t.Errorf("source balance = %v, want 600", got)
	}
	if got := balanceOf(t, l, b.ID); got != 20 {
		t.Errorf("destination balance = %v, want 20", got)
	}

	if err := l.RemoveTransaction(tx.ID); err != nil {
		t.Fatal(err)
	}
	if balanceOf(t, l, a.ID) != 1000 || balanceOf(t, l, b.ID) != 10 {
		t.Error("removing transfer did not reverse both sides")
	}
}

func TestDoubleEntry_TransferValidation(t *testing.T) {
	l := newTestLedger(WithDoubleEntry(true))
	a := mustAccount(t, l, "A", 1000, currency.UYU)

	for _, to := range []string{"", a.ID, "acc_404"} {
		_, err := l.PostTransaction(TransactionSpec{Amount: 1, Currency: currency.UYU, Description: "x", Type: domain.TransactionTransfer, AccountID: a.ID, ToAccountID: to})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("toAccountId %q: error = %v, want ErrValidation", to, err)
		}
	}
}

func TestDoubleEntry_RemoveReversesPosting(t *testing.T) {
	l := newTestLedger(WithDoubleEntry(true))
	acc := mustAccount(t, l, "A", 100, currency.USD)
	tx, err := l.PostTransaction(TransactionSpec{Amount: 400, Currency: currency.UYU, Description: "Super", Type: domain.TransactionExpense, AccountID: acc.ID})
	if err != nil {
		t.Fatal(err)
	}

	if err := l.RemoveTransaction(tx.ID); err != nil {
		t.Fatal(err)
	}
	if got := balanceOf(t, l, acc.ID); got != 100 {
		t.Errorf("balance = %v, want 100", got)
	}
}
