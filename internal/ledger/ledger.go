// Package ledger holds accounts, transactions and debts and applies the
// posting rule that keeps account balances in step with transactions.
//
// A Ledger is not safe for concurrent use; callers serialize access.
package ledger

import (
	"time"

	"github.com/dvloznov/smartbudget/internal/domain"
)

// Ledger owns the three collections. Transactions are kept most recent first.
type Ledger struct {
	accounts     []domain.Account
	transactions []domain.Transaction
	debts        []domain.Debt

	ids         IDGenerator
	color       ColorPicker
	now         func() time.Time
	doubleEntry bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDGenerator replaces the default uuid-based generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(l *Ledger) { l.ids = g }
}

// WithColorPicker replaces the random account color.
func WithColorPicker(c ColorPicker) Option {
	return func(l *Ledger) { l.color = c }
}

// WithClock sets the clock used to default transaction dates.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithDoubleEntry switches to double-entry settlement: removing a
// transaction reverses its posting, transfers move money between the two
// accounts, and paying a debt posts a transaction against the linked
// account. Without it only income and expense postings touch balances.
func WithDoubleEntry(enabled bool) Option {
	return func(l *Ledger) { l.doubleEntry = enabled }
}

// New returns an empty Ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		accounts:     []domain.Account{},
		transactions: []domain.Transaction{},
		debts:        []domain.Debt{},
		ids:          UUIDGenerator{},
		color:        RandomColor,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DoubleEntry reports whether double-entry settlement is enabled.
func (l *Ledger) DoubleEntry() bool {
	return l.doubleEntry
}

// Accounts returns a copy of all accounts in insertion order.
func (l *Ledger) Accounts() []domain.Account {
	return append([]domain.Account{}, l.accounts...)
}

// Transactions returns a copy of all transactions, most recent first.
func (l *Ledger) Transactions() []domain.Transaction {
	return append([]domain.Transaction{}, l.transactions...)
}

// Debts returns a copy of all debts in insertion order.
func (l *Ledger) Debts() []domain.Debt {
	return append([]domain.Debt{}, l.debts...)
}

// Account looks up an account by id. A miss is not an error: references
// left behind by a removed account resolve to "no linked account".
func (l *Ledger) Account(id string) (domain.Account, bool) {
	if i := l.accountIndex(id); i >= 0 {
		return l.accounts[i], true
	}
	return domain.Account{}, false
}

// Recent returns up to n of the most recent transactions.
func (l *Ledger) Recent(n int) []domain.Transaction {
	if n > len(l.transactions) {
		n = len(l.transactions)
	}
	if n < 0 {
		n = 0
	}
	return append([]domain.Transaction{}, l.transactions[:n]...)
}

// Snapshot returns the ledger collections as a persistable state. The
// advisory fields are left empty for the caller to fill.
func (l *Ledger) Snapshot() domain.PersistedState {
	return domain.PersistedState{
		Transactions: l.Transactions(),
		Accounts:     l.Accounts(),
		Debts:        l.Debts(),
	}
}

// Restore replaces every collection with the contents of state. Balances are
// taken as stored; transactions are not re-posted.
func (l *Ledger) Restore(state domain.PersistedState) {
	state.Normalize()
	l.accounts = append([]domain.Account{}, state.Accounts...)
	l.transactions = append([]domain.Transaction{}, state.Transactions...)
	l.debts = append([]domain.Debt{}, state.Debts...)
}

func (l *Ledger) accountIndex(id string) int {
	for i := range l.accounts {
		if l.accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) transactionIndex(id string) int {
	for i := range l.transactions {
		if l.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) debtIndex(id string) int {
	for i := range l.debts {
		if l.debts[i].ID == id {
			return i
		}
	}
	return -1
}
