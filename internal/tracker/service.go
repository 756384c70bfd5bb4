// Package tracker is the application service: it owns the ledger, persists
// the full state after every change and fronts the advisory gateway.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dvloznov/smartbudget/internal/advisory"
	"github.com/dvloznov/smartbudget/internal/aggregation"
	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/ledger"
	"github.com/dvloznov/smartbudget/internal/metrics"
	"github.com/dvloznov/smartbudget/internal/persistence"
)

// ErrBusy is returned when a request of the same kind is already running.
var ErrBusy = errors.New("request already in flight")

// recentLimit is how many transactions the dashboard shows.
const recentLimit = 4

// Service serializes every ledger mutation behind one lock and saves the
// resulting state before releasing it.
type Service struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	analysis *domain.AIAnalysisResult
	portrait *string

	store    persistence.Gateway
	advisor  advisory.Gateway
	taxonomy *ledger.Taxonomy
	metrics  *metrics.Recorder
	log      zerolog.Logger

	analyzing atomic.Bool
	scanning  atomic.Bool
	portraits singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMetrics records mutations, advisory calls and saves.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithTaxonomy replaces the default category taxonomy.
func WithTaxonomy(t *ledger.Taxonomy) Option {
	return func(s *Service) { s.taxonomy = t }
}

// New builds a Service around an empty or restored ledger. Call Load to
// read the stored state.
func New(l *ledger.Ledger, store persistence.Gateway, advisor advisory.Gateway, opts ...Option) *Service {
	s := &Service{
		ledger:   l,
		store:    store,
		advisor:  advisor,
		taxonomy: ledger.DefaultTaxonomy,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with the stored blob. Nothing stored
// leaves the state empty. A blob that cannot be decoded is logged and
// ignored; any other storage error is returned.
func (s *Service) Load(ctx context.Context) error {
	state, err := s.store.LoadState(ctx)
	if errors.Is(err, persistence.ErrCorruptState) {
		s.log.Error().Err(err).Msg("Stored state is corrupt, starting empty")
		state = nil
	} else if err != nil {
		return fmt.Errorf("Load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		s.ledger.Restore(domain.PersistedState{})
		s.analysis, s.portrait = nil, nil
		return nil
	}
	s.ledger.Restore(*state)
	s.analysis = state.LastAnalysis
	s.portrait = state.RocioPortrait

	s.log.Info().
		Int("accounts", len(state.Accounts)).
		Int("transactions", len(state.Transactions)).
		Int("debts", len(state.Debts)).
		Msg("State loaded")
	return nil
}

// Snapshot returns the full state as it would be persisted.
func (s *Service) Snapshot() domain.PersistedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() domain.PersistedState {
	state := s.ledger.Snapshot()
	state.LastAnalysis = s.analysis
	state.RocioPortrait = s.portrait
	return state
}

// commitLocked records a finished mutation and saves the state. Save
// failures are logged and counted; the mutation stays applied.
func (s *Service) commitLocked(ctx context.Context, op string) {
	s.metrics.Mutation(op)
	s.saveLocked(ctx)
}

// saveLocked writes the snapshot even after ctx is canceled. An applied
// mutation is always followed by a save attempt.
func (s *Service) saveLocked(ctx context.Context) {
	err := s.store.SaveState(context.WithoutCancel(ctx), s.snapshotLocked())
	s.metrics.Save(err)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to save state")
	}
}

// Accounts returns every account.
func (s *Service) Accounts() []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Accounts()
}

// Transactions returns every transaction, most recent first.
func (s *Service) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Transactions()
}

// Debts returns every debt.
func (s *Service) Debts() []domain.Debt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Debts()
}

// Taxonomy returns the category taxonomy.
func (s *Service) Taxonomy() *ledger.Taxonomy {
	return s.taxonomy
}

// Dashboard is the summary view: totals plus the latest activity.
type Dashboard struct {
	aggregation.Stats
	Recent    []domain.Transaction `json:"recentTransactions"`
	PaidDebts []domain.Debt        `json:"paidDebts"`
}

// Stats recomputes the dashboard from the current collections.
func (s *Service) Stats() (Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := aggregation.Compute(s.ledger.Accounts(), s.ledger.Debts())
	if err != nil {
		return Dashboard{}, fmt.Errorf("Stats: %w", err)
	}
	return Dashboard{
		Stats:     stats,
		Recent:    s.ledger.Recent(recentLimit),
		PaidDebts: s.ledger.DebtsByStatus(domain.DebtPaid, ""),
	}, nil
}

// NetWorthUYU returns the current net worth in the reporting currency, or 0
// when it cannot be computed.
func (s *Service) NetWorthUYU() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	nw, err := aggregation.ComputeNetWorth(s.ledger.Accounts())
	if err != nil {
		return 0
	}
	return nw.UYU
}
