package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dvloznov/smartbudget/internal/advisory"
	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/ledger"
)

const portraitKey = "portrait"

// Analysis returns the cached result of the last successful analysis.
func (s *Service) Analysis() *domain.AIAnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

// RequestAnalysis sends the transaction history, converted to the reporting
// currency, to the advisory gateway. On success the result replaces the
// cached analysis and is saved. On failure the previous analysis stays.
func (s *Service) RequestAnalysis(ctx context.Context, savingsGoal float64) (*domain.AIAnalysisResult, error) {
	if math.IsNaN(savingsGoal) || math.IsInf(savingsGoal, 0) || savingsGoal < 0 {
		return nil, &ledger.ValidationError{Field: "savingsGoal", Reason: "must be a non-negative number"}
	}

	txs := s.Transactions()
	if len(txs) == 0 {
		return nil, advisory.ErrNoData
	}

	if !s.analyzing.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.analyzing.Store(false)

	entries, err := advisory.NormalizeEntries(txs)
	if err != nil {
		return nil, fmt.Errorf("RequestAnalysis: %w", err)
	}

	result, err := s.advisor.AnalyzeFinances(ctx, entries, savingsGoal)
	s.metrics.Advisory("analysis", err)
	if err != nil {
		s.log.Warn().Err(err).Int("transactions", len(entries)).Msg("Analysis failed")
		return nil, asAdvisoryError("RequestAnalysis", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis = result
	s.saveLocked(ctx)
	return result, nil
}

// ScanReceipt reads a receipt image into a transaction draft for the user to
// review. Nothing is posted.
func (s *Service) ScanReceipt(ctx context.Context, image []byte) (*domain.PartialTransaction, error) {
	if len(image) == 0 {
		return nil, &ledger.ValidationError{Field: "image", Reason: "is required"}
	}
	if !s.scanning.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.scanning.Store(false)

	draft, err := s.advisor.ExtractReceipt(ctx, image)
	s.metrics.Advisory("receipt", err)
	if err != nil {
		s.log.Warn().Err(err).Int("image_bytes", len(image)).Msg("Receipt extraction failed")
		return nil, asAdvisoryError("ScanReceipt", err)
	}
	if draft.Type == "" {
		draft.Type = domain.TransactionExpense
	}
	return draft, nil
}

// Portrait returns the advisor portrait, generating it on first use.
// Concurrent callers share one generation.
func (s *Service) Portrait(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.portrait != nil {
		p := *s.portrait
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	v, err, _ := s.portraits.Do(portraitKey, func() (interface{}, error) {
		s.mu.Lock()
		cached := s.portrait
		s.mu.Unlock()
		if cached != nil {
			return *cached, nil
		}

		p, err := s.advisor.GeneratePortrait(ctx)
		s.metrics.Advisory("portrait", err)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.portrait = &p
		s.saveLocked(ctx)
		return p, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Portrait generation failed")
		return "", asAdvisoryError("Portrait", err)
	}
	return v.(string), nil
}

// asAdvisoryError keeps known advisory sentinels and classifies anything
// else as the service being unavailable.
func asAdvisoryError(op string, err error) error {
	if errors.Is(err, advisory.ErrAdvisoryUnavailable) ||
		errors.Is(err, advisory.ErrReceiptUnreadable) ||
		errors.Is(err, advisory.ErrNoData) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %v: %w", op, err, advisory.ErrAdvisoryUnavailable)
}
