package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dvloznov/smartbudget/internal/app"
	"github.com/dvloznov/smartbudget/internal/config"
	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/logger"
)

// openApp loads configuration and the stored state. Logs go to stderr so
// command output on stdout stays clean.
func openApp(ctx context.Context) (context.Context, *app.App, error) {
	cfg := config.Load()
	log := logger.NewWithConfig(logger.Config{
		Level:  cfg.LogLevel,
		JSON:   cfg.LogFormat == "json",
		Output: os.Stderr,
	})
	if err := cfg.Validate(); err != nil {
		return ctx, nil, err
	}

	ctx = logger.WithContext(ctx, log)
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return ctx, nil, err
	}
	return ctx, a, nil
}

// dateRange holds the optional -start-date/-end-date flags.
type dateRange struct {
	start string
	end   string
}

// filter keeps transactions whose date falls in the inclusive range. Empty
// bounds are open.
func (r dateRange) filter(txs []domain.Transaction) ([]domain.Transaction, error) {
	start, err := domain.ParseDate(r.start)
	if err != nil {
		return nil, fmt.Errorf("invalid start-date, expected YYYY-MM-DD: %w", err)
	}
	end, err := domain.ParseDate(r.end)
	if err != nil {
		return nil, fmt.Errorf("invalid end-date, expected YYYY-MM-DD: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start.Date) {
		return nil, fmt.Errorf("end-date must not be before start-date")
	}

	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !start.IsZero() && tx.Date.Before(start.Date) {
			continue
		}
		if !end.IsZero() && tx.Date.After(end.Date) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}
