// Package app assembles the tracker service and its collaborators from
// configuration. Both binaries start from New.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/dvloznov/smartbudget/internal/advisory"
	"github.com/dvloznov/smartbudget/internal/config"
	"github.com/dvloznov/smartbudget/internal/jobs/inmemory"
	"github.com/dvloznov/smartbudget/internal/ledger"
	"github.com/dvloznov/smartbudget/internal/metrics"
	"github.com/dvloznov/smartbudget/internal/persistence"
	statemem "github.com/dvloznov/smartbudget/internal/persistence/inmemory"
	"github.com/dvloznov/smartbudget/internal/persistence/gcs"
	"github.com/dvloznov/smartbudget/internal/persistence/sqlite"
	"github.com/dvloznov/smartbudget/internal/tracker"
)

// App holds the wired components.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Service  *tracker.Service
	Metrics  *metrics.Recorder
	JobStore *inmemory.Store
	Queue    *inmemory.Queue

	closers []io.Closer
}

// New opens the state backend, builds the advisor and loads the stored
// state into a fresh service. The job queue is created but not started.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	store, closer, err := OpenState(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	a := &App{Config: cfg, Log: log}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	taxonomy := ledger.DefaultTaxonomy
	advisor, err := NewAdvisor(ctx, cfg, taxonomy)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("New: %w", err)
	}
	if !cfg.AdvisoryEnabled() {
		log.Warn().Msg("GEMINI_API_KEY not set - advisory features are disabled")
	}

	a.Metrics = metrics.New()
	a.Service = tracker.New(
		ledger.New(ledger.WithDoubleEntry(cfg.LedgerDoubleEntry)),
		store,
		advisor,
		tracker.WithLogger(log),
		tracker.WithMetrics(a.Metrics),
		tracker.WithTaxonomy(taxonomy),
	)
	if err := a.Service.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("New: %w", err)
	}
	if err := a.Metrics.RegisterNetWorth(a.Service.NetWorthUYU); err != nil {
		a.Close()
		return nil, fmt.Errorf("New: %w", err)
	}

	a.JobStore = inmemory.NewStore()
	a.Queue = inmemory.NewQueue(cfg.JobBuffer, a.JobStore,
		inmemory.WithWorkers(cfg.JobWorkers),
		inmemory.WithMaxRetries(cfg.JobMaxRetries),
		inmemory.WithRetryPolicy(tracker.Retryable),
		inmemory.WithErrorFormatter(tracker.UserMessage),
	)

	log.Info().
		Str("state_backend", cfg.StateBackend).
		Bool("double_entry", cfg.LedgerDoubleEntry).
		Bool("advisory", cfg.AdvisoryEnabled()).
		Msg("Application initialized")
	return a, nil
}

// OpenState returns the configured persistence backend. The closer is nil
// for backends that hold no resources.
func OpenState(ctx context.Context, cfg *config.Config) (persistence.Gateway, io.Closer, error) {
	switch cfg.StateBackend {
	case config.BackendMemory:
		return statemem.NewStore(), nil, nil
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("OpenState: %w", err)
		}
		return store, store, nil
	case config.BackendGCS:
		store, err := gcs.Open(ctx, cfg.GCSURI(), clientOptions(cfg)...)
		if err != nil {
			return nil, nil, fmt.Errorf("OpenState: %w", err)
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("OpenState: unknown state backend %q", cfg.StateBackend)
	}
}

// NewAdvisor returns the Gemini gateway, or advisory.Disabled when no API
// key is configured.
func NewAdvisor(ctx context.Context, cfg *config.Config, taxonomy *ledger.Taxonomy) (advisory.Gateway, error) {
	if !cfg.AdvisoryEnabled() {
		return advisory.Disabled{}, nil
	}
	g, err := advisory.NewGeminiGateway(ctx, advisory.GeminiConfig{
		APIKey:        cfg.GeminiAPIKey,
		AnalysisModel: cfg.GeminiAnalysisModel,
		ReceiptModel:  cfg.GeminiReceiptModel,
		PortraitModel: cfg.GeminiPortraitModel,
		Taxonomy:      taxonomy,
	})
	if err != nil {
		return nil, fmt.Errorf("NewAdvisor: %w", err)
	}
	return g, nil
}

// GoogleClientOptions returns the client options for Google Cloud clients.
func (a *App) GoogleClientOptions() []option.ClientOption {
	return clientOptions(a.Config)
}

func clientOptions(cfg *config.Config) []option.ClientOption {
	if cfg.GoogleCredentials == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.GoogleCredentials)}
}

// Close stops the queue and releases the state backend.
func (a *App) Close() error {
	var errs []error
	if a.Queue != nil {
		errs = append(errs, a.Queue.Close())
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
