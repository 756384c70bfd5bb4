// Package api wires the HTTP routes and middleware chain.
package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/smartbudget/internal/api/handlers"
	"github.com/dvloznov/smartbudget/internal/api/middleware"
	"github.com/dvloznov/smartbudget/internal/jobs"
	"github.com/dvloznov/smartbudget/internal/metrics"
	"github.com/dvloznov/smartbudget/internal/tracker"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Service   *tracker.Service
	JobStore  jobs.JobStore
	Publisher jobs.Publisher
	Metrics   *metrics.Recorder
	Log       zerolog.Logger
}

// NewRouter builds the full HTTP handler including middleware.
func NewRouter(d Deps) http.Handler {
	ledgerHandler := handlers.NewLedgerHandler(d.Service, d.Log)
	stateHandler := handlers.NewStateHandler(d.Service, d.Log)
	advisorHandler := handlers.NewAdvisorHandler(d.Service, d.Publisher, d.Log)
	jobsHandler := handlers.NewJobsHandler(d.JobStore, d.Log)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/state", stateHandler.GetState)
	mux.HandleFunc("GET /api/stats", stateHandler.GetStats)
	mux.HandleFunc("GET /api/categories", stateHandler.ListCategories)
	mux.HandleFunc("GET /api/export", stateHandler.Export)
	mux.HandleFunc("POST /api/import", stateHandler.Import)

	mux.HandleFunc("GET /api/accounts", ledgerHandler.ListAccounts)
	mux.HandleFunc("POST /api/accounts", ledgerHandler.CreateAccount)
	mux.HandleFunc("PATCH /api/accounts/{id}", ledgerHandler.UpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", ledgerHandler.DeleteAccount)

	mux.HandleFunc("GET /api/transactions", ledgerHandler.ListTransactions)
	mux.HandleFunc("POST /api/transactions", ledgerHandler.CreateTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", ledgerHandler.UpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", ledgerHandler.DeleteTransaction)

	mux.HandleFunc("GET /api/debts", ledgerHandler.ListDebts)
	mux.HandleFunc("POST /api/debts", ledgerHandler.CreateDebt)
	mux.HandleFunc("POST /api/debts/{id}/pay", ledgerHandler.PayDebt)
	mux.HandleFunc("DELETE /api/debts/{id}", ledgerHandler.DeleteDebt)

	mux.HandleFunc("GET /api/analysis", advisorHandler.GetAnalysis)
	mux.HandleFunc("POST /api/analysis", advisorHandler.RequestAnalysis)
	mux.HandleFunc("POST /api/receipts", advisorHandler.ScanReceipt)
	mux.HandleFunc("GET /api/advisor/portrait", advisorHandler.GetPortrait)

	mux.HandleFunc("GET /api/jobs", jobsHandler.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", jobsHandler.GetJob)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("GET /metrics", d.Metrics.Handler())

	return middleware.Chain(mux,
		middleware.Recovery(d.Log),
		middleware.RequestID,
		middleware.Logger(d.Log),
		middleware.CORS,
	)
}
