package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/smartbudget/internal/api/middleware"
	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/ledger"
	"github.com/dvloznov/smartbudget/internal/logger"
	"github.com/dvloznov/smartbudget/internal/tracker"
)

// StateService is the part of the tracker the state endpoints use.
type StateService interface {
	Snapshot() domain.PersistedState
	Stats() (tracker.Dashboard, error)
	Taxonomy() *ledger.Taxonomy
	Export() ([]byte, error)
	Import(ctx context.Context, data []byte) error
}

// StateHandler serves whole-state views and export/import.
type StateHandler struct {
	svc StateService
	log zerolog.Logger
	now func() time.Time
}

// NewStateHandler creates a new state handler.
func NewStateHandler(svc StateService, log zerolog.Logger) *StateHandler {
	return &StateHandler{svc: svc, log: log, now: time.Now}
}

// GetState handles GET /api/state
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Snapshot())
}

// GetStats handles GET /api/stats
func (h *StateHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats()
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, stats)
}

// ListCategories handles GET /api/categories
func (h *StateHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.svc.Taxonomy().Categories()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// Export handles GET /api/export
func (h *StateHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Export()
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	filename := fmt.Sprintf("smartbudget-%s.json", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/import. The body is a previously exported blob.
func (h *StateHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
	if err != nil {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Import file too large")
		return
	}
	if err := h.svc.Import(r.Context(), data); err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	state := h.svc.Snapshot()
	middleware.WriteJSON(w, http.StatusOK, map[string]int{
		"accounts":     len(state.Accounts),
		"transactions": len(state.Transactions),
		"debts":        len(state.Debts),
	})
}
