package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/smartbudget/internal/advisory"
	"github.com/dvloznov/smartbudget/internal/api/middleware"
	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/jobs"
	"github.com/dvloznov/smartbudget/internal/ledger"
	"github.com/dvloznov/smartbudget/internal/logger"
)

// AdvisorService is the part of the tracker the advisor endpoints use.
type AdvisorService interface {
	Transactions() []domain.Transaction
	Analysis() *domain.AIAnalysisResult
	Portrait(ctx context.Context) (string, error)
}

// AdvisorHandler queues advisory work and serves cached results.
type AdvisorHandler struct {
	svc       AdvisorService
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewAdvisorHandler creates a new advisor handler.
func NewAdvisorHandler(svc AdvisorService, publisher jobs.Publisher, log zerolog.Logger) *AdvisorHandler {
	return &AdvisorHandler{svc: svc, publisher: publisher, log: log}
}

// GetAnalysis handles GET /api/analysis
func (h *AdvisorHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis := h.svc.Analysis()
	if analysis == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, analysis)
}

// RequestAnalysis handles POST /api/analysis
func (h *AdvisorHandler) RequestAnalysis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SavingsGoal float64 `json:"savingsGoal"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	log := logger.FromContext(r.Context())

	if req.SavingsGoal < 0 {
		writeServiceError(w, log, &ledger.ValidationError{Field: "savingsGoal", Reason: "must be a non-negative number"})
		return
	}
	// Checked here as well as in the service so an empty ledger never
	// becomes a queued job.
	if len(h.svc.Transactions()) == 0 {
		writeServiceError(w, log, advisory.ErrNoData)
		return
	}

	job := &jobs.AdvisoryJob{Type: jobs.JobTypeAnalyzeFinances, SavingsGoal: req.SavingsGoal}
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info().Str("job_id", job.JobID).Float64("savings_goal", req.SavingsGoal).Msg("Analysis job enqueued")
	writeAccepted(w, job)
}

// ScanReceipt handles POST /api/receipts. The image is either the raw body
// with an image content type or the "image" field of a multipart form.
func (h *AdvisorHandler) ScanReceipt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBody)

	image, err := readImage(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &jobs.AdvisoryJob{Type: jobs.JobTypeExtractReceipt, Image: image}
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info().Str("job_id", job.JobID).Int("image_bytes", len(image)).Msg("Receipt job enqueued")
	writeAccepted(w, job)
}

// writeAccepted answers a freshly published job. Its progress is read back
// through the jobs endpoint, never from the published value.
func writeAccepted(w http.ResponseWriter, job *jobs.AdvisoryJob) {
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(jobs.JobStatusPending),
	})
}

func readImage(r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")

	var src io.Reader = r.Body
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, errors.New("image field is required")
		}
		defer file.Close()
		src = file
	} else if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.New("Content-Type must be image/* or multipart/form-data")
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.New("Failed to read image")
	}
	if len(data) == 0 {
		return nil, errors.New("Image is empty")
	}
	return data, nil
}

// GetPortrait handles GET /api/advisor/portrait
func (h *AdvisorHandler) GetPortrait(w http.ResponseWriter, r *http.Request) {
	portrait, err := h.svc.Portrait(r.Context())
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"portrait": portrait})
}
