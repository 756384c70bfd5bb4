// Package handlers exposes the tracker service over JSON/HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/smartbudget/internal/advisory"
	"github.com/dvloznov/smartbudget/internal/api/middleware"
	"github.com/dvloznov/smartbudget/internal/jobs"
	"github.com/dvloznov/smartbudget/internal/ledger"
	"github.com/dvloznov/smartbudget/internal/tracker"
)

const (
	maxJSONBody   = 1 << 20
	maxImportBody = 32 << 20
	maxImageBody  = 12 << 20
)

// StatusFor maps a service error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrBusy), errors.Is(err, jobs.ErrJobInFlight):
		return http.StatusConflict
	case errors.Is(err, advisory.ErrNoData), errors.Is(err, advisory.ErrReceiptUnreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, advisory.ErrAdvisoryUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError logs err and writes the user-facing message.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := StatusFor(err)
	msg := tracker.UserMessage(err)
	switch {
	case errors.Is(err, jobs.ErrJobInFlight):
		msg = tracker.MsgBusy
	case errors.Is(err, jobs.ErrJobNotFound):
		msg = "Job not found"
	case status == http.StatusInternalServerError:
		msg = "Internal server error"
	}

	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Msg("Request failed")

	middleware.WriteError(w, status, msg)
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
