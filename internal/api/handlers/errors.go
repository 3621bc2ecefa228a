package handlers

import (
	"errors"
	"net/http"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/dvloznov/finance-dashboard/internal/pipeline"
	"github.com/dvloznov/finance-dashboard/internal/sheet"
	"github.com/rs/zerolog"
)

// ingestStatus maps an ingestion failure to an HTTP status.
func ingestStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sheet.ErrUnsupportedFormat),
		errors.Is(err, sheet.ErrUnreadable),
		errors.Is(err, pipeline.ErrEmptySheet):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrNoValidTransactions):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrSourceNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// isInputError reports whether retrying err with the same input is pointless.
func isInputError(err error) bool {
	switch ingestStatus(err) {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// writeIngestError answers with the mapped status. Input errors carry their
// own message; anything else is logged and hidden.
func writeIngestError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := ingestStatus(err)
	switch status {
	case http.StatusRequestEntityTooLarge:
		middleware.WriteError(w, status, "Spreadsheet exceeds the upload size limit")
	case http.StatusInternalServerError:
		log.Error().Err(err).Msg("Import failed")
		middleware.WriteError(w, status, "Failed to import spreadsheet")
	default:
		log.Warn().Err(err).Int("status", status).Msg("Import rejected")
		middleware.WriteError(w, status, rootMessage(err))
	}
}

// rootMessage returns the message of the sentinel err wraps, without the
// operation prefixes added on the way up.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		sheet.ErrUnsupportedFormat,
		sheet.ErrUnreadable,
		pipeline.ErrEmptySheet,
		pipeline.ErrNoValidTransactions,
		pipeline.ErrSourceNotConfigured,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// jobError wraps a job failure so the queue does not retry input errors.
func jobError(err error) error {
	if isInputError(err) {
		return jobs.Permanent(err)
	}
	return err
}
