package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/dataset"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/gcs"
	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// Importer runs ingestion passes. *pipeline.Ingestor implements it.
type Importer interface {
	IngestFile(ctx context.Context, filename string, data []byte) (*domain.IngestionResult, error)
	IngestFromGCS(ctx context.Context, gcsURI string) (*domain.IngestionResult, error)
	IngestFromGoogleSheet(ctx context.Context, spreadsheetID, readRange string) (*domain.IngestionResult, error)
}

// ImportOptions describe which import paths are available.
type ImportOptions struct {
	MaxUploadBytes int64
	GCSEnabled     bool
	SheetsEnabled  bool
}

// ImportResponse summarizes a completed import.
type ImportResponse struct {
	RunID            string           `json:"run_id"`
	Source           string           `json:"source"`
	SourceRowCount   int              `json:"source_row_count"`
	AcceptedRowCount int              `json:"accepted_row_count"`
	RejectedRowCount int              `json:"rejected_row_count"`
	DetectedColumns  domain.ColumnMap `json:"detected_columns"`
}

func newImportResponse(run *dataset.ImportRun) ImportResponse {
	return ImportResponse{
		RunID:            run.RunID,
		Source:           run.Source,
		SourceRowCount:   run.SourceRowCount,
		AcceptedRowCount: run.AcceptedRowCount,
		RejectedRowCount: run.SourceRowCount - run.AcceptedRowCount,
		DetectedColumns:  run.DetectedColumns,
	}
}

// ImportHandler handles spreadsheet import endpoints.
type ImportHandler struct {
	store     *dataset.Store
	importer  Importer
	publisher jobs.Publisher
	opts      ImportOptions
}

// NewImportHandler creates a new import handler.
func NewImportHandler(store *dataset.Store, importer Importer, publisher jobs.Publisher, opts ImportOptions) *ImportHandler {
	return &ImportHandler{
		store:     store,
		importer:  importer,
		publisher: publisher,
		opts:      opts,
	}
}

// Upload handles POST /api/import. The spreadsheet is sent either as the
// multipart field "file" or as the raw body with ?filename=.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if h.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	}

	filename, data, err := readUpload(r, h.opts.MaxUploadBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeIngestError(w, log, err)
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.store.Import(r.Context(), "upload:"+filename, func(ctx context.Context) (*domain.IngestionResult, error) {
		return h.importer.IngestFile(ctx, filename, data)
	})
	if err != nil {
		writeIngestError(w, log.With().Str("filename", filename).Logger(), err)
		return
	}

	log.Info().
		Str("run_id", run.RunID).
		Str("filename", filename).
		Int("accepted", run.AcceptedRowCount).
		Int("source_rows", run.SourceRowCount).
		Msg("Spreadsheet imported")

	middleware.WriteJSON(w, http.StatusOK, newImportResponse(run))
}

func readUpload(r *http.Request, maxBytes int64) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if maxBytes <= 0 {
			maxBytes = 32 << 20
		}
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return "", nil, fmt.Errorf("invalid multipart body: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("multipart field \"file\" is required")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, err
		}
		return filepath.Base(header.Filename), data, nil
	}

	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		return "", nil, fmt.Errorf("filename query parameter is required for raw uploads")
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(filename), data, nil
}

// EnqueueGCS handles POST /api/import/gcs
func (h *ImportHandler) EnqueueGCS(w http.ResponseWriter, r *http.Request) {
	if !h.opts.GCSEnabled {
		middleware.WriteError(w, http.StatusServiceUnavailable, "GCS import is not configured")
		return
	}

	var req struct {
		GCSURI string `json:"gcs_uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, _, err := gcs.ParseGCSURI(req.GCSURI); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.enqueue(w, r, &jobs.ImportJob{Type: jobs.JobTypeImportGCS, GCSURI: req.GCSURI})
}

// EnqueueSheet handles POST /api/import/sheets
func (h *ImportHandler) EnqueueSheet(w http.ResponseWriter, r *http.Request) {
	if !h.opts.SheetsEnabled {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Google Sheets import is not configured")
		return
	}

	var req struct {
		SpreadsheetID string `json:"spreadsheet_id"`
		Range         string `json:"range"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.SpreadsheetID) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "spreadsheet_id is required")
		return
	}

	h.enqueue(w, r, &jobs.ImportJob{
		Type:          jobs.JobTypeImportSheet,
		SpreadsheetID: strings.TrimSpace(req.SpreadsheetID),
		Range:         req.Range,
	})
}

func (h *ImportHandler) enqueue(w http.ResponseWriter, r *http.Request, job *jobs.ImportJob) {
	log := logger.FromContext(r.Context())

	if err := h.publisher.PublishImport(r.Context(), job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
		return
	}

	// The worker may already own job; only its id is safe to read here.
	jobID := job.JobID
	log.Info().Str("job_id", jobID).Msg("Import job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": string(jobs.JobStatusPending),
	})
}

// NewImportJobHandler returns the queue handler that runs import jobs
// against store. Input errors are marked permanent so they are not retried.
func NewImportJobHandler(store *dataset.Store, importer Importer) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.ImportJob) error {
		var (
			source string
			ingest func(ctx context.Context) (*domain.IngestionResult, error)
		)
		switch job.Type {
		case jobs.JobTypeImportGCS:
			source = job.GCSURI
			ingest = func(ctx context.Context) (*domain.IngestionResult, error) {
				return importer.IngestFromGCS(ctx, job.GCSURI)
			}
		case jobs.JobTypeImportSheet:
			source = "sheets:" + job.SpreadsheetID
			ingest = func(ctx context.Context) (*domain.IngestionResult, error) {
				return importer.IngestFromGoogleSheet(ctx, job.SpreadsheetID, job.Range)
			}
		default:
			return jobs.Permanent(fmt.Errorf("unexpected job type: %q", job.Type))
		}

		run, err := store.Import(ctx, source, ingest)
		if err != nil {
			return jobError(err)
		}

		job.RunID = run.RunID
		job.SourceRowCount = run.SourceRowCount
		job.RecordCount = run.AcceptedRowCount
		return nil
	}
}
