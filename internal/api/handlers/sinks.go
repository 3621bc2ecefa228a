package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/dataset"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/notionsync"
)

// SinksHandler pushes the active set to external stores. A nil repository
// or Notion client disables the matching endpoint.
type SinksHandler struct {
	store          *dataset.Store
	warehouse      bigquery.ExportRepository
	notion         notionsync.NotionService
	notionDatabase string
}

// NewSinksHandler creates a new sinks handler.
func NewSinksHandler(store *dataset.Store, warehouse bigquery.ExportRepository, notion notionsync.NotionService, notionDatabase string) *SinksHandler {
	return &SinksHandler{
		store:          store,
		warehouse:      warehouse,
		notion:         notion,
		notionDatabase: notionDatabase,
	}
}

// ExportBigQuery handles POST /api/export/bigquery
func (h *SinksHandler) ExportBigQuery(w http.ResponseWriter, r *http.Request) {
	if h.warehouse == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "BigQuery export is not configured")
		return
	}
	ctx := r.Context()

	snap := h.store.Snapshot()
	n, err := bigquery.Export(ctx, h.warehouse, snap)
	if errors.Is(err, bigquery.ErrNothingToExport) {
		middleware.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("BigQuery export failed")
		middleware.WriteError(w, http.StatusBadGateway, "BigQuery export failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   snap.Run.RunID,
		"exported": n,
	})
}

// ListExportedRuns handles GET /api/export/bigquery/runs?limit=
func (h *SinksHandler) ListExportedRuns(w http.ResponseWriter, r *http.Request) {
	if h.warehouse == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "BigQuery export is not configured")
		return
	}
	ctx := r.Context()

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	runs, err := h.warehouse.ListImportRuns(ctx, limit)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to list exported runs")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to list exported runs")
		return
	}
	if runs == nil {
		runs = []*bigquery.ImportRunRow{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// ExportNotion handles POST /api/export/notion?dry_run=true
func (h *SinksHandler) ExportNotion(w http.ResponseWriter, r *http.Request) {
	if h.notion == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Notion sync is not configured")
		return
	}
	ctx := r.Context()

	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	stats, err := notionsync.SyncRecords(ctx, h.notion, h.notionDatabase, h.store.Snapshot(), dryRun)
	if errors.Is(err, notionsync.ErrNothingToSync) {
		middleware.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Notion sync failed")
		middleware.WriteError(w, http.StatusBadGateway, "Notion sync failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dry_run": dryRun,
		"stats":   stats,
	})
}
