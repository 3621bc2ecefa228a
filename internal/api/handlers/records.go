package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/analytics"
	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/dataset"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/export"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/query"
)

// RecordsHandler serves the active record set and its aggregates. Every
// endpoint accepts the filter parameters search, category, type, date_from
// and date_to.
type RecordsHandler struct {
	store *dataset.Store
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(store *dataset.Store) *RecordsHandler {
	return &RecordsHandler{store: store}
}

// filtered returns the records matching the request's filter parameters. It
// writes a 400 and returns ok=false on malformed parameters.
func (h *RecordsHandler) filtered(w http.ResponseWriter, r *http.Request) ([]domain.Transaction, bool) {
	criteria, err := query.CriteriaFromValues(r.URL.Query())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return query.Apply(h.store.Records(), criteria), true
}

// ListTransactions handles GET /api/transactions
func (h *RecordsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	key, err := query.ParseSortKey(q.Get("sort"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := query.ParseOrder(q.Get("order"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": query.Sort(records, key, order),
		"count":        len(records),
	})
}

// Summary handles GET /api/summary
func (h *RecordsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, analytics.Summarize(records))
}

// CategoryBreakdown handles GET /api/breakdown/categories?type=&limit=
// The type parameter both filters records and selects the breakdown.
func (h *RecordsHandler) CategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}

	typeFilter := r.URL.Query().Get("type")
	breakdown := analytics.ByCategory(records, typeFilter)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		breakdown = analytics.TopCategories(records, typeFilter, limit)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": breakdown,
		"count":      len(breakdown),
	})
}

// MonthBreakdown handles GET /api/breakdown/months
func (h *RecordsHandler) MonthBreakdown(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	months := analytics.ByMonth(records)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"months": months,
		"count":  len(months),
	})
}

// Categories handles GET /api/categories
func (h *RecordsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	categories := analytics.UniqueCategories(records)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// DateRange handles GET /api/date-range
func (h *RecordsHandler) DateRange(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, analytics.DateRange(records))
}

// Dashboard handles GET /api/dashboard: every aggregate plus the active run
// in one response.
func (h *RecordsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	criteria, err := query.CriteriaFromValues(r.URL.Query())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap := h.store.Snapshot()
	records := query.Apply(snap.Records, criteria)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"run":       snap.Run,
		"dashboard": analytics.NewSnapshot(records),
	})
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

func exportName(ext string) string {
	return "transactions-" + time.Now().UTC().Format("2006-01-02") + ext
}

// ExportCSV handles GET /api/export.csv
func (h *RecordsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	attachment(w, "text/csv; charset=utf-8", exportName(".csv"))
	if err := export.WriteCSV(w, records); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to write CSV export")
	}
}

// ExportXLSX handles GET /api/export.xlsx
func (h *RecordsHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", exportName(".xlsx"))
	if err := export.WriteXLSX(w, records); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to write XLSX export")
	}
}

// Template handles GET /api/template.csv
func (h *RecordsHandler) Template(w http.ResponseWriter, r *http.Request) {
	attachment(w, "text/csv; charset=utf-8", "transactions-template.csv")
	if err := export.WriteTemplate(w); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to write template")
	}
}
