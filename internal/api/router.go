// Package api assembles the HTTP surface of the dashboard service.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/api/handlers"
	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the endpoint handlers served by NewRouter.
type Handlers struct {
	Import  *handlers.ImportHandler
	Records *handlers.RecordsHandler
	Jobs    *handlers.JobsHandler
	Sinks   *handlers.SinksHandler
}

// NewRouter registers every route and wraps the mux in the middleware chain.
func NewRouter(h Handlers, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Import endpoints
	mux.Handle("/api/import", middleware.MethodHandler{http.MethodPost: h.Import.Upload})
	mux.Handle("/api/import/gcs", middleware.MethodHandler{http.MethodPost: h.Import.EnqueueGCS})
	mux.Handle("/api/import/sheets", middleware.MethodHandler{http.MethodPost: h.Import.EnqueueSheet})

	// Jobs endpoints
	mux.Handle("/api/jobs", middleware.MethodHandler{http.MethodGet: h.Jobs.ListJobs})
	mux.Handle("/api/jobs/", middleware.MethodHandler{http.MethodGet: func(w http.ResponseWriter, r *http.Request) {
		// Extract job ID from path
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		h.Jobs.GetJob(w, r, jobID)
	}})

	// Record and aggregate endpoints
	mux.Handle("/api/transactions", middleware.MethodHandler{http.MethodGet: h.Records.ListTransactions})
	mux.Handle("/api/summary", middleware.MethodHandler{http.MethodGet: h.Records.Summary})
	mux.Handle("/api/breakdown/categories", middleware.MethodHandler{http.MethodGet: h.Records.CategoryBreakdown})
	mux.Handle("/api/breakdown/months", middleware.MethodHandler{http.MethodGet: h.Records.MonthBreakdown})
	mux.Handle("/api/categories", middleware.MethodHandler{http.MethodGet: h.Records.Categories})
	mux.Handle("/api/date-range", middleware.MethodHandler{http.MethodGet: h.Records.DateRange})
	mux.Handle("/api/dashboard", middleware.MethodHandler{http.MethodGet: h.Records.Dashboard})

	// Files
	mux.Handle("/api/export.csv", middleware.MethodHandler{http.MethodGet: h.Records.ExportCSV})
	mux.Handle("/api/export.xlsx", middleware.MethodHandler{http.MethodGet: h.Records.ExportXLSX})
	mux.Handle("/api/template.csv", middleware.MethodHandler{http.MethodGet: h.Records.Template})

	// Sinks
	mux.Handle("/api/export/bigquery", middleware.MethodHandler{http.MethodPost: h.Sinks.ExportBigQuery})
	mux.Handle("/api/export/bigquery/runs", middleware.MethodHandler{http.MethodGet: h.Sinks.ListExportedRuns})
	mux.Handle("/api/export/notion", middleware.MethodHandler{http.MethodPost: h.Sinks.ExportNotion})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
	)
}
