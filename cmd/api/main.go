package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/api"
	"github.com/dvloznov/finance-dashboard/internal/api/handlers"
	"github.com/dvloznov/finance-dashboard/internal/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/dataset"
	"github.com/dvloznov/finance-dashboard/internal/gcs"
	infraBQ "github.com/dvloznov/finance-dashboard/internal/infra/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/jobs/inmemory"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/notionsync"
	"github.com/dvloznov/finance-dashboard/internal/pipeline"
	"github.com/dvloznov/finance-dashboard/internal/sheet"
)

func main() {
	// Parse command-line flags
	var (
		envFile = flag.String("env", ".env", "Path to an optional .env file")
		port    = flag.String("port", "", "HTTP server port (overrides PORT)")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}

	// Initialize logger
	log := logger.FromConfig(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	// Optional sources and sinks. Interfaces stay nil when a client is not
	// available so the matching endpoints answer 503.
	var (
		storageSvc pipeline.StorageService
		sheetsSvc  pipeline.SheetFetcher
		warehouse  bigquery.ExportRepository
		notionSvc  notionsync.NotionService
	)

	gcsClient, err := gcs.NewGCSStorageService(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("GCS client unavailable - gs:// imports disabled")
	} else {
		defer gcsClient.Close()
		storageSvc = gcsClient
	}

	if cfg.SheetsEnabled() {
		sheetsClient, err := sheet.NewSheetsClient(ctx, cfg.SheetsCredentialsFile)
		if err != nil {
			log.Warn().Err(err).Msg("Google Sheets client unavailable - sheet imports disabled")
		} else {
			sheetsSvc = sheetsClient
		}
	} else {
		log.Info().Msg("No Sheets credentials configured - sheet imports disabled")
	}

	if cfg.BigQueryEnabled() {
		repo, err := infraBQ.NewBigQueryRepository(ctx, cfg.GCPProject, cfg.BQDataset)
		if err != nil {
			log.Warn().Err(err).Msg("BigQuery client unavailable - warehouse export disabled")
		} else {
			defer repo.Close()
			warehouse = repo
		}
	}

	if cfg.NotionEnabled() {
		notionSvc = notionsync.NewNotionClient(cfg.NotionToken)
	}

	store := dataset.NewStore()
	ingestor := pipeline.NewIngestor(sheet.NewDecoder(), storageSvc, sheetsSvc)

	// Initialize job infrastructure. Imports replace the active set, so a
	// single worker keeps them in submission order.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 1, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Msg("Starting job worker")
	if err := jobQueue.Start(workerCtx, handlers.NewImportJobHandler(store, ingestor)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job worker")
	}

	router := api.NewRouter(api.Handlers{
		Import: handlers.NewImportHandler(store, ingestor, jobQueue, handlers.ImportOptions{
			MaxUploadBytes: cfg.MaxUploadBytes,
			GCSEnabled:     storageSvc != nil,
			SheetsEnabled:  sheetsSvc != nil,
		}),
		Records: handlers.NewRecordsHandler(store),
		Jobs:    handlers.NewJobsHandler(jobStore),
		Sinks:   handlers.NewSinksHandler(store, warehouse, notionSvc, cfg.NotionDatabaseID),
	}, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
