package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/analytics"
	"github.com/dvloznov/finance-dashboard/internal/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/categorize"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/dataset"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/export"
	"github.com/dvloznov/finance-dashboard/internal/gcs"
	infraBQ "github.com/dvloznov/finance-dashboard/internal/infra/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/notionsync"
	"github.com/dvloznov/finance-dashboard/internal/query"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.NewConsole(os.Stderr, zerolog.InfoLevel)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	// Logs go to stderr so CSV written to stdout stays clean.
	log := logger.FromConfig(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	switch os.Args[1] {
	case "ingest":
		runIngest(cfg, log)
	case "summary":
		runSummary(cfg, log)
	case "template":
		runTemplate(log)
	case "upload":
		runUpload(cfg, log)
	case "push-bigquery":
		runPushBigQuery(cfg, log)
	case "push-notion":
		runPushNotion(cfg, log)
	case "categorize":
		runCategorize(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Dashboard CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  ingest         Import a spreadsheet and print the result, optionally writing filtered CSV")
	fmt.Println("  summary        Print totals and breakdowns of a spreadsheet")
	fmt.Println("  template       Write the sample import spreadsheet")
	fmt.Println("  upload         Upload a local spreadsheet to GCS")
	fmt.Println("  push-bigquery  Import a spreadsheet and export it to BigQuery")
	fmt.Println("  push-notion    Import a spreadsheet and mirror it into a Notion database")
	fmt.Println("  categorize     Suggest categories for uncategorized rows with Gemini")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nSources (one of): -file PATH | -gcs-uri gs://bucket/object | -sheet ID [-range A1]")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runIngest(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	src := addSourceFlags(fs)
	filters := addFilterFlags(fs)
	sortKey := fs.String("sort", "date", "Sort key: date, amount, description, category, type")
	order := fs.String("order", "asc", "Sort order: asc or desc")
	out := fs.String("out", "", "Write the filtered records as CSV to this path, gs:// URI or - for stdout")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	snap := mustImport(ctx, cfg, log, src)
	records := filters.mustApply(log, snap.Records)

	key, err := query.ParseSortKey(*sortKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -sort")
	}
	ord, err := query.ParseOrder(*order)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -order")
	}
	records = query.Sort(records, key, ord)

	printImportSummary(reportWriter(*out), snap.Run, len(records))

	if *out != "" {
		mustWriteFile(ctx, log, *out, func(w io.Writer) error { return export.WriteCSV(w, records) })
	}
}

func runSummary(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	src := addSourceFlags(fs)
	filters := addFilterFlags(fs)
	top := fs.Int("top", 5, "Number of expense categories to list")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	snap := mustImport(ctx, cfg, log, src)
	records := filters.mustApply(log, snap.Records)
	dash := analytics.NewSnapshot(records)

	fmt.Println("\n=== Summary ===")
	fmt.Printf("Transactions:  %d\n", dash.Summary.TransactionCount)
	fmt.Printf("Income:        %s\n", dash.Summary.TotalIncome.StringFixed(2))
	fmt.Printf("Expenses:      %s\n", dash.Summary.TotalExpenses.StringFixed(2))
	fmt.Printf("Balance:       %s\n", dash.Summary.Balance.StringFixed(2))
	fmt.Printf("Savings rate:  %.1f%%\n", dash.Summary.SavingsRate*100)
	if dash.DateRange.Min != nil {
		fmt.Printf("Period:        %s .. %s\n", dash.DateRange.Min, dash.DateRange.Max)
	}

	fmt.Printf("\n=== Top expense categories ===\n")
	for i, c := range analytics.TopCategories(records, string(domain.TypeExpense), *top) {
		fmt.Printf("%d. %-24s %12s\n", i+1, c.Category, c.Amount.StringFixed(2))
	}

	fmt.Printf("\n=== Months ===\n")
	for _, m := range dash.Months {
		fmt.Printf("%s  income %12s  expenses %12s\n", m.MonthKey, m.Income.StringFixed(2), m.Expenses.StringFixed(2))
	}
	fmt.Println()
}

func runTemplate(log zerolog.Logger) {
	fs := flag.NewFlagSet("template", flag.ExitOnError)
	out := fs.String("out", "-", "Destination path (- for stdout)")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	mustWriteFile(ctx, log, *out, export.WriteTemplate)
}

func runUpload(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", cfg.GCSBucket, "GCS bucket name (or set GCS_BUCKET env)")
	objectName := fs.String("object", "", "GCS object name (defaults to imports/<filename>)")
	filePath := fs.String("file", "", "Path to local spreadsheet")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = "imports/" + filepath.Base(*filePath)
	}

	ctx := logger.WithContext(context.Background(), log)

	svc, err := gcs.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer svc.Close()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := svc.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcs.BuildGCSURI(*bucketName, *objectName))
}

func runPushBigQuery(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("push-bigquery", flag.ExitOnError)
	src := addSourceFlags(fs)
	project := fs.String("project", cfg.GCPProject, "GCP project (or set GCP_PROJECT env)")
	datasetID := fs.String("dataset", cfg.BQDataset, "BigQuery dataset (or set BQ_DATASET env)")
	runs := fs.Int("runs", 0, "List the N most recent exported runs instead of exporting")
	fs.Parse(os.Args[2:])

	if *project == "" {
		log.Fatal().Msg("Error: -project or GCP_PROJECT is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewBigQueryRepository(ctx, *project, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	if *runs > 0 {
		rows, err := repo.ListImportRuns(ctx, *runs)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list import runs")
		}
		fmt.Printf("\n=== Exported runs (%d) ===\n", len(rows))
		for _, r := range rows {
			fmt.Printf("%s  %s  %d/%d rows  %s\n",
				r.ImportedTS.Format(time.RFC3339), r.RunID, r.AcceptedRowCount, r.SourceRowCount, r.Source)
		}
		return
	}

	snap := mustImport(ctx, cfg, log, src)
	n, err := bigquery.Export(ctx, repo, snap)
	if err != nil {
		log.Fatal().Err(err).Msg("BigQuery export failed")
	}

	fmt.Printf("Exported %d transactions of run %s to %s.%s\n", n, snap.Run.RunID, *project, *datasetID)
}

func runPushNotion(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("push-notion", flag.ExitOnError)
	src := addSourceFlags(fs)
	databaseID := fs.String("database", cfg.NotionDatabaseID, "Notion database ID (or set NOTION_DATABASE_ID env)")
	dryRun := fs.Bool("dry-run", false, "Log what would change without writing to Notion")
	fs.Parse(os.Args[2:])

	if cfg.NotionToken == "" || *databaseID == "" {
		log.Fatal().Msg("Error: NOTION_TOKEN and -database (or NOTION_DATABASE_ID) are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	snap := mustImport(ctx, cfg, log, src)
	stats, err := notionsync.SyncRecords(ctx, notionsync.NewNotionClient(cfg.NotionToken), *databaseID, snap, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Notion sync failed")
	}

	fmt.Printf("Notion sync: %d created, %d unchanged, %d deleted, %d failed\n",
		stats.Created, stats.Skipped, stats.Deleted, stats.Failed)
}

func runCategorize(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("categorize", flag.ExitOnError)
	src := addSourceFlags(fs)
	model := fs.String("model", cfg.GeminiModel, "Gemini model name (or set GEMINI_MODEL env)")
	out := fs.String("out", "-", "Write the categorized records as CSV to this path (- for stdout)")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	snap := mustImport(ctx, cfg, log, src)

	suggester, err := categorize.NewGeminiSuggester(ctx, *model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	records, updated, err := categorize.Apply(ctx, suggester, snap.Records)
	if err != nil {
		log.Fatal().Err(err).Msg("Categorization failed")
	}
	log.Info().Int("updated", updated).Msg("Categorization completed")

	mustWriteFile(ctx, log, *out, func(w io.Writer) error { return export.WriteCSV(w, records) })
}

// reportWriter is where human readable reports go: stderr when the data
// itself is written to stdout.
func reportWriter(out string) io.Writer {
	if out == "-" {
		return os.Stderr
	}
	return os.Stdout
}

func printImportSummary(w io.Writer, run *dataset.ImportRun, matching int) {
	fmt.Fprintln(w, "\n=== Import ===")
	fmt.Fprintf(w, "Run ID:     %s\n", run.RunID)
	fmt.Fprintf(w, "Source:     %s\n", run.Source)
	fmt.Fprintf(w, "Rows:       %d\n", run.SourceRowCount)
	fmt.Fprintf(w, "Accepted:   %d\n", run.AcceptedRowCount)
	fmt.Fprintf(w, "Rejected:   %d\n", run.SourceRowCount-run.AcceptedRowCount)
	fmt.Fprintf(w, "Columns:    %v\n", run.DetectedColumns.Detected())
	fmt.Fprintf(w, "Matching:   %d\n", matching)
}

// mustWriteFile writes to stdout for "-", uploads to GCS for gs:// paths
// and creates a local file otherwise.
func mustWriteFile(ctx context.Context, log zerolog.Logger, path string, write func(io.Writer) error) {
	switch {
	case path == "-":
		if err := write(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Failed to write output")
		}
		return

	case strings.HasPrefix(path, "gs://"):
		bucket, object, err := gcs.ParseGCSURI(path)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid output URI")
		}
		var buf bytes.Buffer
		if err := write(&buf); err != nil {
			log.Fatal().Err(err).Msg("Failed to render output")
		}

		svc, err := gcs.NewGCSStorageService(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer svc.Close()

		uri, err := svc.Upload(ctx, bucket, object, "text/csv", &buf)
		if err != nil {
			log.Fatal().Err(err).Msg("Upload failed")
		}
		log.Info().Str("gcs_uri", uri).Msg("Uploaded output")
		return
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to create output file")
	}
	if err := write(f); err != nil {
		f.Close()
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write output")
	}
	if err := f.Close(); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to close output file")
	}
	log.Info().Str("path", path).Msg("Wrote output file")
}
