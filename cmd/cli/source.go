package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/dataset"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/gcs"
	"github.com/dvloznov/finance-dashboard/internal/pipeline"
	"github.com/dvloznov/finance-dashboard/internal/query"
	"github.com/dvloznov/finance-dashboard/internal/sheet"
	"github.com/rs/zerolog"
)

type sourceFlags struct {
	file      *string
	gcsURI    *string
	sheetID   *string
	readRange *string
}

func addSourceFlags(fs *flag.FlagSet) sourceFlags {
	return sourceFlags{
		file:      fs.String("file", "", "Local .csv, .tsv or .xlsx file"),
		gcsURI:    fs.String("gcs-uri", "", "GCS URI of a spreadsheet object"),
		sheetID:   fs.String("sheet", "", "Google Sheets spreadsheet ID"),
		readRange: fs.String("range", "", "A1 range for -sheet (defaults to the first worksheet)"),
	}
}

var errNoSource = errors.New("one of -file, -gcs-uri or -sheet is required")

// ingest runs the ingestion pass selected by the flags and installs the
// result into a fresh store.
func (s sourceFlags) ingest(ctx context.Context, cfg *config.Config) (dataset.Snapshot, error) {
	store := dataset.NewStore()

	var (
		source string
		run    func(ctx context.Context) (*domain.IngestionResult, error)
	)
	switch {
	case *s.file != "":
		data, err := os.ReadFile(*s.file)
		if err != nil {
			return dataset.Snapshot{}, err
		}
		source = "file:" + filepath.Base(*s.file)
		ingestor := pipeline.NewIngestor(sheet.NewDecoder(), nil, nil)
		run = func(ctx context.Context) (*domain.IngestionResult, error) {
			return ingestor.IngestFile(ctx, filepath.Base(*s.file), data)
		}

	case *s.gcsURI != "":
		svc, err := gcs.NewGCSStorageService(ctx)
		if err != nil {
			return dataset.Snapshot{}, err
		}
		defer svc.Close()
		source = *s.gcsURI
		ingestor := pipeline.NewIngestor(sheet.NewDecoder(), svc, nil)
		run = func(ctx context.Context) (*domain.IngestionResult, error) {
			return ingestor.IngestFromGCS(ctx, *s.gcsURI)
		}

	case *s.sheetID != "":
		client, err := sheet.NewSheetsClient(ctx, cfg.SheetsCredentialsFile)
		if err != nil {
			return dataset.Snapshot{}, err
		}
		source = "sheets:" + *s.sheetID
		ingestor := pipeline.NewIngestor(sheet.NewDecoder(), nil, client)
		run = func(ctx context.Context) (*domain.IngestionResult, error) {
			return ingestor.IngestFromGoogleSheet(ctx, *s.sheetID, *s.readRange)
		}

	default:
		return dataset.Snapshot{}, errNoSource
	}

	if _, err := store.Import(ctx, source, run); err != nil {
		return dataset.Snapshot{}, err
	}
	return store.Snapshot(), nil
}

func mustImport(ctx context.Context, cfg *config.Config, log zerolog.Logger, src sourceFlags) dataset.Snapshot {
	snap, err := src.ingest(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}
	log.Info().
		Str("run_id", snap.Run.RunID).
		Int("accepted", snap.Run.AcceptedRowCount).
		Int("source_rows", snap.Run.SourceRowCount).
		Msg("Spreadsheet imported")
	return snap
}

type filterFlags struct {
	search   *string
	category *string
	txType   *string
	from     *string
	to       *string
}

func addFilterFlags(fs *flag.FlagSet) filterFlags {
	return filterFlags{
		search:   fs.String("search", "", "Case-insensitive text in description or category"),
		category: fs.String("category", "", "Exact category"),
		txType:   fs.String("type", "", "Income or Expense"),
		from:     fs.String("from", "", "Earliest date, YYYY-MM-DD"),
		to:       fs.String("to", "", "Latest date, YYYY-MM-DD"),
	}
}

func (f filterFlags) mustApply(log zerolog.Logger, records []domain.Transaction) []domain.Transaction {
	values := map[string][]string{
		"search":    {*f.search},
		"category":  {*f.category},
		"type":      {*f.txType},
		"date_from": {*f.from},
		"date_to":   {*f.to},
	}
	criteria, err := query.CriteriaFromValues(values)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid filter")
	}
	return query.Apply(records, criteria)
}
