package pipeline

import (
	"context"
	"errors"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

var (
	// ErrEmptySheet is returned when a sheet has a header row but no data rows.
	ErrEmptySheet = errors.New("spreadsheet has no data rows: expected a header row followed by at least one transaction")

	// ErrNoValidTransactions is returned when every data row was rejected.
	ErrNoValidTransactions = errors.New("no valid transactions found: every row is missing a date or an amount")
)

// Ingest normalizes an already decoded sheet. Row 0 must hold the headers.
func Ingest(ctx context.Context, sheet domain.Sheet) (*domain.IngestionResult, error) {
	state := &IngestionState{Sheet: sheet}
	if err := NewSheetIngestionPipeline().Execute(ctx, state); err != nil {
		return nil, err
	}
	return state.Result, nil
}

// Ingestor wires the ingestion pipelines to their sources.
type Ingestor struct {
	decoder SheetDecoder
	storage StorageService
	sheets  SheetFetcher
}

// NewIngestor creates an Ingestor. storage and sheets may be nil when the
// matching source is not configured.
func NewIngestor(decoder SheetDecoder, storage StorageService, sheets SheetFetcher) *Ingestor {
	return &Ingestor{
		decoder: decoder,
		storage: storage,
		sheets:  sheets,
	}
}

// ErrSourceNotConfigured is returned when a source has no client wired in.
var ErrSourceNotConfigured = errors.New("import source not configured")

// IngestFile decodes and normalizes an uploaded spreadsheet.
func (in *Ingestor) IngestFile(ctx context.Context, filename string, data []byte) (*domain.IngestionResult, error) {
	state := &IngestionState{Filename: filename, Data: data}
	if err := NewFileIngestionPipeline(in.decoder).Execute(ctx, state); err != nil {
		return nil, err
	}
	return state.Result, nil
}

// IngestFromGCS processes a spreadsheet stored in GCS, e.g.
// "gs://bucket/exports/2026-01.xlsx".
func (in *Ingestor) IngestFromGCS(ctx context.Context, gcsURI string) (*domain.IngestionResult, error) {
	if in.storage == nil {
		return nil, ErrSourceNotConfigured
	}
	state := &IngestionState{GCSURI: gcsURI}
	if err := NewGCSIngestionPipeline(in.storage, in.decoder).Execute(ctx, state); err != nil {
		return nil, err
	}
	return state.Result, nil
}

// IngestFromGoogleSheet processes a range of a Google Sheet. An empty range
// reads the first worksheet.
func (in *Ingestor) IngestFromGoogleSheet(ctx context.Context, spreadsheetID, readRange string) (*domain.IngestionResult, error) {
	if in.sheets == nil {
		return nil, ErrSourceNotConfigured
	}
	state := &IngestionState{SpreadsheetID: spreadsheetID, ReadRange: readRange}
	if err := NewGoogleSheetIngestionPipeline(in.sheets).Execute(ctx, state); err != nil {
		return nil, err
	}
	return state.Result, nil
}
