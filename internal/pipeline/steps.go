package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// IngestionStep represents a single step in the ingestion pipeline.
type IngestionStep interface {
	Execute(ctx context.Context, state *IngestionState) error
}

// IngestionState holds the shared state across all pipeline steps.
type IngestionState struct {
	// Source, filled by the caller depending on where the sheet comes from.
	GCSURI        string
	SpreadsheetID string
	ReadRange     string
	Filename      string
	Data          []byte

	Sheet    domain.Sheet
	Headers  []string
	Columns  domain.ColumnMap
	Outcomes []Outcome
	Result   *domain.IngestionResult
}

// FetchObjectStep downloads the spreadsheet bytes from GCS.
type FetchObjectStep struct {
	Storage StorageService
}

func (s *FetchObjectStep) Execute(ctx context.Context, state *IngestionState) error {
	data, err := s.Storage.FetchFromGCS(ctx, state.GCSURI)
	if err != nil {
		return fmt.Errorf("FetchObjectStep: %w", err)
	}
	state.Data = data
	state.Filename = s.Storage.ExtractFilenameFromGCSURI(state.GCSURI)
	return nil
}

// FetchGoogleSheetStep reads cell values straight from the Sheets API.
type FetchGoogleSheetStep struct {
	Fetcher SheetFetcher
}

func (s *FetchGoogleSheetStep) Execute(ctx context.Context, state *IngestionState) error {
	sheet, err := s.Fetcher.FetchSheet(ctx, state.SpreadsheetID, state.ReadRange)
	if err != nil {
		return fmt.Errorf("FetchGoogleSheetStep: %w", err)
	}
	state.Sheet = sheet
	return nil
}

// DecodeStep turns the raw bytes into a sheet of cells.
type DecodeStep struct {
	Decoder SheetDecoder
}

func (s *DecodeStep) Execute(ctx context.Context, state *IngestionState) error {
	sheet, err := s.Decoder.Decode(state.Filename, state.Data)
	if err != nil {
		return err
	}
	state.Sheet = sheet
	return nil
}

// DetectHeaderStep takes row 0 as the header row and requires at least one
// data row below it.
type DetectHeaderStep struct{}

func (s *DetectHeaderStep) Execute(ctx context.Context, state *IngestionState) error {
	if len(state.Sheet) < 2 {
		return ErrEmptySheet
	}
	state.Headers = NormalizeHeaders(state.Sheet[0])
	return nil
}

// MapColumnsStep builds the column map from the headers.
type MapColumnsStep struct{}

func (s *MapColumnsStep) Execute(ctx context.Context, state *IngestionState) error {
	state.Columns = MapColumns(state.Headers)

	log := logger.FromContext(ctx)
	log.Debug().
		Strs("headers", state.Headers).
		Interface("columns", state.Columns).
		Msg("Mapped spreadsheet columns")
	return nil
}

// NormalizeRowsStep normalizes every non-blank data row independently.
type NormalizeRowsStep struct{}

func (s *NormalizeRowsStep) Execute(ctx context.Context, state *IngestionState) error {
	dataRows := state.Sheet[1:]
	state.Outcomes = make([]Outcome, 0, len(dataRows))
	for i, row := range dataRows {
		if row.IsBlank() {
			continue
		}
		state.Outcomes = append(state.Outcomes, NormalizeRow(row, state.Columns, i+1))
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []IngestionStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...IngestionStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially and stops at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *IngestionState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("ingestion step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// sheetSteps are shared by every pipeline once a sheet of cells exists.
func sheetSteps() []IngestionStep {
	return []IngestionStep{
		&DetectHeaderStep{},
		&MapColumnsStep{},
		&NormalizeRowsStep{},
		&ValidateResultStep{},
	}
}

// NewSheetIngestionPipeline processes an already decoded sheet.
func NewSheetIngestionPipeline() *Pipeline {
	return NewPipeline(sheetSteps()...)
}

// NewFileIngestionPipeline decodes raw bytes before processing them.
func NewFileIngestionPipeline(decoder SheetDecoder) *Pipeline {
	return NewPipeline(append([]IngestionStep{&DecodeStep{Decoder: decoder}}, sheetSteps()...)...)
}

// NewGCSIngestionPipeline fetches, decodes and processes an object from GCS.
func NewGCSIngestionPipeline(storage StorageService, decoder SheetDecoder) *Pipeline {
	return NewPipeline(append([]IngestionStep{
		&FetchObjectStep{Storage: storage},
		&DecodeStep{Decoder: decoder},
	}, sheetSteps()...)...)
}

// NewGoogleSheetIngestionPipeline reads and processes a Google Sheet.
func NewGoogleSheetIngestionPipeline(fetcher SheetFetcher) *Pipeline {
	return NewPipeline(append([]IngestionStep{&FetchGoogleSheetStep{Fetcher: fetcher}}, sheetSteps()...)...)
}
