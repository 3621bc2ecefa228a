package pipeline

import (
	"context"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// StorageService is an interface for object storage reads.
type StorageService interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
	ExtractFilenameFromGCSURI(uri string) string
}

// SheetDecoder turns raw spreadsheet bytes into rows of cells.
// The filename is used to pick the format.
type SheetDecoder interface {
	Decode(filename string, data []byte) (domain.Sheet, error)
}

// SheetFetcher reads an already-decoded sheet from a remote spreadsheet
// service such as Google Sheets.
type SheetFetcher interface {
	FetchSheet(ctx context.Context, spreadsheetID, readRange string) (domain.Sheet, error)
}
