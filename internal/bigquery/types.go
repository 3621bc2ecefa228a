package bigquery

import (
	"context"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// ExportRepository provides an interface for warehouse export operations.
type ExportRepository interface {
	// EnsureTables creates the dataset and tables when they do not exist yet.
	EnsureTables(ctx context.Context) error

	// InsertImportRun inserts one ImportRunRow.
	InsertImportRun(ctx context.Context, row *ImportRunRow) error

	// InsertTransactions inserts a batch of TransactionRow.
	InsertTransactions(ctx context.Context, rows []*TransactionRow) error

	// ListImportRuns returns the most recent import runs, newest first.
	ListImportRuns(ctx context.Context, limit int) ([]*ImportRunRow, error)
}

// ImportRunRow represents one ingestion pass in BigQuery.
type ImportRunRow struct {
	RunID            string            `bigquery:"run_id"`             // REQUIRED
	Source           string            `bigquery:"source"`             // file name, gs:// URI or sheet id
	ImportedTS       time.Time         `bigquery:"imported_ts"`        // REQUIRED
	ExportedTS       time.Time         `bigquery:"exported_ts"`        // REQUIRED
	SourceRowCount   int64             `bigquery:"source_row_count"`   // REQUIRED
	AcceptedRowCount int64             `bigquery:"accepted_row_count"` // REQUIRED
	DetectedColumns  bigquery.NullJSON `bigquery:"detected_columns"`   // NULLABLE
}

// TransactionRow represents a normalized transaction in BigQuery.
type TransactionRow struct {
	RunID string `bigquery:"run_id"` // REQUIRED
	RowID int64  `bigquery:"row_id"` // REQUIRED, data row position in the source sheet

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Description string `bigquery:"description"` // REQUIRED STRING, may be empty
	Category    string `bigquery:"category"`    // REQUIRED STRING

	Amount       *big.Rat `bigquery:"amount"`        // REQUIRED NUMERIC, always positive
	SignedAmount *big.Rat `bigquery:"signed_amount"` // REQUIRED NUMERIC, expenses negative
	Type         string   `bigquery:"type"`          // Income or Expense
}
