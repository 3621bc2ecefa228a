package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	bq "github.com/dvloznov/finance-dashboard/internal/bigquery"
)

// Re-export row types from the shared package.
type (
	ImportRunRow   = bq.ImportRunRow
	TransactionRow = bq.TransactionRow
)

const (
	importRunsTable   = "import_runs"
	transactionsTable = "transactions"
)

// BigQueryRepository is the concrete implementation of ExportRepository
// that interacts with BigQuery. It holds a shared BigQuery client to avoid
// creating a new connection for each operation.
type BigQueryRepository struct {
	client    *bigquery.Client
	datasetID string
}

// NewBigQueryRepository creates a repository writing to projectID.datasetID.
func NewBigQueryRepository(ctx context.Context, projectID, datasetID string) (*BigQueryRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryRepository: creating client: %w", err)
	}
	return &BigQueryRepository{
		client:    client,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// EnsureTables delegates to EnsureTablesWithClient with the shared client.
func (r *BigQueryRepository) EnsureTables(ctx context.Context) error {
	return EnsureTablesWithClient(ctx, r.client, r.datasetID)
}

// InsertImportRun delegates to InsertImportRunWithClient with the shared client.
func (r *BigQueryRepository) InsertImportRun(ctx context.Context, row *ImportRunRow) error {
	return InsertImportRunWithClient(ctx, r.client, r.datasetID, row)
}

// InsertTransactions delegates to InsertTransactionsWithClient with the shared client.
func (r *BigQueryRepository) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	return InsertTransactionsWithClient(ctx, r.client, r.datasetID, rows)
}

// ListImportRuns delegates to ListImportRunsWithClient with the shared client.
func (r *BigQueryRepository) ListImportRuns(ctx context.Context, limit int) ([]*ImportRunRow, error) {
	return ListImportRunsWithClient(ctx, r.client, r.datasetID, limit)
}

// Ensure BigQueryRepository implements the ExportRepository interface.
var _ bq.ExportRepository = (*BigQueryRepository)(nil)
