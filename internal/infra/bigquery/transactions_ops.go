package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// insertBatchSize keeps streaming insert requests under the API size limit.
const insertBatchSize = 500

// InsertTransactionsWithClient inserts rows in batches using the provided
// BigQuery client.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, datasetID string, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(datasetID).Table(transactionsTable).Inserter()
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := inserter.Put(ctx, rows[start:end]); err != nil {
			return fmt.Errorf("InsertTransactions: inserting rows %d-%d: %w", start, end, err)
		}
	}
	return nil
}
