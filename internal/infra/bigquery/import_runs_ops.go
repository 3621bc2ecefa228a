package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// defaultRunsLimit applies when ListImportRuns is called without a limit.
const defaultRunsLimit = 20

// InsertImportRunWithClient inserts one import run using the provided client.
func InsertImportRunWithClient(ctx context.Context, client *bigquery.Client, datasetID string, row *ImportRunRow) error {
	inserter := client.Dataset(datasetID).Table(importRunsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertImportRun: inserting row: %w", err)
	}
	return nil
}

// ListImportRunsWithClient returns the newest import runs first.
func ListImportRunsWithClient(ctx context.Context, client *bigquery.Client, datasetID string, limit int) ([]*ImportRunRow, error) {
	if limit <= 0 {
		limit = defaultRunsLimit
	}

	q := client.Query(fmt.Sprintf(`
		SELECT
			run_id,
			source,
			imported_ts,
			exported_ts,
			source_row_count,
			accepted_row_count,
			detected_columns
		FROM %s.%s
		ORDER BY imported_ts DESC
		LIMIT @limit
	`, datasetID, importRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListImportRuns: query read: %w", err)
	}

	var rows []*ImportRunRow
	for {
		var r ImportRunRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListImportRuns: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
