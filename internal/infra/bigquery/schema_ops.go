package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"google.golang.org/api/googleapi"
)

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// tableSpecs lists the managed tables and the row struct their schema is
// inferred from.
var tableSpecs = []struct {
	name      string
	row       interface{}
	partition string
}{
	{name: importRunsTable, row: ImportRunRow{}},
	{name: transactionsTable, row: TransactionRow{}, partition: "transaction_date"},
}

// EnsureTablesWithClient creates the dataset and its tables when missing.
// Existing tables are left untouched.
func EnsureTablesWithClient(ctx context.Context, client *bigquery.Client, datasetID string) error {
	log := logger.FromContext(ctx)

	ds := client.Dataset(datasetID)
	if _, err := ds.Metadata(ctx); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("EnsureTables: dataset metadata: %w", err)
		}
		if err := ds.Create(ctx, &bigquery.DatasetMetadata{}); err != nil {
			return fmt.Errorf("EnsureTables: creating dataset %s: %w", datasetID, err)
		}
		log.Info().Str("dataset", datasetID).Msg("Created BigQuery dataset")
	}

	for _, spec := range tableSpecs {
		table := ds.Table(spec.name)
		if _, err := table.Metadata(ctx); err == nil {
			continue
		} else if !isNotFound(err) {
			return fmt.Errorf("EnsureTables: table %s metadata: %w", spec.name, err)
		}

		schema, err := bigquery.InferSchema(spec.row)
		if err != nil {
			return fmt.Errorf("EnsureTables: inferring schema for %s: %w", spec.name, err)
		}
		meta := &bigquery.TableMetadata{Schema: schema}
		if spec.partition != "" {
			meta.TimePartitioning = &bigquery.TimePartitioning{
				Type:  bigquery.MonthPartitioningType,
				Field: spec.partition,
			}
		}
		if err := table.Create(ctx, meta); err != nil {
			return fmt.Errorf("EnsureTables: creating table %s: %w", spec.name, err)
		}
		log.Info().Str("table", spec.name).Msg("Created BigQuery table")
	}
	return nil
}
