package bigquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/dataset"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// ToTransactionRows converts records into rows of one import run.
func ToTransactionRows(runID string, records []domain.Transaction) []*TransactionRow {
	rows := make([]*TransactionRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, &TransactionRow{
			RunID:           runID,
			RowID:           int64(r.ID),
			TransactionDate: r.Date,
			Description:     r.Description,
			Category:        r.Category,
			Amount:          r.Amount.Rat(),
			SignedAmount:    r.SignedAmount().Rat(),
			Type:            string(r.Type),
		})
	}
	return rows
}

// ToImportRunRow converts the active run into its warehouse row.
func ToImportRunRow(run *dataset.ImportRun, exportedAt time.Time) (*ImportRunRow, error) {
	cols, err := json.Marshal(run.DetectedColumns)
	if err != nil {
		return nil, fmt.Errorf("ToImportRunRow: marshal detected columns: %w", err)
	}
	return &ImportRunRow{
		RunID:            run.RunID,
		Source:           run.Source,
		ImportedTS:       run.ImportedAt,
		ExportedTS:       exportedAt,
		SourceRowCount:   int64(run.SourceRowCount),
		AcceptedRowCount: int64(run.AcceptedRowCount),
		DetectedColumns:  bigquery.NullJSON{JSONVal: string(cols), Valid: true},
	}, nil
}

// ErrNothingToExport is returned when no import has happened yet.
var ErrNothingToExport = errors.New("nothing to export: import a spreadsheet first")

// Export writes the import run and its records to the warehouse.
func Export(ctx context.Context, repo ExportRepository, snap dataset.Snapshot) (int, error) {
	if snap.Run == nil {
		return 0, ErrNothingToExport
	}
	log := logger.FromContext(ctx)

	if err := repo.EnsureTables(ctx); err != nil {
		return 0, fmt.Errorf("Export: %w", err)
	}

	runRow, err := ToImportRunRow(snap.Run, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if err := repo.InsertImportRun(ctx, runRow); err != nil {
		return 0, fmt.Errorf("Export: %w", err)
	}

	rows := ToTransactionRows(snap.Run.RunID, snap.Records)
	if err := repo.InsertTransactions(ctx, rows); err != nil {
		return 0, fmt.Errorf("Export: %w", err)
	}

	log.Info().
		Str("run_id", snap.Run.RunID).
		Int("rows", len(rows)).
		Msg("Exported import run to BigQuery")
	return len(rows), nil
}
