package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// ValidateResultStep collapses the row outcomes into the ingestion result.
// It fails when no row was accepted.
type ValidateResultStep struct{}

func (s *ValidateResultStep) Execute(ctx context.Context, state *IngestionState) error {
	records := make([]domain.Transaction, 0, len(state.Outcomes))
	rejections := make(map[RejectReason]int)

	for _, o := range state.Outcomes {
		if !o.Accepted() {
			rejections[o.Reason]++
			continue
		}
		if err := validateRecord(o.Record); err != nil {
			return fmt.Errorf("ValidateResultStep: row %d: %w", o.Row, err)
		}
		records = append(records, *o.Record)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Int("source_rows", len(state.Outcomes)).
		Int("accepted_rows", len(records)).
		Interface("rejections", rejections).
		Msg("Normalized spreadsheet rows")

	if len(records) == 0 {
		return ErrNoValidTransactions
	}

	state.Result = &domain.IngestionResult{
		Records:          records,
		SourceRowCount:   len(state.Outcomes),
		AcceptedRowCount: len(records),
		DetectedColumns:  state.Columns,
	}
	return nil
}

// validateRecord checks the invariants every accepted record must hold.
// A failure here means the normalizer is broken, not that the input is bad.
func validateRecord(tx *domain.Transaction) error {
	if !tx.Date.IsValid() {
		return fmt.Errorf("invalid date %v", tx.Date)
	}
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("amount %s is not positive", tx.Amount)
	}
	if tx.Category == "" {
		return fmt.Errorf("empty category")
	}
	if tx.Type != domain.TypeIncome && tx.Type != domain.TypeExpense {
		return fmt.Errorf("unknown type %q", tx.Type)
	}
	return nil
}
