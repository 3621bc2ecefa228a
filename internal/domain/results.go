package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// IngestionResult is the read-only output of one ingestion pass.
type IngestionResult struct {
	Records          []Transaction `json:"records"`
	SourceRowCount   int           `json:"source_row_count"`
	AcceptedRowCount int           `json:"accepted_row_count"`
	DetectedColumns  ColumnMap     `json:"detected_columns"`
}

// RejectedRowCount is the number of data rows dropped during normalization.
func (r *IngestionResult) RejectedRowCount() int {
	return r.SourceRowCount - r.AcceptedRowCount
}

// FilterAll is the sentinel meaning "no constraint" for category and type.
const FilterAll = "all"

// FilterCriteria is the current query state. Zero values mean no constraint.
type FilterCriteria struct {
	SearchText string      `json:"search_text,omitempty"`
	Category   string      `json:"category,omitempty"` // exact category or "all"
	Type       string      `json:"type,omitempty"`     // Income, Expense or "all"
	DateFrom   *civil.Date `json:"date_from,omitempty"`
	DateTo     *civil.Date `json:"date_to,omitempty"`
}

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthTotal holds income and expenses for one YYYY-MM month.
type MonthTotal struct {
	MonthKey string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// SummaryTotals are the headline dashboard figures.
type SummaryTotals struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	Balance          decimal.Decimal `json:"balance"`
	SavingsRate      float64         `json:"savings_rate"`
	TransactionCount int             `json:"transaction_count"`
}

// DateRange spans the earliest and latest record dates; both nil when empty.
type DateRange struct {
	Min *civil.Date `json:"min"`
	Max *civil.Date `json:"max"`
}
