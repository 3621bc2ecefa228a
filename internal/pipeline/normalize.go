package pipeline

import (
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// RejectReason explains why a row did not become a transaction.
type RejectReason string

const (
	ReasonMissingDate RejectReason = "missing_date"
	ReasonInvalidDate RejectReason = "invalid_date"
	ReasonZeroAmount  RejectReason = "zero_amount"
)

// Outcome is the result of normalizing one data row: either an accepted
// record or a rejection reason.
type Outcome struct {
	Row    int
	Record *domain.Transaction
	Reason RejectReason
}

// Accepted reports whether the row produced a record.
func (o Outcome) Accepted() bool {
	return o.Record != nil
}

func accepted(tx domain.Transaction) Outcome {
	return Outcome{Row: tx.ID, Record: &tx}
}

func rejected(row int, reason RejectReason) Outcome {
	return Outcome{Row: row, Reason: reason}
}

// incomeMarkers are substrings of a type cell that mark income.
var incomeMarkers = []string{"income", "in", "credit"}

// NormalizeRow turns one data row into a transaction. id is the row's
// 1-based position among the sheet's data rows.
func NormalizeRow(row domain.Row, cols domain.ColumnMap, id int) Outcome {
	dateCell := row.At(cols.Date)
	if dateCell.IsBlank() {
		return rejected(id, ReasonMissingDate)
	}
	date, ok := ParseDate(dateCell)
	if !ok {
		return rejected(id, ReasonInvalidDate)
	}

	description := strings.TrimSpace(row.At(cols.Description).String())

	category := strings.TrimSpace(row.At(cols.Category).String())
	if category == "" {
		category = domain.DefaultCategory
	}

	amount := ParseAmount(row.At(cols.Amount))
	if amount.IsZero() {
		return rejected(id, ReasonZeroAmount)
	}

	var txType domain.TransactionType
	if cols.Has(domain.FieldType) {
		txType = typeFromText(row.At(cols.Type).String())
	} else if amount.IsPositive() {
		txType = domain.TypeIncome
	} else {
		txType = domain.TypeExpense
	}

	return accepted(domain.Transaction{
		ID:          id,
		Date:        date,
		Description: description,
		Category:    category,
		Amount:      amount.Abs(),
		Type:        txType,
	})
}

func typeFromText(s string) domain.TransactionType {
	s = strings.ToLower(s)
	for _, marker := range incomeMarkers {
		if strings.Contains(s, marker) {
			return domain.TypeIncome
		}
	}
	return domain.TypeExpense
}
