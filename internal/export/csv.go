// Package export writes transactions back out in the import template layout.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// Header is the template header row. Files in this layout import without
// any alias matching.
var Header = []string{"Date", "Description", "Category", "Amount", "Type"}

// templateRows illustrate every accepted field value.
var templateRows = [][]string{
	{"2026-01-02", "Grocery Store", "Food & Dining", "150.00", "Expense"},
	{"2026-01-05", "Monthly Salary", "Salary", "3000.00", "Income"},
	{"2026-01-08", "Electricity Bill", "Utilities", "85.40", "Expense"},
	{"2026-01-15", "Freelance Project", "Side Income", "450.00", "Income"},
}

func recordRow(r domain.Transaction) []string {
	return []string{
		r.Date.String(),
		r.Description,
		r.Category,
		r.Amount.StringFixed(2),
		string(r.Type),
	}
}

// WriteCSV writes records with unsigned amounts under Header.
func WriteCSV(w io.Writer, records []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return fmt.Errorf("WriteCSV: row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}

// WriteTemplate writes the sample spreadsheet users fill in.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("WriteTemplate: %w", err)
	}
	if err := cw.WriteAll(templateRows); err != nil {
		return fmt.Errorf("WriteTemplate: %w", err)
	}
	return nil
}
