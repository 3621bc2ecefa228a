package export

import (
	"fmt"
	"io"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxSheet   = "Transactions"
	xlsxDateFmt = "yyyy-mm-dd"
	xlsxAmtFmt  = "#,##0.00"
)

// WriteXLSX writes records to a single-sheet workbook with native date and
// number cells.
func WriteXLSX(w io.Writer, records []domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("WriteXLSX: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("WriteXLSX: header: %w", err)
	}

	dateFmt, amountFmt := xlsxDateFmt, xlsxAmtFmt
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("WriteXLSX: date style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return fmt.Errorf("WriteXLSX: amount style: %w", err)
	}

	for i, r := range records {
		row := []interface{}{
			r.Date.In(time.UTC),
			r.Description,
			r.Category,
			r.Amount.InexactFloat64(),
			string(r.Type),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("WriteXLSX: %w", err)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("WriteXLSX: row %d: %w", r.ID, err)
		}
	}

	if n := len(records); n > 0 {
		last := n + 1
		if err := f.SetCellStyle(xlsxSheet, "A2", fmt.Sprintf("A%d", last), dateStyle); err != nil {
			return fmt.Errorf("WriteXLSX: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheet, "D2", fmt.Sprintf("D%d", last), amountStyle); err != nil {
			return fmt.Errorf("WriteXLSX: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("WriteXLSX: write: %w", err)
	}
	return nil
}
