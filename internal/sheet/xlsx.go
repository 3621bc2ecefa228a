package sheet

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Built-in number formats that render a serial number as a date.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// Quoted literals, bracketed sections ([Red], [$-409]) and escaped chars.
var numFmtNoise = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

func isDateFormat(code string) bool {
	code = strings.ToLower(numFmtNoise.ReplaceAllString(code, ""))
	return strings.ContainsAny(code, "yd")
}

type workbook struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	dateID   map[int]bool
}

// DecodeXLSX reads the first worksheet of an Office Open XML workbook.
// Numeric cells carrying a date number format become date cells.
func DecodeXLSX(data []byte) (domain.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no worksheets", ErrUnreadable)
	}

	wb := &workbook{f: f, sheet: sheets[0], dateID: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}

	rows, err := f.GetRows(wb.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	out := make(domain.Sheet, len(rows))
	for r, values := range rows {
		row := make(domain.Row, len(values))
		for c, raw := range values {
			cell, err := wb.cell(c, r, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
			}
			row[c] = cell
		}
		out[r] = row
	}
	return out, nil
}

func (wb *workbook) cell(col, row int, raw string) (domain.Cell, error) {
	if raw == "" {
		return domain.Cell{}, nil
	}
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return domain.Cell{}, err
	}
	cellType, err := wb.f.GetCellType(wb.sheet, ref)
	if err != nil {
		return domain.Cell{}, err
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeDate:
		return domain.TextCell(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" {
			return domain.TextCell("TRUE"), nil
		}
		return domain.TextCell("FALSE"), nil
	}

	n, err := decimal.NewFromString(raw)
	if err != nil {
		return domain.TextCell(raw), nil
	}
	isDate, err := wb.hasDateStyle(ref)
	if err != nil {
		return domain.Cell{}, err
	}
	if !isDate {
		return domain.NumberCell(n), nil
	}
	t, err := excelize.ExcelDateToTime(n.InexactFloat64(), wb.date1904)
	if err != nil {
		return domain.NumberCell(n), nil
	}
	return domain.DateCell(civil.DateOf(t)), nil
}

func (wb *workbook) hasDateStyle(ref string) (bool, error) {
	styleID, err := wb.f.GetCellStyle(wb.sheet, ref)
	if err != nil {
		return false, err
	}
	if isDate, ok := wb.dateID[styleID]; ok {
		return isDate, nil
	}
	style, err := wb.f.GetStyle(styleID)
	if err != nil {
		return false, err
	}
	isDate := builtinDateFormats[style.NumFmt]
	if style.CustomNumFmt != nil {
		isDate = isDate || isDateFormat(*style.CustomNumFmt)
	}
	wb.dateID[styleID] = isDate
	return isDate, nil
}
