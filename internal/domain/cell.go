package domain

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// CellKind tags the value held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	default:
		return "empty"
	}
}

// Cell is one raw spreadsheet value as produced by a sheet decoder.
// Only the field matching Kind is meaningful.
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
	Date   civil.Date
}

// TextCell returns a text cell, or an empty cell for "".
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellNumber, Number: d}
}

// FloatCell returns a numeric cell from a float64, as handed out by JSON APIs.
func FloatCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: decimal.NewFromFloat(f)}
}

// DateCell returns a native date cell.
func DateCell(d civil.Date) Cell {
	return Cell{Kind: CellDate, Date: d}
}

// String renders the cell the way a spreadsheet shows it as plain text.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return c.Number.String()
	case CellDate:
		return c.Date.String()
	default:
		return ""
	}
}

// IsBlank reports whether the cell carries no visible value.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// Row is one spreadsheet row.
type Row []Cell

// At returns the cell at index i, or an empty cell when i is out of range.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// IsBlank reports whether the row has no cells or only blank ones.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// Sheet is a decoded worksheet; row 0 holds the headers.
type Sheet []Row

// TextRow builds a row of text cells, handy for headers and fixtures.
func TextRow(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = TextCell(v)
	}
	return row
}
