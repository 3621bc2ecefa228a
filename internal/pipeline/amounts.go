package pipeline

import (
	"regexp"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// amountNoise matches everything that cannot be part of a plain number:
	// currency symbols, thousands separators, spaces, letters.
	amountNoise = regexp.MustCompile(`[^0-9.+\-]`)

	// leadingNumber is the longest numeric prefix of a cleaned amount, so
	// "12.50-" reads as 12.50 and "1.2.3" as 1.2.
	leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)`)
)

// ParseAmount reads a signed amount from a cell. Numeric cells are taken as
// they are. Text is stripped down to digits, dots and signs before parsing.
// Anything unparseable yields zero.
func ParseAmount(c domain.Cell) decimal.Decimal {
	switch c.Kind {
	case domain.CellNumber:
		return c.Number
	case domain.CellEmpty:
		return decimal.Zero
	}
	return parseAmountText(c.String())
}

func parseAmountText(s string) decimal.Decimal {
	cleaned := amountNoise.ReplaceAllString(s, "")
	num := leadingNumber.FindString(cleaned)
	if num == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return d
}
