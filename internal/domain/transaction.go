package domain

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TypeIncome  TransactionType = "Income"
	TypeExpense TransactionType = "Expense"
)

// DefaultCategory is used when a row has no category or a blank one.
const DefaultCategory = "Uncategorized"

// ParseTransactionType matches s against the known types ignoring case and
// surrounding whitespace.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return TypeIncome, true
	case "expense":
		return TypeExpense, true
	}
	return "", false
}

// Is reports whether t equals other ignoring case.
func (t TransactionType) Is(other TransactionType) bool {
	return strings.EqualFold(string(t), string(other))
}

// Transaction represents one normalized spreadsheet row.
// Records are built by the row normalizer and never modified afterwards.
type Transaction struct {
	ID          int             `json:"id"`          // 1-based data row position in the source sheet
	Date        civil.Date      `json:"date"`        // calendar date, no time of day
	Description string          `json:"description"` // may be empty
	Category    string          `json:"category"`    // never empty, DefaultCategory when absent
	Amount      decimal.Decimal `json:"amount"`      // magnitude, always > 0
	Type        TransactionType `json:"type"`        // Income or Expense
}

// SignedAmount returns the amount with expenses negated.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type.Is(TypeExpense) {
		return t.Amount.Neg()
	}
	return t.Amount
}
