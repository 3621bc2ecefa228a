package domain

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		input  string
		want   TransactionType
		wantOK bool
	}{
		{"Income", TypeIncome, true},
		{"  income ", TypeIncome, true},
		{"EXPENSE", TypeExpense, true},
		{"credit", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTransactionType(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseTransactionType(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"empty", Cell{}, ""},
		{"text", TextCell("Groceries"), "Groceries"},
		{"number", NumberCell(decimal.RequireFromString("-150.25")), "-150.25"},
		{"float", FloatCell(800), "800"},
		{"date", DateCell(civil.Date{Year: 2026, Month: 1, Day: 2}), "2026-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRowIsBlank(t *testing.T) {
	if !(Row{}).IsBlank() {
		t.Error("row without cells should be blank")
	}
	if !(Row{Cell{}, TextCell("  ")}).IsBlank() {
		t.Error("row of empty and whitespace cells should be blank")
	}
	if (Row{Cell{}, FloatCell(0)}).IsBlank() {
		t.Error("row with a number should not be blank")
	}
}

func TestRowAtOutOfRange(t *testing.T) {
	row := TextRow("a", "b")
	if got := row.At(5); got.Kind != CellEmpty {
		t.Errorf("At(5) kind = %v, want empty", got.Kind)
	}
	if got := row.At(NotFound); got.Kind != CellEmpty {
		t.Errorf("At(-1) kind = %v, want empty", got.Kind)
	}
	if got := row.At(1).String(); got != "b" {
		t.Errorf("At(1) = %q, want b", got)
	}
}

func TestColumnMap(t *testing.T) {
	m := NewColumnMap()
	for _, f := range Fields {
		if m.Has(f) {
			t.Errorf("new map has %s mapped", f)
		}
	}

	m = m.With(FieldAmount, 3).With(FieldDate, 0)
	if m.Index(FieldAmount) != 3 || m.Index(FieldDate) != 0 {
		t.Errorf("unexpected indexes: %+v", m)
	}
	detected := m.Detected()
	if len(detected) != 2 || detected[0] != FieldDate || detected[1] != FieldAmount {
		t.Errorf("Detected() = %v, want [date amount]", detected)
	}
}

func TestSignedAmount(t *testing.T) {
	tx := Transaction{Amount: decimal.NewFromInt(40), Type: TypeExpense}
	if !tx.SignedAmount().Equal(decimal.NewFromInt(-40)) {
		t.Errorf("SignedAmount() = %s, want -40", tx.SignedAmount())
	}
	tx.Type = "income"
	if !tx.SignedAmount().Equal(decimal.NewFromInt(40)) {
		t.Errorf("SignedAmount() = %s, want 40", tx.SignedAmount())
	}
}
