package pipeline

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func TestParseDateText(t *testing.T) {
	tests := []struct {
		input  string
		want   civil.Date
		wantOK bool
	}{
		{"2026-01-02", date(2026, 1, 2), true},
		{"  2026-01-02  ", date(2026, 1, 2), true},
		{"2026-01-02T23:30:00Z", date(2026, 1, 2), true},
		{"2026-01-02 08:15:00", date(2026, 1, 2), true},
		{"2026-01-02T10:00", date(2026, 1, 2), true},
		{"2026-01-02T10:00Z", date(2026, 1, 2), true},
		{"2026-01-02T10:00+02:00", date(2026, 1, 2), true},
		{"2026-3-4T09:30", date(2026, 3, 4), true},
		{"2026/3/4T09:30", date(2026, 3, 4), true},
		{"Jan 2, 2026", date(2026, 1, 2), true},
		{"2 Jan 2026", date(2026, 1, 2), true},
		{"01/02/2026", date(2026, 1, 2), true},
		{"1/2/2026", date(2026, 1, 2), true},
		{"01/02/2026 10:30", date(2026, 1, 2), true},
		{"12-31-2025", date(2025, 12, 31), true},
		{"2026/3/4", date(2026, 3, 4), true},
		{"2026-3-4", date(2026, 3, 4), true},
		// Day-first input is read month-first when it fits.
		{"03/04/2026", date(2026, 3, 4), true},
		// Day-first input that cannot be month-first is not reinterpreted.
		{"13/02/2026", civil.Date{}, false},
		{"2026-02-30", civil.Date{}, false},
		{"yesterday", civil.Date{}, false},
		{"", civil.Date{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDateText(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDateText(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseDateText(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDateCell(t *testing.T) {
	native := date(2025, 11, 30)

	tests := []struct {
		name   string
		cell   domain.Cell
		want   civil.Date
		wantOK bool
	}{
		{"native date", domain.DateCell(native), native, true},
		{"text", domain.TextCell("2025-11-30"), native, true},
		{"empty", domain.Cell{}, civil.Date{}, false},
		{"bare serial number", domain.NumberCell(decimal.NewFromInt(45000)), civil.Date{}, false},
		{"invalid native date", domain.DateCell(civil.Date{Year: 2025, Month: 2, Day: 31}), civil.Date{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.cell)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}
