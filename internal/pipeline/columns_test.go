package pipeline

import (
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestMapColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    domain.ColumnMap
	}{
		{
			name:    "template layout",
			headers: []string{"date", "description", "category", "amount", "type"},
			want:    domain.ColumnMap{Date: 0, Description: 1, Category: 2, Amount: 3, Type: 4},
		},
		{
			name:    "reordered with aliases",
			headers: []string{"amt", "transaction type", "memo", "posting date"},
			want:    domain.ColumnMap{Date: 3, Description: 2, Category: -1, Amount: 0, Type: 1},
		},
		{
			name:    "first match wins",
			headers: []string{"transaction date", "value date", "details", "amount", "total"},
			want:    domain.ColumnMap{Date: 0, Description: 2, Category: -1, Amount: 3, Type: -1},
		},
		{
			name:    "collision resolved by field order",
			headers: []string{"category type", "debit amount", "booked"},
			want:    domain.ColumnMap{Date: 2, Description: -1, Category: 0, Amount: 1, Type: -1},
		},
		{
			name:    "unknown and blank headers",
			headers: []string{"", "balance", "notes"},
			want:    domain.NewColumnMap(),
		},
		{
			name:    "no headers",
			headers: nil,
			want:    domain.NewColumnMap(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapColumns(tt.headers)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MapColumns() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeHeaders(t *testing.T) {
	row := domain.Row{
		domain.TextCell("  Date "),
		domain.TextCell("DESCRIPTION"),
		domain.Cell{},
		domain.FloatCell(2026),
	}
	want := []string{"date", "description", "", "2026"}

	if diff := cmp.Diff(want, NormalizeHeaders(row)); diff != "" {
		t.Errorf("NormalizeHeaders() mismatch (-want +got):\n%s", diff)
	}
}
