package pipeline

import (
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// columnAliases lists, per canonical field, the header substrings that
// identify it. The table is read-only.
var columnAliases = map[domain.Field][]string{
	domain.FieldDate: {
		"date", "transaction date", "trans date", "posting date", "posted", "booked",
	},
	domain.FieldDescription: {
		"description", "desc", "memo", "details", "narrative", "payee", "merchant", "reference",
	},
	domain.FieldCategory: {
		"category", "categories", "group",
	},
	domain.FieldAmount: {
		"amount", "amt", "value", "total",
	},
	domain.FieldType: {
		"type", "transaction type", "kind", "direction", "dr/cr",
	},
}

// NormalizeHeaders lower-cases and trims the header row.
func NormalizeHeaders(row domain.Row) []string {
	headers := make([]string, len(row))
	for i, c := range row {
		headers[i] = strings.ToLower(strings.TrimSpace(c.String()))
	}
	return headers
}

// MapColumns assigns header positions to canonical fields. Headers are
// scanned left to right and each one resolves to the first field, in
// domain.Fields order, that has a matching alias. The first header to claim
// a field keeps it; later headers resolving to the same field are ignored.
func MapColumns(headers []string) domain.ColumnMap {
	cols := domain.NewColumnMap()
	for i, header := range headers {
		field, ok := matchField(header)
		if !ok || cols.Has(field) {
			continue
		}
		cols = cols.With(field, i)
	}
	return cols
}

// matchField returns the first field whose aliases occur in header.
func matchField(header string) (domain.Field, bool) {
	if header == "" {
		return "", false
	}
	for _, field := range domain.Fields {
		for _, alias := range columnAliases[field] {
			if strings.Contains(header, alias) {
				return field, true
			}
		}
	}
	return "", false
}
