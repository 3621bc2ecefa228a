// Package query narrows and orders a set of normalized transactions.
package query

import (
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// Stage narrows a record set. Stages never modify their input.
type Stage func(records []domain.Transaction) []domain.Transaction

// Apply runs the filter stages in their fixed order: text search, category,
// type, date range. Default criteria return an equal copy of records.
func Apply(records []domain.Transaction, c domain.FilterCriteria) []domain.Transaction {
	out := append([]domain.Transaction(nil), records...)
	for _, stage := range Stages(c) {
		out = stage(out)
	}
	if out == nil {
		out = []domain.Transaction{}
	}
	return out
}

// Stages returns the filter pipeline for c.
func Stages(c domain.FilterCriteria) []Stage {
	return []Stage{
		Search(c.SearchText),
		Category(c.Category),
		Type(c.Type),
		DateBetween(c),
	}
}

func keep(records []domain.Transaction, pred func(domain.Transaction) bool) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func isAll(s string) bool {
	return s == "" || strings.EqualFold(s, domain.FilterAll)
}

// Search keeps records whose description or category contains text,
// ignoring case. Blank text keeps everything.
func Search(text string) Stage {
	needle := strings.ToLower(strings.TrimSpace(text))
	return func(records []domain.Transaction) []domain.Transaction {
		if needle == "" {
			return records
		}
		return keep(records, func(r domain.Transaction) bool {
			return strings.Contains(strings.ToLower(r.Description), needle) ||
				strings.Contains(strings.ToLower(r.Category), needle)
		})
	}
}

// Category keeps records of exactly one category.
func Category(category string) Stage {
	return func(records []domain.Transaction) []domain.Transaction {
		if isAll(category) {
			return records
		}
		return keep(records, func(r domain.Transaction) bool {
			return r.Category == category
		})
	}
}

// Type keeps records of one type, compared case-insensitively.
func Type(t string) Stage {
	return func(records []domain.Transaction) []domain.Transaction {
		if isAll(t) {
			return records
		}
		return keep(records, func(r domain.Transaction) bool {
			return strings.EqualFold(string(r.Type), t)
		})
	}
}

// DateBetween keeps records inside [DateFrom, DateTo]. A nil bound is open.
func DateBetween(c domain.FilterCriteria) Stage {
	from, to := c.DateFrom, c.DateTo
	return func(records []domain.Transaction) []domain.Transaction {
		return keep(records, func(r domain.Transaction) bool {
			if from != nil && r.Date.Before(*from) {
				return false
			}
			if to != nil && r.Date.After(*to) {
				return false
			}
			return true
		})
	}
}
