// Package analytics derives dashboard metrics from a set of normalized
// transactions. Every function is pure and recomputes from its input.
package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

func sumByType(records []domain.Transaction, t domain.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Type.Is(t) {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// TotalIncome sums the amounts of all income records.
func TotalIncome(records []domain.Transaction) decimal.Decimal {
	return sumByType(records, domain.TypeIncome)
}

// TotalExpenses sums the amounts of all expense records.
func TotalExpenses(records []domain.Transaction) decimal.Decimal {
	return sumByType(records, domain.TypeExpense)
}

// Balance is income minus expenses.
func Balance(records []domain.Transaction) decimal.Decimal {
	return TotalIncome(records).Sub(TotalExpenses(records))
}

// SavingsRate is balance / income, clamped at 0. It is 0 when there is no
// income.
func SavingsRate(records []domain.Transaction) float64 {
	return savingsRate(TotalIncome(records), TotalExpenses(records))
}

func savingsRate(income, expenses decimal.Decimal) float64 {
	if !income.IsPositive() {
		return 0
	}
	rate := income.Sub(expenses).DivRound(income, 8)
	if rate.IsNegative() {
		return 0
	}
	return rate.InexactFloat64()
}

// Summarize computes the headline totals in a single pass.
func Summarize(records []domain.Transaction) domain.SummaryTotals {
	income := TotalIncome(records)
	expenses := TotalExpenses(records)
	return domain.SummaryTotals{
		TotalIncome:      income,
		TotalExpenses:    expenses,
		Balance:          income.Sub(expenses),
		SavingsRate:      savingsRate(income, expenses),
		TransactionCount: len(records),
	}
}

// matchesType reports whether a record passes a type filter of Income,
// Expense or "all" (empty counts as "all").
func matchesType(r domain.Transaction, typeFilter string) bool {
	if typeFilter == "" || strings.EqualFold(typeFilter, domain.FilterAll) {
		return true
	}
	return strings.EqualFold(string(r.Type), typeFilter)
}

// ByCategory totals amounts per category for records passing typeFilter.
// The result is ordered by amount descending, ties broken by name.
func ByCategory(records []domain.Transaction, typeFilter string) []domain.CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		if !matchesType(r, typeFilter) {
			continue
		}
		totals[r.Category] = totals[r.Category].Add(r.Amount)
	}

	out := make([]domain.CategoryTotal, 0, len(totals))
	for category, amount := range totals {
		out = append(out, domain.CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopCategories returns at most n entries of ByCategory. n <= 0 returns all.
func TopCategories(records []domain.Transaction, typeFilter string, n int) []domain.CategoryTotal {
	all := ByCategory(records, typeFilter)
	if n > 0 && len(all) > n {
		return all[:n]
	}
	return all
}

// MonthKey formats the YYYY-MM bucket of a record.
func MonthKey(r domain.Transaction) string {
	return fmt.Sprintf("%04d-%02d", r.Date.Year, int(r.Date.Month))
}

// ByMonth buckets income and expenses per YYYY-MM, ascending by month.
func ByMonth(records []domain.Transaction) []domain.MonthTotal {
	buckets := make(map[string]*domain.MonthTotal)
	for _, r := range records {
		key := MonthKey(r)
		b, ok := buckets[key]
		if !ok {
			b = &domain.MonthTotal{MonthKey: key, Income: decimal.Zero, Expenses: decimal.Zero}
			buckets[key] = b
		}
		switch {
		case r.Type.Is(domain.TypeIncome):
			b.Income = b.Income.Add(r.Amount)
		case r.Type.Is(domain.TypeExpense):
			b.Expenses = b.Expenses.Add(r.Amount)
		}
	}

	out := make([]domain.MonthTotal, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthKey < out[j].MonthKey })
	return out
}

// UniqueCategories lists every category once, sorted lexicographically.
func UniqueCategories(records []domain.Transaction) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	sort.Strings(out)
	return out
}

// DateRange returns the earliest and latest dates, or both nil for no records.
func DateRange(records []domain.Transaction) domain.DateRange {
	if len(records) == 0 {
		return domain.DateRange{}
	}
	lo, hi := records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(lo) {
			lo = r.Date
		}
		if r.Date.After(hi) {
			hi = r.Date
		}
	}
	return domain.DateRange{Min: &lo, Max: &hi}
}

// Snapshot bundles everything a dashboard view renders from one record set.
type Snapshot struct {
	Summary            domain.SummaryTotals   `json:"summary"`
	IncomeByCategory   []domain.CategoryTotal `json:"income_by_category"`
	ExpensesByCategory []domain.CategoryTotal `json:"expenses_by_category"`
	Months             []domain.MonthTotal    `json:"months"`
	Categories         []string               `json:"categories"`
	DateRange          domain.DateRange       `json:"date_range"`
}

// NewSnapshot computes a Snapshot over records.
func NewSnapshot(records []domain.Transaction) Snapshot {
	return Snapshot{
		Summary:            Summarize(records),
		IncomeByCategory:   ByCategory(records, string(domain.TypeIncome)),
		ExpensesByCategory: ByCategory(records, string(domain.TypeExpense)),
		Months:             ByMonth(records),
		Categories:         UniqueCategories(records),
		DateRange:          DateRange(records),
	}
}
