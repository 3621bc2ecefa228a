package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// SortKey names a transaction field to order by.
type SortKey string

const (
	SortByDate        SortKey = "date"
	SortByAmount      SortKey = "amount"
	SortByDescription SortKey = "description"
	SortByCategory    SortKey = "category"
	SortByType        SortKey = "type"
)

// Order is the sort direction.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// ParseSortKey accepts a sort key name. Empty means date.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByDate, nil
	case SortByDate, SortByAmount, SortByDescription, SortByCategory, SortByType:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// ParseOrder accepts asc or desc. Empty means ascending.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return Ascending, nil
	case Ascending, Descending:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

func compare(a, b domain.Transaction, key SortKey) int {
	switch key {
	case SortByAmount:
		return a.Amount.Cmp(b.Amount)
	case SortByDescription:
		return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
	case SortByCategory:
		return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
	case SortByType:
		return strings.Compare(string(a.Type), string(b.Type))
	default:
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	}
}

// Sort returns a new slice ordered by key. Equal elements keep their input
// order in both directions.
func Sort(records []domain.Transaction, key SortKey, order Order) []domain.Transaction {
	out := append([]domain.Transaction{}, records...)
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], key)
		if order == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}
