package query

import (
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// ParseDateBound parses an optional YYYY-MM-DD filter bound. Blank input
// returns nil, meaning unbounded.
func ParseDateBound(s string) (*civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return &d, nil
}

// CriteriaFromValues reads filter criteria from URL query parameters:
// search, category, type, date_from and date_to.
func CriteriaFromValues(v url.Values) (domain.FilterCriteria, error) {
	c := domain.FilterCriteria{
		SearchText: v.Get("search"),
		Category:   v.Get("category"),
		Type:       v.Get("type"),
	}
	if c.Type != "" && !isAll(c.Type) {
		t, ok := domain.ParseTransactionType(c.Type)
		if !ok {
			return c, fmt.Errorf("invalid type %q: expected Income, Expense or all", c.Type)
		}
		c.Type = string(t)
	}

	var err error
	if c.DateFrom, err = ParseDateBound(v.Get("date_from")); err != nil {
		return c, fmt.Errorf("date_from: %w", err)
	}
	if c.DateTo, err = ParseDateBound(v.Get("date_to")); err != nil {
		return c, fmt.Errorf("date_to: %w", err)
	}
	return c, nil
}
