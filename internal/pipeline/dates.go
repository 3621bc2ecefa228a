package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// dateStrategy is one way of reading a calendar date out of cell text.
type dateStrategy struct {
	name  string
	parse func(s string) (civil.Date, bool)
}

// dateStrategies are tried in order and the first success wins.
// MM/DD and DD/MM are never disambiguated: the month-first patterns come
// before the year-first ones and whichever matches first is authoritative.
var dateStrategies = []dateStrategy{
	{name: "direct", parse: parseDirectDate},
	{name: "MM/DD/YYYY", parse: positionalDate(`^(\d{1,2})/(\d{1,2})/(\d{4})\b`, 3, 1, 2)},
	{name: "MM-DD-YYYY", parse: positionalDate(`^(\d{1,2})-(\d{1,2})-(\d{4})\b`, 3, 1, 2)},
	{name: "YYYY/MM/DD", parse: positionalDate(`^(\d{4})/(\d{1,2})/(\d{1,2})(?:\D|$)`, 1, 2, 3)},
	{name: "YYYY-MM-DD", parse: positionalDate(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:\D|$)`, 1, 2, 3)},
}

// directDateLayouts cover the unambiguous textual forms spreadsheets and
// bank exports commonly produce.
var directDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC1123,
	time.RFC1123Z,
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"Mon Jan 2 2006",
	"Mon, Jan 2, 2006",
}

func parseDirectDate(s string) (civil.Date, bool) {
	for _, layout := range directDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

// positionalDate builds a strategy from a regexp and the submatch positions
// of year, month and day.
func positionalDate(pattern string, yearIdx, monthIdx, dayIdx int) func(string) (civil.Date, bool) {
	re := regexp.MustCompile(pattern)
	return func(s string) (civil.Date, bool) {
		m := re.FindStringSubmatch(s)
		if m == nil {
			return civil.Date{}, false
		}
		year, _ := strconv.Atoi(m[yearIdx])
		month, _ := strconv.Atoi(m[monthIdx])
		day, _ := strconv.Atoi(m[dayIdx])
		d := civil.Date{Year: year, Month: time.Month(month), Day: day}
		if !d.IsValid() {
			return civil.Date{}, false
		}
		return d, true
	}
}

// ParseDateText reads a calendar date from free text, trying each known
// pattern in a fixed order.
func ParseDateText(s string) (civil.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, false
	}
	for _, strategy := range dateStrategies {
		if d, ok := strategy.parse(s); ok {
			return d, true
		}
	}
	return civil.Date{}, false
}

// ParseDate extracts a calendar date from a cell. Native date cells are used
// as they are; anything else goes through ParseDateText.
func ParseDate(c domain.Cell) (civil.Date, bool) {
	switch c.Kind {
	case domain.CellEmpty:
		return civil.Date{}, false
	case domain.CellDate:
		return c.Date, c.Date.IsValid()
	}
	return ParseDateText(c.String())
}
