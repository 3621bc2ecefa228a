package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// sniffDelimiter picks the most frequent of comma, semicolon and tab in the
// first line. Comma wins ties.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', strings.Count(string(line), ",")
	for _, r := range []rune{';', '\t'} {
		if n := strings.Count(string(line), string(r)); n > bestCount {
			best, bestCount = r, n
		}
	}
	return best
}

// DecodeCSV reads comma separated text. Semicolon separated exports, common
// in European locales, are detected from the header line.
func DecodeCSV(data []byte) (domain.Sheet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	return decodeDelimited(data, sniffDelimiter(data))
}

// DecodeTSV reads tab separated text.
func DecodeTSV(data []byte) (domain.Sheet, error) {
	return decodeDelimited(bytes.TrimPrefix(data, utf8BOM), '\t')
}

func decodeDelimited(data []byte, comma rune) (domain.Sheet, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	// encoding/csv skips empty lines. They are put back as blank rows after
	// the header so row positions match the source file.
	var out domain.Sheet
	var newlines int
	var consumed int64
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		line, _ := r.FieldPos(0)
		if len(out) > 0 {
			for blank := line - newlines - 1; blank > 0; blank-- {
				out = append(out, domain.Row{})
			}
		}
		end := r.InputOffset()
		newlines += bytes.Count(data[consumed:end], []byte{'\n'})
		consumed = end

		row := make(domain.Row, len(record))
		for i, field := range record {
			row[i] = domain.TextCell(field)
		}
		out = append(out, row)
	}
	return out, nil
}
