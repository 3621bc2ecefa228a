// Package sheet decodes spreadsheet bytes (CSV, TSV, XLSX) and Google
// Sheets ranges into a 2-D array of domain cells.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrUnreadable is returned when the bytes cannot be decoded as the
	// detected spreadsheet format.
	ErrUnreadable = errors.New("unable to read spreadsheet")

	// ErrUnsupportedFormat is returned for anything that is not CSV, TSV or XLSX.
	ErrUnsupportedFormat = errors.New("unsupported file format: upload a .csv, .tsv or .xlsx file")
)

// Format is a decodable spreadsheet format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

const (
	mimeText = "text/plain"
	mimeZip  = "application/zip"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeTSV  = "text/tab-separated-values"
)

// isA reports whether m is expected or one of its ancestors.
func isA(m *mimetype.MIME, expected string) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(expected) {
			return true
		}
	}
	return false
}

// DetectFormat picks the decoder for a file. The extension decides when
// present and the sniffed content type must agree with it; files without an
// extension are classified from their content alone.
func DetectFormat(filename string, data []byte) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	m := mimetype.Detect(data)

	switch ext {
	case ".csv", ".txt":
		if !isA(m, mimeText) {
			return "", fmt.Errorf("%w: %s does not contain text (detected %s)", ErrUnreadable, filename, m)
		}
		return FormatCSV, nil
	case ".tsv", ".tab":
		if !isA(m, mimeText) {
			return "", fmt.Errorf("%w: %s does not contain text (detected %s)", ErrUnreadable, filename, m)
		}
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		if !isA(m, mimeZip) {
			return "", fmt.Errorf("%w: %s is not an Office Open XML workbook (detected %s)", ErrUnreadable, filename, m)
		}
		return FormatXLSX, nil
	case ".xls":
		return "", fmt.Errorf("%w: legacy .xls workbooks must be saved as .xlsx", ErrUnsupportedFormat)
	case "":
		return sniffFormat(m)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func sniffFormat(m *mimetype.MIME) (Format, error) {
	switch {
	case m.Is(mimeXLSX), isA(m, mimeZip):
		return FormatXLSX, nil
	case m.Is(mimeTSV):
		return FormatTSV, nil
	case isA(m, mimeText):
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: detected %s", ErrUnsupportedFormat, m)
	}
}
