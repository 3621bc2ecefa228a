package sheet

import (
	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// Decoder decodes uploaded files by detected format.
type Decoder struct{}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode detects the format of data and decodes it into a sheet.
func (d *Decoder) Decode(filename string, data []byte) (domain.Sheet, error) {
	format, err := DetectFormat(filename, data)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return DecodeXLSX(data)
	case FormatTSV:
		return DecodeTSV(data)
	default:
		return DecodeCSV(data)
	}
}
