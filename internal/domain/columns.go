package domain

// Field names one of the canonical transaction attributes.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
	FieldAmount      Field = "amount"
	FieldType        Field = "type"
)

// Fields lists the canonical fields in mapping order. Header collisions are
// resolved in favour of the field that comes first here.
var Fields = []Field{FieldDate, FieldDescription, FieldCategory, FieldAmount, FieldType}

// NotFound marks a field without a matching header.
const NotFound = -1

// ColumnMap maps each canonical field to a zero-based column index.
type ColumnMap struct {
	Date        int `json:"date"`
	Description int `json:"description"`
	Category    int `json:"category"`
	Amount      int `json:"amount"`
	Type        int `json:"type"`
}

// NewColumnMap returns a map with every field unmapped.
func NewColumnMap() ColumnMap {
	return ColumnMap{
		Date:        NotFound,
		Description: NotFound,
		Category:    NotFound,
		Amount:      NotFound,
		Type:        NotFound,
	}
}

// Index returns the column index for f, or NotFound.
func (m ColumnMap) Index(f Field) int {
	switch f {
	case FieldDate:
		return m.Date
	case FieldDescription:
		return m.Description
	case FieldCategory:
		return m.Category
	case FieldAmount:
		return m.Amount
	case FieldType:
		return m.Type
	}
	return NotFound
}

// Has reports whether f is mapped to a column.
func (m ColumnMap) Has(f Field) bool {
	return m.Index(f) != NotFound
}

// With returns a copy of m with f mapped to idx.
func (m ColumnMap) With(f Field, idx int) ColumnMap {
	switch f {
	case FieldDate:
		m.Date = idx
	case FieldDescription:
		m.Description = idx
	case FieldCategory:
		m.Category = idx
	case FieldAmount:
		m.Amount = idx
	case FieldType:
		m.Type = idx
	}
	return m
}

// Detected returns the mapped fields in mapping order.
func (m ColumnMap) Detected() []Field {
	var out []Field
	for _, f := range Fields {
		if m.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
