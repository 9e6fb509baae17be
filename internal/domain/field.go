package domain

import (
	"strconv"
	"strings"
)

// FieldKind tags the content of an optional column.
type FieldKind int

const (
	FieldMissing FieldKind = iota
	FieldNumeric
	FieldRaw
)

// Field holds an optional trailing column: absent, numeric, or present but
// not parseable as a number (kept verbatim).
type Field struct {
	kind FieldKind
	num  float64
	raw  string
}

// Numeric returns a numeric field.
func Numeric(v float64) Field { return Field{kind: FieldNumeric, num: v, raw: strconv.FormatFloat(v, 'g', -1, 64)} }

// Raw returns a field holding unparsed text.
func Raw(s string) Field { return Field{kind: FieldRaw, raw: s} }

// ParseField classifies a column value. It never fails: empty input is
// missing, numeric input is numeric, anything else is raw text.
func ParseField(s string) Field {
	s = strings.TrimSpace(s)
	if s == "" {
		return Field{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Raw(s)
	}
	return Field{kind: FieldNumeric, num: v, raw: s}
}

// Kind returns the field's tag.
func (f Field) Kind() FieldKind { return f.kind }

// IsMissing reports whether the column was absent or empty.
func (f Field) IsMissing() bool { return f.kind == FieldMissing }

// Float returns the numeric value and whether the field is numeric.
func (f Field) Float() (float64, bool) {
	return f.num, f.kind == FieldNumeric
}

// Text returns the column as it appeared in the source.
func (f Field) Text() string { return f.raw }

func (f Field) String() string {
	switch f.kind {
	case FieldMissing:
		return "<missing>"
	default:
		return f.raw
	}
}
