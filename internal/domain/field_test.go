package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    FieldKind
		value   float64
		numeric bool
		text    string
	}{
		{"numeric", "0.125", FieldNumeric, 0.125, true, "0.125"},
		{"padded numeric", " 2 ", FieldNumeric, 2, true, "2"},
		{"empty", "", FieldMissing, 0, false, ""},
		{"whitespace", "   ", FieldMissing, 0, false, ""},
		{"raw text", "n/a", FieldRaw, 0, false, "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseField(tt.input)
			assert.Equal(t, tt.kind, f.Kind())
			v, ok := f.Float()
			assert.Equal(t, tt.numeric, ok)
			assert.InDelta(t, tt.value, v, 1e-12)
			assert.Equal(t, tt.text, f.Text())
			assert.Equal(t, tt.kind == FieldMissing, f.IsMissing())
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	n := Numeric(1.5)
	v, ok := n.Float()
	assert.True(t, ok)
	assert.InDelta(t, 1.5, v, 1e-12)
	assert.Equal(t, "1.5", n.String())

	r := Raw("pending")
	_, ok = r.Float()
	assert.False(t, ok)
	assert.Equal(t, "pending", r.String())
	assert.Equal(t, "<missing>", Field{}.String())
}
