package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain name untouched", input: "Herzl", want: "Herzl"},
		{name: "double quotes dropped", input: `ממ"ד`, want: "ממד"},
		{name: "gershayim dropped", input: "ממ״ד", want: "ממד"},
		{name: "geresh dropped", input: "ז׳בוטינסקי", want: "זבוטינסקי"},
		{name: "apostrophe dropped", input: "ז'בוטינסקי", want: "זבוטינסקי"},
		{name: "whitespace collapsed", input: "  שדרות   רוטשילד ", want: "שדרות רוטשילד"},
		{name: "niqqud stripped", input: "שָׁלוֹם", want: "שלום"},
		{name: "case preserved", input: "King George", want: "King George"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestStripHouseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no number", input: "הרצל", want: "הרצל"},
		{name: "trailing number", input: "הרצל 12", want: "הרצל"},
		{name: "multiple trailing numbers", input: "הרצל 12 3", want: "הרצל"},
		{name: "embedded number kept", input: "כ״ט בנובמבר 5", want: "כ״ט בנובמבר"},
		{name: "only numbers left alone", input: "12 34", want: "12 34"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHouseNumber(tt.input))
		})
	}
}
