package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMonto(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"850", "850", true},
		{" 850,50 ", "850.5", true},
		{"1200.75abc", "1200.75", true},
		{".5", "0.5", true},
		{"1,200,5", "1.2", true},
		{"abc", "0", false},
		{"", "0", false},
		{"1e9999", "1", true},
		{"2.5E3", "2.5", true},
		{"999999999999999", "999999999999999", true},
		{"1000000000000000", "0", false},
		{"0000000000000000042", "42", true},
		{"1." + strings.Repeat("9", 5000), "1.999999", true},
	}
	for _, tt := range tests {
		got, ok := ParseMonto(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got.String(), tt.raw)
	}
}

func TestDigitCount(t *testing.T) {
	assert.Equal(t, 0, DigitCount(""))
	assert.Equal(t, 2, DigitCount("8,5"))
	assert.Equal(t, 4, DigitCount("1.250"))
}

func TestParseCantidad(t *testing.T) {
	assert.Equal(t, 1, ParseCantidad(""))
	assert.Equal(t, 1, ParseCantidad("0"))
	assert.Equal(t, 1, ParseCantidad("-3"))
	assert.Equal(t, 3, ParseCantidad("3"))
	assert.Equal(t, 3, ParseCantidad("2.6"))
	assert.Equal(t, 12, ParseCantidad("12 piezas"))
	assert.Equal(t, 1, ParseCantidad("1e300"))
	assert.Equal(t, MaxCantidad, ParseCantidad("99999999999999999999999"))
}

func TestNormalizeSKU(t *testing.T) {
	assert.Equal(t, "ABC-123", NormalizeSKU("  abc-123 "))
}
