package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// numericPrefix matches the leading plain decimal number of an input. Exponents are not read.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)

const (
	// MaxMontoDigits bounds the integer digits of a typed amount
	MaxMontoDigits = 15
	// maxMontoDecimals is how many fractional digits of a typed amount are kept
	maxMontoDecimals = 6
	// MaxCantidad caps a typed quantity
	MaxCantidad = 1_000_000_000
)

// NormalizeMonto trims a typed amount and accepts a comma as decimal separator.
// Only the first comma is replaced.
func NormalizeMonto(raw string) string {
	return strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
}

// ParseMonto reads the leading number of a typed amount.
// ok is false when the input has no numeric prefix or its integer part is longer than MaxMontoDigits.
func ParseMonto(raw string) (decimal.Decimal, bool) {
	prefix := numericPrefix.FindString(NormalizeMonto(raw))
	if prefix == "" || integerDigits(prefix) > MaxMontoDigits {
		return decimal.Zero, false
	}
	if whole, frac, ok := strings.Cut(prefix, "."); ok && len(frac) > maxMontoDecimals {
		prefix = whole + "." + frac[:maxMontoDecimals]
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// integerDigits counts the digits before the decimal point, ignoring leading zeros
func integerDigits(number string) int {
	whole, _, _ := strings.Cut(strings.TrimLeft(number, "+-"), ".")
	return len(strings.TrimLeft(whole, "0"))
}

// DigitCount counts the decimal digits in raw
func DigitCount(raw string) int {
	n := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// ParseCantidad parses a quantity input; anything unparsable or below 1 becomes 1
func ParseCantidad(raw string) int {
	prefix := numericPrefix.FindString(strings.TrimSpace(raw))
	if prefix == "" {
		return 1
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 1
	}
	if f >= MaxCantidad {
		return MaxCantidad
	}
	qty := int(f + 0.5)
	if qty < 1 {
		return 1
	}
	return qty
}

// NormalizeSKU normalizes a SKU for catalog lookups
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
