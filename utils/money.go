package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatMXN formats an amount rounded to whole pesos with es-MX grouping, like "12,500".
// A nil amount formats as "0".
func FormatMXN(amount *float64) string {
	if amount == nil {
		return "0"
	}
	return FormatMXNDecimal(decimal.NewFromFloat(*amount))
}

// FormatMXNDecimal formats a decimal amount rounded to whole pesos with es-MX grouping
func FormatMXNDecimal(amount decimal.Decimal) string {
	return groupThousands(amount.Round(0).String(), ',')
}

// FormatMXNCents formats an amount with two decimals and es-MX grouping, like "$12,500.50".
// Used by the authorization tables.
func FormatMXNCents(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	whole := d.Truncate(0)
	cents := d.Sub(whole).Abs().Mul(hundred).IntPart()
	sign := ""
	if d.IsNegative() {
		sign = "-"
		whole = whole.Abs()
	}
	return sign + "$" + groupThousands(whole.String(), ',') + "." + leftPad2(cents)
}

// FormatPercentage formats a fraction (0.1234) as "12.34%". A nil value formats as "0.00%".
func FormatPercentage(value *float64) string {
	if value == nil {
		return "0.00%"
	}
	return decimal.NewFromFloat(*value).Mul(hundred).StringFixed(2) + "%"
}

// FormatPercent formats a value that is already a percentage (20.5) as "20.50%"
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}

// groupThousands renders an integer string with sep every three digits from the right
func groupThousands(s string, sep byte) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if s == "0" {
		neg = false
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 1)
	if neg {
		b.WriteByte('-')
	}
	if len(s) <= 3 {
		b.WriteString(s)
		return b.String()
	}

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(sep)
		b.WriteString(s[i : i+3])
	}

	return b.String()
}

func leftPad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
