// Package format renders amounts, percentages and ratios for display.
// All functions are pure; locale and currency are passed explicitly.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// IndianLocale selects lakh/crore digit grouping.
const IndianLocale = "en-IN"

// Currency describes how monetary amounts are rendered.
type Currency struct {
	Symbol   string `mapstructure:"symbol" json:"symbol" yaml:"symbol"`
	Locale   string `mapstructure:"locale" json:"locale" yaml:"locale"`
	Decimals int    `mapstructure:"decimals" json:"decimals" yaml:"decimals"`
}

// DefaultCurrency is Indian rupees with two decimals.
func DefaultCurrency() Currency {
	return Currency{Symbol: "₹", Locale: IndianLocale, Decimals: 2}
}

func (c Currency) decimals() int32 {
	if c.Decimals < 0 {
		return 0
	}
	return int32(c.Decimals)
}

func (c Currency) indian() bool {
	return c.Locale == "" || strings.EqualFold(c.Locale, IndianLocale)
}

// round rounds half away from zero to the configured decimals.
func round(v float64, places int32) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(places)
}

// FormatSignedCurrency always prefixes a sign, then the symbol, then the
// grouped absolute value: +₹1,25,000.00 or -₹250.50.
// Amounts that round to zero are shown with "+".
func FormatSignedCurrency(v float64, c Currency) string {
	d := round(v, c.decimals())
	sign := "+"
	if d.Sign() < 0 {
		sign = "-"
	}
	return sign + c.Symbol + groupAbs(d, c)
}

// FormatCurrency is FormatSignedCurrency without the "+" for non-negative amounts.
func FormatCurrency(v float64, c Currency) string {
	d := round(v, c.decimals())
	if d.Sign() < 0 {
		return "-" + c.Symbol + groupAbs(d, c)
	}
	return c.Symbol + groupAbs(d, c)
}

func groupAbs(d decimal.Decimal, c Currency) string {
	places := c.decimals()
	abs := d.Abs()
	if !c.indian() {
		f, _ := abs.Float64()
		p := message.NewPrinter(language.Make(c.Locale))
		return p.Sprint(number.Decimal(f, number.Scale(int(places))))
	}

	str := abs.StringFixed(places)
	intPart, decPart, _ := strings.Cut(str, ".")
	if places == 0 {
		return GroupIndian(intPart)
	}
	return GroupIndian(intPart) + "." + decPart
}

// GroupIndian formats an integer string in the Indian numbering system.
// Indian system: 1,00,00,000 (1 crore) vs Western: 10,000,000
func GroupIndian(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	// First group of 3 from right (hundreds)
	result := s[n-3:]
	s = s[:n-3]

	// Then groups of 2 (thousands, lakhs, crores)
	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}

	return result
}

// FormatPercent formats a value that is already multiplied by 100.
func FormatPercent(v float64) string {
	return round(v, 2).StringFixed(2) + "%"
}

// FormatSignedPercent is FormatPercent with an explicit sign, "+" for values >= 0.
func FormatSignedPercent(v float64) string {
	d := round(v, 2)
	if d.Sign() < 0 {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}

// FormatRatio formats a dimensionless ratio with two decimals.
func FormatRatio(v float64) string {
	return round(v, 2).StringFixed(2)
}

// FormatDays formats a duration measured in days.
func FormatDays(v float64) string {
	return fmt.Sprintf("%sd", round(v, 1).StringFixed(1))
}

// FormatCompact abbreviates large amounts: L/Cr for the Indian locale,
// K/M/B otherwise. Smaller amounts fall back to FormatCurrency.
func FormatCompact(v float64, c Currency) string {
	abs := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}

	type unit struct {
		size   float64
		suffix string
	}
	units := []unit{{1e9, "B"}, {1e6, "M"}, {1e3, "K"}}
	if c.indian() {
		units = []unit{{1e7, "Cr"}, {1e5, "L"}}
	}

	// Units are picked on the rounded value so 9,999,999 reads 1.00 Cr, not 100.00 L.
	one := decimal.NewFromInt(1)
	for _, u := range units {
		if scaled := round(abs/u.size, 2); scaled.GreaterThanOrEqual(one) {
			return fmt.Sprintf("%s%s%s %s", sign, c.Symbol, scaled.StringFixed(2), u.suffix)
		}
	}
	return FormatCurrency(v, c)
}

// FormatQuantity formats a share quantity, dropping a zero fraction.
func FormatQuantity(q float64, c Currency) string {
	d := round(q, 4)
	if d.Equal(d.Truncate(0)) {
		if c.indian() {
			s := d.Abs().StringFixed(0)
			if d.Sign() < 0 {
				return "-" + GroupIndian(s)
			}
			return GroupIndian(s)
		}
		return message.NewPrinter(language.Make(c.Locale)).Sprint(number.Decimal(d.IntPart()))
	}
	return d.String()
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// PadRight pads a string to the right.
func PadRight(s string, length int) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

// PadLeft pads a string to the left.
func PadLeft(s string, length int) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return strings.Repeat(" ", length-n) + s
}
