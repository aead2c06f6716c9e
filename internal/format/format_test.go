package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSignedCurrency(t *testing.T) {
	inr := DefaultCurrency()
	usd := Currency{Symbol: "$", Locale: "en-US", Decimals: 2}

	tests := []struct {
		name string
		v    float64
		c    Currency
		want string
	}{
		{"positive lakh grouping", 125000, inr, "+₹1,25,000.00"},
		{"crore", 12345678.9, inr, "+₹1,23,45,678.90"},
		{"negative", -250.5, inr, "-₹250.50"},
		{"zero has plus", 0, inr, "+₹0.00"},
		{"rounds to zero", -0.001, inr, "+₹0.00"},
		{"half away from zero", -0.125, inr, "-₹0.13"},
		{"western grouping", 1234567.891, usd, "+$1,234,567.89"},
		{"western negative", -1000, usd, "-$1,000.00"},
		{"no decimals", 1999.5, Currency{Symbol: "₹", Locale: IndianLocale}, "+₹2,000"},
		{"non finite", math.NaN(), inr, "+₹0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSignedCurrency(tt.v, tt.c))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₹1,000.00", FormatCurrency(1000, DefaultCurrency()))
	assert.Equal(t, "-₹1,000.00", FormatCurrency(-1000, DefaultCurrency()))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "62.50%", FormatPercent(62.5))
	assert.Equal(t, "+62.50%", FormatSignedPercent(62.5))
	assert.Equal(t, "+0.00%", FormatSignedPercent(0))
	assert.Equal(t, "-3.14%", FormatSignedPercent(-3.14159))
}

func TestFormatRatioAndDays(t *testing.T) {
	assert.Equal(t, "3.00", FormatRatio(3))
	assert.Equal(t, "-0.57", FormatRatio(-0.5678))
	assert.Equal(t, "1.5d", FormatDays(1.5))
}

func TestFormatCompact(t *testing.T) {
	inr := DefaultCurrency()
	assert.Equal(t, "₹1.50 Cr", FormatCompact(15000000, inr))
	assert.Equal(t, "-₹2.50 L", FormatCompact(-250000, inr))
	assert.Equal(t, "₹999.00", FormatCompact(999, inr))

	usd := Currency{Symbol: "$", Locale: "en-US", Decimals: 2}
	assert.Equal(t, "$2.50 M", FormatCompact(2500000, usd))
	assert.Equal(t, "$1.20 K", FormatCompact(1200, usd))
}

func TestFormatCompact_RoundsIntoNextUnit(t *testing.T) {
	inr := DefaultCurrency()
	assert.Equal(t, "₹1.00 Cr", FormatCompact(9_999_999, inr))
	assert.Equal(t, "-₹1.00 Cr", FormatCompact(-9_999_999, inr))
	assert.Equal(t, "₹1.00 L", FormatCompact(99_999.999, inr))
	assert.Equal(t, "₹99.49 L", FormatCompact(9_949_000, inr))

	usd := Currency{Symbol: "$", Locale: "en-US", Decimals: 2}
	assert.Equal(t, "$1.00 M", FormatCompact(999_999, usd))
	assert.Equal(t, "$1.00 B", FormatCompact(999_999_999, usd))
	assert.Equal(t, "$994.90 K", FormatCompact(994_900, usd))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "1,00,000", FormatQuantity(100000, DefaultCurrency()))
	assert.Equal(t, "12.5", FormatQuantity(12.5, DefaultCurrency()))
	assert.Equal(t, "100,000", FormatQuantity(100000, Currency{Locale: "en-US"}))
}

func TestGroupIndian(t *testing.T) {
	assert.Equal(t, "999", GroupIndian("999"))
	assert.Equal(t, "1,000", GroupIndian("1000"))
	assert.Equal(t, "10,00,000", GroupIndian("1000000"))
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, "RELIA...", TruncateString("RELIANCEIND", 8))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
	assert.Equal(t, "₹1  ", PadRight("₹1", 4))
	assert.Equal(t, "  ₹1", PadLeft("₹1", 4))
}
