package price

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
	}{
		{"26.145,24", 26145.24},
		{"26,145.24", 26145.24},
		{"483,12", 483.12},
		{"1234", 1234},
		{"26.145,24 ₺", 26145.24},
		{"₺1.299,00", 1299},
		{"1.299 TL", 1299},
		{"$19.99", 19.99},
		{"€ 49,90", 49.9},
		{"26.145", 26145},
		{"26,145", 26145},
		{"1,234,567.50", 1234567.5},
		{"Fiyat: 750 TL", 750},
		{"  89  ", 89},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := Parse(tc.input)
			assert.True(t, ok, "expected a price for %q", tc.input)
			assert.InDelta(t, tc.expected, got, 0.0001)
		})
	}
}

func TestParseRejects(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"no digits", "Sepete ekle"},
		{"malformed grouping", "1.234.567.890"},
		{"large ungrouped integer", "123456789"},
		{"large dotted integer", "1.234.567"},
		{"zero", "0,00"},
		{"above maximum", "12.345.678,90"},
		{"currency only", "₺ TL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := Parse(tc.input)
			assert.False(t, ok, "expected no price for %q", tc.input)
		})
	}
}

func TestParseStaysInRange(t *testing.T) {
	inputs := []string{
		"9.999.999,99", "10.000.001", "99999", "100001", "0", "0.5", "999,999.99",
		"1,5", "3 adet 2.499,90 TL", "kod 4404", "25.000.000,00", "-45",
	}

	for _, input := range inputs {
		got, ok := Parse(input)
		if !ok {
			continue
		}
		assert.Greater(t, got, 0.0, "input %q", input)
		assert.LessOrEqual(t, got, float64(MaxPrice), "input %q", input)
	}
}

func TestParseAcceptsGroupedMillions(t *testing.T) {
	got, ok := Parse("1.234.567,89")
	assert.True(t, ok)
	assert.InDelta(t, 1234567.89, got, 0.0001)
}

func TestParseDoesNotSplitDigitRuns(t *testing.T) {
	// Neither "2345,67" nor the bare "12345" is a faithful reading.
	for _, input := range []string{"12345,67", "12345,67 TL", "₺99999,5"} {
		_, ok := Parse(input)
		assert.False(t, ok, "expected no price for %q", input)
	}
}

func TestParseIntegerFallback(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
	}{
		{"1299.", 1299},
		{"Stok: 12 adet", 12},
		{"fiyat 4500, kargo dahil", 4500},
		{"(750)", 750},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := Parse(tc.input)
			assert.True(t, ok)
			assert.InDelta(t, tc.expected, got, 0.0001)
		})
	}
}

func TestHasCurrencyMarker(t *testing.T) {
	assert.True(t, HasCurrencyMarker("1.299 TL"))
	assert.True(t, HasCurrencyMarker("₺49"))
	assert.True(t, HasCurrencyMarker("$5"))
	assert.False(t, HasCurrencyMarker("1.299"))
}

func TestHasSeparatedDigits(t *testing.T) {
	assert.True(t, HasSeparatedDigits("1.299"))
	assert.True(t, HasSeparatedDigits("49,90"))
	assert.False(t, HasSeparatedDigits("1299"))
	assert.False(t, HasSeparatedDigits("a.b"))
}
