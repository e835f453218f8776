// Package price turns the free-form price text found on product pages
// into a number. Both fetch tiers call Parse; nothing else in the
// module interprets price strings.
package price

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxPrice is the largest value Parse will ever return.
	MaxPrice = 10_000_000

	// maxUngroupedInteger rejects long digit runs without a comma, which
	// are almost always ids, stock counts or raw attributes.
	maxUngroupedInteger = 100_000
)

var (
	currencyGlyphs = strings.NewReplacer("₺", "", "$", "", "€", "", "£", "")
	currencyWords  = regexp.MustCompile(`(?i)TL|TRY|USD|EUR`)

	// Ordered most specific first. Each pattern is fenced so a match can
	// neither start nor end inside a longer digit run.
	pricePatterns = []*regexp.Regexp{
		// 26.145,24
		regexp.MustCompile(`(?:^|[^\d.,])(\d{1,3}(?:\.\d{3})+,\d{1,2})(?:\D|$)`),
		// 26,145.24
		regexp.MustCompile(`(?:^|[^\d.,])(\d{1,3}(?:,\d{3})+\.\d{1,2})(?:\D|$)`),
		// 483,12 or 19.99
		regexp.MustCompile(`(?:^|[^\d.,])(\d{1,4}[.,]\d{1,2})(?:\D|$)`),
		// 26.145 or 26,145
		regexp.MustCompile(`(?:^|[^\d.,])(\d{1,3}(?:[.,]\d{3})+)(?:\D|$)`),
		// 1234, but not the whole part of 12345,67
		regexp.MustCompile(`(?:^|[^\d.,])(\d+)(?:$|[^\d.,]|[.,](?:$|\D))`),
	}

	separatedDigits = regexp.MustCompile(`\d+[.,]\d+`)
)

// Parse extracts a price from text such as "26.145,24 TL", "$26,145.24"
// or "483,12". It returns false when the text holds no usable price or
// when a numeric-safety guard rejects it.
func Parse(text string) (float64, bool) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return 0, false
	}
	clean = currencyGlyphs.Replace(clean)
	clean = strings.TrimSpace(currencyWords.ReplaceAllString(clean, ""))

	if strings.Count(clean, ".") > 2 {
		return 0, false
	}
	if !strings.Contains(clean, ",") {
		if n, ok := leadingInteger(strings.ReplaceAll(clean, ".", "")); ok && n > maxUngroupedInteger {
			return 0, false
		}
	}

	for _, pattern := range pricePatterns {
		m := pattern.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(normalize(m[1]), 64)
		if err != nil || value <= 0 || value > MaxPrice {
			return 0, false
		}
		return value, true
	}
	return 0, false
}

// normalize rewrites a matched token into a form strconv understands.
func normalize(token string) string {
	hasDot := strings.Contains(token, ".")
	hasComma := strings.Contains(token, ",")

	switch {
	case hasDot && hasComma:
		decimal, grouping := ",", "."
		if strings.LastIndex(token, ".") > strings.LastIndex(token, ",") {
			decimal, grouping = ".", ","
		}
		cut := strings.LastIndex(token, decimal)
		whole, frac := token[:cut], token[cut+1:]
		if len(frac) <= 2 {
			return strings.ReplaceAll(whole, grouping, "") + "." + frac
		}
		return strings.NewReplacer(".", "", ",", "").Replace(token)
	case hasComma:
		return singleSeparator(token, ",")
	case hasDot:
		return singleSeparator(token, ".")
	}
	return token
}

func singleSeparator(token, sep string) string {
	parts := strings.Split(token, sep)
	if len(parts) == 2 && len(parts[1]) <= 2 && len(parts[0]) <= 4 {
		return parts[0] + "." + parts[1]
	}
	return strings.ReplaceAll(token, sep, "")
}

// leadingInteger reads the digit run at the start of s, ignoring
// leading whitespace and an optional sign.
func leadingInteger(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\r\n+-")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// Overflow means the number is far beyond any guard.
		return maxUngroupedInteger + 1, true
	}
	return n, true
}

// HasCurrencyMarker reports whether text carries a currency glyph or a
// lira abbreviation.
func HasCurrencyMarker(text string) bool {
	return strings.ContainsAny(text, "₺$€£") ||
		strings.Contains(text, "TL") ||
		strings.Contains(text, "tl")
}

// HasSeparatedDigits reports whether text contains digits split by a
// dot or comma, e.g. "1.299" or "49,90".
func HasSeparatedDigits(text string) bool {
	return separatedDigits.MatchString(text)
}
