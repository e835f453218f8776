package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"sjsage522/pricetracker/internal/price"
	"sjsage522/pricetracker/logger"

	"github.com/PuerkitoBio/goquery"
)

// Priority buckets for heuristic candidates.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

const (
	maxCandidateText  = 200
	maxSourceText     = 100
	minCandidatePrice = 1
	maxCandidatePrice = 1_000_000
)

// priceSelector is the union of class and attribute names shops
// conventionally put on price containers.
var priceSelector = strings.Join([]string{
	".price", ".product-price", ".current-price", ".sale-price",
	".fiyat", ".tutar", ".amount", ".cost", ".value",
	"[data-price]", ".money", ".currency",
	".product-amount", ".final-price", ".selling-price",
	".price-current", ".price-item", ".price-wrapper",
	".price-item--regular", ".price-item--last",
	".price-item--sale", ".price__sale", ".price__container",
	"span[data-product-price]", "[data-product-price]",
}, ", ")

// blocklist drops promotional, loyalty, installment and script-ish text
// that tends to carry plausible numbers.
var blocklist = compileAll(
	`kargo.*bedava`, `ücretsiz.*kargo`, `free.*shipping`,
	`kazanmanıza.*kaldı`, `kazan`, `earn`,
	`kupon.*kod`, `coupon.*code`,
	`puan.*kazan`, `bonus.*point`,
	`taksit.*sayısı`, `aylık.*ödeme`,
	`komisyon.*oranı`, `fee.*rate`,
	`window\.`, `function`, `script`, `style`,
	`\.css`, `\.js`, `src=`, `href=`,
	`@media`, `font-family`, `color:`,
	`performance.*mark`, `console\.`,
	`googletagmanager`, `analytics`, `tracking`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Candidate is one price-looking element found on a page.
type Candidate struct {
	Price      float64
	SourceText string
	CSSContext string
	Priority   string
}

// FindPrice scans the whole document for a price without any site
// knowledge.
func FindPrice(doc *goquery.Document) (float64, bool) {
	candidates := Candidates(doc)
	value, ok := SelectPrice(candidates)
	if ok {
		logger.Debug("Heuristic finder picked %.2f from %d candidates", value, len(candidates))
	}
	return value, ok
}

// Candidates collects price candidates in document order. Elements with
// conventional price markers come first; only when none qualify is
// every element carrying a currency marker or separated digits scanned.
func Candidates(doc *goquery.Document) []Candidate {
	var out []Candidate

	doc.Find(priceSelector).Each(func(_ int, s *goquery.Selection) {
		if c, ok := candidateFrom(s, PriorityHigh); ok {
			out = append(out, c)
		}
	})
	if len(out) > 0 {
		return out
	}

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !price.HasCurrencyMarker(text) && !price.HasSeparatedDigits(text) {
			return
		}
		if c, ok := candidateFrom(s, PriorityNormal); ok {
			out = append(out, c)
		}
	})
	return out
}

func candidateFrom(s *goquery.Selection, priority string) (Candidate, bool) {
	text := strings.TrimSpace(s.Text())
	if utf8.RuneCountInString(text) > maxCandidateText {
		return Candidate{}, false
	}

	value, ok := price.Parse(text)
	if !ok || value < minCandidatePrice || value > maxCandidatePrice {
		return Candidate{}, false
	}

	inner, _ := s.Html()
	if blocked(text) || blocked(inner) {
		return Candidate{}, false
	}

	return Candidate{
		Price:      value,
		SourceText: truncate(text, maxSourceText),
		CSSContext: cssContext(s),
		Priority:   priority,
	}, true
}

func blocked(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range blocklist {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func cssContext(s *goquery.Selection) string {
	tag := goquery.NodeName(s)
	if class, ok := s.Attr("class"); ok && class != "" {
		return tag + "." + strings.Join(strings.Fields(class), ".")
	}
	return tag
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// SelectPrice picks a value from candidates: the first high priority
// candidate, else the most frequent value if it repeats, else the
// largest value.
func SelectPrice(candidates []Candidate) (float64, bool) {
	if len(candidates) == 0 {
		return 0, false
	}

	for _, c := range candidates {
		if c.Priority == PriorityHigh {
			return c.Price, true
		}
	}

	counts := make(map[float64]int, len(candidates))
	for _, c := range candidates {
		counts[c.Price]++
	}
	var best float64
	bestCount := 0
	for _, c := range candidates {
		// Strictly greater keeps the earliest value on ties.
		if counts[c.Price] > bestCount {
			best, bestCount = c.Price, counts[c.Price]
		}
	}
	if bestCount > 1 {
		return best, true
	}

	highest := candidates[0].Price
	for _, c := range candidates[1:] {
		if c.Price > highest {
			highest = c.Price
		}
	}
	return highest, true
}
