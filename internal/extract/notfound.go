package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const unreachablePhrase = "Aradığınız içeriğe şu an ulaşılamıyor"

var (
	notFoundTitleMarkers = []string{"404", "not found", "bulunamadı"}
	notFoundBodyMarkers  = []string{"ürün bulunamadı", "sayfa bulunamadı"}
)

// IsNotFound reports whether a page with the given title and body text
// is a removed or missing product page.
func IsNotFound(title, body string) bool {
	if strings.Contains(title, unreachablePhrase) || strings.Contains(body, unreachablePhrase) {
		return true
	}

	lowerTitle := strings.ToLower(title)
	for _, marker := range notFoundTitleMarkers {
		if strings.Contains(lowerTitle, marker) {
			return true
		}
	}

	lowerBody := strings.ToLower(body)
	for _, marker := range notFoundBodyMarkers {
		if strings.Contains(lowerBody, marker) {
			return true
		}
	}
	return false
}

// DocumentNotFound applies IsNotFound to a parsed page.
func DocumentNotFound(doc *goquery.Document) bool {
	return IsNotFound(doc.Find("title").First().Text(), doc.Find("body").Text())
}

// PageTitle returns the trimmed <title>, else the first <h1>, else "".
func PageTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
