// Package extract pulls a price out of a loaded product page, first with
// the site's profile rules and then with a generic heuristic scan.
package extract

import (
	"strings"

	"sjsage522/pricetracker/internal/price"
	"sjsage522/pricetracker/internal/profile"
	"sjsage522/pricetracker/logger"

	"github.com/PuerkitoBio/goquery"
)

// MethodSmartFinder tags prices found by the heuristic finder.
const MethodSmartFinder = "smart-price-finder"

// Extract runs the strategy chain against doc and returns the price and
// a tag naming the rule that produced it. p may be nil.
//
// Order: data attributes, primary selectors, hidden inputs, alternative
// selectors, then the heuristic finder. The first hit wins.
func Extract(doc *goquery.Document, p *profile.SiteProfile) (float64, string, bool) {
	if p != nil {
		if v, method, ok := fromProfile(doc, p); ok {
			logger.Debug("Profile %s matched via %s: %.2f", p.Domain, method, v)
			return v, method, true
		}
		logger.Debug("Profile %s rules missed, falling back to heuristic finder", p.Domain)
	}

	if v, ok := FindPrice(doc); ok {
		return v, MethodSmartFinder, true
	}
	return 0, "", false
}

func fromProfile(doc *goquery.Document, p *profile.SiteProfile) (float64, string, bool) {
	for _, attr := range p.DataAttributes {
		el := doc.Find("[" + attr + "]").First()
		if el.Length() == 0 {
			continue
		}
		if raw, _ := el.Attr(attr); raw != "" {
			if v, ok := price.Parse(raw); ok {
				return v, "data-attribute: " + attr, true
			}
		}
	}

	if v, sel, ok := firstText(doc, p.Primary); ok {
		return v, "primary-selector: " + sel, true
	}

	for _, sel := range p.HiddenInputs {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if raw, _ := el.Attr("value"); raw != "" {
			if v, ok := price.Parse(raw); ok {
				return v, "hidden-input: " + sel, true
			}
		}
	}

	if v, sel, ok := firstText(doc, p.Alternative); ok {
		return v, "alternative-selector: " + sel, true
	}
	return 0, "", false
}

// firstText parses the text of the first element matched by each
// selector in turn.
func firstText(doc *goquery.Document, selectors []string) (float64, string, bool) {
	for _, sel := range selectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if v, ok := price.Parse(strings.TrimSpace(el.Text())); ok {
			return v, sel, true
		}
	}
	return 0, "", false
}
