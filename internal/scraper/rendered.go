package scraper

import (
	"context"
	"strings"
	"time"

	"sjsage522/pricetracker/logger"
	"sjsage522/pricetracker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// ScrapeRendered loads url through the renderer and runs the same
// detection and extraction as the static tier on the rendered DOM.
func (s *Scraper) ScrapeRendered(ctx context.Context, url string) Result {
	start := time.Now()
	log := logger.ForScraper(string(MethodRendered))
	fail := func(err error) Result {
		log.Warn().Str("url", url).Err(err).Msg("Rendered fetch failed")
		return Failure(url, MethodRendered, s.opts.DefaultCurrency, err, start)
	}

	if s.renderer == nil {
		return fail(errors.NewRendering(url, "rendering disabled", nil))
	}

	log.Debug().Str("url", url).Msg("Rendering page")

	html, err := s.renderer.Render(ctx, url)
	if err != nil {
		return fail(errors.NewRendering(url, "rendering failed", err))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fail(errors.NewRendering(url, "failed to parse rendered page", err))
	}

	return s.evaluate(doc, url, MethodRendered, start)
}
