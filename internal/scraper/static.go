package scraper

import (
	"context"
	"time"

	"sjsage522/pricetracker/helpers"
	"sjsage522/pricetracker/logger"
	"sjsage522/pricetracker/pkg/errors"
	"sjsage522/pricetracker/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// ScrapeStatic fetches url without running scripts. The request is
// bounded by the client timeout and, independently, by RaceTimeout.
func (s *Scraper) ScrapeStatic(ctx context.Context, url string) Result {
	start := time.Now()
	log := logger.ForScraper(string(MethodStatic))
	fail := func(err error) Result {
		log.Warn().Str("url", url).Err(err).Msg("Static fetch failed")
		return Failure(url, MethodStatic, s.opts.DefaultCurrency, err, start)
	}

	host, err := helpers.HostOf(url)
	if err != nil {
		return fail(errors.NewTransport(url, "invalid url", err))
	}
	if s.cache != nil && cache.HostBlocked(s.cache, host) {
		return fail(errors.NewRateLimit(url, s.opts.HostBlockTime))
	}

	log.Debug().Str("url", url).Msg("Fetching page")

	raceCtx, cancel := context.WithTimeout(ctx, s.opts.RaceTimeout)
	defer cancel()

	body, err := helpers.FetchPage(raceCtx, s.client, url)
	if err != nil {
		if se, ok := helpers.AsStatusError(err); ok {
			if se.NotFound() {
				log.Info().Str("url", url).Msg("Server answered 404")
				p, _ := s.registry.Lookup(url)
				return notFoundResult(url, MethodStatic, s.currencyFor(p), start)
			}
			if se.RateLimited() && s.cache != nil && s.opts.HostBlockTime > 0 {
				_ = cache.BlockHost(s.cache, host, s.opts.HostBlockTime)
			}
		}
		return fail(errors.NewTransport(url, "static fetch failed", err))
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return fail(errors.NewTransport(url, "failed to parse page", err))
	}

	return s.evaluate(doc, url, MethodStatic, start)
}
