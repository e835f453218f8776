// Package scraper picks the fetch tier for a product URL: a fast static
// fetch first and a rendered fetch through the shared browser when the
// static attempt does not produce a price.
package scraper

import (
	"context"
	"net/http"
	"time"

	"sjsage522/pricetracker/config"
	"sjsage522/pricetracker/helpers"
	"sjsage522/pricetracker/internal/extract"
	"sjsage522/pricetracker/internal/profile"
	"sjsage522/pricetracker/logger"
	"sjsage522/pricetracker/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// Renderer returns the script-rendered HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Options configures the fetch tiers.
type Options struct {
	StaticTimeout   time.Duration
	RaceTimeout     time.Duration
	MaxRedirects    int
	HostBlockTime   time.Duration
	DefaultCurrency string
}

// OptionsFromConfig maps the application config onto scraper options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		StaticTimeout:   cfg.StaticTimeout,
		RaceTimeout:     cfg.StaticRaceTimeout,
		MaxRedirects:    cfg.MaxRedirects,
		HostBlockTime:   cfg.HostBlockTime,
		DefaultCurrency: cfg.DefaultCurrency,
	}
}

// Scraper extracts prices from product pages.
type Scraper struct {
	opts     Options
	client   *http.Client
	registry *profile.Registry
	renderer Renderer
	cache    cache.CacheService
}

// New creates a Scraper. A nil renderer disables the rendered tier and a
// nil cache disables host blocking.
func New(opts Options, registry *profile.Registry, renderer Renderer, c cache.CacheService) *Scraper {
	if opts.StaticTimeout <= 0 {
		opts.StaticTimeout = 20 * time.Second
	}
	if opts.RaceTimeout <= 0 {
		opts.RaceTimeout = opts.StaticTimeout + 5*time.Second
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "TL"
	}
	if registry == nil {
		registry = profile.Default()
	}
	return &Scraper{
		opts:     opts,
		client:   helpers.NewClient(opts.StaticTimeout, opts.MaxRedirects),
		registry: registry,
		renderer: renderer,
		cache:    c,
	}
}

// Scrape returns the first tier result that succeeds. A static failure
// that is not retryable, such as a not-found page, is final; otherwise
// the rendered tier's outcome is returned.
func (s *Scraper) Scrape(ctx context.Context, url string) Result {
	static := s.ScrapeStatic(ctx, url)
	if !static.Retryable() || s.renderer == nil {
		return static
	}

	logger.ForScraper("static").Debug().
		Str("url", url).
		Str("reason", static.Error).
		Msg("Static tier failed, trying rendered tier")
	return s.ScrapeRendered(ctx, url)
}

// evaluate runs not-found detection and the extraction chain on a
// loaded document.
func (s *Scraper) evaluate(doc *goquery.Document, url string, method Method, start time.Time) Result {
	log := logger.ForScraper(string(method))

	p, _ := s.registry.Lookup(url)
	currency := s.currencyFor(p)

	if extract.DocumentNotFound(doc) {
		log.Info().Str("url", url).Msg("Page reports product not found")
		return notFoundResult(url, method, currency, start)
	}

	title := extract.PageTitle(doc)
	if title == "" {
		title = titleFallback
	}

	value, tag, ok := extract.Extract(doc, p)
	if !ok {
		log.Warn().Str("url", url).Msg("No price found on page")
		r := Failure(url, method, currency, errNoPrice(url), start)
		r.Title = title
		return r
	}

	r := Result{
		URL:              url,
		Title:            title,
		Price:            &value,
		Currency:         currency,
		Success:          true,
		Method:           method,
		ExtractionMethod: tag,
		DurationMs:       time.Since(start).Milliseconds(),
	}
	log.Info().
		Str("url", url).
		Float64("price", value).
		Str("extractionMethod", tag).
		Int64("durationMs", r.DurationMs).
		Msg("Price extracted")
	return r
}

func (s *Scraper) currencyFor(p *profile.SiteProfile) string {
	if p != nil && p.Currency != "" {
		return p.Currency
	}
	return s.opts.DefaultCurrency
}
