package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sjsage522/pricetracker/config"
	"sjsage522/pricetracker/internal/scraper"
	"sjsage522/pricetracker/logger"
	"sjsage522/pricetracker/services/publisher"

	"golang.org/x/sync/errgroup"
)

// Scraper extracts one URL. *scraper.Scraper satisfies it.
type Scraper interface {
	Scrape(ctx context.Context, url string) scraper.Result
}

// Options configures batching.
type Options struct {
	BatchSize       int
	BatchDelay      time.Duration
	DefaultCurrency string
}

// OptionsFromConfig maps the application config onto worker options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BatchSize:       cfg.BatchSize,
		BatchDelay:      cfg.BatchDelay,
		DefaultCurrency: cfg.DefaultCurrency,
	}
}

// Job is one product: its own listing plus competitor listings.
type Job struct {
	ProductID      string   `json:"productId"`
	MainURL        string   `json:"mainUrl"`
	CompetitorURLs []string `json:"competitorUrls"`
}

// URLs returns the main URL followed by the competitor URLs.
func (j Job) URLs() []string {
	urls := make([]string, 0, 1+len(j.CompetitorURLs))
	if j.MainURL != "" {
		urls = append(urls, j.MainURL)
	}
	return append(urls, j.CompetitorURLs...)
}

// JobResult holds the results of one job in URL order.
type JobResult struct {
	ProductID string           `json:"productId"`
	Results   []scraper.Result `json:"results"`
}

// Worker handles the scraping and publishing process
type Worker struct {
	scraper   Scraper
	publisher publisher.Publisher
	opts      Options
}

// NewWorker creates a new worker. pub may be nil to skip publishing.
func NewWorker(s Scraper, pub publisher.Publisher, opts Options) *Worker {
	if opts.BatchSize < 1 {
		opts.BatchSize = 2
	}
	return &Worker{
		scraper:   s,
		publisher: pub,
		opts:      opts,
	}
}

// ScrapeAll scrapes urls in windows of BatchSize. URLs inside a window
// run concurrently and the next window opens only after every one has
// settled. The result at index i always belongs to urls[i].
func (w *Worker) ScrapeAll(ctx context.Context, urls []string) []scraper.Result {
	log := logger.ForWorker()
	results := make([]scraper.Result, len(urls))

	for start := 0; start < len(urls); start += w.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			for i := start; i < len(urls); i++ {
				results[i] = w.failure(urls[i], err)
			}
			log.Warn().Err(err).Int("skipped", len(urls)-start).Msg("Batch cancelled")
			break
		}

		end := min(start+w.opts.BatchSize, len(urls))
		log.Debug().Int("from", start).Int("to", end).Int("total", len(urls)).Msg("Processing window")

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i] = w.scrapeOne(ctx, urls[i])
				return nil
			})
		}
		_ = g.Wait()

		if end < len(urls) && w.opts.BatchDelay > 0 {
			t := time.NewTimer(w.opts.BatchDelay)
			select {
			case <-ctx.Done():
			case <-t.C:
			}
			t.Stop()
		}
	}
	return results
}

// scrapeOne keeps a panicking fetch from taking down its window.
func (w *Worker) scrapeOne(ctx context.Context, url string) (result scraper.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.ForWorker().Error().Str("url", url).Interface("panic", r).Msg("Recovered from panic while scraping")
			result = w.failure(url, fmt.Errorf("panic: %v", r))
		}
	}()
	return w.scraper.Scrape(ctx, url)
}

func (w *Worker) failure(url string, err error) scraper.Result {
	return scraper.Failure(url, scraper.MethodStatic, w.opts.DefaultCurrency, err, time.Now())
}

// Run scrapes every job, publishes each result under
// "<productID>_<url>" and trims the streams afterwards.
func (w *Worker) Run(ctx context.Context, jobs ...Job) []JobResult {
	start := time.Now()
	out := make([]JobResult, 0, len(jobs))

	for _, job := range jobs {
		results := w.ScrapeAll(ctx, job.URLs())
		w.publish(ctx, job, results)
		out = append(out, JobResult{ProductID: job.ProductID, Results: results})
	}

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(ctx); err != nil {
			logger.ForWorker().Warn().Err(err).Msg("Failed to trim streams")
		}
	}

	logger.ForWorker().Info().Int("jobs", len(jobs)).Dur("elapsed", time.Since(start)).Msg("Run finished")
	return out
}

func (w *Worker) publish(ctx context.Context, job Job, results []scraper.Result) {
	if w.publisher == nil {
		return
	}
	log := logger.ForWorker().WithField("productId", job.ProductID)

	for _, r := range results {
		data, err := json.Marshal(r)
		if err != nil {
			log.Error().Err(err).Str("url", r.URL).Msg("Failed to encode result")
			continue
		}
		if err := w.publisher.Publish(ctx, job.ProductID+"_"+r.URL, data); err != nil {
			log.Error().Err(err).Str("url", r.URL).Msg("Failed to publish result")
		}
	}
}
