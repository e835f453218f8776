package scraper

import (
	stderrors "errors"
	"time"

	"sjsage522/pricetracker/pkg/errors"
)

// Method names the fetch tier that produced a result.
type Method string

const (
	MethodStatic   Method = "static"
	MethodRendered Method = "rendered"
)

const (
	titleFallback = "Product title not found"
	titleNotFound = "Product not found"
)

// Result is the outcome of extracting one URL. Price is set only when
// Success is true; NotFound implies neither.
type Result struct {
	URL              string           `json:"url"`
	Title            string           `json:"title"`
	Price            *float64         `json:"price"`
	Currency         string           `json:"currency"`
	Success          bool             `json:"success"`
	Method           Method           `json:"method"`
	ExtractionMethod string           `json:"extractionMethod,omitempty"`
	NotFound         bool             `json:"notFound"`
	Error            string           `json:"error,omitempty"`
	ErrorType        errors.ErrorType `json:"errorType,omitempty"`
	DurationMs       int64            `json:"durationMs"`

	cause *errors.ScrapeError
}

// Retryable reports whether the next fetch tier may still succeed where
// this one failed.
func (r Result) Retryable() bool {
	return !r.Success && r.cause != nil && r.cause.IsRetryable()
}

// Failure builds an unsuccessful result carrying err's message and type.
func Failure(url string, method Method, currency string, err error, start time.Time) Result {
	r := Result{
		URL:        url,
		Title:      titleFallback,
		Currency:   currency,
		Method:     method,
		Error:      Describe(err),
		ErrorType:  errors.TypeOf(err),
		DurationMs: time.Since(start).Milliseconds(),
	}
	stderrors.As(err, &r.cause)
	return r
}

func notFoundResult(url string, method Method, currency string, start time.Time) Result {
	cause := errors.NewNotFound(url)
	return Result{
		URL:        url,
		Title:      titleNotFound,
		Currency:   currency,
		Method:     method,
		NotFound:   true,
		Error:      cause.Message,
		ErrorType:  cause.Type,
		DurationMs: time.Since(start).Milliseconds(),
		cause:      cause,
	}
}

func errNoPrice(url string) error {
	return errors.NewExtraction(url)
}

// Describe renders err for Result.Error without the type and URL prefix
// that ScrapeError.Error adds.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var se *errors.ScrapeError
	if stderrors.As(err, &se) {
		if se.Err != nil {
			return se.Message + ": " + se.Err.Error()
		}
		return se.Message
	}
	return err.Error()
}
