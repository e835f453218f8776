package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNotFound marks a removed or missing product page
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeTransport represents timeouts, connection failures and non-2xx answers
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeRendering represents navigation, page or browser session failures
	ErrorTypeRendering ErrorType = "rendering"
	// ErrorTypeExtraction means the page loaded but no rule yielded a price
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError is a failure while scraping a single URL
type ScrapeError struct {
	Type    ErrorType
	URL     string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.URL, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the rendered tier should be tried
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTransport, ErrorTypeRateLimit, ErrorTypeExtraction:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, url, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		URL:     url,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNotFound creates a new not-found error
func NewNotFound(url string) *ScrapeError {
	return New(ErrorTypeNotFound, url, "Product not found (404)", nil)
}

// NewTransport creates a new transport error
func NewTransport(url, message string, err error) *ScrapeError {
	return New(ErrorTypeTransport, url, message, err)
}

// NewRendering creates a new rendering error
func NewRendering(url, message string, err error) *ScrapeError {
	return New(ErrorTypeRendering, url, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(url string) *ScrapeError {
	return New(ErrorTypeExtraction, url, "no price found on page", nil)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(url string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("host rate limited for %v", duration)
	return New(ErrorTypeRateLimit, url, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the type of the first ScrapeError in err's chain, or ""
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type
	}
	return ""
}
