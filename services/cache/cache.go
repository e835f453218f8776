// Package cache holds short-lived shared state for the static fetch tier,
// currently the per-host rate-limit blocks.
package cache

import (
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// CacheService is the key/value store the host blocks live in.
type CacheService interface {
	Get(key string) ([]byte, error)
	// Set stores value for ttl. A zero ttl never expires.
	Set(key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
