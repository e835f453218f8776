package cache

import (
	"errors"
	"strconv"
	"time"

	"sjsage522/pricetracker/logger"
)

const hostBlockPrefix = "blocked:"

// BlockHost marks host as rate limited for d. Static fetches to a
// blocked host are skipped until the entry expires.
func BlockHost(c CacheService, host string, d time.Duration) error {
	until := time.Now().Add(d).Unix()
	if err := c.Set(hostBlockPrefix+host, []byte(strconv.FormatInt(until, 10)), d); err != nil {
		logger.ForCache().Warn().Err(err).Str("host", host).Msg("Failed to store host block")
		return err
	}
	logger.ForCache().Info().Str("host", host).Dur("for", d).Msg("Host blocked")
	return nil
}

// HostBlocked reports whether host is currently blocked. Cache errors
// other than a miss are logged and treated as not blocked.
func HostBlocked(c CacheService, host string) bool {
	value, err := c.Get(hostBlockPrefix + host)
	if errors.Is(err, ErrMiss) {
		return false
	}
	if err != nil {
		logger.ForCache().Debug().Err(err).Str("host", host).Msg("Host block lookup failed")
		return false
	}

	// Memcache expiry is second-granular; the stored deadline is authoritative.
	until, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return true
	}
	if time.Now().Unix() < until {
		return true
	}
	if err := UnblockHost(c, host); err != nil {
		logger.ForCache().Debug().Err(err).Str("host", host).Msg("Failed to clear expired host block")
	}
	return false
}

// UnblockHost removes a host block.
func UnblockHost(c CacheService, host string) error {
	return c.Delete(hostBlockPrefix + host)
}
