package config

import (
	"os"
	"strconv"
	"time"

	"sjsage522/pricetracker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int64

	// Memcache configuration
	MemcacheAddr string

	// Extraction configuration
	ProfilesFile    string
	DefaultCurrency string

	// Static tier
	StaticTimeout     time.Duration
	StaticRaceTimeout time.Duration
	MaxRedirects      int
	HostBlockTime     time.Duration

	// Rendered tier
	RenderEnabled        bool
	BrowserBin           string
	BrowserStealth       bool
	BrowserPoolSize      int
	NavigationTimeout    time.Duration
	NavigationRetries    int
	NavigationRetryDelay time.Duration
	SettleDelay          time.Duration
	SnapshotTimeout      time.Duration
	PageCloseTimeout     time.Duration
	BrowserCloseTimeout  time.Duration
	BrowserLaunchTimeout time.Duration

	// Batch orchestration
	BatchSize  int
	BatchDelay time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "price_results"),
		RedisStreamCount:     getInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: int64(getInt("REDIS_STREAM_MAX_LENGTH", 10000)),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		ProfilesFile:         getEnv("SITE_PROFILES_FILE", ""),
		DefaultCurrency:      getEnv("DEFAULT_CURRENCY", "TL"),
		StaticTimeout:        getSeconds("HTTP_TIMEOUT_SECONDS", 20),
		StaticRaceTimeout:    getSeconds("HTTP_RACE_TIMEOUT_SECONDS", 25),
		MaxRedirects:         getInt("HTTP_MAX_REDIRECTS", 3),
		HostBlockTime:        getSeconds("HOST_BLOCK_SECONDS", 300),
		RenderEnabled:        getBool("RENDER_ENABLED", true),
		BrowserBin:           getEnv("BROWSER_BIN", ""),
		BrowserStealth:       getBool("BROWSER_STEALTH", false),
		BrowserPoolSize:      getInt("BROWSER_POOL_SIZE", 3),
		NavigationTimeout:    getSeconds("NAVIGATION_TIMEOUT_SECONDS", 20),
		NavigationRetries:    getInt("NAVIGATION_RETRIES", 3),
		NavigationRetryDelay: getMillis("NAVIGATION_RETRY_DELAY_MS", 2000),
		SettleDelay:          getMillis("RENDER_SETTLE_DELAY_MS", 2000),
		SnapshotTimeout:      getSeconds("RENDER_SNAPSHOT_TIMEOUT_SECONDS", 10),
		PageCloseTimeout:     getSeconds("PAGE_CLOSE_TIMEOUT_SECONDS", 5),
		BrowserCloseTimeout:  getSeconds("BROWSER_CLOSE_TIMEOUT_SECONDS", 10),
		BrowserLaunchTimeout: getSeconds("BROWSER_LAUNCH_TIMEOUT_SECONDS", 60),
		BatchSize:            getInt("BATCH_SIZE", 2),
		BatchDelay:           getMillis("BATCH_DELAY_MS", 1000),
		Environment:          getEnv("PRICE_ENVIRONMENT", "development"),
	}
}

// Validate checks the values LoadConfig could not reject on its own
func (c *Config) Validate() error {
	timeouts := map[string]time.Duration{
		"HTTP_TIMEOUT_SECONDS":            c.StaticTimeout,
		"HTTP_RACE_TIMEOUT_SECONDS":       c.StaticRaceTimeout,
		"NAVIGATION_TIMEOUT_SECONDS":      c.NavigationTimeout,
		"RENDER_SNAPSHOT_TIMEOUT_SECONDS": c.SnapshotTimeout,
		"PAGE_CLOSE_TIMEOUT_SECONDS":      c.PageCloseTimeout,
		"BROWSER_CLOSE_TIMEOUT_SECONDS":   c.BrowserCloseTimeout,
		"BROWSER_LAUNCH_TIMEOUT_SECONDS":  c.BrowserLaunchTimeout,
	}
	for key, d := range timeouts {
		if d <= 0 {
			return errors.NewConfiguration(key+" must be positive", nil)
		}
	}
	if c.BatchSize < 1 {
		return errors.NewConfiguration("BATCH_SIZE must be at least 1", nil)
	}
	if c.NavigationRetries < 1 {
		return errors.NewConfiguration("NAVIGATION_RETRIES must be at least 1", nil)
	}
	if c.MaxRedirects < 0 {
		return errors.NewConfiguration("HTTP_MAX_REDIRECTS must not be negative", nil)
	}
	if c.RedisStream == "" {
		return errors.NewConfiguration("REDIS_STREAM must not be empty", nil)
	}
	if c.RedisStreamCount < 1 {
		return errors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return b
}

func getSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getInt(key, defaultValue)) * time.Second
}

func getMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getInt(key, defaultValue)) * time.Millisecond
}
