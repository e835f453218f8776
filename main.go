package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/pricetracker/config"
	"sjsage522/pricetracker/internal/browser"
	"sjsage522/pricetracker/internal/profile"
	"sjsage522/pricetracker/internal/scraper"
	"sjsage522/pricetracker/logger"
	"sjsage522/pricetracker/services/cache"
	"sjsage522/pricetracker/services/publisher"
	"sjsage522/pricetracker/services/worker"

	"github.com/joho/godotenv"
)

const usage = "usage: pricetracker <main-url> [competitor-url...]"

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	job, err := jobFromArgs(os.Args[1:], os.Getenv("PRODUCT_ID"))
	if err != nil {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	registry, err := loadProfiles(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load site profiles")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("profiles", registry.Len()).
		Bool("render_enabled", cfg.RenderEnabled).
		Msg("Starting price tracker")
	if logger.IsDebugEnabled() {
		log.Debug().Strs("domains", registry.Domains()).Msg("Site profiles loaded")
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
			services.CloseBrowser()
		case <-ctx.Done():
		}
	}()

	var renderer scraper.Renderer
	if services.Browser != nil {
		renderer = services.Browser
	}
	s := scraper.New(scraper.OptionsFromConfig(cfg), registry, renderer, services.Cache)
	w := worker.NewWorker(s, services.Publisher, worker.OptionsFromConfig(cfg))

	out := w.Run(ctx, job)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error().Err(err).Msg("Failed to write results")
	}

	log.Info().Msg("Shutting down gracefully...")
}

// jobFromArgs builds the single job described by the command line.
func jobFromArgs(args []string, productID string) (worker.Job, error) {
	if len(args) == 0 {
		return worker.Job{}, fmt.Errorf("missing main url")
	}
	if productID == "" {
		productID = "cli"
	}
	return worker.Job{
		ProductID:      productID,
		MainURL:        args[0],
		CompetitorURLs: args[1:],
	}, nil
}

func loadProfiles(cfg *config.Config) (*profile.Registry, error) {
	if cfg.ProfilesFile == "" {
		return profile.Default(), nil
	}
	return profile.LoadFile(cfg.ProfilesFile)
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Browser   *browser.Manager
}

// CloseBrowser closes the browser session if one was created
func (s *Services) CloseBrowser() {
	if s.Browser != nil {
		s.Browser.Close()
	}
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	s.CloseBrowser()
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices wires the optional backing services. Memcache and
// Redis are skipped with a warning when unreachable.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	if err := cacheService.Ping(); err != nil {
		logger.Warn("Memcache at %s unavailable, host blocking disabled: %v", cfg.MemcacheAddr, err)
	} else {
		services.Cache = cacheService
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	}

	redisPublisher := publisher.NewRedisPublisher(
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	if err := redisPublisher.Ping(ctx); err != nil {
		logger.Warn("Redis at %s unavailable, results will not be published: %v", cfg.RedisAddr, err)
		redisPublisher.Close()
	} else {
		services.Publisher = redisPublisher
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	if cfg.RenderEnabled {
		services.Browser = browser.NewManager(browser.OptionsFromConfig(cfg))
	}

	return services
}
