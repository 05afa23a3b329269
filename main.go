package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"sjsage522/aplusworker/config"
	"sjsage522/aplusworker/helpers"
	"sjsage522/aplusworker/internal"
	"sjsage522/aplusworker/internal/dom"
	"sjsage522/aplusworker/internal/extractor"
	"sjsage522/aplusworker/logger"
	"sjsage522/aplusworker/services/cache"
	"sjsage522/aplusworker/services/publisher"
	"sjsage522/aplusworker/services/storage"
	"sjsage522/aplusworker/services/tasks"
	"sjsage522/aplusworker/services/worker"
)

const (
	errorLogFile    = "error.log"
	pageLoadTimeout = 30 * time.Second

	taskRetentionDays   = 30
	taskCleanupInterval = 24 * time.Hour
)

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

	log.Info().
		Str("environment", cfg.Environment).
		Dur("crawl_interval", cfg.CrawlInterval).
		Int("product_urls", len(cfg.ProductURLs)).
		Bool("rod_enabled", cfg.RodEnabled).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// Create extractors
	extractors := extractor.CreateExtractors(cfg)
	if len(extractors) == 0 {
		log.Fatal().Msg("No extractors were created")
	}

	// Pick the document backend
	opener, err := services.documentOpener(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize document backend")
	}

	deps := internal.Dependencies{
		Cache:     services.Cache,
		Publisher: services.Publisher,
		Storage:   services.Storage,
		Tasks:     services.Tasks,
	}

	// Clean up old task rows on startup and then daily
	go cleanupTasks(ctx, services.Tasks)

	// Create and start worker
	w := worker.NewWorker(
		ctx,
		extractors,
		deps,
		helpers.NewLogger(errorLogFile),
		cfg.ProductURLs,
		cfg.CrawlInterval,
		opener,
	)

	// Start worker in a goroutine
	workerDone := make(chan struct{})
	go func() {
		log.Info().Msg("Starting A+ content worker")
		w.Start()
		close(workerDone)
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case <-workerDone:
		log.Info().Msg("Worker exited")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// cleanupTasks prunes old task rows once at startup and then daily.
func cleanupTasks(ctx context.Context, store tasks.Store) {
	if _, err := store.CleanupOlderThan(ctx, taskRetentionDays); err != nil {
		logger.Error("Task cleanup failed: %v", err)
	}

	ticker := time.NewTicker(taskCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := store.CleanupOlderThan(ctx, taskRetentionDays); err != nil {
				logger.Error("Task cleanup failed: %v", err)
			}
		}
	}
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Storage   storage.Saver
	Tasks     tasks.Store

	db      *sqlx.DB
	browser *dom.Browser
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
}

// documentOpener picks the live backend when rod is enabled, otherwise
// the static fetch backend.
func (s *Services) documentOpener(cfg *config.Config) (worker.SessionOpener, error) {
	if !cfg.RodEnabled {
		return worker.StaticOpener(), nil
	}

	browser, err := dom.NewBrowser(cfg.RodBin)
	if err != nil {
		return nil, err
	}
	s.browser = browser

	logger.Info("Headless browser ready")
	return worker.BrowserOpener(browser, pageLoadTimeout), nil
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Initialize cache service
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	if cacheService == nil {
		return nil, fmt.Errorf("failed to create cache service")
	}
	services.Cache = cacheService

	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize publisher
	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	if redisPublisher == nil {
		return nil, fmt.Errorf("failed to create redis publisher")
	}
	services.Publisher = redisPublisher

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	// Initialize image storage
	services.Storage = storage.NewFileSaver(cfg.OutputDir, cfg.MinImageBytes)

	// Initialize task store
	db, err := sqlx.Connect("sqlite3", cfg.TaskDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open task database: %w", err)
	}
	services.db = db

	store := tasks.NewSQLStore(db)
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	services.Tasks = store

	logger.Info("Task store ready at %s", cfg.TaskDBPath)

	return services, nil
}
