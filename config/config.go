package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/aplusworker/pkg/errors"
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
	CrawlInterval     time.Duration
	ProductURLs       []string
	CarouselMaxClicks int

	// Live-page backend (rod); static fetch when disabled
	RodEnabled bool
	RodBin     string

	// Storage configuration
	OutputDir     string
	MinImageBytes int

	// Task store configuration
	TaskDBPath string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "60"))
	maxClicks, _ := strconv.Atoi(getEnv("CAROUSEL_MAX_CLICKS", "20"))
	minImageBytes, _ := strconv.Atoi(getEnv("MIN_IMAGE_BYTES", "1000"))

	return &Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "streams:aplus"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: int64(streamMaxLen),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		CrawlInterval:        time.Duration(crawlInterval) * time.Second,
		ProductURLs:          splitURLs(getEnv("PRODUCT_URLS", "")),
		CarouselMaxClicks:    maxClicks,
		RodEnabled:           getEnv("ROD_ENABLED", "false") == "true",
		RodBin:               getEnv("ROD_BROWSER_BIN", ""),
		OutputDir:            getEnv("IMAGE_OUTPUT_DIR", "./output"),
		MinImageBytes:        minImageBytes,
		TaskDBPath:           getEnv("TASK_DB_PATH", "./tasks.db"),
		Environment:          getEnv("APLUS_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if len(c.ProductURLs) == 0 {
		return errors.NewConfiguration("PRODUCT_URLS must list at least one product page URL", nil)
	}
	for _, u := range c.ProductURLs {
		if !strings.HasPrefix(u, "http") {
			return errors.NewConfiguration("product URL must be absolute: "+u, nil)
		}
	}
	if c.RedisStreamCount < 1 {
		return errors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}
	if c.CarouselMaxClicks < 1 {
		return errors.NewConfiguration("CAROUSEL_MAX_CLICKS must be at least 1", nil)
	}
	return nil
}

// splitURLs splits a comma-separated URL list, dropping empty entries
func splitURLs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
