package cache

import (
	"time"

	"sjsage522/aplusworker/helpers"
)

// CacheService is the cross-run memory of the worker: which image URLs
// have already been published, and which hosts sit in a rate-limit
// backoff window.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// SeenURLKey derives the dedup cache key for an image URL. Keys are
// digest-based so URL length and characters never hit memcache limits.
func SeenURLKey(url string) string {
	return "seen_url:" + helpers.MD5Hex([]byte(url))
}

// RateLimitKey derives the backoff cache key for a host.
func RateLimitKey(host string) string {
	return "rate_limit:" + host
}
