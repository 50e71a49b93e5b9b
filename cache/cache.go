// Package cache provides translation caching implementations.
package cache

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false
	// if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache.
	Set(key string, value string) error

	// GetOrCompute returns the cached value for key, computing and
	// storing it on a miss. Concurrent calls for the same key share a
	// single computation.
	GetOrCompute(key string, compute func() (string, error)) (string, error)
}
