package prices

import (
	"sync"
	"time"
)

// Cache manages cached token prices to avoid duplicate API calls. Instances
// are caller-owned and injected; there is no process-wide cache.
type Cache struct {
	mu       sync.RWMutex
	cache    map[string]*cachedPrice
	cacheTTL time.Duration
}

// cachedPrice represents a cached token price with timestamp
type cachedPrice struct {
	price     float64
	timestamp time.Time
}

// NewCache creates a new token price cache
func NewCache(cacheTTL time.Duration) *Cache {
	return &Cache{
		cache:    make(map[string]*cachedPrice),
		cacheTTL: cacheTTL,
	}
}

// Get retrieves a cached price if it's still valid
func (c *Cache) Get(symbol string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, exists := c.cache[symbol]
	if !exists {
		return 0, false
	}

	// Check if cache is still valid
	if time.Since(cached.timestamp) > c.cacheTTL {
		return 0, false
	}

	return cached.price, true
}

// Set stores a price in the cache with current timestamp
func (c *Cache) Set(symbol string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[symbol] = &cachedPrice{
		price:     price,
		timestamp: time.Now(),
	}
}

// Clear removes all cached entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*cachedPrice)
}

// Stats returns the number of cached entries and the TTL
func (c *Cache) Stats() (int, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache), c.cacheTTL
}
