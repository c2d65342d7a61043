package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// CacheItem wraps cached data with an expiry.
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// PageCache is a small in-process LRU used for the listing index pages,
// invalidated on every listing mutation.
type PageCache struct {
	lruCache *lru.Cache[string, CacheItem]
}

var cacheInstance *PageCache

// GetCache returns the singleton cache instance.
func GetCache() *PageCache {
	if cacheInstance == nil {
		l, err := lru.New[string, CacheItem](200)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create LRU cache")
		}
		cacheInstance = &PageCache{lruCache: l}
	}
	return cacheInstance
}

// Set stores a value with a TTL.
func (c *PageCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get returns the cached value, or nil when missing or expired.
func (c *PageCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}
	return val.Data
}

// Delete drops one key.
func (c *PageCache) Delete(key string) {
	c.lruCache.Remove(key)
}

// Purge drops the whole cache. Used after mutations that touch an
// unknown set of index pages.
func (c *PageCache) Purge() {
	c.lruCache.Purge()
}
