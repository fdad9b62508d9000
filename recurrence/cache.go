package recurrence

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"
)

// CacheEntry represents a cached expansion
type CacheEntry struct {
	Occurrences []time.Time
	ExpiresAt   time.Time
	accessSeq   uint64
}

// RecurrenceCache memoizes rule expansions
type RecurrenceCache struct {
	entries         map[string]*CacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
	seq             uint64
}

// CacheConfig holds configuration for the recurrence cache
type CacheConfig struct {
	TTL             time.Duration // How long entries stay valid
	MaxEntries      int           // Maximum number of entries before eviction
	CleanupInterval time.Duration // How often to run cleanup, zero disables the loop
}

// DefaultCacheConfig provides sensible defaults for recurrence caching
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewRecurrenceCache creates a new recurrence cache with the given configuration
func NewRecurrenceCache(config CacheConfig) *RecurrenceCache {
	cache := &RecurrenceCache{
		entries:         make(map[string]*CacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	if cache.cleanupInterval > 0 {
		go cache.cleanupLoop()
	}

	return cache
}

// generateCacheKey hashes every field that influences an expansion
func (c *RecurrenceCache) generateCacheKey(rule Rule, limit int) string {
	hasher := sha256.New()

	// Zones sharing an offset at DTSTART can still diverge after a DST change
	writeTime := func(t time.Time) {
		hasher.Write([]byte(t.Format(time.RFC3339Nano)))
		hasher.Write([]byte{0})
		hasher.Write([]byte(t.Location().String()))
		hasher.Write([]byte{0})
	}

	hasher.Write([]byte(strconv.Itoa(limit)))
	hasher.Write([]byte{0})
	hasher.Write([]byte(rule.RRule))
	hasher.Write([]byte{0})
	writeTime(rule.DTStart)
	writeTime(rule.From)
	writeTime(rule.Until)

	hasher.Write([]byte("RDATE"))
	for _, rdate := range rule.RDates {
		writeTime(rdate)
	}
	hasher.Write([]byte("EXDATE"))
	for _, exdate := range rule.ExDates {
		writeTime(exdate)
	}
	hasher.Write([]byte("EXDAY"))
	for _, exday := range rule.ExDays {
		writeTime(exday)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get retrieves a cached expansion if it exists and hasn't expired
func (c *RecurrenceCache) Get(rule Rule, limit int) ([]time.Time, bool) {
	key := c.generateCacheKey(rule, limit)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	c.seq++
	entry.accessSeq = c.seq
	return slices.Clone(entry.Occurrences), true
}

// Set stores an expansion in the cache
func (c *RecurrenceCache) Set(rule Rule, limit int, occurrences []time.Time) {
	key := c.generateCacheKey(rule, limit)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.seq++
	c.entries[key] = &CacheEntry{
		Occurrences: slices.Clone(occurrences),
		ExpiresAt:   time.Now().Add(c.ttl),
		accessSeq:   c.seq,
	}

	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries, then the least recently used ones while
// over the limit. Callers hold the write lock.
func (c *RecurrenceCache) cleanup() {
	now := time.Now()

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		sa, sb := c.entries[a].accessSeq, c.entries[b].accessSeq
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	})

	for _, key := range keys[:len(c.entries)-c.maxEntries] {
		delete(c.entries, key)
	}
}

// cleanupLoop runs periodic cleanup
func (c *RecurrenceCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache
func (c *RecurrenceCache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
	c.mutex.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mutex.Unlock()
}

// Stats returns cache statistics
func (c *RecurrenceCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entryCount := len(c.entries)
	expiredCount := 0
	now := time.Now()

	for _, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			expiredCount++
		}
	}

	return CacheStats{
		TotalEntries:   entryCount,
		ExpiredEntries: expiredCount,
		ActiveEntries:  entryCount - expiredCount,
	}
}

// CacheStats provides information about cache usage
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}
