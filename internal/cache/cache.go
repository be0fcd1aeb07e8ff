package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultTTL applies when Set is called with a non-positive TTL.
const DefaultTTL = 10 * time.Minute

type entry struct {
	value     any
	createdAt time.Time
	expiresAt time.Time
}

// ResultCache maps a deterministic fingerprint of (operation, parameters) to
// a previously computed result. Expiry is checked lazily on read and by the
// periodic sweep; entries are independent so a single RWMutex suffices.
// The cache carries no size bound: entries self-expire.
type ResultCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	logger     *slog.Logger

	now func() time.Time
}

// New builds a cache; ttl <= 0 selects the default.
func New(defaultTTL time.Duration, logger *slog.Logger) *ResultCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &ResultCache{
		entries:    map[string]entry{},
		defaultTTL: defaultTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Fingerprint derives the cache key for an operation and its parameters.
// Keys are sorted before hashing so identical parameter sets in any argument
// order produce the same fingerprint.
func Fingerprint(operation string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(operation)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached value for the fingerprint. An entry past its expiry
// is evicted on read and reported absent, independent of the periodic sweep.
func (c *ResultCache) Get(fingerprint string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[fingerprint]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have renewed it.
		if current, still := c.entries[fingerprint]; still && c.now().After(current.expiresAt) {
			delete(c.entries, fingerprint)
		}
		c.mu.Unlock()
		c.debug("cache expired", "fingerprint", fingerprint)
		return nil, false
	}

	c.debug("cache hit", "fingerprint", fingerprint)
	return e.value, true
}

// Set stores the value under the fingerprint; ttl <= 0 selects the default.
func (c *ResultCache) Set(fingerprint string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	now := c.now()
	c.mu.Lock()
	c.entries[fingerprint] = entry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()

	c.debug("cache set", "fingerprint", fingerprint, "ttl", ttl)
}

// Delete removes the entry if present.
func (c *ResultCache) Delete(fingerprint string) {
	c.mu.Lock()
	delete(c.entries, fingerprint)
	c.mu.Unlock()
}

// SweepExpired removes all entries past expiry and reports how many were
// evicted. It is idempotent and safe to call concurrently with Get/Set.
func (c *ResultCache) SweepExpired() int {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for fp, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, fp)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.debug("cache sweep", "removed", removed)
	}
	return removed
}

// Len reports the current entry count, expired or not.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ResultCache) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
