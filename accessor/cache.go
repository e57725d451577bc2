package accessor

import (
	"sync"
	"sync/atomic"

	"github.com/shibukawa/deepget/explang"
)

// ValidityCache remembers, per canonical path text, whether the path shape
// passed validation. Entries are never evicted: shapes are static call-site
// artifacts and their number is small.
//
// The lock is held around the lookup and around the write, never while the
// checker runs. Concurrent first uses of one shape may run the checker more
// than once; the first recorded outcome wins.
type ValidityCache struct {
	mu      sync.Mutex
	entries map[string]bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// DefaultCache is the process-wide cache used by accessors that are not
// given one explicitly. It starts empty.
var DefaultCache = NewValidityCache()

// NewValidityCache creates an empty cache.
func NewValidityCache() *ValidityCache {
	return &ValidityCache{entries: make(map[string]bool)}
}

// CheckOrFail validates key once. A known-valid key returns nil at once; a
// known-invalid key fails with ErrPreviouslyInvalid without running check;
// an unseen key runs check, records whether it succeeded and returns its error.
func (c *ValidityCache) CheckOrFail(key string, check func() error) error {
	c.mu.Lock()
	valid, known := c.entries[key]
	c.mu.Unlock()

	if known {
		c.hits.Add(1)

		if !valid {
			return &explang.ParseError{
				Kind:    explang.ErrPreviouslyInvalid,
				Message: explang.MessagePreviouslyInvalid,
				Expr:    key,
			}
		}

		return nil
	}

	c.misses.Add(1)

	err := check()

	c.mu.Lock()
	if _, raced := c.entries[key]; !raced {
		c.entries[key] = err == nil
	}
	c.mu.Unlock()

	return err
}

// Lookup reports the recorded outcome for key.
func (c *ValidityCache) Lookup(key string) (valid, known bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	valid, known = c.entries[key]

	return valid, known
}

// Len returns the number of recorded shapes.
func (c *ValidityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Reset forgets every recorded shape and zeroes the counters.
func (c *ValidityCache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]bool)
	c.mu.Unlock()

	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns a snapshot of the counters.
func (c *ValidityCache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.Len(),
	}
}
