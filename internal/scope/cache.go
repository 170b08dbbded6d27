package scope

import (
	"sync"
	"time"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

type cacheEntry struct {
	departments []domain.Department
	expiresAt   time.Time
}

// ttlCache là cache phạm vi phòng ban theo resolver, có hạn dùng. Mutex là
// bắt buộc: resolver được gọi đồng thời từ nhiều request HTTP.
type ttlCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) ([]domain.Department, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.departments, true
}

func (c *ttlCache) put(key string, departments []domain.Department) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		departments: departments,
		expiresAt:   time.Now().Add(c.ttl),
	}
}

func (c *ttlCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
