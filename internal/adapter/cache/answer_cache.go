package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// AnswerCache remembers final answers by question so repeated questions
// skip the full pipeline run. LRU with a TTL; entries are keyed by a
// hash of the normalized question text.
type AnswerCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	answer    string
	timestamp time.Time
}

func NewAnswerCache(maxSize int, ttl time.Duration) *AnswerCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(question string) string {
	hash := sha256.Sum256([]byte(question))
	return hex.EncodeToString(hash[:16])
}

func (c *AnswerCache) Get(question string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(question)
	entry, exists := c.entries[key]
	if !exists {
		return "", false
	}

	if time.Since(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return "", false
	}

	c.moveToEnd(key)
	return entry.answer, true
}

func (c *AnswerCache) Put(question, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(question)

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{answer: answer, timestamp: time.Now()}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{answer: answer, timestamp: time.Now()}
	c.order = append(c.order, key)
}

func (c *AnswerCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *AnswerCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *AnswerCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *AnswerCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
