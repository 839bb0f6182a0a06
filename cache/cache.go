package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskflow/plan"
)

// DefaultMaxEntries bounds the cache; the oldest entry is evicted first
const DefaultMaxEntries = 100

// PlanCache remembers generated plans by their request signature so an
// identical goal/timeframe/start combination skips the LLM entirely.
type PlanCache struct {
	mu      sync.Mutex
	entries map[string]*plan.Plan
	order   []string
	max     int
}

func New(maxEntries int) *PlanCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &PlanCache{
		entries: make(map[string]*plan.Plan),
		max:     maxEntries,
	}
}

// Key derives the cache key from the request parameters
func Key(goal, timeframe, startDate string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%s", goal, timeframe, startDate)))
	return hex.EncodeToString(sum[:])
}

// Get returns a copy of a cached plan under a fresh plan id, so every
// served plan remains individually addressable and mutable.
func (c *PlanCache) Get(key string) (*plan.Plan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	p := cached.Clone()
	p.ID = uuid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, true
}

// Put stores a copy of the plan, evicting the oldest entry when full
func (c *PlanCache) Put(key string, p *plan.Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = p.Clone()
}

// Invalidate drops a single entry, so a deleted plan's request
// signature stops serving stale copies.
func (c *PlanCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Stats reports cache occupancy
func (c *PlanCache) Stats() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]any{
		"cached_plans":   len(c.entries),
		"max_cache_size": c.max,
	}
}
