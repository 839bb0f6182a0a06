package metrics

import (
	"math"
	"sync"
	"time"
)

// Collector gathers request, LLM and cache counters for /api/metrics.
// It keeps only aggregates, never individual requests.
type Collector struct {
	mu sync.Mutex

	totalRequests int
	totalErrors   int
	totalDuration time.Duration

	endpoints map[string]*endpointStats

	llmCalls  int
	llmTokens int

	cacheHits   int
	cacheMisses int
}

type endpointStats struct {
	Count         int
	Errors        int
	TotalDuration time.Duration
}

func NewCollector() *Collector {
	return &Collector{endpoints: make(map[string]*endpointStats)}
}

// RecordRequest tallies one handled HTTP request. Statuses >= 400 count
// as errors.
func (c *Collector) RecordRequest(endpoint string, status int, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests++
	c.totalDuration += duration
	if status >= 400 {
		c.totalErrors++
	}

	ep, ok := c.endpoints[endpoint]
	if !ok {
		ep = &endpointStats{}
		c.endpoints[endpoint] = ep
	}
	ep.Count++
	ep.TotalDuration += duration
	if status >= 400 {
		ep.Errors++
	}
}

// RecordLLMCall tallies one model invocation and its token usage
func (c *Collector) RecordLLMCall(tokens int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmCalls++
	c.llmTokens += tokens
}

func (c *Collector) RecordCacheHit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheHits++
}

func (c *Collector) RecordCacheMiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheMisses++
}

// Stats returns the aggregate snapshot served by /api/metrics
func (c *Collector) Stats() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	errorRate := 0.0
	avgMs := 0.0
	if c.totalRequests > 0 {
		errorRate = float64(c.totalErrors) / float64(c.totalRequests) * 100
		avgMs = float64(c.totalDuration.Milliseconds()) / float64(c.totalRequests)
	}

	cacheTotal := c.cacheHits + c.cacheMisses
	cacheRate := 0.0
	if cacheTotal > 0 {
		cacheRate = float64(c.cacheHits) / float64(cacheTotal) * 100
	}

	perEndpoint := make(map[string]any, len(c.endpoints))
	for path, ep := range c.endpoints {
		epAvg := 0.0
		if ep.Count > 0 {
			epAvg = float64(ep.TotalDuration.Milliseconds()) / float64(ep.Count)
		}
		perEndpoint[path] = map[string]any{
			"count":                ep.Count,
			"errors":               ep.Errors,
			"avg_response_time_ms": round2(epAvg),
		}
	}

	return map[string]any{
		"total_requests":       c.totalRequests,
		"total_errors":         c.totalErrors,
		"error_rate":           round2(errorRate),
		"avg_response_time_ms": round2(avgMs),
		"llm_calls":            c.llmCalls,
		"llm_tokens_used":      c.llmTokens,
		"cache_hit_rate":       round2(cacheRate),
		"cache_hits":           c.cacheHits,
		"cache_misses":         c.cacheMisses,
		"endpoint_stats":       perEndpoint,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
