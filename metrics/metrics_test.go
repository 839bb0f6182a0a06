package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RequestStats(t *testing.T) {
	c := NewCollector()
	c.RecordRequest("GET /api/plans", 200, 100*time.Millisecond)
	c.RecordRequest("GET /api/plans", 200, 300*time.Millisecond)
	c.RecordRequest("POST /api/plans", 500, 200*time.Millisecond)

	stats := c.Stats()
	assert.Equal(t, 3, stats["total_requests"])
	assert.Equal(t, 1, stats["total_errors"])
	assert.InDelta(t, 33.33, stats["error_rate"].(float64), 0.01)
	assert.InDelta(t, 200.0, stats["avg_response_time_ms"].(float64), 0.01)

	endpoints := stats["endpoint_stats"].(map[string]any)
	require.Contains(t, endpoints, "GET /api/plans")
	ep := endpoints["GET /api/plans"].(map[string]any)
	assert.Equal(t, 2, ep["count"])
	assert.Equal(t, 0, ep["errors"])
	assert.InDelta(t, 200.0, ep["avg_response_time_ms"].(float64), 0.01)
}

func TestCollector_LLMAndCache(t *testing.T) {
	c := NewCollector()
	c.RecordLLMCall(100)
	c.RecordLLMCall(50)
	c.RecordCacheHit()
	c.RecordCacheHit()
	c.RecordCacheHit()
	c.RecordCacheMiss()

	stats := c.Stats()
	assert.Equal(t, 2, stats["llm_calls"])
	assert.Equal(t, 150, stats["llm_tokens_used"])
	assert.Equal(t, 3, stats["cache_hits"])
	assert.Equal(t, 1, stats["cache_misses"])
	assert.Equal(t, 75.0, stats["cache_hit_rate"])
}

func TestCollector_EmptyStats(t *testing.T) {
	stats := NewCollector().Stats()
	assert.Equal(t, 0, stats["total_requests"])
	assert.Equal(t, 0.0, stats["error_rate"])
	assert.Equal(t, 0.0, stats["cache_hit_rate"])
}
