package metrics

import "sync/atomic"

// CacheMetric counts hits and misses for a named cache.
type CacheMetric struct {
	name   string
	hits   atomic.Int64
	misses atomic.Int64
}

func newCacheMetric(name string) *CacheMetric {
	return &CacheMetric{name: name}
}

// Hit records a cache hit.
func (c *CacheMetric) Hit() {
	if Enabled() {
		c.hits.Add(1)
	}
}

// Miss records a cache miss.
func (c *CacheMetric) Miss() {
	if Enabled() {
		c.misses.Add(1)
	}
}

// Hits returns the number of recorded hits.
func (c *CacheMetric) Hits() int64 { return c.hits.Load() }

// Misses returns the number of recorded misses.
func (c *CacheMetric) Misses() int64 { return c.misses.Load() }

// Reset clears the counters.
func (c *CacheMetric) Reset() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// CacheStats is a point-in-time view of a CacheMetric.
type CacheStats struct {
	Name    string  `json:"name"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Stats snapshots the counters. HitRate is 0 before any lookup.
func (c *CacheMetric) Stats() CacheStats {
	s := CacheStats{Name: c.name, Hits: c.Hits(), Misses: c.Misses()}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// RenderCache tracks session render-model reuse across revisions.
var RenderCache = newCacheMetric("render_cache")

// AllCacheMetrics lists the registered cache metrics.
func AllCacheMetrics() []*CacheMetric {
	return []*CacheMetric{RenderCache}
}
