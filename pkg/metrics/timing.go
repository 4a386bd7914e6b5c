// Package metrics provides in-process instrumentation for overlay composition.
//
//   - Timing metrics for the hot paths (composition, focus traversal,
//     heatmap decoration)
//   - Render cache hit/miss tracking for host sessions
//
// Counters are atomics and safe for concurrent use. Collection is on by
// default and switched off with CONSTELLATION_METRICS=0. Collect returns a
// snapshot a host can show in its developer console.
//
//	func ComposeRenderable(g *model.Graph, s *overlay.State) RenderModel {
//	    defer metrics.Timer(metrics.Compose)()
//	    // ...
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("CONSTELLATION_METRICS") != "0")
}

// Enabled reports whether metrics are being collected.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled switches collection on or off.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric accumulates durations of one named operation.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	// min is 0 until the first sample.
	min atomic.Int64
	max atomic.Int64
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	casWhile(&m.max, ns, func(cur int64) bool { return ns > cur })
	casWhile(&m.min, ns, func(cur int64) bool { return cur == 0 || ns < cur })
}

// casWhile stores v into a for as long as replace accepts the current value.
func casWhile(a *atomic.Int64, v int64, replace func(cur int64) bool) {
	for {
		cur := a.Load()
		if !replace(cur) || a.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Reset drops every sample.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.min.Store(0)
	m.max.Store(0)
}

// TimingStats is a point-in-time view of a TimingMetric. Durations are in
// milliseconds.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
	MaxMs   float64 `json:"max_ms"`
}

// Stats snapshots the metric.
func (m *TimingMetric) Stats() TimingStats {
	s := TimingStats{
		Name:    m.name,
		Count:   m.count.Load(),
		TotalMs: nsToMs(m.total.Load()),
		MinMs:   nsToMs(m.min.Load()),
		MaxMs:   nsToMs(m.max.Load()),
	}
	if s.Count > 0 {
		s.AvgMs = s.TotalMs / float64(s.Count)
	}
	return s
}

func nsToMs(ns int64) float64 {
	return float64(ns) / float64(time.Millisecond)
}

// Timer starts timing m and returns the function that stops it.
func Timer(m *TimingMetric) func() {
	return TimerWithCallback(m, nil)
}

// TimerWithCallback is Timer that also hands the measured duration to cb.
// Nothing is measured, and cb is not called, while collection is off.
func TimerWithCallback(m *TimingMetric, cb func(time.Duration)) func() {
	if m == nil || !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		m.Record(d)
		if cb != nil {
			cb(d)
		}
	}
}

// Timing metrics for the composition pipeline.
var (
	Compose         = newTimingMetric("compose")
	FocusTraversal  = newTimingMetric("focus_traversal")
	HeatmapDecorate = newTimingMetric("heatmap_decorate")
)

// AllTimingMetrics lists the registered timing metrics.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{Compose, FocusTraversal, HeatmapDecorate}
}

// AllTimingStats returns stats for the timing metrics that have samples.
func AllTimingStats() []TimingStats {
	var out []TimingStats
	for _, m := range AllTimingMetrics() {
		if s := m.Stats(); s.Count > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Snapshot is everything collected so far.
type Snapshot struct {
	Timings []TimingStats `json:"timings"`
	Caches  []CacheStats  `json:"caches"`
}

// Collect snapshots every registered metric.
func Collect() Snapshot {
	snap := Snapshot{Timings: AllTimingStats()}
	for _, c := range AllCacheMetrics() {
		snap.Caches = append(snap.Caches, c.Stats())
	}
	return snap
}

// ResetAll resets all timing and cache metrics.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
	for _, c := range AllCacheMetrics() {
		c.Reset()
	}
}
