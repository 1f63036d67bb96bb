package api

import (
	"strings"

	"github.com/trailtracker/trailtracker/internal/analytics"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

// summaryKeySep separates the parts of a cache key.
const summaryKeySep = "\x00"

func summaryKey(username, sortBy, filterValue string) string {
	return username + summaryKeySep + sortBy + summaryKeySep + filterValue
}

func (c *Controller) recordCache(result string) {
	if c.metrics != nil {
		c.metrics.Analytics.RecordCacheOperation(result)
	}
}

// cachedSummary looks up a previously computed summary.
func (c *Controller) cachedSummary(username, sortBy, filterValue string) (analytics.Summary, bool) {
	if c.summaryCache == nil {
		return analytics.Summary{}, false
	}
	if v, ok := c.summaryCache.Get(summaryKey(username, sortBy, filterValue)); ok {
		if summary, ok := v.(analytics.Summary); ok {
			c.recordCache(metrics.CacheHit)
			return summary, true
		}
	}
	c.recordCache(metrics.CacheMiss)
	return analytics.Summary{}, false
}

// summaryGeneration returns the current write generation of username. It must
// be read before the snapshot the summary is computed from.
func (c *Controller) summaryGeneration(username string) uint64 {
	if c.summaryCache == nil {
		return 0
	}
	c.summaryMu.Lock()
	defer c.summaryMu.Unlock()
	return c.summaryGen[username]
}

// storeSummary caches summary unless username's pins or uploads changed after
// generation gen was read.
func (c *Controller) storeSummary(username, sortBy, filterValue string, gen uint64, summary analytics.Summary) bool {
	if c.summaryCache == nil {
		return false
	}
	c.summaryMu.Lock()
	defer c.summaryMu.Unlock()
	if c.summaryGen[username] != gen {
		return false
	}
	c.summaryCache.SetDefault(summaryKey(username, sortBy, filterValue), summary)
	return true
}

// invalidateSummaries drops every cached summary of username. Called after any
// write to the user's pins or uploads.
func (c *Controller) invalidateSummaries(username string) {
	if c.summaryCache == nil {
		return
	}

	c.summaryMu.Lock()
	c.summaryGen[username]++
	c.summaryMu.Unlock()

	prefix := username + summaryKeySep
	removed := false
	for key := range c.summaryCache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.summaryCache.Delete(key)
			removed = true
		}
	}
	if removed {
		c.recordCache(metrics.CacheInvalidate)
	}
}
