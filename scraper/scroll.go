package scraper

import (
	"strings"
	"time"
)

// Snapshot is one full capture of the rendered page during a scroll pass.
// Snapshots are ordered and not deduplicated; record-level deduplication by
// URL happens downstream.
type Snapshot struct {
	HTML      string
	CardCount int
	TakenAt   time.Time
}

// StopCondition decides when a scroll-and-collect pass is finished. Done is
// called once per iteration with the count of extractable items in the
// latest snapshot. Implementations carry per-run state; build a fresh one
// per pass.
type StopCondition interface {
	Done(itemCount int) bool
}

// countUnchanged stops once the item count has not grown for stableAfter
// consecutive observations, or after maxIterations regardless. This is the
// "content exhausted" heuristic: lazy loading that yields nothing new N
// times in a row has nothing left to yield.
type countUnchanged struct {
	stableAfter   int
	maxIterations int

	iterations int
	lastCount  int
	stableRuns int
}

// CountUnchanged builds the default stop condition.
func CountUnchanged(stableAfter, maxIterations int) StopCondition {
	if stableAfter < 1 {
		stableAfter = 1
	}
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &countUnchanged{stableAfter: stableAfter, maxIterations: maxIterations}
}

func (c *countUnchanged) Done(itemCount int) bool {
	c.iterations++
	if c.iterations >= c.maxIterations {
		return true
	}
	if itemCount == c.lastCount {
		c.stableRuns++
	} else {
		c.stableRuns = 0
		c.lastCount = itemCount
	}
	return c.stableRuns >= c.stableAfter
}

// countCards gives a cheap extractable-item count for stop decisions
// without running the full parser on every intermediate snapshot.
func countCards(html string) int {
	return strings.Count(html, `data-test="property-card"`)
}
