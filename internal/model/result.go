package model

import (
	"sort"
	"time"
)

// CrawlResult is the aggregated outcome of a single crawl invocation.
// It is produced once by the scheduler and read by the corpus writer,
// the report writers, and the database layer.
type CrawlResult struct {
	// BaseDomain is the host all fetched URLs resolved to.
	BaseDomain string `json:"base_domain"`

	// Pages contains every page that produced extracted text, in
	// completion order. Completion order is not deterministic across
	// runs because it depends on concurrent fetch timing.
	Pages []PageResult `json:"pages"`

	// Visited contains every URL that was dispatched to a worker at
	// least once, including pages that later failed or were skipped.
	Visited []string `json:"visited"`

	// Errors contains one human-readable line per failed or skipped
	// URL. Per-URL failures never abort a crawl.
	Errors []string `json:"errors,omitempty"`

	// StartedAt and Duration bound the crawl run.
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// SortedVisited returns the visited URLs in lexical order.
// The returned slice is a copy; the receiver is not modified.
func (r *CrawlResult) SortedVisited() []string {
	out := make([]string, len(r.Visited))
	copy(out, r.Visited)
	sort.Strings(out)
	return out
}

// Summary condenses the result into the counts the final report needs.
func (r *CrawlResult) Summary() *CrawlSummary {
	return &CrawlSummary{
		BaseDomain:   r.BaseDomain,
		PagesFetched: len(r.Pages),
		URLsVisited:  len(r.Visited),
		ErrorCount:   len(r.Errors),
		StartedAt:    r.StartedAt,
		Duration:     r.Duration,
	}
}

// CrawlSummary carries the user-visible counts reported after a crawl.
// The summary must be produced even when the crawl terminated early via
// the page cap.
type CrawlSummary struct {
	// BaseDomain is the crawled host.
	BaseDomain string `json:"base_domain"`

	// PagesFetched is the number of pages that produced corpus text.
	PagesFetched int `json:"pages_fetched"`

	// URLsVisited is the number of unique URLs dispatched.
	URLsVisited int `json:"urls_visited"`

	// ErrorCount is the number of failed or skipped URLs.
	ErrorCount int `json:"error_count"`

	// StartedAt and Duration bound the crawl run.
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Settings echoes the tuning parameters the crawl ran with.
	Settings CrawlSettings `json:"settings"`
}

// CrawlSettings records the four tuning parameters plus the seed count
// for inclusion in reports and the session database.
type CrawlSettings struct {
	Seeds    int           `json:"seeds"`
	MaxPages int           `json:"max_pages"`
	MaxDepth int           `json:"max_depth"`
	Workers  int           `json:"workers"`
	Throttle time.Duration `json:"throttle"`
}
