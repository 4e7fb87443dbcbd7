// Package crawler implements the continuous, politeness-bounded site
// crawler that produces the text corpus.
//
// # Architecture
//
// The package is designed around four components:
//
//   - Frontier: FIFO queue of (URL, depth) pairs plus the visited set.
//     It owns the traversal policy: domain scope is applied by the
//     scheduler, depth bound and deduplication by the frontier itself.
//   - Fetcher: one HTTP GET per URL with retry/backoff on transient
//     failures and off-domain redirect detection.
//   - Extractor: pure functions turning a fetched body into plain text,
//     a title, and outbound links. HTML and PDF are supported; other
//     content types are skipped.
//   - Crawler: the scheduler. A single coordinating goroutine alternates
//     a submit phase (dispatch jobs while worker slots are free, pacing
//     submissions with the politeness throttle) and a harvest phase
//     (collect completed results, feed discovered links back into the
//     frontier).
//
// # Concurrency model
//
// All crawl state (frontier, visited set, in-flight count, results) is
// owned and mutated exclusively by the coordinating goroutine. Workers
// run the stateless fetch+extract and hand their result back over a
// channel; they never touch shared state. This single-writer design is
// why the frontier needs no lock, and it must be preserved by any change
// to this package.
//
// # Politeness
//
// The crawler is designed to be polite:
//   - Minimum delay between job submissions (configurable)
//   - Bounded worker pool caps concurrent requests
//   - Exponential backoff honoring Retry-After on 429/5xx
//   - Optional robots.txt checks
//
// # Usage
//
//	c := crawler.New(httpClient,
//	    crawler.WithMaxDepth(1),
//	    crawler.WithMaxPages(5000),
//	    crawler.WithWorkers(5),
//	    crawler.WithThrottle(200*time.Millisecond),
//	)
//	result, err := c.Crawl(ctx, seeds)
package crawler
