package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/BCJonkhout/nlp-project/internal/model"
)

// RobotsPolicy answers whether a URL may be fetched. Implementations
// must be safe for concurrent use; every worker consults the policy
// before fetching.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// Crawler coordinates the workers, the frontier, and the politeness
// throttle for one crawl run. Construct it with New and run it once with
// Crawl; a Crawler is not reusable across runs.
type Crawler struct {
	client *http.Client

	maxPages    int
	maxDepth    int
	workers     int
	throttle    time.Duration
	userAgent   string
	timeout     time.Duration
	attempts    int
	backoff     time.Duration
	maxBodySize int64
	robots      RobotsPolicy
	logger      *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMaxPages bounds the number of unique URLs dispatched. The cap is
// checked at dispatch time, so in-flight pages beyond the cap are still
// collected, never discarded.
func WithMaxPages(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithMaxDepth bounds the link distance from the seeds. Seeds are depth
// zero; the bound is inclusive.
func WithMaxDepth(n int) Option {
	return func(c *Crawler) {
		if n >= 0 {
			c.maxDepth = n
		}
	}
}

// WithWorkers sets the number of concurrent fetch workers.
func WithWorkers(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithThrottle sets the minimum delay between consecutive job
// submissions. Zero disables pacing.
func WithThrottle(d time.Duration) Option {
	return func(c *Crawler) {
		if d >= 0 {
			c.throttle = d
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry sets the attempt count and initial backoff for transient
// failures.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Crawler) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithMaxBodySize bounds how many decoded bytes are read per response.
func WithMaxBodySize(n int64) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithRobots enables robots.txt checks through the given policy.
func WithRobots(p RobotsPolicy) Option {
	return func(c *Crawler) { c.robots = p }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Crawler with the given HTTP client and options. Defaults
// match the documented tuning parameters: 5000 pages, depth 1, 5
// workers, 200ms throttle.
func New(client *http.Client, opts ...Option) *Crawler {
	c := &Crawler{
		client:      client,
		maxPages:    5000,
		maxDepth:    1,
		workers:     5,
		throttle:    200 * time.Millisecond,
		userAgent:   "corpuscrawl/1.0",
		timeout:     20 * time.Second,
		attempts:    5,
		backoff:     time.Second,
		maxBodySize: 10 * 1024 * 1024,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// jobResult carries one completed unit of work from a worker back to the
// coordinator. Exactly one of page and err is set.
type jobResult struct {
	entry Entry
	page  *model.PageResult
	err   error
}

// Crawl runs the crawl to completion and returns the aggregated result.
// The crawl ends when the frontier is exhausted with no work in flight,
// or when the page cap is reached, or when ctx is cancelled. In the
// latter two cases the in-flight pages are still drained and included.
//
// Per-URL failures never abort the crawl; they are collected as error
// lines on the result. The returned error is non-nil only for conditions
// that prevent crawling at all, such as an empty seed list.
func (c *Crawler) Crawl(ctx context.Context, seeds []string) (*model.CrawlResult, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seed URLs provided")
	}

	baseDomain := hostOf(seeds[0])
	if baseDomain == "" {
		return nil, fmt.Errorf("invalid seed URL: %s", seeds[0])
	}

	fetcher := NewFetcher(c.client, baseDomain, FetchOptions{
		UserAgent:   c.userAgent,
		MaxBodySize: c.maxBodySize,
		Attempts:    c.attempts,
		Backoff:     c.backoff,
		Timeout:     c.timeout,
		Logger:      c.logger,
	})

	frontier := NewFrontier(c.maxDepth)
	for _, seed := range seeds {
		frontier.Push(seed, 0)
	}

	// Buffered to the pool size so a worker never blocks on handing a
	// result back, and the coordinator never blocks dispatching to a
	// free worker.
	jobs := make(chan Entry, c.workers)
	results := make(chan jobResult, c.workers)

	g, workerCtx := errgroup.WithContext(ctx)
	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for entry := range jobs {
				results <- c.process(workerCtx, fetcher, entry)
			}
			return nil
		})
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.throttle > 0 {
		limiter = rate.NewLimiter(rate.Every(c.throttle), 1)
	}

	result := &model.CrawlResult{
		BaseDomain: baseDomain,
		StartedAt:  time.Now(),
	}

	c.logger.Info("crawl started",
		"base_domain", baseDomain,
		"seeds", len(seeds),
		"max_pages", c.maxPages,
		"max_depth", c.maxDepth,
		"workers", c.workers,
		"throttle", c.throttle,
	)

	inFlight := 0

coordinate:
	for {
		// Submit phase: fill free worker slots, pacing each dispatch
		// with the throttle. The page cap counts dispatched URLs.
		for inFlight < c.workers && frontier.VisitedCount() < c.maxPages {
			entry, ok := frontier.Next()
			if !ok {
				break
			}
			if err := limiter.Wait(ctx); err != nil {
				break coordinate
			}
			jobs <- entry
			inFlight++
		}

		if inFlight == 0 {
			break
		}

		// Harvest phase: block for one result, then drain whatever else
		// has completed so newly discovered links enter the frontier
		// before the next submit round.
		c.collect(result, frontier, baseDomain, <-results)
		inFlight--

		for drained := false; !drained; {
			select {
			case res := <-results:
				c.collect(result, frontier, baseDomain, res)
				inFlight--
			default:
				drained = true
			}
		}
	}

	// Cancelled or capped with work still out: the in-flight pages were
	// paid for with real requests, keep their results.
	for inFlight > 0 {
		c.collect(result, frontier, baseDomain, <-results)
		inFlight--
	}

	close(jobs)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Visited = frontier.Visited()
	result.Duration = time.Since(result.StartedAt)

	c.logger.Info("crawl finished",
		"base_domain", baseDomain,
		"pages", len(result.Pages),
		"visited", len(result.Visited),
		"errors", len(result.Errors),
		"duration", result.Duration,
	)

	if ctx.Err() != nil {
		c.logger.Warn("crawl interrupted, partial results kept", "reason", ctx.Err())
	}

	return result, nil
}

// collect folds one worker result into the crawl state. Runs only on the
// coordinating goroutine.
func (c *Crawler) collect(result *model.CrawlResult, frontier *Frontier, baseDomain string, res jobResult) {
	if res.err != nil {
		c.logger.Warn("page failed", "url", res.entry.URL, "error", res.err)
		result.Errors = append(result.Errors, res.err.Error())
		return
	}

	page := res.page
	c.logger.Info("page fetched",
		"url", page.URL,
		"depth", page.Depth,
		"status", page.StatusCode,
		"links", len(page.Links),
		"text_len", len(page.Text),
	)

	// A redirect may land on a URL the frontier has not seen. Recording
	// it as an alias blocks a re-fetch without counting it against the
	// page cap or adding it to the reported sources.
	frontier.MarkAlias(page.URL)

	if page.Text != "" {
		result.Pages = append(result.Pages, *page)
	}

	// Domain scoping for discovered links happens here, in one place.
	// The frontier handles depth and dedup on Push.
	for _, link := range page.Links {
		if strings.EqualFold(hostOf(link), baseDomain) {
			frontier.Push(link, page.Depth+1)
		}
	}
}

// process executes one unit of work on a worker: robots check, fetch,
// extract. It touches no shared state.
func (c *Crawler) process(ctx context.Context, fetcher *Fetcher, entry Entry) jobResult {
	if c.robots != nil && !c.robots.Allowed(ctx, entry.URL) {
		return jobResult{entry: entry, err: fmt.Errorf("%w: %s", ErrBlockedByRobots, entry.URL)}
	}

	fetched, err := fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		return jobResult{entry: entry, err: err}
	}

	ex, err := Extract(fetched.FinalURL, fetched.ContentType, fetched.Body)
	if err != nil {
		return jobResult{entry: entry, err: err}
	}

	return jobResult{
		entry: entry,
		page: &model.PageResult{
			URL:         fetched.FinalURL,
			Title:       ex.Title,
			Text:        ex.Text,
			Links:       ex.Links,
			Depth:       entry.Depth,
			StatusCode:  fetched.StatusCode,
			ContentType: fetched.ContentType,
			FetchedAt:   time.Now(),
		},
	}
}

// Settings reports the tuning parameters this crawler runs with, for
// inclusion in summaries and session records.
func (c *Crawler) Settings(seeds int) model.CrawlSettings {
	return model.CrawlSettings{
		Seeds:    seeds,
		MaxPages: c.maxPages,
		MaxDepth: c.maxDepth,
		Workers:  c.workers,
		Throttle: c.throttle,
	}
}
