// Package robots evaluates robots.txt rules for crawl candidates.
//
// Checks are opt-in at the crawler level. When enabled, the agent
// fetches each host's robots.txt once, caches the parsed rules, and
// fails open: a missing or unfetchable robots.txt never blocks a crawl.
package robots

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// defaultCacheTTL bounds how long parsed rules are reused. A crawl
// rarely outlives it; the bound mostly matters for long sessions.
const defaultCacheTTL = 30 * time.Minute

// Agent fetches, caches, and evaluates robots.txt rules per host. It is
// safe for concurrent use by all crawl workers.
type Agent struct {
	client    *http.Client
	userAgent string
	ttl       time.Duration
	logger    *slog.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	fetched time.Time
	rules   *robotstxt.RobotsData
}

// Option configures an Agent.
type Option func(*Agent)

// WithCacheTTL overrides how long parsed rules stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(a *Agent) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAgent creates a robots agent using the given HTTP client. The
// user agent string is matched against robots.txt groups and sent on
// robots.txt requests.
func NewAgent(client *http.Client, userAgent string, opts ...Option) *Agent {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	a := &Agent{
		client:    client,
		userAgent: userAgent,
		ttl:       defaultCacheTTL,
		logger:    slog.Default(),
		cache:     make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allowed reports whether the URL may be fetched. Unparseable URLs are
// rejected; robots.txt fetch or parse failures allow the URL, since an
// unreachable robots.txt must not stall an otherwise healthy crawl.
func (a *Agent) Allowed(ctx context.Context, rawURL string) bool {
	target, err := url.Parse(rawURL)
	if err != nil || !target.IsAbs() {
		return false
	}

	rules, err := a.rules(ctx, target)
	if err != nil {
		a.logger.Debug("robots.txt unavailable, allowing", "host", target.Host, "error", err)
		return true
	}

	group := rules.FindGroup(a.userAgent)
	if group == nil {
		group = rules.FindGroup("*")
		if group == nil {
			return true
		}
	}

	path := target.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

// CrawlDelay returns the Crawl-delay declared for our user agent on the
// URL's host, or zero when unknown. Callers may use it to stretch the
// politeness throttle.
func (a *Agent) CrawlDelay(ctx context.Context, rawURL string) time.Duration {
	target, err := url.Parse(rawURL)
	if err != nil || !target.IsAbs() {
		return 0
	}

	rules, err := a.rules(ctx, target)
	if err != nil {
		return 0
	}
	if group := rules.FindGroup(a.userAgent); group != nil {
		return group.CrawlDelay
	}
	return 0
}

// rules returns the parsed robots.txt for the URL's host, fetching and
// caching it on first use.
func (a *Agent) rules(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(target.Host)

	a.mu.RLock()
	entry, ok := a.cache[host]
	a.mu.RUnlock()
	if ok && time.Since(entry.fetched) < a.ttl {
		return entry.rules, nil
	}

	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	// FromResponse maps status classes to allow-all (404) or deny-all
	// (401/403) per the de facto standard, so no status filtering here.
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	a.mu.Lock()
	a.cache[host] = cacheEntry{fetched: time.Now(), rules: data}
	a.mu.Unlock()

	return data, nil
}
