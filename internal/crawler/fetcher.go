package crawler

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// Statuses worth retrying: rate limiting and transient server errors.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
}

// maxBackoff caps the exponential retry delay so a long Retry-After or a
// deep retry chain cannot stall a worker for minutes.
const maxBackoff = 30 * time.Second

// Fetched is the outcome of a successful fetch.
type Fetched struct {
	// FinalURL is the normalized URL after following redirects.
	FinalURL string

	// ContentType is the lowercased Content-Type header value.
	ContentType string

	// Body is the decoded response body, bounded by the configured limit.
	Body []byte

	// StatusCode is the final HTTP status.
	StatusCode int
}

// Fetcher issues single HTTP GETs with retry and backoff. It is
// stateless apart from its configuration and safe for concurrent use by
// all workers; the underlying client and its connection pool are shared.
type Fetcher struct {
	client      *http.Client
	baseDomain  string
	userAgent   string
	maxBodySize int64
	attempts    int
	backoff     time.Duration
	timeout     time.Duration
	logger      *slog.Logger
}

// NewFetcher creates a Fetcher bound to a base domain. The client is
// injected so tests and the CLI control transport configuration in one
// place.
func NewFetcher(client *http.Client, baseDomain string, opts FetchOptions) *Fetcher {
	if opts.Attempts <= 0 {
		opts.Attempts = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = 10 * 1024 * 1024
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		client:      client,
		baseDomain:  strings.ToLower(baseDomain),
		userAgent:   opts.UserAgent,
		maxBodySize: opts.MaxBodySize,
		attempts:    opts.Attempts,
		backoff:     opts.Backoff,
		timeout:     opts.Timeout,
		logger:      logger,
	}
}

// FetchOptions configures a Fetcher. Zero values fall back to defaults.
type FetchOptions struct {
	UserAgent   string
	MaxBodySize int64
	Attempts    int
	Backoff     time.Duration
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Fetch performs one GET with retries. Transient failures (network
// errors, timeouts, 429 and 5xx statuses) are retried with exponential
// backoff; a Retry-After header takes precedence over the computed
// delay. A final host differing from the base domain yields ErrOffDomain.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Fetched, error) {
	delay := f.backoff

	for attempt := 1; attempt <= f.attempts; attempt++ {
		fetched, retryAfter, err := f.attempt(ctx, rawURL)
		if err == nil {
			return fetched, nil
		}
		if errors.Is(err, ErrOffDomain) || ctx.Err() != nil {
			return nil, err
		}
		if !isRetryable(err) {
			return nil, fmt.Errorf("%w for %s: %v", ErrRequestFailed, rawURL, err)
		}
		if attempt == f.attempts {
			return nil, fmt.Errorf("%w for %s after %d attempts: %v", ErrRequestFailed, rawURL, f.attempts, err)
		}

		wait := delay
		if retryAfter > 0 {
			wait = retryAfter
		}
		if wait > maxBackoff {
			wait = maxBackoff
		}

		f.logger.Debug("retrying fetch",
			"url", rawURL,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}

	// Unreachable: the loop returns on the last attempt.
	return nil, fmt.Errorf("%w for %s", ErrRequestFailed, rawURL)
}

// retryableStatusError marks an HTTP status worth retrying.
type retryableStatusError struct {
	status int
}

func (e *retryableStatusError) Error() string {
	return "server returned status " + strconv.Itoa(e.status)
}

// permanentError marks a failure that retrying cannot fix: a terminal
// HTTP status (404, 403, ...) or an unbuildable request.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// isRetryable classifies an attempt error. Network-level failures,
// including timeouts, are transient; permanent failures are not.
func isRetryable(err error) bool {
	var permanent *permanentError
	if errors.As(err, &permanent) {
		return false
	}
	// Retryable statuses, timeouts, and remaining transport errors
	// (connection reset, EOF mid-body, ...) are all transient.
	return true
}

// attempt performs a single request. The returned duration is the
// parsed Retry-After hint, zero when absent.
func (f *Fetcher) attempt(ctx context.Context, rawURL string) (*Fetched, time.Duration, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, &permanentError{err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if retryableStatuses[resp.StatusCode] {
		// Drain so the connection can be reused across retries.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), &retryableStatusError{status: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		return nil, 0, &permanentError{err: fmt.Errorf("server returned status %d", resp.StatusCode)}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	// Domain scoping happens after redirects: content from a foreign
	// host is never processed and no links are harvested from it.
	if host := hostOf(finalURL); !strings.EqualFold(host, f.baseDomain) {
		return nil, 0, fmt.Errorf("%w: %s -> %s", ErrOffDomain, rawURL, finalURL)
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, 0, err
	}

	return &Fetched{
		FinalURL:    NormalizeURL(finalURL),
		ContentType: strings.ToLower(resp.Header.Get("Content-Type")),
		Body:        body,
		StatusCode:  resp.StatusCode,
	}, 0, nil
}

// readBody decodes the response body according to Content-Encoding and
// enforces the size limit. Setting Accept-Encoding explicitly disables
// the transport's transparent gzip, so all three encodings are handled
// here.
func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// parseRetryAfter handles both forms of the header: delta seconds and an
// HTTP date. Returns zero when absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// hostOf returns the lowercased hostname of a URL, without port.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// NewHTTPClient builds the shared outbound HTTP client. One client (and
// connection pool) is constructed per crawl and passed read-only to
// every worker. The overall attempt timeout is enforced per request via
// context, not on the client, so slow-but-progressing redirect chains
// are governed in one place.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}
