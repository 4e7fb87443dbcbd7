package crawler

import "errors"

// Error taxonomy for per-URL outcomes. The scheduler inspects these with
// errors.Is to decide between skip, log, and drop; none of them aborts
// the crawl.
var (
	// ErrOffDomain is returned when a redirect chain ends on a host other
	// than the base domain. The content is not processed and no links are
	// harvested from it. Not retried.
	ErrOffDomain = errors.New("redirected off domain")

	// ErrRequestFailed is returned when all retry attempts are exhausted
	// or the server answered with a non-retryable error status. The URL
	// is not re-attempted.
	ErrRequestFailed = errors.New("request failed")

	// ErrUnsupportedContent is returned for content types other than HTML
	// and PDF. The page produces no text and is recorded as skipped, not
	// as an alarming error.
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrBlockedByRobots is returned when robots.txt disallows the URL.
	// Only produced when robots checks are enabled.
	ErrBlockedByRobots = errors.New("blocked by robots.txt")
)
