package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeeds is returned when no seed URL is available after
	// template expansion. A crawl without seeds has nothing to do.
	ErrNoSeeds = errors.New("no seed URLs: provide seeds as arguments or in the configuration file")

	// ErrInvalidSeed is returned when the first seed URL cannot be
	// parsed or has no host. The base domain is derived from it, so the
	// whole crawl scope would be undefined.
	ErrInvalidSeed = errors.New("invalid seed URL: first seed must be an absolute URL with a host")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no fetching at all.
	ErrInvalidWorkers = errors.New("invalid worker count: must be at least 1")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be at least 1")

	// ErrInvalidMaxDepth is returned when the depth bound is negative.
	// Depth 0 means seeds only.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidThrottle is returned when the politeness delay is negative.
	// Use 0 to disable throttling.
	ErrInvalidThrottle = errors.New("invalid throttle delay: must be non-negative")

	// ErrInvalidTimeout is returned when the per-request timeout is not
	// positive. A zero timeout would fail every request immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the response body limit is
	// negative. Use 0 to apply the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidSeedTemplate is returned when a seed template has an
	// empty template string or an inverted page range.
	ErrInvalidSeedTemplate = errors.New("invalid seed template: template must contain {page} and from must not exceed to")
)
