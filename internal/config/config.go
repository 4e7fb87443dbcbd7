package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Defaults mirror the tuning that proved stable for large paginated sites:
// five workers behind a 200ms submission throttle caps the outbound rate
// at five requests per second regardless of worker count.
const (
	// DefaultMaxPages caps the number of distinct URLs visited per crawl.
	// This prevents runaway crawling on large or infinitely-generating sites.
	DefaultMaxPages = 5000

	// DefaultMaxDepth of 1 crawls the seeds plus everything they link to.
	// Listing-page seeds rarely need more; deep crawls are opt-in.
	DefaultMaxDepth = 1

	// DefaultWorkers is the concurrency bound for in-flight fetches.
	DefaultWorkers = 5

	// DefaultThrottle is the minimum delay between job submissions.
	// This is a politeness setting, not a correctness requirement.
	DefaultThrottle = 200 * time.Millisecond

	// DefaultTimeout bounds each individual HTTP request attempt.
	DefaultTimeout = 20 * time.Second

	// DefaultRetryAttempts is the total number of attempts per URL for
	// transient failures (network errors, 429 and 5xx responses).
	DefaultRetryAttempts = 5

	// DefaultRetryBackoff is the first retry delay; it doubles on each
	// consecutive retry unless the server sends Retry-After.
	DefaultRetryBackoff = 1 * time.Second

	// DefaultMaxBodySize limits the response body size to read.
	// 10MB accommodates large PDFs while preventing memory exhaustion.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultUserAgent is the fixed client signature sent with every
	// request. A browser-like signature avoids the blanket bot blocks
	// some government and legal sites apply.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "corpuscrawl"
)

// Config holds all configuration options for a crawl invocation.
// This struct is populated from defaults, the optional YAML file, and CLI
// flags, then validated once and passed through via dependency injection.
type Config struct {
	// Seeds is the ordered list of seed URLs. The base domain is derived
	// from the first seed; all fetched URLs must resolve to it.
	Seeds []string

	// MaxPages is the global cap on distinct URLs dispatched to workers.
	MaxPages int

	// MaxDepth is the inclusive bound on link hops from any seed.
	MaxDepth int

	// Workers is the number of concurrent fetch workers.
	Workers int

	// Throttle is the minimum spacing between job submissions.
	Throttle time.Duration

	// Timeout bounds each HTTP request attempt.
	Timeout time.Duration

	// RetryAttempts is the total attempt count per URL.
	RetryAttempts int

	// RetryBackoff is the initial exponential backoff delay.
	RetryBackoff time.Duration

	// MaxBodySize limits response bodies in bytes. 0 means the default.
	MaxBodySize int64

	// UserAgent is the client signature sent with every request.
	UserAgent string

	// RespectRobots enables robots.txt checks before dispatching a URL.
	// Off by default; the crawler is an offline batch tool whose rate is
	// already bounded by the throttle.
	RespectRobots bool

	// OutputFile is the corpus output path. Empty means
	// "<baseDomain>_corpus.txt" in the working directory.
	OutputFile string

	// JSONReport and MarkdownReport switch the post-crawl summary format.
	// Mutually exclusive; default is the human-readable simple report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the summary report to a file instead of stdout.
	ReportFile string

	// DBDir is the directory for the SQLite session database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB persists the crawl session and its pages.
	SaveToDB bool

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a Config with default values.
// Users override specific fields after creation.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero, and the constructor doubles as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxPages:      DefaultMaxPages,
		MaxDepth:      DefaultMaxDepth,
		Workers:       DefaultWorkers,
		Throttle:      DefaultThrottle,
		Timeout:       DefaultTimeout,
		RetryAttempts: DefaultRetryAttempts,
		RetryBackoff:  DefaultRetryBackoff,
		MaxBodySize:   DefaultMaxBodySize,
		UserAgent:     DefaultUserAgent,
		DBDir:         XDGDataDir(),
		SaveToDB:      true,
	}
}

// XDGDataDir returns the XDG data directory for corpuscrawl.
// On Linux: ~/.local/share/corpuscrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for corpuscrawl.
// On Linux: ~/.config/corpuscrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// BaseDomain derives the crawl scope from the first seed.
// Returns an empty string when no valid seed is present; Validate
// reports that case as ErrInvalidSeed.
func (c *Config) BaseDomain() string {
	if len(c.Seeds) == 0 {
		return ""
	}
	u, err := url.Parse(c.Seeds[0])
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag and file merging, before any fetch is
// attempted. Configuration errors are the only crawl-fatal conditions.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if c.BaseDomain() == "" {
		return ErrInvalidSeed
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Throttle < 0 {
		return ErrInvalidThrottle
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
