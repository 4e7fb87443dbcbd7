package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BCJonkhout/nlp-project/internal/config"
	"github.com/BCJonkhout/nlp-project/internal/database"
)

// NewCompareCmd creates the compare command.
// This command compares crawl sessions stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [domain]",
		Short: "Compare crawl sessions stored in the database",
		Long: `Compare displays the content differences between two crawl sessions.

This command retrieves session data from the database and shows:
- New pages that appeared since the previous crawl
- Removed pages that are no longer reachable
- Changed pages whose extracted text differs

The comparison requires at least two sessions in the database for the
specified domain. Use 'corpuscrawl crawl' to run crawls and record sessions.

Examples:
  # Compare the latest two crawls of a domain
  corpuscrawl compare example.com

  # List all crawl sessions for a domain
  corpuscrawl compare --list example.com

  # Compare the latest crawl with a specific session by ID
  corpuscrawl compare --with-session-id 5 example.com

  # Output the comparison in JSON format
  corpuscrawl compare --json example.com

  # List all crawled domains in the database
  corpuscrawl compare --list-domains`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List crawl sessions for the specified domain")
	cmd.Flags().BoolP("list-domains", "L", false,
		"List all crawled domains in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-session-id", "i", 0,
		"Compare with a specific session by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listDomains, err := cmd.Flags().GetBool("list-domains")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so a bad
	// invocation never takes the write lock.
	var domain string
	if !listDomains {
		if len(args) == 0 {
			return errors.New("domain is required (use --list-domains to see available domains)")
		}
		domain, err = normalizeDomain(args[0])
		if err != nil {
			return fmt.Errorf("invalid domain: %w", err)
		}
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listDomains {
		return listCrawledDomains(ctx, out, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listSessionHistory(ctx, out, db, domain)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	withSessionID, err := cmd.Flags().GetInt64("with-session-id")
	if err != nil {
		return err
	}

	return runComparison(ctx, out, db, domain, withSessionID, jsonOutput)
}

// normalizeDomain accepts either a bare hostname or a full URL and
// returns the lowercased hostname.
func normalizeDomain(raw string) (string, error) {
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", err
		}
		if u.Hostname() == "" {
			return "", fmt.Errorf("no hostname in %q", raw)
		}
		return strings.ToLower(u.Hostname()), nil
	}
	host := strings.ToLower(strings.TrimSuffix(raw, "/"))
	if host == "" {
		return "", errors.New("empty domain")
	}
	return host, nil
}

// listCrawledDomains lists all domains that have sessions in the database.
func listCrawledDomains(ctx context.Context, out io.Writer, db *database.CrawlDB) error {
	sessions, err := db.ListSessions(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, "No crawl sessions found in the database.")
		fmt.Fprintln(out, "\nUse 'corpuscrawl crawl <url>' to crawl a domain.")
		return nil
	}

	counts := make(map[string]int)
	for _, s := range sessions {
		counts[s.BaseDomain]++
	}
	domains := make([]string, 0, len(counts))
	for d := range counts {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	fmt.Fprintf(out, "Crawled domains (%d):\n\n", len(domains))
	for _, d := range domains {
		fmt.Fprintf(out, "  %s (%d sessions)\n", d, counts[d])
	}
	fmt.Fprintln(out, "\nUse 'corpuscrawl compare --list <domain>' to see session history for a domain.")

	return nil
}

// listSessionHistory lists all sessions recorded for a specific domain.
func listSessionHistory(ctx context.Context, out io.Writer, db *database.CrawlDB, domain string) error {
	sessions, err := db.ListSessions(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to get session history: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintf(out, "No crawl sessions found for %s\n", domain)
		fmt.Fprintln(out, "\nUse 'corpuscrawl crawl' to crawl this domain.")
		return nil
	}

	fmt.Fprintf(out, "Crawl sessions for %s (%d sessions):\n\n", domain, len(sessions))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %-8s  %s\n", "ID", "Date", "Pages", "Visited", "Errors")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, s := range sessions {
		fmt.Fprintf(out, "  %-6d  %-20s  %-8d  %-8d  %d\n",
			s.ID,
			s.StartedAt.Format("2006-01-02 15:04:05"),
			s.PagesFetched,
			s.URLsVisited,
			s.ErrorCount,
		)
	}

	fmt.Fprintln(out, "\nUse 'corpuscrawl compare <domain>' to compare the latest two sessions.")
	fmt.Fprintln(out, "Use 'corpuscrawl compare --with-session-id <id> <domain>' to compare with a specific session.")

	return nil
}

// ComparisonResult holds the result of comparing two crawl sessions.
type ComparisonResult struct {
	// Domain is the compared base domain.
	Domain string `json:"domain"`

	// PreviousSession contains metadata about the older session.
	PreviousSession SessionMetadata `json:"previous_session"`

	// CurrentSession contains metadata about the newer session.
	CurrentSession SessionMetadata `json:"current_session"`

	// NewPages lists URLs present only in the current session.
	NewPages []string `json:"new_pages,omitempty"`

	// RemovedPages lists URLs present only in the previous session.
	RemovedPages []string `json:"removed_pages,omitempty"`

	// ChangedPages lists URLs whose extracted text differs between sessions.
	ChangedPages []string `json:"changed_pages,omitempty"`

	// UnchangedCount is the number of pages with identical text in both sessions.
	UnchangedCount int `json:"unchanged_count"`
}

// SessionMetadata contains metadata about a session for comparison display.
type SessionMetadata struct {
	// ID is the database session identifier.
	ID int64 `json:"id"`

	// StartedAt is when the crawl started.
	StartedAt time.Time `json:"started_at"`

	// PagesFetched is the number of pages with extracted text.
	PagesFetched int `json:"pages_fetched"`

	// URLsVisited is the number of distinct URLs the crawl reached.
	URLsVisited int `json:"urls_visited"`

	// ErrorCount is the number of per-URL failures.
	ErrorCount int `json:"error_count"`
}

// runComparison compares the latest session with the previous one, or with
// an explicitly chosen session.
func runComparison(ctx context.Context, out io.Writer, db *database.CrawlDB, domain string, withSessionID int64, jsonOutput bool) error {
	sessions, err := db.LatestSessions(ctx, domain, 2)
	if err != nil {
		return fmt.Errorf("failed to get session history: %w", err)
	}

	if len(sessions) == 0 {
		return fmt.Errorf("no crawl sessions found for %s", domain)
	}
	if len(sessions) < 2 && withSessionID == 0 {
		return fmt.Errorf("at least 2 sessions are required for comparison (found %d)", len(sessions))
	}

	current := sessions[0]

	var previous database.Session
	if withSessionID > 0 {
		s, err := db.GetSession(ctx, withSessionID)
		if err != nil {
			return fmt.Errorf("failed to get session with ID %d: %w", withSessionID, err)
		}
		if s == nil {
			return fmt.Errorf("session with ID %d not found", withSessionID)
		}
		if s.BaseDomain != domain {
			return fmt.Errorf("session ID %d belongs to %s, not %s", withSessionID, s.BaseDomain, domain)
		}
		if s.ID == current.ID {
			return fmt.Errorf("session ID %d is the latest session; nothing to compare against", withSessionID)
		}
		previous = *s
	} else {
		previous = sessions[1]
	}

	comparison, err := compareSessions(ctx, db, domain, previous, current)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputComparisonJSON(out, comparison)
	}
	return outputComparisonText(out, comparison)
}

// compareSessions diffs the page sets of two sessions by text hash.
func compareSessions(ctx context.Context, db *database.CrawlDB, domain string, previous, current database.Session) (*ComparisonResult, error) {
	prevHashes, err := db.SessionHashes(ctx, previous.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages for session %d: %w", previous.ID, err)
	}
	currHashes, err := db.SessionHashes(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages for session %d: %w", current.ID, err)
	}

	result := &ComparisonResult{
		Domain:          domain,
		PreviousSession: sessionMetadata(previous),
		CurrentSession:  sessionMetadata(current),
	}

	for u, hash := range currHashes {
		prevHash, exists := prevHashes[u]
		switch {
		case !exists:
			result.NewPages = append(result.NewPages, u)
		case prevHash != hash:
			result.ChangedPages = append(result.ChangedPages, u)
		default:
			result.UnchangedCount++
		}
	}
	for u := range prevHashes {
		if _, exists := currHashes[u]; !exists {
			result.RemovedPages = append(result.RemovedPages, u)
		}
	}

	sort.Strings(result.NewPages)
	sort.Strings(result.RemovedPages)
	sort.Strings(result.ChangedPages)

	return result, nil
}

func sessionMetadata(s database.Session) SessionMetadata {
	return SessionMetadata{
		ID:           s.ID,
		StartedAt:    s.StartedAt,
		PagesFetched: s.PagesFetched,
		URLsVisited:  s.URLsVisited,
		ErrorCount:   s.ErrorCount,
	}
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in plain text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "Comparison for %s\n", result.Domain)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Previous session: #%d (%s, %d pages)\n",
		result.PreviousSession.ID,
		result.PreviousSession.StartedAt.Format("2006-01-02 15:04:05"),
		result.PreviousSession.PagesFetched)
	fmt.Fprintf(out, "Current session:  #%d (%s, %d pages)\n",
		result.CurrentSession.ID,
		result.CurrentSession.StartedAt.Format("2006-01-02 15:04:05"),
		result.CurrentSession.PagesFetched)
	fmt.Fprintln(out)

	if len(result.NewPages) > 0 {
		fmt.Fprintf(out, "New pages (%d):\n", len(result.NewPages))
		for _, u := range result.NewPages {
			fmt.Fprintf(out, "  + %s\n", u)
		}
		fmt.Fprintln(out)
	}
	if len(result.RemovedPages) > 0 {
		fmt.Fprintf(out, "Removed pages (%d):\n", len(result.RemovedPages))
		for _, u := range result.RemovedPages {
			fmt.Fprintf(out, "  - %s\n", u)
		}
		fmt.Fprintln(out)
	}
	if len(result.ChangedPages) > 0 {
		fmt.Fprintf(out, "Changed pages (%d):\n", len(result.ChangedPages))
		for _, u := range result.ChangedPages {
			fmt.Fprintf(out, "  ~ %s\n", u)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Unchanged pages: %d\n", result.UnchangedCount)
	if len(result.NewPages) == 0 && len(result.RemovedPages) == 0 && len(result.ChangedPages) == 0 {
		fmt.Fprintln(out, "\nNo content changes detected between the two sessions.")
	}

	return nil
}
