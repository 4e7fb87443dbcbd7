package crawler

import (
	"net/url"
	"sort"
	"strings"
)

// Entry is one unit of crawl work: a URL and its distance from the
// nearest seed. Seeds have depth 0; a discovered link inherits
// parent depth + 1.
type Entry struct {
	URL   string
	Depth int
}

// Frontier holds the not-yet-fetched URLs and the visited set.
//
// The frontier is owned and mutated exclusively by the scheduler's
// coordinating goroutine, so it carries no lock. Do not share it across
// goroutines.
//
// Deduplication happens at a single point: Next marks a URL visited
// atomically with dequeuing it for dispatch, before any fetch begins.
// A URL is therefore never fetched twice and never dispatched twice,
// even when several concurrent pages link to it.
type Frontier struct {
	queue    []Entry
	visited  map[string]bool
	aliases  map[string]bool
	maxDepth int
}

// NewFrontier creates an empty frontier with the given inclusive depth
// bound.
func NewFrontier(maxDepth int) *Frontier {
	return &Frontier{
		queue:    make([]Entry, 0),
		visited:  make(map[string]bool),
		aliases:  make(map[string]bool),
		maxDepth: maxDepth,
	}
}

// Push appends an entry to the queue. The URL is normalized here so the
// queue, the visited set, and the dispatched jobs all agree on one
// representation. Already-visited URLs are dropped early to keep the
// queue small; Next re-checks regardless.
func (f *Frontier) Push(rawURL string, depth int) {
	norm := NormalizeURL(rawURL)
	if norm == "" || f.visited[norm] || f.aliases[norm] {
		return
	}
	f.queue = append(f.queue, Entry{URL: norm, Depth: depth})
}

// Next pops the next eligible entry and marks it visited. Entries beyond
// the depth bound or already visited are silently dropped; that is
// policy, not an error. The second return is false when the queue has no
// eligible entry left.
func (f *Frontier) Next() (Entry, bool) {
	for len(f.queue) > 0 {
		entry := f.queue[0]
		f.queue = f.queue[1:]

		if entry.Depth > f.maxDepth {
			continue
		}
		if !f.MarkVisited(entry.URL) {
			continue
		}
		return entry, true
	}
	return Entry{}, false
}

// MarkVisited records the URL as dispatched. It returns false, leaving
// the set unchanged, if the URL was already present. This is the dedup
// gate.
func (f *Frontier) MarkVisited(rawURL string) bool {
	norm := NormalizeURL(rawURL)
	if norm == "" || f.visited[norm] || f.aliases[norm] {
		return false
	}
	f.visited[norm] = true
	return true
}

// MarkAlias records a URL reached indirectly, through a redirect from a
// dispatched URL. Aliases block re-dispatch like visited URLs do, but
// they are excluded from the visited count and list: the page-count cap
// and the reported sources cover dispatched URLs only.
func (f *Frontier) MarkAlias(rawURL string) bool {
	norm := NormalizeURL(rawURL)
	if norm == "" || f.visited[norm] || f.aliases[norm] {
		return false
	}
	f.aliases[norm] = true
	return true
}

// IsVisited reports whether the URL has been dispatched at least once,
// directly or as a redirect alias.
func (f *Frontier) IsVisited(rawURL string) bool {
	norm := NormalizeURL(rawURL)
	return f.visited[norm] || f.aliases[norm]
}

// VisitedCount returns the number of unique URLs dispatched so far.
// Redirect aliases are not counted.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// Visited returns the dispatched URLs in lexical order. Redirect
// aliases are not included.
func (f *Frontier) Visited() []string {
	out := make([]string, 0, len(f.visited))
	for u := range f.visited {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of queued entries, eligible or not.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// NormalizeURL normalizes a URL for deduplication: fragment stripped,
// scheme and host lowercased, empty path treated as "/". Returns an
// empty string for unparseable input.
//
// Design decision: We normalize because the same page often appears
// under several representations (#fragments, case-differing hosts, bare
// vs. trailing-slash roots), and each duplicate fetch wastes a politeness
// slot.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	// Relative and scheme-less input parses fine but is not a crawl
	// target; returning "" keeps it out of the visited set.
	if u.Scheme == "" || u.Host == "" {
		return ""
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// IsValidURL reports whether the URL is absolute with a host, the
// minimum for a fetchable crawl target.
func IsValidURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
