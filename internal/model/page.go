package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// NoTitle is the sentinel title used when a page has no <title> element
// or is a non-HTML document. Downstream formatters rely on this exact
// string to detect untitled pages.
const NoTitle = "No Title Found"

// PageResult represents one successfully processed page.
//
// Design decision: We keep extracted text rather than the raw body because:
//  1. The corpus consumers only need plain text
//  2. Raw bodies of large sites would dominate memory
//  3. The text hash is sufficient for change detection between crawls
type PageResult struct {
	// URL is the final resolved URL after redirects, normalized
	// (fragment stripped, lowercase scheme and host).
	URL string `json:"url"`

	// Title is the page title, or NoTitle when absent.
	Title string `json:"title"`

	// Text is the extracted plain text with whitespace collapsed.
	// Empty for pages that yielded no visible text.
	Text string `json:"text"`

	// Links contains the outbound links discovered on the page,
	// resolved to absolute URLs with fragments stripped. The scheduler
	// applies domain scoping one layer above extraction, so this slice
	// may contain off-domain URLs.
	Links []string `json:"links,omitempty"`

	// Depth is the number of link hops from the nearest seed.
	Depth int `json:"depth"`

	// StatusCode is the final HTTP response status.
	StatusCode int `json:"status_code"`

	// ContentType is the normalized (lowercased) MIME type of the response.
	ContentType string `json:"content_type"`

	// FetchedAt records when the page was fetched.
	FetchedAt time.Time `json:"fetched_at"`
}

// TextHash returns the SHA-256 hex digest of the extracted text.
// An empty text yields an empty hash.
func (p *PageResult) TextHash() string {
	if p.Text == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.Text))
	return hex.EncodeToString(sum[:])
}
