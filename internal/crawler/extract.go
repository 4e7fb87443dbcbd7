package crawler

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"github.com/BCJonkhout/nlp-project/internal/model"
)

// PDFErrorPlaceholder is the visible text substituted when PDF
// extraction fails. A broken PDF is non-fatal: the page still counts as
// a success, carrying this marker instead of content.
const PDFErrorPlaceholder = "(Error reading PDF content)"

// Elements whose subtrees carry no corpus text. Navigation chrome and
// code are removed before text extraction, mirroring what readers see.
var skippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"header": true,
	"footer": true,
	"nav":    true,
	"aside":  true,
}

// Extraction is the outcome of extracting one fetched body.
type Extraction struct {
	// Title is the document title, or model.NoTitle when absent.
	Title string

	// Text is the visible text with runs of whitespace collapsed to
	// single spaces, NFC-normalized.
	Text string

	// Links are the outbound anchors resolved against the page URL,
	// fragment stripped, filtered to syntactically valid absolute
	// http(s) URLs. Domain scoping is the scheduler's job, not ours.
	Links []string
}

// Extract dispatches on the normalized content type. It is a pure
// function: same body in, same extraction out, no shared state. HTML and
// PDF are supported; anything else returns ErrUnsupportedContent.
func Extract(pageURL, contentType string, body []byte) (*Extraction, error) {
	ct := strings.ToLower(contentType)

	switch {
	case strings.Contains(ct, "html"):
		return extractHTML(pageURL, ct, body)
	case strings.Contains(ct, "pdf"):
		return &Extraction{Title: model.NoTitle, Text: extractPDFText(body)}, nil
	default:
		return nil, fmt.Errorf("%w %q at %s", ErrUnsupportedContent, contentType, pageURL)
	}
}

// extractHTML parses the document, drops non-content subtrees, and
// collects the visible text, the title, and all anchor targets in a
// single DOM walk.
func extractHTML(pageURL, contentType string, body []byte) (*Extraction, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	// charset.NewReader sniffs the document encoding from the header
	// and meta tags, so non-UTF-8 pages decode correctly.
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		reader = bytes.NewReader(body)
	}

	doc, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	ex := &Extraction{Title: model.NoTitle}
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
			if n.Data == "title" && ex.Title == model.NoTitle {
				if t := nodeText(n); t != "" {
					ex.Title = t
				}
			}
			if n.Data == "a" {
				if link := resolveLink(base, getAttr(n, "href")); link != "" {
					ex.Links = append(ex.Links, link)
				}
			}
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	ex.Text = collapseWhitespace(text.String())
	return ex, nil
}

// nodeText returns the trimmed concatenated text of an element's direct
// text children.
func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// resolveLink turns an href into an absolute crawl candidate, or ""
// when the href is empty, non-navigational, or invalid.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := NormalizeURL(base.ResolveReference(u).String())
	if !IsValidURL(resolved) {
		return ""
	}
	return resolved
}

// collapseWhitespace reduces all runs of whitespace to single spaces and
// NFC-normalizes the result, so the corpus is stable regardless of the
// source markup's formatting and encoding quirks.
func collapseWhitespace(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// extractPDFText concatenates the plain text of every page. Extraction
// failures, including panics from malformed files, degrade to the
// placeholder string rather than failing the page.
func extractPDFText(body []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = PDFErrorPlaceholder
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return PDFErrorPlaceholder
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return PDFErrorPlaceholder
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return PDFErrorPlaceholder
	}

	return collapseWhitespace(string(raw))
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
